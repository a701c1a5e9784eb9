package picker

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/nikbrunner/markdex/internal/index"
	"github.com/nikbrunner/markdex/internal/model"
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true).
			MarginBottom(1)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))
)

// resultTitles adapts a result slice to fuzzy.Source for title narrowing.
type resultTitles []index.SearchResult

func (rt resultTitles) String(i int) string { return rt[i].Item.Title }
func (rt resultTitles) Len() int            { return len(rt) }

// Picker is a simple TUI for selecting from search results. Pressing /
// opens a refine field that fuzzy-narrows the visible list by title.
type Picker struct {
	results   []index.SearchResult
	visible   []index.SearchResult
	query     string
	refine    textinput.Model
	refining  bool
	cursor    int
	selected  bool
	cancelled bool
	status    string
	width     int
	height    int
}

// New creates a new Picker with the given search results.
func New(results []index.SearchResult, query string) Picker {
	ti := textinput.New()
	ti.Placeholder = "refine..."
	ti.CharLimit = 80

	return Picker{
		results: results,
		visible: results,
		query:   query,
		refine:  ti,
		cursor:  0,
		width:   80,
		height:  24,
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		return p, nil

	case tea.KeyMsg:
		if p.refining {
			return p.updateRefine(msg)
		}

		switch msg.Type {
		case tea.KeyEsc, tea.KeyCtrlC:
			p.cancelled = true
			return p, tea.Quit

		case tea.KeyEnter:
			if len(p.visible) > 0 {
				p.selected = true
				return p, tea.Quit
			}
			return p, nil

		case tea.KeyDown:
			if p.cursor < len(p.visible)-1 {
				p.cursor++
			}
			return p, nil

		case tea.KeyUp:
			if p.cursor > 0 {
				p.cursor--
			}
			return p, nil
		}

		// Handle j/k vim keys and action keys
		if msg.Type == tea.KeyRunes {
			switch string(msg.Runes) {
			case "j":
				if p.cursor < len(p.visible)-1 {
					p.cursor++
				}
				return p, nil
			case "k":
				if p.cursor > 0 {
					p.cursor--
				}
				return p, nil
			case "q":
				p.cancelled = true
				return p, tea.Quit
			case "/":
				p.refining = true
				p.refine.Focus()
				return p, textinput.Blink
			case "Y":
				p.yankURL()
				return p, nil
			}
		}
	}

	return p, nil
}

// updateRefine handles keys while the refine field is focused.
func (p Picker) updateRefine(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		p.refining = false
		p.refine.Blur()
		p.refine.SetValue("")
		p.applyRefine()
		return p, nil

	case tea.KeyEnter:
		p.refining = false
		p.refine.Blur()
		return p, nil
	}

	var cmd tea.Cmd
	p.refine, cmd = p.refine.Update(msg)
	p.applyRefine()
	return p, cmd
}

// applyRefine narrows the visible results by fuzzy-matching titles.
func (p *Picker) applyRefine() {
	needle := p.refine.Value()
	if needle == "" {
		p.visible = p.results
		p.cursor = 0
		return
	}

	matches := fuzzy.FindFrom(needle, resultTitles(p.results))
	narrowed := make([]index.SearchResult, len(matches))
	for i, m := range matches {
		narrowed[i] = p.results[m.Index]
	}
	p.visible = narrowed
	p.cursor = 0
}

// yankURL copies the highlighted item's URL to the clipboard.
func (p *Picker) yankURL() {
	if p.cursor >= len(p.visible) {
		return
	}
	it := p.visible[p.cursor].Item
	if it.URL == "" {
		return
	}
	if err := clipboard.WriteAll(it.URL); err != nil {
		p.status = "clipboard unavailable"
		return
	}
	p.status = "copied " + it.URL
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	// Header
	b.WriteString(headerStyle.Render(fmt.Sprintf("Search: %s (%d results)", p.query, len(p.visible))))
	b.WriteString("\n\n")

	if p.refining || p.refine.Value() != "" {
		b.WriteString(p.refine.View())
		b.WriteString("\n\n")
	}

	// List items
	for i, result := range p.visible {
		cursor := "  "
		style := normalStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedStyle
		}

		title := style.Render(result.Item.Title)
		url := urlStyle.Render(result.Item.URL)

		b.WriteString(fmt.Sprintf("%s%s\n", cursor, title))
		b.WriteString(fmt.Sprintf("   %s\n", url))
	}

	// Footer
	b.WriteString("\n")
	footer := "j/k: move  Enter: open  /: refine  Y: yank  q/Esc: cancel"
	if p.status != "" {
		footer = p.status
	}
	b.WriteString(footerStyle.Render(footer))

	return b.String()
}

// SelectedItem returns the selected item, or nil if cancelled.
func (p Picker) SelectedItem() *model.Item {
	if p.cancelled || !p.selected {
		return nil
	}
	if p.cursor < len(p.visible) {
		return p.visible[p.cursor].Item
	}
	return nil
}

// Cancelled returns true if the user cancelled the selection.
func (p Picker) Cancelled() bool {
	return p.cancelled
}
