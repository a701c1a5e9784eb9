package main

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/markdex/internal/cache"
	"github.com/nikbrunner/markdex/internal/config"
	"github.com/nikbrunner/markdex/internal/culler"
	"github.com/nikbrunner/markdex/internal/event"
	"github.com/nikbrunner/markdex/internal/exporter"
	"github.com/nikbrunner/markdex/internal/importer"
	"github.com/nikbrunner/markdex/internal/index"
	"github.com/nikbrunner/markdex/internal/manager"
	"github.com/nikbrunner/markdex/internal/model"
	"github.com/nikbrunner/markdex/internal/picker"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "help", "--help", "-h":
			printHelp()
			return
		case "import":
			if len(os.Args) < 3 {
				fmt.Fprintf(os.Stderr, "Usage: markdex import <file.html>\n")
				os.Exit(1)
			}
			runImport(os.Args[2])
			return
		case "export":
			// Export with optional path
			var outputPath string
			if len(os.Args) >= 3 {
				outputPath = os.Args[2]
			}
			runExport(outputPath)
			return
		case "tags":
			runTags()
			return
		case "recent":
			runRecent(listLimit())
			return
		case "top":
			runMostVisited(listLimit())
			return
		case "stats":
			runStats()
			return
		case "check":
			runCheck()
			return
		default:
			// Treat as search query (join all remaining args)
			query := strings.Join(os.Args[1:], " ")
			runQuickSearch(query)
			return
		}
	}

	printHelp()
}

func printHelp() {
	help := `markdex - indexed bookmark store

Usage:
  markdex <query>           Quick search → select → open
  markdex import <file>     Import bookmarks from HTML
  markdex export [path]     Export bookmarks to HTML
  markdex tags              List tags by usage
  markdex recent [n]        Most recently added bookmarks
  markdex top [n]           Most visited bookmarks
  markdex stats             Tree and cache statistics
  markdex check             Find dead bookmark links
  markdex help              Show this help

Picker Keybindings:
  j/k         Move down/up
  Enter       Open bookmark
  /           Refine results
  Y           Copy URL to clipboard
  q/Esc       Cancel

Data Storage:
  ~/.config/markdex/markdex.db
  ~/.config/markdex/config.json
`
	fmt.Print(help)
}

// listLimit reads an optional numeric arg for list subcommands.
func listLimit() int {
	if len(os.Args) >= 3 {
		if n, err := strconv.Atoi(os.Args[2]); err == nil && n > 0 {
			return n
		}
	}
	return index.DefaultListLimit
}

// loadConfig reads the user config, falling back to defaults on any error.
func loadConfig() config.Config {
	path, err := config.DefaultPath()
	if err != nil {
		return config.Default()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
		os.Exit(1)
	}
	return *cfg
}

// openStore wires the cache-backed manager. The returned cache is shared so
// callers can report stats.
func openStore(cfg config.Config) (*manager.Manager, *cache.Cache) {
	backend, err := cache.OpenBackend()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening storage: %v\n", err)
		os.Exit(1)
	}

	store := cache.New(cfg.CacheConfig(), backend)
	mgr, err := manager.New(manager.Params{Cache: store, Bus: event.New()})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading bookmarks: %v\n", err)
		os.Exit(1)
	}
	return mgr, store
}

// runQuickSearch searches the index and opens the selected bookmark.
func runQuickSearch(query string) {
	cfg := loadConfig()
	mgr, _ := openStore(cfg)

	results := mgr.Index().Search(query, index.SearchOptions{
		Fuzzy:         true,
		BookmarksOnly: true,
		Limit:         cfg.SearchLimit,
	})

	if len(results) == 0 {
		fmt.Printf("No bookmarks found for '%s'\n", query)
		os.Exit(0)
	}

	var selected *model.Item

	if len(results) == 1 {
		// Single result - select it directly
		selected = results[0].Item
		fmt.Printf("Opening: %s\n", selected.Title)
	} else {
		// Multiple results - show picker
		p := picker.New(results, query)
		program := tea.NewProgram(p)
		finalModel, err := program.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error running picker: %v\n", err)
			os.Exit(1)
		}

		finalPicker := finalModel.(picker.Picker)
		if finalPicker.Cancelled() {
			os.Exit(0)
		}
		selected = finalPicker.SelectedItem()
	}

	if selected == nil {
		os.Exit(0)
	}

	// Record the visit before opening
	if err := mgr.Visit(selected.ID); err != nil {
		fmt.Fprintf(os.Stderr, "Error recording visit: %v\n", err)
	}
	mgr.Flush()

	openURL(selected.URL)
}

// openURL opens a URL in the default browser.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	}
	if cmd != nil {
		_ = cmd.Start()
	}
}

// runImport handles the import subcommand.
func runImport(filePath string) {
	mgr, _ := openStore(loadConfig())

	file, err := os.Open(filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	items, err := importer.ParseHTMLBookmarks(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing HTML: %v\n", err)
		os.Exit(1)
	}

	added, skipped := mgr.ImportMerge(items)
	mgr.Flush()

	fmt.Printf("Imported %d bookmarks", added)
	if skipped > 0 {
		fmt.Printf(" (%d duplicates skipped)", skipped)
	}
	fmt.Println()
}

// runExport handles the export subcommand.
func runExport(outputPath string) {
	if outputPath == "" {
		var err error
		outputPath, err = exporter.DefaultExportPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting default export path: %v\n", err)
			os.Exit(1)
		}
	}

	mgr, _ := openStore(loadConfig())

	html := exporter.ExportHTML(mgr.Tree())

	if err := os.WriteFile(outputPath, []byte(html), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	stats := mgr.Index().Stats("")
	fmt.Printf("Exported %d bookmarks, %d folders to %s\n",
		stats.BookmarkCount, stats.FolderCount, outputPath)
}

// runTags lists all tags by usage count.
func runTags() {
	mgr, _ := openStore(loadConfig())

	tags := mgr.Index().AllTags()
	if len(tags) == 0 {
		fmt.Println("No tags")
		return
	}
	for _, tc := range tags {
		fmt.Printf("%4d  %s\n", tc.Count, tc.Tag)
	}
}

// runRecent lists the most recently added bookmarks.
func runRecent(limit int) {
	mgr, _ := openStore(loadConfig())

	for _, b := range mgr.Index().Recent(limit) {
		fmt.Printf("%s\n    %s\n", b.Title, b.URL)
	}
}

// runMostVisited lists bookmarks by visit count.
func runMostVisited(limit int) {
	mgr, _ := openStore(loadConfig())

	for _, b := range mgr.Index().MostVisited(limit) {
		fmt.Printf("%4d  %s\n      %s\n", b.VisitCount, b.Title, b.URL)
	}
}

// runCheck probes every bookmark URL and reports dead or unreachable links.
func runCheck() {
	cfg := loadConfig()
	mgr, _ := openStore(cfg)

	bookmarks := mgr.Index().AllBookmarks()
	if len(bookmarks) == 0 {
		fmt.Println("No bookmarks to check")
		return
	}

	fmt.Printf("Checking %d bookmarks...\n", len(bookmarks))
	results := culler.CheckURLs(bookmarks, 8, 10*time.Second, cfg.CullExcludeDomains,
		func(completed, total int) {
			fmt.Printf("\r%d/%d", completed, total)
		})
	fmt.Println()

	var dead, unreachable int
	for _, r := range results {
		switch r.Status {
		case culler.Dead:
			dead++
			fmt.Printf("DEAD %d  %s\n         %s\n", r.StatusCode, r.Item.Title, r.Item.URL)
		case culler.Unreachable:
			unreachable++
			fmt.Printf("WARN %-4s %s\n         %s\n", r.Error, r.Item.Title, r.Item.URL)
		}
	}
	fmt.Printf("%d healthy, %d dead, %d unreachable\n",
		len(results)-dead-unreachable, dead, unreachable)
}

// runStats prints tree and cache statistics.
func runStats() {
	mgr, store := openStore(loadConfig())

	tree := mgr.Index().Stats("")
	fmt.Printf("Bookmarks:  %d\n", tree.BookmarkCount)
	fmt.Printf("Folders:    %d\n", tree.FolderCount)
	fmt.Printf("Max depth:  %d\n", tree.Depth)

	cs := store.GetStats()
	fmt.Printf("Cache:      %d/%d entries, %.0f%% hit rate, ~%d bytes\n",
		cs.Size, cs.MaxSize, cs.HitRate*100, cs.MemoryUsage)
}
