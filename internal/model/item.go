package model

import "time"

// Kind discriminates the item variants. It doubles as the JSON "type" tag
// so stored trees stay readable by other tooling.
type Kind string

const (
	KindBookmark  Kind = "bookmark"
	KindFolder    Kind = "folder"
	KindSeparator Kind = "separator"
)

// Item is a node in the bookmark tree: a bookmark leaf, a folder with
// ordered children, or a separator. Which fields are meaningful depends on
// Kind; code should switch over Kind rather than probe field presence.
type Item struct {
	Kind  Kind   `json:"type"`
	ID    string `json:"id,omitempty"`
	Title string `json:"title,omitempty"`

	// Bookmark fields.
	URL           string   `json:"url,omitempty"`
	Target        string   `json:"target,omitempty"`
	Path          string   `json:"path,omitempty"`
	Description   string   `json:"description,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	VisitCount    int      `json:"visitCount,omitempty"`
	LastVisitedAt int64    `json:"lastVisitedAt,omitempty"`
	Favicon       string   `json:"favicon,omitempty"`

	// Folder fields.
	Children []*Item `json:"children,omitempty"`
	Expanded bool    `json:"expanded,omitempty"`
	Color    string  `json:"color,omitempty"`

	// Shared base fields. Timestamps are Unix milliseconds.
	Pinned    bool           `json:"pinned,omitempty"`
	Hidden    bool           `json:"hidden,omitempty"`
	CreatedAt int64          `json:"createdAt,omitempty"`
	UpdatedAt int64          `json:"updatedAt,omitempty"`
	SortIndex int            `json:"sortIndex,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// IsBookmark reports whether the item is a bookmark leaf.
func (it *Item) IsBookmark() bool { return it.Kind == KindBookmark }

// IsFolder reports whether the item is a folder.
func (it *Item) IsFolder() bool { return it.Kind == KindFolder }

// IsSeparator reports whether the item is a separator marker.
func (it *Item) IsSeparator() bool { return it.Kind == KindSeparator }

// NewBookmarkParams holds parameters for creating a new bookmark item.
type NewBookmarkParams struct {
	Title       string
	URL         string
	Description string
	Tags        []string
}

// NewBookmark creates a bookmark item with generated UUID and timestamps.
func NewBookmark(params NewBookmarkParams) *Item {
	tags := params.Tags
	if tags == nil {
		tags = []string{}
	}
	now := time.Now().UnixMilli()

	return &Item{
		Kind:        KindBookmark,
		ID:          generateUUID(),
		Title:       params.Title,
		URL:         params.URL,
		Description: params.Description,
		Tags:        tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewFolderParams holds parameters for creating a new folder item.
type NewFolderParams struct {
	Title string
	Color string
}

// NewFolder creates an empty folder item with generated UUID and timestamps.
func NewFolder(params NewFolderParams) *Item {
	now := time.Now().UnixMilli()

	return &Item{
		Kind:      KindFolder,
		ID:        generateUUID(),
		Title:     params.Title,
		Color:     params.Color,
		Children:  []*Item{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewSeparator creates a separator marker. Separators carry no id and are
// excluded from every index except positional ordering.
func NewSeparator() *Item {
	return &Item{Kind: KindSeparator}
}

// Touch updates the modification timestamp.
func (it *Item) Touch() {
	it.UpdatedAt = time.Now().UnixMilli()
}
