package importer_test

import (
	"strings"
	"testing"

	"github.com/nikbrunner/markdex/internal/importer"
	"github.com/nikbrunner/markdex/internal/model"
)

func TestParseHTML_SingleBookmark(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><A HREF="https://example.com" ADD_DATE="1234567890">Example Site</A>
</DL><p>`

	items, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("expected 1 root item, got %d", len(items))
	}

	b := items[0]
	if !b.IsBookmark() {
		t.Fatalf("expected bookmark, got %s", b.Kind)
	}
	if b.Title != "Example Site" {
		t.Errorf("expected title 'Example Site', got %q", b.Title)
	}
	if b.URL != "https://example.com" {
		t.Errorf("expected URL 'https://example.com', got %q", b.URL)
	}
	if b.ID == "" {
		t.Error("expected non-empty ID")
	}
}

func TestParseHTML_NestedFolders(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><H3 ADD_DATE="1234567890">Development</H3>
    <DL><p>
        <DT><H3 ADD_DATE="1234567890">React</H3>
        <DL><p>
            <DT><A HREF="https://react.dev" ADD_DATE="1234567890">React Docs</A>
        </DL><p>
        <DT><A HREF="https://github.com" ADD_DATE="1234567890">GitHub</A>
    </DL><p>
    <DT><A HREF="https://google.com" ADD_DATE="1234567890">Google</A>
</DL><p>`

	items, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Root level: Development folder + Google bookmark
	if len(items) != 2 {
		t.Fatalf("expected 2 root items, got %d", len(items))
	}

	dev := items[0]
	if !dev.IsFolder() || dev.Title != "Development" {
		t.Fatalf("expected Development folder first, got %s %q", dev.Kind, dev.Title)
	}

	// Development: React folder + GitHub bookmark
	if len(dev.Children) != 2 {
		t.Fatalf("expected 2 children in Development, got %d", len(dev.Children))
	}
	react := dev.Children[0]
	if !react.IsFolder() || react.Title != "React" {
		t.Errorf("expected React folder, got %s %q", react.Kind, react.Title)
	}
	if len(react.Children) != 1 || react.Children[0].Title != "React Docs" {
		t.Error("expected React Docs inside React folder")
	}
	if dev.Children[1].Title != "GitHub" {
		t.Errorf("expected GitHub in Development, got %q", dev.Children[1].Title)
	}

	if items[1].Title != "Google" {
		t.Errorf("expected Google at root, got %q", items[1].Title)
	}
}

func TestParseHTML_EmptyFile(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
</DL><p>`

	items, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected 0 items, got %d", len(items))
	}
}

func TestParseHTML_Timestamps(t *testing.T) {
	// 1234567890 = Fri Feb 13 2009 23:31:30 UTC
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><A HREF="https://example.com" ADD_DATE="1234567890">Test</A>
</DL><p>`

	items, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].CreatedAt != 1234567890000 {
		t.Errorf("expected CreatedAt in milliseconds, got %d", items[0].CreatedAt)
	}
}

func TestParseHTML_MissingHref(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><A ADD_DATE="1234567890">No URL</A>
    <DT><A HREF="https://valid.com" ADD_DATE="1234567890">Valid</A>
</DL><p>`

	items, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Should skip bookmark without HREF, keep valid one
	if len(items) != 1 {
		t.Fatalf("expected 1 item (skip missing href), got %d", len(items))
	}
	if items[0].Title != "Valid" {
		t.Errorf("expected 'Valid' bookmark, got %q", items[0].Title)
	}
}

func TestParseHTML_Tags(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><A HREF="https://go.dev" TAGS="go, docs">Go</A>
</DL><p>`

	items, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	tags := items[0].Tags
	if len(tags) != 2 || tags[0] != "go" || tags[1] != "docs" {
		t.Errorf("expected tags [go docs], got %v", tags)
	}
}

func TestParseHTML_Separator(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><A HREF="https://one.example">One</A>
    <HR>
    <DT><A HREF="https://two.example">Two</A>
</DL><p>`

	items, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(items) != 3 {
		t.Fatalf("expected 3 items including separator, got %d", len(items))
	}
	if items[1].Kind != model.KindSeparator {
		t.Errorf("expected separator between bookmarks, got %s", items[1].Kind)
	}
}
