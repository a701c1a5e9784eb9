package index_test

import (
	"testing"

	"github.com/nikbrunner/markdex/internal/model"
)

func TestFindByTag(t *testing.T) {
	ix := buildIndex(t, testTree())

	ids := ix.FindByTag("git")
	if len(ids) != 1 || ids[0] != "b1" {
		t.Errorf("expected [b1] for tag git, got %v", ids)
	}

	// Tags are matched case-insensitively.
	if len(ix.FindByTag("GIT")) != 1 {
		t.Error("expected case-insensitive tag lookup")
	}

	if len(ix.FindByTag("unknown")) != 0 {
		t.Error("expected empty result for unknown tag")
	}
}

func TestFindByTags_Intersection(t *testing.T) {
	tree := []*model.Item{
		{Kind: model.KindBookmark, ID: "b1", Title: "One", URL: "https://one.example", Tags: []string{"go", "docs"}},
		{Kind: model.KindBookmark, ID: "b2", Title: "Two", URL: "https://two.example", Tags: []string{"go"}},
		{Kind: model.KindBookmark, ID: "b3", Title: "Three", URL: "https://three.example", Tags: []string{"docs"}},
	}
	ix := buildIndex(t, tree)

	ids := ix.FindByTags([]string{"go", "docs"})
	if len(ids) != 1 || ids[0] != "b1" {
		t.Errorf("expected [b1] for go AND docs, got %v", ids)
	}

	// Any wholly unknown tag empties the intersection.
	if len(ix.FindByTags([]string{"go", "missing"})) != 0 {
		t.Error("expected empty result when a tag is unknown")
	}

	if len(ix.FindByTags(nil)) != 0 {
		t.Error("expected empty result for no tags")
	}
}

func TestAllTags_SortedByCount(t *testing.T) {
	tree := []*model.Item{
		{Kind: model.KindBookmark, ID: "b1", Title: "One", URL: "https://one.example", Tags: []string{"go", "docs"}},
		{Kind: model.KindBookmark, ID: "b2", Title: "Two", URL: "https://two.example", Tags: []string{"go"}},
		{Kind: model.KindBookmark, ID: "b3", Title: "Three", URL: "https://three.example", Tags: []string{"go", "docs", "web"}},
	}
	ix := buildIndex(t, tree)

	tags := ix.AllTags()
	if len(tags) != 3 {
		t.Fatalf("expected 3 tags, got %d", len(tags))
	}
	if tags[0].Tag != "go" || tags[0].Count != 3 {
		t.Errorf("expected go(3) first, got %s(%d)", tags[0].Tag, tags[0].Count)
	}
	if tags[1].Tag != "docs" || tags[1].Count != 2 {
		t.Errorf("expected docs(2) second, got %s(%d)", tags[1].Tag, tags[1].Count)
	}
}

func TestFindByURL(t *testing.T) {
	ix := buildIndex(t, testTree())

	if got := ix.FindByURL("https://go.dev"); got != "b2" {
		t.Errorf("expected b2, got %q", got)
	}
	if !ix.HasURL("https://github.com") {
		t.Error("expected HasURL to find github")
	}
	if ix.HasURL("https://unknown.example") {
		t.Error("expected HasURL to miss unknown url")
	}
}

func TestDescendants_PreOrder(t *testing.T) {
	ix := buildIndex(t, testTree())

	ids := ix.Descendants("f1")
	want := []string{"b1", "f2", "b2"}
	if len(ids) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("expected %v, got %v", want, ids)
		}
	}

	if len(ix.Descendants("b1")) != 0 {
		t.Error("expected no descendants for a leaf")
	}
}

func TestStats(t *testing.T) {
	ix := buildIndex(t, testTree())

	stats := ix.Stats("f1")
	if stats.TotalCount != 3 {
		t.Errorf("expected total 3, got %d", stats.TotalCount)
	}
	if stats.BookmarkCount != 2 {
		t.Errorf("expected 2 bookmarks, got %d", stats.BookmarkCount)
	}
	if stats.FolderCount != 1 {
		t.Errorf("expected 1 folder, got %d", stats.FolderCount)
	}
	if stats.Depth != 2 {
		t.Errorf("expected depth 2, got %d", stats.Depth)
	}

	empty := ix.Stats("nonexistent")
	if empty.TotalCount != 0 {
		t.Errorf("expected zero stats for unknown id, got %+v", empty)
	}
}

func TestStats_WholeTree(t *testing.T) {
	ix := buildIndex(t, testTree())

	stats := ix.Stats("")
	if stats.TotalCount != 5 {
		t.Errorf("expected total 5, got %d", stats.TotalCount)
	}
	if stats.BookmarkCount != 3 {
		t.Errorf("expected 3 bookmarks, got %d", stats.BookmarkCount)
	}
	if stats.FolderCount != 2 {
		t.Errorf("expected 2 folders, got %d", stats.FolderCount)
	}
	if stats.Depth != 3 {
		t.Errorf("expected depth 3, got %d", stats.Depth)
	}
}

func TestChildren_RootLevel(t *testing.T) {
	ix := buildIndex(t, testTree())

	roots := ix.Children("")
	want := []string{"f1", "b3"}
	if len(roots) != len(want) {
		t.Fatalf("expected %v, got %v", want, roots)
	}
	for i := range want {
		if roots[i] != want[i] {
			t.Errorf("expected %v, got %v", want, roots)
		}
	}

	// Deleting a root item keeps the root sibling list in sync.
	ix.Delete("f1", true)
	roots = ix.Children("")
	if len(roots) != 1 || roots[0] != "b3" {
		t.Errorf("expected [b3] after delete, got %v", roots)
	}
	if got := ix.Descendants(""); len(got) != 1 || got[0] != "b3" {
		t.Errorf("expected whole-tree descendants [b3], got %v", got)
	}
}

func TestAllFoldersAndBookmarks(t *testing.T) {
	ix := buildIndex(t, testTree())

	if got := len(ix.AllFolders()); got != 2 {
		t.Errorf("expected 2 folders, got %d", got)
	}
	if got := len(ix.AllBookmarks()); got != 3 {
		t.Errorf("expected 3 bookmarks, got %d", got)
	}
}

func TestRecent(t *testing.T) {
	tree := []*model.Item{
		{Kind: model.KindBookmark, ID: "old", Title: "Old", URL: "https://old.example", CreatedAt: 1000},
		{Kind: model.KindBookmark, ID: "new", Title: "New", URL: "https://new.example", CreatedAt: 3000},
		{Kind: model.KindBookmark, ID: "mid", Title: "Mid", URL: "https://mid.example", CreatedAt: 2000},
	}
	ix := buildIndex(t, tree)

	recent := ix.Recent(2)
	if len(recent) != 2 {
		t.Fatalf("expected 2 results, got %d", len(recent))
	}
	if recent[0].ID != "new" || recent[1].ID != "mid" {
		t.Errorf("expected [new mid], got [%s %s]", recent[0].ID, recent[1].ID)
	}
}

func TestMostVisited(t *testing.T) {
	tree := []*model.Item{
		{Kind: model.KindBookmark, ID: "rare", Title: "Rare", URL: "https://rare.example", VisitCount: 1},
		{Kind: model.KindBookmark, ID: "often", Title: "Often", URL: "https://often.example", VisitCount: 42},
	}
	ix := buildIndex(t, tree)

	visited := ix.MostVisited(0)
	if len(visited) != 2 {
		t.Fatalf("expected 2 results, got %d", len(visited))
	}
	if visited[0].ID != "often" {
		t.Errorf("expected often first, got %s", visited[0].ID)
	}
}
