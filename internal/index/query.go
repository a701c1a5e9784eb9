package index

import (
	"sort"
	"strings"

	"github.com/nikbrunner/markdex/internal/model"
)

// DefaultListLimit caps Recent and MostVisited when no limit is given.
const DefaultListLimit = 10

// FindByTag returns the ids carrying the given tag (case-insensitive),
// in unspecified order.
func (ix *Index) FindByTag(tag string) []string {
	set, ok := ix.tags[strings.ToLower(tag)]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}

// FindByTags returns ids carrying every one of the given tags. If any tag is
// wholly unknown the intersection is empty.
func (ix *Index) FindByTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}

	sets := make([]map[string]struct{}, 0, len(tags))
	for _, tag := range tags {
		set, ok := ix.tags[strings.ToLower(tag)]
		if !ok {
			return nil
		}
		sets = append(sets, set)
	}

	// Intersect starting from the smallest set.
	sort.Slice(sets, func(i, j int) bool { return len(sets[i]) < len(sets[j]) })

	var ids []string
	for id := range sets[0] {
		inAll := true
		for _, set := range sets[1:] {
			if _, ok := set[id]; !ok {
				inAll = false
				break
			}
		}
		if inAll {
			ids = append(ids, id)
		}
	}
	return ids
}

// TagCount pairs a tag with the number of items carrying it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// AllTags returns every known tag with its usage count, most used first.
func (ix *Index) AllTags() []TagCount {
	counts := make([]TagCount, 0, len(ix.tags))
	for tag, set := range ix.tags {
		counts = append(counts, TagCount{Tag: tag, Count: len(set)})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Tag < counts[j].Tag
	})
	return counts
}

// FindByURL returns the id of the bookmark with the given URL (verbatim
// match, no normalization), or "".
func (ix *Index) FindByURL(url string) string {
	return ix.urls[url]
}

// HasURL reports whether any indexed bookmark carries the given URL.
func (ix *Index) HasURL(url string) bool {
	_, ok := ix.urls[url]
	return ok
}

// Children returns the direct child ids of a folder in tree order. The empty
// id addresses the root level.
func (ix *Index) Children(parentID string) []string {
	return ix.children[parentID]
}

// Descendants returns every id under parentID in pre-order.
func (ix *Index) Descendants(parentID string) []string {
	var ids []string
	var visit func(string)
	visit = func(id string) {
		for _, childID := range ix.children[id] {
			ids = append(ids, childID)
			visit(childID)
		}
	}
	visit(parentID)
	return ids
}

// SubtreeStats aggregates counts under a folder.
type SubtreeStats struct {
	TotalCount    int `json:"totalCount"`
	BookmarkCount int `json:"bookmarkCount"`
	FolderCount   int `json:"folderCount"`
	Depth         int `json:"depth"`
}

// Stats returns aggregate counts and maximum depth for the subtree under
// parentID; the empty id covers the whole tree. Separators are excluded from
// all counts. Zero stats for unknown or leaf ids.
func (ix *Index) Stats(parentID string) SubtreeStats {
	var stats SubtreeStats
	var visit func(id string, depth int)
	visit = func(id string, depth int) {
		for _, childID := range ix.children[id] {
			child, ok := ix.items[childID]
			if !ok {
				continue
			}
			stats.TotalCount++
			if child.IsFolder() {
				stats.FolderCount++
			} else if child.IsBookmark() {
				stats.BookmarkCount++
			}
			if depth > stats.Depth {
				stats.Depth = depth
			}
			visit(childID, depth+1)
		}
	}
	visit(parentID, 1)
	return stats
}

// AllFolders returns every indexed folder in unspecified order.
func (ix *Index) AllFolders() []*model.Item {
	var folders []*model.Item
	for _, it := range ix.items {
		if it.IsFolder() {
			folders = append(folders, it)
		}
	}
	return folders
}

// AllBookmarks returns every indexed bookmark in unspecified order.
func (ix *Index) AllBookmarks() []*model.Item {
	var bookmarks []*model.Item
	for _, it := range ix.items {
		if it.IsBookmark() {
			bookmarks = append(bookmarks, it)
		}
	}
	return bookmarks
}

// Recent returns up to limit bookmarks ordered by creation time, newest
// first. limit <= 0 falls back to DefaultListLimit.
func (ix *Index) Recent(limit int) []*model.Item {
	bookmarks := ix.AllBookmarks()
	sort.Slice(bookmarks, func(i, j int) bool {
		return bookmarks[i].CreatedAt > bookmarks[j].CreatedAt
	})
	return truncate(bookmarks, limit)
}

// MostVisited returns up to limit bookmarks ordered by visit count, highest
// first. limit <= 0 falls back to DefaultListLimit.
func (ix *Index) MostVisited(limit int) []*model.Item {
	bookmarks := ix.AllBookmarks()
	sort.Slice(bookmarks, func(i, j int) bool {
		return bookmarks[i].VisitCount > bookmarks[j].VisitCount
	})
	return truncate(bookmarks, limit)
}

func truncate(items []*model.Item, limit int) []*model.Item {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}
