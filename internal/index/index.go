package index

import (
	"errors"
	"strings"

	"github.com/nikbrunner/markdex/internal/model"
)

// MaxDepth bounds the build traversal. Well-formed bookmark trees are a few
// levels deep; hitting this limit means the input almost certainly contains
// a folder cycle, so the build aborts instead of recursing forever.
const MaxDepth = 128

// ErrMaxDepth is returned by Build when the tree nests deeper than MaxDepth.
var ErrMaxDepth = errors.New("index: tree exceeds maximum nesting depth")

// Index holds derived lookup maps over a bookmark tree. It is a rebuildable
// view, never the source of truth: the tree stays owned by the caller, and
// the index stores references into it plus id-keyed bookkeeping.
//
// Separators carry no id and are excluded from every map.
type Index struct {
	items    map[string]*model.Item
	parents  map[string]string
	paths    map[string][]string
	tags     map[string]map[string]struct{}
	urls     map[string]string
	children map[string][]string
}

// New creates an empty index.
func New() *Index {
	ix := &Index{}
	ix.reset()
	return ix
}

func (ix *Index) reset() {
	ix.items = make(map[string]*model.Item)
	ix.parents = make(map[string]string)
	ix.paths = make(map[string][]string)
	ix.tags = make(map[string]map[string]struct{})
	ix.urls = make(map[string]string)
	ix.children = make(map[string][]string)
}

// Build clears all derived maps and rebuilds them from a full tree walk.
// Cost is O(n) in item count. Duplicate ids are last-write-wins, matching
// the tree model's uniqueness assumption rather than enforcing it. Returns
// ErrMaxDepth if nesting exceeds MaxDepth, which in practice means the
// caller fed in a cyclic tree.
func (ix *Index) Build(items []*model.Item) error {
	ix.reset()
	if err := ix.buildLevel(items, "", nil, 0); err != nil {
		return err
	}
	// Root-level ids live under the empty key so Children, Descendants and
	// Stats can treat "" as the whole tree.
	ix.children[""] = childIDs(items)
	return nil
}

func (ix *Index) buildLevel(items []*model.Item, parentID string, path []string, depth int) error {
	if depth > MaxDepth {
		return ErrMaxDepth
	}

	for _, it := range items {
		if it.IsSeparator() || it.ID == "" {
			continue
		}

		ix.items[it.ID] = it
		if parentID != "" {
			ix.parents[it.ID] = parentID
		}

		itemPath := make([]string, len(path)+1)
		copy(itemPath, path)
		itemPath[len(path)] = it.ID
		ix.paths[it.ID] = itemPath

		if it.IsBookmark() {
			for _, tag := range it.Tags {
				ix.addTag(tag, it.ID)
			}
			if it.URL != "" {
				// Last write wins on duplicate URLs.
				ix.urls[it.URL] = it.ID
			}
		}

		if it.IsFolder() {
			if err := ix.buildLevel(it.Children, it.ID, itemPath, depth+1); err != nil {
				return err
			}
			ix.children[it.ID] = childIDs(it.Children)
		}
	}
	return nil
}

func childIDs(items []*model.Item) []string {
	ids := make([]string, 0, len(items))
	for _, c := range items {
		if !c.IsSeparator() && c.ID != "" {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

func (ix *Index) addTag(tag, id string) {
	key := strings.ToLower(tag)
	set, ok := ix.tags[key]
	if !ok {
		set = make(map[string]struct{})
		ix.tags[key] = set
	}
	set[id] = struct{}{}
}

func (ix *Index) removeTag(tag, id string) {
	key := strings.ToLower(tag)
	if set, ok := ix.tags[key]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(ix.tags, key)
		}
	}
}

// Get returns the indexed item for id, or nil if absent.
func (ix *Index) Get(id string) *model.Item {
	return ix.items[id]
}

// Has reports whether id is indexed.
func (ix *Index) Has(id string) bool {
	_, ok := ix.items[id]
	return ok
}

// Size returns the number of indexed items.
func (ix *Index) Size() int {
	return len(ix.items)
}

// AllIDs returns every indexed id in unspecified order.
func (ix *Index) AllIDs() []string {
	ids := make([]string, 0, len(ix.items))
	for id := range ix.items {
		ids = append(ids, id)
	}
	return ids
}

// ParentID returns the parent folder id, or "" for root-level and unknown ids.
func (ix *Index) ParentID(id string) string {
	return ix.parents[id]
}

// ParentIDs returns all ancestor ids of id, root first. Empty for root-level
// and unknown ids.
func (ix *Index) ParentIDs(id string) []string {
	var ancestors []string
	for cur := ix.parents[id]; cur != ""; cur = ix.parents[cur] {
		ancestors = append(ancestors, cur)
	}
	// Collected child-to-root; callers expect root-first.
	for i, j := 0, len(ancestors)-1; i < j; i, j = i+1, j-1 {
		ancestors[i], ancestors[j] = ancestors[j], ancestors[i]
	}
	return ancestors
}

// Path returns the id chain from root to id inclusive, or nil if unknown.
func (ix *Index) Path(id string) []string {
	return ix.paths[id]
}

// Update patches the indexed content for id: tag and url entries are diffed
// against the stored item, then the item reference is replaced. Structural
// maps (parents, paths, children) are untouched; moves require a rebuild.
// No-op for unknown ids.
func (ix *Index) Update(id string, item *model.Item) {
	old, ok := ix.items[id]
	if !ok {
		return
	}

	oldTags := tagSet(old.Tags)
	newTags := tagSet(item.Tags)
	for tag := range oldTags {
		if _, keep := newTags[tag]; !keep {
			ix.removeTag(tag, id)
		}
	}
	for tag := range newTags {
		if _, had := oldTags[tag]; !had {
			ix.addTag(tag, id)
		}
	}

	if old.URL != item.URL {
		if old.URL != "" && ix.urls[old.URL] == id {
			delete(ix.urls, old.URL)
		}
		if item.URL != "" {
			ix.urls[item.URL] = id
		}
	}

	ix.items[id] = item
}

func tagSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[strings.ToLower(t)] = struct{}{}
	}
	return set
}

// Delete removes id and all its derived entries. When recursive is true and
// id is a folder, descendants are deleted first (post-order) so each level
// still finds valid bookkeeping for its own children. No-op for unknown ids.
func (ix *Index) Delete(id string, recursive bool) {
	item, ok := ix.items[id]
	if !ok {
		return
	}

	for _, tag := range item.Tags {
		ix.removeTag(tag, id)
	}
	if item.URL != "" && ix.urls[item.URL] == id {
		delete(ix.urls, item.URL)
	}

	if recursive && item.IsFolder() {
		kids := append([]string{}, ix.children[id]...)
		for _, childID := range kids {
			ix.Delete(childID, true)
		}
	}

	// Root-level items have no parents entry; their sibling list is
	// children[""].
	ix.children[ix.parents[id]] = spliceID(ix.children[ix.parents[id]], id)

	delete(ix.items, id)
	delete(ix.parents, id)
	delete(ix.paths, id)
	delete(ix.children, id)
}

// spliceID removes the first occurrence of id, preserving sibling order.
func spliceID(ids []string, id string) []string {
	for i, cur := range ids {
		if cur == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// Clear empties every derived map.
func (ix *Index) Clear() {
	ix.reset()
}
