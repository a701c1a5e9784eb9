package model

// Walk visits every item in document order (depth-first, parents before
// children). The callback receives the item and its nesting depth; returning
// false stops the walk early.
func Walk(items []*Item, fn func(item *Item, depth int) bool) {
	walk(items, 0, fn)
}

func walk(items []*Item, depth int, fn func(*Item, int) bool) bool {
	for _, it := range items {
		if !fn(it, depth) {
			return false
		}
		if it.IsFolder() {
			if !walk(it.Children, depth+1, fn) {
				return false
			}
		}
	}
	return true
}

// CountItems returns the number of non-separator items in the tree.
func CountItems(items []*Item) int {
	count := 0
	Walk(items, func(it *Item, _ int) bool {
		if !it.IsSeparator() {
			count++
		}
		return true
	})
	return count
}

// FindItem returns the item with the given id, or nil if absent.
// Linear scan; the index engine exists for the O(1) path.
func FindItem(items []*Item, id string) *Item {
	var found *Item
	Walk(items, func(it *Item, _ int) bool {
		if it.ID == id && !it.IsSeparator() {
			found = it
			return false
		}
		return true
	})
	return found
}

// Clone returns a deep copy of the tree. Children, tags and meta maps are
// copied; the originals stay untouched.
func Clone(items []*Item) []*Item {
	if items == nil {
		return nil
	}
	out := make([]*Item, len(items))
	for i, it := range items {
		out[i] = cloneItem(it)
	}
	return out
}

func cloneItem(it *Item) *Item {
	cp := *it
	if it.Tags != nil {
		cp.Tags = append([]string{}, it.Tags...)
	}
	if it.Meta != nil {
		cp.Meta = make(map[string]any, len(it.Meta))
		for k, v := range it.Meta {
			cp.Meta[k] = v
		}
	}
	cp.Children = Clone(it.Children)
	return &cp
}
