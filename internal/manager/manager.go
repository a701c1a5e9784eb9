// Package manager owns the canonical bookmark tree and keeps the derived
// index, the persistence cache and the event bus consistent across
// mutations. Query consumers read through the index; the manager is the only
// writer.
package manager

import (
	"errors"
	"fmt"
	"time"

	"github.com/nikbrunner/markdex/internal/cache"
	"github.com/nikbrunner/markdex/internal/event"
	"github.com/nikbrunner/markdex/internal/index"
	"github.com/nikbrunner/markdex/internal/model"
)

// Domain event names emitted through the bus. Payload is the affected item
// id, except for EventChange which carries no payload.
const (
	EventAdd    = "add"
	EventRemove = "remove"
	EventUpdate = "update"
	EventMove   = "move"
	EventChange = "change"
)

var (
	// ErrNotFound is returned for operations on unknown ids.
	ErrNotFound = errors.New("manager: item not found")
	// ErrNotFolder is returned when a bookmark id is used as a parent.
	ErrNotFolder = errors.New("manager: parent is not a folder")
	// ErrCycle is returned when a move would put a folder inside its own
	// subtree.
	ErrCycle = errors.New("manager: move would create a cycle")
)

// Params configures a Manager. Cache and Bus are optional; a nil cache
// disables persistence and a nil bus gets replaced with a private one.
type Params struct {
	Cache *cache.Cache
	Bus   *event.Bus
}

// Manager holds the canonical tree plus its derived structures.
type Manager struct {
	tree  []*model.Item
	index *index.Index
	cache *cache.Cache
	bus   *event.Bus
}

// New creates a manager, hydrating the tree from the cache when one is
// given. An unreadable or absent snapshot starts an empty tree.
func New(params Params) (*Manager, error) {
	m := &Manager{
		index: index.New(),
		cache: params.Cache,
		bus:   params.Bus,
	}
	if m.bus == nil {
		m.bus = event.New()
	}

	if m.cache != nil {
		if payload, ok := m.cache.Load(""); ok {
			var tree []*model.Item
			if err := cache.DecodePayload(payload, &tree); err == nil {
				m.tree = tree
			}
		}
	}

	if err := m.index.Build(m.tree); err != nil {
		return nil, fmt.Errorf("manager: corrupt snapshot: %w", err)
	}
	return m, nil
}

// Tree returns the canonical tree. Callers must not mutate it directly;
// mutations invisible to the index break every derived query.
func (m *Manager) Tree() []*model.Item {
	return m.tree
}

// Index returns the derived index for query consumers.
func (m *Manager) Index() *index.Index {
	return m.index
}

// Bus returns the event bus consumers subscribe on.
func (m *Manager) Bus() *event.Bus {
	return m.bus
}

// Add inserts an item under parentID ("" for root level) and rebuilds the
// index.
func (m *Manager) Add(parentID string, item *model.Item) error {
	if parentID == "" {
		m.tree = append(m.tree, item)
	} else {
		parent := m.index.Get(parentID)
		if parent == nil {
			return ErrNotFound
		}
		if !parent.IsFolder() {
			return ErrNotFolder
		}
		parent.Children = append(parent.Children, item)
	}

	if err := m.index.Build(m.tree); err != nil {
		return err
	}
	m.persist()
	m.bus.Emit(EventAdd, item.ID)
	m.bus.Emit(EventChange, nil)
	return nil
}

// Remove deletes an item and, for folders, its whole subtree.
func (m *Manager) Remove(id string) error {
	if !m.index.Has(id) {
		return ErrNotFound
	}

	parentID := m.index.ParentID(id)
	if parentID == "" {
		m.tree = spliceItem(m.tree, id)
	} else {
		parent := m.index.Get(parentID)
		parent.Children = spliceItem(parent.Children, id)
	}
	m.index.Delete(id, true)

	m.persist()
	m.bus.Emit(EventRemove, id)
	m.bus.Emit(EventChange, nil)
	return nil
}

// Update replaces an item's content in place. The replacement keeps the
// item's id and tree position; structural moves go through Move.
func (m *Manager) Update(id string, updated *model.Item) error {
	old := m.index.Get(id)
	if old == nil {
		return ErrNotFound
	}
	updated.ID = id
	updated.Kind = old.Kind
	updated.Children = old.Children
	updated.CreatedAt = old.CreatedAt
	updated.Touch()

	parentID := m.index.ParentID(id)
	if parentID == "" {
		m.tree = replaceItem(m.tree, id, updated)
	} else {
		parent := m.index.Get(parentID)
		parent.Children = replaceItem(parent.Children, id, updated)
	}
	m.index.Update(id, updated)

	m.persist()
	m.bus.Emit(EventUpdate, id)
	m.bus.Emit(EventChange, nil)
	return nil
}

// Move reparents an item, inserting at position within the new parent's
// children (clamped; negative appends). Rejects moves that would place a
// folder inside its own subtree.
func (m *Manager) Move(id, newParentID string, position int) error {
	item := m.index.Get(id)
	if item == nil {
		return ErrNotFound
	}
	if newParentID != "" {
		newParent := m.index.Get(newParentID)
		if newParent == nil {
			return ErrNotFound
		}
		if !newParent.IsFolder() {
			return ErrNotFolder
		}
	}
	if m.WouldCreateCycle(id, newParentID) {
		return ErrCycle
	}

	oldParentID := m.index.ParentID(id)
	if oldParentID == "" {
		m.tree = spliceItem(m.tree, id)
	} else {
		oldParent := m.index.Get(oldParentID)
		oldParent.Children = spliceItem(oldParent.Children, id)
	}

	if newParentID == "" {
		m.tree = insertItem(m.tree, item, position)
	} else {
		newParent := m.index.Get(newParentID)
		newParent.Children = insertItem(newParent.Children, item, position)
	}

	if err := m.index.Build(m.tree); err != nil {
		return err
	}
	m.persist()
	m.bus.Emit(EventMove, id)
	m.bus.Emit(EventChange, nil)
	return nil
}

// Visit bumps a bookmark's visit bookkeeping and persists it.
func (m *Manager) Visit(id string) error {
	item := m.index.Get(id)
	if item == nil {
		return ErrNotFound
	}
	if item.IsBookmark() {
		item.VisitCount++
		item.LastVisitedAt = time.Now().UnixMilli()
	}
	m.persist()
	m.bus.Emit(EventChange, nil)
	return nil
}

// WouldCreateCycle reports whether putting id under newParentID would make a
// folder (transitively) contain itself.
func (m *Manager) WouldCreateCycle(id, newParentID string) bool {
	if newParentID == "" {
		return false
	}
	if id == newParentID {
		return true
	}
	for _, ancestor := range m.index.ParentIDs(newParentID) {
		if ancestor == id {
			return true
		}
	}
	return false
}

// ImportMerge appends imported items to the root level, skipping bookmarks
// whose URL already exists. Returns the number of bookmarks added and
// skipped.
func (m *Manager) ImportMerge(items []*model.Item) (added, skipped int) {
	for _, it := range items {
		kept, a, s := m.filterImported(it)
		added += a
		skipped += s
		if kept != nil {
			m.tree = append(m.tree, kept)
		}
	}

	if err := m.index.Build(m.tree); err != nil {
		return added, skipped
	}
	m.persist()
	m.bus.Emit(EventChange, nil)
	return added, skipped
}

// filterImported prunes duplicate-URL bookmarks from an imported subtree.
// Folders are kept even when emptied so the imported hierarchy survives.
func (m *Manager) filterImported(it *model.Item) (*model.Item, int, int) {
	switch it.Kind {
	case model.KindBookmark:
		if it.URL != "" && m.index.HasURL(it.URL) {
			return nil, 0, 1
		}
		return it, 1, 0
	case model.KindFolder:
		added, skipped := 0, 0
		kept := make([]*model.Item, 0, len(it.Children))
		for _, child := range it.Children {
			k, a, s := m.filterImported(child)
			added += a
			skipped += s
			if k != nil {
				kept = append(kept, k)
			}
		}
		it.Children = kept
		return it, added, skipped
	default:
		return it, 0, 0
	}
}

// Flush persists the current tree snapshot immediately.
func (m *Manager) Flush() {
	m.persist()
}

func (m *Manager) persist() {
	if m.cache != nil {
		m.cache.Save(m.tree, "")
	}
}

func spliceItem(items []*model.Item, id string) []*model.Item {
	for i, it := range items {
		if it.ID == id {
			return append(items[:i], items[i+1:]...)
		}
	}
	return items
}

func replaceItem(items []*model.Item, id string, updated *model.Item) []*model.Item {
	for i, it := range items {
		if it.ID == id {
			items[i] = updated
			break
		}
	}
	return items
}

func insertItem(items []*model.Item, item *model.Item, position int) []*model.Item {
	if position < 0 || position > len(items) {
		return append(items, item)
	}
	items = append(items, nil)
	copy(items[position+1:], items[position:])
	items[position] = item
	return items
}
