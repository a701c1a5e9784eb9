package cache

// lruNode is a doubly-linked-list node pairing a key with its entry.
// head = most recently used, tail = least recently used.
type lruNode struct {
	key   string
	entry *Entry
	size  int // serialized payload estimate in bytes
	prev  *lruNode
	next  *lruNode
}

// lruList combines a doubly linked list with a key map so that lookup,
// promotion and eviction are all O(1).
type lruList struct {
	maxSize int
	nodes   map[string]*lruNode
	head    *lruNode
	tail    *lruNode
}

func newLRUList(maxSize int) *lruList {
	return &lruList{
		maxSize: maxSize,
		nodes:   make(map[string]*lruNode),
	}
}

func (l *lruList) len() int {
	return len(l.nodes)
}

// set inserts or updates an entry and promotes it to head. When the insert
// pushes the list over maxSize, exactly one tail eviction restores the bound.
func (l *lruList) set(key string, entry *Entry, size int) {
	if node, ok := l.nodes[key]; ok {
		node.entry = entry
		node.size = size
		l.moveToHead(node)
		return
	}

	node := &lruNode{key: key, entry: entry, size: size}
	l.nodes[key] = node
	l.addToHead(node)

	if len(l.nodes) > l.maxSize {
		l.evict()
	}
}

// get returns the entry for key and promotes its node to head.
func (l *lruList) get(key string) (*Entry, bool) {
	node, ok := l.nodes[key]
	if !ok {
		return nil, false
	}
	l.moveToHead(node)
	return node.entry, true
}

// peek returns the entry without touching LRU order.
func (l *lruList) peek(key string) (*Entry, bool) {
	node, ok := l.nodes[key]
	if !ok {
		return nil, false
	}
	return node.entry, true
}

func (l *lruList) delete(key string) bool {
	node, ok := l.nodes[key]
	if !ok {
		return false
	}
	l.removeNode(node)
	delete(l.nodes, key)
	return true
}

func (l *lruList) clear() {
	l.nodes = make(map[string]*lruNode)
	l.head = nil
	l.tail = nil
}

// keys returns all keys from most to least recently used.
func (l *lruList) keys() []string {
	keys := make([]string, 0, len(l.nodes))
	for node := l.head; node != nil; node = node.next {
		keys = append(keys, node.key)
	}
	return keys
}

// memoryUsage sums the serialized-size estimates, doubled to account for
// wide-character string representation.
func (l *lruList) memoryUsage() int {
	total := 0
	for node := l.head; node != nil; node = node.next {
		total += node.size * 2
	}
	return total
}

// evict drops the tail (least recently used) node.
func (l *lruList) evict() {
	if l.tail == nil {
		return
	}
	evicted := l.tail
	l.removeNode(evicted)
	delete(l.nodes, evicted.key)
}

func (l *lruList) addToHead(node *lruNode) {
	node.prev = nil
	node.next = l.head
	if l.head != nil {
		l.head.prev = node
	}
	l.head = node
	if l.tail == nil {
		l.tail = node
	}
}

func (l *lruList) removeNode(node *lruNode) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}
	node.prev = nil
	node.next = nil
}

func (l *lruList) moveToHead(node *lruNode) {
	if l.head == node {
		return
	}
	l.removeNode(node)
	l.addToHead(node)
}
