package engine

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/docufab/docufab/pkg/engine/ast"
)

// parseCache keeps parsed templates keyed by a digest of their source,
// evicting least-recently-used entries past maxSize.
type parseCache struct {
	mu      sync.RWMutex
	entries map[string]*parseEntry
	lru     *list.List
	maxSize int
}

type parseEntry struct {
	key      string
	template *ast.Template
	element  *list.Element
}

func newParseCache(maxSize int) *parseCache {
	return &parseCache{
		entries: make(map[string]*parseEntry),
		lru:     list.New(),
		maxSize: maxSize,
	}
}

// parseKey digests the template source so long documents key cheaply.
func parseKey(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func (c *parseCache) get(key string) (*ast.Template, bool) {
	if c.maxSize == 0 {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	c.mu.Lock()
	c.lru.MoveToFront(entry.element)
	c.mu.Unlock()
	return entry.template, true
}

func (c *parseCache) put(key string, tpl *ast.Template) {
	if c.maxSize == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		entry.template = tpl
		c.lru.MoveToFront(entry.element)
		return
	}
	if c.lru.Len() >= c.maxSize {
		oldest := c.lru.Back()
		if oldest != nil {
			old := oldest.Value.(*parseEntry)
			delete(c.entries, old.key)
			c.lru.Remove(oldest)
		}
	}
	entry := &parseEntry{key: key, template: tpl}
	entry.element = c.lru.PushFront(entry)
	c.entries[key] = entry
}

func (c *parseCache) clear() {
	c.mu.Lock()
	c.entries = make(map[string]*parseEntry)
	c.lru = list.New()
	c.mu.Unlock()
}
