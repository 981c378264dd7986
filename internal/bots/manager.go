package bots

import (
	"sort"
	"sync"
	"time"

	"github.com/PhucNguyen204/OneBot_V2/pkg/onebot"
)

// Record describes a bot identity and last seen metadata
type Record struct {
	Platform  string    `json:"platform"`
	BotUserID string    `json:"bot_user_id"`
	LastSeen  time.Time `json:"last_seen"`
}

func (r Record) key() string { return r.Platform + "/" + r.BotUserID }

// Manager keeps bot records in-memory with concurrent access protection
type Manager struct {
	mu         sync.RWMutex
	items      map[string]Record
	defaultTTL time.Duration
}

// New creates a new bot manager
func New(ttl time.Duration) *Manager {
	return &Manager{items: make(map[string]Record), defaultTTL: ttl}
}

// Upsert inserts or updates a bot record
func (m *Manager) Upsert(rec Record) {
	if rec.BotUserID == "" {
		return
	}
	if rec.LastSeen.IsZero() {
		rec.LastSeen = time.Now().UTC()
	}
	m.mu.Lock()
	m.items[rec.key()] = rec
	m.mu.Unlock()
}

// Get returns a record by platform and bot user id
func (m *Manager) Get(platform, botUserID string) (Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.items[Record{Platform: platform, BotUserID: botUserID}.key()]
	return r, ok
}

// List returns up to limit newest bots ordered by LastSeen desc
func (m *Manager) List(limit int) []Record {
	m.mu.RLock()
	out := make([]Record, 0, len(m.items))
	for _, v := range m.items {
		out = append(out, v)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].LastSeen.After(out[j].LastSeen) })
	if limit > 0 && len(out) > limit {
		return out[:limit]
	}
	return out
}

// Cleanup removes bots not seen within ttl (ttl <= 0 uses defaultTTL; both 0 = no-op)
func (m *Manager) Cleanup(ttl time.Duration) int {
	effective := ttl
	if effective <= 0 {
		effective = m.defaultTTL
	}
	if effective <= 0 {
		return 0
	}
	cutoff := time.Now().UTC().Add(-effective)
	removed := 0
	m.mu.Lock()
	for k, v := range m.items {
		if v.LastSeen.Before(cutoff) {
			delete(m.items, k)
			removed++
		}
	}
	m.mu.Unlock()
	return removed
}

// FromSelf builds a Record from an event self block
func FromSelf(self onebot.Self) Record {
	return Record{Platform: self.Platform, BotUserID: self.UserID, LastSeen: time.Now().UTC()}
}
