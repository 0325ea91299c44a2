package wechat

import "sync"

// TokenStore is the session's token cache, keyed by openid. Put fully
// replaces any existing record for the same openid; records are never
// merged. Implementations must be safe for concurrent use, but need not
// coordinate concurrent refreshes for the same openid: the last write wins.
type TokenStore interface {
	Get(openid string) (*TokenRecord, bool)
	Put(record *TokenRecord)
}

// MemoryTokenStore is the default TokenStore: an unbounded in-process map
// with no eviction. Entries live until process exit or overwrite. Nothing
// is shared across processes; multi-instance deployments need an external
// store implementing TokenStore.
type MemoryTokenStore struct {
	mu      sync.RWMutex
	records map[string]*TokenRecord
}

// NewMemoryTokenStore returns an empty in-memory token store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{records: make(map[string]*TokenRecord)}
}

// Get returns the record cached for openid, if any.
func (s *MemoryTokenStore) Get(openid string) (*TokenRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[openid]
	return record, ok
}

// Put stores record under its OpenID, replacing any previous record.
func (s *MemoryTokenStore) Put(record *TokenRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.OpenID] = record
}
