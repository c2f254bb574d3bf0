package authgate

import (
	"context"
	"sync"

	"github.com/goliatone/go-errors"
)

// IdentityRecord is the last-known-good identity shape kept by the fallback
// store: enough to authenticate a login and stamp roles into a token.
type IdentityRecord struct {
	Subject      string
	PasswordHash string
	Roles        []string
}

func (r IdentityRecord) clone() IdentityRecord {
	r.Roles = append([]string(nil), r.Roles...)
	return r
}

// FallbackIdentityStore wraps the remote identity lookup with a
// process-local cache of last-known-good records plus one operator record
// that authenticates even when every backing service is down.
//
// This is a break-glass mechanism, not a cache-consistency feature: records
// never expire, growth is unbounded by design, and instances are never
// synchronized with each other. Inject one per process; never share it as a
// package global.
type FallbackIdentityStore struct {
	mu       sync.RWMutex
	records  map[string]IdentityRecord
	remote   IdentityProvider
	operator IdentityRecord
	logger   Logger
}

type FallbackOption func(*FallbackIdentityStore)

func WithFallbackLogger(logger Logger) FallbackOption {
	return func(s *FallbackIdentityStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewFallbackIdentityStore seeds the store with the operator record. The
// remote provider may be nil, leaving only cached and operator identities,
// the fully-degraded configuration.
func NewFallbackIdentityStore(remote IdentityProvider, operator IdentityRecord, opts ...FallbackOption) *FallbackIdentityStore {
	s := &FallbackIdentityStore{
		records:  make(map[string]IdentityRecord),
		remote:   remote,
		operator: operator.clone(),
		logger:   defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Lookup resolves a subject: local cache first, then the remote provider
// (caching on success), then the operator record when the remote path fails
// and the subject matches the configured operator name.
func (s *FallbackIdentityStore) Lookup(ctx context.Context, subject string) (*IdentityRecord, error) {
	s.mu.RLock()
	record, ok := s.records[subject]
	s.mu.RUnlock()
	if ok {
		record = record.clone()
		return &record, nil
	}

	if s.remote != nil {
		remote, err := s.remote.FindIdentityBySubject(ctx, subject)
		if err == nil && remote != nil {
			s.Cache(*remote)
			cached := remote.clone()
			return &cached, nil
		}

		if errors.Is(err, ErrIdentityNotFound) {
			return nil, ErrIdentityNotFound
		}

		s.logger.Warn("remote identity lookup failed, trying break-glass operator",
			"subject", subject, "error", err)
	}

	if subject == s.operator.Subject && s.operator.Subject != "" {
		s.logger.Warn("break-glass operator identity used", "subject", subject)
		op := s.operator.clone()
		return &op, nil
	}

	return nil, ErrIdentityNotFound
}

// Cache inserts or overwrites a record by subject. Safe for concurrent use
// from request-handling goroutines.
func (s *FallbackIdentityStore) Cache(record IdentityRecord) {
	if record.Subject == "" {
		return
	}
	s.mu.Lock()
	s.records[record.Subject] = record.clone()
	s.mu.Unlock()
}

// Len reports the number of cached records, operator excluded.
func (s *FallbackIdentityStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
