package sampler

import "errors"

var (
	// ErrInvalidScope is returned when a scope token or value is not one of
	// per_trial, per_block, per_session.
	ErrInvalidScope = errors.New("sampler: unknown scope")

	// ErrInvalidContextKind is returned by SetContext for a kind other than
	// BlockContext or SessionContext.
	ErrInvalidContextKind = errors.New("sampler: unknown context kind")
)

// Scope controls how long a sampled value stays pinned before it is redrawn.
type Scope int

const (
	// PerTrial draws a fresh value on every resolution.
	PerTrial Scope = iota
	// PerBlock caches the first draw and replays it until the block
	// context changes.
	PerBlock
	// PerSession caches the first draw and replays it until the session
	// context changes.
	PerSession
)

var scopeNames = [...]string{"per_trial", "per_block", "per_session"}

// String returns the canonical token for s ("per_trial", "per_block",
// "per_session"), or "unknown" for out-of-range values.
func (s Scope) String() string {
	if s < PerTrial || s > PerSession {
		return "unknown"
	}
	return scopeNames[s]
}

// ParseScope maps a canonical token to its Scope. Unrecognized tokens fail
// with ErrInvalidScope.
func ParseScope(token string) (Scope, error) {
	for i, name := range scopeNames {
		if name == token {
			return Scope(i), nil
		}
	}
	return 0, wrapf(ErrInvalidScope, "%q", token)
}

// ContextKind selects which caching context SetContext switches.
type ContextKind int

const (
	// BlockContext identifies the per-block caching context.
	BlockContext ContextKind = iota
	// SessionContext identifies the per-session caching context.
	SessionContext
)

// ScopeCache holds sampled values pinned by scope. It keeps two mappings
// keyed by parameter name (one for per_block values, one for per_session
// values) plus the identifier of the current block.
//
// Context switches follow two rules:
//
//   - SetContext(BlockContext, id) clears the block cache only when id
//     differs from the current block; re-entering the same block keeps
//     every pinned value.
//   - SetContext(SessionContext, id) unconditionally clears both caches
//     and forgets the current block.
//
// The zero value is not usable; construct with NewScopeCache.
type ScopeCache struct {
	blockVals   map[string]float64
	sessionVals map[string]float64
	blockID     string
}

// NewScopeCache returns an empty cache with no block context set.
func NewScopeCache() *ScopeCache {
	return &ScopeCache{
		blockVals:   make(map[string]float64),
		sessionVals: make(map[string]float64),
	}
}

// SetContext announces a context switch. Switching to a new block drops
// only per_block values; switching the session drops everything.
//
// Returns ErrInvalidContextKind for an unrecognized kind.
func (c *ScopeCache) SetContext(kind ContextKind, id string) error {
	switch kind {
	case BlockContext:
		if id == c.blockID {
			return nil // same block: keep pinned values
		}
		c.blockID = id
		c.blockVals = make(map[string]float64)
	case SessionContext:
		c.blockID = ""
		c.blockVals = make(map[string]float64)
		c.sessionVals = make(map[string]float64)
	default:
		return wrapf(ErrInvalidContextKind, "%d", int(kind))
	}
	return nil
}

// BlockID reports the identifier passed to the most recent block context
// switch, or "" when no block is active.
func (c *ScopeCache) BlockID() string { return c.blockID }

// GetOrSample resolves one value for name under the given scope.
//
// PerTrial invokes sample on every call. PerBlock and PerSession return the
// cached value when one is pinned; otherwise they invoke sample, pin the
// result, and return it. Sampling errors are returned as-is and nothing is
// cached.
//
// Returns ErrInvalidScope for an out-of-range scope.
func (c *ScopeCache) GetOrSample(name string, scope Scope, sample func() (float64, error)) (float64, error) {
	switch scope {
	case PerTrial:
		return sample()
	case PerBlock:
		if v, ok := c.blockVals[name]; ok {
			return v, nil
		}
		v, err := sample()
		if err != nil {
			return 0, err
		}
		c.blockVals[name] = v
		return v, nil
	case PerSession:
		if v, ok := c.sessionVals[name]; ok {
			return v, nil
		}
		v, err := sample()
		if err != nil {
			return 0, err
		}
		c.sessionVals[name] = v
		return v, nil
	default:
		return 0, wrapf(ErrInvalidScope, "%d", int(scope))
	}
}

// ClearBlockCache drops all per_block values while keeping the per_session
// ones and the current block identifier.
func (c *ScopeCache) ClearBlockCache() {
	c.blockVals = make(map[string]float64)
}

// ClearAll drops every pinned value and forgets the current block, as if
// the cache were freshly constructed.
func (c *ScopeCache) ClearAll() {
	c.blockID = ""
	c.blockVals = make(map[string]float64)
	c.sessionVals = make(map[string]float64)
}
