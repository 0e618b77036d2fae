package randstream

import (
	"encoding/binary"
	"errors"
	"hash/fnv"
	"math/rand"
)

// ErrStreamNotFound is returned by ResetStream for a name that was never used.
var ErrStreamNotFound = errors.New("randstream: stream not found")

// Linear-congruential step constants (Knuth MMIX). The counter walk is the
// collision guard: even if two names hash identically, the counter value mixed
// into each derivation differs.
const (
	lcgMultiplier uint64 = 6364136223846793005
	lcgIncrement  uint64 = 1442695040888963407
)

// SeedRecord captures the full seed state of a Manager for audits. StreamSeeds
// is a copy; mutating it does not affect the Manager.
type SeedRecord struct {
	MasterSeed  int64            `json:"master_seed"`
	StreamSeeds map[string]int64 `json:"stream_seeds"`
}

// Manager owns the named stream registry for one session.
type Manager struct {
	masterSeed int64
	counter    uint64
	seeds      map[string]int64
	streams    map[string]*rand.Rand
}

// New returns a Manager rooted at masterSeed. Identical master seeds yield
// identical derivations for identical request orders.
func New(masterSeed int64) *Manager {
	return &Manager{
		masterSeed: masterSeed,
		counter:    initialCounter(masterSeed),
		seeds:      make(map[string]int64),
		streams:    make(map[string]*rand.Rand),
	}
}

// MasterSeed reports the seed the Manager was created with.
func (m *Manager) MasterSeed() int64 { return m.masterSeed }

// DeriveSeed returns the seed for name, deriving and caching it on first use.
// Derivation hashes name together with the master seed (FNV-1a), folds in the
// running counter, then advances the counter by the LCG step.
func (m *Manager) DeriveSeed(name string) int64 {
	if seed, ok := m.seeds[name]; ok {
		return seed
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(m.masterSeed))
	_, _ = h.Write(buf[:])

	seed := int64(h.Sum64() ^ m.counter)
	m.counter = m.counter*lcgMultiplier + lcgIncrement

	m.seeds[name] = seed

	return seed
}

// Stream returns the stream registered under name, creating it from the
// derived seed on first use. The returned stream is stateful: repeated calls
// hand back the same object, advanced by however much has been drawn.
func (m *Manager) Stream(name string) *rand.Rand {
	if s, ok := m.streams[name]; ok {
		return s
	}
	s := rand.New(rand.NewSource(m.DeriveSeed(name)))
	m.streams[name] = s

	return s
}

// ResetStream rewinds the named stream to its originally derived seed. The
// stream object is reseeded in place, so existing references observe the
// reset. Draws after the reset reproduce the draws made right after the
// stream's creation. Returns ErrStreamNotFound for a name that was never
// derived.
func (m *Manager) ResetStream(name string) error {
	seed, ok := m.seeds[name]
	if !ok {
		return ErrStreamNotFound
	}
	if s, exists := m.streams[name]; exists {
		s.Seed(seed)
	} else {
		// Seed was derived via DeriveSeed but the stream was never built.
		m.streams[name] = rand.New(rand.NewSource(seed))
	}

	return nil
}

// SeedRecord snapshots the master seed and all derived stream seeds.
func (m *Manager) SeedRecord() SeedRecord {
	seeds := make(map[string]int64, len(m.seeds))
	for name, seed := range m.seeds {
		seeds[name] = seed
	}

	return SeedRecord{MasterSeed: m.masterSeed, StreamSeeds: seeds}
}

// ClearAll drops every stream and cached seed, keeps the master seed, and
// resets the derivation counter to its master-seed-derived initial value.
// After ClearAll, repeating the original request order reproduces the
// original seeds exactly.
func (m *Manager) ClearAll() {
	m.counter = initialCounter(m.masterSeed)
	m.seeds = make(map[string]int64)
	m.streams = make(map[string]*rand.Rand)
}

// initialCounter maps the master seed onto the counter's starting point.
func initialCounter(masterSeed int64) uint64 {
	return uint64(masterSeed)*lcgMultiplier + lcgIncrement
}
