package history

import (
	"sync"
	"time"

	"CoinSentry/internal/domain/models"
)

// DefaultCapacity is one day of minute samples.
const DefaultCapacity = 1440

// Store buffers recent market samples per instrument in fixed-size rings.
// All methods are safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	capacity int
	rings    map[string]*ring
}

func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		capacity: capacity,
		rings:    make(map[string]*ring),
	}
}

// Append folds one sample into the instrument's buffer. Missing volume is
// substituted with zero and a missing timestamp with the current time, so a
// partially malformed sample still lands in history.
func (s *Store) Append(sample models.Sample) {
	if sample.Volume < 0 {
		sample.Volume = 0
	}
	if sample.Timestamp.IsZero() {
		sample.Timestamp = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rings[sample.Symbol]
	if !ok {
		r = newRing(s.capacity)
		s.rings[sample.Symbol] = r
	}
	r.push(sample)
}

// Len returns how many samples are buffered for symbol.
func (s *Store) Len(symbol string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if r, ok := s.rings[symbol]; ok {
		return r.len()
	}
	return 0
}

// Window returns the most recent n samples for symbol in chronological
// order. The slice is a copy; mutating it does not affect the buffer.
func (s *Store) Window(symbol string, n int) []models.Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rings[symbol]
	if !ok {
		return nil
	}
	return r.window(n)
}

// Prices returns the close prices of the most recent n samples.
func (s *Store) Prices(symbol string, n int) []float64 {
	w := s.Window(symbol, n)
	out := make([]float64, len(w))
	for i, smp := range w {
		out[i] = smp.Price
	}
	return out
}

// Volumes returns the volumes of the most recent n samples.
func (s *Store) Volumes(symbol string, n int) []float64 {
	w := s.Window(symbol, n)
	out := make([]float64, len(w))
	for i, smp := range w {
		out[i] = smp.Volume
	}
	return out
}

// Symbols lists instruments with at least one buffered sample.
func (s *Store) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.rings))
	for sym, r := range s.rings {
		if r.len() > 0 {
			out = append(out, sym)
		}
	}
	return out
}
