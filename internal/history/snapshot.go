package history

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"CoinSentry/internal/domain/models"
)

type snapshotSample struct {
	Price     float64   `json:"price"`
	Volume    float64   `json:"volume"`
	Timestamp time.Time `json:"timestamp"`
}

// Save writes the buffered history of every instrument to path as JSON.
// The file is written atomically via a temp file rename.
func (s *Store) Save(path string) error {
	s.mu.RLock()
	snap := make(map[string][]snapshotSample, len(s.rings))
	for sym, r := range s.rings {
		w := r.window(0)
		recs := make([]snapshotSample, len(w))
		for i, smp := range w {
			recs[i] = snapshotSample{Price: smp.Price, Volume: smp.Volume, Timestamp: smp.Timestamp}
		}
		snap[sym] = recs
	}
	s.mu.RUnlock()

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("%w: encode snapshot: %v", models.ErrPersistenceFailure, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: write snapshot: %v", models.ErrPersistenceFailure, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: rename snapshot: %v", models.ErrPersistenceFailure, err)
	}
	return nil
}

// Load restores history from a snapshot written by Save. A missing file is
// not an error; the store simply starts empty. A corrupt file returns a
// persistence error and leaves the store untouched.
func (s *Store) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: read snapshot: %v", models.ErrPersistenceFailure, err)
	}

	var snap map[string][]snapshotSample
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("%w: decode snapshot: %v", models.ErrPersistenceFailure, err)
	}

	for sym, recs := range snap {
		for _, rec := range recs {
			s.Append(models.Sample{
				Symbol:    sym,
				Price:     rec.Price,
				Volume:    rec.Volume,
				Timestamp: rec.Timestamp,
			})
		}
	}
	return nil
}
