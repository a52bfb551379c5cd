package history

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"CoinSentry/internal/domain/models"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func isPersistenceErr(err error) bool {
	return errors.Is(err, models.ErrPersistenceFailure)
}

func sampleAt(sym string, i int) models.Sample {
	return models.Sample{
		Symbol:    sym,
		Price:     float64(i),
		Volume:    float64(i) * 10,
		Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Minute),
	}
}

func TestWindowChronological(t *testing.T) {
	s := NewStore(10)
	for i := 0; i < 5; i++ {
		s.Append(sampleAt("BTC", i))
	}

	w := s.Window("BTC", 3)
	if len(w) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(w))
	}
	for i := 1; i < len(w); i++ {
		if !w[i].Timestamp.After(w[i-1].Timestamp) {
			t.Fatalf("window not chronological at %d", i)
		}
	}
	if w[2].Price != 4 {
		t.Fatalf("expected newest price 4, got %v", w[2].Price)
	}
}

func TestCapacityEvictsOldest(t *testing.T) {
	s := NewStore(1440)
	for i := 0; i < 1500; i++ {
		s.Append(sampleAt("BTC", i))
	}

	if got := s.Len("BTC"); got != 1440 {
		t.Fatalf("expected len 1440, got %d", got)
	}
	w := s.Window("BTC", 0)
	if w[0].Price != 60 {
		t.Fatalf("expected oldest price 60, got %v", w[0].Price)
	}
	if w[len(w)-1].Price != 1499 {
		t.Fatalf("expected newest price 1499, got %v", w[len(w)-1].Price)
	}
}

func TestAppendSubstitutesDefaults(t *testing.T) {
	s := NewStore(10)
	s.Append(models.Sample{Symbol: "ETH", Price: 100, Volume: -5})

	w := s.Window("ETH", 1)
	if w[0].Volume != 0 {
		t.Fatalf("expected volume substituted with 0, got %v", w[0].Volume)
	}
	if w[0].Timestamp.IsZero() {
		t.Fatalf("expected timestamp substituted")
	}
}

func TestWindowIsCopy(t *testing.T) {
	s := NewStore(10)
	s.Append(sampleAt("BTC", 1))

	w := s.Window("BTC", 1)
	w[0].Price = -1
	if s.Window("BTC", 1)[0].Price != 1 {
		t.Fatalf("window mutation leaked into buffer")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")

	s := NewStore(10)
	for i := 0; i < 4; i++ {
		s.Append(sampleAt("BTC", i))
	}
	s.Append(sampleAt("ETH", 7))

	if err := s.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	restored := NewStore(10)
	if err := restored.Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if restored.Len("BTC") != 4 || restored.Len("ETH") != 1 {
		t.Fatalf("unexpected lengths after load: %d %d", restored.Len("BTC"), restored.Len("ETH"))
	}
	if restored.Prices("BTC", 1)[0] != 3 {
		t.Fatalf("unexpected newest BTC price after load")
	}
}

func TestLoadMissingFile(t *testing.T) {
	s := NewStore(10)
	if err := s.Load(filepath.Join(t.TempDir(), "absent.json")); err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := writeFile(path, "{not json"); err != nil {
		t.Fatalf("setup: %v", err)
	}

	s := NewStore(10)
	err := s.Load(path)
	if err == nil {
		t.Fatalf("expected error for corrupt snapshot")
	}
	if !isPersistenceErr(err) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}
