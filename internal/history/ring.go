package history

import "CoinSentry/internal/domain/models"

// ring is a fixed-capacity FIFO buffer of samples. Once full, each append
// overwrites the oldest entry.
type ring struct {
	buf   []models.Sample
	start int
	size  int
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]models.Sample, capacity)}
}

func (r *ring) push(s models.Sample) {
	if r.size < len(r.buf) {
		r.buf[(r.start+r.size)%len(r.buf)] = s
		r.size++
		return
	}
	r.buf[r.start] = s
	r.start = (r.start + 1) % len(r.buf)
}

func (r *ring) len() int { return r.size }

// window returns the most recent n samples in chronological order.
// n <= 0 or n > size returns everything buffered.
func (r *ring) window(n int) []models.Sample {
	if n <= 0 || n > r.size {
		n = r.size
	}
	out := make([]models.Sample, n)
	first := r.start + r.size - n
	for i := 0; i < n; i++ {
		out[i] = r.buf[(first+i)%len(r.buf)]
	}
	return out
}
