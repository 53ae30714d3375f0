package tui

// sparklineChars maps levels 0..7 to the block elements ▁▂▃▄▅▆▇█.
var sparklineChars = [8]rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// History keeps the most recent percentage samples of one gauge.
type History struct {
	data  []float64
	head  int
	count int
}

// NewHistory creates a history holding up to capacity samples.
func NewHistory(capacity int) *History {
	return &History{data: make([]float64, max(capacity, 1))}
}

// Push adds a sample, dropping the oldest when full.
func (h *History) Push(v float64) {
	h.data[h.head] = v
	h.head = (h.head + 1) % len(h.data)
	if h.count < len(h.data) {
		h.count++
	}
}

// Len returns the number of samples held.
func (h *History) Len() int { return h.count }

// Cap returns the capacity.
func (h *History) Cap() int { return len(h.data) }

// Last returns the most recent sample, or 0 when empty.
func (h *History) Last() float64 {
	if h.count == 0 {
		return 0
	}
	return h.data[(h.head-1+len(h.data))%len(h.data)]
}

// Samples returns the samples oldest first, or nil when empty.
func (h *History) Samples() []float64 {
	if h.count == 0 {
		return nil
	}
	out := make([]float64, h.count)
	start := (h.head - h.count + len(h.data)) % len(h.data)
	for i := range out {
		out[i] = h.data[(start+i)%len(h.data)]
	}
	return out
}

// Resize changes the capacity and keeps the most recent samples that fit.
func (h *History) Resize(capacity int) {
	capacity = max(capacity, 1)
	if capacity == len(h.data) {
		return
	}
	old := h.Samples()
	if len(old) > capacity {
		old = old[len(old)-capacity:]
	}
	h.data = make([]float64, capacity)
	h.head, h.count = 0, 0
	for _, v := range old {
		h.Push(v)
	}
}

// Reset drops every sample.
func (h *History) Reset() {
	h.head, h.count = 0, 0
}

// RenderSparkline draws percentages (clamped to [0, 100]) as block elements.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	runes := make([]rune, len(values))
	for i, v := range values {
		v = min(max(v, 0), 100)
		runes[i] = sparklineChars[min(int(v/100*7), 7)]
	}
	return string(runes)
}
