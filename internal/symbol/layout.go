package symbol

// Slot describes where an output position of a merged argument vector takes
// its value from: position Index of the original vector when Found, zero
// otherwise.
type Slot struct {
	Found bool
	Index int
}

// Layout maps every position of a merged argument vector to its source.
type Layout []Slot

// GetLayout computes the layout that rewrites data expressed over v1 so that
// it is expressed over the union of v1 and v2, with v2 as a prefix. Positions
// of v2 come first, each marked found or not found in v1; symbols of v1
// missing from v2 are appended in their original order.
func GetLayout(v1, v2 Vector) Layout {
	l := make(Layout, len(v2), len(v1)+len(v2))
	for i, s := range v2 {
		if j := v1.Index(s.name); j >= 0 {
			l[i] = Slot{Found: true, Index: j}
		}
	}
	for j, s := range v1 {
		if v2.Index(s.name) < 0 {
			l = append(l, Slot{Found: true, Index: j})
		}
	}
	return l
}

// IsIdentity reports whether applying l to data of width n changes nothing
// apart from zero padding.
func (l Layout) IsIdentity(n int) bool {
	for i, s := range l {
		if i < n && (!s.Found || s.Index != i) {
			return false
		}
		if i >= n && s.Found {
			return false
		}
	}
	return len(l) >= n
}

// Merge builds the merged argument vector: found positions take v1's symbol,
// the others take v2's.
func (l Layout) Merge(v1, v2 Vector) Vector {
	out := make(Vector, len(l))
	for i, s := range l {
		if s.Found {
			out[i] = v1[s.Index]
		} else {
			out[i] = v2[i]
		}
	}
	return out
}

// Apply rewrites src according to l, leaving unmapped positions at the zero
// value. Source positions beyond len(src) are treated as zero.
func Apply[T any](l Layout, src []T) []T {
	out := make([]T, len(l))
	for i, s := range l {
		if s.Found && s.Index < len(src) {
			out[i] = src[s.Index]
		}
	}
	return out
}

// Prepend returns the layout that inserts n zero positions in front of data
// of width w.
func Prepend(n, w int) Layout {
	l := make(Layout, n+w)
	for i := 0; i < w; i++ {
		l[n+i] = Slot{Found: true, Index: i}
	}
	return l
}
