package trigkey

import (
	"math"
	"math/cmplx"
	"sync"

	"github.com/agbru/pseries/internal/symbol"
)

// ExpCache memoizes exp(i·n·arg_j(t)) for one time t. Powers are grown
// lazily by repeated multiplication, so evaluating many keys that share
// multipliers costs one complex product per new power instead of a sin/cos
// pair per key. It is safe for concurrent use.
type ExpCache struct {
	mu   sync.Mutex
	t    float64
	base []complex128
	pos  [][]complex128
	neg  [][]complex128
}

// NewExpCache prepares a cache for the arguments at time t.
func NewExpCache(t float64, args symbol.Vector) *ExpCache {
	c := &ExpCache{
		t:    t,
		base: make([]complex128, len(args)),
		pos:  make([][]complex128, len(args)),
		neg:  make([][]complex128, len(args)),
	}
	for j, s := range args {
		a := s.Eval(t)
		c.base[j] = complex(math.Cos(a), math.Sin(a))
		c.pos[j] = []complex128{1, c.base[j]}
		c.neg[j] = []complex128{1, cmplx.Conj(c.base[j])}
	}
	return c
}

// Time returns the evaluation time of the cache.
func (c *ExpCache) Time() float64 { return c.t }

// Exp returns exp(i·n·arg_j(t)).
func (c *ExpCache) Exp(j, n int) complex128 {
	c.mu.Lock()
	defer c.mu.Unlock()
	powers := &c.pos[j]
	step := c.base[j]
	if n < 0 {
		n = -n
		powers = &c.neg[j]
		step = cmplx.Conj(step)
	}
	for len(*powers) <= n {
		last := (*powers)[len(*powers)-1]
		*powers = append(*powers, last*step)
	}
	return (*powers)[n]
}
