package series

import (
	"github.com/agbru/pseries/internal/container"
	"github.com/agbru/pseries/internal/term"
	"github.com/agbru/pseries/internal/trigkey"
)

type plainEntry[C any] struct {
	key trigkey.Key
	cf  C
}

// plainAccumulator sums product terms by canonical key, hashed with the same
// function as the container's hashed view.
type plainAccumulator[C interface{ Add(C) C }] struct {
	buckets map[uint64][]plainEntry[C]
	order   []uint64
}

func (a *plainAccumulator[C]) add(key trigkey.Key, cf C) {
	h := key.Hash()
	bucket, seen := a.buckets[h]
	for i := range bucket {
		if bucket[i].key.Equal(key) {
			bucket[i].cf = bucket[i].cf.Add(cf)
			return
		}
	}
	if !seen {
		a.order = append(a.order, h)
	}
	a.buckets[h] = append(bucket, plainEntry[C]{key: key, cf: cf})
}

// plain convolves the keys of every pair directly. Each product term is
// made canonical before accumulation, then the buckets are inserted into the
// product in first-seen order.
func (m *multiplication[C]) plain() error {
	acc := plainAccumulator[C]{buckets: make(map[uint64][]plainEntry[C], len(m.x)+len(m.y))}
	push := func(key trigkey.Key, cf C, neg bool) {
		if neg {
			cf = cf.Neg()
		}
		t, _ := term.New(cf, key).Canonical()
		acc.add(t.Key, t.Cf)
	}
	err := m.pairs(func(p, q *operand[C], w werner, cf C) error {
		diff, sum, err := p.key.Convolve(q.key)
		if err != nil {
			return err
		}
		push(diff.WithFlavour(w.cos), cf, w.negDiff)
		push(sum.WithFlavour(w.cos), cf, w.negSum)
		return nil
	})
	if err != nil {
		return err
	}
	for _, h := range acc.order {
		for _, e := range acc.buckets[h] {
			m.out.insert(term.New(e.cf, e.key), container.Add)
		}
	}
	return nil
}
