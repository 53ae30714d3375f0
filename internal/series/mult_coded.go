package series

import (
	"github.com/agbru/pseries/internal/buffer"
	"github.com/agbru/pseries/internal/container"
	"github.com/agbru/pseries/internal/term"
)

// dense accumulates products into two slot arrays, cosines then sines, each
// indexed by code−CodeMin.
func (m *multiplication[C]) dense() error {
	card := m.coder.Cardinality()
	slots, err := m.env.Pool.Acquire(int(2 * card))
	if err != nil {
		return err
	}
	defer m.env.Pool.Release(slots)
	cos, sin := slots[:card], slots[card:]
	codeMin := m.coder.CodeMin()

	add := func(s []buffer.Slot[C], code int64, cf C, neg bool) {
		if neg {
			cf = cf.Neg()
		}
		slot := &s[code-codeMin]
		if !slot.Touched {
			slot.Cf, slot.Touched = cf, true
			return
		}
		slot.Cf = slot.Cf.Add(cf)
	}
	err = m.pairs(func(p, q *operand[C], w werner, cf C) error {
		dst := sin
		if w.cos {
			dst = cos
		}
		add(dst, p.code-q.code, cf, w.negDiff)
		add(dst, p.code+q.code, cf, w.negSum)
		return nil
	})
	if err != nil {
		return err
	}

	scratch := make([]int, m.coder.Width())
	for _, half := range []struct {
		slots []buffer.Slot[C]
		cos   bool
	}{{cos, true}, {sin, false}} {
		for i := range half.slots {
			if !half.slots[i].Touched {
				continue
			}
			if err := m.emit(codeMin+int64(i), half.cos, half.slots[i].Cf, scratch); err != nil {
				return err
			}
		}
	}
	return nil
}

// hashed accumulates products into two maps keyed by code.
func (m *multiplication[C]) hashed() error {
	cos := make(map[int64]C, len(m.x)+len(m.y))
	sin := make(map[int64]C, len(m.x)+len(m.y))

	add := func(acc map[int64]C, code int64, cf C, neg bool) {
		if neg {
			cf = cf.Neg()
		}
		if cur, ok := acc[code]; ok {
			acc[code] = cur.Add(cf)
			return
		}
		acc[code] = cf
	}
	err := m.pairs(func(p, q *operand[C], w werner, cf C) error {
		dst := sin
		if w.cos {
			dst = cos
		}
		add(dst, p.code-q.code, cf, w.negDiff)
		add(dst, p.code+q.code, cf, w.negSum)
		return nil
	})
	if err != nil {
		return err
	}

	scratch := make([]int, m.coder.Width())
	for code, cf := range cos {
		if err := m.emit(code, true, cf, scratch); err != nil {
			return err
		}
	}
	for code, cf := range sin {
		if err := m.emit(code, false, cf, scratch); err != nil {
			return err
		}
	}
	return nil
}

// emit decodes code and inserts the accumulated term into the product.
func (m *multiplication[C]) emit(code int64, cos bool, cf C, scratch []int) error {
	key, err := m.coder.DecodeKey(code, cos, scratch)
	if err != nil {
		return err
	}
	m.out.insert(term.New(cf, key), container.Add)
	return nil
}
