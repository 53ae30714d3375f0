package glr

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	apperrors "github.com/agbru/pseries/internal/errors"
	"github.com/agbru/pseries/internal/trigkey"
)

func limitsOf(keys ...trigkey.Key) Limits {
	l := NewLimits(keys[0].Width())
	for _, k := range keys {
		l.Observe(k)
	}
	return l
}

func TestSingleArgumentRange(t *testing.T) {
	t.Parallel()
	l := limitsOf(trigkey.Cos(-2), trigkey.Cos(2))
	c := New(l, l)
	if !c.Viable() {
		t.Fatal("a [-2,2] x [-2,2] product must be viable")
	}
	if lo, hi := c.Range(0); lo != -4 || hi != 4 {
		t.Fatalf("Range(0) = [%d,%d], want [-4,4]", lo, hi)
	}
	if c.Cardinality() != 9 || c.CodeMin() != -4 || c.CodeMax() != 4 {
		t.Fatalf("cardinality %d codes [%d,%d]", c.Cardinality(), c.CodeMin(), c.CodeMax())
	}
	dst := make([]int, 1)
	for code := c.CodeMin(); code <= c.CodeMax(); code++ {
		c.Decode(code, dst)
		if dst[0] < -4 || dst[0] > 4 {
			t.Errorf("Decode(%d) = %d, outside [-4,4]", code, dst[0])
		}
	}
}

func TestMixedRadix(t *testing.T) {
	t.Parallel()
	l1 := limitsOf(trigkey.Cos(0, -1), trigkey.Cos(1, 1))
	l2 := limitsOf(trigkey.Cos(0, 0), trigkey.Sin(2, 0))
	c := New(l1, l2)
	// dim 0: candidates {0,1,0,2,3,0,1,-2} -> [-2,3]; dim 1: {-1,1,0,0,1,-1,1,-1} -> [-1,1]
	if lo, hi := c.Range(0); lo != -2 || hi != 3 {
		t.Errorf("Range(0) = [%d,%d]", lo, hi)
	}
	if lo, hi := c.Range(1); lo != -1 || hi != 1 {
		t.Errorf("Range(1) = [%d,%d]", lo, hi)
	}
	if c.Cardinality() != 18 {
		t.Errorf("Cardinality = %d, want 18", c.Cardinality())
	}
	if c.CodeMax()-c.CodeMin() != c.Cardinality()-1 {
		t.Error("code span must equal cardinality - 1")
	}

	a, b := trigkey.Cos(1, 1), trigkey.Cos(2, 0)
	diff, sum, err := a.Convolve(b)
	if err != nil {
		t.Fatal(err)
	}
	if c.Encode(a)+c.Encode(b) != c.Encode(sum) || c.Encode(a)-c.Encode(b) != c.Encode(diff) {
		t.Error("codes must be linear")
	}
}

func TestNotViable(t *testing.T) {
	t.Parallel()
	exps := make([]int16, 12)
	lo, hi := make([]int16, 12), make([]int16, 12)
	for i := range exps {
		lo[i], hi[i] = -3000, 3000
	}
	l := limitsOf(trigkey.Cos(lo...), trigkey.Cos(hi...))
	c := New(l, l)
	if c.Viable() {
		t.Fatal("twelve dimensions of width 12001 cannot fit an int64")
	}
	if c.Cardinality() != 0 {
		t.Error("non-viable coder reports zero cardinality")
	}
	defer func() {
		if recover() == nil {
			t.Error("Encode on a non-viable coder must panic")
		}
	}()
	c.Encode(trigkey.Cos(exps...))
}

func TestDecodeKeyOverflow(t *testing.T) {
	t.Parallel()
	l := limitsOf(trigkey.Cos(trigkey.MaxExponent), trigkey.Cos(0))
	c := New(l, l)
	_, err := c.DecodeKey(c.CodeMax(), true, make([]int, 1))
	if !errors.Is(err, apperrors.ErrCapacity) {
		t.Errorf("DecodeKey beyond int16 = %v, want ErrCapacity", err)
	}
}

func TestRoundTrip_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	genKey := gen.SliceOfN(3, gen.Int16Range(-20, 20)).Map(func(e []int16) trigkey.Key {
		return trigkey.Cos(e...)
	})

	properties.Property("decode(encode(e)) == e for operand keys", prop.ForAll(
		func(a, b, other trigkey.Key) bool {
			l1, l2 := limitsOf(a, other), limitsOf(b)
			c := New(l1, l2)
			if !c.Viable() {
				return false
			}
			dst := make([]int, 3)
			for _, k := range []trigkey.Key{a, b, other} {
				c.Decode(c.Encode(k), dst)
				for i := range dst {
					if dst[i] != int(k.At(i)) {
						return false
					}
				}
			}
			return true
		},
		genKey, genKey, genKey,
	))

	properties.Property("sum and difference codes decode to the convolution", prop.ForAll(
		func(a, b trigkey.Key) bool {
			c := New(limitsOf(a), limitsOf(b))
			diff, sum, err := a.Convolve(b)
			if err != nil {
				return false
			}
			dst := make([]int, 3)
			c.Decode(c.Encode(a)+c.Encode(b), dst)
			for i := range dst {
				if dst[i] != int(sum.At(i)) {
					return false
				}
			}
			c.Decode(c.Encode(a)-c.Encode(b), dst)
			for i := range dst {
				if dst[i] != int(diff.At(i)) {
					return false
				}
			}
			return true
		},
		genKey, genKey,
	))

	properties.TestingRun(t)
}

func FuzzDecodeInvertsEncode(f *testing.F) {
	f.Add(int16(1), int16(-2), int16(3), int16(-4))
	f.Add(int16(0), int16(0), int16(0), int16(0))
	f.Add(int16(300), int16(-300), int16(-7), int16(9))
	f.Fuzz(func(t *testing.T, a0, a1, b0, b1 int16) {
		a, b := trigkey.Cos(a0, a1), trigkey.Cos(b0, b1)
		c := New(limitsOf(a), limitsOf(b))
		if !c.Viable() {
			t.Skip("range does not fit")
		}
		dst := make([]int, 2)
		for _, k := range []trigkey.Key{a, b} {
			c.Decode(c.Encode(k), dst)
			if dst[0] != int(k.At(0)) || dst[1] != int(k.At(1)) {
				t.Fatalf("round trip of %s gave %v", k, dst)
			}
		}
	})
}
