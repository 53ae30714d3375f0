// Package container stores the terms of one series behind two views that
// always agree on membership: a sorted view ordered by trigkey.Key.Compare,
// used for ordered iteration and cropping, and a hashed view keyed by
// trigkey.Key.Hash, used for lookups while merging.
//
// A Container is not safe for concurrent mutation. A series owns its
// container and every insert or erase updates both views before returning.
package container

import (
	"fmt"

	"github.com/emirpasic/gods/maps/treemap"

	"github.com/agbru/pseries/internal/coefficient"
	"github.com/agbru/pseries/internal/symbol"
	"github.com/agbru/pseries/internal/term"
	"github.com/agbru/pseries/internal/trigkey"
)

// Sign selects whether an inserted term is added to or subtracted from the
// matching stored term.
type Sign int

const (
	Add Sign = 1
	Sub Sign = -1
)

// Outcome reports what an insertion did.
type Outcome int

const (
	Skipped Outcome = iota
	Inserted
	Updated
	Erased
)

func (o Outcome) String() string {
	switch o {
	case Skipped:
		return "skipped"
	case Inserted:
		return "inserted"
	case Updated:
		return "updated"
	case Erased:
		return "erased"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Scope is the context an insertion is checked against: the owning series'
// arguments and the numerical-zero threshold.
type Scope struct {
	Args symbol.ArgSet
	Zero float64
}

// Node is a stored term. Nodes returned by the container stay valid until
// they are erased.
type Node[C coefficient.Coefficient[C]] struct {
	term term.Term[C]
	hash uint64
}

// Term returns the stored term.
func (n *Node[C]) Term() term.Term[C] { return n.term }

// Cf returns the stored coefficient.
func (n *Node[C]) Cf() C { return n.term.Cf }

// Key returns the stored key.
func (n *Node[C]) Key() trigkey.Key { return n.term.Key }

// Container is the dual-index term store.
type Container[C coefficient.Coefficient[C]] struct {
	sorted *treemap.Map
	hashed map[uint64][]*Node[C]
	hash   func(trigkey.Key) uint64
}

func compareKeys(a, b interface{}) int {
	return a.(trigkey.Key).Compare(b.(trigkey.Key))
}

// New returns an empty container.
func New[C coefficient.Coefficient[C]]() *Container[C] {
	return &Container[C]{
		sorted: treemap.NewWith(compareKeys),
		hashed: make(map[uint64][]*Node[C]),
		hash:   trigkey.Key.Hash,
	}
}

// Len returns the number of stored terms.
func (c *Container[C]) Len() int { return c.sorted.Size() }

// Empty reports whether the container holds no term.
func (c *Container[C]) Empty() bool { return c.sorted.Empty() }

func (c *Container[C]) lookup(k trigkey.Key, h uint64) *Node[C] {
	for _, n := range c.hashed[h] {
		if n.term.Key.Equal(k) {
			return n
		}
	}
	return nil
}

// Find returns the node stored under k, or nil.
func (c *Container[C]) Find(k trigkey.Key) *Node[C] {
	return c.lookup(k, c.hash(k))
}

// Insert is the low-level insertion step. The term must already be padded to
// the scope's widths and carry a canonical key; violating either is a
// programming error and panics.
//
// An ignorable term is skipped. A term whose key is absent is stored, negated
// when sign is Sub. Otherwise the coefficients are combined: an ignorable
// result erases the stored term, anything else updates it in place. The
// returned node is the stored term after the operation, nil when nothing is
// stored under the key.
func (c *Container[C]) Insert(t term.Term[C], sign Sign, scope Scope) (*Node[C], Outcome) {
	if t.IsIgnorable(scope.Args, scope.Zero) {
		return nil, Skipped
	}
	if t.NeedsPadding(scope.Args) || !t.IsInsertable(scope.Args) {
		panic(fmt.Sprintf("container: term %s does not match argument widths (cf %d, trig %d)",
			t, len(scope.Args.Cf), len(scope.Args.Trig)))
	}
	if t.Key.Sign() < 0 {
		panic(fmt.Sprintf("container: term %s has a non-canonical key", t))
	}

	h := c.hash(t.Key)
	if n := c.lookup(t.Key, h); n != nil {
		var cf C
		if sign == Sub {
			cf = n.term.Cf.Sub(t.Cf)
		} else {
			cf = n.term.Cf.Add(t.Cf)
		}
		if cf.IsIgnorable(scope.Args.Cf, scope.Zero) {
			c.Erase(n)
			return nil, Erased
		}
		n.term.Cf = cf
		return n, Updated
	}

	if sign == Sub {
		t.Cf = t.Cf.Neg()
	}
	n := &Node[C]{term: t, hash: h}
	c.sorted.Put(t.Key, n)
	c.hashed[h] = append(c.hashed[h], n)
	return n, Inserted
}

// Update replaces the coefficient of a stored node. The key, and so the
// node's position in both views, is unchanged.
func (c *Container[C]) Update(n *Node[C], cf C) {
	n.term.Cf = cf
}

// Erase removes a stored node from both views.
func (c *Container[C]) Erase(n *Node[C]) {
	bucket := c.hashed[n.hash]
	for i, m := range bucket {
		if m != n {
			continue
		}
		last := len(bucket) - 1
		bucket[i] = bucket[last]
		bucket[last] = nil
		if last == 0 {
			delete(c.hashed, n.hash)
		} else {
			c.hashed[n.hash] = bucket[:last]
		}
		c.sorted.Remove(n.term.Key)
		return
	}
	panic(fmt.Sprintf("container: erasing %s which is not stored", n.term))
}

// Clear removes every term.
func (c *Container[C]) Clear() {
	c.sorted.Clear()
	c.hashed = make(map[uint64][]*Node[C])
}

// Ascend calls fn on every node in sorted order until fn returns false. fn
// must not insert or erase.
func (c *Container[C]) Ascend(fn func(n *Node[C]) bool) {
	it := c.sorted.Iterator()
	for it.Next() {
		if !fn(it.Value().(*Node[C])) {
			return
		}
	}
}

// Nodes returns a snapshot of the nodes in sorted order. The snapshot may be
// used while erasing.
func (c *Container[C]) Nodes() []*Node[C] {
	out := make([]*Node[C], 0, c.Len())
	c.Ascend(func(n *Node[C]) bool {
		out = append(out, n)
		return true
	})
	return out
}

// Terms returns a copy of the stored terms in sorted order.
func (c *Container[C]) Terms() []term.Term[C] {
	out := make([]term.Term[C], 0, c.Len())
	c.Ascend(func(n *Node[C]) bool {
		out = append(out, n.term)
		return true
	})
	return out
}

// Clone returns an independent container with the same terms. Coefficients
// and keys are values and are shared.
func (c *Container[C]) Clone() *Container[C] {
	out := New[C]()
	out.hash = c.hash
	c.Ascend(func(n *Node[C]) bool {
		m := &Node[C]{term: n.term, hash: n.hash}
		out.sorted.Put(m.term.Key, m)
		out.hashed[m.hash] = append(out.hashed[m.hash], m)
		return true
	})
	return out
}

// Verify checks that both views hold exactly the same nodes and that no key
// is stored twice.
func (c *Container[C]) Verify() error {
	hashedCount := 0
	for h, bucket := range c.hashed {
		if len(bucket) == 0 {
			return fmt.Errorf("container: empty bucket for hash %#x", h)
		}
		for i, n := range bucket {
			if n.hash != h || c.hash(n.term.Key) != h {
				return fmt.Errorf("container: %s filed under the wrong hash", n.term)
			}
			for _, m := range bucket[i+1:] {
				if m.term.Key.Equal(n.term.Key) {
					return fmt.Errorf("container: key %s stored twice", n.term.Key)
				}
			}
		}
		hashedCount += len(bucket)
	}
	if hashedCount != c.Len() {
		return fmt.Errorf("container: sorted view holds %d terms, hashed view %d", c.Len(), hashedCount)
	}
	var err error
	c.Ascend(func(n *Node[C]) bool {
		if c.lookup(n.term.Key, n.hash) != n {
			err = fmt.Errorf("container: %s missing from the hashed view", n.term)
			return false
		}
		return true
	})
	return err
}
