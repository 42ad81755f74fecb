package treewalk

import (
	"iter"

	"go.llib.dev/frameless/pkg/iterkit"
)

// Cursor is the pull form of a traversal sequence.
//
//	cur := treewalk.ToCursor(treewalk.Iterate(c, cb))
//	defer cur.Close()
//	for cur.Next() {
//		_ = cur.Value().Current
//	}
//	if err := cur.Err(); err != nil { ... }
type Cursor[T any] struct {
	next func() (*Context[T], error, bool)
	stop func()
	val  *Context[T]
	err  error
	done bool
}

var _ iterkit.PullIter[*Context[int]] = (*Cursor[int])(nil)

func ToCursor[T any](seq iterkit.SeqE[*Context[T]]) *Cursor[T] {
	next, stop := iter.Pull2(iter.Seq2[*Context[T], error](seq))
	return &Cursor[T]{next: next, stop: stop}
}

// Next moves the cursor to the next yielded step.
// It returns false when the traversal is exhausted or a callback failed.
func (c *Cursor[T]) Next() bool {
	if c.done {
		return false
	}
	v, err, ok := c.next()
	if !ok {
		c.done = true
		return false
	}
	c.val = v
	if err != nil {
		c.err = err
		c.done = true
		return false
	}
	return true
}

func (c *Cursor[T]) Value() *Context[T] { return c.val }

func (c *Cursor[T]) Err() error { return c.err }

// Close releases the underlying sequence.
// The Context keeps the position where the cursor stopped.
func (c *Cursor[T]) Close() error {
	c.done = true
	c.stop()
	return nil
}
