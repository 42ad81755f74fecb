// Package treewalk is a resumable depth-first traversal engine.
//
// The engine doesn't know the shape of the tree.
// The caller supplies how the first child and the next sibling of a node is found,
// and what should happen when a node is entered or exited.
// All traversal state lives in a Context,
// which makes it possible to stop a traversal at any point,
// persist its Context, and continue later with a fresh walker.
//
// # Steps
//
// Each walker step moves the traversal by exactly one transition:
//
//	First: a node was entered as the first child of the previous node
//	Next:  a node was entered as the next sibling of a just exited node
//	Leaf:  the just entered node had no children, and it is exited
//	Last:  no more siblings were found, and the parent node is exited
//
// The traversal is over when the step returns false, and the Context status is None.
package treewalk

import "context"

// Lookup finds the node to visit next.
// When the previous step was an exit, it should return the next sibling of Context.Current,
// using the top of Context.Stack as the parent.
// Otherwise, it should return the first child of Context.Current,
// or the root node when there is no current node yet.
//
// The ok return value reports the presence of a node.
type Lookup[T any] func(c *Context[T]) (node T, ok bool, err error)

// Visit is called when a node is entered or exited.
type Visit[T any] func(c *Context[T]) error

// LookupCtx is the suspendable form of Lookup.
// It may block, for example to load children from a remote resource.
type LookupCtx[T any] func(ctx context.Context, c *Context[T]) (node T, ok bool, err error)

// VisitCtx is the suspendable form of Visit.
type VisitCtx[T any] func(ctx context.Context, c *Context[T]) error

// Walker moves a traversal forward one step at a time.
type Walker[T any] struct {
	context *Context[T]
	before  Visit[T]
	after   Visit[T]
}

// NewWalker creates a Walker over the received Context.
// A nil Context starts a new traversal.
// The before and after callbacks are optional.
func NewWalker[T any](c *Context[T], before, after Visit[T]) *Walker[T] {
	if c == nil {
		c = NewContext[T]()
	}
	return &Walker[T]{context: c, before: before, after: after}
}

// Context returns the traversal state the Walker mutates.
func (w *Walker[T]) Context() *Context[T] { return w.context }

// Step makes a single transition using the given lookup,
// and reports whether the traversal is still alive.
// Callback errors are returned as they are,
// and the Context is left in the state it had at the point of failure.
func (w *Walker[T]) Step(load Lookup[T]) (bool, error) {
	return step(context.Background(), w.context, visitCtx(w.before), visitCtx(w.after), lookupCtx(load))
}

// AsyncWalker is the suspendable form of Walker.
// Every callback receives a context.Context and may block,
// but only one callback is in flight at any time.
type AsyncWalker[T any] struct {
	context *Context[T]
	before  VisitCtx[T]
	after   VisitCtx[T]
}

func NewAsyncWalker[T any](c *Context[T], before, after VisitCtx[T]) *AsyncWalker[T] {
	if c == nil {
		c = NewContext[T]()
	}
	return &AsyncWalker[T]{context: c, before: before, after: after}
}

func (w *AsyncWalker[T]) Context() *Context[T] { return w.context }

// Step makes a single transition using the given lookup.
// A ctx which is already cancelled stops the walker before it would touch the Context.
// When a callback fails during the step, cancellation included,
// the Context is left in the state it had at the point of failure.
func (w *AsyncWalker[T]) Step(ctx context.Context, load LookupCtx[T]) (bool, error) {
	return step(ctx, w.context, w.before, w.after, load)
}

func step[T any](ctx context.Context, c *Context[T], before, after VisitCtx[T], load LookupCtx[T]) (bool, error) {
	if load == nil {
		return c.Status != None, ErrMissingLookup
	}
	if err := ctx.Err(); err != nil {
		return c.Status != None, err
	}
	var prevWasExit = c.Status.Is(Exit)
	if prevWasExit && after != nil {
		if err := after(ctx, c); err != nil {
			return c.Status != None, err
		}
	}
	if c.Status.Is(Enter) {
		c.push(c.Current)
	}
	node, ok, err := load(ctx, c)
	if err != nil {
		return c.Status != None, err
	}
	if ok {
		c.Current = node
		if prevWasExit {
			c.Status = Next
		} else {
			c.Status = First
		}
		if before != nil {
			if err := before(ctx, c); err != nil {
				return true, err
			}
		}
		return true, nil
	}
	parent, ok := c.pop()
	c.Current = parent
	switch {
	case !ok:
		c.Status = None
	case prevWasExit:
		c.Status = Last
	default:
		c.Status = Leaf
	}
	return c.Status != None, nil
}

func visitCtx[T any](fn Visit[T]) VisitCtx[T] {
	if fn == nil {
		return nil
	}
	return func(_ context.Context, c *Context[T]) error {
		return fn(c)
	}
}

func lookupCtx[T any](fn Lookup[T]) LookupCtx[T] {
	if fn == nil {
		return nil
	}
	return func(_ context.Context, c *Context[T]) (T, bool, error) {
		return fn(c)
	}
}
