package treewalk

import (
	"context"

	"go.llib.dev/frameless/pkg/iterkit"
	"go.llib.dev/frameless/port/option"
)

// Callbacks bundles the functions a synchronous traversal needs.
// First and Next are mandatory, Before and After are optional.
type Callbacks[T any] struct {
	// First returns the first child of the current node,
	// or the root when the traversal has no current node yet.
	First Lookup[T]
	// Next returns the next sibling of the current node.
	Next Lookup[T]
	// Before is called after a node is entered.
	Before Visit[T]
	// After is called when a node is fully exited,
	// right before the traversal moves on.
	After Visit[T]
}

// AsyncCallbacks is the suspendable form of Callbacks.
type AsyncCallbacks[T any] struct {
	First  LookupCtx[T]
	Next   LookupCtx[T]
	Before VisitCtx[T]
	After  VisitCtx[T]
}

// Async turns synchronous callbacks into their suspendable form.
func Async[T any](cb Callbacks[T]) AsyncCallbacks[T] {
	return AsyncCallbacks[T]{
		First:  lookupCtx(cb.First),
		Next:   lookupCtx(cb.Next),
		Before: visitCtx(cb.Before),
		After:  visitCtx(cb.After),
	}
}

// Lookup picks the lookup for the next step of c.
// After an exit the next sibling is looked up, otherwise the first child.
func (cb AsyncCallbacks[T]) Lookup(c *Context[T]) LookupCtx[T] {
	if c.Status.Is(Exit) {
		return cb.Next
	}
	return cb.First
}

// Config is the iterator configuration.
type Config struct {
	// Mode selects which step outcomes are yielded.
	//
	// Default: Leaf
	Mode Status
}

func (c *Config) Init() { c.Mode = Leaf }

// WithMode sets the mask of the step outcomes the iterator should yield.
func WithMode(mode Status) option.Option[Config] {
	return option.Func[Config](func(c *Config) { c.Mode = mode })
}

// Iterate walks the tree and yields the Context on every step which status matches the configured mode.
//
// The same *Context is yielded on each iteration,
// so values needed later must be read before the iteration continues.
// The returned sequence is single use:
// after stopping early, the Context (or a restored copy of it) can be passed to a new Iterate call
// to continue the traversal from the exact same point.
//
// When a callback fails, its error is yielded and the iteration ends.
func Iterate[T any](c *Context[T], cb Callbacks[T], opts ...option.Option[Config]) iterkit.SeqE[*Context[T]] {
	return iterate(context.Background(), c, Async(cb), opts)
}

// AsyncIterate is the suspendable form of Iterate.
// Callbacks are awaited one after the other, and never run concurrently.
// When ctx is cancelled, ctx.Err() is yielded.
// A cancellation noticed between two steps leaves the Context resumable.
// A callback that fails with the cancellation error mid-step
// leaves the Context partially updated, the same as any other callback error,
// so resuming from that Context needs a copy taken before the step.
func AsyncIterate[T any](ctx context.Context, c *Context[T], cb AsyncCallbacks[T], opts ...option.Option[Config]) iterkit.SeqE[*Context[T]] {
	return iterate(ctx, c, cb, opts)
}

func iterate[T any](ctx context.Context, c *Context[T], cb AsyncCallbacks[T], opts []option.Option[Config]) iterkit.SeqE[*Context[T]] {
	conf := option.ToConfig[Config](opts)
	return func(yield func(*Context[T], error) bool) {
		w := NewAsyncWalker(c, cb.Before, cb.After)
		if cb.First == nil || cb.Next == nil {
			yield(w.Context(), ErrMissingLookup)
			return
		}
		for {
			alive, err := w.Step(ctx, cb.Lookup(w.Context()))
			if err != nil {
				yield(w.Context(), err)
				return
			}
			if !alive {
				return
			}
			if !w.Context().Status.Is(conf.Mode) {
				continue
			}
			if !yield(w.Context(), nil) {
				return
			}
		}
	}
}
