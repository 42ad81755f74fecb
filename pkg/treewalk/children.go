package treewalk

import (
	"context"
	"slices"
)

// FromChildren makes Callbacks for trees where the children of a node can be listed.
// Siblings are located by comparing them to the current node,
// so sibling values should be unique under the same parent.
func FromChildren[T comparable](root T, children func(T) ([]T, error)) Callbacks[T] {
	var listChildren = func(_ context.Context, node T) ([]T, error) {
		return children(node)
	}
	cb := FromChildrenCtx(root, listChildren)
	return Callbacks[T]{
		First: func(c *Context[T]) (T, bool, error) { return cb.First(context.Background(), c) },
		Next:  func(c *Context[T]) (T, bool, error) { return cb.Next(context.Background(), c) },
	}
}

// FromChildrenCtx is the suspendable form of FromChildren.
// The children function is only called for nodes the traversal actually reaches.
func FromChildrenCtx[T comparable](root T, children func(context.Context, T) ([]T, error)) AsyncCallbacks[T] {
	return AsyncCallbacks[T]{
		First: func(ctx context.Context, c *Context[T]) (T, bool, error) {
			current, ok := c.Lookup()
			if !ok {
				return root, true, nil
			}
			list, err := children(ctx, current)
			if err != nil || len(list) == 0 {
				var zero T
				return zero, false, err
			}
			return list[0], true, nil
		},
		Next: func(ctx context.Context, c *Context[T]) (T, bool, error) {
			var zero T
			parent, ok := c.Parent()
			if !ok {
				return zero, false, nil
			}
			list, err := children(ctx, parent)
			if err != nil {
				return zero, false, err
			}
			i := slices.Index(list, c.Current)
			if i < 0 || len(list) <= i+1 {
				return zero, false, nil
			}
			return list[i+1], true, nil
		},
	}
}
