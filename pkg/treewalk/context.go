package treewalk

// Context is the complete state of a traversal.
// It is plain data, so a suspended traversal can be persisted with any codec,
// and later restored to continue exactly where it stopped.
//
// Stack holds the open ancestors of Current, from the root (index 0)
// to the parent of Current (last index).
// Current is only meaningful while Status is not None.
type Context[T any] struct {
	Stack   []T    `json:"stack"`
	Current T      `json:"current"`
	Status  Status `json:"status"`
}

// NewContext returns a Context of a traversal which has not started yet.
func NewContext[T any]() *Context[T] {
	return &Context[T]{Stack: []T{}, Status: None}
}

// Lookup returns the current node.
// The second return value reports whether there is a current node at all,
// which is false before the first step and after the traversal is exhausted.
func (c *Context[T]) Lookup() (T, bool) {
	if c.Status == None {
		var zero T
		return zero, false
	}
	return c.Current, true
}

// Parent returns the closest open ancestor of the current node.
func (c *Context[T]) Parent() (T, bool) {
	if len(c.Stack) == 0 {
		var zero T
		return zero, false
	}
	return c.Stack[len(c.Stack)-1], true
}

// Depth is the number of open ancestors of the current node.
func (c *Context[T]) Depth() int { return len(c.Stack) }

// Clone returns a copy which shares no mutable state with the original.
// Forking a traversal is done by iterating a clone.
func (c *Context[T]) Clone() *Context[T] {
	return &Context[T]{
		Stack:   append(make([]T, 0, len(c.Stack)), c.Stack...),
		Current: c.Current,
		Status:  c.Status,
	}
}

func (c *Context[T]) push(node T) {
	c.Stack = append(c.Stack, node)
}

func (c *Context[T]) pop() (T, bool) {
	var zero T
	n := len(c.Stack)
	if n == 0 {
		return zero, false
	}
	node := c.Stack[n-1]
	c.Stack[n-1] = zero
	c.Stack = c.Stack[:n-1]
	return node, true
}
