package container

// Node is an element of a List. The node itself is the removal handle:
// holders keep it and pass it back to Remove for O(1) unlinking.
type Node[T any] struct {
	Value T

	prev, next *Node[T]
	list       *List[T]
}

// Next returns the following node or nil at the end of the list.
func (n *Node[T]) Next() *Node[T] {
	if n.list == nil || n.next == &n.list.root {
		return nil
	}
	return n.next
}

// Linked reports whether the node still belongs to a list.
func (n *Node[T]) Linked() bool { return n != nil && n.list != nil }

// List is a doubly linked list with a sentinel root. The zero value is
// not ready for use, call NewList.
type List[T any] struct {
	root Node[T]
	size int
}

func NewList[T any]() *List[T] {
	l := &List[T]{}
	l.root.next = &l.root
	l.root.prev = &l.root
	return l
}

func (l *List[T]) PushBack(v T) *Node[T] {
	n := &Node[T]{Value: v, list: l}
	last := l.root.prev
	n.prev = last
	n.next = &l.root
	last.next = n
	l.root.prev = n
	l.size++
	return n
}

// Remove unlinks n. Removing a node twice or a node owned by another
// list does nothing.
func (l *List[T]) Remove(n *Node[T]) bool {
	if n == nil || n.list != l {
		return false
	}
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev, n.next, n.list = nil, nil, nil
	l.size--
	return true
}

func (l *List[T]) Front() *Node[T] {
	if l.size == 0 {
		return nil
	}
	return l.root.next
}

func (l *List[T]) Len() int { return l.size }

// Each visits values front to back until fn returns false. fn may remove
// the node it is visiting.
func (l *List[T]) Each(fn func(*Node[T]) bool) {
	for n := l.root.next; n != &l.root; {
		next := n.next
		if !fn(n) {
			return
		}
		n = next
	}
}

// Values copies the list contents into dst and returns it.
func (l *List[T]) Values(dst []T) []T {
	for n := l.root.next; n != &l.root; n = n.next {
		dst = append(dst, n.Value)
	}
	return dst
}
