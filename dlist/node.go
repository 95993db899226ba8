package dlist

// Node is a unit of storage in a DoublyLinkedList.
//
// A node is created unlinked, becomes linked when inserted in a list and
// is detached (links and owner cleared) when a delete operation hands it
// back to the caller. A detached node may be inserted again.
type Node[T any] struct {
	Value T

	list *DoublyLinkedList[T] // owning list, nil when not linked
	prev *Node[T]
	next *Node[T]
}

// NewNode creates an unlinked node holding val.
func NewNode[T any](val T) *Node[T] {
	return &Node[T]{Value: val}
}

// Next returns the node following n, or nil at the tail or when n is not linked.
func (n *Node[T]) Next() *Node[T] {
	if n == nil {
		return nil
	}
	return n.next
}

// Prev returns the node preceding n, or nil at the head or when n is not linked.
func (n *Node[T]) Prev() *Node[T] {
	if n == nil {
		return nil
	}
	return n.prev
}

// Linked reports whether n currently belongs to a list.
func (n *Node[T]) Linked() bool {
	return n != nil && n.list != nil
}

func (n *Node[T]) detach() {
	n.list = nil
	n.prev = nil
	n.next = nil
}
