package dlist

import (
	"fmt"
	"io"
	"iter"
	"strings"
)

// DoublyLinkedList is a list of caller supplied nodes linked in both directions.
//
// The zero value is an empty list ready to use. A list must not be copied
// after first use: nodes remember the list they belong to.
//
// Nodes passed to the insert methods become owned by the list; nodes returned
// by the delete methods are detached and owned by the caller again. Nodes
// returned by GetIndex, Head and Tail are borrows, valid until the next mutation.
//
// A list is not safe for concurrent use.
type DoublyLinkedList[T any] struct {
	head *Node[T]
	tail *Node[T]
	size int
}

// New returns an empty list.
func New[T any]() *DoublyLinkedList[T] {
	return new(DoublyLinkedList[T])
}

// FromValues returns a list holding one new node per value, in order.
func FromValues[T any](values ...T) *DoublyLinkedList[T] {
	dll := New[T]()
	for _, val := range values {
		dll.linkTail(NewNode(val))
	}
	return dll
}

// AddHead links n as the first node.
func (dll *DoublyLinkedList[T]) AddHead(n *Node[T]) error {
	if dll == nil {
		panic("adding to a nil double linked list")
	}
	if err := checkInsertable(n); err != nil {
		return fmt.Errorf("add head: %w", err)
	}
	dll.linkHead(n)
	return nil
}

// AddTail links n as the last node.
func (dll *DoublyLinkedList[T]) AddTail(n *Node[T]) error {
	if dll == nil {
		panic("adding to a nil double linked list")
	}
	if err := checkInsertable(n); err != nil {
		return fmt.Errorf("add tail: %w", err)
	}
	dll.linkTail(n)
	return nil
}

// InsertAfter links n right after anchor. When anchor is the tail, n becomes the new tail.
func (dll *DoublyLinkedList[T]) InsertAfter(anchor, n *Node[T]) error {
	if dll == nil {
		panic("inserting into a nil double linked list")
	}
	if err := dll.checkAnchor(anchor); err != nil {
		return fmt.Errorf("insert after: %w", err)
	}
	if err := checkInsertable(n); err != nil {
		return fmt.Errorf("insert after: %w", err)
	}
	dll.linkAfter(anchor, n)
	return nil
}

// InsertBefore links n right before anchor. When anchor is the head, n becomes the new head.
func (dll *DoublyLinkedList[T]) InsertBefore(anchor, n *Node[T]) error {
	if dll == nil {
		panic("inserting into a nil double linked list")
	}
	if err := dll.checkAnchor(anchor); err != nil {
		return fmt.Errorf("insert before: %w", err)
	}
	if err := checkInsertable(n); err != nil {
		return fmt.Errorf("insert before: %w", err)
	}
	dll.linkBefore(anchor, n)
	return nil
}

// InsertAtIndex links n so that it ends up at position index.
//
// Valid indexes are [0, Size()]: 0 is the same as AddHead and Size() is the
// same as AddTail.
func (dll *DoublyLinkedList[T]) InsertAtIndex(index int, n *Node[T]) error {
	if dll == nil {
		panic("inserting into a nil double linked list")
	}
	if err := checkInsertable(n); err != nil {
		return fmt.Errorf("insert at %d: %w", index, err)
	}
	if index < 0 || index > dll.size {
		return fmt.Errorf("insert at %d: %w (valid range [0, %d])", index, ErrIndexOutOfRange, dll.size)
	}
	switch index {
	case 0:
		dll.linkHead(n)
	case dll.size:
		dll.linkTail(n)
	default:
		dll.linkBefore(dll.nodeAt(index), n)
	}
	return nil
}

// DeleteHead detaches the first node and returns it.
func (dll *DoublyLinkedList[T]) DeleteHead() (*Node[T], error) {
	if dll == nil {
		panic("deleting from a nil double linked list")
	}
	if dll.head == nil {
		return nil, fmt.Errorf("delete head: %w", ErrEmpty)
	}
	n := dll.head
	dll.unlink(n)
	return n, nil
}

// DeleteTail detaches the last node and returns it.
func (dll *DoublyLinkedList[T]) DeleteTail() (*Node[T], error) {
	if dll == nil {
		panic("deleting from a nil double linked list")
	}
	if dll.tail == nil {
		return nil, fmt.Errorf("delete tail: %w", ErrEmpty)
	}
	n := dll.tail
	dll.unlink(n)
	return n, nil
}

// DeleteAtIndex detaches the node at index and returns it.
func (dll *DoublyLinkedList[T]) DeleteAtIndex(index int) (*Node[T], error) {
	if dll == nil {
		panic("deleting from a nil double linked list")
	}
	if index < 0 || index >= dll.size {
		return nil, fmt.Errorf("delete at %d: %w (size %d)", index, ErrIndexOutOfRange, dll.size)
	}
	n := dll.nodeAt(index)
	dll.unlink(n)
	return n, nil
}

// GetIndex returns the node at index without detaching it.
func (dll *DoublyLinkedList[T]) GetIndex(index int) (*Node[T], error) {
	if dll == nil {
		panic("accessing a nil double linked list")
	}
	if index < 0 || index >= dll.size {
		return nil, fmt.Errorf("get %d: %w (size %d)", index, ErrIndexOutOfRange, dll.size)
	}
	return dll.nodeAt(index), nil
}

// Reverse flips the direction of every link in place.
//
// Node identities are preserved, so reversing twice restores the original
// list. An empty list reports ErrEmpty; a single node list is left untouched
// and nil is returned, since it is already its own reverse.
func (dll *DoublyLinkedList[T]) Reverse() error {
	if dll == nil {
		panic("reversing a nil double linked list")
	}
	if dll.size == 0 {
		return fmt.Errorf("reverse: %w", ErrEmpty)
	}
	for n := dll.head; n != nil; {
		next := n.next
		n.next, n.prev = n.prev, n.next
		n = next
	}
	dll.head, dll.tail = dll.tail, dll.head
	return nil
}

// Clear detaches every node, leaving an empty list.
func (dll *DoublyLinkedList[T]) Clear() {
	if dll == nil {
		panic("clearing a nil double linked list")
	}
	for n := dll.head; n != nil; {
		next := n.next
		n.detach()
		n = next
	}
	dll.head = nil
	dll.tail = nil
	dll.size = 0
}

// Size returns the number of linked nodes.
func (dll *DoublyLinkedList[T]) Size() int {
	if dll == nil {
		panic("accessing a nil double linked list")
	}
	return dll.size
}

// Head returns the first node or nil when the list is empty.
func (dll *DoublyLinkedList[T]) Head() *Node[T] {
	if dll == nil {
		panic("accessing a nil double linked list")
	}
	return dll.head
}

// Tail returns the last node or nil when the list is empty.
func (dll *DoublyLinkedList[T]) Tail() *Node[T] {
	if dll == nil {
		panic("accessing a nil double linked list")
	}
	return dll.tail
}

// All iterates over the values from head to tail.
func (dll *DoublyLinkedList[T]) All() iter.Seq[T] {
	if dll == nil {
		panic("accessing a nil double linked list")
	}
	return func(yield func(T) bool) {
		for n := dll.head; n != nil; n = n.next {
			if !yield(n.Value) {
				return
			}
		}
	}
}

// Backward iterates over the values from tail to head.
func (dll *DoublyLinkedList[T]) Backward() iter.Seq[T] {
	if dll == nil {
		panic("accessing a nil double linked list")
	}
	return func(yield func(T) bool) {
		for n := dll.tail; n != nil; n = n.prev {
			if !yield(n.Value) {
				return
			}
		}
	}
}

// Values returns a copy of the values from head to tail.
func (dll *DoublyLinkedList[T]) Values() []T {
	if dll == nil {
		panic("accessing a nil double linked list")
	}
	retVal := make([]T, 0, dll.size)
	for val := range dll.All() {
		retVal = append(retVal, val)
	}
	return retVal
}

// Display writes the values separated by spaces.
func (dll *DoublyLinkedList[T]) Display(w io.Writer) error {
	if dll == nil {
		panic("accessing a nil double linked list")
	}
	if dll.size == 0 {
		return fmt.Errorf("display: %w", ErrEmpty)
	}
	_, err := io.WriteString(w, dll.join())
	return err
}

func (dll *DoublyLinkedList[T]) String() string {
	if dll == nil {
		return "<nil>"
	}
	return "[" + dll.join() + "]"
}

func (dll *DoublyLinkedList[T]) join() string {
	var sb strings.Builder
	for n := dll.head; n != nil; n = n.next {
		if n != dll.head {
			sb.WriteByte(' ')
		}
		fmt.Fprint(&sb, n.Value)
	}
	return sb.String()
}

// Check walks the list and returns an ErrCorrupted error describing the first
// broken structural invariant, or nil.
func (dll *DoublyLinkedList[T]) Check() error {
	if dll == nil {
		panic("accessing a nil double linked list")
	}
	if (dll.head == nil) != (dll.tail == nil) || (dll.head == nil) != (dll.size == 0) {
		return fmt.Errorf("%w: head=%t tail=%t size=%d", ErrCorrupted, dll.head != nil, dll.tail != nil, dll.size)
	}
	if dll.head == nil {
		return nil
	}
	if dll.head.prev != nil {
		return fmt.Errorf("%w: head has a predecessor", ErrCorrupted)
	}
	if dll.tail.next != nil {
		return fmt.Errorf("%w: tail has a successor", ErrCorrupted)
	}

	// checking prev on the way forward also covers the backward walk
	var prev *Node[T]
	count := 0
	for n := dll.head; n != nil; n = n.next {
		if n.list != dll {
			return fmt.Errorf("%w: node %d is not owned by this list", ErrCorrupted, count)
		}
		if n.prev != prev {
			return fmt.Errorf("%w: node %d prev link is not symmetric", ErrCorrupted, count)
		}
		count++
		if count > dll.size {
			return fmt.Errorf("%w: more than %d nodes reachable from head", ErrCorrupted, dll.size)
		}
		prev = n
	}
	if prev != dll.tail {
		return fmt.Errorf("%w: forward walk does not end at tail", ErrCorrupted)
	}
	if count != dll.size {
		return fmt.Errorf("%w: %d nodes reachable, size is %d", ErrCorrupted, count, dll.size)
	}
	return nil
}

func checkInsertable[T any](n *Node[T]) error {
	if n == nil {
		return ErrNilNode
	}
	if n.list != nil {
		return ErrNodeLinked
	}
	return nil
}

func (dll *DoublyLinkedList[T]) checkAnchor(anchor *Node[T]) error {
	if anchor == nil {
		return ErrNilAnchor
	}
	if anchor.list != dll {
		return ErrNotMember
	}
	return nil
}

func (dll *DoublyLinkedList[T]) linkHead(n *Node[T]) {
	n.list = dll
	n.prev = nil
	n.next = dll.head
	if dll.head != nil {
		dll.head.prev = n
	}
	dll.head = n

	if dll.tail == nil {
		dll.tail = n // first element set it as tail as well
	}
	dll.size++
}

func (dll *DoublyLinkedList[T]) linkTail(n *Node[T]) {
	n.list = dll
	n.prev = dll.tail
	n.next = nil
	if dll.tail != nil {
		dll.tail.next = n
	}
	dll.tail = n

	if dll.head == nil {
		dll.head = n // first element set it as head as well
	}
	dll.size++
}

func (dll *DoublyLinkedList[T]) linkAfter(anchor, n *Node[T]) {
	if anchor == dll.tail {
		dll.linkTail(n)
		return
	}
	n.list = dll
	n.prev = anchor
	n.next = anchor.next
	anchor.next.prev = n
	anchor.next = n
	dll.size++
}

func (dll *DoublyLinkedList[T]) linkBefore(anchor, n *Node[T]) {
	if anchor == dll.head {
		dll.linkHead(n)
		return
	}
	n.list = dll
	n.next = anchor
	n.prev = anchor.prev
	anchor.prev.next = n
	anchor.prev = n
	dll.size++
}

func (dll *DoublyLinkedList[T]) unlink(n *Node[T]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		dll.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		dll.tail = n.prev
	}
	dll.size--
	n.detach()
}

// nodeAt walks from whichever end is closer; index must be in range.
func (dll *DoublyLinkedList[T]) nodeAt(index int) *Node[T] {
	if index < dll.size/2 {
		n := dll.head
		for i := 0; i < index; i++ {
			n = n.next
		}
		return n
	}
	n := dll.tail
	for i := dll.size - 1; i > index; i-- {
		n = n.prev
	}
	return n
}
