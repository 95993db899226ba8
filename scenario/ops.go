package scenario

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/getsentry/go-dlist/dlist"
)

var (
	ErrUnknownOp        = errors.New("unknown operation")
	ErrUnknownLabel     = errors.New("unknown label")
	ErrUnknownErrorName = errors.New("unknown error name")
	ErrExpectation      = errors.New("expectation not met")
)

// OpHandler applies one step to the runner's list.
//
// The returned value (if any) is what the operation produced: the payload of
// a deleted or looked up node, or the size of the list.
type OpHandler func(r *Runner, step Step) (*int, error)

// RegisterOp makes an operation available to scenarios under name (case-insensitive).
func RegisterOp(name string, handler OpHandler) {
	operations.lock.Lock()
	defer operations.lock.Unlock()
	operations.handlers[strings.ToLower(name)] = handler
	operations.names[strings.ToLower(name)] = name
}

// Lookup returns the handler registered for an operation or nil.
func Lookup(name string) OpHandler {
	operations.lock.Lock()
	defer operations.lock.Unlock()
	return operations.handlers[strings.ToLower(name)]
}

// Operations returns the names of all registered operations, sorted.
func Operations() []string {
	operations.lock.Lock()
	defer operations.lock.Unlock()
	retVal := make([]string, 0, len(operations.names))
	for _, name := range operations.names {
		retVal = append(retVal, name)
	}
	sort.Strings(retVal)
	return retVal
}

var operations = struct {
	handlers map[string]OpHandler
	names    map[string]string
	lock     sync.Mutex
}{
	handlers: make(map[string]OpHandler),
	names:    make(map[string]string),
}

// errorNames maps the names usable in Step.ExpectError to the errors they stand for
var errorNames = []struct {
	name string
	err  error
}{
	{"empty", dlist.ErrEmpty},
	{"outOfRange", dlist.ErrIndexOutOfRange},
	{"nilNode", dlist.ErrNilNode},
	{"nilAnchor", dlist.ErrNilAnchor},
	{"notMember", dlist.ErrNotMember},
	{"linked", dlist.ErrNodeLinked},
	{"corrupted", dlist.ErrCorrupted},
	{"unknownLabel", ErrUnknownLabel},
	{"unknownOp", ErrUnknownOp},
}

func errorByName(name string) error {
	for _, entry := range errorNames {
		if strings.EqualFold(entry.name, name) {
			return entry.err
		}
	}
	return nil
}

// ErrorNames returns the names usable in Step.ExpectError
func ErrorNames() []string {
	retVal := make([]string, 0, len(errorNames))
	for _, entry := range errorNames {
		retVal = append(retVal, entry.name)
	}
	return retVal
}

// ErrorName returns the short name of a list or scenario error, "" for other errors.
func ErrorName(err error) string {
	for _, entry := range errorNames {
		if errors.Is(err, entry.err) {
			return entry.name
		}
	}
	return ""
}

func addHead(r *Runner, step Step) (*int, error) {
	return nil, r.insert(step, r.list.AddHead)
}

func addTail(r *Runner, step Step) (*int, error) {
	return nil, r.insert(step, r.list.AddTail)
}

func insertAfter(r *Runner, step Step) (*int, error) {
	anchor, err := r.anchor(step)
	if err != nil {
		return nil, err
	}
	return nil, r.insert(step, func(n *dlist.Node[int]) error {
		return r.list.InsertAfter(anchor, n)
	})
}

func insertBefore(r *Runner, step Step) (*int, error) {
	anchor, err := r.anchor(step)
	if err != nil {
		return nil, err
	}
	return nil, r.insert(step, func(n *dlist.Node[int]) error {
		return r.list.InsertBefore(anchor, n)
	})
}

func insertAtIndex(r *Runner, step Step) (*int, error) {
	return nil, r.insert(step, func(n *dlist.Node[int]) error {
		return r.list.InsertAtIndex(step.Index, n)
	})
}

func deleteHead(r *Runner, _ Step) (*int, error) {
	return valueOf(r.list.DeleteHead())
}

func deleteTail(r *Runner, _ Step) (*int, error) {
	return valueOf(r.list.DeleteTail())
}

func deleteAtIndex(r *Runner, step Step) (*int, error) {
	return valueOf(r.list.DeleteAtIndex(step.Index))
}

func getIndex(r *Runner, step Step) (*int, error) {
	return valueOf(r.list.GetIndex(step.Index))
}

func reverse(r *Runner, _ Step) (*int, error) {
	return nil, r.list.Reverse()
}

func clearList(r *Runner, _ Step) (*int, error) {
	r.list.Clear()
	return nil, nil
}

func listSize(r *Runner, _ Step) (*int, error) {
	size := r.list.Size()
	return &size, nil
}

func check(r *Runner, _ Step) (*int, error) {
	return nil, r.list.Check()
}

func valueOf(n *dlist.Node[int], err error) (*int, error) {
	if err != nil {
		return nil, err
	}
	val := n.Value
	return &val, nil
}

func init() {
	RegisterOp("addHead", addHead)
	RegisterOp("addTail", addTail)
	RegisterOp("insertAfter", insertAfter)
	RegisterOp("insertBefore", insertBefore)
	RegisterOp("insertAtIndex", insertAtIndex)
	RegisterOp("deleteHead", deleteHead)
	RegisterOp("deleteTail", deleteTail)
	RegisterOp("deleteAtIndex", deleteAtIndex)
	RegisterOp("getIndex", getIndex)
	RegisterOp("reverse", reverse)
	RegisterOp("clear", clearList)
	RegisterOp("size", listSize)
	RegisterOp("check", check)
}
