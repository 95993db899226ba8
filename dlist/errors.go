package dlist

import "errors"

var (
	ErrEmpty           = errors.New("list is empty")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrNilNode         = errors.New("nil node")
	ErrNilAnchor       = errors.New("nil anchor")
	ErrNotMember       = errors.New("anchor is not a member of this list")
	ErrNodeLinked      = errors.New("node is already linked")
	ErrCorrupted       = errors.New("list invariant violated")
)
