// Package object identifies game objects that flow through the render queues.
package object

import "fmt"

// Kind is the type of a render-tagged object.
type Kind uint8

const (
	KindNone Kind = iota
	KindDoor
	KindItem
	KindActor
	KindPlayer
	KindDecoration
	KindFace
	KindLight
)

var kindNames = [...]string{"none", "door", "item", "actor", "player", "decoration", "face", "light"}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// MaxIndex is the largest index representable in the legacy 16-bit form.
const MaxIndex = 1<<13 - 1

// ID is an explicit (kind, index) pair. The zero value means no object.
type ID struct {
	Kind  Kind
	Index int
}

// None is the empty identifier.
var None = ID{}

// New returns an ID for kind and index.
func New(kind Kind, index int) ID {
	return ID{Kind: kind, Index: index}
}

// IsNone reports whether id refers to no object.
func (id ID) IsNone() bool {
	return id.Kind == KindNone
}

// String formats id as kind:index.
func (id ID) String() string {
	return fmt.Sprintf("%s:%d", id.Kind, id.Index)
}

// Pack encodes id in the legacy 16-bit layout: kind in the low 3 bits, index
// above. It fails when the index does not fit.
func (id ID) Pack() (uint16, error) {
	if id.Kind > KindLight {
		return 0, fmt.Errorf("object kind %d out of range", id.Kind)
	}
	if id.Index < 0 || id.Index > MaxIndex {
		return 0, fmt.Errorf("object index %d out of range", id.Index)
	}
	return uint16(id.Index)<<3 | uint16(id.Kind), nil
}

// Unpack decodes the legacy 16-bit layout.
func Unpack(v uint16) ID {
	return ID{Kind: Kind(v & 7), Index: int(v >> 3)}
}
