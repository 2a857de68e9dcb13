package dnd

import (
	"fmt"
	"strings"
)

// ItemKind tags the variant held by a DraggedItem.
type ItemKind uint8

const (
	// KindUnknown is an item the host could not interpret.
	KindUnknown ItemKind = iota
	// KindItem references a host node being dragged.
	KindItem
	// KindValue is a host-defined value to materialize at the drop site.
	KindValue
)

// String returns the kind name.
func (k ItemKind) String() string {
	switch k {
	case KindItem:
		return "item"
	case KindValue:
		return "value"
	default:
		return "unknown"
	}
}

// DraggedItem is one payload element.
type DraggedItem struct {
	Kind ItemKind

	// Item is set for KindItem.
	Item Item

	// Value is set for KindValue, and holds the raw data for KindUnknown.
	Value any
}

// ItemRef returns a payload element referencing a host node.
func ItemRef(item Item) DraggedItem {
	return DraggedItem{Kind: KindItem, Item: item}
}

// ValueOf returns a payload element carrying a host value.
func ValueOf(v any) DraggedItem {
	return DraggedItem{Kind: KindValue, Value: v}
}

// Unknown returns a payload element for data nobody understood.
func Unknown(raw any) DraggedItem {
	return DraggedItem{Kind: KindUnknown, Value: raw}
}

// String returns a short description for logs.
func (d DraggedItem) String() string {
	switch d.Kind {
	case KindItem:
		return fmt.Sprintf("item(%v)", d.Item)
	case KindValue:
		return fmt.Sprintf("value(%v)", d.Value)
	default:
		return "unknown"
	}
}

// Payload is an immutable ordered list of dragged items.
// The zero value is an empty payload.
type Payload struct {
	items []DraggedItem
}

// NewPayload copies items into a payload.
func NewPayload(items ...DraggedItem) Payload {
	if len(items) == 0 {
		return Payload{}
	}
	cp := make([]DraggedItem, len(items))
	copy(cp, items)
	return Payload{items: cp}
}

// Len returns the number of items.
func (p Payload) Len() int {
	return len(p.items)
}

// IsEmpty returns true for a payload without items.
func (p Payload) IsEmpty() bool {
	return len(p.items) == 0
}

// At returns the i-th item.
func (p Payload) At(i int) DraggedItem {
	return p.items[i]
}

// Items returns a copy of the items in drag order.
func (p Payload) Items() []DraggedItem {
	if len(p.items) == 0 {
		return nil
	}
	cp := make([]DraggedItem, len(p.items))
	copy(cp, p.items)
	return cp
}

// Clone returns an independent copy.
func (p Payload) Clone() Payload {
	return NewPayload(p.items...)
}

// Reversed returns the items in reverse order. Inserting each element of
// the reversed payload at the same index preserves the original order.
func (p Payload) Reversed() Payload {
	n := len(p.items)
	if n == 0 {
		return Payload{}
	}
	rev := make([]DraggedItem, n)
	for i, it := range p.items {
		rev[n-1-i] = it
	}
	return Payload{items: rev}
}

// Nodes returns the host nodes referenced by KindItem elements.
func (p Payload) Nodes() []Item {
	var out []Item
	for _, it := range p.items {
		if it.Kind == KindItem {
			out = append(out, it.Item)
		}
	}
	return out
}

// Understood returns true if at least one element is not KindUnknown.
func (p Payload) Understood() bool {
	for _, it := range p.items {
		if it.Kind != KindUnknown {
			return true
		}
	}
	return false
}

// String returns a short description for logs.
func (p Payload) String() string {
	parts := make([]string, len(p.items))
	for i, it := range p.items {
		parts[i] = it.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}
