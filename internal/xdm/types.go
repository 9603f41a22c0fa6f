// Package xdm implements the XPath Data Model type system: the primitive
// atomic type hierarchy, node kinds, the item-type lattice built from both,
// and sequence types pairing an item type with a cardinality.
//
// The subtype relation is precomputed once at package init as a reflexive,
// transitive closure over the small fixed type DAG, stored as a sorted int
// set per type (internal/collections.SortedIntSet) so
// that IsSubType is a binary-search membership test rather than a DAG walk.
package xdm

import (
	"strings"

	"github.com/oxhq/xpathcore/internal/collections"
)

// Type identifies one node in the item-type DAG: either a node kind, a
// primitive atomic type (and its built-in derivations), or one of the three
// structural roots (item(), node(), xs:anyAtomicType).
type Type int32

// Structural roots and node kinds.
const (
	TypeItem Type = iota
	TypeNode
	TypeDocument
	TypeElement
	TypeAttribute
	TypeText
	TypeComment
	TypeProcessingInstruction
	TypeNamespace

	// TypeAnyAtomicType is the root of the atomic side of the lattice.
	TypeAnyAtomicType

	// Primitive atomic types, per the XSD/XDM primitive type list.
	TypeUntypedAtomic
	TypeString
	TypeBoolean
	TypeDecimal
	TypeFloat
	TypeDouble
	TypeDuration
	TypeDateTime
	TypeDate
	TypeTime
	TypeGYearMonth
	TypeGYear
	TypeGMonthDay
	TypeGDay
	TypeGMonth
	TypeHexBinary
	TypeBase64Binary
	TypeAnyURI
	TypeQName
	TypeNOTATION

	// Built-in derivations most XPath implementations special-case rather
	// than treating as ordinary user-derived types.
	TypeInteger         // derived from Decimal
	TypeNonPositiveInt  // derived from Integer
	TypeNegativeInt     // derived from NonPositiveInt
	TypeLong            // derived from Integer
	TypeInt             // derived from Long
	TypeShort           // derived from Int
	TypeByte            // derived from Short
	TypeNonNegativeInt  // derived from Integer
	TypeUnsignedLong    // derived from NonNegativeInt
	TypeUnsignedInt     // derived from UnsignedLong
	TypeUnsignedShort   // derived from UnsignedInt
	TypeUnsignedByte    // derived from UnsignedShort
	TypePositiveInt     // derived from NonNegativeInt
	TypeDayTimeDuration // derived from Duration
	TypeYearMonthDuration

	typeCount
)

// typeInfo holds the static facts each built-in type exposes: its
// direct parent, display name, whether it
// is abstract, and (for atomics) its primitive ancestor.
type typeInfo struct {
	name      string
	parent    Type
	isNode    bool
	isAtomic  bool
	abstract  bool
	primitive Type // for atomics: the built-in primitive this type derives from (possibly itself)
}

var typeTable = map[Type]typeInfo{
	TypeItem:                  {name: "item()", parent: -1, abstract: true},
	TypeNode:                  {name: "node()", parent: TypeItem, isNode: true, abstract: true},
	TypeDocument:              {name: "document-node()", parent: TypeNode, isNode: true},
	TypeElement:               {name: "element()", parent: TypeNode, isNode: true},
	TypeAttribute:             {name: "attribute()", parent: TypeNode, isNode: true},
	TypeText:                  {name: "text()", parent: TypeNode, isNode: true},
	TypeComment:               {name: "comment()", parent: TypeNode, isNode: true},
	TypeProcessingInstruction: {name: "processing-instruction()", parent: TypeNode, isNode: true},
	TypeNamespace:             {name: "namespace-node()", parent: TypeNode, isNode: true},

	TypeAnyAtomicType: {name: "xs:anyAtomicType", parent: TypeItem, isAtomic: true, abstract: true},

	TypeUntypedAtomic: {name: "xs:untypedAtomic", parent: TypeAnyAtomicType, isAtomic: true},
	TypeString:        {name: "xs:string", parent: TypeAnyAtomicType, isAtomic: true},
	TypeBoolean:       {name: "xs:boolean", parent: TypeAnyAtomicType, isAtomic: true},
	TypeDecimal:       {name: "xs:decimal", parent: TypeAnyAtomicType, isAtomic: true},
	TypeFloat:         {name: "xs:float", parent: TypeAnyAtomicType, isAtomic: true},
	TypeDouble:        {name: "xs:double", parent: TypeAnyAtomicType, isAtomic: true},
	TypeDuration:      {name: "xs:duration", parent: TypeAnyAtomicType, isAtomic: true},
	TypeDateTime:      {name: "xs:dateTime", parent: TypeAnyAtomicType, isAtomic: true},
	TypeDate:          {name: "xs:date", parent: TypeAnyAtomicType, isAtomic: true},
	TypeTime:          {name: "xs:time", parent: TypeAnyAtomicType, isAtomic: true},
	TypeGYearMonth:    {name: "xs:gYearMonth", parent: TypeAnyAtomicType, isAtomic: true},
	TypeGYear:         {name: "xs:gYear", parent: TypeAnyAtomicType, isAtomic: true},
	TypeGMonthDay:     {name: "xs:gMonthDay", parent: TypeAnyAtomicType, isAtomic: true},
	TypeGDay:          {name: "xs:gDay", parent: TypeAnyAtomicType, isAtomic: true},
	TypeGMonth:        {name: "xs:gMonth", parent: TypeAnyAtomicType, isAtomic: true},
	TypeHexBinary:     {name: "xs:hexBinary", parent: TypeAnyAtomicType, isAtomic: true},
	TypeBase64Binary:  {name: "xs:base64Binary", parent: TypeAnyAtomicType, isAtomic: true},
	TypeAnyURI:        {name: "xs:anyURI", parent: TypeAnyAtomicType, isAtomic: true},
	TypeQName:         {name: "xs:QName", parent: TypeAnyAtomicType, isAtomic: true},
	TypeNOTATION:      {name: "xs:NOTATION", parent: TypeAnyAtomicType, isAtomic: true, abstract: true},

	TypeInteger:           {name: "xs:integer", parent: TypeDecimal, isAtomic: true},
	TypeNonPositiveInt:    {name: "xs:nonPositiveInteger", parent: TypeInteger, isAtomic: true},
	TypeNegativeInt:       {name: "xs:negativeInteger", parent: TypeNonPositiveInt, isAtomic: true},
	TypeLong:              {name: "xs:long", parent: TypeInteger, isAtomic: true},
	TypeInt:               {name: "xs:int", parent: TypeLong, isAtomic: true},
	TypeShort:             {name: "xs:short", parent: TypeInt, isAtomic: true},
	TypeByte:              {name: "xs:byte", parent: TypeShort, isAtomic: true},
	TypeNonNegativeInt:    {name: "xs:nonNegativeInteger", parent: TypeInteger, isAtomic: true},
	TypeUnsignedLong:      {name: "xs:unsignedLong", parent: TypeNonNegativeInt, isAtomic: true},
	TypeUnsignedInt:       {name: "xs:unsignedInt", parent: TypeUnsignedLong, isAtomic: true},
	TypeUnsignedShort:     {name: "xs:unsignedShort", parent: TypeUnsignedInt, isAtomic: true},
	TypeUnsignedByte:      {name: "xs:unsignedByte", parent: TypeUnsignedShort, isAtomic: true},
	TypePositiveInt:       {name: "xs:positiveInteger", parent: TypeNonNegativeInt, isAtomic: true},
	TypeDayTimeDuration:   {name: "xs:dayTimeDuration", parent: TypeDuration, isAtomic: true},
	TypeYearMonthDuration: {name: "xs:yearMonthDuration", parent: TypeDuration, isAtomic: true},
}

// ancestors[t] is the set of t and every type t is a (reflexive, transitive)
// subtype of. Populated once at init by closeAncestors.
var ancestors map[Type]*collections.SortedIntSet

func init() {
	ancestors = make(map[Type]*collections.SortedIntSet, len(typeTable))
	for t := range typeTable {
		ancestors[t] = closeAncestors(t)
	}
	for t := range typeTable {
		info := typeTable[t]
		info.primitive = primitiveAncestorOf(t)
		typeTable[t] = info
	}
}

func closeAncestors(t Type) *collections.SortedIntSet {
	set := collections.NewSortedIntSet()
	cur := t
	for {
		set.Add(int32(cur))
		info, ok := typeTable[cur]
		if !ok || info.parent < 0 {
			break
		}
		cur = info.parent
	}
	return set
}

// primitiveBoundary holds the 19 XSD primitive atomic types plus
// xs:untypedAtomic: the built-in
// derivations (integer, int, ...) report their nearest primitive ancestor,
// not themselves, via Primitive().
var primitiveBoundary = map[Type]bool{
	TypeUntypedAtomic: true, TypeString: true, TypeBoolean: true, TypeDecimal: true,
	TypeFloat: true, TypeDouble: true, TypeDuration: true, TypeDateTime: true,
	TypeDate: true, TypeTime: true, TypeGYearMonth: true, TypeGYear: true,
	TypeGMonthDay: true, TypeGDay: true, TypeGMonth: true, TypeHexBinary: true,
	TypeBase64Binary: true, TypeAnyURI: true, TypeQName: true, TypeNOTATION: true,
}

func primitiveAncestorOf(t Type) Type {
	cur := t
	for {
		if primitiveBoundary[cur] {
			return cur
		}
		info, ok := typeTable[cur]
		if !ok || info.parent < 0 {
			return cur
		}
		cur = info.parent
	}
}

// IsSubType reports whether a is a (reflexive) subtype of b: every value
// whose dynamic type is a is also a valid value of type b.
func IsSubType(a, b Type) bool {
	set, ok := ancestors[a]
	if !ok {
		return false
	}
	return set.Contains(int32(b))
}

// Name returns the type's display name (e.g. "xs:integer", "element()").
func Name(t Type) string {
	if info, ok := typeTable[t]; ok {
		return info.name
	}
	return "unknown"
}

// IsAbstract reports whether t cannot be the dynamic type of any value
// (item(), node(), xs:anyAtomicType, xs:NOTATION).
func IsAbstract(t Type) bool {
	return typeTable[t].abstract
}

// IsNodeKind reports whether t is one of the seven node kinds or node().
func IsNodeKind(t Type) bool {
	return typeTable[t].isNode
}

// IsAtomicType reports whether t is xs:anyAtomicType or one of its descendants.
func IsAtomicType(t Type) bool {
	return typeTable[t].isAtomic
}

// Primitive returns t's primitive ancestor: for a primitive type this is t
// itself; for a built-in derivation (xs:integer, xs:int, ...) it is the
// primitive type it derives from (xs:decimal for both).
func Primitive(t Type) Type {
	return typeTable[t].primitive
}

var byName map[string]Type

func init() {
	byName = make(map[string]Type, len(typeTable))
	for t, info := range typeTable {
		byName[info.name] = t
	}
	// Accept the bare kind-test keyword alongside its "()" display form
	// (e.g. "element" as well as "element()"), and the common xs:* aliases
	// a SequenceType/cast-target parser needs to resolve without its own
	// copy of this table.
	byName["item"] = TypeItem
	byName["node"] = TypeNode
	byName["document-node"] = TypeDocument
	byName["element"] = TypeElement
	byName["attribute"] = TypeAttribute
	byName["text"] = TypeText
	byName["comment"] = TypeComment
	byName["processing-instruction"] = TypeProcessingInstruction
	byName["namespace-node"] = TypeNamespace
}

// LookupByName resolves a type's display name (with or without a trailing
// "()", e.g. both "xs:integer" and "element()") back to its Type, for a
// parser's cast-target / instance-of / kind-test resolution. Reports false
// for an unrecognized name.
func LookupByName(name string) (Type, bool) {
	if t, ok := byName[name]; ok {
		return t, true
	}
	if t, ok := byName[strings.TrimSuffix(name, "()")]; ok {
		return t, true
	}
	return 0, false
}
