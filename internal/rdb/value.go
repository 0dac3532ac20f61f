package rdb

import "bytes"

// Kind identifies the shape of a Value.
type Kind uint8

// Value kinds. Records are self-describing: the kind of every datum is
// determined at read time, not by a fixed schema.
const (
	KindAbsent Kind = iota
	KindString
	KindUint
	KindBinary
	KindMap
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindUint:
		return "uint"
	case KindBinary:
		return "binary"
	case KindMap:
		return "map"
	default:
		return "absent"
	}
}

// Value is one tagged datum read from a record. The zero Value is absent.
type Value struct {
	Kind Kind
	Str  string
	Num  uint64
	Bin  []byte
	Map  []Pair
}

// Pair is one key/value member of a map-valued record. A map may carry the
// same key more than once; consumers see pairs in delivery order.
type Pair struct {
	Key   string
	Value Value
}

// StringValue constructs a string Value.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// UintValue constructs an unsigned integer Value.
func UintValue(n uint64) Value { return Value{Kind: KindUint, Num: n} }

// BinaryValue constructs a binary Value.
func BinaryValue(b []byte) Value { return Value{Kind: KindBinary, Bin: b} }

// MapValue constructs a map Value from pairs.
func MapValue(pairs ...Pair) Value { return Value{Kind: KindMap, Map: pairs} }

// Equal reports whether two values have the same kind and content. Map
// values compare pair-by-pair in order.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindString:
		return v.Str == o.Str
	case KindUint:
		return v.Num == o.Num
	case KindBinary:
		return bytes.Equal(v.Bin, o.Bin)
	case KindMap:
		if len(v.Map) != len(o.Map) {
			return false
		}
		for i := range v.Map {
			if v.Map[i].Key != o.Map[i].Key || !v.Map[i].Value.Equal(o.Map[i].Value) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Get returns the value of the last pair carrying key, or an absent Value.
// Last occurrence wins, matching projection semantics.
func (v Value) Get(key string) Value {
	out := Value{}
	for _, p := range v.Map {
		if p.Key == key {
			out = p.Value
		}
	}
	return out
}
