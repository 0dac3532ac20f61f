package rdb

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/fxamacker/cbor/v2"
)

// Records are stored as CBOR blobs. Encoding uses Core Deterministic
// Encoding so the same logical record always produces identical bytes;
// decoding accepts standard CBOR and ignores shapes this core does not
// model.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("rdb: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		// Record keys are always text; decode any-typed targets to
		// map[string]any instead of CBOR's map[any]any default.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("rdb: CBOR decoder initialization failed: " + err.Error())
	}
}

// Encode serializes v to the record wire form.
func Encode(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// DecodeRecord parses one stored record blob into a Value tree.
func DecodeRecord(data []byte) (Value, error) {
	var raw any
	if err := decMode.Unmarshal(data, &raw); err != nil {
		return Value{}, fmt.Errorf("decoding record: %w", err)
	}
	return fromAny(raw), nil
}

// fromAny converts a decoded CBOR datum to the tagged Value union. Shapes
// outside the record model (floats, booleans, arrays, negative integers)
// come back absent, so downstream projection ignores them.
func fromAny(raw any) Value {
	switch x := raw.(type) {
	case string:
		return StringValue(x)
	case uint64:
		return UintValue(x)
	case int64:
		if x >= 0 {
			return UintValue(uint64(x))
		}
		return Value{}
	case []byte:
		return BinaryValue(x)
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]Pair, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, Pair{Key: k, Value: fromAny(x[k])})
		}
		return MapValue(pairs...)
	default:
		return Value{}
	}
}
