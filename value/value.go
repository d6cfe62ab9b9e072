// Package value implements the engine's dynamic polymorphic datum: a
// tagged union that carries template contexts, helper arguments, and
// evaluation results between the lexer/parser/evaluator stages.
package value

import (
	"errors"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cast"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind identifies which variant a Value currently holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindDouble
	KindString
	KindArray
	KindObject
	KindUser
)

// String returns a human-readable name for the kind, used in diagnostics.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindUser:
		return "user"
	default:
		return "unknown"
	}
}

// ErrWrongType is returned by ToValue when the stored payload's type tag
// does not match the requested type.
var ErrWrongType = errors.New("value: wrong type")

type userPayload struct {
	tag  string
	data any
}

// ObjectMap is the ordered string-keyed container backing KindObject
// values. Insertion order is preserved across Set/iteration, matching
// the Object invariant in spec.md §3.
type ObjectMap = orderedmap.OrderedMap[string, Value]

// Value is the engine's dynamic datum. The zero Value is Null.
type Value struct {
	kind Kind

	boolV bool
	intV  int64
	dblV  float64
	strV  string
	safe  bool // String variant only: already-escaped, do not re-escape

	arr []Value
	obj *ObjectMap

	user *userPayload
}

// Null returns the Null Value.
func Null() Value { return Value{kind: KindNull} }

// Bool constructs a Bool Value.
func Bool(b bool) Value { return Value{kind: KindBool, boolV: b} }

// Int constructs a signed 64-bit Int Value.
func Int(i int64) Value { return Value{kind: KindInt, intV: i} }

// Double constructs a Double Value.
func Double(d float64) Value { return Value{kind: KindDouble, dblV: d} }

// String constructs a String Value that WILL be HTML-escaped when
// stringified into output (the common case: user data, not markup).
func String(s string) Value { return Value{kind: KindString, strV: s} }

// SafeString constructs a String Value flagged as already-escaped, so the
// evaluator will not re-escape it on output. Named "UnsafeStringTag" in
// the original implementation this engine is modelled on (a historical
// misnomer: it marks a string as safe to emit raw, not as unsafe).
func SafeString(s string) Value { return Value{kind: KindString, strV: s, safe: true} }

// NewArray constructs an Array Value from the given elements (copied).
func NewArray(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindArray, arr: cp}
}

// NewObject constructs an empty Object Value.
func NewObject() Value {
	return Value{kind: KindObject, obj: orderedmap.New[string, Value]()}
}

// FromValue wraps an arbitrary payload as a UserType Value identified by
// tag, for embedders to round-trip opaque data through the context.
func FromValue[T any](tag string, v T) Value {
	return Value{kind: KindUser, user: &userPayload{tag: tag, data: v}}
}

// ToValue retrieves a UserType Value's payload, failing with ErrWrongType
// if the stored tag (or underlying Go type) does not match.
func ToValue[T any](v Value, tag string) (T, error) {
	var zero T
	if v.kind != KindUser || v.user == nil || v.user.tag != tag {
		return zero, ErrWrongType
	}
	t, ok := v.user.data.(T)
	if !ok {
		return zero, ErrWrongType
	}
	return t, nil
}

// Type returns the Value's kind.
func (v Value) Type() Kind { return v.kind }

func (v Value) IsNull() bool   { return v.kind == KindNull }
func (v Value) IsArray() bool  { return v.kind == KindArray }
func (v Value) IsObject() bool { return v.kind == KindObject }
func (v Value) IsString() bool { return v.kind == KindString }

// IsSafe reports whether a String Value is flagged as already-escaped.
func (v Value) IsSafe() bool { return v.kind == KindString && v.safe }

// IsEmpty reports Size() == 0.
func (v Value) IsEmpty() bool { return v.Size() == 0 }

// Size returns length for Array/Object/String, 0 for Null, 1 otherwise.
func (v Value) Size() int {
	switch v.kind {
	case KindNull:
		return 0
	case KindArray:
		return len(v.arr)
	case KindObject:
		if v.obj == nil {
			return 0
		}
		return v.obj.Len()
	case KindString:
		return len([]rune(v.strV))
	default:
		return 1
	}
}

// ToBool implements the toBool coercion table from spec.md §4.A.
func (v Value) ToBool() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.boolV
	case KindInt:
		return v.intV != 0
	case KindDouble:
		return v.dblV != 0
	case KindString:
		if v.strV == "true" {
			return true
		}
		if n, err := cast.ToFloat64E(v.strV); err == nil {
			return n != 0
		}
		return false
	case KindArray, KindObject:
		return v.Size() > 0
	default:
		return true
	}
}

// ToInt is an alias of ToInt64 truncated to the platform int width, kept
// distinct from ToInt64 to mirror the embedding API in spec.md §6.
func (v Value) ToInt() int { return int(v.ToInt64()) }

// ToInt64 coerces the Value to a signed 64-bit integer.
func (v Value) ToInt64() int64 {
	switch v.kind {
	case KindBool:
		if v.boolV {
			return 1
		}
		return 0
	case KindInt:
		return v.intV
	case KindDouble:
		return int64(v.dblV)
	case KindString:
		n, err := cast.ToInt64E(v.strV)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// ToUInt coerces to an unsigned platform-width integer, clamping negatives to 0.
func (v Value) ToUInt() uint { return uint(v.ToUInt64()) }

// ToUInt64 coerces to an unsigned 64-bit integer, clamping negatives to 0.
func (v Value) ToUInt64() uint64 {
	i := v.ToInt64()
	if i < 0 {
		return 0
	}
	return uint64(i)
}

// ToDouble coerces the Value to a float64.
func (v Value) ToDouble() float64 {
	switch v.kind {
	case KindBool:
		if v.boolV {
			return 1
		}
		return 0
	case KindInt:
		return float64(v.intV)
	case KindDouble:
		return v.dblV
	case KindString:
		f, err := cast.ToFloat64E(v.strV)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// ToString implements the toString coercion table from spec.md §4.A.
// Double formatting uses the shortest round-tripping decimal form
// (strconv's 'g' with precision -1); this engine's documented choice for
// the numeric-to-string Open Question spec.md §9 leaves unpinned.
func (v Value) ToString() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		if v.boolV {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(v.intV, 10)
	case KindDouble:
		return strconv.FormatFloat(v.dblV, 'g', -1, 64)
	case KindString:
		return v.strV
	case KindArray:
		parts := lo.Map(v.arr, func(e Value, _ int) string { return e.ToString() })
		return "[" + strings.Join(parts, ",") + "]"
	case KindObject:
		if v.obj == nil {
			return "{}"
		}
		parts := make([]string, 0, v.obj.Len())
		for pair := v.obj.Oldest(); pair != nil; pair = pair.Next() {
			parts = append(parts, pair.Key+":"+pair.Value.ToString())
		}
		return "{" + strings.Join(parts, ",") + "}"
	case KindUser:
		return "<user:" + v.userTag() + ">"
	default:
		return ""
	}
}

func (v Value) userTag() string {
	if v.user == nil {
		return ""
	}
	return v.user.tag
}

// Append adds an element to an Array Value in place (the Array's
// underlying slice header may change address). A non-Array receiver is
// first replaced by an empty Array.
func (v *Value) Append(item Value) {
	if v.kind != KindArray {
		*v = NewArray()
	}
	v.arr = append(v.arr, item)
}

// At returns the element at position i, or Null if out of range or if
// the receiver is not an Array. It is a pure read: it never promotes or
// grows the receiver (only SetAt does).
func (v Value) At(i int) Value {
	if v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return Null()
	}
	return v.arr[i]
}

// SetAt writes arr[i] = val, growing the array (filling gaps with Null)
// if needed. A Null receiver is promoted in place to an Array.
func (v *Value) SetAt(i int, val Value) {
	if v.kind == KindNull {
		*v = NewArray()
	}
	if v.kind != KindArray {
		return
	}
	for len(v.arr) <= i {
		v.arr = append(v.arr, Null())
	}
	v.arr[i] = val
}

// Elements returns the Array's elements (nil for non-Array values).
func (v Value) Elements() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.arr
}

// HasMember reports whether an Object Value has the given key.
func (v Value) HasMember(key string) bool {
	if v.kind != KindObject || v.obj == nil {
		return false
	}
	_, ok := v.obj.Get(key)
	return ok
}

// Member returns an Object Value's member, or Null if absent or if the
// receiver is not an Object.
func (v Value) Member(key string) Value {
	if v.kind != KindObject || v.obj == nil {
		return Null()
	}
	val, ok := v.obj.Get(key)
	if !ok {
		return Null()
	}
	return val
}

// SetMember writes obj[key] = val, preserving insertion order for new
// keys. A Null receiver is promoted in place to an Object.
func (v *Value) SetMember(key string, val Value) {
	if v.kind == KindNull {
		*v = NewObject()
	}
	if v.kind != KindObject {
		return
	}
	if v.obj == nil {
		v.obj = orderedmap.New[string, Value]()
	}
	v.obj.Set(key, val)
}

// Keys returns an Object's keys in insertion order (nil for non-Object).
func (v Value) Keys() []string {
	if v.kind != KindObject || v.obj == nil {
		return nil
	}
	keys := make([]string, 0, v.obj.Len())
	for pair := v.obj.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Iterate yields element Values for Array/Object, in order; for Object
// it yields values (not keys), matching spec.md §4.A. No-op for other
// kinds.
func (v Value) Iterate(fn func(Value)) {
	switch v.kind {
	case KindArray:
		for _, e := range v.arr {
			fn(e)
		}
	case KindObject:
		if v.obj == nil {
			return
		}
		for pair := v.obj.Oldest(); pair != nil; pair = pair.Next() {
			fn(pair.Value)
		}
	}
}
