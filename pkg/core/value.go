package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Kind classifies the shape of a slot value.
type Kind int

const (
	KindScalar Kind = iota
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "scalar"
	}
}

// Value is a decoded slot value: a sequence of records, a mapping, or a
// scalar (string, number, bool or null).
// Numbers are kept as json.Number so that values survive a decode/encode
// cycle without float rounding.
type Value struct {
	kind   Kind
	seq    []any
	fields map[string]any
	scalar any
}

// ValueOf classifies an already decoded JSON value.
func ValueOf(v any) Value {
	switch t := v.(type) {
	case []any:
		return Value{kind: KindSequence, seq: t}
	case map[string]any:
		return Value{kind: KindMapping, fields: t}
	default:
		return Value{kind: KindScalar, scalar: t}
	}
}

// Sequence builds a sequence value.
func Sequence(items []any) Value {
	if items == nil {
		items = []any{}
	}
	return Value{kind: KindSequence, seq: items}
}

// Mapping builds a mapping value.
func Mapping(fields map[string]any) Value {
	if fields == nil {
		fields = map[string]any{}
	}
	return Value{kind: KindMapping, fields: fields}
}

// ParseValue decodes a stored string as JSON.
func ParseValue(raw string) (Value, error) {
	v, err := DecodeJSON([]byte(raw))
	if err != nil {
		return Value{}, err
	}
	return ValueOf(v), nil
}

// DecodeJSON decodes exactly one JSON value, keeping numbers as json.Number.
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid json: trailing data after value")
	}
	return v, nil
}

// Kind reports the shape of the value.
func (v Value) Kind() Kind { return v.kind }

// Items returns the elements of a sequence value, nil otherwise.
func (v Value) Items() []any { return v.seq }

// Fields returns the entries of a mapping value, nil otherwise.
func (v Value) Fields() map[string]any { return v.fields }

// Raw returns the plain decoded representation.
func (v Value) Raw() any {
	switch v.kind {
	case KindSequence:
		return v.seq
	case KindMapping:
		return v.fields
	default:
		return v.scalar
	}
}

// Len is the element count of a sequence or the key count of a mapping.
func (v Value) Len() int {
	switch v.kind {
	case KindSequence:
		return len(v.seq)
	case KindMapping:
		return len(v.fields)
	default:
		return 0
	}
}

// Truthy follows the loose truthiness the stored documents were written with:
// null, false, "", and 0 are false; everything else is true.
func (v Value) Truthy() bool {
	if v.kind != KindScalar {
		return true
	}
	return Truthy(v.scalar)
}

// Encode renders the value in its storage representation.
func (v Value) Encode() (string, error) {
	data, err := json.Marshal(v.Raw())
	if err != nil {
		return "", fmt.Errorf("failed to encode %s value: %w", v.kind, err)
	}
	return string(data), nil
}

// Truthy reports whether a decoded JSON value counts as present.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case float64:
		return t != 0
	default:
		return true
	}
}

// IdentityOf returns the identity of a record: its "id" field. Records with
// no usable id (absent, empty, zero, or not a string/number) have none.
// String and numeric ids never collide with each other; numeric ids are
// keyed by value, so 1, 1.0 and 1e0 are the same record.
func IdentityOf(item any) (string, bool) {
	rec, ok := item.(map[string]any)
	if !ok {
		return "", false
	}
	id, ok := rec["id"]
	if !ok || !Truthy(id) {
		return "", false
	}
	switch t := id.(type) {
	case string:
		return "s:" + t, true
	case json.Number:
		return "n:" + CanonicalNumber(t.String()), true
	case float64:
		return "n:" + CanonicalNumber(strconv.FormatFloat(t, 'g', -1, 64)), true
	default:
		return "", false
	}
}

// IdentitiesOf returns the identities a textual id may refer to: the string
// id and, when text is a number, the numeric id.
func IdentitiesOf(text string) []string {
	ids := []string{"s:" + text}
	if _, err := strconv.ParseFloat(text, 64); err == nil {
		ids = append(ids, "n:"+CanonicalNumber(text))
	}
	return ids
}

// maxExactInt is the largest integer a float64 holds exactly.
const maxExactInt = 1 << 53

// CanonicalNumber normalises a JSON number literal. Integer literals are
// kept verbatim so large ids keep every digit; other forms are reduced to
// their value, as an integer when it is one.
func CanonicalNumber(lit string) string {
	if !strings.ContainsAny(lit, ".eE") {
		if lit == "-0" {
			return "0"
		}
		return lit
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return lit
	}
	if f == math.Trunc(f) && math.Abs(f) <= maxExactInt {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// IDString renders a scalar identifier (owner or user id) for comparison.
func IDString(v any) (string, bool) {
	if !Truthy(v) {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return fmt.Sprint(t), true
	default:
		return "", false
	}
}
