// Package bfhl validates single-key bfhl requests and dispatches them to the
// matching operation.
package bfhl

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/cockroachdb/errors"
)

// Operation names the single key of a request body.
type Operation string

// Recognized operations. Keys are case-sensitive.
const (
	OpFibonacci Operation = "fibonacci"
	OpPrime     Operation = "prime"
	OpLCM       Operation = "lcm"
	OpHCF       Operation = "hcf"
	OpAI        Operation = "AI"
)

// Operations lists every recognized operation in a stable order.
func Operations() []Operation {
	return []Operation{OpFibonacci, OpPrime, OpLCM, OpHCF, OpAI}
}

// Known reports whether op is a recognized operation.
func (op Operation) Known() bool {
	switch op {
	case OpFibonacci, OpPrime, OpLCM, OpHCF, OpAI:
		return true
	}
	return false
}

// Request is a parsed body: the operation and its still-encoded value.
type Request struct {
	Op    Operation
	Value json.RawMessage
}

// ParseRequest decodes body and checks the envelope shape: a JSON object
// with exactly one member whose key is a recognized operation. The value is
// validated later by the operation handler.
func ParseRequest(body []byte) (Request, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Request{}, ErrMalformedBody
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &members); err != nil {
		return Request{}, errors.Mark(errors.Wrap(err, "decode body"), ErrMalformedBody)
	}
	if len(members) != 1 {
		return Request{}, errors.Wrapf(ErrKeyCount, "got %d keys", len(members))
	}
	for key, value := range members {
		op := Operation(key)
		if !op.Known() {
			return Request{}, errors.Wrapf(ErrUnknownOperation, "%q", key)
		}
		return Request{Op: op, Value: value}, nil
	}
	return Request{}, ErrKeyCount
}

// decodeValue decodes raw keeping numbers as json.Number.
func decodeValue(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// asInteger reports whether v is a JSON number with no fractional part that
// fits in an int64. 5 and 5.0 are integers; "5", true and 5.5 are not.
func asInteger(v any) (int64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	if i, err := n.Int64(); err == nil {
		return i, true
	}
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func decodeInteger(op Operation, raw json.RawMessage) (int64, error) {
	v, err := decodeValue(raw)
	if err != nil {
		return 0, invalidValue(op, "undecodable value")
	}
	i, ok := asInteger(v)
	if !ok {
		return 0, invalidValue(op, "expected an integer")
	}
	return i, nil
}

func decodeArray(op Operation, raw json.RawMessage) ([]any, error) {
	v, err := decodeValue(raw)
	if err != nil {
		return nil, invalidValue(op, "undecodable value")
	}
	items, ok := v.([]any)
	if !ok {
		return nil, invalidValue(op, "expected an array")
	}
	return items, nil
}

// decodeIntegers requires every element of the array to be an integer.
func decodeIntegers(op Operation, raw json.RawMessage) ([]int64, error) {
	items, err := decodeArray(op, raw)
	if err != nil {
		return nil, err
	}
	out := make([]int64, 0, len(items))
	for i, item := range items {
		n, ok := asInteger(item)
		if !ok {
			return nil, invalidValue(op, "element %d is not an integer", i)
		}
		out = append(out, n)
	}
	return out, nil
}

// collectIntegers keeps the integer elements of the array and drops the rest.
func collectIntegers(op Operation, raw json.RawMessage) ([]int64, error) {
	items, err := decodeArray(op, raw)
	if err != nil {
		return nil, err
	}
	out := make([]int64, 0, len(items))
	for _, item := range items {
		if n, ok := asInteger(item); ok {
			out = append(out, n)
		}
	}
	return out, nil
}

func decodeQuestion(op Operation, raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", invalidValue(op, "expected a string")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", invalidValue(op, "empty question")
	}
	return s, nil
}
