package genome

import (
	"github.com/rxtech-lab/argo-evolution/pkg/errors"
)

// Type is the value type a node produces.
type Type uint8

const (
	TypeNumeric Type = iota + 1
	TypeBool
	TypeSignal
)

func (t Type) String() string {
	switch t {
	case TypeNumeric:
		return "numeric"
	case TypeBool:
		return "bool"
	case TypeSignal:
		return "signal"
	default:
		return "unknown"
	}
}

// Kind is the closed set of node kinds a genome may contain.
type Kind uint8

const (
	KindConst Kind = iota + 1
	KindPrice
	KindIndicator
	KindAdd
	KindSub
	KindMul
	KindDiv
	KindTrue
	KindFalse
	KindGt
	KindLt
	KindCrossAbove
	KindCrossBelow
	KindAnd
	KindOr
	KindNot
	KindSize
	KindIf
)

type kindInfo struct {
	name   string
	result Type
	args   []Type
}

var kinds = map[Kind]kindInfo{
	KindConst:      {name: "const", result: TypeNumeric},
	KindPrice:      {name: "price", result: TypeNumeric},
	KindIndicator:  {name: "indicator", result: TypeNumeric},
	KindAdd:        {name: "add", result: TypeNumeric, args: []Type{TypeNumeric, TypeNumeric}},
	KindSub:        {name: "sub", result: TypeNumeric, args: []Type{TypeNumeric, TypeNumeric}},
	KindMul:        {name: "mul", result: TypeNumeric, args: []Type{TypeNumeric, TypeNumeric}},
	KindDiv:        {name: "div", result: TypeNumeric, args: []Type{TypeNumeric, TypeNumeric}},
	KindTrue:       {name: "true", result: TypeBool},
	KindFalse:      {name: "false", result: TypeBool},
	KindGt:         {name: "gt", result: TypeBool, args: []Type{TypeNumeric, TypeNumeric}},
	KindLt:         {name: "lt", result: TypeBool, args: []Type{TypeNumeric, TypeNumeric}},
	KindCrossAbove: {name: "cross_above", result: TypeBool, args: []Type{TypeNumeric, TypeNumeric}},
	KindCrossBelow: {name: "cross_below", result: TypeBool, args: []Type{TypeNumeric, TypeNumeric}},
	KindAnd:        {name: "and", result: TypeBool, args: []Type{TypeBool, TypeBool}},
	KindOr:         {name: "or", result: TypeBool, args: []Type{TypeBool, TypeBool}},
	KindNot:        {name: "not", result: TypeBool, args: []Type{TypeBool}},
	KindSize:       {name: "size", result: TypeSignal},
	KindIf:         {name: "if", result: TypeSignal, args: []Type{TypeBool, TypeSignal, TypeSignal}},
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kinds))
	for k, info := range kinds {
		m[info.name] = k
	}

	return m
}()

// internal kinds per result type, in a fixed order so random draws are reproducible.
var internalKinds = map[Type][]Kind{
	TypeNumeric: {KindAdd, KindSub, KindMul, KindDiv},
	TypeBool:    {KindGt, KindLt, KindCrossAbove, KindCrossBelow, KindAnd, KindOr, KindNot},
	TypeSignal:  {KindIf},
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	_, ok := kinds[k]

	return ok
}

// String returns the kind name used in the S-expression form.
func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}

	return "unknown"
}

// Result returns the type the kind produces.
func (k Kind) Result() Type {
	return kinds[k].result
}

// Arity returns the number of children the kind takes.
func (k Kind) Arity() int {
	return len(kinds[k].args)
}

// ArgType returns the required type of the i-th child.
func (k Kind) ArgType(i int) Type {
	return kinds[k].args[i]
}

// IsLeaf reports whether the kind takes no children.
func (k Kind) IsLeaf() bool {
	return k.Arity() == 0
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, errors.Newf(errors.ErrCodeInvalidType, "unknown node kind %d", k)
	}

	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	kind, ok := kindsByName[string(text)]
	if !ok {
		return errors.Newf(errors.ErrCodeGenomeDecodeFailed, "unknown node kind %q", string(text))
	}

	*k = kind

	return nil
}
