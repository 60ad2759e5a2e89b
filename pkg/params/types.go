package params

import (
	"fmt"
	"time"
)

// ParameterType identifies the type carried by a ParameterValue.
type ParameterType uint8

const (
	TypeNotSet ParameterType = iota
	TypeBool
	TypeInteger
	TypeDouble
	TypeString
	TypeByteArray
	TypeBoolArray
	TypeIntegerArray
	TypeDoubleArray
	TypeStringArray
)

// String returns the canonical name of the type.
func (t ParameterType) String() string {
	switch t {
	case TypeNotSet:
		return "not_set"
	case TypeBool:
		return "bool"
	case TypeInteger:
		return "integer"
	case TypeDouble:
		return "double"
	case TypeString:
		return "string"
	case TypeByteArray:
		return "byte_array"
	case TypeBoolArray:
		return "bool_array"
	case TypeIntegerArray:
		return "integer_array"
	case TypeDoubleArray:
		return "double_array"
	case TypeStringArray:
		return "string_array"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// ParameterValue is a tagged union of the supported parameter types.
// Only the field selected by Type is meaningful.
type ParameterValue struct {
	Type         ParameterType `cbor:"1,keyasint"`
	BoolValue    bool          `cbor:"2,keyasint,omitempty"`
	IntegerValue int64         `cbor:"3,keyasint,omitempty"`
	DoubleValue  float64       `cbor:"4,keyasint,omitempty"`
	StringValue  string        `cbor:"5,keyasint,omitempty"`
	ByteArray    []byte        `cbor:"6,keyasint,omitempty"`
	BoolArray    []bool        `cbor:"7,keyasint,omitempty"`
	IntegerArray []int64       `cbor:"8,keyasint,omitempty"`
	DoubleArray  []float64     `cbor:"9,keyasint,omitempty"`
	StringArray  []string      `cbor:"10,keyasint,omitempty"`
}

// Interface returns the contained value as an untyped interface, or nil
// for TypeNotSet.
func (v ParameterValue) Interface() interface{} {
	switch v.Type {
	case TypeBool:
		return v.BoolValue
	case TypeInteger:
		return v.IntegerValue
	case TypeDouble:
		return v.DoubleValue
	case TypeString:
		return v.StringValue
	case TypeByteArray:
		return v.ByteArray
	case TypeBoolArray:
		return v.BoolArray
	case TypeIntegerArray:
		return v.IntegerArray
	case TypeDoubleArray:
		return v.DoubleArray
	case TypeStringArray:
		return v.StringArray
	default:
		return nil
	}
}

// Parameter is a named, typed configuration value.
type Parameter struct {
	Name  string         `cbor:"1,keyasint"`
	Value ParameterValue `cbor:"2,keyasint"`
}

// Typed constructors

func BoolParameter(name string, value bool) Parameter {
	return Parameter{Name: name, Value: ParameterValue{Type: TypeBool, BoolValue: value}}
}

func IntegerParameter(name string, value int64) Parameter {
	return Parameter{Name: name, Value: ParameterValue{Type: TypeInteger, IntegerValue: value}}
}

func DoubleParameter(name string, value float64) Parameter {
	return Parameter{Name: name, Value: ParameterValue{Type: TypeDouble, DoubleValue: value}}
}

func StringParameter(name string, value string) Parameter {
	return Parameter{Name: name, Value: ParameterValue{Type: TypeString, StringValue: value}}
}

// ParameterEvent describes a batch of parameter changes on one node,
// tagged with the node's fully-qualified name.
type ParameterEvent struct {
	Node              string      `cbor:"1,keyasint"`
	Stamp             time.Time   `cbor:"2,keyasint"`
	NewParameters     []Parameter `cbor:"3,keyasint,omitempty"`
	ChangedParameters []Parameter `cbor:"4,keyasint,omitempty"`
	DeletedParameters []Parameter `cbor:"5,keyasint,omitempty"`
}
