// Package dataflow is the renderer-facing sink of the compiler: data nodes carrying named typed-buffer
// and texture inputs plus an optional filter directive.
package dataflow

import "fmt"

// LogicalType is the shape a renderer reads a buffer entry as.
type LogicalType int

const (
	TypeUnknown LogicalType = iota
	TypeFloat
	TypeFloat2
	TypeFloat3
	TypeFloat4
	TypeFloat2x2
	TypeFloat3x3
	TypeFloat4x4
	TypeInt
	TypeInt4
	TypeByte
	TypeUByte
)

var logicalTypeNames = map[LogicalType]string{
	TypeUnknown:  "unknown",
	TypeFloat:    "float",
	TypeFloat2:   "float2",
	TypeFloat3:   "float3",
	TypeFloat4:   "float4",
	TypeFloat2x2: "float2x2",
	TypeFloat3x3: "float3x3",
	TypeFloat4x4: "float4x4",
	TypeInt:      "int",
	TypeInt4:     "int4",
	TypeByte:     "byte",
	TypeUByte:    "ubyte",
}

func (t LogicalType) String() string {
	if name, ok := logicalTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("LogicalType(%d)", int(t))
}

// TupleSize returns the number of components per element, or 0 for TypeUnknown.
// Byte types report 1; unsigned byte entries may carry wider tuples, see BufferEntry.TupleSize.
func (t LogicalType) TupleSize() int {
	switch t {
	case TypeFloat, TypeInt, TypeByte, TypeUByte:
		return 1
	case TypeFloat2:
		return 2
	case TypeFloat3:
		return 3
	case TypeFloat4, TypeFloat2x2, TypeInt4:
		return 4
	case TypeFloat3x3:
		return 9
	case TypeFloat4x4:
		return 16
	default:
		return 0
	}
}

// FloatTypeForTupleSize maps a float tuple size to its vector type.
// Only sizes 1 through 4 have a vector form; matrices are addressed by shape, not size.
func FloatTypeForTupleSize(n int) LogicalType {
	switch n {
	case 1:
		return TypeFloat
	case 2:
		return TypeFloat2
	case 3:
		return TypeFloat3
	case 4:
		return TypeFloat4
	default:
		return TypeUnknown
	}
}

// ComponentKind identifies the backing storage of a BufferEntry.
type ComponentKind int

const (
	KindInt8 ComponentKind = iota
	KindUint8
	KindInt32
	KindFloat32
)

// BufferEntry is a typed numeric sequence ready to be attached to a named input.
// Exactly one of the backing slices is set, selected by Kind.
type BufferEntry struct {
	Kind ComponentKind
	Type LogicalType

	// Tuple is the number of components per element.
	Tuple int

	Int8    []int8
	Uint8   []uint8
	Int32   []int32
	Float32 []float32
}

// NewFloat32Entry creates a float buffer entry.
func NewFloat32Entry(t LogicalType, values []float32) *BufferEntry {
	return &BufferEntry{Kind: KindFloat32, Type: t, Tuple: t.TupleSize(), Float32: values}
}

// NewInt32Entry creates a 32-bit integer buffer entry.
func NewInt32Entry(t LogicalType, values []int32) *BufferEntry {
	return &BufferEntry{Kind: KindInt32, Type: t, Tuple: t.TupleSize(), Int32: values}
}

// NewInt8Entry creates a signed byte buffer entry.
func NewInt8Entry(values []int8) *BufferEntry {
	return &BufferEntry{Kind: KindInt8, Type: TypeByte, Tuple: 1, Int8: values}
}

// NewUint8Entry creates an unsigned byte buffer entry with the given tuple size.
func NewUint8Entry(tuple int, values []uint8) *BufferEntry {
	return &BufferEntry{Kind: KindUint8, Type: TypeUByte, Tuple: tuple, Uint8: values}
}

// Len returns the number of components (not elements) in the entry.
func (b *BufferEntry) Len() int {
	switch b.Kind {
	case KindInt8:
		return len(b.Int8)
	case KindUint8:
		return len(b.Uint8)
	case KindInt32:
		return len(b.Int32)
	case KindFloat32:
		return len(b.Float32)
	default:
		return 0
	}
}

// Count returns the number of elements in the entry.
func (b *BufferEntry) Count() int {
	if b.Tuple == 0 {
		return 0
	}
	return b.Len() / b.Tuple
}

func (*BufferEntry) isEntry() {}
