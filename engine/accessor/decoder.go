// Package accessor decodes glTF accessors into typed buffer entries.
// Decoding is a pure byte-to-typed-sequence transform: it knows nothing about vertex semantics
// and only requires the accessor's buffer to be loaded.
package accessor

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-gltf/engine/dataflow"
	"github.com/Carmen-Shannon/oxy-gltf/engine/document"
)

// Common errors returned by Decode
var (
	ErrNoAccessor           = errors.New("no accessor given")
	ErrUnknownElementType   = errors.New("unknown accessor element type")
	ErrUnknownComponentType = errors.New("unknown accessor component type")
	ErrUnsupportedStride    = errors.New("buffer strides are not supported")
	ErrUnsupportedByteShape = errors.New("byte components are supported for SCALAR accessors only")
	ErrUnsupportedIntShape  = errors.New("short components are supported for SCALAR and VEC4 accessors only")
	ErrEmptyAccessor        = errors.New("accessor has no elements")
	ErrNoBufferView         = errors.New("accessor has no linked buffer view")
	ErrBufferNotLoaded      = errors.New("buffer bytes are not loaded")
	ErrOutOfBounds          = errors.New("accessor range exceeds buffer bounds")
)

// Decode reads the accessor's byte range and converts it into a typed buffer entry.
//
// Parameters:
//   - acc: a linked accessor whose buffer has been loaded
//
// Returns:
//   - *dataflow.BufferEntry: tuple size × count components of the converted type
//   - error: error if the accessor is malformed or uses an unsupported layout
func Decode(acc *document.Accessor) (*dataflow.BufferEntry, error) {
	if acc == nil {
		return nil, ErrNoAccessor
	}

	tupleSize, ok := TupleSize(acc.Type)
	if !ok {
		return nil, fmt.Errorf("accessor %q: %w: %q", acc.ID, ErrUnknownElementType, acc.Type)
	}
	componentSize, ok := ComponentSize(acc.ComponentType)
	if !ok {
		return nil, fmt.Errorf("accessor %q: %w: %d", acc.ID, ErrUnknownComponentType, acc.ComponentType)
	}

	tupleByteSize := tupleSize * componentSize
	if acc.ByteStride != 0 && acc.ByteStride != tupleByteSize {
		return nil, fmt.Errorf("accessor %q: %w: stride %d, element size %d", acc.ID, ErrUnsupportedStride, acc.ByteStride, tupleByteSize)
	}

	if acc.Count <= 0 {
		return nil, fmt.Errorf("accessor %q: %w", acc.ID, ErrEmptyAccessor)
	}

	raw, err := byteRange(acc, tupleByteSize)
	if err != nil {
		return nil, fmt.Errorf("accessor %q: %w", acc.ID, err)
	}
	length := tupleSize * acc.Count

	switch acc.ComponentType {
	case document.ComponentTypeByte:
		if tupleSize != 1 {
			return nil, fmt.Errorf("accessor %q: %w: found %s", acc.ID, ErrUnsupportedByteShape, acc.Type)
		}
		values := make([]int8, length)
		for i := range values {
			values[i] = int8(raw[i])
		}
		return dataflow.NewInt8Entry(values), nil

	case document.ComponentTypeUnsignedByte:
		values := make([]uint8, length)
		copy(values, raw)
		return dataflow.NewUint8Entry(tupleSize, values), nil

	case document.ComponentTypeShort, document.ComponentTypeUnsignedShort:
		t := intType(tupleSize)
		if t == dataflow.TypeUnknown {
			return nil, fmt.Errorf("accessor %q: %w: found %s", acc.ID, ErrUnsupportedIntShape, acc.Type)
		}
		// Both 16-bit kinds are widened into 32-bit lanes; the sink has no 16-bit integer type.
		values := make([]int32, length)
		signed := acc.ComponentType == document.ComponentTypeShort
		for i := range values {
			v := binary.LittleEndian.Uint16(raw[i*2:])
			if signed {
				values[i] = int32(int16(v))
			} else {
				values[i] = int32(v)
			}
		}
		return dataflow.NewInt32Entry(t, values), nil

	case document.ComponentTypeFloat:
		values := make([]float32, length)
		for i := range values {
			values[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		}
		return dataflow.NewFloat32Entry(floatType(acc.Type, tupleSize), values), nil
	}

	// ComponentSize rejected everything else above.
	return nil, fmt.Errorf("accessor %q: %w: %d", acc.ID, ErrUnknownComponentType, acc.ComponentType)
}

// byteRange returns the bytes of acc.Count elements of elemSize bytes, starting at accessor offset +
// buffer view offset. The count is checked against the available bytes before any size is computed
// so an oversized count cannot overflow.
func byteRange(acc *document.Accessor, elemSize int) ([]byte, error) {
	bv := acc.BufferView
	if bv == nil {
		return nil, ErrNoBufferView
	}
	buf := bv.Buffer
	if buf == nil || !buf.Loaded() {
		return nil, ErrBufferNotLoaded
	}

	start := acc.ByteOffset + bv.ByteOffset
	if acc.ByteOffset < 0 || bv.ByteOffset < 0 || start > len(buf.Data) {
		return nil, fmt.Errorf("%w: offset=%d count=%d bufSize=%d", ErrOutOfBounds, start, acc.Count, len(buf.Data))
	}
	if acc.Count > (len(buf.Data)-start)/elemSize {
		return nil, fmt.Errorf("%w: offset=%d count=%d elementSize=%d bufSize=%d", ErrOutOfBounds, start, acc.Count, elemSize, len(buf.Data))
	}
	if bv.ByteLength > 0 {
		if acc.ByteOffset > bv.ByteLength || acc.Count > (bv.ByteLength-acc.ByteOffset)/elemSize {
			return nil, fmt.Errorf("%w: offset=%d count=%d elementSize=%d viewLength=%d", ErrOutOfBounds, acc.ByteOffset, acc.Count, elemSize, bv.ByteLength)
		}
	}

	return buf.Data[start : start+acc.Count*elemSize], nil
}

// TupleSize returns the number of components for an accessor element type.
//
// Parameters:
//   - accessorType: SCALAR, VEC2, VEC3, VEC4, MAT2, MAT3 or MAT4
//
// Returns:
//   - int: the component count
//   - bool: false for unknown element types
func TupleSize(accessorType string) (int, bool) {
	switch accessorType {
	case document.AccessorTypeScalar:
		return 1, true
	case document.AccessorTypeVec2:
		return 2, true
	case document.AccessorTypeVec3:
		return 3, true
	case document.AccessorTypeVec4:
		return 4, true
	case document.AccessorTypeMat2:
		return 4, true
	case document.AccessorTypeMat3:
		return 9, true
	case document.AccessorTypeMat4:
		return 16, true
	default:
		return 0, false
	}
}

// ComponentSize returns the byte size of a supported component type.
//
// Parameters:
//   - componentType: the GL component type
//
// Returns:
//   - int: bytes per component
//   - bool: false for unsupported component types
func ComponentSize(componentType int) (int, bool) {
	switch componentType {
	case document.ComponentTypeByte, document.ComponentTypeUnsignedByte:
		return 1, true
	case document.ComponentTypeShort, document.ComponentTypeUnsignedShort:
		return 2, true
	case document.ComponentTypeFloat:
		return 4, true
	default:
		return 0, false
	}
}

func intType(tupleSize int) dataflow.LogicalType {
	switch tupleSize {
	case 1:
		return dataflow.TypeInt
	case 4:
		return dataflow.TypeInt4
	default:
		return dataflow.TypeUnknown
	}
}

func floatType(accessorType string, tupleSize int) dataflow.LogicalType {
	switch accessorType {
	case document.AccessorTypeMat2:
		return dataflow.TypeFloat2x2
	case document.AccessorTypeMat3:
		return dataflow.TypeFloat3x3
	case document.AccessorTypeMat4:
		return dataflow.TypeFloat4x4
	default:
		return dataflow.FloatTypeForTupleSize(tupleSize)
	}
}
