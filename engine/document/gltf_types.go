// gltf_types.go contains the glTF 1.0 data structures for JSON deserialization.
// glTF 1.0 keys every entity by a string identifier inside a dictionary, and entities reference
// each other by those identifiers. Link resolves the identifiers into pointers after decoding.
// Reference: https://github.com/KhronosGroup/glTF/tree/main/specification/1.0
package document

import (
	"github.com/go-gl/mathgl/mgl32"
)

// --- glTF Root Structure ---

// Document represents the root of a glTF JSON document.
// Every dictionary is keyed by the entity identifier, which Link copies into the entity's ID field.
type Document struct {
	// Asset contains metadata about the glTF asset.
	Asset Asset `json:"asset"`

	// Scene is the identifier of the default scene.
	Scene string `json:"scene,omitempty"`

	// Scenes holds the scenes of the document.
	Scenes map[string]*Scene `json:"scenes,omitempty"`

	// Nodes holds the transform hierarchy.
	Nodes map[string]*Node `json:"nodes,omitempty"`

	// Meshes holds the geometry definitions.
	Meshes map[string]*Mesh `json:"meshes,omitempty"`

	// Accessors define how to interpret buffer data.
	Accessors map[string]*Accessor `json:"accessors,omitempty"`

	// BufferViews define portions of buffers.
	BufferViews map[string]*BufferView `json:"bufferViews,omitempty"`

	// Buffers are raw binary data containers.
	Buffers map[string]*Buffer `json:"buffers,omitempty"`

	// Materials bind techniques to parameter values.
	Materials map[string]*Material `json:"materials,omitempty"`

	// Techniques declare the parameter types of a shading technique.
	Techniques map[string]*Technique `json:"techniques,omitempty"`

	// Textures bind an image to a sampler.
	Textures map[string]*Texture `json:"textures,omitempty"`

	// Samplers define texture sampling parameters.
	Samplers map[string]*Sampler `json:"samplers,omitempty"`

	// Images reference external or embedded image data.
	Images map[string]*Image `json:"images,omitempty"`
}

// Asset contains metadata about the glTF asset.
type Asset struct {
	Version   string `json:"version,omitempty"`
	Generator string `json:"generator,omitempty"`
	Copyright string `json:"copyright,omitempty"`
}

// --- Scene Graph ---

// Scene is an ordered set of root nodes.
type Scene struct {
	ID   string `json:"-"`
	Name string `json:"name,omitempty"`

	// NodeIDs are the identifiers of the root nodes, in document order.
	NodeIDs []string `json:"nodes,omitempty"`

	// Nodes are the linked root nodes.
	Nodes []*Node `json:"-"`
}

// Node is a node in the transform hierarchy.
// The local transform is decoded into the Transform variant; see gltf_transform.go.
type Node struct {
	ID   string `json:"-"`
	Name string `json:"name,omitempty"`

	// ChildIDs are the identifiers of the child nodes, in document order.
	ChildIDs []string `json:"children,omitempty"`

	// MeshIDs are the identifiers of the meshes attached to this node.
	MeshIDs []string `json:"meshes,omitempty"`

	// Transform is the node's local transform, either a matrix or TRS components.
	Transform Transform `json:"-"`

	Children []*Node `json:"-"`
	Meshes   []*Mesh `json:"-"`
}

// LocalTransform returns the node's local matrix, or identity when no transform is set.
func (n *Node) LocalTransform() mgl32.Mat4 {
	if n.Transform == nil {
		return mgl32.Ident4()
	}
	return n.Transform.Local()
}

// --- Mesh Data ---

// Mesh is a set of primitives to be rendered.
type Mesh struct {
	ID         string       `json:"-"`
	Name       string       `json:"name,omitempty"`
	Primitives []*Primitive `json:"primitives"`
}

// Primitive defines geometry for rendering.
type Primitive struct {
	// AttributeIDs maps an attribute semantic (POSITION, NORMAL, TEXCOORD_0, ...) to an accessor identifier.
	AttributeIDs map[string]string `json:"attributes"`

	// IndicesID is the accessor identifier for the index buffer, if any.
	IndicesID string `json:"indices,omitempty"`

	// MaterialID is the identifier of the primitive's material.
	MaterialID string `json:"material,omitempty"`

	// Mode is the primitive topology.
	// 0=POINTS, 1=LINES, 2=LINE_LOOP, 3=LINE_STRIP, 4=TRIANGLES (default), 5=TRIANGLE_STRIP, 6=TRIANGLE_FAN
	Mode *int `json:"mode,omitempty"`

	Attributes map[string]*Accessor `json:"-"`
	Indices    *Accessor            `json:"-"`
	Material   *Material            `json:"-"`
}

// PrimitiveModeTriangles is the only topology the scene builder emits.
const PrimitiveModeTriangles = 4

// --- Buffer Data ---

// Accessor describes how to read a typed numeric sequence from a buffer view.
type Accessor struct {
	ID string `json:"-"`

	// BufferViewID is the identifier of the buffer view holding the data.
	BufferViewID string `json:"bufferView" validate:"required"`

	// ByteOffset is the offset relative to the start of the buffer view.
	ByteOffset int `json:"byteOffset" validate:"gte=0"`

	// ByteStride is the distance between consecutive elements; 0 means tightly packed.
	ByteStride int `json:"byteStride,omitempty" validate:"gte=0"`

	// ComponentType is the data type of components.
	// 5120=BYTE, 5121=UNSIGNED_BYTE, 5122=SHORT, 5123=UNSIGNED_SHORT, 5126=FLOAT
	ComponentType int `json:"componentType"`

	// Count is the number of elements (not components).
	Count int `json:"count" validate:"gte=0"`

	// Type is the element type (SCALAR, VEC2, VEC3, VEC4, MAT2, MAT3, MAT4).
	Type string `json:"type"`

	BufferView *BufferView `json:"-"`
}

// ComponentType constants
const (
	ComponentTypeByte          = 5120
	ComponentTypeUnsignedByte  = 5121
	ComponentTypeShort         = 5122
	ComponentTypeUnsignedShort = 5123
	ComponentTypeFloat         = 5126
)

// AccessorType constants
const (
	AccessorTypeScalar = "SCALAR"
	AccessorTypeVec2   = "VEC2"
	AccessorTypeVec3   = "VEC3"
	AccessorTypeVec4   = "VEC4"
	AccessorTypeMat2   = "MAT2"
	AccessorTypeMat3   = "MAT3"
	AccessorTypeMat4   = "MAT4"
)

// BufferView is a byte range of a buffer.
type BufferView struct {
	ID string `json:"-"`

	// BufferID is the identifier of the buffer.
	BufferID string `json:"buffer" validate:"required"`

	ByteOffset int `json:"byteOffset" validate:"gte=0"`
	ByteLength int `json:"byteLength,omitempty" validate:"gte=0"`
	Target     int `json:"target,omitempty"`

	Buffer *Buffer `json:"-"`
}

// Buffer is a raw binary data container.
// Data is attached once when the buffer is fetched and never changes afterwards.
type Buffer struct {
	ID string `json:"-"`

	// URI is the location of the payload, relative to the document or absolute, or a data: URI.
	URI string `json:"uri,omitempty"`

	ByteLength int    `json:"byteLength,omitempty"`
	Type       string `json:"type,omitempty"`

	// Location is the absolute location the payload was resolved against.
	Location string `json:"-"`

	// Data holds the payload once resolved.
	Data []byte `json:"-"`
}

// Loaded reports whether the buffer bytes have been attached.
func (b *Buffer) Loaded() bool {
	return b.Data != nil
}

// Attach stores the buffer payload. A buffer is written at most once.
//
// Parameters:
//   - data: the fetched payload
//
// Returns:
//   - error: ErrBufferAlreadyLoaded if bytes were already attached
func (b *Buffer) Attach(data []byte) error {
	if b.Loaded() {
		return ErrBufferAlreadyLoaded
	}
	if data == nil {
		data = []byte{}
	}
	b.Data = data
	return nil
}

// --- Materials ---

// Material binds a technique to a set of parameter values.
type Material struct {
	ID   string `json:"-"`
	Name string `json:"name,omitempty"`

	// TechniqueID is the identifier of the technique declaring the parameter types.
	TechniqueID string `json:"technique,omitempty"`

	// Values maps a parameter name to either a texture binding or a literal value.
	Values map[string]MaterialValue `json:"-"`

	// Location is the absolute location of the material, suffixed with "#<id>" for fragment lookup.
	Location string `json:"-"`

	Technique *Technique `json:"-"`
}

// MaterialValue is either a TextureValue or a NumericValue.
type MaterialValue interface {
	isMaterialValue()
}

// TextureValue binds a material parameter to a texture.
type TextureValue struct {
	TextureID string
	Texture   *Texture
}

// NumericValue is a literal number or vector. Scalar is set when the document held a bare number.
type NumericValue struct {
	Values []float32
	Scalar bool
}

func (TextureValue) isMaterialValue() {}
func (NumericValue) isMaterialValue() {}

// Technique declares the parameters of a shading technique.
type Technique struct {
	ID         string                         `json:"-"`
	Parameters map[string]*TechniqueParameter `json:"parameters,omitempty"`
}

// TechniqueParameter declares the GL type of a single technique parameter.
type TechniqueParameter struct {
	Type     int    `json:"type"`
	Semantic string `json:"semantic,omitempty"`
	Node     string `json:"node,omitempty"`
}

// Parameter type constants (GL enumerants).
const (
	ParameterTypeByte          = 5120
	ParameterTypeUnsignedByte  = 5121
	ParameterTypeShort         = 5122
	ParameterTypeUnsignedShort = 5123
	ParameterTypeInt           = 5124
	ParameterTypeUnsignedInt   = 5125
	ParameterTypeFloat         = 5126
	ParameterTypeFloatVec2     = 35664
	ParameterTypeFloatVec3     = 35665
	ParameterTypeFloatVec4     = 35666
	ParameterTypeIntVec2       = 35667
	ParameterTypeIntVec3       = 35668
	ParameterTypeIntVec4       = 35669
	ParameterTypeBool          = 35670
	ParameterTypeBoolVec2      = 35671
	ParameterTypeBoolVec3      = 35672
	ParameterTypeBoolVec4      = 35673
	ParameterTypeFloatMat2     = 35674
	ParameterTypeFloatMat3     = 35675
	ParameterTypeFloatMat4     = 35676
	ParameterTypeSampler2D     = 35678
)

// Texture binds an image to a sampler.
type Texture struct {
	ID string `json:"-"`

	SamplerID string `json:"sampler,omitempty"`
	SourceID  string `json:"source,omitempty"`

	// Format and Type describe the texel layout; zero means the defaults (RGBA, UNSIGNED_BYTE).
	Format         int `json:"format,omitempty"`
	InternalFormat int `json:"internalFormat,omitempty"`
	Target         int `json:"target,omitempty"`
	Type           int `json:"type,omitempty"`

	Sampler *Sampler `json:"-"`
	Source  *Image   `json:"-"`
}

// Sampler defines texture sampling parameters. Zero fields are unset.
type Sampler struct {
	ID        string `json:"-"`
	MagFilter int    `json:"magFilter,omitempty"`
	MinFilter int    `json:"minFilter,omitempty"`
	WrapS     int    `json:"wrapS,omitempty"`
	WrapT     int    `json:"wrapT,omitempty"`
}

// Image references image data.
type Image struct {
	ID   string `json:"-"`
	Name string `json:"name,omitempty"`
	URI  string `json:"uri,omitempty"`

	// Location is the absolute location of the image. Images are fetched lazily from here.
	Location string `json:"-"`
}
