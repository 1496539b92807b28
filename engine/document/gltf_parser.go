package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-gltf/common"

	"github.com/go-playground/validator/v10"
)

// Common errors returned by Parse and Link
var (
	ErrUnsupportedVersion   = errors.New("unsupported glTF version: named-dictionary (1.x) documents only")
	ErrDanglingReference    = errors.New("reference to undefined entity")
	ErrMissingEntity        = errors.New("entity is null")
	ErrInvalidEntity        = errors.New("entity failed validation")
	ErrInvalidMaterialValue = errors.New("material value must be a number, boolean, numeric array or texture id")
	ErrInvalidTransform     = errors.New("invalid node transform")
	ErrBufferAlreadyLoaded  = errors.New("buffer bytes already attached")
)

var validate = validator.New()

// Parse decodes a glTF JSON document and links all identifier references.
//
// Parameters:
//   - data: the raw JSON bytes
//
// Returns:
//   - *Document: the linked document
//   - error: error if decoding or linking fails
func Parse(data []byte) (*Document, error) {
	var header struct {
		Asset Asset `json:"asset"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("failed to parse glTF JSON: %w", err)
	}
	if strings.HasPrefix(header.Asset.Version, "2.") {
		return nil, fmt.Errorf("%w: got %s", ErrUnsupportedVersion, header.Asset.Version)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse glTF JSON: %w", err)
	}

	if err := doc.Link(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// UnmarshalJSON decodes a node and folds its matrix or TRS fields into the Transform variant.
// An explicit matrix takes precedence over TRS fields.
func (n *Node) UnmarshalJSON(data []byte) error {
	type nodeAlias Node
	aux := struct {
		*nodeAlias
		Matrix      []float32   `json:"matrix"`
		Translation *[3]float32 `json:"translation"`
		Rotation    *[4]float32 `json:"rotation"`
		Scale       *[3]float32 `json:"scale"`
	}{nodeAlias: (*nodeAlias)(n)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if aux.Matrix != nil {
		m, err := common.Mat4FromSlice(aux.Matrix)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidTransform, err)
		}
		n.Transform = MatrixTransform{M: m}
		return nil
	}

	trs := DefaultTRS()
	if aux.Translation != nil {
		trs.Translation = *aux.Translation
	}
	if aux.Rotation != nil {
		trs.Rotation = common.QuatFromXYZW(*aux.Rotation)
	}
	if aux.Scale != nil {
		trs.Scale = *aux.Scale
	}
	n.Transform = trs
	return nil
}

// UnmarshalJSON decodes a material and classifies every value as a texture reference or a literal.
func (m *Material) UnmarshalJSON(data []byte) error {
	type materialAlias Material
	aux := struct {
		*materialAlias
		Values map[string]json.RawMessage `json:"values"`
	}{materialAlias: (*materialAlias)(m)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	m.Values = make(map[string]MaterialValue, len(aux.Values))
	for name, raw := range aux.Values {
		v, err := parseMaterialValue(raw)
		if err != nil {
			return fmt.Errorf("value %q: %w", name, err)
		}
		m.Values[name] = v
	}
	return nil
}

// parseMaterialValue classifies a raw material value.
// Strings name a texture; numbers, booleans and arrays of them are literals.
func parseMaterialValue(raw json.RawMessage) (MaterialValue, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}

	switch t := v.(type) {
	case string:
		return TextureValue{TextureID: t}, nil
	case float64, bool:
		f, _ := numericComponent(t)
		return NumericValue{Values: []float32{f}, Scalar: true}, nil
	case []any:
		values := make([]float32, len(t))
		for i, c := range t {
			f, ok := numericComponent(c)
			if !ok {
				return nil, ErrInvalidMaterialValue
			}
			values[i] = f
		}
		return NumericValue{Values: values}, nil
	default:
		return nil, ErrInvalidMaterialValue
	}
}

func numericComponent(v any) (float32, bool) {
	switch t := v.(type) {
	case float64:
		return float32(t), true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// Link copies dictionary keys into entity IDs and resolves every identifier reference into a pointer.
// Link is idempotent and must run before the document is resolved or compiled.
//
// Returns:
//   - error: error naming the offending entity if a reference dangles or an entity fails validation
func (d *Document) Link() error {
	for _, id := range common.SortedKeys(d.Buffers) {
		b := d.Buffers[id]
		if b == nil {
			return fmt.Errorf("buffer %q: %w", id, ErrMissingEntity)
		}
		b.ID = id
	}

	for _, id := range common.SortedKeys(d.BufferViews) {
		bv := d.BufferViews[id]
		if bv == nil {
			return fmt.Errorf("bufferView %q: %w", id, ErrMissingEntity)
		}
		bv.ID = id
		if err := validate.Struct(bv); err != nil {
			return fmt.Errorf("bufferView %q: %w: %w", id, ErrInvalidEntity, err)
		}
		buf, ok := d.Buffers[bv.BufferID]
		if !ok {
			return fmt.Errorf("bufferView %q: buffer %q: %w", id, bv.BufferID, ErrDanglingReference)
		}
		bv.Buffer = buf
	}

	for _, id := range common.SortedKeys(d.Accessors) {
		acc := d.Accessors[id]
		if acc == nil {
			return fmt.Errorf("accessor %q: %w", id, ErrMissingEntity)
		}
		acc.ID = id
		if err := validate.Struct(acc); err != nil {
			return fmt.Errorf("accessor %q: %w: %w", id, ErrInvalidEntity, err)
		}
		bv, ok := d.BufferViews[acc.BufferViewID]
		if !ok {
			return fmt.Errorf("accessor %q: bufferView %q: %w", id, acc.BufferViewID, ErrDanglingReference)
		}
		acc.BufferView = bv
	}

	for _, id := range common.SortedKeys(d.Images) {
		img := d.Images[id]
		if img == nil {
			return fmt.Errorf("image %q: %w", id, ErrMissingEntity)
		}
		img.ID = id
	}

	for _, id := range common.SortedKeys(d.Samplers) {
		s := d.Samplers[id]
		if s == nil {
			return fmt.Errorf("sampler %q: %w", id, ErrMissingEntity)
		}
		s.ID = id
	}

	for _, id := range common.SortedKeys(d.Textures) {
		tex := d.Textures[id]
		if tex == nil {
			return fmt.Errorf("texture %q: %w", id, ErrMissingEntity)
		}
		tex.ID = id
		if tex.SamplerID != "" {
			s, ok := d.Samplers[tex.SamplerID]
			if !ok {
				return fmt.Errorf("texture %q: sampler %q: %w", id, tex.SamplerID, ErrDanglingReference)
			}
			tex.Sampler = s
		}
		if tex.SourceID != "" {
			img, ok := d.Images[tex.SourceID]
			if !ok {
				return fmt.Errorf("texture %q: image %q: %w", id, tex.SourceID, ErrDanglingReference)
			}
			tex.Source = img
		}
	}

	for _, id := range common.SortedKeys(d.Techniques) {
		t := d.Techniques[id]
		if t == nil {
			return fmt.Errorf("technique %q: %w", id, ErrMissingEntity)
		}
		t.ID = id
	}

	for _, id := range common.SortedKeys(d.Materials) {
		if err := d.linkMaterial(id); err != nil {
			return err
		}
	}

	for _, id := range common.SortedKeys(d.Meshes) {
		if err := d.linkMesh(id); err != nil {
			return err
		}
	}

	for _, id := range common.SortedKeys(d.Nodes) {
		if err := d.linkNode(id); err != nil {
			return err
		}
	}

	for _, id := range common.SortedKeys(d.Scenes) {
		s := d.Scenes[id]
		if s == nil {
			return fmt.Errorf("scene %q: %w", id, ErrMissingEntity)
		}
		s.ID = id
		s.Nodes = make([]*Node, len(s.NodeIDs))
		for i, nodeID := range s.NodeIDs {
			n, ok := d.Nodes[nodeID]
			if !ok {
				return fmt.Errorf("scene %q: node %q: %w", id, nodeID, ErrDanglingReference)
			}
			s.Nodes[i] = n
		}
	}

	return nil
}

func (d *Document) linkMaterial(id string) error {
	m := d.Materials[id]
	if m == nil {
		return fmt.Errorf("material %q: %w", id, ErrMissingEntity)
	}
	m.ID = id

	if m.TechniqueID != "" {
		t, ok := d.Techniques[m.TechniqueID]
		if !ok {
			return fmt.Errorf("material %q: technique %q: %w", id, m.TechniqueID, ErrDanglingReference)
		}
		m.Technique = t
	}

	for name, v := range m.Values {
		tv, ok := v.(TextureValue)
		if !ok {
			continue
		}
		tex, ok := d.Textures[tv.TextureID]
		if !ok {
			return fmt.Errorf("material %q: value %q: texture %q: %w", id, name, tv.TextureID, ErrDanglingReference)
		}
		m.Values[name] = TextureValue{TextureID: tv.TextureID, Texture: tex}
	}
	return nil
}

func (d *Document) linkMesh(id string) error {
	mesh := d.Meshes[id]
	if mesh == nil {
		return fmt.Errorf("mesh %q: %w", id, ErrMissingEntity)
	}
	mesh.ID = id

	for i, p := range mesh.Primitives {
		// Null primitives are left for the scene builder to reject.
		if p == nil {
			continue
		}
		p.Attributes = make(map[string]*Accessor, len(p.AttributeIDs))
		for semantic, accID := range p.AttributeIDs {
			acc, ok := d.Accessors[accID]
			if !ok {
				return fmt.Errorf("mesh %q primitive %d: attribute %s: accessor %q: %w", id, i, semantic, accID, ErrDanglingReference)
			}
			p.Attributes[semantic] = acc
		}
		if p.IndicesID != "" {
			acc, ok := d.Accessors[p.IndicesID]
			if !ok {
				return fmt.Errorf("mesh %q primitive %d: indices: accessor %q: %w", id, i, p.IndicesID, ErrDanglingReference)
			}
			p.Indices = acc
		}
		if p.MaterialID != "" {
			mat, ok := d.Materials[p.MaterialID]
			if !ok {
				return fmt.Errorf("mesh %q primitive %d: material %q: %w", id, i, p.MaterialID, ErrDanglingReference)
			}
			p.Material = mat
		}
	}
	return nil
}

func (d *Document) linkNode(id string) error {
	n := d.Nodes[id]
	if n == nil {
		return fmt.Errorf("node %q: %w", id, ErrMissingEntity)
	}
	n.ID = id
	if n.Transform == nil {
		n.Transform = DefaultTRS()
	}

	n.Children = make([]*Node, len(n.ChildIDs))
	for i, childID := range n.ChildIDs {
		child, ok := d.Nodes[childID]
		if !ok {
			return fmt.Errorf("node %q: child %q: %w", id, childID, ErrDanglingReference)
		}
		n.Children[i] = child
	}

	n.Meshes = make([]*Mesh, len(n.MeshIDs))
	for i, meshID := range n.MeshIDs {
		mesh, ok := d.Meshes[meshID]
		if !ok {
			return fmt.Errorf("node %q: mesh %q: %w", id, meshID, ErrDanglingReference)
		}
		n.Meshes[i] = mesh
	}
	return nil
}
