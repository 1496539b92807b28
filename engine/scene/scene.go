// Package scene builds the compiled scene graph of a glTF document: sub-graphs per mesh primitive
// with world transforms, collected into assets and indexed for fragment lookup.
package scene

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/accessor"
	"github.com/Carmen-Shannon/oxy-gltf/engine/dataflow"
	"github.com/Carmen-Shannon/oxy-gltf/engine/document"
	"github.com/Carmen-Shannon/oxy-gltf/internal/log"

	"github.com/go-gl/mathgl/mgl32"
)

// Common errors returned by BuildScene and BuildNode
var (
	ErrNoScene     = errors.New("no scene given")
	ErrEmptyScene  = errors.New("scene is empty")
	ErrNoNode      = errors.New("no node given")
	ErrNoPrimitive = errors.New("no primitive given")
	ErrNoMaterial  = errors.New("primitive has no material")
	ErrNodeCycle   = errors.New("node hierarchy contains a cycle")
)

// IndexInputName is the input name of a primitive's index buffer.
const IndexInputName = "index"

// attributeNames maps recognized attribute semantics to the input names consumers read.
var attributeNames = map[string]string{
	"POSITION":   "position",
	"NORMAL":     "normal",
	"TEXCOORD_0": "texcoord",
}

// DecodeFunc converts an accessor into a typed buffer entry.
type DecodeFunc func(acc *document.Accessor) (*dataflow.BufferEntry, error)

// sceneBuilder is the implementation of the SceneBuilder interface.
type sceneBuilder struct {
	logger    *log.Logger
	sink      dataflow.Sink
	decode    DecodeFunc
	resources *ResourceMap

	// decoded caches entries per accessor so primitives sharing an accessor share its entry.
	decoded map[*document.Accessor]*dataflow.BufferEntry
}

// SceneBuilder turns linked scenes and nodes into sub-graphs.
// Every visited node registers its sub-graph list in the builder's ResourceMap.
// A builder is single-threaded; use one per compiled document.
type SceneBuilder interface {
	// BuildScene builds the asset of a scene by building every root node with an identity parent transform.
	//
	// Parameters:
	//   - s: the linked scene
	//
	// Returns:
	//   - *Asset: the root nodes' sub-graphs in scene order
	//   - error: error if the scene is absent or empty, or any node fails to build
	BuildScene(s *document.Scene) (*Asset, error)

	// BuildNode builds the sub-graphs of a node and its descendants.
	// The node's own primitives come first, followed by each child's sub-graphs in child order.
	//
	// Parameters:
	//   - n: the linked node
	//   - parent: the parent's world transform
	//
	// Returns:
	//   - []*SubGraph: the sub-graphs, with world = parent × local
	//   - error: error if the node or any primitive is malformed
	BuildNode(n *document.Node, parent mgl32.Mat4) ([]*SubGraph, error)

	// Resources returns the ResourceMap the builder registers nodes in.
	//
	// Returns:
	//   - *ResourceMap: the resource map
	Resources() *ResourceMap
}

var _ SceneBuilder = &sceneBuilder{}

// NewSceneBuilder creates a new SceneBuilder registering into resources.
//
// Parameters:
//   - resources: the resource map to register nodes in; a new one is created when nil
//   - options: a variadic list of SceneBuilderOption functions
//
// Returns:
//   - SceneBuilder: the builder
func NewSceneBuilder(resources *ResourceMap, options ...SceneBuilderOption) SceneBuilder {
	if resources == nil {
		resources = NewResourceMap()
	}
	b := &sceneBuilder{
		logger:    log.NewNop(),
		sink:      dataflow.NewSink(),
		decode:    accessor.Decode,
		resources: resources,
		decoded:   make(map[*document.Accessor]*dataflow.BufferEntry),
	}
	for _, option := range options {
		option(b)
	}
	return b
}

func (b *sceneBuilder) Resources() *ResourceMap {
	return b.resources
}

func (b *sceneBuilder) BuildScene(s *document.Scene) (*Asset, error) {
	if s == nil {
		return nil, ErrNoScene
	}
	if len(s.Nodes) == 0 {
		return nil, fmt.Errorf("scene %q: %w", s.ID, ErrEmptyScene)
	}

	asset := &Asset{}
	for _, n := range s.Nodes {
		subGraphs, err := b.BuildNode(n, common.Identity())
		if err != nil {
			return nil, fmt.Errorf("scene %q: %w", s.ID, err)
		}
		asset.SubGraphs = append(asset.SubGraphs, subGraphs...)
	}
	return asset, nil
}

func (b *sceneBuilder) BuildNode(n *document.Node, parent mgl32.Mat4) ([]*SubGraph, error) {
	return b.buildNode(n, parent, make(map[*document.Node]bool))
}

func (b *sceneBuilder) buildNode(n *document.Node, parent mgl32.Mat4, path map[*document.Node]bool) ([]*SubGraph, error) {
	if n == nil {
		return nil, ErrNoNode
	}
	if path[n] {
		return nil, fmt.Errorf("node %q: %w", n.ID, ErrNodeCycle)
	}
	path[n] = true
	defer delete(path, n)

	world := common.Mul4(parent, n.LocalTransform())

	result := make([]*SubGraph, 0)
	for _, mesh := range n.Meshes {
		if mesh == nil {
			continue
		}
		for i, p := range mesh.Primitives {
			sg, err := b.buildPrimitive(p, world)
			if err != nil {
				return nil, fmt.Errorf("node %q: mesh %q primitive %d: %w", n.ID, mesh.ID, i, err)
			}
			result = append(result, sg)
		}
	}

	for _, child := range n.Children {
		subGraphs, err := b.buildNode(child, world, path)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", n.ID, err)
		}
		result = append(result, subGraphs...)
	}

	b.resources.SetNode(n.ID, result)
	return result, nil
}

// buildPrimitive tags every primitive as triangles; other modes are compiled the same way with a warning.
func (b *sceneBuilder) buildPrimitive(p *document.Primitive, world mgl32.Mat4) (*SubGraph, error) {
	if p == nil {
		return nil, ErrNoPrimitive
	}
	if p.Mode != nil && *p.Mode != document.PrimitiveModeTriangles {
		b.logger.Warnw("GLTF-Plugin: Only triangle primitives are supported, compiling primitive as triangles", "mode", *p.Mode)
	}
	if p.Material == nil {
		return nil, ErrNoMaterial
	}

	mesh, err := b.buildMeshData(p)
	if err != nil {
		return nil, err
	}

	return &SubGraph{
		Mesh:      mesh,
		Transform: world,
		Topology:  TopologyTriangles,
		Material:  p.Material.Location,
	}, nil
}

// buildMeshData attaches the index input, then every attribute in semantic order, then the rename filter.
func (b *sceneBuilder) buildMeshData(p *document.Primitive) (dataflow.DataNode, error) {
	data := b.sink.CreateNode()

	if p.Indices != nil {
		entry, err := b.decodeAccessor(p.Indices)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
		if err := data.AppendInput(IndexInputName, entry); err != nil {
			return nil, err
		}
	}

	var renames []dataflow.Rename
	for _, semantic := range common.SortedKeys(p.Attributes) {
		entry, err := b.decodeAccessor(p.Attributes[semantic])
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", semantic, err)
		}
		if err := data.AppendInput(semantic, entry); err != nil {
			return nil, err
		}
		if to, ok := attributeNames[semantic]; ok {
			renames = append(renames, dataflow.Rename{To: to, From: semantic})
		}
	}

	if len(renames) > 0 {
		data.SetFilter(dataflow.NewRenameFilter(renames...))
	}
	return data, nil
}

func (b *sceneBuilder) decodeAccessor(acc *document.Accessor) (*dataflow.BufferEntry, error) {
	if entry, ok := b.decoded[acc]; ok {
		return entry, nil
	}
	entry, err := b.decode(acc)
	if err != nil {
		return nil, err
	}
	b.decoded[acc] = entry
	return entry, nil
}
