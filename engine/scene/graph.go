package scene

import (
	"context"
	"maps"
	"slices"

	"github.com/Carmen-Shannon/oxy-gltf/engine/dataflow"
	"github.com/Carmen-Shannon/oxy-gltf/engine/material"
	"github.com/Carmen-Shannon/oxy-gltf/internal/log"

	"github.com/go-gl/mathgl/mgl32"
)

// TopologyTriangles is the topology tag of every emitted sub-graph.
const TopologyTriangles = "triangles"

// SubGraph is the compiled form of one mesh primitive.
type SubGraph struct {
	// Mesh holds the decoded index and attribute inputs plus the attribute rename filter.
	Mesh dataflow.DataNode

	// Transform is the world transform of the node the primitive is attached to.
	Transform mgl32.Mat4

	Topology string

	// Material is the resolved location of the primitive's material, "<base>#<material id>".
	Material string
}

// Entity is anything a fragment identifier can resolve to: a MaterialEntity, an *Asset or a NodeEntity.
type Entity interface {
	isEntity()
}

// MaterialEntity is a compiled material registered under its material id.
type MaterialEntity struct {
	*material.Descriptor
}

// Asset is a compiled scene: the concatenated sub-graphs of its root nodes.
type Asset struct {
	SubGraphs []*SubGraph
}

// NodeEntity is the list of sub-graphs produced for a node and its descendants.
type NodeEntity struct {
	ID        string
	SubGraphs []*SubGraph
}

var (
	_ Entity = MaterialEntity{}
	_ Entity = (*Asset)(nil)
	_ Entity = NodeEntity{}
)

func (MaterialEntity) isEntity() {}
func (*Asset) isEntity()         {}
func (NodeEntity) isEntity()     {}

// ResourceMap indexes the compiled fragments of a document.
// Named fragments (materials and scenes) and node ids live in separate maps so the two namespaces never collide.
type ResourceMap struct {
	fragments map[string]Entity
	nodes     map[string]NodeEntity
}

// NewResourceMap creates an empty ResourceMap.
func NewResourceMap() *ResourceMap {
	return &ResourceMap{
		fragments: make(map[string]Entity),
		nodes:     make(map[string]NodeEntity),
	}
}

// SetFragment registers a named fragment.
//
// Parameters:
//   - name: the material or scene id
//   - e: the compiled entity
//
// Returns:
//   - bool: true if an earlier fragment with the same name was replaced
func (r *ResourceMap) SetFragment(name string, e Entity) bool {
	_, replaced := r.fragments[name]
	r.fragments[name] = e
	return replaced
}

// SetNode registers the sub-graphs produced for a node.
//
// Parameters:
//   - id: the node id
//   - subGraphs: the node's sub-graphs, possibly empty
func (r *ResourceMap) SetNode(id string, subGraphs []*SubGraph) {
	r.nodes[id] = NodeEntity{ID: id, SubGraphs: subGraphs}
}

// Lookup resolves an identifier, trying named fragments before node ids.
//
// Parameters:
//   - id: the fragment identifier
//
// Returns:
//   - Entity: the registered entity
//   - bool: false if nothing is registered under id
func (r *ResourceMap) Lookup(id string) (Entity, bool) {
	if e, ok := r.fragments[id]; ok {
		return e, true
	}
	if n, ok := r.nodes[id]; ok {
		return n, true
	}
	return nil, false
}

// Fragments returns the registered fragment names in sorted order.
func (r *ResourceMap) Fragments() []string {
	return slices.Sorted(maps.Keys(r.fragments))
}

// Nodes returns the registered node ids in sorted order.
func (r *ResourceMap) Nodes() []string {
	return slices.Sorted(maps.Keys(r.nodes))
}

// Materials returns the compiled material descriptors ordered by fragment name.
func (r *ResourceMap) Materials() []*material.Descriptor {
	var out []*material.Descriptor
	for _, name := range r.Fragments() {
		if m, ok := r.fragments[name].(MaterialEntity); ok {
			out = append(out, m.Descriptor)
		}
	}
	return out
}

// Graph is the result of compiling one document.
type Graph struct {
	// URI is the location the document was compiled from.
	URI string

	// Root is the compiled default scene.
	Root *Asset

	Resources *ResourceMap

	logger *log.Logger
}

// NewGraph creates a Graph.
//
// Parameters:
//   - uri: the document location
//   - root: the compiled default scene
//   - resources: the document's resource map
//   - logger: the logger used to report fragment misses, may be nil
//
// Returns:
//   - *Graph: the graph
func NewGraph(uri string, root *Asset, resources *ResourceMap, logger *log.Logger) *Graph {
	if logger == nil {
		logger = log.NewNop()
	}
	if resources == nil {
		resources = NewResourceMap()
	}
	if root == nil {
		root = &Asset{}
	}
	return &Graph{
		URI:       uri,
		Root:      root,
		Resources: resources,
		logger:    logger,
	}
}

// Resolve looks up a fragment of the compiled document.
// An empty fragment resolves to the root asset. A miss is logged and reported through the boolean.
//
// Parameters:
//   - fragment: the fragment identifier, without the leading '#'
//
// Returns:
//   - Entity: the resolved entity
//   - bool: false if the fragment does not exist
func (g *Graph) Resolve(fragment string) (Entity, bool) {
	if fragment == "" {
		return g.Root, true
	}
	if e, ok := g.Resources.Lookup(fragment); ok {
		return e, true
	}
	g.logger.Errorf("GLTF-Plugin: Failed to resolve fragment #%s in %s", fragment, g.URI)
	return nil, false
}

// Realize starts loading the textures of every compiled material.
//
// Parameters:
//   - ctx: the context handed to the image loader
func (g *Graph) Realize(ctx context.Context) {
	for _, d := range g.Resources.Materials() {
		d.Realize(ctx)
	}
}
