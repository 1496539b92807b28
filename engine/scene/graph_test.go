package scene

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gltf/engine/dataflow"
	"github.com/Carmen-Shannon/oxy-gltf/engine/material"
	"github.com/Carmen-Shannon/oxy-gltf/internal/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestResourceMapKeepsNamespacesApart(t *testing.T) {
	rm := NewResourceMap()
	desc := &material.Descriptor{ID: 0, Model: material.PhongModel, Data: dataflow.NewSink().CreateNode()}

	assert.False(t, rm.SetFragment("shared", MaterialEntity{Descriptor: desc}))
	rm.SetNode("shared", nil)
	rm.SetNode("node-only", nil)

	e, ok := rm.Lookup("shared")
	require.True(t, ok)
	assert.IsType(t, MaterialEntity{}, e)

	e, ok = rm.Lookup("node-only")
	require.True(t, ok)
	assert.Equal(t, NodeEntity{ID: "node-only"}, e)

	_, ok = rm.Lookup("missing")
	assert.False(t, ok)

	assert.True(t, rm.SetFragment("shared", &Asset{}))
	assert.Empty(t, rm.Materials())
	assert.Equal(t, []string{"shared"}, rm.Fragments())
	assert.Equal(t, []string{"node-only", "shared"}, rm.Nodes())
}

func TestGraphResolve(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	root := &Asset{SubGraphs: []*SubGraph{{Topology: TopologyTriangles}}}
	rm := NewResourceMap()
	rm.SetNode("node1", root.SubGraphs)

	g := NewGraph("http://example.com/box.gltf", root, rm, log.FromZap(zap.New(core)))

	e, ok := g.Resolve("")
	require.True(t, ok)
	assert.Same(t, root, e)

	e, ok = g.Resolve("node1")
	require.True(t, ok)
	assert.Equal(t, root.SubGraphs, e.(NodeEntity).SubGraphs)

	e, ok = g.Resolve("nonexistent")
	assert.False(t, ok)
	assert.Nil(t, e)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "GLTF-Plugin: Failed to resolve fragment #nonexistent in http://example.com/box.gltf", logs.All()[0].Message)
}

func TestNewGraphDefaultsRoot(t *testing.T) {
	g := NewGraph("box.gltf", nil, nil, nil)

	e, ok := g.Resolve("")
	require.True(t, ok)
	assert.Equal(t, &Asset{}, e)
	assert.Empty(t, g.Resources.Fragments())
}
