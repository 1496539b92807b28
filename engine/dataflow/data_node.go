package dataflow

import (
	"errors"
	"strings"
)

// ErrUnnamedInput is returned when an input is appended without a name.
var ErrUnnamedInput = errors.New("input has no name")

// Entry is the payload of a named input: a *BufferEntry or a *TextureEntry.
type Entry interface {
	isEntry()
}

var (
	_ Entry = (*BufferEntry)(nil)
	_ Entry = (*TextureEntry)(nil)
)

// Input is a named entry on a data node.
type Input struct {
	Name  string
	Key   int
	Entry Entry
}

// Rename maps a source input name to the name consumers will see.
type Rename struct {
	To   string
	From string
}

// Filter is a directive applied by consumers to a data node's inputs.
// The only operation emitted by this module is "rename".
type Filter struct {
	Op       string
	Mappings []Rename
}

// NewRenameFilter creates a rename filter from ordered mappings.
func NewRenameFilter(mappings ...Rename) Filter {
	return Filter{Op: "rename", Mappings: mappings}
}

// String renders the filter in the sink's textual filter syntax, e.g. "rename( { position: POSITION,normal: NORMAL})".
func (f Filter) String() string {
	parts := make([]string, len(f.Mappings))
	for i, m := range f.Mappings {
		parts[i] = m.To + ": " + m.From
	}
	return f.Op + "( { " + strings.Join(parts, ",") + "})"
}

// dataNode is the in-memory implementation of the DataNode interface.
type dataNode struct {
	inputs []Input
	filter *Filter
}

// DataNode is a data-flow node holding named inputs and an optional filter directive.
type DataNode interface {
	// AppendInput adds a named input. Inputs keep their insertion order.
	//
	// Parameters:
	//   - name: the input name
	//   - entry: the input payload
	//
	// Returns:
	//   - error: ErrUnnamedInput if name is empty
	AppendInput(name string, entry Entry) error

	// SetFilter sets the node's filter directive, replacing any previous one.
	//
	// Parameters:
	//   - f: the filter
	SetFilter(f Filter)

	// Inputs returns the node's inputs in insertion order.
	//
	// Returns:
	//   - []Input: the inputs
	Inputs() []Input

	// Input looks up an input by name.
	//
	// Parameters:
	//   - name: the input name
	//
	// Returns:
	//   - Input: the first input with that name
	//   - bool: false if there is none
	Input(name string) (Input, bool)

	// Filter returns the node's filter directive.
	//
	// Returns:
	//   - Filter: the filter
	//   - bool: false if no filter was set
	Filter() (Filter, bool)
}

var _ DataNode = &dataNode{}

func (n *dataNode) AppendInput(name string, entry Entry) error {
	if name == "" {
		return ErrUnnamedInput
	}
	n.inputs = append(n.inputs, Input{Name: name, Key: 0, Entry: entry})
	return nil
}

func (n *dataNode) SetFilter(f Filter) {
	n.filter = &f
}

func (n *dataNode) Inputs() []Input {
	return n.inputs
}

func (n *dataNode) Input(name string) (Input, bool) {
	for _, in := range n.inputs {
		if in.Name == name {
			return in, true
		}
	}
	return Input{}, false
}

func (n *dataNode) Filter() (Filter, bool) {
	if n.filter == nil {
		return Filter{}, false
	}
	return *n.filter, true
}

// sink is the in-memory implementation of the Sink interface.
type sink struct{}

// Sink creates data nodes. Renderers supply their own Sink to receive the compiled graph in their native form.
type Sink interface {
	// CreateNode creates an empty data node.
	//
	// Returns:
	//   - DataNode: the new node
	CreateNode() DataNode
}

var _ Sink = sink{}

// NewSink creates the default in-memory sink.
//
// Returns:
//   - Sink: the sink
func NewSink() Sink {
	return sink{}
}

func (sink) CreateNode() DataNode {
	return &dataNode{}
}
