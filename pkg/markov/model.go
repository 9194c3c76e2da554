package markov

import (
	"io"
	"log/slog"
	"sort"
)

// Node is one distinct token value registered in a Model. The id is assigned
// at creation, starts at 1 and is never reused; it exists to give exported
// graphs stable labels and is not part of node equality, which is by value.
type Node struct {
	ID    int
	Value string
}

// Endpoint returns the endpoint referring to n.
func (n Node) Endpoint() Endpoint {
	return NodeEndpoint(n.ID)
}

// EdgeTable maps a destination to the number of times the transition into it
// has been observed. Every entry that exists has a count of at least one.
type EdgeTable map[Endpoint]int

// Total returns the sum of all counts in the table.
func (t EdgeTable) Total() int {
	var total int
	for _, n := range t {
		total += n
	}
	return total
}

// Transition is a single weighted destination of an edge table.
type Transition struct {
	To   Endpoint
	Freq int
}

// Transitions returns the entries of t ordered by destination (nodes by id,
// End last).
func (t EdgeTable) Transitions() []Transition {
	out := make([]Transition, 0, len(t))
	for to, freq := range t {
		out = append(out, Transition{To: to, Freq: freq})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].To.less(out[j].To)
	})
	return out
}

// Model is a first-order Markov chain over string tokens. Nodes live in an
// arena indexed by id; transitions are stored per source endpoint.
//
// Model is not safe for concurrent mutation. Once fully built it may be read
// (Generate, GenerateStream, WriteDOT, Stats) from multiple goroutines.
type Model struct {
	nodes   []Node         // nodes[id-1]
	byValue map[string]int // value -> id
	edges   map[Endpoint]EdgeTable
	logger  *slog.Logger
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{
		byValue: make(map[string]int),
		edges:   make(map[Endpoint]EdgeTable),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetLogger sets the logger for the Model. By default, all logs are discarded.
func (m *Model) SetLogger(logger *slog.Logger) {
	if logger != nil {
		m.logger = logger
	}
}

// GetOrCreate returns the node registered for value, creating it with the
// next free id if this is the first time the value is seen.
func (m *Model) GetOrCreate(value string) Node {
	if id, ok := m.byValue[value]; ok {
		return m.nodes[id-1]
	}
	node := Node{ID: len(m.nodes) + 1, Value: value}
	m.nodes = append(m.nodes, node)
	m.byValue[value] = node.ID
	return node
}

// Lookup returns the node registered for value, if any.
func (m *Model) Lookup(value string) (Node, bool) {
	id, ok := m.byValue[value]
	if !ok {
		return Node{}, false
	}
	return m.nodes[id-1], true
}

// Node returns the node with the given id, if any.
func (m *Model) Node(id int) (Node, bool) {
	if id < 1 || id > len(m.nodes) {
		return Node{}, false
	}
	return m.nodes[id-1], true
}

// Nodes returns every registered node in id order.
func (m *Model) Nodes() []Node {
	out := make([]Node, len(m.nodes))
	copy(out, m.nodes)
	return out
}

// Len returns the number of registered nodes.
func (m *Model) Len() int {
	return len(m.nodes)
}

// Edges returns a copy of the edge table owned by src. The table is empty if
// src has never been the source of a transition.
func (m *Model) Edges(src Endpoint) EdgeTable {
	table := m.edges[src]
	out := make(EdgeTable, len(table))
	for to, n := range table {
		out[to] = n
	}
	return out
}

// Count returns how many times the transition src -> dst has been observed.
func (m *Model) Count(src, dst Endpoint) int {
	return m.edges[src][dst]
}

// connect records one observation of the transition src -> dst.
func (m *Model) connect(src, dst Endpoint) {
	table, ok := m.edges[src]
	if !ok {
		table = make(EdgeTable)
		m.edges[src] = table
	}
	table[dst]++
}

// sources returns every endpoint owning a non-empty edge table, ordered with
// Start first and nodes by id.
func (m *Model) sources() []Endpoint {
	out := make([]Endpoint, 0, len(m.edges))
	for src := range m.edges {
		out = append(out, src)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].less(out[j])
	})
	return out
}
