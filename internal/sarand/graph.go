// Package sarand locates AMR genes in an assembly graph and extracts
// the linear genomic neighborhood around each of them.
package sarand

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// Strand is the orientation a node is read in when traversed.
type Strand int8

const (
	// Forward reads the node's sequence as stored.
	Forward Strand = iota

	// Reverse reads the reverse complement of the node's sequence.
	Reverse
)

// Flip returns the opposite strand.
func (s Strand) Flip() Strand {
	if s == Forward {
		return Reverse
	}
	return Forward
}

func (s Strand) String() string {
	if s == Forward {
		return "+"
	}
	return "-"
}

// parseStrand converts a GFA orientation column to a Strand.
func parseStrand(field string) (Strand, error) {
	switch field {
	case "+":
		return Forward, nil
	case "-":
		return Reverse, nil
	}
	return Forward, fmt.Errorf("unknown orientation %q", field)
}

// Node is a segment of the assembly graph: an assembled stretch of
// sequence with a mean read coverage. Nodes are created at graph load
// and read-only afterward.
type Node struct {
	// ID of the segment, unique within the graph
	ID string

	// Seq is the forward-strand sequence, uppercased at load
	Seq string

	// Coverage is the segment's mean read depth
	Coverage float64
}

// Neighbor is one way of extending past the end of an oriented node:
// the node on the other side of a link, the strand it is entered on,
// and the number of bases the two share across the join.
type Neighbor struct {
	Node    *Node
	Strand  Strand
	Overlap int
}

// endpoint addresses one side of a node: the node read on a strand.
type endpoint struct {
	id     string
	strand Strand
}

// edge is a directed, oriented link out of an endpoint.
type edge struct {
	to      string
	strand  Strand
	overlap int
}

// Direction of extension relative to an oriented node. Downstream is
// off the 3' end of the oriented sequence, upstream off the 5' end.
type Direction int

const (
	Downstream Direction = iota
	Upstream
)

// Graph is the in-memory assembly graph. It is built once by the GFA
// parser and shared read-only by every extraction worker, so no
// locking is needed after load.
type Graph struct {
	nodes map[string]*Node
	out   map[endpoint][]edge
}

// newGraph returns an empty graph. Use ParseGFA to build a real one.
func newGraph() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
		out:   make(map[endpoint][]edge),
	}
}

// addNode registers a segment. The sequence is uppercased so that case
// can later mark the AMR span in rendered sequences.
func (g *Graph) addNode(id, seq string, coverage float64) error {
	if _, ok := g.nodes[id]; ok {
		return fmt.Errorf("duplicate segment %q", id)
	}
	g.nodes[id] = &Node{ID: id, Seq: strings.ToUpper(seq), Coverage: coverage}
	return nil
}

// addLink registers a link and its complement: a link A(s1)->B(s2)
// implies B(!s2)->A(!s1) with the same overlap. Exact duplicate links
// are collapsed (GFA files often list both directions of the same
// link) but distinct links between the same pair are kept, the graph
// is a multigraph.
func (g *Graph) addLink(from string, fromStrand Strand, to string, toStrand Strand, overlap int) {
	g.insertEdge(endpoint{from, fromStrand}, edge{to, toStrand, overlap})

	comp := endpoint{to, toStrand.Flip()}
	compEdge := edge{from, fromStrand.Flip(), overlap}
	if comp.id == from && comp.strand == fromStrand && compEdge.to == to && compEdge.strand == toStrand {
		// self-complementary link, eg A+ -> A-
		return
	}
	g.insertEdge(comp, compEdge)
}

func (g *Graph) insertEdge(from endpoint, e edge) {
	for _, existing := range g.out[from] {
		if existing == e {
			return
		}
	}
	g.out[from] = append(g.out[from], e)
}

// Node returns the segment with the given id, or nil.
func (g *Graph) Node(id string) *Node {
	return g.nodes[id]
}

// NodeCount is the number of segments in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount is the number of oriented links in the graph, complements
// included.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, edges := range g.out {
		count += len(edges)
	}
	return count
}

// Length returns the sequence length of a segment.
func (g *Graph) Length(id string) int {
	if n := g.nodes[id]; n != nil {
		return len(n.Seq)
	}
	return 0
}

// Coverage returns the mean read depth of a segment.
func (g *Graph) Coverage(id string) float64 {
	if n := g.nodes[id]; n != nil {
		return n.Coverage
	}
	return 0
}

// Sequence returns a segment's sequence read on the given strand.
func (g *Graph) Sequence(id string, strand Strand) string {
	n := g.nodes[id]
	if n == nil {
		return ""
	}
	if strand == Reverse {
		return reverseComplement(n.Seq)
	}
	return n.Seq
}

// Neighbors returns every way of extending the oriented node in the
// given direction. The result is sorted by (id, strand, overlap) so
// traversal order is deterministic.
func (g *Graph) Neighbors(id string, strand Strand, dir Direction) []Neighbor {
	from := endpoint{id, strand}
	if dir == Upstream {
		// the nodes ahead of A- are the complements of those behind A+
		from.strand = strand.Flip()
	}

	edges := g.out[from]
	neighbors := make([]Neighbor, 0, len(edges))
	for _, e := range edges {
		nb := g.nodes[e.to]
		if nb == nil {
			continue
		}
		s := e.strand
		if dir == Upstream {
			s = s.Flip()
		}
		neighbors = append(neighbors, Neighbor{Node: nb, Strand: s, Overlap: e.overlap})
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Node.ID != neighbors[j].Node.ID {
			return neighbors[i].Node.ID < neighbors[j].Node.ID
		}
		if neighbors[i].Strand != neighbors[j].Strand {
			return neighbors[i].Strand == Forward
		}
		return neighbors[i].Overlap < neighbors[j].Overlap
	})

	return neighbors
}

// reverseComplement returns the reverse complement of a sequence
func reverseComplement(seq string) string {
	seq = strings.ToUpper(seq)

	revCompMap := map[rune]byte{
		'A': 'T',
		'T': 'A',
		'G': 'C',
		'C': 'G',
		'N': 'N',
	}

	var revCompBuffer bytes.Buffer
	for _, c := range seq {
		b, ok := revCompMap[c]
		if !ok {
			b = 'N'
		}
		revCompBuffer.WriteByte(b)
	}

	revCompBytes := revCompBuffer.Bytes()
	for i, j := 0, len(revCompBytes)-1; i < j; i, j = i+1, j-1 {
		revCompBytes[i], revCompBytes[j] = revCompBytes[j], revCompBytes[i]
	}

	return string(revCompBytes)
}
