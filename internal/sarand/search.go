package sarand

// TermState is why a path stopped extending. All three are valid,
// non-error terminal states; the rendered length may be shorter than
// the target and downstream consumers can see which case applies.
type TermState int

const (
	// TargetLengthReached means the requested neighborhood length was
	// accumulated.
	TargetLengthReached TermState = iota

	// NodeThresholdReached means the path hit the node-count bound
	// before accumulating the target length.
	NodeThresholdReached

	// DeadEnd means the last node had no outgoing links.
	DeadEnd
)

func (t TermState) String() string {
	switch t {
	case TargetLengthReached:
		return "target-length-reached"
	case NodeThresholdReached:
		return "node-threshold-reached"
	default:
		return "dead-end"
	}
}

// Step is one node's contribution to a path: the half-open range
// consumed from the node's sequence read on Strand. Overlap with the
// previous node has already been trimmed from Start.
type Step struct {
	Node   string
	Strand Strand
	Start  int
	End    int
}

// Len is the number of bases this step contributes.
func (s Step) Len() int {
	return s.End - s.Start
}

// Path is a completed extension in one direction from a seed. Steps
// are ordered in the direction the search walked; the first step is on
// the seed node itself.
type Path struct {
	Steps []Step

	// Len is the total neighborhood bases consumed across all steps
	Len int

	// State records why extension stopped
	State TermState
}

// searcher extends paths downstream from oriented seed positions.
// Upstream extraction runs the same search from the seed's flipped
// orientation and mirrors the result (see mirror).
type searcher struct {
	graph *Graph

	// target neighborhood length in bases
	target int

	// nodeMax bounds the number of steps in any path
	nodeMax int

	// percent of target after which branching stops and only the
	// longest-remaining neighbor is followed
	percent float64
}

// partial is an in-progress path on the search frontier.
type partial struct {
	steps []Step
	acc   int
}

// extend walks the graph downstream of the oriented position
// (node, strand, offset), accumulating neighborhood sequence until the
// target length, the node threshold, or a dead end stops each branch.
//
// Branching keeps an explicit frontier of partial paths instead of
// recursing: each frontier entry carries its own accumulated length
// and step count, so the bounds apply uniformly to every branch.
func (s *searcher) extend(node string, strand Strand, offset int) ([]Path, error) {
	nodeLen := s.graph.Length(node)
	if offset < 0 || offset > nodeLen {
		return nil, &AssemblyError{Node: node, Overlap: offset, Length: nodeLen}
	}

	seed := partial{
		steps: []Step{{Node: node, Strand: strand, Start: offset, End: min(nodeLen, offset+s.target)}},
	}
	seed.acc = seed.steps[0].Len()
	if seed.acc >= s.target {
		return []Path{{Steps: seed.steps, Len: seed.acc, State: TargetLengthReached}}, nil
	}
	if len(seed.steps) >= s.nodeMax {
		return []Path{{Steps: seed.steps, Len: seed.acc, State: NodeThresholdReached}}, nil
	}

	var completed []Path
	frontier := []partial{seed}

	for len(frontier) > 0 {
		p := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]

		last := p.steps[len(p.steps)-1]
		neighbors := s.graph.Neighbors(last.Node, last.Strand, Downstream)
		if len(neighbors) == 0 {
			completed = append(completed, Path{Steps: p.steps, Len: p.acc, State: DeadEnd})
			continue
		}

		// once enough of the target has been gathered, stop branching
		// and finish through the single longest remaining neighbor
		if len(neighbors) > 1 && float64(p.acc) >= s.percent/100.0*float64(s.target) {
			neighbors = []Neighbor{longestNeighbor(neighbors)}
		}

		for _, nb := range neighbors {
			next, err := s.step(p, nb)
			if err != nil {
				return nil, err
			}

			needed := s.target - next.acc
			switch {
			case needed <= 0:
				completed = append(completed, Path{Steps: next.steps, Len: next.acc, State: TargetLengthReached})
			case len(next.steps) >= s.nodeMax:
				completed = append(completed, Path{Steps: next.steps, Len: next.acc, State: NodeThresholdReached})
			default:
				frontier = append(frontier, next)
			}
		}
	}

	return completed, nil
}

// step extends a partial path into a neighbor, trimming the link's
// overlap from the incoming node and consuming no more than is still
// needed to reach the target.
func (s *searcher) step(p partial, nb Neighbor) (partial, error) {
	nodeLen := len(nb.Node.Seq)
	if nb.Overlap > nodeLen {
		return partial{}, &AssemblyError{Node: nb.Node.ID, Overlap: nb.Overlap, Length: nodeLen}
	}

	needed := s.target - p.acc
	end := nb.Overlap + needed
	if end > nodeLen {
		end = nodeLen
	}

	steps := make([]Step, len(p.steps), len(p.steps)+1)
	copy(steps, p.steps)
	steps = append(steps, Step{Node: nb.Node.ID, Strand: nb.Strand, Start: nb.Overlap, End: end})

	return partial{steps: steps, acc: p.acc + end - nb.Overlap}, nil
}

// longestNeighbor picks the neighbor with the most usable sequence
// past its overlap. Ties break toward the smaller node id, then the
// forward strand, so the choice is deterministic.
func longestNeighbor(neighbors []Neighbor) Neighbor {
	best := neighbors[0]
	bestUsable := len(best.Node.Seq) - best.Overlap
	for _, nb := range neighbors[1:] {
		usable := len(nb.Node.Seq) - nb.Overlap
		if usable > bestUsable {
			best, bestUsable = nb, usable
			continue
		}
		if usable == bestUsable {
			if nb.Node.ID < best.Node.ID ||
				(nb.Node.ID == best.Node.ID && nb.Strand == Forward && best.Strand == Reverse) {
				best = nb
			}
		}
	}
	return best
}

// mirror converts a path found in the flipped orientation back into
// the seed's orientation: step order and strands are reversed and each
// consumed range is mirrored around its node's length. The result
// reads left to right, oldest step first, and renders to the reverse
// complement of the original path's rendering.
func (g *Graph) mirror(p Path) Path {
	steps := make([]Step, len(p.Steps))
	for i, st := range p.Steps {
		nodeLen := g.Length(st.Node)
		steps[len(p.Steps)-1-i] = Step{
			Node:   st.Node,
			Strand: st.Strand.Flip(),
			Start:  nodeLen - st.End,
			End:    nodeLen - st.Start,
		}
	}
	return Path{Steps: steps, Len: p.Len, State: p.State}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
