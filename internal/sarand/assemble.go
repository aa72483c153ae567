package sarand

import (
	"fmt"
	"strings"
)

// AssemblyError reports a join whose declared overlap is longer than
// the sequence available on the incoming node. It means the graph is
// malformed at that link; the error is surfaced for the affected seed
// only and sibling extractions carry on.
type AssemblyError struct {
	// Node being entered at the bad join
	Node string

	// Overlap declared on the link
	Overlap int

	// Length of the node's sequence
	Length int
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf(
		"assembly: overlap %d exceeds the %dbp of sequence on node %s",
		e.Overlap, e.Length, e.Node,
	)
}

// ExtractedSequence is one rendered neighborhood: the AMR span in
// lowercase flanked by upstream and downstream neighborhood bases in
// uppercase.
type ExtractedSequence struct {
	// Gene the sequence was extracted for
	Gene string

	// Seq is the rendered sequence, case-marked
	Seq string

	// AMRStart and AMREnd bound the lowercase AMR span within Seq
	AMRStart int
	AMREnd   int

	// Upstream and Downstream are the paths the flanks came from.
	// Upstream is in seed orientation, oldest (leftmost) step first.
	Upstream   Path
	Downstream Path

	// Records lists each node contribution in rendered order
	Records []NodeRange
}

// Assemble renders one (upstream path, seed hit, downstream path)
// triple into a linear sequence. Upstream steps are concatenated
// oldest first, then the AMR span unmodified but lowercased, then the
// downstream steps. Overlaps were trimmed from each step's consumed
// range during search; render revalidates every range so a malformed
// join still fails with an AssemblyError.
func Assemble(g *Graph, hit AlignmentHit, up, down Path) (ExtractedSequence, error) {
	nodeLen := g.Length(hit.Node)
	amrStart, amrEnd := hit.orientedSpan(nodeLen)
	if amrStart < 0 || amrEnd > nodeLen {
		return ExtractedSequence{}, &AssemblyError{Node: hit.Node, Overlap: amrEnd, Length: nodeLen}
	}
	amrSeq := strings.ToLower(g.Sequence(hit.Node, hit.Strand)[amrStart:amrEnd])

	upSeq, err := render(g, up.Steps)
	if err != nil {
		return ExtractedSequence{}, err
	}
	downSeq, err := render(g, down.Steps)
	if err != nil {
		return ExtractedSequence{}, err
	}

	ex := ExtractedSequence{
		Gene:       hit.Gene,
		Seq:        upSeq + amrSeq + downSeq,
		AMRStart:   len(upSeq),
		AMREnd:     len(upSeq) + len(amrSeq),
		Upstream:   up,
		Downstream: down,
	}

	amrStep := Step{Node: hit.Node, Strand: hit.Strand, Start: amrStart, End: amrEnd}
	ex.Records = recordRanges(g, up.Steps, amrStep, down.Steps)

	return ex, nil
}

// render concatenates the consumed range of each step, read on the
// step's strand.
func render(g *Graph, steps []Step) (string, error) {
	var b strings.Builder
	for _, st := range steps {
		nodeLen := g.Length(st.Node)
		if st.Start < 0 || st.End > nodeLen || st.Start > st.End {
			return "", &AssemblyError{Node: st.Node, Overlap: st.Start, Length: nodeLen}
		}
		b.WriteString(g.Sequence(st.Node, st.Strand)[st.Start:st.End])
	}
	return b.String(), nil
}

// RenderRecords rebuilds a rendered sequence from its recorded node
// ranges alone. It is a pure function of the graph and the record:
// rendering a sequence's own Records must reproduce it byte for byte.
func RenderRecords(g *Graph, records []NodeRange) (string, error) {
	var b strings.Builder
	for _, r := range records {
		nodeLen := g.Length(r.Node)
		if r.Start < 0 || r.End > nodeLen || r.Start > r.End {
			return "", &AssemblyError{Node: r.Node, Overlap: r.Start, Length: nodeLen}
		}
		piece := g.Sequence(r.Node, r.Strand)[r.Start:r.End]
		if r.AMR {
			piece = strings.ToLower(piece)
		}
		b.WriteString(piece)
	}
	return b.String(), nil
}
