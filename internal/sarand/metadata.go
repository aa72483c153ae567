package sarand

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// NodeRange records one node's contribution to a rendered sequence:
// which bases of the node were consumed and where they landed in the
// rendered sequence. A node can appear several times, eg the seed node
// contributes its pre-AMR flank, the AMR span and its post-AMR flank
// as separate entries.
type NodeRange struct {
	// Node id of the contributing segment
	Node string

	// Strand the segment was read on
	Strand Strand

	// Start and End bound the consumed range in the node's oriented
	// sequence, half-open, overlap already trimmed
	Start int
	End   int

	// SeqStart and SeqEnd bound the covered range in the rendered
	// sequence, half-open
	SeqStart int
	SeqEnd   int

	// Coverage is the node's mean read depth
	Coverage float64

	// AMR marks the entry holding the AMR span itself
	AMR bool
}

// recordRanges builds the ordered contribution record for one rendered
// sequence: mirrored upstream steps, the AMR span, then downstream
// steps. Steps that consumed nothing (a seed starting at a node edge,
// or a node swallowed whole by its overlap) are not recorded, the
// record covers exactly the rendered bases.
func recordRanges(g *Graph, up []Step, amr Step, down []Step) []NodeRange {
	records := make([]NodeRange, 0, len(up)+len(down)+1)
	pos := 0

	add := func(st Step, isAMR bool) {
		if st.Len() == 0 {
			return
		}
		records = append(records, NodeRange{
			Node:     st.Node,
			Strand:   st.Strand,
			Start:    st.Start,
			End:      st.End,
			SeqStart: pos,
			SeqEnd:   pos + st.Len(),
			Coverage: g.Coverage(st.Node),
			AMR:      isAMR,
		})
		pos += st.Len()
	}

	for _, st := range up {
		add(st, false)
	}
	add(amr, true)
	for _, st := range down {
		add(st, false)
	}

	return records
}

// WritePathInfo writes the per-node records of each extracted sequence
// as csv rows: sequence,node,coverage,start,end. Sequences are
// numbered from 1 and start/end are inclusive offsets into the
// rendered sequence, which is the layout the downstream evaluation
// tooling expects.
func WritePathInfo(w io.Writer, sequences []ExtractedSequence) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"sequence", "node", "coverage", "start", "end"}); err != nil {
		return err
	}

	for i, ex := range sequences {
		for _, r := range ex.Records {
			row := []string{
				strconv.Itoa(i + 1),
				r.Node,
				strconv.FormatFloat(r.Coverage, 'f', -1, 64),
				strconv.Itoa(r.SeqStart),
				strconv.Itoa(r.SeqEnd - 1),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write path info: %w", err)
	}
	return nil
}
