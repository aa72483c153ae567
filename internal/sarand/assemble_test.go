package sarand

import (
	"errors"
	"strings"
	"testing"
)

// extractOne runs both directions for a hit and assembles the single
// resulting pair; a helper for graphs without branches.
func extractOne(t *testing.T, g *Graph, hit AlignmentHit, target, nodeMax int) ExtractedSequence {
	t.Helper()

	s := &searcher{graph: g, target: target, nodeMax: nodeMax, percent: 90}

	nodeLen := g.Length(hit.Node)
	amrStart, amrEnd := hit.orientedSpan(nodeLen)

	down, err := s.extend(hit.Node, hit.Strand, amrEnd)
	if err != nil {
		t.Fatalf("downstream extend: %v", err)
	}
	upRaw, err := s.extend(hit.Node, hit.Strand.Flip(), nodeLen-amrStart)
	if err != nil {
		t.Fatalf("upstream extend: %v", err)
	}
	if len(down) != 1 || len(upRaw) != 1 {
		t.Fatalf("expected one path per direction, got %d up, %d down", len(upRaw), len(down))
	}

	ex, err := Assemble(g, hit, g.mirror(upRaw[0]), down[0])
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	return ex
}

func TestAssemble_linear(t *testing.T) {
	g := linearABC(t)
	hit := AlignmentHit{Gene: "blaTEM-1", Node: "B", Strand: Forward, Start: 100, End: 300}

	// target beyond the graph: the whole graph renders with both
	// overlaps trimmed, 3x500 - 2x10 = 1480 bases
	ex := extractOne(t, g, hit, 5000, 1000)

	if len(ex.Seq) != 1480 {
		t.Fatalf("rendered length = %d, want 1480", len(ex.Seq))
	}

	// the AMR span is exactly B[100,300), lowercased
	amr := ex.Seq[ex.AMRStart:ex.AMREnd]
	if amr != strings.ToLower(g.Sequence("B", Forward)[100:300]) {
		t.Error("AMR span does not match B[100,300)")
	}
	if strings.ToUpper(amr) == amr {
		t.Error("AMR span is not case-marked")
	}

	// no duplicated bases at the joins: the rendering equals the
	// overlap-trimmed concatenation of A, B and C
	a, b, c := g.Sequence("A", Forward), g.Sequence("B", Forward), g.Sequence("C", Forward)
	want := a + b[10:] + c[10:]
	if strings.ToUpper(ex.Seq) != want {
		t.Error("rendering double-counts bases at a join")
	}
}

func TestAssemble_targetLength(t *testing.T) {
	g := linearABC(t)
	hit := AlignmentHit{Gene: "blaTEM-1", Node: "B", Strand: Forward, Start: 100, End: 300}

	// target 1000 is more than either flank can provide
	// (590 upstream, 690 downstream), so the full graph is rendered
	ex := extractOne(t, g, hit, 1000, 1000)

	if len(ex.Seq) < 1000 {
		t.Errorf("rendered length = %d, want >= 1000", len(ex.Seq))
	}
	if ex.Upstream.State != DeadEnd || ex.Downstream.State != DeadEnd {
		t.Error("flanks short of target should report dead ends")
	}
	if ex.Upstream.Len != 590 {
		t.Errorf("upstream flank = %d, want 590", ex.Upstream.Len)
	}
	if ex.Downstream.Len != 690 {
		t.Errorf("downstream flank = %d, want 690", ex.Downstream.Len)
	}
}

func TestAssemble_reverseHit(t *testing.T) {
	g := linearABC(t)

	// the same gene aligned to B's reverse strand: the neighborhood is
	// the reverse complement of the forward extraction
	fwd := extractOne(t, g,
		AlignmentHit{Gene: "g", Node: "B", Strand: Forward, Start: 100, End: 300}, 5000, 1000)
	rev := extractOne(t, g,
		AlignmentHit{Gene: "g", Node: "B", Strand: Reverse, Start: 100, End: 300}, 5000, 1000)

	if len(rev.Seq) != len(fwd.Seq) {
		t.Fatalf("lengths differ: %d vs %d", len(rev.Seq), len(fwd.Seq))
	}
	if strings.ToUpper(rev.Seq) != reverseComplement(fwd.Seq) {
		t.Error("reverse-strand extraction is not the reverse complement of the forward one")
	}
}

func TestAssemble_overlapTooLong(t *testing.T) {
	g := testGraph(t,
		map[string]string{"A": testSeq(100, 1), "B": testSeq(20, 2)},
		nil,
	)

	hit := AlignmentHit{Gene: "g", Node: "A", Strand: Forward, Start: 10, End: 40}
	down := Path{Steps: []Step{
		{Node: "A", Strand: Forward, Start: 40, End: 100},
		{Node: "B", Strand: Forward, Start: 30, End: 20}, // malformed join
	}}
	up := Path{Steps: []Step{{Node: "A", Strand: Forward, Start: 0, End: 10}}}

	_, err := Assemble(g, hit, up, down)
	if err == nil {
		t.Fatal("Assemble() expected an error")
	}
	var asmErr *AssemblyError
	if !errors.As(err, &asmErr) {
		t.Errorf("error %v is not an AssemblyError", err)
	}
}

func TestRenderRecords_roundTrip(t *testing.T) {
	g := linearABC(t)

	hits := []AlignmentHit{
		{Gene: "g", Node: "B", Strand: Forward, Start: 100, End: 300},
		{Gene: "g", Node: "B", Strand: Reverse, Start: 100, End: 300},
		{Gene: "g", Node: "A", Strand: Forward, Start: 0, End: 120},
		{Gene: "g", Node: "C", Strand: Reverse, Start: 450, End: 500},
	}

	for _, hit := range hits {
		for _, target := range []int{50, 400, 5000} {
			ex := extractOne(t, g, hit, target, 1000)

			rebuilt, err := RenderRecords(g, ex.Records)
			if err != nil {
				t.Fatalf("RenderRecords() error = %v", err)
			}
			if rebuilt != ex.Seq {
				t.Errorf("hit %s%s target %d: records do not rebuild the rendered sequence",
					hit.Node, hit.Strand, target)
			}
		}
	}
}

func TestAssemble_records(t *testing.T) {
	g := linearABC(t)
	hit := AlignmentHit{Gene: "g", Node: "B", Strand: Forward, Start: 100, End: 300}

	ex := extractOne(t, g, hit, 5000, 1000)

	// A's flank, B's pre-AMR flank, the AMR span, B's tail, C's tail
	wantNodes := []string{"A", "B", "B", "B", "C"}
	if len(ex.Records) != len(wantNodes) {
		t.Fatalf("records = %+v, want nodes %v", ex.Records, wantNodes)
	}

	pos := 0
	amrSeen := false
	for i, r := range ex.Records {
		if r.Node != wantNodes[i] {
			t.Errorf("record %d node = %s, want %s", i, r.Node, wantNodes[i])
		}
		if r.SeqStart != pos {
			t.Errorf("record %d starts at %d, want contiguous %d", i, r.SeqStart, pos)
		}
		if r.Coverage != 10 {
			t.Errorf("record %d coverage = %f, want 10", i, r.Coverage)
		}
		if r.AMR {
			amrSeen = true
			if r.Node != "B" || r.Start != 100 || r.End != 300 {
				t.Errorf("AMR record = %+v, want B[100,300)", r)
			}
		}
		pos = r.SeqEnd
	}
	if !amrSeen {
		t.Error("no record is marked as the AMR span")
	}
	if pos != len(ex.Seq) {
		t.Errorf("records cover %d bases, rendering has %d", pos, len(ex.Seq))
	}
}
