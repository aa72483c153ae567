package sarand

import (
	"strconv"
	"strings"
	"testing"
)

// testSeq returns a deterministic n-base sequence so tests can assert
// exact renderings without hardcoding long strings.
func testSeq(n int, seed int64) string {
	bases := []byte("ACGT")
	state := uint64(seed)*6364136223846793005 + 1442695040888963407

	b := make([]byte, n)
	for i := range b {
		state = state*6364136223846793005 + 1442695040888963407
		b[i] = bases[(state>>32)%4]
	}
	return string(b)
}

// testGraph builds a graph from shorthand segment and link specs.
func testGraph(t *testing.T, segments map[string]string, links [][5]interface{}) *Graph {
	t.Helper()

	g := newGraph()
	for id, seq := range segments {
		if err := g.addNode(id, seq, 10); err != nil {
			t.Fatalf("addNode(%s): %v", id, err)
		}
	}
	for _, l := range links {
		g.addLink(l[0].(string), l[1].(Strand), l[2].(string), l[3].(Strand), l[4].(int))
	}
	return g
}

func TestStrand_Flip(t *testing.T) {
	if Forward.Flip() != Reverse || Reverse.Flip() != Forward {
		t.Error("Flip did not invert strands")
	}
	if Forward.String() != "+" || Reverse.String() != "-" {
		t.Error("unexpected strand formatting")
	}
}

func TestGraph_Sequence(t *testing.T) {
	g := testGraph(t, map[string]string{"1": "ACGTT"}, nil)

	if got := g.Sequence("1", Forward); got != "ACGTT" {
		t.Errorf("forward sequence = %q, want ACGTT", got)
	}
	if got := g.Sequence("1", Reverse); got != "AACGT" {
		t.Errorf("reverse sequence = %q, want AACGT", got)
	}
	if got := g.Sequence("missing", Forward); got != "" {
		t.Errorf("missing node sequence = %q, want empty", got)
	}
}

func TestGraph_Neighbors(t *testing.T) {
	// 1+ -> 2+ and 1+ -> 3- with different overlaps
	g := testGraph(t,
		map[string]string{"1": testSeq(50, 1), "2": testSeq(60, 2), "3": testSeq(70, 3)},
		[][5]interface{}{
			{"1", Forward, "2", Forward, 10},
			{"1", Forward, "3", Reverse, 5},
		},
	)

	type args struct {
		id     string
		strand Strand
		dir    Direction
	}
	tests := []struct {
		name string
		args args
		want []string // "id strand overlap"
	}{
		{
			"downstream of 1+",
			args{"1", Forward, Downstream},
			[]string{"2 + 10", "3 - 5"},
		},
		{
			"upstream of 2+ finds 1+",
			args{"2", Forward, Upstream},
			[]string{"1 + 10"},
		},
		{
			"downstream of 2- is the complement link",
			args{"2", Reverse, Downstream},
			[]string{"1 - 10"},
		},
		{
			"upstream of 1+ is empty",
			args{"1", Forward, Upstream},
			nil,
		},
		{
			"downstream of 3+ finds 1-",
			args{"3", Forward, Downstream},
			[]string{"1 - 5"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, nb := range g.Neighbors(tt.args.id, tt.args.strand, tt.args.dir) {
				got = append(got, strings.Join([]string{
					nb.Node.ID, nb.Strand.String(), strconv.Itoa(nb.Overlap),
				}, " "))
			}
			if len(got) != len(tt.want) {
				t.Fatalf("neighbors = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("neighbor %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestGraph_Neighbors_duplicateLinks(t *testing.T) {
	// a GFA that lists a link and its complement should produce one edge
	g := testGraph(t,
		map[string]string{"1": testSeq(50, 1), "2": testSeq(50, 2)},
		[][5]interface{}{
			{"1", Forward, "2", Forward, 10},
			{"2", Reverse, "1", Reverse, 10},
		},
	)

	if nbs := g.Neighbors("1", Forward, Downstream); len(nbs) != 1 {
		t.Errorf("downstream of 1+ has %d neighbors, want 1", len(nbs))
	}
	if nbs := g.Neighbors("2", Reverse, Downstream); len(nbs) != 1 {
		t.Errorf("downstream of 2- has %d neighbors, want 1", len(nbs))
	}
}

func TestGraph_Neighbors_selfComplementary(t *testing.T) {
	// a hairpin link 1+ -> 1- is its own complement
	g := testGraph(t,
		map[string]string{"1": testSeq(50, 1)},
		[][5]interface{}{
			{"1", Forward, "1", Reverse, 0},
		},
	)

	nbs := g.Neighbors("1", Forward, Downstream)
	if len(nbs) != 1 {
		t.Fatalf("downstream of 1+ has %d neighbors, want 1", len(nbs))
	}
	if nbs[0].Node.ID != "1" || nbs[0].Strand != Reverse {
		t.Errorf("hairpin neighbor = %s%s, want 1-", nbs[0].Node.ID, nbs[0].Strand)
	}
}

func TestGraph_multigraph(t *testing.T) {
	// two links between the same pair with different overlaps both survive
	g := testGraph(t,
		map[string]string{"1": testSeq(50, 1), "2": testSeq(50, 2)},
		[][5]interface{}{
			{"1", Forward, "2", Forward, 5},
			{"1", Forward, "2", Forward, 15},
		},
	)

	nbs := g.Neighbors("1", Forward, Downstream)
	if len(nbs) != 2 {
		t.Fatalf("downstream of 1+ has %d neighbors, want 2", len(nbs))
	}
	if nbs[0].Overlap != 5 || nbs[1].Overlap != 15 {
		t.Errorf("overlaps = %d,%d, want 5,15", nbs[0].Overlap, nbs[1].Overlap)
	}
}

func Test_reverseComplement(t *testing.T) {
	tests := []struct {
		name string
		seq  string
		want string
	}{
		{"simple", "ATGC", "GCAT"},
		{"palindrome", "ACGT", "ACGT"},
		{"with n", "AANTT", "AANTT"},
		{"lowercase input", "atgc", "GCAT"},
		{"unknown base", "AXT", "ANT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reverseComplement(tt.seq); got != tt.want {
				t.Errorf("reverseComplement(%q) = %q, want %q", tt.seq, got, tt.want)
			}
		})
	}
}

func Test_reverseComplement_involution(t *testing.T) {
	seq := testSeq(200, 99)
	if got := reverseComplement(reverseComplement(seq)); got != seq {
		t.Error("double reverse complement did not restore the sequence")
	}
}
