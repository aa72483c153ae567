package sarand

import (
	"strings"
	"testing"
)

func TestReadAlignments(t *testing.T) {
	records := strings.Join([]string{
		"gene\tnode\tstrand\tstart\tend\tidentity\tcoverage",
		"# produced by the aligner",
		"blaTEM-1\t12\t+\t100\t961\t0.99\t1.0",
		"aph(3')-IIIa\t7\t-\t0\t795\t0.96\t0.98",
	}, "\n")

	hits, err := ReadAlignments(strings.NewReader(records))
	if err != nil {
		t.Fatalf("ReadAlignments() error = %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("ReadAlignments() returned %d hits, want 2", len(hits))
	}

	want := AlignmentHit{
		Gene: "blaTEM-1", Node: "12", Strand: Forward,
		Start: 100, End: 961, Identity: 0.99, Coverage: 1.0,
	}
	if hits[0] != want {
		t.Errorf("hit = %+v, want %+v", hits[0], want)
	}
	if hits[1].Strand != Reverse {
		t.Errorf("second hit strand = %s, want -", hits[1].Strand)
	}
}

func TestReadAlignments_errors(t *testing.T) {
	tests := []struct {
		name    string
		records string
	}{
		{"too few columns", "blaTEM-1\t12\t+\t100\t961\t0.99"},
		{"identity above one", "blaTEM-1\t12\t+\t100\t961\t99\t1.0"},
		{"negative coverage", "blaTEM-1\t12\t+\t100\t961\t0.99\t-0.5"},
		{"inverted range", "blaTEM-1\t12\t+\t961\t100\t0.99\t1.0"},
		{"bad strand", "blaTEM-1\t12\tx\t100\t961\t0.99\t1.0"},
		{"bad start", "blaTEM-1\t12\t+\tabc\t961\t0.99\t1.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadAlignments(strings.NewReader(tt.records)); err == nil {
				t.Error("ReadAlignments() expected an error")
			}
		})
	}
}

func TestSeeds(t *testing.T) {
	hits := []AlignmentHit{
		{Gene: "g1", Node: "2", Strand: Forward, Start: 0, End: 10, Identity: 0.99, Coverage: 0.99},
		{Gene: "g1", Node: "1", Strand: Forward, Start: 0, End: 10, Identity: 0.97, Coverage: 0.96},
		// below the coverage threshold
		{Gene: "g2", Node: "3", Strand: Forward, Start: 0, End: 10, Identity: 0.99, Coverage: 0.5},
		// identity exactly at the threshold does not qualify
		{Gene: "g3", Node: "4", Strand: Forward, Start: 0, End: 10, Identity: 0.9, Coverage: 0.99},
	}

	seeds := Seeds(hits, 0.9, 0.9)

	if len(seeds) != 3 {
		t.Fatalf("Seeds() kept %d genes, want 3", len(seeds))
	}
	if len(seeds["g1"]) != 2 {
		t.Errorf("g1 has %d seeds, want 2", len(seeds["g1"]))
	}
	// sorted by node id for determinism
	if seeds["g1"][0].Node != "1" || seeds["g1"][1].Node != "2" {
		t.Errorf("g1 seeds out of order: %+v", seeds["g1"])
	}

	// genes whose hits all fell below threshold stay present but empty,
	// that is what "not found in graph" is reported from
	if geneSeeds, ok := seeds["g2"]; !ok || len(geneSeeds) != 0 {
		t.Errorf("g2 = %+v, want a present, empty entry", geneSeeds)
	}
	if geneSeeds, ok := seeds["g3"]; !ok || len(geneSeeds) != 0 {
		t.Errorf("g3 = %+v, want a present, empty entry", geneSeeds)
	}
}

func TestAlignmentHit_orientedSpan(t *testing.T) {
	type args struct {
		hit     AlignmentHit
		nodeLen int
	}
	tests := []struct {
		name      string
		args      args
		wantStart int
		wantEnd   int
	}{
		{
			"forward strand keeps offsets",
			args{AlignmentHit{Strand: Forward, Start: 100, End: 300}, 500},
			100, 300,
		},
		{
			"reverse strand mirrors offsets",
			args{AlignmentHit{Strand: Reverse, Start: 100, End: 300}, 500},
			200, 400,
		},
		{
			"reverse strand at node edge",
			args{AlignmentHit{Strand: Reverse, Start: 0, End: 500}, 500},
			0, 500,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := tt.args.hit.orientedSpan(tt.args.nodeLen)
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("orientedSpan() = [%d,%d), want [%d,%d)", start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}
