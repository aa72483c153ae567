package sarand

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/aaronmussig/sarand/logger"
	"go.uber.org/zap"
)

// AlignmentHit is one alignment of an AMR gene against a graph
// segment, as reported by the external aligner.
type AlignmentHit struct {
	// Gene is the AMR gene's name
	Gene string

	// Node is the id of the matched segment
	Node string

	// Strand the gene matched on
	Strand Strand

	// Start of the match on the node's forward sequence (0-based)
	Start int

	// End of the match on the node's forward sequence (exclusive)
	End int

	// Identity fraction of the alignment, in [0,1]
	Identity float64

	// Coverage fraction of the gene covered by the alignment, in [0,1]
	Coverage float64
}

// orientedSpan maps the hit's match range into the coordinates of the
// node read on the hit's strand. On the reverse strand the range
// mirrors around the node length.
func (h AlignmentHit) orientedSpan(nodeLen int) (start, end int) {
	if h.Strand == Forward {
		return h.Start, h.End
	}
	return nodeLen - h.End, nodeLen - h.Start
}

// ReadAlignments parses the aligner's tab separated records:
// gene, node, strand, start, end, identity, coverage.
// Comment lines and a header line are skipped.
func ReadAlignments(r io.Reader) ([]AlignmentHit, error) {
	var hits []AlignmentHit

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		cols := strings.Split(line, "\t")
		if len(cols) < 7 {
			return nil, fmt.Errorf("alignment line %d: need 7 columns, have %d", lineNum, len(cols))
		}
		if lineNum == 1 && strings.EqualFold(cols[0], "gene") {
			continue // header
		}

		hit, err := parseAlignment(cols)
		if err != nil {
			return nil, fmt.Errorf("alignment line %d: %w", lineNum, err)
		}
		hits = append(hits, hit)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return hits, nil
}

// LoadAlignments reads alignment records from a file on disk.
func LoadAlignments(path string) ([]AlignmentHit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open alignments %s: %w", path, err)
	}
	defer f.Close()

	return ReadAlignments(f)
}

func parseAlignment(cols []string) (AlignmentHit, error) {
	strand, err := parseStrand(cols[2])
	if err != nil {
		return AlignmentHit{}, err
	}

	start, err := strconv.Atoi(cols[3])
	if err != nil {
		return AlignmentHit{}, fmt.Errorf("bad start %q", cols[3])
	}
	end, err := strconv.Atoi(cols[4])
	if err != nil {
		return AlignmentHit{}, fmt.Errorf("bad end %q", cols[4])
	}
	if start < 0 || end <= start {
		return AlignmentHit{}, fmt.Errorf("bad match range [%d,%d)", start, end)
	}

	identity, err := strconv.ParseFloat(cols[5], 64)
	if err != nil || identity < 0 || identity > 1 {
		return AlignmentHit{}, fmt.Errorf("identity %q outside [0,1]", cols[5])
	}
	coverage, err := strconv.ParseFloat(cols[6], 64)
	if err != nil || coverage < 0 || coverage > 1 {
		return AlignmentHit{}, fmt.Errorf("coverage %q outside [0,1]", cols[6])
	}

	return AlignmentHit{
		Gene:     cols[0],
		Node:     cols[1],
		Strand:   strand,
		Start:    start,
		End:      end,
		Identity: identity,
		Coverage: coverage,
	}, nil
}

// Seeds filters hits down to those exceeding both thresholds and
// groups them by gene. Every gene that had at least one raw hit keeps
// an entry, possibly empty, so "not found in graph" stays reportable.
// Each qualifying hit of a gene seeds its own, independent extraction.
func Seeds(hits []AlignmentHit, minIdentity, minCoverage float64) map[string][]AlignmentHit {
	seeds := make(map[string][]AlignmentHit)
	for _, hit := range hits {
		if _, ok := seeds[hit.Gene]; !ok {
			seeds[hit.Gene] = nil
		}

		if hit.Identity <= minIdentity || hit.Coverage <= minCoverage {
			logger.Debug("alignment below threshold, dropped",
				zap.String("gene", hit.Gene),
				zap.String("node", hit.Node),
				zap.Float64("identity", hit.Identity),
				zap.Float64("coverage", hit.Coverage))
			continue
		}
		seeds[hit.Gene] = append(seeds[hit.Gene], hit)
	}

	// deterministic seed order within a gene
	for _, geneSeeds := range seeds {
		sort.Slice(geneSeeds, func(i, j int) bool {
			if geneSeeds[i].Node != geneSeeds[j].Node {
				return geneSeeds[i].Node < geneSeeds[j].Node
			}
			return geneSeeds[i].Start < geneSeeds[j].Start
		})
	}

	return seeds
}
