package sarand

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/aaronmussig/sarand/logger"
	"go.uber.org/zap"
)

// OutcomeKind classifies one seed's extraction for reporting.
type OutcomeKind int

const (
	// OutcomeFull means at least the target length was rendered on
	// both sides of the AMR span.
	OutcomeFull OutcomeKind = iota

	// OutcomePartialDeadEnd means a flank ran out of edges short of
	// the target; the shorter sequence is still a valid result.
	OutcomePartialDeadEnd

	// OutcomePartialNodeThreshold means a flank hit the node-count
	// bound short of the target.
	OutcomePartialNodeThreshold

	// OutcomeNotFound means no alignment hit cleared the thresholds
	// for the gene.
	OutcomeNotFound

	// OutcomeError means the seed's traversal or assembly failed,
	// eg on a malformed join.
	OutcomeError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeFull:
		return "extracted"
	case OutcomePartialDeadEnd:
		return "extracted-partial-dead-end"
	case OutcomePartialNodeThreshold:
		return "extracted-partial-node-threshold"
	case OutcomeNotFound:
		return "not-found-in-graph"
	default:
		return "error"
	}
}

// Result is the outcome of one seed's extraction, or of a gene that
// produced no seeds at all.
type Result struct {
	// Gene the result belongs to
	Gene string

	// Seed that was extended; zero value when Kind is OutcomeNotFound
	Seed AlignmentHit

	// Kind summarizes the outcome
	Kind OutcomeKind

	// Sequences are the rendered neighborhoods, one per surviving
	// (upstream, downstream) path pair
	Sequences []ExtractedSequence

	// Err holds the failure when Kind is OutcomeError
	Err error
}

// Extractor runs neighborhood extraction for every seed against a
// shared read-only graph.
type Extractor struct {
	Graph *Graph

	// Target neighborhood length on each side of the AMR span
	Target int

	// NodeThreshold bounds the node count of any path
	NodeThreshold int

	// PercentThreshold is the percentage of Target after which
	// branching stops (see searcher)
	PercentThreshold float64

	// MinIdentity and MinCoverage gate which hits become seeds
	MinIdentity float64
	MinCoverage float64

	// Cores is the number of seeds extracted concurrently
	Cores int
}

// Validate checks the extraction settings before a run.
func (ex *Extractor) Validate() error {
	if ex.Graph == nil {
		return errors.New("extractor: no graph loaded")
	}
	if ex.Target <= 0 {
		return fmt.Errorf("extractor: target length %d must be positive", ex.Target)
	}
	if ex.NodeThreshold <= 0 {
		return fmt.Errorf("extractor: node threshold %d must be positive", ex.NodeThreshold)
	}
	if ex.PercentThreshold < 0 || ex.PercentThreshold > 100 {
		return fmt.Errorf("extractor: percent threshold %.1f outside [0,100]", ex.PercentThreshold)
	}
	return nil
}

// Run extracts the neighborhood of every qualifying seed. Extractions
// are independent: the graph is never mutated, so seeds fan out over a
// bounded worker pool and one seed's failure never aborts its
// siblings. Genes whose every hit fell below the thresholds come back
// as OutcomeNotFound.
func (ex *Extractor) Run(ctx context.Context, hits []AlignmentHit) []Result {
	seeds := Seeds(hits, ex.MinIdentity, ex.MinCoverage)

	var notFound []Result
	var queue []AlignmentHit
	for gene, geneSeeds := range seeds {
		if len(geneSeeds) == 0 {
			logger.Warn("gene not found in graph", zap.String("gene", gene))
			notFound = append(notFound, Result{Gene: gene, Kind: OutcomeNotFound})
			continue
		}
		queue = append(queue, geneSeeds...)
	}
	sort.Slice(queue, func(i, j int) bool {
		if queue[i].Gene != queue[j].Gene {
			return queue[i].Gene < queue[j].Gene
		}
		if queue[i].Node != queue[j].Node {
			return queue[i].Node < queue[j].Node
		}
		return queue[i].Start < queue[j].Start
	})

	results := make([]Result, len(queue))

	cores := ex.Cores
	if cores < 1 {
		cores = 1
	}
	var g errgroup.Group
	g.SetLimit(cores)

	for i, seed := range queue {
		i, seed := i, seed
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{Gene: seed.Gene, Seed: seed, Kind: OutcomeError, Err: err}
				return nil
			}
			results[i] = ex.extractSeed(seed)
			return nil
		})
	}
	g.Wait() // workers record failures in their Result, never an error

	results = append(results, notFound...)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Gene < results[j].Gene
	})

	return results
}

// extractSeed extends one seed upstream and downstream, assembles each
// surviving path pair and classifies the outcome.
func (ex *Extractor) extractSeed(hit AlignmentHit) Result {
	res := Result{Gene: hit.Gene, Seed: hit}

	node := ex.Graph.Node(hit.Node)
	if node == nil {
		res.Kind = OutcomeError
		res.Err = fmt.Errorf("alignment hit references unknown node %q", hit.Node)
		return res
	}

	nodeLen := len(node.Seq)
	amrStart, amrEnd := hit.orientedSpan(nodeLen)
	if amrStart < 0 || amrEnd > nodeLen {
		res.Kind = OutcomeError
		res.Err = fmt.Errorf("alignment span [%d,%d) outside node %s (%dbp)", hit.Start, hit.End, hit.Node, nodeLen)
		return res
	}

	s := &searcher{
		graph:   ex.Graph,
		target:  ex.Target,
		nodeMax: ex.NodeThreshold,
		percent: ex.PercentThreshold,
	}

	// downstream walks off the 3' side of the AMR span; upstream is
	// the same search off the flipped orientation, mirrored back
	downPaths, err := s.extend(hit.Node, hit.Strand, amrEnd)
	if err != nil {
		res.Kind = OutcomeError
		res.Err = err
		return res
	}
	upRaw, err := s.extend(hit.Node, hit.Strand.Flip(), nodeLen-amrStart)
	if err != nil {
		res.Kind = OutcomeError
		res.Err = err
		return res
	}
	upPaths := make([]Path, len(upRaw))
	for i, p := range upRaw {
		upPaths[i] = ex.Graph.mirror(p)
	}

	upPaths, err = dedupPaths(ex.Graph, upPaths)
	if err == nil {
		downPaths, err = dedupPaths(ex.Graph, downPaths)
	}
	if err != nil {
		res.Kind = OutcomeError
		res.Err = err
		return res
	}

	for _, up := range upPaths {
		for _, down := range downPaths {
			seq, err := Assemble(ex.Graph, hit, up, down)
			if err != nil {
				res.Kind = OutcomeError
				res.Err = err
				return res
			}
			res.Sequences = append(res.Sequences, seq)
		}
	}

	res.Kind = classify(res.Sequences)
	return res
}

// classify folds the termination states of every rendered sequence
// into one seed-level outcome. Any flank that fell short makes the
// seed partial; a dead end is reported over a node-threshold stop.
func classify(sequences []ExtractedSequence) OutcomeKind {
	kind := OutcomeFull
	for _, seq := range sequences {
		for _, state := range []TermState{seq.Upstream.State, seq.Downstream.State} {
			switch state {
			case DeadEnd:
				return OutcomePartialDeadEnd
			case NodeThresholdReached:
				kind = OutcomePartialNodeThreshold
			}
		}
	}
	return kind
}

// dedupPaths drops paths that render to a flank another path already
// produced; branches that reconverge would otherwise repeat the same
// neighborhood. The first occurrence wins, and search order is
// deterministic.
func dedupPaths(g *Graph, paths []Path) ([]Path, error) {
	seen := make(map[string]bool, len(paths))
	unique := paths[:0]
	for _, p := range paths {
		flank, err := render(g, p.Steps)
		if err != nil {
			return nil, err
		}
		if seen[flank] {
			continue
		}
		seen[flank] = true
		unique = append(unique, p)
	}
	return unique, nil
}
