package sarand

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aaronmussig/sarand/config"
	"github.com/aaronmussig/sarand/logger"
)

// ExtractCmd is the handler behind `sarand extract`: load the graph,
// filter the alignment hits into seeds, extract every neighborhood and
// write the artifacts. Only a graph that fails to load is fatal; any
// per-seed failure is reported and the run continues.
func ExtractCmd(cmd *cobra.Command, args []string) {
	c := config.New()

	level := zapcore.InfoLevel
	if c.Verbose {
		level = zapcore.DebugLevel
	}
	if err := logger.Init(level); err != nil {
		fmt.Println("failed to init logging:", err)
		return
	}
	defer logger.Sync()

	graph, err := LoadGraph(c.GraphPath)
	if err != nil {
		logger.Fatal("failed to load assembly graph", zap.Error(err))
	}
	logger.Info("assembly graph loaded",
		zap.String("path", c.GraphPath),
		zap.Int("nodes", graph.NodeCount()),
		zap.Int("edges", graph.EdgeCount()))

	hits, err := LoadAlignments(c.AlignmentPath)
	if err != nil {
		logger.Fatal("failed to load alignments", zap.Error(err))
	}
	logger.Info("alignments loaded", zap.Int("hits", len(hits)))

	ex := &Extractor{
		Graph:            graph,
		Target:           c.SeqLength,
		NodeThreshold:    c.PathNodeThreshold,
		PercentThreshold: c.PathSeqLenPercentThreshold,
		MinIdentity:      c.MinIdentity,
		MinCoverage:      c.MinCoverage,
		Cores:            c.Cores,
	}
	if err := ex.Validate(); err != nil {
		logger.Fatal("bad extraction settings", zap.Error(err))
	}

	results := ex.Run(context.Background(), hits)

	if err := writeResults(c, results); err != nil {
		logger.Fatal("failed to write extraction artifacts", zap.Error(err))
	}

	if c.DBPath != "" {
		if err := saveResults(c, ex, results); err != nil {
			logger.Error("failed to record outcomes", zap.Error(err))
		}
	}

	logSummary(results)
}

// GraphCmd is the handler behind `sarand graph`: load and validate a
// GFA file and report its size.
func GraphCmd(cmd *cobra.Command, args []string) {
	c := config.New()

	if err := logger.Init(zapcore.InfoLevel); err != nil {
		fmt.Println("failed to init logging:", err)
		return
	}
	defer logger.Sync()

	graph, err := LoadGraph(c.GraphPath)
	if err != nil {
		logger.Fatal("failed to load assembly graph", zap.Error(err))
	}

	logger.Info("assembly graph is valid",
		zap.String("path", c.GraphPath),
		zap.Int("nodes", graph.NodeCount()),
		zap.Int("edges", graph.EdgeCount()))
}

// writeResults writes the per-gene sequence and path-info artifacts.
// A gene's sequences are gathered across all of its seeds so ambiguous
// placements land in the same file.
func writeResults(c config.Config, results []Result) error {
	byGene := make(map[string][]ExtractedSequence)
	var genes []string
	for _, r := range results {
		if r.Kind == OutcomeNotFound || r.Kind == OutcomeError {
			continue
		}
		if _, ok := byGene[r.Gene]; !ok {
			genes = append(genes, r.Gene)
		}
		byGene[r.Gene] = append(byGene[r.Gene], r.Sequences...)
	}
	sort.Strings(genes)

	for _, gene := range genes {
		seqPath, err := WriteGeneArtifacts(c.OutputDir, gene, c.SeqLength, byGene[gene])
		if err != nil {
			return err
		}
		logger.Debug("wrote neighborhood sequences",
			zap.String("gene", gene),
			zap.String("file", seqPath),
			zap.Int("sequences", len(byGene[gene])))
	}
	return nil
}

// saveResults records every outcome under a fresh run id.
func saveResults(c config.Config, ex *Extractor, results []Result) error {
	store, err := OpenStore(c.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	runID, err := store.CreateRun(c.GraphPath, ex)
	if err != nil {
		return err
	}

	for _, r := range results {
		if err := store.SaveResult(runID, r); err != nil {
			return err
		}
	}

	logger.Info("outcomes recorded", zap.String("run", runID), zap.String("db", c.DBPath))
	return nil
}

// logSummary reports every seed's outcome and the totals.
func logSummary(results []Result) {
	counts := make(map[OutcomeKind]int)
	for _, r := range results {
		counts[r.Kind]++

		switch r.Kind {
		case OutcomeError:
			logger.Error("extraction failed",
				zap.String("gene", r.Gene),
				zap.String("node", r.Seed.Node),
				zap.Error(r.Err))
		case OutcomeNotFound:
			// already reported during seeding
		default:
			logger.Info("neighborhood extracted",
				zap.String("gene", r.Gene),
				zap.String("node", r.Seed.Node),
				zap.String("outcome", r.Kind.String()),
				zap.Int("sequences", len(r.Sequences)))
		}
	}

	logger.Info("extraction finished",
		zap.Int("extracted", counts[OutcomeFull]),
		zap.Int("partial_dead_end", counts[OutcomePartialDeadEnd]),
		zap.Int("partial_node_threshold", counts[OutcomePartialNodeThreshold]),
		zap.Int("not_found", counts[OutcomeNotFound]),
		zap.Int("errors", counts[OutcomeError]))
}
