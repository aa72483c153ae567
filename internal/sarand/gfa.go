package sarand

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ParseError reports a malformed graph input. Nothing can run without
// a valid graph so a ParseError is fatal for the whole run.
type ParseError struct {
	// Line number the record was read from (1-based), 0 if unknown
	Line int

	// Msg describes what was wrong with the record
	Msg string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("gfa: line %d: %s", e.Line, e.Msg)
	}
	return "gfa: " + e.Msg
}

// pendingLink is a parsed L record awaiting segment resolution. Links
// may legally appear before the segments they reference, so they are
// resolved after the whole file has been read.
type pendingLink struct {
	line                 int
	from, to             string
	fromStrand, toStrand Strand
	overlap              int
}

// LoadGraph reads an assembly graph from a GFA file on disk.
func LoadGraph(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open assembly graph %s: %w", path, err)
	}
	defer f.Close()

	return ParseGFA(f)
}

// ParseGFA reads a segment-and-link graph description (GFA). Segments
// carry an id, a sequence and a coverage tag; links carry the two
// oriented endpoints and an overlap. A link referencing an unknown
// segment is a ParseError.
func ParseGFA(r io.Reader) (*Graph, error) {
	g := newGraph()
	var links []pendingLink

	scanner := bufio.NewScanner(r)
	// segment lines hold whole contig sequences
	scanner.Buffer(make([]byte, 1024*1024), 512*1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		switch line[0] {
		case 'S':
			if err := parseSegment(g, line, lineNum); err != nil {
				return nil, err
			}
		case 'L':
			link, err := parseLink(line, lineNum)
			if err != nil {
				return nil, err
			}
			links = append(links, link)
		default:
			// H, P, C and comment lines are not needed for extraction
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Line: lineNum, Msg: err.Error()}
	}

	for _, l := range links {
		if g.Node(l.from) == nil {
			return nil, &ParseError{Line: l.line, Msg: fmt.Sprintf("link references unknown segment %q", l.from)}
		}
		if g.Node(l.to) == nil {
			return nil, &ParseError{Line: l.line, Msg: fmt.Sprintf("link references unknown segment %q", l.to)}
		}
		// an overlap longer than a segment is left in place here and
		// surfaced per-seed as an AssemblyError during traversal, so a
		// single bad join cannot block extraction elsewhere in the graph
		g.addLink(l.from, l.fromStrand, l.to, l.toStrand, l.overlap)
	}

	return g, nil
}

// parseSegment reads an S record: S <id> <seq> [tags...]
func parseSegment(g *Graph, line string, lineNum int) error {
	cols := strings.Split(line, "\t")
	if len(cols) < 3 {
		return &ParseError{Line: lineNum, Msg: "segment record needs at least 3 columns"}
	}

	id := cols[1]
	seq := cols[2]
	if id == "" {
		return &ParseError{Line: lineNum, Msg: "segment with empty name"}
	}
	if seq == "" || seq == "*" {
		return &ParseError{Line: lineNum, Msg: fmt.Sprintf("segment %q carries no sequence", id)}
	}

	coverage, err := segmentCoverage(cols[3:], len(seq))
	if err != nil {
		return &ParseError{Line: lineNum, Msg: fmt.Sprintf("segment %q: %v", id, err)}
	}

	if err := g.addNode(id, seq, coverage); err != nil {
		return &ParseError{Line: lineNum, Msg: err.Error()}
	}
	return nil
}

// segmentCoverage pulls a mean depth out of a segment's optional tags.
// Assemblers disagree on the tag: metaSPAdes writes dp/DP, bcalm
// writes km and a raw k-mer count KC, which is divided by the segment
// length. A segment without any coverage tag gets 0.
func segmentCoverage(tags []string, seqLen int) (float64, error) {
	kmerCount := -1.0
	for _, tag := range tags {
		parts := strings.SplitN(tag, ":", 3)
		if len(parts) != 3 {
			continue
		}
		switch parts[0] {
		case "dp", "DP", "km", "KM":
			cov, err := strconv.ParseFloat(parts[2], 64)
			if err != nil {
				return 0, fmt.Errorf("bad coverage tag %q", tag)
			}
			if cov < 0 {
				return 0, fmt.Errorf("negative coverage in tag %q", tag)
			}
			return cov, nil
		case "KC":
			kc, err := strconv.ParseFloat(parts[2], 64)
			if err != nil {
				return 0, fmt.Errorf("bad k-mer count tag %q", tag)
			}
			kmerCount = kc
		}
	}

	if kmerCount >= 0 && seqLen > 0 {
		return kmerCount / float64(seqLen), nil
	}
	return 0, nil
}

// parseLink reads an L record: L <from> <+/-> <to> <+/-> <overlap>
func parseLink(line string, lineNum int) (pendingLink, error) {
	cols := strings.Split(line, "\t")
	if len(cols) < 6 {
		return pendingLink{}, &ParseError{Line: lineNum, Msg: "link record needs at least 6 columns"}
	}

	fromStrand, err := parseStrand(cols[2])
	if err != nil {
		return pendingLink{}, &ParseError{Line: lineNum, Msg: err.Error()}
	}
	toStrand, err := parseStrand(cols[4])
	if err != nil {
		return pendingLink{}, &ParseError{Line: lineNum, Msg: err.Error()}
	}

	overlap, err := parseOverlap(cols[5])
	if err != nil {
		return pendingLink{}, &ParseError{Line: lineNum, Msg: err.Error()}
	}

	return pendingLink{
		line:       lineNum,
		from:       cols[1],
		fromStrand: fromStrand,
		to:         cols[3],
		toStrand:   toStrand,
		overlap:    overlap,
	}, nil
}

// parseOverlap reads the overlap column of a link. Assemblers emit
// either a plain match-only CIGAR ("55M"), "0M", or "*" for none.
func parseOverlap(field string) (int, error) {
	if field == "*" {
		return 0, nil
	}
	if !strings.HasSuffix(field, "M") {
		return 0, fmt.Errorf("unsupported overlap %q", field)
	}
	overlap, err := strconv.Atoi(strings.TrimSuffix(field, "M"))
	if err != nil || overlap < 0 {
		return 0, fmt.Errorf("unsupported overlap %q", field)
	}
	return overlap, nil
}
