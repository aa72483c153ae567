package sarand

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// seqDirName and pathInfoDirName are the artifact directories created
// under the output directory.
const (
	seqDirName      = "sequences"
	pathInfoDirName = "paths_info"
)

// restrictedGeneName makes a gene name safe to use in a file name.
// CARD gene names carry quotes, parentheses and slashes.
func restrictedGeneName(name string) string {
	var b strings.Builder
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '.', c == '-', c == '_':
			b.WriteRune(c)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// pathLine formats the traversed node path of one extracted sequence,
// with the node carrying the AMR span bracketed:
// A+, [B+], C-
func pathLine(ex ExtractedSequence) string {
	var nodes []string

	up := ex.Upstream.Steps
	for _, st := range up[:len(up)-1] {
		nodes = append(nodes, st.Node+st.Strand.String())
	}

	seed := up[len(up)-1]
	nodes = append(nodes, "["+seed.Node+seed.Strand.String()+"]")

	for _, st := range ex.Downstream.Steps[1:] {
		nodes = append(nodes, st.Node+st.Strand.String())
	}

	return strings.Join(nodes, ", ")
}

// WriteGeneArtifacts writes the two per-gene artifacts under outDir:
// sequences/ng_sequences_<gene>_<len>.txt with, per extracted
// sequence, the node path on one line and the rendered sequence on the
// next, and paths_info/ng_path_info_<gene>_<len>.csv with the node
// records. Returns the sequences file path.
func WriteGeneArtifacts(outDir, gene string, target int, sequences []ExtractedSequence) (string, error) {
	name := restrictedGeneName(gene)

	seqDir := filepath.Join(outDir, seqDirName)
	infoDir := filepath.Join(outDir, pathInfoDirName)
	for _, dir := range []string{seqDir, infoDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create output dir %s: %w", dir, err)
		}
	}

	seqPath := filepath.Join(seqDir, fmt.Sprintf("ng_sequences_%s_%d.txt", name, target))
	seqFile, err := os.Create(seqPath)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", seqPath, err)
	}
	defer seqFile.Close()

	w := bufio.NewWriter(seqFile)
	for _, ex := range sequences {
		fmt.Fprintln(w, pathLine(ex))
		fmt.Fprintln(w, ex.Seq)
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", seqPath, err)
	}

	infoPath := filepath.Join(infoDir, fmt.Sprintf("ng_path_info_%s_%d.csv", name, target))
	infoFile, err := os.Create(infoPath)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", infoPath, err)
	}
	defer infoFile.Close()

	if err := WritePathInfo(infoFile, sequences); err != nil {
		return "", err
	}

	return seqPath, nil
}
