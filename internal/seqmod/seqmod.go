// Package seqmod rewrites scene descriptor files between generation
// and synthesis: randomized camera poses, camera and sequence root
// rotation, first person variants, panoramic view expansion, and
// wardrobe assignment. Each verb loads a descriptor, rewrites only the
// rows it targets and writes a sibling file, so verbs chain through
// intermediate files.
package seqmod

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bedlam-render/sequencer/internal/util"
	"github.com/bedlam-render/sequencer/pkg/core"
)

// Output name suffixes, one per rewrite verb. Render farm tooling
// globs for these.
const (
	SuffixCamera       = "camrandom"
	SuffixCameraRoot   = "camroot"
	SuffixSequenceRoot = "sequenceroot"
	SuffixOverlay      = "overlay"
	SuffixHair         = "hair"
)

// Columns a descriptor must declare before a verb will touch it.
// Column order is free, same as for the parser.
var requiredColumns = []string{
	"Type", "Index", "Body", "X", "Y", "Z", "Yaw", "Pitch", "Roll", "Comment",
}

// File is a loaded scene descriptor held as raw records, so every
// field a verb does not touch round trips unchanged.
type File struct {
	name    string
	header  []string
	columns map[string]int
	records [][]string
}

// Load reads a scene descriptor from disk.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening scene descriptor: %w", err)
	}
	defer f.Close()
	return Parse(f, path)
}

// Parse reads a scene descriptor. name labels the source in errors;
// pass the file path when reading from disk.
func Parse(r io.Reader, name string) (*File, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: empty scene descriptor", name)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	columns := make(map[string]int, len(header))
	for i, col := range header {
		columns[util.CleanField(col)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := columns[col]; !ok {
			return nil, fmt.Errorf("%s: missing required column %q", name, col)
		}
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return &File{name: name, header: header, columns: columns, records: records}, nil
}

// Len returns the number of data rows.
func (f *File) Len() int {
	return len(f.records)
}

// Write renders the descriptor as CSV.
func (f *File) Write(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(f.header); err != nil {
		return err
	}
	return writer.WriteAll(f.records)
}

// Save writes the descriptor to disk.
func (f *File) Save(path string) error {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("error writing scene descriptor: %w", err)
	}
	return nil
}

func (f *File) kind(rec []string) core.RowKind {
	return core.RowKind(f.field(rec, "Type"))
}

func (f *File) field(rec []string, column string) string {
	return util.CleanField(rec[f.columns[column]])
}

func (f *File) setField(rec []string, column, value string) {
	rec[f.columns[column]] = value
}

func (f *File) floatField(rec []string, column string) (float64, error) {
	v, err := strconv.ParseFloat(f.field(rec, column), 64)
	if err != nil {
		return 0, fmt.Errorf("error converting %s to float: %w", column, err)
	}
	return v, nil
}

func (f *File) setFloat(rec []string, column string, v float64) {
	f.setField(rec, column, util.FormatFloat(v))
}

// globalComment returns the descriptor's provenance row, the first row
// of kind Comment.
func (f *File) globalComment() ([]string, bool) {
	for _, rec := range f.records {
		if f.kind(rec) == core.RowComment {
			return rec, true
		}
	}
	return nil, false
}

// appendComment joins extra key=value segments onto a comment.
func appendComment(comment string, segments ...string) string {
	joined := strings.Join(segments, ";")
	if comment == "" {
		return joined
	}
	return comment + ";" + joined
}

// rewriteComment replaces every ';' separated segment of comment whose
// key matches, with whatever segment rewrite returns for its value.
// Untouched segments keep their exact text and position. found reports
// whether any segment matched.
func rewriteComment(comment, key string, rewrite func(value string) string) (result string, found bool) {
	segments := strings.Split(comment, ";")
	for i, segment := range segments {
		k, v, ok := util.SplitKeyValue(segment)
		if ok && k == key {
			segments[i] = rewrite(v)
			found = true
		}
	}
	return strings.Join(segments, ";"), found
}

// OutputPath names a verb's output next to its input: be_seq.csv with
// SuffixCamera becomes be_seq_camrandom.csv.
func OutputPath(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_" + suffix + ext
}

// Service applies descriptor rewrite verbs. Verbs that draw random
// values share one generator, so a fixed seed reproduces a rewrite
// exactly.
type Service struct {
	logger *slog.Logger
	rng    *rand.Rand
}

// New creates a rewrite service. Seed zero picks a time based seed.
func New(logger *slog.Logger, seed int64) *Service {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Service{logger: logger, rng: rand.New(rand.NewSource(seed))}
}

func (s *Service) uniform(min, max float64) float64 {
	return min + s.rng.Float64()*(max-min)
}
