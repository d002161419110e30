package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/bedlam-render/sequencer/internal/util"
	"github.com/bedlam-render/sequencer/pkg/core"
)

// Columns every scene descriptor file must declare in its header row.
// Column order is free; generators historically disagree on it.
var requiredColumns = []string{
	"Type", "Index", "Body", "X", "Y", "Z", "Yaw", "Pitch", "Roll", "Comment",
}

// Parser provides scene descriptor row -> SceneRow conversion.
// It has zero external dependencies beyond a logger.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new parser with only a logger dependency
func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: logger}
}

// ParseFile reads and classifies a scene descriptor CSV from disk.
func (p *Parser) ParseFile(path string) ([]core.SceneRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening scene descriptor: %w", err)
	}
	defer f.Close()
	return p.Parse(f, path)
}

// Parse reads and classifies scene descriptor rows. name labels the
// source in errors; pass the file path when reading from disk.
func (p *Parser) Parse(r io.Reader, name string) ([]core.SceneRow, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &ConfigParseError{File: name, Line: 1, Err: fmt.Errorf("empty scene descriptor")}
	}
	if err != nil {
		return nil, &ConfigParseError{File: name, Line: 1, Err: err}
	}

	columns := make(map[string]int, len(header))
	for i, col := range header {
		columns[util.CleanField(col)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := columns[col]; !ok {
			return nil, &ConfigParseError{File: name, Line: 1, Err: fmt.Errorf("missing required column %q", col)}
		}
	}

	var rows []core.SceneRow
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, &ConfigParseError{File: name, Line: line, Err: err}
		}

		row, err := p.parseRow(columns, record)
		if err != nil {
			return nil, &ConfigParseError{File: name, Line: line, Err: err}
		}
		row.Line = line
		rows = append(rows, row)
	}

	p.logger.Debug("Parsed scene descriptor", "file", name, "rows", len(rows))
	return rows, nil
}

func (p *Parser) parseRow(columns map[string]int, record []string) (core.SceneRow, error) {
	field := func(name string) string {
		return util.CleanField(record[columns[name]])
	}

	row := core.SceneRow{
		Kind:    core.RowKind(field("Type")),
		Body:    field("Body"),
		Comment: field("Comment"),
	}

	switch row.Kind {
	case core.RowComment:
		return row, nil

	case core.RowGroup:
		pose, err := parsePose(field)
		if err != nil {
			return row, err
		}
		row.Pose = pose

		cfg, err := p.ParseGroupConfig(row.Comment)
		if err != nil {
			return row, err
		}
		row.Group = cfg
		return row, nil

	case core.RowBody:
		index, err := strconv.Atoi(field("Index"))
		if err != nil {
			return row, fmt.Errorf("error converting body index to int: %w", err)
		}
		row.Index = index

		pose, err := parsePose(field)
		if err != nil {
			return row, err
		}
		row.Pose = pose

		if _, _, err := core.SplitBodyName(row.Body); err != nil {
			return row, err
		}

		cfg, err := p.ParseBodyConfig(row.Comment)
		if err != nil {
			return row, err
		}
		row.BodyConfig = cfg
		return row, nil

	default:
		return row, fmt.Errorf("unknown row type %q", field("Type"))
	}
}

func parsePose(field func(string) string) (core.CameraPose, error) {
	var pose core.CameraPose
	for _, part := range []struct {
		name string
		dst  *float64
	}{
		{"X", &pose.X},
		{"Y", &pose.Y},
		{"Z", &pose.Z},
		{"Yaw", &pose.Yaw},
		{"Pitch", &pose.Pitch},
		{"Roll", &pose.Roll},
	} {
		v, err := strconv.ParseFloat(field(part.name), 64)
		if err != nil {
			return pose, fmt.Errorf("error converting %s to float: %w", part.name, err)
		}
		*part.dst = v
	}
	return pose, nil
}

// parseComment splits a row comment into its key=value mapping.
// Segments are ';' separated; empty segments are skipped; duplicate
// keys keep the last value. A non-empty segment without '=' is an
// error.
func parseComment(comment string) (map[string]string, error) {
	config := make(map[string]string)
	for _, segment := range util.SplitComment(comment) {
		key, value, ok := util.SplitKeyValue(segment)
		if !ok {
			return nil, fmt.Errorf("malformed key=value segment %q", segment)
		}
		config[key] = value
	}
	return config, nil
}

// logUnknownKeys notes well-formed keys the typed parse does not
// consume. They are harmless, so a debug line is all they get.
func (p *Parser) logUnknownKeys(config map[string]string, known map[string]bool) {
	for key := range config {
		if !known[key] {
			p.logger.Debug("Ignoring unknown comment key", "key", key)
		}
	}
}
