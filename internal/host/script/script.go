// internal/host/script/script.go
package script

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bedlam-render/sequencer/internal/config"
	"github.com/bedlam-render/sequencer/internal/host/document"
	"github.com/bedlam-render/sequencer/internal/host/memory"
	"github.com/bedlam-render/sequencer/pkg/ops"
)

const generatorName = "bedlam-sequencer"

// Backend behaves like the memory host but additionally writes every
// saved timeline as an ops document file, for the editor-side import
// stub to replay.
type Backend struct {
	*memory.Backend
	cfg config.HostConfig

	mu             sync.Mutex
	lastExportPath string
}

// New creates a script backend writing into cfg.OutputDir.
func New(cfg config.HostConfig) *Backend {
	return &Backend{Backend: memory.New(cfg), cfg: cfg}
}

// SaveTimeline stores the document and writes its ops file.
func (b *Backend) SaveTimeline(t *document.Timeline) error {
	if err := b.Backend.SaveTimeline(t); err != nil {
		return err
	}
	return b.exportDocument(t)
}

// exportDocument writes one timeline as <name>.timeline.json, gzipped
// when configured.
func (b *Backend) exportDocument(t *document.Timeline) error {
	doc := document.ToOps(t, generatorName)

	name := t.Path
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	var filename string
	if b.cfg.CompressOutput {
		filename = fmt.Sprintf("%s.timeline.json.gz", name)
	} else {
		filename = fmt.Sprintf("%s.timeline.json", name)
	}
	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if b.cfg.CompressOutput {
		if err := writeGzipJSON(outputPath, doc); err != nil {
			return err
		}
	} else {
		if err := writeJSON(outputPath, doc); err != nil {
			return err
		}
	}

	b.mu.Lock()
	b.lastExportPath = outputPath
	b.mu.Unlock()
	return nil
}

// LastExportPath returns the path of the most recently written document.
func (b *Backend) LastExportPath() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastExportPath
}

func writeJSON(path string, doc ops.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(doc)
}

func writeGzipJSON(path string, doc ops.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()

	encoder := json.NewEncoder(gzWriter)
	return encoder.Encode(doc)
}
