package seqmod

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"slices"

	"github.com/bedlam-render/sequencer/internal/util"
	"github.com/bedlam-render/sequencer/pkg/core"
)

// LoadGenderIndex reads the subject gender table, a CSV with Name and
// Gender columns. Gender values key the wardrobe pools, "f" or "m".
func LoadGenderIndex(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening gender index: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading gender index %s: %w", path, err)
	}
	name, gender := -1, -1
	for i, col := range header {
		switch util.CleanField(col) {
		case "Name":
			name = i
		case "Gender":
			gender = i
		}
	}
	if name < 0 || gender < 0 {
		return nil, fmt.Errorf("gender index %s: missing Name or Gender column", path)
	}

	index := make(map[string]string)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading gender index %s: %w", path, err)
		}
		index[util.CleanField(record[name])] = util.CleanField(record[gender])
	}
	return index, nil
}

// LoadPool reads a per gender asset pool, a JSON object mapping gender
// to a list of asset names.
func LoadPool(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error opening wardrobe pool: %w", err)
	}
	pool := make(map[string][]string)
	if err := json.Unmarshal(data, &pool); err != nil {
		return nil, fmt.Errorf("error parsing wardrobe pool %s: %w", path, err)
	}
	return pool, nil
}

// OverlayReplace swaps textured geometry clothing for a clothing
// overlay on every Body row: texture_clothing=T becomes
// texture_clothing_overlay=<subject>_T. Rows without geometry clothing
// pass through.
func (s *Service) OverlayReplace(f *File) error {
	replaced := 0
	for _, rec := range f.records {
		if f.kind(rec) != core.RowBody {
			continue
		}
		subject, _, err := core.SplitBodyName(f.field(rec, "Body"))
		if err != nil {
			return err
		}
		comment, found := rewriteComment(f.field(rec, "Comment"), "texture_clothing", func(texture string) string {
			return "texture_clothing_overlay=" + subject + "_" + texture
		})
		if found {
			f.setField(rec, "Comment", comment)
			replaced++
		}
	}

	s.logger.Info("Replaced geometry clothing with overlays", "file", f.name, "bodies", replaced)
	return nil
}

// OverlayAdd assigns a clothing overlay texture to every Body row,
// drawn from the per gender pool with as little repetition as the pool
// size allows.
func (s *Service) OverlayAdd(f *File, genders map[string]string, pool map[string][]string) error {
	return s.assign(f, genders, pool, "texture_clothing_overlay")
}

// HairAdd assigns a hair mesh to every Body row from the whitelist
// pool, cycling like OverlayAdd.
func (s *Service) HairAdd(f *File, genders map[string]string, pool map[string][]string) error {
	return s.assign(f, genders, pool, "hair")
}

func (s *Service) assign(f *File, genders map[string]string, pool map[string][]string, key string) error {
	d := s.newDrawer(pool)
	bodies := 0
	for _, rec := range f.records {
		if f.kind(rec) != core.RowBody {
			continue
		}
		subject, _, err := core.SplitBodyName(f.field(rec, "Body"))
		if err != nil {
			return err
		}
		gender, ok := genders[subject]
		if !ok {
			return fmt.Errorf("no gender entry for subject %q", subject)
		}
		picked, err := d.draw(gender)
		if err != nil {
			return err
		}
		f.setField(rec, "Comment", appendComment(f.field(rec, "Comment"), key+"="+picked))
		bodies++
	}

	s.logger.Info("Assigned wardrobe entries", "file", f.name, "key", key, "bodies", bodies)
	return nil
}

// drawer hands out pool entries per gender without repeats, refilling
// a gender's deck from the source pool once it runs dry. Decks start
// empty so every rewrite opens with a full pool.
type drawer struct {
	rng    *rand.Rand
	source map[string][]string
	decks  map[string][]string
}

func (s *Service) newDrawer(source map[string][]string) *drawer {
	return &drawer{rng: s.rng, source: source, decks: make(map[string][]string)}
}

func (d *drawer) draw(gender string) (string, error) {
	if len(d.decks[gender]) == 0 {
		if len(d.source[gender]) == 0 {
			return "", fmt.Errorf("wardrobe pool has no entries for gender %q", gender)
		}
		d.decks[gender] = slices.Clone(d.source[gender])
	}
	deck := d.decks[gender]
	i := d.rng.Intn(len(deck))
	picked := deck[i]
	d.decks[gender] = append(deck[:i], deck[i+1:]...)
	return picked, nil
}
