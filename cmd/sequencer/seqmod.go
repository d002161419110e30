package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/bedlam-render/sequencer/internal/config"
	"github.com/bedlam-render/sequencer/internal/seqmod"
)

// runSeqmod dispatches the descriptor rewrite verbs. The batchable verbs
// take any number of descriptor paths and write sibling output files;
// povflag and sixviews take explicit input and output paths.
func runSeqmod(args []string) error {
	fs := flag.NewFlagSet("seqmod", flag.ContinueOnError)
	seed := fs.Int64("seed", 0, "random seed; 0 draws one from the clock")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return fmt.Errorf("usage: %s seqmod [-seed N] VERB ...", ToolName)
	}

	switch strings.ToLower(rest[0]) {
	case "camera":
		if len(rest) < 3 {
			return fmt.Errorf("usage: %s seqmod [-seed N] camera PRESET CSV...", ToolName)
		}
		name := rest[1]
		preset, ok := config.GetCameraPresets()[name]
		if !ok {
			return fmt.Errorf("unknown camera preset %q", name)
		}
		return rewriteAll(rest[2:], *seed, seqmod.SuffixCamera, func(s *seqmod.Service, f *seqmod.File) error {
			return s.Camera(f, name, preset)
		})

	case "cameraroot":
		return rewriteAll(rest[1:], *seed, seqmod.SuffixCameraRoot, func(s *seqmod.Service, f *seqmod.File) error {
			s.CameraRoot(f)
			return nil
		})

	case "sequenceroot":
		return rewriteAll(rest[1:], *seed, seqmod.SuffixSequenceRoot, func(s *seqmod.Service, f *seqmod.File) error {
			return s.SequenceRoot(f)
		})

	case "overlayreplace":
		return rewriteAll(rest[1:], *seed, seqmod.SuffixOverlay, func(s *seqmod.Service, f *seqmod.File) error {
			return s.OverlayReplace(f)
		})

	case "overlayadd":
		cfg := config.GetSeqmodConfig()
		genders, pool, err := loadWardrobe(cfg.GenderPath, cfg.OverlayPath)
		if err != nil {
			return err
		}
		return rewriteAll(rest[1:], *seed, seqmod.SuffixOverlay, func(s *seqmod.Service, f *seqmod.File) error {
			return s.OverlayAdd(f, genders, pool)
		})

	case "hairadd":
		cfg := config.GetSeqmodConfig()
		genders, pool, err := loadWardrobe(cfg.GenderPath, cfg.HairPath)
		if err != nil {
			return err
		}
		return rewriteAll(rest[1:], *seed, seqmod.SuffixHair, func(s *seqmod.Service, f *seqmod.File) error {
			return s.HairAdd(f, genders, pool)
		})

	case "povflag":
		if len(rest) != 3 {
			return fmt.Errorf("usage: %s seqmod povflag INPUT OUTPUT", ToolName)
		}
		return rewriteTo(rest[1], rest[2], *seed, func(s *seqmod.Service, f *seqmod.File) error {
			s.POVFlag(f)
			return nil
		})

	case "sixviews":
		if len(rest) != 3 {
			return fmt.Errorf("usage: %s seqmod sixviews INPUT OUTPUT", ToolName)
		}
		return rewriteTo(rest[1], rest[2], *seed, func(s *seqmod.Service, f *seqmod.File) error {
			s.SixViews(f)
			return nil
		})

	default:
		return fmt.Errorf("unknown seqmod verb %q", rest[0])
	}
}

// loadWardrobe reads the gender index and one texture pool.
func loadWardrobe(genderPath, poolPath string) (map[string]string, map[string][]string, error) {
	genders, err := seqmod.LoadGenderIndex(genderPath)
	if err != nil {
		return nil, nil, err
	}
	pool, err := seqmod.LoadPool(poolPath)
	if err != nil {
		return nil, nil, err
	}
	return genders, pool, nil
}

// rewriteAll applies one verb to every descriptor concurrently. Each path
// gets its own Service seeded from the base seed and its position, so the
// output does not depend on worker scheduling.
func rewriteAll(paths []string, seed int64, suffix string, apply func(*seqmod.Service, *seqmod.File) error) error {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	seeds := make(map[string]int64, len(paths))
	for i, path := range paths {
		seeds[path] = seed + int64(i)
	}

	workers := config.GetSeqmodConfig().Workers
	return seqmod.Batch(context.Background(), paths, workers, func(path string) error {
		f, err := seqmod.Load(path)
		if err != nil {
			return err
		}
		if err := apply(seqmod.New(Logger, seeds[path]), f); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		out := seqmod.OutputPath(path, suffix)
		if err := f.Save(out); err != nil {
			return err
		}
		Logger.Info("Wrote rewritten descriptor", "input", path, "output", out)
		return nil
	})
}

// rewriteTo applies one verb to a single descriptor with an explicit
// output path.
func rewriteTo(input, output string, seed int64, apply func(*seqmod.Service, *seqmod.File) error) error {
	f, err := seqmod.Load(input)
	if err != nil {
		return err
	}
	if err := apply(seqmod.New(Logger, seed), f); err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}
	if err := f.Save(output); err != nil {
		return err
	}
	Logger.Info("Wrote rewritten descriptor", "input", input, "output", output)
	return nil
}
