// Package assembler groups classified scene rows into Sequences and
// resolves every asset reference a body needs. Resolution is pure
// string composition over the configured roots; whether an asset
// actually exists is the host's business.
package assembler

import (
	"fmt"
	"log/slog"

	"github.com/bedlam-render/sequencer/internal/config"
	"github.com/bedlam-render/sequencer/internal/parser"
	"github.com/bedlam-render/sequencer/pkg/core"
)

// Assembler builds Sequences from parsed rows.
type Assembler struct {
	logger *slog.Logger
	roots  config.RootsConfig
}

// New creates an assembler over the configured asset roots.
func New(logger *slog.Logger, roots config.RootsConfig) *Assembler {
	return &Assembler{logger: logger, roots: roots}
}

// Assemble walks the rows in order and emits one Sequence per Group
// that gathered at least one Body. A run of Body rows completes when
// it is the last row overall or the next row is not a Body. name
// labels the source file in errors.
func (a *Assembler) Assemble(name string, rows []core.SceneRow) ([]core.Sequence, error) {
	var sequences []core.Sequence
	var pending *core.Sequence

	for i := range rows {
		row := &rows[i]
		switch row.Kind {
		case core.RowComment:
			continue

		case core.RowGroup:
			if pending != nil {
				a.logger.Warn("Group row without bodies, dropping sequence",
					"sequence", pending.Name)
			}
			pending = &core.Sequence{
				Name:       row.Group.SequenceName,
				FrameCount: row.Group.FrameCount,
				Camera:     row.Pose,
				Config:     *row.Group,
			}

		case core.RowBody:
			if pending == nil {
				return nil, &parser.ConfigParseError{
					File: name,
					Line: row.Line,
					Err:  fmt.Errorf("body row %q outside a group", row.Body),
				}
			}
			body, err := a.resolveBody(row, pending.Config.POVCamera)
			if err != nil {
				return nil, &parser.ConfigParseError{File: name, Line: row.Line, Err: err}
			}
			pending.Bodies = append(pending.Bodies, body)

			if i == len(rows)-1 || rows[i+1].Kind != core.RowBody {
				sequences = append(sequences, *pending)
				pending = nil
			}
		}
	}

	if pending != nil {
		a.logger.Warn("Group row without bodies, dropping sequence",
			"sequence", pending.Name)
	}

	a.logger.Debug("Assembled sequences", "file", name, "sequences", len(sequences))
	return sequences, nil
}

// resolveBody fills in every asset reference for one Body row.
func (a *Assembler) resolveBody(row *core.SceneRow, pov bool) (core.SequenceBody, error) {
	subject, animationID, err := core.SplitBodyName(row.Body)
	if err != nil {
		return core.SequenceBody{}, err
	}

	cfg := row.BodyConfig
	body := core.SequenceBody{
		Subject:     subject,
		AnimationID: animationID,
		Pose:        row.Pose,
		StartFrame:  cfg.StartFrame,

		TextureBody:            cfg.TextureBody,
		TextureClothing:        cfg.TextureClothing,
		TextureClothingOverlay: cfg.TextureClothingOverlay,

		// GeometryCache'{geoRoot}{subject}/{body}.{body}'
		BodyRef: core.NewAssetRef("GeometryCache", a.roots.GeometryCacheRoot+subject, row.Body),
	}

	if pov {
		// The POV rig renders nothing itself; it drives the head socket
		// the camera attaches to.
		skeletalMesh := core.NewAssetRef("SkeletalMesh", a.roots.BodySkeletalRoot+subject, row.Body)
		skeletalAnimation := skeletalMesh
		skeletalAnimation.Type = "AnimSequence"
		skeletalAnimation.Object = row.Body + "_Animation"
		body.SkeletalMeshRef = &skeletalMesh
		body.SkeletalAnimationRef = &skeletalAnimation
	}

	if cfg.TextureClothing != "" {
		// Clothing caches mirror the body layout under the clothing root
		// with "_clo" appended to the animation id.
		clothing := core.NewAssetRef("GeometryCache", a.roots.ClothingCacheRoot+subject, row.Body+"_clo")
		body.ClothingRef = &clothing
	}

	if cfg.Hair != "" {
		hairMesh := core.NewAssetRef("StaticMesh", a.roots.HairRoot+cfg.Hair, cfg.Hair)
		hairAnimation := core.NewAssetRef("AnimSequence", a.roots.AnimationRoot+subject, row.Body+"_Anim")
		// The driver skeletal mesh sits next to its animation, named
		// without the _Anim suffix.
		driver := core.NewAssetRef("SkeletalMesh", a.roots.AnimationRoot+subject, row.Body)
		body.HairMeshRef = &hairMesh
		body.HairAnimationRef = &hairAnimation
		body.HairDriverMeshRef = &driver
	}

	return body, nil
}
