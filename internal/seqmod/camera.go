package seqmod

import (
	"fmt"
	"math"

	"github.com/bedlam-render/sequencer/internal/config"
	"github.com/bedlam-render/sequencer/internal/util"
	"github.com/bedlam-render/sequencer/pkg/core"
)

// Camera replaces every Group pose with a randomized pose drawn from
// the preset bounds and records the bounds plus the preset name on the
// provenance row, so a rendered image can be traced back to its draw.
func (s *Service) Camera(f *File, name string, preset config.CameraPreset) error {
	if rec, ok := f.globalComment(); ok {
		f.setField(rec, "Comment", appendComment(f.field(rec, "Comment"),
			"cam_x_offset="+util.FormatFloat(preset.XOffsetMax),
			"cam_y_offset="+util.FormatFloat(preset.YOffsetMax),
			"cam_z_offset="+util.FormatFloat(preset.ZOffsetMax),
			"cam_yaw_min="+util.FormatFloat(preset.YawMin),
			"cam_yaw_max="+util.FormatFloat(preset.YawMax),
			"cam_pitch_min="+util.FormatFloat(preset.PitchMin),
			"cam_pitch_max="+util.FormatFloat(preset.PitchMax),
			"cam_roll_min="+util.FormatFloat(preset.RollMin),
			"cam_roll_max="+util.FormatFloat(preset.RollMax),
			"cam_config="+name,
		))
	}

	groups := 0
	for _, rec := range f.records {
		if f.kind(rec) != core.RowGroup {
			continue
		}
		if err := s.randomizePose(f, rec, preset); err != nil {
			return err
		}
		groups++
	}

	s.logger.Info("Randomized camera poses", "file", f.name, "preset", name, "groups", groups)
	return nil
}

func (s *Service) randomizePose(f *File, rec []string, c config.CameraPreset) error {
	var xStart, yStart, zStart float64
	if c.OverridePosition {
		xStart, yStart, zStart = c.X, c.Y, c.Z
		if c.PitchFromHeight {
			zStart = s.uniform(c.ZMin, c.ZMax)
		}
	} else {
		var err error
		if xStart, err = f.floatField(rec, "X"); err != nil {
			return err
		}
		if yStart, err = f.floatField(rec, "Y"); err != nil {
			return err
		}
		if zStart, err = f.floatField(rec, "Z"); err != nil {
			return err
		}
	}

	x := xStart + s.uniform(-c.XOffsetMax, c.XOffsetMax)
	y := yStart + s.uniform(-c.YOffsetMax, c.YOffsetMax)
	z := zStart + s.uniform(-c.ZOffsetMax, c.ZOffsetMax)
	yaw := s.uniform(c.YawMin, c.YawMax)

	pitchStart := 0.0
	if c.PitchFromHeight {
		t := (z - c.ZMin) / (c.ZMax - c.ZMin)
		pitchStart = (1-t)*c.PitchZMin + t*c.PitchZMax
	}
	pitch := pitchStart + s.uniform(c.PitchMin, c.PitchMax)
	roll := s.uniform(c.RollMin, c.RollMax)

	if c.HFOV > 0 {
		comment, found := rewriteComment(f.field(rec, "Comment"), "camera_hfov", func(string) string {
			return "camera_hfov=" + util.FormatFloat(c.HFOV)
		})
		if !found {
			return fmt.Errorf("row %s: no camera_hfov entry to rewrite", f.field(rec, "Index"))
		}
		f.setField(rec, "Comment", comment)
	}

	f.setFloat(rec, "X", x)
	f.setFloat(rec, "Y", y)
	f.setFloat(rec, "Z", z)
	f.setFloat(rec, "Yaw", yaw)
	f.setFloat(rec, "Pitch", pitch)
	f.setFloat(rec, "Roll", roll)
	return nil
}

// CameraRoot tags every Group with a random world yaw for the camera
// root actor and records the draw range on the provenance row. The
// synthesizer reads cameraroot_yaw when rotating templated camera
// movement around the sequence.
func (s *Service) CameraRoot(f *File) {
	if rec, ok := f.globalComment(); ok {
		f.setField(rec, "Comment", appendComment(f.field(rec, "Comment"),
			"cameraroot_yaw_min=0", "cameraroot_yaw_max=360"))
	}

	groups := 0
	for _, rec := range f.records {
		if f.kind(rec) != core.RowGroup {
			continue
		}
		f.setField(rec, "Comment", appendComment(f.field(rec, "Comment"),
			"cameraroot_yaw="+util.FormatFloat(s.uniform(0, 360))))
		groups++
	}

	s.logger.Info("Randomized camera root yaw", "file", f.name, "groups", groups)
}

// SequenceRoot rotates each sequence around the world origin by a
// fresh random angle: the Group camera yaw and every Body position and
// yaw turn together, varying HDRI backlight without moving the camera,
// which HDRI scenes keep at the origin. The angle lands in the Group
// comment.
func (s *Service) SequenceRoot(f *File) error {
	groups := 0
	angle := 0.0
	for _, rec := range f.records {
		switch f.kind(rec) {
		case core.RowGroup:
			angle = s.uniform(0, 360)
			yaw, err := f.floatField(rec, "Yaw")
			if err != nil {
				return err
			}
			f.setFloat(rec, "Yaw", wrapYaw(yaw+angle))
			f.setField(rec, "Comment", appendComment(f.field(rec, "Comment"),
				"angle="+util.FormatFloat(angle)))
			groups++

		case core.RowBody:
			x, err := f.floatField(rec, "X")
			if err != nil {
				return err
			}
			y, err := f.floatField(rec, "Y")
			if err != nil {
				return err
			}
			yaw, err := f.floatField(rec, "Yaw")
			if err != nil {
				return err
			}

			sinA, cosA := math.Sincos(angle * math.Pi / 180)
			f.setFloat(rec, "X", cosA*x-sinA*y)
			f.setFloat(rec, "Y", sinA*x+cosA*y)
			f.setFloat(rec, "Yaw", wrapYaw(yaw+angle))
		}
	}

	s.logger.Info("Rotated sequence roots", "file", f.name, "groups", groups)
	return nil
}

// wrapYaw folds a yaw in [0, 720) back into [0, 360).
func wrapYaw(v float64) float64 {
	if v >= 360 {
		return v - 360
	}
	return v
}
