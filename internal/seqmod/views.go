package seqmod

import (
	"slices"
	"strconv"
	"strings"

	"github.com/bedlam-render/sequencer/pkg/core"
)

// POVFlag turns every sequence into its first person variant: the
// camera hfov becomes 110, the sequence name gains a pov_ prefix after
// seq_, and pov_camera=true is appended so the synthesizer attaches
// the camera to the first body's head.
func (s *Service) POVFlag(f *File) {
	groups := 0
	for _, rec := range f.records {
		if f.kind(rec) != core.RowGroup {
			continue
		}
		comment := f.field(rec, "Comment")
		comment, _ = rewriteComment(comment, "camera_hfov", func(string) string {
			return "camera_hfov=110"
		})
		comment, _ = rewriteComment(comment, "sequence_name", func(name string) string {
			return "sequence_name=" + strings.Replace(name, "seq_", "seq_pov_", 1)
		})
		f.setField(rec, "Comment", appendComment(comment, "pov_camera=true"))
		groups++
	}

	s.logger.Info("Flagged sequences for first person rendering", "file", f.name, "groups", groups)
}

// view is one face of the panoramic expansion. The matching yaw and
// pitch offsets are applied by the synthesizer's view table at build
// time, not written into the rows.
type view struct {
	suffix      string
	id          int
	description string
}

var panoramicViews = []view{
	{"_front", 0, "front_view"},
	{"_back", 1, "back_view"},
	{"_left", 2, "left_view"},
	{"_right", 3, "right_view"},
	{"_up", 4, "up_view"},
	{"_down", 5, "down_view"},
}

// SixViews expands each Group and its following Body row into six
// first person sequences, one per panoramic face, then renumbers the
// Index column from zero. Only the first Comment row survives, tagged
// with panoramic_views=6.
func (s *Service) SixViews(f *File) {
	var out [][]string

	if rec, ok := f.globalComment(); ok {
		clone := slices.Clone(rec)
		f.setField(clone, "Comment", appendComment(f.field(clone, "Comment"), "panoramic_views=6"))
		out = append(out, clone)
	}

	pairs := 0
	for i, rec := range f.records {
		if f.kind(rec) != core.RowGroup {
			continue
		}
		if i+1 >= len(f.records) || f.kind(f.records[i+1]) != core.RowBody {
			continue
		}
		pairs++

		for _, v := range panoramicViews {
			group := slices.Clone(rec)
			f.setField(group, "Comment", viewComment(f.field(group, "Comment"), v))
			out = append(out, group, slices.Clone(f.records[i+1]))
		}
	}

	for i, rec := range out {
		f.setField(rec, "Index", strconv.Itoa(i))
	}
	f.records = out

	s.logger.Info("Expanded sequences into panoramic views", "file", f.name, "pairs", pairs, "rows", len(out))
}

// viewComment renames the sequence for one panoramic face, forces the
// 90 degree face hfov, and tags the pov view keys.
func viewComment(comment string, v view) string {
	comment, _ = rewriteComment(comment, "sequence_name", func(name string) string {
		return "sequence_name=" + name + "_pov" + v.suffix
	})
	comment, _ = rewriteComment(comment, "camera_hfov", func(string) string {
		return "camera_hfov=90"
	})
	return appendComment(comment,
		"pov_camera=true",
		"view_id="+strconv.Itoa(v.id),
		"view="+v.description)
}
