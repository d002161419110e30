// internal/host/document/document.go
package document

import (
	"github.com/bedlam-render/sequencer/pkg/core"
	"github.com/bedlam-render/sequencer/pkg/ops"
)

// Timeline is the mutable build-side document for one level sequence.
// Backends persist it on SaveTimeline; the script backend serializes it
// to the ops document format.
type Timeline struct {
	Path     string
	Template string // asset path this timeline was duplicated from

	DisplayRate   int // frames per second
	PlaybackStart int
	PlaybackEnd   int

	Bindings  []*Binding
	CameraCut *Track
}

// Binding is one object lane of the timeline. Exactly one of Possessed
// or Spawned is set. Parent links component bindings to their owner.
type Binding struct {
	Name      string
	Parent    *Binding
	Possessed string // level actor label or component name
	Spawned   *ActorSpec
	Tracks    []*Track
}

// Track holds sections of keyed data for one property or subsystem.
// Kind is one of the ops track kind constants.
type Track struct {
	Kind     string
	Property string
	Sections []*Section
}

// Section is one time slice of a track. A nil Range means unbounded.
type Section struct {
	Range         *Range
	Asset         *core.AssetRef
	Attach        *Attach
	CameraBinding *Binding
	Channels      []*Channel
}

// Range is an inclusive frame range.
type Range struct {
	Start int
	End   int
}

// Attach constrains the owning binding to a socket on another binding.
type Attach struct {
	Parent   *Binding
	Socket   string
	Location core.Location
	Rotation [3]float64 // yaw, pitch, roll
	Scale    [3]float64
}

// Channel is one keyable scalar lane of a section.
type Channel struct {
	Name    string
	Default any
	Keys    []Key
}

// Key is one keyframe.
type Key struct {
	Frame int
	Value any
}

// Transform channel names, in host channel order.
var transformChannelNames = [6]string{
	"location.x", "location.y", "location.z",
	"rotation.roll", "rotation.pitch", "rotation.yaw",
}

// NewTimeline creates an empty timeline document.
func NewTimeline(path string) *Timeline {
	return &Timeline{Path: path}
}

// SetPlaybackRange sets the inclusive playback window.
func (t *Timeline) SetPlaybackRange(start, end int) {
	t.PlaybackStart = start
	t.PlaybackEnd = end
}

// Possess adds a binding for an actor that already exists in the level.
func (t *Timeline) Possess(a *Actor) *Binding {
	b := &Binding{Name: a.Label, Possessed: a.Label}
	if b.Name == "" {
		b.Name = a.Class
		b.Possessed = a.Class
	}
	t.Bindings = append(t.Bindings, b)
	return b
}

// PossessComponent adds a binding for a named component of another
// binding's object.
func (t *Timeline) PossessComponent(parent *Binding, name string) *Binding {
	b := &Binding{Name: name, Parent: parent, Possessed: name}
	t.Bindings = append(t.Bindings, b)
	return b
}

// BindSpawnable adds a binding that spawns its own actor from the given
// template actor's spec. The template actor itself is not retained.
func (t *Timeline) BindSpawnable(a *Actor) *Binding {
	spec := a.Spec
	if spec.Label == "" {
		spec.Label = a.Label
	}
	if len(a.Layers) > 0 {
		spec.Layers = append([]string(nil), a.Layers...)
	}
	b := &Binding{Name: spec.Label, Spawned: &spec}
	if b.Name == "" {
		b.Name = spec.Class
	}
	t.Bindings = append(t.Bindings, b)
	return b
}

// SpawnFromClass adds a spawnable binding with no template actor, for
// hosts that can construct the class directly.
func (t *Timeline) SpawnFromClass(class, name string) *Binding {
	b := &Binding{Name: name, Spawned: &ActorSpec{Class: class, Label: name}}
	t.Bindings = append(t.Bindings, b)
	return b
}

// FindBinding looks a binding up by name. Template-duplicated timelines
// arrive with their bindings already present.
func (t *Timeline) FindBinding(name string) (*Binding, bool) {
	for _, b := range t.Bindings {
		if b.Name == name {
			return b, true
		}
	}
	return nil, false
}

// CameraCutTo points the camera-cut master track at a binding over the
// given range, creating the track and section as needed.
func (t *Timeline) CameraCutTo(b *Binding, start, end int) *Section {
	if t.CameraCut == nil {
		t.CameraCut = &Track{Kind: ops.TrackCameraCut}
	}
	var sec *Section
	if len(t.CameraCut.Sections) > 0 {
		sec = t.CameraCut.Sections[0]
	} else {
		sec = &Section{}
		t.CameraCut.Sections = append(t.CameraCut.Sections, sec)
	}
	sec.CameraBinding = b
	sec.Range = &Range{Start: start, End: end}
	return sec
}

// AddTrack adds a track of the given kind to the binding. property names
// the animated property for float, integer, string and visibility tracks.
func (b *Binding) AddTrack(kind, property string) *Track {
	tr := &Track{Kind: kind, Property: property}
	b.Tracks = append(b.Tracks, tr)
	return tr
}

// FindTrack returns the first track matching kind, and property when
// property is not empty.
func (b *Binding) FindTrack(kind, property string) (*Track, bool) {
	for _, tr := range b.Tracks {
		if tr.Kind != kind {
			continue
		}
		if property != "" && tr.Property != property {
			continue
		}
		return tr, true
	}
	return nil, false
}

// Attach adds an attach track constraining this binding to a socket on
// parent over the given range. Scale defaults to identity.
func (b *Binding) Attach(parent *Binding, socket string, rng *Range) *Section {
	sec := &Section{
		Range:  rng,
		Attach: &Attach{Parent: parent, Socket: socket, Scale: [3]float64{1, 1, 1}},
	}
	tr := &Track{Kind: ops.TrackAttach, Sections: []*Section{sec}}
	b.Tracks = append(b.Tracks, tr)
	return sec
}

// AddSection appends a section covering rng; nil means unbounded.
func (tr *Track) AddSection(rng *Range) *Section {
	sec := &Section{Range: rng}
	tr.Sections = append(tr.Sections, sec)
	return sec
}

// Channel returns the named channel, creating it in place if absent.
func (s *Section) Channel(name string) *Channel {
	for _, c := range s.Channels {
		if c.Name == name {
			return c
		}
	}
	c := &Channel{Name: name}
	s.Channels = append(s.Channels, c)
	return c
}

// SetTransformDefaults fills the six transform channels, creating them
// in host channel order (x, y, z, roll, pitch, yaw).
func (s *Section) SetTransformDefaults(pose core.CameraPose) {
	values := [6]float64{pose.X, pose.Y, pose.Z, pose.Roll, pose.Pitch, pose.Yaw}
	for i, name := range transformChannelNames {
		s.Channel(name).Default = values[i]
	}
}

// SetDefault sets the channel's default value.
func (c *Channel) SetDefault(v any) {
	c.Default = v
}

// AddKey appends a keyframe.
func (c *Channel) AddKey(frame int, v any) {
	c.Keys = append(c.Keys, Key{Frame: frame, Value: v})
}
