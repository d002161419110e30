// internal/host/document/opsconv.go
package document

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bedlam-render/sequencer/pkg/core"
	"github.com/bedlam-render/sequencer/pkg/ops"
)

// ToOps serializes a timeline into the versioned document format.
// Binding references become names; duplicate binding names are
// disambiguated so the references stay unambiguous.
func ToOps(t *Timeline, generator string) ops.Document {
	doc := ops.Document{
		Version:       ops.Version,
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
		Generator:     generator,
		Path:          t.Path,
		Template:      t.Template,
		FrameRate:     t.DisplayRate,
		PlaybackStart: t.PlaybackStart,
		PlaybackEnd:   t.PlaybackEnd,
	}

	names := exportNames(t.Bindings)
	for _, b := range t.Bindings {
		ob := ops.Binding{
			Name:      names[b],
			Possessed: b.Possessed,
		}
		if b.Parent != nil {
			ob.Parent = names[b.Parent]
		}
		if b.Spawned != nil {
			ob.Spawned = specToOps(b.Spawned)
		}
		for _, tr := range b.Tracks {
			ob.Tracks = append(ob.Tracks, trackToOps(tr, names))
		}
		doc.Bindings = append(doc.Bindings, ob)
	}
	if t.CameraCut != nil {
		cut := trackToOps(t.CameraCut, names)
		doc.CameraCut = &cut
	}
	return doc
}

// exportNames assigns a unique export name per binding. Collisions get
// a #N suffix in document order.
func exportNames(bindings []*Binding) map[*Binding]string {
	names := make(map[*Binding]string, len(bindings))
	used := make(map[string]int, len(bindings))
	for _, b := range bindings {
		name := b.Name
		if name == "" {
			name = "binding"
		}
		used[name]++
		if n := used[name]; n > 1 {
			name = name + "#" + strconv.Itoa(n)
		}
		names[b] = name
	}
	return names
}

func specToOps(s *ActorSpec) *ops.ActorSpec {
	out := &ops.ActorSpec{
		Class:   s.Class,
		Label:   s.Label,
		Movable: s.Movable,
		Hidden:  s.Hidden,
	}
	if s.Asset != nil {
		out.Asset = s.Asset.String()
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]any, len(s.Properties))
		for k, v := range s.Properties {
			out.Properties[k] = v
		}
	}
	if len(s.Layers) > 0 {
		out.Layers = append([]string(nil), s.Layers...)
	}
	return out
}

func trackToOps(tr *Track, names map[*Binding]string) ops.Track {
	ot := ops.Track{Kind: tr.Kind, Property: tr.Property}
	for _, sec := range tr.Sections {
		os := ops.Section{}
		if sec.Range != nil {
			os.Range = &ops.Range{Start: sec.Range.Start, End: sec.Range.End}
		}
		if sec.Asset != nil {
			os.Asset = sec.Asset.String()
		}
		if sec.Attach != nil {
			os.Attach = &ops.Attach{
				Parent:   names[sec.Attach.Parent],
				Socket:   sec.Attach.Socket,
				Location: [3]float64{sec.Attach.Location.X, sec.Attach.Location.Y, sec.Attach.Location.Z},
				Rotation: sec.Attach.Rotation,
				Scale:    sec.Attach.Scale,
			}
		}
		if sec.CameraBinding != nil {
			os.CameraBinding = names[sec.CameraBinding]
		}
		for _, c := range sec.Channels {
			oc := ops.Channel{Name: c.Name, Default: c.Default}
			for _, k := range c.Keys {
				oc.Keys = append(oc.Keys, ops.Key{Frame: k.Frame, Value: k.Value})
			}
			os.Channels = append(os.Channels, oc)
		}
		ot.Sections = append(ot.Sections, os)
	}
	return ot
}

// FromOps rebuilds a timeline from a serialized document. Remote hosts
// return duplicated templates in this form.
func FromOps(d ops.Document) (*Timeline, error) {
	t := &Timeline{
		Path:          d.Path,
		Template:      d.Template,
		DisplayRate:   d.FrameRate,
		PlaybackStart: d.PlaybackStart,
		PlaybackEnd:   d.PlaybackEnd,
	}

	byName := make(map[string]*Binding, len(d.Bindings))
	for i := range d.Bindings {
		ob := &d.Bindings[i]
		b := &Binding{Name: ob.Name, Possessed: ob.Possessed}
		if ob.Spawned != nil {
			spec, err := specFromOps(ob.Spawned)
			if err != nil {
				return nil, fmt.Errorf("binding %q: %w", ob.Name, err)
			}
			b.Spawned = spec
		}
		byName[ob.Name] = b
		t.Bindings = append(t.Bindings, b)
	}

	for i := range d.Bindings {
		ob := &d.Bindings[i]
		b := t.Bindings[i]
		if ob.Parent != "" {
			parent, ok := byName[ob.Parent]
			if !ok {
				return nil, fmt.Errorf("binding %q references unknown parent %q", ob.Name, ob.Parent)
			}
			b.Parent = parent
		}
		for j := range ob.Tracks {
			tr, err := trackFromOps(&ob.Tracks[j], byName)
			if err != nil {
				return nil, fmt.Errorf("binding %q: %w", ob.Name, err)
			}
			b.Tracks = append(b.Tracks, tr)
		}
	}

	if d.CameraCut != nil {
		tr, err := trackFromOps(d.CameraCut, byName)
		if err != nil {
			return nil, fmt.Errorf("camera cut: %w", err)
		}
		t.CameraCut = tr
	}
	return t, nil
}

func specFromOps(s *ops.ActorSpec) (*ActorSpec, error) {
	out := &ActorSpec{
		Class:   s.Class,
		Label:   s.Label,
		Movable: s.Movable,
		Hidden:  s.Hidden,
	}
	if s.Asset != "" {
		ref, err := core.ParseAssetRef(s.Asset)
		if err != nil {
			return nil, err
		}
		out.Asset = &ref
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]any, len(s.Properties))
		for k, v := range s.Properties {
			out.Properties[k] = v
		}
	}
	if len(s.Layers) > 0 {
		out.Layers = append([]string(nil), s.Layers...)
	}
	return out, nil
}

func trackFromOps(ot *ops.Track, byName map[string]*Binding) (*Track, error) {
	tr := &Track{Kind: ot.Kind, Property: ot.Property}
	for i := range ot.Sections {
		os := &ot.Sections[i]
		sec := &Section{}
		if os.Range != nil {
			sec.Range = &Range{Start: os.Range.Start, End: os.Range.End}
		}
		if os.Asset != "" {
			ref, err := core.ParseAssetRef(os.Asset)
			if err != nil {
				return nil, err
			}
			sec.Asset = &ref
		}
		if os.Attach != nil {
			parent, ok := byName[os.Attach.Parent]
			if !ok {
				return nil, fmt.Errorf("attach references unknown binding %q", os.Attach.Parent)
			}
			sec.Attach = &Attach{
				Parent:   parent,
				Socket:   os.Attach.Socket,
				Location: core.Location{X: os.Attach.Location[0], Y: os.Attach.Location[1], Z: os.Attach.Location[2]},
				Rotation: os.Attach.Rotation,
				Scale:    os.Attach.Scale,
			}
		}
		if os.CameraBinding != "" {
			b, ok := byName[os.CameraBinding]
			if !ok {
				return nil, fmt.Errorf("camera cut references unknown binding %q", os.CameraBinding)
			}
			sec.CameraBinding = b
		}
		for _, oc := range os.Channels {
			c := &Channel{Name: oc.Name, Default: oc.Default}
			for _, k := range oc.Keys {
				c.Keys = append(c.Keys, Key{Frame: k.Frame, Value: k.Value})
			}
			sec.Channels = append(sec.Channels, c)
		}
		tr.Sections = append(tr.Sections, sec)
	}
	return tr, nil
}
