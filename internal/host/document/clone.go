// internal/host/document/clone.go
package document

// Clone deep-copies a timeline document, remapping every internal
// binding reference onto the copy. Backends use it to duplicate
// template sequences without sharing structure.
func (t *Timeline) Clone() *Timeline {
	out := &Timeline{
		Path:          t.Path,
		Template:      t.Template,
		DisplayRate:   t.DisplayRate,
		PlaybackStart: t.PlaybackStart,
		PlaybackEnd:   t.PlaybackEnd,
	}

	remap := make(map[*Binding]*Binding, len(t.Bindings))
	for _, b := range t.Bindings {
		nb := &Binding{Name: b.Name, Possessed: b.Possessed}
		if b.Spawned != nil {
			spec := *b.Spawned
			if spec.Properties != nil {
				props := make(map[string]any, len(spec.Properties))
				for k, v := range spec.Properties {
					props[k] = v
				}
				spec.Properties = props
			}
			spec.Layers = append([]string(nil), spec.Layers...)
			nb.Spawned = &spec
		}
		remap[b] = nb
		out.Bindings = append(out.Bindings, nb)
	}

	// Second pass wires parents and tracks once every binding has a copy.
	for _, b := range t.Bindings {
		nb := remap[b]
		if b.Parent != nil {
			nb.Parent = remap[b.Parent]
		}
		for _, tr := range b.Tracks {
			nb.Tracks = append(nb.Tracks, cloneTrack(tr, remap))
		}
	}
	if t.CameraCut != nil {
		out.CameraCut = cloneTrack(t.CameraCut, remap)
	}
	return out
}

func cloneTrack(tr *Track, remap map[*Binding]*Binding) *Track {
	nt := &Track{Kind: tr.Kind, Property: tr.Property}
	for _, sec := range tr.Sections {
		nt.Sections = append(nt.Sections, cloneSection(sec, remap))
	}
	return nt
}

func cloneSection(sec *Section, remap map[*Binding]*Binding) *Section {
	ns := &Section{}
	if sec.Range != nil {
		r := *sec.Range
		ns.Range = &r
	}
	if sec.Asset != nil {
		a := *sec.Asset
		ns.Asset = &a
	}
	if sec.Attach != nil {
		at := *sec.Attach
		at.Parent = remap[sec.Attach.Parent]
		ns.Attach = &at
	}
	if sec.CameraBinding != nil {
		ns.CameraBinding = remap[sec.CameraBinding]
	}
	for _, c := range sec.Channels {
		nc := &Channel{Name: c.Name, Default: c.Default}
		nc.Keys = append(nc.Keys, c.Keys...)
		ns.Channels = append(ns.Channels, nc)
	}
	return ns
}
