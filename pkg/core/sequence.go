// pkg/core/sequence.go
package core

// Sequence is one complete camera shot: a Group row plus the Body rows
// that followed it, ready for timeline synthesis.
type Sequence struct {
	Name       string
	FrameCount int
	Camera     CameraPose // pose from the Group row
	Config     GroupConfig
	Bodies     []SequenceBody
}

// HasHair reports whether any body in the sequence wears a hair groom.
func (s *Sequence) HasHair() bool {
	for i := range s.Bodies {
		if s.Bodies[i].HairMeshRef != nil {
			return true
		}
	}
	return false
}
