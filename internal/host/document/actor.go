// internal/host/document/actor.go
package document

import (
	"errors"

	"github.com/bedlam-render/sequencer/pkg/core"
)

// ErrAssetNotFound is returned by a host when the registry has no asset
// at the referenced path.
var ErrAssetNotFound = errors.New("asset not found")

// ErrActorNotFound is returned when a level actor lookup fails.
var ErrActorNotFound = errors.New("actor not found")

// Asset is a loaded host asset handle.
type Asset struct {
	Ref core.AssetRef
}

// ActorSpec describes an actor to spawn. Properties carries host object
// settings keyed by property name; asset-valued properties use the
// canonical Class'path' notation. Layers are snapshotted into the
// spawnable when the template actor is bound.
type ActorSpec struct {
	Class      string
	Asset      *core.AssetRef
	Label      string
	Movable    bool
	Hidden     bool
	Properties map[string]any
	Layers     []string
}

// SetProperty records a host object setting on the spec.
func (s *ActorSpec) SetProperty(name string, value any) {
	if s.Properties == nil {
		s.Properties = make(map[string]any)
	}
	s.Properties[name] = value
}

// Actor is a live actor handle, either found in the level or spawned as
// a template for a spawnable binding. Layers lists the layer names the
// actor has been tagged with since it was spawned.
type Actor struct {
	Class        string
	Label        string
	Spec         ActorSpec
	Location     core.Location
	AttachParent *Actor
	Layers       []string
}
