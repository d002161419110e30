// internal/host/host.go
package host

import (
	"github.com/bedlam-render/sequencer/internal/host/document"
	"github.com/bedlam-render/sequencer/pkg/core"
)

// Host is the boundary to the render host's editor state. The
// synthesizer only ever talks to this interface and to the document
// model; backends decide what a "save" means.
type Host interface {
	// Lifecycle
	Init() error
	Close() error

	// Asset registry
	AssetExists(ref core.AssetRef) bool
	LoadAsset(ref core.AssetRef) (*document.Asset, error)
	DeleteAsset(path string) error

	// Timeline assets. template is an asset path to duplicate from;
	// empty means create from scratch.
	CreateTimeline(path, template string) (*document.Timeline, error)
	SaveTimeline(t *document.Timeline) error

	// Actors
	SpawnActor(spec document.ActorSpec) (*document.Actor, error)
	DestroyActor(a *document.Actor) error
	FindLevelActor(class string) (*document.Actor, bool)

	// Layers
	TagLayer(a *document.Actor, layer string)
	LayerNames() []string
	DeleteLayer(layer string) error
}
