// Package ops defines the serialized timeline-document format handed to
// the render host. Version 1 is consumed by the editor-side import stub,
// which replays the document against the live sequencer API.
package ops

// Version of the document format.
const Version = 1

// Track kind strings used in the document.
const (
	TrackTransform         = "transform"
	TrackFloat             = "float"
	TrackInteger           = "integer"
	TrackString            = "string"
	TrackObject            = "object"
	TrackVisibility        = "visibility"
	TrackGeometryCache     = "geometry_cache"
	TrackSkeletalAnimation = "skeletal_animation"
	TrackAttach            = "attach"
	TrackCameraCut         = "camera_cut"
)

// Document is the root JSON structure for one saved timeline.
type Document struct {
	Version       int       `json:"version"`
	GeneratedAt   string    `json:"generatedAt"`
	Generator     string    `json:"generator"`
	Path          string    `json:"path"`
	Template      string    `json:"template,omitempty"`
	FrameRate     int       `json:"frameRate"`
	PlaybackStart int       `json:"playbackStart"`
	PlaybackEnd   int       `json:"playbackEnd"`
	Bindings      []Binding `json:"bindings"`
	CameraCut     *Track    `json:"cameraCut,omitempty"`
}

// Binding is one object track group in the timeline. Exactly one of
// Possessed or Spawned is set; Parent names another binding.
type Binding struct {
	Name      string     `json:"name"`
	Parent    string     `json:"parent,omitempty"`
	Possessed string     `json:"possessed,omitempty"`
	Spawned   *ActorSpec `json:"spawned,omitempty"`
	Tracks    []Track    `json:"tracks"`
}

// ActorSpec describes an actor spawned by the timeline itself.
type ActorSpec struct {
	Class      string         `json:"class"`
	Asset      string         `json:"asset,omitempty"`
	Label      string         `json:"label,omitempty"`
	Movable    bool           `json:"movable,omitempty"`
	Hidden     bool           `json:"hidden,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
	Layers     []string       `json:"layers,omitempty"`
}

// Track holds sections of keyed data for one property or subsystem.
type Track struct {
	Kind     string    `json:"kind"`
	Property string    `json:"property,omitempty"`
	Sections []Section `json:"sections"`
}

// Section is one time slice of a track. A nil Range means unbounded.
type Section struct {
	Range         *Range    `json:"range,omitempty"`
	Asset         string    `json:"asset,omitempty"`
	Attach        *Attach   `json:"attach,omitempty"`
	CameraBinding string    `json:"cameraBinding,omitempty"`
	Channels      []Channel `json:"channels,omitempty"`
}

// Range is an inclusive frame range.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Attach constrains a binding to another binding's socket with a local
// offset transform.
type Attach struct {
	Parent   string     `json:"parent"`
	Socket   string     `json:"socket,omitempty"`
	Location [3]float64 `json:"location"`
	Rotation [3]float64 `json:"rotation"` // yaw, pitch, roll
	Scale    [3]float64 `json:"scale"`
}

// Channel is one keyable scalar lane of a section. Values are float64,
// int, string or bool depending on the track kind.
type Channel struct {
	Name    string `json:"name,omitempty"`
	Default any    `json:"default,omitempty"`
	Keys    []Key  `json:"keys,omitempty"`
}

// Key is one keyframe.
type Key struct {
	Frame int `json:"frame"`
	Value any `json:"value"`
}
