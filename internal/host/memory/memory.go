// internal/host/memory/memory.go
package memory

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/bedlam-render/sequencer/internal/config"
	"github.com/bedlam-render/sequencer/internal/host/document"
	"github.com/bedlam-render/sequencer/pkg/core"
)

// Backend keeps the whole editor state in memory: an asset registry,
// template sequences, level actors and saved timelines. It is the test
// double and the dry-run host.
type Backend struct {
	cfg config.HostConfig

	assets    map[string]core.AssetRef         // keyed by package path
	templates map[string]*document.Timeline    // keyed by asset path
	saved     map[string]*document.Timeline    // keyed by timeline path
	level     []*document.Actor                // actors present in the level
	spawned   map[*document.Actor]struct{}     // live spawned actors
	layers    map[string][]*document.Actor     // layer name -> tagged actors
	mu        sync.RWMutex
}

// New creates a memory backend. Level actors named in the config are
// seeded so a run has a camera and logger to find; set a class to the
// empty string to leave it out.
func New(cfg config.HostConfig) *Backend {
	b := &Backend{
		cfg:       cfg,
		assets:    make(map[string]core.AssetRef),
		templates: make(map[string]*document.Timeline),
		saved:     make(map[string]*document.Timeline),
		spawned:   make(map[*document.Actor]struct{}),
		layers:    make(map[string][]*document.Actor),
	}
	b.seedLevel()
	return b
}

// seedLevel places the standard level actors: the cinematic camera with
// its attach parent, and the ground-truth logger.
func (b *Backend) seedLevel() {
	if b.cfg.CameraActorClass != "" {
		root := &document.Actor{Class: "StaticMeshActor", Label: "BE_CameraRoot"}
		camera := &document.Actor{
			Class:        b.cfg.CameraActorClass,
			Label:        b.cfg.CameraActorClass,
			AttachParent: root,
		}
		b.level = append(b.level, root, camera)
	}
	if b.cfg.LoggerActorClass != "" {
		b.level = append(b.level, &document.Actor{
			Class: b.cfg.LoggerActorClass,
			Label: "GroundTruthLogger",
		})
	}
}

// Init initializes the backend.
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources.
func (b *Backend) Close() error {
	return nil
}

// RegisterAsset adds an asset to the registry.
func (b *Backend) RegisterAsset(ref core.AssetRef) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.assets[ref.PackagePath()] = ref
}

// RegisterTemplate adds a template timeline keyed by its asset path.
func (b *Backend) RegisterTemplate(t *document.Timeline) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.templates[t.Path] = t
}

// AddLevelActor places an extra actor in the level.
func (b *Backend) AddLevelActor(a *document.Actor) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.level = append(b.level, a)
}

// AssetExists reports whether the registry holds the referenced asset.
// With assumeAssets set every reference resolves.
func (b *Backend) AssetExists(ref core.AssetRef) bool {
	if b.cfg.AssumeAssets {
		return true
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if _, ok := b.assets[ref.PackagePath()]; ok {
		return true
	}
	_, ok := b.templates[ref.PackagePath()]
	return ok
}

// LoadAsset resolves a reference into a handle.
func (b *Backend) LoadAsset(ref core.AssetRef) (*document.Asset, error) {
	if !b.AssetExists(ref) {
		return nil, fmt.Errorf("load %s: %w", ref.String(), document.ErrAssetNotFound)
	}
	return &document.Asset{Ref: ref}, nil
}

// DeleteAsset removes the asset at the given package path, along with
// any saved timeline stored there. Deleting a missing asset is a no-op.
func (b *Backend) DeleteAsset(path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.assets, path)
	delete(b.saved, path)
	return nil
}

// CreateTimeline creates an empty timeline, or duplicates the template
// at the given asset path.
func (b *Backend) CreateTimeline(path, template string) (*document.Timeline, error) {
	if template == "" {
		return document.NewTimeline(path), nil
	}

	b.mu.Lock()
	tpl, ok := b.templates[template]
	if !ok && b.cfg.AssumeAssets && b.cfg.SeedTemplates {
		tpl = seedTemplate(template)
		b.templates[template] = tpl
		ok = true
	}
	b.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("duplicate template %s: %w", template, document.ErrAssetNotFound)
	}
	t := tpl.Clone()
	t.Path = path
	t.Template = template
	return t, nil
}

// SaveTimeline stores the document and registers it as an asset.
func (b *Backend) SaveTimeline(t *document.Timeline) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.saved[t.Path] = t

	slash := strings.LastIndexByte(t.Path, '/')
	b.assets[t.Path] = core.AssetRef{
		Type:    "LevelSequence",
		Dir:     t.Path[:slash],
		Package: t.Path[slash+1:],
	}
	return nil
}

// SavedTimeline returns a saved document by path.
func (b *Backend) SavedTimeline(path string) (*document.Timeline, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	t, ok := b.saved[path]
	return t, ok
}

// SavedCount returns how many timelines have been saved.
func (b *Backend) SavedCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.saved)
}

// SpawnActor creates a live actor handle from the spec.
func (b *Backend) SpawnActor(spec document.ActorSpec) (*document.Actor, error) {
	label := spec.Label
	if label == "" {
		label = spec.Class
	}
	a := &document.Actor{Class: spec.Class, Label: label, Spec: spec}
	b.mu.Lock()
	b.spawned[a] = struct{}{}
	b.mu.Unlock()
	return a, nil
}

// DestroyActor removes a spawned actor. Layer tags survive the actor;
// the host keeps layers until they are deleted explicitly.
func (b *Backend) DestroyActor(a *document.Actor) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.spawned[a]; !ok {
		return fmt.Errorf("destroy %s: %w", a.Label, document.ErrActorNotFound)
	}
	delete(b.spawned, a)
	return nil
}

// LiveActorCount returns how many spawned actors have not been destroyed.
func (b *Backend) LiveActorCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.spawned)
}

// FindLevelActor returns the first level actor of the given class.
func (b *Backend) FindLevelActor(class string) (*document.Actor, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, a := range b.level {
		if a.Class == class {
			return a, true
		}
	}
	return nil, false
}

// TagLayer adds the actor to a named layer, creating the layer first.
func (b *Backend) TagLayer(a *document.Actor, layer string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, existing := range b.layers[layer] {
		if existing == a {
			return
		}
	}
	b.layers[layer] = append(b.layers[layer], a)
	a.Layers = append(a.Layers, layer)
}

// LayerNames returns all layer names, sorted.
func (b *Backend) LayerNames() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, 0, len(b.layers))
	for name := range b.layers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DeleteLayer removes a layer. Unknown layers are a no-op.
func (b *Backend) DeleteLayer(layer string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.layers, layer)
	return nil
}
