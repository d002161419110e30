// internal/host/remote/remote.go
package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bedlam-render/sequencer/internal/cache"
	"github.com/bedlam-render/sequencer/internal/config"
	"github.com/bedlam-render/sequencer/internal/host/document"
	"github.com/bedlam-render/sequencer/pkg/core"
	"github.com/bedlam-render/sequencer/pkg/ops"
)

const generatorName = "bedlam-sequencer"

// Backend drives a render host over its remote-control HTTP service.
// Asset lookups, template duplication and saves go over the wire;
// timeline documents are assembled locally and shipped whole, so the
// host sees one request per sequence instead of one per edit.
type Backend struct {
	cfg        config.HostConfig
	baseURL    string
	apiKey     string
	httpClient *http.Client
	assets     *cache.AssetCache

	mu        sync.Mutex
	templates map[string]*document.Timeline
	spawned   map[*document.Actor]struct{}
	layers    map[string][]*document.Actor
}

// New creates a remote backend for the configured server URL.
func New(cfg config.HostConfig) *Backend {
	return &Backend{
		cfg:     cfg,
		baseURL: strings.TrimRight(cfg.ServerURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		assets:    cache.NewAssetCache(),
		templates: make(map[string]*document.Timeline),
		spawned:   make(map[*document.Actor]struct{}),
		layers:    make(map[string][]*document.Actor),
	}
}

// Init verifies the host is reachable.
func (b *Backend) Init() error {
	return b.Healthcheck()
}

// Close releases nothing; the HTTP client holds no persistent state.
func (b *Backend) Close() error {
	return nil
}

// Healthcheck verifies the remote host is up and accepting requests.
func (b *Backend) Healthcheck() error {
	req, err := b.newRequest(http.MethodGet, "/healthcheck", nil)
	if err != nil {
		return err
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("healthcheck request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthcheck returned status %d", resp.StatusCode)
	}
	return nil
}

// AssetExists probes the host registry for the referenced asset.
// Results are cached per package path for the lifetime of the backend;
// DeleteAsset and SaveTimeline invalidate their own entries.
func (b *Backend) AssetExists(ref core.AssetRef) bool {
	if b.cfg.AssumeAssets {
		return true
	}
	path := ref.PackagePath()
	if exists, ok := b.assets.Get(path); ok {
		return exists
	}

	req, err := b.newRequest(http.MethodGet, "/api/v1/assets/exists?path="+url.QueryEscape(path), nil)
	if err != nil {
		return false
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}
	var body struct {
		Exists bool `json:"exists"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false
	}
	b.assets.Set(path, body.Exists)
	return body.Exists
}

// LoadAsset resolves a reference into a handle.
func (b *Backend) LoadAsset(ref core.AssetRef) (*document.Asset, error) {
	if !b.AssetExists(ref) {
		return nil, fmt.Errorf("load %s: %w", ref.String(), document.ErrAssetNotFound)
	}
	return &document.Asset{Ref: ref}, nil
}

// DeleteAsset removes the asset at the given package path on the host.
// Deleting a missing asset is a no-op.
func (b *Backend) DeleteAsset(path string) error {
	req, err := b.newRequest(http.MethodDelete, "/api/v1/assets?path="+url.QueryEscape(path), nil)
	if err != nil {
		return err
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete asset request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete asset %s returned status %d", path, resp.StatusCode)
	}
	b.assets.Delete(path)
	return nil
}

// CreateTimeline creates an empty timeline, or duplicates the template
// at the given asset path. Fetched templates are kept and cloned on
// reuse so each preset costs one round trip per run.
func (b *Backend) CreateTimeline(path, template string) (*document.Timeline, error) {
	if template == "" {
		return document.NewTimeline(path), nil
	}

	b.mu.Lock()
	tpl, ok := b.templates[template]
	b.mu.Unlock()

	if !ok {
		fetched, err := b.fetchTemplate(template)
		if err != nil {
			return nil, err
		}
		b.mu.Lock()
		b.templates[template] = fetched
		b.mu.Unlock()
		tpl = fetched
	}

	t := tpl.Clone()
	t.Path = path
	t.Template = template
	return t, nil
}

func (b *Backend) fetchTemplate(template string) (*document.Timeline, error) {
	req, err := b.newRequest(http.MethodGet, "/api/v1/timelines?path="+url.QueryEscape(template), nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch template request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("duplicate template %s: %w", template, document.ErrAssetNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch template %s returned status %d", template, resp.StatusCode)
	}

	var od ops.Document
	if err := json.NewDecoder(resp.Body).Decode(&od); err != nil {
		return nil, fmt.Errorf("failed to decode template body: %w", err)
	}
	doc, err := document.FromOps(od)
	if err != nil {
		return nil, fmt.Errorf("decode template %s: %w", template, err)
	}
	return doc, nil
}

// SaveTimeline ships the finished document to the host, which builds
// and saves the sequence asset in one pass.
func (b *Backend) SaveTimeline(t *document.Timeline) error {
	data, err := json.Marshal(document.ToOps(t, generatorName))
	if err != nil {
		return fmt.Errorf("failed to encode timeline: %w", err)
	}

	req, err := b.newRequest(http.MethodPost, "/api/v1/timelines", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("save timeline request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("save timeline %s returned status %d", t.Path, resp.StatusCode)
	}
	b.assets.Set(t.Path, true)
	return nil
}

// SpawnActor creates a local template-actor handle. The host only sees
// the spec once it is snapshotted into a spawnable and saved.
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

// DestroyActor drops a spawned actor handle.
func (b *Backend) DestroyActor(a *document.Actor) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.spawned[a]; !ok {
		return fmt.Errorf("destroy %s: %w", a.Label, document.ErrActorNotFound)
	}
	delete(b.spawned, a)
	return nil
}

// FindLevelActor asks the host for the first level actor of the class.
func (b *Backend) FindLevelActor(class string) (*document.Actor, bool) {
	req, err := b.newRequest(http.MethodGet, "/api/v1/level/actors?class="+url.QueryEscape(class), nil)
	if err != nil {
		return nil, false
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false
	}
	var body struct {
		Actors []struct {
			Class    string     `json:"class"`
			Label    string     `json:"label"`
			Location [3]float64 `json:"location"`
		} `json:"actors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, false
	}
	if len(body.Actors) == 0 {
		return nil, false
	}
	found := body.Actors[0]
	return &document.Actor{
		Class: found.Class,
		Label: found.Label,
		Location: core.Location{
			X: found.Location[0],
			Y: found.Location[1],
			Z: found.Location[2],
		},
	}, true
}

// TagLayer marks the actor as a member of the layer.
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
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, 0, len(b.layers))
	for name := range b.layers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DeleteLayer removes the layer locally and on the host. The host keeps
// build layers from earlier runs, so an unknown layer is not an error.
func (b *Backend) DeleteLayer(layer string) error {
	req, err := b.newRequest(http.MethodDelete, "/api/v1/layers?name="+url.QueryEscape(layer), nil)
	if err != nil {
		return err
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete layer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete layer %s returned status %d", layer, resp.StatusCode)
	}
	b.mu.Lock()
	delete(b.layers, layer)
	b.mu.Unlock()
	return nil
}

func (b *Backend) newRequest(method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequest(method, b.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if b.apiKey != "" {
		req.Header.Set("X-API-Key", b.apiKey)
	}
	return req, nil
}
