package preset

import (
	"sort"
	"sync"

	apperrors "github.com/vortex-fintech/go-mask/errors"
	"github.com/vortex-fintech/go-mask/mask"
	"github.com/vortex-fintech/go-mask/validator"
)

// Registry is a concurrency-safe name -> Preset catalog. Names are matched
// case-insensitively.
type Registry struct {
	mu      sync.RWMutex
	presets map[string]Preset
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{presets: make(map[string]Preset)}
}

// Default returns a registry holding Builtins.
func Default() *Registry {
	r := NewRegistry()
	if err := r.Register(Builtins()...); err != nil {
		panic(err)
	}
	return r
}

// Register validates and adds presets. Either all of them are added or none:
// an invalid preset or a name that is already taken fails the whole call.
func (r *Registry) Register(presets ...Preset) error {
	prepared := make([]Preset, 0, len(presets))
	seen := make(map[string]struct{}, len(presets))
	for _, p := range presets {
		p = p.clone()
		p.Name = normalizeName(p.Name)
		if err := validator.Struct(p); err != nil {
			return apperrors.ToErrorResponse(err).WithDetail("preset", p.Name)
		}
		if _, dup := seen[p.Name]; dup {
			return apperrors.DuplicatePreset(p.Name)
		}
		seen[p.Name] = struct{}{}
		prepared = append(prepared, p)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range prepared {
		if _, exists := r.presets[p.Name]; exists {
			return apperrors.DuplicatePreset(p.Name)
		}
	}
	for _, p := range prepared {
		r.presets[p.Name] = p
	}
	return nil
}

// Get returns the preset named name or an unknown_preset error.
func (r *Registry) Get(name string) (Preset, error) {
	key := normalizeName(name)
	r.mu.RLock()
	p, ok := r.presets[key]
	r.mu.RUnlock()
	if !ok {
		return Preset{}, apperrors.UnknownPreset(key)
	}
	return p.clone(), nil
}

// Pattern is Get followed by Preset.Pattern.
func (r *Registry) Pattern(name string) (mask.Pattern, error) {
	p, err := r.Get(name)
	if err != nil {
		return mask.Pattern{}, err
	}
	return p.Pattern(), nil
}

// Names returns the registered names in ascending order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.presets))
	for name := range r.presets {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// All returns copies of every preset ordered by name.
func (r *Registry) All() []Preset {
	r.mu.RLock()
	out := make([]Preset, 0, len(r.presets))
	for _, p := range r.presets {
		out = append(out, p.clone())
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.presets)
}
