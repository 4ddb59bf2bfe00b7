package surface

import (
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/Faultbox/enroth-render/internal/engine/errs"
	"github.com/Faultbox/enroth-render/internal/logger"
)

// PlaceholderName is the name of the texture substituted for failed loads.
const PlaceholderName = "__placeholder"

// RegistryConfig bounds the registry.
type RegistryConfig struct {
	MaxTextures  int   // 0 means unlimited
	MemoryBudget int64 // bytes, 0 means unlimited
}

// Registry owns textures keyed by name. Names are case-insensitive.
// It is not safe for concurrent use.
type Registry struct {
	dec         Decoder
	cfg         RegistryConfig
	textures    map[string]*Texture
	nextID      uint32
	bytes       int64
	closed      bool
	outstanding int
	placeholder *Texture
	warn        *logger.Limiter
}

// NewRegistry creates a registry reading pixel data from dec.
func NewRegistry(dec Decoder, cfg RegistryConfig) *Registry {
	r := &Registry{
		dec:      dec,
		cfg:      cfg,
		textures: make(map[string]*Texture),
		warn:     logger.NewLimiter(time.Second, 8),
	}
	img := checker(16, 4)
	r.placeholder = &Texture{name: PlaceholderName, state: stateLoaded, width: 16, height: 16, reg: r}
	r.placeholder.setLevels(buildMips(img))
	r.placeholder.mipmaps = true
	return r
}

func key(name string) string {
	return strings.ToLower(name)
}

// Create returns the texture registered under name, allocating it on first
// use. The same name always yields the same texture.
func (r *Registry) Create(name string) (*Texture, error) {
	if r.closed {
		return nil, fmt.Errorf("%w: registry closed", errs.ErrResource)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: empty texture name", errs.ErrResource)
	}
	if t, ok := r.textures[key(name)]; ok {
		return t, nil
	}
	if r.cfg.MaxTextures > 0 && len(r.textures) >= r.cfg.MaxTextures {
		return nil, fmt.Errorf("%w: texture table full (%d)", errs.ErrResource, r.cfg.MaxTextures)
	}

	r.nextID++
	t := &Texture{name: name, id: r.nextID, reg: r}
	r.textures[key(name)] = t
	logger.Debug("texture created", zap.String("name", name), zap.Uint32("id", t.id))
	return t, nil
}

// Get returns the texture registered under name.
func (r *Registry) Get(name string) (*Texture, bool) {
	t, ok := r.textures[key(name)]
	return t, ok
}

// Len returns the number of registered textures.
func (r *Registry) Len() int {
	return len(r.textures)
}

// Load decodes and uploads the pixel data for name. It never panics: any
// failure is logged, marks the texture failed and returns false. A failed
// texture is not retried until it is released.
func (r *Registry) Load(name string, mipmaps bool) bool {
	t, err := r.Create(name)
	if err != nil {
		r.warn.Warn("texture create failed", zap.String("name", name), zap.Error(err))
		return false
	}
	switch t.state {
	case stateLoaded:
		if t.mipmaps || !mipmaps {
			return true
		}
	case stateFailed:
		return false
	}
	if t.locked {
		r.warn.Warn("texture load while locked", zap.String("name", name))
		return false
	}

	if err := r.load(t, mipmaps); err != nil {
		t.state = stateFailed
		r.warn.Warn("texture load failed", zap.String("name", name), zap.Error(err))
		return false
	}
	return true
}

// UploadSprite loads name as a sprite: no mip chain, flagged for the
// billboard path.
func (r *Registry) UploadSprite(name string) bool {
	if !r.Load(name, false) {
		return false
	}
	t, _ := r.Get(name)
	t.sprite = true
	return true
}

// Upload replaces the pixel data of name with img.
func (r *Registry) Upload(name string, img *image.NRGBA, mipmaps bool) (*Texture, error) {
	t, err := r.Create(name)
	if err != nil {
		return nil, err
	}
	if t.locked {
		return nil, fmt.Errorf("%w: texture %q is locked", errs.ErrInvalidState, name)
	}
	if err := r.install(t, img, mipmaps); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *Registry) load(t *Texture, mipmaps bool) error {
	img, err := r.decode(t.name)
	if err != nil {
		return err
	}
	return r.install(t, img, mipmaps)
}

func (r *Registry) install(t *Texture, img *image.NRGBA, mipmaps bool) error {
	levels := []*image.NRGBA{img}
	if mipmaps {
		levels = buildMips(img)
	}
	size := levelBytes(levels)
	if r.cfg.MemoryBudget > 0 && r.bytes-t.bytes+size > r.cfg.MemoryBudget {
		return fmt.Errorf("%w: %s exceeds texture budget (%s of %s in use)", errs.ErrResource,
			humanize.IBytes(uint64(size)), humanize.IBytes(uint64(r.bytes)), humanize.IBytes(uint64(r.cfg.MemoryBudget)))
	}

	r.bytes += size - t.bytes
	t.setLevels(levels)
	t.width, t.height = img.Rect.Dx(), img.Rect.Dy()
	t.mipmaps = mipmaps
	t.state = stateLoaded
	return nil
}

func (r *Registry) decode(name string) (img *image.NRGBA, err error) {
	if r.dec == nil {
		return nil, fmt.Errorf("%w: no decoder for %q", errs.ErrResource, name)
	}
	defer func() {
		if p := recover(); p != nil {
			img = nil
			err = fmt.Errorf("%w: %w: decoder panic on %q: %v", errs.ErrResource, errs.ErrDecode, name, p)
		}
	}()

	px, err := r.dec.DecodeTexture(name)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %q: %w", errs.ErrResource, name, err)
	}
	img, err = px.NRGBA()
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", errs.ErrResource, name, err)
	}
	return img, nil
}

// Resolve returns the texture to draw for name: the loaded texture, or the
// placeholder when it is missing or failed. ok is false when the placeholder
// was substituted.
func (r *Registry) Resolve(name string) (t *Texture, ok bool) {
	if tex, found := r.textures[key(name)]; found && tex.state == stateLoaded {
		return tex, true
	}
	return r.placeholder, false
}

// Placeholder returns the neutral checker texture.
func (r *Registry) Placeholder() *Texture {
	return r.placeholder
}

// Release frees the texture registered under name. Its id is not reused.
func (r *Registry) Release(name string) bool {
	t, ok := r.textures[key(name)]
	if !ok || t.locked {
		return false
	}
	r.bytes -= t.bytes
	t.levels = nil
	t.bytes = 0
	t.version++
	t.state = stateCreated
	delete(r.textures, key(name))
	return true
}

// Outstanding returns the number of texture locks not yet released.
func (r *Registry) Outstanding() int {
	return r.outstanding
}

// Close releases every texture. Create fails afterwards.
func (r *Registry) Close() {
	if r.closed {
		return
	}
	st := r.Stats()
	for _, t := range r.textures {
		t.levels = nil
		t.state = stateCreated
	}
	r.textures = make(map[string]*Texture)
	r.bytes = 0
	r.closed = true
	logger.Info("texture registry closed", zap.Stringer("stats", st))
}

// Stats summarizes registry occupancy.
type Stats struct {
	Textures int
	Loaded   int
	Failed   int
	Bytes    int64
	Budget   int64
}

// String formats the stats with human-readable sizes.
func (s Stats) String() string {
	budget := "unlimited"
	if s.Budget > 0 {
		budget = humanize.IBytes(uint64(s.Budget))
	}
	return fmt.Sprintf("%d textures (%d loaded, %d failed), %s of %s",
		s.Textures, s.Loaded, s.Failed, humanize.IBytes(uint64(s.Bytes)), budget)
}

// Stats returns the current registry occupancy.
func (r *Registry) Stats() Stats {
	s := Stats{Textures: len(r.textures), Bytes: r.bytes, Budget: r.cfg.MemoryBudget}
	for _, t := range r.textures {
		switch t.state {
		case stateLoaded:
			s.Loaded++
		case stateFailed:
			s.Failed++
		}
	}
	return s
}
