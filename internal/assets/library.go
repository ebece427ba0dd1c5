package assets

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/orbitfx/internal/engine/frame"
	"github.com/Faultbox/orbitfx/internal/engine/material"
	"github.com/Faultbox/orbitfx/internal/engine/resource"
	"github.com/Faultbox/orbitfx/internal/engine/texture"
	"github.com/Faultbox/orbitfx/internal/logger"
	"github.com/Faultbox/orbitfx/pkg/formats"
)

// SetLayout names the files of a texture set:
// Dir/Prefix_Stem_Channel.Ext, e.g. Textures/satellite_Couro_Normal.jpg.
type SetLayout struct {
	Dir    string
	Prefix string
	Ext    string
}

// Path returns the file of one channel of the category with the given stem.
func (l SetLayout) Path(stem string, ch material.Channel) string {
	file := stem + "_" + ch.String() + "." + strings.TrimPrefix(l.Ext, ".")
	if l.Prefix != "" {
		file = l.Prefix + "_" + file
	}
	return path.Join(l.Dir, file)
}

// Library decodes assets in background goroutines and hands out resource
// handles. Each asset is loaded once and its handle is shared by every
// caller.
//
// Loads run under the library's own context. A caller's context only
// expresses interest: when every caller of a pending load has gone, the
// load is canceled and forgotten, so a later request fetches again.
type Library struct {
	mgr      *Manager
	dispatch frame.Dispatcher
	opts     texture.Options

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	textures map[string]*entry[*material.Texture]
	models   map[string]*entry[*material.Model]
	sets     map[string]*entry[*material.TextureSet]

	wg sync.WaitGroup
}

// entry is one cached load and the contexts still waiting on it.
type entry[T any] struct {
	h      *resource.Handle[T]
	cancel context.CancelFunc
	wants  []context.Context
}

// wanted reports whether a pending load still has a live caller.
func (e *entry[T]) wanted() bool {
	live := e.wants[:0]
	for _, ctx := range e.wants {
		if ctx.Err() == nil {
			live = append(live, ctx)
		}
	}
	e.wants = live
	return len(live) > 0
}

// NewLibrary returns a library reading through mgr. Handle notifications
// go through dispatch.
func NewLibrary(mgr *Manager, dispatch frame.Dispatcher, opts texture.Options) *Library {
	ctx, cancel := context.WithCancel(context.Background())
	return &Library{
		mgr:      mgr,
		dispatch: dispatch,
		opts:     opts,
		ctx:      ctx,
		cancel:   cancel,
		textures: make(map[string]*entry[*material.Texture]),
		models:   make(map[string]*entry[*material.Model]),
		sets:     make(map[string]*entry[*material.TextureSet]),
	}
}

// Close cancels every load still in flight. Wait returns once they have
// settled.
func (l *Library) Close() {
	l.cancel()
}

// Manager returns the underlying byte manager.
func (l *Library) Manager() *Manager {
	return l.mgr
}

// Wait blocks until every started load has settled its handle.
func (l *Library) Wait() {
	l.wg.Wait()
}

// Texture returns the handle of a decoded texture.
func (l *Library) Texture(ctx context.Context, name string) *resource.Handle[*material.Texture] {
	return load(l, l.textures, ctx, name, func(ctx context.Context) (*material.Texture, error) {
		return l.decodeTexture(ctx, name)
	})
}

// Model returns the handle of a model built from an OBJ file and its
// optional MTL library.
func (l *Library) Model(ctx context.Context, objName, mtlName string) *resource.Handle[*material.Model] {
	key := objName + "|" + mtlName
	return load(l, l.models, ctx, key, func(ctx context.Context) (*material.Model, error) {
		return l.decodeModel(ctx, objName, mtlName)
	})
}

// TextureSet returns the handle of the four-channel set of one category.
// Channels are decoded in parallel. A channel whose file does not exist is
// left nil; the set fails only when every channel is missing or any file
// fails to decode.
func (l *Library) TextureSet(ctx context.Context, layout SetLayout, cat material.Category) *resource.Handle[*material.TextureSet] {
	key := layout.Path(cat.Stem, material.BaseColor) + "|" + cat.Label
	return load(l, l.sets, ctx, key, func(ctx context.Context) (*material.TextureSet, error) {
		return l.decodeSet(ctx, layout, cat)
	})
}

// TextureSets returns one set handle per catalog category, keyed by label.
func (l *Library) TextureSets(ctx context.Context, layout SetLayout, catalog material.Catalog) map[string]*resource.Handle[*material.TextureSet] {
	out := make(map[string]*resource.Handle[*material.TextureSet], len(catalog))
	for _, cat := range catalog {
		out[cat.Label] = l.TextureSet(ctx, layout, cat)
	}
	return out
}

func load[T any](l *Library, cache map[string]*entry[T], ctx context.Context, key string, fn func(context.Context) (T, error)) *resource.Handle[T] {
	if err := ctx.Err(); err != nil {
		h := resource.New[T](key, l.dispatch)
		h.Fail(fmt.Errorf("%w: %v", resource.ErrCanceled, err))
		return h
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := cache[key]; ok {
		if e.h.State().Settled() {
			return e.h
		}
		if e.wanted() {
			watch(l, cache, key, e, ctx)
			return e.h
		}
		// Every earlier caller is gone but the load has not noticed yet.
		e.cancel()
		delete(cache, key)
	}

	loadCtx, cancel := context.WithCancel(l.ctx)
	e := &entry[T]{h: resource.New[T](key, l.dispatch), cancel: cancel}
	cache[key] = e
	watch(l, cache, key, e, ctx)

	log := logger.Named("assets")
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer cancel()
		v, err := fn(loadCtx)
		if err != nil {
			if loadCtx.Err() != nil {
				l.mu.Lock()
				forget(cache, key, e)
				l.mu.Unlock()
				err = fmt.Errorf("%w: %v", resource.ErrCanceled, err)
				log.Debug("load canceled", zap.String("asset", key))
			} else {
				log.Warn("load failed", zap.String("asset", key), zap.Error(err))
			}
			e.h.Fail(err)
			return
		}
		log.Debug("loaded", zap.String("asset", key))
		e.h.Resolve(v)
	}()
	return e.h
}

// watch records ctx as a caller of e. Once the last caller's context is
// done the load is abandoned. Called with l.mu held.
func watch[T any](l *Library, cache map[string]*entry[T], key string, e *entry[T], ctx context.Context) {
	e.wants = append(e.wants, ctx)
	context.AfterFunc(ctx, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if e.h.State().Settled() || e.wanted() {
			return
		}
		e.cancel()
		forget(cache, key, e)
	})
}

// forget drops e unless a newer load already replaced it.
func forget[T any](cache map[string]*entry[T], key string, e *entry[T]) {
	if cache[key] == e {
		delete(cache, key)
	}
}

func (l *Library) decodeTexture(ctx context.Context, name string) (*material.Texture, error) {
	data, err := l.mgr.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	img, _, err := texture.Decode(data, l.opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &material.Texture{Name: name, Image: img}, nil
}

func (l *Library) decodeModel(ctx context.Context, objName, mtlName string) (*material.Model, error) {
	data, err := l.mgr.Load(ctx, objName)
	if err != nil {
		return nil, err
	}
	obj, err := formats.ParseOBJ(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", objName, err)
	}

	var lib *formats.MTL
	if mtlName != "" {
		data, err := l.mgr.Load(ctx, mtlName)
		if err != nil {
			return nil, err
		}
		if lib, err = formats.ParseMTL(data); err != nil {
			return nil, fmt.Errorf("%s: %w", mtlName, err)
		}
	}

	name := strings.TrimSuffix(path.Base(objName), path.Ext(objName))
	return BuildModel(name, obj, lib)
}

func (l *Library) decodeSet(ctx context.Context, layout SetLayout, cat material.Category) (*material.TextureSet, error) {
	set := &material.TextureSet{Category: cat.Label}
	g, gctx := errgroup.WithContext(ctx)

	for _, ch := range material.Channels() {
		g.Go(func() error {
			name := layout.Path(cat.Stem, ch)
			tex, err := l.decodeTexture(gctx, name)
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			set.Maps[ch] = tex
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("texture set %s: %w", cat.Label, err)
	}

	for _, tex := range set.Maps {
		if tex != nil {
			return set, nil
		}
	}
	return nil, fmt.Errorf("texture set %s: %w: no channel files under %s", cat.Label, ErrNotFound, layout.Dir)
}
