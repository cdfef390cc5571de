// Package loader produces catalog modules from paths and names.
//
// A path to an existing .wasm file is compiled by the engine, with a
// sibling .wit file used for signatures when present. Anything else is a
// name looked up among the modules made available with Provide: a fully
// qualified "Name, Version=x.y.z" must name an equal semantic version ("1.0"
// matches "1.0.0"), a bare name picks the highest version. Versions that do
// not parse as semantic versions rank below every version that does.
package loader

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"github.com/wippyai/dynbridge/catalog"
	"github.com/wippyai/dynbridge/engine"
	"github.com/wippyai/dynbridge/errors"
	"github.com/wippyai/dynbridge/resolver"
)

// File describes a module file to load.
type File struct {
	Path    string
	WIT     string
	Name    string
	Version string
}

// Loader loads modules from files and from the provided set.
type Loader struct {
	engine    *engine.Engine
	logger    *zap.Logger
	available []*catalog.Module
}

// New creates a loader. e may be nil when only provided modules are used.
func New(e *engine.Engine, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{engine: e, logger: logger}
}

// Provide makes modules loadable by name.
func (l *Loader) Provide(mods ...*catalog.Module) {
	l.available = append(l.available, mods...)
}

// Available returns the provided modules in the order they were provided.
func (l *Loader) Available() []*catalog.Module {
	return l.available
}

// Load resolves pathOrName: an existing file path first, then a fully
// qualified name, then a bare name.
func (l *Loader) Load(ctx context.Context, pathOrName string) (*catalog.Module, error) {
	if strings.TrimSpace(pathOrName) == "" {
		return nil, errors.InvalidInput(errors.PhaseLoad, "missing module path or name")
	}

	if info, err := os.Stat(pathOrName); err == nil && !info.IsDir() {
		return l.LoadFile(ctx, File{Path: pathOrName})
	}

	if isFullyQualified(pathOrName) {
		q, ok := resolver.Parse("_, " + pathOrName)
		if !ok || q.Version == "" {
			return nil, errors.InvalidInput(errors.PhaseLoad, "malformed module name "+pathOrName)
		}
		for _, m := range l.available {
			if m.Name == q.Module && sameVersion(m.Version, q.Version) {
				return m, nil
			}
		}
		return nil, errors.ModuleNotFound(pathOrName)
	}

	var best *catalog.Module
	for _, m := range l.available {
		if m.Name != pathOrName {
			continue
		}
		if best == nil || newer(m.Version, best.Version) {
			best = m
		}
	}
	if best == nil {
		return nil, errors.ModuleNotFound(pathOrName)
	}
	return best, nil
}

// LoadFile compiles a .wasm file. Name defaults to the file's base name
// without extension; WIT defaults to a sibling .wit file when it exists.
func (l *Loader) LoadFile(ctx context.Context, f File) (*catalog.Module, error) {
	if l.engine == nil {
		return nil, errors.Unsupported(errors.PhaseLoad, "no wasm engine configured")
	}

	wasm, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, errors.Load("read "+f.Path, err)
	}

	base := strings.TrimSuffix(f.Path, filepath.Ext(f.Path))
	if f.Name == "" {
		f.Name = filepath.Base(base)
	}
	witPath := f.WIT
	if witPath == "" {
		if _, err := os.Stat(base + ".wit"); err == nil {
			witPath = base + ".wit"
		}
	}

	var witText string
	if witPath != "" {
		data, err := os.ReadFile(witPath)
		if err != nil {
			return nil, errors.Load("read "+witPath, err)
		}
		witText = string(data)
	}

	mod, err := l.engine.Load(ctx, engine.Source{
		Name:    f.Name,
		Version: f.Version,
		Wasm:    wasm,
		WIT:     witText,
	})
	if err != nil {
		return nil, err
	}

	l.logger.Debug("module file loaded",
		zap.String("path", f.Path),
		zap.String("wit", witPath),
		zap.String("module", mod.FullName()))
	return mod, nil
}

func isFullyQualified(name string) bool {
	return strings.Contains(name, "Version=")
}

// newer reports whether version a ranks above b.
func newer(a, b string) bool {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	switch {
	case errA != nil:
		return false
	case errB != nil:
		return true
	}
	return va.GreaterThan(vb)
}

func sameVersion(a, b string) bool {
	if a == b {
		return true
	}
	va, err := semver.NewVersion(a)
	if err != nil {
		return false
	}
	vb, err := semver.NewVersion(b)
	if err != nil {
		return false
	}
	return va.Equal(vb)
}
