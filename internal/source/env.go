package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rayference/tengen/internal/dataset"
	"github.com/rayference/tengen/internal/fetch"
	"github.com/rayference/tengen/internal/units"
)

// Env carries what transforms need from the outside world.
type Env struct {
	Fetcher    fetch.Fetcher
	Units      *units.Registry
	ScratchDir string
	Now        func() time.Time
	Logger     logrus.FieldLogger
}

// Transformer turns the source locations of a resource into a data set.
type Transformer interface {
	Transform(ctx context.Context, env *Env, src []string) (*dataset.Dataset, error)
}

// TransformFunc adapts a function to Transformer.
type TransformFunc func(ctx context.Context, env *Env, src []string) (*dataset.Dataset, error)

// Transform calls f.
func (f TransformFunc) Transform(ctx context.Context, env *Env, src []string) (*dataset.Dataset, error) {
	return f(ctx, env, src)
}

// ParseError reports a payload that does not have the expected layout.
type ParseError struct {
	Source string
	Line   int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s line %d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *Env) registry() *units.Registry {
	if e.Units == nil {
		return units.Default()
	}
	return e.Units
}

func (e *Env) logger() logrus.FieldLogger {
	if e.Logger == nil {
		return logrus.StandardLogger()
	}
	return e.Logger
}

func (e *Env) quantity(values []float64, expr string) (units.Quantity, error) {
	return e.registry().Quantity(values, expr)
}

func (e *Env) assemble(ssi, w units.Quantity, dataURL string, attrs dataset.Attributes, times []time.Time) (*dataset.Dataset, error) {
	opts := []dataset.Option{
		dataset.WithRegistry(e.registry()),
		dataset.WithAttrs(attrs),
	}
	if e.Now != nil {
		opts = append(opts, dataset.WithClock(e.Now))
	}
	if len(times) > 0 {
		opts = append(opts, dataset.WithTime(times))
	}
	return dataset.Assemble(ssi, w, dataURL, opts...)
}

// scratchPath returns a fresh path in the scratch directory for base.
func (e *Env) scratchPath(base string) (string, error) {
	dir := e.ScratchDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create scratch directory: %w", err)
	}
	return filepath.Join(dir, uuid.NewString()+"-"+filepath.Base(base)), nil
}

// removeScratch deletes a temporary file, logging rather than failing.
func (e *Env) removeScratch(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		e.logger().WithFields(logrus.Fields{
			"action": "temp_cleanup",
			"path":   path,
		}).Warn(err.Error())
	}
}

// download fetches rawURL into a scratch file. The caller removes it.
func (e *Env) download(ctx context.Context, rawURL string) (string, error) {
	dst, err := e.scratchPath(rawURL)
	if err != nil {
		return "", err
	}
	if _, err := e.Fetcher.Download(ctx, rawURL, dst); err != nil {
		e.removeScratch(dst)
		return "", err
	}
	return dst, nil
}

func single(src []string) (string, error) {
	if len(src) != 1 {
		return "", fmt.Errorf("expected exactly one source url, got %d", len(src))
	}
	return src[0], nil
}
