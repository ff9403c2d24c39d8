// Package resource retrieves a registered data set from the web, falling
// back to the local cache when the network is unreachable.
package resource

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rayference/tengen/internal/cache"
	"github.com/rayference/tengen/internal/dataset"
	"github.com/rayference/tengen/internal/fetch"
	"github.com/rayference/tengen/internal/logging"
	"github.com/rayference/tengen/internal/metrics"
	"github.com/rayference/tengen/internal/registry"
	"github.com/rayference/tengen/internal/source"
)

// ErrNotCached reports that the formatted data set is absent from the cache.
var ErrNotCached = fmt.Errorf("data set not in cache: %w", cache.ErrNotFound)

// FetchError reports a network failure with no cached copy to fall back on.
// It unwraps to both underlying errors.
type FetchError struct {
	Name     string
	WebErr   error
	CacheErr error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("could not fetch %s from the web (%v) nor from the cache (%v)", e.Name, e.WebErr, e.CacheErr)
}

func (e *FetchError) Unwrap() []error {
	return []error{e.WebErr, e.CacheErr}
}

// Resource is one data set bound to its cache entry.
type Resource struct {
	desc    registry.Descriptor
	store   cache.Store
	env     *source.Env
	logger  logrus.FieldLogger
	metrics *metrics.Recorder
}

// Option customises a Resource.
type Option func(*Resource)

// WithLogger sets the logger; the environment's logger is used otherwise.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(r *Resource) { r.logger = logger }
}

// WithMetrics attaches a recorder.
func WithMetrics(m *metrics.Recorder) Option {
	return func(r *Resource) { r.metrics = m }
}

// New binds desc to store. env is handed to the transform unchanged.
func New(desc registry.Descriptor, store cache.Store, env *source.Env, opts ...Option) *Resource {
	r := &Resource{desc: desc, store: store, env: env}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		if env != nil && env.Logger != nil {
			r.logger = env.Logger
		} else {
			r.logger = logging.Discard()
		}
	}
	return r
}

// Name returns the data set identifier.
func (r *Resource) Name() string {
	return r.desc.Name()
}

// Descriptor returns the registry entry.
func (r *Resource) Descriptor() registry.Descriptor {
	return r.desc
}

// CachePath returns where the formatted data set lives, without touching disk.
func (r *Resource) CachePath() (string, error) {
	return r.store.Path(r.locator())
}

// InCache reports whether the formatted data set exists.
func (r *Resource) InCache(ctx context.Context) (bool, error) {
	_, err := r.store.Stat(ctx, r.locator())
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, cache.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// FetchFromWeb downloads and transforms the data set. The result is written
// to the cache when no cached copy exists; a failed write is only logged.
func (r *Resource) FetchFromWeb(ctx context.Context) (*dataset.Dataset, error) {
	r.log().WithField("action", "fetch_web").Debug("fetching data set")

	ds, err := r.transform(ctx)
	if err != nil {
		return nil, err
	}

	cached, err := r.InCache(ctx)
	if err != nil {
		r.log().WithField("action", "cache_write").WithError(err).Warn("cache check failed")
		return ds, nil
	}
	if !cached {
		if err := r.write(ctx, ds); err != nil {
			r.log().WithField("action", "cache_write").WithError(err).Warn("cache write failed")
		}
	}
	return ds, nil
}

// FetchFromCache decodes the cached data set, or returns ErrNotCached.
func (r *Resource) FetchFromCache(ctx context.Context) (*dataset.Dataset, error) {
	entry, err := r.store.Stat(ctx, r.locator())
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", r.Name(), ErrNotCached)
		}
		return nil, err
	}
	ds, err := dataset.Decode(entry.FilePath)
	if err != nil {
		return nil, fmt.Errorf("read cached %s: %w", r.Name(), err)
	}
	return ds, nil
}

// PushToCache fetches and stores the data set when it is absent, or always
// when force is set.
func (r *Resource) PushToCache(ctx context.Context, force bool) error {
	if !force {
		cached, err := r.InCache(ctx)
		if err != nil {
			return err
		}
		if cached {
			r.log().WithField("action", "cache_write").Debug("already cached")
			return nil
		}
	}
	ds, err := r.transform(ctx)
	if err != nil {
		return err
	}
	return r.write(ctx, ds)
}

// Get always tries the web first. Only a network failure falls back to the
// cache; every other error is returned as is.
func (r *Resource) Get(ctx context.Context) (*dataset.Dataset, error) {
	ds, webErr := r.FetchFromWeb(ctx)
	if webErr == nil {
		r.metrics.Fetch(r.Name(), metrics.OutcomeWeb)
		return ds, nil
	}
	if !fetch.IsNetworkError(webErr) {
		r.metrics.Fetch(r.Name(), metrics.OutcomeFailed)
		return nil, webErr
	}

	ds, cacheErr := r.FetchFromCache(ctx)
	if cacheErr != nil {
		r.metrics.Fetch(r.Name(), metrics.OutcomeFailed)
		return nil, &FetchError{Name: r.Name(), WebErr: webErr, CacheErr: cacheErr}
	}

	r.log().WithField("action", "cache_fallback").WithError(webErr).Warn("network unavailable, using cached data set")
	r.metrics.Fetch(r.Name(), metrics.OutcomeCacheFallback)
	return ds, nil
}

func (r *Resource) transform(ctx context.Context) (*dataset.Dataset, error) {
	ds, err := r.desc.Transformer.Transform(ctx, r.env, r.desc.Sources)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.Name(), err)
	}
	return ds, nil
}

func (r *Resource) write(ctx context.Context, ds *dataset.Dataset) error {
	entry, err := r.store.Write(ctx, r.locator(), func(tmpPath string) error {
		return dataset.Encode(ds, tmpPath)
	})
	r.metrics.CacheWrite(r.Name(), err)
	if err != nil {
		return fmt.Errorf("cache %s: %w", r.Name(), err)
	}
	r.log().WithFields(logrus.Fields{
		"action": "cache_write",
		"bytes":  entry.SizeBytes,
	}).Info("data set cached")
	return nil
}

func (r *Resource) locator() cache.Locator {
	return cache.DatasetLocator(r.Name())
}

func (r *Resource) log() logrus.FieldLogger {
	path, _ := r.CachePath()
	return r.logger.WithFields(logging.ResourceFields(r.Name(), r.desc.Sources, path))
}
