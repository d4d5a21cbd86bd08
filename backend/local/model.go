package local

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/kbukum/speechkit/errors"
	"github.com/kbukum/speechkit/httpclient"
	"github.com/kbukum/speechkit/logger"
	"github.com/kbukum/speechkit/resilience"
)

// Source prefixes for bundled models.
const (
	ResourcePrefix  = "resource://"
	ClasspathPrefix = "classpath://"
)

// ModelResolver turns a model source into a local file path. Concurrent
// calls for the same target do the work once; later calls hit the cache.
type ModelResolver struct {
	resources fs.FS
	client    *httpclient.Client
	retry     resilience.RetryConfig
	log       *logger.Logger

	group singleflight.Group

	mu        sync.Mutex
	resolved  map[string]string
	extracted []string
}

// ResolverOption configures a ModelResolver.
type ResolverOption func(*ModelResolver)

// WithResources sets the file system bundled models are read from.
func WithResources(fsys fs.FS) ResolverOption {
	return func(r *ModelResolver) { r.resources = fsys }
}

// WithHTTPClient sets the client used for downloads.
func WithHTTPClient(c *httpclient.Client) ResolverOption {
	return func(r *ModelResolver) { r.client = c }
}

// WithRetry sets the download retry policy.
func WithRetry(cfg resilience.RetryConfig) ResolverOption {
	return func(r *ModelResolver) { r.retry = cfg }
}

// WithResolverLogger sets the resolver logger.
func WithResolverLogger(log *logger.Logger) ResolverOption {
	return func(r *ModelResolver) { r.log = log }
}

// NewModelResolver creates a resolver. Downloads retry transport failures
// and 5xx responses by default.
func NewModelResolver(opts ...ResolverOption) (*ModelResolver, error) {
	r := &ModelResolver{
		retry:    *httpclient.DefaultRetryConfig(),
		log:      logger.Nop(),
		resolved: make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.client == nil {
		// Downloads are bounded by ctx only; Download ignores the client timeout.
		c, err := httpclient.New(httpclient.Config{})
		if err != nil {
			return nil, err
		}
		r.client = c
	}
	return r, nil
}

// Resolve returns a local path for source. Remote models are downloaded
// into installDir under the last URL path segment and reused when present.
// A download started by a caller that gives up keeps running and is cached
// for the next call. Any failure is a MODEL_SETUP_FAILURE.
func (r *ModelResolver) Resolve(ctx context.Context, source, installDir string) (string, error) {
	key := source
	if isURL(source) {
		name, err := downloadName(source)
		if err != nil {
			return "", errors.ModelSetupFailure(source, err)
		}
		key = filepath.Join(installDir, name)
	}

	r.mu.Lock()
	p, ok := r.resolved[key]
	r.mu.Unlock()
	if ok {
		return p, nil
	}

	// The shared resolve outlives any single caller. Each caller stops
	// waiting when its own ctx ends.
	shared := context.WithoutCancel(ctx)
	ch := r.group.DoChan(key, func() (any, error) {
		p, err := r.resolve(shared, source, key)
		if err != nil {
			return "", err
		}
		r.mu.Lock()
		r.resolved[key] = p
		r.mu.Unlock()
		return p, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return "", errors.ModelSetupFailure(source, res.Err)
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", errors.ModelSetupFailure(source, ctx.Err())
	}
}

func (r *ModelResolver) resolve(ctx context.Context, source, target string) (string, error) {
	switch {
	case isURL(source):
		return r.download(ctx, source, target)
	case strings.HasPrefix(source, ResourcePrefix):
		return r.extract(strings.TrimPrefix(source, ResourcePrefix))
	case strings.HasPrefix(source, ClasspathPrefix):
		return r.extract(strings.TrimPrefix(source, ClasspathPrefix))
	default:
		info, err := os.Stat(source)
		if err != nil {
			return "", err
		}
		if info.IsDir() {
			return "", fmt.Errorf("%s is a directory", source)
		}
		return source, nil
	}
}

func (r *ModelResolver) download(ctx context.Context, rawURL, target string) (string, error) {
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		r.log.Debug("model already installed", logger.Fields(logger.FieldPath, target))
		return target, nil
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}

	partial := target + ".part"
	var written int64
	err := resilience.RetryFunc(ctx, r.retry, func(ctx context.Context) error {
		f, err := os.Create(partial)
		if err != nil {
			return err
		}
		n, err := r.client.Download(ctx, rawURL, f)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		written = n
		return err
	})
	if err != nil {
		_ = os.Remove(partial)
		return "", err
	}
	if err := os.Rename(partial, target); err != nil {
		_ = os.Remove(partial)
		return "", err
	}

	r.log.Info("model downloaded", logger.Fields(logger.FieldPath, target, logger.FieldBytes, written))
	return target, nil
}

func (r *ModelResolver) extract(name string) (string, error) {
	if r.resources == nil {
		return "", fmt.Errorf("no bundled resources configured for %s", name)
	}
	name = strings.TrimPrefix(name, "/")
	src, err := r.resources.Open(name)
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.CreateTemp("", "speechkit-model-*-"+path.Base(name))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(dst.Name())
		return "", err
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dst.Name())
		return "", err
	}

	r.mu.Lock()
	r.extracted = append(r.extracted, dst.Name())
	r.mu.Unlock()

	r.log.Debug("model extracted", logger.Fields(logger.FieldPath, dst.Name()))
	return dst.Name(), nil
}

// Cleanup removes extracted resource models and forgets their paths.
// Downloaded models stay installed.
func (r *ModelResolver) Cleanup() error {
	r.mu.Lock()
	extracted := r.extracted
	r.extracted = nil
	for key, p := range r.resolved {
		for _, e := range extracted {
			if p == e {
				delete(r.resolved, key)
			}
		}
	}
	r.mu.Unlock()

	var errs []error
	for _, p := range extracted {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func downloadName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("no file name in %s", rawURL)
	}
	return name, nil
}
