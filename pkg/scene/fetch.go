package scene

import (
	"context"
	"fmt"
	"io"
	"net/url"
	stdos "os"
	"path/filepath"
	"strings"

	"github.com/cavaliercoder/grab"
	"github.com/framecast/player/pkg/logger"
	"github.com/framecast/player/pkg/os"
)

// Fetcher resolves scene locations into local files.
// Remote scenes (http, https and gs) are downloaded into the cache
// directory, the download is guarded with a file lock shared by every
// player process.
type Fetcher struct {
	cache   string
	client  *grab.Client
	objects Objects
	lock    *os.Flock
	log     *logger.Logger
}

type FetcherOption func(*Fetcher)

// WithObjects replaces the bucket storage used for gs:// scenes.
func WithObjects(o Objects) FetcherOption { return func(f *Fetcher) { f.objects = o } }

func NewFetcher(cacheDir string, lockPath string, log *logger.Logger, opts ...FetcherOption) (*Fetcher, error) {
	dir, err := os.ExpandHome(cacheDir)
	if err != nil {
		return nil, err
	}
	if err := os.CheckCreateDir(dir); err != nil {
		return nil, fmt.Errorf("scene cache: %w", err)
	}
	lockPath, err = os.ExpandHome(lockPath)
	if err != nil {
		return nil, err
	}
	lock, err := os.NewFileLock(lockPath)
	if err != nil {
		return nil, fmt.Errorf("scene cache lock: %w", err)
	}
	f := &Fetcher{cache: dir, client: grab.NewClient(), objects: &GoogleStorage{}, lock: lock, log: log}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

func IsRemote(src string) bool {
	u, err := url.Parse(src)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https", "gs":
		return true
	}
	return false
}

func (f *Fetcher) Close() error {
	if c, ok := f.objects.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Local returns a local path of the scene src.
func (f *Fetcher) Local(ctx context.Context, src string) (string, error) {
	if !IsRemote(src) {
		return src, nil
	}
	if err := f.lock.Lock(); err != nil {
		return "", fmt.Errorf("scene cache lock: %w", err)
	}
	defer func() { _ = f.lock.Unlock() }()

	if strings.HasPrefix(src, "gs://") {
		return f.fromBucket(ctx, src)
	}

	req, err := grab.NewRequest(f.cache, src)
	if err != nil {
		return "", fmt.Errorf("couldn't make request URL: %v, %w", src, err)
	}
	resp := f.client.Do(req.WithContext(ctx))
	if err := resp.Err(); err != nil {
		return "", fmt.Errorf("download failed: %v, %w", src, err)
	}
	f.log.Info().Msgf("Downloaded [%v] %s", resp.HTTPResponse.Status, resp.Filename)
	return resp.Filename, nil
}

// fromBucket copies the object into <cache>/gs/<bucket>/<name>.
func (f *Fetcher) fromBucket(ctx context.Context, src string) (string, error) {
	bucket, name, err := splitObject(src)
	if err != nil {
		return "", fmt.Errorf("%w: %v", err, src)
	}
	r, err := f.objects.Open(ctx, bucket, name)
	if err != nil {
		return "", fmt.Errorf("bucket read failed: %v, %w", src, err)
	}
	defer func() { _ = r.Close() }()

	dst := filepath.Join(f.cache, "gs", bucket, filepath.FromSlash(name))
	if err := os.CheckCreateDir(filepath.Dir(dst)); err != nil {
		return "", err
	}
	tmp, err := stdos.CreateTemp(filepath.Dir(dst), ".part-*")
	if err != nil {
		return "", err
	}
	defer func() { _ = stdos.Remove(tmp.Name()) }()

	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("bucket read failed: %v, %w", src, err)
	}
	if err := stdos.Rename(tmp.Name(), dst); err != nil {
		return "", err
	}
	f.log.Info().Msgf("Downloaded [%v bytes] %s", n, dst)
	return dst, nil
}

// Load resolves and opens the scene at src.
func (f *Fetcher) Load(ctx context.Context, src string) (*Motion, error) {
	path, err := f.Local(ctx, src)
	if err != nil {
		return nil, err
	}
	m, err := Open(path)
	if err != nil {
		return nil, err
	}
	m.Source = src
	return m, nil
}
