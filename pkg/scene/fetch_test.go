package scene

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/framecast/player/pkg/logger"
)

func TestIsRemote(t *testing.T) {
	tests := map[string]bool{
		"scene.yaml":              false,
		"/tmp/scene.yaml":         false,
		"http://host/scene.yaml":  true,
		"https://host/s.yaml?x=1": true,
		"file:///tmp/scene.yaml":  false,
		"ftp://host/scene.yaml":   false,
		"gs://bucket/scene.yaml":  true,
	}
	for src, want := range tests {
		if got := IsRemote(src); got != want {
			t.Errorf("IsRemote(%v) = %v", src, got)
		}
	}
}

func TestFetcherLocal(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFetcher(filepath.Join(dir, "cache"), filepath.Join(dir, "cache.lock"), logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "local.yaml")
	if err := os.WriteFile(path, []byte(demo), 0644); err != nil {
		t.Fatal(err)
	}
	m, err := f.Load(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "demo" || m.Source != path {
		t.Errorf("wrong scene %v from %v", m.Name, m.Source)
	}
}

func TestFetcherRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(demo))
	}))
	defer srv.Close()

	dir := t.TempDir()
	f, err := NewFetcher(filepath.Join(dir, "cache"), filepath.Join(dir, "cache.lock"), logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	m, err := f.Load(ctx, srv.URL+"/remote.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if m.Duration() != 2*time.Second {
		t.Errorf("duration = %v", m.Duration())
	}
	if _, err := os.Stat(filepath.Join(dir, "cache", "remote.yaml")); err != nil {
		t.Errorf("scene is not cached: %v", err)
	}
}

type memObjects map[string]string

func (m memObjects) Open(_ context.Context, bucket, name string) (io.ReadCloser, error) {
	v, ok := m[bucket+"/"+name]
	if !ok {
		return nil, errors.New("object doesn't exist")
	}
	return io.NopCloser(strings.NewReader(v)), nil
}

func TestFetcherBucket(t *testing.T) {
	dir := t.TempDir()
	objects := memObjects{"scenes/a/remote.yaml": demo}
	f, err := NewFetcher(filepath.Join(dir, "cache"), filepath.Join(dir, "cache.lock"), logger.Nop(), WithObjects(objects))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	m, err := f.Load(context.Background(), "gs://scenes/a/remote.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if m.Duration() != 2*time.Second {
		t.Errorf("duration = %v", m.Duration())
	}
	if _, err := os.Stat(filepath.Join(dir, "cache", "gs", "scenes", "a", "remote.yaml")); err != nil {
		t.Errorf("scene is not cached: %v", err)
	}

	if _, err := f.Local(context.Background(), "gs://scenes/missing.yaml"); err == nil {
		t.Errorf("no error for a missing object")
	}
	if _, err := f.Local(context.Background(), "gs://scenes/"); !errors.Is(err, errBadObject) {
		t.Errorf("no object name, err = %v", err)
	}
}

func TestSplitObject(t *testing.T) {
	tests := []struct {
		src, bucket, name string
		err               bool
	}{
		{src: "gs://b/scene.yaml", bucket: "b", name: "scene.yaml"},
		{src: "gs://b/x/y/scene.yaml", bucket: "b", name: "x/y/scene.yaml"},
		{src: "gs://b/../../etc/passwd", bucket: "b", name: "etc/passwd"},
		{src: "gs://b", err: true},
		{src: "gs:///scene.yaml", err: true},
		{src: "https://b/scene.yaml", err: true},
	}
	for _, test := range tests {
		bucket, name, err := splitObject(test.src)
		if (err != nil) != test.err {
			t.Errorf("%v: err = %v", test.src, err)
			continue
		}
		if bucket != test.bucket || name != test.name {
			t.Errorf("%v: got %v %v, want %v %v", test.src, bucket, name, test.bucket, test.name)
		}
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	if err := os.WriteFile(path, []byte(demo), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 10)
	err := Watch(ctx, path, 10*time.Millisecond, func() { changed <- struct{}{} }, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	// other files are ignored
	_ = os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0644)
	if err := os.WriteFile(path, []byte(demo+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatalf("no change notification")
	}
}
