package scene

import (
	"context"
	"errors"
	"io"
	"net/url"
	"path"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
)

// Objects opens named objects of a bucket.
type Objects interface {
	Open(ctx context.Context, bucket, name string) (io.ReadCloser, error)
}

// GoogleStorage reads scenes from Google Cloud Storage.
// The client is made on the first use, so players without
// bucket scenes never ask for credentials.
type GoogleStorage struct {
	mu     sync.Mutex
	client *storage.Client
}

func (g *GoogleStorage) Open(ctx context.Context, bucket, name string) (io.ReadCloser, error) {
	g.mu.Lock()
	if g.client == nil {
		client, err := storage.NewClient(ctx)
		if err != nil {
			g.mu.Unlock()
			return nil, err
		}
		g.client = client
	}
	client := g.client
	g.mu.Unlock()

	return client.Bucket(bucket).Object(name).NewReader(ctx)
}

func (g *GoogleStorage) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client == nil {
		return nil
	}
	err := g.client.Close()
	g.client = nil
	return err
}

var errBadObject = errors.New("bad bucket object")

// splitObject splits gs://bucket/path/to/object into the bucket and the object name.
func splitObject(src string) (bucket, name string, err error) {
	u, err := url.Parse(src)
	if err != nil {
		return "", "", err
	}
	if u.Scheme != "gs" || u.Host == "" {
		return "", "", errBadObject
	}
	name = strings.TrimPrefix(path.Clean("/"+u.Path), "/")
	if name == "" {
		return "", "", errBadObject
	}
	return u.Host, name, nil
}
