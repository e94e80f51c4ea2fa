package cloud

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// ErrObjectNotFound is returned by a Drive for a name it does not hold.
var ErrObjectNotFound = errors.New("object not found")

// Drive is remote storage for backup objects.
type Drive interface {
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
}

// MemoryDrive keeps objects in process.
type MemoryDrive struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryDrive() *MemoryDrive {
	return &MemoryDrive{objects: make(map[string][]byte)}
}

func (d *MemoryDrive) Put(_ context.Context, name string, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.objects[name] = bytes.Clone(data)

	return nil
}

func (d *MemoryDrive) Get(_ context.Context, name string) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	data, ok := d.objects[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrObjectNotFound)
	}

	return bytes.Clone(data), nil
}

// HTTPDrive stores objects on a plain HTTP object store: PUT and GET on
// <baseURL>/<name>, authenticated with a bearer token.
type HTTPDrive struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewHTTPDrive(baseURL, token string) *HTTPDrive {
	return &HTTPDrive{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (d *HTTPDrive) Put(ctx context.Context, name string, data []byte) error {
	resp, err := d.do(ctx, http.MethodPut, name, bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status code %d uploading %s", resp.StatusCode, name)
	}

	return nil
}

func (d *HTTPDrive) Get(ctx context.Context, name string) ([]byte, error) {
	resp, err := d.do(ctx, http.MethodGet, name, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", name, ErrObjectNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status code %d downloading %s", resp.StatusCode, name)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	return data, nil
}

func (d *HTTPDrive) do(ctx context.Context, method, name string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, d.baseURL+"/"+url.PathEscape(name), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if d.token != "" {
		req.Header.Set("Authorization", "Bearer "+d.token)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	return resp, nil
}
