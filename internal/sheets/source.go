package sheets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Source retrieves one named tab as raw delimited text
type Source interface {
	FetchTab(ctx context.Context, name string) (string, error)
}

// HTTPSource fetches tabs from a remote spreadsheet export. The base URL
// carries a %s placeholder that the tab name is substituted into.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSource creates an HTTP source with the given per-request timeout
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// FetchTab downloads one tab's exported text
func (s *HTTPSource) FetchTab(ctx context.Context, name string) (string, error) {
	url := fmt.Sprintf(s.baseURL, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request for tab %s: %w", name, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch tab %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch tab %s: unexpected status %s", name, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read tab %s: %w", name, err)
	}

	return string(body), nil
}

// DirSource reads tabs from <dir>/<name>.csv, the offline/development mode
type DirSource struct {
	dir string
}

// NewDirSource creates a source backed by a local data directory
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// FetchTab reads one tab file from the data directory
func (s *DirSource) FetchTab(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, name+".csv")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read tab %s: %w", name, err)
	}

	return string(data), nil
}
