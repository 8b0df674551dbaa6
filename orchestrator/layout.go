package orchestrator

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// LayoutFetcher produces the raw topology JSON document (spec.md §6.1).
// Network-layout acquisition is named only as an opaque
// fetch-JSON-over-HTTPS operation producing a topology document, but the
// orchestrator still needs a concrete collaborator to call, so this
// interface is the seam tests substitute.
type LayoutFetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// FileLayoutFetcher resolves network_layout_file: a plain local path is
// read directly; an http(s) URL is fetched with a plain Get-then-read-body
// call.
type FileLayoutFetcher struct {
	Path string
}

func (f FileLayoutFetcher) Fetch(ctx context.Context) ([]byte, error) {
	if strings.HasPrefix(f.Path, "http://") || strings.HasPrefix(f.Path, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.Path, nil)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: build layout request: %w", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: fetch layout: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("orchestrator: fetch layout: status %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}
	return os.ReadFile(f.Path)
}
