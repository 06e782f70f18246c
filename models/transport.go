package models

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// HTTPTransport downloads model files over HTTP into a cache directory.
// A partial download is kept as <file>.part and continued with a Range
// request on the next attempt; the final name appears only once complete.
type HTTPTransport struct {
	dir    string
	client *http.Client

	// baseURL overrides the catalog host, for tests.
	baseURL string
}

func NewHTTPTransport(dir string) *HTTPTransport {
	return &HTTPTransport{
		dir: dir,
		// No overall timeout: model files are gigabytes. Dial/TLS setup
		// still uses the default transport's connect timeouts.
		client: &http.Client{Timeout: 0},
	}
}

func (t *HTTPTransport) Fetch(modelID string, progress func(float64)) (string, error) {
	desc, ok := Lookup(modelID)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownModel, modelID)
	}

	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	final := filepath.Join(t.dir, desc.FileName)
	if info, err := os.Stat(final); err == nil && !info.IsDir() {
		progress(1)
		return final, nil
	}

	part := final + ".part"
	var offset int64
	if info, err := os.Stat(part); err == nil {
		offset = info.Size()
	}

	url := desc.URL
	if t.baseURL != "" {
		url = t.baseURL + "/" + desc.FileName
	}

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if offset > 0 {
		req.Header.Set("Range", "bytes="+strconv.FormatInt(offset, 10)+"-")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", desc.FileName, err)
	}
	defer resp.Body.Close()

	flags := os.O_CREATE | os.O_WRONLY
	switch resp.StatusCode {
	case http.StatusPartialContent:
		flags |= os.O_APPEND
	case http.StatusOK:
		// Server ignored the Range header; start over.
		offset = 0
		flags |= os.O_TRUNC
	default:
		return "", fmt.Errorf("fetch %s: %s", desc.FileName, resp.Status)
	}

	total := int64(0)
	if resp.ContentLength > 0 {
		total = offset + resp.ContentLength
	}

	f, err := os.OpenFile(part, flags, 0o644)
	if err != nil {
		return "", fmt.Errorf("open partial file: %w", err)
	}

	pw := &progressWriter{done: offset, total: total, fn: progress}
	if _, err := io.Copy(io.MultiWriter(f, pw), resp.Body); err != nil {
		f.Close()
		// Keep the .part file: the next attempt resumes from here.
		return "", fmt.Errorf("download %s: %w", desc.FileName, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close partial file: %w", err)
	}

	if err := os.Rename(part, final); err != nil {
		return "", fmt.Errorf("finalize %s: %w", desc.FileName, err)
	}
	progress(1)
	return final, nil
}

// progressWriter reports fractional progress, rate-limited so huge files
// don't flood the callback.
type progressWriter struct {
	done   int64
	total  int64
	fn     func(float64)
	lastAt time.Time
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.done += int64(len(b))
	if p.total > 0 && time.Since(p.lastAt) >= 100*time.Millisecond {
		p.lastAt = time.Now()
		frac := float64(p.done) / float64(p.total)
		if frac > 1 {
			frac = 1
		}
		p.fn(frac)
	}
	return len(b), nil
}
