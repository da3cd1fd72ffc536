package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"replayvault/internal/contentstore"
	"replayvault/internal/logging"
)

const (
	userAgent = "ReplayVault/0.1.0"
	chunkSize = 8 * 1024
)

// idPlaceholder is the literal token in the base URL template substituted
// with the replay ID.
const idPlaceholder = "$id$"

// Result reports the outcome of one retrieval attempt.
//
// OK is true only for HTTP 200 with a fully written temp file; SHA256, Size,
// and TempPath are set in that case and the caller owns the temp file. A
// StatusCode of -1 means the request never completed (transport failure),
// always transient from the driver's perspective.
type Result struct {
	OK         bool
	SHA256     string
	TempPath   string
	StatusCode int
	Size       int64
	Extension  string
}

// TempFiler is the subset of the content store the fetcher needs: somewhere
// on the destination filesystem to stream downloads into.
type TempFiler interface {
	TempFile(pattern string) (*os.File, error)
}

// Client performs single-replay retrievals against the templated source URL.
type Client struct {
	baseURL string
	http    *http.Client
	temps   TempFiler
	logger  *slog.Logger
}

// New constructs a fetch client. The base URL must contain the $id$
// placeholder; timeout bounds the whole request including body streaming.
func New(baseURL string, timeout time.Duration, temps TempFiler, logger *slog.Logger) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if !strings.Contains(baseURL, idPlaceholder) {
		return nil, fmt.Errorf("base url must contain %s placeholder", idPlaceholder)
	}
	if temps == nil {
		return nil, errors.New("temp file provider required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		temps:   temps,
		logger:  logging.NewComponentLogger(logger, "fetch"),
	}, nil
}

// Fetch retrieves one replay, streaming the body to a temp file while
// computing its SHA-256 incrementally. The body is never held in memory.
// Outcomes other than OK carry a nil error when they are expected protocol
// results (non-200 status); transport failures return the cause alongside
// StatusCode -1.
func (c *Client) Fetch(ctx context.Context, replayID int64) (Result, error) {
	url := strings.ReplaceAll(c.baseURL, idPlaceholder, strconv.FormatInt(replayID, 10))
	c.logger.Debug("requesting replay", logging.Int64("replay_id", replayID), logging.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{StatusCode: -1}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{StatusCode: -1}, fmt.Errorf("request replay %d: %w", replayID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain a bounded amount so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return Result{StatusCode: resp.StatusCode}, nil
	}

	ext := extensionFromHeader(resp.Header.Get("Content-Disposition"))

	temp, err := c.temps.TempFile(fmt.Sprintf("replay-%d-*", replayID))
	if err != nil {
		return Result{StatusCode: resp.StatusCode}, fmt.Errorf("create temp file: %w", err)
	}

	hasher := sha256.New()
	buf := make([]byte, chunkSize)
	written, err := io.CopyBuffer(io.MultiWriter(temp, hasher), resp.Body, buf)
	closeErr := temp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		// Never leave a partial file behind; it must not reach the store.
		_ = os.Remove(temp.Name())
		return Result{StatusCode: resp.StatusCode}, fmt.Errorf("stream replay %d: %w", replayID, err)
	}

	return Result{
		OK:         true,
		SHA256:     hex.EncodeToString(hasher.Sum(nil)),
		TempPath:   temp.Name(),
		StatusCode: resp.StatusCode,
		Size:       written,
		Extension:  ext,
	}, nil
}

// extensionFromHeader pulls a filename suffix out of a Content-Disposition
// header. The source serves Content-Type application/force-download, so the
// header is the only labeling hint; failures fall back to the canonical
// extension. Best-effort only, never part of the dedup key.
func extensionFromHeader(disposition string) string {
	if strings.TrimSpace(disposition) == "" {
		return contentstore.DefaultExtension
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return contentstore.DefaultExtension
	}
	filename := params["filename"]
	if filename == "" {
		return contentstore.DefaultExtension
	}
	ext := strings.TrimPrefix(path.Ext(filename), ".")
	if ext == "" {
		return contentstore.DefaultExtension
	}
	return ext
}
