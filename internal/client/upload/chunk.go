package upload

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adminkit/adminctl/internal/apperr"
	"github.com/sethvargo/go-retry"
)

const tusVersion = "1.0.0"

// ChunkUploader implements resumable chunked transfer against a tus-style
// endpoint: one creation POST, then PATCH requests advancing Upload-Offset.
// Transient failures (network errors, 429, 5xx) are retried on the fixed
// delay schedule; before each resend the current server offset is fetched
// with HEAD so an interrupted chunk resumes instead of restarting.
type ChunkUploader struct {
	endpoint  string
	hc        *http.Client
	chunkSize int64
	delays    []time.Duration
	token     func() string
}

// ChunkOption configures a ChunkUploader.
type ChunkOption func(*ChunkUploader)

// WithChunkSize overrides the default 1 MiB chunk size.
func WithChunkSize(n int64) ChunkOption {
	return func(u *ChunkUploader) {
		if n > 0 {
			u.chunkSize = n
		}
	}
}

// WithRetryDelays overrides the default transient-failure schedule.
func WithRetryDelays(delays []time.Duration) ChunkOption {
	return func(u *ChunkUploader) { u.delays = delays }
}

// WithTokenSource attaches a bearer token to every upload request.
func WithTokenSource(fn func() string) ChunkOption {
	return func(u *ChunkUploader) { u.token = fn }
}

// NewChunkUploader builds an uploader for the files endpoint at endpoint.
func NewChunkUploader(endpoint string, timeout time.Duration, opts ...ChunkOption) *ChunkUploader {
	u := &ChunkUploader{
		endpoint:  endpoint,
		hc:        &http.Client{Timeout: timeout},
		chunkSize: 1 << 20,
		delays:    DefaultRetryDelays,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Upload transfers the file at path and returns the upload URL assigned by
// the server. progress may be nil.
func (u *ChunkUploader) Upload(ctx context.Context, path string, progress ProgressFunc) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeClientError, err.Error(), err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return "", apperr.Wrap(apperr.CodeClientError, err.Error(), err)
	}
	total := fi.Size()

	location, err := u.create(ctx, filepath.Base(path), total)
	if err != nil {
		return "", err
	}

	var offset int64
	for offset < total {
		n := u.chunkSize
		if rest := total - offset; rest < n {
			n = rest
		}

		chunk := make([]byte, n)
		if _, err := f.ReadAt(chunk, offset); err != nil && err != io.EOF {
			return "", apperr.Wrap(apperr.CodeClientError, err.Error(), err)
		}

		newOffset, err := u.sendChunk(ctx, location, chunk, offset, f)
		if err != nil {
			return "", err
		}
		offset = newOffset

		if progress != nil {
			progress(offset, total)
		}
	}

	return location, nil
}

// create issues the upload-creation request and returns the upload URL.
func (u *ChunkUploader) create(ctx context.Context, filename string, total int64) (string, error) {
	var location string

	err := retry.Do(ctx, scheduleBackoff(u.delays), func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, nil)
		if err != nil {
			return apperr.Wrap(apperr.CodeClientError, err.Error(), err)
		}
		u.decorate(req)
		req.Header.Set("Upload-Length", strconv.FormatInt(total, 10))
		req.Header.Set("Upload-Metadata", uploadMetadata(filename))

		resp, err := u.hc.Do(req)
		if err != nil {
			return retry.RetryableError(apperr.Normalize(err))
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			return statusError(resp.StatusCode)
		}

		location = resp.Header.Get("Location")
		if location == "" {
			return apperr.New(apperr.CodeClientError, "upload created without a location")
		}
		return nil
	})
	if err != nil {
		return "", apperr.Normalize(err)
	}
	return location, nil
}

// sendChunk PATCHes one chunk at offset and returns the server's new offset.
// On transient failure the chunk is retried from the server's reported
// offset, so partially received bytes are not resent.
func (u *ChunkUploader) sendChunk(ctx context.Context, location string, chunk []byte, offset int64, f *os.File) (int64, error) {
	sendOffset := offset
	data := chunk

	err := retry.Do(ctx, scheduleBackoff(u.delays), func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPatch, location, bytes.NewReader(data))
		if err != nil {
			return apperr.Wrap(apperr.CodeClientError, err.Error(), err)
		}
		u.decorate(req)
		req.Header.Set("Content-Type", "application/offset+octet-stream")
		req.Header.Set("Upload-Offset", strconv.FormatInt(sendOffset, 10))

		resp, err := u.hc.Do(req)
		if err != nil {
			if sendOffset, data, err = u.resume(ctx, location, offset, int64(len(chunk)), f); err != nil {
				return err
			}
			return retry.RetryableError(apperr.New(apperr.CodeClientError, "chunk transfer interrupted"))
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusNoContent {
			e := apperr.FromStatus(resp.StatusCode)
			if !retryable(resp.StatusCode) {
				return e
			}
			if sendOffset, data, err = u.resume(ctx, location, offset, int64(len(chunk)), f); err != nil {
				return err
			}
			return retry.RetryableError(e)
		}
		return nil
	})
	if err != nil {
		return 0, apperr.Normalize(err)
	}
	return offset + int64(len(chunk)), nil
}

// resume asks the server how much of the upload it holds and re-slices the
// remainder of the current chunk accordingly.
func (u *ChunkUploader) resume(ctx context.Context, location string, chunkStart, chunkLen int64, f *os.File) (int64, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, location, nil)
	if err != nil {
		return 0, nil, apperr.Wrap(apperr.CodeClientError, err.Error(), err)
	}
	u.decorate(req)

	resp, err := u.hc.Do(req)
	if err != nil {
		// Server still unreachable; retry the whole chunk from its start.
		return chunkStart, readChunk(f, chunkStart, chunkLen), nil
	}
	defer resp.Body.Close()

	serverOffset, err := strconv.ParseInt(resp.Header.Get("Upload-Offset"), 10, 64)
	if err != nil || serverOffset < chunkStart || serverOffset > chunkStart+chunkLen {
		return chunkStart, readChunk(f, chunkStart, chunkLen), nil
	}
	return serverOffset, readChunk(f, serverOffset, chunkStart+chunkLen-serverOffset), nil
}

func readChunk(f *os.File, offset, n int64) []byte {
	buf := make([]byte, n)
	if n == 0 {
		return buf
	}
	read, _ := f.ReadAt(buf, offset)
	return buf[:read]
}

func (u *ChunkUploader) decorate(req *http.Request) {
	req.Header.Set("Tus-Resumable", tusVersion)
	if u.token != nil {
		if t := u.token(); t != "" {
			req.Header.Set("Authorization", "Bearer "+t)
		}
	}
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func statusError(status int) error {
	e := apperr.FromStatus(status)
	if retryable(status) {
		return retry.RetryableError(e)
	}
	return e
}

// uploadMetadata encodes the tus Upload-Metadata header: comma-separated
// "key base64(value)" pairs.
func uploadMetadata(filename string) string {
	enc := base64.StdEncoding.EncodeToString
	filetype := mime.TypeByExtension(filepath.Ext(filename))
	if filetype == "" {
		filetype = "application/octet-stream"
	}
	return fmt.Sprintf("filename %s,filetype %s", enc([]byte(filename)), enc([]byte(filetype)))
}
