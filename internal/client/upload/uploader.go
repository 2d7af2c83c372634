// Package upload moves document files to their storage backend. The primary
// implementation is a resumable chunked HTTP uploader; an S3 variant exists
// for deployments that store documents in object storage directly.
package upload

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// ProgressFunc receives transfer progress after every completed chunk.
type ProgressFunc func(bytesTransferred, totalBytes int64)

// Uploader sends one local file and returns a stable URL/identifier for the
// uploaded resource.
type Uploader interface {
	Upload(ctx context.Context, path string, progress ProgressFunc) (string, error)
}

// DefaultRetryDelays is the fixed backoff schedule applied to transient
// failures: an immediate retry, then increasing pauses.
var DefaultRetryDelays = []time.Duration{0, time.Second, 3 * time.Second, 5 * time.Second}

// scheduleBackoff returns a backoff that walks the given delay schedule once
// and then stops. Unlike the exponential helpers this retries a fixed number
// of times with predetermined pauses.
func scheduleBackoff(delays []time.Duration) retry.Backoff {
	i := 0
	return retry.BackoffFunc(func() (time.Duration, bool) {
		if i >= len(delays) {
			return 0, true
		}
		d := delays[i]
		i++
		return d, false
	})
}
