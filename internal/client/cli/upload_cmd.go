package cli

import (
	"context"
	"fmt"

	"github.com/adminkit/adminctl/internal/apperr"
)

// Upload transfers a local document file and prints its assigned URL.
// Progress is reported as chunks complete.
func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return apperr.New(apperr.CodeInvalidInput, "expected exactly one file path")
	}

	url, err := a.uploader.Upload(ctx, args[0], func(sent, total int64) {
		pct := float64(sent) / float64(total) * 100
		printlnFn(fmt.Sprintf("Uploaded %d of %d bytes (%.2f%%)", sent, total, pct))
	})
	if err != nil {
		return err
	}

	printlnFn("Upload finished:", url)
	return nil
}
