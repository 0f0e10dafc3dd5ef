package cli

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/localsearch/localsearch/internal/embedx"
)

// newModelDownloadProgress returns an embedx.ProgressFunc that renders a
// progress bar for the (one-time, per-engine) embedding model download.
// Quiet mode suppresses it entirely.
func newModelDownloadProgress(label string, quiet bool) embedx.ProgressFunc {
	if quiet {
		return nil
	}
	var bar *progressbar.ProgressBar
	return func(done, total int64) {
		if bar == nil {
			bar = progressbar.NewOptions64(total,
				progressbar.OptionSetDescription(label),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowBytes(true),
				progressbar.OptionThrottle(65*time.Millisecond),
				progressbar.OptionShowElapsedTimeOnFinish(),
				progressbar.OptionOnCompletion(func() { fmt.Println() }),
			)
		}
		_ = bar.Set64(done)
	}
}
