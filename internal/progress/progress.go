package progress

import (
	"fmt"
	"io"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"
)

// StepDescription formats a bar description carrying the flow step counter,
// e.g. "[cyan][3/4][reset] Processing set...".
func StepDescription(step, total int, message string) string {
	return fmt.Sprintf("[cyan][%d/%d][reset] %s", step, total, message)
}

// NewJobBar builds a 0-100 percent bar used while polling a backend job.
// Update it with the progress value reported by the job status.
func NewJobBar(description string) *progressbar.ProgressBar {
	return newBar(ansi.NewAnsiStdout(), description)
}

// NewDownloadBar builds a byte-count bar for streaming the finished archive.
// A size of -1 renders a spinner when the length is not announced.
func NewDownloadBar(size int64, description string) *progressbar.ProgressBar {
	return newByteBar(ansi.NewAnsiStdout(), size, description)
}

func newBar(w io.Writer, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(
		100,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetDescription(description),
	)
}

func newByteBar(w io.Writer, size int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(
		size,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionFullWidth(),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetDescription(description),
	)
}
