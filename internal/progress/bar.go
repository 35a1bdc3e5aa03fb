package progress

import (
	"context"
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"

	"github.com/cancer-registry-edits/internal/domain"
)

// BarNotifier renders pipeline progress as a terminal bar. Each success event
// advances the bar by one step; info events update the description.
type BarNotifier struct {
	bar *progressbar.ProgressBar
}

// NewBarNotifier creates a bar of the given number of steps writing to w
func NewBarNotifier(w io.Writer, steps int) *BarNotifier {
	bar := progressbar.NewOptions(steps,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription("Starting..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
	return &BarNotifier{bar: bar}
}

// Notify advances or describes the bar
func (n *BarNotifier) Notify(_ context.Context, event domain.ProgressEvent) error {
	switch event.Severity {
	case domain.SeveritySuccess:
		n.bar.Describe(event.Message)
		if !n.bar.IsFinished() {
			return n.bar.Add(1)
		}
	case domain.SeverityError:
		n.bar.Describe(event.Message)
		return n.bar.Exit()
	default:
		n.bar.Describe(event.Message)
	}
	return nil
}

// Finish completes the bar
func (n *BarNotifier) Finish() error {
	return n.bar.Finish()
}
