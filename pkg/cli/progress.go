package cli

import (
	"io"

	"github.com/m-mizutani/takeout/pkg/domain/model"
	"github.com/schollz/progressbar/v3"
)

const labelWidth = 40

// truncateLabel keeps the tail of long item names, which is where file names
// differ.
func truncateLabel(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[len(r)-width:])
	}
	return "..." + string(r[len(r)-(width-3):])
}

// progressRenderer draws one bar per stage. A stage that does not know its
// total renders a spinner.
type progressRenderer struct {
	w     io.Writer
	quiet bool

	bar   *progressbar.ProgressBar
	stage string
	total int
	done  int
}

func newProgressRenderer(w io.Writer, quiet bool) *progressRenderer {
	return &progressRenderer{w: w, quiet: quiet}
}

func (r *progressRenderer) Report(p model.Progress) {
	if r.quiet {
		return
	}

	if r.bar == nil || p.Stage != r.stage || p.Total != r.total || p.Done < r.done {
		r.Finish()
		size := p.Total
		if size <= 0 {
			size = -1
		}
		r.bar = progressbar.NewOptions(size,
			progressbar.OptionSetWriter(r.w),
			progressbar.OptionSetDescription(p.Stage),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer: "█", SaucerHead: "█", SaucerPadding: "░",
				BarStart: "[", BarEnd: "]",
			}),
		)
		r.stage = p.Stage
		r.total = p.Total
	}

	r.done = p.Done

	if p.Item != "" {
		r.bar.Describe(p.Stage + " " + truncateLabel(p.Item, labelWidth))
	}
	if p.Total > 0 {
		_ = r.bar.Set(p.Done)
	} else {
		_ = r.bar.Add(1)
	}
}

// Finish completes the current bar, if any.
func (r *progressRenderer) Finish() {
	if r.bar == nil {
		return
	}
	_ = r.bar.Finish()
	_, _ = io.WriteString(r.w, "\n")
	r.bar = nil
	r.done = 0
}
