package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/takeout/pkg/domain/model"
)

// printer writes command summaries. Colors follow color.NoColor.
type printer struct {
	w      io.Writer
	green  func(a ...any) string
	yellow func(a ...any) string
	red    func(a ...any) string
	cyan   func(a ...any) string
}

func newPrinter(w io.Writer) *printer {
	return &printer{
		w:      w,
		green:  color.New(color.FgGreen).SprintFunc(),
		yellow: color.New(color.FgYellow).SprintFunc(),
		red:    color.New(color.FgRed).SprintFunc(),
		cyan:   color.New(color.FgCyan).SprintFunc(),
	}
}

func (p *printer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) failures(failed []model.ItemFailure) {
	for _, f := range failed {
		p.printf("  %s %s: %v\n", p.red("FAILED"), f.Item, f.Err)
	}
}

func (p *printer) status(s model.ZipStatus) {
	p.printf("Archives: %s total, %s unpacked, %s pending\n",
		p.cyan(s.Total), p.green(s.Unpacked), p.yellow(s.Pending))
}

func (p *printer) overview(o *model.Overview) {
	p.status(o.Status)
	if o.Session != nil {
		p.printf("Session: stage %d (%s), saved %s\n",
			o.Session.Position, o.Session.Label, o.Session.SavedAt.Format("2006-01-02 15:04:05"))
	} else {
		p.printf("Session: none\n")
	}
	p.printf("Suggested: stage %d (%s)\n", o.Suggested, o.Suggested.Label())
	for _, stage := range model.Stages {
		mark := p.red("no")
		if o.Eligible[stage] {
			mark = p.green("yes")
		}
		p.printf("  %d %-16s %s\n", stage, stage.Label(), mark)
	}
	p.printf("Next: %s\n", o.NextStep)
}

func (p *printer) unpack(r *model.UnpackReport) {
	p.printf("Unpacked %s archive(s), skipped %d, failed %s\n",
		p.green(r.Count()), len(r.Skipped), p.red(len(r.Failed)))
	p.failures(r.Failed)
}

func (p *printer) validation(r *model.ValidationReport) {
	p.printf("Extraction targets: %s with data, %s empty\n",
		p.green(r.WithData), p.yellow(r.Empty))
	for _, name := range r.EmptyTargets {
		p.printf("  %s %s\n", p.yellow("EMPTY"), name)
	}
	for _, w := range r.SizeWarnings {
		p.printf("  %s %s: %.2f of %d bytes (threshold %.2f)\n",
			p.yellow("SMALL"), w.Name, w.Ratio, w.ArchiveSizeBytes, r.Threshold)
	}
}

func (p *printer) batch(verb string, r *model.BatchReport) {
	if r.DryRun {
		p.printf("%s (dry run): ", p.yellow("Would"))
		verb = strings.ToLower(verb)
	}
	p.printf("%s %s item(s), failed %s\n", verb, p.green(r.Count()), p.red(r.FailureCount()))
	if r.DryRun {
		for _, item := range r.Succeeded {
			p.printf("  %s\n", item)
		}
	}
	p.failures(r.Failed)
}

func (p *printer) collapse(r *model.CollapseReport) {
	p.batch("Removed", &r.BatchReport)
	p.printf("Non-empty folders left: %s\n", p.cyan(r.Remaining))
	if len(r.TopExtensions) > 0 {
		p.printf("Leftover extensions: %s\n", strings.Join(r.TopExtensions, ", "))
	}
}

func (p *printer) library(r *model.LibraryReport) {
	p.printf("Files: %s\n", p.cyan(r.Files))
	for _, class := range []model.MediaClass{model.MediaImage, model.MediaVideo, model.MediaOther} {
		p.printf("  %-6s %d\n", class, r.ByClass[class])
	}
	p.printf("Extensions:\n")
	for _, e := range r.Extensions {
		p.printf("  %-10s %d\n", e.Extension, e.Count)
	}
	if len(r.Years) > 0 || r.NoDate > 0 {
		p.printf("Capture years:\n")
		for _, y := range r.Years {
			p.printf("  %d %d\n", y.Year, y.Count)
		}
		p.printf("  %s %d\n", p.yellow("no date"), r.NoDate)
	}
}
