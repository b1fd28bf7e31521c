package output

import (
	"io"
	"time"

	"github.com/sofmeright/hbdeploy/src/sourcemap"
)

// UploadSection renders one row per upload task, failures with their cause.
func UploadSection(w io.Writer, result *sourcemap.Result, dryRun bool, elapsed time.Duration, color bool) {
	SectionStart(w, "hb_upload", "Source maps")
	sec := NewSection(w, "Source maps", elapsed, color)
	defer func() {
		sec.Close()
		SectionEnd(w, "hb_upload")
	}()

	if len(result.Outcomes) == 0 {
		sec.Row("%s no matching bundles, nothing to upload", StatusIcon("skipped", color))
		return
	}

	for _, o := range result.Outcomes {
		status := "skipped"
		switch o.State {
		case sourcemap.Succeeded:
			status = "success"
		case sourcemap.Failed:
			status = "failed"
		}
		sec.Row("%s %s", StatusIcon(status, color), o.Task.MinifiedURL)
		sec.Row("    %s", Dimmed(o.Task.Pair.Map, color))
		if o.State == sourcemap.Failed && o.Err != nil {
			sec.Row("    %s", o.Err.Error())
		}
	}

	sec.Separator()
	switch {
	case dryRun:
		sec.Row("dry run: %d upload(s) planned", len(result.Outcomes))
	case result.OK():
		sec.Row("%d uploaded", result.Count(sourcemap.Succeeded))
	default:
		sec.Row("%d uploaded, %d failed, %d not completed",
			result.Count(sourcemap.Succeeded),
			result.Count(sourcemap.Failed),
			result.Count(sourcemap.Pending)+result.Count(sourcemap.InFlight))
	}
}

// StepResult prints a one-line step summary inside a section.
func StepResult(w io.Writer, name string, err error, detail string, elapsed time.Duration, color bool) {
	sec := NewSection(w, name, elapsed, color)
	if err != nil {
		sec.Row("%s %s", StatusIcon("failed", color), err.Error())
	} else {
		sec.Row("%s %s", StatusIcon("success", color), detail)
	}
	sec.Close()
}
