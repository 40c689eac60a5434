package forall

import (
	"fmt"
	"io"
	"os"

	"github.com/temirov/repoutils/internal/utils"
)

const (
	projectHeaderTemplateConstant      = "%s:\n"
	skippedLineTemplateConstant        = "%s: skipped\n"
	executionErrorTemplateConstant     = "Failed to execute command in %s: %v\n"
	summaryTemplateConstant            = "\nDone: %d/%d executions succeeded, %d failed\n"
	summaryWithSkippedTemplateConstant = "\nDone: %d/%d executions succeeded, %d failed, %d skipped\n"
)

// RenderOptions tunes report emission.
type RenderOptions struct {
	// PrintProjectPath writes the project path header before every unit's
	// output; failed units always receive a header.
	PrintProjectPath bool
}

// ReportRenderer writes a RunReport to an output sink.
//
// Each unit's captured output is written as one contiguous block in
// selection order, which is what guarantees per-project atomicity of the
// emitted byte stream.
type ReportRenderer struct {
	outputWriter io.Writer
}

// NewReportRenderer constructs a renderer around the provided writer.
func NewReportRenderer(outputWriter io.Writer) *ReportRenderer {
	if outputWriter == nil {
		outputWriter = os.Stdout
	}
	return &ReportRenderer{outputWriter: utils.NewFlushingWriter(outputWriter)}
}

// Render emits every project block followed by the run summary.
func (renderer *ReportRenderer) Render(report RunReport, options RenderOptions) {
	for _, result := range report.Results {
		renderer.renderResult(result, options)
	}

	succeededCount := report.CountByOutcome(OutcomeSucceeded)
	failedCount := report.CountByOutcome(OutcomeFailed) + report.CountByOutcome(OutcomeError)
	skippedCount := report.CountByOutcome(OutcomeSkipped)

	if skippedCount > 0 {
		fmt.Fprintf(renderer.outputWriter, summaryWithSkippedTemplateConstant, succeededCount, len(report.Results), failedCount, skippedCount)
		return
	}
	fmt.Fprintf(renderer.outputWriter, summaryTemplateConstant, succeededCount, len(report.Results), failedCount)
}

func (renderer *ReportRenderer) renderResult(result ProjectResult, options RenderOptions) {
	switch result.Outcome {
	case OutcomeSkipped:
		fmt.Fprintf(renderer.outputWriter, skippedLineTemplateConstant, result.Project.Path)
	case OutcomeError:
		fmt.Fprintf(renderer.outputWriter, projectHeaderTemplateConstant, result.Project.Path)
		fmt.Fprintf(renderer.outputWriter, executionErrorTemplateConstant, result.Project.Path, result.Failure)
	default:
		if options.PrintProjectPath || result.Outcome == OutcomeFailed {
			fmt.Fprintf(renderer.outputWriter, projectHeaderTemplateConstant, result.Project.Path)
		}
		io.WriteString(renderer.outputWriter, result.StandardOutput)
		io.WriteString(renderer.outputWriter, result.StandardError)
	}
}
