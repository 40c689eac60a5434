package forall_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repoutils/internal/forall"
	"github.com/temirov/repoutils/internal/workspace"
)

func TestReportRendererRender(testInstance *testing.T) {
	testCases := []struct {
		name           string
		report         forall.RunReport
		options        forall.RenderOptions
		expectedOutput string
	}{
		{
			name: "SucceededWithoutHeaders",
			report: forall.RunReport{Results: []forall.ProjectResult{
				{Project: workspace.Project{Path: "project-a"}, Outcome: forall.OutcomeSucceeded, StandardOutput: "a-stdout\n"},
				{Project: workspace.Project{Path: "project-b"}, Outcome: forall.OutcomeSucceeded, StandardOutput: "b-stdout\n"},
			}},
			options:        forall.RenderOptions{},
			expectedOutput: "a-stdout\nb-stdout\n\nDone: 2/2 executions succeeded, 0 failed\n",
		},
		{
			name: "SucceededWithProjectHeaders",
			report: forall.RunReport{Results: []forall.ProjectResult{
				{Project: workspace.Project{Path: "project-a"}, Outcome: forall.OutcomeSucceeded, StandardOutput: "a-stdout\n"},
			}},
			options:        forall.RenderOptions{PrintProjectPath: true},
			expectedOutput: "project-a:\na-stdout\n\nDone: 1/1 executions succeeded, 0 failed\n",
		},
		{
			name: "FailedUnitAlwaysCarriesHeader",
			report: forall.RunReport{Results: []forall.ProjectResult{
				{Project: workspace.Project{Path: "project-a"}, Outcome: forall.OutcomeFailed, StandardError: "fatal: not a git repository\n"},
			}},
			options:        forall.RenderOptions{},
			expectedOutput: "project-a:\nfatal: not a git repository\n\nDone: 0/1 executions succeeded, 1 failed\n",
		},
		{
			name: "SkippedUnitsAppearInSummary",
			report: forall.RunReport{Results: []forall.ProjectResult{
				{Project: workspace.Project{Path: "project-a"}, Outcome: forall.OutcomeFailed, StandardError: "boom\n"},
				{Project: workspace.Project{Path: "project-b"}, Outcome: forall.OutcomeSkipped},
			}},
			options:        forall.RenderOptions{},
			expectedOutput: "project-a:\nboom\nproject-b: skipped\n\nDone: 0/2 executions succeeded, 1 failed, 1 skipped\n",
		},
		{
			name: "ErroredUnitReportsFailure",
			report: forall.RunReport{Results: []forall.ProjectResult{
				{Project: workspace.Project{Path: "project-a"}, Outcome: forall.OutcomeError, Failure: errors.New("spawn failed")},
			}},
			options:        forall.RenderOptions{},
			expectedOutput: "project-a:\nFailed to execute command in project-a: spawn failed\n\nDone: 0/1 executions succeeded, 1 failed\n",
		},
		{
			name:           "EmptyReport",
			report:         forall.RunReport{},
			options:        forall.RenderOptions{},
			expectedOutput: "\nDone: 0/0 executions succeeded, 0 failed\n",
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			var outputBuffer bytes.Buffer

			forall.NewReportRenderer(&outputBuffer).Render(testCase.report, testCase.options)

			require.Equal(subtestInstance, testCase.expectedOutput, outputBuffer.String())
		})
	}
}

func TestReportRendererKeepsProjectBlocksContiguous(testInstance *testing.T) {
	report := forall.RunReport{Results: []forall.ProjectResult{
		{Project: workspace.Project{Path: "project-a"}, Outcome: forall.OutcomeSucceeded, StandardOutput: "a-one\na-two\n"},
		{Project: workspace.Project{Path: "project-b"}, Outcome: forall.OutcomeSucceeded, StandardOutput: "b-one\nb-two\n"},
	}}

	var outputBuffer bytes.Buffer
	forall.NewReportRenderer(&outputBuffer).Render(report, forall.RenderOptions{PrintProjectPath: true})

	require.Equal(
		testInstance,
		"project-a:\na-one\na-two\nproject-b:\nb-one\nb-two\n\nDone: 2/2 executions succeeded, 0 failed\n",
		outputBuffer.String(),
	)
}
