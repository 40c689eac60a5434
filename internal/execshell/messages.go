package execshell

import (
	"fmt"
	"strings"
)

const (
	startedMessageTemplateConstant          = "Running %s"
	completedMessageTemplateConstant        = "Completed %s"
	failureMessageTemplateConstant          = "%s failed with exit code %d%s"
	executionFailureMessageTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
)

// BuildStartedMessage formats the message describing a command about to run.
func BuildStartedMessage(command ShellCommand) string {
	return fmt.Sprintf(startedMessageTemplateConstant, formatCommandLabel(command))
}

// BuildCompletedMessage formats the message describing a successful command.
func BuildCompletedMessage(command ShellCommand) string {
	return fmt.Sprintf(completedMessageTemplateConstant, formatCommandLabel(command))
}

// BuildFailureMessage formats the message describing a non-zero exit code.
func BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return fmt.Sprintf(
		failureMessageTemplateConstant,
		formatCommandLabel(command),
		result.ExitCode,
		formatStandardErrorSuffix(result.StandardError),
	)
}

// BuildExecutionFailureMessage formats the message describing a command that
// could not run at all.
func BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	return fmt.Sprintf(executionFailureMessageTemplateConstant, formatCommandLabel(command), failureMessage)
}

func formatCommandLabel(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	commandLabel := strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatWorkingDirectorySuffix(command))
}

func formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}
