package common

import (
	"go.uber.org/zap"

	"github.com/temirov/repoutils/internal/execshell"
	"github.com/temirov/repoutils/internal/forall"
	"github.com/temirov/repoutils/internal/selection"
	"github.com/temirov/repoutils/internal/ui"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ResolveLogger returns the provided logger or a no-op default.
func ResolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// ResolveShellExecutor constructs a shell executor, attaching a console event
// observer when human-readable logging is requested.
func ResolveShellExecutor(logger *zap.Logger, humanReadableLogging bool) (*execshell.ShellExecutor, error) {
	var eventObserver execshell.CommandEventObserver
	if humanReadableLogging {
		eventObserver = ui.NewConsoleCommandEventLogger(logger)
	}
	return execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), eventObserver)
}

// ResolveRunExecutor returns the provided executor or constructs a
// shell-backed default.
func ResolveRunExecutor(existing forall.ShellRunner, logger *zap.Logger, humanReadableLogging bool) (*forall.Executor, error) {
	shellRunner := existing
	if shellRunner == nil {
		shellExecutor, executorError := ResolveShellExecutor(logger, humanReadableLogging)
		if executorError != nil {
			return nil, executorError
		}
		shellRunner = shellExecutor
	}
	return forall.NewExecutor(shellRunner, logger)
}

// ResolveSelector constructs a project selector with default collaborators.
func ResolveSelector(logger *zap.Logger) *selection.Selector {
	return selection.NewSelector(logger)
}
