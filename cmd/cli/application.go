package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	forallcmd "github.com/temirov/repoutils/cmd/cli/forall"
	restorecmd "github.com/temirov/repoutils/cmd/cli/restore"
	statuscmd "github.com/temirov/repoutils/cmd/cli/status"
	"github.com/temirov/repoutils/internal/utils"
)

const (
	applicationNameConstant                 = "repoutils"
	applicationShortDescriptionConstant     = "Command-line interface for repo tool workspaces"
	applicationLongDescriptionConstant      = "repoutils fans commands out across the git repositories of a repo tool workspace and inspects or restores their state."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	environmentPrefixConstant               = "REPOUTILS"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	rootCommandInfoMessageConstant          = "repoutils CLI executed"
	rootCommandDebugMessageConstant         = "repoutils CLI diagnostics"
	logFieldCommandNameConstant             = "command_name"
	logFieldArgumentCountConstant           = "argument_count"
	logFieldArgumentsConstant               = "arguments"
	loggerNotInitializedMessageConstant     = "logger not initialized"
	defaultConfigurationSearchPathConstant  = "."
	toolsConfigurationKeyConstant           = "tools"
	forallConfigurationKeyConstant          = toolsConfigurationKeyConstant + ".forall"
	statusConfigurationKeyConstant          = toolsConfigurationKeyConstant + ".status"
	restoreConfigurationKeyConstant         = toolsConfigurationKeyConstant + ".restore"
	forallToolUseConstant                   = "repo-forall [flags] -- command [args...]"
	statusToolUseConstant                   = "repo-status"
	restoreToolUseConstant                  = "repo-restore"
	unknownToolErrorTemplateConstant        = "unknown tool command: %s"
)

// ToolCommandName identifies a front end that can run as a standalone binary.
type ToolCommandName string

// Standalone front ends shipped next to the combined binary.
const (
	ToolCommandForall  ToolCommandName = "repo-forall"
	ToolCommandStatus  ToolCommandName = "repo-status"
	ToolCommandRestore ToolCommandName = "repo-restore"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Tools  ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationToolsConfiguration holds configuration for CLI subcommands grouped by tool.
type ApplicationToolsConfiguration struct {
	Forall  forallcmd.CommandConfiguration  `mapstructure:"forall"`
	Status  statuscmd.CommandConfiguration  `mapstructure:"status"`
	Restore restorecmd.CommandConfiguration `mapstructure:"restore"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	commandContextAccessor utils.CommandContextAccessor
}

// NewApplication assembles the combined CLI application with every tool as a subcommand.
func NewApplication() *Application {
	application := newApplicationShell()

	rootCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}
	application.attachPersistentFlags(rootCommand)

	forallCommand, forallBuildError := application.forallCommandBuilder("").Build()
	if forallBuildError == nil {
		rootCommand.AddCommand(forallCommand)
	}

	statusCommand, statusBuildError := application.statusCommandBuilder("").Build()
	if statusBuildError == nil {
		rootCommand.AddCommand(statusCommand)
	}

	restoreCommand, restoreBuildError := application.restoreCommandBuilder("").Build()
	if restoreBuildError == nil {
		rootCommand.AddCommand(restoreCommand)
	}

	application.rootCommand = rootCommand

	return application
}

// NewToolApplication assembles an application whose root command is a single
// front end, backing the standalone repo-* binaries.
func NewToolApplication(toolCommandName ToolCommandName) (*Application, error) {
	application := newApplicationShell()

	var toolCommand *cobra.Command
	var buildError error
	switch toolCommandName {
	case ToolCommandForall:
		toolCommand, buildError = application.forallCommandBuilder(forallToolUseConstant).Build()
	case ToolCommandStatus:
		toolCommand, buildError = application.statusCommandBuilder(statusToolUseConstant).Build()
	case ToolCommandRestore:
		toolCommand, buildError = application.restoreCommandBuilder(restoreToolUseConstant).Build()
	default:
		return nil, fmt.Errorf(unknownToolErrorTemplateConstant, toolCommandName)
	}
	if buildError != nil {
		return nil, buildError
	}

	toolCommand.SilenceUsage = true
	toolCommand.SilenceErrors = true
	toolCommand.PersistentPreRunE = func(command *cobra.Command, arguments []string) error {
		return application.initializeConfiguration(command)
	}
	application.attachPersistentFlags(toolCommand)

	application.rootCommand = toolCommand

	return application, nil
}

func newApplicationShell() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)
	embeddedConfigurationData, embeddedConfigurationType := EmbeddedDefaultConfiguration()
	configurationLoader.SetEmbeddedConfiguration(embeddedConfigurationData, embeddedConfigurationType)

	return &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
	}
}

func (application *Application) attachPersistentFlags(command *cobra.Command) {
	command.SetContext(context.Background())
	command.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	command.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	command.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
}

func (application *Application) forallCommandBuilder(commandUseName string) *forallcmd.CommandBuilder {
	return &forallcmd.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider: func() forallcmd.CommandConfiguration {
			return application.configuration.Tools.Forall
		},
		CommandUseName: commandUseName,
	}
}

func (application *Application) statusCommandBuilder(commandUseName string) *statuscmd.CommandBuilder {
	return &statuscmd.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider: func() statuscmd.CommandConfiguration {
			return application.configuration.Tools.Status
		},
		CommandUseName: commandUseName,
	}
}

func (application *Application) restoreCommandBuilder(commandUseName string) *restorecmd.CommandBuilder {
	return &restorecmd.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider: func() restorecmd.CommandConfiguration {
			return application.configuration.Tools.Restore
		},
		CommandUseName: commandUseName,
	}
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

// ExecuteTool builds and executes a standalone front-end application.
func ExecuteTool(toolCommandName ToolCommandName) error {
	application, applicationError := NewToolApplication(toolCommandName)
	if applicationError != nil {
		return applicationError
	}
	return application.Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatStructured),
	}
	for configurationKey, configurationValue := range forallcmd.DefaultConfigurationValues(forallConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range statuscmd.DefaultConfigurationValues(statusConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range restorecmd.DefaultConfigurationValues(restoreConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	loggerInstance, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = loggerInstance

	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	rootCommandFields := []zap.Field{
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Int(logFieldArgumentCountConstant, len(arguments)),
	}
	if configurationFilePath, configurationFilePathAvailable := application.commandContextAccessor.ConfigurationFilePath(command.Context()); configurationFilePathAvailable {
		rootCommandFields = append(rootCommandFields, zap.String(configurationFileFieldConstant, configurationFilePath))
	}

	application.logger.Info(rootCommandInfoMessageConstant, rootCommandFields...)

	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.Strings(logFieldArgumentsConstant, arguments),
	)

	if len(arguments) == 0 {
		return command.Help()
	}

	return nil
}

func (application *Application) flushLogger() error {
	return application.syncLoggerInstance(application.logger)
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
