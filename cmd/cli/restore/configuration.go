package restore

// CommandConfiguration captures configuration values for the restore command.
type CommandConfiguration struct {
	DryRun      bool `mapstructure:"dry_run"`
	AssumeYes   bool `mapstructure:"assume_yes"`
	WorkerCount int  `mapstructure:"worker_count"`
}

const (
	dryRunConfigurationKeyConstant      = ".dry_run"
	assumeYesConfigurationKeyConstant   = ".assume_yes"
	workerCountConfigurationKeyConstant = ".worker_count"
)

// DefaultConfigurationValues exposes defaults keyed under the provided prefix.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + dryRunConfigurationKeyConstant:      false,
		configurationKeyPrefix + assumeYesConfigurationKeyConstant:   false,
		configurationKeyPrefix + workerCountConfigurationKeyConstant: 0,
	}
}
