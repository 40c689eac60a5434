package status

// CommandConfiguration captures configuration values for the status command.
type CommandConfiguration struct {
	WorkerCount int `mapstructure:"worker_count"`
}

const workerCountConfigurationKeyConstant = ".worker_count"

// DefaultConfigurationValues exposes defaults keyed under the provided prefix.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + workerCountConfigurationKeyConstant: 0,
	}
}
