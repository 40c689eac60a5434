package forall

// CommandConfiguration captures configuration values for the forall command.
type CommandConfiguration struct {
	FailFast         bool `mapstructure:"fail_fast"`
	PrintProjectPath bool `mapstructure:"print_project_path"`
	WorkerCount      int  `mapstructure:"worker_count"`
}

const (
	failFastConfigurationKeyConstant         = ".fail_fast"
	printProjectPathConfigurationKeyConstant = ".print_project_path"
	workerCountConfigurationKeyConstant      = ".worker_count"
)

// DefaultConfigurationValues exposes defaults keyed under the provided prefix.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + failFastConfigurationKeyConstant:         false,
		configurationKeyPrefix + printProjectPathConfigurationKeyConstant: false,
		configurationKeyPrefix + workerCountConfigurationKeyConstant:      0,
	}
}
