package commands

import (
	"github.com/macropower/chores/pkg/config"
)

type RootArgs struct {
	config           *config.Config
	configPath       *string
	logLevel         *string
	logFormat        *string
	cpuProfile       *string
	blockProfile     *string
	mutexProfile     *string
	blockProfileRate *int
	mutexProfileRate *int
}

func NewRootArgs() *RootArgs {
	return &RootArgs{
		configPath:       new(string),
		logLevel:         new(string),
		logFormat:        new(string),
		cpuProfile:       new(string),
		blockProfile:     new(string),
		mutexProfile:     new(string),
		blockProfileRate: new(int),
		mutexProfileRate: new(int),
	}
}

// GetConfig returns the loaded configuration, or the defaults if it has not
// been loaded yet.
func (a *RootArgs) GetConfig() *config.Config {
	if a.config == nil {
		return config.Default()
	}

	return a.config
}

func (a *RootArgs) GetConfigPath() string {
	return *a.configPath
}

func (a *RootArgs) GetLogLevel() string {
	return *a.logLevel
}

func (a *RootArgs) GetLogFormat() string {
	return *a.logFormat
}

func (a *RootArgs) GetCPUProfile() string {
	return *a.cpuProfile
}

func (a *RootArgs) GetBlockProfile() string {
	return *a.blockProfile
}

func (a *RootArgs) GetMutexProfile() string {
	return *a.mutexProfile
}

func (a *RootArgs) GetBlockProfileRate() int {
	return *a.blockProfileRate
}

func (a *RootArgs) GetMutexProfileRate() int {
	return *a.mutexProfileRate
}
