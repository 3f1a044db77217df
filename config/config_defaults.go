package config

import "github.com/rs/zerolog"

// GetDefaultProjectConfig obtains a default configuration for a project.
func GetDefaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		Symbolication: SymbolicationConfig{
			CorrectSelectors:       true,
			StripMetadataOnMatch:   true,
			MinimumCompilerVersion: "",
		},
		Logging: LoggingConfig{
			Level:   zerolog.InfoLevel,
			NoColor: false,
		},
	}
}
