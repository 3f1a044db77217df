package config

import (
	"encoding/json"
	"os"

	"github.com/Masterminds/semver"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ProjectConfig describes the configuration used when building and querying a symbolication model.
type ProjectConfig struct {
	// Symbolication describes how compiler output is turned into a symbolication model.
	Symbolication SymbolicationConfig `json:"symbolication"`

	// Logging describes the configuration used for logging
	Logging LoggingConfig `json:"logging"`
}

// SymbolicationConfig describes the configuration options used while building a symbolication model.
type SymbolicationConfig struct {
	// CorrectSelectors describes whether the compiler's method identifiers are used to correct function selectors
	// which were computed incorrectly from the AST, e.g. for functions taking struct or enum parameters.
	CorrectSelectors bool `json:"correctSelectors"`

	// StripMetadataOnMatch describes whether code observed on chain which only differs from a compiled bytecode in
	// its trailing compiler metadata is still attributed to it.
	StripMetadataOnMatch bool `json:"stripMetadataOnMatch"`

	// MinimumCompilerVersion is a semver constraint, e.g. ">= 0.5.0". Bytecodes emitted by a compiler which does not
	// satisfy it are skipped. An empty string disables the check.
	MinimumCompilerVersion string `json:"minimumCompilerVersion"`
}

// LoggingConfig describes the configuration options used for logging
type LoggingConfig struct {
	// Level describes whether logs of certain severity levels (eg info, warning, etc.) will be emitted or discarded.
	// Increasing level values represent more severe logs
	Level zerolog.Level `json:"level"`

	// NoColor indicates whether log messages should be displayed with colored formatting.
	NoColor bool `json:"noColor"`
}

// ReadProjectConfigFromFile reads a JSON-serialized ProjectConfig from a provided file path. Fields absent from the
// file keep their default values.
// Returns the ProjectConfig if it succeeds, or an error if one occurs.
func ReadProjectConfigFromFile(path string) (*ProjectConfig, error) {
	// Read our project configuration file data
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// Parse the project configuration over the defaults
	projectConfig := GetDefaultProjectConfig()
	err = json.Unmarshal(b, projectConfig)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return projectConfig, nil
}

// WriteToFile writes the ProjectConfig to a provided file path in a JSON-serialized format.
// Returns an error if one occurs.
func (p *ProjectConfig) WriteToFile(path string) error {
	// Serialize the configuration
	b, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return errors.WithStack(err)
	}

	// Save it to the provided output path and return the result
	err = os.WriteFile(path, b, 0644)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// Validate validates that the ProjectConfig meets certain requirements.
// Returns an error if one occurs.
func (p *ProjectConfig) Validate() error {
	// Verify the compiler version constraint parses
	if p.Symbolication.MinimumCompilerVersion != "" {
		if _, err := semver.NewConstraint(p.Symbolication.MinimumCompilerVersion); err != nil {
			return errors.Wrapf(err, "invalid minimum compiler version constraint %q", p.Symbolication.MinimumCompilerVersion)
		}
	}

	// Verify the log level is one zerolog knows
	if p.Logging.Level < zerolog.TraceLevel || p.Logging.Level > zerolog.Disabled {
		return errors.Errorf("invalid log level %d", p.Logging.Level)
	}

	return nil
}
