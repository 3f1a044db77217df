package logging

// These constants identify the services which create sub-loggers, so log output can be filtered by service.
const (
	// COMPILATION_SERVICE identifies the compilation package
	COMPILATION_SERVICE = "compilation"
	// STACKTRACES_SERVICE identifies the stacktraces package
	STACKTRACES_SERVICE = "stacktraces"
	// CLI_SERVICE identifies the cmd package
	CLI_SERVICE = "cli"
)
