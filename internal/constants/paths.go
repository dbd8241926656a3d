package constants

// Log file names.
const (
	// CLILogFileName is the name of the global CLI log file.
	// This file is located in ~/.pixel/logs/pixel.log
	CLILogFileName = "pixel.log"
)

// Configuration file names.
const (
	// GlobalConfigName is the name of the global pixel configuration file.
	// This file is located in the pixel home directory.
	GlobalConfigName = "config.yaml"

	// ProjectConfigName is the name of the project-specific configuration file.
	// This file is located in the project directory.
	ProjectConfigName = ".pixel.yaml"

	// EnvFileName is the dotenv file shared with Docker Compose.
	EnvFileName = ".env"
)
