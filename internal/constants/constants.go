// Package constants provides centralized constant values used throughout pixel.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// File names used by pixel for state persistence.
const (
	// ContextFileName is the name of the JSON file that records, per group, the
	// last reference and test branches. It lives in the project directory.
	ContextFileName = "context.json"

	// ComposeFileName is the Docker Compose file expected in the project directory.
	ComposeFileName = "docker-compose.yml"

	// ReportIndexFileName is the name of the page linking every group report.
	ReportIndexFileName = "index.html"
)

// Directory names and paths used by pixel for organizing data.
const (
	// PixelHome is the hidden directory name where pixel stores global data.
	// This directory is created in the user's home directory.
	PixelHome = ".pixel"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"

	// ReportDir is the directory, relative to the project, holding the HTML reports.
	ReportDir = "report"
)

// Branch identifiers with special meaning on the command line.
const (
	// MainBranch is the default branch tested when no branch or change is given.
	MainBranch = "master"

	// LatestReleaseBranch asks the resolver for the newest wmf release branch.
	LatestReleaseBranch = "latest-release"

	// DefaultGroup is the group used when --group is omitted.
	DefaultGroup = "desktop"

	// DefaultPriority is the highest priority runAll includes by default.
	DefaultPriority = 1

	// A11yGroupSuffix is appended to accessibility group keys in batch runs.
	A11yGroupSuffix = "-a11y"
)

// Docker Compose service names.
const (
	// ServiceMediaWiki runs the wiki and the in-container setup script.
	ServiceMediaWiki = "mediawiki"

	// ServiceDatabase is the database service restored by reset-db.
	ServiceDatabase = "database"

	// ServiceVisualRegression runs BackstopJS screenshot comparisons.
	ServiceVisualRegression = "visual-regression"

	// ServiceA11yRegression runs the accessibility audit tool.
	ServiceA11yRegression = "a11y-regression"

	// ServiceReporter serves the HTML reports and holds the copy exported by --output.
	ServiceReporter = "visual-regression-reporter"

	// ReporterReportPath is the report directory inside the reporter container.
	ReporterReportPath = "/pixel/report"

	// DefaultReportOutput is where test runs copy the report, relative to the
	// working directory. An empty --output disables the copy.
	DefaultReportOutput = "pixel-report"
)

// Environment variables consumed or produced by pixel.
const (
	// EnvNonInteractive suppresses opening reports and TTY allocation.
	EnvNonInteractive = "NONINTERACTIVE"

	// EnvEnableWikiLambda gates the optional WikiLambda extension inside the containers.
	EnvEnableWikiLambda = "ENABLE_WIKILAMBDA"

	// EnvPixelHome overrides the global pixel directory.
	EnvPixelHome = "PIXEL_HOME"

	// EnvPrefix is the prefix for configuration environment variables.
	EnvPrefix = "PIXEL"
)

// Exit code conventions of the containerized tools.
const (
	// DiffsFoundExitCode is returned by the regression container when screenshots differ.
	DiffsFoundExitCode = 1

	// InterruptedExitCode is the conventional exit code of a process killed by SIGINT.
	InterruptedExitCode = 130
)

// Timeouts and intervals.
const (
	// DefaultRemoteTimeout bounds git ls-remote calls against remote repositories.
	DefaultRemoteTimeout = 60 * time.Second

	// ReportStaleAfter is the age after which the report banner is flagged as outdated.
	ReportStaleAfter = 24 * time.Hour
)

// Log file rotation settings.
const (
	LogMaxSizeMB  = 10
	LogMaxBackups = 5
	LogMaxAgeDays = 30
	LogCompress   = true
)
