package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries maps sentinel errors to their user-facing messages.
// Using a slice (not a map) because errors.Is() requires proper error chain traversal.
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoEntries = []errorEntry{
	// ===================
	// Test runs
	// ===================
	{
		err: ErrDiffsFound,
		info: ErrorInfo{
			Message: "Visual differences were found between the reference and test screenshots.",
			Action:  "Inspect the report; if the changes are expected, run 'pixel reference' again.",
		},
	},
	{
		err: ErrUnknownGroup,
		info: ErrorInfo{
			Message: "The requested test group does not exist.",
			Action:  "Run 'pixel test --help' to see the available groups.",
		},
	},
	{
		err: ErrInterrupted,
		info: ErrorInfo{
			Message: "The run was interrupted.",
		},
	},
	{
		err: ErrProcessFailed,
		info: ErrorInfo{
			Message: "An external command failed. Check the output above for details.",
			Action:  "If containers are in a bad state, try 'pixel clean' and run again.",
		},
	},

	// ===================
	// Branches
	// ===================
	{
		err: ErrNoRefsFound,
		info: ErrorInfo{
			Message: "No matching branches or tags were found on the remote repository.",
			Action:  "Check your network connection or pass an explicit --branch.",
		},
	},
	{
		err: ErrInvalidRepoBranch,
		info: ErrorInfo{
			Message: "A --repo-branch value is not in repo:branch form.",
			Action:  "Use e.g. --repo-branch mediawiki/skins/Vector:my-branch.",
		},
	},

	// ===================
	// State & reports
	// ===================
	{
		err: ErrContextPersistence,
		info: ErrorInfo{
			Message: "Could not save the run context file.",
			Action:  "Check that the project directory is writable.",
		},
	},
	{
		err: ErrReportAnnotation,
		info: ErrorInfo{
			Message: "Could not annotate the HTML report.",
		},
	},

	// ===================
	// Configuration
	// ===================
	{
		err: ErrNotProjectDir,
		info: ErrorInfo{
			Message: "The directory does not contain a docker-compose.yml file.",
			Action:  "Run pixel from the project root or pass --directory.",
		},
	},
	{
		err: ErrInvalidScenarioConfig,
		info: ErrorInfo{
			Message: "A group has an invalid scenario configuration.",
			Action:  "Fix the group definition in your registry file.",
		},
	},
	{
		err: ErrMissingTools,
		info: ErrorInfo{
			Message: "Some tools pixel needs are missing or outdated.",
			Action:  "Install the tools listed above and run 'pixel doctor' again.",
		},
	},
	{
		err: ErrInvalidArgument,
		info: ErrorInfo{
			Message: "An invalid argument was provided.",
			Action:  "Check the command help for valid arguments.",
		},
	},
}

// getErrorInfo looks up the ErrorInfo for a given error.
// Returns an ErrorInfo with the original error message if not found.
func getErrorInfo(err error) ErrorInfo {
	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}
	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action the user can take to resolve or work around the issue.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
