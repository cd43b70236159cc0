package main

// Exit codes shared by all commands.
const (
	ExitSuccess       = 0 // Success
	ExitError         = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError   = 2 // Configuration error (no workspace, missing config)
	ExitDataError     = 3 // Data error (malformed input, validation failure)
	ExitAuthError     = 4 // API authentication failure (missing or bad key)
	ExitCostLimit     = 5 // BigQuery cost estimate exceeded the limit
	ExitModelNotFound = 6 // Embedding model or provider not available
)
