package shared

// Process exit codes.
const (
	ExitOK           = 0
	ExitError        = 1
	ExitConfigError  = 2
	ExitTaskFailed   = 3
	ExitDeployFailed = 4
)
