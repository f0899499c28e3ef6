package cmd

// ExitError carries a process exit code out of a command. An empty Message
// means the command already reported the problem.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// NewExitError returns an ExitError with the given code and message.
func NewExitError(code int, msg string) *ExitError {
	return &ExitError{Code: code, Message: msg}
}
