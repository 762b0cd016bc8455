package ab

// MalformedOptionsError reports an ab option string that cannot be used.
type MalformedOptionsError struct {
	Msg string
	Err error
}

func malformed(msg string, err error) *MalformedOptionsError {
	return &MalformedOptionsError{Msg: msg, Err: err}
}

func (e *MalformedOptionsError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *MalformedOptionsError) Unwrap() error { return e.Err }

// ExitCode is the process exit status for this error.
func (e *MalformedOptionsError) ExitCode() int { return 2 }
