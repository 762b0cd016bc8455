package layout

import "fmt"

// PersistError reports a project that could not be written.
type PersistError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s", e.Op, e.Path)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// ExitCode is the process exit status for this error.
func (e *PersistError) ExitCode() int { return 2 }
