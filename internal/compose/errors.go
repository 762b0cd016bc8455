package compose

import "fmt"

// UnknownModelError is returned for a missing or unsupported model name.
type UnknownModelError struct {
	Model string
}

func (e *UnknownModelError) Error() string {
	if e.Model == "" {
		return "model is mandatory. Please see loadcompose compose --help"
	}
	return fmt.Sprintf("unknown model %q. Please see loadcompose compose --help", e.Model)
}

func (e *UnknownModelError) ExitCode() int { return 2 }
