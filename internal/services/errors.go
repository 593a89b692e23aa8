package services

// ValidationError marks a request rejected before any I/O was attempted.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}
