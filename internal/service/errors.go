package service

// ValidationError marks a request rejected before any persistence: bad file
// type, oversized upload, duration over the limit, missing fields. Handlers
// surface the message to the client with a 4xx status; it is never fatal.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErr(msg string) error {
	return &ValidationError{Message: msg}
}
