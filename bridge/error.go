package bridge

// RemoteError is a failure that originated on the other side of the
// boundary. The message is the only thing that crosses; it is decoded
// back into a native error at the point the awaiting side resumes.
type RemoteError struct {
	msg string
}

func NewRemoteError(msg string) *RemoteError {
	return &RemoteError{msg: msg}
}

// Message returns the original failure text, unmodified.
func (e *RemoteError) Message() string { return e.msg }

func (e *RemoteError) Error() string { return e.msg }

// errorMessage extracts the text to ship across the boundary.
func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
