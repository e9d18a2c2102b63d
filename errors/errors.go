package errors

import "fmt"

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrEmptyWords         = fmt.Errorf("no words have been found")
	ErrNoChatSelected     = fmt.Errorf("select a chat first")
	ErrAttachmentTooLarge = fmt.Errorf("attachment exceeds the size limit")
	ErrNotSignedIn        = fmt.Errorf("no signed-in identity")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid username or password")
	ErrInvalidPayload     = fmt.Errorf("unexpected event payload")
)
