package conversation

import "errors"

var (
	// ErrBusy is returned while the bot is still answering the last input.
	ErrBusy = errors.New("conversation: waiting for reply")
	// ErrUnexpectedStep is returned when an operation does not fit the current step.
	ErrUnexpectedStep = errors.New("conversation: operation not allowed in this step")
	// ErrFinished is returned for input after success or error; Reset starts over.
	ErrFinished = errors.New("conversation: finished")
	// ErrClosed is returned by a closed Session.
	ErrClosed = errors.New("conversation: session closed")
	// ErrNilSubmitter is returned when a submission has nowhere to go.
	ErrNilSubmitter = errors.New("conversation: submitter is nil")
)
