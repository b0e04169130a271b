package session

import "errors"

var (
	ErrNoCandidates      = errors.New("no file selected")
	ErrUploadInFlight    = errors.New("an upload is already in progress")
	ErrUnknownCandidate  = errors.New("file is not part of the session")
	ErrInvalidCandidate  = errors.New("invalid file descriptor")
	ErrNoBlobStore       = errors.New("no blob store attached")
	ErrFileTooLarge      = errors.New("invalid file size")
	ErrMediaTypeRejected = errors.New("invalid file type")
)
