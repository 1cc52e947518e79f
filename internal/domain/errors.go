package domain

import "errors"

var (
	// ErrBusy indicates a single-flight operation is already in progress
	ErrBusy = errors.New("operation already in progress")
	// ErrNoFiles indicates an upload was submitted without files
	ErrNoFiles = errors.New("no files selected")
	// ErrEmptyMessage indicates a chat send with no content
	ErrEmptyMessage = errors.New("message is empty")
	// ErrManualRequiresPDF indicates manual mode was given anything other
	// than exactly one .pdf file
	ErrManualRequiresPDF = errors.New("manual upload requires exactly one PDF file")
)
