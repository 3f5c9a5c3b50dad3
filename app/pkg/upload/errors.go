package upload

import "fmt"

/*
Error taxonomy for the upload pipeline. Codes are stable: they go into API
response bodies, session fail_code columns and job logs, so renaming one is
a wire change.
*/

const (
	CodeInvalidFormat         = "InvalidFormat"
	CodeFileTooLarge          = "FileTooLarge"
	CodeChecksumMismatch      = "ChecksumMismatch"
	CodeCoverageGapOnComplete = "CoverageGapOnComplete"
	CodeSessionExpired        = "SessionExpired"
	CodeSessionNotFound       = "SessionNotFound"
	CodeSessionClosed         = "SessionClosed"
	CodeChunkOverlap          = "ChunkOverlap"
	CodeStorageWriteFailed    = "StorageWriteFailed"
	CodeProcessingJobFailed   = "ProcessingJobFailed"
	CodeInternal              = "Internal"
)

// Error carries a stable code next to the human-readable message.
// Retryable marks faults the caller is expected to retry with backoff.
type Error struct {
	Code      string
	Message   string
	Retryable bool
	cause     error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches by code so sentinel comparison works across wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

var (
	ErrInvalidFormat    = &Error{Code: CodeInvalidFormat, Message: "unsupported or malformed audio file"}
	ErrFileTooLarge     = &Error{Code: CodeFileTooLarge, Message: "declared size exceeds the configured maximum"}
	ErrChecksumMismatch = &Error{Code: CodeChecksumMismatch, Message: "assembled checksum does not match the declared checksum"}
	ErrCoverageGap      = &Error{Code: CodeCoverageGapOnComplete, Message: "complete requested before full chunk coverage"}
	ErrSessionExpired   = &Error{Code: CodeSessionExpired, Message: "upload session expired"}
	ErrSessionNotFound  = &Error{Code: CodeSessionNotFound, Message: "upload session does not exist"}
	ErrSessionClosed    = &Error{Code: CodeSessionClosed, Message: "upload session is terminal and accepts no writes"}
	ErrChunkOverlap     = &Error{Code: CodeChunkOverlap, Message: "chunk write would violate coverage invariant"}
	ErrStorageWrite     = &Error{Code: CodeStorageWriteFailed, Message: "blob storage write failed", Retryable: true}
)

// storageWriteErr wraps a provider fault as a retryable StorageWriteFailed.
func storageWriteErr(cause error) error {
	return &Error{Code: CodeStorageWriteFailed, Message: "blob storage write failed", Retryable: true, cause: cause}
}

// CodeOf extracts the stable code, defaulting to Internal.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	for e := err; e != nil; {
		if ue, ok := e.(*Error); ok {
			return ue.Code
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			break
		}
		e = u.Unwrap()
	}
	return CodeInternal
}
