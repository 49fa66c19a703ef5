package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Lifecycle errors
const (
	// ErrCodeDestroyed indicates an operation on a destroyed stream.
	ErrCodeDestroyed ErrorCode = "STREAM_DESTROYED"
	// ErrCodePrematureClose indicates the stream closed before its readable side ended.
	ErrCodePrematureClose ErrorCode = "PREMATURE_CLOSE"
	// ErrCodeWriteAfterEnd indicates a write after End was called.
	ErrCodeWriteAfterEnd ErrorCode = "WRITE_AFTER_END"
	// ErrCodePushAfterEOF indicates a push after the readable side ended.
	ErrCodePushAfterEOF ErrorCode = "PUSH_AFTER_EOF"
)

// Chunk errors
const (
	// ErrCodeNullChunk indicates a nil chunk was written.
	ErrCodeNullChunk ErrorCode = "NULL_CHUNK"
	// ErrCodeInvalidChunk indicates a chunk type the stream mode cannot carry.
	ErrCodeInvalidChunk ErrorCode = "INVALID_CHUNK"
	// ErrCodeMultipleCallback indicates a completion callback was invoked twice.
	ErrCodeMultipleCallback ErrorCode = "MULTIPLE_CALLBACK"
)

// Configuration and internal errors
const (
	// ErrCodeInvalidConfig indicates an invalid configuration value.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeInternal indicates an unexpected internal failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// A prematurely closed stream can be replayed on a fresh one; everything else
// is a programming or configuration error.
var retryableCodes = map[ErrorCode]bool{
	ErrCodePrematureClose: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
