// Package errors provides the structured error type shared by the stream
// runtime and the through2 factories.
//
// Every error raised by this module (never the errors returned by caller
// supplied transform or flush functions) is an *AppError carrying a
// machine-readable ErrorCode. Errors compare by code, so the sentinels
// exported by package stream work with the standard errors.Is.
package errors
