package annlib

import "errors"

// Code classifies the outcome of an annlib operation. Indexes return
// plain (sentinel-wrapping) errors; FromError maps any such error onto
// one of these codes.
type Code uint8

const (
	CodeOK Code = iota
	CodeNotFound
	CodeCorruption
	CodeNotSupported
	CodeInvalidArgument
	CodeIOError
	CodeBGError
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodeNotFound:
		return "not_found"
	case CodeCorruption:
		return "corruption"
	case CodeNotSupported:
		return "not_supported"
	case CodeInvalidArgument:
		return "invalid_argument"
	case CodeIOError:
		return "io_error"
	case CodeBGError:
		return "bg_error"
	default:
		return "unknown"
	}
}

// Status is a lightweight result value: Code plus an optional message.
// It satisfies the error interface so it can be returned and compared
// anywhere a plain error is expected.
type Status struct {
	code Code
	msg  string
}

func OK() Status { return Status{code: CodeOK} }

func NotFound(msg string) Status         { return Status{code: CodeNotFound, msg: msg} }
func Corruption(msg string) Status       { return Status{code: CodeCorruption, msg: msg} }
func NotSupported(msg string) Status     { return Status{code: CodeNotSupported, msg: msg} }
func InvalidArgument(msg string) Status  { return Status{code: CodeInvalidArgument, msg: msg} }
func IOError(msg string) Status          { return Status{code: CodeIOError, msg: msg} }
func BGError(msg string) Status          { return Status{code: CodeBGError, msg: msg} }

func (s Status) Ok() bool              { return s.code == CodeOK }
func (s Status) IsNotFound() bool      { return s.code == CodeNotFound }
func (s Status) IsCorruption() bool    { return s.code == CodeCorruption }
func (s Status) IsNotSupported() bool  { return s.code == CodeNotSupported }
func (s Status) IsInvalidArgument() bool { return s.code == CodeInvalidArgument }
func (s Status) IsIOError() bool       { return s.code == CodeIOError }
func (s Status) IsBGError() bool       { return s.code == CodeBGError }
func (s Status) Code() Code            { return s.code }

func (s Status) Error() string {
	if s.msg == "" {
		return s.code.String()
	}
	return s.code.String() + ": " + s.msg
}

// FromError classifies a Go error into a Status, unwrapping to find a
// Status already carried on the error chain, and otherwise falling
// back to matching it against annlib's own sentinel errors.
func FromError(err error) Status {
	if err == nil {
		return OK()
	}
	var st Status
	if errors.As(err, &st) {
		return st
	}
	if code, ok := sentinelCode(err); ok {
		return Status{code: code, msg: err.Error()}
	}
	return Status{code: CodeBGError, msg: err.Error()}
}
