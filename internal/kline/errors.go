package kline

import (
	"strings"

	"github.com/pkg/errors"
)

// Context carries debugging detail onto a K-Line error: which profile and
// command were in flight, and a preview of the lines that came back.
type Context struct {
	ProfileName string
	Command     string
	Lines       []string
}

func (c Context) String() string {
	if c.ProfileName == "" && c.Command == "" && len(c.Lines) == 0 {
		return ""
	}
	var parts []string
	if c.ProfileName != "" {
		parts = append(parts, "profile="+c.ProfileName)
	}
	if c.Command != "" {
		parts = append(parts, "cmd="+c.Command)
	}
	if len(c.Lines) > 0 {
		preview := c.Lines
		if len(preview) > 3 {
			preview = preview[:3]
		}
		parts = append(parts, "lines="+strings.Join(preview, "|"))
	}
	return " [" + strings.Join(parts, " ") + "]"
}

// Error is the base K-Line error: a message plus optional Context and a
// cause wrapped with pkg/errors. Unwrap exposes that cause, so the standard
// errors.Is/As reach the root failure; Error itself has no Cause method,
// so errors.Cause(err) stops at the Error.
type Error struct {
	Kind    string
	message string
	Ctx     Context
	cause   error
}

func (e *Error) Error() string {
	s := e.message + e.Ctx.String()
	if e.cause != nil {
		s += ": " + e.cause.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.cause }

func newError(kind, message string, ctx Context, cause error) *Error {
	var wrapped error
	if cause != nil {
		wrapped = errors.Wrap(cause, message)
	}
	return &Error{Kind: kind, message: message, Ctx: ctx, cause: wrapped}
}

// NewProfileError reports an invalid or unusable profile definition.
func NewProfileError(message string, ctx Context) error {
	return newError("profile", message, ctx, nil)
}

// NewApplyError reports a failure while applying a profile's AT sequence.
func NewApplyError(message string, ctx Context, cause error) error {
	return newError("apply", message, ctx, cause)
}

// NewVerifyError reports a failure while verifying a profile's probes.
func NewVerifyError(message string, ctx Context, cause error) error {
	return newError("verify", message, ctx, cause)
}

// NewDetectError reports a failure during candidate profile detection.
func NewDetectError(message string, ctx Context, cause error) error {
	return newError("detect", message, ctx, cause)
}
