package intent

import "fmt"

// Kind classifies a dispatch outcome. Callers branch on the kind instead of
// parsing string prefixes; String renders the wire-compatible sentinel form
// for logs and transports.
type Kind int

const (
	// KindOK is success; Detail carries tool-specific information such as
	// "calculation_result: 14" or "file_created: /tmp/a.txt".
	KindOK Kind = iota

	// KindClarification means the intent was valid but a required entity is
	// missing; Detail names the gap (e.g. "mouse_coordinates_missing").
	KindClarification

	// KindUnsupported means no registered tool owns the intent.
	KindUnsupported

	// KindUnhandled means the dispatcher exhausted every route.
	KindUnhandled

	// KindError is a handler or dispatch failure.
	KindError

	// KindExit signals the host loop should terminate the assistant.
	KindExit
)

// Result is the uniform outcome of executing one intent.
type Result struct {
	Kind   Kind
	Code   string // optional sentinel code overriding the kind's default
	Detail string

	// Voiced records that the handler already spoke its own feedback, so
	// the dispatcher adds no generic apology on failure.
	Voiced bool
}

// Spoken marks the result as voiced by the handler.
func (r Result) Spoken() Result {
	r.Voiced = true
	return r
}

// Ok builds a success result carrying tool-specific detail.
func Ok(detail string) Result {
	return Result{Kind: KindOK, Detail: detail}
}

// Okf builds a formatted success result.
func Okf(format string, args ...any) Result {
	return Ok(fmt.Sprintf(format, args...))
}

// Clarify builds a clarification-needed result.
func Clarify(reason string) Result {
	return Result{Kind: KindClarification, Detail: reason}
}

// UnsupportedIntent marks an intent that no tool owns.
func UnsupportedIntent(name string) Result {
	return Result{Kind: KindUnsupported, Detail: name}
}

// UnhandledIntent marks an intent the dispatcher could not route at all.
func UnhandledIntent(name string) Result {
	return Result{Kind: KindUnhandled, Detail: name}
}

// Errorf builds a failure result.
func Errorf(format string, args ...any) Result {
	return Result{Kind: KindError, Detail: fmt.Sprintf(format, args...)}
}

// ExecutionError marks a failure caught at the registry boundary, i.e. a
// panicking or misbehaving handler that was contained.
func ExecutionError(detail string) Result {
	return Result{Kind: KindError, Code: "execution_error", Detail: detail}
}

// Exit builds the terminate-the-loop result.
func Exit() Result {
	return Result{Kind: KindExit}
}

// Failed reports whether the result represents a failure. Clarification and
// unsupported outcomes are not failures.
func (r Result) Failed() bool {
	return r.Kind == KindError
}

func (r Result) code() string {
	if r.Code != "" {
		return r.Code
	}
	switch r.Kind {
	case KindClarification:
		return "clarification_needed"
	case KindUnsupported:
		return "unsupported_intent"
	case KindUnhandled:
		return "unhandled_intent"
	case KindError:
		return "error"
	}
	return ""
}

// String renders the sentinel form: "error: ...", "clarification_needed: ...",
// "unsupported_intent: ...", "exit", or the plain success detail.
func (r Result) String() string {
	if r.Kind == KindExit {
		return "exit"
	}
	code := r.code()
	switch {
	case code == "":
		return r.Detail
	case r.Detail == "":
		return code
	default:
		return code + ": " + r.Detail
	}
}
