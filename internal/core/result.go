package core

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedResponse = errors.New("malformed response")
	ErrUnknownTool       = errors.New("unknown tool")
	ErrInvalidArguments  = errors.New("invalid arguments")
	ErrNotFound          = errors.New("not found")
)

type ErrorKind string

const (
	KindUnknownTool    ErrorKind = "unknown_tool"
	KindToolExecution  ErrorKind = "tool_execution"
	KindResponseParse  ErrorKind = "response_parse"
	KindIterationLimit ErrorKind = "iteration_limit"
	KindBackend        ErrorKind = "backend"
	KindCanceled       ErrorKind = "canceled"
)

// Failure is the error half of a Result.
type Failure struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (f *Failure) Error() string {
	if f.Op == "" {
		return fmt.Sprintf("%s: %v", f.Kind, f.Err)
	}
	return fmt.Sprintf("%s %s: %v", f.Kind, f.Op, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Result is either Ok(text) or Error(kind, message). Text forms are derived
// only when the result is presented.
type Result struct {
	Text    string
	Failure *Failure
}

func Ok(text string) Result {
	return Result{Text: text}
}

func Fail(kind ErrorKind, op string, err error) Result {
	if err == nil {
		err = errors.New(string(kind))
	}
	return Result{Failure: &Failure{Kind: kind, Op: op, Err: err}}
}

func (r Result) OK() bool {
	return r.Failure == nil
}

// Kind returns the failure kind, or "" for a successful result.
func (r Result) Kind() ErrorKind {
	if r.Failure == nil {
		return ""
	}
	return r.Failure.Kind
}

// Observation renders a tool result for the reasoning backend. Failures
// carry the operation name and the error message.
func (r Result) Observation() string {
	if r.Failure == nil {
		return r.Text
	}
	switch r.Failure.Kind {
	case KindUnknownTool:
		return fmt.Sprintf("Unknown function: %s", r.Failure.Op)
	default:
		return fmt.Sprintf("Error executing %s: %v", r.Failure.Op, r.Failure.Err)
	}
}
