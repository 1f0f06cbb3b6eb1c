package model

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation failed.
type Kind string

const (
	KindValidation Kind = "validation" // rejected before any remote call
	KindTransport  Kind = "transport"  // network, timeout or unreadable response
	KindProvider   Kind = "provider"   // the provider answered with an error payload
	KindStore      Kind = "store"      // the durable store could not be written
	KindBusy       Kind = "busy"       // another mutation on the same key is outstanding
)

var (
	ErrValidation = errors.New("validation failed")
	ErrTransport  = errors.New("transport failed")
	ErrProvider   = errors.New("provider rejected request")
	ErrStore      = errors.New("store write failed")
	ErrBusy       = errors.New("operation already in flight")

	ErrEmptyName    = errors.New("task name is empty")
	ErrInvalidDate  = errors.New("task date is invalid")
	ErrNoSubscriber = errors.New("no subscriber id registered")
)

var kindErrors = map[Kind]error{
	KindValidation: ErrValidation,
	KindTransport:  ErrTransport,
	KindProvider:   ErrProvider,
	KindStore:      ErrStore,
	KindBusy:       ErrBusy,
}

// Failure is the typed error returned by the engine and by schedulers.
type Failure struct {
	Kind Kind
	Op   string
	Err  error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("%s: %s", f.Op, kindErrors[f.Kind])
	}
	return fmt.Sprintf("%s: %s: %v", f.Op, f.Kind, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Is matches the sentinel for the failure's kind, so errors.Is(err, ErrBusy) works.
func (f *Failure) Is(target error) bool {
	return kindErrors[f.Kind] == target
}

// Fail is shorthand for building a Failure.
func Fail(kind Kind, op string, err error) *Failure {
	return &Failure{Kind: kind, Op: op, Err: err}
}

// KindOf reports the Kind of err, or "" when err is not a Failure.
func KindOf(err error) Kind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}
