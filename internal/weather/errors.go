package weather

import (
	"errors"
	"fmt"

	"github.com/PerryMapping/WeatherBot/internal/providers/arcgis"
	"github.com/PerryMapping/WeatherBot/internal/providers/nws"
)

// Kind classifies lookup failures into the outcomes a command reports to the user.
type Kind int

const (
	KindUnknown Kind = iota
	KindLookup
	KindInvalidLocation
	KindRedirect
	KindFieldMissing
)

func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "Unknown"
	case KindLookup:
		return "LookupError"
	case KindInvalidLocation:
		return "InvalidLocation"
	case KindRedirect:
		return "RedirectError"
	case KindFieldMissing:
		return "FieldMissing"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is returned by Service operations.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the Kind of err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// classify wraps a provider error with the Kind matching its sentinel.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	kind := KindUnknown
	switch {
	case errors.Is(err, arcgis.ErrNoCandidates), errors.Is(err, arcgis.ErrNoLocation),
		errors.Is(err, arcgis.ErrInvalidResponse):
		kind = KindLookup
	case errors.Is(err, nws.ErrInvalidLocation):
		kind = KindInvalidLocation
	case errors.Is(err, nws.ErrRedirect):
		kind = KindRedirect
	case errors.Is(err, nws.ErrFieldMissing):
		kind = KindFieldMissing
	}

	return &Error{Kind: kind, Op: op, Err: err}
}
