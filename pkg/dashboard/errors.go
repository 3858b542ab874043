package dashboard

import (
	"errors"
	"fmt"
)

// ErrNoWeatherContext means Ask was called before any forecast was
// loaded. Checked before any network traffic happens.
var ErrNoWeatherContext = errors.New("no weather data loaded; select a location first")

// ErrLocationNotFound means a place-name search matched nothing.
var ErrLocationNotFound = errors.New("location not found, please try another city name")

type AdviceErrorKind int

const (
	// KindBackendUnreachable covers transport-level failures reaching
	// the backend.
	KindBackendUnreachable AdviceErrorKind = iota

	// KindProviderKey covers authentication failures at the language
	// model provider.
	KindProviderKey

	// KindOther carries the raw backend error message.
	KindOther
)

// AdviceError is the tagged result of a failed advice request. Every
// failure path on the chat relay maps to exactly one kind; none escape
// unclassified.
type AdviceError struct {
	Kind    AdviceErrorKind
	Message string
}

func (e *AdviceError) Error() string {
	return e.Message
}

// UserMessage returns the display text for this failure. The UI shows
// it verbatim.
func (e *AdviceError) UserMessage() string {
	switch e.Kind {
	case KindBackendUnreachable:
		return "Backend connection error. Please try again later."
	case KindProviderKey:
		return "Provider key error. Please try again later."
	default:
		return fmt.Sprintf("Error: %s", e.Message)
	}
}
