package dashboard

import (
	"context"
	"errors"
	"time"
)

// Device geolocation defaults: prefer a precise fix, give up after 15
// seconds, and accept a cached fix up to five minutes old.
const (
	locateTimeout = 15 * time.Second
	locateMaxAge  = 5 * time.Minute
)

// Position is a device fix.
type Position struct {
	Lat      float64
	Lon      float64
	Accuracy float64
}

type PositionOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaximumAge   time.Duration
}

// PositionErrorCode mirrors the platform geolocation error codes.
type PositionErrorCode int

const (
	PositionPermissionDenied PositionErrorCode = 1
	PositionUnavailable      PositionErrorCode = 2
	PositionTimeout          PositionErrorCode = 3
)

// PositionError is the raw failure reported by a PositionProvider.
type PositionError struct {
	Code PositionErrorCode
}

func (e *PositionError) Error() string {
	switch e.Code {
	case PositionPermissionDenied:
		return "permission denied"
	case PositionUnavailable:
		return "position unavailable"
	case PositionTimeout:
		return "position timeout"
	default:
		return "position error"
	}
}

// PositionProvider wraps the platform's location API.
type PositionProvider interface {
	CurrentPosition(ctx context.Context, opts PositionOptions) (Position, error)
}

// User-facing location failures. Each platform error code maps to
// exactly one of these; anything unrecognized falls back to
// ErrLocationFailed.
var (
	ErrLocationUnsupported = errors.New("geolocation is not supported on this device; please enter a city name manually")
	ErrPermissionDenied    = errors.New("location access denied; please allow location permissions or enter a city name manually")
	ErrPositionUnavailable = errors.New("location information unavailable; please try entering a city name manually")
	ErrLocationTimeout     = errors.New("location request timed out; please check your connection and try again, or enter a city name manually")
	ErrLocationFailed      = errors.New("unable to get your location; please enter a city name manually")
)

// Locate requests the device's current position and translates platform
// failures into the user-facing error set above.
func Locate(ctx context.Context, provider PositionProvider) (Position, error) {
	if provider == nil {
		return Position{}, ErrLocationUnsupported
	}

	ctx, cancel := context.WithTimeout(ctx, locateTimeout)
	defer cancel()

	pos, err := provider.CurrentPosition(ctx, PositionOptions{
		HighAccuracy: true,
		Timeout:      locateTimeout,
		MaximumAge:   locateMaxAge,
	})
	if err != nil {
		return Position{}, translatePositionError(err)
	}
	return pos, nil
}

func translatePositionError(err error) error {
	var posErr *PositionError
	if errors.As(err, &posErr) {
		switch posErr.Code {
		case PositionPermissionDenied:
			return ErrPermissionDenied
		case PositionUnavailable:
			return ErrPositionUnavailable
		case PositionTimeout:
			return ErrLocationTimeout
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrLocationTimeout
	}
	return ErrLocationFailed
}
