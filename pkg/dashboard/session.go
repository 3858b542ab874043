package dashboard

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/kaanozd/above-cloud/internal/models"
)

const (
	// maxHistory bounds the chat history; oldest turns are evicted first.
	maxHistory = 5

	// minAutocompleteLength gates keystroke-driven suggestion calls.
	minAutocompleteLength = 2
)

// ChatTurn is one answered question.
type ChatTurn struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}

// Session holds one user's dashboard state: at most one current
// forecast bundle (replaced wholesale on each location change), the
// resolved place it belongs to, and a bounded chat history. History is
// never sent to the backend; each chat request is stateless from the
// backend's perspective.
type Session struct {
	client *Client
	clock  clockwork.Clock

	mu      sync.Mutex
	current *models.ForecastBundle
	place   *models.ResolvedPlace
	history []ChatTurn

	autocompleteSeq atomic.Uint64
}

func NewSession(client *Client, clock clockwork.Clock) *Session {
	return &Session{
		client: client,
		clock:  clock,
	}
}

// Search resolves a place name to its best candidate.
func (s *Session) Search(ctx context.Context, name string) (models.PlaceCandidate, error) {
	candidates, err := s.client.SearchLocations(ctx, name)
	if err != nil {
		return models.PlaceCandidate{}, err
	}
	if len(candidates) == 0 {
		return models.PlaceCandidate{}, ErrLocationNotFound
	}
	return candidates[0], nil
}

// Autocomplete fetches suggestions for a partial query. Queries shorter
// than two characters are skipped without a network call. Failures
// collapse to an empty list; a failed suggestion must never interrupt
// typing. The second return value is false when a newer query was
// issued while this one was in flight; callers must discard such stale
// results instead of assuming last-sent-equals-last-received.
func (s *Session) Autocomplete(ctx context.Context, text string) ([]models.PlaceCandidate, bool) {
	query := strings.TrimSpace(text)
	if len([]rune(query)) < minAutocompleteLength {
		return nil, true
	}

	seq := s.autocompleteSeq.Add(1)

	candidates, err := s.client.SearchLocations(ctx, query)
	if err != nil {
		candidates = nil
	}

	if s.autocompleteSeq.Load() != seq {
		return nil, false
	}
	return candidates, true
}

// LoadWeather fetches a fresh forecast bundle and makes it the
// session's current context, replacing any previous bundle wholesale.
func (s *Session) LoadWeather(ctx context.Context, lat, lon float64, place *models.ResolvedPlace) (*models.ForecastBundle, error) {
	bundle, err := s.client.GetForecast(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = bundle
	s.place = place
	s.mu.Unlock()

	return bundle, nil
}

// Forecast returns the current bundle, or nil when none is loaded.
func (s *Session) Forecast() *models.ForecastBundle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// ResolvePlace reverse-geocodes a coordinate pair through the backend.
func (s *Session) ResolvePlace(ctx context.Context, lat, lon float64) (models.ResolvedPlace, error) {
	return s.client.ReverseLocation(ctx, lat, lon)
}

// ResolveByIP is the explicit fallback after device geolocation fails.
// The embedding UI must ask the user before calling it.
func (s *Session) ResolveByIP(ctx context.Context) (models.IPLocation, error) {
	return s.client.IPLocation(ctx)
}

// Ask relays a question about the current forecast. Fails fast with
// ErrNoWeatherContext, issuing zero network calls, when no forecast is
// loaded. All other failures come back as *AdviceError.
func (s *Session) Ask(ctx context.Context, question string) (string, error) {
	s.mu.Lock()
	current := s.current
	place := s.place
	s.mu.Unlock()

	if current == nil {
		return "", ErrNoWeatherContext
	}

	resp, err := s.client.Chat(ctx, models.ChatRequest{
		WeatherData:  current,
		UserQuestion: question,
		Location:     place,
	})
	if err != nil {
		return "", &AdviceError{Kind: KindBackendUnreachable, Message: err.Error()}
	}

	if !resp.Success {
		return "", classifyBackendError(resp.Error)
	}

	s.recordTurn(question, resp.Answer)
	return resp.Answer, nil
}

// History returns a copy of the retained turns, oldest first.
func (s *Session) History() []ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ChatTurn, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}

func (s *Session) recordTurn(question, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, ChatTurn{
		Question:  question,
		Answer:    answer,
		Timestamp: s.clock.Now(),
	})
	if len(s.history) > maxHistory {
		s.history = s.history[len(s.history)-maxHistory:]
	}
}

// classifyBackendError maps a backend-reported failure into one of the
// advice error kinds. The mapping is total.
func classifyBackendError(message string) *AdviceError {
	if message == "" {
		message = "the assistant could not answer"
	}
	if strings.Contains(message, "API key") {
		return &AdviceError{Kind: KindProviderKey, Message: message}
	}
	return &AdviceError{Kind: KindOther, Message: message}
}
