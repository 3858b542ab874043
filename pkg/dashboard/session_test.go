package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/kaanozd/above-cloud/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, handler http.Handler) (*Session, *httptest.Server, *clockwork.FakeClock) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC))
	session := NewSession(NewClient(server.URL, 2*time.Second), clock)
	return session, server, clock
}

func countingHandler(requests *atomic.Int64, inner http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		inner.ServeHTTP(w, r)
	})
}

func chatBackend(respond func(r *http.Request) models.ChatResponse) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(respond(r))
	})
	mux.HandleFunc("/api/weather", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(models.ForecastBundle{
			Current: models.CurrentConditions{Temperature: 18},
		})
	})
	return mux
}

func TestAsk_WithoutWeatherContextMakesNoCalls(t *testing.T) {
	var requests atomic.Int64
	session, _, _ := newTestSession(t, countingHandler(&requests, http.NotFoundHandler()))

	_, err := session.Ask(context.Background(), "Will it rain?")
	require.ErrorIs(t, err, ErrNoWeatherContext)
	assert.Zero(t, requests.Load(), "a missing forecast must fail before any network traffic")
}

func TestAsk_RecordsBoundedHistory(t *testing.T) {
	backend := chatBackend(func(r *http.Request) models.ChatResponse {
		var req models.ChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		return models.ChatResponse{Success: true, Answer: "answer to " + req.UserQuestion}
	})
	session, _, clock := newTestSession(t, backend)

	_, err := session.LoadWeather(context.Background(), 48.8566, 2.3522, nil)
	require.NoError(t, err)

	for i := 1; i <= 6; i++ {
		_, err := session.Ask(context.Background(), fmt.Sprintf("question %d", i))
		require.NoError(t, err)
		clock.Advance(time.Minute)
	}

	history := session.History()
	require.Len(t, history, 5, "oldest turn is evicted once the sixth arrives")
	assert.Equal(t, "question 2", history[0].Question)
	assert.Equal(t, "question 6", history[4].Question)
	assert.Equal(t, "answer to question 6", history[4].Answer)
	assert.True(t, history[0].Timestamp.Before(history[4].Timestamp))

	session.ClearHistory()
	assert.Empty(t, session.History())
}

func TestAsk_FailedTurnsLeaveHistoryUntouched(t *testing.T) {
	backend := chatBackend(func(_ *http.Request) models.ChatResponse {
		return models.ChatResponse{Success: false, Error: "model exploded"}
	})
	session, _, _ := newTestSession(t, backend)

	_, err := session.LoadWeather(context.Background(), 1, 2, nil)
	require.NoError(t, err)

	_, err = session.Ask(context.Background(), "hello")
	require.Error(t, err)
	assert.Empty(t, session.History())
}

func TestAsk_BackendUnreachable(t *testing.T) {
	backend := chatBackend(func(_ *http.Request) models.ChatResponse {
		return models.ChatResponse{}
	})
	session, server, _ := newTestSession(t, backend)

	_, err := session.LoadWeather(context.Background(), 1, 2, nil)
	require.NoError(t, err)

	// Kill the backend between loading weather and asking.
	server.Close()

	_, err = session.Ask(context.Background(), "hello")
	var advErr *AdviceError
	require.ErrorAs(t, err, &advErr)
	assert.Equal(t, KindBackendUnreachable, advErr.Kind)
	assert.Equal(t, "Backend connection error. Please try again later.", advErr.UserMessage())
}

func TestAsk_ProviderKeyError(t *testing.T) {
	backend := chatBackend(func(_ *http.Request) models.ChatResponse {
		return models.ChatResponse{Success: false, Error: "API key not configured"}
	})
	session, _, _ := newTestSession(t, backend)

	_, err := session.LoadWeather(context.Background(), 1, 2, nil)
	require.NoError(t, err)

	_, err = session.Ask(context.Background(), "hello")
	var advErr *AdviceError
	require.ErrorAs(t, err, &advErr)
	assert.Equal(t, KindProviderKey, advErr.Kind)
	assert.Equal(t, "Provider key error. Please try again later.", advErr.UserMessage())
}

func TestAsk_OtherBackendError(t *testing.T) {
	backend := chatBackend(func(_ *http.Request) models.ChatResponse {
		return models.ChatResponse{Success: false, Error: "model is overloaded"}
	})
	session, _, _ := newTestSession(t, backend)

	_, err := session.LoadWeather(context.Background(), 1, 2, nil)
	require.NoError(t, err)

	_, err = session.Ask(context.Background(), "hello")
	var advErr *AdviceError
	require.ErrorAs(t, err, &advErr)
	assert.Equal(t, KindOther, advErr.Kind)
	assert.Equal(t, "Error: model is overloaded", advErr.UserMessage())
}

func TestAsk_EmptyBackendErrorGetsFallbackMessage(t *testing.T) {
	backend := chatBackend(func(_ *http.Request) models.ChatResponse {
		return models.ChatResponse{Success: false}
	})
	session, _, _ := newTestSession(t, backend)

	_, err := session.LoadWeather(context.Background(), 1, 2, nil)
	require.NoError(t, err)

	_, err = session.Ask(context.Background(), "hello")
	var advErr *AdviceError
	require.ErrorAs(t, err, &advErr)
	assert.Equal(t, KindOther, advErr.Kind)
	assert.Equal(t, "the assistant could not answer", advErr.Message)
}

func TestSearchThenLoadWeather(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/locations/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Paris", r.URL.Query().Get("name"))
		json.NewEncoder(w).Encode(map[string][]models.PlaceCandidate{
			"results": {
				{Lat: 48.8566, Lon: 2.3522, Name: "Paris", Country: "France"},
				{Lat: 33.6609, Lon: -95.5555, Name: "Paris", Country: "United States"},
			},
		})
	})
	mux.HandleFunc("/api/weather", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.ForecastBundle{
			Latitude:  48.8566,
			Longitude: 2.3522,
			Current:   models.CurrentConditions{Temperature: 18},
		})
	})
	session, _, _ := newTestSession(t, mux)

	candidate, err := session.Search(context.Background(), "Paris")
	require.NoError(t, err)
	assert.Equal(t, "France", candidate.Country)

	bundle, err := session.LoadWeather(context.Background(), candidate.Lat, candidate.Lon, nil)
	require.NoError(t, err)
	assert.Equal(t, 18.0, bundle.Current.Temperature)
	assert.Same(t, bundle, session.Forecast())
}

func TestSearch_NoMatch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/locations/search", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"results": []}`))
	})
	session, _, _ := newTestSession(t, mux)

	_, err := session.Search(context.Background(), "Xyzzyplugh")
	assert.ErrorIs(t, err, ErrLocationNotFound)
}

func TestAutocomplete_ShortQuerySkipsNetwork(t *testing.T) {
	var requests atomic.Int64
	session, _, _ := newTestSession(t, countingHandler(&requests, http.NotFoundHandler()))

	candidates, fresh := session.Autocomplete(context.Background(), " P ")
	assert.True(t, fresh)
	assert.Empty(t, candidates)
	assert.Zero(t, requests.Load())
}

func TestAutocomplete_FailureYieldsEmptyList(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/locations/search", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	session, _, _ := newTestSession(t, mux)

	candidates, fresh := session.Autocomplete(context.Background(), "Paris")
	assert.True(t, fresh)
	assert.Empty(t, candidates)
}

func TestAutocomplete_StaleResponseIsDiscarded(t *testing.T) {
	firstArrived := make(chan struct{})
	releaseFirst := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("/api/locations/search", func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		if name == "Par" {
			close(firstArrived)
			<-releaseFirst
			json.NewEncoder(w).Encode(map[string][]models.PlaceCandidate{
				"results": {{Name: "Paraguay"}},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string][]models.PlaceCandidate{
			"results": {{Name: "Paris"}},
		})
	})
	session, _, _ := newTestSession(t, mux)

	type result struct {
		candidates []models.PlaceCandidate
		fresh      bool
	}
	firstDone := make(chan result, 1)
	go func() {
		candidates, fresh := session.Autocomplete(context.Background(), "Par")
		firstDone <- result{candidates, fresh}
	}()

	// Wait for the slow query to reach the backend, then race a newer
	// one past it.
	<-firstArrived
	candidates, fresh := session.Autocomplete(context.Background(), "Pari")
	require.True(t, fresh)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Paris", candidates[0].Name)

	close(releaseFirst)
	first := <-firstDone
	assert.False(t, first.fresh, "a response overtaken by a newer query must be discarded")
	assert.Nil(t, first.candidates)
}

func TestLoadWeather_ReplacesBundleWholesale(t *testing.T) {
	var temp atomic.Int64
	temp.Store(18)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/weather", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(models.ForecastBundle{
			Current: models.CurrentConditions{Temperature: float64(temp.Load())},
		})
	})
	session, _, _ := newTestSession(t, mux)

	_, err := session.LoadWeather(context.Background(), 1, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, 18.0, session.Forecast().Current.Temperature)

	temp.Store(25)
	_, err = session.LoadWeather(context.Background(), 3, 4, nil)
	require.NoError(t, err)
	assert.Equal(t, 25.0, session.Forecast().Current.Temperature)
}

func TestLoadWeather_BackendFailureKeepsNothing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/weather", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "failed to fetch forecast: weather service returned HTTP 503"}`))
	})
	session, _, _ := newTestSession(t, mux)

	_, err := session.LoadWeather(context.Background(), 1, 2, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weather service unreachable")
	assert.Nil(t, session.Forecast())
}
