package app_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"film-ticket-desk/config"
	"film-ticket-desk/internal/app"
	"film-ticket-desk/internal/dispatch"
	"film-ticket-desk/internal/model"
	apperrors "film-ticket-desk/pkg/app_errors"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// filmsAPI 最小的 films REST server
type filmsAPI struct {
	mu      sync.Mutex
	films   map[int]*model.Film
	patches []int
}

func newFilmsAPI(t *testing.T) (*filmsAPI, string) {
	t.Helper()
	api := &filmsAPI{films: map[int]*model.Film{
		1: {ID: 1, Title: "The Giant Gila Monster", Runtime: 108, Showtime: "04:00PM", Capacity: 30, TicketsSold: 27},
		2: {ID: 2, Title: "Manos: The Hands Of Fate", Runtime: 118, Showtime: "06:45PM", Capacity: 50, TicketsSold: 50},
	}}
	srv := httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(srv.Close)
	return api, srv.URL
}

func (a *filmsAPI) serve(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if r.URL.Path == "/films" {
		list := []*model.Film{a.films[1], a.films[2]}
		_ = json.NewEncoder(w).Encode(list)
		return
	}

	id, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/films/"))
	film, ok := a.films[id]
	if err != nil || !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if r.Method == http.MethodPatch {
		var req model.UpdateTicketsSoldRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		film.TicketsSold = req.TicketsSold
		a.patches = append(a.patches, req.TicketsSold)
	}
	_ = json.NewEncoder(w).Encode(film)
}

func (a *filmsAPI) patchCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.patches)
}

func testConfig(baseURL string) *config.Config {
	cfg := config.LoadTestConfig()
	cfg.FilmsAPI.BaseURL = baseURL
	return cfg
}

func startApp(t *testing.T, cfg *config.Config) *app.App {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	a, err := app.New(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(a.Close)

	require.NoError(t, a.Start(ctx))
	require.Eventually(t, func() bool {
		s := a.Dispatcher.Snapshot()
		return s.Detail != nil && len(s.Sidebar) == 2
	}, 2*time.Second, 10*time.Millisecond)
	return a
}

func TestApp_MemoryBackends(t *testing.T) {
	api, url := newFilmsAPI(t)
	a := startApp(t, testConfig(url))

	screen := a.Dispatcher.Snapshot()
	assert.Equal(t, "Available Tickets: 3", screen.Detail.TicketsText)
	assert.True(t, screen.Sidebar[1].SoldOut)

	screen, err := a.Dispatcher.Do(context.Background(), dispatch.BuyTicket{FilmID: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, screen.Detail.Remaining)

	require.Eventually(t, func() bool { return api.patchCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	api.mu.Lock()
	assert.Equal(t, []int{28}, api.patches)
	api.mu.Unlock()
}

func TestApp_RedisBackends(t *testing.T) {
	mr := miniredis.RunT(t)
	api, url := newFilmsAPI(t)

	cfg := testConfig(url)
	cfg.Store.Backend = config.StoreRedis
	cfg.Queue.Backend = config.QueueRedis
	cfg.Redis = config.RedisConfig{Host: mr.Host(), Port: mr.Port()}

	a := startApp(t, cfg)

	_, err := a.Dispatcher.Do(context.Background(), dispatch.BuyTicket{FilmID: 1})
	require.NoError(t, err)

	value, err := mr.Get("movie_1_tickets")
	require.NoError(t, err)
	assert.Equal(t, "2", value)

	require.Eventually(t, func() bool { return api.patchCount() == 1 }, 5*time.Second, 10*time.Millisecond)
}

func TestApp_InvalidBackends(t *testing.T) {
	ctx := context.Background()

	cfg := testConfig("http://localhost:0")
	cfg.Store.Backend = "sqlite"
	_, err := app.New(ctx, cfg)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	cfg = testConfig("http://localhost:0")
	cfg.Queue.Backend = "kafka"
	_, err = app.New(ctx, cfg)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
