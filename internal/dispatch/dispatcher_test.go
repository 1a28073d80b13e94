package dispatch_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"film-ticket-desk/internal/cache"
	"film-ticket-desk/internal/dispatch"
	"film-ticket-desk/internal/model"
	"film-ticket-desk/internal/queue"
	"film-ticket-desk/internal/service"
	"film-ticket-desk/internal/view"
	"film-ticket-desk/internal/worker"
	apperrors "film-ticket-desk/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFilms 模擬 films API，PATCH 直接覆寫 tickets_sold
type fakeFilms struct {
	mu      sync.Mutex
	films   []*model.Film
	patches []model.UpdateTicketsSoldRequest
	// gates 讓測試控制 GetFilm 何時回應
	gates map[int]chan struct{}
	// 為 true 時 PATCH 失敗且不改變伺服器資料
	rejectPatches bool
}

func newFakeFilms(films ...model.Film) *fakeFilms {
	f := &fakeFilms{gates: make(map[int]chan struct{})}
	for i := range films {
		film := films[i]
		f.films = append(f.films, &film)
	}
	return f
}

func (f *fakeFilms) ListFilms(ctx context.Context) ([]*model.Film, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.Film, 0, len(f.films))
	for _, film := range f.films {
		c := *film
		out = append(out, &c)
	}
	return out, nil
}

func (f *fakeFilms) GetFilm(ctx context.Context, id int) (*model.Film, error) {
	f.mu.Lock()
	gate := f.gates[id]
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, film := range f.films {
		if film.ID == id {
			c := *film
			return &c, nil
		}
	}
	return nil, apperrors.ErrUpstream
}

func (f *fakeFilms) UpdateTicketsSold(ctx context.Context, id int, ticketsSold int) (*model.Film, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches = append(f.patches, model.UpdateTicketsSoldRequest{TicketsSold: ticketsSold})
	if f.rejectPatches {
		return nil, apperrors.ErrUpstream
	}
	for _, film := range f.films {
		if film.ID == id {
			film.TicketsSold = ticketsSold
			c := *film
			return &c, nil
		}
	}
	return nil, apperrors.ErrUpstream
}

func (f *fakeFilms) gate(id int) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[id] = ch
	return ch
}

func (f *fakeFilms) patchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.patches)
}

type harness struct {
	d     *dispatch.Dispatcher
	films *fakeFilms
	store *cache.MemoryOverrideStoreImpl
}

func startDispatcher(t *testing.T, films *fakeFilms, store *cache.MemoryOverrideStoreImpl) *harness {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	q := queue.NewPatchQueue(16)
	catalog := service.NewCatalogService(films, store)
	tracker := service.NewTrackerService(store, q, true)
	d := dispatch.NewDispatcher(catalog, tracker, view.NewRenderer())

	w := worker.NewPatchWorker(films, q, d)
	require.NoError(t, w.Start(ctx))
	go d.Run(ctx)

	return &harness{d: d, films: films, store: store}
}

func (h *harness) do(t *testing.T, cmd dispatch.Command) (model.Screen, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return h.d.Do(ctx, cmd)
}

func (h *harness) load(t *testing.T, firstFilmID int) model.Screen {
	t.Helper()
	_, err := h.do(t, dispatch.LoadFilm{FilmID: firstFilmID})
	require.NoError(t, err)
	screen, err := h.do(t, dispatch.LoadCatalog{})
	require.NoError(t, err)
	return screen
}

func gilaFilms() *fakeFilms {
	return newFakeFilms(
		model.Film{ID: 1, Title: "The Giant Gila Monster", Runtime: 108, Showtime: "04:00PM", Capacity: 10, TicketsSold: 8},
		model.Film{ID: 2, Title: "Manos: The Hands Of Fate", Runtime: 118, Showtime: "06:45PM", Capacity: 20, TicketsSold: 3},
	)
}

func TestDispatcher_PurchaseScenario(t *testing.T) {
	store := cache.NewMemoryOverrideStore()
	h := startDispatcher(t, gilaFilms(), store)

	screen := h.load(t, 1)
	require.NotNil(t, screen.Detail)
	assert.Equal(t, "Available Tickets: 2", screen.Detail.TicketsText)
	require.Len(t, screen.Sidebar, 2)

	screen, err := h.do(t, dispatch.BuyTicket{FilmID: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, screen.Detail.Remaining)
	assert.Equal(t, "Buy Ticket", screen.Detail.ButtonLabel)
	assert.False(t, screen.Detail.ButtonDisabled)
	entry, _ := screen.FindEntry(1)
	assert.False(t, entry.SoldOut)

	screen, err = h.do(t, dispatch.BuyTicket{FilmID: 1})
	require.NoError(t, err)
	assert.Equal(t, 0, screen.Detail.Remaining)
	assert.Equal(t, "Sold Out", screen.Detail.ButtonLabel)
	assert.True(t, screen.Detail.ButtonDisabled)
	entry, _ = screen.FindEntry(1)
	assert.True(t, entry.SoldOut)
	assert.True(t, entry.Deletable)

	screen, err = h.do(t, dispatch.BuyTicket{FilmID: 1})
	assert.ErrorIs(t, err, apperrors.ErrSoldOut)
	assert.Equal(t, model.AlertSoldOut, screen.Alert)
	assert.Equal(t, 0, screen.Detail.Remaining)

	require.Eventually(t, func() bool { return h.films.patchCount() == 2 }, time.Second, 10*time.Millisecond)

	screen, err = h.do(t, dispatch.DeleteSoldOut{FilmID: 1})
	require.NoError(t, err)
	assert.Empty(t, screen.Alert)
	require.Len(t, screen.Sidebar, 1)
	assert.Equal(t, 2, screen.Sidebar[0].FilmID)
	assert.Empty(t, store.Keys())
}

func TestDispatcher_PatchCarriesTicketsSold(t *testing.T) {
	h := startDispatcher(t, gilaFilms(), cache.NewMemoryOverrideStore())
	h.load(t, 2)

	_, err := h.do(t, dispatch.BuyTicket{FilmID: 2})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return h.films.patchCount() == 1 }, time.Second, 10*time.Millisecond)
	h.films.mu.Lock()
	assert.Equal(t, 4, h.films.patches[0].TicketsSold)
	h.films.mu.Unlock()
}

func TestDispatcher_SoldOutSurvivesRestart(t *testing.T) {
	store := cache.NewMemoryOverrideStore()
	// 重啟後伺服器資料仍是 8 張已售出，售完狀態來自 override
	films := gilaFilms()
	h := startDispatcher(t, films, store)
	h.load(t, 1)
	_, err := h.do(t, dispatch.BuyTicket{FilmID: 1})
	require.NoError(t, err)
	_, err = h.do(t, dispatch.BuyTicket{FilmID: 1})
	require.NoError(t, err)

	restarted := startDispatcher(t, gilaFilms(), store)
	screen := restarted.load(t, 1)

	assert.Equal(t, 0, screen.Detail.Remaining)
	assert.True(t, screen.Detail.ButtonDisabled)
	entry, ok := screen.FindEntry(1)
	require.True(t, ok)
	assert.True(t, entry.SoldOut)
	assert.Equal(t, 0, restarted.films.patchCount())
}

func TestDispatcher_DeleteOnlyTouchesOneFilm(t *testing.T) {
	store := cache.NewMemoryOverrideStore()
	films := newFakeFilms(
		model.Film{ID: 1, Title: "A", Capacity: 1, TicketsSold: 0},
		model.Film{ID: 2, Title: "B", Capacity: 5, TicketsSold: 0},
	)
	h := startDispatcher(t, films, store)
	h.load(t, 1)

	_, err := h.do(t, dispatch.BuyTicket{FilmID: 1})
	require.NoError(t, err)
	_, err = h.do(t, dispatch.BuyTicket{FilmID: 2})
	require.NoError(t, err)

	_, err = h.do(t, dispatch.DeleteSoldOut{FilmID: 2})
	assert.ErrorIs(t, err, apperrors.ErrNotSoldOut)

	screen, err := h.do(t, dispatch.DeleteSoldOut{FilmID: 1})
	require.NoError(t, err)
	require.Len(t, screen.Sidebar, 1)
	assert.Equal(t, []string{"movie_2_tickets"}, store.Keys())

	// 同一次執行中重新載入側邊欄，已刪除的電影不會回來
	screen, err = h.do(t, dispatch.LoadCatalog{})
	require.NoError(t, err)
	require.Len(t, screen.Sidebar, 1)
	assert.Equal(t, 2, screen.Sidebar[0].FilmID)
}

func TestDispatcher_DeletedFilmStaysDeleted(t *testing.T) {
	store := cache.NewMemoryOverrideStore()
	films := newFakeFilms(
		model.Film{ID: 1, Title: "A", Capacity: 1, TicketsSold: 0},
		model.Film{ID: 2, Title: "B", Capacity: 5, TicketsSold: 0},
	)
	films.rejectPatches = true
	h := startDispatcher(t, films, store)
	h.load(t, 1)

	_, err := h.do(t, dispatch.BuyTicket{FilmID: 1})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return h.films.patchCount() == 1 }, time.Second, 10*time.Millisecond)

	_, err = h.do(t, dispatch.DeleteSoldOut{FilmID: 1})
	require.NoError(t, err)

	// 伺服器仍回報 1 張可售，但電影已從本次執行中移除
	screen, err := h.do(t, dispatch.SelectFilm{FilmID: 1})
	assert.ErrorIs(t, err, apperrors.ErrFilmNotFound)
	_, ok := screen.FindEntry(1)
	assert.False(t, ok)
	assert.NotEqual(t, "Available Tickets: 1", screen.Detail.TicketsText)

	_, err = h.do(t, dispatch.BuyTicket{FilmID: 1})
	assert.ErrorIs(t, err, apperrors.ErrFilmNotFound)
	assert.Empty(t, store.Keys())
	assert.Equal(t, 1, h.films.patchCount())
}

func TestDispatcher_SelectFilm(t *testing.T) {
	h := startDispatcher(t, gilaFilms(), cache.NewMemoryOverrideStore())
	h.load(t, 1)

	screen, err := h.do(t, dispatch.SelectFilm{FilmID: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, screen.Detail.FilmID)
	assert.Equal(t, "Available Tickets: 17", screen.Detail.TicketsText)

	_, err = h.do(t, dispatch.SelectFilm{FilmID: 99})
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}

func TestDispatcher_StaleFetchDoesNotOverwriteSelection(t *testing.T) {
	films := gilaFilms()
	gate := films.gate(1)
	h := startDispatcher(t, films, cache.NewMemoryOverrideStore())

	require.NoError(t, h.d.Boot(context.Background(), 1))

	screen, err := h.do(t, dispatch.SelectFilm{FilmID: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, screen.Detail.FilmID)

	require.Eventually(t, func() bool { return len(h.d.Snapshot().Sidebar) == 2 }, time.Second, 10*time.Millisecond)

	// 只有被擋住的那次請求會帶回新標題
	h.films.mu.Lock()
	h.films.films[0].Title = "The Giant Gila Monster (Restored)"
	h.films.mu.Unlock()
	close(gate)

	require.Eventually(t, func() bool {
		entry, ok := h.d.Snapshot().FindEntry(1)
		return ok && entry.Title == "The Giant Gila Monster (Restored)"
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, 2, h.d.Snapshot().Detail.FilmID)
}

func TestDispatcher_BuyUnknownFilm(t *testing.T) {
	h := startDispatcher(t, gilaFilms(), cache.NewMemoryOverrideStore())
	_, err := h.do(t, dispatch.BuyTicket{FilmID: 1})
	assert.ErrorIs(t, err, apperrors.ErrFilmNotFound)
}

func TestDispatcher_Subscribe(t *testing.T) {
	h := startDispatcher(t, gilaFilms(), cache.NewMemoryOverrideStore())
	updates := h.d.Subscribe()

	initial := <-updates
	assert.Nil(t, initial.Detail)

	h.load(t, 1)

	require.Eventually(t, func() bool {
		select {
		case s := <-updates:
			return s.Detail != nil && len(s.Sidebar) == 2
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestDispatcher_SubscribeDuringUpdatesSeesLatest(t *testing.T) {
	h := startDispatcher(t, gilaFilms(), cache.NewMemoryOverrideStore())
	h.load(t, 1)

	for i := 0; i < 20; i++ {
		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = h.do(t, dispatch.SelectFilm{FilmID: 1 + i%2})
		}()
		updates := h.d.Subscribe()
		<-done

		want := h.d.Snapshot().Version
		var got model.Screen
		require.Eventually(t, func() bool {
			select {
			case s := <-updates:
				got = s
			default:
			}
			return got.Version == want
		}, time.Second, 5*time.Millisecond)
	}
}

func TestDispatcher_StoppedDispatcher(t *testing.T) {
	store := cache.NewMemoryOverrideStore()
	q := queue.NewPatchQueue(1)
	films := gilaFilms()
	d := dispatch.NewDispatcher(service.NewCatalogService(films, store), service.NewTrackerService(store, q, true), view.NewRenderer())

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(stopped)
	}()
	updates := d.Subscribe()
	<-updates
	cancel()
	<-stopped

	_, ok := <-updates
	assert.False(t, ok)

	// 事件緩衝區仍有空間時 Do 會等待 done
	_, err := d.Do(context.Background(), dispatch.BuyTicket{FilmID: 1})
	assert.Error(t, err)
}
