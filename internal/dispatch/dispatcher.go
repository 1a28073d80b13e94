package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"film-ticket-desk/internal/model"
	"film-ticket-desk/internal/service"
	"film-ticket-desk/internal/view"
	apperrors "film-ticket-desk/pkg/app_errors"
	"film-ticket-desk/pkg/logger"

	"go.uber.org/zap"
)

// Commander 前端 (gin handler、TUI) 使用的介面
type Commander interface {
	// 送出指令並等待其效果反映到畫面上
	Do(ctx context.Context, cmd Command) (model.Screen, error)
	// 最新畫面
	Snapshot() model.Screen
}

// Dispatcher 單一事件迴圈：所有 tracker 與 renderer 的存取都在 Run 的 goroutine 中進行
type Dispatcher struct {
	catalog  service.CatalogService
	tracker  service.TrackerService
	renderer *view.Renderer

	events chan envelope
	done   chan struct{}
	runCtx context.Context

	// 只在事件迴圈中讀寫
	selectionSeq uint64
	renderedSeq  uint64

	mu       sync.RWMutex
	snapshot model.Screen

	subsMu sync.Mutex
	subs   []chan model.Screen
}

func NewDispatcher(catalog service.CatalogService, tracker service.TrackerService, renderer *view.Renderer) *Dispatcher {
	return &Dispatcher{
		catalog:  catalog,
		tracker:  tracker,
		renderer: renderer,
		events:   make(chan envelope, 64),
		done:     make(chan struct{}),
		snapshot: renderer.Screen(),
	}
}

// Run 處理事件直到 ctx 結束
func (d *Dispatcher) Run(ctx context.Context) {
	d.runCtx = ctx
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			return
		case env := <-d.events:
			res := d.handle(env)
			d.publish()
			if env.reply != nil && res != nil {
				res.screen = d.Snapshot()
				env.reply <- *res
			}
		}
	}
}

// Boot 啟動時同時載入第一部電影與側邊欄，不等待結果
func (d *Dispatcher) Boot(ctx context.Context, firstFilmID int) error {
	if err := d.post(ctx, envelope{event: LoadFilm{FilmID: firstFilmID}}); err != nil {
		return err
	}
	return d.post(ctx, envelope{event: LoadCatalog{}})
}

func (d *Dispatcher) Do(ctx context.Context, cmd Command) (model.Screen, error) {
	reply := make(chan result, 1)
	if err := d.post(ctx, envelope{event: cmd, reply: reply}); err != nil {
		return model.Screen{}, err
	}

	select {
	case res := <-reply:
		return res.screen, res.err
	case <-ctx.Done():
		return model.Screen{}, ctx.Err()
	case <-d.done:
		return model.Screen{}, apperrors.ErrDispatcherStopped
	}
}

func (d *Dispatcher) Snapshot() model.Screen {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snapshot.Clone()
}

// Subscribe 回傳畫面更新串流；只保留最新一個畫面，dispatcher 停止時關閉
func (d *Dispatcher) Subscribe() <-chan model.Screen {
	ch := make(chan model.Screen, 1)

	// 在 subsMu 內取畫面並註冊，之後的 publish 一定會送到這個 channel
	d.subsMu.Lock()
	defer d.subsMu.Unlock()
	ch <- d.Snapshot()
	select {
	case <-d.done:
		close(ch)
	default:
		d.subs = append(d.subs, ch)
	}
	return ch
}

// PatchApplied 與 PatchFailed 讓 dispatcher 作為 worker.PatchResultSink
func (d *Dispatcher) PatchApplied(ctx context.Context, patch *model.TicketsSoldPatch, film *model.Film) {
	_ = d.post(ctx, envelope{event: patchApplied{patch: patch, film: film}})
}

func (d *Dispatcher) PatchFailed(ctx context.Context, patch *model.TicketsSoldPatch, err error) {
	_ = d.post(ctx, envelope{event: patchFailed{patch: patch, err: err}})
}

func (d *Dispatcher) post(ctx context.Context, env envelope) error {
	select {
	case d.events <- env:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-d.done:
		return apperrors.ErrDispatcherStopped
	}
}

// handle 回傳 nil 表示回覆延後到非同步工作完成時
func (d *Dispatcher) handle(env envelope) *result {
	log := logger.WithComponent("dispatch")

	switch ev := env.event.(type) {
	case LoadFilm:
		d.fetchFilm(ev.FilmID, env.reply)
		return nil
	case SelectFilm:
		d.renderer.ClearAlert()
		d.fetchFilm(ev.FilmID, env.reply)
		return nil
	case LoadCatalog:
		d.fetchCatalog(env.reply)
		return nil
	case BuyTicket:
		return &result{err: d.buy(ev.FilmID)}
	case DeleteSoldOut:
		return &result{err: d.deleteSoldOut(ev.FilmID)}

	case filmLoaded:
		return &result{err: d.onFilmLoaded(ev)}
	case catalogLoaded:
		return &result{err: d.onCatalogLoaded(ev)}
	case patchApplied:
		if d.tracker.ApplyPatchResult(d.runCtx, ev.patch, ev.film) {
			if state, ok := d.tracker.State(ev.patch.FilmID); ok {
				d.refresh(state)
			}
		}
		return &result{}
	case patchFailed:
		log.Debug("patch failed, local state kept",
			zap.Int("film_id", ev.patch.FilmID), zap.Error(ev.err))
		return &result{}
	default:
		log.Warn("unknown event")
		return &result{err: apperrors.ErrInvalidInput}
	}
}

func (d *Dispatcher) fetchFilm(filmID int, reply chan result) {
	d.selectionSeq++
	seq := d.selectionSeq
	ctx := d.runCtx
	go func() {
		film, err := d.catalog.LoadFilm(ctx, filmID)
		_ = d.post(ctx, envelope{
			event: filmLoaded{filmID: filmID, seq: seq, film: film, err: err},
			reply: reply,
		})
	}()
}

func (d *Dispatcher) fetchCatalog(reply chan result) {
	ctx := d.runCtx
	go func() {
		films, err := d.catalog.LoadCatalog(ctx)
		_ = d.post(ctx, envelope{
			event: catalogLoaded{films: films, err: err},
			reply: reply,
		})
	}()
}

func (d *Dispatcher) onFilmLoaded(ev filmLoaded) error {
	log := logger.WithComponent("dispatch").With(zap.Int("film_id", ev.filmID))
	if ev.err != nil {
		log.Error("Error fetching movie", zap.Error(ev.err))
		return ev.err
	}
	if d.tracker.IsDeleted(ev.filmID) {
		log.Info("film was deleted, not rendered")
		return fmt.Errorf("film %d: %w", ev.filmID, apperrors.ErrFilmNotFound)
	}

	state := d.tracker.Track(ev.film)
	if ev.seq < d.renderedSeq {
		// 較新的選擇已經顯示，丟棄過期的結果
		log.Debug("stale film fetch dropped", zap.Uint64("seq", ev.seq), zap.Uint64("rendered_seq", d.renderedSeq))
		d.renderer.UpdateEntry(state)
		return nil
	}
	d.renderedSeq = ev.seq
	d.renderer.RenderDetail(state)
	d.renderer.UpdateEntry(state)
	return nil
}

func (d *Dispatcher) onCatalogLoaded(ev catalogLoaded) error {
	if ev.err != nil {
		logger.WithComponent("dispatch").Error("Error fetching movies", zap.Error(ev.err))
		return ev.err
	}

	states := make([]*model.FilmState, 0, len(ev.films))
	for _, film := range ev.films {
		if d.tracker.IsDeleted(film.ID) {
			continue
		}
		states = append(states, d.tracker.Track(film))
	}
	d.renderer.RenderSidebar(states)

	if id, ok := d.renderer.DetailFilmID(); ok {
		if state, ok := d.tracker.State(id); ok {
			d.renderer.RenderDetail(state)
		}
	}
	return nil
}

func (d *Dispatcher) buy(filmID int) error {
	d.renderer.ClearAlert()

	_, err := d.tracker.Buy(d.runCtx, filmID)
	if errors.Is(err, apperrors.ErrSoldOut) {
		d.renderer.Alert(model.AlertSoldOut)
		return err
	}
	if err != nil {
		return err
	}

	state, _ := d.tracker.State(filmID)
	d.refresh(state)
	return nil
}

func (d *Dispatcher) deleteSoldOut(filmID int) error {
	d.renderer.ClearAlert()

	if err := d.tracker.DeleteSoldOut(d.runCtx, filmID); err != nil {
		return err
	}
	d.renderer.RemoveEntry(filmID)
	return nil
}

// refresh 重繪詳細面板 (若正在顯示該電影) 與側邊欄項目
func (d *Dispatcher) refresh(state *model.FilmState) {
	if id, ok := d.renderer.DetailFilmID(); ok && id == state.Film.ID {
		d.renderer.RenderDetail(state)
	}
	d.renderer.UpdateEntry(state)
}

func (d *Dispatcher) publish() {
	screen := d.renderer.Screen()

	d.mu.Lock()
	changed := screen.Version != d.snapshot.Version
	d.snapshot = screen
	d.mu.Unlock()

	if !changed {
		return
	}

	d.subsMu.Lock()
	defer d.subsMu.Unlock()
	for _, ch := range d.subs {
		// 丟掉尚未讀取的舊畫面，只留最新
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- screen.Clone():
		default:
		}
	}
}

func (d *Dispatcher) stop() {
	d.subsMu.Lock()
	defer d.subsMu.Unlock()
	close(d.done)
	for _, ch := range d.subs {
		close(ch)
	}
	d.subs = nil
}
