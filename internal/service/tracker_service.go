package service

import (
	"context"
	"fmt"

	"film-ticket-desk/internal/cache"
	"film-ticket-desk/internal/model"
	"film-ticket-desk/internal/queue"
	apperrors "film-ticket-desk/pkg/app_errors"
	"film-ticket-desk/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TrackerService 持有每部電影的售票狀態。非並發安全：只能由 dispatcher 的事件迴圈呼叫
type TrackerService interface {
	// 以載入的電影建立或更新狀態
	Track(film *model.Film) *model.FilmState
	State(filmID int) (*model.FilmState, bool)
	// 購買一張票，回傳新的剩餘票數
	Buy(ctx context.Context, filmID int) (int, error)
	// 刪除已售完的電影並清除 override
	DeleteSoldOut(ctx context.Context, filmID int) error
	// 將 PATCH 回應寫回狀態與 override；回傳是否有套用
	ApplyPatchResult(ctx context.Context, patch *model.TicketsSoldPatch, film *model.Film) bool
	// 本次執行期間是否已從側邊欄刪除
	IsDeleted(filmID int) bool
}

type TrackerServiceImpl struct {
	store     cache.OverrideStore
	queue     queue.PatchQueue
	reconcile bool

	states  map[int]*model.FilmState
	deleted map[int]bool
}

func NewTrackerService(store cache.OverrideStore, patchQueue queue.PatchQueue, reconcile bool) TrackerService {
	return &TrackerServiceImpl{
		store:     store,
		queue:     patchQueue,
		reconcile: reconcile,
		states:    make(map[int]*model.FilmState),
		deleted:   make(map[int]bool),
	}
}

func (s *TrackerServiceImpl) Track(film *model.Film) *model.FilmState {
	state, ok := s.states[film.ID]
	if !ok {
		state = model.NewFilmState(*film)
		s.states[film.ID] = state
		return state
	}

	remaining := film.Remaining()
	// 本次執行已購買過的票數不會被較舊的載入結果加回去
	if state.Revision > 0 && remaining > state.Remaining {
		remaining = state.Remaining
	}
	state.Film = *film
	state.Remaining = remaining
	return state
}

func (s *TrackerServiceImpl) State(filmID int) (*model.FilmState, bool) {
	state, ok := s.states[filmID]
	return state, ok
}

func (s *TrackerServiceImpl) IsDeleted(filmID int) bool {
	return s.deleted[filmID]
}

func (s *TrackerServiceImpl) Buy(ctx context.Context, filmID int) (int, error) {
	state, ok := s.states[filmID]
	// 已刪除的電影不再回到 Available，也不會寫回 override
	if !ok || s.deleted[filmID] {
		return 0, apperrors.ErrFilmNotFound
	}
	if state.Remaining <= 0 {
		return 0, apperrors.ErrSoldOut
	}

	state.Remaining--
	state.Revision++

	log := logger.WithComponent("tracker").With(zap.Int("film_id", filmID), zap.Int("remaining", state.Remaining))

	if err := s.store.Set(ctx, filmID, state.Remaining); err != nil {
		log.Error("write override failed", zap.Error(err))
	}

	patch := &model.TicketsSoldPatch{
		RequestID:   uuid.New().String(),
		FilmID:      filmID,
		TicketsSold: state.TicketsSold(),
		Revision:    state.Revision,
	}
	state.LastRequestID = patch.RequestID
	if err := s.queue.PublishPatch(ctx, patch); err != nil {
		// 本地扣票不回滾
		log.Error("publish patch failed", zap.String("request_id", patch.RequestID), zap.Error(err))
	}

	return state.Remaining, nil
}

func (s *TrackerServiceImpl) DeleteSoldOut(ctx context.Context, filmID int) error {
	state, ok := s.states[filmID]
	if !ok {
		return apperrors.ErrFilmNotFound
	}
	if !state.Status().CanTransitionTo(model.FilmStatusDeleted) {
		return apperrors.ErrNotSoldOut
	}

	if err := s.store.Delete(ctx, filmID); err != nil {
		return fmt.Errorf("delete override: %w", err)
	}
	delete(s.states, filmID)
	s.deleted[filmID] = true
	return nil
}

func (s *TrackerServiceImpl) ApplyPatchResult(ctx context.Context, patch *model.TicketsSoldPatch, film *model.Film) bool {
	if !s.reconcile {
		return false
	}
	state, ok := s.states[patch.FilmID]
	if !ok || patch.Revision != state.Revision || patch.RequestID != state.LastRequestID {
		return false
	}

	state.Film = *film
	state.Remaining = film.Remaining()
	if state.Remaining < 0 {
		state.Remaining = 0
	}
	if err := s.store.Set(ctx, patch.FilmID, state.Remaining); err != nil {
		logger.WithComponent("tracker").Error("reconcile override failed",
			zap.Int("film_id", patch.FilmID), zap.Error(err))
	}
	return true
}
