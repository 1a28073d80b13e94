package service

import (
	"context"
	"errors"

	"film-ticket-desk/internal/cache"
	"film-ticket-desk/internal/filmapi"
	"film-ticket-desk/internal/model"
	apperrors "film-ticket-desk/pkg/app_errors"
	"film-ticket-desk/pkg/logger"

	"go.uber.org/zap"
)

type CatalogService interface {
	// 取得單一電影並套用本地 override
	LoadFilm(ctx context.Context, id int) (*model.Film, error)
	// 取得全部電影並套用本地 override
	LoadCatalog(ctx context.Context) ([]*model.Film, error)
}

type CatalogServiceImpl struct {
	client filmapi.FilmClient
	store  cache.OverrideStore
}

func NewCatalogService(client filmapi.FilmClient, store cache.OverrideStore) CatalogService {
	return &CatalogServiceImpl{client: client, store: store}
}

func (s *CatalogServiceImpl) LoadFilm(ctx context.Context, id int) (*model.Film, error) {
	film, err := s.client.GetFilm(ctx, id)
	if err != nil {
		return nil, err
	}
	s.mergeOverride(ctx, film)
	return film, nil
}

func (s *CatalogServiceImpl) LoadCatalog(ctx context.Context) ([]*model.Film, error) {
	films, err := s.client.ListFilms(ctx)
	if err != nil {
		return nil, err
	}
	for _, film := range films {
		s.mergeOverride(ctx, film)
	}
	return films, nil
}

// mergeOverride override 讀取失敗時沿用伺服器的數字
func (s *CatalogServiceImpl) mergeOverride(ctx context.Context, film *model.Film) {
	remaining, err := s.store.Get(ctx, film.ID)
	if errors.Is(err, apperrors.ErrOverrideNotFound) {
		return
	}
	if err != nil {
		logger.WithComponent("catalog").Warn("read override failed",
			zap.Int("film_id", film.ID), zap.Error(err))
		return
	}
	film.ApplyRemaining(remaining)
}
