package mocks

import (
	"context"

	"film-ticket-desk/internal/model"

	"github.com/stretchr/testify/mock"
)

type FilmClientMock struct {
	mock.Mock
}

func NewFilmClientMock() *FilmClientMock {
	return &FilmClientMock{}
}

func (m *FilmClientMock) ListFilms(ctx context.Context) ([]*model.Film, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Film), args.Error(1)
}

func (m *FilmClientMock) GetFilm(ctx context.Context, id int) (*model.Film, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Film), args.Error(1)
}

func (m *FilmClientMock) UpdateTicketsSold(ctx context.Context, id int, ticketsSold int) (*model.Film, error) {
	args := m.Called(ctx, id, ticketsSold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Film), args.Error(1)
}
