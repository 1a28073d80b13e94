package mocks

import (
	"context"

	"film-ticket-desk/internal/dispatch"
	"film-ticket-desk/internal/model"

	"github.com/stretchr/testify/mock"
)

type CommanderMock struct {
	mock.Mock
}

func NewCommanderMock() *CommanderMock {
	return &CommanderMock{}
}

func (m *CommanderMock) Do(ctx context.Context, cmd dispatch.Command) (model.Screen, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(model.Screen), args.Error(1)
}

func (m *CommanderMock) Snapshot() model.Screen {
	args := m.Called()
	return args.Get(0).(model.Screen)
}
