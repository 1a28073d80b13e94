package service_test

import (
	"context"
	"testing"
	"time"

	"film-ticket-desk/internal/model"
	"film-ticket-desk/internal/queue"

	"github.com/stretchr/testify/require"
)

func newFilm(id, capacity, sold int) *model.Film {
	return &model.Film{
		ID:          id,
		Title:       "Film",
		Runtime:     90,
		Showtime:    "08:00PM",
		Capacity:    capacity,
		TicketsSold: sold,
	}
}

// 從 memory queue 取出下一個 PATCH
func nextPatch(t *testing.T, q queue.PatchQueue) *model.TicketsSoldPatch {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	msgs, err := q.SubscribePatches(ctx)
	require.NoError(t, err)
	select {
	case d, ok := <-msgs:
		require.True(t, ok, "no patch published")
		return d.Data
	case <-ctx.Done():
		t.Fatal("timeout waiting for patch")
	}
	return nil
}
