package worker

import (
	"context"

	"film-ticket-desk/internal/filmapi"
	"film-ticket-desk/internal/model"
	"film-ticket-desk/internal/queue"
	"film-ticket-desk/pkg/logger"

	"go.uber.org/zap"
)

// PatchResultSink 接收 PATCH 結果 (dispatcher 會把結果送回事件迴圈)
type PatchResultSink interface {
	PatchApplied(ctx context.Context, patch *model.TicketsSoldPatch, film *model.Film)
	PatchFailed(ctx context.Context, patch *model.TicketsSoldPatch, err error)
}

type PatchWorker interface {
	// 訂閱 PATCH 隊列並送出 PATCH /films/:id
	Start(ctx context.Context) error
}

type PatchWorkerImpl struct {
	client filmapi.FilmClient
	queue  queue.PatchQueue
	sink   PatchResultSink
}

func NewPatchWorker(client filmapi.FilmClient, queue queue.PatchQueue, sink PatchResultSink) PatchWorker {
	return &PatchWorkerImpl{
		client: client,
		queue:  queue,
		sink:   sink,
	}
}

func (w *PatchWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.SubscribePatches(ctx)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			w.handle(ctx, msg)
		}
	}()
	return nil
}

// handle 失敗只記錄不重試，本地已扣的票不回滾
func (w *PatchWorkerImpl) handle(ctx context.Context, msg queue.Delivery) {
	patch := msg.Data
	log := logger.WithComponent("worker").With(
		zap.String("request_id", patch.RequestID),
		zap.Int("film_id", patch.FilmID),
		zap.Int("tickets_sold", patch.TicketsSold),
	)

	updated, err := w.client.UpdateTicketsSold(ctx, patch.FilmID, patch.TicketsSold)
	if err != nil {
		log.Error("Error updating tickets", zap.Error(err))
		msg.Nack(false)
		if w.sink != nil {
			w.sink.PatchFailed(ctx, patch, err)
		}
		return
	}

	log.Info("Updated movie", zap.Int("server_tickets_sold", updated.TicketsSold), zap.Int("capacity", updated.Capacity))
	msg.Ack()
	if w.sink != nil {
		w.sink.PatchApplied(ctx, patch, updated)
	}
}
