package queue

import (
	"context"

	"film-ticket-desk/internal/model"
)

type Delivery struct {
	Data *model.TicketsSoldPatch
	Ack  func()
	Nack func(requeue bool)
}

type PatchQueue interface {
	// 發送 PATCH 任務到隊列
	PublishPatch(ctx context.Context, patch *model.TicketsSoldPatch) error
	// 訂閱 PATCH 隊列
	SubscribePatches(ctx context.Context) (<-chan Delivery, error)
}

type PatchQueueImpl struct {
	// 使用 Go channel 作為程序內隊列
	ch chan *model.TicketsSoldPatch
}

func NewPatchQueue(bufferSize int) PatchQueue {
	return &PatchQueueImpl{
		ch: make(chan *model.TicketsSoldPatch, bufferSize),
	}
}

func (q *PatchQueueImpl) PublishPatch(ctx context.Context, patch *model.TicketsSoldPatch) error {
	select {
	case q.ch <- patch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *PatchQueueImpl) SubscribePatches(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case patch, ok := <-q.ch:
				if !ok {
					return
				}

				d := Delivery{
					Data: patch,
					Ack:  func() {},
					Nack: func(requeue bool) {
						if requeue {
							go func() { q.ch <- patch }()
						}
					},
				}
				select {
				case out <- d:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
