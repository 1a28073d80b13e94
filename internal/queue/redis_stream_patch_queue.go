package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"film-ticket-desk/internal/model"
	"film-ticket-desk/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	StreamKey          = "films:patches"
	ConsumerGroupName  = "patch-workers"
	ConsumerNamePrefix = "worker"
)

// RedisStreamPatchQueueConfig 零值時使用預設
type RedisStreamPatchQueueConfig struct {
	ReadGroupBlockTime time.Duration // XReadGroup 阻塞時間
	ReadCount          int64
}

func defaultRedisStreamConfig() RedisStreamPatchQueueConfig {
	return RedisStreamPatchQueueConfig{
		ReadGroupBlockTime: 2 * time.Second,
		ReadCount:          10,
	}
}

type RedisStreamPatchQueueImpl struct {
	client       *redis.Client
	streamKey    string
	groupName    string
	consumerName string
	cfg          RedisStreamPatchQueueConfig
}

// NewRedisStreamPatchQueue consumerID 為空時自動產生；固定 consumerID 可在重啟後領回未 ack 的 PATCH
func NewRedisStreamPatchQueue(ctx context.Context, client *redis.Client, consumerID string, config *RedisStreamPatchQueueConfig) (PatchQueue, error) {
	if consumerID == "" {
		consumerID = uuid.New().String()
	}
	cfg := defaultRedisStreamConfig()
	if config != nil {
		if config.ReadGroupBlockTime > 0 {
			cfg.ReadGroupBlockTime = config.ReadGroupBlockTime
		}
		if config.ReadCount > 0 {
			cfg.ReadCount = config.ReadCount
		}
	}
	q := &RedisStreamPatchQueueImpl{
		client:       client,
		streamKey:    StreamKey,
		groupName:    ConsumerGroupName,
		consumerName: fmt.Sprintf("%s:%s", ConsumerNamePrefix, consumerID),
		cfg:          cfg,
	}
	if err := q.ensureConsumerGroup(ctx); err != nil {
		return nil, fmt.Errorf("ensure consumer group: %w", err)
	}
	return q, nil
}

func (q *RedisStreamPatchQueueImpl) ensureConsumerGroup(ctx context.Context) error {
	err := q.client.XGroupCreateMkStream(ctx, q.streamKey, q.groupName, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func (q *RedisStreamPatchQueueImpl) PublishPatch(ctx context.Context, patch *model.TicketsSoldPatch) error {
	patchJSON, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("marshal patch: %w", err)
	}
	_, err = q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.streamKey,
		ID:     "*",
		Values: map[string]interface{}{"patch": string(patchJSON)},
	}).Result()
	if err != nil {
		return fmt.Errorf("xadd: %w", err)
	}
	return nil
}

func (q *RedisStreamPatchQueueImpl) SubscribePatches(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)
	go func() {
		defer close(out)
		// 先投遞上次未 ack 的訊息，再讀新訊息 (">")
		q.replayPending(ctx, out)
		q.runReadLoop(ctx, out)
	}()
	return out, nil
}

// replayPending 每次最多讀 ReadCount 筆 pending，從上一批最後的 ID 繼續，直到讀不到為止
func (q *RedisStreamPatchQueueImpl) replayPending(ctx context.Context, out chan<- Delivery) {
	start := "0"
	for ctx.Err() == nil {
		lastID, ok := q.readAndDeliver(ctx, out, start)
		if !ok || lastID == "" {
			return
		}
		start = lastID
	}
}

func (q *RedisStreamPatchQueueImpl) runReadLoop(ctx context.Context, out chan<- Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			q.readAndDeliver(ctx, out, ">")
		}
	}
}

// readAndDeliver 回傳這批最後一筆訊息的 ID；讀取失敗或 ctx 結束時 ok 為 false
func (q *RedisStreamPatchQueueImpl) readAndDeliver(ctx context.Context, out chan<- Delivery, start string) (lastID string, ok bool) {
	args := &redis.XReadGroupArgs{
		Group:    q.groupName,
		Consumer: q.consumerName,
		Streams:  []string{q.streamKey, start},
		Count:    q.cfg.ReadCount,
	}
	if start == ">" {
		args.Block = q.cfg.ReadGroupBlockTime
	}
	streams, err := q.client.XReadGroup(ctx, args).Result()

	if errors.Is(err, redis.Nil) {
		return "", true
	}
	if err != nil {
		if ctx.Err() != nil {
			return "", false
		}
		logger.WithComponent("mq").Error("XReadGroup failed", zap.Error(err))
		select {
		case <-time.After(time.Second):
		case <-ctx.Done():
		}
		return "", false
	}

	for _, stream := range streams {
		if stream.Stream != q.streamKey {
			continue
		}
		for _, msg := range stream.Messages {
			lastID = msg.ID
			d := q.newDelivery(ctx, msg)
			if d == nil {
				continue
			}
			select {
			case out <- *d:
			case <-ctx.Done():
				return lastID, false
			}
		}
	}
	return lastID, true
}

// newDelivery 從 Redis 消息組裝 Delivery；無法解析的消息直接 ack 丟棄
func (q *RedisStreamPatchQueueImpl) newDelivery(ctx context.Context, msg redis.XMessage) *Delivery {
	log := logger.WithComponent("mq").With(zap.String("message_id", msg.ID))

	patchJSON, ok := msg.Values["patch"].(string)
	if !ok {
		log.Warn("invalid message: missing patch field")
		q.ack(ctx, msg.ID)
		return nil
	}
	var patch model.TicketsSoldPatch
	if err := json.Unmarshal([]byte(patchJSON), &patch); err != nil {
		log.Warn("unmarshal patch failed", zap.Error(err))
		q.ack(ctx, msg.ID)
		return nil
	}
	msgID := msg.ID
	return &Delivery{
		Data: &patch,
		Ack: func() {
			q.ack(ctx, msgID)
		},
		Nack: func(requeue bool) {
			if requeue {
				if err := q.PublishPatch(ctx, &patch); err != nil {
					log.Error("requeue failed", zap.Error(err))
					return
				}
			}
			q.ack(ctx, msgID)
		},
	}
}

func (q *RedisStreamPatchQueueImpl) ack(ctx context.Context, msgID string) {
	if err := q.client.XAck(ctx, q.streamKey, q.groupName, msgID).Err(); err != nil {
		logger.WithComponent("mq").Error("XAck failed", zap.String("message_id", msgID), zap.Error(err))
	}
}
