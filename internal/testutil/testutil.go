// Package testutil 測試共用的 Redis 與 Postgres 初始化
package testutil

import (
	"context"
	"fmt"
	"log"
	"testing"

	"film-ticket-desk/config"
	"film-ticket-desk/internal/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// SetupDatabase 連到測試 DB (5433 port)，需要外部的 Postgres
func SetupDatabase() (*pgxpool.Pool, func(), error) {
	cfg := config.LoadTestConfig()

	testDB, err := database.InitDatabase(context.Background(), &cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize test database: %v", err)
	}

	log.Println("Test database connected successfully")

	cleanup := func() {
		testDB.Close()
		log.Println("Test database closed")
	}

	return testDB, cleanup, nil
}

// SetupRedis 啟動 in-process 的 miniredis，並透過 InitRedis 連線
func SetupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	rdb, err := database.InitRedis(context.Background(), &config.RedisConfig{
		Host: mr.Host(),
		Port: mr.Port(),
	})
	if err != nil {
		t.Fatalf("failed to initialize redis: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })

	return rdb, mr
}
