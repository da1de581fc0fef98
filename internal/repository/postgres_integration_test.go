//go:build integration

package repository

import (
	"context"
	"database/sql"
	"os"
	"strconv"
	"sync"
	"testing"

	"festflow/common/config"
	"festflow/common/database"
	"festflow/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

// 获取测试数据库连接
func getTestDB(t *testing.T) *sql.DB {
	cfg := &config.DatabaseConfig{
		Host:     getEnv("TEST_DB_HOST", "localhost"),
		Port:     getEnvInt("TEST_DB_PORT", 5432),
		User:     getEnv("TEST_DB_USER", "postgres"),
		Password: getEnv("TEST_DB_PASSWORD", "postgres"),
		Database: getEnv("TEST_DB_NAME", "festflow_test"),
		SSLMode:  getEnv("TEST_DB_SSLMODE", "disable"),
		MaxConns: 20,
	}

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		t.Skipf("Skipping integration test: cannot connect to database: %v", err)
		return nil
	}
	require.NoError(t, CreateSchema(context.Background(), db))
	return db
}

// 并发条件自增不会超过 max_capacity
func TestIntegration_ConcurrentIncrementNeverOverflows(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()
	store := NewPostgresStore(db)

	roomID, err := store.CreateRoom(ctx, &domain.Room{
		BuildingName: "IT-" + strconv.Itoa(os.Getpid()), RoomNo: "1", Gender: domain.GenderMale, MaxCapacity: 3,
	})
	require.NoError(t, err)
	defer db.Exec(`DELETE FROM rooms WHERE room_id = $1`, roomID)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tx, err := store.BeginTx(ctx)
			if err != nil {
				return
			}
			defer tx.Rollback()
			if err := tx.IncrementOccupancy(ctx, roomID); err != nil {
				return
			}
			if tx.Commit() == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	room, err := store.GetRoom(ctx, roomID)
	require.NoError(t, err)
	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 3, room.CurrentOccupancy)
}
