//go:build integration

package consumer

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkaContainer "github.com/testcontainers/testcontainers-go/modules/kafka"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/Dindas01/THRIV/internal/events"
	persistence "github.com/Dindas01/THRIV/internal/persistence/postgres"
)

func TestKafkaMealLoggedUpdatesDailyStats(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
	defer cancel()

	kafkaC, err := kafkaContainer.RunContainer(ctx, testcontainers.WithEnv(map[string]string{
		"KAFKA_AUTO_CREATE_TOPICS_ENABLE": "true",
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kafkaC.Terminate(context.Background()) })

	brokers, err := kafkaC.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	broker := brokers[0]

	pool := startPostgres(t, ctx)
	repo := persistence.NewRepository(pool)
	handler := NewStatsHandler(repo)

	topic := "meal_events"
	conn, err := kafka.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     []string{broker},
		GroupID:     "stats-projector-integration",
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
	})
	defer reader.Close()

	consumerCtx, cancelConsumer := context.WithCancel(ctx)
	defer cancelConsumer()

	proc := NewProcessor(reader, handler)
	go func() {
		_ = proc.Run(consumerCtx)
	}()

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Topic:                  topic,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	defer writer.Close()

	tenantID := uuid.NewString()
	userID := uuid.NewString()
	evt := events.MealLogged{
		MealID:   uuid.NewString(),
		TenantID: tenantID,
		UserID:   userID,
		Name:     "Integration Bowl",
		MealType: "lunch",
		Day:      "2026-08-30",
		Calories: 420,
		ProteinG: 28.5,
		CarbsG:   45.0,
		FatG:     12.3,
		LoggedAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(evt)
	require.NoError(t, err)

	// Same delivery: redelivered frame must not double the totals.
	framed := confluentFrame(17, payload)
	for i := 0; i < 2; i++ {
		err = writer.WriteMessages(context.Background(), kafka.Message{
			Key:   []byte(tenantID + ":" + userID),
			Value: framed,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte("meal.logged")},
				{Key: "tenant_id", Value: []byte(tenantID)},
				{Key: "schema_subject", Value: []byte("meal_events-value")},
			},
		})
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		stats, err := repo.GetDailyStats(ctx, tenantID, userID, evt.Day)
		if err != nil || stats == nil {
			return false
		}
		return stats.CaloriesConsumed == 420
	}, 60*time.Second, 500*time.Millisecond)

	stats, err := repo.GetDailyStats(ctx, tenantID, userID, evt.Day)
	require.NoError(t, err)
	require.NotNil(t, stats)
	require.Equal(t, 420, stats.CaloriesConsumed)
	require.InDelta(t, 28.5, stats.ProteinConsumed, 1e-9)
	require.InDelta(t, 45.0, stats.CarbsConsumed, 1e-9)
	require.InDelta(t, 12.3, stats.FatConsumed, 1e-9)
}

func confluentFrame(schemaID uint32, payload []byte) []byte {
	framed := make([]byte, 5+len(payload))
	framed[0] = 0
	binary.BigEndian.PutUint32(framed[1:5], schemaID)
	copy(framed[5:], payload)
	return framed
}

func startPostgres(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("thriv"),
		postgrescontainer.WithUsername("thriv"),
		postgrescontainer.WithPassword("thriv"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(context.Background()) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	deadline := time.Now().Add(30 * time.Second)
	for {
		probe, probeErr := pgxpool.New(ctx, connStr)
		if probeErr == nil {
			probeErr = probe.Ping(ctx)
			probe.Close()
			if probeErr == nil {
				break
			}
		}
		require.False(t, time.Now().After(deadline), "postgres did not become ready: %v", probeErr)
		time.Sleep(time.Second)
	}

	migrationsDir := integrationPath(t, "../../db/postgres/migrations")
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.up.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	sort.Strings(files)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	for _, file := range files {
		contents, readErr := os.ReadFile(file)
		require.NoError(t, readErr)
		_, execErr := pool.Exec(ctx, string(contents))
		require.NoError(t, execErr)
	}
	return pool
}

func integrationPath(t *testing.T, rel string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), rel)
}
