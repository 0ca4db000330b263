package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	// Create connection pool
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	// Create schema
	createSchema(t, pool)

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// createSchema creates the database schema for testing. Kept in sync with
// migrations/0001_init.up.sql.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS settings (
			key VARCHAR(255) PRIMARY KEY,
			value TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		INSERT INTO settings (key, value)
		VALUES ('vbucks_rate', '1.0')
		ON CONFLICT (key) DO NOTHING;

		CREATE TABLE IF NOT EXISTS vbucks_rate_history (
			id SERIAL PRIMARY KEY,
			rate DECIMAL(10, 2) NOT NULL,
			created_by INTEGER,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS fortnite_orders (
			id SERIAL PRIMARY KEY,
			user_id INTEGER,
			username VARCHAR(255) NOT NULL,
			offer_id VARCHAR(255) NOT NULL,
			item_name VARCHAR(255) NOT NULL,
			price BIGINT NOT NULL CHECK (price >= 0),
			is_bundle BOOLEAN NOT NULL DEFAULT FALSE,
			status VARCHAR(20) NOT NULL DEFAULT 'pending'
				CHECK (status IN ('pending', 'completed', 'failed')),
			metadata TEXT,
			error_message TEXT,
			payment_receipt TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_fortnite_orders_created_at ON fortnite_orders(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_fortnite_orders_status ON fortnite_orders(status);
	`

	_, err := pool.Exec(ctx, schema)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// SeedOrders inserts test order data with distinct created_at timestamps,
// oldest first, and returns the generated ids in insertion order. The last
// id is the newest order.
func SeedOrders(t *testing.T, pool *pgxpool.Pool) []int64 {
	t.Helper()

	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	orders := []struct {
		username  string
		offerID   string
		itemName  string
		price     int64
		status    string
		createdAt time.Time
	}{
		{"alice", "offer-001", "Skull Trooper", 1500, "pending", base.Add(-2 * time.Minute)},
		{"bob", "offer-002", "Galaxy Bundle", 2800, "completed", base.Add(-1 * time.Minute)},
		{"carol", "offer-003", "Renegade Raider", 1200, "failed", base},
	}

	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		var id int64
		err := pool.QueryRow(ctx,
			`INSERT INTO fortnite_orders (username, offer_id, item_name, price, status, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id`,
			o.username, o.offerID, o.itemName, o.price, o.status, o.createdAt,
		).Scan(&id)
		if err != nil {
			t.Fatalf("failed to seed order for %s: %v", o.username, err)
		}
		ids = append(ids, id)
	}
	return ids
}

// CleanupDB cleans all data from test tables and restores the default rate.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"fortnite_orders", "vbucks_rate_history"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	_, err := pool.Exec(ctx, "UPDATE settings SET value = '1.0' WHERE key = 'vbucks_rate'")
	if err != nil {
		t.Logf("failed to reset vbucks rate: %v", err)
	}
}
