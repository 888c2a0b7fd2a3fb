//go:build integration
// +build integration

package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/partyshare-api/internal/config"
	"github.com/gravadigital/partyshare-api/internal/store"
	"github.com/gravadigital/partyshare-api/internal/store/postgres"
)

// Integration tests that require a real PostgreSQL database
// Run with: go test -tags=integration

func testConfig() *config.Config {
	cfg := config.Load()
	if testDB := os.Getenv("TEST_DB_NAME"); testDB != "" {
		cfg.DB.Name = testDB
	}
	return cfg
}

func TestDatabaseConnection(t *testing.T) {
	cfg := testConfig()

	db, err := postgres.Connect(cfg)
	assert.NoError(t, err, "Should be able to connect to test database")

	if err == nil {
		sqlDB, err := db.DB()
		assert.NoError(t, err)

		err = sqlDB.Ping()
		assert.NoError(t, err, "Should be able to ping the database")

		sqlDB.Close()
	}
}

func TestDatabaseMigration(t *testing.T) {
	cfg := testConfig()

	db, err := postgres.Connect(cfg)
	assert.NoError(t, err, "Should be able to connect to test database")

	if err == nil {
		err = postgres.RunMigrations(db)
		assert.NoError(t, err, "Should be able to run migrations")

		sqlDB, _ := db.DB()
		sqlDB.Close()
	}
}

func TestPostgresStoreRoundTrip(t *testing.T) {
	cfg := testConfig()

	db, err := postgres.Connect(cfg)
	require.NoError(t, err)
	require.NoError(t, postgres.RunMigrations(db))

	st := postgres.New(db, cfg.GetDatabaseURL(), time.Second)
	defer st.Stop()
	defer postgres.Close(db)

	ctx := context.Background()
	require.NoError(t, st.Write(ctx, "events/it-e1", map[string]any{"name": "Integration party"}))
	require.NoError(t, st.Write(ctx, "events/it-e1/signups/chips", map[string]any{"Quantity": "2", "userID": "null"}))

	snapshots := make(chan store.Snapshot, 4)
	sub, err := st.Subscribe("events", func(s store.Snapshot) { snapshots <- s })
	require.NoError(t, err)
	defer sub.Unsubscribe()

	select {
	case snap := <-snapshots:
		var found bool
		for _, rec := range snap {
			if rec.Key == "it-e1" {
				found = true
				assert.Equal(t, "Integration party", rec.Value["name"])
			}
		}
		assert.True(t, found, "written record appears in the initial snapshot")
	case <-time.After(5 * time.Second):
		t.Fatal("no snapshot delivered")
	}

	require.NoError(t, st.Delete(ctx, "events/it-e1"))
}
