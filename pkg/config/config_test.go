package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsToMemoryInDevelopment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("FIREBASE_PROJECT_ID", "")
	t.Setenv("DATA_BACKEND", "")
	os.Unsetenv("DATA_BACKEND")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.DataBackend)
}

func TestLoadRejectsEmptyBackend(t *testing.T) {
	t.Setenv("DATA_BACKEND", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadReadsOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("DATA_BACKEND", BackendMemory)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("BID_RATE_PER_MINUTE", "3")
	t.Setenv("AUCTION_SWEEP_INTERVAL", "15s")
	t.Setenv("REDIS_DB", "2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, BackendMemory, cfg.DataBackend)
	assert.Equal(t, 3, cfg.BidRatePerMinute)
	assert.Equal(t, 15*time.Second, cfg.AuctionSweepInterval)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.True(t, cfg.IsDevelopment())
}

func TestValidateFirebaseBackend(t *testing.T) {
	cfg := &Config{
		DataBackend:          BackendFirebase,
		BidRatePerMinute:     1,
		APIRatePerMinute:     1,
		AuctionSweepInterval: time.Minute,
	}
	assert.Error(t, cfg.Validate())

	cfg.FirebaseProject = "skipfurther"
	assert.Error(t, cfg.Validate())

	cfg.StorageBucket = "skipfurther.appspot.com"
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := &Config{DataBackend: "postgres", BidRatePerMinute: 1, APIRatePerMinute: 1, AuctionSweepInterval: time.Second}
	assert.Error(t, cfg.Validate())
}
