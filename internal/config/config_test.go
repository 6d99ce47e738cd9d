package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hulame/rental-service/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "10.00", cfg.Marketplace.PlatformFee.StringFixed(2))
	assert.False(t, cfg.Marketplace.ReserveOnDirectRequest)
	assert.Equal(t, "retain", cfg.Marketplace.ListingReleasePolicy)
	assert.Equal(t, config.StorageDriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "notifications", cfg.Notification.ChannelPrefix)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PLATFORM_FEE", "25.5")
	t.Setenv("STORAGE_DRIVER", "MEMORY")
	t.Setenv("LISTING_RELEASE_POLICY", "release")
	t.Setenv("RESERVE_ON_DIRECT_REQUEST", "true")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "25.50", cfg.Marketplace.PlatformFee.StringFixed(2))
	assert.Equal(t, config.StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "release", cfg.Marketplace.ListingReleasePolicy)
	assert.True(t, cfg.Marketplace.ReserveOnDirectRequest)
	assert.Zero(t, cfg.App.RequestTimeout())
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"PLATFORM_FEE":           "ten",
		"STORAGE_DRIVER":         "mongo",
		"LISTING_RELEASE_POLICY": "sometimes",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := config.Load()
			assert.Error(t, err)
		})
	}

	t.Run("negative fee", func(t *testing.T) {
		t.Setenv("PLATFORM_FEE", "-1")
		_, err := config.Load()
		assert.Error(t, err)
	})
}
