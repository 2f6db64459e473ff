package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eccentricworkshop/receiptflow/internal/common"
)

func newTestViper(overrides map[string]any) *viper.Viper {
	v := viper.New()
	v.Set("client_id", "test-client")
	v.Set("client_secret", "test-secret")
	v.Set("refresh_token", "test-refresh")
	v.Set("realm_id", "1234567890")
	for key, value := range overrides {
		v.Set(key, value)
	}
	return v
}

func TestFromViper(t *testing.T) {
	v := newTestViper(map[string]any{
		"sandbox":          true,
		"default_days":     14,
		"receipt_debug":    true,
		"shipping_item_id": "42",
	})

	cfg, err := FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "test-client", cfg.ClientID)
	assert.Equal(t, "1234567890", cfg.RealmID)
	assert.True(t, cfg.Sandbox)
	assert.Equal(t, 14, cfg.DefaultDays)
	assert.True(t, cfg.ReceiptDebug)
	assert.False(t, cfg.AddressDebug)
	assert.Equal(t, "42", cfg.ShippingItemID)
}

func TestFromViperDefaults(t *testing.T) {
	cfg, err := FromViper(newTestViper(nil))
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.DefaultDays)
	assert.Equal(t, DefaultShippingItemID, cfg.ShippingItemID)
	assert.False(t, cfg.Sandbox)
}

func TestFromViperMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		missing string
	}{
		{name: "missing client id", missing: "client_id"},
		{name: "missing client secret", missing: "client_secret"},
		{name: "missing refresh token", missing: "refresh_token"},
		{name: "missing realm id", missing: "realm_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestViper(map[string]any{tt.missing: ""})

			_, err := FromViper(v)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrMissingConfig)
			assert.Contains(t, err.Error(), tt.missing)
		})
	}
}
