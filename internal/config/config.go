// Package config loads and validates the run configuration.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/eccentricworkshop/receiptflow/internal/common"
)

// DefaultShippingItemID is the item reference used for shipping lines when
// the config file does not override it.
const DefaultShippingItemID = "SHIPPING_ITEM_ID"

// Config holds everything a run needs. It is built once at startup and
// passed by value; nothing mutates it afterwards.
type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	RealmID      string
	Sandbox      bool
	DefaultDays  int
	ReceiptDebug bool
	AddressDebug bool

	// ShippingItemID marks line items whose amount counts as shipping
	// cost rather than a product SKU.
	ShippingItemID string
}

// Load builds a Config from the global viper instance.
func Load() (Config, error) {
	return FromViper(viper.GetViper())
}

// FromViper builds a Config from an explicit viper instance.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		ClientID:       v.GetString("client_id"),
		ClientSecret:   v.GetString("client_secret"),
		RefreshToken:   v.GetString("refresh_token"),
		RealmID:        v.GetString("realm_id"),
		Sandbox:        v.GetBool("sandbox"),
		DefaultDays:    v.GetInt("default_days"),
		ReceiptDebug:   v.GetBool("receipt_debug"),
		AddressDebug:   v.GetBool("address_debug"),
		ShippingItemID: v.GetString("shipping_item_id"),
	}

	if cfg.DefaultDays <= 0 {
		cfg.DefaultDays = 30
	}
	if cfg.ShippingItemID == "" {
		cfg.ShippingItemID = DefaultShippingItemID
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate ensures all required fields are present.
func (c Config) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("%w: client_id", common.ErrMissingConfig)
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("%w: client_secret", common.ErrMissingConfig)
	}
	if c.RefreshToken == "" {
		return fmt.Errorf("%w: refresh_token", common.ErrMissingConfig)
	}
	if c.RealmID == "" {
		return fmt.Errorf("%w: realm_id", common.ErrMissingConfig)
	}
	return nil
}
