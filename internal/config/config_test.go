package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-videoquote/internal/pricing"
)

func baseEnv() map[string]string {
	return map[string]string{
		"REDIS_URL":                "redis://localhost:6379/0",
		"DATABASE_URL":             "postgres://localhost/videoquote",
		"SHARE_STORE_DRIVER":       "",
		"PRICING_DISCOUNT_POLICY":  "",
		"PRICING_UNIT_PRICE_CENTS": "",
		"CHECKOUT_PROVIDER":        "",
		"STRIPE_SECRET_KEY":        "",
		"SESSION_TTL":              "",
		"IDEAS_MAX_POOL":           "",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(baseEnv())
	require.NoError(t, err)
	require.Equal(t, ShareStorePostgres, cfg.ShareStoreDriver)
	require.Equal(t, 72*time.Hour, cfg.SessionTTL)
	require.Equal(t, 30, cfg.IdeasMaxPool)
	require.Equal(t, "mock", cfg.CheckoutProvider)

	engine, err := cfg.PricingEngine()
	require.NoError(t, err)
	require.Equal(t, pricing.DefaultUnitPrice, engine.UnitPrice)
	require.Equal(t, pricing.PolicyBundle, engine.Policy)
}

func TestLoadLegacyPolicy(t *testing.T) {
	env := baseEnv()
	env["PRICING_DISCOUNT_POLICY"] = "Legacy"
	env["PRICING_UNIT_PRICE_CENTS"] = "5000"
	cfg, err := LoadForTests(env)
	require.NoError(t, err)

	engine, err := cfg.PricingEngine()
	require.NoError(t, err)
	require.Equal(t, pricing.Money(5000), engine.UnitPrice)
	require.Equal(t, pricing.PolicyLegacy, engine.Policy)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	cases := map[string]map[string]string{
		"missing redis":   {"REDIS_URL": ""},
		"unknown policy":  {"PRICING_DISCOUNT_POLICY": "halfprice"},
		"unknown driver":  {"SHARE_STORE_DRIVER": "mongo"},
		"stripe sans key": {"CHECKOUT_PROVIDER": "stripe"},
		"zero unit price": {"PRICING_UNIT_PRICE_CENTS": "0"},
	}
	for name, override := range cases {
		env := baseEnv()
		for k, v := range override {
			env[k] = v
		}
		_, err := LoadForTests(env)
		require.Error(t, err, name)
	}
}

func TestSQLiteDriverSkipsDatabaseURL(t *testing.T) {
	env := baseEnv()
	env["DATABASE_URL"] = ""
	env["SHARE_STORE_DRIVER"] = "sqlite"
	cfg, err := LoadForTests(env)
	require.NoError(t, err)
	require.Equal(t, ShareStoreSQLite, cfg.ShareStoreDriver)
	require.Equal(t, ":8080", cfg.HTTPAddr())
}
