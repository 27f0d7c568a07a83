package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTestCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("BITHUMB_API_KEY", "bk")
	t.Setenv("BITHUMB_API_SECRET", "bs")
	t.Setenv("NAVER_CLIENT_ID", "ni")
	t.Setenv("NAVER_CLIENT_SECRET", "ns")
	t.Setenv("OPENAI_API_KEY", "ok")
	t.Setenv("INVESTMENT", "100000")
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	setTestCredentials(t)
	path := writeConfig(t, "app:\n  env: test\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.App.Env)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, "BTC", cfg.Trading.Symbol)
	assert.Equal(t, "KRW", cfg.Trading.PaymentCurrency)
	assert.InDelta(t, 10000, cfg.Trading.MinBuyKRW, 1e-9)
	assert.Equal(t, 20*time.Minute, cfg.CycleInterval())
	assert.Equal(t, 200, cfg.Market.CandleCount)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.Model)
	assert.Contains(t, cfg.Naver.Keywords, "비트코인")
}

func TestLoadFileValuesOverrideDefaults(t *testing.T) {
	setTestCredentials(t)
	path := writeConfig(t, `
trading:
  symbol: xrp
  cycle_interval: 5m
  run_immediately: true
market:
  candle_count: 300
ai:
  model: gpt-4o
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "xrp", cfg.Trading.Symbol)
	assert.Equal(t, 5*time.Minute, cfg.CycleInterval())
	assert.True(t, cfg.Trading.RunImmediately)
	assert.Equal(t, 300, cfg.Market.CandleCount)
	assert.Equal(t, "gpt-4o", cfg.AI.Model)
}

func TestLoadEnvOverridesCredentials(t *testing.T) {
	setTestCredentials(t)
	t.Setenv("BITHUMB_API_KEY", "from-env")
	path := writeConfig(t, "bithumb:\n  api_key: from-file\n  api_secret: s\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Bithumb.APIKey)
}

func TestLoadInvestmentFromEnvironment(t *testing.T) {
	setTestCredentials(t)
	t.Setenv("INVESTMENT", "250000")
	cfg, err := Load(writeConfig(t, "app: {}\n"))
	require.NoError(t, err)
	assert.InDelta(t, 250000, cfg.Trading.Investment, 1e-9)
}

func TestLoadFailsOnMissingCredentials(t *testing.T) {
	setTestCredentials(t)
	t.Setenv("OPENAI_API_KEY", "")
	_, err := Load(writeConfig(t, "app: {}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestLoadFailsOnMissingInvestment(t *testing.T) {
	setTestCredentials(t)
	t.Setenv("INVESTMENT", "")
	_, err := Load(writeConfig(t, "app: {}\n"))
	assert.Error(t, err)
}

func TestLoadFailsOnBadCycleInterval(t *testing.T) {
	setTestCredentials(t)
	_, err := Load(writeConfig(t, "trading:\n  cycle_interval: twenty\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle_interval")
}

func TestLoadMissingFileRunsOnEnvironment(t *testing.T) {
	setTestCredentials(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "BTC", cfg.Trading.Symbol)
	assert.Equal(t, "bk", cfg.Bithumb.APIKey)
}

func TestLoadEmptyPath(t *testing.T) {
	_, err := Load("  ")
	assert.Error(t, err)
}
