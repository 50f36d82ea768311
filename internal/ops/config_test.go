package ops

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadResolvesConfig(t *testing.T) {
	path := writeConfig(t, `{
		"engine": {"traderId": "TRADER-002", "queueCapacity": 128, "activeLocal": true},
		"risk": {"maxOrderQty": 100, "maxPriceDeviationBps": 50},
		"instruments": [
			{"id": "ETHUSDT-PERP.SIM", "priceScale": 2, "qtyScale": 0},
			{"id": "BTCUSDT-PERP.SIM", "priceScale": 1, "qtyScale": 3}
		],
		"journal": {"enable": true, "dir": "/tmp/journal", "queueSize": 64, "flushIntervalMs": 100}
	}`)

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "TRADER-002", loaded.TraderID.String())
	assert.Equal(t, 128, loaded.QueueCapacity)
	assert.True(t, loaded.ActiveLocal)
	assert.Equal(t, float64(100), loaded.Risk.MaxOrderQty)
	assert.Equal(t, int64(50), loaded.Risk.MaxPriceDeviationBps)
	require.Len(t, loaded.Instruments, 2)
	assert.Equal(t, "ETHUSDT-PERP.SIM", loaded.Instruments[0].ID.String())

	require.True(t, loaded.JournalEnabled)
	assert.Equal(t, "/tmp/journal", loaded.Journal.Dir)
	assert.Equal(t, 64, loaded.Journal.QueueSize)
	assert.Equal(t, 100*time.Millisecond, loaded.Journal.FlushInterval)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `{"instruments": [{"id": "ETHUSDT-PERP.SIM", "priceScale": 2}]}`)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "TRADER-001", loaded.TraderID.String())
	assert.Equal(t, defaultQueueCapacity, loaded.QueueCapacity)
	assert.False(t, loaded.JournalEnabled)
}

func TestLoadRejectsBadConfigs(t *testing.T) {
	for name, content := range map[string]string{
		"no instruments":       `{}`,
		"empty instrument id":  `{"instruments": [{"id": ""}]}`,
		"duplicate instrument": `{"instruments": [{"id": "A.SIM"}, {"id": "A.SIM"}]}`,
		"scale too large":      `{"instruments": [{"id": "A.SIM", "priceScale": 12}]}`,
		"journal without dir":  `{"instruments": [{"id": "A.SIM"}], "journal": {"enable": true}}`,
		"postgres without db":  `{"instruments": [{"id": "A.SIM"}], "postgres": {"enable": true}}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
