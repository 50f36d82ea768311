package ops

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"main/internal/journal"
	"main/internal/model"
	"main/internal/risk"
)

const defaultQueueCapacity = 4096

// FileConfig mirrors the JSON config layout.
type FileConfig struct {
	Engine      EngineConfig       `json:"engine"`
	Risk        risk.Config        `json:"risk"`
	Instruments []InstrumentConfig `json:"instruments"`
	Journal     JournalConfig      `json:"journal"`
	Postgres    PostgresConfig     `json:"postgres"`
	Profiling   ProfilingConfig    `json:"profiling"`
}

// EngineConfig describes the engine runtime knobs.
type EngineConfig struct {
	TraderID      string `json:"traderId"`
	QueueCapacity int    `json:"queueCapacity"`
	ActiveLocal   bool   `json:"activeLocal"`
}

// InstrumentConfig describes one tradable instrument.
type InstrumentConfig struct {
	ID         string `json:"id"`
	PriceScale uint8  `json:"priceScale"`
	QtyScale   uint8  `json:"qtyScale"`
}

// JournalConfig describes the on-disk event journal.
type JournalConfig struct {
	Enable          bool   `json:"enable"`
	Dir             string `json:"dir"`
	FilePrefix      string `json:"filePrefix"`
	QueueSize       int    `json:"queueSize"`
	FlushIntervalMs int64  `json:"flushIntervalMs"`
}

// PostgresConfig describes the optional relational sink.
type PostgresConfig struct {
	Enable   bool   `json:"enable"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"sslMode"`
}

// ProfilingConfig captures optional continuous profiling flags.
type ProfilingConfig struct {
	Enable        bool   `json:"enable"`
	ServerAddress string `json:"serverAddress"`
	AppName       string `json:"appName"`
}

// Instrument is a resolved instrument definition.
type Instrument struct {
	ID         model.InstrumentID
	PriceScale uint8
	QtyScale   uint8
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	TraderID      model.TraderID
	QueueCapacity int
	ActiveLocal   bool

	Risk        risk.Config
	Instruments []Instrument

	JournalEnabled bool
	Journal        journal.Config

	Postgres  PostgresConfig
	Profiling ProfilingConfig
}

// Load reads a JSON config file and resolves it.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, err
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, err
	}
	return resolve(cfg)
}

func resolve(cfg FileConfig) (Loaded, error) {
	instruments, err := resolveInstruments(cfg.Instruments)
	if err != nil {
		return Loaded{}, err
	}

	traderID := cfg.Engine.TraderID
	if traderID == "" {
		traderID = "TRADER-001"
	}
	capacity := cfg.Engine.QueueCapacity
	if capacity == 0 {
		capacity = defaultQueueCapacity
	}
	if capacity < 0 {
		return Loaded{}, fmt.Errorf("engine queueCapacity must be >= 0")
	}

	loaded := Loaded{
		TraderID:      model.TraderID(traderID),
		QueueCapacity: capacity,
		ActiveLocal:   cfg.Engine.ActiveLocal,
		Risk:          cfg.Risk,
		Instruments:   instruments,
		Postgres:      cfg.Postgres,
		Profiling:     cfg.Profiling,
	}

	if cfg.Journal.Enable {
		if cfg.Journal.Dir == "" {
			return Loaded{}, fmt.Errorf("journal dir is empty")
		}
		jc := journal.DefaultConfig(cfg.Journal.Dir)
		if cfg.Journal.FilePrefix != "" {
			jc.FilePrefix = cfg.Journal.FilePrefix
		}
		if cfg.Journal.QueueSize > 0 {
			jc.QueueSize = cfg.Journal.QueueSize
		}
		if cfg.Journal.FlushIntervalMs > 0 {
			jc.FlushInterval = time.Duration(cfg.Journal.FlushIntervalMs) * time.Millisecond
		}
		loaded.JournalEnabled = true
		loaded.Journal = jc
	}

	if cfg.Postgres.Enable && cfg.Postgres.Database == "" {
		return Loaded{}, fmt.Errorf("postgres database is empty")
	}
	if cfg.Profiling.Enable && cfg.Profiling.ServerAddress == "" {
		return Loaded{}, fmt.Errorf("profiling serverAddress is empty")
	}

	return loaded, nil
}

func resolveInstruments(cfgs []InstrumentConfig) ([]Instrument, error) {
	if len(cfgs) == 0 {
		return nil, fmt.Errorf("no instruments configured")
	}
	seen := make(map[string]struct{}, len(cfgs))
	out := make([]Instrument, 0, len(cfgs))
	for _, c := range cfgs {
		if c.ID == "" {
			return nil, fmt.Errorf("instrument id is empty")
		}
		if _, ok := seen[c.ID]; ok {
			return nil, fmt.Errorf("duplicate instrument: %s", c.ID)
		}
		seen[c.ID] = struct{}{}
		if c.PriceScale > model.FixedPrecision || c.QtyScale > model.FixedPrecision {
			return nil, fmt.Errorf("invalid scale for %s: max precision is %d", c.ID, model.FixedPrecision)
		}
		out = append(out, Instrument{
			ID:         model.InstrumentID(c.ID),
			PriceScale: c.PriceScale,
			QtyScale:   c.QtyScale,
		})
	}
	return out, nil
}
