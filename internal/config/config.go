package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/pregen/internal/pregen"
)

// Store drivers.
const (
	StoreNone     = "none"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Pregen holds all configuration for the pre-generation service.
type Pregen struct {
	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	// Scheduling
	TickInterval    time.Duration `yaml:"tick_interval"`    // driver cadence (default: 3s)
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // drain budget after a signal (default: 30s)
	ProgressEvery   time.Duration `yaml:"progress_every"`   // progress log cadence, 0 disables (default: 10s)
	MinHeadroom     int           `yaml:"min_headroom"`     // smallest accepted max_resident above current load
	DefaultHeadroom int           `yaml:"default_headroom"` // added to current load when max_resident is unset

	// Job history
	Store StoreConfig `yaml:"store"`

	Worlds   []WorldConfig   `yaml:"worlds"`
	Requests []RequestConfig `yaml:"requests"`
}

// StoreConfig selects where job history goes.
type StoreConfig struct {
	Driver     string         `yaml:"driver"` // none, sqlite, postgres
	SQLitePath string         `yaml:"sqlite_path"`
	Database   DatabaseConfig `yaml:"database"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// WorldConfig describes one in-memory world.
type WorldConfig struct {
	Name      string     `yaml:"name"`
	Seed      int64      `yaml:"seed"`
	MaxHeight int        `yaml:"max_height"`
	Pinned    [][2]int32 `yaml:"pinned"` // cells held by viewers, [x, z]
}

// RequestConfig is a generation request submitted at startup.
// Coordinates are world units.
type RequestConfig struct {
	World string `yaml:"world"`
	Shape string `yaml:"shape"` // rect (default) or disc

	XStart int32 `yaml:"x_start"`
	ZStart int32 `yaml:"z_start"`
	XEnd   int32 `yaml:"x_end"`
	ZEnd   int32 `yaml:"z_end"`

	XCenter int32 `yaml:"x_center"`
	ZCenter int32 `yaml:"z_center"`
	Radius  int32 `yaml:"radius"`

	Speed       string `yaml:"speed"`    // allatonce..veryslow (default: normal)
	Lighting    string `yaml:"lighting"` // none, forced-toggle, full-recompute (default: none)
	MaxResident int    `yaml:"max_resident"`
}

// Request converts the entry to a scheduler request.
func (r RequestConfig) Request() (pregen.Request, error) {
	shape, err := pregen.ParseShape(r.Shape)
	if err != nil {
		return pregen.Request{}, fmt.Errorf("request for world %q: %w", r.World, err)
	}

	speed := pregen.SpeedNormal
	if r.Speed != "" {
		if speed, err = pregen.ParseSpeed(r.Speed); err != nil {
			return pregen.Request{}, fmt.Errorf("request for world %q: %w", r.World, err)
		}
	}

	lighting := pregen.LightingNone
	if r.Lighting != "" {
		if lighting, err = pregen.ParseLighting(r.Lighting); err != nil {
			return pregen.Request{}, fmt.Errorf("request for world %q: %w", r.World, err)
		}
	}

	area := pregen.Rect(r.XStart, r.ZStart, r.XEnd, r.ZEnd)
	if shape == pregen.ShapeDisc {
		area = pregen.Disc(r.XCenter, r.ZCenter, r.Radius)
	}

	return pregen.Request{
		World:       r.World,
		Area:        area,
		Speed:       speed,
		Lighting:    lighting,
		MaxResident: r.MaxResident,
	}, nil
}

// Limits returns the admission limits.
func (c Pregen) Limits() pregen.Limits {
	return pregen.Limits{
		MinHeadroom:     c.MinHeadroom,
		DefaultHeadroom: c.DefaultHeadroom,
	}
}

// DefaultPregen returns Pregen config with sensible defaults.
func DefaultPregen() Pregen {
	limits := pregen.DefaultLimits()
	return Pregen{
		LogLevel:        "info",
		TickInterval:    3 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		ProgressEvery:   10 * time.Second,
		MinHeadroom:     limits.MinHeadroom,
		DefaultHeadroom: limits.DefaultHeadroom,
		Store: StoreConfig{
			Driver:     StoreSQLite,
			SQLitePath: "data/pregen.db",
			Database: DatabaseConfig{
				Host:     "127.0.0.1",
				Port:     5432,
				User:     "pregen",
				Password: "pregen",
				DBName:   "pregen",
				SSLMode:  "disable",
			},
		},
		Worlds: []WorldConfig{
			{Name: "overworld", Seed: 1, MaxHeight: 256},
		},
	}
}

// LoadPregen loads config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadPregen(path string) (Pregen, error) {
	cfg := DefaultPregen()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

func (c Pregen) validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval)
	}
	switch c.Store.Driver {
	case StoreNone, StoreSQLite, StorePostgres:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Driver == StoreSQLite && c.Store.SQLitePath == "" {
		return fmt.Errorf("store.sqlite_path is required for the sqlite driver")
	}

	seen := make(map[string]bool, len(c.Worlds))
	for _, w := range c.Worlds {
		if w.Name == "" {
			return fmt.Errorf("world without a name")
		}
		if seen[w.Name] {
			return fmt.Errorf("duplicate world %q", w.Name)
		}
		seen[w.Name] = true
	}
	return nil
}
