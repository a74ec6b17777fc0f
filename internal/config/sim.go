package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Sim holds all configuration for the arena simulation driver.
type Sim struct {
	// Simulation loop
	TickRate     int           `yaml:"tick_rate"`     // engine ticks per second
	MatchTimeout time.Duration `yaml:"match_timeout"` // draw when exceeded
	Seed         uint64        `yaml:"seed"`          // 0 = derive from clock

	// Arena geometry
	ArenaWidth  float64 `yaml:"arena_width"`  // arena units
	ArenaHeight float64 `yaml:"arena_height"` // arena units

	// Files
	TuningPath   string `yaml:"tuning_path"`   // balance overrides, hot-reloaded
	TemplatePath string `yaml:"template_path"` // skill/weapon template overrides

	// Persistence
	Database DatabaseConfig `yaml:"database"`
	Persist  bool           `yaml:"persist"` // write battle reports to postgres

	// Logging
	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	// Roster
	Fighters []FighterConfig `yaml:"fighters"`
}

// FighterConfig describes one combatant in the simulated match.
type FighterConfig struct {
	Name         string  `yaml:"name"`
	Team         int32   `yaml:"team"`
	Weapon       string  `yaml:"weapon"`
	Strength     int32   `yaml:"strength"`
	Dexterity    int32   `yaml:"dexterity"`
	Focus        int32   `yaml:"focus"`
	Defense      int32   `yaml:"defense"`
	MaxHP        int32   `yaml:"max_hp"`
	MaxStamina   float64 `yaml:"max_stamina"`
	StaminaRegen float64 `yaml:"stamina_regen"`
	X            float64 `yaml:"x"`
	Y            float64 `yaml:"y"`
	// Scenario: имя встроенного сценария или путь к .tengo файлу.
	// Пусто — боец под управлением встроенного бота-дуэлянта.
	Scenario string `yaml:"scenario"`
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

// DefaultSim returns Sim config with sensible defaults.
func DefaultSim() Sim {
	return Sim{
		TickRate:     50,
		MatchTimeout: 120 * time.Second,
		Seed:         0,
		ArenaWidth:   30.0,
		ArenaHeight:  30.0,
		TuningPath:   "tuning.yaml",
		TemplatePath: "templates.yaml",
		Persist:      false,
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "duelgo",
			Password: "duelgo",
			DBName:   "duelgo",
			SSLMode:  "disable",
		},
		LogLevel: "info",
		Fighters: []FighterConfig{
			{
				Name: "alice", Team: 1, Weapon: "shortsword",
				Strength: 20, Dexterity: 15, Focus: 10, Defense: 3,
				MaxHP: 150, MaxStamina: 100, StaminaRegen: 15,
				X: 12, Y: 15,
			},
			{
				Name: "bob", Team: 2, Weapon: "broadsword",
				Strength: 24, Dexterity: 10, Focus: 8, Defense: 5,
				MaxHP: 150, MaxStamina: 100, StaminaRegen: 15,
				X: 18, Y: 15,
			},
		},
	}
}

// LoadSim loads sim config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadSim(path string) (Sim, error) {
	cfg := DefaultSim()

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

	if cfg.TickRate <= 0 {
		return cfg, fmt.Errorf("config %s: tick_rate must be positive, got %d", path, cfg.TickRate)
	}
	if len(cfg.Fighters) < 2 {
		return cfg, fmt.Errorf("config %s: need at least 2 fighters, got %d", path, len(cfg.Fighters))
	}

	return cfg, nil
}

// TickInterval returns the duration of one engine tick.
func (s Sim) TickInterval() time.Duration {
	return time.Second / time.Duration(s.TickRate)
}
