package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSim(t *testing.T) {
	cfg := DefaultSim()

	assert.Equal(t, 50, cfg.TickRate)
	assert.Equal(t, 20*time.Millisecond, cfg.TickInterval())
	assert.False(t, cfg.Persist)

	require.Len(t, cfg.Fighters, 2)
	assert.NotEqual(t, cfg.Fighters[0].Team, cfg.Fighters[1].Team,
		"default roster must span two teams")
}

func TestLoadSim_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadSim(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSim(), cfg)
}

func TestLoadSim_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")
	body := `tick_rate: 25
match_timeout: 90s
seed: 7
persist: true
fighters:
  - {name: karl, team: 1, weapon: warhammer, strength: 30, max_hp: 180, x: 5, y: 5}
  - {name: lena, team: 2, weapon: dagger, dexterity: 28, max_hp: 120, x: 25, y: 25}
  - {name: ken, team: 2, weapon: longbow, focus: 22, max_hp: 110, x: 27, y: 20, scenario: turtle}
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadSim(path)
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.TickRate)
	assert.Equal(t, 40*time.Millisecond, cfg.TickInterval())
	assert.Equal(t, 90*time.Second, cfg.MatchTimeout)
	assert.Equal(t, uint64(7), cfg.Seed)
	assert.True(t, cfg.Persist)

	// Список бойцов замещается целиком, а не сливается с дефолтным.
	require.Len(t, cfg.Fighters, 3)
	assert.Equal(t, "karl", cfg.Fighters[0].Name)
	assert.Equal(t, int32(30), cfg.Fighters[0].Strength)
	assert.Equal(t, "longbow", cfg.Fighters[2].Weapon)
	assert.Equal(t, "turtle", cfg.Fighters[2].Scenario)

	// Непереопределённые поля остаются дефолтными.
	assert.Equal(t, DefaultSim().ArenaWidth, cfg.ArenaWidth)
	assert.Equal(t, DefaultSim().TuningPath, cfg.TuningPath)
}

func TestLoadSim_Rejections(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero tick rate", "tick_rate: 0\n"},
		{"single fighter", "fighters:\n  - {name: solo, team: 1}\n"},
		{"broken yaml", "tick_rate: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sim.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))

			_, err := LoadSim(path)
			assert.Error(t, err)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "db.local", Port: 5433,
		User: "u", Password: "p",
		DBName: "duels", SSLMode: "require",
	}
	assert.Equal(t, "postgres://u:p@db.local:5433/duels?sslmode=require", d.DSN())
}
