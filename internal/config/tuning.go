package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Tuning holds every balance constant of the combat engine.
// Loaded from YAML so designers can rebalance without a rebuild;
// the sim can hot-reload it between ticks (see Watcher).
type Tuning struct {
	// Interaction resolution
	SimultaneityWindow time.Duration `yaml:"simultaneity_window"` // batch window opened by the first activation
	SpeedEpsilon       float64       `yaml:"speed_epsilon"`       // speeds closer than this clash as a tie

	// Formula divisors
	DexSpeedDivisor       float64 `yaml:"dex_speed_divisor"`       // speed = weapon + dex/divisor
	DexChargeDivisor      float64 `yaml:"dex_charge_divisor"`      // charge time = base / (1 + dex/divisor)
	StrengthDamageDivisor float64 `yaml:"strength_damage_divisor"` // raw = weapon + str/divisor

	// Matrix percentages
	SmashBlockedFraction float64 `yaml:"smash_blocked_fraction"` // damage fraction when Smash breaks Defense

	// Knockdown meter
	MeterDecayPerSecond        float64       `yaml:"meter_decay_per_second"`
	MeterBuildupDamageFactor   float64       `yaml:"meter_buildup_damage_factor"`
	MeterBuildupStrengthFactor float64       `yaml:"meter_buildup_strength_factor"`
	MeterBuildupResistFactor   float64       `yaml:"meter_buildup_resist_factor"` // focus-based resistance weight
	ComboFalloff               float64       `yaml:"combo_falloff"`               // diminishing returns per combo hit
	ComboIdleGap               time.Duration `yaml:"combo_idle_gap"`              // silence that resets a combo
	ComboKnockbackHits         int           `yaml:"combo_knockback_hits"`        // finisher hit index causing knockback

	// Status effect durations and displacement
	KnockdownDuration time.Duration `yaml:"knockdown_duration"`
	KnockbackDuration time.Duration `yaml:"knockback_duration"`
	KnockdownDistance float64       `yaml:"knockdown_distance"` // arena units
	KnockbackDistance float64       `yaml:"knockback_distance"`

	// Defensive holds
	DefenseUpkeepPerSecond float64       `yaml:"defense_upkeep_per_second"` // stamina drained while Waiting
	WaitingGracePeriod     time.Duration `yaml:"waiting_grace_period"`      // tolerated time below activation cost
	DefensiveCancelRefund  float64       `yaml:"defensive_cancel_refund"`   // stamina fraction returned on cancel

	// Ranged aim model
	AimRatePerSecond float64       `yaml:"aim_rate_per_second"` // accuracy percent gained per second
	AimFocusScale    float64       `yaml:"aim_focus_scale"`     // rate *= 1 + focus/scale
	AimStillBonus    float64       `yaml:"aim_still_bonus"`     // rate multiplier vs a still target
	AimStillAfter    time.Duration `yaml:"aim_still_after"`     // stillness needed for the bonus
	AimFloor         float64       `yaml:"aim_floor"`           // percent
	AimCeiling       float64       `yaml:"aim_ceiling"`         // percent

	// Movement
	MoveSpeed float64 `yaml:"move_speed"` // meters per second
}

// DefaultTuning returns the reference balance values.
func DefaultTuning() Tuning {
	return Tuning{
		SimultaneityWindow: 100 * time.Millisecond,
		SpeedEpsilon:       0.001,

		DexSpeedDivisor:       40.0,
		DexChargeDivisor:      100.0,
		StrengthDamageDivisor: 4.0,

		SmashBlockedFraction: 0.25,

		MeterDecayPerSecond:        6.0,
		MeterBuildupDamageFactor:   0.6,
		MeterBuildupStrengthFactor: 0.3,
		MeterBuildupResistFactor:   1.0,
		ComboFalloff:               0.5,
		ComboIdleGap:               2 * time.Second,
		ComboKnockbackHits:         3,

		KnockdownDuration: 2500 * time.Millisecond,
		KnockbackDuration: 1200 * time.Millisecond,
		KnockdownDistance: 2.5,
		KnockbackDistance: 1.5,

		DefenseUpkeepPerSecond: 2.0,
		WaitingGracePeriod:     1500 * time.Millisecond,
		DefensiveCancelRefund:  0.5,

		AimRatePerSecond: 20.0,
		AimFocusScale:    100.0,
		AimStillBonus:    2.0,
		AimStillAfter:    time.Second,
		AimFloor:         5.0,
		AimCeiling:       99.0,

		MoveSpeed: 3.0,
	}
}

// LoadTuning loads tuning from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadTuning(path string) (Tuning, error) {
	cfg := DefaultTuning()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading tuning %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing tuning %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("tuning %s: %w", path, err)
	}

	return cfg, nil
}

// Validate rejects values the engine cannot run with.
func (t Tuning) Validate() error {
	if t.SimultaneityWindow <= 0 {
		return fmt.Errorf("simultaneity_window must be positive, got %v", t.SimultaneityWindow)
	}
	if t.SpeedEpsilon < 0 {
		return fmt.Errorf("speed_epsilon must be non-negative, got %f", t.SpeedEpsilon)
	}
	if t.DexSpeedDivisor <= 0 || t.DexChargeDivisor <= 0 || t.StrengthDamageDivisor <= 0 {
		return fmt.Errorf("stat divisors must be positive")
	}
	if t.SmashBlockedFraction < 0 || t.SmashBlockedFraction > 1 {
		return fmt.Errorf("smash_blocked_fraction must be in [0,1], got %f", t.SmashBlockedFraction)
	}
	if t.MeterDecayPerSecond < 0 {
		return fmt.Errorf("meter_decay_per_second must be non-negative, got %f", t.MeterDecayPerSecond)
	}
	if t.ComboKnockbackHits < 2 {
		return fmt.Errorf("combo_knockback_hits must be at least 2, got %d", t.ComboKnockbackHits)
	}
	if t.AimFloor < 0 || t.AimCeiling > 100 || t.AimFloor > t.AimCeiling {
		return fmt.Errorf("aim bounds must satisfy 0 <= floor <= ceiling <= 100")
	}
	if t.MoveSpeed <= 0 {
		return fmt.Errorf("move_speed must be positive, got %f", t.MoveSpeed)
	}
	return nil
}
