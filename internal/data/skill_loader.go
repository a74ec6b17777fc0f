package data

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/duelgo/internal/model"
)

// SkillTable — registry всех skill templates по типу.
// Загружается через LoadSkillTemplates() при старте.
var SkillTable map[model.SkillType]*SkillTemplate

// GetSkillTemplate возвращает SkillTemplate по типу.
// Returns nil если таблица не загружена или тип неизвестен.
func GetSkillTemplate(t model.SkillType) *SkillTemplate {
	if SkillTable == nil {
		return nil
	}
	return SkillTable[t]
}

// LoadSkillTemplates строит SkillTable из Go-литералов (skillDefs).
func LoadSkillTemplates() error {
	SkillTable = make(map[model.SkillType]*SkillTemplate, len(skillDefs))

	for i := range skillDefs {
		def := skillDefs[i]
		if _, dup := SkillTable[def.Type]; dup {
			return fmt.Errorf("duplicate skill template: %s", def.Type)
		}
		SkillTable[def.Type] = &def
	}

	for _, t := range model.AllSkillTypes() {
		if SkillTable[t] == nil {
			return fmt.Errorf("missing skill template: %s", t)
		}
	}

	slog.Info("loaded skill templates", "count", len(SkillTable))
	return nil
}

// skillOverride — YAML-переопределение параметров одного скилла.
// Nil-поля не трогают значение из таблицы.
type skillOverride struct {
	ChargeTime       *time.Duration `yaml:"charge_time"`
	StartupTime      *time.Duration `yaml:"startup_time"`
	ActiveTime       *time.Duration `yaml:"active_time"`
	RecoveryTime     *time.Duration `yaml:"recovery_time"`
	StaminaCost      *float64       `yaml:"stamina_cost"`
	DamageMultiplier *float64       `yaml:"damage_multiplier"`
	StunMultiplier   *float64       `yaml:"stun_multiplier"`
	SpeedModifier    *float64       `yaml:"speed_modifier"`
	RangeMultiplier  *float64       `yaml:"range_multiplier"`
}

// ApplyTemplateOverrides накладывает YAML-файл баланса поверх загруженной
// таблицы. Отсутствующий файл — не ошибка (defaults остаются).
func ApplyTemplateOverrides(path string) error {
	if SkillTable == nil {
		return fmt.Errorf("skill table not loaded")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading templates %s: %w", path, err)
	}

	overrides := make(map[string]skillOverride)
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return fmt.Errorf("parsing templates %s: %w", path, err)
	}

	applied := 0
	for name, ov := range overrides {
		tmpl := templateByName(name)
		if tmpl == nil {
			return fmt.Errorf("templates %s: unknown skill %q", path, name)
		}
		applyOverride(tmpl, ov)
		applied++
	}

	slog.Info("applied template overrides", "path", path, "skills", applied)
	return nil
}

func templateByName(name string) *SkillTemplate {
	for _, t := range model.AllSkillTypes() {
		if t.String() == name {
			return SkillTable[t]
		}
	}
	return nil
}

func applyOverride(tmpl *SkillTemplate, ov skillOverride) {
	if ov.ChargeTime != nil {
		tmpl.ChargeTime = *ov.ChargeTime
	}
	if ov.StartupTime != nil {
		tmpl.StartupTime = *ov.StartupTime
	}
	if ov.ActiveTime != nil {
		tmpl.ActiveTime = *ov.ActiveTime
	}
	if ov.RecoveryTime != nil {
		tmpl.RecoveryTime = *ov.RecoveryTime
	}
	if ov.StaminaCost != nil {
		tmpl.StaminaCost = *ov.StaminaCost
	}
	if ov.DamageMultiplier != nil {
		tmpl.DamageMultiplier = *ov.DamageMultiplier
	}
	if ov.StunMultiplier != nil {
		tmpl.StunMultiplier = *ov.StunMultiplier
	}
	if ov.SpeedModifier != nil {
		tmpl.SpeedModifier = *ov.SpeedModifier
	}
	if ov.RangeMultiplier != nil {
		tmpl.RangeMultiplier = *ov.RangeMultiplier
	}
}
