package combat

import (
	"math"
	"testing"
	"time"

	"github.com/udisondev/duelgo/internal/config"
	"github.com/udisondev/duelgo/internal/data"
	"github.com/udisondev/duelgo/internal/model"
)

func mustTemplate(t *testing.T, st model.SkillType) *data.SkillTemplate {
	t.Helper()
	if err := data.LoadSkillTemplates(); err != nil {
		t.Fatalf("LoadSkillTemplates() failed: %v", err)
	}
	tmpl := data.GetSkillTemplate(st)
	if tmpl == nil {
		t.Fatalf("no template for %s", st)
	}
	return tmpl
}

func mustWeapon(t *testing.T, name string) model.WeaponProfile {
	t.Helper()
	if err := data.LoadWeaponProfiles(); err != nil {
		t.Fatalf("LoadWeaponProfiles() failed: %v", err)
	}
	w := data.GetWeaponProfile(name)
	if w == nil {
		t.Fatalf("no weapon %q", name)
	}
	return *w
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSpeed(t *testing.T) {
	tuning := config.DefaultTuning()
	snap := model.StatSnapshot{Dexterity: 20}
	shortsword := mustWeapon(t, "shortsword")

	tests := []struct {
		skill model.SkillType
		want  float64
	}{
		{model.SkillAttack, 1.7},         // (1.2 + 20/40) * 1.0
		{model.SkillSmash, 1.7 * 0.7},    // heavy swing is slower
		{model.SkillLunge, 1.7 * 1.2},    // lunge is faster
		{model.SkillWindmill, 1.7 * 0.8}, // spin is slower
	}
	for _, tt := range tests {
		t.Run(tt.skill.String(), func(t *testing.T) {
			got := Speed(snap, shortsword, mustTemplate(t, tt.skill), &tuning)
			if !almostEqual(got, tt.want) {
				t.Errorf("Speed(%s) = %v, want %v", tt.skill, got, tt.want)
			}
		})
	}
}

func TestSpeed_DexterityBreaksWeaponTie(t *testing.T) {
	tuning := config.DefaultTuning()
	weapon := mustWeapon(t, "broadsword")
	tmpl := mustTemplate(t, model.SkillAttack)

	slow := Speed(model.StatSnapshot{Dexterity: 10}, weapon, tmpl, &tuning)
	fast := Speed(model.StatSnapshot{Dexterity: 30}, weapon, tmpl, &tuning)
	if fast <= slow {
		t.Errorf("higher dexterity must be faster: %v <= %v", fast, slow)
	}
}

func TestReach(t *testing.T) {
	broadsword := mustWeapon(t, "broadsword")
	longbow := mustWeapon(t, "longbow")

	if got := Reach(broadsword, mustTemplate(t, model.SkillLunge)); !almostEqual(got, 2.2*1.6) {
		t.Errorf("lunge reach = %v, want %v", got, 2.2*1.6)
	}
	if got := Reach(longbow, mustTemplate(t, model.SkillRangedAttack)); !almostEqual(got, 16.0) {
		t.Errorf("ranged reach = %v, want 16", got)
	}
}

func TestRawDamage(t *testing.T) {
	tuning := config.DefaultTuning()
	snap := model.StatSnapshot{Strength: 20}
	shortsword := mustWeapon(t, "shortsword")

	tests := []struct {
		skill model.SkillType
		want  float64
	}{
		{model.SkillAttack, 17},     // 12 + 20/4
		{model.SkillSmash, 42.5},    // x2.5
		{model.SkillWindmill, 34},   // x2.0
		{model.SkillLunge, 25.5},    // x1.5
		{model.SkillRangedAttack, (12 + 5) * 1.2},
	}
	for _, tt := range tests {
		t.Run(tt.skill.String(), func(t *testing.T) {
			got := RawDamage(snap, shortsword, mustTemplate(t, tt.skill), &tuning)
			if !almostEqual(got, tt.want) {
				t.Errorf("RawDamage(%s) = %v, want %v", tt.skill, got, tt.want)
			}
		})
	}
}

func TestAppliedDamage(t *testing.T) {
	tests := []struct {
		name    string
		raw     float64
		defense int32
		want    int32
	}{
		{"plain", 10, 2, 8},
		{"truncates", 10.9, 2, 8},
		{"connected hit deals at least 1", 3, 10, 1},
		{"exact floor", 1, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AppliedDamage(tt.raw, model.StatSnapshot{Defense: tt.defense})
			if got != tt.want {
				t.Errorf("AppliedDamage(%v, def %d) = %d, want %d", tt.raw, tt.defense, got, tt.want)
			}
		})
	}
}

func TestReducedDamage(t *testing.T) {
	// Пробитый блок: четверть сырого, потом защита, минимум 1.
	if got := ReducedDamage(42.5, 0.25, model.StatSnapshot{Defense: 5}); got != 5 {
		t.Errorf("ReducedDamage = %d, want 5", got)
	}
	if got := ReducedDamage(8, 0.25, model.StatSnapshot{Defense: 10}); got != 1 {
		t.Errorf("chip damage = %d, want 1", got)
	}
}

func TestReflectedDamage(t *testing.T) {
	// Перехват raw 10 бойцом с защитой 2 возвращает ровно 8.
	if got := ReflectedDamage(10, model.StatSnapshot{Defense: 2}); got != 8 {
		t.Errorf("ReflectedDamage(10, def 2) = %d, want 8", got)
	}
	// Отражение гасится в ноль, не в 1: удар возвращён, не нанесён заново.
	if got := ReflectedDamage(5, model.StatSnapshot{Defense: 9}); got != 0 {
		t.Errorf("ReflectedDamage(5, def 9) = %d, want 0", got)
	}
}

func TestStunDuration(t *testing.T) {
	shortsword := mustWeapon(t, "shortsword")
	dagger := mustWeapon(t, "dagger")

	if got := StunDuration(shortsword, mustTemplate(t, model.SkillSmash)); got != 1200*time.Millisecond {
		t.Errorf("smash stun = %v, want 1.2s", got)
	}
	if got := StunDuration(dagger, mustTemplate(t, model.SkillLunge)); got != 400*time.Millisecond {
		t.Errorf("lunge stun = %v, want 400ms", got)
	}
}
