// matrixdump prints the combat balance tables: the guard interaction matrix,
// skill templates, weapon profiles and a worked damage example. Handy when
// editing tuning.yaml to see what the numbers actually do.
//
// Usage:
//
//	go run ./cmd/matrixdump
//	go run ./cmd/matrixdump -tuning tuning.yaml -weapon warhammer
package main

import (
	"flag"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/udisondev/duelgo/internal/config"
	"github.com/udisondev/duelgo/internal/data"
	"github.com/udisondev/duelgo/internal/game/combat"
	"github.com/udisondev/duelgo/internal/model"
)

func main() {
	tuningPath := flag.String("tuning", "tuning.yaml", "tuning YAML (built-in defaults when missing)")
	templatePath := flag.String("templates", "templates.yaml", "skill template override YAML")
	weaponName := flag.String("weapon", "shortsword", "weapon profile for the worked example")
	flag.Parse()

	if err := run(*tuningPath, *templatePath, *weaponName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(tuningPath, templatePath, weaponName string) error {
	if err := data.LoadSkillTemplates(); err != nil {
		return err
	}
	if err := data.LoadWeaponProfiles(); err != nil {
		return err
	}
	if err := data.ApplyTemplateOverrides(templatePath); err != nil {
		return err
	}

	tuning, err := config.LoadTuning(tuningPath)
	if err != nil {
		return err
	}

	weapon := data.GetWeaponProfile(weaponName)
	if weapon == nil {
		return fmt.Errorf("unknown weapon %q", weaponName)
	}

	printMatrix(&tuning)
	printTemplates()
	printWeapons()
	printExample(*weapon, &tuning)
	return nil
}

// printMatrix lays the interaction matrix out as offense rows against guard
// columns, with the side effects of each cell in brackets.
func printMatrix(tuning *config.Tuning) {
	cells := combat.Interactions(tuning)

	var guards []model.SkillType
	rows := make(map[model.SkillType]map[model.SkillType]combat.Interaction)
	var offenses []model.SkillType
	for _, c := range cells {
		if rows[c.Offense] == nil {
			rows[c.Offense] = make(map[model.SkillType]combat.Interaction)
			offenses = append(offenses, c.Offense)
		}
		if !slices.Contains(guards, c.Guard) {
			guards = append(guards, c.Guard)
		}
		rows[c.Offense][c.Guard] = c
	}

	fmt.Println("interaction matrix (offense x guard):")
	fmt.Printf("  %-14s", "")
	for _, g := range guards {
		fmt.Printf("vs %-30s", g)
	}
	fmt.Println()
	for _, o := range offenses {
		fmt.Printf("  %-14s", o)
		for _, g := range guards {
			fmt.Printf("%-33s", cellLabel(rows[o][g]))
		}
		fmt.Println()
	}
	fmt.Println()
}

// cellLabel renders one matrix cell: outcome kind, the damage fraction that
// passes, and the status side effects.
func cellLabel(c combat.Interaction) string {
	if !c.Guarded {
		return "Unopposed (no answer)"
	}

	label := c.Kind.String()
	if c.DamageFraction > 0 {
		label += fmt.Sprintf(" %.0f%%", c.DamageFraction*100)
	}

	var notes []string
	if c.Reflects {
		notes = append(notes, "reflect")
	}
	if c.AttackerStun {
		notes = append(notes, "atk stun")
	}
	if c.AttackerKnockdown {
		notes = append(notes, "atk down")
	}
	if c.DefenderKnockdown {
		notes = append(notes, "def down")
	}
	if len(notes) > 0 {
		label += " [" + strings.Join(notes, ", ") + "]"
	}
	return label
}

func printTemplates() {
	fmt.Println("skill templates:")
	fmt.Printf("  %-14s %-8s %-8s %-8s %-9s %-8s %-5s %-5s %-6s %-6s %s\n",
		"skill", "charge", "startup", "active", "recovery", "stamina", "dmg", "stun", "speed", "range", "flags")
	for _, st := range model.AllSkillTypes() {
		tmpl := data.GetSkillTemplate(st)
		if tmpl == nil {
			continue
		}

		var flags []string
		if tmpl.BypassMeter {
			flags = append(flags, "direct-knockdown")
		}
		if tmpl.KnockbackOnHit {
			flags = append(flags, "knockback")
		}
		flagCol := "-"
		if len(flags) > 0 {
			flagCol = strings.Join(flags, ", ")
		}

		fmt.Printf("  %-14s %-8v %-8v %-8v %-9v %-8.0f %-5.1f %-5.1f %+-6.2f %-6.1f %s\n",
			st, tmpl.ChargeTime, tmpl.StartupTime, tmpl.ActiveTime, tmpl.RecoveryTime,
			tmpl.StaminaCost, tmpl.DamageMultiplier, tmpl.StunMultiplier,
			tmpl.SpeedModifier, tmpl.RangeMultiplier, flagCol)
	}
	fmt.Println()
}

func printWeapons() {
	fmt.Println("weapon profiles:")
	fmt.Printf("  %-16s %-7s %-6s %-6s %s\n", "weapon", "damage", "speed", "range", "stun base")
	for _, name := range slices.Sorted(maps.Keys(data.WeaponTable)) {
		w := data.WeaponTable[name]
		fmt.Printf("  %-16s %-7d %-6.1f %-6.1f %v\n", w.Name, w.Damage, w.Speed, w.Range, w.StunBase)
	}
	fmt.Println()
}

// printExample walks one attacker stat line through the damage formulas so a
// designer can see raw, applied, blocked and reflected numbers side by side.
func printExample(weapon model.WeaponProfile, tuning *config.Tuning) {
	attacker := model.StatSnapshot{Strength: 20, Dexterity: 15, Focus: 10, Defense: 3}
	defender := model.StatSnapshot{Strength: 20, Dexterity: 15, Focus: 10, Defense: 3}

	fmt.Printf("worked example: %s, STR %d / DEX %d attacker vs DEF %d defender\n",
		weapon.Name, attacker.Strength, attacker.Dexterity, defender.Defense)
	fmt.Printf("  %-14s %-7s %-7s %-7s %-7s %s\n", "skill", "raw", "hit", "speed", "reach", "stun")
	for _, st := range model.AllSkillTypes() {
		if !st.IsOffensive() {
			continue
		}
		tmpl := data.GetSkillTemplate(st)
		if tmpl == nil {
			continue
		}

		raw := combat.RawDamage(attacker, weapon, tmpl, tuning)
		fmt.Printf("  %-14s %-7.1f %-7d %-7.2f %-7.1f %v\n",
			st, raw, combat.AppliedDamage(raw, defender),
			combat.Speed(attacker, weapon, tmpl, tuning),
			combat.Reach(weapon, tmpl),
			combat.StunDuration(weapon, tmpl))
	}

	smash := data.GetSkillTemplate(model.SkillSmash)
	attack := data.GetSkillTemplate(model.SkillAttack)
	if smash != nil && attack != nil {
		smashRaw := combat.RawDamage(attacker, weapon, smash, tuning)
		attackRaw := combat.RawDamage(attacker, weapon, attack, tuning)
		fmt.Printf("\n  Smash into Defense: %.1f raw * %.0f%% -> %d after DEF %d\n",
			smashRaw, tuning.SmashBlockedFraction*100,
			combat.ReducedDamage(smashRaw, tuning.SmashBlockedFraction, defender), defender.Defense)
		fmt.Printf("  Attack into Counter: %.1f raw - attacker DEF %d -> %d reflected\n",
			attackRaw, attacker.Defense, combat.ReflectedDamage(attackRaw, attacker))
	}
}
