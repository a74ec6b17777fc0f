// Package scenario runs tengo-scripted combatant drivers. A script defines
// a think function called every tick with the engine api, a persistent
// memory map and the tick size; drivers implement ai.Controller and slot
// into the same roster as the built-in bots.
//
// Script contract:
//
//	think := func(api, mem, dt) {
//	    if api.state() == "Idle" {
//	        api.charge("attack")
//	    }
//	}
//
// mem survives across ticks; everything else is rebuilt per run.
package scenario

import (
	"embed"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/udisondev/duelgo/internal/model"
)

// driverDispatchSrc is appended to every script so the compiled program
// calls the user's think on each run.
const driverDispatchSrc = `
think(__api, __mem, __dt)
`

//go:embed scripts/*.tengo
var builtinFS embed.FS

// Program is a compiled scenario script, shareable across drivers.
type Program struct {
	name     string
	compiled *tengo.Compiled
}

// Name returns the program's display name.
func (p *Program) Name() string { return p.name }

// Compile compiles script source into a Program.
func Compile(name string, src []byte) (*Program, error) {
	script := tengo.NewScript(append(append([]byte{}, src...), driverDispatchSrc...))
	_ = script.Add("__api", map[string]any{})
	_ = script.Add("__mem", map[string]any{})
	_ = script.Add("__dt", int64(0))
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile scenario %s: %w", name, err)
	}
	return &Program{name: name, compiled: compiled}, nil
}

// LoadFile reads and compiles a script from disk.
func LoadFile(filename string) (*Program, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}
	return Compile(path.Base(filename), src)
}

// Builtins lists the embedded scenario names.
func Builtins() []string {
	entries, err := builtinFS.ReadDir("scripts")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".tengo"))
	}
	sort.Strings(names)
	return names
}

// LoadBuiltin compiles one of the embedded scenarios.
func LoadBuiltin(name string) (*Program, error) {
	src, err := builtinFS.ReadFile("scripts/" + name + ".tengo")
	if err != nil {
		return nil, fmt.Errorf("unknown builtin scenario %q", name)
	}
	return Compile(name, src)
}

// parseSkillName maps a script-side skill label to the engine type.
func parseSkillName(name string) (model.SkillType, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "attack":
		return model.SkillAttack, true
	case "defense":
		return model.SkillDefense, true
	case "counter":
		return model.SkillCounter, true
	case "smash":
		return model.SkillSmash, true
	case "windmill":
		return model.SkillWindmill, true
	case "lunge":
		return model.SkillLunge, true
	case "ranged", "ranged_attack":
		return model.SkillRangedAttack, true
	}
	return 0, false
}

// objectAsString unwraps a tengo object into a plain string.
func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	if s, ok := obj.(*tengo.String); ok {
		return s.Value
	}
	return strings.Trim(obj.String(), "\"")
}

// objectAsFloat unwraps a tengo number into a float64.
func objectAsFloat(obj tengo.Object) (float64, bool) {
	switch v := obj.(type) {
	case *tengo.Float:
		return v.Value, true
	case *tengo.Int:
		return float64(v.Value), true
	default:
		return 0, false
	}
}
