package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"maps"
	"math/rand/v2"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/duelgo/internal/ai"
	"github.com/udisondev/duelgo/internal/config"
	"github.com/udisondev/duelgo/internal/data"
	"github.com/udisondev/duelgo/internal/db"
	"github.com/udisondev/duelgo/internal/game/match"
	"github.com/udisondev/duelgo/internal/model"
	"github.com/udisondev/duelgo/internal/scenario"
	"github.com/udisondev/duelgo/internal/telemetry"
)

const defaultConfigPath = "config/arenasim.yaml"

func main() {
	cfgPath := flag.String("config", defaultConfigPath, "sim config file (YAML)")
	seed := flag.Uint64("seed", 0, "override RNG seed (0 keeps config value)")
	dsn := flag.String("dsn", "", "postgres DSN for battle reports (overrides config)")
	fast := flag.Bool("fast", false, "run without real-time pacing")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx, *cfgPath, *seed, *dsn, *fast); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgPath string, seedOverride uint64, dsnOverride string, fast bool) error {
	cfg, err := config.LoadSim(cfgPath)
	if err != nil {
		return fmt.Errorf("loading sim config: %w", err)
	}

	// Configure slog based on config.LogLevel
	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	// Enable AI debug logging if log level is debug
	ai.EnableDebugLogging(logLevel == slog.LevelDebug)

	seed := cfg.Seed
	if seedOverride != 0 {
		seed = seedOverride
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	dsn := dsnOverride
	if dsn == "" && cfg.Persist {
		dsn = cfg.Database.DSN()
	}

	slog.Info("arenasim starting",
		"config", cfgPath,
		"seed", seed,
		"fighters", len(cfg.Fighters),
		"tick_rate", cfg.TickRate)

	// Load data tables and balance overrides
	if err := data.LoadSkillTemplates(); err != nil {
		return fmt.Errorf("loading skill templates: %w", err)
	}
	if err := data.LoadWeaponProfiles(); err != nil {
		return fmt.Errorf("loading weapon profiles: %w", err)
	}
	if err := data.ApplyTemplateOverrides(cfg.TemplatePath); err != nil {
		return fmt.Errorf("applying template overrides: %w", err)
	}

	tuning, err := config.LoadTuning(cfg.TuningPath)
	if err != nil {
		return fmt.Errorf("loading tuning: %w", err)
	}

	// Connect to database up front so a bad DSN fails before the fight
	var reports *db.ReportRepository
	if dsn != "" {
		database, err := db.New(ctx, dsn)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		if err := db.RunMigrations(ctx, dsn); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		reports = db.NewReportRepository(database.Pool())
		slog.Info("battle report persistence enabled")
	}

	journal := telemetry.NewJournal()
	m := match.New(&tuning, match.Options{
		Width:   cfg.ArenaWidth,
		Height:  cfg.ArenaHeight,
		Timeout: cfg.MatchTimeout,
		Seed:    seed,
		Sink:    journal,
	})

	ids, err := joinFighters(m, cfg.Fighters)
	if err != nil {
		return err
	}
	roster, err := buildRoster(m, cfg.Fighters, ids, seed)
	if err != nil {
		return err
	}

	// Hot-reload tuning while the match runs
	watcher, err := config.NewWatcher(cfg.TuningPath)
	if err != nil {
		return fmt.Errorf("watching tuning file: %w", err)
	}
	defer watcher.Close()

	startedAt := time.Now().UTC()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return runMatch(gctx, m, roster, watcher.Tunings, cfg.TickInterval(), fast)
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("match loop: %w", err)
	}

	printSummary(m, journal, ids, cfg.Fighters)

	if reports != nil {
		id, err := saveReport(ctx, reports, m, journal, ids, cfg.Fighters, seed, startedAt)
		if err != nil {
			return fmt.Errorf("saving battle report: %w", err)
		}
		slog.Info("battle report stored", "reportID", id)
	}
	return nil
}

// joinFighters adds every configured fighter to the match. IDs are
// assigned in config order starting from 1.
func joinFighters(m *match.Match, fighters []config.FighterConfig) ([]uint32, error) {
	ids := make([]uint32, len(fighters))
	for i, fc := range fighters {
		id := uint32(i + 1)
		err := m.Join(match.Participant{
			ID:   id,
			Name: fc.Name,
			Team: fc.Team,
			Stats: model.StatSnapshot{
				Strength:  fc.Strength,
				Dexterity: fc.Dexterity,
				Focus:     fc.Focus,
				Defense:   fc.Defense,
			},
			Weapon:       fc.Weapon,
			MaxHP:        fc.MaxHP,
			MaxStamina:   fc.MaxStamina,
			StaminaRegen: fc.StaminaRegen,
			X:            fc.X,
			Y:            fc.Y,
		})
		if err != nil {
			return nil, fmt.Errorf("joining %s: %w", fc.Name, err)
		}
		ids[i] = id
	}
	return ids, nil
}

// buildRoster wires a controller per fighter: a scenario driver when the
// config names a script, the built-in duelist bot otherwise.
func buildRoster(m *match.Match, fighters []config.FighterConfig, ids []uint32, seed uint64) (*ai.Roster, error) {
	roster := ai.NewRoster()
	for i, fc := range fighters {
		targetID, ok := pickOpponent(fighters, ids, i)
		if !ok {
			return nil, fmt.Errorf("fighter %s has no opposing team", fc.Name)
		}

		var ctrl ai.Controller
		if fc.Scenario == "" {
			// Each bot gets its own RNG stream derived from the match seed.
			rng := rand.New(rand.NewPCG(seed, seed+uint64(ids[i])))
			ctrl = ai.NewDuelistAI(ids[i], targetID, m, rng.Float64)
		} else {
			prog, err := loadScenario(fc.Scenario)
			if err != nil {
				return nil, fmt.Errorf("scenario for %s: %w", fc.Name, err)
			}
			ctrl = scenario.NewDriver(prog, ids[i], targetID, m)
		}
		roster.Register(ids[i], ctrl)
	}
	return roster, nil
}

// pickOpponent returns the first fighter from another team.
func pickOpponent(fighters []config.FighterConfig, ids []uint32, i int) (uint32, bool) {
	for j, other := range fighters {
		if other.Team != fighters[i].Team {
			return ids[j], true
		}
	}
	return 0, false
}

// loadScenario resolves a builtin scenario name or a .tengo file path.
func loadScenario(name string) (*scenario.Program, error) {
	if slices.Contains(scenario.Builtins(), name) {
		return scenario.LoadBuiltin(name)
	}
	return scenario.LoadFile(name)
}

// runMatch drives the engine loop until the match ends or ctx cancels.
// Tuning updates from the watcher apply between ticks.
func runMatch(ctx context.Context, m *match.Match, roster *ai.Roster, tunings <-chan config.Tuning, dt time.Duration, fast bool) error {
	var pace *time.Ticker
	if !fast {
		pace = time.NewTicker(dt)
		defer pace.Stop()
	}

	for !m.Finished() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t, ok := <-tunings:
			if ok {
				m.ApplyTuning(t)
			}
		default:
		}

		m.Tick(dt)
		roster.TickAll(dt)

		if pace != nil {
			select {
			case <-pace.C:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}

// printSummary writes the human-readable result to stdout.
func printSummary(m *match.Match, journal *telemetry.Journal, ids []uint32, fighters []config.FighterConfig) {
	fmt.Printf("\n=== match finished: %s", m.Outcome())
	if m.Outcome() == match.ResultVictory {
		fmt.Printf(" (team %d)", m.WinnerTeam())
	}
	fmt.Printf(" after %v ===\n", m.Clock())

	for i, id := range ids {
		f := m.Fighter(id)
		if f == nil {
			continue
		}
		state := "standing"
		if f.Combatant.IsDefeated() {
			state = "defeated"
		}
		fmt.Printf("  %-12s team %d  %-12s HP %3d/%-3d  %s\n",
			fighters[i].Name, fighters[i].Team, fighters[i].Weapon,
			f.Combatant.CurrentHP(), fighters[i].MaxHP, state)
	}

	fmt.Printf("  events %d  digest %s\n", journal.Len(), journal.Digest())

	outcomes := journal.CountOutcomes()
	if len(outcomes) > 0 {
		fmt.Printf("  outcomes:")
		for _, k := range slices.Sorted(maps.Keys(outcomes)) {
			fmt.Printf(" %s=%d", k, outcomes[k])
		}
		fmt.Println()
	}
}

// saveReport assembles and persists the battle report.
func saveReport(
	ctx context.Context,
	repo *db.ReportRepository,
	m *match.Match,
	journal *telemetry.Journal,
	ids []uint32,
	fighters []config.FighterConfig,
	seed uint64,
	startedAt time.Time,
) (int64, error) {
	report := &db.BattleReport{
		Seed:       seed,
		Result:     m.Outcome().String(),
		WinnerTeam: m.WinnerTeam(),
		Duration:   m.Clock(),
		Digest:     journal.Digest(),
		StartedAt:  startedAt,
	}
	for i, id := range ids {
		f := m.Fighter(id)
		if f == nil {
			continue
		}
		report.Participants = append(report.Participants, db.ParticipantRow{
			CombatantID: id,
			Name:        fighters[i].Name,
			Team:        fighters[i].Team,
			Weapon:      fighters[i].Weapon,
			HPLeft:      f.Combatant.CurrentHP(),
			Defeated:    f.Combatant.IsDefeated(),
		})
	}
	report.Events = db.EventRows(journal.Events())

	return repo.Save(ctx, report)
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
