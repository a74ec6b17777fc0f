package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/duelgo/internal/telemetry"
)

// BattleReport — итог одного матча: заголовок, участники, поток событий.
// Seed хранится как BIGINT, знак при конвертации не важен.
type BattleReport struct {
	ID         int64
	Seed       uint64
	Result     string // метка результата: Victory, Draw
	WinnerTeam int32
	Duration   time.Duration
	Digest     string // blake2b-дайджест журнала
	StartedAt  time.Time

	Participants []ParticipantRow
	Events       []EventRow
}

// ParticipantRow — строка таблицы battle_participants.
type ParticipantRow struct {
	CombatantID uint32
	Name        string
	Team        int32
	Weapon      string
	HPLeft      int32
	Defeated    bool
}

// EventRow — строка таблицы battle_events. Поля повторяют telemetry.Event,
// длительности в миллисекундах.
type EventRow struct {
	Seq        int32
	AtMs       int64
	Type       string
	Actor      uint32
	Target     uint32
	Skill      string
	Outcome    string
	Status     string
	Source     string
	Amount     int32
	DurationMs int64
	Winner     uint32
}

// EventRows конвертирует журнал телеметрии в строки для записи.
func EventRows(events []telemetry.Event) []EventRow {
	rows := make([]EventRow, 0, len(events))
	for i, e := range events {
		rows = append(rows, EventRow{
			Seq:        int32(i + 1),
			AtMs:       e.At.Milliseconds(),
			Type:       e.Type.String(),
			Actor:      e.Actor,
			Target:     e.Target,
			Skill:      e.Skill,
			Outcome:    e.Outcome,
			Status:     e.Status,
			Source:     e.Source,
			Amount:     e.Amount,
			DurationMs: e.Duration.Milliseconds(),
			Winner:     e.Winner,
		})
	}
	return rows
}

// ReportRepository управляет отчётами о боях в БД.
type ReportRepository struct {
	db *pgxpool.Pool
}

// NewReportRepository создаёт новый ReportRepository.
func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{db: db}
}

// Save сохраняет отчёт целиком в одной транзакции: заголовок, участники,
// события. Возвращает присвоенный report_id и проставляет его в report.ID.
func (r *ReportRepository) Save(ctx context.Context, report *BattleReport) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction for battle report: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err.Error() != "tx is closed" {
			slog.Error("rollback failed", "error", err)
		}
	}()

	var reportID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO battle_reports (seed, result, winner_team, duration_ms, digest, started_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING report_id`,
		int64(report.Seed), report.Result, report.WinnerTeam,
		report.Duration.Milliseconds(), report.Digest, report.StartedAt,
	).Scan(&reportID)
	if err != nil {
		return 0, fmt.Errorf("inserting battle report: %w", err)
	}

	if err := saveParticipantsTx(ctx, tx, reportID, report.Participants); err != nil {
		return 0, err
	}
	if err := saveEventsTx(ctx, tx, reportID, report.Events); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit battle report %d: %w", reportID, err)
	}

	report.ID = reportID
	slog.Info("battle report saved",
		"reportID", reportID,
		"result", report.Result,
		"participants", len(report.Participants),
		"events", len(report.Events))
	return reportID, nil
}

// saveParticipantsTx пишет участников боя через CopyFrom.
func saveParticipantsTx(ctx context.Context, tx pgx.Tx, reportID int64, parts []ParticipantRow) error {
	if len(parts) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(parts))
	for _, p := range parts {
		rows = append(rows, []any{
			reportID, int64(p.CombatantID), p.Name, p.Team, p.Weapon, p.HPLeft, p.Defeated,
		})
	}

	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"battle_participants"},
		[]string{"report_id", "combatant_id", "name", "team", "weapon", "hp_left", "defeated"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("inserting participants for report %d: %w", reportID, err)
	}
	return nil
}

// saveEventsTx пишет поток событий через CopyFrom: событий может быть
// тысячи, построчный INSERT здесь слишком дорог.
func saveEventsTx(ctx context.Context, tx pgx.Tx, reportID int64, events []EventRow) error {
	if len(events) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(events))
	for _, e := range events {
		rows = append(rows, []any{
			reportID, e.Seq, e.AtMs, e.Type,
			int64(e.Actor), int64(e.Target),
			e.Skill, e.Outcome, e.Status, e.Source,
			e.Amount, e.DurationMs, int64(e.Winner),
		})
	}

	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"battle_events"},
		[]string{"report_id", "seq", "at_ms", "event_type", "actor_id", "target_id",
			"skill", "outcome", "status", "source", "amount", "duration_ms", "winner"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("inserting events for report %d: %w", reportID, err)
	}
	return nil
}

// Load загружает отчёт целиком: заголовок, участники, события.
// Возвращает nil, nil если отчёт не найден.
func (r *ReportRepository) Load(ctx context.Context, reportID int64) (*BattleReport, error) {
	var report BattleReport
	var seed int64
	var durationMs int64
	err := r.db.QueryRow(ctx,
		`SELECT report_id, seed, result, winner_team, duration_ms, digest, started_at
		 FROM battle_reports WHERE report_id = $1`, reportID,
	).Scan(&report.ID, &seed, &report.Result, &report.WinnerTeam,
		&durationMs, &report.Digest, &report.StartedAt)
	if err != nil {
		if err.Error() == "no rows in result set" {
			return nil, nil
		}
		return nil, fmt.Errorf("querying battle report %d: %w", reportID, err)
	}
	report.Seed = uint64(seed)
	report.Duration = time.Duration(durationMs) * time.Millisecond

	report.Participants, err = r.loadParticipants(ctx, reportID)
	if err != nil {
		return nil, err
	}
	report.Events, err = r.loadEvents(ctx, reportID)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *ReportRepository) loadParticipants(ctx context.Context, reportID int64) ([]ParticipantRow, error) {
	rows, err := r.db.Query(ctx,
		`SELECT combatant_id, name, team, weapon, hp_left, defeated
		 FROM battle_participants WHERE report_id = $1
		 ORDER BY combatant_id`, reportID)
	if err != nil {
		return nil, fmt.Errorf("querying participants for report %d: %w", reportID, err)
	}
	defer rows.Close()

	result := make([]ParticipantRow, 0, 2)
	for rows.Next() {
		var p ParticipantRow
		var combatantID int64
		if err := rows.Scan(&combatantID, &p.Name, &p.Team, &p.Weapon, &p.HPLeft, &p.Defeated); err != nil {
			return nil, fmt.Errorf("scanning participant row: %w", err)
		}
		p.CombatantID = uint32(combatantID)
		result = append(result, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating participant rows: %w", err)
	}
	return result, nil
}

func (r *ReportRepository) loadEvents(ctx context.Context, reportID int64) ([]EventRow, error) {
	rows, err := r.db.Query(ctx,
		`SELECT seq, at_ms, event_type, actor_id, target_id,
		        skill, outcome, status, source, amount, duration_ms, winner
		 FROM battle_events WHERE report_id = $1
		 ORDER BY seq`, reportID)
	if err != nil {
		return nil, fmt.Errorf("querying events for report %d: %w", reportID, err)
	}
	defer rows.Close()

	result := make([]EventRow, 0, 64)
	for rows.Next() {
		var e EventRow
		var actor, target, winner int64
		err := rows.Scan(&e.Seq, &e.AtMs, &e.Type, &actor, &target,
			&e.Skill, &e.Outcome, &e.Status, &e.Source, &e.Amount, &e.DurationMs, &winner)
		if err != nil {
			return nil, fmt.Errorf("scanning event row: %w", err)
		}
		e.Actor = uint32(actor)
		e.Target = uint32(target)
		e.Winner = uint32(winner)
		result = append(result, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating event rows: %w", err)
	}
	return result, nil
}

// ListRecent возвращает заголовки последних отчётов (без участников и
// событий), новые первыми.
func (r *ReportRepository) ListRecent(ctx context.Context, limit int32) ([]BattleReport, error) {
	rows, err := r.db.Query(ctx,
		`SELECT report_id, seed, result, winner_team, duration_ms, digest, started_at
		 FROM battle_reports
		 ORDER BY report_id DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent reports: %w", err)
	}
	defer rows.Close()

	result := make([]BattleReport, 0, limit)
	for rows.Next() {
		var report BattleReport
		var seed, durationMs int64
		err := rows.Scan(&report.ID, &seed, &report.Result, &report.WinnerTeam,
			&durationMs, &report.Digest, &report.StartedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning report row: %w", err)
		}
		report.Seed = uint64(seed)
		report.Duration = time.Duration(durationMs) * time.Millisecond
		result = append(result, report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating report rows: %w", err)
	}
	return result, nil
}

// OutcomeBreakdown считает исходы атак в отчёте по меткам (Blocked,
// Unopposed...) на стороне БД. Серверный аналог Journal.CountOutcomes.
func (r *ReportRepository) OutcomeBreakdown(ctx context.Context, reportID int64) (map[string]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT outcome, COUNT(*)
		 FROM battle_events
		 WHERE report_id = $1 AND event_type = 'Outcome'
		 GROUP BY outcome`, reportID)
	if err != nil {
		return nil, fmt.Errorf("querying outcome breakdown for report %d: %w", reportID, err)
	}
	defer rows.Close()

	counts := make(map[string]int, 8)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scanning breakdown row: %w", err)
		}
		counts[outcome] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating breakdown rows: %w", err)
	}
	return counts, nil
}
