package combat

import (
	"github.com/udisondev/duelgo/internal/config"
	"github.com/udisondev/duelgo/internal/model"
)

// guardResponse — как защитная стойка отвечает на конкретный атакующий скилл.
type guardResponse struct {
	kind              OutcomeKind
	damageFraction    float64 // доля сырого урона, проходящая защитнику
	attackerStun      bool    // атакующего шатает от отбитого удара
	attackerKnockdown bool    // атакующий валится (контратака)
	defenderKnockdown bool    // защитник валится (пробитый блок)
	reflect           bool    // урон возвращается атакующему
}

// respondTo — матрица взаимодействий. Returns false when the guard has no
// answer to this skill and the hit resolves unopposed (Windmill ломает
// Defense именно так: блока не происходит, нокдаун добивает стойку).
func respondTo(offense, guard model.SkillType, tuning *config.Tuning) (guardResponse, bool) {
	switch guard {
	case model.SkillDefense:
		switch offense {
		case model.SkillAttack, model.SkillLunge:
			// Полный блок, меле-атакующего отшатывает от щита.
			return guardResponse{kind: OutcomeBlocked, attackerStun: true}, true
		case model.SkillRangedAttack:
			// Стрела гаснет в блоке; отдачи в стрелка нет.
			return guardResponse{kind: OutcomeBlocked}, true
		case model.SkillSmash:
			// Пробой: часть урона проходит, защитник валится.
			return guardResponse{
				kind:              OutcomeDefenseBroken,
				damageFraction:    tuning.SmashBlockedFraction,
				defenderKnockdown: true,
			}, true
		case model.SkillWindmill:
			return guardResponse{}, false
		}

	case model.SkillCounter:
		switch offense {
		case model.SkillAttack, model.SkillSmash, model.SkillLunge, model.SkillRangedAttack:
			// Перехват: удар возвращается, атакующий валится, защитник цел.
			return guardResponse{
				kind:              OutcomeReflected,
				reflect:           true,
				attackerKnockdown: true,
			}, true
		case model.SkillWindmill:
			// Единственный способ пробить контратаку: полный урон и нокдаун.
			return guardResponse{
				kind:              OutcomeDefenseBroken,
				damageFraction:    1.0,
				defenderKnockdown: true,
			}, true
		}
	}

	return guardResponse{}, false
}

// Interaction — одна клетка матрицы в экспортируемом виде, для инструментов
// и сводных распечаток. Guarded=false значит, что стойка не отвечает и удар
// разрешается как Unopposed.
type Interaction struct {
	Offense model.SkillType
	Guard   model.SkillType
	Guarded bool

	Kind              OutcomeKind
	DamageFraction    float64
	AttackerStun      bool
	AttackerKnockdown bool
	DefenderKnockdown bool
	Reflects          bool
}

// Interactions перечисляет матрицу целиком: каждый атакующий скилл против
// каждой стойки, в порядке model.AllSkillTypes.
func Interactions(tuning *config.Tuning) []Interaction {
	var cells []Interaction
	for _, offense := range model.AllSkillTypes() {
		if !offense.IsOffensive() {
			continue
		}
		for _, guard := range model.AllSkillTypes() {
			if !guard.IsDefensive() {
				continue
			}

			cell := Interaction{Offense: offense, Guard: guard, Kind: OutcomeUnopposed}
			if resp, ok := respondTo(offense, guard, tuning); ok {
				cell.Guarded = true
				cell.Kind = resp.kind
				cell.DamageFraction = resp.damageFraction
				cell.AttackerStun = resp.attackerStun
				cell.AttackerKnockdown = resp.attackerKnockdown
				cell.DefenderKnockdown = resp.defenderKnockdown
				cell.Reflects = resp.reflect
			}
			cells = append(cells, cell)
		}
	}
	return cells
}
