// Package arena — прямоугольная арена боя поверх chipmunk-пространства.
// Тела бойцов не проходят друг сквозь друга и не покидают стен; смещения
// от нокбэков применяются мгновенно, движение — через скорость на тик.
package arena

import (
	"fmt"
	"math"
	"time"

	"github.com/jakecoffman/cp"
)

// FighterRadius — радиус тела бойца в метрах.
const FighterRadius = 0.4

// stillEpsilon — порог смещения за шаг, ниже которого боец неподвижен.
const stillEpsilon = 1e-4

type fighterBody struct {
	body  *cp.Body
	shape *cp.Shape

	lastPos cp.Vector
	still   time.Duration
}

// Arena владеет физическим пространством матча.
// Не потокобезопасна: живёт внутри однопоточного цикла матча.
type Arena struct {
	space  *cp.Space
	width  float64
	height float64
	bodies map[uint32]*fighterBody
}

// New создаёт пустую арену заданных размеров, обнесённую стенами.
func New(width, height float64) *Arena {
	space := cp.NewSpace()
	space.Iterations = 10

	a := &Arena{
		space:  space,
		width:  width,
		height: height,
		bodies: make(map[uint32]*fighterBody, 4),
	}
	a.buildWalls()
	return a
}

func (a *Arena) buildWalls() {
	walls := []struct{ from, to cp.Vector }{
		{cp.Vector{}, cp.Vector{X: a.width}},
		{cp.Vector{Y: a.height}, cp.Vector{X: a.width, Y: a.height}},
		{cp.Vector{}, cp.Vector{Y: a.height}},
		{cp.Vector{X: a.width}, cp.Vector{X: a.width, Y: a.height}},
	}
	for _, w := range walls {
		shape := cp.NewSegment(a.space.StaticBody, w.from, w.to, 0.1)
		shape.SetElasticity(0)
		shape.SetFriction(0)
		a.space.AddShape(shape)
	}
}

// Place ставит тело бойца на арену. Позиция вне стен подтягивается внутрь.
func (a *Arena) Place(id uint32, at cp.Vector) error {
	if _, ok := a.bodies[id]; ok {
		return fmt.Errorf("combatant %d already placed", id)
	}

	// Бесконечный момент: тела не вращаются.
	body := cp.NewBody(1, math.Inf(1))
	body.SetPosition(a.clamp(at))

	shape := cp.NewCircle(body, FighterRadius, cp.Vector{})
	shape.SetElasticity(0)
	shape.SetFriction(0)

	a.space.AddBody(body)
	a.space.AddShape(shape)
	a.bodies[id] = &fighterBody{body: body, shape: shape, lastPos: body.Position()}
	return nil
}

// Remove убирает тело: выбывший боец перестаёт занимать место.
func (a *Arena) Remove(id uint32) {
	fb, ok := a.bodies[id]
	if !ok {
		return
	}
	a.space.RemoveShape(fb.shape)
	a.space.RemoveBody(fb.body)
	delete(a.bodies, id)
}

// Position возвращает позицию бойца.
func (a *Arena) Position(id uint32) (cp.Vector, bool) {
	fb, ok := a.bodies[id]
	if !ok {
		return cp.Vector{}, false
	}
	return fb.body.Position(), true
}

// Distance — дистанция между центрами тел. Inf для неизвестных id,
// чтобы проверка досягаемости на них никогда не проходила.
func (a *Arena) Distance(x, y uint32) float64 {
	fx, okx := a.bodies[x]
	fy, oky := a.bodies[y]
	if !okx || !oky {
		return math.Inf(1)
	}
	return fx.body.Position().Distance(fy.body.Position())
}

// WithinRange — достаёт ли боец до цели с данной досягаемостью.
func (a *Arena) WithinRange(from, to uint32, reach float64) bool {
	return a.Distance(from, to) <= reach
}

// DirectionTo — единичный вектор от одного бойца к другому
// (ноль при совпадении или неизвестных id).
func (a *Arena) DirectionTo(from, to uint32) cp.Vector {
	ff, okf := a.bodies[from]
	ft, okt := a.bodies[to]
	if !okf || !okt {
		return cp.Vector{}
	}
	d := ft.body.Position().Sub(ff.body.Position())
	if d.Length() == 0 {
		return cp.Vector{}
	}
	return d.Normalize()
}

// ApplyDisplacement — мгновенный толчок от нокбэка или нокдауна.
// Позиция зажимается стенами, набранная скорость сбрасывается.
func (a *Arena) ApplyDisplacement(id uint32, shove cp.Vector) {
	fb, ok := a.bodies[id]
	if !ok {
		return
	}
	fb.body.SetPosition(a.clamp(fb.body.Position().Add(shove)))
	fb.body.SetVelocityVector(cp.Vector{})
	a.space.ReindexShapesForBody(fb.body)
	fb.lastPos = fb.body.Position()
	fb.still = 0
}

// SetVelocity задаёт скорость бойца на ближайший шаг. Скорость не
// переживает шаг: намерение двигаться подаётся каждый тик заново.
func (a *Arena) SetVelocity(id uint32, v cp.Vector) {
	fb, ok := a.bodies[id]
	if !ok {
		return
	}
	fb.body.SetVelocityVector(v)
}

// Step интегрирует пространство на тик и обновляет счётчики
// неподвижности (их читает прицеливание).
func (a *Arena) Step(dt time.Duration) {
	a.space.Step(dt.Seconds())

	for _, fb := range a.bodies {
		pos := fb.body.Position()
		if pos.Distance(fb.lastPos) < stillEpsilon {
			fb.still += dt
		} else {
			fb.still = 0
		}
		fb.lastPos = pos
		fb.body.SetVelocityVector(cp.Vector{})
	}
}

// StillFor — как долго боец стоит на месте.
func (a *Arena) StillFor(id uint32) time.Duration {
	fb, ok := a.bodies[id]
	if !ok {
		return 0
	}
	return fb.still
}

// clamp удерживает точку внутри стен с учётом радиуса тела.
func (a *Arena) clamp(p cp.Vector) cp.Vector {
	if p.X < FighterRadius {
		p.X = FighterRadius
	}
	if p.X > a.width-FighterRadius {
		p.X = a.width - FighterRadius
	}
	if p.Y < FighterRadius {
		p.Y = FighterRadius
	}
	if p.Y > a.height-FighterRadius {
		p.Y = a.height - FighterRadius
	}
	return p
}
