// Package workspace holds the pure domain logic of the project workspace:
// the design-stage progression and the room inventory rules.
package workspace

import appErr "github.com/maya-ai/engine/pkg/errors"

// Stage is the workspace progression of a project. Stages advance one step
// at a time and never skip: floor_plan -> interior -> exterior.
type Stage string

const (
	StageFloorPlan Stage = "floor_plan"
	StageInterior  Stage = "interior"
	StageExterior  Stage = "exterior"
)

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	switch s {
	case StageFloorPlan, StageInterior, StageExterior:
		return true
	}
	return false
}

// Next returns the stage that follows s. The final stage returns itself.
func (s Stage) Next() Stage {
	switch s {
	case StageFloorPlan:
		return StageInterior
	case StageInterior:
		return StageExterior
	default:
		return s
	}
}

// CanAdvance reports whether moving from s to target is a legal single
// forward step. Staying in place is allowed; jumps and backward moves are not.
func (s Stage) CanAdvance(target Stage) bool {
	if !s.Valid() || !target.Valid() {
		return false
	}
	return target == s || target == s.Next()
}

// Advance validates the transition and returns the resulting stage.
func (s Stage) Advance(target Stage) (Stage, error) {
	if !s.CanAdvance(target) {
		return s, appErr.New(appErr.CodeInvalid, "illegal stage transition "+string(s)+" -> "+string(target))
	}
	return target, nil
}
