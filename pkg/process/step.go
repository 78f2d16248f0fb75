// SPDX-License-Identifier: Apache-2.0

package process

// StepSpec is a single step of a process recipe: the locations it may be
// performed at, and its own read-only variables.
//
// ProcessSpec and StepNum are relational back-edges (§9 design notes) set
// exactly once by Spec's constructor; they are never ownership and must not
// be mutated outside bindToSpec.
type StepSpec struct {
	UsableLocNameList []string
	StepVariables     Vars

	processSpec *Spec
	stepNum     int
}

// NewStepSpec builds a not-yet-bound step. Call process.NewSpec with the
// resulting steps to bind them into a recipe.
func NewStepSpec(usableLocNameList []string, vars Vars) *StepSpec {
	return &StepSpec{UsableLocNameList: usableLocNameList, StepVariables: vars}
}

// bindToSpec performs the one-shot ProcessSpec/StepNum binding. Calling it
// twice (StepNum already non-zero) is a programmer error.
func (s *StepSpec) bindToSpec(spec *Spec, stepNum int) error {
	if s.processSpec != nil || s.stepNum != 0 {
		return ErrStepAlreadyBound
	}
	s.processSpec = spec
	s.stepNum = stepNum
	return nil
}

// ProcessSpec returns the owning recipe. Panics if the step has not been
// bound yet (a StepSpec is only usable once passed through process.NewSpec).
func (s *StepSpec) ProcessSpec() *Spec {
	if s.processSpec == nil {
		panic("process: step spec not bound to a process spec")
	}
	return s.processSpec
}

// StepNum returns the step's 1-based index within its owning recipe.
func (s *StepSpec) StepNum() int { return s.stepNum }
