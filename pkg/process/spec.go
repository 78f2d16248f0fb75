// SPDX-License-Identifier: Apache-2.0

// Package process holds the recipe value types a SubstrateAndProcessTracker
// drives a substrate through: a ProcessSpec of ordered ProcessStepSpecs, and
// the ProcessStepResult/ProcessStepTrackerResultItem recorded as each step
// completes.
package process

import (
	"errors"
	"fmt"
)

// Vars is a read-only named-value set, used for both recipe-level and
// step-level variables.
type Vars map[string]string

// Get returns the named variable, or "" if unset.
func (v Vars) Get(name string) string { return v[name] }

// ErrStepAlreadyBound is returned by StepSpec.bindToSpec when the one-shot
// ProcessSpec/StepNum binding has already been performed (§3, §7).
var ErrStepAlreadyBound = errors.New("process: step already bound to a process spec")

// Spec is an ordered process recipe: a named set of steps a substrate must
// complete, plus recipe-wide variables.
//
// Construct with NewSpec, never by composing a Spec literal directly: the
// constructor is what performs the one-shot back-reference binding that
// invariant (§3) requires ("every step's process_spec back-reference points
// to its owning spec and step_num equals its 1-based index").
type Spec struct {
	RecipeName      string
	RecipeVariables Vars
	steps           []*StepSpec
}

// NewSpec builds a Spec from an ordered list of not-yet-bound step specs,
// binding each one's back-reference and 1-based StepNum exactly once.
// Passing a StepSpec that is already bound to a different Spec is a
// programmer error and returns ErrStepAlreadyBound.
func NewSpec(recipeName string, vars Vars, steps []*StepSpec) (*Spec, error) {
	spec := &Spec{
		RecipeName:      recipeName,
		RecipeVariables: vars,
		steps:           steps,
	}
	for i, step := range steps {
		if err := step.bindToSpec(spec, i+1); err != nil {
			return nil, fmt.Errorf("process: binding step %d of recipe %q: %w", i+1, recipeName, err)
		}
	}
	return spec, nil
}

// Steps returns the ordered step list. The returned slice must not be
// mutated by callers; copy it (e.g. via CopySteps) to build a tracker's
// independent remaining-steps list.
func (s *Spec) Steps() []*StepSpec { return s.steps }

// CopySteps returns a fresh copy of the step list, suitable for seeding a
// tracker's mutable RemainingStepSpecList (§3, invariant (d)).
func (s *Spec) CopySteps() []*StepSpec {
	out := make([]*StepSpec, len(s.steps))
	copy(out, s.steps)
	return out
}
