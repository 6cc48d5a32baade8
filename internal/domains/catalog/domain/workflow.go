package domain

import (
	"errors"
	"sort"
	"time"
)

var ErrStepOrderGap = errors.New("workflow steps must be contiguously ordered from 1")

// ServiceWorkflowTemplate names the ordered steps a service category
// undergoes between pickup and delivery.
type ServiceWorkflowTemplate struct {
	TemplateID   int64
	ServiceID    int64
	TemplateName string
	Steps        []WorkflowStep
	CreatedAt    time.Time
}

// WorkflowStep is one stage of a template. Customer-facing steps surface in
// order tracking; internal steps only drive vendor tooling.
type WorkflowStep struct {
	StepID                 int64
	TemplateID             int64
	StepName               string
	StepOrder              int
	IsCustomerFacing       bool
	EstimatedDurationHours *int
	CreatedAt              time.Time
}

// Validate checks the step ordering invariant.
func (t ServiceWorkflowTemplate) Validate() error {
	steps := make([]WorkflowStep, len(t.Steps))
	copy(steps, t.Steps)
	sort.Slice(steps, func(i, j int) bool { return steps[i].StepOrder < steps[j].StepOrder })
	for i, step := range steps {
		if step.StepOrder != i+1 {
			return ErrStepOrderGap
		}
	}
	return nil
}

// CustomerFacingSteps returns the steps shown to residents, in order.
func (t ServiceWorkflowTemplate) CustomerFacingSteps() []WorkflowStep {
	var visible []WorkflowStep
	for _, step := range t.Steps {
		if step.IsCustomerFacing {
			visible = append(visible, step)
		}
	}
	sort.Slice(visible, func(i, j int) bool { return visible[i].StepOrder < visible[j].StepOrder })
	return visible
}
