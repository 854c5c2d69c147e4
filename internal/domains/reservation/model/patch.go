package model

import (
	"classbook/shared/constant"
	"classbook/shared/timezone"
)

// Patch names the fields a transition may change, so the repository boundary
// never has to guess whether an empty field was omitted or cleared.
type Patch struct {
	Status    *string
	Feedback  *string
	DecidedBy *string
}

// Fields renders the patch into the column map consumed by the generic
// repository, stamping modification metadata.
func (p Patch) Fields(actor string) map[string]any {
	fields := map[string]any{
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: actor,
	}

	if p.Status != nil {
		fields[FieldStatus] = *p.Status
	}

	if p.Feedback != nil {
		fields[FieldFeedback] = *p.Feedback
	}

	if p.DecidedBy != nil {
		fields[FieldDecidedBy] = *p.DecidedBy
	}

	return fields
}

func ptr(s string) *string { return &s }

// StatusPatch builds a bare status transition patch.
func StatusPatch(status string) Patch {
	return Patch{Status: ptr(status)}
}

// DecisionPatch builds the patch for an approve/reject decision.
func DecisionPatch(status, feedback, actor string) Patch {
	p := Patch{Status: ptr(status), DecidedBy: ptr(actor)}
	if feedback != "" {
		p.Feedback = ptr(feedback)
	}

	return p
}
