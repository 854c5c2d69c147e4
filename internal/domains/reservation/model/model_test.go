package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"classbook/internal/domains/reservation/model"
	"classbook/shared/constant"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{name: "pending to approved", from: model.StatusPending, to: model.StatusApproved, want: true},
		{name: "pending to rejected", from: model.StatusPending, to: model.StatusRejected, want: true},
		{name: "pending to expired", from: model.StatusPending, to: model.StatusExpired, want: true},
		{name: "approved to cancelled", from: model.StatusApproved, to: model.StatusCancelled, want: true},
		{name: "pending to cancelled", from: model.StatusPending, to: model.StatusCancelled, want: false},
		{name: "approved to rejected", from: model.StatusApproved, to: model.StatusRejected, want: false},
		{name: "rejected is final", from: model.StatusRejected, to: model.StatusApproved, want: false},
		{name: "cancelled is final", from: model.StatusCancelled, to: model.StatusPending, want: false},
		{name: "expired is final", from: model.StatusExpired, to: model.StatusApproved, want: false},
		{name: "no self transition", from: model.StatusPending, to: model.StatusPending, want: false},
		{name: "unknown status", from: "archived", to: model.StatusApproved, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, model.CanTransition(tt.from, tt.to))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, model.IsTerminal(model.StatusPending))
	assert.False(t, model.IsTerminal(model.StatusApproved))
	assert.True(t, model.IsTerminal(model.StatusRejected))
	assert.True(t, model.IsTerminal(model.StatusCancelled))
	assert.True(t, model.IsTerminal(model.StatusExpired))
}

func TestDecisionPatch(t *testing.T) {
	t.Run("approval without feedback", func(t *testing.T) {
		fields := model.DecisionPatch(model.StatusApproved, "", "admin-1").Fields("admin-1")

		assert.Equal(t, model.StatusApproved, fields[model.FieldStatus])
		assert.Equal(t, "admin-1", fields[model.FieldDecidedBy])
		assert.Equal(t, "admin-1", fields[constant.FieldModifiedBy])
		assert.NotContains(t, fields, model.FieldFeedback)
		assert.Contains(t, fields, constant.FieldModifiedAt)
	})

	t.Run("rejection carries feedback", func(t *testing.T) {
		fields := model.DecisionPatch(model.StatusRejected, "room closed for maintenance", "admin-1").Fields("admin-1")

		assert.Equal(t, model.StatusRejected, fields[model.FieldStatus])
		assert.Equal(t, "room closed for maintenance", fields[model.FieldFeedback])
	})
}

func TestStatusPatch(t *testing.T) {
	fields := model.StatusPatch(model.StatusExpired).Fields("system")

	assert.Equal(t, model.StatusExpired, fields[model.FieldStatus])
	assert.Equal(t, "system", fields[constant.FieldModifiedBy])
	assert.NotContains(t, fields, model.FieldDecidedBy)
	assert.NotContains(t, fields, model.FieldFeedback)
}
