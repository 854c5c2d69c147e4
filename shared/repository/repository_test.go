package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsExclusionViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "plain error",
			err:  errors.New("connection refused"),
			want: false,
		},
		{
			name: "exclusion violation",
			err:  &pq.Error{Code: "23P01"},
			want: true,
		},
		{
			name: "wrapped exclusion violation",
			err:  fmt.Errorf("failed to insert data (schedule): %w", &pq.Error{Code: "23P01"}),
			want: true,
		},
		{
			name: "unique violation is not an exclusion violation",
			err:  &pq.Error{Code: "23505"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsExclusionViolation(tt.err))
		})
	}
}
