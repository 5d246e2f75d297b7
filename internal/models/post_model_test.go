package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostStatus_Transitions(t *testing.T) {
	tests := []struct {
		from    PostStatus
		to      PostStatus
		allowed bool
	}{
		{PostStatusPending, PostStatusApproved, true},
		{PostStatusPending, PostStatusDeclined, true},
		{PostStatusPending, PostStatusRetry, true},
		{PostStatusPending, PostStatusPosted, false},
		{PostStatusApproved, PostStatusPosted, true},
		{PostStatusApproved, PostStatusFailed, true},
		{PostStatusApproved, PostStatusDeclined, false},
		{PostStatusRetry, PostStatusPending, true},
		{PostStatusRetry, PostStatusApproved, false},
		{PostStatusFailed, PostStatusApproved, true},
		{PostStatusFailed, PostStatusPosted, false},
		{PostStatusDeclined, PostStatusApproved, false},
		{PostStatusDeclined, PostStatusPending, false},
		{PostStatusPosted, PostStatusFailed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to))

			next, err := tt.from.Transition(tt.to)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.to, next)
			} else {
				require.Error(t, err)
				assert.Equal(t, tt.from, next, "failed transition must not change status")
			}
		})
	}
}

func TestSplitContent(t *testing.T) {
	t.Run("bifurcated", func(t *testing.T) {
		q, s := SplitContent("What is a mutex?\n|||SPLIT|||\nA mutual exclusion lock.")
		assert.Equal(t, "What is a mutex?", q)
		assert.Equal(t, "A mutual exclusion lock.", s)
	})

	t.Run("single part", func(t *testing.T) {
		q, s := SplitContent("Just one body of text.")
		assert.Equal(t, "Just one body of text.", q)
		assert.Empty(t, s)
	})
}
