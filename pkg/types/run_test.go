package types

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunComplete(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		wantErr error
	}{
		{
			name:    "from running succeeds",
			initial: RunStateRunning,
		},
		{
			name:    "from completed fails",
			initial: RunStateCompleted,
			wantErr: ErrInvalidState,
		},
		{
			name:    "from failed fails",
			initial: RunStateFailed,
			wantErr: ErrInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := &Run{
				RunID:     "complete-test",
				State:     tt.initial,
				CreatedAt: time.Now(),
			}

			err := run.Complete()

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.initial, run.State, "state should not change on error")
				assert.Nil(t, run.CompletedAt, "CompletedAt should remain nil on error")
			} else {
				assert.NoError(t, err)
				assert.Equal(t, RunStateCompleted, run.State)
				assert.NotNil(t, run.CompletedAt, "CompletedAt should be set")
				assert.WithinDuration(t, time.Now(), *run.CompletedAt, time.Second)
			}
		})
	}
}

func TestRunFail(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		cause   error
		wantMsg string
		wantErr error
	}{
		{
			name:    "from running records cause",
			initial: RunStateRunning,
			cause:   errors.New("boom"),
			wantMsg: "boom",
		},
		{
			name:    "from running with nil cause",
			initial: RunStateRunning,
		},
		{
			name:    "from completed fails",
			initial: RunStateCompleted,
			cause:   errors.New("boom"),
			wantErr: ErrInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := &Run{RunID: "fail-test", State: tt.initial}

			err := run.Fail(tt.cause)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.initial, run.State)
				assert.Empty(t, run.Error)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, RunStateFailed, run.State)
			assert.Equal(t, tt.wantMsg, run.Error)
			assert.NotNil(t, run.CompletedAt)
		})
	}
}

func TestRunCompletePreservesCreatedAt(t *testing.T) {
	created := time.Now().Add(-24 * time.Hour)
	run := &Run{
		RunID:     "preserve-test",
		State:     RunStateRunning,
		CreatedAt: created,
	}

	err := run.Complete()
	assert.NoError(t, err)
	assert.Equal(t, created, run.CreatedAt, "CreatedAt must not change")
}
