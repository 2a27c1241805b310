package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Format(t *testing.T) {
	cause := errors.New("connection reset")

	assert.Equal(t, "[not_found] file not found", New(KindNotFound, "file not found").Error())
	assert.Equal(t, "[storage_error] list failed: connection reset",
		Wrap(KindStorage, "list failed", cause).Error())
}

func TestKindOf_TraversesChain(t *testing.T) {
	cause := errors.New("boom")
	inner := Wrap(KindConflict, "exists", cause)
	outer := fmt.Errorf("create album: %w", inner)

	assert.Equal(t, KindConflict, KindOf(outer))
	assert.Equal(t, "exists", MessageOf(outer))
	assert.True(t, IsConflict(outer))
	assert.True(t, errors.Is(outer, cause))
	assert.Equal(t, KindUnknown, KindOf(cause))
	assert.Empty(t, MessageOf(cause))
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name string
		err  error
		pred func(error) bool
		want bool
	}{
		{"not found", New(KindNotFound, "x"), IsNotFound, true},
		{"forbidden", New(KindForbidden, "x"), IsForbidden, true},
		{"invalid name is a bad request", New(KindInvalidName, "x"), IsBadRequest, true},
		{"bad request", New(KindBadRequest, "x"), IsBadRequest, true},
		{"storage is not a bad request", New(KindStorage, "x"), IsBadRequest, false},
		{"plain error", errors.New("x"), IsNotFound, false},
		{"nil", nil, IsNotFound, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pred(tt.err))
		})
	}
}
