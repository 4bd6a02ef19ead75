package recoerrors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/motorlot/recoengine/recoerrors"
)

func TestTypedErrorsRoundTripThroughErrorsAs(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind string
		as   func(error) bool
	}{
		{
			name: "validation",
			err:  recoerrors.NewValidationError("bad input"),
			kind: recoerrors.KindValidation,
			as:   func(e error) bool { _, ok := recoerrors.AsValidationError(e); return ok },
		},
		{
			name: "no such session",
			err:  recoerrors.NewNoSuchSessionError("s1"),
			kind: recoerrors.KindNoSuchSession,
			as:   func(e error) bool { _, ok := recoerrors.AsNoSuchSessionError(e); return ok },
		},
		{
			name: "timeout",
			err:  recoerrors.NewTimeoutError("too slow"),
			kind: recoerrors.KindTimeout,
			as:   func(e error) bool { _, ok := recoerrors.AsTimeoutError(e); return ok },
		},
		{
			name: "cancelled",
			err:  recoerrors.NewCancelledError("ctx done"),
			kind: recoerrors.KindCancelled,
			as:   func(e error) bool { _, ok := recoerrors.AsCancelledError(e); return ok },
		},
		{
			name: "analyzer error",
			err:  recoerrors.NewAnalyzerError("bad data"),
			kind: recoerrors.KindAnalyzerError,
			as:   func(e error) bool { _, ok := recoerrors.AsAnalyzerError(e); return ok },
		},
		{
			name: "internal error",
			err:  recoerrors.NewInternalError("panic recovered"),
			kind: recoerrors.KindInternalError,
			as:   func(e error) bool { _, ok := recoerrors.AsInternalError(e); return ok },
		},
		{
			name: "overflow",
			err:  recoerrors.NewOverflowError("s1"),
			kind: recoerrors.KindOverflow,
			as:   func(e error) bool { _, ok := recoerrors.AsOverflowError(e); return ok },
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, tc.as(tc.err))
			assert.Equal(t, tc.kind, recoerrors.Kind(tc.err))

			wrapped := fmt.Errorf("context: %w", tc.err)
			assert.True(t, tc.as(wrapped))
			assert.Equal(t, tc.kind, recoerrors.Kind(wrapped))
		})
	}
}

func TestKindUnrecognizedErrorIsInternal(t *testing.T) {
	assert.Equal(t, recoerrors.KindInternalError, recoerrors.Kind(errors.New("boom")))
}

func TestKindNilIsEmpty(t *testing.T) {
	assert.Equal(t, "", recoerrors.Kind(nil))
}
