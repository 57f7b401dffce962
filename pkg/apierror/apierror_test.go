package apierror_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/jimyag/cvp/pkg/apierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		testFunc func(*testing.T)
	}{
		{
			name: "Error_Error",
			testFunc: func(t *testing.T) {
				t.Parallel()
				err := apierror.NewError("TestError", "test message")
				assert.Equal(t, "[TestError] test message", err.Error())
			},
		},
		{
			name: "Error_Error_WithRawError",
			testFunc: func(t *testing.T) {
				t.Parallel()
				rawErr := fmt.Errorf("raw error")
				err := apierror.WrapError(apierror.ErrInternalError, "test message", rawErr)
				assert.Contains(t, err.Error(), "test message")
				assert.Contains(t, err.Error(), "raw error")
			},
		},
		{
			name: "Error_Error_WithReasons",
			testFunc: func(t *testing.T) {
				t.Parallel()
				err := apierror.ErrValidationFailed.WithReasons([]string{"rule one", "rule two"})
				assert.Contains(t, err.Error(), "rule one")
				assert.Contains(t, err.Error(), "rule two")
			},
		},
		{
			name: "Error_Is_SameCode",
			testFunc: func(t *testing.T) {
				t.Parallel()
				err1 := apierror.NewError("TestError", "message 1")
				err2 := apierror.NewError("TestError", "message 2")
				assert.True(t, errors.Is(err1, err2))
			},
		},
		{
			name: "Error_Is_DifferentCode",
			testFunc: func(t *testing.T) {
				t.Parallel()
				err1 := apierror.NewError("TestError", "message")
				err2 := apierror.NewError("DifferentError", "message")
				assert.False(t, errors.Is(err1, err2))
			},
		},
		{
			name: "Error_Is_Predefined",
			testFunc: func(t *testing.T) {
				t.Parallel()
				err := apierror.WrapError(apierror.ErrAlreadyRunning, "unit cu-1 already running", nil)
				assert.True(t, errors.Is(err, apierror.ErrAlreadyRunning))
				assert.False(t, errors.Is(err, apierror.ErrAlreadyStopped))
			},
		},
		{
			name: "Error_Unwrap",
			testFunc: func(t *testing.T) {
				t.Parallel()
				rawErr := fmt.Errorf("raw error")
				err := apierror.WrapError(apierror.ErrRuntimeOperationFailed, "engine rejected", rawErr)
				assert.Equal(t, rawErr, errors.Unwrap(err))
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, tt.testFunc)
	}
}

func TestWithReasons_DoesNotMutateBase(t *testing.T) {
	t.Parallel()

	err := apierror.ErrValidationFailed.WithReasons([]string{"memory too small"})
	require.Len(t, err.Reasons, 1)

	// 预定义错误必须保持不变
	assert.Empty(t, apierror.ErrValidationFailed.Reasons)
	assert.Equal(t, apierror.ErrValidationFailed.Code, err.Code)
	assert.Equal(t, apierror.ErrValidationFailed.HTTPStatus, err.HTTPStatus)
}

func TestErrorResponse_JSON(t *testing.T) {
	t.Parallel()

	resp := apierror.NewErrorResponse("req-1", apierror.ErrNotFound)
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"code":"NotFound"`)
	assert.Contains(t, string(data), `"requestID":"req-1"`)
}

func TestPredefinedStatusCodes(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		err    *apierror.Error
		status int
	}{
		{apierror.ErrValidationFailed, 400},
		{apierror.ErrStateConflict, 409},
		{apierror.ErrAlreadyRunning, 409},
		{apierror.ErrAlreadyStopped, 409},
		{apierror.ErrUnitRunning, 409},
		{apierror.ErrNotFound, 404},
		{apierror.ErrUnauthorizedOperation, 403},
		{apierror.ErrRuntimeUnreachable, 503},
		{apierror.ErrRuntimeOperationFailed, 502},
	}

	for _, tc := range testcases {
		assert.Equal(t, tc.status, tc.err.HTTPStatus, tc.err.Code)
	}
}
