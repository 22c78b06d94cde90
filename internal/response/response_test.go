package response

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "VALIDATION_ERROR: bad days", NewAppError(ErrCodeValidation, "bad days", "").Error())
	assert.Equal(t, "IMPORT_FAILED: failed to parse CSV (row 3)", NewAppError(ErrCodeImport, "failed to parse CSV", "row 3").Error())
}

func TestAppError_Unwrap(t *testing.T) {
	wrapped := fmt.Errorf("import: %w", NewAppError(ErrCodeTooLarge, "file too large", ""))

	var appErr *AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, ErrCodeTooLarge, appErr.Code)
}

func TestSendError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	SendError(c, http.StatusBadRequest, ErrCodeValidation, "올바른 일수가 아닙니다")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, c.IsAborted())
	assert.JSONEq(t, `{"error":"올바른 일수가 아닙니다","code":"VALIDATION_ERROR"}`, w.Body.String())
}
