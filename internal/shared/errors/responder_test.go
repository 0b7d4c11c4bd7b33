package errors

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errOutOfPallets = errors.New("out of pallets")

func serve(t *testing.T, r *Responder, err error) (*httptest.ResponseRecorder, ProblemDetail) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/v1/orders/:orderId", func(c *gin.Context) { r.RespondError(c, err) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/orders/42", nil))
	var body ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestResponder_UsesFirstMatchingMapper(t *testing.T) {
	r := NewResponder(nil,
		func(error) (ProblemDetail, bool) { return ProblemDetail{}, false },
		func(err error) (ProblemDetail, bool) {
			if errors.Is(err, errOutOfPallets) {
				return NewInsufficientStockProblem("item-1", 5, 2), true
			}
			return ProblemDetail{}, false
		},
	)

	rec, body := serve(t, r, errOutOfPallets)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	assert.Equal(t, TypeInsufficientStock, body.Type)
	assert.Equal(t, "/v1/orders/42", body.Instance)
	assert.Equal(t, "item-1", body.Extensions["itemId"])
	assert.EqualValues(t, 2, body.Extensions["available"])
}

func TestResponder_PassesProblemsThrough(t *testing.T) {
	rec, body := serve(t, NewResponder(nil), ErrForbidden.WithDetail("not your order"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "not your order", body.Detail)
}

func TestResponder_HidesUnmappedErrors(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	rec, body := serve(t, NewResponder(logger), errors.New("pq: connection reset by peer"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, body.Detail)
	assert.NotContains(t, rec.Body.String(), "connection reset")
	assert.Contains(t, logs.String(), "connection reset")
	assert.Contains(t, logs.String(), "/v1/orders/:orderId")
}

func TestWithExtension_LeavesTemplateUntouched(t *testing.T) {
	_ = ErrConflict.WithExtension("orderId", "o-1")
	assert.Nil(t, ErrConflict.Extensions)
}
