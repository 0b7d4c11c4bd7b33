package orderingserver

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	"github.com/shopspring/decimal"

	apierrors "github.com/Apurer/b2b-ordering-api/internal/shared/errors"
)

// bindIDParam binds a path parameter that must hold a UUID. It answers 400
// itself and reports false when the value is unusable.
func bindIDParam(c *gin.Context, name string) (string, bool) {
	var raw string
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &raw, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Required:      true,
	})
	if err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(fmt.Sprintf("invalid %s: %s", name, err)))
		return "", false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(fmt.Sprintf("invalid %s: must be a UUID", name)))
		return "", false
	}
	return id.String(), true
}

// bindQuery binds an optional form-style query parameter into dest, which
// must be a pointer to a pointer.
func bindQuery(c *gin.Context, name string, dest any) bool {
	if err := runtime.BindQueryParameter("form", true, false, name, c.Request.URL.Query(), dest); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(fmt.Sprintf("invalid query parameter %s: %s", name, err)))
		return false
	}
	return true
}

func parseDecimalQuery(c *gin.Context, name string, raw *string) (*decimal.Decimal, bool) {
	if raw == nil {
		return nil, true
	}
	value, err := decimal.NewFromString(*raw)
	if err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(fmt.Sprintf("invalid query parameter %s: must be a decimal", name)))
		return nil, false
	}
	return &value, true
}

func deref[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}
