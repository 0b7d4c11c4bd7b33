package orderingserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	accounthttpmapper "github.com/Apurer/b2b-ordering-api/internal/domains/accounts/adapters/http/mapper"
	accountdomain "github.com/Apurer/b2b-ordering-api/internal/domains/accounts/domain"
	accountports "github.com/Apurer/b2b-ordering-api/internal/domains/accounts/ports"
	apierrors "github.com/Apurer/b2b-ordering-api/internal/shared/errors"
)

// AccountAPI wires HTTP transport with the accounts bounded context.
type AccountAPI struct {
	service accountports.Service
}

// NewAccountAPI creates an AccountAPI backed by the provided service.
func NewAccountAPI(service accountports.Service) AccountAPI {
	return AccountAPI{service: service}
}

// Post /v1/accounts/register
// Opens an account and signs it in
func (api *AccountAPI) Register(c *gin.Context) {
	var payload accounthttpmapper.Register
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	result, err := api.service.Register(c.Request.Context(), accounthttpmapper.ToRegisterInput(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, accounthttpmapper.FromAuthResult(result))
}

// Post /v1/accounts/login
func (api *AccountAPI) Login(c *gin.Context) {
	var payload accounthttpmapper.Login
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	result, err := api.service.Login(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, accounthttpmapper.FromAuthResult(result))
}

// Post /v1/accounts/logout
// Revokes the bearer token. Unknown tokens are accepted.
func (api *AccountAPI) Logout(c *gin.Context) {
	if err := api.service.Logout(c.Request.Context(), bearerToken(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /v1/accounts/me
func (api *AccountAPI) Me(c *gin.Context) {
	account, err := api.service.Me(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, accounthttpmapper.FromDomainAccount(account))
}

// Put /v1/accounts/me
func (api *AccountAPI) UpdateProfile(c *gin.Context) {
	var payload accounthttpmapper.UpdateProfile
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	account, err := api.service.UpdateProfile(c.Request.Context(), accounthttpmapper.ToUpdateProfileInput(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, accounthttpmapper.FromDomainAccount(account))
}

// Get /v1/accounts/:accountId
func (api *AccountAPI) GetAccount(c *gin.Context) {
	id, ok := bindIDParam(c, "accountId")
	if !ok {
		return
	}
	account, err := api.service.GetAccount(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, accounthttpmapper.FromDomainAccount(account))
}

// Put /v1/accounts/:accountId/verification
// Records a back-office review outcome
func (api *AccountAPI) Verify(c *gin.Context) {
	id, ok := bindIDParam(c, "accountId")
	if !ok {
		return
	}
	var payload accounthttpmapper.Verification
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	account, err := api.service.Verify(c.Request.Context(), id, accountdomain.VerificationStatus(payload.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, accounthttpmapper.FromDomainAccount(account))
}
