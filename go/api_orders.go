package orderingserver

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	orderhttpmapper "github.com/Apurer/b2b-ordering-api/internal/domains/orders/adapters/http/mapper"
	ordersapp "github.com/Apurer/b2b-ordering-api/internal/domains/orders/application"
	ordertypes "github.com/Apurer/b2b-ordering-api/internal/domains/orders/application/types"
	orderdomain "github.com/Apurer/b2b-ordering-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/b2b-ordering-api/internal/domains/orders/ports"
	apierrors "github.com/Apurer/b2b-ordering-api/internal/shared/errors"
)

// IdempotencyKeyHeader carries the client's retry key for order placement.
const IdempotencyKeyHeader = "Idempotency-Key"

// OrderAPI wires HTTP transport with the orders bounded context service and workflows.
type OrderAPI struct {
	service   orderports.Service
	workflows orderports.WorkflowOrchestrator
}

// NewOrderAPI creates an OrderAPI. workflows may be nil, in which case
// placement calls the service directly.
func NewOrderAPI(service orderports.Service, workflows orderports.WorkflowOrchestrator) OrderAPI {
	return OrderAPI{service: service, workflows: workflows}
}

// Post /v1/orders
// Places an order
func (api *OrderAPI) CreateOrder(c *gin.Context) {
	var payload orderhttpmapper.CreateOrder
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	input := orderhttpmapper.ToCreateOrderInput(payload, c.GetHeader(IdempotencyKeyHeader))
	order, err := api.placeOrder(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, orderhttpmapper.FromDomainOrder(order))
}

func (api *OrderAPI) placeOrder(ctx context.Context, input ordertypes.CreateOrderInput) (*orderdomain.Order, error) {
	if api.workflows != nil {
		return api.workflows.PlaceOrder(ctx, input)
	}
	return api.service.CreateOrder(ctx, input)
}

type listOrdersParams struct {
	Status *string
	Skip   *int
	Limit  *int
}

// Get /v1/orders
// Lists the caller's orders, newest first
func (api *OrderAPI) ListMyOrders(c *gin.Context) {
	var p listOrdersParams
	if !bindQuery(c, "status", &p.Status) || !bindQuery(c, "skip", &p.Skip) || !bindQuery(c, "limit", &p.Limit) {
		return
	}
	orders, err := api.service.ListMyOrders(c.Request.Context(), ordertypes.ListOrdersInput{
		Status: deref(p.Status),
		Skip:   deref(p.Skip),
		Limit:  deref(p.Limit),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrders(orders))
}

// Get /v1/orders/:orderId
func (api *OrderAPI) GetOrder(c *gin.Context) {
	id, ok := bindIDParam(c, "orderId")
	if !ok {
		return
	}
	order, err := api.service.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

// Put /v1/orders/:orderId/status
// Moves an order along its lifecycle
func (api *OrderAPI) UpdateOrderStatus(c *gin.Context) {
	id, ok := bindIDParam(c, "orderId")
	if !ok {
		return
	}
	var payload orderhttpmapper.UpdateStatus
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	status, err := orderdomain.ParseStatus(payload.Status)
	if err != nil {
		respondError(c, fmt.Errorf("%w: %w", ordersapp.ErrInvalidInput, err))
		return
	}
	order, err := api.service.UpdateOrderStatus(c.Request.Context(), id, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

// Post /v1/orders/:orderId/cancel
// Cancels a pending order and returns its stock
func (api *OrderAPI) CancelOrder(c *gin.Context) {
	id, ok := bindIDParam(c, "orderId")
	if !ok {
		return
	}
	order, err := api.service.CancelOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}
