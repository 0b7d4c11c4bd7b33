package orderingserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions bundles the handlers of every bounded context.
type ApiHandleFunctions struct {
	AccountAPI AccountAPI
	CatalogAPI CatalogAPI
	OrderAPI   OrderAPI
	// Authenticator resolves bearer tokens. Without one every request is anonymous.
	Authenticator Authenticator
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds the routes to an existing gin engine. Middleware
// already installed on router runs before the bearer authentication.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	router.Use(BearerAuth(handleFunctions.Authenticator))
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		router.Handle(route.Method, route.Pattern, route.HandlerFunc)
	}
	return router
}

// DefaultHandleFunc answers routes without an implementation.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

// Healthz reports liveness.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func getRoutes(h ApiHandleFunctions) []Route {
	return []Route{
		{"Healthz", http.MethodGet, "/healthz", Healthz},

		{"Register", http.MethodPost, "/v1/accounts/register", h.AccountAPI.Register},
		{"Login", http.MethodPost, "/v1/accounts/login", h.AccountAPI.Login},
		{"Logout", http.MethodPost, "/v1/accounts/logout", h.AccountAPI.Logout},
		{"Me", http.MethodGet, "/v1/accounts/me", h.AccountAPI.Me},
		{"UpdateProfile", http.MethodPut, "/v1/accounts/me", h.AccountAPI.UpdateProfile},
		{"GetAccount", http.MethodGet, "/v1/accounts/:accountId", h.AccountAPI.GetAccount},
		{"VerifyAccount", http.MethodPut, "/v1/accounts/:accountId/verification", h.AccountAPI.Verify},

		{"FindItems", http.MethodGet, "/v1/catalog/items", h.CatalogAPI.FindItems},
		{"GetItem", http.MethodGet, "/v1/catalog/items/:itemId", h.CatalogAPI.GetItem},
		{"CreateItem", http.MethodPost, "/v1/catalog/items", h.CatalogAPI.CreateItem},
		{"UpdateItem", http.MethodPut, "/v1/catalog/items/:itemId", h.CatalogAPI.UpdateItem},
		{"DeleteItem", http.MethodDelete, "/v1/catalog/items/:itemId", h.CatalogAPI.DeleteItem},

		{"CreateOrder", http.MethodPost, "/v1/orders", h.OrderAPI.CreateOrder},
		{"ListMyOrders", http.MethodGet, "/v1/orders", h.OrderAPI.ListMyOrders},
		{"GetOrder", http.MethodGet, "/v1/orders/:orderId", h.OrderAPI.GetOrder},
		{"UpdateOrderStatus", http.MethodPut, "/v1/orders/:orderId/status", h.OrderAPI.UpdateOrderStatus},
		{"CancelOrder", http.MethodPost, "/v1/orders/:orderId/cancel", h.OrderAPI.CancelOrder},
	}
}
