package orderingserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	cataloghttpmapper "github.com/Apurer/b2b-ordering-api/internal/domains/catalog/adapters/http/mapper"
	catalogports "github.com/Apurer/b2b-ordering-api/internal/domains/catalog/ports"
	apierrors "github.com/Apurer/b2b-ordering-api/internal/shared/errors"
)

// CatalogAPI wires HTTP transport with the catalog bounded context.
type CatalogAPI struct {
	service catalogports.Service
}

// NewCatalogAPI creates a CatalogAPI backed by the provided service.
func NewCatalogAPI(service catalogports.Service) CatalogAPI {
	return CatalogAPI{service: service}
}

type findItemsParams struct {
	Category *string
	Brand    *string
	Search   *string
	MinPrice *string
	MaxPrice *string
	InStock  *bool
	Skip     *int
	Limit    *int
}

// Get /v1/catalog/items
// Lists active items, newest first
func (api *CatalogAPI) FindItems(c *gin.Context) {
	var p findItemsParams
	if !bindQuery(c, "category", &p.Category) ||
		!bindQuery(c, "brand", &p.Brand) ||
		!bindQuery(c, "search", &p.Search) ||
		!bindQuery(c, "minPrice", &p.MinPrice) ||
		!bindQuery(c, "maxPrice", &p.MaxPrice) ||
		!bindQuery(c, "inStock", &p.InStock) ||
		!bindQuery(c, "skip", &p.Skip) ||
		!bindQuery(c, "limit", &p.Limit) {
		return
	}
	minPrice, ok := parseDecimalQuery(c, "minPrice", p.MinPrice)
	if !ok {
		return
	}
	maxPrice, ok := parseDecimalQuery(c, "maxPrice", p.MaxPrice)
	if !ok {
		return
	}
	items, err := api.service.FindItems(c.Request.Context(), catalogports.ItemFilter{
		Category: deref(p.Category),
		Brand:    deref(p.Brand),
		Search:   deref(p.Search),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		InStock:  deref(p.InStock),
		Skip:     deref(p.Skip),
		Limit:    deref(p.Limit),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromDomainItems(items))
}

// Get /v1/catalog/items/:itemId
func (api *CatalogAPI) GetItem(c *gin.Context) {
	id, ok := bindIDParam(c, "itemId")
	if !ok {
		return
	}
	item, err := api.service.GetItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromDomainItem(item))
}

// Post /v1/catalog/items
func (api *CatalogAPI) CreateItem(c *gin.Context) {
	var payload cataloghttpmapper.CreateItem
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	item, err := api.service.CreateItem(c.Request.Context(), cataloghttpmapper.ToCreateInput(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cataloghttpmapper.FromDomainItem(item))
}

// Put /v1/catalog/items/:itemId
// Changes descriptive and pricing data; stock counters stay with the ledger
func (api *CatalogAPI) UpdateItem(c *gin.Context) {
	id, ok := bindIDParam(c, "itemId")
	if !ok {
		return
	}
	var payload cataloghttpmapper.UpdateItem
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	item, err := api.service.UpdateItem(c.Request.Context(), cataloghttpmapper.ToUpdateInput(id, payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromDomainItem(item))
}

// Delete /v1/catalog/items/:itemId
func (api *CatalogAPI) DeleteItem(c *gin.Context) {
	id, ok := bindIDParam(c, "itemId")
	if !ok {
		return
	}
	if err := api.service.DeleteItem(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
