package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/usageworks/accounting/internal/catalog/domain"
)

type itemView struct {
	SKU  string `json:"sku"`
	Name string `json:"name"`
	Unit string `json:"unit"`
}

type priceView struct {
	SKU        string  `json:"sku"`
	Price      string  `json:"price"`
	ValidFrom  string  `json:"valid_from"`
	ValidUntil *string `json:"valid_until"`
}

// The catalogue is the same for every caller, so responses can sit in
// caches for a while.
func setGlobalCacheHeaders(c *gin.Context) {
	c.Header("Vary", "Accept-Encoding")
	c.Header("Cache-Control", "private,max-age=300")
}

func renderItem(item *catalogdomain.BillingItem) itemView {
	return itemView{
		SKU:  item.SKU,
		Name: item.Name,
		Unit: item.Unit,
	}
}

func (s *Server) ListSKUs(c *gin.Context) {
	items, err := s.catalogSvc.ListItems(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	views := make([]itemView, 0, len(items))
	for i := range items {
		views = append(views, renderItem(&items[i]))
	}
	setGlobalCacheHeaders(c)
	c.JSON(http.StatusOK, views)
}

func (s *Server) GetSKU(c *gin.Context) {
	item, err := s.catalogSvc.GetItem(c.Request.Context(), c.Param("sku"))
	if err != nil {
		if errors.Is(err, catalogdomain.ErrNotFound) {
			c.Header("Cache-Control", "max-age=60")
		}
		AbortWithError(c, err)
		return
	}
	setGlobalCacheHeaders(c)
	c.JSON(http.StatusOK, renderItem(item))
}

func (s *Server) ListPrices(c *gin.Context) {
	prices, err := s.catalogSvc.CurrentPrices(c.Request.Context(), time.Now().UTC())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	views := make([]priceView, 0, len(prices))
	for _, p := range prices {
		var until *string
		if p.ValidUntil != nil {
			u := p.ValidUntil.UTC().Format(timeLayout)
			until = &u
		}
		views = append(views, priceView{
			SKU:        p.SKU,
			Price:      p.Price.String(),
			ValidFrom:  p.ValidFrom.UTC().Format(timeLayout),
			ValidUntil: until,
		})
	}
	setGlobalCacheHeaders(c)
	c.JSON(http.StatusOK, views)
}
