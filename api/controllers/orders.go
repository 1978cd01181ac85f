package controllers

import (
	"net/http"

	"github.com/ammargroup/storefront-backend/api/responses"
	"github.com/ammargroup/storefront-backend/api/validators"
	ordersvc "github.com/ammargroup/storefront-backend/internal/orders"
	"github.com/ammargroup/storefront-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

type placeOrderRequest struct {
	CustomerInfo ordersvc.CustomerInfo `json:"customerInfo" validate:"required"`
	Items        []ordersvc.OrderItem  `json:"items" validate:"required,min=1"`
	Total        decimal.Decimal       `json:"total"`
}

// PlaceOrder forwards a checkout to the fulfilment inbox.
func PlaceOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload placeOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.Place(r.Context(), ordersvc.PlaceOrderInput{
			Customer: payload.CustomerInfo,
			Items:    payload.Items,
			Total:    payload.Total,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, receipt)
	}
}
