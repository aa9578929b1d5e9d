package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shopmesh/shopmesh-backend/api/responses"
	"github.com/shopmesh/shopmesh-backend/api/validators"
	inventorysvc "github.com/shopmesh/shopmesh-backend/internal/inventory"
	"github.com/shopmesh/shopmesh-backend/pkg/enums"
	pkgerrors "github.com/shopmesh/shopmesh-backend/pkg/errors"
	"github.com/shopmesh/shopmesh-backend/pkg/logger"
)

// ProductStockStatus reports the physical/reserved/available view for one product.
func ProductStockStatus(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := parseUUIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := svc.ProductStockStatus(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}

// CheckAvailability answers whether the requested quantity can be reserved.
func CheckAvailability(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := parseUUIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quantity, err := validators.ParseQueryInt(r, "quantity", 1, 1, 1_000_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.CheckAvailability(r.Context(), productID, quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// LowStockAlerts lists raised alerts, optionally filtered by status.
func LowStockAlerts(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var status *enums.StockAlertStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			parsed, err := enums.ParseStockAlertStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status value"))
				return
			}
			status = &parsed
		}
		result, err := svc.GetLowStockAlerts(r.Context(), status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CustomerReservations lists a customer's reservations with product names.
func CustomerReservations(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := parseUUIDParam(r, "customerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reservations, err := svc.CustomerReservations(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"count":        len(reservations),
			"reservations": reservations,
		})
	}
}

// ListTransactions pages through the stock ledger.
func ListTransactions(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := inventorysvc.TransactionQuery{}

		productID, err := validators.ParseQueryUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		query.ProductID = productID

		if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
			parsed, err := enums.ParseTransactionType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type value"))
				return
			}
			query.Type = &parsed
		}

		if query.From, err = validators.ParseQueryTime(r, "from"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if query.To, err = validators.ParseQueryTime(r, "to"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if query.Page, err = validators.ParseQueryInt(r, "page", 1, 1, 1_000_000); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if query.Limit, err = validators.ParseQueryInt(r, "limit", 20, 1, 100); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListTransactions(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type reserveRequest struct {
	ProductID  uuid.UUID  `json:"product_id" validate:"required"`
	Quantity   int        `json:"quantity" validate:"required,min=1"`
	CustomerID uuid.UUID  `json:"customer_id" validate:"required"`
	CartID     *uuid.UUID `json:"cart_id,omitempty"`
}

// ReserveStock places or merges a hold for a customer.
func ReserveStock(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload reserveRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reservation, err := svc.Reserve(r.Context(), inventorysvc.ReserveInput{
			ProductID:  payload.ProductID,
			Quantity:   payload.Quantity,
			CustomerID: payload.CustomerID,
			CartID:     payload.CartID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"message":     "Stock reserved successfully",
			"reservation": reservation,
		})
	}
}

// ReleaseReservation cancels an active hold.
func ReleaseReservation(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reservationID, err := parseUUIDParam(r, "reservationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Release(r.Context(), reservationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ConfirmReservation promotes a hold into a permanent stock deduction.
func ConfirmReservation(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reservationID, err := parseUUIDParam(r, "reservationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParseQueryUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reservation, err := svc.Confirm(r.Context(), reservationID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"message":     "Reservation confirmed and stock deducted",
			"reservation": reservation,
		})
	}
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=0"`
}

// UpdateReservationQuantity resizes a hold; zero cancels it.
func UpdateReservationQuantity(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reservationID, err := parseUUIDParam(r, "reservationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reservation, err := svc.UpdateQuantity(r.Context(), reservationID, *payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"message":     "Reservation updated",
			"reservation": reservation,
		})
	}
}

// CleanupExpiredReservations runs the expiry sweep on demand.
func CleanupExpiredReservations(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.CleanupExpiredReservations(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"message":         fmt.Sprintf("Cleaned up %d expired reservations", result.Cleaned),
			"cleaned":         result.Cleaned,
			"reservation_ids": result.ReservationIDs,
		})
	}
}

type bulkItemRequest struct {
	ProductID  uuid.UUID `json:"product_id" validate:"required"`
	Quantity   int       `json:"quantity" validate:"min=0"`
	UpdateType string    `json:"update_type" validate:"omitempty,oneof=ADD SUBTRACT SET"`
}

type bulkUpdateRequest struct {
	Items  []bulkItemRequest `json:"items" validate:"required,min=1,dive"`
	Reason *string           `json:"reason,omitempty"`
}

// BulkUpdateStock applies an all-or-nothing batch of stock mutations.
func BulkUpdateStock(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload bulkUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items := make([]inventorysvc.BulkStockItem, 0, len(payload.Items))
		for _, item := range payload.Items {
			items = append(items, inventorysvc.BulkStockItem{
				ProductID:  item.ProductID,
				Quantity:   item.Quantity,
				UpdateType: enums.StockUpdateType(item.UpdateType),
			})
		}
		result, err := svc.BulkUpdateStock(r.Context(), items, payload.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"message": fmt.Sprintf("Successfully updated %d product(s)", result.Updated),
			"success": result.Success,
			"updated": result.Updated,
			"results": result.Results,
		})
	}
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	value, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name).WithDetails(map[string]any{"field": name})
	}
	return value, nil
}
