package controllers

import (
	"net/http"
	"strings"

	"github.com/lmartins/retail-pos/api/responses"
	"github.com/lmartins/retail-pos/api/validators"
	"github.com/lmartins/retail-pos/internal/checkout"
	"github.com/lmartins/retail-pos/internal/sales"
	"github.com/lmartins/retail-pos/pkg/logger"
)

// FinalizeSale runs the checkout. The Idempotency-Key header is optional;
// when present, retries with the same key return the original sale.
func FinalizeSale(svc *checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload checkout.CheckoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))

		result, err := svc.Finalize(r.Context(), payload, idempotencyKey)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusCreated
		if result.Replayed {
			status = http.StatusOK
		}
		responses.WriteSuccessStatus(w, status, result)
	}
}

// ListTodaySales returns the current day's sales.
func ListTodaySales(svc *sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		today, err := svc.ListToday(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, today)
	}
}
