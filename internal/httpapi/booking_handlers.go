package httpapi

import (
	"net/http"

	"lodgia.org/internal/audit"
	"lodgia.org/internal/auth"
	"lodgia.org/internal/payload"
	"lodgia.org/internal/rental"
)

func (a *API) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	body, _ := PayloadFromContext(r.Context())
	var req struct {
		ListingID string `json:"listing_id"`
		CheckIn   string `json:"check_in"`
		CheckOut  string `json:"check_out"`
		Guests    int    `json:"guests"`
	}
	if err := payload.Bind(body, &req); err != nil {
		writeMessage(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	booking, err := a.svc.CreateBooking(r.Context(), principal.ID, rental.NewBookingInput{
		ListingID: req.ListingID,
		CheckIn:   req.CheckIn,
		CheckOut:  req.CheckOut,
		Guests:    req.Guests,
	})
	if err != nil {
		a.serviceError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "booking.created", map[string]any{
		"booking_id": booking.ID,
		"listing_id": booking.ListingID,
	})
	writeJSON(w, http.StatusCreated, booking)
}

func (a *API) handleListBookings(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	bookings, err := a.svc.ListBookings(r.Context(), principal.ID)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": bookings})
}

func (a *API) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	id := pathID(bookingIDFromPath(r))
	if err := a.svc.CancelBooking(r.Context(), id); err != nil {
		a.serviceError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "booking.cancelled", map[string]any{
		"booking_id": id,
	})
	w.WriteHeader(http.StatusNoContent)
}
