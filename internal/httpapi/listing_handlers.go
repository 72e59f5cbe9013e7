package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"lodgia.org/internal/audit"
	"lodgia.org/internal/auth"
	"lodgia.org/internal/payload"
	"lodgia.org/internal/rental"
)

func (a *API) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	body, _ := PayloadFromContext(r.Context())
	var req struct {
		Title             string `json:"title"`
		Description       string `json:"description"`
		Location          string `json:"location"`
		NightlyPriceCents int64  `json:"nightly_price_cents"`
		MaxGuests         int    `json:"max_guests"`
	}
	if err := payload.Bind(body, &req); err != nil {
		writeMessage(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	listing, err := a.svc.CreateListing(r.Context(), principal.ID, rental.NewListingInput{
		Title:             req.Title,
		Description:       req.Description,
		Location:          req.Location,
		NightlyPriceCents: req.NightlyPriceCents,
		MaxGuests:         req.MaxGuests,
	})
	if err != nil {
		a.serviceError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "listing.created", map[string]any{
		"listing_id": listing.ID,
	})

	w.Header().Set("Location", fmt.Sprintf("/v1/listings/%s", listing.ID))
	writeJSON(w, http.StatusCreated, listing)
}

func (a *API) handleListListings(w http.ResponseWriter, r *http.Request) {
	query, _ := QueryFromContext(r.Context())
	limit := intQuery(query, "limit", 50)
	offset := intQuery(query, "offset", 0)

	listings, err := a.svc.ListListings(r.Context(), limit, offset)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": listings})
}

func (a *API) handleGetListing(w http.ResponseWriter, r *http.Request) {
	id := pathID(listingIDFromPath(r))
	if id == "" {
		writeMessage(w, r, http.StatusNotFound, "resource not found")
		return
	}
	listing, err := a.svc.GetListing(r.Context(), id)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (a *API) handleUpdateListing(w http.ResponseWriter, r *http.Request) {
	id := pathID(listingIDFromPath(r))
	body, _ := PayloadFromContext(r.Context())
	var req struct {
		Title             *string `json:"title"`
		Description       *string `json:"description"`
		Location          *string `json:"location"`
		NightlyPriceCents *int64  `json:"nightly_price_cents"`
		MaxGuests         *int    `json:"max_guests"`
	}
	if err := payload.Bind(body, &req); err != nil {
		writeMessage(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	listing, err := a.svc.UpdateListing(r.Context(), id, rental.UpdateListingInput{
		Title:             req.Title,
		Description:       req.Description,
		Location:          req.Location,
		NightlyPriceCents: req.NightlyPriceCents,
		MaxGuests:         req.MaxGuests,
	})
	if err != nil {
		a.serviceError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "listing.updated", map[string]any{
		"listing_id": listing.ID,
	})
	writeJSON(w, http.StatusOK, listing)
}

func (a *API) handleDeleteListing(w http.ResponseWriter, r *http.Request) {
	id := pathID(listingIDFromPath(r))
	if err := a.svc.DeleteListing(r.Context(), id); err != nil {
		a.serviceError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "listing.deleted", map[string]any{
		"listing_id": id,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleListReviews(w http.ResponseWriter, r *http.Request) {
	id := pathID(listingIDFromPath(r))
	if id == "" {
		writeMessage(w, r, http.StatusNotFound, "resource not found")
		return
	}
	reviews, err := a.svc.ListReviews(r.Context(), id)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": reviews})
}

func (a *API) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	id := pathID(listingIDFromPath(r))
	if id == "" {
		writeMessage(w, r, http.StatusNotFound, "resource not found")
		return
	}

	body, _ := PayloadFromContext(r.Context())
	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := payload.Bind(body, &req); err != nil {
		writeMessage(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	review, err := a.svc.CreateReview(r.Context(), id, principal.ID, rental.NewReviewInput{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		a.serviceError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "review.created", map[string]any{
		"listing_id": id,
		"review_id":  review.ID,
	})
	writeJSON(w, http.StatusCreated, review)
}

// intQuery reads an integer query parameter off the sanitized query object.
func intQuery(query payload.Value, key string, fallback int) int {
	v, ok := query.Get(key)
	if !ok || v.Kind() != payload.KindString {
		return fallback
	}
	n, err := strconv.Atoi(v.Str())
	if err != nil {
		return fallback
	}
	return n
}
