package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"lodgia.org/internal/auth"
	"lodgia.org/internal/config"
	"lodgia.org/internal/ids"
	"lodgia.org/internal/obs"
	"lodgia.org/internal/payload"
	"lodgia.org/internal/rental"
)

// ReadyProbe reports readiness, pinging the database when one is wired.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer. Every route goes through the gate pipeline; the
// per-route gate set is fixed at construction.
type API struct {
	mux        *http.ServeMux
	cfg        config.Config
	issuer     *auth.Issuer
	users      UserLookup
	svc        *rental.Service
	readyProbe ReadyProbe
	version    string

	// Pre-composed pipelines for routes that need path dispatch.
	getListing    http.HandlerFunc
	updateListing http.HandlerFunc
	deleteListing http.HandlerFunc
	listReviews   http.HandlerFunc
	createReview  http.HandlerFunc
	cancelBooking http.HandlerFunc
}

// New wires routes and gates. The rental service doubles as the user-lookup
// collaborator of the authentication gate.
func New(cfg config.Config, issuer *auth.Issuer, svc *rental.Service, rp ReadyProbe, version string) *API {
	a := &API{
		mux:        http.NewServeMux(),
		cfg:        cfg,
		issuer:     issuer,
		users:      svc,
		svc:        svc,
		readyProbe: rp,
		version:    version,
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// auth
	register := a.pipeline(a.handleRegister, WithSchema(registerSchema()))
	login := a.pipeline(a.handleLogin, WithSchema(loginSchema()))
	me := a.pipeline(a.handleMe, WithAuth())
	a.mux.HandleFunc("/v1/auth/register", postOnly(register))
	a.mux.HandleFunc("/v1/auth/login", postOnly(login))
	a.mux.HandleFunc("/v1/auth/me", getOnly(me))

	// listings
	listListings := a.pipeline(a.handleListListings)
	createListing := a.pipeline(a.handleCreateListing, WithAuth(), WithSchema(newListingSchema()))
	a.getListing = a.pipeline(a.handleGetListing)
	a.updateListing = a.pipeline(a.handleUpdateListing,
		WithSchema(updateListingSchema()),
		WithOwnership(svc.ListingOwner, listingIDFromPath))
	a.deleteListing = a.pipeline(a.handleDeleteListing,
		WithOwnership(svc.ListingOwner, listingIDFromPath))
	a.listReviews = a.pipeline(a.handleListReviews)
	a.createReview = a.pipeline(a.handleCreateReview, WithAuth(), WithSchema(newReviewSchema()))
	a.mux.HandleFunc("/v1/listings", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			listListings(w, r)
		case http.MethodPost:
			createListing(w, r)
		default:
			methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
		}
	})
	a.mux.HandleFunc("/v1/listings/", a.handleListingScoped)

	// bookings
	createBooking := a.pipeline(a.handleCreateBooking, WithAuth(), WithSchema(newBookingSchema()))
	listBookings := a.pipeline(a.handleListBookings, WithAuth())
	a.cancelBooking = a.pipeline(a.handleCancelBooking,
		WithOwnership(svc.BookingOwner, bookingIDFromPath))
	a.mux.HandleFunc("/v1/bookings", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			listBookings(w, r)
		case http.MethodPost:
			createBooking(w, r)
		default:
			methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
		}
	})
	a.mux.HandleFunc("/v1/bookings/", a.handleBookingScoped)

	// admin
	listUsers := a.pipeline(a.handleListUsers, WithRoles(auth.RoleAdmin))
	a.mux.HandleFunc("/v1/users", getOnly(listUsers))

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the full middleware stack around the mux.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = MaxBodyBytes(h, 1<<20)
	h = SecurityHeaders(h)
	h = CORS(h)
	h = RateLimit(h, 20, 10)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

func postOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		h(w, r)
	}
}

func getOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		h(w, r)
	}
}

func (a *API) handleListingScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/listings/"), "/")
	if rest == "" {
		writeMessage(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(rest, "/")
	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			a.getListing(w, r)
		case http.MethodPut:
			a.updateListing(w, r)
		case http.MethodDelete:
			a.deleteListing(w, r)
		default:
			methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
		}
	case len(parts) == 2 && parts[1] == "reviews":
		switch r.Method {
		case http.MethodGet:
			a.listReviews(w, r)
		case http.MethodPost:
			a.createReview(w, r)
		default:
			methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
		}
	default:
		writeMessage(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) handleBookingScoped(w http.ResponseWriter, r *http.Request) {
	id := bookingIDFromPath(r)
	if id == "" || strings.Contains(id, "/") {
		writeMessage(w, r, http.StatusNotFound, "resource not found")
		return
	}
	switch r.Method {
	case http.MethodDelete:
		a.cancelBooking(w, r)
	default:
		methodNotAllowed(w, r, http.MethodDelete)
	}
}

func listingIDFromPath(r *http.Request) string {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/listings/"), "/")
	if rest == "" {
		return ""
	}
	return strings.Split(rest, "/")[0]
}

func bookingIDFromPath(r *http.Request) string {
	return strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/bookings/"), "/")
}

// pathID sanitizes a path-derived identifier and rejects anything that is
// not a well-formed entity id, so malformed ids turn into a 404 before any
// store lookup. Returns "" when the segment is unusable.
func pathID(raw string) string {
	id := payload.CleanString(raw)
	if !ids.Valid(id) {
		return ""
	}
	return id
}

// --- system handlers -------------------------------------------------------

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "lodgia-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "lodgia-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}
