package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sort"

	"lodgia.org/internal/auth"
	"lodgia.org/internal/obs"
	"lodgia.org/internal/payload"
	"lodgia.org/internal/rental"
	"lodgia.org/internal/schema"
)

// UserLookup resolves a verified token subject to a principal.
type UserLookup interface {
	FindByTokenSubject(ctx context.Context, id string) (auth.Principal, error)
}

// OwnerLookup resolves a resource identifier to its owning user id.
type OwnerLookup func(ctx context.Context, resourceID string) (string, error)

type bodyContextKey struct{}
type queryContextKey struct{}

// PayloadFromContext returns the sanitized (and, when a schema was declared,
// validated and unknown-stripped) request body.
func PayloadFromContext(ctx context.Context) (payload.Value, bool) {
	v, ok := ctx.Value(bodyContextKey{}).(payload.Value)
	return v, ok
}

// QueryFromContext returns the sanitized query parameters as an object.
func QueryFromContext(ctx context.Context) (payload.Value, bool) {
	v, ok := ctx.Value(queryContextKey{}).(payload.Value)
	return v, ok
}

type gateOptions struct {
	schema       *schema.Schema
	authenticate bool
	roles        []auth.Role
	owner        OwnerLookup
	resourceID   func(*http.Request) string
}

// GateOption declares which gates a route runs behind.
type GateOption func(*gateOptions)

// WithSchema validates the sanitized body against a declared schema.
func WithSchema(s schema.Schema) GateOption {
	return func(o *gateOptions) { o.schema = &s }
}

// WithAuth requires a valid bearer token and a resolvable user.
func WithAuth() GateOption {
	return func(o *gateOptions) { o.authenticate = true }
}

// WithRoles requires the principal's role to be one of roles. Implies
// WithAuth.
func WithRoles(roles ...auth.Role) GateOption {
	return func(o *gateOptions) {
		o.authenticate = true
		o.roles = roles
	}
}

// WithOwnership requires the principal to own the targeted resource
// (administrators bypass). Implies WithAuth.
func WithOwnership(lookup OwnerLookup, resourceID func(*http.Request) string) GateOption {
	return func(o *gateOptions) {
		o.authenticate = true
		o.owner = lookup
		o.resourceID = resourceID
	}
}

// rejection is a gate's terminal outcome. Exactly one of validation or
// message is set.
type rejection struct {
	stage      string
	status     int
	message    string
	validation schema.Result
}

func (rej *rejection) write(w http.ResponseWriter, r *http.Request) {
	obs.ObserveRejection(rej.stage, rej.status)
	if rej.validation != nil {
		writeValidation(w, r, rej.validation)
		return
	}
	writeMessage(w, r, rej.status, rej.message)
}

// pipeline composes the fixed gate ordering for one route:
// sanitize → validate → authenticate → authorize → handler. The first
// failing gate writes its rejection and nothing later runs.
func (a *API) pipeline(h http.HandlerFunc, opts ...GateOption) http.HandlerFunc {
	var o gateOptions
	for _, opt := range opts {
		opt(&o)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		body, query, rej := sanitizeRequest(r)
		if rej != nil {
			rej.write(w, r)
			return
		}

		if o.schema != nil {
			stripped, result := schema.Validate(*o.schema, body)
			if !result.OK() {
				(&rejection{stage: "validate", status: http.StatusBadRequest, validation: result}).write(w, r)
				return
			}
			body = stripped
		}

		ctx = context.WithValue(ctx, bodyContextKey{}, body)
		ctx = context.WithValue(ctx, queryContextKey{}, query)

		if o.authenticate {
			principal, rej := a.authenticate(r)
			if rej != nil {
				rej.write(w, r)
				return
			}
			ctx = auth.ContextWithPrincipal(ctx, principal)

			if len(o.roles) > 0 {
				if rej := requireRole(principal, o.roles); rej != nil {
					rej.write(w, r)
					return
				}
			}
			if o.owner != nil {
				if rej := a.requireOwner(ctx, r, principal, o.owner, o.resourceID); rej != nil {
					rej.write(w, r)
					return
				}
			}
		}

		h(w, r.WithContext(ctx))
	}
}

// sanitizeRequest decodes the body (when one is expected) and cleans every
// string leaf of body and query before any later stage sees them.
func sanitizeRequest(r *http.Request) (body, query payload.Value, rej *rejection) {
	body = payload.Object()
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		decoded, err := payload.Decode(r.Body)
		switch {
		case err == nil:
			body = decoded
		case errors.Is(err, io.EOF):
			// No body at all; schema validation decides whether that
			// is acceptable.
		default:
			return payload.Value{}, payload.Value{}, &rejection{
				stage:   "sanitize",
				status:  http.StatusBadRequest,
				message: "invalid JSON body",
			}
		}
	}

	return payload.Sanitize(body), payload.Sanitize(queryPayload(r)), nil
}

// queryPayload flattens the query string into an object: single values as
// strings, repeated keys as arrays. Keys are sorted for determinism.
func queryPayload(r *http.Request) payload.Value {
	values := r.URL.Query()
	if len(values) == 0 {
		return payload.Object()
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	members := make([]payload.Member, 0, len(keys))
	for _, k := range keys {
		vs := values[k]
		if len(vs) == 1 {
			members = append(members, payload.Member{Key: k, Value: payload.String(vs[0])})
			continue
		}
		items := make([]payload.Value, len(vs))
		for i, v := range vs {
			items[i] = payload.String(v)
		}
		members = append(members, payload.Member{Key: k, Value: payload.Array(items...)})
	}
	return payload.Object(members...)
}

// requireRole enforces the role gate.
func requireRole(principal auth.Principal, roles []auth.Role) *rejection {
	for _, role := range roles {
		if principal.Role == role {
			return nil
		}
	}
	return &rejection{stage: "authorize", status: http.StatusForbidden, message: "insufficient permissions"}
}

// requireOwner enforces the ownership gate. Administrators bypass the owner
// comparison but the resource must still exist.
func (a *API) requireOwner(ctx context.Context, r *http.Request, principal auth.Principal, lookup OwnerLookup, resourceID func(*http.Request) string) *rejection {
	id := ""
	if resourceID != nil {
		id = pathID(resourceID(r))
	}
	if id == "" {
		return &rejection{stage: "authorize", status: http.StatusNotFound, message: "resource not found"}
	}
	ownerID, err := lookup(ctx, id)
	if err != nil {
		if errors.Is(err, rental.ErrNotFound) {
			return &rejection{stage: "authorize", status: http.StatusNotFound, message: "resource not found"}
		}
		msg := "internal error"
		if !a.cfg.Production() {
			msg = "internal error: " + err.Error()
		}
		return &rejection{stage: "authorize", status: http.StatusInternalServerError, message: msg}
	}
	if principal.IsAdmin() || ownerID == principal.ID {
		return nil
	}
	return &rejection{stage: "authorize", status: http.StatusForbidden, message: "insufficient permissions"}
}
