package http

import (
	"net/http"

	mw "github.com/lusodesk/helpdesk-backend/internal/adapters/primary/http/middleware"
	"github.com/lusodesk/helpdesk-backend/internal/core/ports"
)

// getActor extracts the authenticated principal set by the JWT
// middleware. A missing principal on a protected route means the
// middleware chain is miswired, so we fail the request outright.
func getActor(w http.ResponseWriter, r *http.Request) (ports.Actor, bool) {
	claims, ok := mw.GetClaims(r.Context())
	if !ok {
		WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error: "Authentication required",
			Code:  "UNAUTHORIZED",
		})
		return ports.Actor{}, false
	}
	return ports.Actor{ID: claims.UserID, Role: claims.Role}, true
}
