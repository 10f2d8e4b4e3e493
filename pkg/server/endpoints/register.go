package endpoints

import (
	"net/http"

	"github.com/coursewarehq/courseware/pkg/resource"
	"github.com/coursewarehq/courseware/pkg/server"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	for _, d := range resource.Families() {
		RegisterFamilyEndpoints(srv, d)
	}

	// Unknown family is a caller mistake, not a routing one.
	srv.Router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusBadRequest, "Unknown resource")
	})
	srv.Router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
}
