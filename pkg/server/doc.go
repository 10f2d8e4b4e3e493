// Package server provides the HTTP server for the courseware API.
//
// This package implements the gateway server serving the four resource
// families. It uses gorilla/mux for routing and gorilla/handlers for
// request logging and CORS.
//
// # Server Setup
//
//	srv := server.NewServer(cfg, db)
//	endpoints.RegisterAll(srv)
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Components
//
// The Server struct holds:
//
//   - Config: the active gateway configuration
//   - Router: HTTP request router
//   - DB: database connection
//   - Entities, Comments, Credentials: the storage interfaces
//
// # Endpoints
//
// API endpoints are registered via the endpoints subpackage:
//
//	endpoints.RegisterAll(srv)
//
// This registers one uniform endpoint set per resource family:
//
//   - /{family} - list, get by key, create, update, delete
//   - /{family}/comments - dependent comment collection
//   - /students/password - verified password change
package server
