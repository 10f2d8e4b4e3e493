package server

import (
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/coursewarehq/courseware/pkg/config"
	"github.com/coursewarehq/courseware/pkg/server/store"
	storegorm "github.com/coursewarehq/courseware/pkg/server/store/gorm"
)

type Server struct {
	Config      *config.CoursewareConfig
	Router      *mux.Router
	DB          *gorm.DB
	Entities    store.EntityStore
	Comments    store.CommentStore
	Credentials store.CredentialStore
	srv         *http.Server
}

func NewServer(cfg *config.CoursewareConfig, db *gorm.DB) *Server {
	router := mux.NewRouter().UseEncodedPath()

	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	srv := &http.Server{
		Handler: handlers.LoggingHandler(os.Stdout, cors(router)),
		Addr:    cfg.BindAddress + ":" + cfg.Port,
		// Good practice: enforce timeouts for servers you create!
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	return &Server{
		Config:      cfg,
		Router:      router,
		DB:          db,
		Entities:    storegorm.NewEntityStore(db),
		Comments:    storegorm.NewCommentStore(db),
		Credentials: storegorm.NewCredentialStore(db),
		srv:         srv,
	}
}

// RequestTimeout bounds one request's database work.
func (s *Server) RequestTimeout() time.Duration {
	return s.Config.RequestTimeout()
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}
