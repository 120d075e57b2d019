// Package httpapi exposes the REST API over gorilla/mux.
package httpapi

import (
	"context"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/and161185/taskhub/internal/service"
	"github.com/and161185/taskhub/internal/validate"
)

// Pinger reports database health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options tune transport behaviour.
type Options struct {
	// CookieAuth makes login also set the token as an http-only cookie.
	CookieAuth   bool
	CookieSecure bool
	CORSOrigins  []string
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	TrustProxy bool
}

// Server wires services into HTTP handlers.
type Server struct {
	auth       service.AuthService
	tasks      service.TaskService
	categories service.CategoryService
	notes      service.NoteService
	validator  *validate.Validator
	db         Pinger
	log        *zap.Logger
	opts       Options
}

// Services groups what the handlers delegate to.
type Services struct {
	Auth       service.AuthService
	Tasks      service.TaskService
	Categories service.CategoryService
	Notes      service.NoteService
}

// New constructs a Server with injected services.
func New(svc Services, v *validate.Validator, db Pinger, log *zap.Logger, opts Options) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		auth:       svc.Auth,
		tasks:      svc.Tasks,
		categories: svc.Categories,
		notes:      svc.Notes,
		validator:  v,
		db:         db,
		log:        log,
		opts:       opts,
	}
}

// Router registers every route. Gated routes live on subrouters behind Authenticate.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(s.notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(s.methodNotAllowed)

	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)
	r.HandleFunc("/auth/register", s.register).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", s.login).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", s.logout).Methods(http.MethodPost)

	gate := Authenticate(s.auth, s.log)

	users := r.PathPrefix("/users").Subrouter()
	users.Use(gate)
	users.HandleFunc("/me", s.me).Methods(http.MethodGet)
	users.HandleFunc("/{user_id}/tasks", s.listTasks).Methods(http.MethodGet)
	users.HandleFunc("/{user_id}/tasks", s.createTask).Methods(http.MethodPost)
	users.HandleFunc("/{user_id}/tasks/{id}", s.getTask).Methods(http.MethodGet)
	users.HandleFunc("/{user_id}/tasks/{id}", s.updateTask).Methods(http.MethodPatch)
	users.HandleFunc("/{user_id}/tasks/{id}", s.deleteTask).Methods(http.MethodDelete)

	cats := r.PathPrefix("/categories").Subrouter()
	cats.Use(gate)
	cats.HandleFunc("", s.listCategories).Methods(http.MethodGet)
	cats.HandleFunc("", s.createCategory).Methods(http.MethodPost)
	cats.HandleFunc("/{id}", s.getCategory).Methods(http.MethodGet)
	cats.HandleFunc("/{id}", s.updateCategory).Methods(http.MethodPatch)
	cats.HandleFunc("/{id}", s.deleteCategory).Methods(http.MethodDelete)

	notes := r.PathPrefix("/notes").Subrouter()
	notes.Use(gate)
	notes.HandleFunc("", s.listNotes).Methods(http.MethodGet)
	notes.HandleFunc("", s.createNote).Methods(http.MethodPost)
	notes.HandleFunc("/{id}", s.getNote).Methods(http.MethodGet)
	notes.HandleFunc("/{id}", s.updateNote).Methods(http.MethodPatch)
	notes.HandleFunc("/{id}", s.deleteNote).Methods(http.MethodDelete)

	return r
}

// Handler returns the router wrapped in the middleware chain:
// request id, recover, logging, CORS, compression.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.Router()
	h = Compress(h)
	h = CORS(s.opts.CORSOrigins)(h)
	h = Logging(s.log)(h)
	h = Recover(s.log)(h)
	if s.opts.TrustProxy {
		h = handlers.ProxyHeaders(h)
	}
	return RequestID(h)
}

func (s *Server) notFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, errorBody{Error: "not found", Status: http.StatusNotFound})
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed", Status: http.StatusMethodNotAllowed})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			s.log.Warn("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
