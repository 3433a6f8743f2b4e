package router

import (
	"net/http"

	"task-tracker/backend/app/controllers"
	"task-tracker/backend/app/middleware"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

type Controllers struct {
	HTTP        *controllers.HTTPController
	Auth        *controllers.AuthController
	Admin       *controllers.AdminController
	Tasks       *controllers.TaskController
	Completions *controllers.CompletionController
}

// NewRouter wires every endpoint. The returned handler is wrapped with
// CORS for origins and request logging.
func NewRouter(c Controllers, mw *middleware.Auth, origins []string) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.WithRoute)
	r.NotFoundHandler = http.HandlerFunc(c.HTTP.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(c.HTTP.MethodNotAllowed)

	// public
	r.HandleFunc("/ping", c.HTTP.Ping).Methods(http.MethodGet)
	r.HandleFunc("/register", c.Auth.Register).Methods(http.MethodPost)
	r.HandleFunc("/login", c.Auth.Login).Methods(http.MethodPost)

	// any authenticated role
	auth := func(h http.HandlerFunc) http.Handler { return mw.RequireAuth(h) }
	r.Handle("/logout", auth(c.Auth.Logout)).Methods(http.MethodPost)
	r.Handle("/all-users", auth(c.Admin.AllUsers)).Methods(http.MethodGet)
	r.Handle("/tasks", auth(c.Tasks.List)).Methods(http.MethodGet)
	r.Handle("/tasks/{id}/status", auth(c.Tasks.UpdateStatus)).Methods(http.MethodPut)

	// admin only
	admin := func(h http.HandlerFunc) http.Handler { return mw.RequireAdmin(h) }
	r.Handle("/users", admin(c.Admin.CreateUser)).Methods(http.MethodPost)
	r.Handle("/users", admin(c.Admin.ListUsers)).Methods(http.MethodGet)
	r.Handle("/users/{id}", admin(c.Admin.UpdateUser)).Methods(http.MethodPut)
	r.Handle("/users/{id}", admin(c.Admin.DeleteUser)).Methods(http.MethodDelete)
	r.Handle("/tasks", admin(c.Tasks.Create)).Methods(http.MethodPost)
	r.Handle("/tasks/{id}", admin(c.Tasks.Delete)).Methods(http.MethodDelete)
	r.Handle("/completion-requests", admin(c.Completions.List)).Methods(http.MethodGet)
	r.Handle("/completion-requests/{id}", admin(c.Completions.Decide)).Methods(http.MethodPut)

	if len(origins) == 0 {
		origins = []string{"*"}
	}
	h := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(r)
	return middleware.Logging(h)
}
