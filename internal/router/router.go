package router

import (
	handlers "blogCMS/internal/handler"
	"blogCMS/internal/middleware"
	"net/http"

	"github.com/gorilla/mux"
)

// New wires every route. verifyLimit throttles the public invite endpoints.
func New(h *handlers.Handlers, verifyLimit middleware.Middleware) *mux.Router {
	r := mux.NewRouter()
	if verifyLimit == nil {
		verifyLimit = func(next http.Handler) http.Handler { return next }
	}

	authed := func(f http.HandlerFunc) http.Handler {
		return middleware.RequireAuth(f)
	}

	r.HandleFunc("/", handlers.HomeHandler).Methods(http.MethodGet)
	r.HandleFunc("/health", h.HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/tables", h.TablesHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh-token", h.RefreshToken).Methods(http.MethodPost)

	api.Handle("/me", authed(h.GetCurrentUser)).Methods(http.MethodGet)
	api.Handle("/me/avatar", authed(h.UploadAvatar)).Methods(http.MethodPost)
	api.Handle("/users", authed(h.ListUsers)).Methods(http.MethodGet)
	api.Handle("/users/{id}", authed(h.UpdateUser)).Methods(http.MethodPut)

	api.HandleFunc("/posts", h.GetPosts).Methods(http.MethodGet)
	api.Handle("/posts", middleware.AuthorOnly(http.HandlerFunc(h.CreatePost))).Methods(http.MethodPost)
	api.HandleFunc("/posts/{id}", h.GetPost).Methods(http.MethodGet)
	api.Handle("/posts/{id}", authed(h.UpdatePost)).Methods(http.MethodPut)
	api.Handle("/posts/{id}", authed(h.DeletePost)).Methods(http.MethodDelete)

	api.HandleFunc("/tags", h.GetTags).Methods(http.MethodGet)
	api.HandleFunc("/categories", h.GetCategories).Methods(http.MethodGet)
	api.Handle("/categories", authed(h.CreateCategory)).Methods(http.MethodPost)

	api.HandleFunc("/invites", h.ListInvites).Methods(http.MethodGet)
	api.HandleFunc("/invites", h.CreateInvite).Methods(http.MethodPost)
	api.Handle("/invites/verify", verifyLimit(http.HandlerFunc(h.VerifyInvite))).Methods(http.MethodGet)
	api.Handle("/invites/verify", verifyLimit(http.HandlerFunc(h.RedeemInvite))).Methods(http.MethodPost)

	api.HandleFunc("/comments", h.GetComments).Methods(http.MethodGet)
	api.Handle("/comments", authed(h.CreateComment)).Methods(http.MethodPost)
	api.Handle("/comments/{id}", authed(h.UpdateComment)).Methods(http.MethodPut)
	api.Handle("/comments/{id}", authed(h.DeleteComment)).Methods(http.MethodDelete)

	api.HandleFunc("/admin/comments", h.GetModerationQueue).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, "Not found", http.StatusNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	return r
}
