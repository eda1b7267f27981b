package handlers

import (
	"blogCMS/internal/config"
	"blogCMS/internal/service"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// HealthChecker is satisfied by *database.DB.
type HealthChecker interface {
	HealthCheck() error
}

type Handlers struct {
	UserService     service.UserService
	AuthService     service.AuthService
	PostService     service.PostService
	CommentService  service.CommentService
	InviteService   service.InviteService
	TaxonomyService service.TaxonomyService
	TablesService   service.TablesService
	DB              HealthChecker
	Cfg             *config.Config
	Validate        *validator.Validate
}

func NewHandlers(service *service.Service, db HealthChecker, config *config.Config) *Handlers {
	return &Handlers{
		UserService:     service.User,
		AuthService:     service.Auth,
		PostService:     service.Post,
		CommentService:  service.Comment,
		InviteService:   service.Invite,
		TaxonomyService: service.Taxonomy,
		TablesService:   service.Tables,
		DB:              db,
		Cfg:             config,
		Validate:        NewValidator(),
	}
}

// NewValidator reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func HomeHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"message": "Blog CMS API"}, http.StatusOK)
}

func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if h.DB != nil {
		if err := h.DB.HealthCheck(); err != nil {
			WriteError(w, "Database unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// queryInt parses an integer query parameter; invalid values count as 0.
func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}

// queryBool parses an optional boolean query parameter.
func queryBool(r *http.Request, key string) (*bool, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, true
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, false
	}
	return &b, true
}
