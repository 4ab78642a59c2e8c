package http

import (
	"log/slog"
	"net/http"
	"time"

	_ "github.com/aussiebroadwan/tenancy/api/tenancy" // Swagger docs
	"github.com/aussiebroadwan/tenancy/internal/tenancy/service"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/pkg/httpx"
	"github.com/aussiebroadwan/tenancy/pkg/jwtx"
	"github.com/aussiebroadwan/tenancy/pkg/metricx"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
	httpSwagger "github.com/swaggo/http-swagger"
)

//go:generate swag init -d ../../.. -g internal/tenancy/http/router.go -o ../../../api/tenancy --outputTypes go

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	limits       httpx.RateLimits
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store             store.Store
	SessionService    *service.SessionService
	UserService       *service.UserService
	TenantService     *service.TenantService
	RolesService      *service.RolesService
	PermissionService *service.PermissionService

	// Metrics is optional. MetricsHandler, when set, is served on /metrics.
	Metrics        *metricx.Metrics
	MetricsHandler http.Handler
}

func NewRouter(
	verifier jwtx.Verifier,
	limits httpx.RateLimits,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		limits:       limits,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSession()
	r.registerMe()
	r.registerUsers()
	r.registerTenants()
	r.registerRoles()
	r.registerPermissions()
	r.registerSystem()

	// Anything unrouted still has to pass the gate before it learns the
	// path does not exist.
	r.handle("/", r.protected(handleNotFound))
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	httpx.WriteText(w, http.StatusNotFound, "Not found")
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Tenancy Service API
//	@version		0.1.0
//	@description	Multi-tenant user directory with HS256 access tokens and revocable refresh tokens.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/tenancy
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// handle registers h under pattern with per-route metrics.
func (r *Router) handle(pattern string, h http.Handler) {
	r.Mux.Handle(pattern, r.Metrics.HTTPMiddleware(pattern)(h))
}

// protected puts h behind the bearer stage, then limits per subject.
func (r *Router) protected(h http.HandlerFunc) http.Handler {
	return httpx.Gate(h,
		httpx.BearerStage(r.verifier),
		httpx.RateLimitStage(r.limits.API, httpx.CompositeKeyExtractor(":",
			httpx.SubjectKeyExtractor,
			httpx.IPKeyExtractor,
		)),
	)
}

func (r *Router) registerSession() {
	h := &SessionHandler{SessionService: r.SessionService}

	// Credential checks get the strictest budget, per IP.
	r.handle("POST /login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(r.limits.Login),
		),
	)

	r.handle("POST /refresh_token",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(r.limits.Session),
		),
	)
	r.handle("POST /logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(r.limits.Session),
		),
	)
}

func (r *Router) registerMe() {
	h := &UsersHandler{UserService: r.UserService}
	r.handle("GET /me", r.protected(h.HandleMe))
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	r.handle("POST /users", r.protected(h.HandleCreate))
	r.handle("GET /users", r.protected(h.HandleList))
	r.handle("GET /users/{id}", r.protected(h.HandleGet))
	r.handle("GET /users/email/{email}", r.protected(h.HandleGetByEmail))
	r.handle("PUT /users/{id}", r.protected(h.HandleUpdate))
	r.handle("DELETE /users/{id}", r.protected(h.HandleDelete))
}

func (r *Router) registerTenants() {
	h := &TenantsHandler{TenantService: r.TenantService}

	r.handle("POST /tenants", r.protected(h.HandleCreate))
	r.handle("GET /tenants", r.protected(h.HandleList))
	r.handle("GET /tenants/{id}", r.protected(h.HandleGet))
	r.handle("PUT /tenants/{id}", r.protected(h.HandleUpdate))
	r.handle("DELETE /tenants/{id}", r.protected(h.HandleDelete))
	r.handle("GET /tenants/name/{name}", r.protected(h.HandleGetByName))
	r.handle("DELETE /tenants/name/{name}", r.protected(h.HandleDeleteByName))
	r.handle("GET /tenants/domain/{domain}", r.protected(h.HandleGetByDomain))
	r.handle("DELETE /tenants/domain/{domain}", r.protected(h.HandleDeleteByDomain))
}

func (r *Router) registerRoles() {
	h := &RolesHandler{RolesService: r.RolesService}

	r.handle("POST /roles", r.protected(h.HandleCreate))
	r.handle("GET /roles", r.protected(h.HandleList))
	r.handle("GET /roles/{id}", r.protected(h.HandleGet))
	r.handle("PUT /roles/{id}", r.protected(h.HandleUpdate))
	r.handle("DELETE /roles/{id}", r.protected(h.HandleDelete))
}

func (r *Router) registerPermissions() {
	h := &PermissionsHandler{PermissionService: r.PermissionService}

	r.handle("POST /permissions", r.protected(h.HandleCreate))
	r.handle("GET /permissions", r.protected(h.HandleList))
	r.handle("GET /permissions/{id}", r.protected(h.HandleGet))
	r.handle("PUT /permissions/{id}", r.protected(h.HandleUpdate))
	r.handle("DELETE /permissions/{id}", r.protected(h.HandleDelete))
}

func (r *Router) registerSystem() {
	// Health checks are polled often, so they share the generous public budget.
	public := httpx.RateLimitByIP(r.limits.Public)

	r.Mux.Handle("GET /livez", httpx.Chain(LivezHandler(r.startTime, r.buildVersion), public))
	r.Mux.Handle("GET /readyz", httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store), public))

	if r.MetricsHandler != nil {
		r.Mux.Handle("GET /metrics", httpx.Chain(r.MetricsHandler, public))
	}

	r.Mux.Handle("GET /swagger/", httpx.Chain(httpSwagger.Handler(), public))
}
