package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sourpow/tbucks-server/internal/api/http/middleware"
	"github.com/sourpow/tbucks-server/internal/logger"
)

// Handlers groups the route handlers for the router.
type Handlers struct {
	Auth  *AuthHandler
	Store *StoreHandler
	Admin *AdminHandler
	WS    *WSHandler
}

// NewRouter builds the full route table. Public routes carry only
// logging and metrics; everything else requires a valid access token,
// and /api/admin additionally requires the admin claim.
func NewRouter(h Handlers, auth middleware.Authenticator, l *logger.Logger) http.Handler {
	router := mux.NewRouter()
	router.Use(middleware.Logging(l))
	router.Use(middleware.Metrics)

	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	public := router.PathPrefix("/api/auth").Subrouter()
	public.HandleFunc("/register", h.Auth.Register).Methods(http.MethodPost)
	public.HandleFunc("/login", h.Auth.Login).Methods(http.MethodPost)
	public.HandleFunc("/refresh", h.Auth.Refresh).Methods(http.MethodPost)
	public.HandleFunc("/logout", h.Auth.Logout).Methods(http.MethodPost)

	private := router.PathPrefix("/api").Subrouter()
	private.Use(middleware.Authenticate(auth))
	private.HandleFunc("/me", h.Auth.Me).Methods(http.MethodGet)
	private.HandleFunc("/items", h.Store.ListItems).Methods(http.MethodGet)
	private.HandleFunc("/items/{id}/image", h.Store.GetItemImage).Methods(http.MethodGet)
	private.HandleFunc("/purchase", h.Store.Purchase).Methods(http.MethodPost)
	private.HandleFunc("/orders", h.Store.ListOrders).Methods(http.MethodGet)
	private.HandleFunc("/ws", h.WS.Serve).Methods(http.MethodGet)

	admin := private.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/items", h.Store.AddItem).Methods(http.MethodPost)
	admin.HandleFunc("/orders", h.Admin.ListOrders).Methods(http.MethodGet)
	admin.HandleFunc("/orders/{id}/seen", h.Admin.MarkOrderSeen).Methods(http.MethodPost)
	admin.HandleFunc("/orders/{id}/ship", h.Admin.ShipOrder).Methods(http.MethodPost)
	admin.HandleFunc("/users", h.Admin.ListUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}/gift", h.Admin.GiftBalance).Methods(http.MethodPost)

	return router
}
