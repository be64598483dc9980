package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"github.com/susu3304/warikan/internal/config"
	"github.com/susu3304/warikan/internal/group"
	"github.com/susu3304/warikan/internal/metrics"
)

type API struct {
	router  *mux.Router
	groups  *group.Service
	config  *config.Config
	metrics *metrics.Registry
	server  *http.Server
}

func New(cfg *config.Config, groups *group.Service, m *metrics.Registry) *API {
	api := &API{
		router:  mux.NewRouter(),
		groups:  groups,
		config:  cfg,
		metrics: m,
	}

	api.setupRoutes()
	return api
}

func (a *API) setupRoutes() {
	a.router.HandleFunc("/healthz", a.handleHealth).Methods("GET")
	a.router.Handle("/metrics", a.metrics.Handler()).Methods("GET")

	r := a.router.PathPrefix("/api").Subrouter()
	r.HandleFunc("/groups", a.handleListGroups).Methods("GET")
	r.HandleFunc("/groups/{group_id}", a.handleCloseGroup).Methods("DELETE")

	r.HandleFunc("/groups/{group_id}/participants", a.handleRegisterParticipant).Methods("POST")
	r.HandleFunc("/groups/{group_id}/participants", a.handleListParticipants).Methods("GET")
	r.HandleFunc("/groups/{group_id}/participants/{id}", a.handleGetParticipant).Methods("GET")

	r.HandleFunc("/groups/{group_id}/expenses", a.handleCreateExpense).Methods("POST")
	r.HandleFunc("/groups/{group_id}/expenses", a.handleListExpenses).Methods("GET")

	r.HandleFunc("/groups/{group_id}/payments", a.handleCreatePayment).Methods("POST")
	r.HandleFunc("/groups/{group_id}/payments", a.handleListPayments).Methods("GET")

	r.HandleFunc("/groups/{group_id}/balances", a.handleAllBalances).Methods("GET")
	r.HandleFunc("/groups/{group_id}/balances/{id}", a.handleBalancesFor).Methods("GET")
	r.HandleFunc("/groups/{group_id}/balances/{id}/{other}", a.handleNetBalance).Methods("GET")

	r.HandleFunc("/groups/{group_id}/commands", a.handleCommand).Methods("POST")
}

// Handler returns the router wrapped with CORS.
func (a *API) Handler() http.Handler {
	origins := []string{"*"}
	if a.config != nil && len(a.config.CORSAllowedOrigins) > 0 {
		origins = a.config.CORSAllowedOrigins
	}
	wildcard := len(origins) == 1 && origins[0] == "*"

	// Credentials are only allowed with an explicit origin list.
	corsOptions := cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: !wildcard,
	}
	return cors.New(corsOptions).Handler(a.router)
}

func (a *API) Start() error {
	a.server = &http.Server{
		Addr:              a.config.WebBind,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info().Msgf("API server listening on http://%s", a.config.WebBind)
	return a.server.ListenAndServe()
}

func (a *API) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}
