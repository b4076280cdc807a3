// Package api provides the HTTP server for Splitledger. It exposes the
// balance and settlement engine over a REST API.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/splitledger/splitledger/internal/auth"
	"github.com/splitledger/splitledger/internal/middleware"
	"github.com/splitledger/splitledger/internal/service"
	"github.com/splitledger/splitledger/internal/storage"
)

// Server is the Splitledger HTTP API server.
type Server struct {
	store          storage.Store
	authenticator  auth.Authenticator
	jwt            *auth.JWTManager
	groups         *service.GroupService
	expenses       *service.ExpenseService
	settlements    *service.SettlementService
	balances       *service.BalanceService
	metricsEnabled bool
}

// NewServer wires the API server over the given store and services.
func NewServer(store storage.Store, authenticator auth.Authenticator, jwt *auth.JWTManager,
	groups *service.GroupService, expenses *service.ExpenseService,
	settlements *service.SettlementService, balances *service.BalanceService) *Server {
	return &Server{
		store:         store,
		authenticator: authenticator,
		jwt:           jwt,
		groups:        groups,
		expenses:      expenses,
		settlements:   settlements,
		balances:      balances,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogger)
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
		})

		// Everything below requires a valid session.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(s.jwt))

			r.Route("/users", func(r chi.Router) {
				r.Get("/me", s.handleCurrentUser)
				r.Get("/{userID}/profile", s.handleUserProfile)
			})

			r.Route("/groups", func(r chi.Router) {
				r.Post("/", s.handleCreateGroup)
				r.Get("/", s.handleListGroups)
				r.Get("/{groupID}", s.handleGetGroup)
				r.Put("/{groupID}", s.handleUpdateGroup)
				r.Delete("/{groupID}", s.handleDeleteGroup)
				r.Post("/{groupID}/members", s.handleAddGroupMember)
				r.Delete("/{groupID}/members/{userID}", s.handleRemoveGroupMember)
			})

			r.Route("/expenses", func(r chi.Router) {
				r.Post("/", s.handleCreateExpense)
				r.Get("/", s.handleListExpenses)
				// Static segments before the wildcard.
				r.Get("/balances", s.handleBalances)
				r.Get("/summary", s.handleSummary)
				r.Get("/{expenseID}", s.handleGetExpense)
				r.Put("/{expenseID}", s.handleUpdateExpense)
				r.Delete("/{expenseID}", s.handleDeleteExpense)
				r.Get("/{expenseID}/splits", s.handleExpenseSplits)
			})

			r.Route("/settlements", func(r chi.Router) {
				r.Post("/", s.handleCreateSettlement)
				r.Get("/", s.handleListSettlements)
			})
		})
	})

	return r
}

// corsMiddleware adds CORS headers for browser clients.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
