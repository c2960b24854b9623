package httptransport

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	appgame "pick-derby/internal/app/game"
	"pick-derby/internal/config"
	"pick-derby/internal/store"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

func NewRouter(svc *appgame.Service, st *store.Store, cfg config.ServerConfig) *chi.Mux {
	playerHandlers := NewPlayerHandlers(svc, st, cfg)
	publicHandlers := NewPublicHandlers(svc)
	adminHandlers := NewAdminHandlers(svc, st)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", adminHandlers.Health())

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())

		r.Get("/public/status", publicHandlers.Status())
		r.Get("/public/pool", publicHandlers.Pool())
		r.Get("/public/periods", publicHandlers.Periods())
		r.Get("/public/periods/{seq}/outcome", publicHandlers.Outcome())
		r.Get("/public/outcomes", publicHandlers.Outcomes())
		r.Get("/public/loyalty", publicHandlers.Loyalty())

		r.Post("/players/register", playerHandlers.Register())

		r.Group(func(r chi.Router) {
			r.Use(PlayerAuthMiddleware(st))
			r.Get("/players/me", playerHandlers.Me())
			r.Get("/players/me/ledger", playerHandlers.Ledger())
			r.Post("/picks", playerHandlers.Submit())
			r.Get("/claims", playerHandlers.Claims())
			r.Post("/claims/{seq}/{tier}", playerHandlers.Claim())
		})

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminAPIKey))
			r.Post("/admin/periods/{seq}/resolve", adminHandlers.Resolve())
			r.Post("/admin/sweep", adminHandlers.Sweep())
			r.Post("/admin/endgame", adminHandlers.Endgame())
			r.Get("/admin/ledger", adminHandlers.Ledger())
			r.Get("/admin/debug/vars", expvar.Handler().ServeHTTP)
		})
	})

	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 32)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
