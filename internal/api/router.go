// Package api implements C10: the HTTP surface over the core. Grounded on
// the teacher's internal/api/router.go (chi, CORS, rate limiting),
// narrowed to the routes spec.md §6 names and with auth/multi-tenancy
// middleware dropped since multi-tenant access control is an explicit
// non-goal.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nikhilbhutani/ragcore/internal/api/handlers"
	"github.com/nikhilbhutani/ragcore/internal/api/middleware"
	"github.com/nikhilbhutani/ragcore/internal/ingest"
	"github.com/nikhilbhutani/ragcore/internal/qa"
	"github.com/nikhilbhutani/ragcore/internal/registry"
	"github.com/nikhilbhutani/ragcore/internal/search"
	"github.com/nikhilbhutani/ragcore/internal/searchcache"
	"github.com/nikhilbhutani/ragcore/internal/storage"
	"github.com/nikhilbhutani/ragcore/internal/vectorstore"
)

type Router struct {
	mux          *chi.Mux
	store        vectorstore.VectorStore
	registry     *registry.Registry
	pipeline     *ingest.Pipeline
	engine       *search.Engine
	orchestrator *qa.Orchestrator
	objectStore  storage.Store
	cache        *searchcache.Cache
}

func NewRouter(store vectorstore.VectorStore, reg *registry.Registry, pipeline *ingest.Pipeline, engine *search.Engine, orch *qa.Orchestrator, objectStore storage.Store, cache *searchcache.Cache) *Router {
	return &Router{
		mux:          chi.NewRouter(),
		store:        store,
		registry:     reg,
		pipeline:     pipeline,
		engine:       engine,
		orchestrator: orch,
		objectStore:  objectStore,
		cache:        cache,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(50, 100)
	r.Use(rl.Limit)

	statusH := handlers.NewStatusHandler(rt.store, rt.registry)
	r.Get("/status", statusH.Status)

	docsH := handlers.NewDocumentsHandler(rt.store, rt.registry, rt.cache)
	processH := handlers.NewProcessHandler(rt.pipeline, rt.objectStore)
	searchH := handlers.NewSearchHandler(rt.engine)
	askH := handlers.NewAskHandler(rt.orchestrator)

	r.Route("/api", func(r chi.Router) {
		r.Get("/documents", docsH.List)
		r.Delete("/documents", docsH.DeleteAll)
		r.Get("/collections", docsH.Collections)

		r.Route("/process", func(r chi.Router) {
			r.Post("/upload", processH.Upload)
			r.Post("/{filename}/summaries", processH.Summaries)
			r.Post("/{filename}/paragraphs", processH.Paragraphs)
		})

		r.Post("/search", searchH.Search)
		r.Post("/ask", askH.Ask)
	})

	return r
}
