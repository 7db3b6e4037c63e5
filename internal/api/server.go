// Package api exposes the analyzer over HTTP: one analysis endpoint plus
// introspection routes, JSON in and out. Analyzers are built once per
// dialect at construction, so request handling never compiles rule patterns
// and is safe for concurrent use.
package api

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sqlinsight/sqlinsight/pkg/analyzer"
	"github.com/sqlinsight/sqlinsight/pkg/config"
	"github.com/sqlinsight/sqlinsight/pkg/dialect"
	"github.com/sqlinsight/sqlinsight/pkg/rules"
	"github.com/sqlinsight/sqlinsight/pkg/types"
)

// Server holds one analyzer per supported dialect.
type Server struct {
	analyzers map[types.Dialect]*analyzer.Analyzer
	dialects  []string
	log       *slog.Logger
}

// NewServer builds the HTTP layer from the given configuration. Rule
// overrides and the lexicon from the config apply to every dialect's
// analyzer.
func NewServer(cfg *config.Config, log *slog.Logger) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if log == nil {
		log = slog.Default()
	}

	dreg := dialect.DefaultRegistry()
	s := &Server{
		analyzers: make(map[types.Dialect]*analyzer.Analyzer),
		log:       log,
	}
	for _, d := range dreg.Dialects() {
		reg, err := rules.DefaultRegistry(dreg.Lookup(d))
		if err != nil {
			log.Warn("some dialect patterns were skipped", "dialect", d, "error", err)
		}
		s.analyzers[d] = analyzer.New(d,
			analyzer.WithRegistry(cfg.ApplyRules(reg)),
			analyzer.WithLexicon(cfg.ActiveLexicon()),
			analyzer.WithLogger(log),
		)
		s.dialects = append(s.dialects, d.String())
	}
	sort.Strings(s.dialects)
	return s
}

// Handler returns the routed handler with logging, panic recovery and CORS
// applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/dialects", s.handleDialects)
	})
	return r
}
