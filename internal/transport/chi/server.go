package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/facetdex/internal/db"
	"github.com/kailas-cloud/facetdex/internal/domain"
	"github.com/kailas-cloud/facetdex/internal/domain/document"
	"github.com/kailas-cloud/facetdex/internal/domain/facet"
	"github.com/kailas-cloud/facetdex/internal/domain/search/result"
	"github.com/kailas-cloud/facetdex/internal/logger"
	"github.com/kailas-cloud/facetdex/internal/version"
	exploreuc "github.com/kailas-cloud/facetdex/internal/usecase/explore"
	healthuc "github.com/kailas-cloud/facetdex/internal/usecase/health"
)

// maxBodyBytes caps POST bodies (summary requests, documents for entity extraction).
const maxBodyBytes = 1 << 20

// Search syntaxes accepted by GET /search.
const (
	syntaxMatch       = "match"
	syntaxQueryString = "query_string"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the read-only exploration HTTP API.
type Server struct {
	explore       *exploreuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(explore *exploreuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		explore: explore,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		unknownFacetHandler,
		rejectedQueryHandler,
		sentinelHandler(domain.ErrInvalidOperator, http.StatusBadRequest, ErrorCodeInvalidOperator),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(db.ErrIndexNotFound, http.StatusNotFound, ErrorCodeIndexNotFound),
		sentinelHandler(db.ErrBadResponse, http.StatusBadGateway, ErrorCodeBadEngineResponse),
		sentinelHandler(domain.ErrEngine, http.StatusBadGateway, ErrorCodeEngineError),
	}
	return s
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Get("/count", s.CountAll)
	r.Get("/sample", s.FetchSample)
	r.Get("/search", s.Search)
	r.Get("/describe", s.DescribeSubset)
	r.Get("/top", s.Top)
	r.Get("/cardinality", s.CountCardinality)
	r.Get("/random", s.RandomDocument)
	r.Post("/summary", s.SummarizeSubset)
	r.Post("/entities", s.CompileEntities)

	r.Get("/facets", s.ListFacets)
	r.Route("/facets/{facet}", func(r chi.Router) {
		r.Get("/sample", s.SampleSubset)
		r.Get("/aggregate", s.AggregateEntity)
		r.Get("/documents", s.SearchBy)
	})
}

// CountAll handles GET /count.
func (s *Server) CountAll(w http.ResponseWriter, r *http.Request) {
	n, err := s.explore.CountAll(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n})
}

// FetchSample handles GET /sample.
func (s *Server) FetchSample(w http.ResponseWriter, r *http.Request) {
	hit, err := s.explore.FetchSample(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hitResponse{Hit: hit})
}

// Search handles GET /search?q=&limit=&syntax=.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var (
		q, syntax *string
		limit     *int
	)
	if !s.bindQuery(w, r, "q", false, &q) ||
		!s.bindQuery(w, r, "limit", false, &limit) ||
		!s.bindQuery(w, r, "syntax", false, &syntax) {
		return
	}

	mode := syntaxMatch
	if syntax != nil {
		mode = *syntax
	}

	var (
		env *result.Envelope
		err error
	)
	switch mode {
	case syntaxMatch:
		env, err = s.explore.Search(r.Context(), deref(q), deref(limit))
	case syntaxQueryString:
		env, err = s.explore.SearchQueryString(r.Context(), deref(q), deref(limit))
	default:
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest,
			fmt.Sprintf("syntax must be %q or %q", syntaxMatch, syntaxQueryString))
		return
	}
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

// SampleSubset handles GET /facets/{facet}/sample?value=&q=&limit=.
func (s *Server) SampleSubset(w http.ResponseWriter, r *http.Request) {
	var (
		facetName, value string
		q                *string
		limit            *int
	)
	if !s.bindFacet(w, r, &facetName) ||
		!s.bindQuery(w, r, "value", true, &value) ||
		!s.bindQuery(w, r, "q", false, &q) ||
		!s.bindQuery(w, r, "limit", false, &limit) {
		return
	}

	env, err := s.explore.SampleSubset(r.Context(), deref(q), facetName, value, deref(limit))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

// DescribeSubset handles GET /describe?q=&top_n=&limit=.
func (s *Server) DescribeSubset(w http.ResponseWriter, r *http.Request) {
	var (
		q           *string
		topN, limit *int
	)
	if !s.bindQuery(w, r, "q", false, &q) ||
		!s.bindQuery(w, r, "top_n", false, &topN) ||
		!s.bindQuery(w, r, "limit", false, &limit) {
		return
	}

	env, err := s.explore.DescribeSubset(r.Context(), deref(q), deref(topN), deref(limit))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

// AggregateEntity handles GET /facets/{facet}/aggregate?value=&top_n=&limit=.
func (s *Server) AggregateEntity(w http.ResponseWriter, r *http.Request) {
	var (
		facetName, value string
		topN, limit      *int
	)
	if !s.bindFacet(w, r, &facetName) ||
		!s.bindQuery(w, r, "value", true, &value) ||
		!s.bindQuery(w, r, "top_n", false, &topN) ||
		!s.bindQuery(w, r, "limit", false, &limit) {
		return
	}

	aggs, err := s.explore.AggregateEntity(r.Context(), facetName, value, deref(topN), deref(limit))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, aggregationsResponse{Aggregations: aggs})
}

// SearchBy handles GET /facets/{facet}/documents?value=&limit=&first=.
// With first=true only the first matching source document is returned.
func (s *Server) SearchBy(w http.ResponseWriter, r *http.Request) {
	var (
		facetName, value string
		limit            *int
		first            *bool
	)
	if !s.bindFacet(w, r, &facetName) ||
		!s.bindQuery(w, r, "value", true, &value) ||
		!s.bindQuery(w, r, "limit", false, &limit) ||
		!s.bindQuery(w, r, "first", false, &first) {
		return
	}

	if deref(first) {
		doc, err := s.explore.FirstBy(r.Context(), facetName, value)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, documentResponse{Document: doc})
		return
	}

	env, err := s.explore.SearchBy(r.Context(), facetName, value, deref(limit))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

// Top handles GET /top?n=.
func (s *Server) Top(w http.ResponseWriter, r *http.Request) {
	var n *int
	if !s.bindQuery(w, r, "n", false, &n) {
		return
	}

	aggs, err := s.explore.Top(r.Context(), deref(n))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, aggregationsResponse{Aggregations: aggs})
}

// CountCardinality handles GET /cardinality.
func (s *Server) CountCardinality(w http.ResponseWriter, r *http.Request) {
	counts, err := s.explore.CountCardinality(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cardinalityResponse{Cardinality: counts})
}

// RandomDocument handles GET /random?filter=&seed=.
func (s *Server) RandomDocument(w http.ResponseWriter, r *http.Request) {
	var (
		filter *string
		seed   *int64
	)
	if !s.bindQuery(w, r, "filter", false, &filter) ||
		!s.bindQuery(w, r, "seed", false, &seed) {
		return
	}

	doc, err := s.explore.RandomDocument(r.Context(), deref(filter), deref(seed))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentResponse{Document: doc})
}

// SummarizeSubset handles POST /summary.
func (s *Server) SummarizeSubset(w http.ResponseWriter, r *http.Request) {
	var req summaryRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	env, err := s.explore.SummarizeSubset(r.Context(), req.toDomain())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

// CompileEntities handles POST /entities. The body is a source document.
func (s *Server) CompileEntities(w http.ResponseWriter, r *http.Request) {
	var doc document.Value
	if !s.decodeBody(w, r, &doc) {
		return
	}
	writeJSON(w, http.StatusOK, entitiesResponse{Entities: s.explore.CompileEntities(doc)})
}

// ListFacets handles GET /facets.
func (s *Server) ListFacets(w http.ResponseWriter, _ *http.Request) {
	all := s.explore.Facets().All()
	items := make([]facetItem, len(all))
	for i, f := range all {
		items[i] = facetItem{
			Name:           f.Name(),
			Field:          f.Path(),
			AggregateField: f.AggregateField(),
			Aggregated:     f.Aggregated(),
		}
	}
	writeJSON(w, http.StatusOK, facetsResponse{Index: s.explore.Index(), Facets: items})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Version: version.String(),
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// bindQuery binds a form-style query parameter; on failure it writes 400 and returns false.
// Optional parameters need a pointer-to-pointer dest, required ones a plain pointer.
func (s *Server) bindQuery(w http.ResponseWriter, r *http.Request, name string, required bool, dest any) bool {
	if err := runtime.BindQueryParameter("form", true, required, name, r.URL.Query(), dest); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest,
			fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
		return false
	}
	return true
}

// bindFacet binds the {facet} path parameter.
func (s *Server) bindFacet(w http.ResponseWriter, r *http.Request, dest *string) bool {
	err := runtime.BindStyledParameterWithOptions("simple", "facet", chi.URLParam(r, "facet"), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest,
			fmt.Sprintf("Invalid format for parameter facet: %s", err))
		return false
	}
	return true
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dest); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidOperator,
		domain.ErrInvalidRequest,
		db.ErrIndexNotFound,
		db.ErrBadResponse,
		domain.ErrEngine,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// unknownFacetHandler names the offending facet in the response.
func unknownFacetHandler(w http.ResponseWriter, err error, _ string) bool {
	var ue *facet.UnknownError
	if !errors.As(err, &ue) {
		return false
	}
	writeError(w, http.StatusBadRequest, ErrorCodeUnknownFacet, ue.Error())
	return true
}

// rejectedQueryHandler passes the engine's parse reason through as a 400.
func rejectedQueryHandler(w http.ResponseWriter, err error, _ string) bool {
	var re *db.RejectedError
	if !errors.As(err, &re) {
		return false
	}
	writeError(w, http.StatusBadRequest, ErrorCodeInvalidQuery, "query rejected by engine: "+re.Reason)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
