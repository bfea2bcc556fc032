package httpserver

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	appanalysis "github.com/bryanwahyu/loglens/internal/application/analysis"
	domain "github.com/bryanwahyu/loglens/internal/domain/analysis"
	"github.com/bryanwahyu/loglens/internal/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

var dashboardTmpl = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"riskClass": riskClass,
}).ParseFS(templateFS, "templates/dashboard.html"))

// DefaultMaxBodyBytes caps request bodies when Options leaves it unset.
const DefaultMaxBodyBytes int64 = 1 << 20

// ExampleLogs prefill the dashboard form.
var ExampleLogs = []string{
	`sshd[1234]: Failed password for invalid user admin from 123.45.67.89 port 22 ssh2`,
	`kernel: [UFW BLOCK] IN=eth0 OUT= MAC=00:00:00:00:00:00 SRC=192.168.1.100 DST=192.168.1.1 LEN=40 TOS=0x00 PROTO=TCP SPT=45678 DPT=22 WINDOW=65535 SYN`,
	`nginx: 192.168.1.10 - - [10/Jul/2025:13:55:36 +0000] "GET /wp-admin/setup-config.php HTTP/1.1" 404 0 "-" "Mozilla/5.0 zgrab/0.x"`,
	`app[web.1]: Exception in thread "main" java.lang.OutOfMemoryError: Java heap space`,
	`CRON[3123]: pam_unix(cron:session): session opened for user root by (uid=0)`,
	`systemd: Started Daily apt upgrade and clean activities.`,
}

// Options carries the HTTP-layer settings.
type Options struct {
	APIKeys        map[string]string
	RateLimiter    *middleware.RateLimiter
	AllowedOrigins []string
	MaxBodyBytes   int64
	Health         middleware.HealthOptions
}

type Router struct {
	svc     *appanalysis.Service
	maxBody int64
}

func NewRouter(svc *appanalysis.Service, opts Options) http.Handler {
	r := &Router{svc: svc, maxBody: opts.MaxBodyBytes}
	if r.maxBody <= 0 {
		r.maxBody = DefaultMaxBodyBytes
	}
	if opts.Health.Model == nil {
		opts.Health.Model = svc
	}

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.MetricsMiddleware)
	// CORS runs ahead of routing so preflights never hit a 405.
	mux.Use(apiOnly(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	})))

	limit := middleware.RateLimitMiddleware(opts.RateLimiter)

	mux.Get("/health", middleware.HealthHandler(opts.Health))
	mux.Get("/livez", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Get("/", r.handleDashboard)
	mux.With(limit).Post("/analyze", r.handleAnalyzeForm)

	mux.Group(func(rt chi.Router) {
		rt.Use(middleware.APIKeyAuth(opts.APIKeys))
		rt.With(limit).Post("/api", r.wrap(r.handleAPI))
		rt.Get("/api/history", r.wrap(r.handleHistory))
	})

	return mux
}

// apiOnly applies mw to /api and /api/* requests only.
func apiOnly(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		wrapped := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if p := req.URL.Path; p == "/api" || strings.HasPrefix(p, "/api/") {
				wrapped.ServeHTTP(w, req)
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

// badRequest is a client input error whose message goes back verbatim.
type badRequest struct{ msg string }

func (e *badRequest) Error() string { return e.msg }

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		var br *badRequest
		switch {
		case errors.As(err, &br), errors.Is(err, domain.ErrEmptyLogEntry):
			middleware.RecordOutcome(middleware.OutcomeRejected)
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, domain.ErrModelUnavailable):
			middleware.RecordOutcome(middleware.OutcomeUnavailable)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		case errors.Is(err, domain.ErrNoHistory):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			var remote *domain.RemoteModelError
			if errors.As(err, &remote) {
				middleware.RecordOutcome(middleware.OutcomeModelError)
			}
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
	}
}

// POST /api
// Body: {"log_entry": "<line>"}
func (r *Router) handleAPI(w http.ResponseWriter, req *http.Request) error {
	if !middleware.IsJSON(req) {
		return &badRequest{"request must be JSON"}
	}
	req.Body = http.MaxBytesReader(w, req.Body, r.maxBody)

	var body struct {
		LogEntry string `json:"log_entry"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &badRequest{"request body too large"}
		}
		return &badRequest{"invalid JSON body: " + err.Error()}
	}

	res, err := r.svc.Analyze(req.Context(), body.LogEntry)
	if err != nil {
		return err
	}
	middleware.ObserveAnalysis(res.Duration, res.Report.RiskLevel)

	return writeJSON(w, http.StatusOK, map[string]string{"analysis": res.Analysis})
}

// GET /api/history?limit=20
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	recs, err := r.svc.History(req.Context(), middleware.ParseLimit(req))
	if err != nil {
		return err
	}
	if recs == nil {
		recs = []*domain.Record{}
	}
	return writeJSON(w, http.StatusOK, recs)
}

type pageData struct {
	Examples   []string
	Input      string
	Latest     *domain.Result
	Error      string
	ModelReady bool
	ModelName  string
}

func (r *Router) page() pageData {
	d := pageData{
		Examples:   ExampleLogs,
		ModelReady: r.svc.Ready(),
		ModelName:  r.svc.ModelName(),
	}
	if res, ok := r.svc.Latest(); ok {
		d.Latest = &res
	}
	return d
}

// GET /
func (r *Router) handleDashboard(w http.ResponseWriter, req *http.Request) {
	render(w, r.page())
}

// POST /analyze
// Errors are shown in the page; the status is always 200.
func (r *Router) handleAnalyzeForm(w http.ResponseWriter, req *http.Request) {
	req.Body = http.MaxBytesReader(w, req.Body, r.maxBody)

	if err := req.ParseForm(); err != nil {
		middleware.RecordOutcome(middleware.OutcomeRejected)
		d := r.page()
		d.Error = "Could not read the submitted form: " + err.Error()
		render(w, d)
		return
	}

	input := req.PostForm.Get("log_entry")
	res, err := r.svc.Analyze(req.Context(), input)

	d := r.page()
	switch {
	case err == nil:
		middleware.ObserveAnalysis(res.Duration, res.Report.RiskLevel)
	case errors.Is(err, domain.ErrEmptyLogEntry):
		middleware.RecordOutcome(middleware.OutcomeRejected)
		d.Error = "Please enter a log entry to analyze."
	case errors.Is(err, domain.ErrModelUnavailable):
		middleware.RecordOutcome(middleware.OutcomeUnavailable)
		d.Error = "The analysis model is not initialized. Check the server configuration."
	default:
		middleware.RecordOutcome(middleware.OutcomeModelError)
		d.Error = "Analysis failed: " + err.Error()
		d.Input = input
	}
	render(w, d)
}

func render(w http.ResponseWriter, d pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := dashboardTmpl.Execute(w, d); err != nil {
		slog.Error("render dashboard failed", "error", err)
	}
}

func riskClass(level domain.RiskLevel) string {
	switch level {
	case domain.RiskHigh:
		return "risk-high"
	case domain.RiskLow:
		return "risk-low"
	default:
		return "risk-medium"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}
