// Package server exposes the calculators as a JSON HTTP API.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/finance-engine/internal/cache"
	"github.com/iwvelando/finance-engine/pkg/budget"
	"github.com/iwvelando/finance-engine/pkg/constants"
	"github.com/iwvelando/finance-engine/pkg/datetime"
	"github.com/iwvelando/finance-engine/pkg/debt"
	"github.com/iwvelando/finance-engine/pkg/mathutil"
	"github.com/iwvelando/finance-engine/pkg/recurring"
	"github.com/iwvelando/finance-engine/pkg/validation"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Response headers set by the API.
const (
	HeaderRequestID = "X-Request-ID"
	HeaderCache     = "X-Cache"
)

// Options configures NewHandler. Zero values select defaults.
type Options struct {
	MaxUploadSize  int64
	Version        string
	AllowedOrigins []string
	// Cache holds serialized payoff responses; nil uses an in-memory cache.
	Cache    cache.Cache
	CacheTTL time.Duration
	// Now is the server clock used when a request omits today.
	Now func() time.Time
}

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	calculator    *debt.Calculator
	cache         cache.Cache
	cacheTTL      time.Duration
	now           func() time.Time
}

// NewHandler constructs the HTTP handler that serves the calculator API.
func NewHandler(logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	h := &handler{
		logger:        logger,
		maxUploadSize: opts.MaxUploadSize,
		version:       strings.TrimSpace(opts.Version),
		calculator:    debt.NewCalculator(logger),
		cache:         opts.Cache,
		cacheTTL:      opts.CacheTTL,
		now:           opts.Now,
	}
	if h.maxUploadSize <= 0 {
		h.maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}
	if h.version == "" {
		h.version = "dev"
	}
	if h.cache == nil {
		h.cache = cache.NewMemory(0)
	}
	if h.cacheTTL <= 0 {
		h.cacheTTL = constants.DefaultCacheTTLSeconds * time.Second
	}
	if h.now == nil {
		h.now = time.Now
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/debt/payoff", h.handlePayoff)
	mux.HandleFunc("/api/recurring/normalize", h.handleNormalize)
	mux.HandleFunc("/api/budget/evaluate", h.handleBudget)
	mux.HandleFunc("/api/version", h.handleVersion)

	var root http.Handler = mux
	if len(opts.AllowedOrigins) > 0 {
		c := cors.New(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{
				http.MethodGet,
				http.MethodPost,
				http.MethodOptions,
			},
			AllowedHeaders: []string{"Accept", "Content-Type", HeaderRequestID},
			ExposedHeaders: []string{HeaderRequestID, HeaderCache},
		})
		root = c.Handler(root)
	}
	return h.withRequestID(root)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withRequestID tags every request with an id, echoing a caller-supplied one,
// and logs the outcome.
func (h *handler) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(HeaderRequestID))
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(HeaderRequestID, id)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		h.logger.Info("handled request",
			zap.String("op", "server.ServeHTTP"),
			zap.String("requestID", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

type payoffRequest struct {
	Account      *debt.Account `json:"account"`
	ExtraPayment float64       `json:"extraPayment"`
	Strategy     string        `json:"strategy"`
	Today        string        `json:"today,omitempty"`
	Schedule     bool          `json:"schedule,omitempty"`
}

// payoffKey is the canonical form of a payoff request used for caching.
type payoffKey struct {
	Account      debt.Account  `json:"account"`
	ExtraPayment float64       `json:"extraPayment"`
	Strategy     debt.Strategy `json:"strategy"`
	Today        string        `json:"today"`
	Schedule     bool          `json:"schedule"`
}

type payoffResponse struct {
	AccountName      string         `json:"accountName"`
	Strategy         string         `json:"strategy"`
	Status           string         `json:"status"`
	TotalMonths      int            `json:"totalMonths"`
	TotalInterest    float64        `json:"totalInterest"`
	TotalPaid        float64        `json:"totalPaid"`
	MoneySaved       float64        `json:"moneySaved"`
	MonthsSaved      int            `json:"monthsSaved"`
	PayoffDate       string         `json:"payoffDate,omitempty"`
	BaselineMonths   int            `json:"baselineMonths"`
	BaselineInterest float64        `json:"baselineInterest"`
	BaselineStatus   string         `json:"baselineStatus"`
	Schedule         []debt.Payment `json:"schedule,omitempty"`
}

func (h *handler) handlePayoff(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePayoff"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	var req payoffRequest
	if !h.decode(w, r, &req, op) {
		return
	}

	strategy := debt.Avalanche
	if strings.TrimSpace(req.Strategy) != "" {
		parsed, err := debt.ParseStrategy(req.Strategy)
		if err != nil {
			h.respondCalculationError(w, err, op)
			return
		}
		strategy = parsed
	}

	today := datetime.Day(h.now())
	if strings.TrimSpace(req.Today) != "" {
		parsed, err := datetime.ParseDate(req.Today)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid today: %v", err), op)
			return
		}
		today = parsed
	}

	if err := req.Account.Validate(); err != nil {
		h.respondCalculationError(w, err, op)
		return
	}

	key, err := cache.Key("payoff", payoffKey{
		Account:      *req.Account,
		ExtraPayment: req.ExtraPayment,
		Strategy:     strategy,
		Today:        today.Format(constants.DateLayout),
		Schedule:     req.Schedule,
	})
	if err != nil {
		h.logger.Warn("failed to build cache key", zap.String("op", op), zap.Error(err))
	}
	if key != "" {
		if cached, ok, err := h.cache.Get(r.Context(), key); err != nil {
			h.logger.Warn("cache lookup failed", zap.String("op", op), zap.Error(err))
		} else if ok {
			h.writeRaw(w, http.StatusOK, []byte(cached), "HIT")
			return
		}
	}

	result, err := h.calculator.Calculate(req.Account, req.ExtraPayment, strategy, today)
	if err != nil {
		h.respondCalculationError(w, err, op)
		return
	}
	resp := newPayoffResponse(result)

	if req.Schedule {
		amortization, err := debt.SimulateSchedule(req.Account.Balance, debt.MonthlyRate(req.Account.InterestRate),
			req.Account.MinimumPayment+req.ExtraPayment)
		if err != nil {
			h.respondCalculationError(w, err, op)
			return
		}
		resp.Schedule = roundSchedule(amortization.Schedule)
	}

	body, err := json.Marshal(resp)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode response: %v", err), op)
		return
	}
	body = append(body, '\n')

	if key != "" {
		if err := h.cache.Set(r.Context(), key, string(body), h.cacheTTL); err != nil {
			h.logger.Warn("cache store failed", zap.String("op", op), zap.Error(err))
		}
	}
	h.writeRaw(w, http.StatusOK, body, "MISS")
}

func newPayoffResponse(result debt.PayoffResult) payoffResponse {
	resp := payoffResponse{
		AccountName:      result.AccountName,
		Strategy:         result.Strategy.String(),
		Status:           result.Status.String(),
		TotalMonths:      result.TotalMonths,
		TotalInterest:    mathutil.Round(result.TotalInterest),
		TotalPaid:        mathutil.Round(result.TotalPaid),
		MoneySaved:       mathutil.Round(result.MoneySaved),
		MonthsSaved:      result.MonthsSaved,
		BaselineMonths:   result.BaselineMonths,
		BaselineInterest: mathutil.Round(result.BaselineInterest),
		BaselineStatus:   result.BaselineStatus.String(),
	}
	if result.Status == debt.PaidOff {
		resp.PayoffDate = result.PayoffDate.Format(constants.DateLayout)
	}
	return resp
}

func roundSchedule(schedule []debt.Payment) []debt.Payment {
	rounded := make([]debt.Payment, len(schedule))
	for i, row := range schedule {
		rounded[i] = debt.Payment{
			Month:            row.Month,
			Payment:          mathutil.Round(row.Payment),
			Interest:         mathutil.Round(row.Interest),
			Principal:        mathutil.Round(row.Principal),
			RemainingBalance: mathutil.Round(row.RemainingBalance),
		}
	}
	return rounded
}

type normalizeRequest struct {
	Items  []recurring.Item `json:"items"`
	Strict bool             `json:"strict,omitempty"`
}

func (h *handler) handleNormalize(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleNormalize"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	var req normalizeRequest
	if !h.decode(w, r, &req, op) {
		return
	}

	normalize := recurring.Normalize
	if req.Strict {
		normalize = recurring.NormalizeStrict
	}
	totals, err := normalize(req.Items)
	if err != nil {
		h.respondCalculationError(w, err, op)
		return
	}

	totals.TotalMonthly = mathutil.Round(totals.TotalMonthly)
	totals.TotalYearly = mathutil.Round(totals.TotalYearly)
	h.writeJSON(w, http.StatusOK, totals)
}

type budgetRequest struct {
	Categories   []budget.Category    `json:"categories"`
	Transactions []budget.Transaction `json:"transactions"`
}

type budgetResponse struct {
	Totals          map[string]float64 `json:"totals"`
	Remaining       map[string]float64 `json:"remaining"`
	OverBudget      []string           `json:"overBudget"`
	TotalBudget     float64            `json:"totalBudget"`
	TotalSpent      float64            `json:"totalSpent"`
	PercentageSpent float64            `json:"percentageSpent"`
}

func (h *handler) handleBudget(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleBudget"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	var req budgetRequest
	if !h.decode(w, r, &req, op) {
		return
	}

	status, err := budget.Evaluate(req.Categories, req.Transactions)
	if err != nil {
		h.respondCalculationError(w, err, op)
		return
	}

	resp := budgetResponse{
		Totals:          make(map[string]float64, len(status.Totals)),
		Remaining:       make(map[string]float64, len(status.Totals)),
		OverBudget:      status.OverBudgetNames(),
		TotalBudget:     mathutil.Round(status.TotalBudget),
		TotalSpent:      mathutil.Round(status.TotalSpent),
		PercentageSpent: mathutil.Round(status.PercentageSpent),
	}
	for _, name := range status.Names() {
		resp.Totals[name] = mathutil.Round(status.Totals[name])
		resp.Remaining[name] = mathutil.Round(status.Remaining(name))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// decode reads a JSON body into dst, responding with an error and returning
// false when that fails.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize), op)
			return false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

func (h *handler) respondCalculationError(w http.ResponseWriter, err error, op string) {
	if validation.IsValidationError(err) {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		h.logger.Error("failed to encode JSON response", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.writeRaw(w, status, buf.Bytes(), "")
}

func (h *handler) writeRaw(w http.ResponseWriter, status int, body []byte, cacheState string) {
	w.Header().Set("Content-Type", "application/json")
	if cacheState != "" {
		w.Header().Set(HeaderCache, cacheState)
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
