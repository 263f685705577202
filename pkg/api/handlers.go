package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hashicorp/go-hclog"

	"github.com/ssargent/tfrecord/pkg/index"
	"github.com/ssargent/tfrecord/pkg/logging"
	"github.com/ssargent/tfrecord/pkg/tfrecord"
)

// Server holds the API server state
type Server struct {
	source  RecordSource
	config  ServerConfig
	metrics *Metrics
	logger  hclog.Logger
}

// NewServer creates a new API server
func NewServer(source RecordSource, config ServerConfig, metrics *Metrics, logger hclog.Logger) *Server {
	logger = logging.OrNull(logger)
	metrics.SetIndexedRecords(source.Meta().Count)
	return &Server{
		source:  source,
		config:  config,
		metrics: metrics,
		logger:  logger,
	}
}

// handleHealth godoc
//
//	@Summary	Health check
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleStats godoc
//
//	@Summary	Describe the served container
//	@Produce	json
//	@Success	200	{object}	StatsResponse
//	@Router		/stats [get]
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	meta := s.source.Meta()
	sendSuccess(w, StatsResponse{
		Records:        meta.Count,
		ContainerBytes: meta.ContainerBytes,
		BuildID:        meta.BuildID.String(),
		Validated:      meta.Validated,
		Checksum:       meta.Checksum,
	})
}

// handleGetRecord godoc
//
//	@Summary	Fetch one record's payload
//	@Produce	octet-stream
//	@Param		n	path	int	true	"Zero-based record number"
//	@Success	200	{string}	binary
//	@Failure	400	{object}	APIResponse
//	@Failure	404	{object}	APIResponse
//	@Failure	422	{object}	APIResponse
//	@Router		/records/{n} [get]
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.ParseInt(chi.URLParam(r, "n"), 10, 64)
	if err != nil || n < 0 {
		sendError(w, "Record number must be a non-negative integer", http.StatusBadRequest)
		return
	}

	start := time.Now()
	record, err := s.source.Record(n)
	if errors.Is(err, index.ErrNotFound) {
		s.metrics.RecordNotFound()
		sendError(w, err.Error(), http.StatusNotFound)
		return
	}
	s.metrics.RecordRead(len(record), err, time.Since(start))
	if err != nil {
		s.logger.Warn("record read failed", "record", n, "error", err)
		sendError(w, err.Error(), statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(record)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(record)
}

// handleVerify godoc
//
//	@Summary	Validate every record of the container
//	@Produce	json
//	@Success	200	{object}	VerifyResponse
//	@Failure	422	{object}	APIResponse
//	@Router		/verify [get]
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	n, err := s.source.Verify(r.Context())
	s.metrics.RecordVerify(err)
	if err != nil {
		s.logger.Warn("verification failed", "records_ok", n, "error", err)
		sendError(w, err.Error(), statusFor(err))
		return
	}
	sendSuccess(w, VerifyResponse{Records: n})
}

// statusFor maps reader and index errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, tfrecord.ErrCorruptContainer),
		errors.Is(err, tfrecord.ErrChecksumMismatch),
		errors.Is(err, index.ErrStale):
		return http.StatusUnprocessableEntity
	case errors.Is(err, index.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
