package httpapi

import (
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/and161185/taskhub/internal/errs"
	"github.com/and161185/taskhub/internal/validate"
)

// maxBody caps request bodies.
const maxBody = 1 << 20

type errorBody struct {
	Error   string   `json:"error"`
	Status  int      `json:"status"`
	Details []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// statusOf maps service errors onto HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrUnauthorized),
		errors.Is(err, errs.ErrInvalidToken),
		errors.Is(err, errs.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, errs.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the mapped status. Authentication failures get fixed
// messages; unexpected errors are logged and hidden from the caller.
func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	status := statusOf(err)
	body := errorBody{Status: status, Error: err.Error()}

	switch status {
	case http.StatusUnauthorized:
		switch {
		case errors.Is(err, errs.ErrTokenExpired):
			body.Error = "token expired"
		case errors.Is(err, errs.ErrInvalidToken):
			body.Error = "invalid token"
		default:
			body.Error = "unauthorized"
		}
	case http.StatusNotFound:
		body.Error = "not found"
	case http.StatusTooManyRequests:
		body.Error = "too many failed login attempts"
		var ra *errs.RetryAfterError
		if errors.As(err, &ra) && ra.After > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(ra.After.Seconds()))))
		}
	case http.StatusInternalServerError:
		log.Error("request failed",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestIDFromCtx(r.Context())),
		)
		body.Error = "internal"
	}

	var ve *validate.Error
	if errors.As(err, &ve) {
		body.Error = "invalid request"
		body.Details = ve.Details
	}
	writeJSON(w, status, body)
}

// decode reads the body, validates it against schemaID and unmarshals it into v.
func (s *Server) decode(r *http.Request, schemaID string, v any) error {
	raw, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBody))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return &validate.Error{Details: []string{"body too large"}}
		}
		return err
	}
	if err := s.validator.ValidateBytes(raw, schemaID); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &validate.Error{Details: []string{err.Error()}}
	}
	return nil
}
