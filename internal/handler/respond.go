package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/tailor-pos/api/internal/lifecycle"
	"github.com/tailor-pos/api/internal/service"
	"go.uber.org/zap"
)

// envelope is the body of every API response.
type envelope struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Count   *int64      `json:"count,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, envelope{Status: "success", Data: data})
}

func writeList(w http.ResponseWriter, data interface{}, count int64) {
	writeJSON(w, http.StatusOK, envelope{Status: "success", Data: data, Count: &count})
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	s := "success"
	if status >= 400 {
		s = "error"
	}
	writeJSON(w, status, envelope{Status: s, Message: msg})
}

// settleFailure is the body of a partially applied stock batch.
type settleFailure struct {
	Succeeded []uuid.UUID  `json:"succeeded"`
	Failed    []failedLine `json:"failed"`
}

type failedLine struct {
	ID    uuid.UUID `json:"id"`
	Error string    `json:"error"`
}

// writeError maps an error to its HTTP status. Backend errors, including an
// unreachable or timed out database, keep their message so the operator sees
// what failed; anything else is logged and reported as an internal error.
func writeError(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	var (
		ve    *service.ValidationError
		be    *service.BatchError
		te      *lifecycle.TransitionError
		pgErr   *pgconn.PgError
		connErr *pgconn.ConnectError
	)
	switch {
	case errors.As(err, &be):
		body := settleFailure{Succeeded: be.Succeeded}
		if body.Succeeded == nil {
			body.Succeeded = []uuid.UUID{}
		}
		for _, f := range be.Failed {
			body.Failed = append(body.Failed, failedLine{ID: f.ID, Error: f.Err.Error()})
		}
		writeJSON(w, http.StatusConflict, envelope{Status: "error", Data: body, Message: err.Error()})
	case errors.As(err, &ve):
		writeMessage(w, http.StatusUnprocessableEntity, ve.Error())
	case errors.Is(err, service.ErrOrderNotFoundOrDenied):
		writeMessage(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrCustomerNotFound),
		errors.Is(err, service.ErrLineIndex):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrCustomerRequired),
		errors.Is(err, service.ErrOrderTerminal),
		errors.Is(err, service.ErrZeroPaymentUnconfirmed),
		errors.Is(err, service.ErrNoItems),
		errors.Is(err, service.ErrReviewRequired),
		errors.Is(err, service.ErrUnsavedOrder),
		errors.Is(err, service.ErrWrongOrderType),
		errors.As(err, &te):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, pgx.ErrNoRows):
		writeMessage(w, http.StatusNotFound, "not found")
	case errors.As(err, &pgErr):
		log.Error(op, zap.String("code", pgErr.Code), zap.Error(err))
		writeMessage(w, http.StatusBadGateway, pgErr.Message)
	case errors.As(err, &connErr), pgconn.Timeout(err), errors.Is(err, context.DeadlineExceeded):
		log.Error(op, zap.Error(err))
		writeMessage(w, http.StatusBadGateway, err.Error())
	default:
		log.Error(op, zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func urlUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid "+param)
		return uuid.Nil, false
	}
	return id, true
}

func urlIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	idx, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil || idx < 0 {
		writeMessage(w, http.StatusBadRequest, "invalid line index")
		return 0, false
	}
	return idx, true
}

// pagination reads limit and offset. Limit defaults to 50 and is capped at 200.
func pagination(r *http.Request) (int32, int32) {
	limit, offset := 50, 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > 200 {
		limit = 200
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return int32(limit), int32(offset)
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func optionalDecimal(n pgtype.Numeric) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := numericToDecimal(n)
	return &d
}

func parseNumeric(field, s string) (pgtype.Numeric, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return pgtype.Numeric{}, &service.ValidationError{Field: field, Message: "must be a number"}
	}
	if d.IsNegative() {
		return pgtype.Numeric{}, &service.ValidationError{Field: field, Message: "must not be negative"}
	}
	var n pgtype.Numeric
	if err := n.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, err
	}
	return n, nil
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}

func optionalText(s *string) pgtype.Text {
	if s == nil || *s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}
