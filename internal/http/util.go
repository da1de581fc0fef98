package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"festflow/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// statusFor domain.ErrorKind -> HTTP 状态码
func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInvalidArgument, domain.KindCapacityExceeded:
		return http.StatusBadRequest
	case domain.KindResourceExhausted, domain.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeError 写错误响应；底层细节只进日志
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status := statusFor(domain.KindOf(err))
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	} else {
		logger.Debug("Request rejected",
			zap.String("path", r.URL.Path),
			zap.String("kind", string(domain.KindOf(err))),
			zap.Error(err),
		)
	}
	writeJSON(w, status, Fail(err))
}

// pathID 读取并校验路径中的 uuid
func pathID(r *http.Request, name string) (string, error) {
	raw := r.PathValue(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", domain.InvalidArgument("http", "%s must be a uuid", name)
	}
	return id.String(), nil
}

func decodeBody(r *http.Request, out any) error {
	if err := readBodyJSON(r, maxBodyBytes, out); err != nil {
		var se *json.SyntaxError
		var te *json.UnmarshalTypeError
		if errors.As(err, &se) || errors.As(err, &te) {
			return domain.InvalidArgument("http", "invalid JSON body")
		}
		return domain.InvalidArgument("http", "invalid request body")
	}
	return nil
}
