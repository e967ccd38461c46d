package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/paiban/dutyroster/pkg/errors"
	"github.com/paiban/dutyroster/pkg/logger"
)

// maxBodyBytes 请求体上限
const maxBodyBytes = 4 << 20

// Response 统一响应结构
type Response struct {
	Success bool                   `json:"success"`
	Code    apperrors.Code         `json:"code,omitempty"`
	Message string                 `json:"message,omitempty"`
	Details string                 `json:"details,omitempty"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
	Data    any                    `json:"data,omitempty"`
}

func (h *Handler) readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInvalidInput, "解析请求失败").WithDetails(err.Error())
	}
	return nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("写入响应失败")
	}
}

func (h *Handler) success(w http.ResponseWriter, r *http.Request, status int, msg string, data any) {
	h.writeJSON(w, r, status, Response{Success: true, Message: msg, Data: data})
}

// fail 输出错误响应，data 可附带部分结果
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, data any) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.Wrap(err, apperrors.CodeInternal, "服务器内部错误")
	}
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.WithContext(r.Context()).Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("服务器内部错误")
	}
	h.writeJSON(w, r, appErr.HTTPStatus, Response{
		Success: false,
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
		Fields:  appErr.Fields,
		Data:    data,
	})
}
