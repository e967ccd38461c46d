package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/paiban/dutyroster/internal/repository"
	"github.com/paiban/dutyroster/pkg/diagnostic"
	"github.com/paiban/dutyroster/pkg/engine"
	apperrors "github.com/paiban/dutyroster/pkg/errors"
	"github.com/paiban/dutyroster/pkg/logger"
	"github.com/paiban/dutyroster/pkg/model"
)

// maxListLimit 列表单页上限
const maxListLimit = 100

// RunView 运行记录及其完整结果
type RunView struct {
	*model.Run
	Result json.RawMessage `json:"result,omitempty"`
}

// RunList 运行记录列表
type RunList struct {
	Items []*model.Run `json:"items"`
	Total int          `json:"total"`
}

// DiagnoseResult 诊断结果
type DiagnoseResult struct {
	Diagnosis *diagnostic.Diagnosis `json:"diagnosis"`
	Notes     []model.Note          `json:"notes"`
}

// CreateSchedule 生成月度排班并保存运行记录
func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req engine.Request
	if err := h.readJSON(w, r, &req); err != nil {
		h.fail(w, r, err, nil)
		return
	}

	ctx := r.Context()
	if h.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cfg.Timeout)
		defer cancel()
	}

	done := h.metrics.TrackActive()
	resp, runErr := h.engine.Run(ctx, &req)
	done()

	if resp == nil {
		h.fail(w, r, runErr, nil)
		return
	}

	run, err := toRun(resp)
	if err == nil {
		err = h.store.Create(r.Context(), run)
	}
	if err != nil {
		h.fail(w, r, apperrors.Wrap(err, apperrors.CodeDatabaseError, "保存排班记录失败"), nil)
		return
	}

	logger.WithContext(r.Context()).Info().
		Str("run_id", run.ID.String()).
		Str("status", run.Status).
		Int("level", run.Level).
		Msg("排班记录已保存")

	if runErr != nil {
		h.fail(w, r, runErr, resp)
		return
	}
	h.success(w, r, http.StatusCreated, "排班生成成功", resp)
}

// GetSchedule 获取单次运行记录
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	idParam := chi.URLParam(r, "id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.fail(w, r, apperrors.InvalidInput("id", "无效的运行ID格式"), nil)
		return
	}

	run, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}

	view := RunView{Run: run}
	if len(run.Payload) > 0 {
		view.Result = json.RawMessage(run.Payload)
	}
	h.success(w, r, http.StatusOK, "", view)
}

// ListSchedules 分页查询运行记录
func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}

	runs, total, err := h.store.List(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	if runs == nil {
		runs = []*model.Run{}
	}
	h.success(w, r, http.StatusOK, "", RunList{Items: runs, Total: total})
}

// DiagnoseSchedule 不求解，只对请求做无解诊断
func (h *Handler) DiagnoseSchedule(w http.ResponseWriter, r *http.Request) {
	var req engine.Request
	if err := h.readJSON(w, r, &req); err != nil {
		h.fail(w, r, err, nil)
		return
	}

	diag, notes, err := h.engine.Diagnose(&req)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	h.success(w, r, http.StatusOK, "", DiagnoseResult{Diagnosis: diag, Notes: notes})
}

func parseListFilter(r *http.Request) (repository.ListFilter, error) {
	filter := repository.DefaultListFilter()
	q := r.URL.Query()

	ints := map[string]*int{
		"year":   &filter.Year,
		"month":  &filter.Month,
		"offset": &filter.Offset,
		"limit":  &filter.Limit,
	}
	for name, dst := range ints {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return filter, apperrors.InvalidInput(name, "必须是非负整数")
		}
		*dst = v
	}
	if filter.Month > 12 {
		return filter, apperrors.InvalidInput("month", "必须在1到12之间")
	}
	if filter.Limit == 0 || filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}

	switch status := q.Get("status"); status {
	case "", model.RunSolved, model.RunExhausted:
		filter.Status = status
	default:
		return filter, apperrors.InvalidInput("status", "只能是 solved 或 exhausted")
	}

	switch order := q.Get("order"); order {
	case "":
	case "asc", "desc":
		filter.OrderDir = order
	default:
		return filter, apperrors.InvalidInput("order", "只能是 asc 或 desc")
	}
	return filter, nil
}

// toRun 把排班结果转换为持久化记录
func toRun(resp *engine.Response) (*model.Run, error) {
	payload, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}

	run := &model.Run{
		Year:      resp.Year,
		Month:     resp.Month,
		Status:    model.RunSolved,
		Level:     resp.Level,
		Objective: resp.Objective,
		Payload:   payload,
	}
	run.ID = resp.RunID
	if resp.Exhausted {
		run.Status = model.RunExhausted
	}
	for _, a := range resp.Attempts {
		run.Levels = append(run.Levels, int64(a.Level))
	}
	for _, n := range resp.Notes {
		run.Notes = append(run.Notes, n.Message)
	}
	return run, nil
}
