package handler

import (
	"net/http"

	"github.com/paiban/dutyroster/internal/constraints"
	"github.com/paiban/dutyroster/pkg/engine"
	"github.com/paiban/dutyroster/pkg/model"
)

// ConstraintLibrary 约束库及其生成时的规范化说明
type ConstraintLibrary struct {
	Library []constraints.Entry `json:"library"`
	Notes   []model.Note        `json:"notes,omitempty"`
}

// GetConstraintLibrary 按示例输入返回约束库
func (h *Handler) GetConstraintLibrary(w http.ResponseWriter, r *http.Request) {
	opts := h.engine.Options()
	entries, err := constraints.Library(constraints.SampleInput(opts.Weights, opts.Priorities))
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	h.success(w, r, http.StatusOK, "", ConstraintLibrary{Library: entries})
}

// ExplainConstraints 按提交的排班请求返回各放宽级别实际生效的约束
func (h *Handler) ExplainConstraints(w http.ResponseWriter, r *http.Request) {
	var req engine.Request
	if err := h.readJSON(w, r, &req); err != nil {
		h.fail(w, r, err, nil)
		return
	}

	in, notes, err := h.engine.Prepare(&req)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	entries, err := constraints.Library(in)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	h.success(w, r, http.StatusOK, "", ConstraintLibrary{Library: entries, Notes: notes})
}
