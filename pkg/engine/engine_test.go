package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiban/dutyroster/pkg/diagnostic"
	apperrors "github.com/paiban/dutyroster/pkg/errors"
	"github.com/paiban/dutyroster/pkg/model"
	"github.com/paiban/dutyroster/pkg/normalizer"
)

type recorded struct {
	outcome string
	level   int
}

type fakeRecorder struct {
	runs []recorded
}

func (f *fakeRecorder) RecordRun(outcome string, level int, _ time.Duration) {
	f.runs = append(f.runs, recorded{outcome, level})
}

func newEngine(t *testing.T) *Engine {
	t.Helper()
	opts := DefaultOptions()
	opts.Timeout = 20 * time.Second
	e, err := New(opts)
	require.NoError(t, err)
	return e
}

// juneRequest 8人（含机动）、2个通宵岗位、1个隔日岗位，2024年6月
func juneRequest() *Request {
	names := []string{"甲", "乙", "丙", "丁", "戊", "己", "庚", "机动"}
	employees := make([]EmployeeSpec, len(names))
	for i, n := range names {
		employees[i] = EmployeeSpec{Name: n}
	}
	employees[7].Backup = true
	return &Request{
		Year:      2024,
		Month:     6,
		Employees: employees,
		Posts: []model.Post{
			{Name: "值班A", Category: model.CategoryOvernight, Hours: 16},
			{Name: "值班B", Category: model.CategoryOvernight, Hours: 16},
			{Name: "门岗", Category: model.CategoryDay, Hours: 8, Alternating: true},
		},
		BaseDate: "2024-06-01",
	}
}

func TestEngine_Run_StrictLevel(t *testing.T) {
	e := newEngine(t)
	resp, err := e.Run(context.Background(), juneRequest())
	require.NoError(t, err)

	assert.Equal(t, 0, resp.Level)
	assert.False(t, resp.Exhausted)
	assert.Contains(t, []string{"optimal", "feasible"}, resp.Status)
	require.NotNil(t, resp.Grid)
	assert.Equal(t, 30, resp.Grid.Days())
	assert.Len(t, resp.Grid.Employees(), 8)
	assert.Empty(t, resp.Warnings)
	assert.NotEmpty(t, resp.Explanations)

	for d := 0; d < 30; d++ {
		assert.Equal(t, 1, resp.Grid.PostCount(d, 0), "day %d 值班A", d+1)
		assert.Equal(t, 1, resp.Grid.PostCount(d, 1), "day %d 值班B", d+1)
		want := 0
		if (d+1)%2 == 1 {
			want = 1
		}
		assert.Equal(t, want, resp.Grid.PostCount(d, 2), "day %d 门岗", d+1)
	}

	for emp := range resp.Grid.Employees() {
		for d := 0; d+1 < 30; d++ {
			s := resp.Grid.At(emp, d)
			if s == 0 || s == 1 {
				assert.Equal(t, model.StateRest, resp.Grid.At(emp, d+1))
			}
		}
	}

	require.NotNil(t, resp.Report)
	assert.Equal(t, []int{1, 0, 1, 0}, resp.Report.Totals.Alternating["门岗"][:4])
	assert.Equal(t, "机动", resp.Report.Totals.Backup)
}

func TestEngine_Run_CrossMonthAndLeave(t *testing.T) {
	req := juneRequest()
	req.Tail = map[string][]string{
		"甲": {model.LabelUnfilled, "休假", "值班A"},
	}
	req.Requests = []normalizer.RawEntry{
		{Employee: "乙", Leave: []string{"5"}},
		{Employee: "无名氏", Leave: []string{"3"}},
	}

	e := newEngine(t)
	resp, err := e.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, model.LabelRest, resp.Grid.Label(0, 0))

	var kinds []model.NoteKind
	for _, n := range resp.Notes {
		kinds = append(kinds, n.Kind)
	}
	assert.Contains(t, kinds, model.NoteInput)
	assert.Contains(t, kinds, model.NoteRest)

	a := resp.Report.Employees[0].CrossMonth
	assert.True(t, a.ForcedRest)
	assert.True(t, a.ForcedRestHonored)

	b := resp.Report.Employees[1]
	assert.Equal(t, 1, b.LeaveRequested)
	assert.Equal(t, 1, b.LeaveHonored)
}

func TestEngine_Run_Exhausted(t *testing.T) {
	req := &Request{
		Year:  2024,
		Month: 6,
		Employees: []EmployeeSpec{
			{Name: "甲"}, {Name: "乙"},
		},
		Posts: []model.Post{
			{Name: "值班A", Category: model.CategoryOvernight, Hours: 16},
			{Name: "值班B", Category: model.CategoryOvernight, Hours: 16},
		},
	}
	rec := &fakeRecorder{}
	e := newEngine(t).WithRecorder(rec)

	resp, err := e.Run(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeNoFeasibleSolution))

	require.NotNil(t, resp)
	assert.True(t, resp.Exhausted)
	assert.Equal(t, 99, resp.Level)
	assert.Len(t, resp.Attempts, 4)
	require.NotNil(t, resp.Diagnosis)
	assert.Equal(t, diagnostic.CategoryTightStaffing, resp.Diagnosis.Category)
	assert.Equal(t, []recorded{{OutcomeExhausted, 99}}, rec.runs)
}

func TestEngine_Run_ExhaustedConstraintConflict(t *testing.T) {
	// 人数多于岗位但不足以轮换补休，且无休假与跨月数据
	req := &Request{
		Year:  2024,
		Month: 6,
		Employees: []EmployeeSpec{
			{Name: "甲"}, {Name: "乙"}, {Name: "丙"},
		},
		Posts: []model.Post{
			{Name: "值班A", Category: model.CategoryOvernight, Hours: 16},
			{Name: "值班B", Category: model.CategoryOvernight, Hours: 16},
		},
	}

	resp, err := newEngine(t).Run(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeNoFeasibleSolution))

	require.NotNil(t, resp)
	require.True(t, resp.Exhausted)
	require.NotNil(t, resp.Diagnosis)
	assert.Equal(t, diagnostic.CategoryConstraintConflict, resp.Diagnosis.Category)
	assert.NotContains(t, resp.Diagnosis.Detail, "休假")
	assert.NotContains(t, resp.Diagnosis.Detail, "双通宵")

	// 响应中仍保留放宽过程的说明
	var relaxations int
	for _, n := range resp.Notes {
		if n.Kind == model.NoteRelaxation {
			relaxations++
		}
	}
	assert.Equal(t, 3, relaxations)
}

func TestEngine_Run_ValidationError(t *testing.T) {
	req := juneRequest()
	req.Month = 13
	req.Posts[0].Category = "unknown"

	rec := &fakeRecorder{}
	e := newEngine(t).WithRecorder(rec)
	_, err := e.Run(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidationFail))

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "Request.Month")
	assert.Contains(t, appErr.Fields, "Request.Posts[0].Category")
	assert.Equal(t, OutcomeError, rec.runs[0].outcome)
}

func TestEngine_Run_TooFewEmployees(t *testing.T) {
	for _, n := range []int{0, 1} {
		req := juneRequest()
		req.Employees = req.Employees[:n]

		rec := &fakeRecorder{}
		_, err := newEngine(t).WithRecorder(rec).Run(context.Background(), req)
		require.Error(t, err, "employees=%d", n)
		assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err), "employees=%d", n)
		assert.Contains(t, err.Error(), "至少需要2名员工")
	}
}

func TestEngine_Run_NilRequest(t *testing.T) {
	_, err := newEngine(t).Run(context.Background(), nil)
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidInput))
}

func TestEngine_Run_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newEngine(t).Run(ctx, juneRequest())
	assert.True(t, apperrors.Is(err, apperrors.CodeTimeout))
}

func TestEngine_Diagnose(t *testing.T) {
	req := juneRequest()
	req.Requests = []normalizer.RawEntry{
		{Employee: "甲", Leave: []string{"1"}},
		{Employee: "乙", Leave: []string{"1"}},
		{Employee: "丙", Leave: []string{"1"}},
		{Employee: "丁", Leave: []string{"1"}},
		{Employee: "戊", Leave: []string{"1"}},
		{Employee: "己", Leave: []string{"1"}},
	}
	diag, notes, err := newEngine(t).Diagnose(req)
	require.NoError(t, err)
	assert.Empty(t, notes)
	assert.Equal(t, diagnostic.CategoryLeaveConcentration, diag.Category)
	assert.Equal(t, diagnostic.UrgencyMedium, diag.Urgency)
}

func TestEngine_Prepare(t *testing.T) {
	req := juneRequest()
	req.Employees[0].Priorities = map[string]model.Priority{"门岗": model.PriorityForbidden}
	req.Employees[1].Rules = &model.CustomRules{MaxConsecutiveDays: 3}

	in, _, err := newEngine(t).Prepare(req)
	require.NoError(t, err)
	assert.Equal(t, time.June, in.Month)
	assert.Equal(t, model.PriorityForbidden, in.Employees[0].PriorityFor("门岗"))
	assert.True(t, in.HasCustomRules())
	assert.True(t, in.Employees[7].Backup)
	assert.Equal(t, "2024-06-01", in.Base().Format(DateLayout))
}
