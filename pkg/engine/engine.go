// Package engine 串联规范化、跨月分析、逐级放宽求解与结果分析
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/paiban/dutyroster/pkg/calendar"
	"github.com/paiban/dutyroster/pkg/crossmonth"
	"github.com/paiban/dutyroster/pkg/diagnostic"
	apperrors "github.com/paiban/dutyroster/pkg/errors"
	"github.com/paiban/dutyroster/pkg/logger"
	"github.com/paiban/dutyroster/pkg/model"
	"github.com/paiban/dutyroster/pkg/normalizer"
	"github.com/paiban/dutyroster/pkg/scheduler/builder"
	"github.com/paiban/dutyroster/pkg/scheduler/relax"
	"github.com/paiban/dutyroster/pkg/scheduler/solver"
	"github.com/paiban/dutyroster/pkg/stats"
	gridvalidator "github.com/paiban/dutyroster/pkg/validator"
)

// Recorder 运行结果指标
type Recorder interface {
	RecordRun(outcome string, level int, duration time.Duration)
}

// 运行结果
const (
	OutcomeSolved    = "solved"
	OutcomeExhausted = "exhausted"
	OutcomeError     = "error"
)

// Engine 排班引擎，不持有跨运行的可变状态
type Engine struct {
	opts      Options
	validator *RequestValidator
	analyzer  *stats.Analyzer
	recorder  Recorder
	logger    *logger.SchedulerLogger
}

// New 创建排班引擎
func New(opts Options) (*Engine, error) {
	v, err := NewRequestValidator()
	if err != nil {
		return nil, fmt.Errorf("初始化请求校验失败: %w", err)
	}
	return &Engine{
		opts:      opts,
		validator: v,
		analyzer:  stats.NewAnalyzer(),
		logger:    logger.NewComponentLogger("engine"),
	}, nil
}

// WithRecorder 设置指标记录器
func (e *Engine) WithRecorder(r Recorder) *Engine {
	e.recorder = r
	return e
}

// Options 返回引擎参数
func (e *Engine) Options() Options {
	return e.opts
}

// Prepare 校验请求并整理为求解输入，返回输入整理与跨月分析的说明
func (e *Engine) Prepare(req *Request) (*builder.Input, []model.Note, error) {
	if err := e.validator.Validate(req); err != nil {
		return nil, nil, err
	}

	month := time.Month(req.Month)
	days := calendar.DaysIn(req.Year, month)

	names := make([]string, len(req.Employees))
	employees := make([]*model.Employee, len(req.Employees))
	for i, es := range req.Employees {
		emp := model.NewEmployee(es.Name)
		emp.Backup = es.Backup
		for post, p := range es.Priorities {
			emp.Priorities[post] = p
		}
		emp.Rules = es.Rules
		employees[i] = emp
		names[i] = es.Name
	}
	postNames := make([]string, len(req.Posts))
	for i, p := range req.Posts {
		postNames[i] = p.Name
	}

	var base time.Time
	if req.BaseDate != "" {
		t, err := time.Parse(DateLayout, req.BaseDate)
		if err != nil {
			return nil, nil, apperrors.InvalidInput("base_date", err.Error())
		}
		base = t
	}

	norm := normalizer.New(names, postNames).Normalize(req.Requests, days)
	tail := crossmonth.New(names, postNames).Analyze(req.Tail)

	in := &builder.Input{
		Year:        req.Year,
		Month:       month,
		Employees:   employees,
		Posts:       append([]model.Post(nil), req.Posts...),
		Leaves:      norm.Leaves,
		Preferences: norm.Preferences,
		Tail:        tail.Tail,
		BaseDate:    base,
		Priorities:  e.opts.Priorities,
		Weights:     e.opts.Weights,
	}
	if err := in.Validate(); err != nil {
		return nil, nil, err
	}

	notes := append(norm.Notes, tail.Notes...)
	return in, notes, nil
}

// Run 执行一次排班
// 全部级别无解时同时返回带诊断的结果与 CodeNoFeasibleSolution 错误
func (e *Engine) Run(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()
	runID := uuid.New()

	in, notes, err := e.Prepare(req)
	if err != nil {
		e.record(OutcomeError, -1, time.Since(start))
		return nil, err
	}
	e.logger.StartSchedule(runID.String(), len(in.Employees), len(in.Posts), in.Days())

	controller := relax.NewController(solver.NewBacktrackSolver(e.opts.Solver), e.opts.Timeout)
	out, err := controller.Run(ctx, in)
	if err != nil {
		e.record(OutcomeError, -1, time.Since(start))
		return nil, err
	}

	resp := &Response{
		RunID:     runID,
		Year:      in.Year,
		Month:     int(in.Month),
		Level:     out.Level,
		Exhausted: out.Exhausted,
		Notes:     append(notes, out.Notes...),
		Attempts:  out.Attempts,
	}

	if out.Exhausted {
		diag := diagnostic.Diagnose(in, notes)
		resp.Diagnosis = diag
		resp.Duration = time.Since(start)
		e.logger.ScheduleExhausted(runID.String(), resp.Duration, string(diag.Category))
		e.record(OutcomeExhausted, out.Level, resp.Duration)
		return resp, apperrors.Exhausted(diag.Detail, diag)
	}

	active, err := calendar.ActiveDays(in.Base(), in.Year, in.Month)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "计算隔日值守日失败")
	}
	conflicts := gridvalidator.NewGridValidator(in.Employees, in.Posts, in.Tail, active).Validate(out.Grid)
	if errs := gridvalidator.Errors(conflicts); len(errs) > 0 {
		for _, c := range errs {
			e.logger.ConstraintViolation(string(c.Type), c.Message)
		}
		e.record(OutcomeError, out.Level, time.Since(start))
		return nil, apperrors.New(apperrors.CodeInternal, "排班结果校验失败").
			WithDetails(errs[0].Message).
			WithField("conflicts", errs)
	}

	resp.Status = string(out.Status)
	resp.Objective = out.Objective
	resp.Profile = out.Profile.Describe()
	resp.Explanations = out.Model.Explanations
	resp.Grid = out.Grid
	resp.Warnings = conflicts
	resp.Report = e.analyzer.Analyze(in, out.Grid)
	resp.Duration = time.Since(start)

	e.logger.ScheduleComplete(runID.String(), resp.Duration, out.Level, out.Objective)
	e.record(OutcomeSolved, out.Level, resp.Duration)
	return resp, nil
}

// Diagnose 只运行无解诊断，不求解
func (e *Engine) Diagnose(req *Request) (*diagnostic.Diagnosis, []model.Note, error) {
	in, notes, err := e.Prepare(req)
	if err != nil {
		return nil, nil, err
	}
	return diagnostic.Diagnose(in, notes), notes, nil
}

func (e *Engine) record(outcome string, level int, d time.Duration) {
	if e.recorder != nil {
		e.recorder.RecordRun(outcome, level, d)
	}
}
