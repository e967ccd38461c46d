// Package relax 逐级放宽约束直到找到可行排班
package relax

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/paiban/dutyroster/pkg/errors"
	"github.com/paiban/dutyroster/pkg/logger"
	"github.com/paiban/dutyroster/pkg/model"
	"github.com/paiban/dutyroster/pkg/scheduler/builder"
	"github.com/paiban/dutyroster/pkg/scheduler/constraint"
	"github.com/paiban/dutyroster/pkg/scheduler/profile"
	"github.com/paiban/dutyroster/pkg/scheduler/solver"
)

// Attempt 某一级别的求解记录
type Attempt struct {
	Level     int           `json:"level"`
	Status    solver.Status `json:"status"`
	Objective int           `json:"objective"`
	Nodes     int           `json:"nodes"`
	Duration  time.Duration `json:"duration"`
}

// Outcome 放宽流程的结果
type Outcome struct {
	Level     int                 `json:"level"` // 成功的级别，全部失败为 profile.ExhaustedLevel
	Exhausted bool                `json:"exhausted"`
	Profile   profile.Profile     `json:"profile"`
	Objective int                 `json:"objective"`
	Status    solver.Status       `json:"status"`
	Notes     []model.Note        `json:"notes"`
	Attempts  []Attempt           `json:"attempts"`
	Grid      *model.Grid         `json:"grid,omitempty"`
	Context   *constraint.Context `json:"-"` // 成功级别的上下文，排班表已填入
	Model     *builder.Model      `json:"-"`
}

// Controller 放宽控制器
// 每个级别重新构造模型，按级别升序依次求解，首个可行级别即停止
type Controller struct {
	builder *builder.Builder
	solver  solver.Solver
	timeout time.Duration
	logger  *logger.SchedulerLogger
}

// NewController 创建放宽控制器，timeout 为每个级别的求解时限
func NewController(s solver.Solver, timeout time.Duration) *Controller {
	return &Controller{
		builder: builder.New(),
		solver:  s,
		timeout: timeout,
		logger:  logger.NewComponentLogger("relax"),
	}
}

// Run 执行放宽流程
// 中间级别的无解与超时不作为错误返回，全部失败时返回 Exhausted 结果
func (c *Controller) Run(ctx context.Context, in *builder.Input) (*Outcome, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	ladder := profile.Ladder(in.Weights, in.HasCustomRules())
	out := &Outcome{}

	for i, p := range ladder {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeTimeout, "排班被取消")
		}

		m, err := c.builder.Build(in, p)
		if err != nil {
			return nil, err
		}
		out.Notes = append(out.Notes, m.Notes...)

		res, err := c.solver.Solve(ctx, m.Problem(), c.timeout)
		if err != nil {
			return nil, fmt.Errorf("级别%d求解失败: %w", p.Level, err)
		}

		out.Attempts = append(out.Attempts, Attempt{
			Level:     p.Level,
			Status:    res.Status,
			Objective: res.Objective,
			Nodes:     res.Nodes,
			Duration:  res.Duration,
		})
		c.logger.LevelAttempt(p.Level, string(res.Status), res.Duration, res.Objective)

		if res.Status.Solved() {
			sc := m.Context.Clone()
			sc.SetCells(res.Cells)

			out.Level = p.Level
			out.Profile = p
			out.Objective = res.Objective
			out.Status = res.Status
			out.Grid = sc.Grid()
			out.Context = sc
			out.Model = m
			return out, nil
		}

		if i+1 < len(ladder) {
			next := ladder[i+1]
			msg := fmt.Sprintf("级别%d %s，放宽至级别%d: %s", p.Level, statusLabel(res.Status), next.Level, next.Note)
			out.Notes = append(out.Notes, model.NewNote(p.Level, model.NoteRelaxation, msg))
			c.logger.Relaxed(next.Level, next.Note)
		}
	}

	out.Level = profile.ExhaustedLevel
	out.Exhausted = true
	out.Notes = append(out.Notes, model.NewNote(profile.ExhaustedLevel, model.NoteSolver,
		fmt.Sprintf("全部%d个放宽级别均无可行解", len(ladder))))
	return out, nil
}

// statusLabel 求解状态的中文描述
func statusLabel(s solver.Status) string {
	switch s {
	case solver.StatusInfeasible:
		return "无可行解"
	case solver.StatusTimeout:
		return "求解超时"
	case solver.StatusUnknown:
		return "搜索受限未找到解"
	default:
		return string(s)
	}
}

// Messages 返回结果说明的文本列表
func (o *Outcome) Messages() []string {
	out := make([]string, len(o.Notes))
	for i, n := range o.Notes {
		out[i] = n.Message
	}
	return out
}
