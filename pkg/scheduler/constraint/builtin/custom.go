package builtin

import (
	"fmt"

	"github.com/paiban/dutyroster/pkg/model"
	"github.com/paiban/dutyroster/pkg/scheduler/constraint"
)

// MaxConsecutiveDaysConstraint 个人规则：最多连续出勤天数
type MaxConsecutiveDaysConstraint struct {
	*BaseConstraint
	limits []int // [员工]，0 表示不限
}

// NewMaxConsecutiveDaysConstraint 创建最多连续出勤约束
func NewMaxConsecutiveDaysConstraint(employees []*model.Employee, hard bool, weight int) *MaxConsecutiveDaysConstraint {
	limits := make([]int, len(employees))
	for e, emp := range employees {
		if emp.Rules != nil {
			limits[e] = emp.Rules.MaxConsecutiveDays
		}
	}
	return &MaxConsecutiveDaysConstraint{
		BaseConstraint: NewBaseConstraint("最多连续出勤", constraint.TypeMaxConsecutiveDays,
			category(hard), weight, constraint.ScopeEmployee),
		limits: limits,
	}
}

func (c *MaxConsecutiveDaysConstraint) check(ctx *constraint.Context, e, d int) (bool, int) {
	k := c.limits[e]
	if k <= 0 || d < k {
		return false, 0
	}
	for i := d - k; i <= d; i++ {
		if !ctx.Works(e, i) {
			return false, 0
		}
	}
	if c.IsHard() {
		return true, 0
	}
	return true, c.Weight()
}

func (c *MaxConsecutiveDaysConstraint) describe(ctx *constraint.Context, e, d int) string {
	return fmt.Sprintf("%s 截至%s连续出勤超过%d天", ctx.EmployeeName(e), constraint.DayLabel(d), c.limits[e])
}

// Evaluate 评估整个排班
func (c *MaxConsecutiveDaysConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	return c.evaluateRows(ctx, c)
}

// EvaluateCell 评估单格
func (c *MaxConsecutiveDaysConstraint) EvaluateCell(ctx *constraint.Context, e, d int) (bool, int) {
	violated, penalty := c.check(ctx, e, d)
	return !violated, penalty
}

// ForbiddenDaysConstraint 个人规则：指定日期不出勤
type ForbiddenDaysConstraint struct {
	*BaseConstraint
	forbidden [][]bool // [员工][日]
}

// NewForbiddenDaysConstraint 创建禁止出勤日约束
func NewForbiddenDaysConstraint(employees []*model.Employee, days int, hard bool, weight int) *ForbiddenDaysConstraint {
	forbidden := make([][]bool, len(employees))
	for e, emp := range employees {
		forbidden[e] = make([]bool, days)
		if emp.Rules == nil {
			continue
		}
		for _, d := range emp.Rules.ForbiddenDays {
			if d >= 1 && d <= days {
				forbidden[e][d-1] = true
			}
		}
	}
	return &ForbiddenDaysConstraint{
		BaseConstraint: NewBaseConstraint("禁止出勤日", constraint.TypeForbiddenDays,
			category(hard), weight, constraint.ScopeEmployee),
		forbidden: forbidden,
	}
}

func (c *ForbiddenDaysConstraint) check(ctx *constraint.Context, e, d int) (bool, int) {
	if c.forbidden[e][d] && ctx.Works(e, d) {
		if c.IsHard() {
			return true, 0
		}
		return true, c.Weight()
	}
	return false, 0
}

func (c *ForbiddenDaysConstraint) describe(ctx *constraint.Context, e, d int) string {
	return fmt.Sprintf("%s 在禁止出勤日%s出勤", ctx.EmployeeName(e), constraint.DayLabel(d))
}

// Evaluate 评估整个排班
func (c *ForbiddenDaysConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	return c.evaluateRows(ctx, c)
}

// EvaluateCell 评估单格
func (c *ForbiddenDaysConstraint) EvaluateCell(ctx *constraint.Context, e, d int) (bool, int) {
	violated, penalty := c.check(ctx, e, d)
	return !violated, penalty
}

// RestAfterPostConstraint 个人规则：指定岗位次日必须补休
type RestAfterPostConstraint struct {
	*BaseConstraint
	posts [][]bool // [员工][岗位]
}

// NewRestAfterPostConstraint 创建指定岗位后补休约束
func NewRestAfterPostConstraint(employees []*model.Employee, posts []model.Post, hard bool, weight int) *RestAfterPostConstraint {
	table := make([][]bool, len(employees))
	for e, emp := range employees {
		table[e] = make([]bool, len(posts))
		if emp.Rules == nil {
			continue
		}
		for _, name := range emp.Rules.RestAfterPosts {
			if p := model.PostIndex(posts, name); p >= 0 {
				table[e][p] = true
			}
		}
	}
	return &RestAfterPostConstraint{
		BaseConstraint: NewBaseConstraint("指定岗位后补休", constraint.TypeRestAfterPost,
			category(hard), weight, constraint.ScopeEmployee),
		posts: table,
	}
}

func (c *RestAfterPostConstraint) check(ctx *constraint.Context, e, d int) (bool, int) {
	if d == 0 {
		return false, 0
	}
	prev := ctx.State(e, d-1)
	if !prev.IsPost() || !c.posts[e][prev] || ctx.IsRest(e, d) {
		return false, 0
	}
	if c.IsHard() {
		return true, 0
	}
	return true, c.Weight()
}

func (c *RestAfterPostConstraint) describe(ctx *constraint.Context, e, d int) string {
	return fmt.Sprintf("%s 在%s担任 %s 后次日未补休", ctx.EmployeeName(e), constraint.DayLabel(d-1),
		ctx.State(e, d-1).Label(ctx.Posts))
}

// Evaluate 评估整个排班
func (c *RestAfterPostConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	return c.evaluateRows(ctx, c)
}

// EvaluateCell 评估单格
func (c *RestAfterPostConstraint) EvaluateCell(ctx *constraint.Context, e, d int) (bool, int) {
	violated, penalty := c.check(ctx, e, d)
	return !violated, penalty
}
