package builtin

import (
	"fmt"

	"github.com/paiban/dutyroster/pkg/model"
	"github.com/paiban/dutyroster/pkg/scheduler/constraint"
)

// SingleStateConstraint 每人每天恰好一个状态（岗位、休假或补休）
type SingleStateConstraint struct {
	*BaseConstraint
}

// NewSingleStateConstraint 创建单一状态约束
func NewSingleStateConstraint() *SingleStateConstraint {
	return &SingleStateConstraint{
		BaseConstraint: NewBaseConstraint("每日单一状态", constraint.TypeSingleState,
			constraint.CategoryHard, 0, constraint.ScopeEmployee),
	}
}

func (c *SingleStateConstraint) check(ctx *constraint.Context, e, d int) (bool, int) {
	s := ctx.State(e, d)
	switch {
	case s == model.StateLeave, s == model.StateRest:
		return false, 0
	case s >= 0 && int(s) < len(ctx.Posts):
		return false, 0
	}
	return true, 0
}

func (c *SingleStateConstraint) describe(ctx *constraint.Context, e, d int) string {
	return fmt.Sprintf("%s 在%s没有有效状态", ctx.EmployeeName(e), constraint.DayLabel(d))
}

// Evaluate 评估整个排班
func (c *SingleStateConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	return c.evaluateRows(ctx, c)
}

// EvaluateCell 评估单格
func (c *SingleStateConstraint) EvaluateCell(ctx *constraint.Context, e, d int) (bool, int) {
	violated, penalty := c.check(ctx, e, d)
	return !violated, penalty
}

// RestAfterOvernightConstraint 通宵类岗位次日必须补休
type RestAfterOvernightConstraint struct {
	*BaseConstraint
}

// NewRestAfterOvernightConstraint 创建通宵后补休约束
func NewRestAfterOvernightConstraint() *RestAfterOvernightConstraint {
	return &RestAfterOvernightConstraint{
		BaseConstraint: NewBaseConstraint("通宵后补休", constraint.TypeRestAfterOvernight,
			constraint.CategoryHard, 0, constraint.ScopeEmployee),
	}
}

func (c *RestAfterOvernightConstraint) check(ctx *constraint.Context, e, d int) (bool, int) {
	return d > 0 && ctx.WorksOvernight(e, d-1) && !ctx.IsRest(e, d), 0
}

func (c *RestAfterOvernightConstraint) describe(ctx *constraint.Context, e, d int) string {
	return fmt.Sprintf("%s 在%s通宵后%s未补休", ctx.EmployeeName(e), constraint.DayLabel(d-1), constraint.DayLabel(d))
}

// Evaluate 评估整个排班
func (c *RestAfterOvernightConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	return c.evaluateRows(ctx, c)
}

// EvaluateCell 评估单格
func (c *RestAfterOvernightConstraint) EvaluateCell(ctx *constraint.Context, e, d int) (bool, int) {
	violated, penalty := c.check(ctx, e, d)
	return !violated, penalty
}

// EarnedRestConstraint 补休必须紧跟通宵（首日除外）
type EarnedRestConstraint struct {
	*BaseConstraint
}

// NewEarnedRestConstraint 创建补休资格约束
func NewEarnedRestConstraint() *EarnedRestConstraint {
	return &EarnedRestConstraint{
		BaseConstraint: NewBaseConstraint("补休须有通宵", constraint.TypeEarnedRest,
			constraint.CategoryHard, 0, constraint.ScopeEmployee),
	}
}

func (c *EarnedRestConstraint) check(ctx *constraint.Context, e, d int) (bool, int) {
	return d > 0 && ctx.IsRest(e, d) && !ctx.WorksOvernight(e, d-1), 0
}

func (c *EarnedRestConstraint) describe(ctx *constraint.Context, e, d int) string {
	return fmt.Sprintf("%s 在%s补休，但前一天没有通宵", ctx.EmployeeName(e), constraint.DayLabel(d))
}

// Evaluate 评估整个排班
func (c *EarnedRestConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	return c.evaluateRows(ctx, c)
}

// EvaluateCell 评估单格
func (c *EarnedRestConstraint) EvaluateCell(ctx *constraint.Context, e, d int) (bool, int) {
	violated, penalty := c.check(ctx, e, d)
	return !violated, penalty
}

// NoConsecutiveRestConstraint 不允许连续两天补休
type NoConsecutiveRestConstraint struct {
	*BaseConstraint
}

// NewNoConsecutiveRestConstraint 创建禁止连续补休约束
func NewNoConsecutiveRestConstraint() *NoConsecutiveRestConstraint {
	return &NoConsecutiveRestConstraint{
		BaseConstraint: NewBaseConstraint("禁止连续补休", constraint.TypeNoConsecutiveRest,
			constraint.CategoryHard, 0, constraint.ScopeEmployee),
	}
}

func (c *NoConsecutiveRestConstraint) check(ctx *constraint.Context, e, d int) (bool, int) {
	return d > 0 && ctx.IsRest(e, d-1) && ctx.IsRest(e, d), 0
}

func (c *NoConsecutiveRestConstraint) describe(ctx *constraint.Context, e, d int) string {
	return fmt.Sprintf("%s 在%s和%s连续补休", ctx.EmployeeName(e), constraint.DayLabel(d-1), constraint.DayLabel(d))
}

// Evaluate 评估整个排班
func (c *NoConsecutiveRestConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	return c.evaluateRows(ctx, c)
}

// EvaluateCell 评估单格
func (c *NoConsecutiveRestConstraint) EvaluateCell(ctx *constraint.Context, e, d int) (bool, int) {
	violated, penalty := c.check(ctx, e, d)
	return !violated, penalty
}

// PostExclusionConstraint 优先级为禁止的岗位不得分配
type PostExclusionConstraint struct {
	*BaseConstraint
	forbidden [][]bool // [员工][岗位]
}

// NewPostExclusionConstraint 根据员工优先级创建岗位排除约束
func NewPostExclusionConstraint(employees []*model.Employee, posts []model.Post) *PostExclusionConstraint {
	forbidden := make([][]bool, len(employees))
	for e, emp := range employees {
		forbidden[e] = make([]bool, len(posts))
		for p, post := range posts {
			forbidden[e][p] = emp.PriorityFor(post.Name) == model.PriorityForbidden
		}
	}
	return &PostExclusionConstraint{
		BaseConstraint: NewBaseConstraint("禁止岗位", constraint.TypePostExclusion,
			constraint.CategoryHard, 0, constraint.ScopeEmployee),
		forbidden: forbidden,
	}
}

// Forbidden 员工 e 是否禁止担任岗位 p
func (c *PostExclusionConstraint) Forbidden(e, p int) bool {
	return c.forbidden[e][p]
}

func (c *PostExclusionConstraint) check(ctx *constraint.Context, e, d int) (bool, int) {
	s := ctx.State(e, d)
	return s.IsPost() && c.forbidden[e][s], 0
}

func (c *PostExclusionConstraint) describe(ctx *constraint.Context, e, d int) string {
	return fmt.Sprintf("%s 在%s被分配到禁止岗位 %s", ctx.EmployeeName(e), constraint.DayLabel(d),
		ctx.State(e, d).Label(ctx.Posts))
}

// Evaluate 评估整个排班
func (c *PostExclusionConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	return c.evaluateRows(ctx, c)
}

// EvaluateCell 评估单格
func (c *PostExclusionConstraint) EvaluateCell(ctx *constraint.Context, e, d int) (bool, int) {
	violated, penalty := c.check(ctx, e, d)
	return !violated, penalty
}
