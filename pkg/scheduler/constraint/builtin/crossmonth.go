package builtin

import (
	"fmt"

	"github.com/paiban/dutyroster/pkg/scheduler/constraint"
)

// CrossMonthRestConstraint 上月最后一天出勤，本月1日必须补休
type CrossMonthRestConstraint struct {
	*BaseConstraint
}

// NewCrossMonthRestConstraint 创建跨月补休约束
func NewCrossMonthRestConstraint() *CrossMonthRestConstraint {
	return &CrossMonthRestConstraint{
		BaseConstraint: NewBaseConstraint("跨月强制补休", constraint.TypeCrossMonthRest,
			constraint.CategoryHard, 0, constraint.ScopeEmployee),
	}
}

func (c *CrossMonthRestConstraint) check(ctx *constraint.Context, e, d int) (bool, int) {
	return d == 0 && ctx.TailWorked(e, -1) && !ctx.IsRest(e, 0), 0
}

func (c *CrossMonthRestConstraint) describe(ctx *constraint.Context, e, d int) string {
	return fmt.Sprintf("%s 上月最后一天出勤，1日未补休", ctx.EmployeeName(e))
}

// Evaluate 评估整个排班
func (c *CrossMonthRestConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	return c.evaluateRows(ctx, c)
}

// EvaluateCell 评估单格
func (c *CrossMonthRestConstraint) EvaluateCell(ctx *constraint.Context, e, d int) (bool, int) {
	violated, penalty := c.check(ctx, e, d)
	return !violated, penalty
}

// TripleDutyConstraint 上月倒数第3天与最后一天均出勤时，1日禁止出勤
// 任何放宽级别都不解除
type TripleDutyConstraint struct {
	*BaseConstraint
}

// NewTripleDutyConstraint 创建三通宵防止约束
func NewTripleDutyConstraint() *TripleDutyConstraint {
	return &TripleDutyConstraint{
		BaseConstraint: NewBaseConstraint("三通宵防止", constraint.TypeTripleDuty,
			constraint.CategoryHard, 0, constraint.ScopeEmployee),
	}
}

func (c *TripleDutyConstraint) check(ctx *constraint.Context, e, d int) (bool, int) {
	return d == 0 && ctx.TailWorked(e, -3) && ctx.TailWorked(e, -1) && ctx.Works(e, 0), 0
}

func (c *TripleDutyConstraint) describe(ctx *constraint.Context, e, d int) string {
	return fmt.Sprintf("%s 1日出勤将形成三通宵", ctx.EmployeeName(e))
}

// Evaluate 评估整个排班
func (c *TripleDutyConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	return c.evaluateRows(ctx, c)
}

// EvaluateCell 评估单格
func (c *TripleDutyConstraint) EvaluateCell(ctx *constraint.Context, e, d int) (bool, int) {
	violated, penalty := c.check(ctx, e, d)
	return !violated, penalty
}

// CrossMonthDoubleDutyConstraint 上月倒数第2天出勤时，1日出勤构成跨月双通宵
// 严格模式禁止，放宽后计罚
type CrossMonthDoubleDutyConstraint struct {
	*BaseConstraint
}

// NewCrossMonthDoubleDutyConstraint 创建跨月双通宵约束
func NewCrossMonthDoubleDutyConstraint(hard bool, weight int) *CrossMonthDoubleDutyConstraint {
	return &CrossMonthDoubleDutyConstraint{
		BaseConstraint: NewBaseConstraint("跨月双通宵", constraint.TypeCrossMonthDoubleDuty,
			category(hard), weight, constraint.ScopeEmployee),
	}
}

func (c *CrossMonthDoubleDutyConstraint) check(ctx *constraint.Context, e, d int) (bool, int) {
	if d == 0 && ctx.TailWorked(e, -2) && ctx.Works(e, 0) {
		if c.IsHard() {
			return true, 0
		}
		return true, c.Weight()
	}
	return false, 0
}

func (c *CrossMonthDoubleDutyConstraint) describe(ctx *constraint.Context, e, d int) string {
	return fmt.Sprintf("%s 上月倒数第2天出勤，1日再出勤构成跨月双通宵", ctx.EmployeeName(e))
}

// Evaluate 评估整个排班
func (c *CrossMonthDoubleDutyConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	return c.evaluateRows(ctx, c)
}

// EvaluateCell 评估单格
func (c *CrossMonthDoubleDutyConstraint) EvaluateCell(ctx *constraint.Context, e, d int) (bool, int) {
	violated, penalty := c.check(ctx, e, d)
	return !violated, penalty
}
