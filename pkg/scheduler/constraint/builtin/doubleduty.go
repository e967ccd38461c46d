package builtin

import (
	"fmt"

	"github.com/paiban/dutyroster/pkg/scheduler/constraint"
)

// IsDoubleDuty 员工 e 在第 d-2 天和第 d 天都出勤，白班岗位同样计入
func IsDoubleDuty(ctx *constraint.Context, e, d int) bool {
	return d >= 2 && ctx.Works(e, d-2) && ctx.Works(e, d)
}

// IsCrossMonthDoubleDuty 上月倒数第2天出勤且本月1日出勤
func IsCrossMonthDoubleDuty(ctx *constraint.Context, e int) bool {
	return ctx.TailWorked(e, -2) && ctx.Works(e, 0)
}

// DoubleDutyCount 员工 e 本月双通宵次数（含跨月）
func DoubleDutyCount(ctx *constraint.Context, e int) int {
	n := 0
	if IsCrossMonthDoubleDuty(ctx, e) {
		n++
	}
	for d := 2; d < ctx.Days; d++ {
		if IsDoubleDuty(ctx, e, d) {
			n++
		}
	}
	return n
}

// DoubleDutyConstraint 双通宵（隔一天再通宵）计罚
type DoubleDutyConstraint struct {
	*BaseConstraint
}

// NewDoubleDutyConstraint 创建双通宵约束
func NewDoubleDutyConstraint(weight int) *DoubleDutyConstraint {
	return &DoubleDutyConstraint{
		BaseConstraint: NewBaseConstraint("双通宵", constraint.TypeDoubleDuty,
			constraint.CategorySoft, weight, constraint.ScopeEmployee),
	}
}

func (c *DoubleDutyConstraint) check(ctx *constraint.Context, e, d int) (bool, int) {
	if IsDoubleDuty(ctx, e, d) {
		return true, c.Weight()
	}
	return false, 0
}

func (c *DoubleDutyConstraint) describe(ctx *constraint.Context, e, d int) string {
	return fmt.Sprintf("%s 在%s和%s双通宵", ctx.EmployeeName(e), constraint.DayLabel(d-2), constraint.DayLabel(d))
}

// Evaluate 评估整个排班
func (c *DoubleDutyConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	return c.evaluateRows(ctx, c)
}

// EvaluateCell 评估单格
func (c *DoubleDutyConstraint) EvaluateCell(ctx *constraint.Context, e, d int) (bool, int) {
	violated, penalty := c.check(ctx, e, d)
	return !violated, penalty
}

// FourInARowConstraint 禁止 d, d+2, d+4 三次出勤（连续双通宵）
type FourInARowConstraint struct {
	*BaseConstraint
}

// NewFourInARowConstraint 创建连续双通宵禁止约束
func NewFourInARowConstraint() *FourInARowConstraint {
	return &FourInARowConstraint{
		BaseConstraint: NewBaseConstraint("禁止连续双通宵", constraint.TypeFourInARow,
			constraint.CategoryHard, 0, constraint.ScopeEmployee),
	}
}

func (c *FourInARowConstraint) check(ctx *constraint.Context, e, d int) (bool, int) {
	return d >= 4 && ctx.Works(e, d-4) && ctx.Works(e, d-2) && ctx.Works(e, d), 0
}

func (c *FourInARowConstraint) describe(ctx *constraint.Context, e, d int) string {
	return fmt.Sprintf("%s 在%s、%s、%s隔日连续出勤", ctx.EmployeeName(e),
		constraint.DayLabel(d-4), constraint.DayLabel(d-2), constraint.DayLabel(d))
}

// Evaluate 评估整个排班
func (c *FourInARowConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	return c.evaluateRows(ctx, c)
}

// EvaluateCell 评估单格
func (c *FourInARowConstraint) EvaluateCell(ctx *constraint.Context, e, d int) (bool, int) {
	violated, penalty := c.check(ctx, e, d)
	return !violated, penalty
}

// DoubleDutyBalanceConstraint 各员工双通宵次数的极差计罚（机动人员除外）
type DoubleDutyBalanceConstraint struct {
	*BaseConstraint
}

// NewDoubleDutyBalanceConstraint 创建双通宵均衡约束
func NewDoubleDutyBalanceConstraint(weight int) *DoubleDutyBalanceConstraint {
	return &DoubleDutyBalanceConstraint{
		BaseConstraint: NewBaseConstraint("双通宵均衡", constraint.TypeDoubleDutyBalance,
			constraint.CategorySoft, weight, constraint.ScopeGlobal),
	}
}

// Evaluate 评估整个排班
func (c *DoubleDutyBalanceConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	lo, hi := spread(ctx, func(e int) int { return DoubleDutyCount(ctx, e) })
	if hi-lo == 0 {
		return true, 0, nil
	}
	penalty := (hi - lo) * c.Weight()
	return false, penalty, []constraint.ViolationDetail{
		c.CreateViolation(ctx, -1, -1, fmt.Sprintf("双通宵次数差距 %d (最少%d次，最多%d次)", hi-lo, lo, hi), penalty),
	}
}

// spread 返回非机动人员某项指标的最小值和最大值
func spread(ctx *constraint.Context, metric func(e int) int) (int, int) {
	lo, hi := 0, 0
	first := true
	for e := range ctx.Employees {
		if e == ctx.Backup {
			continue
		}
		v := metric(e)
		if first || v < lo {
			lo = v
		}
		if first || v > hi {
			hi = v
		}
		first = false
	}
	return lo, hi
}
