package builtin

import (
	"fmt"

	"github.com/paiban/dutyroster/pkg/scheduler/constraint"
)

// DutyLoadBalanceConstraint 出勤天数均衡：各员工出勤天数极差计罚（机动人员除外）
type DutyLoadBalanceConstraint struct {
	*BaseConstraint
}

// NewDutyLoadBalanceConstraint 创建出勤均衡约束
func NewDutyLoadBalanceConstraint(weight int) *DutyLoadBalanceConstraint {
	return &DutyLoadBalanceConstraint{
		BaseConstraint: NewBaseConstraint("出勤天数均衡", constraint.TypeDutyLoadBalance,
			constraint.CategorySoft, weight, constraint.ScopeGlobal),
	}
}

// Evaluate 评估整个排班
func (c *DutyLoadBalanceConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	lo, hi := spread(ctx, ctx.DutyDays)
	if hi-lo == 0 {
		return true, 0, nil
	}
	penalty := (hi - lo) * c.Weight()
	return false, penalty, []constraint.ViolationDetail{
		c.CreateViolation(ctx, -1, -1, fmt.Sprintf("出勤天数差距 %d (最少%d天，最多%d天)", hi-lo, lo, hi), penalty),
	}
}
