// Package builtin 提供内置约束实现
package builtin

import (
	"github.com/paiban/dutyroster/pkg/scheduler/constraint"
)

// BaseConstraint 约束基类
type BaseConstraint struct {
	name     string
	typ      constraint.Type
	category constraint.Category
	weight   int
	scope    constraint.Scope
}

// NewBaseConstraint 创建基础约束
func NewBaseConstraint(name string, typ constraint.Type, cat constraint.Category, weight int, scope constraint.Scope) *BaseConstraint {
	return &BaseConstraint{
		name:     name,
		typ:      typ,
		category: cat,
		weight:   weight,
		scope:    scope,
	}
}

// Name 返回约束名称
func (c *BaseConstraint) Name() string { return c.name }

// Type 返回约束类型
func (c *BaseConstraint) Type() constraint.Type { return c.typ }

// Category 返回约束类别
func (c *BaseConstraint) Category() constraint.Category { return c.category }

// Weight 返回约束权重
func (c *BaseConstraint) Weight() int { return c.weight }

// Scope 返回作用范围
func (c *BaseConstraint) Scope() constraint.Scope { return c.scope }

// IsHard 是否为硬约束
func (c *BaseConstraint) IsHard() bool { return c.category == constraint.CategoryHard }

// CreateViolation 创建违反详情，e 或 d 为负数时不填写对应字段
func (c *BaseConstraint) CreateViolation(ctx *constraint.Context, e, d int, message string, penalty int) constraint.ViolationDetail {
	severity := "warning"
	if c.category == constraint.CategoryHard {
		severity = "error"
	}

	v := constraint.ViolationDetail{
		ConstraintType: c.typ,
		ConstraintName: c.name,
		Message:        message,
		Severity:       severity,
		Penalty:        penalty,
	}
	if e >= 0 {
		v.Employee = ctx.EmployeeName(e)
	}
	if d >= 0 {
		v.Day = d + 1
	}
	return v
}

// Evaluate 默认评估实现（子类需覆盖）
func (c *BaseConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	return true, 0, nil
}

// EvaluateCell 默认行评估实现
func (c *BaseConstraint) EvaluateCell(ctx *constraint.Context, e, d int) (bool, int) {
	return true, 0
}

// EvaluateDay 默认列评估实现
func (c *BaseConstraint) EvaluateDay(ctx *constraint.Context, d int) (bool, int) {
	return true, 0
}

// category 根据是否为硬约束返回类别
func category(hard bool) constraint.Category {
	if hard {
		return constraint.CategoryHard
	}
	return constraint.CategorySoft
}

// cellChecker 逐格检查的约束
// check 只读取第 d 天及之前的状态
type cellChecker interface {
	check(ctx *constraint.Context, e, d int) (violated bool, penalty int)
	describe(ctx *constraint.Context, e, d int) string
}

// evaluateRows 对所有格子执行逐格检查
func (c *BaseConstraint) evaluateRows(ctx *constraint.Context, r cellChecker) (bool, int, []constraint.ViolationDetail) {
	valid := true
	total := 0
	var details []constraint.ViolationDetail

	for e := range ctx.Employees {
		for d := 0; d < ctx.Days; d++ {
			violated, penalty := r.check(ctx, e, d)
			total += penalty
			if violated {
				valid = false
				details = append(details, c.CreateViolation(ctx, e, d, r.describe(ctx, e, d), penalty))
			}
		}
	}
	return valid, total, details
}

// dayChecker 逐日检查的约束
type dayChecker interface {
	checkDay(ctx *constraint.Context, d int) (violated bool, penalty int)
	describeDay(ctx *constraint.Context, d int) string
}

// evaluateDays 对所有日期执行逐日检查
func (c *BaseConstraint) evaluateDays(ctx *constraint.Context, r dayChecker) (bool, int, []constraint.ViolationDetail) {
	valid := true
	total := 0
	var details []constraint.ViolationDetail

	for d := 0; d < ctx.Days; d++ {
		violated, penalty := r.checkDay(ctx, d)
		total += penalty
		if violated {
			valid = false
			details = append(details, c.CreateViolation(ctx, -1, d, r.describeDay(ctx, d), penalty))
		}
	}
	return valid, total, details
}
