package builtin

import (
	"fmt"
	"strings"

	"github.com/paiban/dutyroster/pkg/scheduler/constraint"
)

// PostCoverageConstraint 非隔日岗位每天恰好一人
type PostCoverageConstraint struct {
	*BaseConstraint
	posts []int
}

// NewPostCoverageConstraint 创建岗位覆盖约束，posts 为非隔日岗位下标
func NewPostCoverageConstraint(posts []int) *PostCoverageConstraint {
	return &PostCoverageConstraint{
		BaseConstraint: NewBaseConstraint("岗位每日一人", constraint.TypePostCoverage,
			constraint.CategoryHard, 0, constraint.ScopeDay),
		posts: posts,
	}
}

// Demand 返回岗位人数要求
func (c *PostCoverageConstraint) Demand(ctx *constraint.Context, d, p int) (constraint.Demand, bool) {
	for _, q := range c.posts {
		if q == p {
			return constraint.Demand{Target: 1, Hard: true}, true
		}
	}
	return constraint.Demand{}, false
}

func (c *PostCoverageConstraint) checkDay(ctx *constraint.Context, d int) (bool, int) {
	for _, p := range c.posts {
		if ctx.PostCount(d, p) != 1 {
			return true, 0
		}
	}
	return false, 0
}

func (c *PostCoverageConstraint) describeDay(ctx *constraint.Context, d int) string {
	var parts []string
	for _, p := range c.posts {
		if n := ctx.PostCount(d, p); n != 1 {
			parts = append(parts, fmt.Sprintf("%s %d人", ctx.Posts[p].Name, n))
		}
	}
	return fmt.Sprintf("%s岗位人数不符: %s", constraint.DayLabel(d), strings.Join(parts, ", "))
}

// Evaluate 评估整个排班
func (c *PostCoverageConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	return c.evaluateDays(ctx, c)
}

// EvaluateDay 评估单日
func (c *PostCoverageConstraint) EvaluateDay(ctx *constraint.Context, d int) (bool, int) {
	violated, penalty := c.checkDay(ctx, d)
	return !violated, penalty
}

// AlternatingPostConstraint 隔日岗位：值守日1人，非值守日0人
// 严格模式为硬约束，放宽后按偏离人数计罚
type AlternatingPostConstraint struct {
	*BaseConstraint
	posts  []int
	active []bool
}

// NewAlternatingPostConstraint 创建隔日岗位约束
func NewAlternatingPostConstraint(posts []int, active []bool, hard bool, weight int) *AlternatingPostConstraint {
	return &AlternatingPostConstraint{
		BaseConstraint: NewBaseConstraint("隔日岗位", constraint.TypeAlternatingPost,
			category(hard), weight, constraint.ScopeDay),
		posts:  posts,
		active: active,
	}
}

// target 第 d 天的目标人数
func (c *AlternatingPostConstraint) target(d int) int {
	if c.active[d] {
		return 1
	}
	return 0
}

// Demand 返回岗位人数要求
func (c *AlternatingPostConstraint) Demand(ctx *constraint.Context, d, p int) (constraint.Demand, bool) {
	for _, q := range c.posts {
		if q == p {
			return constraint.Demand{Target: c.target(d), Hard: c.IsHard(), Penalty: c.Weight()}, true
		}
	}
	return constraint.Demand{}, false
}

func (c *AlternatingPostConstraint) checkDay(ctx *constraint.Context, d int) (bool, int) {
	violated := false
	penalty := 0
	for _, p := range c.posts {
		dev := ctx.PostCount(d, p) - c.target(d)
		if dev < 0 {
			dev = -dev
		}
		if dev > 0 {
			violated = true
			if !c.IsHard() {
				penalty += dev * c.Weight()
			}
		}
	}
	return violated, penalty
}

func (c *AlternatingPostConstraint) describeDay(ctx *constraint.Context, d int) string {
	var parts []string
	for _, p := range c.posts {
		parts = append(parts, fmt.Sprintf("%s %d人(应为%d人)", ctx.Posts[p].Name, ctx.PostCount(d, p), c.target(d)))
	}
	return fmt.Sprintf("%s隔日岗位人数不符: %s", constraint.DayLabel(d), strings.Join(parts, ", "))
}

// Evaluate 评估整个排班
func (c *AlternatingPostConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	return c.evaluateDays(ctx, c)
}

// EvaluateDay 评估单日
func (c *AlternatingPostConstraint) EvaluateDay(ctx *constraint.Context, d int) (bool, int) {
	violated, penalty := c.checkDay(ctx, d)
	return !violated, penalty
}
