package builtin

import (
	"fmt"

	"github.com/paiban/dutyroster/pkg/model"
	"github.com/paiban/dutyroster/pkg/scheduler/constraint"
)

// BackupUsageConstraint 机动人员每出勤一天计罚
type BackupUsageConstraint struct {
	*BaseConstraint
}

// NewBackupUsageConstraint 创建机动人员使用约束
func NewBackupUsageConstraint(weight int) *BackupUsageConstraint {
	return &BackupUsageConstraint{
		BaseConstraint: NewBaseConstraint("机动人员使用", constraint.TypeBackupUsage,
			constraint.CategorySoft, weight, constraint.ScopeEmployee),
	}
}

func (c *BackupUsageConstraint) check(ctx *constraint.Context, e, d int) (bool, int) {
	if e == ctx.Backup && ctx.Works(e, d) {
		return true, c.Weight()
	}
	return false, 0
}

func (c *BackupUsageConstraint) describe(ctx *constraint.Context, e, d int) string {
	return fmt.Sprintf("机动人员 %s 在%s出勤", ctx.EmployeeName(e), constraint.DayLabel(d))
}

// Evaluate 评估整个排班
func (c *BackupUsageConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	return c.evaluateRows(ctx, c)
}

// EvaluateCell 评估单格
func (c *BackupUsageConstraint) EvaluateCell(ctx *constraint.Context, e, d int) (bool, int) {
	violated, penalty := c.check(ctx, e, d)
	return !violated, penalty
}

// LeaveRequestConstraint 休假申请当天出勤计罚
type LeaveRequestConstraint struct {
	*BaseConstraint
	requested [][]bool // [员工][日]
}

// NewLeaveRequestConstraint 创建休假申请约束
func NewLeaveRequestConstraint(requested [][]bool, weight int) *LeaveRequestConstraint {
	return &LeaveRequestConstraint{
		BaseConstraint: NewBaseConstraint("休假申请", constraint.TypeLeaveRequest,
			constraint.CategorySoft, weight, constraint.ScopeEmployee),
		requested: requested,
	}
}

func (c *LeaveRequestConstraint) check(ctx *constraint.Context, e, d int) (bool, int) {
	if c.requested[e][d] && ctx.Works(e, d) {
		return true, c.Weight()
	}
	return false, 0
}

func (c *LeaveRequestConstraint) describe(ctx *constraint.Context, e, d int) string {
	return fmt.Sprintf("%s 申请%s休假但被安排出勤", ctx.EmployeeName(e), constraint.DayLabel(d))
}

// Evaluate 评估整个排班
func (c *LeaveRequestConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	return c.evaluateRows(ctx, c)
}

// EvaluateCell 评估单格
func (c *LeaveRequestConstraint) EvaluateCell(ctx *constraint.Context, e, d int) (bool, int) {
	violated, penalty := c.check(ctx, e, d)
	return !violated, penalty
}

// Wish 某员工某日的岗位偏好
type Wish struct {
	Post      int
	Direction model.Direction
}

// PostPreferenceConstraint 岗位偏好：满足希望给予奖励，违反回避计罚
type PostPreferenceConstraint struct {
	*BaseConstraint
	wishes [][][]Wish // [员工][日]
}

// NewPostPreferenceConstraint 创建岗位偏好约束
func NewPostPreferenceConstraint(wishes [][][]Wish, weight int) *PostPreferenceConstraint {
	return &PostPreferenceConstraint{
		BaseConstraint: NewBaseConstraint("岗位偏好", constraint.TypePostPreference,
			constraint.CategorySoft, weight, constraint.ScopeEmployee),
		wishes: wishes,
	}
}

func (c *PostPreferenceConstraint) check(ctx *constraint.Context, e, d int) (bool, int) {
	s := ctx.State(e, d)
	violated := false
	penalty := 0
	for _, w := range c.wishes[e][d] {
		if s != model.State(w.Post) {
			continue
		}
		if w.Direction == model.DirectionDesire {
			penalty -= c.Weight()
		} else {
			violated = true
			penalty += c.Weight()
		}
	}
	return violated, penalty
}

func (c *PostPreferenceConstraint) describe(ctx *constraint.Context, e, d int) string {
	return fmt.Sprintf("%s 希望%s回避 %s 但被安排", ctx.EmployeeName(e), constraint.DayLabel(d),
		ctx.State(e, d).Label(ctx.Posts))
}

// Evaluate 评估整个排班
func (c *PostPreferenceConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	return c.evaluateRows(ctx, c)
}

// EvaluateCell 评估单格
func (c *PostPreferenceConstraint) EvaluateCell(ctx *constraint.Context, e, d int) (bool, int) {
	violated, penalty := c.check(ctx, e, d)
	return !violated, penalty
}

// LowerBound 所有希望都被满足时的奖励
func (c *PostPreferenceConstraint) LowerBound(ctx *constraint.Context) int {
	bound := 0
	for e := range c.wishes {
		for d := range c.wishes[e] {
			for _, w := range c.wishes[e][d] {
				if w.Direction == model.DirectionDesire {
					bound -= c.Weight()
					break
				}
			}
		}
	}
	return bound
}

// PostPriorityConstraint 按员工岗位优先级查表计罚（负值为奖励）
type PostPriorityConstraint struct {
	*BaseConstraint
	penalty [][]int // [员工][岗位]
}

// NewPostPriorityConstraint 创建岗位优先级约束，table 为优先级到惩罚的映射
func NewPostPriorityConstraint(employees []*model.Employee, posts []model.Post, table map[model.Priority]int) *PostPriorityConstraint {
	penalty := make([][]int, len(employees))
	for e, emp := range employees {
		penalty[e] = make([]int, len(posts))
		for p, post := range posts {
			prio := emp.PriorityFor(post.Name)
			if prio == model.PriorityForbidden {
				continue
			}
			penalty[e][p] = table[prio]
		}
	}
	return &PostPriorityConstraint{
		BaseConstraint: NewBaseConstraint("岗位优先级", constraint.TypePostPriority,
			constraint.CategorySoft, 1, constraint.ScopeEmployee),
		penalty: penalty,
	}
}

func (c *PostPriorityConstraint) check(ctx *constraint.Context, e, d int) (bool, int) {
	s := ctx.State(e, d)
	if !s.IsPost() {
		return false, 0
	}
	p := c.penalty[e][s]
	return p > 0, p
}

func (c *PostPriorityConstraint) describe(ctx *constraint.Context, e, d int) string {
	return fmt.Sprintf("%s 在%s担任低优先级岗位 %s", ctx.EmployeeName(e), constraint.DayLabel(d),
		ctx.State(e, d).Label(ctx.Posts))
}

// Evaluate 评估整个排班
func (c *PostPriorityConstraint) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	return c.evaluateRows(ctx, c)
}

// EvaluateCell 评估单格
func (c *PostPriorityConstraint) EvaluateCell(ctx *constraint.Context, e, d int) (bool, int) {
	violated, penalty := c.check(ctx, e, d)
	return !violated, penalty
}

// LowerBound 每人每天都取到最大奖励时的下界
func (c *PostPriorityConstraint) LowerBound(ctx *constraint.Context) int {
	bound := 0
	for e := range c.penalty {
		best := 0
		for _, p := range c.penalty[e] {
			if p < best {
				best = p
			}
		}
		bound += best * ctx.Days
	}
	return bound
}
