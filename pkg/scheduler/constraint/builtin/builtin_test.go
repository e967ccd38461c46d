package builtin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiban/dutyroster/pkg/model"
	"github.com/paiban/dutyroster/pkg/scheduler/constraint"
)

const (
	postA model.State = 0 // 通宵
	postB model.State = 1 // 白班
	L                 = model.StateLeave
	R                 = model.StateRest
)

func testPosts() []model.Post {
	return []model.Post{
		{Name: "A岗", Category: model.CategoryOvernight, Hours: 16},
		{Name: "B岗", Category: model.CategoryDay, Hours: 8},
	}
}

func newContext(t *testing.T, rows ...[]model.State) *constraint.Context {
	t.Helper()
	names := []string{"甲", "乙", "丙", "机动"}
	employees := make([]*model.Employee, len(rows))
	for i := range rows {
		employees[i] = model.NewEmployee(names[i])
	}
	ctx := constraint.NewContext(2024, time.June, len(rows[0]), employees, testPosts())
	ctx.SetCells(rows)
	return ctx
}

func TestSingleState(t *testing.T) {
	ctx := newContext(t, []model.State{postA, R, L})
	c := NewSingleStateConstraint()
	valid, _, _ := c.Evaluate(ctx)
	assert.True(t, valid)

	ctx.Set(0, 2, model.StateUnset)
	valid, _, details := c.Evaluate(ctx)
	assert.False(t, valid)
	require.Len(t, details, 1)
	assert.Equal(t, 3, details[0].Day)
	assert.Equal(t, "甲", details[0].Employee)
}

func TestRestAfterOvernight(t *testing.T) {
	c := NewRestAfterOvernightConstraint()

	ok := newContext(t, []model.State{postA, R, postB, L})
	valid, _, _ := c.Evaluate(ok)
	assert.True(t, valid)

	bad := newContext(t, []model.State{postA, L, postB, L})
	valid, _, details := c.Evaluate(bad)
	assert.False(t, valid)
	require.Len(t, details, 1)
	assert.Equal(t, 2, details[0].Day)

	// 白班不触发补休
	day := newContext(t, []model.State{postB, postB, L})
	valid, _, _ = c.Evaluate(day)
	assert.True(t, valid)
}

func TestEarnedRest(t *testing.T) {
	c := NewEarnedRestConstraint()

	// 首日补休不要求前一天通宵
	ctx := newContext(t, []model.State{R, postB, R})
	valid, _, details := c.Evaluate(ctx)
	assert.False(t, valid)
	require.Len(t, details, 1)
	assert.Equal(t, 3, details[0].Day)

	ok, _ := c.EvaluateCell(ctx, 0, 0)
	assert.True(t, ok)
}

func TestNoConsecutiveRest(t *testing.T) {
	c := NewNoConsecutiveRestConstraint()
	ctx := newContext(t, []model.State{postA, R, R})
	ok, _ := c.EvaluateCell(ctx, 0, 2)
	assert.False(t, ok)
	ok, _ = c.EvaluateCell(ctx, 0, 1)
	assert.True(t, ok)
}

func TestPostExclusion(t *testing.T) {
	ctx := newContext(t, []model.State{postA, R}, []model.State{postB, postB})
	ctx.Employees[1].Priorities = map[string]model.Priority{"B岗": model.PriorityForbidden}

	c := NewPostExclusionConstraint(ctx.Employees, ctx.Posts)
	assert.True(t, c.Forbidden(1, 1))
	assert.False(t, c.Forbidden(0, 1))

	valid, _, details := c.Evaluate(ctx)
	assert.False(t, valid)
	assert.Len(t, details, 2)
}

func TestPostCoverage(t *testing.T) {
	ctx := newContext(t,
		[]model.State{postA, R},
		[]model.State{postB, postA},
	)
	c := NewPostCoverageConstraint([]int{0, 1})

	ok, _ := c.EvaluateDay(ctx, 0)
	assert.True(t, ok)
	ok, _ = c.EvaluateDay(ctx, 1)
	assert.False(t, ok)

	demand, found := c.Demand(ctx, 0, 1)
	require.True(t, found)
	assert.Equal(t, constraint.Demand{Target: 1, Hard: true}, demand)
}

func TestAlternatingPost(t *testing.T) {
	active := []bool{true, false, true}
	ctx := newContext(t,
		[]model.State{postB, L, postB},
		[]model.State{L, postB, L},
	)

	hard := NewAlternatingPostConstraint([]int{1}, active, true, 0)
	valid, penalty, details := hard.Evaluate(ctx)
	assert.False(t, valid)
	assert.Equal(t, 0, penalty)
	require.Len(t, details, 1)
	assert.Equal(t, 2, details[0].Day)

	soft := NewAlternatingPostConstraint([]int{1}, active, false, 1000)
	_, penalty, _ = soft.Evaluate(ctx)
	assert.Equal(t, 1000, penalty)

	demand, found := soft.Demand(ctx, 1, 1)
	require.True(t, found)
	assert.Equal(t, 0, demand.Target)
	assert.False(t, demand.Hard)
	assert.Equal(t, 1000, demand.Penalty)
}

func TestCrossMonth(t *testing.T) {
	ctx := newContext(t, []model.State{postB, L}, []model.State{postA, R})
	ctx.Tail = model.Tail{
		"甲": {-1: true, -3: true},
		"乙": {-2: true},
	}

	rest := NewCrossMonthRestConstraint()
	ok, _ := rest.EvaluateCell(ctx, 0, 0)
	assert.False(t, ok)
	ok, _ = rest.EvaluateCell(ctx, 1, 0)
	assert.True(t, ok)

	triple := NewTripleDutyConstraint()
	ok, _ = triple.EvaluateCell(ctx, 0, 0)
	assert.False(t, ok)

	hard := NewCrossMonthDoubleDutyConstraint(true, 20)
	ok, penalty := hard.EvaluateCell(ctx, 1, 0)
	assert.False(t, ok)
	assert.Equal(t, 0, penalty)

	soft := NewCrossMonthDoubleDutyConstraint(false, 20)
	_, penalty = soft.EvaluateCell(ctx, 1, 0)
	assert.Equal(t, 20, penalty)
}

func TestDoubleDuty(t *testing.T) {
	ctx := newContext(t,
		[]model.State{postA, R, postA, R, postA, R},
		[]model.State{L, postA, R, L, L, L},
		[]model.State{postB, L, L, postA, R, L},
	)
	ctx.Tail = model.Tail{"乙": {-2: true}}

	assert.True(t, IsDoubleDuty(ctx, 0, 2))
	assert.False(t, IsDoubleDuty(ctx, 0, 1))
	assert.Equal(t, 2, DoubleDutyCount(ctx, 0))
	assert.False(t, IsCrossMonthDoubleDuty(ctx, 1))

	_, penalty, _ := NewDoubleDutyConstraint(15).Evaluate(ctx)
	assert.Equal(t, 30, penalty)

	valid, _, details := NewFourInARowConstraint().Evaluate(ctx)
	assert.False(t, valid)
	require.Len(t, details, 1)
	assert.Equal(t, 5, details[0].Day)
}

func TestDoubleDuty_DayPosts(t *testing.T) {
	ctx := newContext(t,
		[]model.State{postB, L, postB, L, postB},
		[]model.State{postA, R, postB, L, L},
		[]model.State{postA, R, L, L, L},
	)

	assert.True(t, IsDoubleDuty(ctx, 0, 2), "白班隔日出勤同样计入")
	assert.True(t, IsDoubleDuty(ctx, 1, 2), "通宵与白班混合")
	assert.False(t, IsDoubleDuty(ctx, 2, 2))
	assert.Equal(t, 2, DoubleDutyCount(ctx, 0))
	assert.Equal(t, 1, DoubleDutyCount(ctx, 1))

	_, penalty, _ := NewDoubleDutyConstraint(15).Evaluate(ctx)
	assert.Equal(t, 45, penalty)

	valid, _, details := NewFourInARowConstraint().Evaluate(ctx)
	assert.False(t, valid)
	require.Len(t, details, 1)
	assert.Equal(t, "甲", details[0].Employee)
	assert.Equal(t, 5, details[0].Day)

	ok, _ := NewFourInARowConstraint().EvaluateCell(ctx, 0, 4)
	assert.False(t, ok)
}

func TestCrossMonthDoubleDuty_DayPost(t *testing.T) {
	ctx := newContext(t,
		[]model.State{postB, L, L},
		[]model.State{L, postB, L},
	)
	ctx.Tail = model.Tail{"甲": {-2: true}, "乙": {-2: true}}

	assert.True(t, IsCrossMonthDoubleDuty(ctx, 0))
	assert.False(t, IsCrossMonthDoubleDuty(ctx, 1))
	assert.Equal(t, 1, DoubleDutyCount(ctx, 0))
	assert.Equal(t, 0, DoubleDutyCount(ctx, 1))
}

func TestCrossMonthDoubleDutyCount(t *testing.T) {
	ctx := newContext(t, []model.State{postA, R, L})
	ctx.Tail = model.Tail{"甲": {-2: true}}
	assert.True(t, IsCrossMonthDoubleDuty(ctx, 0))
	assert.Equal(t, 1, DoubleDutyCount(ctx, 0))
}

func TestBalanceExcludesBackup(t *testing.T) {
	ctx := newContext(t,
		[]model.State{postA, R, postA, R, postA},
		[]model.State{L, postA, R, L, L},
		[]model.State{L, L, L, postA, R},
		[]model.State{postB, postB, postB, postB, postB},
	)
	require.Equal(t, 3, ctx.Backup)

	_, penalty, details := NewDoubleDutyBalanceConstraint(30).Evaluate(ctx)
	assert.Equal(t, 60, penalty)
	assert.Len(t, details, 1)

	// 甲 3天, 乙 1天, 丙 1天
	_, penalty, _ = NewDutyLoadBalanceConstraint(40).Evaluate(ctx)
	assert.Equal(t, 80, penalty)

	_, penalty, _ = NewBackupUsageConstraint(10).Evaluate(ctx)
	assert.Equal(t, 50, penalty)
}

func TestLeaveRequest(t *testing.T) {
	ctx := newContext(t, []model.State{postB, L, R})
	requested := [][]bool{{true, true, true}}
	_, penalty, details := NewLeaveRequestConstraint(requested, 50).Evaluate(ctx)
	assert.Equal(t, 50, penalty)
	require.Len(t, details, 1)
	assert.Equal(t, 1, details[0].Day)
}

func TestPostPreference(t *testing.T) {
	ctx := newContext(t, []model.State{postA, R, postB})
	wishes := [][][]Wish{{
		{{Post: 0, Direction: model.DirectionDesire}},
		nil,
		{{Post: 1, Direction: model.DirectionAvoid}},
	}}
	c := NewPostPreferenceConstraint(wishes, 5)
	valid, penalty, details := c.Evaluate(ctx)
	assert.False(t, valid)
	assert.Equal(t, 0, penalty)
	assert.Len(t, details, 1)
	assert.Equal(t, -5, c.LowerBound(ctx))
}

func TestPostPriority(t *testing.T) {
	ctx := newContext(t, []model.State{postA, R, postB})
	ctx.Employees[0].Priorities = map[string]model.Priority{
		"A岗": model.PriorityLow,
		"B岗": model.PriorityHighest,
	}
	table := map[model.Priority]int{
		model.PriorityLow: 25, model.PriorityMedium: 10, model.PriorityElevated: 5,
		model.PriorityHigh: 0, model.PriorityHighest: -5,
	}
	c := NewPostPriorityConstraint(ctx.Employees, ctx.Posts, table)
	_, penalty, details := c.Evaluate(ctx)
	assert.Equal(t, 20, penalty)
	assert.Len(t, details, 1)
	assert.Equal(t, -15, c.LowerBound(ctx))
}

func TestCustomRules(t *testing.T) {
	ctx := newContext(t, []model.State{postB, postB, postB, postA, R})
	ctx.Employees[0].Rules = &model.CustomRules{
		MaxConsecutiveDays: 2,
		ForbiddenDays:      []int{2},
		RestAfterPosts:     []string{"B岗"},
	}

	hard := NewMaxConsecutiveDaysConstraint(ctx.Employees, true, 0)
	valid, _, details := hard.Evaluate(ctx)
	assert.False(t, valid)
	assert.Len(t, details, 2)

	soft := NewMaxConsecutiveDaysConstraint(ctx.Employees, false, 30)
	_, penalty, _ := soft.Evaluate(ctx)
	assert.Equal(t, 60, penalty)

	forbidden := NewForbiddenDaysConstraint(ctx.Employees, ctx.Days, true, 0)
	valid, _, details = forbidden.Evaluate(ctx)
	assert.False(t, valid)
	require.Len(t, details, 1)
	assert.Equal(t, 2, details[0].Day)

	restAfter := NewRestAfterPostConstraint(ctx.Employees, ctx.Posts, false, 3)
	_, penalty, details = restAfter.Evaluate(ctx)
	assert.Equal(t, 9, penalty)
	assert.Len(t, details, 3)
}

func TestRegisterStructural(t *testing.T) {
	employees := []*model.Employee{model.NewEmployee("甲"), model.NewEmployee("乙")}
	posts := append(testPosts(), model.Post{Name: "C岗", Category: model.CategoryDay, Hours: 8, Alternating: true})

	manager := constraint.NewManager()
	RegisterStructural(manager, employees, posts)
	RegisterCrossMonth(manager, true, 20)
	RegisterCustomRules(manager, employees, 30, posts, true, 0)

	assert.Equal(t, 12, manager.Count())
	assert.Len(t, manager.GetByCategory(constraint.CategorySoft), 0)
	assert.Equal(t, []int{2}, AlternatingPosts(posts))

	ctx := constraint.NewContext(2024, time.June, 30, employees, posts)
	_, found := manager.Demand(ctx, 0, 2)
	assert.False(t, found)
	demand, found := manager.Demand(ctx, 0, 1)
	assert.True(t, found)
	assert.Equal(t, 1, demand.Target)
}
