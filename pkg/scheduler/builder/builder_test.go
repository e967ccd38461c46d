package builder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/paiban/dutyroster/pkg/errors"
	"github.com/paiban/dutyroster/pkg/model"
	"github.com/paiban/dutyroster/pkg/scheduler/constraint"
	"github.com/paiban/dutyroster/pkg/scheduler/profile"
	"github.com/paiban/dutyroster/pkg/scheduler/solver"
)

func newInput() *Input {
	names := []string{"甲", "乙", "丙", "丁", "机动"}
	employees := make([]*model.Employee, len(names))
	for i, n := range names {
		employees[i] = model.NewEmployee(n)
	}
	return &Input{
		Year:      2024,
		Month:     time.June,
		Employees: employees,
		Posts: []model.Post{
			{Name: "值班", Category: model.CategoryOvernight, Hours: 16},
			{Name: "门岗", Category: model.CategoryDay, Hours: 8, Alternating: true},
		},
		Weights: profile.DefaultWeights(),
	}
}

func TestInput_Validate(t *testing.T) {
	in := newInput()
	require.NoError(t, in.Validate())

	few := newInput()
	few.Employees = few.Employees[:1]
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(few.Validate()))

	noPosts := newInput()
	noPosts.Posts = nil
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(noPosts.Validate()))

	dup := newInput()
	dup.Employees[1].Name = "甲"
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(dup.Validate()))

	month := newInput()
	month.Month = 13
	assert.Equal(t, apperrors.CodeInvalidMonth, apperrors.GetCode(month.Validate()))
}

func TestInput_Helpers(t *testing.T) {
	in := newInput()
	assert.Equal(t, 30, in.Days())
	assert.Equal(t, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), in.Base())
	assert.Equal(t, 4, in.EmployeeIndex("机动"))
	assert.Equal(t, -1, in.EmployeeIndex("无名"))
	assert.False(t, in.HasCustomRules())

	in.Employees[0].Rules = &model.CustomRules{MaxConsecutiveDays: 3}
	assert.True(t, in.HasCustomRules())
}

func TestSacrifice(t *testing.T) {
	employees := []*model.Employee{model.NewEmployee("甲"), model.NewEmployee("乙")}
	leaves := []model.LeaveRequest{
		{Employee: "甲", Day: 9},
		{Employee: "乙", Day: 1},
		{Employee: "甲", Day: 5},
		{Employee: "甲", Day: 3},
	}

	kept, removed := Sacrifice(employees, leaves, 2)
	require.Len(t, removed, 2)
	assert.Len(t, kept, 2)
	for _, r := range removed {
		assert.Equal(t, "甲", r.Employee)
		assert.Contains(t, []int{3, 5}, r.Day)
	}

	kept, removed = Sacrifice(employees, leaves, 0)
	assert.Nil(t, removed)
	assert.Len(t, kept, 4)
}

func TestSacrifice_TieUsesRosterOrder(t *testing.T) {
	employees := []*model.Employee{model.NewEmployee("甲"), model.NewEmployee("乙")}
	leaves := []model.LeaveRequest{
		{Employee: "乙", Day: 1},
		{Employee: "乙", Day: 2},
		{Employee: "甲", Day: 7},
		{Employee: "甲", Day: 8},
	}
	_, removed := Sacrifice(employees, leaves, 1)
	require.Len(t, removed, 1)
	assert.Equal(t, model.LeaveRequest{Employee: "甲", Day: 7}, removed[0])
}

func TestBuild_Strict(t *testing.T) {
	in := newInput()
	in.Preferences = []model.PostPreference{{Employee: "甲", Day: 2, Post: "值班", Direction: model.DirectionDesire}}
	in.Leaves = []model.LeaveRequest{{Employee: "乙", Day: 4}}

	m, err := New().Build(in, profile.At(0, in.Weights))
	require.NoError(t, err)

	alt := m.Manager.GetConstraint(constraint.TypeAlternatingPost)
	require.NotNil(t, alt)
	assert.Equal(t, constraint.CategoryHard, alt.Category())

	assert.NotNil(t, m.Manager.GetConstraint(constraint.TypeFourInARow))
	assert.NotNil(t, m.Manager.GetConstraint(constraint.TypePostPreference))
	assert.NotNil(t, m.Manager.GetConstraint(constraint.TypeLeaveRequest))
	assert.NotNil(t, m.Manager.GetConstraint(constraint.TypePostPriority))
	assert.Nil(t, m.Manager.GetConstraint(constraint.TypeCrossMonthRest))
	assert.Nil(t, m.Manager.GetConstraint(constraint.TypeMaxConsecutiveDays))

	assert.Len(t, m.Active, 30)
	assert.True(t, m.Active[0])
	assert.False(t, m.Active[1])
	assert.Empty(t, m.Notes)
	assert.NotEmpty(t, m.Explanations)
	assert.Equal(t, "[硬] 每日单一状态", m.Explanations[0])

	p := m.Problem()
	assert.Same(t, m.Context, p.Context)
	assert.Same(t, m.Manager, p.Manager)
}

func TestBuild_Relaxed(t *testing.T) {
	in := newInput()
	in.Tail = model.Tail{"甲": {-2: true}}
	in.Preferences = []model.PostPreference{{Employee: "甲", Day: 2, Post: "值班", Direction: model.DirectionDesire}}
	in.Leaves = []model.LeaveRequest{
		{Employee: "乙", Day: 4},
		{Employee: "乙", Day: 6},
		{Employee: "乙", Day: 8},
	}

	m, err := New().Build(in, profile.At(3, in.Weights))
	require.NoError(t, err)

	alt := m.Manager.GetConstraint(constraint.TypeAlternatingPost)
	require.NotNil(t, alt)
	assert.Equal(t, constraint.CategorySoft, alt.Category())
	assert.Equal(t, 1000, alt.Weight())

	cross := m.Manager.GetConstraint(constraint.TypeCrossMonthDoubleDuty)
	require.NotNil(t, cross)
	assert.Equal(t, constraint.CategorySoft, cross.Category())
	assert.NotNil(t, m.Manager.GetConstraint(constraint.TypeTripleDuty))

	assert.Nil(t, m.Manager.GetConstraint(constraint.TypeDoubleDuty))
	assert.Nil(t, m.Manager.GetConstraint(constraint.TypePostPreference))
	assert.Nil(t, m.Manager.GetConstraint(constraint.TypeDutyLoadBalance))

	require.Len(t, m.Sacrificed, 2)
	assert.Len(t, m.Leaves, 1)
	require.Len(t, m.Notes, 1)
	assert.Equal(t, model.NoteLeave, m.Notes[0].Kind)
	assert.Equal(t, 3, m.Notes[0].Level)
	assert.Contains(t, m.Notes[0].Message, "4日、6日")
}

func TestBuild_RelaxedSolveKeepsCrossMonthRules(t *testing.T) {
	in := newInput()
	in.Tail = model.Tail{
		"甲": {-1: true},
		"乙": {-3: true, -2: false, -1: true},
		"丙": {-2: true},
	}

	m, err := New().Build(in, profile.At(3, in.Weights))
	require.NoError(t, err)

	rest := m.Manager.GetConstraint(constraint.TypeCrossMonthRest)
	require.NotNil(t, rest)
	assert.Equal(t, constraint.CategoryHard, rest.Category())
	triple := m.Manager.GetConstraint(constraint.TypeTripleDuty)
	require.NotNil(t, triple)
	assert.Equal(t, constraint.CategoryHard, triple.Category())

	res, err := solver.NewBacktrackSolver(solver.DefaultConfig()).Solve(context.Background(), m.Problem(), 10*time.Second)
	require.NoError(t, err)
	require.True(t, res.Status.Solved(), "status %s", res.Status)

	assert.Equal(t, model.StateRest, res.Cells[0][0], "上月末日出勤，1日补休")
	assert.False(t, res.Cells[1][0].IsPost(), "1日出勤将形成三通宵")
	assert.Equal(t, model.StateRest, res.Cells[1][0])

	sc := m.Context.Clone()
	sc.SetCells(res.Cells)
	valid, _ := m.Manager.Check(sc)
	assert.True(t, valid)
}

func TestBuild_CustomRules(t *testing.T) {
	in := newInput()
	in.Employees[0].Rules = &model.CustomRules{ForbiddenDays: []int{3}}

	m, err := New().Build(in, profile.At(1, in.Weights))
	require.NoError(t, err)
	c := m.Manager.GetConstraint(constraint.TypeForbiddenDays)
	require.NotNil(t, c)
	assert.Equal(t, constraint.CategoryHard, c.Category())

	m, err = New().Build(in, profile.At(5, in.Weights))
	require.NoError(t, err)
	c = m.Manager.GetConstraint(constraint.TypeForbiddenDays)
	require.NotNil(t, c)
	assert.Equal(t, constraint.CategorySoft, c.Category())
	assert.Equal(t, 3, c.Weight())
	assert.Nil(t, m.Manager.GetConstraint(constraint.TypePostPriority))
}

func TestBuild_FreshModelPerLevel(t *testing.T) {
	in := newInput()
	b := New()
	m0, err := b.Build(in, profile.At(0, in.Weights))
	require.NoError(t, err)
	m1, err := b.Build(in, profile.At(1, in.Weights))
	require.NoError(t, err)

	assert.NotSame(t, m0.Manager, m1.Manager)
	assert.NotSame(t, m0.Context, m1.Context)
}

func TestBuild_InvalidInput(t *testing.T) {
	in := newInput()
	in.Employees = in.Employees[:1]
	_, err := New().Build(in, profile.At(0, in.Weights))
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidInput))
}
