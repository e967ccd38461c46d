package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiban/dutyroster/pkg/model"
	"github.com/paiban/dutyroster/pkg/scheduler/builder"
)

const (
	duty = model.State(0) // 值班
	gate = model.State(1) // 门岗
	L    = model.StateLeave
	R    = model.StateRest
)

func fixture() (*builder.Input, *model.Grid) {
	names := []string{"甲", "乙", "机动"}
	employees := make([]*model.Employee, len(names))
	for i, n := range names {
		employees[i] = model.NewEmployee(n)
	}
	in := &builder.Input{
		Year:      2024,
		Month:     time.June,
		Employees: employees,
		Posts: []model.Post{
			{Name: "值班", Category: model.CategoryOvernight, Hours: 16},
			{Name: "门岗", Category: model.CategoryDay, Hours: 8, Alternating: true},
		},
		Leaves: []model.LeaveRequest{
			{Employee: "甲", Day: 2},
			{Employee: "机动", Day: 1},
		},
		Preferences: []model.PostPreference{
			{Employee: "乙", Day: 2, Post: "值班", Direction: model.DirectionDesire},
			{Employee: "甲", Day: 3, Post: "值班", Direction: model.DirectionAvoid},
		},
		Tail: model.Tail{
			"甲": {-2: true, -1: false},
			"乙": {-1: true},
		},
	}
	grid := model.NewGrid(names, in.Posts, [][]model.State{
		{duty, R, duty, R},
		{R, duty, R, duty},
		{gate, L, gate, L},
	})
	return in, grid
}

func TestAnalyze_Employees(t *testing.T) {
	in, grid := fixture()
	report := NewAnalyzer().Analyze(in, grid)

	require.Len(t, report.Employees, 3)
	assert.Equal(t, 4, report.Days)
	assert.Equal(t, 6, report.Month)

	a := report.Employees[0]
	assert.Equal(t, map[string]int{"值班": 2, "门岗": 0}, a.PostCounts)
	assert.Equal(t, 2, a.DutyDays)
	assert.Equal(t, 32.0, a.Hours)
	assert.Equal(t, 2, a.Overnight)
	assert.Equal(t, 1, a.Weekend) // 6月1日为周六
	assert.Equal(t, 2, a.RestDays)
	assert.Equal(t, 2, a.DoubleDuty, "跨月双通宵与月内双通宵都计入")
	assert.Equal(t, 1, a.LeaveRequested)
	assert.Equal(t, 1, a.LeaveHonored)
	assert.Equal(t, 100.0, a.LeaveRate)
	assert.Equal(t, 1, a.AvoidRequested)
	assert.Equal(t, 0, a.AvoidHonored)

	b := report.Employees[1]
	assert.Equal(t, 1, b.DesireRequested)
	assert.Equal(t, 1, b.DesireHonored)
	assert.Equal(t, 100.0, b.LeaveRate, "无休假申请时满足率为100")
	assert.Equal(t, 1, b.DoubleDuty)

	backup := report.Employees[2]
	assert.True(t, backup.Backup)
	assert.Equal(t, 2, backup.PostCounts["门岗"])
	assert.Equal(t, 16.0, backup.Hours)
	assert.Equal(t, 2, backup.LeaveDays)
	assert.Equal(t, 1, backup.DoubleDuty, "隔日白班同样计为双通宵")
	assert.Equal(t, 0.0, backup.LeaveRate)
	assert.Contains(t, backup.Summary(), "机动")
}

func TestAnalyze_CrossMonth(t *testing.T) {
	in, grid := fixture()
	report := NewAnalyzer().Analyze(in, grid)

	a := report.Employees[0].CrossMonth
	assert.Equal(t, []TailDay{{-3, model.LabelUnfilled}, {-2, "出勤"}, {-1, "未出勤"}}, a.Prior)
	assert.Equal(t, []string{"值班", "补休", "值班"}, a.FirstDays)
	assert.True(t, a.DoubleDutyRisk)
	assert.True(t, a.DoubleDutyOccurred)
	require.Len(t, a.Violations, 1)
	assert.Contains(t, a.Violations[0], "跨月双通宵")

	b := report.Employees[1].CrossMonth
	assert.True(t, b.ForcedRest)
	assert.True(t, b.ForcedRestHonored)
	assert.Empty(t, b.Violations)
	assert.Contains(t, b.Narrative[0], "补休")

	c := report.Employees[2].CrossMonth
	assert.False(t, c.ForcedRest)
	assert.Equal(t, []string{"无跨月约束"}, c.Narrative)
}

func TestAnalyze_TripleDutyPrevented(t *testing.T) {
	in, grid := fixture()
	in.Tail = model.Tail{"乙": {-3: true, -2: false, -1: true}}
	report := NewAnalyzer().Analyze(in, grid)

	b := report.Employees[1].CrossMonth
	assert.True(t, b.TripleDutyRisk)
	assert.True(t, b.TripleDutyPrevented)
	assert.Empty(t, b.Violations)
	assert.Len(t, b.Narrative, 2)
}

func TestAnalyze_Totals(t *testing.T) {
	in, grid := fixture()
	report := NewAnalyzer().Analyze(in, grid)

	totals := report.Totals
	assert.Equal(t, 6, totals.DutyDays)
	assert.Equal(t, 80.0, totals.Hours)
	assert.Equal(t, 4, totals.DoubleDuty)
	assert.Equal(t, 2, totals.LeaveRequested)
	assert.Equal(t, 1, totals.LeaveHonored)
	assert.Equal(t, "机动", totals.Backup)
	assert.Equal(t, 2, totals.BackupDays)
	assert.Equal(t, []int{1, 0, 1, 0}, totals.Alternating["门岗"])
	assert.NotContains(t, totals.Alternating, "值班")
}

func TestAnalyze_Coverage(t *testing.T) {
	in, grid := fixture()
	report := NewAnalyzer().Analyze(in, grid)

	require.Len(t, report.Coverage, 4)
	first := report.Coverage[0]
	assert.Equal(t, 1, first.Day)
	assert.Equal(t, "周六", first.Weekday)
	assert.True(t, first.Active)
	assert.Equal(t, map[string]string{"值班": "甲", "门岗": "机动"}, first.Assigned)
	assert.Equal(t, 2, first.StaffCount)
	assert.Equal(t, 24.0, first.TotalHours)
	assert.Equal(t, []string{"乙"}, first.Resting)

	second := report.Coverage[1]
	assert.False(t, second.Active)
	assert.Equal(t, []string{"机动"}, second.OnLeave)
	assert.Empty(t, second.Uncovered, "非值守日不要求隔日岗位")

	assert.Empty(t, UncoveredDays(report.Coverage))
}

func TestAnalyze_UncoveredAlternatingDay(t *testing.T) {
	in, _ := fixture()
	grid := model.NewGrid([]string{"甲", "乙", "机动"}, in.Posts, [][]model.State{
		{duty, R, duty, R},
		{R, duty, R, duty},
		{gate, L, L, L},
	})
	report := NewAnalyzer().Analyze(in, grid)

	assert.Equal(t, []string{"门岗"}, report.Coverage[2].Uncovered)
	assert.Equal(t, []int{3}, UncoveredDays(report.Coverage))
}
