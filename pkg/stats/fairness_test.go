package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFairness_BackupExcluded(t *testing.T) {
	employees := []EmployeeReport{
		{Name: "甲", Hours: 10, DutyDays: 1, Overnight: 1},
		{Name: "乙", Hours: 20, DutyDays: 2, Overnight: 1, DoubleDuty: 1},
		{Name: "机动", Hours: 200, DutyDays: 20, Backup: true},
	}
	m := NewFairnessAnalyzer().Analyze(employees)

	assert.Equal(t, 15.0, m.AvgHours)
	assert.Equal(t, 25.0, m.HoursVariance)
	assert.Equal(t, 5.0, m.HoursStdDev)
	assert.Equal(t, 20.0, m.MaxHours)
	assert.Equal(t, 10.0, m.MinHours)
	assert.Equal(t, 10.0, m.HoursRange)
	assert.Equal(t, 1, m.DutyDaysRange)
	assert.Equal(t, 1, m.DoubleDutyRange)
	assert.Equal(t, 0.0, m.OvernightGini)
	assert.Len(t, m.EmployeeStats, 2)
	assert.Equal(t, "乙", m.EmployeeStats[0].Name, "按工时降序")
	assert.InDelta(t, 33.33, m.EmployeeStats[0].Deviation, 0.01)
}

func TestFairness_Equal(t *testing.T) {
	employees := []EmployeeReport{
		{Name: "甲", Hours: 32, Overnight: 2, Weekend: 1},
		{Name: "乙", Hours: 32, Overnight: 2, Weekend: 1},
	}
	m := NewFairnessAnalyzer().Analyze(employees)
	assert.Equal(t, 0.0, m.HoursGini)
	assert.InDelta(t, 100.0, m.OverallScore, 1e-9)
}

func TestFairness_Empty(t *testing.T) {
	m := NewFairnessAnalyzer().Analyze([]EmployeeReport{{Name: "机动", Backup: true}})
	assert.Equal(t, 100.0, m.OverallScore)
	assert.Empty(t, m.EmployeeStats)
}

func TestCalculateGini(t *testing.T) {
	f := NewFairnessAnalyzer()
	assert.Equal(t, 0.0, f.calculateGini(nil))
	assert.Equal(t, 0.0, f.calculateGini([]float64{0, 0}))
	assert.Equal(t, 0.0, f.calculateGini([]float64{5, 5, 5}))
	assert.InDelta(t, 0.5, f.calculateGini([]float64{10, 0}), 1e-9)
}

func TestCompare(t *testing.T) {
	a := &Report{Fairness: &FairnessMetrics{HoursGini: 0.1, OverallScore: 90}}
	b := &Report{Fairness: &FairnessMetrics{HoursGini: 0.3, OverallScore: 80}}
	diff := NewFairnessAnalyzer().Compare(a, b)
	assert.InDelta(t, 0.2, diff["hours_gini_diff"], 1e-9)
	assert.InDelta(t, -10.0, diff["overall_score_diff"], 1e-9)
}

func TestIsWeekend(t *testing.T) {
	assert.True(t, isWeekend(2024, time.June, 0))  // 6月1日 周六
	assert.True(t, isWeekend(2024, time.June, 1))  // 6月2日 周日
	assert.False(t, isWeekend(2024, time.June, 2)) // 6月3日 周一
}
