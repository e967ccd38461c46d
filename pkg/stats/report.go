// Package stats 提供排班统计分析功能
package stats

import (
	"fmt"
	"time"

	"github.com/paiban/dutyroster/pkg/calendar"
	"github.com/paiban/dutyroster/pkg/model"
	"github.com/paiban/dutyroster/pkg/scheduler/builder"
	"github.com/paiban/dutyroster/pkg/scheduler/constraint"
	"github.com/paiban/dutyroster/pkg/scheduler/constraint/builtin"
)

// Report 排班结果统计
type Report struct {
	Year      int              `json:"year"`
	Month     int              `json:"month"`
	Days      int              `json:"days"`
	Employees []EmployeeReport `json:"employees"`
	Totals    Totals           `json:"totals"`
	Coverage  []DayCoverage    `json:"coverage"`
	Fairness  *FairnessMetrics `json:"fairness"`
}

// EmployeeReport 员工统计
type EmployeeReport struct {
	Name       string         `json:"name"`
	Backup     bool           `json:"backup,omitempty"`
	PostCounts map[string]int `json:"post_counts"` // 岗位名 -> 次数
	DutyDays   int            `json:"duty_days"`
	Hours      float64        `json:"hours"`
	Overnight  int            `json:"overnight"`
	Weekend    int            `json:"weekend"`
	RestDays   int            `json:"rest_days"`
	LeaveDays  int            `json:"leave_days"`
	DoubleDuty int            `json:"double_duty"` // 含跨月双通宵

	LeaveRequested int     `json:"leave_requested"`
	LeaveHonored   int     `json:"leave_honored"`
	LeaveRate      float64 `json:"leave_rate"` // 百分比，无申请时为100

	DesireRequested int `json:"desire_requested"`
	DesireHonored   int `json:"desire_honored"`
	AvoidRequested  int `json:"avoid_requested"`
	AvoidHonored    int `json:"avoid_honored"`

	CrossMonth CrossMonthReport `json:"cross_month"`
}

// TailDay 上月末某一天的记录
type TailDay struct {
	Rel    int    `json:"rel"`
	Status string `json:"status"` // 出勤/未出勤/未填
}

// CrossMonthReport 跨月衔接情况
type CrossMonthReport struct {
	Prior     []TailDay `json:"prior"`
	FirstDays []string  `json:"first_days"` // 本月1-3日状态

	ForcedRest          bool `json:"forced_rest"`
	ForcedRestHonored   bool `json:"forced_rest_honored"`
	DoubleDutyRisk      bool `json:"double_duty_risk"`
	DoubleDutyOccurred  bool `json:"double_duty_occurred"`
	TripleDutyRisk      bool `json:"triple_duty_risk"`
	TripleDutyPrevented bool `json:"triple_duty_prevented"`

	Violations []string `json:"violations,omitempty"`
	Narrative  []string `json:"narrative"`
}

// Totals 全体汇总
type Totals struct {
	DutyDays       int              `json:"duty_days"`
	Hours          float64          `json:"hours"`
	DoubleDuty     int              `json:"double_duty"`
	LeaveRequested int              `json:"leave_requested"`
	LeaveHonored   int              `json:"leave_honored"`
	Backup         string           `json:"backup"`
	BackupDays     int              `json:"backup_days"`
	Alternating    map[string][]int `json:"alternating"` // 隔日岗位名 -> 每日在岗人数
}

// Analyzer 结果分析器
type Analyzer struct {
	fairness *FairnessAnalyzer
}

// NewAnalyzer 创建结果分析器
func NewAnalyzer() *Analyzer {
	return &Analyzer{fairness: NewFairnessAnalyzer()}
}

// Analyze 统计排班结果，in 中的休假申请为规范化后的原始申请
func (a *Analyzer) Analyze(in *builder.Input, grid *model.Grid) *Report {
	days := grid.Days()
	sc := constraint.NewContext(in.Year, in.Month, days, in.Employees, in.Posts)
	sc.SetCells(grid.Cells())
	if in.Tail != nil {
		sc.Tail = in.Tail
	}

	report := &Report{
		Year:      in.Year,
		Month:     int(in.Month),
		Days:      days,
		Employees: make([]EmployeeReport, len(in.Employees)),
	}

	for e, emp := range in.Employees {
		report.Employees[e] = a.employee(sc, e, emp)
	}
	a.requests(in, sc, report)

	for e := range report.Employees {
		r := &report.Employees[e]
		r.LeaveRate = 100
		if r.LeaveRequested > 0 {
			r.LeaveRate = float64(r.LeaveHonored) / float64(r.LeaveRequested) * 100
		}
	}

	report.Totals = totals(sc, report.Employees)
	active, err := calendar.ActiveDays(in.Base(), in.Year, in.Month)
	if err != nil {
		active = nil
	}
	report.Coverage = coverage(sc, active)
	report.Fairness = a.fairness.Analyze(report.Employees)
	return report
}

// employee 单个员工的出勤统计
func (a *Analyzer) employee(sc *constraint.Context, e int, emp *model.Employee) EmployeeReport {
	r := EmployeeReport{
		Name:       emp.Name,
		Backup:     e == sc.Backup,
		PostCounts: make(map[string]int, len(sc.Posts)),
		DoubleDuty: builtin.DoubleDutyCount(sc, e),
	}
	for _, p := range sc.Posts {
		r.PostCounts[p.Name] = 0
	}

	for d := 0; d < sc.Days; d++ {
		s := sc.State(e, d)
		switch {
		case s.IsPost():
			post := sc.Posts[s]
			r.PostCounts[post.Name]++
			r.DutyDays++
			r.Hours += post.Hours
			if post.IsOvernight() {
				r.Overnight++
			}
			if isWeekend(sc.Year, sc.Month, d) {
				r.Weekend++
			}
		case s == model.StateRest:
			r.RestDays++
		case s == model.StateLeave:
			r.LeaveDays++
		}
	}

	r.CrossMonth = crossMonth(sc, e)
	return r
}

// requests 统计休假与岗位偏好的满足情况
func (a *Analyzer) requests(in *builder.Input, sc *constraint.Context, report *Report) {
	for _, l := range in.Leaves {
		e := in.EmployeeIndex(l.Employee)
		if e < 0 || l.Day < 1 || l.Day > sc.Days {
			continue
		}
		report.Employees[e].LeaveRequested++
		if !sc.Works(e, l.Day-1) {
			report.Employees[e].LeaveHonored++
		}
	}

	for _, p := range in.Preferences {
		e := in.EmployeeIndex(p.Employee)
		post := model.PostIndex(in.Posts, p.Post)
		if e < 0 || post < 0 || p.Day < 1 || p.Day > sc.Days {
			continue
		}
		assigned := sc.State(e, p.Day-1) == model.State(post)
		r := &report.Employees[e]
		if p.Direction == model.DirectionDesire {
			r.DesireRequested++
			if assigned {
				r.DesireHonored++
			}
			continue
		}
		r.AvoidRequested++
		if !assigned {
			r.AvoidHonored++
		}
	}
}

// crossMonth 生成跨月衔接说明
func crossMonth(sc *constraint.Context, e int) CrossMonthReport {
	name := sc.EmployeeName(e)
	r := CrossMonthReport{}

	for rel := -3; rel <= -1; rel++ {
		status := model.LabelUnfilled
		if sc.Tail.Known(name, rel) {
			status = "未出勤"
			if sc.Tail.Worked(name, rel) {
				status = "出勤"
			}
		}
		r.Prior = append(r.Prior, TailDay{Rel: rel, Status: status})
	}
	for d := 0; d < 3 && d < sc.Days; d++ {
		r.FirstDays = append(r.FirstDays, sc.State(e, d).Label(sc.Posts))
	}

	if sc.TailWorked(e, -1) {
		r.ForcedRest = true
		r.ForcedRestHonored = sc.IsRest(e, 0)
		if r.ForcedRestHonored {
			r.Narrative = append(r.Narrative, "上月最后一天出勤，1日已安排补休")
		} else {
			r.Violations = append(r.Violations, "上月最后一天出勤，但1日未补休")
		}
	}

	if sc.TailWorked(e, -2) {
		r.DoubleDutyRisk = true
		r.DoubleDutyOccurred = builtin.IsCrossMonthDoubleDuty(sc, e)
		if r.DoubleDutyOccurred {
			r.Violations = append(r.Violations, "上月倒数第2天出勤且1日通宵，形成跨月双通宵")
		} else {
			r.Narrative = append(r.Narrative, "上月倒数第2天出勤，1日未安排通宵，避免跨月双通宵")
		}
	}

	if sc.TailWorked(e, -3) && sc.TailWorked(e, -1) {
		r.TripleDutyRisk = true
		r.TripleDutyPrevented = !sc.Works(e, 0)
		if r.TripleDutyPrevented {
			r.Narrative = append(r.Narrative, "上月倒数第3天与最后一天出勤，1日未出勤，已防止三通宵")
		} else {
			r.Violations = append(r.Violations, "1日出勤，形成跨月三通宵")
		}
	}

	if len(r.Narrative) == 0 && len(r.Violations) == 0 {
		r.Narrative = append(r.Narrative, "无跨月约束")
	}
	return r
}

// totals 全体汇总
func totals(sc *constraint.Context, employees []EmployeeReport) Totals {
	t := Totals{Alternating: make(map[string][]int)}
	for e, r := range employees {
		t.DutyDays += r.DutyDays
		t.Hours += r.Hours
		t.DoubleDuty += r.DoubleDuty
		t.LeaveRequested += r.LeaveRequested
		t.LeaveHonored += r.LeaveHonored
		if e == sc.Backup {
			t.Backup = r.Name
			t.BackupDays = r.DutyDays
		}
	}
	for p, post := range sc.Posts {
		if !post.Alternating {
			continue
		}
		counts := make([]int, sc.Days)
		for d := range counts {
			counts[d] = sc.PostCount(d, p)
		}
		t.Alternating[post.Name] = counts
	}
	return t
}

// isWeekend 判断是否是周末
func isWeekend(year int, month time.Month, d int) bool {
	weekday := time.Date(year, month, d+1, 0, 0, 0, 0, time.UTC).Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// Summary 返回员工统计的一行摘要
func (r EmployeeReport) Summary() string {
	return fmt.Sprintf("%s: 出勤%d天 %.0f小时 双通宵%d次 休假满足%d/%d",
		r.Name, r.DutyDays, r.Hours, r.DoubleDuty, r.LeaveHonored, r.LeaveRequested)
}
