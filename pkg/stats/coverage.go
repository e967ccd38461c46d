package stats

import (
	"time"

	"github.com/paiban/dutyroster/pkg/model"
	"github.com/paiban/dutyroster/pkg/scheduler/constraint"
)

// DayCoverage 每日覆盖情况
type DayCoverage struct {
	Day        int               `json:"day"` // 从1开始
	Weekday    string            `json:"weekday"`
	Active     bool              `json:"active"`     // 隔日岗位值守日
	Assigned   map[string]string `json:"assigned"`   // 岗位名 -> 员工名（多人时逗号分隔）
	StaffCount int               `json:"staff_count"`
	TotalHours float64           `json:"total_hours"`
	Resting    []string          `json:"resting,omitempty"`
	OnLeave    []string          `json:"on_leave,omitempty"`
	Uncovered  []string          `json:"uncovered,omitempty"` // 需值守但无人的岗位
}

var weekdayNames = [...]string{"日", "一", "二", "三", "四", "五", "六"}

// coverage 逐日统计岗位覆盖，active 为 nil 时不检查隔日岗位
func coverage(sc *constraint.Context, active []bool) []DayCoverage {
	out := make([]DayCoverage, sc.Days)
	for d := 0; d < sc.Days; d++ {
		date := time.Date(sc.Year, sc.Month, d+1, 0, 0, 0, 0, time.UTC)
		day := DayCoverage{
			Day:      d + 1,
			Weekday:  "周" + weekdayNames[date.Weekday()],
			Active:   active != nil && d < len(active) && active[d],
			Assigned: make(map[string]string),
		}

		for e := range sc.Employees {
			name := sc.EmployeeName(e)
			s := sc.State(e, d)
			switch {
			case s.IsPost():
				post := sc.Posts[s]
				if prev, ok := day.Assigned[post.Name]; ok {
					day.Assigned[post.Name] = prev + "," + name
				} else {
					day.Assigned[post.Name] = name
				}
				day.StaffCount++
				day.TotalHours += post.Hours
			case s == model.StateRest:
				day.Resting = append(day.Resting, name)
			case s == model.StateLeave:
				day.OnLeave = append(day.OnLeave, name)
			}
		}

		for p, post := range sc.Posts {
			if post.Alternating && !day.Active {
				continue
			}
			if sc.PostCount(d, p) == 0 {
				day.Uncovered = append(day.Uncovered, post.Name)
			}
		}
		out[d] = day
	}
	return out
}

// UncoveredDays 返回存在缺岗的日期（从1开始）
func UncoveredDays(days []DayCoverage) []int {
	var out []int
	for _, d := range days {
		if len(d.Uncovered) > 0 {
			out = append(out, d.Day)
		}
	}
	return out
}
