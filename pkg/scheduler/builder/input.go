// Package builder 根据放宽级别构造排班模型
package builder

import (
	"fmt"
	"sort"
	"time"

	"github.com/paiban/dutyroster/pkg/calendar"
	apperrors "github.com/paiban/dutyroster/pkg/errors"
	"github.com/paiban/dutyroster/pkg/model"
	"github.com/paiban/dutyroster/pkg/scheduler/profile"
)

// Input 一次排班运行的全部输入（已规范化）
type Input struct {
	Year        int
	Month       time.Month
	Employees   []*model.Employee
	Posts       []model.Post
	Leaves      []model.LeaveRequest
	Preferences []model.PostPreference
	Tail        model.Tail
	BaseDate    time.Time // 隔日岗位基准日，零值取当月1日
	Priorities  profile.PriorityTable
	Weights     profile.Weights
}

// Days 当月天数
func (in *Input) Days() int {
	return calendar.DaysIn(in.Year, in.Month)
}

// Base 隔日岗位基准日
func (in *Input) Base() time.Time {
	if in.BaseDate.IsZero() {
		return calendar.MonthStart(in.Year, in.Month)
	}
	return in.BaseDate
}

// HasCustomRules 是否有员工设置了个人规则
func (in *Input) HasCustomRules() bool {
	for _, e := range in.Employees {
		if e.HasRules() {
			return true
		}
	}
	return false
}

// EmployeeIndex 按姓名查找员工下标，不存在返回 -1
func (in *Input) EmployeeIndex(name string) int {
	for i, e := range in.Employees {
		if e.Name == name {
			return i
		}
	}
	return -1
}

// Validate 检查输入是否满足建模前提
func (in *Input) Validate() error {
	if in.Month < time.January || in.Month > time.December || in.Year < 1 {
		return apperrors.InvalidMonth(in.Year, int(in.Month))
	}
	if len(in.Employees) < 2 {
		return apperrors.InvalidInput("employees", fmt.Sprintf("至少需要2名员工，当前%d名", len(in.Employees)))
	}
	if len(in.Posts) == 0 {
		return apperrors.InvalidInput("posts", "岗位列表为空")
	}

	seen := make(map[string]bool, len(in.Employees))
	for _, e := range in.Employees {
		if e == nil || e.Name == "" {
			return apperrors.InvalidInput("employees", "员工姓名为空")
		}
		if seen[e.Name] {
			return apperrors.InvalidInput("employees", fmt.Sprintf("员工 %s 重复", e.Name))
		}
		seen[e.Name] = true
	}

	names := make(map[string]bool, len(in.Posts))
	for _, p := range in.Posts {
		if p.Name == "" {
			return apperrors.InvalidInput("posts", "岗位名称为空")
		}
		if names[p.Name] {
			return apperrors.InvalidInput("posts", fmt.Sprintf("岗位 %s 重复", p.Name))
		}
		if !p.Category.Valid() {
			return apperrors.InvalidInput("posts", fmt.Sprintf("岗位 %s 类别无效: %s", p.Name, p.Category))
		}
		names[p.Name] = true
	}
	return nil
}

// priorities 返回生效的优先级映射
func (in *Input) priorities() profile.PriorityTable {
	if len(in.Priorities) == 0 {
		return profile.DefaultPriorityTable()
	}
	return in.Priorities
}

// Sacrifice 从休假最多的员工处剔除最早的 n 条申请
// 返回剩余申请与被剔除的申请
func Sacrifice(employees []*model.Employee, leaves []model.LeaveRequest, n int) ([]model.LeaveRequest, []model.LeaveRequest) {
	if n <= 0 || len(leaves) == 0 {
		return leaves, nil
	}

	counts := make(map[string]int)
	for _, l := range leaves {
		counts[l.Employee]++
	}

	target := ""
	best := 0
	for _, e := range employees {
		if c := counts[e.Name]; c > best {
			target = e.Name
			best = c
		}
	}
	if target == "" {
		return leaves, nil
	}

	var days []int
	for _, l := range leaves {
		if l.Employee == target {
			days = append(days, l.Day)
		}
	}
	sort.Ints(days)
	if len(days) > n {
		days = days[:n]
	}
	drop := make(map[int]bool, len(days))
	for _, d := range days {
		drop[d] = true
	}

	kept := make([]model.LeaveRequest, 0, len(leaves))
	var removed []model.LeaveRequest
	for _, l := range leaves {
		if l.Employee == target && drop[l.Day] {
			removed = append(removed, l)
			continue
		}
		kept = append(kept, l)
	}
	return kept, removed
}
