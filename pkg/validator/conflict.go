// Package validator 提供排班结果验证功能
package validator

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/paiban/dutyroster/pkg/model"
)

// ConflictType 冲突类型
type ConflictType string

const (
	ConflictState       ConflictType = "state"       // 非法状态
	ConflictCoverage    ConflictType = "coverage"    // 岗位人数不符
	ConflictRestTime    ConflictType = "rest_time"   // 通宵后未补休
	ConflictUnearned    ConflictType = "unearned"    // 无通宵的补休
	ConflictConsecutive ConflictType = "consecutive" // 连续补休
	ConflictCrossMonth  ConflictType = "cross_month" // 跨月衔接
	ConflictForbidden   ConflictType = "forbidden"   // 禁止的岗位
	ConflictAlternating ConflictType = "alternating" // 隔日岗位与值守日不符
)

// Severity 冲突严重程度
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Conflict 冲突信息，Day 从1开始，0 表示与具体日期无关
type Conflict struct {
	Type       ConflictType `json:"type"`
	Severity   string       `json:"severity"`
	EmployeeID uuid.UUID    `json:"employee_id,omitempty"`
	Employee   string       `json:"employee,omitempty"`
	Day        int          `json:"day,omitempty"`
	Message    string       `json:"message"`
}

// GridValidator 排班结果检查器
// 检查任何放宽级别下都必须成立的规则
type GridValidator struct {
	employees []*model.Employee
	posts     []model.Post
	tail      model.Tail
	active    []bool
}

// NewGridValidator 创建检查器，active 为 nil 时不检查隔日岗位的值守日
func NewGridValidator(employees []*model.Employee, posts []model.Post, tail model.Tail, active []bool) *GridValidator {
	return &GridValidator{
		employees: employees,
		posts:     posts,
		tail:      tail,
		active:    active,
	}
}

// Validate 检查排班结果
func (v *GridValidator) Validate(grid *model.Grid) []Conflict {
	var conflicts []Conflict

	if len(grid.Employees()) != len(v.employees) {
		return []Conflict{{
			Type:     ConflictState,
			Severity: SeverityError,
			Message:  fmt.Sprintf("排班表有%d行，名单有%d人", len(grid.Employees()), len(v.employees)),
		}}
	}

	for e, emp := range v.employees {
		conflicts = append(conflicts, v.detectStates(grid, e, emp)...)
		conflicts = append(conflicts, v.detectRestViolations(grid, e, emp)...)
		conflicts = append(conflicts, v.detectCrossMonth(grid, e, emp)...)
	}
	conflicts = append(conflicts, v.detectCoverage(grid)...)

	return conflicts
}

// detectStates 检测非法状态与禁止的岗位
func (v *GridValidator) detectStates(grid *model.Grid, e int, emp *model.Employee) []Conflict {
	var conflicts []Conflict

	for d := 0; d < grid.Days(); d++ {
		s := grid.At(e, d)
		switch {
		case s == model.StateLeave || s == model.StateRest:
		case s.IsPost() && int(s) < len(v.posts):
			post := v.posts[s]
			if emp.PriorityFor(post.Name) == model.PriorityForbidden {
				conflicts = append(conflicts, v.conflict(ConflictForbidden, SeverityError, emp, d,
					fmt.Sprintf("员工 %s 被禁止担任 %s", emp.Name, post.Name)))
			}
		default:
			conflicts = append(conflicts, v.conflict(ConflictState, SeverityError, emp, d,
				fmt.Sprintf("员工 %s 在 %d日 状态无效(%d)", emp.Name, d+1, int(s))))
		}
	}

	return conflicts
}

// detectRestViolations 检测补休规则
func (v *GridValidator) detectRestViolations(grid *model.Grid, e int, emp *model.Employee) []Conflict {
	var conflicts []Conflict

	for d := 0; d < grid.Days(); d++ {
		s := grid.At(e, d)

		if d > 0 && v.overnight(grid.At(e, d-1)) && s != model.StateRest {
			conflicts = append(conflicts, v.conflict(ConflictRestTime, SeverityError, emp, d,
				fmt.Sprintf("员工 %s 在 %d日 通宵后 %d日 未补休", emp.Name, d, d+1)))
		}

		if s != model.StateRest || d == 0 {
			continue
		}
		if !v.overnight(grid.At(e, d-1)) {
			conflicts = append(conflicts, v.conflict(ConflictUnearned, SeverityError, emp, d,
				fmt.Sprintf("员工 %s 在 %d日 补休，但前一天未通宵", emp.Name, d+1)))
		}
		if grid.At(e, d-1) == model.StateRest {
			conflicts = append(conflicts, v.conflict(ConflictConsecutive, SeverityError, emp, d,
				fmt.Sprintf("员工 %s 在 %d日、%d日 连续补休", emp.Name, d, d+1)))
		}
	}

	return conflicts
}

// detectCrossMonth 检测上月末出勤带来的1日限制
func (v *GridValidator) detectCrossMonth(grid *model.Grid, e int, emp *model.Employee) []Conflict {
	if grid.Days() == 0 {
		return nil
	}

	var conflicts []Conflict
	first := grid.At(e, 0)

	if v.tail.Worked(emp.Name, -1) && first != model.StateRest {
		conflicts = append(conflicts, v.conflict(ConflictCrossMonth, SeverityError, emp, 0,
			fmt.Sprintf("员工 %s 上月最后一天出勤，1日 未补休", emp.Name)))
	}
	if v.tail.Worked(emp.Name, -3) && v.tail.Worked(emp.Name, -1) && first.IsPost() {
		conflicts = append(conflicts, v.conflict(ConflictCrossMonth, SeverityError, emp, 0,
			fmt.Sprintf("员工 %s 1日 出勤形成三通宵", emp.Name)))
	}

	return conflicts
}

// detectCoverage 检测每日岗位人数
func (v *GridValidator) detectCoverage(grid *model.Grid) []Conflict {
	var conflicts []Conflict

	for d := 0; d < grid.Days(); d++ {
		for p, post := range v.posts {
			n := grid.PostCount(d, p)
			switch {
			case !post.Alternating && n != 1:
				conflicts = append(conflicts, v.conflict(ConflictCoverage, SeverityError, nil, d,
					fmt.Sprintf("%d日 岗位 %s 安排了%d人", d+1, post.Name, n)))
			case post.Alternating && n > 1:
				conflicts = append(conflicts, v.conflict(ConflictCoverage, SeverityError, nil, d,
					fmt.Sprintf("%d日 隔日岗位 %s 安排了%d人", d+1, post.Name, n)))
			case post.Alternating && v.active != nil && d < len(v.active) && (n == 1) != v.active[d]:
				conflicts = append(conflicts, v.conflict(ConflictAlternating, SeverityWarning, nil, d,
					fmt.Sprintf("%d日 隔日岗位 %s 在岗%d人，与值守日不符", d+1, post.Name, n)))
			}
		}
	}

	return conflicts
}

// overnight 状态是否为通宵类岗位
func (v *GridValidator) overnight(s model.State) bool {
	return s.IsPost() && int(s) < len(v.posts) && v.posts[s].IsOvernight()
}

func (v *GridValidator) conflict(typ ConflictType, severity string, emp *model.Employee, d int, msg string) Conflict {
	c := Conflict{
		Type:     typ,
		Severity: severity,
		Day:      d + 1,
		Message:  msg,
	}
	if emp != nil {
		c.EmployeeID = emp.ID
		c.Employee = emp.Name
	}
	return c
}

// Errors 只保留错误级别的冲突
func Errors(conflicts []Conflict) []Conflict {
	var out []Conflict
	for _, c := range conflicts {
		if c.Severity == SeverityError {
			out = append(out, c)
		}
	}
	return out
}
