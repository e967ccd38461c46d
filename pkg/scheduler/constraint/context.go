package constraint

import (
	"fmt"
	"time"

	"github.com/paiban/dutyroster/pkg/model"
)

// Context 排班上下文：输入数据与当前的工作排班表
type Context struct {
	Year      int
	Month     time.Month
	Days      int
	Employees []*model.Employee
	Posts     []model.Post
	Tail      model.Tail
	Backup    int // 机动人员下标

	// 当前排班表 [员工][日]
	Cells [][]model.State

	overnight []bool
}

// NewContext 创建排班上下文，所有格子初始为未赋值
func NewContext(year int, month time.Month, days int, employees []*model.Employee, posts []model.Post) *Context {
	c := &Context{
		Year:      year,
		Month:     month,
		Days:      days,
		Employees: employees,
		Posts:     posts,
		Tail:      make(model.Tail),
		Backup:    model.BackupIndex(employees),
		Cells:     make([][]model.State, len(employees)),
		overnight: make([]bool, len(posts)),
	}
	for i, p := range posts {
		c.overnight[i] = p.IsOvernight()
	}
	c.Reset()
	return c
}

// Reset 清空排班表
func (c *Context) Reset() {
	for e := range c.Cells {
		row := make([]model.State, c.Days)
		for d := range row {
			row[d] = model.StateUnset
		}
		c.Cells[e] = row
	}
}

// CopyCells 复制当前排班表
func (c *Context) CopyCells() [][]model.State {
	out := make([][]model.State, len(c.Cells))
	for e, row := range c.Cells {
		out[e] = append([]model.State(nil), row...)
	}
	return out
}

// SetCells 用给定排班表覆盖当前排班表
func (c *Context) SetCells(cells [][]model.State) {
	for e := range c.Cells {
		copy(c.Cells[e], cells[e])
	}
}

// Clone 复制上下文（排班表独立，输入数据共享）
func (c *Context) Clone() *Context {
	clone := *c
	clone.Cells = c.CopyCells()
	return &clone
}

// State 返回员工 e 第 d 天的状态，越界返回未赋值
func (c *Context) State(e, d int) model.State {
	if d < 0 || d >= c.Days {
		return model.StateUnset
	}
	return c.Cells[e][d]
}

// Set 设置员工 e 第 d 天的状态
func (c *Context) Set(e, d int, s model.State) {
	c.Cells[e][d] = s
}

// Works 员工 e 第 d 天是否出勤
func (c *Context) Works(e, d int) bool {
	return c.State(e, d).IsPost()
}

// WorksOvernight 员工 e 第 d 天是否上通宵类岗位
func (c *Context) WorksOvernight(e, d int) bool {
	s := c.State(e, d)
	return s.IsPost() && c.overnight[s]
}

// IsOvernightPost 岗位 p 是否为通宵类
func (c *Context) IsOvernightPost(p int) bool {
	return c.overnight[p]
}

// IsRest 员工 e 第 d 天是否补休
func (c *Context) IsRest(e, d int) bool {
	return c.State(e, d) == model.StateRest
}

// PostCount 第 d 天岗位 p 的在岗人数
func (c *Context) PostCount(d, p int) int {
	n := 0
	for e := range c.Cells {
		if c.Cells[e][d] == model.State(p) {
			n++
		}
	}
	return n
}

// DutyDays 员工 e 本月出勤天数
func (c *Context) DutyDays(e int) int {
	n := 0
	for d := 0; d < c.Days; d++ {
		if c.Works(e, d) {
			n++
		}
	}
	return n
}

// EmployeeName 返回员工名称
func (c *Context) EmployeeName(e int) string {
	return c.Employees[e].Name
}

// TailWorked 员工 e 在上月相对日 rel 是否出勤
func (c *Context) TailWorked(e, rel int) bool {
	return c.Tail.Worked(c.Employees[e].Name, rel)
}

// Grid 将当前排班表固化为结果表
func (c *Context) Grid() *model.Grid {
	names := make([]string, len(c.Employees))
	for i, e := range c.Employees {
		names[i] = e.Name
	}
	return model.NewGrid(names, c.Posts, c.Cells)
}

// DayLabel 返回第 d 天（从0开始）的显示名称
func DayLabel(d int) string {
	return fmt.Sprintf("%d日", d+1)
}
