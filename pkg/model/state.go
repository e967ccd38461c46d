package model

import (
	"encoding/json"
)

// State 员工某日的状态，非负值为岗位下标
type State int

const (
	StateLeave State = -1 // 休假（也是空闲状态）
	StateRest  State = -2 // 通宵后补休
	StateUnset State = -3 // 求解过程中未赋值
)

// 状态标签
const (
	LabelLeave    = "休假"
	LabelRest     = "补休"
	LabelUnfilled = "未填"
)

// IsPost 是否为出勤岗位
func (s State) IsPost() bool {
	return s >= 0
}

// Label 返回状态标签
func (s State) Label(posts []Post) string {
	switch {
	case s == StateLeave:
		return LabelLeave
	case s == StateRest:
		return LabelRest
	case s >= 0 && int(s) < len(posts):
		return posts[s].Name
	}
	return "?"
}

// Grid 排班结果表（员工 × 日），创建后不可变
type Grid struct {
	employees []string
	posts     []Post
	cells     [][]State
}

// NewGrid 创建排班结果表，复制传入的数据
func NewGrid(employees []string, posts []Post, cells [][]State) *Grid {
	g := &Grid{
		employees: append([]string(nil), employees...),
		posts:     append([]Post(nil), posts...),
		cells:     make([][]State, len(cells)),
	}
	for i, row := range cells {
		g.cells[i] = append([]State(nil), row...)
	}
	return g
}

// Employees 返回员工名单
func (g *Grid) Employees() []string {
	return append([]string(nil), g.employees...)
}

// Posts 返回岗位列表
func (g *Grid) Posts() []Post {
	return append([]Post(nil), g.posts...)
}

// Days 返回天数
func (g *Grid) Days() int {
	if len(g.cells) == 0 {
		return 0
	}
	return len(g.cells[0])
}

// At 返回员工 e 在第 d 天（从0开始）的状态
func (g *Grid) At(e, d int) State {
	return g.cells[e][d]
}

// Label 返回员工 e 在第 d 天的标签
func (g *Grid) Label(e, d int) string {
	return g.cells[e][d].Label(g.posts)
}

// Row 返回员工整月状态的副本
func (g *Grid) Row(e int) []State {
	return append([]State(nil), g.cells[e]...)
}

// Cells 返回全部状态的副本
func (g *Grid) Cells() [][]State {
	out := make([][]State, len(g.cells))
	for i := range g.cells {
		out[i] = g.Row(i)
	}
	return out
}

// PostCount 返回第 d 天岗位 p 的在岗人数
func (g *Grid) PostCount(d, p int) int {
	n := 0
	for e := range g.cells {
		if g.cells[e][d] == State(p) {
			n++
		}
	}
	return n
}

// GridRow 排班表的一行
type GridRow struct {
	Employee string   `json:"employee"`
	Shifts   []string `json:"shifts"`
}

// Rows 返回标签形式的排班表
func (g *Grid) Rows() []GridRow {
	rows := make([]GridRow, len(g.employees))
	for e, name := range g.employees {
		labels := make([]string, g.Days())
		for d := range labels {
			labels[d] = g.Label(e, d)
		}
		rows[e] = GridRow{Employee: name, Shifts: labels}
	}
	return rows
}

// MarshalJSON 以标签形式序列化
func (g *Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Days int       `json:"days"`
		Rows []GridRow `json:"rows"`
	}{Days: g.Days(), Rows: g.Rows()})
}
