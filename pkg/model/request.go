package model

// Direction 岗位偏好方向
type Direction string

const (
	DirectionDesire Direction = "desire" // 希望
	DirectionAvoid  Direction = "avoid"  // 回避
)

// LeaveRequest 休假申请，Day 从1开始
type LeaveRequest struct {
	Employee string `json:"employee"`
	Day      int    `json:"day"`
}

// PostPreference 岗位偏好，Day 从1开始
type PostPreference struct {
	Employee  string    `json:"employee"`
	Day       int       `json:"day"`
	Post      string    `json:"post"`
	Direction Direction `json:"direction"`
}

// TailFlags 上月末出勤标记：相对日(-1,-2,-3) -> 是否出勤
// 未填写的相对日不出现在映射中
type TailFlags map[int]bool

// Tail 上月末数据：员工名 -> 出勤标记
type Tail map[string]TailFlags

// Worked 员工在相对日 rel 是否出勤（未知视为未出勤）
func (t Tail) Worked(employee string, rel int) bool {
	return t[employee][rel]
}

// Known 员工在相对日 rel 是否有记录
func (t Tail) Known(employee string, rel int) bool {
	_, ok := t[employee][rel]
	return ok
}

// WorkedCount 相对日 rel 出勤的人数
func (t Tail) WorkedCount(rel int) int {
	n := 0
	for _, flags := range t {
		if flags[rel] {
			n++
		}
	}
	return n
}
