// Package profile 定义逐级放宽的约束配置
package profile

import (
	"fmt"
	"strings"
)

// ExhaustedLevel 所有级别均无解时报告的级别
const ExhaustedLevel = 99

const (
	baseMaxLevel   = 3
	customMaxLevel = 5
)

// 隔日岗位偏离惩罚，随放宽级别递减（0级为硬约束）
var alternatingPenalty = [customMaxLevel + 1]int{0, 10000, 5000, 1000, 100, 100}

var notes = [customMaxLevel + 1]string{
	"",
	"双通宵均衡放宽",
	"机动人员全面启用(惩罚降低)",
	"部分休假转为出勤",
	"高级约束放宽(连续/个人规则)",
	"紧急模式",
}

// Weights 软约束权重
type Weights struct {
	Relief        int `yaml:"relief" json:"relief" validate:"gte=0"`                   // 机动人员使用
	Leave         int `yaml:"leave" json:"leave" validate:"gte=0"`                     // 休假未满足
	DoubleDuty    int `yaml:"double_duty" json:"double_duty" validate:"gte=0"`         // 每次双通宵
	DoubleDutyGap int `yaml:"double_duty_gap" json:"double_duty_gap" validate:"gte=0"` // 双通宵次数极差
	Preference    int `yaml:"preference" json:"preference" validate:"gte=0"`           // 岗位偏好
	CrossMonth    int `yaml:"cross_month" json:"cross_month" validate:"gte=0"`         // 跨月双通宵
	DutyLoadGap   int `yaml:"duty_load_gap" json:"duty_load_gap" validate:"gte=0"`     // 出勤天数极差
	CustomRule    int `yaml:"custom_rule" json:"custom_rule" validate:"gte=0"`         // 个人规则违反
}

// DefaultWeights 返回默认权重
func DefaultWeights() Weights {
	return Weights{
		Relief:        10,
		Leave:         50,
		DoubleDuty:    15,
		DoubleDutyGap: 30,
		Preference:    5,
		CrossMonth:    20,
		DutyLoadGap:   40,
		CustomRule:    30,
	}
}

// Profile 某一放宽级别的约束配置，按值传递，构造后不再修改
// 权重为 0 表示该软约束不参与
type Profile struct {
	Level int    `json:"level"`
	Note  string `json:"note,omitempty"`

	AlternatingHard   bool `json:"alternating_hard"`
	AlternatingWeight int  `json:"alternating_weight,omitempty"`

	CrossMonthHard   bool `json:"cross_month_hard"`
	CrossMonthWeight int  `json:"cross_month_weight,omitempty"`

	DoubleDutyWeight    int  `json:"double_duty_weight"`
	FourInARow          bool `json:"four_in_a_row"`
	DoubleDutyGapWeight int  `json:"double_duty_gap_weight"`
	DutyLoadGapWeight   int  `json:"duty_load_gap_weight"`

	BackupWeight     int `json:"backup_weight"`
	LeaveWeight      int `json:"leave_weight"`
	PreferenceWeight int `json:"preference_weight"`

	CustomHard   bool `json:"custom_hard"`
	CustomWeight int  `json:"custom_weight,omitempty"`

	Priority  bool `json:"priority"`
	Sacrifice int  `json:"sacrifice"` // 预先剔除的休假申请数
}

// At 返回第 level 级的配置，超出范围时取最近的有效级别
func At(level int, w Weights) Profile {
	if level < 0 {
		level = 0
	}
	if level > customMaxLevel {
		level = customMaxLevel
	}

	p := Profile{
		Level:             level,
		Note:              notes[level],
		AlternatingHard:   level == 0,
		AlternatingWeight: alternatingPenalty[level],
		CrossMonthHard:    level == 0,
		BackupWeight:      w.Relief,
		LeaveWeight:       w.Leave,
		CustomHard:        level < 4,
		Priority:          level < 5,
	}
	if level > 0 {
		p.CrossMonthWeight = w.CrossMonth
	}
	if level < 3 {
		p.DoubleDutyWeight = w.DoubleDuty
	}
	if level == 0 {
		p.FourInARow = true
		p.DoubleDutyGapWeight = w.DoubleDutyGap
		p.PreferenceWeight = w.Preference
	}
	if level < 2 {
		p.DutyLoadGapWeight = w.DutyLoadGap
	} else {
		p.BackupWeight = 1
	}
	if level >= 3 {
		p.LeaveWeight = atLeastOne(w.Leave / 10)
		p.Sacrifice = 2
	}
	switch level {
	case 4:
		p.CustomWeight = w.CustomRule
	case 5:
		p.CustomWeight = atLeastOne(w.CustomRule / 10)
	}
	return p
}

// MaxLevel 最高放宽级别，存在个人规则时扩展到5级
func MaxLevel(custom bool) int {
	if custom {
		return customMaxLevel
	}
	return baseMaxLevel
}

// Ladder 按级别升序返回全部配置
func Ladder(w Weights, custom bool) []Profile {
	max := MaxLevel(custom)
	out := make([]Profile, 0, max+1)
	for level := 0; level <= max; level++ {
		out = append(out, At(level, w))
	}
	return out
}

// Strict 是否为最严格级别
func (p Profile) Strict() bool {
	return p.Level == 0
}

// Describe 返回该级别约束强度的可读描述
func (p Profile) Describe() string {
	var parts []string
	if p.AlternatingHard {
		parts = append(parts, "隔日岗位:硬")
	} else {
		parts = append(parts, fmt.Sprintf("隔日岗位:%d", p.AlternatingWeight))
	}
	if p.CrossMonthHard {
		parts = append(parts, "跨月双通宵:硬")
	} else {
		parts = append(parts, fmt.Sprintf("跨月双通宵:%d", p.CrossMonthWeight))
	}
	parts = append(parts,
		fmt.Sprintf("双通宵:%s", weightLabel(p.DoubleDutyWeight)),
		fmt.Sprintf("连续双通宵禁止:%s", onOff(p.FourInARow)),
		fmt.Sprintf("双通宵均衡:%s", weightLabel(p.DoubleDutyGapWeight)),
		fmt.Sprintf("出勤均衡:%s", weightLabel(p.DutyLoadGapWeight)),
		fmt.Sprintf("机动:%d", p.BackupWeight),
		fmt.Sprintf("休假:%d", p.LeaveWeight),
		fmt.Sprintf("偏好:%s", weightLabel(p.PreferenceWeight)),
	)
	if p.CustomHard {
		parts = append(parts, "个人规则:硬")
	} else {
		parts = append(parts, fmt.Sprintf("个人规则:%d", p.CustomWeight))
	}
	parts = append(parts, fmt.Sprintf("优先级:%s", onOff(p.Priority)))
	if p.Sacrifice > 0 {
		parts = append(parts, fmt.Sprintf("剔除休假:%d", p.Sacrifice))
	}
	return strings.Join(parts, " ")
}

func weightLabel(w int) string {
	if w == 0 {
		return "关"
	}
	return fmt.Sprintf("%d", w)
}

func onOff(b bool) string {
	if b {
		return "开"
	}
	return "关"
}

func atLeastOne(v int) int {
	if v < 1 {
		return 1
	}
	return v
}
