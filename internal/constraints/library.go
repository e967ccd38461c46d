// Package constraints 约束库：每类排班约束的说明及其在各放宽级别下的强度
package constraints

import (
	"time"

	"github.com/paiban/dutyroster/pkg/model"
	"github.com/paiban/dutyroster/pkg/scheduler/builder"
	"github.com/paiban/dutyroster/pkg/scheduler/constraint"
	"github.com/paiban/dutyroster/pkg/scheduler/profile"
)

// 强度
const (
	StrengthHard = "hard"
	StrengthSoft = "soft"
	StrengthOff  = "off"
)

// Definition 约束定义
type Definition struct {
	Type        constraint.Type `json:"type"`
	DisplayName string          `json:"display_name"`
	Group       string          `json:"group"`
	Description string          `json:"description"`
	Condition   string          `json:"condition,omitempty"` // 出现在模型中的前提
}

// LevelSetting 约束在某一放宽级别下的强度
type LevelSetting struct {
	Level    int    `json:"level"`
	Strength string `json:"strength"`
	Weight   int    `json:"weight,omitempty"`
}

// Entry 约束库条目
type Entry struct {
	Definition
	Levels []LevelSetting `json:"levels"`
}

var definitions = []Definition{
	// 结构
	{
		Type:        constraint.TypeSingleState,
		DisplayName: "每日单一状态",
		Group:       "结构",
		Description: "每名员工每天只能处于一个岗位、补休或休假之一。",
	},
	{
		Type:        constraint.TypePostCoverage,
		DisplayName: "岗位每日一人",
		Group:       "结构",
		Description: "非隔日岗位每天恰好由一人值守。",
	},
	{
		Type:        constraint.TypeAlternatingPost,
		DisplayName: "隔日岗位",
		Group:       "结构",
		Description: "隔日岗位在值守日由一人值守，非值守日无人；任何级别都不会超过一人。",
		Condition:   "存在隔日岗位",
	},
	{
		Type:        constraint.TypeRestAfterOvernight,
		DisplayName: "通宵后补休",
		Group:       "结构",
		Description: "通宵类岗位的次日必须补休。",
	},
	{
		Type:        constraint.TypeEarnedRest,
		DisplayName: "补休须有前一日通宵",
		Group:       "结构",
		Description: "补休只能出现在通宵类岗位的次日。",
	},
	{
		Type:        constraint.TypeNoConsecutiveRest,
		DisplayName: "禁止连续补休",
		Group:       "结构",
		Description: "不允许连续两天补休。",
	},
	{
		Type:        constraint.TypePostExclusion,
		DisplayName: "禁排岗位",
		Group:       "结构",
		Description: "优先级为禁止的员工与岗位组合在任何级别都不会出现。",
	},

	// 跨月
	{
		Type:        constraint.TypeCrossMonthRest,
		DisplayName: "跨月补休",
		Group:       "跨月",
		Description: "上月最后一天值通宵的员工，本月1日必须补休。",
		Condition:   "提供了上月末班次",
	},
	{
		Type:        constraint.TypeTripleDuty,
		DisplayName: "禁止三通宵",
		Group:       "跨月",
		Description: "上月倒数第3天与最后一天均出勤的员工，本月1日禁止出勤；任何级别都不解除。",
		Condition:   "提供了上月末班次",
	},
	{
		Type:        constraint.TypeCrossMonthDoubleDuty,
		DisplayName: "跨月双通宵",
		Group:       "跨月",
		Description: "上月倒数第二天出勤的员工，本月1日不得出勤；放宽后按权重惩罚。",
		Condition:   "提供了上月末班次",
	},

	// 双通宵与均衡
	{
		Type:        constraint.TypeDoubleDuty,
		DisplayName: "双通宵",
		Group:       "双通宵与均衡",
		Description: "同一员工隔一天再次出勤（任意岗位）每出现一次计一次惩罚。",
	},
	{
		Type:        constraint.TypeFourInARow,
		DisplayName: "禁止连续双通宵",
		Group:       "双通宵与均衡",
		Description: "不允许隔日连续三次出勤（d、d+2、d+4）。",
	},
	{
		Type:        constraint.TypeDoubleDutyBalance,
		DisplayName: "双通宵均衡",
		Group:       "双通宵与均衡",
		Description: "非机动员工之间双通宵次数的最大差距。",
	},
	{
		Type:        constraint.TypeDutyLoadBalance,
		DisplayName: "出勤均衡",
		Group:       "双通宵与均衡",
		Description: "非机动员工之间出勤天数的最大差距。",
	},

	// 申请与偏好
	{
		Type:        constraint.TypeBackupUsage,
		DisplayName: "机动人员使用",
		Group:       "申请与偏好",
		Description: "机动人员每出勤一天计一次惩罚。",
	},
	{
		Type:        constraint.TypeLeaveRequest,
		DisplayName: "休假申请",
		Group:       "申请与偏好",
		Description: "员工在申请休假的日期被安排岗位时计惩罚。",
		Condition:   "存在休假申请",
	},
	{
		Type:        constraint.TypePostPreference,
		DisplayName: "岗位偏好",
		Group:       "申请与偏好",
		Description: "希望的岗位被满足时奖励，回避的岗位被安排时惩罚。",
		Condition:   "存在岗位偏好",
	},
	{
		Type:        constraint.TypePostPriority,
		DisplayName: "岗位优先级",
		Group:       "申请与偏好",
		Description: "按员工对岗位的优先级查表计惩罚或奖励。",
	},

	// 个人规则
	{
		Type:        constraint.TypeMaxConsecutiveDays,
		DisplayName: "最多连续出勤",
		Group:       "个人规则",
		Description: "员工连续出勤天数不超过个人上限。",
		Condition:   "有员工设置了个人规则",
	},
	{
		Type:        constraint.TypeForbiddenDays,
		DisplayName: "个人禁排日",
		Group:       "个人规则",
		Description: "员工在个人禁排日不出勤。",
		Condition:   "有员工设置了个人规则",
	},
	{
		Type:        constraint.TypeRestAfterPost,
		DisplayName: "指定岗位后补休",
		Group:       "个人规则",
		Description: "员工值指定岗位后次日补休。",
		Condition:   "有员工设置了个人规则",
	},
}

// Definitions 返回全部约束定义
func Definitions() []Definition {
	return append([]Definition(nil), definitions...)
}

// Lookup 按类型查找约束定义
func Lookup(t constraint.Type) (Definition, bool) {
	for _, d := range definitions {
		if d.Type == t {
			return d, true
		}
	}
	return Definition{}, false
}

// Library 按输入逐级构造模型，给出每类约束在各放宽级别下的强度
func Library(in *builder.Input) ([]Entry, error) {
	b := builder.New()
	ladder := profile.Ladder(in.Weights, in.HasCustomRules())

	entries := make([]Entry, len(definitions))
	for i, def := range definitions {
		entries[i] = Entry{Definition: def, Levels: make([]LevelSetting, 0, len(ladder))}
	}

	for _, p := range ladder {
		m, err := b.Build(in, p)
		if err != nil {
			return nil, err
		}
		for i, def := range definitions {
			setting := LevelSetting{Level: p.Level, Strength: StrengthOff}
			if c := m.Manager.GetConstraint(def.Type); c != nil {
				if c.Category() == constraint.CategoryHard {
					setting.Strength = StrengthHard
				} else {
					setting.Strength = StrengthSoft
					setting.Weight = c.Weight()
				}
			}
			entries[i].Levels = append(entries[i].Levels, setting)
		}
	}
	return entries, nil
}

// SampleInput 覆盖全部约束类型的示例排班输入
func SampleInput(w profile.Weights, priorities profile.PriorityTable) *builder.Input {
	lead := model.NewEmployee("甲")
	lead.Rules = &model.CustomRules{MaxConsecutiveDays: 3, ForbiddenDays: []int{1}, RestAfterPosts: []string{"门岗"}}
	backup := model.NewEmployee("机动")
	backup.Backup = true

	return &builder.Input{
		Year:      2024,
		Month:     time.June,
		Employees: []*model.Employee{lead, model.NewEmployee("乙"), model.NewEmployee("丙"), backup},
		Posts: []model.Post{
			{Name: "值班", Category: model.CategoryOvernight, Hours: 16},
			{Name: "门岗", Category: model.CategoryDay, Hours: 8, Alternating: true},
		},
		Leaves: []model.LeaveRequest{
			{Employee: "乙", Day: 5}, {Employee: "乙", Day: 6}, {Employee: "乙", Day: 7},
		},
		Preferences: []model.PostPreference{
			{Employee: "丙", Day: 3, Post: "值班", Direction: model.DirectionDesire},
		},
		Tail:       model.Tail{"甲": {-1: true, -2: false}},
		Priorities: priorities,
		Weights:    w,
	}
}
