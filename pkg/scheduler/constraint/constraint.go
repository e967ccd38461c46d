// Package constraint 定义约束接口和管理器
package constraint

// Type 约束类型标识
type Type string

const (
	// 结构性硬约束
	TypeSingleState        Type = "single_state"
	TypePostCoverage       Type = "post_coverage"
	TypeAlternatingPost    Type = "alternating_post"
	TypeRestAfterOvernight Type = "rest_after_overnight"
	TypeEarnedRest         Type = "earned_rest"
	TypeNoConsecutiveRest  Type = "no_consecutive_rest"
	TypePostExclusion      Type = "post_exclusion"

	// 跨月约束
	TypeCrossMonthRest       Type = "cross_month_rest"
	TypeCrossMonthDoubleDuty Type = "cross_month_double_duty"
	TypeTripleDuty           Type = "triple_duty"

	// 双通宵与公平性
	TypeDoubleDuty        Type = "double_duty"
	TypeFourInARow        Type = "four_in_a_row"
	TypeDoubleDutyBalance Type = "double_duty_balance"
	TypeDutyLoadBalance   Type = "duty_load_balance"

	// 申请与偏好
	TypeBackupUsage    Type = "backup_usage"
	TypeLeaveRequest   Type = "leave_request"
	TypePostPreference Type = "post_preference"
	TypePostPriority   Type = "post_priority"

	// 个人规则
	TypeMaxConsecutiveDays Type = "max_consecutive_days"
	TypeForbiddenDays      Type = "forbidden_days"
	TypeRestAfterPost      Type = "rest_after_post"
)

// Category 约束类别
type Category string

const (
	CategoryHard Category = "hard" // 硬约束（必须满足）
	CategorySoft Category = "soft" // 软约束（尽量满足）
)

// Scope 约束作用范围，决定求解器如何增量评估
type Scope int

const (
	ScopeEmployee Scope = iota // 只涉及单个员工的一行
	ScopeDay                   // 只涉及单日的一列
	ScopeGlobal                // 需要完整排班才能评估
)

// Constraint 约束接口
type Constraint interface {
	// Name 返回约束名称
	Name() string

	// Type 返回约束类型
	Type() Type

	// Category 返回约束类别
	Category() Category

	// Weight 返回约束权重（软约束每次违反的惩罚）
	Weight() int

	// Scope 返回作用范围
	Scope() Scope

	// Evaluate 评估整个排班方案
	// 返回：是否满足、惩罚值、违反详情
	Evaluate(ctx *Context) (valid bool, penalty int, details []ViolationDetail)

	// EvaluateCell 评估员工 e 以第 d 天结尾的约束项
	// 调用时第 d 天及之前已赋值，之后的日期可能未赋值
	EvaluateCell(ctx *Context, e, d int) (valid bool, penalty int)

	// EvaluateDay 评估第 d 天的列约束
	EvaluateDay(ctx *Context, d int) (valid bool, penalty int)
}

// Demand 某日某岗位的在岗人数要求
type Demand struct {
	Target  int  // 目标人数（0或1）
	Hard    bool // 是否必须满足
	Penalty int  // 偏离目标一人的惩罚
}

// CoverageConstraint 提供岗位人数要求的约束
type CoverageConstraint interface {
	Constraint
	// Demand 返回第 d 天岗位 p 的要求，ok=false 表示该岗位不由此约束管理
	Demand(ctx *Context, d, p int) (demand Demand, ok bool)
}

// Bounded 可以给出惩罚下界的约束（含奖励项）
type Bounded interface {
	LowerBound(ctx *Context) int
}

// ViolationDetail 约束违反详情
type ViolationDetail struct {
	ConstraintType Type   `json:"constraint_type"`
	ConstraintName string `json:"constraint_name"`
	Employee       string `json:"employee,omitempty"`
	Day            int    `json:"day,omitempty"` // 从1开始
	Message        string `json:"message"`
	Severity       string `json:"severity"` // error/warning
	Penalty        int    `json:"penalty"`
}

// Result 约束评估结果
type Result struct {
	IsValid        bool              `json:"is_valid"`
	TotalPenalty   int               `json:"total_penalty"`
	HardViolations []ViolationDetail `json:"hard_violations"`
	SoftViolations []ViolationDetail `json:"soft_violations"`
	Score          float64           `json:"score"` // 0-100
}

// CalculateScore 计算约束满足度得分
func (r *Result) CalculateScore(maxPenalty int) {
	if maxPenalty <= 0 || r.TotalPenalty <= 0 {
		r.Score = 100.0
		return
	}
	r.Score = 100.0 * float64(maxPenalty-r.TotalPenalty) / float64(maxPenalty)
	if r.Score < 0 {
		r.Score = 0
	}
}
