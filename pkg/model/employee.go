package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Priority 员工对岗位的优先级
type Priority int

const (
	PriorityForbidden Priority = iota // 禁止（硬排除）
	PriorityLow
	PriorityMedium
	PriorityElevated
	PriorityHigh
	PriorityHighest
)

var priorityNames = [...]string{"forbidden", "low", "medium", "elevated", "high", "highest"}

// String 返回优先级名称
func (p Priority) String() string {
	if p < PriorityForbidden || p > PriorityHighest {
		return fmt.Sprintf("priority(%d)", int(p))
	}
	return priorityNames[p]
}

// ParsePriority 解析优先级名称
func ParsePriority(s string) (Priority, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range priorityNames {
		if n == name {
			return Priority(i), nil
		}
	}
	return PriorityHigh, fmt.Errorf("未知优先级: %q", s)
}

// MarshalText 实现 encoding.TextMarshaler
func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (p *Priority) UnmarshalText(text []byte) error {
	v, err := ParsePriority(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Priorities 返回全部优先级（从禁止到最高）
func Priorities() []Priority {
	return []Priority{PriorityForbidden, PriorityLow, PriorityMedium, PriorityElevated, PriorityHigh, PriorityHighest}
}

// CustomRules 员工个人规则
type CustomRules struct {
	MaxConsecutiveDays int      `json:"max_consecutive_days,omitempty" yaml:"max_consecutive_days,omitempty" validate:"gte=0"`
	ForbiddenDays      []int    `json:"forbidden_days,omitempty" yaml:"forbidden_days,omitempty" validate:"dive,gte=1,lte=31"`
	RestAfterPosts     []string `json:"rest_after_posts,omitempty" yaml:"rest_after_posts,omitempty"`
}

// IsEmpty 是否没有任何个人规则
func (r *CustomRules) IsEmpty() bool {
	return r == nil || (r.MaxConsecutiveDays == 0 && len(r.ForbiddenDays) == 0 && len(r.RestAfterPosts) == 0)
}

// Employee 值班人员
type Employee struct {
	ID         uuid.UUID           `json:"id"`
	Name       string              `json:"name"`
	Backup     bool                `json:"backup,omitempty"`
	Priorities map[string]Priority `json:"priorities,omitempty"` // 岗位名 -> 优先级
	Rules      *CustomRules        `json:"rules,omitempty"`
}

// NewEmployee 创建员工
func NewEmployee(name string) *Employee {
	return &Employee{
		ID:         uuid.New(),
		Name:       name,
		Priorities: make(map[string]Priority),
	}
}

// PriorityFor 返回员工对岗位的优先级，未设置时视为 High
func (e *Employee) PriorityFor(post string) Priority {
	if p, ok := e.Priorities[post]; ok {
		return p
	}
	return PriorityHigh
}

// HasRules 是否设置了个人规则
func (e *Employee) HasRules() bool {
	return !e.Rules.IsEmpty()
}

// backupNames 约定的机动人员名称
var backupNames = map[string]bool{"机动": true, "backup": true}

// BackupIndex 返回机动人员下标
// 优先显式标记，其次约定名称，最后取名单末尾
func BackupIndex(employees []*Employee) int {
	if len(employees) == 0 {
		return -1
	}
	for i, e := range employees {
		if e.Backup {
			return i
		}
	}
	for i, e := range employees {
		if backupNames[strings.ToLower(e.Name)] {
			return i
		}
	}
	return len(employees) - 1
}
