// Package solver 提供排班求解器
package solver

import (
	"context"
	"time"

	"github.com/paiban/dutyroster/pkg/model"
	"github.com/paiban/dutyroster/pkg/scheduler/constraint"
)

// Status 求解状态
type Status string

const (
	StatusOptimal    Status = "optimal"    // 达到目标下界
	StatusFeasible   Status = "feasible"   // 找到可行解
	StatusInfeasible Status = "infeasible" // 搜索树穷尽且无解
	StatusTimeout    Status = "timeout"    // 超时未找到可行解
	StatusUnknown    Status = "unknown"    // 剪枝后穷尽，无法判定
)

// Solved 是否得到可用的排班
func (s Status) Solved() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// Problem 待求解的问题：约束集合与工作上下文
type Problem struct {
	Context *constraint.Context
	Manager *constraint.Manager
}

// Result 求解结果
type Result struct {
	Status    Status          `json:"status"`
	Cells     [][]model.State `json:"-"`
	Objective int             `json:"objective"`
	Nodes     int             `json:"nodes"`
	Duration  time.Duration   `json:"duration"`
}

// Solver 求解器接口
type Solver interface {
	// Name 返回求解器名称
	Name() string

	// Solve 在 timeout 内求解，超时或无解通过 Status 表达而不是错误
	Solve(ctx context.Context, p *Problem, timeout time.Duration) (*Result, error)
}
