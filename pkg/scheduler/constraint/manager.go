package constraint

import (
	"sort"
	"sync"

	"github.com/paiban/dutyroster/pkg/logger"
)

// Manager 约束管理器
type Manager struct {
	constraints []Constraint
	mu          sync.RWMutex
	logger      *logger.SchedulerLogger
}

// NewManager 创建约束管理器
func NewManager() *Manager {
	return &Manager{
		constraints: make([]Constraint, 0),
		logger:      logger.NewSchedulerLogger(),
	}
}

// Register 注册约束，同类型约束会被替换
func (m *Manager) Register(c Constraint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.constraints {
		if existing.Type() == c.Type() {
			m.constraints[i] = c
			return
		}
	}

	m.constraints = append(m.constraints, c)

	// 按类别和权重排序：硬约束在前，权重高的在前
	sort.SliceStable(m.constraints, func(i, j int) bool {
		ci, cj := m.constraints[i], m.constraints[j]
		if ci.Category() != cj.Category() {
			return ci.Category() == CategoryHard
		}
		return ci.Weight() > cj.Weight()
	})
}

// Unregister 注销约束
func (m *Manager) Unregister(t Type) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, c := range m.constraints {
		if c.Type() == t {
			m.constraints = append(m.constraints[:i], m.constraints[i+1:]...)
			return
		}
	}
}

// GetConstraint 获取约束
func (m *Manager) GetConstraint(t Type) Constraint {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.constraints {
		if c.Type() == t {
			return c
		}
	}
	return nil
}

// GetAll 获取所有约束
func (m *Manager) GetAll() []Constraint {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Constraint, len(m.constraints))
	copy(result, m.constraints)
	return result
}

// GetByCategory 按类别获取约束
func (m *Manager) GetByCategory(cat Category) []Constraint {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []Constraint
	for _, c := range m.constraints {
		if c.Category() == cat {
			result = append(result, c)
		}
	}
	return result
}

// GetByScope 按作用范围获取约束
func (m *Manager) GetByScope(scope Scope) []Constraint {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []Constraint
	for _, c := range m.constraints {
		if c.Scope() == scope {
			result = append(result, c)
		}
	}
	return result
}

// Evaluate 评估所有约束并给出违反详情
func (m *Manager) Evaluate(ctx *Context) *Result {
	constraints := m.GetAll()

	result := &Result{
		IsValid:        true,
		HardViolations: make([]ViolationDetail, 0),
		SoftViolations: make([]ViolationDetail, 0),
	}

	maxPenalty := 0
	for _, c := range constraints {
		valid, penalty, details := c.Evaluate(ctx)

		if c.Category() == CategoryHard {
			if !valid {
				result.IsValid = false
				result.HardViolations = append(result.HardViolations, details...)
				for _, d := range details {
					m.logger.ConstraintViolation(c.Name(), d.Message)
				}
			}
			continue
		}

		// 假设每个软约束最多违反 Days 次
		maxPenalty += c.Weight() * ctx.Days
		result.TotalPenalty += penalty
		result.SoftViolations = append(result.SoftViolations, details...)
	}

	result.CalculateScore(maxPenalty)
	return result
}

// Check 快速检查：硬约束是否全部满足，以及软约束惩罚总和
// 遇到第一个硬约束违反即返回
func (m *Manager) Check(ctx *Context) (bool, int) {
	constraints := m.GetAll()

	total := 0
	for _, c := range constraints {
		valid, penalty, _ := c.Evaluate(ctx)
		if c.Category() == CategoryHard {
			if !valid {
				return false, 0
			}
			continue
		}
		total += penalty
	}
	return true, total
}

// EvaluateCell 增量评估员工 e 以第 d 天结尾的行约束
func (m *Manager) EvaluateCell(ctx *Context, e, d int) (bool, int) {
	return evaluateIncremental(m.GetByScope(ScopeEmployee), func(c Constraint) (bool, int) {
		return c.EvaluateCell(ctx, e, d)
	})
}

// EvaluateDay 增量评估第 d 天的列约束
func (m *Manager) EvaluateDay(ctx *Context, d int) (bool, int) {
	return evaluateIncremental(m.GetByScope(ScopeDay), func(c Constraint) (bool, int) {
		return c.EvaluateDay(ctx, d)
	})
}

// evaluateIncremental 汇总增量评估结果
func evaluateIncremental(constraints []Constraint, eval func(Constraint) (bool, int)) (bool, int) {
	total := 0
	for _, c := range constraints {
		valid, penalty := eval(c)
		if c.Category() == CategoryHard {
			if !valid {
				return false, 0
			}
			continue
		}
		total += penalty
	}
	return true, total
}

// Demand 合并第 d 天岗位 p 的人数要求
// 没有约束管理的岗位返回 ok=false
func (m *Manager) Demand(ctx *Context, d, p int) (Demand, bool) {
	for _, c := range m.GetByScope(ScopeDay) {
		cc, ok := c.(CoverageConstraint)
		if !ok {
			continue
		}
		if demand, ok := cc.Demand(ctx, d, p); ok {
			return demand, true
		}
	}
	return Demand{}, false
}

// LowerBound 目标函数的平凡下界（所有奖励项之和）
func (m *Manager) LowerBound(ctx *Context) int {
	bound := 0
	for _, c := range m.GetAll() {
		if b, ok := c.(Bounded); ok && c.Category() == CategorySoft {
			bound += b.LowerBound(ctx)
		}
	}
	return bound
}

// Clear 清除所有约束
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.constraints = make([]Constraint, 0)
}

// Count 返回约束数量
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.constraints)
}

// Summary 返回约束摘要
func (m *Manager) Summary() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hard := 0
	soft := 0
	names := make([]string, 0, len(m.constraints))
	for _, c := range m.constraints {
		if c.Category() == CategoryHard {
			hard++
		} else {
			soft++
		}
		names = append(names, c.Name())
	}

	return map[string]interface{}{
		"total": len(m.constraints),
		"hard":  hard,
		"soft":  soft,
		"names": names,
	}
}
