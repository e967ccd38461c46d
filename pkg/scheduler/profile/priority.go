package profile

import "github.com/paiban/dutyroster/pkg/model"

// PriorityTable 优先级到惩罚（负值为奖励）的映射
type PriorityTable map[model.Priority]int

// DefaultPriorityTable 返回默认优先级映射
func DefaultPriorityTable() PriorityTable {
	return PriorityTable{
		model.PriorityLow:      25,
		model.PriorityMedium:   10,
		model.PriorityElevated: 5,
		model.PriorityHigh:     0,
		model.PriorityHighest:  -5,
	}
}

// Merge 用 override 覆盖默认值，返回新表
func (t PriorityTable) Merge(override PriorityTable) PriorityTable {
	out := make(PriorityTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range override {
		if k == model.PriorityForbidden {
			continue
		}
		out[k] = v
	}
	return out
}
