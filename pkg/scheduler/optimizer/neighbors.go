package optimizer

import (
	"math/rand"

	"github.com/paiban/dutyroster/pkg/model"
	"github.com/paiban/dutyroster/pkg/scheduler/constraint"
)

// MoveType 邻域移动类型
type MoveType int

const (
	MoveSegmentSwap MoveType = iota // 交换两名员工一段日期的排班
	MoveSuffixSwap                  // 交换两名员工从某天起到月末的排班
	MoveReplace                     // 由空闲员工顶替某天的在岗员工
	MoveToggle                      // 切换隔日岗位某天是否有人值守
)

// weightedMove 带权重的移动类型（有序，保证同一种子下结果可复现）
type weightedMove struct {
	move   MoveType
	weight float64
}

// NeighborhoodGenerator 邻域生成器
type NeighborhoodGenerator struct {
	rng         *rand.Rand
	moveWeights []weightedMove
}

// NewNeighborhoodGenerator 创建邻域生成器
func NewNeighborhoodGenerator(rng *rand.Rand) *NeighborhoodGenerator {
	return &NeighborhoodGenerator{
		rng: rng,
		moveWeights: []weightedMove{
			{MoveSegmentSwap, 0.35},
			{MoveSuffixSwap, 0.20},
			{MoveReplace, 0.35},
			{MoveToggle, 0.10},
		},
	}
}

// GenerateNeighbor 生成邻域解，无法生成时返回 nil
// 生成的解不保证满足硬约束
func (n *NeighborhoodGenerator) GenerateNeighbor(sc *constraint.Context, current *Solution) *Solution {
	if current == nil || len(current.Cells) < 2 || sc.Days == 0 {
		return nil
	}

	switch n.selectMoveType() {
	case MoveSegmentSwap:
		return n.generateSegmentSwap(current, sc.Days)
	case MoveSuffixSwap:
		return n.generateSuffixSwap(current, sc.Days)
	case MoveReplace:
		return n.generateReplace(sc, current)
	case MoveToggle:
		return n.generateToggle(sc, current)
	default:
		return n.generateSegmentSwap(current, sc.Days)
	}
}

// selectMoveType 按权重选择移动类型
func (n *NeighborhoodGenerator) selectMoveType() MoveType {
	r := n.rng.Float64()
	cumulative := 0.0

	for _, wm := range n.moveWeights {
		cumulative += wm.weight
		if r < cumulative {
			return wm.move
		}
	}

	return MoveSegmentSwap
}

// pickPair 随机选择两名不同员工
func (n *NeighborhoodGenerator) pickPair(employees int) (int, int) {
	i := n.rng.Intn(employees)
	j := n.rng.Intn(employees - 1)
	if j >= i {
		j++
	}
	return i, j
}

// swapRange 交换两行在 [from, to] 内的状态
func swapRange(cells [][]model.State, i, j, from, to int) {
	for d := from; d <= to; d++ {
		cells[i][d], cells[j][d] = cells[j][d], cells[i][d]
	}
}

// generateSegmentSwap 生成分段交换移动
// 每天各岗位人数不变，只改变由谁值守
func (n *NeighborhoodGenerator) generateSegmentSwap(current *Solution, days int) *Solution {
	neighbor := current.Clone()
	i, j := n.pickPair(len(neighbor.Cells))

	from := n.rng.Intn(days)
	to := from + n.rng.Intn(4)
	if to >= days {
		to = days - 1
	}
	swapRange(neighbor.Cells, i, j, from, to)
	return neighbor
}

// generateSuffixSwap 生成后缀交换移动
func (n *NeighborhoodGenerator) generateSuffixSwap(current *Solution, days int) *Solution {
	neighbor := current.Clone()
	i, j := n.pickPair(len(neighbor.Cells))
	swapRange(neighbor.Cells, i, j, n.rng.Intn(days), days-1)
	return neighbor
}

// generateReplace 生成顶替移动
// 在岗员工改为休假，原休假员工接岗；通宵岗位同时修正次日补休
func (n *NeighborhoodGenerator) generateReplace(sc *constraint.Context, current *Solution) *Solution {
	cells := current.Cells
	d := n.rng.Intn(sc.Days)

	var workers, idle []int
	for e := range cells {
		switch {
		case cells[e][d].IsPost():
			workers = append(workers, e)
		case cells[e][d] == model.StateLeave:
			idle = append(idle, e)
		}
	}
	if len(workers) == 0 || len(idle) == 0 {
		return nil
	}

	neighbor := current.Clone()
	w := workers[n.rng.Intn(len(workers))]
	r := idle[n.rng.Intn(len(idle))]
	post := neighbor.Cells[w][d]
	neighbor.Cells[r][d] = post
	neighbor.Cells[w][d] = model.StateLeave

	if sc.IsOvernightPost(int(post)) && d+1 < sc.Days {
		if neighbor.Cells[w][d+1] == model.StateRest {
			neighbor.Cells[w][d+1] = model.StateLeave
		}
		if neighbor.Cells[r][d+1] == model.StateLeave {
			neighbor.Cells[r][d+1] = model.StateRest
		}
	}
	return neighbor
}

// generateToggle 生成隔日岗位切换移动
func (n *NeighborhoodGenerator) generateToggle(sc *constraint.Context, current *Solution) *Solution {
	var alternating []int
	for p, post := range sc.Posts {
		if post.Alternating {
			alternating = append(alternating, p)
		}
	}
	if len(alternating) == 0 {
		return nil
	}

	p := model.State(alternating[n.rng.Intn(len(alternating))])
	d := n.rng.Intn(sc.Days)
	neighbor := current.Clone()

	var idle []int
	for e := range neighbor.Cells {
		switch neighbor.Cells[e][d] {
		case p:
			// 有人值守则撤下
			neighbor.Cells[e][d] = model.StateLeave
			return neighbor
		case model.StateLeave:
			idle = append(idle, e)
		}
	}
	if len(idle) == 0 {
		return nil
	}
	neighbor.Cells[idle[n.rng.Intn(len(idle))]][d] = p
	return neighbor
}
