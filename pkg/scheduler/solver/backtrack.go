package solver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/paiban/dutyroster/pkg/logger"
	"github.com/paiban/dutyroster/pkg/model"
	"github.com/paiban/dutyroster/pkg/scheduler/constraint"
	"github.com/paiban/dutyroster/pkg/scheduler/optimizer"
)

// Config 回溯求解器配置
type Config struct {
	BranchLimit int                           // 每天最多尝试的候选列数
	MaxNodes    int                           // 搜索节点上限，0 表示不限
	Optimize    bool                          // 找到可行解后是否做局部搜索
	Optimizer   *optimizer.OptimizationConfig // 局部搜索配置
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		BranchLimit: 48,
		MaxNodes:    200000,
		Optimize:    true,
		Optimizer:   optimizer.DefaultOptConfig(),
	}
}

// BacktrackSolver 逐日深度优先搜索的回溯求解器
// 每天按代价从小到大枚举整列分配，得到首个完整排班后交给局部搜索改进
type BacktrackSolver struct {
	config Config
	logger *logger.SchedulerLogger
}

// NewBacktrackSolver 创建回溯求解器
func NewBacktrackSolver(config Config) *BacktrackSolver {
	if config.BranchLimit <= 0 {
		config.BranchLimit = DefaultConfig().BranchLimit
	}
	return &BacktrackSolver{
		config: config,
		logger: logger.NewComponentLogger("solver"),
	}
}

// Name 返回求解器名称
func (s *BacktrackSolver) Name() string {
	return "BacktrackSolver"
}

// errDeadline 搜索因超时或取消中止
var errDeadline = errors.New("搜索超时")

// Solve 求解排班
func (s *BacktrackSolver) Solve(ctx context.Context, p *Problem, timeout time.Duration) (*Result, error) {
	if p == nil || p.Context == nil || p.Manager == nil {
		return nil, fmt.Errorf("求解问题不完整")
	}
	start := time.Now()

	sc := p.Context.Clone()
	sc.Reset()

	st := &search{
		ctx:         ctx,
		sc:          sc,
		manager:     p.Manager,
		branchLimit: s.config.BranchLimit,
		maxNodes:    s.config.MaxNodes,
	}
	if timeout > 0 {
		st.deadline = start.Add(timeout)
	}

	found, err := st.solveDay(0)
	result := &Result{Nodes: st.nodes}

	switch {
	case err != nil:
		result.Status = StatusTimeout
	case !found && st.truncated:
		result.Status = StatusUnknown
	case !found:
		result.Status = StatusInfeasible
	}
	if !found {
		result.Duration = time.Since(start)
		s.logger.Logger().Debug().
			Str("status", string(result.Status)).
			Int("nodes", st.nodes).
			Bool("truncated", st.truncated).
			Msg("回溯搜索未找到可行解")
		return result, nil
	}

	valid, objective := p.Manager.Check(sc)
	if !valid {
		return nil, fmt.Errorf("回溯搜索得到的排班违反硬约束")
	}
	best := &optimizer.Solution{Cells: sc.CopyCells(), Score: objective}

	if s.config.Optimize {
		remaining := time.Duration(0)
		if !st.deadline.IsZero() {
			remaining = time.Until(st.deadline)
		}
		cfg := *s.config.Optimizer
		if remaining > 0 && (cfg.MaxTime == 0 || remaining < cfg.MaxTime) {
			cfg.MaxTime = remaining
		}
		if st.deadline.IsZero() || remaining > 0 {
			opt := optimizer.NewLocalSearchOptimizer(&cfg, p.Manager)
			improved, err := opt.Optimize(ctx, sc.Clone(), best)
			if err == nil && improved.Score <= best.Score {
				best = improved
			}
		}
	}

	result.Cells = best.Cells
	result.Objective = best.Score
	result.Status = StatusFeasible
	if best.Score <= p.Manager.LowerBound(sc) {
		result.Status = StatusOptimal
	}
	result.Duration = time.Since(start)
	return result, nil
}

// search 单次搜索的状态
type search struct {
	ctx         context.Context
	sc          *constraint.Context
	manager     *constraint.Manager
	deadline    time.Time
	branchLimit int
	maxNodes    int

	nodes     int
	truncated bool
}

// option 某员工某天的一个可选状态及其代价
type option struct {
	state model.State
	cost  int
}

// column 某天全体员工的一组状态
type column struct {
	states []model.State
	cost   int
}

// expired 是否超时或被取消
func (st *search) expired() bool {
	if st.ctx.Err() != nil {
		return true
	}
	return !st.deadline.IsZero() && time.Now().After(st.deadline)
}

// solveDay 为第 d 天及之后的日期赋值
func (st *search) solveDay(d int) (bool, error) {
	if d == st.sc.Days {
		return true, nil
	}
	if st.expired() {
		return false, errDeadline
	}

	for _, col := range st.columns(d) {
		if st.maxNodes > 0 && st.nodes >= st.maxNodes {
			st.truncated = true
			break
		}
		st.nodes++

		for e, s := range col.states {
			st.sc.Set(e, d, s)
		}
		if ok, _ := st.manager.EvaluateDay(st.sc, d); !ok {
			continue
		}

		found, err := st.solveDay(d + 1)
		if err != nil || found {
			return found, err
		}
	}

	for e := range st.sc.Employees {
		st.sc.Set(e, d, model.StateUnset)
	}
	return false, nil
}

// domains 计算第 d 天每名员工满足行约束的岗位选项与最佳空闲状态
func (st *search) domains(d int) ([][]option, []option, []bool) {
	n := len(st.sc.Employees)
	posts := make([][]option, n)
	idle := make([]option, n)
	hasIdle := make([]bool, n)

	for e := 0; e < n; e++ {
		for p := range st.sc.Posts {
			if ok, cost := st.evaluate(e, d, model.State(p)); ok {
				posts[e] = append(posts[e], option{state: model.State(p), cost: cost})
			}
		}
		// 休假优先于补休
		for _, s := range []model.State{model.StateLeave, model.StateRest} {
			ok, cost := st.evaluate(e, d, s)
			if ok && (!hasIdle[e] || cost < idle[e].cost) {
				idle[e] = option{state: s, cost: cost}
				hasIdle[e] = true
			}
		}
		st.sc.Set(e, d, model.StateUnset)
	}
	return posts, idle, hasIdle
}

// evaluate 试探性赋值并评估行约束
func (st *search) evaluate(e, d int, s model.State) (bool, int) {
	st.sc.Set(e, d, s)
	return st.manager.EvaluateCell(st.sc, e, d)
}

// slotPlan 一种岗位人数组合
type slotPlan struct {
	slots []int // 需要有人值守的岗位（可重复）
	cost  int   // 人数偏离目标的惩罚
}

// plans 枚举第 d 天各岗位人数组合
func (st *search) plans(d int) []slotPlan {
	plans := []slotPlan{{}}
	for p := range st.sc.Posts {
		demand, ok := st.manager.Demand(st.sc, d, p)
		type choice struct{ count, cost int }
		choices := []choice{{0, 0}}
		if ok {
			choices = []choice{{demand.Target, 0}}
			if !demand.Hard {
				// 隔日岗位至多一人，放宽时只在 0 与 1 之间切换
				alt := 1 - demand.Target
				if alt >= 0 && alt <= 1 {
					choices = append(choices, choice{alt, demand.Penalty})
				}
			}
		}

		next := make([]slotPlan, 0, len(plans)*len(choices))
		for _, pl := range plans {
			for _, c := range choices {
				slots := append([]int(nil), pl.slots...)
				for i := 0; i < c.count; i++ {
					slots = append(slots, p)
				}
				next = append(next, slotPlan{slots: slots, cost: pl.cost + c.cost})
			}
		}
		plans = next
	}
	sort.SliceStable(plans, func(i, j int) bool { return plans[i].cost < plans[j].cost })
	return plans
}

// columns 按代价升序生成第 d 天的候选列
func (st *search) columns(d int) []column {
	posts, idle, hasIdle := st.domains(d)
	n := len(st.sc.Employees)

	// 出勤天数少者优先，保证初始解相对均衡
	duty := make([]int, n)
	for e := 0; e < n; e++ {
		for k := 0; k < d; k++ {
			if st.sc.Works(e, k) {
				duty[e]++
			}
		}
	}

	idleCost := 0
	for e := 0; e < n; e++ {
		if hasIdle[e] {
			idleCost += idle[e].cost
		}
	}

	genCap := st.branchLimit * 4
	var out []column
	capped := false

	for _, plan := range st.plans(d) {
		g := &columnGen{
			posts: posts, idle: idle, hasIdle: hasIdle, duty: duty,
			slots: orderSlots(plan.slots, posts), used: make([]bool, n),
			assign: make([]model.State, n), limit: genCap,
		}
		for e := range g.assign {
			g.assign[e] = model.StateUnset
		}
		g.run(0, idleCost+plan.cost, &out)
		if g.capped || len(out) >= genCap {
			capped = true
			break
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].cost < out[j].cost })
	if capped || len(out) > st.branchLimit {
		st.truncated = true
	}
	if len(out) > st.branchLimit {
		out = out[:st.branchLimit]
	}
	return out
}

// orderSlots 候选人少的岗位先分配
func orderSlots(slots []int, posts [][]option) []int {
	candidates := make(map[int]int)
	for _, opts := range posts {
		for _, o := range opts {
			candidates[int(o.state)]++
		}
	}
	ordered := append([]int(nil), slots...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return candidates[ordered[i]] < candidates[ordered[j]]
	})
	return ordered
}

// columnGen 为一种岗位人数组合枚举员工分配
type columnGen struct {
	posts   [][]option
	idle    []option
	hasIdle []bool
	duty    []int
	slots   []int
	used    []bool
	assign  []model.State
	limit   int
	capped  bool
}

// candidate 某岗位的候选员工
type candidate struct {
	employee int
	marginal int // 相对空闲状态的额外代价
}

// run 依次为每个岗位选人，叶子处补齐空闲员工
func (g *columnGen) run(i, cost int, out *[]column) {
	if g.capped {
		return
	}
	if i == len(g.slots) {
		states := make([]model.State, len(g.assign))
		for e, s := range g.assign {
			if s != model.StateUnset {
				states[e] = s
				continue
			}
			if !g.hasIdle[e] {
				return
			}
			states[e] = g.idle[e].state
		}
		*out = append(*out, column{states: states, cost: cost})
		if len(*out) >= g.limit {
			g.capped = true
		}
		return
	}

	post := g.slots[i]
	var cands []candidate
	for e, opts := range g.posts {
		if g.used[e] {
			continue
		}
		for _, o := range opts {
			if int(o.state) != post {
				continue
			}
			marginal := o.cost
			if g.hasIdle[e] {
				marginal -= g.idle[e].cost
			}
			cands = append(cands, candidate{employee: e, marginal: marginal})
		}
	}
	sort.SliceStable(cands, func(a, b int) bool {
		if cands[a].marginal != cands[b].marginal {
			return cands[a].marginal < cands[b].marginal
		}
		return g.duty[cands[a].employee] < g.duty[cands[b].employee]
	})

	for _, c := range cands {
		g.used[c.employee] = true
		g.assign[c.employee] = model.State(post)
		g.run(i+1, cost+c.marginal, out)
		g.assign[c.employee] = model.StateUnset
		g.used[c.employee] = false
		if g.capped {
			return
		}
	}
}
