// Package optimizer 提供排班优化算法
package optimizer

import (
	"context"
	"encoding/binary"
	"hash/fnv"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/paiban/dutyroster/pkg/logger"
	"github.com/paiban/dutyroster/pkg/model"
	"github.com/paiban/dutyroster/pkg/scheduler/constraint"
)

// OptimizationConfig 优化配置
type OptimizationConfig struct {
	MaxIterations    int           `json:"max_iterations"`    // 最大迭代次数
	MaxTime          time.Duration `json:"max_time"`          // 最大运行时间
	InitialTemp      float64       `json:"initial_temp"`      // 模拟退火初始温度
	CoolingRate      float64       `json:"cooling_rate"`      // 冷却速率
	TabuSize         int           `json:"tabu_size"`         // 禁忌表大小
	NeighborhoodSize int           `json:"neighborhood_size"` // 邻域大小
	StopOnPlateau    bool          `json:"stop_on_plateau"`   // 平台期停止
	PlateauThreshold int           `json:"plateau_threshold"` // 平台期阈值（无改进迭代次数）
	Seed             int64         `json:"seed"`              // 随机种子
}

// DefaultOptConfig 默认优化配置
func DefaultOptConfig() *OptimizationConfig {
	return &OptimizationConfig{
		MaxIterations:    600,
		MaxTime:          10 * time.Second,
		InitialTemp:      50.0,
		CoolingRate:      0.99,
		TabuSize:         50,
		NeighborhoodSize: 12,
		StopOnPlateau:    true,
		PlateauThreshold: 150,
		Seed:             1,
	}
}

// Solution 表示一个排班方案
type Solution struct {
	Cells [][]model.State
	Score int
}

// Clone 深拷贝解决方案
func (s *Solution) Clone() *Solution {
	clone := &Solution{
		Cells: make([][]model.State, len(s.Cells)),
		Score: s.Score,
	}
	for e, row := range s.Cells {
		clone.Cells[e] = append([]model.State(nil), row...)
	}
	return clone
}

// Evaluator 约束评估器接口，*constraint.Manager 满足该接口
type Evaluator interface {
	Check(ctx *constraint.Context) (bool, int)
}

// LocalSearchOptimizer 局部搜索优化器
// 只接受满足全部硬约束的邻域解
type LocalSearchOptimizer struct {
	config    *OptimizationConfig
	evaluator Evaluator
	neighbors *NeighborhoodGenerator
	tabuList  *TabuList
	rng       *rand.Rand
	logger    *logger.SchedulerLogger
	mu        sync.Mutex
}

// NewLocalSearchOptimizer 创建局部搜索优化器
func NewLocalSearchOptimizer(config *OptimizationConfig, evaluator Evaluator) *LocalSearchOptimizer {
	if config == nil {
		config = DefaultOptConfig()
	}
	rng := rand.New(rand.NewSource(config.Seed))
	return &LocalSearchOptimizer{
		config:    config,
		evaluator: evaluator,
		neighbors: NewNeighborhoodGenerator(rng),
		tabuList:  NewTabuList(config.TabuSize),
		rng:       rng,
		logger:    logger.NewComponentLogger("optimizer"),
	}
}

// Optimize 从可行的初始方案出发优化目标值
// sc 作为评估用的工作区，返回时其排班表内容不确定
func (o *LocalSearchOptimizer) Optimize(ctx context.Context, sc *constraint.Context, initial *Solution) (*Solution, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	start := time.Now()
	o.tabuList.Clear()

	current := initial.Clone()
	best := current.Clone()

	temperature := o.config.InitialTemp
	noImprovementCount := 0
	log := o.logger.Logger()

	log.Debug().
		Int("max_iterations", o.config.MaxIterations).
		Dur("max_time", o.config.MaxTime).
		Int("initial_score", current.Score).
		Msg("开始局部搜索优化")

	for i := 0; i < o.config.MaxIterations; i++ {
		// 检查超时和取消
		select {
		case <-ctx.Done():
			log.Debug().Msg("优化被取消")
			return best, ctx.Err()
		default:
		}

		if o.config.MaxTime > 0 && time.Since(start) > o.config.MaxTime {
			log.Debug().Msg("达到最大运行时间")
			break
		}

		bestNeighbor := o.bestNeighbor(sc, current)
		if bestNeighbor == nil {
			noImprovementCount++
			if o.config.StopOnPlateau && noImprovementCount >= o.config.PlateauThreshold {
				break
			}
			continue
		}

		moveKey := hashCells(bestNeighbor.Cells)
		inTabu := o.tabuList.Contains(moveKey)

		// 模拟退火接受准则
		accept := false
		if bestNeighbor.Score < current.Score {
			accept = true
		} else if !inTabu {
			delta := float64(bestNeighbor.Score - current.Score)
			if o.rng.Float64() < boltzmannProbability(delta, temperature) {
				accept = true
			}
		}

		if accept {
			current = bestNeighbor
			o.tabuList.Add(moveKey)

			if current.Score < best.Score {
				best = current.Clone()
				noImprovementCount = 0
				log.Debug().Int("iteration", i).Int("score", best.Score).Msg("发现更优解")
			} else {
				noImprovementCount++
			}
		} else {
			noImprovementCount++
		}

		if o.config.StopOnPlateau && noImprovementCount >= o.config.PlateauThreshold {
			log.Debug().Int("iteration", i).Int("no_improvement", noImprovementCount).Msg("达到平台期阈值，停止优化")
			break
		}

		temperature *= o.config.CoolingRate
	}

	log.Debug().
		Int("initial", initial.Score).
		Int("final", best.Score).
		Dur("elapsed", time.Since(start)).
		Msg("局部搜索优化完成")

	return best, nil
}

// bestNeighbor 生成邻域并返回其中可行且目标值最小的解
func (o *LocalSearchOptimizer) bestNeighbor(sc *constraint.Context, current *Solution) *Solution {
	var best *Solution
	for i := 0; i < o.config.NeighborhoodSize; i++ {
		neighbor := o.neighbors.GenerateNeighbor(sc, current)
		if neighbor == nil {
			continue
		}
		sc.SetCells(neighbor.Cells)
		valid, score := o.evaluator.Check(sc)
		if !valid {
			continue
		}
		neighbor.Score = score
		if best == nil || score < best.Score {
			best = neighbor
		}
	}
	return best
}

// hashCells 计算排班表的哈希 (使用FNV-1a算法)
func hashCells(cells [][]model.State) uint64 {
	h := fnv.New64a()
	var buf [4]byte
	for _, row := range cells {
		for _, s := range row {
			binary.LittleEndian.PutUint32(buf[:], uint32(int32(s)))
			h.Write(buf[:])
		}
	}
	return h.Sum64()
}

// boltzmannProbability 计算模拟退火的接受概率
// delta: 能量差 (new - old)
// temperature: 当前温度
func boltzmannProbability(delta, temperature float64) float64 {
	if delta <= 0 {
		return 1.0
	}
	if temperature <= 0 {
		return 0.0
	}
	return math.Exp(-delta / temperature)
}

// TabuList 禁忌表（使用uint64哈希作为键）
type TabuList struct {
	items   map[uint64]struct{}
	order   []uint64
	maxSize int
}

// NewTabuList 创建禁忌表
func NewTabuList(size int) *TabuList {
	if size <= 0 {
		size = 1
	}
	return &TabuList{
		items:   make(map[uint64]struct{}),
		order:   make([]uint64, 0, size),
		maxSize: size,
	}
}

// Add 添加到禁忌表
func (t *TabuList) Add(key uint64) {
	if _, exists := t.items[key]; exists {
		return
	}

	// 超出容量时移除最旧的
	if len(t.order) >= t.maxSize {
		oldest := t.order[0]
		t.order = t.order[1:]
		delete(t.items, oldest)
	}

	t.items[key] = struct{}{}
	t.order = append(t.order, key)
}

// Contains 检查是否在禁忌表中
func (t *TabuList) Contains(key uint64) bool {
	_, exists := t.items[key]
	return exists
}

// Len 禁忌表当前大小
func (t *TabuList) Len() int {
	return len(t.order)
}

// Clear 清空禁忌表
func (t *TabuList) Clear() {
	t.items = make(map[uint64]struct{})
	t.order = t.order[:0]
}
