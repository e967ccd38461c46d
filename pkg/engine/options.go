package engine

import (
	"time"

	"github.com/paiban/dutyroster/pkg/scheduler/profile"
	"github.com/paiban/dutyroster/pkg/scheduler/solver"
)

// Options 一次运行的参数，按值传入
type Options struct {
	Weights    profile.Weights
	Priorities profile.PriorityTable
	Timeout    time.Duration // 每个放宽级别的求解时限
	Solver     solver.Config
}

// DefaultOptions 返回默认参数
func DefaultOptions() Options {
	return Options{
		Weights:    profile.DefaultWeights(),
		Priorities: profile.DefaultPriorityTable(),
		Timeout:    30 * time.Second,
		Solver:     solver.DefaultConfig(),
	}
}
