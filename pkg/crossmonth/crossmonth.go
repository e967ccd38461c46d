// Package crossmonth 解析上月末排班，生成跨月疲劳标记
package crossmonth

import (
	"fmt"
	"sort"
	"strings"

	"github.com/paiban/dutyroster/pkg/logger"
	"github.com/paiban/dutyroster/pkg/model"
)

// Window 上月末读取的天数
const Window = 3

// Result 解析结果
type Result struct {
	Tail  model.Tail   `json:"tail"`
	Notes []model.Note `json:"notes,omitempty"`
}

// Analyzer 跨月分析器
type Analyzer struct {
	employees []string
	known     map[string]bool
	posts     map[string]bool
	logger    *logger.SchedulerLogger
}

// New 创建跨月分析器
func New(employees []string, posts []string) *Analyzer {
	a := &Analyzer{
		employees: employees,
		known:     make(map[string]bool, len(employees)),
		posts:     make(map[string]bool, len(posts)),
		logger:    logger.NewComponentLogger("crossmonth"),
	}
	for _, e := range employees {
		a.known[e] = true
	}
	for _, p := range posts {
		a.posts[p] = true
	}
	return a
}

// Analyze 解析每名员工上月末的班次标签（从旧到新）
// 只取最近 Window 天，未填写的日期不记录
func (a *Analyzer) Analyze(raw map[string][]string) *Result {
	res := &Result{Tail: make(model.Tail)}

	var unknown []string
	for name := range raw {
		if !a.known[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		res.Notes = append(res.Notes, model.NewNote(model.NoLevel, model.NoteInput,
			fmt.Sprintf("上月数据中的未知员工 %q，已跳过", name)))
		a.logger.Logger().Warn().Str("employee", name).Msg("上月数据包含未知员工")
	}

	for _, name := range a.employees {
		labels, ok := raw[name]
		if !ok {
			continue
		}
		if len(labels) > Window {
			labels = labels[len(labels)-Window:]
		}

		flags := make(model.TailFlags)
		for i, label := range labels {
			label = strings.TrimSpace(label)
			if label == "" || label == model.LabelUnfilled {
				continue
			}
			flags[-(len(labels) - i)] = a.posts[label]
		}
		if len(flags) == 0 {
			continue
		}
		res.Tail[name] = flags

		if flags[-1] {
			res.Notes = append(res.Notes, model.NewNote(model.NoLevel, model.NoteRest,
				fmt.Sprintf("%s 上月最后一天出勤，1日强制补休", name)))
			a.logger.Logger().Warn().Str("employee", name).Msg("上月末日出勤，1日强制补休")
		}
		if flags[-1] && flags[-3] {
			res.Notes = append(res.Notes, model.NewNote(model.NoLevel, model.NoteTripleDuty,
				fmt.Sprintf("%s 上月倒数第3天与最后一天均出勤，1日禁止出勤以防三通宵", name)))
		}
	}
	return res
}
