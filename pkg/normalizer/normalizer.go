// Package normalizer 将原始的休假/岗位偏好条目整理为类型化记录
package normalizer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/paiban/dutyroster/pkg/logger"
	"github.com/paiban/dutyroster/pkg/model"
)

// RawPreference 原始岗位偏好
type RawPreference struct {
	Day       string `json:"day" yaml:"day"`
	Post      string `json:"post" yaml:"post"`
	Direction string `json:"direction" yaml:"direction"`
}

// RawEntry 某员工的原始申请条目
type RawEntry struct {
	Employee    string          `json:"employee" yaml:"employee"`
	Leave       []string        `json:"leave,omitempty" yaml:"leave,omitempty"` // "5", "5日", "10-12", "3,7"
	Preferences []RawPreference `json:"preferences,omitempty" yaml:"preferences,omitempty"`
}

// Result 整理结果
type Result struct {
	Leaves      []model.LeaveRequest   `json:"leaves"`
	Preferences []model.PostPreference `json:"preferences"`
	Notes       []model.Note           `json:"notes,omitempty"`
}

// LeaveDays 返回某员工的休假日（升序）
func (r *Result) LeaveDays(employee string) []int {
	var days []int
	for _, l := range r.Leaves {
		if l.Employee == employee {
			days = append(days, l.Day)
		}
	}
	return days
}

// Normalizer 申请条目整理器
type Normalizer struct {
	order  map[string]int
	posts  map[string]bool
	logger *logger.SchedulerLogger
}

// New 创建整理器
func New(employees []string, posts []string) *Normalizer {
	n := &Normalizer{
		order:  make(map[string]int, len(employees)),
		posts:  make(map[string]bool, len(posts)),
		logger: logger.NewComponentLogger("normalizer"),
	}
	for i, e := range employees {
		n.order[e] = i
	}
	for _, p := range posts {
		n.posts[p] = true
	}
	return n
}

type prefKey struct {
	employee string
	day      int
	post     string
}

// Normalize 整理原始条目，无法识别的条目记入说明并跳过
func (n *Normalizer) Normalize(raw []RawEntry, days int) *Result {
	res := &Result{}
	leaves := make(map[model.LeaveRequest]bool)
	prefs := make(map[prefKey]model.Direction)

	for _, entry := range raw {
		name := strings.TrimSpace(entry.Employee)
		if _, ok := n.order[name]; !ok {
			res.note("未知员工 %q，已跳过其申请", entry.Employee)
			continue
		}

		for _, token := range entry.Leave {
			parsed, err := ParseDays(token)
			if err != nil {
				res.note("%s 的休假日 %q 无法解析: %v", name, token, err)
				continue
			}
			for _, d := range parsed {
				if d < 1 || d > days {
					res.note("%s 的休假日 %d 超出本月范围(1-%d)，已忽略", name, d, days)
					continue
				}
				leaves[model.LeaveRequest{Employee: name, Day: d}] = true
			}
		}

		for _, p := range entry.Preferences {
			n.addPreference(res, prefs, name, p, days)
		}
	}

	for l := range leaves {
		res.Leaves = append(res.Leaves, l)
	}
	for k, dir := range prefs {
		res.Preferences = append(res.Preferences, model.PostPreference{
			Employee: k.employee, Day: k.day, Post: k.post, Direction: dir,
		})
	}
	n.sort(res)

	n.logger.Logger().Debug().
		Int("leaves", len(res.Leaves)).
		Int("preferences", len(res.Preferences)).
		Int("notes", len(res.Notes)).
		Msg("申请条目整理完成")
	return res
}

// addPreference 整理单条岗位偏好
func (n *Normalizer) addPreference(res *Result, prefs map[prefKey]model.Direction, name string, p RawPreference, days int) {
	dir, ok := parseDirection(p.Direction)
	if !ok {
		res.note("%s 的偏好方向 %q 无法识别", name, p.Direction)
		return
	}
	post := strings.TrimSpace(p.Post)
	if !n.posts[post] {
		res.note("%s 的偏好岗位 %q 不存在", name, p.Post)
		return
	}
	parsed, err := ParseDays(p.Day)
	if err != nil {
		res.note("%s 的偏好日期 %q 无法解析: %v", name, p.Day, err)
		return
	}
	for _, d := range parsed {
		if d < 1 || d > days {
			res.note("%s 的偏好日期 %d 超出本月范围(1-%d)，已忽略", name, d, days)
			continue
		}
		key := prefKey{employee: name, day: d, post: post}
		if existing, dup := prefs[key]; dup && existing != dir {
			res.note("%s 在%d日对 %s 的偏好相互矛盾，保留先出现的一条", name, d, post)
			continue
		}
		prefs[key] = dir
	}
}

// sort 按名单顺序和日期排序
func (n *Normalizer) sort(res *Result) {
	sort.Slice(res.Leaves, func(i, j int) bool {
		a, b := res.Leaves[i], res.Leaves[j]
		if a.Employee != b.Employee {
			return n.order[a.Employee] < n.order[b.Employee]
		}
		return a.Day < b.Day
	})
	sort.Slice(res.Preferences, func(i, j int) bool {
		a, b := res.Preferences[i], res.Preferences[j]
		if a.Employee != b.Employee {
			return n.order[a.Employee] < n.order[b.Employee]
		}
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		return a.Post < b.Post
	})
}

// note 记录一条整理说明
func (r *Result) note(format string, args ...interface{}) {
	r.Notes = append(r.Notes, model.NewNote(model.NoLevel, model.NoteInput, fmt.Sprintf(format, args...)))
}

// parseDirection 解析偏好方向
func parseDirection(s string) (model.Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "desire", "want", "希望", "+":
		return model.DirectionDesire, true
	case "avoid", "回避", "不希望", "-":
		return model.DirectionAvoid, true
	}
	return "", false
}

// ParseDays 解析日期列表，支持 "5"、"5日"、"10-12"、"3,7"
func ParseDays(s string) ([]int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '，' || r == '、' || r == ' ' || r == ';'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("空日期")
	}

	var days []int
	for _, f := range fields {
		f = strings.TrimRight(f, "日号")
		sep := strings.IndexAny(f, "-~")
		if sep < 0 {
			d, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("无效日期 %q", f)
			}
			days = append(days, d)
			continue
		}

		from, err1 := strconv.Atoi(strings.TrimRight(f[:sep], "日号"))
		to, err2 := strconv.Atoi(f[sep+1:])
		if err1 != nil || err2 != nil || from > to {
			return nil, fmt.Errorf("无效日期范围 %q", f)
		}
		for d := from; d <= to; d++ {
			days = append(days, d)
		}
	}
	return days, nil
}
