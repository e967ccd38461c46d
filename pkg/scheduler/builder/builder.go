package builder

import (
	"fmt"
	"sort"
	"strings"

	"github.com/paiban/dutyroster/pkg/calendar"
	"github.com/paiban/dutyroster/pkg/logger"
	"github.com/paiban/dutyroster/pkg/model"
	"github.com/paiban/dutyroster/pkg/scheduler/constraint"
	"github.com/paiban/dutyroster/pkg/scheduler/constraint/builtin"
	"github.com/paiban/dutyroster/pkg/scheduler/profile"
	"github.com/paiban/dutyroster/pkg/scheduler/solver"
)

// Model 某一放宽级别下构造出的排班模型
// 每个级别都重新构造，不在级别之间复用
type Model struct {
	Profile      profile.Profile
	Context      *constraint.Context
	Manager      *constraint.Manager
	Leaves       []model.LeaveRequest // 剔除后仍参与建模的休假申请
	Sacrificed   []model.LeaveRequest
	Active       []bool // 隔日岗位值守日
	Notes        []model.Note
	Explanations []string
}

// Problem 转换为求解器问题
func (m *Model) Problem() *solver.Problem {
	return &solver.Problem{Context: m.Context, Manager: m.Manager}
}

// Builder 模型构造器
type Builder struct {
	logger *logger.SchedulerLogger
}

// New 创建模型构造器
func New() *Builder {
	return &Builder{logger: logger.NewComponentLogger("builder")}
}

// Build 按给定放宽级别构造模型
func (b *Builder) Build(in *Input, p profile.Profile) (*Model, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	days := in.Days()
	active, err := calendar.ActiveDays(in.Base(), in.Year, in.Month)
	if err != nil {
		return nil, fmt.Errorf("计算隔日岗位值守日失败: %w", err)
	}

	m := &Model{Profile: p, Active: active}
	m.Leaves, m.Sacrificed = Sacrifice(in.Employees, in.Leaves, p.Sacrifice)
	if len(m.Sacrificed) > 0 {
		m.Notes = append(m.Notes, sacrificeNote(p.Level, m.Sacrificed))
	}

	ctx := constraint.NewContext(in.Year, in.Month, days, in.Employees, in.Posts)
	if in.Tail != nil {
		ctx.Tail = in.Tail
	}
	m.Context = ctx

	manager := constraint.NewManager()
	builtin.RegisterStructural(manager, in.Employees, in.Posts)

	if len(in.Tail) > 0 {
		builtin.RegisterCrossMonth(manager, p.CrossMonthHard, p.CrossMonthWeight)
	}

	if alt := builtin.AlternatingPosts(in.Posts); len(alt) > 0 {
		manager.Register(builtin.NewAlternatingPostConstraint(alt, active, p.AlternatingHard, p.AlternatingWeight))
	}

	if p.DoubleDutyWeight > 0 {
		manager.Register(builtin.NewDoubleDutyConstraint(p.DoubleDutyWeight))
	}
	if p.FourInARow {
		manager.Register(builtin.NewFourInARowConstraint())
	}
	if p.DoubleDutyGapWeight > 0 {
		manager.Register(builtin.NewDoubleDutyBalanceConstraint(p.DoubleDutyGapWeight))
	}
	if p.DutyLoadGapWeight > 0 {
		manager.Register(builtin.NewDutyLoadBalanceConstraint(p.DutyLoadGapWeight))
	}
	if p.BackupWeight > 0 {
		manager.Register(builtin.NewBackupUsageConstraint(p.BackupWeight))
	}

	if len(m.Leaves) > 0 && p.LeaveWeight > 0 {
		manager.Register(builtin.NewLeaveRequestConstraint(leaveMatrix(in, m.Leaves, days), p.LeaveWeight))
	}
	if len(in.Preferences) > 0 && p.PreferenceWeight > 0 {
		manager.Register(builtin.NewPostPreferenceConstraint(wishMatrix(in, days), p.PreferenceWeight))
	}
	if p.Priority {
		manager.Register(builtin.NewPostPriorityConstraint(in.Employees, in.Posts, in.priorities()))
	}
	if in.HasCustomRules() {
		builtin.RegisterCustomRules(manager, in.Employees, days, in.Posts, p.CustomHard, p.CustomWeight)
	}

	m.Manager = manager
	m.Explanations = explain(manager)

	b.logger.Logger().Debug().
		Int("level", p.Level).
		Int("constraints", manager.Count()).
		Int("leaves", len(m.Leaves)).
		Msg("模型构造完成")

	return m, nil
}

// leaveMatrix 休假申请矩阵 [员工][日]
func leaveMatrix(in *Input, leaves []model.LeaveRequest, days int) [][]bool {
	out := make([][]bool, len(in.Employees))
	for e := range out {
		out[e] = make([]bool, days)
	}
	for _, l := range leaves {
		e := in.EmployeeIndex(l.Employee)
		if e < 0 || l.Day < 1 || l.Day > days {
			continue
		}
		out[e][l.Day-1] = true
	}
	return out
}

// wishMatrix 岗位偏好矩阵 [员工][日]
func wishMatrix(in *Input, days int) [][][]builtin.Wish {
	out := make([][][]builtin.Wish, len(in.Employees))
	for e := range out {
		out[e] = make([][]builtin.Wish, days)
	}
	for _, pref := range in.Preferences {
		e := in.EmployeeIndex(pref.Employee)
		p := model.PostIndex(in.Posts, pref.Post)
		if e < 0 || p < 0 || pref.Day < 1 || pref.Day > days {
			continue
		}
		out[e][pref.Day-1] = append(out[e][pref.Day-1], builtin.Wish{Post: p, Direction: pref.Direction})
	}
	return out
}

// sacrificeNote 生成休假剔除说明
func sacrificeNote(level int, removed []model.LeaveRequest) model.Note {
	days := make([]int, len(removed))
	for i, l := range removed {
		days[i] = l.Day
	}
	sort.Ints(days)
	labels := make([]string, len(days))
	for i, d := range days {
		labels[i] = fmt.Sprintf("%d日", d)
	}
	return model.NewNote(level, model.NoteLeave,
		fmt.Sprintf("%s 的休假申请(%s)不再作为约束，可能被安排出勤", removed[0].Employee, strings.Join(labels, "、")))
}

// explain 列出模型中的约束说明
func explain(manager *constraint.Manager) []string {
	all := manager.GetAll()
	out := make([]string, 0, len(all))
	for _, c := range all {
		if c.Category() == constraint.CategoryHard {
			out = append(out, fmt.Sprintf("[硬] %s", c.Name()))
			continue
		}
		out = append(out, fmt.Sprintf("[软] %s 权重%d", c.Name(), c.Weight()))
	}
	return out
}
