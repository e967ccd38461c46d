// Package diagnostic 分析全部放宽级别均无解的原因并给出建议
package diagnostic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/paiban/dutyroster/pkg/calendar"
	"github.com/paiban/dutyroster/pkg/model"
	"github.com/paiban/dutyroster/pkg/scheduler/builder"
)

// Category 无解原因类别
type Category string

const (
	CategoryStaffingShortage       Category = "staffing_shortage"       // 人员不足
	CategoryTightStaffing          Category = "tight_staffing"          // 人员与岗位数持平
	CategoryLeaveConcentration     Category = "leave_concentration"     // 休假集中
	CategoryCrossMonthConflict     Category = "cross_month_conflict"    // 跨月衔接冲突
	CategoryRelaxationInsufficient Category = "relaxation_insufficient" // 放宽不足
	CategoryConstraintConflict     Category = "constraint_conflict"     // 一般约束冲突
)

// Urgency 紧急程度
type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

// Diagnosis 无解诊断结果
type Diagnosis struct {
	Category     Category `json:"category"`
	Detail       string   `json:"detail"`
	Remedies     []string `json:"remedies"`
	Urgency      Urgency  `json:"urgency"`
	EstimatedFix string   `json:"estimated_fix"`
}

// Severity 类别对应的紧急程度与预计修复时间
type Severity struct {
	Urgency      Urgency
	EstimatedFix string
}

var severities = map[Category]Severity{
	CategoryStaffingShortage:       {UrgencyHigh, "1-2小时"},
	CategoryTightStaffing:          {UrgencyHigh, "1-2小时"},
	CategoryLeaveConcentration:     {UrgencyMedium, "30分钟-1小时"},
	CategoryCrossMonthConflict:     {UrgencyMedium, "15-30分钟"},
	CategoryRelaxationInsufficient: {UrgencyLow, "5-15分钟"},
	CategoryConstraintConflict:     {UrgencyLow, "15-30分钟"},
}

// Lookup 查询类别的紧急程度与预计修复时间，未知类别按一般冲突处理
func Lookup(c Category) Severity {
	if s, ok := severities[c]; ok {
		return s
	}
	return severities[CategoryConstraintConflict]
}

// check 单项检查，不命中时返回 nil
type check func(in *builder.Input, notes []model.Note) *Diagnosis

// Diagnose 按顺序执行各项检查，返回第一个命中的诊断
// 只采信输入整理与跨月分析产生的说明，放宽过程自身的说明不作为依据
func Diagnose(in *builder.Input, notes []model.Note) *Diagnosis {
	notes = evidence(notes)
	checks := []check{
		checkStaffing,
		checkLeaveConcentration,
		checkCrossMonth,
		checkRelaxation,
	}
	for _, c := range checks {
		if d := c(in, notes); d != nil {
			return finish(d)
		}
	}
	return finish(constraintConflict(notes))
}

// evidence 过滤掉带级别的说明与放宽说明
func evidence(notes []model.Note) []model.Note {
	out := make([]model.Note, 0, len(notes))
	for _, n := range notes {
		if n.Level != model.NoLevel || n.Kind == model.NoteRelaxation {
			continue
		}
		out = append(out, n)
	}
	return out
}

func finish(d *Diagnosis) *Diagnosis {
	s := Lookup(d.Category)
	d.Urgency = s.Urgency
	d.EstimatedFix = s.EstimatedFix
	return d
}

// checkStaffing 人员数与岗位数比较
func checkStaffing(in *builder.Input, _ []model.Note) *Diagnosis {
	e, p := len(in.Employees), len(in.Posts)
	switch {
	case e < p:
		return &Diagnosis{
			Category: CategoryStaffingShortage,
			Detail: fmt.Sprintf("至少需要%d人，但只设置了%d人\n岗位：%d个\n人员：%s（%d人）",
				p, e, p, strings.Join(names(in), "、"), e),
			Remedies: []string{
				fmt.Sprintf("增加至少%d名值班人员", p-e),
				fmt.Sprintf("将岗位减少到%d个", e),
				"部分岗位改为隔日值守",
			},
		}
	case e == p:
		return &Diagnosis{
			Category: CategoryTightStaffing,
			Detail: fmt.Sprintf("人员数与岗位数相同（%d人 对 %d个岗位）\n约束过紧无法排班\n双通宵限制、三通宵禁止、休假等约束相互冲突", e, p),
			Remedies: []string{
				"增加1-2名值班人员（推荐）",
				"提高放宽级别到2级以上",
				"删除部分岗位",
				"调整休假申请",
			},
		}
	}
	return nil
}

// checkLeaveConcentration 某日休假人数过多导致剩余人员不足
func checkLeaveConcentration(in *builder.Input, _ []model.Note) *Diagnosis {
	days := in.Days()
	active, err := calendar.ActiveDays(in.Base(), in.Year, in.Month)
	if err != nil {
		active = make([]bool, days)
	}

	requesters := make([][]string, days+1)
	seen := make(map[model.LeaveRequest]bool)
	for _, l := range in.Leaves {
		if l.Day < 1 || l.Day > days || seen[l] {
			continue
		}
		seen[l] = true
		requesters[l.Day] = append(requesters[l.Day], l.Employee)
	}

	for day := 1; day <= days; day++ {
		required := 0
		for _, p := range in.Posts {
			if !p.Alternating || active[day-1] {
				required++
			}
		}
		available := len(in.Employees) - len(requesters[day])
		if available >= required {
			continue
		}
		return &Diagnosis{
			Category: CategoryLeaveConcentration,
			Detail: fmt.Sprintf("%d月%d日有%d人申请休假\n申请人：%s\n需要人员：%d人，剩余：%d人",
				int(in.Month), day, len(requesters[day]), strings.Join(requesters[day], "、"), required, available),
			Remedies: []string{
				fmt.Sprintf("将%d日的休假申请分散到其他日期", day),
				fmt.Sprintf("由机动人员覆盖%d日", day),
				"提高放宽级别到2级以上",
				fmt.Sprintf("将%d日设为特殊值守日", day),
			},
		}
	}
	return nil
}

// checkCrossMonth 上月末出勤人数过多，或上月末出勤者希望1日出勤
func checkCrossMonth(in *builder.Input, _ []model.Note) *Diagnosis {
	var workers []string
	for _, emp := range in.Employees {
		if in.Tail.Worked(emp.Name, -1) {
			workers = append(workers, emp.Name)
		}
	}
	if len(workers) == 0 {
		return nil
	}

	var firstDay []string
	for _, name := range workers {
		for _, p := range in.Preferences {
			if p.Employee == name && p.Day == 1 && p.Direction == model.DirectionDesire {
				firstDay = append(firstDay, name)
				break
			}
		}
	}

	if len(firstDay) == 0 && len(workers)*2 <= len(in.Employees) {
		return nil
	}

	detail := fmt.Sprintf("与上月末出勤人员冲突\n上月末出勤：%s\n1日需补休，难以安排1日岗位", strings.Join(workers, "、"))
	if len(firstDay) > 0 {
		detail += "\n希望1日出勤：" + strings.Join(firstDay, "、")
	}
	return &Diagnosis{
		Category: CategoryCrossMonthConflict,
		Detail:   detail,
		Remedies: []string{
			"确认上月末出勤记录",
			"调整1日的岗位偏好",
			"由机动人员覆盖1日",
			"提高放宽级别到3级以上",
		},
	}
}

// 说明类别 -> 冲突约束名
var conflictKinds = []struct {
	kind  model.NoteKind
	label string
}{
	{model.NoteDoubleDuty, "双通宵限制"},
	{model.NoteTripleDuty, "三通宵禁止"},
	{model.NoteRest, "补休约束"},
	{model.NoteLeave, "休假约束"},
}

// checkRelaxation 按说明类别识别冲突的约束
func checkRelaxation(_ *builder.Input, notes []model.Note) *Diagnosis {
	found := make(map[string]bool)
	for _, n := range notes {
		for _, k := range conflictKinds {
			if n.Kind == k.kind {
				found[k.label] = true
			}
		}
	}
	if len(found) == 0 {
		return nil
	}

	labels := make([]string, 0, len(found))
	for _, k := range conflictKinds {
		if found[k.label] {
			labels = append(labels, k.label)
		}
	}
	return &Diagnosis{
		Category: CategoryRelaxationInsufficient,
		Detail:   "以下约束相互冲突\n冲突约束：" + strings.Join(labels, "、"),
		Remedies: []string{
			"逐级提高放宽级别（1→2→3）",
			"调整岗位偏好",
			"增加值班人员",
			"临时放宽部分个人规则",
		},
	}
}

// constraintConflict 兜底诊断
func constraintConflict(notes []model.Note) *Diagnosis {
	detail := "多个约束相互冲突"

	issues := make(map[string]bool)
	for _, n := range notes {
		switch {
		case strings.Contains(n.Message, "偏好"):
			issues["岗位偏好冲突"] = true
		case strings.Contains(n.Message, "约束"):
			issues["约束冲突"] = true
		case strings.Contains(n.Message, "不足"):
			issues["人员不足"] = true
		}
	}
	if len(issues) > 0 {
		list := make([]string, 0, len(issues))
		for k := range issues {
			list = append(list, k)
		}
		sort.Strings(list)
		detail = "检测到以下问题\n问题：" + strings.Join(list, "、")
	}

	return &Diagnosis{
		Category: CategoryConstraintConflict,
		Detail:   detail,
		Remedies: []string{
			"提高放宽级别（推荐2级以上）",
			"分散岗位偏好",
			"考虑增加机动人员",
			"检查岗位设置",
			"调整员工岗位优先级",
		},
	}
}

func names(in *builder.Input) []string {
	out := make([]string, len(in.Employees))
	for i, e := range in.Employees {
		out[i] = e.Name
	}
	return out
}
