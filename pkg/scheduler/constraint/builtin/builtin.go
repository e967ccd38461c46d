package builtin

import (
	"github.com/paiban/dutyroster/pkg/model"
	"github.com/paiban/dutyroster/pkg/scheduler/constraint"
)

// RegisterStructural 注册任何放宽级别都存在的硬约束
func RegisterStructural(manager *constraint.Manager, employees []*model.Employee, posts []model.Post) {
	var standard []int
	for p, post := range posts {
		if !post.Alternating {
			standard = append(standard, p)
		}
	}

	manager.Register(NewSingleStateConstraint())
	manager.Register(NewPostCoverageConstraint(standard))
	manager.Register(NewRestAfterOvernightConstraint())
	manager.Register(NewEarnedRestConstraint())
	manager.Register(NewNoConsecutiveRestConstraint())
	manager.Register(NewPostExclusionConstraint(employees, posts))
}

// RegisterCrossMonth 注册跨月约束，doubleDutyHard 为 false 时上月倒数第2天出勤改为计罚
func RegisterCrossMonth(manager *constraint.Manager, doubleDutyHard bool, weight int) {
	manager.Register(NewCrossMonthRestConstraint())
	manager.Register(NewTripleDutyConstraint())
	manager.Register(NewCrossMonthDoubleDutyConstraint(doubleDutyHard, weight))
}

// RegisterCustomRules 注册个人规则约束
func RegisterCustomRules(manager *constraint.Manager, employees []*model.Employee, days int, posts []model.Post, hard bool, weight int) {
	manager.Register(NewMaxConsecutiveDaysConstraint(employees, hard, weight))
	manager.Register(NewForbiddenDaysConstraint(employees, days, hard, weight))
	manager.Register(NewRestAfterPostConstraint(employees, posts, hard, weight))
}

// AlternatingPosts 返回隔日岗位下标
func AlternatingPosts(posts []model.Post) []int {
	var out []int
	for p, post := range posts {
		if post.Alternating {
			out = append(out, p)
		}
	}
	return out
}
