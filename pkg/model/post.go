package model

// PostCategory 岗位类别
type PostCategory string

const (
	CategoryOvernight PostCategory = "overnight" // 通宵
	CategoryDay       PostCategory = "day"       // 日班
	CategoryNight     PostCategory = "night"     // 夜班
	CategoryOther     PostCategory = "other"     // 其他
)

// Valid 是否为已知类别
func (c PostCategory) Valid() bool {
	switch c {
	case CategoryOvernight, CategoryDay, CategoryNight, CategoryOther:
		return true
	}
	return false
}

// Post 值班岗位
type Post struct {
	Name        string       `json:"name" yaml:"name" validate:"required"`
	Category    PostCategory `json:"category" yaml:"category" validate:"required,oneof=overnight day night other"`
	Hours       float64      `json:"hours" yaml:"hours" validate:"gte=0,lte=24"`
	Alternating bool         `json:"alternating,omitempty" yaml:"alternating,omitempty"`
}

// IsOvernight 通宵类岗位（次日必须补休）
func (p Post) IsOvernight() bool {
	return p.Category == CategoryOvernight || p.Category == CategoryNight
}

// PostIndex 按名称查找岗位下标
func PostIndex(posts []Post, name string) int {
	for i, p := range posts {
		if p.Name == name {
			return i
		}
	}
	return -1
}
