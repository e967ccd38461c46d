package engine

import (
	"errors"
	"time"

	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/google/uuid"

	"github.com/paiban/dutyroster/pkg/diagnostic"
	apperrors "github.com/paiban/dutyroster/pkg/errors"
	"github.com/paiban/dutyroster/pkg/model"
	"github.com/paiban/dutyroster/pkg/normalizer"
	"github.com/paiban/dutyroster/pkg/scheduler/relax"
	"github.com/paiban/dutyroster/pkg/stats"
	gridvalidator "github.com/paiban/dutyroster/pkg/validator"
)

// DateLayout 基准日格式
const DateLayout = "2006-01-02"

// EmployeeSpec 请求中的员工
type EmployeeSpec struct {
	Name       string                    `json:"name" yaml:"name" validate:"required"`
	Backup     bool                      `json:"backup,omitempty" yaml:"backup,omitempty"`
	Priorities map[string]model.Priority `json:"priorities,omitempty" yaml:"priorities,omitempty"` // 岗位名 -> 优先级
	Rules      *model.CustomRules        `json:"rules,omitempty" yaml:"rules,omitempty" validate:"omitempty"`
}

// Request 一次排班请求
type Request struct {
	Year      int                   `json:"year" yaml:"year" validate:"required,gte=2000,lte=2100"`
	Month     int                   `json:"month" yaml:"month" validate:"required,gte=1,lte=12"`
	Employees []EmployeeSpec        `json:"employees" yaml:"employees" validate:"dive"` // 人数不足按 CodeInvalidInput 报告
	Posts     []model.Post          `json:"posts" yaml:"posts" validate:"required,min=1,max=15,dive"`
	Requests  []normalizer.RawEntry `json:"requests,omitempty" yaml:"requests,omitempty"`
	Tail      map[string][]string   `json:"tail,omitempty" yaml:"tail,omitempty"` // 员工名 -> 上月末班次（从旧到新）
	BaseDate  string                `json:"base_date,omitempty" yaml:"base_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// Response 排班结果
type Response struct {
	RunID        uuid.UUID                `json:"run_id"`
	Year         int                      `json:"year"`
	Month        int                      `json:"month"`
	Level        int                      `json:"level"`
	Exhausted    bool                     `json:"exhausted"`
	Status       string                   `json:"status,omitempty"`
	Objective    int                      `json:"objective"`
	Profile      string                   `json:"profile,omitempty"`
	Notes        []model.Note             `json:"notes"`
	Attempts     []relax.Attempt          `json:"attempts"`
	Explanations []string                 `json:"explanations,omitempty"`
	Grid         *model.Grid              `json:"grid,omitempty"`
	Warnings     []gridvalidator.Conflict `json:"warnings,omitempty"`
	Report       *stats.Report            `json:"report,omitempty"`
	Diagnosis    *diagnostic.Diagnosis    `json:"diagnosis,omitempty"`
	Duration     time.Duration            `json:"duration"`
}

// RequestValidator 请求结构校验，错误信息为中文
type RequestValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// NewRequestValidator 创建请求校验器
func NewRequestValidator() (*RequestValidator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}
	return &RequestValidator{validate: validate, translator: trans}, nil
}

// Validate 校验请求，失败时返回 CodeValidationFail
func (v *RequestValidator) Validate(req *Request) error {
	if req == nil {
		return apperrors.InvalidInput("request", "请求为空")
	}
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return apperrors.Wrap(err, apperrors.CodeValidationFail, "验证失败")
	}
	ve := &apperrors.ValidationErrors{}
	for _, fe := range fieldErrors {
		ve.Add(fe.Namespace(), fe.Translate(v.translator))
	}
	return ve.ToAppError()
}
