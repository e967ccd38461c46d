// Package model 定义值班排班引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel 基础模型（包含通用字段）
type BaseModel struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewBaseModel 创建新的基础模型
func NewBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NoteKind 说明类别
type NoteKind string

const (
	NoteInput      NoteKind = "input"       // 输入整理
	NoteCrossMonth NoteKind = "cross_month" // 跨月衔接
	NoteDoubleDuty NoteKind = "double_duty" // 双通宵
	NoteTripleDuty NoteKind = "triple_duty" // 三通宵
	NoteRest       NoteKind = "rest"        // 补休
	NoteLeave      NoteKind = "leave"       // 休假
	NoteRelaxation NoteKind = "relaxation"  // 约束放宽
	NoteSolver     NoteKind = "solver"      // 求解器
)

// NoLevel 与放宽级别无关的说明
const NoLevel = -1

// Note 运行过程中产生的说明
type Note struct {
	Level   int      `json:"level"`
	Kind    NoteKind `json:"kind"`
	Message string   `json:"message"`
}

// NewNote 创建说明
func NewNote(level int, kind NoteKind, message string) Note {
	return Note{Level: level, Kind: kind, Message: message}
}

// Run 一次排班运行的记录
type Run struct {
	BaseModel
	Year      int      `json:"year" db:"year"`
	Month     int      `json:"month" db:"month"`
	Status    string   `json:"status" db:"status"` // solved/exhausted
	Level     int      `json:"level" db:"level"`
	Objective int      `json:"objective" db:"objective"`
	Levels    []int64  `json:"levels" db:"levels"` // 实际尝试过的级别
	Notes     []string `json:"notes" db:"notes"`
	Payload   []byte   `json:"-" db:"payload"`
}

const (
	RunSolved    = "solved"
	RunExhausted = "exhausted"
)
