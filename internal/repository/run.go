package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	apperrors "github.com/paiban/dutyroster/pkg/errors"
	"github.com/paiban/dutyroster/pkg/model"
)

// RunStore 排班运行记录存储
type RunStore interface {
	Create(ctx context.Context, run *model.Run) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Run, error)
	List(ctx context.Context, filter ListFilter) ([]*model.Run, int, error)
}

var (
	_ RunStore = (*RunRepository)(nil)
	_ RunStore = (*MemoryRunStore)(nil)
)

// RunRepository 排班运行记录仓储（PostgreSQL）
type RunRepository struct {
	db DB
}

// NewRunRepository 创建运行记录仓储
func NewRunRepository(db DB) *RunRepository {
	return &RunRepository{db: db}
}

const runColumns = `id, year, month, status, level, objective, levels, notes, payload, created_at, updated_at`

// Create 保存运行记录
func (r *RunRepository) Create(ctx context.Context, run *model.Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	now := time.Now()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
	run.UpdatedAt = now

	query := `
		INSERT INTO duty_runs (` + runColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.Year, run.Month, run.Status, run.Level, run.Objective,
		pq.Array(run.Levels), pq.Array(run.Notes), run.Payload, run.CreatedAt, run.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "保存排班记录失败")
	}
	return nil
}

// GetByID 根据ID获取运行记录
func (r *RunRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Run, error) {
	query := `SELECT ` + runColumns + ` FROM duty_runs WHERE id = $1`
	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("排班记录", id.String())
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询排班记录失败")
	}
	return run, nil
}

// List 列出运行记录，不含结果内容
func (r *RunRepository) List(ctx context.Context, filter ListFilter) ([]*model.Run, int, error) {
	where, args := buildWhere(filter)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM duty_runs "+where, args...).Scan(&total); err != nil {
		return nil, 0, apperrors.Wrap(err, apperrors.CodeDatabaseError, "统计排班记录失败")
	}

	query := fmt.Sprintf(`
		SELECT id, year, month, status, level, objective, levels, notes, NULL, created_at, updated_at
		FROM duty_runs %s
		ORDER BY created_at %s
		LIMIT $%d OFFSET $%d
	`, where, orderDir(filter.OrderDir), len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询排班记录失败")
	}
	defer rows.Close()

	var runs []*model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, apperrors.Wrap(err, apperrors.CodeDatabaseError, "读取排班记录失败")
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.Wrap(err, apperrors.CodeDatabaseError, "读取排班记录失败")
	}
	return runs, total, nil
}

// buildWhere 生成过滤条件
func buildWhere(filter ListFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if filter.Year > 0 {
		add("year", filter.Year)
	}
	if filter.Month > 0 {
		add("month", filter.Month)
	}
	if filter.Status != "" {
		add("status", filter.Status)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// orderDir 只允许 asc/desc
func orderDir(dir string) string {
	if strings.EqualFold(dir, "asc") {
		return "ASC"
	}
	return "DESC"
}

// scanRun 扫描一行运行记录
func scanRun(row Scanner) (*model.Run, error) {
	run := &model.Run{}
	var payload []byte
	err := row.Scan(
		&run.ID, &run.Year, &run.Month, &run.Status, &run.Level, &run.Objective,
		pq.Array(&run.Levels), pq.Array(&run.Notes), &payload, &run.CreatedAt, &run.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	run.Payload = payload
	return run, nil
}
