package tasksource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/Jayphen/taskvoice/internal/interpret"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS tasks (
	id          BIGSERIAL PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'to_do',
	priority    TEXT NOT NULL DEFAULT 'normal',
	category    TEXT NOT NULL DEFAULT 'personal',
	due         TIMESTAMPTZ,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const taskColumns = `id, title, description, status, priority, category, due, created_at, updated_at`

// PostgresSource stores tasks in a PostgreSQL table.
type PostgresSource struct {
	db   *sql.DB
	info SourceInfo
}

// NewPostgresSource connects to dsn and ensures the tasks table exists.
func NewPostgresSource(ctx context.Context, dsn string) (*PostgresSource, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: postgres requires 'dsn' parameter", ErrInvalidConfig)
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return newPostgresSource(ctx, db)
}

func newPostgresSource(ctx context.Context, db *sql.DB) (*PostgresSource, error) {
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tasks table: %w", err)
	}
	return &PostgresSource{
		db: db,
		info: SourceInfo{
			Type:        SourceTypePostgres,
			Name:        "postgres",
			Description: "PostgreSQL tasks table",
			Config:      Metadata{},
		},
	}, nil
}

// Info returns metadata about this source.
func (p *PostgresSource) Info() SourceInfo {
	return p.info
}

// ListTasks selects tasks with the filter pushed into SQL.
func (p *PostgresSource) ListTasks(ctx context.Context, filter *TaskFilter) ([]Task, error) {
	query, args := listQuery(filter)
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// listQuery builds the SELECT for a filter.
func listQuery(filter *TaskFilter) (string, []interface{}) {
	var where []string
	var args []interface{}
	addAny := func(column string, values []string) {
		if len(values) == 0 {
			return
		}
		args = append(args, pq.Array(values))
		where = append(where, fmt.Sprintf("%s = ANY($%d)", column, len(args)))
	}
	if filter != nil {
		addAny("status", stringsOf(filter.Status))
		addAny("priority", stringsOf(filter.Priority))
		addAny("category", stringsOf(filter.Category))
	}

	q := "SELECT " + taskColumns + " FROM tasks"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY id"
	if filter != nil && filter.Limit > 0 {
		args = append(args, filter.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return q, args
}

func stringsOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// GetTask selects one task.
func (p *PostgresSource) GetTask(ctx context.Context, taskID string) (*Task, error) {
	id, err := postgresID(taskID)
	if err != nil {
		return nil, err
	}
	row := p.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = $1", id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	return task, err
}

// CreateTask inserts a task.
func (p *PostgresSource) CreateTask(ctx context.Context, nt NewTask) (*Task, error) {
	if strings.TrimSpace(nt.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidTask)
	}
	nt = nt.withDefaults()

	row := p.db.QueryRowContext(ctx,
		`INSERT INTO tasks (title, description, status, priority, category, due)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+taskColumns,
		strings.TrimSpace(nt.Title), nt.Description, string(nt.Status), string(nt.Priority), string(nt.Category), nullTime(nt.Due))
	task, err := scanTask(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// UpdateTask reads, applies and writes back the task in one transaction.
func (p *PostgresSource) UpdateTask(ctx context.Context, taskID string, update TaskUpdate) error {
	id, err := postgresID(taskID)
	if err != nil {
		return err
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin update: %w", err)
	}
	defer tx.Rollback()

	task, err := scanTask(tx.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = $1 FOR UPDATE", id))
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTaskNotFound
	}
	if err != nil {
		return err
	}
	update.applyTo(task)

	_, err = tx.ExecContext(ctx,
		`UPDATE tasks SET title = $1, description = $2, status = $3, priority = $4,
		 category = $5, due = $6, updated_at = now() WHERE id = $7`,
		task.Title, task.Description, string(task.Status), string(task.Priority), string(task.Category), nullTime(task.Due), id)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return tx.Commit()
}

// DeleteTask deletes a task.
func (p *PostgresSource) DeleteTask(ctx context.Context, taskID string) error {
	id, err := postgresID(taskID)
	if err != nil {
		return err
	}
	res, err := p.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Close closes the connection pool.
func (p *PostgresSource) Close() error {
	return p.db.Close()
}

const postgresIDPrefix = "pg-"

func postgresID(taskID string) (int64, error) {
	if !strings.HasPrefix(taskID, postgresIDPrefix) {
		return 0, ErrTaskNotFound
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(taskID, postgresIDPrefix), 10, 64)
	if err != nil {
		return 0, ErrTaskNotFound
	}
	return id, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*Task, error) {
	var (
		id                           int64
		title, desc, status, pri, ca string
		due                          sql.NullTime
		created, updated             time.Time
	)
	if err := row.Scan(&id, &title, &desc, &status, &pri, &ca, &due, &created, &updated); err != nil {
		return nil, err
	}
	st, ok := interpret.NormalizeStatus(status)
	if !ok {
		st = interpret.StatusToDo
	}
	task := &Task{
		ID:          postgresIDPrefix + strconv.FormatInt(id, 10),
		Title:       title,
		Description: desc,
		Status:      st,
		Priority:    interpret.NormalizePriority(pri),
		Category:    interpret.NormalizeCategory(ca),
		Source:      SourceTypePostgres,
		SourceID:    strconv.FormatInt(id, 10),
		CreatedAt:   &created,
		UpdatedAt:   &updated,
	}
	if due.Valid {
		d := due.Time
		task.Due = &d
	}
	return task, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
