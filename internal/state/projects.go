package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SharminSirajudeen/nova/internal/project"
	"github.com/SharminSirajudeen/nova/pkg/models"
)

var _ project.Store = (*DB)(nil)

// SaveProject upserts a project and rewrites its sub-tasks and deliverables
// in one transaction.
func (db *DB) SaveProject(ctx context.Context, p *models.Project) error {
	err := db.Transaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO projects (id, name, brief, state, failure_reason, created_at, updated_at, completed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				brief = excluded.brief,
				state = excluded.state,
				failure_reason = excluded.failure_reason,
				updated_at = excluded.updated_at,
				completed_at = excluded.completed_at
		`, p.ID, p.Name, p.Brief, string(p.State), p.FailureReason,
			formatTime(p.CreatedAt), formatTime(p.UpdatedAt), nullableTime(p.CompletedAt))
		if err != nil {
			return fmt.Errorf("upsert project: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM subtasks WHERE project_id = ?`, p.ID); err != nil {
			return fmt.Errorf("clear subtasks: %w", err)
		}
		for _, st := range p.SubTasks {
			deps, err := json.Marshal(st.DependsOn)
			if err != nil {
				return fmt.Errorf("marshal depends_on: %w", err)
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO subtasks (project_id, idx, title, description, role, persona, depends_on,
					optional, status, model, tier, attempts, output, error, started_at, completed_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, p.ID, st.Index, st.Title, st.Description, string(st.Role), st.Persona, string(deps),
				st.Optional, string(st.Status), st.Model, int(st.Tier), st.Attempts, st.Output, st.Error,
				nullableTime(st.StartedAt), nullableTime(st.CompletedAt))
			if err != nil {
				return fmt.Errorf("insert subtask %d: %w", st.Index, err)
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM deliverables WHERE project_id = ?`, p.ID); err != nil {
			return fmt.Errorf("clear deliverables: %w", err)
		}
		for seq, d := range p.Deliverables {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO deliverables (project_id, seq, subtask, persona, model, kind, content, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, p.ID, seq, d.SubTask, d.Persona, d.Model, string(d.Kind), d.Content, formatTime(d.At))
			if err != nil {
				return fmt.Errorf("insert deliverable %d: %w", seq, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save project %s: %w", p.ID, err)
	}
	return nil
}

const projectColumns = `id, name, brief, state, failure_reason, created_at, updated_at, completed_at`

// GetProject retrieves a project with its sub-tasks and deliverables.
// It returns nil, nil when the project does not exist.
func (db *DB) GetProject(ctx context.Context, id string) (*models.Project, error) {
	row := db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if err := db.loadChildren(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ListProjects returns every project, oldest first.
func (db *DB) ListProjects(ctx context.Context) ([]*models.Project, error) {
	return db.listProjects(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at, id`)
}

// ListActiveProjects returns projects that are not completed or failed.
func (db *DB) ListActiveProjects(ctx context.Context) ([]*models.Project, error) {
	return db.listProjects(ctx, `SELECT `+projectColumns+` FROM projects
		WHERE state NOT IN (?, ?) ORDER BY created_at, id`,
		string(models.ProjectCompleted), string(models.ProjectFailed))
}

func (db *DB) listProjects(ctx context.Context, query string, args ...any) ([]*models.Project, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	var projects []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	rows.Close()

	// Children are loaded after the cursor is closed; the pool holds one connection.
	for _, p := range projects {
		if err := db.loadChildren(ctx, p); err != nil {
			return nil, err
		}
	}
	return projects, nil
}

// DeleteProject removes a project; sub-tasks and deliverables cascade.
func (db *DB) DeleteProject(ctx context.Context, id string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

// PurgeFinishedProjects deletes terminal projects last updated before the
// cutoff and returns how many were removed.
func (db *DB) PurgeFinishedProjects(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := formatTime(time.Now().Add(-olderThan))
	result, err := db.ExecContext(ctx, `
		DELETE FROM projects WHERE state IN (?, ?) AND updated_at < ?
	`, string(models.ProjectCompleted), string(models.ProjectFailed), cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge projects: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (*models.Project, error) {
	var (
		p                    models.Project
		state                string
		failure              sql.NullString
		createdAt, updatedAt string
		completedAt          sql.NullString
	)
	if err := s.Scan(&p.ID, &p.Name, &p.Brief, &state, &failure, &createdAt, &updatedAt, &completedAt); err != nil {
		return nil, err
	}
	p.State = models.ProjectState(state)
	p.FailureReason = failure.String
	p.CreatedAt, _ = parseTime(createdAt)
	p.UpdatedAt, _ = parseTime(updatedAt)
	p.CompletedAt = parseNullableTime(completedAt)
	return &p, nil
}

func (db *DB) loadChildren(ctx context.Context, p *models.Project) error {
	rows, err := db.QueryContext(ctx, `
		SELECT idx, title, description, role, persona, depends_on, optional, status,
			model, tier, attempts, output, error, started_at, completed_at
		FROM subtasks WHERE project_id = ? ORDER BY idx
	`, p.ID)
	if err != nil {
		return fmt.Errorf("list subtasks: %w", err)
	}
	defer rows.Close()

	p.SubTasks = nil
	for rows.Next() {
		var (
			st                         models.SubTask
			role, status               string
			desc, deps, model          sql.NullString
			output, errText            sql.NullString
			startedAt, completedAtNull sql.NullString
			tier                       int
		)
		if err := rows.Scan(&st.Index, &st.Title, &desc, &role, &st.Persona, &deps, &st.Optional, &status,
			&model, &tier, &st.Attempts, &output, &errText, &startedAt, &completedAtNull); err != nil {
			return fmt.Errorf("scan subtask: %w", err)
		}
		st.Description = desc.String
		st.Role = models.Role(role)
		st.Status = models.SubTaskStatus(status)
		st.Model = model.String
		st.Tier = models.Tier(tier)
		st.Output = output.String
		st.Error = errText.String
		st.StartedAt = parseNullableTime(startedAt)
		st.CompletedAt = parseNullableTime(completedAtNull)
		if deps.Valid && deps.String != "" && deps.String != "null" {
			if err := json.Unmarshal([]byte(deps.String), &st.DependsOn); err != nil {
				return fmt.Errorf("unmarshal depends_on: %w", err)
			}
		}
		p.SubTasks = append(p.SubTasks, st)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate subtasks: %w", err)
	}
	rows.Close()

	drows, err := db.QueryContext(ctx, `
		SELECT subtask, persona, model, kind, content, created_at
		FROM deliverables WHERE project_id = ? ORDER BY seq
	`, p.ID)
	if err != nil {
		return fmt.Errorf("list deliverables: %w", err)
	}
	defer drows.Close()

	p.Deliverables = nil
	for drows.Next() {
		var (
			d              models.Deliverable
			persona, model sql.NullString
			kind, at       string
		)
		if err := drows.Scan(&d.SubTask, &persona, &model, &kind, &d.Content, &at); err != nil {
			return fmt.Errorf("scan deliverable: %w", err)
		}
		d.Persona = persona.String
		d.Model = model.String
		d.Kind = models.DeliverableKind(kind)
		d.At, _ = parseTime(at)
		p.Deliverables = append(p.Deliverables, d)
	}
	return drows.Err()
}
