package assignment

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) EnsureAssignment(ctx context.Context, resourceLinkID, title string) (Assignment, error) {
	if title == "" {
		title = "Untitled assignment"
	}
	now := time.Now().Unix()
	_, err := s.db.ExecContext(ctx, `INSERT INTO assignments (resource_link_id,title,description,allow_multiple,created_at,updated_at)
		VALUES ($1,$2,'',0,$3,$3)
		ON CONFLICT (resource_link_id) DO NOTHING`,
		resourceLinkID, title, now)
	if err != nil {
		return Assignment{}, err
	}
	return s.GetAssignment(ctx, resourceLinkID)
}

func (s *SQLStore) GetAssignment(ctx context.Context, resourceLinkID string) (Assignment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT resource_link_id,title,description,allow_multiple FROM assignments WHERE resource_link_id=$1`, resourceLinkID)
	var a Assignment
	var multi int
	if err := row.Scan(&a.ResourceLinkID, &a.Title, &a.Description, &multi); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Assignment{}, ErrNotFound
		}
		return Assignment{}, err
	}
	a.AllowMultiple = multi != 0
	return a, nil
}

func (s *SQLStore) UpdateAssignment(ctx context.Context, a Assignment) error {
	multi := 0
	if a.AllowMultiple {
		multi = 1
	}
	res, err := s.db.ExecContext(ctx, `UPDATE assignments SET title=$2, description=$3, allow_multiple=$4, updated_at=$5 WHERE resource_link_id=$1`,
		a.ResourceLinkID, a.Title, a.Description, multi, time.Now().Unix())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) CreateSubmission(ctx context.Context, sub Submission) error {
	a, err := s.GetAssignment(ctx, sub.ResourceLinkID)
	if err != nil {
		return err
	}
	if !a.AllowMultiple {
		var n int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM submissions WHERE resource_link_id=$1 AND user_id=$2`,
			sub.ResourceLinkID, sub.UserID).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return ErrAlreadySubmitted
		}
	}
	if sub.CreatedAt == 0 {
		sub.CreatedAt = time.Now().Unix()
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO submissions (id,resource_link_id,user_id,body,comment,created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		sub.ID, sub.ResourceLinkID, sub.UserID, sub.Body, sub.Comment, sub.CreatedAt)
	return err
}

func (s *SQLStore) ListSubmissions(ctx context.Context, resourceLinkID, userID string) ([]Submission, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,resource_link_id,user_id,body,comment,grade,created_at
		FROM submissions WHERE resource_link_id=$1 AND user_id=$2 ORDER BY created_at`, resourceLinkID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubmissions(rows)
}

func (s *SQLStore) ListAllSubmissions(ctx context.Context, resourceLinkID string) ([]Submission, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,resource_link_id,user_id,body,comment,grade,created_at
		FROM submissions WHERE resource_link_id=$1 ORDER BY created_at`, resourceLinkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubmissions(rows)
}

func (s *SQLStore) GradeSubmission(ctx context.Context, id string, grade float64, comment string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE submissions SET grade=$2, comment=$3 WHERE id=$1`, id, grade, comment)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSubmissions(rows *sql.Rows) ([]Submission, error) {
	var out []Submission
	for rows.Next() {
		var sub Submission
		var grade sql.NullFloat64
		if err := rows.Scan(&sub.ID, &sub.ResourceLinkID, &sub.UserID, &sub.Body, &sub.Comment, &grade, &sub.CreatedAt); err != nil {
			return nil, err
		}
		if grade.Valid {
			g := grade.Float64
			sub.Grade = &g
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}
