package repository

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicdesk/issue-admin/internal/domain"
	apperrors "github.com/civicdesk/issue-admin/pkg/util/errorutil"
)

type issueRepository struct {
	pool *pgxpool.Pool
}

// NewIssueRepository instantiates the Postgres issue store.
func NewIssueRepository(pool *pgxpool.Pool) IssueRepository {
	return &issueRepository{pool: pool}
}

const issueColumns = `id, category, description, photo_url, voice_note_text, created_at, updated_at,
               lat, lng, ward, address, status, assigned_to, reporter, attachments, timeline, notes`

func (r *issueRepository) Create(ctx context.Context, issue domain.Issue) error {
	docs, err := encodeIssueDocs(issue)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO issues (id, category, description, photo_url, voice_note_text, created_at, updated_at,
            lat, lng, ward, address, status, assigned_to, reporter, attachments, timeline, notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`
	_, err = r.pool.Exec(ctx, query,
		issue.ID,
		issue.Category,
		issue.Description,
		issue.PhotoURL,
		issue.VoiceNoteText,
		issue.CreatedAt,
		issue.UpdatedAt,
		issue.Location.Lat,
		issue.Location.Lng,
		issue.Location.Ward,
		issue.Location.Address,
		issue.Status,
		issue.AssignedTo,
		docs.reporter,
		docs.attachments,
		docs.timeline,
		docs.notes,
	)
	return mapPgError(err, "issue", map[string]any{"issue_id": issue.ID})
}

func (r *issueRepository) Save(ctx context.Context, issue domain.Issue, expectedUpdatedAt *time.Time) error {
	docs, err := encodeIssueDocs(issue)
	if err != nil {
		return err
	}
	const query = `
        UPDATE issues SET category=$2, description=$3, photo_url=$4, voice_note_text=$5, updated_at=$6,
            lat=$7, lng=$8, ward=$9, address=$10, status=$11, assigned_to=$12, reporter=$13,
            attachments=$14, timeline=$15, notes=$16
        WHERE id=$1 AND ($17::timestamptz IS NULL OR updated_at=$17)`
	cmd, err := r.pool.Exec(ctx, query,
		issue.ID,
		issue.Category,
		issue.Description,
		issue.PhotoURL,
		issue.VoiceNoteText,
		issue.UpdatedAt,
		issue.Location.Lat,
		issue.Location.Lng,
		issue.Location.Ward,
		issue.Location.Address,
		issue.Status,
		issue.AssignedTo,
		docs.reporter,
		docs.attachments,
		docs.timeline,
		docs.notes,
		expectedUpdatedAt,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() > 0 {
		return nil
	}

	var current time.Time
	if err := r.pool.QueryRow(ctx, `SELECT updated_at FROM issues WHERE id=$1`, issue.ID).Scan(&current); err != nil {
		return mapPgError(err, "issue", map[string]any{"issue_id": issue.ID})
	}
	return staleWrite(issue.ID, current)
}

func (r *issueRepository) AppendNote(ctx context.Context, issueID string, note domain.InternalNote) error {
	doc, err := json.Marshal([]domain.InternalNote{note})
	if err != nil {
		return fmt.Errorf("encode note: %w", err)
	}
	cmd, err := r.pool.Exec(ctx, `UPDATE issues SET notes = notes || $2::jsonb WHERE id=$1`, issueID, doc)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return apperrors.NewNotFound("issue", map[string]any{"issue_id": issueID})
	}
	return nil
}

func (r *issueRepository) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE id=$1`
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	issues, err := scanIssues(rows)
	if err != nil {
		return nil, err
	}
	if len(issues) == 0 {
		return nil, apperrors.NewNotFound("issue", map[string]any{"issue_id": id})
	}
	return &issues[0], nil
}

func (r *issueRepository) List(ctx context.Context) ([]domain.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues ORDER BY seq`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIssues(rows)
}

type issueDocs struct {
	reporter    []byte
	attachments []byte
	timeline    []byte
	notes       []byte
}

func encodeIssueDocs(issue domain.Issue) (issueDocs, error) {
	var docs issueDocs
	var err error
	if issue.Reporter != nil {
		if docs.reporter, err = json.Marshal(issue.Reporter); err != nil {
			return docs, fmt.Errorf("encode reporter: %w", err)
		}
	}
	if docs.attachments, err = json.Marshal(nonNil(issue.Attachments)); err != nil {
		return docs, fmt.Errorf("encode attachments: %w", err)
	}
	if docs.timeline, err = json.Marshal(nonNil(issue.Timeline)); err != nil {
		return docs, fmt.Errorf("encode timeline: %w", err)
	}
	if docs.notes, err = json.Marshal(nonNil(issue.Notes)); err != nil {
		return docs, fmt.Errorf("encode notes: %w", err)
	}
	return docs, nil
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

func scanIssues(rows pgx.Rows) ([]domain.Issue, error) {
	var result []domain.Issue
	for rows.Next() {
		var (
			issue domain.Issue
			docs  issueDocs
		)
		if err := rows.Scan(
			&issue.ID,
			&issue.Category,
			&issue.Description,
			&issue.PhotoURL,
			&issue.VoiceNoteText,
			&issue.CreatedAt,
			&issue.UpdatedAt,
			&issue.Location.Lat,
			&issue.Location.Lng,
			&issue.Location.Ward,
			&issue.Location.Address,
			&issue.Status,
			&issue.AssignedTo,
			&docs.reporter,
			&docs.attachments,
			&docs.timeline,
			&docs.notes,
		); err != nil {
			return nil, err
		}
		if len(docs.reporter) > 0 {
			issue.Reporter = &domain.CitizenInfo{}
			if err := json.Unmarshal(docs.reporter, issue.Reporter); err != nil {
				return nil, fmt.Errorf("decode reporter of %s: %w", issue.ID, err)
			}
		}
		if err := json.Unmarshal(docs.attachments, &issue.Attachments); err != nil {
			return nil, fmt.Errorf("decode attachments of %s: %w", issue.ID, err)
		}
		if err := json.Unmarshal(docs.timeline, &issue.Timeline); err != nil {
			return nil, fmt.Errorf("decode timeline of %s: %w", issue.ID, err)
		}
		if err := json.Unmarshal(docs.notes, &issue.Notes); err != nil {
			return nil, fmt.Errorf("decode notes of %s: %w", issue.ID, err)
		}
		result = append(result, issue)
	}
	return result, rows.Err()
}
