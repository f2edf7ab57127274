package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/appforge-io/appforge-backend/internal/projects/domain"
)

// MessageRepo persists conversation turns and their attached fragments.
type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// FragmentInput is the artifact payload for a new RESULT message.
type FragmentInput struct {
	Title      string
	SandboxURL string
	Files      domain.FileSet
}

// RecentWindow returns up to limit of the most recent messages for a project
// in ascending chronological order, each carrying its fragment when present.
func (r *MessageRepo) RecentWindow(ctx context.Context, projectID string, limit int) ([]domain.Message, error) {
	const q = `
select
  m.id, m.project_id, m.role, m.type, m.content, m.created_at,
  f.id, f.title, f.sandbox_url, f.files, f.created_at
from messages m
left join fragments f on f.message_id = m.id
where m.project_id = $1
order by m.created_at desc
limit $2
`
	rows, err := r.db.QueryContext(ctx, q, projectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Message{}
	for rows.Next() {
		var (
			m         domain.Message
			fragID    sql.NullString
			fragTitle sql.NullString
			fragURL   sql.NullString
			fragFiles []byte
			fragAt    sql.NullTime
		)
		if err := rows.Scan(
			&m.ID, &m.ProjectID, &m.Role, &m.Type, &m.Content, &m.CreatedAt,
			&fragID, &fragTitle, &fragURL, &fragFiles, &fragAt,
		); err != nil {
			return nil, err
		}
		if fragID.Valid {
			frag := &domain.Fragment{
				ID:         fragID.String,
				MessageID:  m.ID,
				Title:      fragTitle.String,
				SandboxURL: fragURL.String,
				CreatedAt:  fragAt.Time,
			}
			if len(fragFiles) > 0 {
				if err := json.Unmarshal(fragFiles, &frag.Files); err != nil {
					return nil, fmt.Errorf("decode fragment files: %w", err)
				}
			}
			m.Fragment = frag
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Query is newest-first so the limit keeps the recent window; callers
	// need chronological order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// LatestFragmentFiles returns the file snapshot of the most recent
// ASSISTANT/RESULT message, or nil when the project has produced none.
func (r *MessageRepo) LatestFragmentFiles(ctx context.Context, projectID string) (domain.FileSet, error) {
	const q = `
select f.files
from fragments f
join messages m on m.id = f.message_id
where m.project_id = $1
  and m.role = $2
  and m.type = $3
order by m.created_at desc
limit 1
`
	var raw []byte
	err := r.db.QueryRowContext(ctx, q, projectID, domain.RoleAssistant, domain.TypeResult).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var files domain.FileSet
	if err := json.Unmarshal(raw, &files); err != nil {
		return nil, fmt.Errorf("decode fragment files: %w", err)
	}
	return files, nil
}

// CreateMessage inserts one turn and, when fragment is non-nil, its artifact
// in the same transaction. ERROR messages must not carry a fragment.
func (r *MessageRepo) CreateMessage(ctx context.Context, projectID string, role domain.MessageRole, msgType domain.MessageType, content string, fragment *FragmentInput) (*domain.Message, error) {
	if msgType == domain.TypeError && fragment != nil {
		return nil, fmt.Errorf("error messages cannot carry a fragment")
	}

	id, err := domain.NewID("msg")
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	m := &domain.Message{
		ID:        id,
		ProjectID: projectID,
		Role:      role,
		Type:      msgType,
		Content:   content,
	}

	const insertMsg = `
insert into messages (id, project_id, role, type, content)
values ($1, $2, $3, $4, $5)
returning created_at
`
	if err := tx.QueryRowContext(ctx, insertMsg, id, projectID, role, msgType, content).Scan(&m.CreatedAt); err != nil {
		return nil, err
	}

	if fragment != nil {
		fragID, err := domain.NewID("frag")
		if err != nil {
			return nil, err
		}
		files, err := json.Marshal(fragment.Files)
		if err != nil {
			return nil, fmt.Errorf("encode fragment files: %w", err)
		}

		const insertFrag = `
insert into fragments (id, message_id, title, sandbox_url, files)
values ($1, $2, $3, $4, $5)
returning created_at
`
		frag := &domain.Fragment{
			ID:         fragID,
			MessageID:  id,
			Title:      fragment.Title,
			SandboxURL: fragment.SandboxURL,
			Files:      fragment.Files,
		}
		if err := tx.QueryRowContext(ctx, insertFrag, fragID, id, fragment.Title, fragment.SandboxURL, files).Scan(&frag.CreatedAt); err != nil {
			return nil, err
		}
		m.Fragment = frag
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return m, nil
}
