package auth

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"github.com/sentinelsec/sentinel/internal/db"
	"github.com/sentinelsec/sentinel/internal/errors"
	"github.com/sentinelsec/sentinel/internal/logging"
)

// ErrInvalidKey is returned for any presented key that fails
// verification. The reason is deliberately not distinguished.
var ErrInvalidKey = stderrors.New("invalid API key")

// touchTimeout bounds the off-request usage bump.
const touchTimeout = 5 * time.Second

const keyColumns = `id, name, key_prefix, created_at, updated_at,
	last_used_at, expires_at, is_active, usage_count, notes, created_by`

// keyRow carries the stored hash alongside the public metadata. Only
// Verify reads it; the hash never leaves this package.
type keyRow struct {
	KeyInfo
	KeyHash string `db:"key_hash"`
}

// Store persists issued keys in the api_keys table.
type Store struct {
	db     *db.DB
	logger *logging.Logger
}

// NewStore creates a key store.
func NewStore(database *db.DB) *Store {
	return &Store{
		db:     database,
		logger: logging.Default().WithComponent("auth"),
	}
}

// IssueRequest describes a key to create.
type IssueRequest struct {
	Name      string
	ExpiresAt *time.Time
	CreatedBy string
	Notes     string
}

// Issue generates a key and stores its hash. The returned GeneratedKey
// carries the only copy of the full key.
func (s *Store) Issue(ctx context.Context, req IssueRequest) (*GeneratedKey, error) {
	generated, err := Generate(req.Name)
	if err != nil {
		return nil, err
	}
	hash, err := Hash(generated.Key)
	if err != nil {
		return nil, err
	}

	generated.Info.ID = uuid.New()
	generated.Info.ExpiresAt = req.ExpiresAt
	generated.Info.Notes = req.Notes
	if req.CreatedBy != "" {
		createdBy := req.CreatedBy
		generated.Info.CreatedBy = &createdBy
	}

	query := `
		INSERT INTO api_keys (id, name, key_hash, key_prefix, expires_at, is_active, usage_count, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, true, 0, $6, $7)
		RETURNING created_at, updated_at`

	err = s.db.QueryRowContext(ctx, query,
		generated.Info.ID, generated.Info.Name, hash, generated.Info.KeyPrefix,
		generated.Info.ExpiresAt, generated.Info.Notes, generated.Info.CreatedBy,
	).Scan(&generated.Info.CreatedAt, &generated.Info.UpdatedAt)
	if err != nil {
		return nil, errors.WrapDatabaseError(errors.CodeDatabaseQuery, "Failed to store API key", err)
	}

	return generated, nil
}

// Verify authenticates a presented key. Candidate rows are narrowed by
// display prefix before any bcrypt comparison runs, so verification
// cost stays flat as keys accumulate.
func (s *Store) Verify(ctx context.Context, presented string) (*KeyInfo, error) {
	if !ValidFormat(presented) {
		return nil, ErrInvalidKey
	}

	query := `
		SELECT ` + keyColumns + `, key_hash
		FROM api_keys
		WHERE key_prefix = $1
		  AND is_active = true
		  AND (expires_at IS NULL OR expires_at > NOW())`

	var candidates []keyRow
	if err := s.db.SelectContext(ctx, &candidates, query, DisplayPrefix(presented)); err != nil {
		return nil, errors.WrapDatabaseError(errors.CodeDatabaseQuery, "Failed to load API keys", err)
	}

	for i := range candidates {
		if Matches(presented, candidates[i].KeyHash) {
			info := candidates[i].KeyInfo
			go s.touch(info.ID)
			return &info, nil
		}
	}

	return nil, ErrInvalidKey
}

// List returns stored keys, newest first. Inactive and expired keys
// are excluded unless asked for.
func (s *Store) List(ctx context.Context, includeInactive, includeExpired bool) ([]KeyInfo, error) {
	query := `SELECT ` + keyColumns + ` FROM api_keys WHERE 1=1`
	if !includeInactive {
		query += ` AND is_active = true`
	}
	if !includeExpired {
		query += ` AND (expires_at IS NULL OR expires_at > NOW())`
	}
	query += ` ORDER BY created_at DESC`

	var keys []KeyInfo
	if err := s.db.SelectContext(ctx, &keys, query); err != nil {
		return nil, errors.WrapDatabaseError(errors.CodeDatabaseQuery, "Failed to list API keys", err)
	}
	return keys, nil
}

// Find locates a key by ID or by a fragment of its display prefix.
func (s *Store) Find(ctx context.Context, identifier string) (*KeyInfo, error) {
	var (
		query string
		arg   interface{}
	)
	if id, err := uuid.Parse(identifier); err == nil {
		query = `SELECT ` + keyColumns + ` FROM api_keys WHERE id = $1`
		arg = id
	} else {
		query = `SELECT ` + keyColumns + ` FROM api_keys WHERE key_prefix LIKE $1 || '%' LIMIT 1`
		arg = identifier
	}

	var key KeyInfo
	if err := s.db.GetContext(ctx, &key, query, arg); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewDatabaseError(errors.CodeNotFound, "API key not found")
		}
		return nil, errors.WrapDatabaseError(errors.CodeDatabaseQuery, "Failed to load API key", err)
	}
	return &key, nil
}

// Revoke deactivates a key located by ID or prefix fragment. Revoked
// keys stay listed for audit; they never verify again.
func (s *Store) Revoke(ctx context.Context, identifier string) error {
	key, err := s.Find(ctx, identifier)
	if err != nil {
		return err
	}

	query := `UPDATE api_keys SET is_active = false WHERE id = $1`
	if _, err := s.db.ExecContext(ctx, query, key.ID); err != nil {
		return errors.WrapDatabaseError(errors.CodeDatabaseQuery, "Failed to revoke API key", err)
	}

	s.logger.Info("API key revoked", "key_id", key.ID.String(), "name", key.Name)
	return nil
}

// DeactivateExpired flips expired keys inactive and reports how many
// changed.
func (s *Store) DeactivateExpired(ctx context.Context) (int64, error) {
	query := `
		UPDATE api_keys SET is_active = false
		WHERE is_active = true
		  AND expires_at IS NOT NULL
		  AND expires_at < NOW()`

	result, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return 0, errors.WrapDatabaseError(errors.CodeDatabaseQuery, "Failed to deactivate expired API keys", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.WrapDatabaseError(errors.CodeDatabaseQuery, "Failed to read deactivation count", err)
	}
	return affected, nil
}

// touch bumps usage accounting off the request path.
func (s *Store) touch(id uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), touchTimeout)
	defer cancel()

	query := `UPDATE api_keys SET last_used_at = NOW(), usage_count = usage_count + 1 WHERE id = $1`
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		s.logger.Warn("Failed to record API key use", "key_id", id.String(), "error", err)
	}
}
