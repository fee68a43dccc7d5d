// internal/history/store.go
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"contractgen-workers/internal/common/logger"
	"contractgen-workers/internal/generation/request"
	"contractgen-workers/internal/models"
)

// Record is one row of the generation history.
type Record struct {
	ID                 string    `json:"id"`
	OrganizationType   string    `json:"organizationType"`
	TransactionPattern string    `json:"transactionPattern"`
	ArtifactCategory   string    `json:"artifactCategory"`
	FromCache          bool      `json:"fromCache"`
	Degraded           bool      `json:"degraded"`
	ProcessingTimeMs   int64     `json:"processingTimeMs"`
	CreatedAt          time.Time `json:"createdAt"`
}

const insertQuery = `
	INSERT INTO generation_history (
		id, organization_type, transaction_pattern, artifact_category,
		customizations, artifact, findings, from_cache, degraded,
		processing_time_ms, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

const recentQuery = `
	SELECT id, organization_type, transaction_pattern, artifact_category,
	       from_cache, degraded, processing_time_ms, created_at
	FROM generation_history
	ORDER BY created_at DESC
	LIMIT $1`

// Store appends completed generations to PostgreSQL. It plugs into the
// orchestrator as an out-of-band sink: write failures are logged, never
// surfaced to the request path.
type Store struct {
	db  *sql.DB
	log logger.Logger
	now func() time.Time
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{db: db, log: log, now: time.Now}
}

// Record persists one completed generation.
func (s *Store) Record(ctx context.Context, req *request.GenerationRequest, result *models.GenerationResult) {
	customizations, err := json.Marshal(req.Customizations)
	if err != nil {
		customizations = []byte("{}")
	}
	findings, err := json.Marshal(result.Findings)
	if err != nil {
		findings = []byte("[]")
	}

	_, err = s.db.ExecContext(ctx, insertQuery,
		uuid.NewString(),
		req.OrganizationType,
		req.TransactionPattern,
		req.ArtifactCategory,
		customizations,
		result.ArtifactText,
		findings,
		result.FromCache,
		result.FullyDegraded(),
		result.ProcessingTimeMs,
		s.now().UTC(),
	)
	if err != nil {
		s.log.WithError(err).Error("history write failed", map[string]interface{}{
			"organizationType": req.OrganizationType,
			"artifactCategory": req.ArtifactCategory,
		})
	}
}

// Recent returns the newest history rows, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, recentQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("query generation history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(
			&r.ID, &r.OrganizationType, &r.TransactionPattern, &r.ArtifactCategory,
			&r.FromCache, &r.Degraded, &r.ProcessingTimeMs, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan generation history: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
