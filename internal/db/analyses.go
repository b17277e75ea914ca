package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resume-extractor/internal/types"
)

// Analysis is one stored analysis of a resume.
type Analysis struct {
	ID          int64              `json:"id"`
	ResumeID    string             `json:"resume_id"`
	Record      types.ResumeRecord `json:"analysis"`
	Tags        []string           `json:"tags"`
	ProcessedAt time.Time          `json:"processed_at"`
	CreatedAt   time.Time          `json:"created_at"`
}

// SaveAnalysis stores record under resumeID and returns the new row id.
func (db *DB) SaveAnalysis(ctx context.Context, resumeID string, record *types.ResumeRecord) (int64, error) {
	if record == nil {
		return 0, errors.New("record is nil")
	}

	data, err := json.Marshal(record)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal analysis: %w", err)
	}
	tags := record.Tags
	if tags == nil {
		tags = []string{}
	}
	tagData, err := json.Marshal(tags)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal tags: %w", err)
	}

	var id int64
	err = db.pool.QueryRow(ctx,
		`INSERT INTO resume_analyses (resume_id, analysis_data, tags, processed_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		resumeID, data, tagData, record.ProcessedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save analysis for %s: %w", resumeID, err)
	}
	return id, nil
}

const analysisColumns = `id, resume_id, analysis_data, tags, processed_at, created_at`

// GetLatestAnalysis returns the most recent analysis of resumeID, or nil if there is none.
func (db *DB) GetLatestAnalysis(ctx context.Context, resumeID string) (*Analysis, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+analysisColumns+`
		 FROM resume_analyses WHERE resume_id = $1
		 ORDER BY created_at DESC, id DESC LIMIT 1`,
		resumeID,
	)

	a, err := scanAnalysis(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get analysis for %s: %w", resumeID, err)
	}
	return a, nil
}

// ListAnalyses returns up to limit analyses of resumeID, newest first.
func (db *DB) ListAnalyses(ctx context.Context, resumeID string, limit int) ([]Analysis, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+analysisColumns+`
		 FROM resume_analyses WHERE resume_id = $1
		 ORDER BY created_at DESC, id DESC LIMIT $2`,
		resumeID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses for %s: %w", resumeID, err)
	}
	defer rows.Close()

	var out []Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list analyses for %s: %w", resumeID, err)
	}
	return out, nil
}

func scanAnalysis(row pgx.Row) (*Analysis, error) {
	var (
		a       Analysis
		data    []byte
		tagData []byte
	)
	if err := row.Scan(&a.ID, &a.ResumeID, &data, &tagData, &a.ProcessedAt, &a.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &a.Record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis: %w", err)
	}
	if err := json.Unmarshal(tagData, &a.Tags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
	}
	return &a, nil
}
