package database

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

const createAnalysis = `-- name: CreateAnalysis :one
INSERT INTO analyses (
id, resume_filename, job_description_filename, match_percentage, missing_keywords, recommendation, source)
VALUES ( $1, $2, $3, $4, $5, $6, $7)
RETURNING id, created_at, resume_filename, job_description_filename, match_percentage, missing_keywords, recommendation, source
`

type CreateAnalysisParams struct {
	ID                     uuid.UUID
	ResumeFilename         string
	JobDescriptionFilename string
	MatchPercentage        float64
	MissingKeywords        json.RawMessage
	Recommendation         string
	Source                 string
}

func (q *Queries) CreateAnalysis(ctx context.Context, arg CreateAnalysisParams) (Analysis, error) {
	row := q.db.QueryRowContext(ctx, createAnalysis,
		arg.ID,
		arg.ResumeFilename,
		arg.JobDescriptionFilename,
		arg.MatchPercentage,
		arg.MissingKeywords,
		arg.Recommendation,
		arg.Source,
	)
	var i Analysis
	err := row.Scan(
		&i.ID,
		&i.CreatedAt,
		&i.ResumeFilename,
		&i.JobDescriptionFilename,
		&i.MatchPercentage,
		&i.MissingKeywords,
		&i.Recommendation,
		&i.Source,
	)
	return i, err
}

const getAnalysis = `-- name: GetAnalysis :one
SELECT id, created_at, resume_filename, job_description_filename, match_percentage, missing_keywords, recommendation, source FROM analyses WHERE id=$1
`

func (q *Queries) GetAnalysis(ctx context.Context, id uuid.UUID) (Analysis, error) {
	row := q.db.QueryRowContext(ctx, getAnalysis, id)
	var i Analysis
	err := row.Scan(
		&i.ID,
		&i.CreatedAt,
		&i.ResumeFilename,
		&i.JobDescriptionFilename,
		&i.MatchPercentage,
		&i.MissingKeywords,
		&i.Recommendation,
		&i.Source,
	)
	return i, err
}
