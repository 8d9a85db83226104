package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/muhammadolammi/joblens/internal/database"
	"github.com/muhammadolammi/joblens/internal/extract"
	"github.com/muhammadolammi/joblens/internal/scoring"
)

type analysisInput struct {
	ID             uuid.UUID
	Resume         extract.Document
	JobDescription extract.Document
	Source         string
}

// runAnalysis scores one resume against one job description, asks the
// advisor for a recommendation when one is configured and records the
// result when history is enabled.
func (cfg *ServiceConfig) runAnalysis(ctx context.Context, in analysisInput) (AnalysisResult, error) {
	log := zerolog.Ctx(ctx)

	scored, err := scoring.Analyze(in.Resume.Text, in.JobDescription.Text)
	if err != nil {
		return AnalysisResult{}, err
	}
	log.Debug().
		Int("resume_tokens", scored.ResumeTokens).
		Int("job_tokens", scored.JobTokens).
		Int("vocabulary", scored.VocabularySize).
		Msg("documents vectorized")

	result := AnalysisResult{
		ID:                     in.ID,
		MatchPercentage:        scored.MatchPercentage,
		MissingKeywords:        scored.MissingKeywords,
		ResumeFilename:         in.Resume.Filename,
		JobDescriptionFilename: in.JobDescription.Filename,
		Source:                 in.Source,
		CreatedAt:              time.Now().UTC(),
	}

	if cfg.Advisor != nil {
		rec, err := cfg.Advisor.Advise(ctx, adviceInput{
			MatchPercentage:    result.MatchPercentage,
			MissingKeywords:    result.MissingKeywords,
			ResumeText:         in.Resume.Text,
			JobDescriptionText: in.JobDescription.Text,
		})
		if err != nil {
			log.Warn().Err(err).Msg("advisor failed, returning lexical result only")
		} else {
			result.Recommendation = rec
		}
	}

	if cfg.DB != nil {
		missingJSON, err := json.Marshal(result.MissingKeywords)
		if err != nil {
			return AnalysisResult{}, fmt.Errorf("failed to marshal missing keywords: %w", err)
		}
		row, err := retry(ctx, 3, func() (database.Analysis, error) {
			return cfg.DB.CreateAnalysis(ctx, database.CreateAnalysisParams{
				ID:                     result.ID,
				ResumeFilename:         result.ResumeFilename,
				JobDescriptionFilename: result.JobDescriptionFilename,
				MatchPercentage:        result.MatchPercentage,
				MissingKeywords:        missingJSON,
				Recommendation:         result.Recommendation,
				Source:                 result.Source,
			})
		})
		if err != nil {
			return AnalysisResult{}, fmt.Errorf("failed to save analysis after retries: %w", err)
		}
		result.CreatedAt = row.CreatedAt
	}

	log.Info().
		Float64("match_percentage", result.MatchPercentage).
		Int("missing_keywords", len(result.MissingKeywords)).
		Msg("analysis completed")
	return result, nil
}

// publishUpdate sends a status update when a publisher is configured.
// Publishing failures are logged and never fail the analysis.
func (cfg *ServiceConfig) publishUpdate(ctx context.Context, id uuid.UUID, status, message string, result *AnalysisResult) {
	if cfg.Publisher == nil {
		return
	}
	err := cfg.Publisher.PublishUpdate(AnalysisUpdate{
		AnalysisID: id,
		Status:     status,
		Message:    message,
		Timestamp:  time.Now().UTC(),
		Result:     result,
	})
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("status", status).Msg("failed to publish update")
	}
}

func resultFromRow(row database.Analysis) (AnalysisResult, error) {
	missing := []string{}
	if len(row.MissingKeywords) > 0 {
		if err := json.Unmarshal(row.MissingKeywords, &missing); err != nil {
			return AnalysisResult{}, fmt.Errorf("decode missing keywords of %s: %w", row.ID, err)
		}
		if missing == nil {
			missing = []string{}
		}
	}
	return AnalysisResult{
		ID:                     row.ID,
		MatchPercentage:        row.MatchPercentage,
		MissingKeywords:        missing,
		Recommendation:         row.Recommendation,
		ResumeFilename:         row.ResumeFilename,
		JobDescriptionFilename: row.JobDescriptionFilename,
		Source:                 row.Source,
		CreatedAt:              row.CreatedAt,
	}, nil
}
