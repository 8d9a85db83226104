package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/muhammadolammi/joblens/internal/database"
)

type R2Config struct {
	AccountID string `yaml:"accountId"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
}

// ServiceConfig wires the optional collaborators shared by the HTTP API and
// the queue workers. A nil collaborator disables that feature.
type ServiceConfig struct {
	Config    Config
	DB        analysisStore
	Publisher updatePublisher
	Fetcher   objectFetcher
	Advisor   advisor
}

type analysisStore interface {
	CreateAnalysis(ctx context.Context, arg database.CreateAnalysisParams) (database.Analysis, error)
	GetAnalysis(ctx context.Context, id uuid.UUID) (database.Analysis, error)
}

type updatePublisher interface {
	PublishUpdate(update AnalysisUpdate) error
}

type objectFetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

type advisor interface {
	Advise(ctx context.Context, in adviceInput) (string, error)
}

const (
	sourceHTTP  = "http"
	sourceQueue = "queue"
)

const (
	statusProcessing = "processing"
	statusCompleted  = "completed"
	statusFailed     = "failed"
)

type AnalysisResult struct {
	ID                     uuid.UUID `json:"analysis_id"`
	MatchPercentage        float64   `json:"match_percentage"`
	MissingKeywords        []string  `json:"missing_keywords"`
	Recommendation         string    `json:"recommendation,omitempty"`
	ResumeFilename         string    `json:"resume_filename"`
	JobDescriptionFilename string    `json:"job_description_filename"`
	Source                 string    `json:"source"`
	CreatedAt              time.Time `json:"created_at"`
}

// ObjectRef points at an uploaded document in the R2 bucket.
type ObjectRef struct {
	ObjectKey string `json:"object_key"`
	Filename  string `json:"filename"`
	Mime      string `json:"mime"`
}

// AnalysisRequest is the body of a message on the analyses queue.
type AnalysisRequest struct {
	ID             uuid.UUID `json:"id"`
	Resume         ObjectRef `json:"resume"`
	JobDescription ObjectRef `json:"job_description"`
}

type AnalysisUpdate struct {
	AnalysisID uuid.UUID       `json:"analysis_id"`
	Status     string          `json:"status"`
	Message    string          `json:"message"`
	Timestamp  time.Time       `json:"timestamp"`
	Result     *AnalysisResult `json:"result,omitempty"`
}
