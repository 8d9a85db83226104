package database

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Analysis struct {
	ID                     uuid.UUID
	CreatedAt              time.Time
	ResumeFilename         string
	JobDescriptionFilename string
	MatchPercentage        float64
	MissingKeywords        json.RawMessage
	Recommendation         string
	Source                 string
}
