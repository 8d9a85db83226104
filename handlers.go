package main

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/muhammadolammi/joblens/internal/apierror"
	"github.com/muhammadolammi/joblens/internal/extract"
	"github.com/muhammadolammi/joblens/internal/logger"
	"github.com/muhammadolammi/joblens/internal/report"
	"github.com/muhammadolammi/joblens/internal/scoring"
)

const (
	resumeField         = "resume"
	jobDescriptionField = "job_description"
)

func (cfg *ServiceConfig) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/analyze", MethodChecker(http.MethodPost)(cfg.handleAnalyze))
	mux.HandleFunc("/healthz", MethodChecker(http.MethodGet)(handleHealthz))
	if cfg.DB != nil {
		mux.HandleFunc("/analyses/{id}", MethodChecker(http.MethodGet)(cfg.handleGetAnalysis))
		mux.HandleFunc("/analyses/{id}/report", MethodChecker(http.MethodGet)(cfg.handleGetReport))
	}

	return RequestID(Logger(Recover(CORS(cfg.Config.AllowedOrigins)(mux))))
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (cfg *ServiceConfig) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GetRequestID(r.Context())
	log := zerolog.Ctx(r.Context())

	// Uploads are parsed in memory up to the upload limit.
	r.Body = http.MaxBytesReader(w, r.Body, cfg.Config.MaxUploadBytes)
	if err := r.ParseMultipartForm(cfg.Config.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondWithError(w, apierror.ErrTooLarge(fmt.Sprintf("limit is %d bytes", tooLarge.Limit)).WithRequestID(requestID))
			return
		}
		log.Warn().Err(err).Msg("failed to parse multipart form")
		RespondWithError(w, apierror.ErrBadRequest(apierror.MsgMissingFiles).WithRequestID(requestID))
		return
	}
	defer r.MultipartForm.RemoveAll()

	resumeHeader := formFile(r.MultipartForm, resumeField)
	jdHeader := formFile(r.MultipartForm, jobDescriptionField)
	if resumeHeader == nil || jdHeader == nil {
		log.Warn().Msg("missing resume or job_description in form-data")
		RespondWithError(w, apierror.ErrBadRequest(apierror.MsgMissingFiles).WithRequestID(requestID))
		return
	}
	log.Info().
		Str("resume", resumeHeader.Filename).
		Str("job_description", jdHeader.Filename).
		Msg("received files")

	resume, err := readUpload(resumeHeader)
	if err != nil {
		respondWithUploadError(w, r, err)
		return
	}
	jd, err := readUpload(jdHeader)
	if err != nil {
		respondWithUploadError(w, r, err)
		return
	}
	cfg.respondWithAnalysis(w, r, resume, jd)
}

// respondWithUploadError reports unreadable uploads as unsupported files:
// a corrupt PDF or DOCX is as unusable as a wrong extension.
func respondWithUploadError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := logger.GetRequestID(r.Context())
	zerolog.Ctx(r.Context()).Warn().Err(err).Msg("unusable upload")

	detail := "file could not be read"
	if errors.Is(err, extract.ErrUnsupportedFormat) || errors.Is(err, extract.ErrEmptyDocument) {
		detail = err.Error()
	}
	RespondWithError(w, apierror.ErrBadRequest(apierror.MsgUnsupportedFile).WithDetail(detail).WithRequestID(requestID))
}

func (cfg *ServiceConfig) respondWithAnalysis(w http.ResponseWriter, r *http.Request, resume, jd extract.Document) {
	ctx := r.Context()
	requestID := logger.GetRequestID(ctx)

	id := uuid.New()
	ctx = zerolog.Ctx(ctx).With().Str("analysis_id", id.String()).Logger().WithContext(ctx)

	result, err := cfg.runAnalysis(ctx, analysisInput{
		ID:             id,
		Resume:         resume,
		JobDescription: jd,
		Source:         sourceHTTP,
	})
	if errors.Is(err, scoring.ErrEmptyVocabulary) {
		RespondWithError(w, apierror.ErrUnprocessable(apierror.MsgNoScorableTerms).WithRequestID(requestID))
		return
	}
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("error in analysis")
		RespondWithError(w, apierror.ErrInternalServer("").WithRequestID(requestID))
		return
	}
	cfg.publishUpdate(ctx, id, statusCompleted, "analysis completed", &result)

	if r.URL.Query().Get("format") == "pdf" {
		respondWithReport(w, r, result)
		return
	}
	RespondWithJSON(w, http.StatusOK, result)
}

func (cfg *ServiceConfig) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	result, ok := cfg.lookupAnalysis(w, r)
	if !ok {
		return
	}
	RespondWithJSON(w, http.StatusOK, result)
}

func (cfg *ServiceConfig) handleGetReport(w http.ResponseWriter, r *http.Request) {
	result, ok := cfg.lookupAnalysis(w, r)
	if !ok {
		return
	}
	respondWithReport(w, r, result)
}

func (cfg *ServiceConfig) lookupAnalysis(w http.ResponseWriter, r *http.Request) (AnalysisResult, bool) {
	requestID := logger.GetRequestID(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondWithError(w, apierror.ErrBadRequest(apierror.MsgInvalidAnalysisID).WithRequestID(requestID))
		return AnalysisResult{}, false
	}

	row, err := cfg.DB.GetAnalysis(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		RespondWithError(w, apierror.ErrNotFound("analysis "+id.String()).WithRequestID(requestID))
		return AnalysisResult{}, false
	}
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("analysis_id", id.String()).Msg("failed to load analysis")
		RespondWithError(w, apierror.ErrInternalServer("").WithRequestID(requestID))
		return AnalysisResult{}, false
	}

	result, err := resultFromRow(row)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to decode analysis")
		RespondWithError(w, apierror.ErrInternalServer("").WithRequestID(requestID))
		return AnalysisResult{}, false
	}
	return result, true
}

func respondWithReport(w http.ResponseWriter, r *http.Request, result AnalysisResult) {
	var buf bytes.Buffer
	err := report.Render(&buf, report.Report{
		ID:                     result.ID.String(),
		ResumeFilename:         result.ResumeFilename,
		JobDescriptionFilename: result.JobDescriptionFilename,
		MatchPercentage:        result.MatchPercentage,
		MissingKeywords:        result.MissingKeywords,
		Recommendation:         result.Recommendation,
		CreatedAt:              result.CreatedAt,
	})
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to render report")
		RespondWithError(w, apierror.ErrInternalServer("").WithRequestID(logger.GetRequestID(r.Context())))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", "joblens-"+result.ID.String()+".pdf"))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func formFile(form *multipart.Form, field string) *multipart.FileHeader {
	if form == nil {
		return nil
	}
	if fhs := form.File[field]; len(fhs) > 0 {
		return fhs[0]
	}
	return nil
}

func readUpload(fh *multipart.FileHeader) (extract.Document, error) {
	f, err := fh.Open()
	if err != nil {
		return extract.Document{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return extract.Document{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return extract.Extract(fh.Filename, fh.Header.Get("Content-Type"), data)
}
