package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/mpetrov/screencast/internal/apperror"
	"github.com/mpetrov/screencast/internal/catalog"
	"github.com/mpetrov/screencast/internal/config"
	"github.com/mpetrov/screencast/internal/models"
	"github.com/mpetrov/screencast/internal/session"
	"github.com/mpetrov/screencast/internal/upload"
)

type Handlers struct {
	cfg          *config.Config
	orchestrator *upload.Orchestrator
	catalog      *catalog.Service
	log          zerolog.Logger
}

func NewHandlers(cfg *config.Config, orchestrator *upload.Orchestrator, catalogSvc *catalog.Service, log zerolog.Logger) *Handlers {
	return &Handlers{
		cfg:          cfg,
		orchestrator: orchestrator,
		catalog:      catalogSvc,
		log:          log.With().Str("component", "api").Logger(),
	}
}

func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

func (h *Handlers) VideoSlot(w http.ResponseWriter, r *http.Request) {
	user, ok := session.UserFromContext(r.Context())
	if !ok {
		writeError(w, h.log, apperror.Unauthenticated())
		return
	}

	slot, err := h.orchestrator.RequestVideoSlot(r.Context(), user.ID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, slot)
}

func (h *Handlers) ThumbnailSlot(w http.ResponseWriter, r *http.Request) {
	if _, ok := session.UserFromContext(r.Context()); !ok {
		writeError(w, h.log, apperror.Unauthenticated())
		return
	}

	var body struct {
		VideoID string `json:"videoId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, h.log, apperror.Validation("invalid JSON body"))
		return
	}

	slot, err := h.orchestrator.RequestThumbnailSlot(r.Context(), body.VideoID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, slot)
}

// Finalize completes an upload. Multipart form: thumbnail file plus
// videoId, title, description and optional visibility, tags, duration.
func (h *Handlers) Finalize(w http.ResponseWriter, r *http.Request) {
	user, ok := session.UserFromContext(r.Context())
	if !ok {
		writeError(w, h.log, apperror.Unauthenticated())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxThumbnailBytes+1<<20)
	if err := r.ParseMultipartForm(h.cfg.MaxThumbnailBytes); err != nil {
		writeError(w, h.log, apperror.Validation("request body too large or malformed"))
		return
	}

	input := upload.FinalizeInput{
		VideoID:     r.FormValue("videoId"),
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Visibility:  models.Visibility(r.FormValue("visibility")),
		Tags:        r.FormValue("tags"),
	}

	if raw := r.FormValue("duration"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds < 0 {
			writeError(w, h.log, apperror.Validation("duration must be a non-negative integer"))
			return
		}
		input.Duration = &seconds
	}

	file, _, err := r.FormFile("thumbnail")
	if err == nil {
		defer file.Close()
		input.Thumbnail = file
	}

	video, err := h.orchestrator.Finalize(r.Context(), user.ID, input)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, video)
}

func (h *Handlers) ListVideos(w http.ResponseWriter, r *http.Request) {
	callerID := ""
	if user, ok := session.UserFromContext(r.Context()); ok {
		callerID = user.ID
	}

	page, err := h.catalog.ListVideos(r.Context(), callerID, parseFilters(r))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handlers) ListVideosByOwner(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "userId")
	callerID := ""
	if user, ok := session.UserFromContext(r.Context()); ok {
		callerID = user.ID
	}

	result, err := h.catalog.ListVideosByOwner(r.Context(), ownerID, callerID, parseFilters(r))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) GetVideo(w http.ResponseWriter, r *http.Request) {
	record, err := h.catalog.GetVideoByID(r.Context(), chi.URLParam(r, "videoId"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *Handlers) GetTranscript(w http.ResponseWriter, r *http.Request) {
	text, err := h.catalog.GetTranscript(r.Context(), chi.URLParam(r, "videoId"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	w.Header().Set("Content-Type", "text/vtt; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(text))
}

func (h *Handlers) GetProcessingStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.catalog.GetProcessingStatus(r.Context(), chi.URLParam(r, "videoId"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handlers) RecordView(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.IncrementViews(r.Context(), chi.URLParam(r, "videoId")); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// ChangeVisibility is owner-gated here, at the calling layer; the store
// operation itself performs no authorization.
func (h *Handlers) ChangeVisibility(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoId")

	if _, ok := h.authorizeOwner(w, r, videoID); !ok {
		return
	}

	var body struct {
		Visibility models.Visibility `json:"visibility"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, h.log, apperror.Validation("invalid JSON body"))
		return
	}

	if err := h.catalog.SetVisibility(r.Context(), videoID, body.Visibility); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handlers) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoId")

	record, ok := h.authorizeOwner(w, r, videoID)
	if !ok {
		return
	}

	if err := h.catalog.DeleteVideo(r.Context(), videoID, record.Video.ThumbnailURL); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// authorizeOwner loads the video and verifies the session user owns it.
// On failure it has already written the response.
func (h *Handlers) authorizeOwner(w http.ResponseWriter, r *http.Request, videoID string) (*models.VideoWithUser, bool) {
	user, ok := session.UserFromContext(r.Context())
	if !ok {
		writeError(w, h.log, apperror.Unauthenticated())
		return nil, false
	}

	record, err := h.catalog.GetVideoByID(r.Context(), videoID)
	if err != nil {
		writeError(w, h.log, err)
		return nil, false
	}
	if record.Video.UserID != user.ID {
		writeError(w, h.log, apperror.Forbidden("only the owner may modify this video"))
		return nil, false
	}
	return record, true
}

func parseFilters(r *http.Request) catalog.Filters {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))

	return catalog.Filters{
		Query:    q.Get("query"),
		Sort:     models.SortKey(q.Get("sort")),
		Page:     page,
		PageSize: pageSize,
	}
}
