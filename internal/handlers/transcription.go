package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edusloth/edusloth-backend/internal/jobs"
	"github.com/edusloth/edusloth-backend/internal/repos"
	"github.com/edusloth/edusloth-backend/internal/requestdata"
	"github.com/edusloth/edusloth-backend/internal/services"
	"github.com/edusloth/edusloth-backend/internal/types"
)

type TranscriptionHandler struct {
	transcriptionService services.TranscriptionService
	pool                 *jobs.Pool
}

func NewTranscriptionHandler(transcriptionService services.TranscriptionService, pool *jobs.Pool) *TranscriptionHandler {
	return &TranscriptionHandler{
		transcriptionService: transcriptionService,
		pool:                 pool,
	}
}

func (th *TranscriptionHandler) Start(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	contentID := c.Param("id")

	transcription, err := th.transcriptionService.Start(c.Request.Context(), rd.UserID, contentID)
	switch {
	case errors.Is(err, repos.ErrNotFound):
		RespondError(c, http.StatusNotFound, "content_not_found", err)
		return
	case errors.Is(err, services.ErrContentNotTranscribable):
		RespondError(c, http.StatusBadRequest, "not_transcribable", err)
		return
	case errors.Is(err, services.ErrTranscriptionInFlight):
		RespondError(c, http.StatusConflict, "transcription_in_flight", err)
		return
	case errors.Is(err, services.ErrTranscriberUnavailable):
		RespondError(c, http.StatusServiceUnavailable, "transcription_unavailable", err)
		return
	case err != nil:
		RespondError(c, http.StatusInternalServerError, "transcription_start_failed", err)
		return
	}

	if transcription.Status == types.TranscriptionStatusCompleted {
		RespondOK(c, transcription)
		return
	}

	userID := rd.UserID
	claimed := transcription
	err = th.pool.Submit(jobs.Job{
		Name: "transcribe:" + contentID,
		Run: func(ctx context.Context) {
			th.transcriptionService.Run(ctx, claimed, userID)
		},
	})
	if err != nil {
		th.transcriptionService.MarkFailed(c.Request.Context(), claimed.ID, "transcription queue is full")
		RespondError(c, http.StatusServiceUnavailable, "queue_full", err)
		return
	}
	c.JSON(http.StatusAccepted, transcription)
}

func (th *TranscriptionHandler) Get(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	transcription, err := th.transcriptionService.Get(c.Request.Context(), rd.UserID, c.Param("id"))
	if errors.Is(err, repos.ErrNotFound) {
		RespondError(c, http.StatusNotFound, "transcription_not_found", err)
		return
	}
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "transcription_lookup_failed", err)
		return
	}
	RespondOK(c, transcription)
}
