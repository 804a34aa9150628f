package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edusloth/edusloth-backend/internal/generation"
	"github.com/edusloth/edusloth-backend/internal/jobs"
	"github.com/edusloth/edusloth-backend/internal/repos"
	"github.com/edusloth/edusloth-backend/internal/requestdata"
	"github.com/edusloth/edusloth-backend/internal/types"
)

type AIHandler struct {
	pipeline     *generation.Pipeline
	pool         *jobs.Pool
	contentRepo  repos.ContentRepo
	artifactRepo repos.ArtifactRepo
}

func NewAIHandler(pipeline *generation.Pipeline, pool *jobs.Pool, contentRepo repos.ContentRepo, artifactRepo repos.ArtifactRepo) *AIHandler {
	return &AIHandler{
		pipeline:     pipeline,
		pool:         pool,
		contentRepo:  contentRepo,
		artifactRepo: artifactRepo,
	}
}

// Generate claims the (content, type) slot and hands the run to the worker
// pool. Validation failures answer synchronously; the artifact itself reaches
// a terminal state in the background.
func (ah *AIHandler) Generate(c *gin.Context) {
	var req struct {
		Type     string `json:"type"`
		Question string `json:"question"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", errors.New("invalid request body"))
		return
	}

	rd := requestdata.GetRequestData(c.Request.Context())
	contentID := c.Param("id")

	artifact, err := ah.pipeline.Begin(c.Request.Context(), rd.UserID, contentID, req.Type, req.Question)
	switch {
	case errors.Is(err, generation.ErrContentNotFound):
		RespondError(c, http.StatusNotFound, "content_not_found", err)
		return
	case errors.Is(err, generation.ErrInvalidArtifactType),
		errors.Is(err, generation.ErrMissingQuestion),
		errors.Is(err, generation.ErrPrecursorNotReady),
		errors.Is(err, generation.ErrUnsupportedContentType):
		RespondError(c, http.StatusBadRequest, "invalid_generation_request", err)
		return
	case errors.Is(err, repos.ErrGenerationInFlight):
		RespondError(c, http.StatusConflict, "generation_in_flight", err)
		return
	case err != nil:
		RespondError(c, http.StatusInternalServerError, "generation_start_failed", err)
		return
	}

	userID := rd.UserID
	claimed := artifact
	err = ah.pool.Submit(jobs.Job{
		Name: "generate:" + req.Type + ":" + contentID,
		Run: func(ctx context.Context) {
			ah.pipeline.Run(ctx, claimed, userID)
		},
	})
	if err != nil {
		ah.pipeline.MarkFailed(c.Request.Context(), claimed.ID, "generation queue is full")
		RespondError(c, http.StatusServiceUnavailable, "queue_full", err)
		return
	}
	c.JSON(http.StatusAccepted, artifact)
}

func (ah *AIHandler) ListGenerated(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	contentID := c.Param("id")

	if _, err := ah.contentRepo.GetByID(c.Request.Context(), contentID, rd.UserID); err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			RespondError(c, http.StatusNotFound, "content_not_found", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "content_lookup_failed", err)
		return
	}

	artifacts, err := ah.artifactRepo.GetByContent(c.Request.Context(), contentID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "generated_list_failed", err)
		return
	}
	RespondOK(c, artifacts)
}

func (ah *AIHandler) GetGenerated(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	contentID := c.Param("id")
	artifactType := c.Param("type")

	if !types.ValidArtifactType(artifactType) {
		RespondError(c, http.StatusBadRequest, "invalid_generation_type", generation.ErrInvalidArtifactType)
		return
	}
	if _, err := ah.contentRepo.GetByID(c.Request.Context(), contentID, rd.UserID); err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			RespondError(c, http.StatusNotFound, "content_not_found", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "content_lookup_failed", err)
		return
	}

	artifact, err := ah.artifactRepo.GetByContentAndType(c.Request.Context(), contentID, artifactType)
	if errors.Is(err, repos.ErrNotFound) {
		RespondError(c, http.StatusNotFound, "generated_not_found", err)
		return
	}
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "generated_lookup_failed", err)
		return
	}
	RespondOK(c, artifact)
}
