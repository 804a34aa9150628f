package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/edusloth/edusloth-backend/internal/repos"
	"github.com/edusloth/edusloth-backend/internal/requestdata"
	"github.com/edusloth/edusloth-backend/internal/services"
	"github.com/edusloth/edusloth-backend/internal/types"
)

// maxUploadBytes caps a single upload at 100MB.
const maxUploadBytes = 100 << 20

type ContentHandler struct {
	contentService  services.ContentService
	reminderService services.ReminderService
}

func NewContentHandler(contentService services.ContentService, reminderService services.ReminderService) *ContentHandler {
	return &ContentHandler{
		contentService:  contentService,
		reminderService: reminderService,
	}
}

func validContentType(t string) bool {
	switch t {
	case types.ContentTypeDocument, types.ContentTypeAudio, types.ContentTypeVideo, types.ContentTypeText, types.ContentTypeImage:
		return true
	}
	return false
}

func (ch *ContentHandler) Create(c *gin.Context) {
	if c.Request.ContentLength > maxUploadBytes {
		RespondError(c, http.StatusRequestEntityTooLarge, "file_too_large", errors.New("uploaded file exceeds the 100MB limit"))
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	title := c.PostForm("title")
	if title == "" {
		RespondError(c, http.StatusBadRequest, "missing_title", errors.New("a title is required"))
		return
	}
	contentType := c.PostForm("content_type")
	if !validContentType(contentType) {
		RespondError(c, http.StatusBadRequest, "invalid_content_type", errors.New("content_type must be document, audio, video, text or image"))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			RespondError(c, http.StatusRequestEntityTooLarge, "file_too_large", errors.New("uploaded file exceeds the 100MB limit"))
			return
		}
		RespondError(c, http.StatusBadRequest, "missing_file", errors.New("a file upload is required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}
	defer file.Close()

	rd := requestdata.GetRequestData(c.Request.Context())
	content, err := ch.contentService.CreateContent(c.Request.Context(), rd.UserID, services.CreateContentInput{
		Title:       title,
		Description: c.PostForm("description"),
		ContentType: contentType,
		Filename:    fileHeader.Filename,
		MimeType:    fileHeader.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "upload_failed", err)
		return
	}

	ch.reminderService.CreateStudyReminders(c.Request.Context(), rd.UserID, content.ID, content.Title)
	c.JSON(http.StatusCreated, content)
}

func (ch *ContentHandler) Get(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	detail, err := ch.contentService.GetContent(c.Request.Context(), c.Param("id"), rd.UserID)
	if errors.Is(err, repos.ErrNotFound) {
		RespondError(c, http.StatusNotFound, "content_not_found", err)
		return
	}
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "content_lookup_failed", err)
		return
	}
	RespondOK(c, detail)
}

func (ch *ContentHandler) List(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	skip, limit := pagination(c)
	items, err := ch.contentService.ListContent(c.Request.Context(), rd.UserID, skip, limit)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "content_list_failed", err)
		return
	}
	RespondOK(c, items)
}

func (ch *ContentHandler) Delete(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	err := ch.contentService.DeleteContent(c.Request.Context(), c.Param("id"), rd.UserID)
	if errors.Is(err, repos.ErrNotFound) {
		RespondError(c, http.StatusNotFound, "content_not_found", err)
		return
	}
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "content_delete_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

func pagination(c *gin.Context) (skip, limit int64) {
	skip, _ = strconv.ParseInt(c.DefaultQuery("skip", "0"), 10, 64)
	limit, _ = strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return skip, limit
}
