package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edusloth/edusloth-backend/internal/repos"
	"github.com/edusloth/edusloth-backend/internal/requestdata"
	"github.com/edusloth/edusloth-backend/internal/services"
)

type ReminderHandler struct {
	reminderService services.ReminderService
}

func NewReminderHandler(reminderService services.ReminderService) *ReminderHandler {
	return &ReminderHandler{reminderService: reminderService}
}

func (rh *ReminderHandler) Create(c *gin.Context) {
	var req struct {
		ContentID   string    `json:"content_id"`
		Description string    `json:"description"`
		DueDate     time.Time `json:"due_date"`
		Priority    string    `json:"priority"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", errors.New("invalid request body"))
		return
	}
	rd := requestdata.GetRequestData(c.Request.Context())
	reminder, err := rh.reminderService.CreateReminder(c.Request.Context(), rd.UserID, services.CreateReminderInput{
		ContentID:   req.ContentID,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
	})
	if errors.Is(err, services.ErrReminderDescriptionRequired) || errors.Is(err, services.ErrInvalidReminderPriority) {
		RespondError(c, http.StatusBadRequest, "invalid_reminder", err)
		return
	}
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "reminder_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, reminder)
}

func (rh *ReminderHandler) Get(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	reminder, err := rh.reminderService.GetReminder(c.Request.Context(), rd.UserID, c.Param("id"))
	if errors.Is(err, repos.ErrNotFound) {
		RespondError(c, http.StatusNotFound, "reminder_not_found", err)
		return
	}
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "reminder_lookup_failed", err)
		return
	}
	RespondOK(c, reminder)
}

func (rh *ReminderHandler) List(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	includeCompleted := c.Query("include_completed") == "true"
	skip, limit := pagination(c)
	reminders, err := rh.reminderService.ListReminders(c.Request.Context(), rd.UserID, includeCompleted, skip, limit)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "reminder_list_failed", err)
		return
	}
	RespondOK(c, reminders)
}

func (rh *ReminderHandler) Upcoming(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))
	reminders, err := rh.reminderService.ListUpcoming(c.Request.Context(), rd.UserID, days)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "reminder_list_failed", err)
		return
	}
	RespondOK(c, reminders)
}

func (rh *ReminderHandler) Update(c *gin.Context) {
	var req struct {
		Description *string    `json:"description"`
		DueDate     *time.Time `json:"due_date"`
		Priority    *string    `json:"priority"`
		IsCompleted *bool      `json:"is_completed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", errors.New("invalid request body"))
		return
	}
	rd := requestdata.GetRequestData(c.Request.Context())
	reminder, err := rh.reminderService.UpdateReminder(c.Request.Context(), rd.UserID, c.Param("id"), services.UpdateReminderInput{
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
		IsCompleted: req.IsCompleted,
	})
	if errors.Is(err, repos.ErrNotFound) {
		RespondError(c, http.StatusNotFound, "reminder_not_found", err)
		return
	}
	if errors.Is(err, services.ErrReminderDescriptionRequired) || errors.Is(err, services.ErrInvalidReminderPriority) {
		RespondError(c, http.StatusBadRequest, "invalid_reminder", err)
		return
	}
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "reminder_update_failed", err)
		return
	}
	RespondOK(c, reminder)
}

func (rh *ReminderHandler) Delete(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	err := rh.reminderService.DeleteReminder(c.Request.Context(), rd.UserID, c.Param("id"))
	if errors.Is(err, repos.ErrNotFound) {
		RespondError(c, http.StatusNotFound, "reminder_not_found", err)
		return
	}
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "reminder_delete_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
