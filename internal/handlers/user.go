package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edusloth/edusloth-backend/internal/repos"
	"github.com/edusloth/edusloth-backend/internal/requestdata"
	"github.com/edusloth/edusloth-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (uh *UserHandler) GetMe(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	user, err := uh.userService.GetUser(c.Request.Context(), rd.UserID)
	if errors.Is(err, repos.ErrNotFound) {
		RespondError(c, http.StatusNotFound, "user_not_found", err)
		return
	}
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "user_lookup_failed", err)
		return
	}
	RespondOK(c, user)
}

func (uh *UserHandler) UpdateMe(c *gin.Context) {
	var req struct {
		Email          *string  `json:"email"`
		Password       *string  `json:"password"`
		FullName       *string  `json:"full_name"`
		EducationLevel *string  `json:"education_level"`
		StudyInterests []string `json:"study_interests"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", errors.New("invalid request body"))
		return
	}
	rd := requestdata.GetRequestData(c.Request.Context())
	user, err := uh.userService.UpdateUser(c.Request.Context(), rd.UserID, services.UserUpdateInput{
		Email:          req.Email,
		Password:       req.Password,
		FullName:       req.FullName,
		EducationLevel: req.EducationLevel,
		StudyInterests: req.StudyInterests,
	})
	if errors.Is(err, repos.ErrNotFound) {
		RespondError(c, http.StatusNotFound, "user_not_found", err)
		return
	}
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "user_update_failed", err)
		return
	}
	RespondOK(c, user)
}
