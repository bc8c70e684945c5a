package handlers

import (
	"errors"
	"net/http"

	"bidtracker/internal/service"

	"github.com/gin-gonic/gin"
)

type signInRequest struct {
	Name      string `json:"name" binding:"required"`
	BirthDate string `json:"birthDate" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// @Summary      Sign in
// @Description  Name, birthdate and password must all match one merged account.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  signInRequest  true  "Credentials"
// @Success      200  {object}  map[string]interface{}  "token, user, passwordExpired"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /auth/sign-in [post]
func (h *Handler) signIn(c *gin.Context) {
	var input signInRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	u, token, err := h.services.Login(c.Request.Context(), input.Name, input.BirthDate, input.Password)
	if err != nil {
		if h.log != nil {
			h.log.Infow("auth_sign_in_failed", "name", input.Name, "err", err)
		}
		// One generic message for every mismatch.
		c.JSON(http.StatusUnauthorized, gin.H{"error": service.ErrInvalidCredentials.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":           token,
		"user":            u,
		"passwordExpired": h.services.PasswordExpired(u),
	})
}

// @Summary      Restore session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "user, passwordExpired"
// @Failure      401  {object}  map[string]string
// @Router       /auth/session [get]
func (h *Handler) session(c *gin.Context) {
	u, ok := h.services.Authorization.Session(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": service.ErrNotLoggedIn.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":            u,
		"passwordExpired": h.services.PasswordExpired(u),
	})
}

// @Summary      Sign out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /auth/sign-out [post]
// @Security     BearerAuth
func (h *Handler) signOut(c *gin.Context) {
	if err := h.services.Logout(c.Request.Context()); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "로그아웃에 실패했습니다.", "auth_sign_out_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "signed_out"})
}

// @Summary      Change password
// @Description  Requires the current password; the new one must be 4+ characters, different, and confirmed.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  changePasswordRequest  true  "Password change payload"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /auth/change-password [post]
// @Security     BearerAuth
func (h *Handler) changePassword(c *gin.Context) {
	var input changePasswordRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	updated, err := h.services.ChangePassword(c.Request.Context(),
		input.CurrentPassword, input.NewPassword, input.ConfirmPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotLoggedIn):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrRemoteSyncFailed):
			h.logAndJSONError(c, http.StatusBadGateway, err.Error(), "auth_change_password_sync_failed", err)
		case errors.Is(err, service.ErrCurrentPasswordMismatch),
			errors.Is(err, service.ErrPasswordTooShort),
			errors.Is(err, service.ErrPasswordUnchanged),
			errors.Is(err, service.ErrPasswordConfirmMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logAndJSONError(c, http.StatusInternalServerError, "비밀번호 변경에 실패했습니다.", "auth_change_password_failed", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": updated})
}
