package handlers

import (
	"errors"
	"net/http"

	"bidtracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type createUserRequest struct {
	Name      string `json:"name" validate:"required"`
	BirthDate string `json:"birthDate" validate:"required,len=6,numeric"`
	IsAdmin   bool   `json:"isAdmin"`
}

const (
	errListUsers  = "사용자 목록을 불러오지 못했습니다."
	errCreateUser = "사용자 정보가 올바르지 않습니다."
	errDeleteUser = "사용자를 삭제하지 못했습니다."
)

// @Summary      List users
// @Description  Bundled, locally stored and remote accounts merged by ID.
// @Tags         users
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "items, count"
// @Failure      403  {object}  map[string]string
// @Router       /api/v1/users [get]
// @Security     BearerAuth
func (h *Handler) listUsers(c *gin.Context) {
	items := h.services.Merged(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// @Summary      Create user
// @Description  Birthdate doubles as the initial password.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body  createUserRequest  true  "New account"
// @Success      201  {object}  bidtracker.AppUser
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/v1/users [post]
// @Security     BearerAuth
func (h *Handler) createUser(c *gin.Context) {
	var input createUserRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}
	if err := validate.Struct(input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errCreateUser})
		return
	}

	u, err := h.services.Users.Create(c.Request.Context(), input.Name, input.BirthDate, input.IsAdmin)
	if err != nil {
		if errors.Is(err, service.ErrInvalidUserInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errCreateUser, "user_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// @Summary      Delete user
// @Tags         users
// @Produce      json
// @Param        id  path  string  true  "User ID"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/v1/users/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteUser(c *gin.Context) {
	id := c.Param("id")
	if err := h.services.Users.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrAdminUndeletable) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errDeleteUser, "user_delete_failed", err, "id", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
