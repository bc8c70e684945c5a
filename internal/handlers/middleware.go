package handlers

import (
	"net/http"
	"strings"

	"bidtracker"

	"github.com/gin-gonic/gin"
)

const ctxUserKey = "user"

const (
	errAdminOnly       = "관리자 권한이 필요합니다."
	errPasswordExpired = "비밀번호 유효기간(6개월)이 만료되었습니다. 비밀번호를 변경해주세요."
)

func (h *Handler) userMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing Authorization header",
		})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid Authorization header format",
		})
		return
	}

	userID, err := h.services.ParseToken(parts[1])
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	// The token only proves identity; the account itself may have been
	// removed from the merged list since it was issued.
	u, ok := h.services.Users.Lookup(c.Request.Context(), userID)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "unknown account",
		})
		return
	}

	c.Set(ctxUserKey, u)
	c.Next()
}

// freshPasswordMiddleware blocks accounts whose password has expired from
// everything except the change-password flow.
func (h *Handler) freshPasswordMiddleware(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	if h.services.PasswordExpired(u) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": errPasswordExpired})
		return
	}
	c.Next()
}

func (h *Handler) adminOnlyMiddleware(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok || !u.IsAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": errAdminOnly})
		return
	}
	c.Next()
}

func currentUser(c *gin.Context) (bidtracker.AppUser, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return bidtracker.AppUser{}, false
	}
	u, ok := v.(bidtracker.AppUser)
	return u, ok
}
