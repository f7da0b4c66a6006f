package api

import (
	"net/http"

	"github.com/avolare/skybook/internal/domain"
	"github.com/gin-gonic/gin"
)

// respondError maps a domain error kind to its status code and passes the
// message through unmodified.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case domain.IsInvalidState(err):
		status = http.StatusBadRequest
	case domain.IsAuth(err):
		status = http.StatusUnauthorized
	case domain.IsForbidden(err):
		status = http.StatusForbidden
	case domain.IsNotFound(err):
		status = http.StatusNotFound
	case domain.IsConflict(err):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
