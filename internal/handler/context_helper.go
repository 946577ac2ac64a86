package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/alifdwt/lms-bff-api/internal/middleware"
	"github.com/alifdwt/lms-bff-api/internal/models"
)

func sessionFromContext(c *gin.Context) (models.Session, bool) {
	value, exists := c.Get(middleware.ContextSessionKey)
	if !exists {
		return models.Session{}, false
	}
	session, ok := value.(models.Session)
	return session, ok
}
