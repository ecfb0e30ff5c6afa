package router

import (
	"github.com/geordievannese/garuda-calculator/server/internal/handlers"
	"github.com/geordievannese/garuda-calculator/server/internal/repository"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const pageIDSessionKey = "page_id"

// PageLoaderMiddleware looks up the calculator page belonging to this browser session
// and puts its controller in the context. A session without a page, or whose page has
// expired, starts over with a fresh one.
func PageLoaderMiddleware(log *zap.Logger, pages *repository.PageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		current, _ := session.Get(pageIDSessionKey).(string)

		id, ctrl := pages.Get(current)
		if id != current {
			session.Set(pageIDSessionKey, id)
			if err := session.Save(); err != nil {
				log.Error("Failed to save page id in session", zap.Error(err))
			}
			if current != "" {
				log.Debug("Calculator page expired, started a new one", zap.String("page_id", id))
			}
		}

		c.Set(handlers.PageControllerKey, ctrl)
		c.Next()
	}
}
