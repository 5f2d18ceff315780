package routes

import (
	"context"
	"net/http"
	"time"

	"pdf-knowledge-assistant/internal/config"
	"pdf-knowledge-assistant/internal/telemetry"
	"pdf-knowledge-assistant/models"
	"pdf-knowledge-assistant/utils"

	"github.com/gin-gonic/gin"
)

// Retriever returns ranked chunks for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]models.SearchResult, error)
}

// Answerer synthesizes the final answer, with or without retrieved context.
type Answerer interface {
	Answer(ctx context.Context, query string) (string, error)
	AnswerWithContext(ctx context.Context, query string, results []models.SearchResult) (string, error)
}

// SetupSearchRoutes registers POST /search. The response_type string is
// parsed into a mode exactly once here; knowledge-only requests never touch
// the retriever or the vector store.
func SetupSearchRoutes(router *gin.Engine, cfg *config.Config, retriever Retriever, answerer Answerer, metrics *telemetry.Metrics) {
	router.POST("/search", func(c *gin.Context) {
		var req models.QueryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		mode := models.ParseResponseMode(req.ResponseType)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Minute)
		defer cancel()

		if mode == models.ModeKnowledgeOnly {
			answer, err := answerer.Answer(ctx, req.Query)
			if err != nil {
				utils.RespondWithAppError(c, err)
				return
			}
			if metrics != nil {
				metrics.RecordSearch(mode.String(), 0)
			}
			c.String(http.StatusOK, answer)
			return
		}

		results, err := retriever.Retrieve(ctx, req.Query, cfg.SearchTopK)
		if err != nil {
			utils.RespondWithAppError(c, err)
			return
		}

		answer, err := answerer.AnswerWithContext(ctx, req.Query, results)
		if err != nil {
			utils.RespondWithAppError(c, err)
			return
		}

		if metrics != nil {
			metrics.RecordSearch(mode.String(), int64(len(results)))
		}
		c.String(http.StatusOK, answer)
	})
}
