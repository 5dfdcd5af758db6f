package http

import (
	"net/http"

	"survey-service/internal/app"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Version is reported by the status endpoint.
const Version = "1.0.0"

// NewRouter wires the REST and websocket handlers. CORS is open to every origin.
func NewRouter(service *app.SurveyService) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	router.Use(cors.New(corsConfig))

	rest := NewRESTHandler(service)
	ws := NewWSHandler(service)

	router.GET("/", rest.Status)
	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.GET("/ws", gin.WrapF(ws.ServeWS))

	api := router.Group("/api")
	{
		api.GET("/health", rest.Health)
		api.POST("/get_auth_token", rest.IssueToken)
		api.GET("/questions/:token", rest.ListQuestions)
		api.POST("/responses/:token", rest.RecordResponse)
		api.GET("/responses/:token", rest.ListResponses)
		api.GET("/responses/:token/:user_name", rest.ListResponses)
		api.GET("/progress/:token", rest.GetProgress)
	}
	return router
}
