package api

import (
	"net/http"

	voiceCallHandler "voice-bridge/internal/voicecall/handler"

	"github.com/gin-gonic/gin"
)

type API struct {
	router           *gin.RouterGroup
	voiceCallHandler voiceCallHandler.Handler
	recordingsDir    string
}

func New(router *gin.RouterGroup, voiceCallHandler voiceCallHandler.Handler, recordingsDir string) API {
	return API{
		router:           router,
		voiceCallHandler: voiceCallHandler,
		recordingsDir:    recordingsDir,
	}
}

func (a *API) RegisterRoutes() {
	a.Health()

	// Carrier facing routes
	a.router.POST("/outbound-call", a.voiceCallHandler.HandleOutboundCall)
	a.router.GET("/outbound-call-twiml", a.voiceCallHandler.HandleOutboundTwiML)
	a.router.POST("/outbound-call-twiml", a.voiceCallHandler.HandleOutboundTwiML)
	a.router.GET("/incoming-call", a.voiceCallHandler.HandleIncomingCall)
	a.router.POST("/incoming-call", a.voiceCallHandler.HandleIncomingCall)
	a.router.GET("/media-stream", a.voiceCallHandler.HandleMediaStream)

	if a.recordingsDir != "" {
		a.router.Static("/recordings", a.recordingsDir)
	}

	apiGroup := a.router.Group("/api")
	{
		apiGroup.GET("/calls/:callSid", a.voiceCallHandler.HandleGetCall)
	}
}

func (a *API) Health() {
	a.router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Server is running"})
	})
	a.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
}
