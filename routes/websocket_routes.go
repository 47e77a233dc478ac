package routes

import (
	"gocarpool/pkg/websocket"

	"github.com/gin-gonic/gin"
)

// SetupWebSocketRoutes registers the realtime endpoint. Token auth happens
// inside the handler because websocket dials cannot carry headers from
// browsers.
func SetupWebSocketRoutes(r *gin.Engine, wsHandler *websocket.Handler, path string) {
	r.GET(path, wsHandler.HandleWebSocket)
}
