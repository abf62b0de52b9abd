package websocket

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rayshop/shopmap-backend/internal/app/service"
	apperrors "github.com/rayshop/shopmap-backend/internal/errors"
	"github.com/rayshop/shopmap-backend/internal/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// CORS policy is enforced at the router level.
		return true
	},
}

// EditorHandler upgrades a map-editing request to a websocket session
// GET /api/v1/manage/shops/:shopId/image-maps/:mapId/edit
func EditorHandler(mapSvc service.ImageMapService) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := middleware.GetLoggerFromContext(c)

		shopID := c.Param("shopId")
		mapID := c.Param("mapId")
		userID, _ := middleware.GetUserID(c)

		m, err := mapSvc.Get(shopID, mapID)
		if err != nil {
			if errors.Is(err, service.ErrMapNotFound) {
				apperrors.NotFound(c, apperrors.MapNotFound, "Image map not found")
				return
			}
			log.Error("Failed to load map for editing", err, map[string]interface{}{
				"shop_id": shopID,
				"map_id":  mapID,
			})
			apperrors.InternalError(c, "Failed to open editor session")
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Error("Websocket upgrade failed", err, map[string]interface{}{
				"map_id": mapID,
			})
			return
		}

		session := NewEditorSession(conn, mapSvc, shopID, userID, m)
		go session.Run()
	}
}
