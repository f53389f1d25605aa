package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Liveness answers 200 while the process can serve HTTP. It checks no
// dependency; /health does that.
func Liveness(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":        "alive",
			"service":       serviceName,
			"uptimeSeconds": int64(uptime().Seconds()),
		})
	}
}
