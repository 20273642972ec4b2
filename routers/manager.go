package routers

import (
	"net/http"

	"pvelist/controllers"

	"github.com/gin-gonic/gin"
)

func ListManagerResources(c *gin.Context) {
	manager := c.MustGet("manager").(*controllers.Manager)

	// Retrieve the raw snapshot held by the manager
	resources, refreshedAt := manager.GetAllResources()

	c.JSON(http.StatusOK, gin.H{"resources": resources, "refreshed_at": refreshedAt})
}
