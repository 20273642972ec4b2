package routers

import (
	"pvelist/controllers"

	limit "github.com/aviddiviner/gin-limit"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

type GinRouter struct {
	Engine  *gin.Engine
	IRoutes gin.IRoutes
}

// Setup api endpoints for tests
func SetupEndpoints(db *gorm.DB, manager *controllers.Manager) GinRouter {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Dependencies(db, manager))
	api := r.Use(limit.MaxAllowed(30))
	{
		api = GetEndpoints(api)
	}

	return GinRouter{r, api}
}

// Dependencies provides db and manager to every handler.
func Dependencies(db *gorm.DB, manager *controllers.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("db", db)
		c.Set("manager", manager)
		c.Next()
	}
}

func GetEndpoints(api gin.IRoutes) gin.IRoutes {
	api.GET("/resources", ListResources)
	api.GET("/resources/:vmid", GetResource)
	api.PUT("/resources/:vmid/folder", SetResourceFolder)
	api.POST("/resources/:vmid/actions/:action", PerformResourceAction)
	api.GET("/folders", ListFolders)
	api.GET("/manager", ListManagerResources)
	api.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return api
}
