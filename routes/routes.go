package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/vamlemat/sync-ps-to-ps-importer/controllers"
)

// RegisterImportRoutes wires the import endpoints.
func RegisterImportRoutes(r *gin.Engine, ic *controllers.ImportController) {
	importRoutes := r.Group("/import")
	{
		importRoutes.POST("/", ic.Import)
		importRoutes.GET("/jobs/:id", ic.JobStatus)
	}
}

// RegisterRemoteRoutes wires the remote browse panel endpoints.
func RegisterRemoteRoutes(r *gin.Engine, rc *controllers.RemoteController) {
	remoteRoutes := r.Group("/remote")
	{
		remoteRoutes.GET("/products", rc.ListProducts)
		remoteRoutes.GET("/products/:id", rc.GetProduct)
		remoteRoutes.GET("/ping", rc.Ping)
	}
}

// RegisterLogRoutes wires the daily import log endpoints.
func RegisterLogRoutes(r *gin.Engine, lc *controllers.LogsController) {
	logRoutes := r.Group("/logs")
	{
		logRoutes.GET("/", lc.List)
		logRoutes.GET("/:date", lc.Read)
		logRoutes.DELETE("/:date", lc.Clear)
	}
}
