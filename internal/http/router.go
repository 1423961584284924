package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/shin2080/asset-selector-http-api/internal/config"
	"github.com/shin2080/asset-selector-http-api/internal/http/handler"
	httpmiddleware "github.com/shin2080/asset-selector-http-api/internal/http/middleware"
)

// NewRouter wires Gin routes and middleware.
func NewRouter(cfg config.Config, proxy *handler.ProxyHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestID())
	r.Use(httpmiddleware.RequestLogger(nil))
	r.Use(httpmiddleware.CORS(cfg))
	r.Use(otelgin.Middleware(cfg.ServiceName))

	ims := r.Group("/ims")
	{
		ims.POST("/exchange", proxy.ExchangeJWT)
	}

	api := r.Group("/api")
	{
		api.POST("/token", proxy.IssueToken)
		api.GET("/assets/*assetPath", proxy.ListAssets)
		api.GET("/metadata/*assetPath", proxy.AssetMetadata)
		api.PUT("/metadata/*assetPath", proxy.UpdateMetadata)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}
