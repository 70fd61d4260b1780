package http

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterOptions struct {
	Orders   *OrderHandler
	Drops    *DropHandler
	Webhooks *WebhookHandler

	CORSOrigins []string
}

// NewRouter wires the public storefront routes, the admin drop management
// routes and the Stripe webhook endpoint onto one gin engine.
func NewRouter(opt RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(opt.CORSOrigins) > 0 {
		corsCfg.AllowOrigins = opt.CORSOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "Stripe-Signature")
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/orders", opt.Orders.Create)
		api.GET("/orders", opt.Orders.List)
		api.GET("/orders/:id", opt.Orders.Get)
		api.GET("/orders/by-intent/:paymentIntentId", opt.Orders.GetByIntent)

		api.GET("/drops/active", opt.Drops.GetActive)
		api.GET("/drops", opt.Drops.List)
		api.POST("/drops", opt.Drops.Create)
		api.POST("/drops/:id/activate", opt.Drops.Activate)
		api.POST("/drops/:id/complete", opt.Drops.Complete)
		api.POST("/drops/:id/cancel", opt.Drops.Cancel)
		api.GET("/drops/:id/drop-products", opt.Drops.GetMenu)
		api.PUT("/drops/:id/drop-products", opt.Drops.ReplaceMenu)

		api.POST("/locations", opt.Drops.CreateLocation)
		api.GET("/locations", opt.Drops.ListLocations)

		api.POST("/webhooks/stripe", opt.Webhooks.Handle)
	}

	return r
}
