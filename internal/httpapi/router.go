package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Leganyst/services-marketplace/internal/notify"
	"github.com/Leganyst/services-marketplace/internal/service"
)

// Services: всё, что нужно HTTP API.
type Services struct {
	Contracts *service.ContractService
	Identity  *service.IdentityService
	Messaging *service.MessagingService
	Hub       *notify.Hub
}

func Setup(mode string, svc Services) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(requestLogger())
	r.Use(corsMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "services-marketplace",
		})
	})

	users := NewUserHandler(svc.Identity)
	contracts := NewContractHandler(svc.Contracts)
	messages := NewMessageHandler(svc.Messaging, svc.Hub)

	r.GET("/ws", messages.Notifications)

	v1 := r.Group("/api/v1")
	{
		// регистрация без заголовка пользователя
		v1.POST("/users", users.Register)
		v1.GET("/providers", users.ListProviders)

		authed := v1.Group("", requireActor())

		u := authed.Group("/users")
		{
			u.GET("/:id", users.Get)
			u.PUT("/:id/role", users.SetRole)
		}
		me := authed.Group("/me")
		{
			me.PUT("/contacts", users.UpdateContacts)
			me.PUT("/listing", users.UpsertListing)
		}

		c := authed.Group("/contracts")
		{
			c.POST("", contracts.Create)
			c.GET("", contracts.List)
			c.GET("/:id", contracts.Get)
			c.GET("/:id/quote", contracts.Quote)
			c.POST("/:id/offer", contracts.MakeOffer)
			c.POST("/:id/deposit", contracts.Deposit)
			c.POST("/:id/actions", contracts.Action)
			c.POST("/:id/resolve", contracts.Resolve)
		}

		p := authed.Group("/pairs/:userId")
		{
			p.GET("/latest", contracts.Latest)
			p.GET("/open", contracts.Open)
		}

		m := authed.Group("/messages")
		{
			m.POST("", messages.Send)
			m.GET("/:userId", messages.Conversation)
		}
	}

	return r
}
