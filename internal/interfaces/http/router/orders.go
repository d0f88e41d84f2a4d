package router

import (
	"github.com/didikala/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// OrderRoutes wires the order endpoints into a DomainGroup.
// The unscoped list read is public; every other operation requires a
// verified identity, so auth is attached per route rather than per group.
func OrderRoutes(orders *handler.OrderHandler, stream *handler.OrderStreamHandler, authRequired gin.HandlerFunc) *DomainGroup {
	group := NewDomainGroup("orders", "/orders")

	group.POST("", authRequired, orders.Create)
	group.GET("", orders.GetAll)
	group.GET("/user/:customerID", authRequired, orders.GetByCustomer)
	group.GET("/stream", authRequired, stream.Stream)
	group.PUT("/:orderID", authRequired, orders.Update)
	group.DELETE("/:orderID", authRequired, orders.Delete)

	return group
}
