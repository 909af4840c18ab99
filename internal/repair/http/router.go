package http

import "github.com/gin-gonic/gin"

// Register registers the repair API routes. The session mint is open
// (rate-limited by the caller); everything else requires a resolved
// identity.
func (h *Handler) Register(rg *gin.RouterGroup, authn gin.HandlerFunc, sessionLimit gin.HandlerFunc) {
	rg.POST("/session", sessionLimit, h.MintSession)

	data := rg.Group("")
	data.Use(authn)

	data.GET("/profile", h.GetProfile)
	data.PUT("/profile", h.SaveProfile)
	data.GET("/company", h.GetCompany)
	data.PUT("/company", h.SaveCompany)

	data.POST("/requests", h.SubmitRequest)
	data.GET("/requests", h.ListMyRequests)
	data.GET("/requests/all", h.ListAllRequests)
	data.GET("/requests/:id", h.GetRequest)
	data.POST("/requests/:id/propose", h.ProposeTimeSlot)
	data.POST("/requests/:id/confirm", h.ConfirmSchedule)
	data.POST("/requests/:id/decline", h.DeclineSchedule)
	data.POST("/requests/:id/complete", h.CompleteRequest)

	data.GET("/stream", h.StreamState)
	data.GET("/requests/activity", h.StreamActivity)
}
