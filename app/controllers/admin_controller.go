package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/bazaar/app/policy"
	"github.com/shashiranjanraj/bazaar/pkg/middleware"
	"github.com/shashiranjanraj/bazaar/pkg/queue"
	"github.com/shashiranjanraj/bazaar/pkg/response"
)

// AdminController exposes operational read endpoints.
type AdminController struct {
	queue *queue.Manager
}

func NewAdminController(m *queue.Manager) *AdminController {
	return &AdminController{queue: m}
}

// FailedJobs lists jobs that exhausted their retries or failed terminally.
func (c *AdminController) FailedJobs(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}
	actor := policy.Actor{UserID: claims.UserID, Role: claims.Role}
	if err := policy.Authorize(actor, policy.ActionFailedJobsView, policy.Resource{}); err != nil {
		response.Forbidden(w)
		return
	}
	response.Success(w, c.queue.FailedJobs())
}
