// Package policy is the single authorization gate for state-changing
// operations. Handlers and services call Authorize instead of scattering
// role checks, so the full permission table lives in one place.
package policy

import (
	"errors"

	"github.com/shashiranjanraj/bazaar/app/models"
)

// ErrForbidden is returned when the actor may not perform the action.
var ErrForbidden = errors.New("forbidden")

// Actions checked by the policy.
const (
	ActionProductCreate     = "product.create"
	ActionProductUploadImg  = "product.upload_image"
	ActionOrderPlace        = "order.place"
	ActionOrderUpdateStatus = "order.update_status"
	ActionCartAdd           = "cart.add"
	ActionFailedJobsView    = "failed_jobs.view"
)

// Actor is who is asking: the authenticated user's ID and role.
type Actor struct {
	UserID uint
	Role   string
}

// Resource is what the action targets. Fields are filled as relevant:
// OwnerID is the seller for products and product-scoped order actions.
type Resource struct {
	OwnerID uint
}

// Authorize returns nil when actor may perform action on resource, and
// ErrForbidden otherwise. Unknown actions are denied.
func Authorize(actor Actor, action string, resource Resource) error {
	switch action {
	case ActionProductCreate, ActionFailedJobsView:
		if actor.Role == models.RoleSeller {
			return nil
		}

	case ActionProductUploadImg:
		// Only the product's own seller.
		if actor.Role == models.RoleSeller && actor.UserID == resource.OwnerID {
			return nil
		}

	case ActionOrderPlace, ActionCartAdd:
		if actor.Role == models.RoleCustomer {
			return nil
		}

	case ActionOrderUpdateStatus:
		// Only the seller owning the ordered product.
		if actor.Role == models.RoleSeller && actor.UserID == resource.OwnerID {
			return nil
		}
	}

	return ErrForbidden
}
