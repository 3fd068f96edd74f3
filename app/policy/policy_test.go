package policy_test

import (
	"testing"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/policy"
)

func TestAuthorize(t *testing.T) {
	seller := policy.Actor{UserID: 1, Role: models.RoleSeller}
	customer := policy.Actor{UserID: 2, Role: models.RoleCustomer}

	cases := []struct {
		name     string
		actor    policy.Actor
		action   string
		resource policy.Resource
		allowed  bool
	}{
		{"seller creates product", seller, policy.ActionProductCreate, policy.Resource{}, true},
		{"customer creates product", customer, policy.ActionProductCreate, policy.Resource{}, false},
		{"customer places order", customer, policy.ActionOrderPlace, policy.Resource{}, true},
		{"seller places order", seller, policy.ActionOrderPlace, policy.Resource{}, false},
		{"customer adds to cart", customer, policy.ActionCartAdd, policy.Resource{}, true},
		{"owning seller updates status", seller, policy.ActionOrderUpdateStatus, policy.Resource{OwnerID: 1}, true},
		{"other seller updates status", seller, policy.ActionOrderUpdateStatus, policy.Resource{OwnerID: 99}, false},
		{"customer updates status", customer, policy.ActionOrderUpdateStatus, policy.Resource{OwnerID: 2}, false},
		{"owning seller uploads image", seller, policy.ActionProductUploadImg, policy.Resource{OwnerID: 1}, true},
		{"other seller uploads image", seller, policy.ActionProductUploadImg, policy.Resource{OwnerID: 99}, false},
		{"seller views failed jobs", seller, policy.ActionFailedJobsView, policy.Resource{}, true},
		{"customer views failed jobs", customer, policy.ActionFailedJobsView, policy.Resource{}, false},
		{"unknown action denied", seller, "spaceship.launch", policy.Resource{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := policy.Authorize(tc.actor, tc.action, tc.resource)
			if tc.allowed && err != nil {
				t.Errorf("expected allow, got %v", err)
			}
			if !tc.allowed && err == nil {
				t.Error("expected deny, got allow")
			}
		})
	}
}
