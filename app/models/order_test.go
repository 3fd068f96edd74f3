package models_test

import (
	"testing"

	"github.com/shashiranjanraj/bazaar/app/models"
)

func TestCanTransition(t *testing.T) {
	allowed := [][2]string{
		{models.StatusPending, models.StatusShipped},
		{models.StatusPending, models.StatusCancelled},
		{models.StatusShipped, models.StatusDelivered},
	}
	for _, tr := range allowed {
		if !models.CanTransition(tr[0], tr[1]) {
			t.Errorf("expected %s -> %s to be allowed", tr[0], tr[1])
		}
	}

	denied := [][2]string{
		{models.StatusPending, models.StatusDelivered},
		{models.StatusShipped, models.StatusCancelled},
		{models.StatusShipped, models.StatusPending},
		{models.StatusDelivered, models.StatusShipped},
		{models.StatusCancelled, models.StatusShipped},
		{models.StatusDelivered, models.StatusDelivered},
	}
	for _, tr := range denied {
		if models.CanTransition(tr[0], tr[1]) {
			t.Errorf("expected %s -> %s to be denied", tr[0], tr[1])
		}
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{models.StatusPending, models.StatusShipped, models.StatusDelivered, models.StatusCancelled} {
		if !models.ValidStatus(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if models.ValidStatus("returned") {
		t.Error("unknown status must be invalid")
	}
}

func TestValidRole(t *testing.T) {
	if !models.ValidRole(models.RoleCustomer) || !models.ValidRole(models.RoleSeller) {
		t.Error("expected built-in roles to be valid")
	}
	if models.ValidRole("admin") {
		t.Error("unknown role must be invalid")
	}
}
