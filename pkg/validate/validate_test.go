package validate_test

import (
	"testing"

	"github.com/shashiranjanraj/bazaar/pkg/validate"
)

type listingInput struct {
	Name        string  `json:"name"        validate:"required,min=2,max=50"`
	Description string  `json:"description" validate:"nullable,max=200"`
	Price       float64 `json:"price"       validate:"required,gt=0"`
	Stock       int     `json:"stock"       validate:"integer,gte=0"`
	Contact     string  `json:"contact"     validate:"required,email"`
	Role        string  `json:"role"        validate:"required,in=customer,seller"`
}

func valid() listingInput {
	return listingInput{
		Name:    "Laptop",
		Price:   999.99,
		Stock:   5,
		Contact: "seller@example.com",
		Role:    "seller",
	}
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(valid())
	if validate.HasErrors(errs) {
		t.Errorf("expected no errors, got: %v", errs)
	}
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(listingInput{})
	if !validate.HasErrors(errs) {
		t.Fatal("expected required errors")
	}
	for _, field := range []string{"name", "price", "contact", "role"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("expected %s to be required", field)
		}
	}
}

func TestEmailRule(t *testing.T) {
	in := valid()
	in.Contact = "not-an-email"
	errs := validate.Struct(in)
	if _, ok := errs["contact"]; !ok {
		t.Error("expected email validation error")
	}
}

func TestInRule(t *testing.T) {
	in := valid()
	in.Role = "admin"
	errs := validate.Struct(in)
	if _, ok := errs["role"]; !ok {
		t.Error("expected in= validation error for unknown role")
	}
}

func TestGtRule(t *testing.T) {
	in := valid()
	in.Price = 0
	errs := validate.Struct(in)
	if _, ok := errs["price"]; !ok {
		t.Error("expected gt=0 to reject zero price")
	}
}

func TestNullableSkipsEmpty(t *testing.T) {
	in := valid()
	in.Description = ""
	errs := validate.Struct(in)
	if _, ok := errs["description"]; ok {
		t.Error("nullable empty field must not error")
	}
}

func TestMinLength(t *testing.T) {
	in := valid()
	in.Name = "x"
	errs := validate.Struct(in)
	if _, ok := errs["name"]; !ok {
		t.Error("expected min=2 to reject one-char name")
	}
}
