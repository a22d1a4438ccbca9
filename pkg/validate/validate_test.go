package validate

import (
	"testing"

	pkgerrors "github.com/angelmondragon/paperledger/pkg/errors"
)

type sampleLine struct {
	ItemName string `json:"item_name" validate:"required"`
	Quantity int    `json:"quantity" validate:"gt=0"`
	Discount int    `json:"discount_percentage" validate:"min=0,max=100"`
}

func TestStructReportsFieldsByJSONName(t *testing.T) {
	err := Struct(sampleLine{Quantity: 0, Discount: 120})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	if details["item_name"] != "is required" {
		t.Fatalf("unexpected item_name detail %q", details["item_name"])
	}
	if details["quantity"] != "must be greater than 0" {
		t.Fatalf("unexpected quantity detail %q", details["quantity"])
	}
	if details["discount_percentage"] != "must be at most 100" {
		t.Fatalf("unexpected discount detail %q", details["discount_percentage"])
	}
}

func TestStructAcceptsValidInput(t *testing.T) {
	if err := Struct(sampleLine{ItemName: "A4 paper", Quantity: 5, Discount: 10}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
