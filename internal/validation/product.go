// Package validation checks product fields before they reach storage.
package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"catalog/internal/models"
)

// FieldRule describes one recognized product field.
type FieldRule struct {
	// Field is the JSON name reported in errors.
	Field string
	// Required fields must be sent when a product is created.
	Required bool
	// Tag is the go-playground/validator tag applied to the sent value.
	Tag string

	value func(models.ProductInput) (interface{}, bool)
}

// ProductRules lists every product field a client may set.
var ProductRules = []FieldRule{
	{Field: "title", Required: true, Tag: "nonblank,max=100", value: func(in models.ProductInput) (interface{}, bool) { return sent(in.Title) }},
	{Field: "description", Tag: "max=1000", value: func(in models.ProductInput) (interface{}, bool) { return sent(in.Description) }},
	{Field: "price", Required: true, Tag: "gt=0", value: func(in models.ProductInput) (interface{}, bool) { return sent(in.Price) }},
	{Field: "discountPercentage", Tag: "gte=0,lte=100", value: func(in models.ProductInput) (interface{}, bool) { return sent(in.DiscountPercentage) }},
	{Field: "stockQuantity", Required: true, Tag: "gte=0", value: func(in models.ProductInput) (interface{}, bool) { return sent(in.StockQuantity) }},
	{Field: "category", Required: true, Tag: "nonblank,max=64", value: func(in models.ProductInput) (interface{}, bool) { return sent(in.Category) }},
	{Field: "brand", Required: true, Tag: "nonblank,max=64", value: func(in models.ProductInput) (interface{}, bool) { return sent(in.Brand) }},
	{Field: "thumbnail", Tag: "max=2048", value: func(in models.ProductInput) (interface{}, bool) { return sent(in.Thumbnail) }},
	{Field: "images", Tag: "max=10,dive,nonblank,max=2048", value: func(in models.ProductInput) (interface{}, bool) { return sent(in.Images) }},
}

func sent[T any](v *T) (interface{}, bool) {
	if v == nil {
		return nil, false
	}
	return *v, true
}

// Errors maps a field name to what is wrong with it.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+" "+e[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator applies ProductRules.
type Validator struct {
	validate *validator.Validate
}

// New returns a Validator with the catalog's custom tags registered.
func New() *Validator {
	v := validator.New()
	if err := v.RegisterValidation("nonblank", nonBlank); err != nil {
		panic(fmt.Sprintf("validation: register nonblank: %v", err))
	}
	return &Validator{validate: v}
}

func nonBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// ValidateCreate checks a new product: required fields must be sent and
// every sent field must pass its rule.
func (v *Validator) ValidateCreate(in models.ProductInput) error {
	return v.check(in, true)
}

// ValidatePatch checks only the fields sent in an update.
func (v *Validator) ValidatePatch(in models.ProductInput) error {
	return v.check(in, false)
}

func (v *Validator) check(in models.ProductInput, create bool) error {
	errs := Errors{}
	for _, rule := range ProductRules {
		value, ok := rule.value(in)
		if !ok {
			if create && rule.Required {
				errs[rule.Field] = "is required"
			}
			continue
		}
		if err := v.validate.Var(value, rule.Tag); err != nil {
			errs[rule.Field] = describe(err)
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func describe(err error) string {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrs) == 0 {
		return err.Error()
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "nonblank":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	}
	return fmt.Sprintf("failed on the '%s' tag", fe.Tag())
}
