package pricelist

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jmakela/bottlecat/internal/domain"
)

// Validator checks parsed rows against the catalog invariants: non-empty id
// and name, price >= 0, alcohol within 0-100.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a row validator.
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// ValidateItem returns a readable error for an invalid candidate, nil otherwise.
func (v *Validator) ValidateItem(item domain.CatalogItem) error {
	err := v.validate.Struct(item)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, fmt.Sprintf("%s fails %q", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: item %q: %s", domain.ErrInvalidInput, item.ID, strings.Join(problems, ", "))
}

// Partition splits candidates into valid items and error strings for the
// invalid ones. Invalid rows are excluded from upsert but never abort the sync.
func (v *Validator) Partition(items []domain.CatalogItem) (valid []domain.CatalogItem, errs []string) {
	for _, item := range items {
		if err := v.ValidateItem(item); err != nil {
			errs = append(errs, err.Error())
			continue
		}
		valid = append(valid, item)
	}
	return valid, errs
}
