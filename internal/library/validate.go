package library

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mrlokans/reading-tracker/internal/errs"
)

// Validator checks snapshot rows before the store is touched.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	return &Validator{v: v}
}

// Validate returns an *errs.ValidationError listing every bad field, keyed
// like "books[2].rating".
func (v *Validator) Validate(snap *Snapshot) error {
	fields := make(map[string]string)

	for i := range snap.Books {
		v.row(fields, KindBooks, i, &snap.Books[i])
	}
	for i := range snap.Categories {
		v.row(fields, KindCategories, i, &snap.Categories[i])
	}
	for i := range snap.BookCategories {
		v.row(fields, KindBookCategories, i, &snap.BookCategories[i])
	}
	for i := range snap.Challenges {
		v.row(fields, KindChallenges, i, &snap.Challenges[i])
		c := snap.Challenges[i]
		if c.StartDate != nil && c.EndDate != nil && c.EndDate.Before(c.StartDate.Time) {
			fields[fieldKey(KindChallenges, i, "end_date")] = "must not be before start_date"
		}
	}
	for i := range snap.Sessions {
		v.row(fields, KindSessions, i, &snap.Sessions[i])
		s := snap.Sessions[i]
		if s.EndTS != nil && !s.StartTS.IsZero() && s.EndTS.Before(s.StartTS) {
			fields[fieldKey(KindSessions, i, "end_ts")] = "must not be before start_ts"
		}
	}
	for i := range snap.Highlights {
		v.row(fields, KindHighlights, i, &snap.Highlights[i])
	}

	uniqueIDs(fields, KindBooks, len(snap.Books), func(i int) *uint { return snap.Books[i].ID })
	uniqueIDs(fields, KindCategories, len(snap.Categories), func(i int) *uint { return snap.Categories[i].ID })

	if len(fields) > 0 {
		return errs.NewValidationError(fields)
	}
	return nil
}

func (v *Validator) row(fields map[string]string, kind Kind, index int, row any) {
	err := v.v.Struct(row)
	if err == nil {
		return
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		fields[fmt.Sprintf("%s[%d]", kind, index)] = err.Error()
		return
	}
	for _, e := range validationErrs {
		fields[fieldKey(kind, index, e.Field())] = friendlyMessage(e)
	}
}

// uniqueIDs rejects duplicate snapshot ids, which would make references ambiguous.
func uniqueIDs(fields map[string]string, kind Kind, n int, idAt func(int) *uint) {
	seen := make(map[uint]int, n)
	for i := 0; i < n; i++ {
		id := idAt(i)
		if id == nil || *id == 0 {
			continue
		}
		if first, ok := seen[*id]; ok {
			fields[fieldKey(kind, i, "id")] = fmt.Sprintf("duplicates %s[%d].id", kind, first)
			continue
		}
		seen[*id] = i
	}
}

func fieldKey(kind Kind, index int, field string) string {
	return fmt.Sprintf("%s[%d].%s", kind, index, field)
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	default:
		return "is invalid"
	}
}
