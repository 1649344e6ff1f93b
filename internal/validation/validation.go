// Package validation checks request payloads at the HTTP boundary and reports
// every problem as a *domain.ValidationError.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"storefront/internal/domain"
)

const (
	msgRequired = "field required"
	msgNotNull  = "field may not be null"
	msgReadOnly = "field is assigned by the server and may not be supplied"
)

type optionalValue interface {
	ValidationValue() interface{}
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if o, ok := field.Interface().(optionalValue); ok {
			return o.ValidationValue()
		}
		return nil
	}, domain.Optional[string]{}, domain.Optional[int]{}, domain.Optional[int64]{})

	return &Validator{validate: v}
}

// ProductCreate requires name, description and price. The id is never accepted.
func (v *Validator) ProductCreate(in domain.ProductInput) error {
	verr := &domain.ValidationError{}
	rejectID(verr, in.ID)
	requireField(verr, "name", in.Name.Set, in.Name.Null)
	requireField(verr, "description", in.Description.Set, in.Description.Null)
	requireField(verr, "price", in.Price.Set, in.Price.Null)
	return v.finish(verr, in)
}

// ProductReplace has the same rules as ProductCreate: a PUT carries the whole entity.
func (v *Validator) ProductReplace(in domain.ProductInput) error {
	return v.ProductCreate(in)
}

// ProductPartial accepts any subset of fields, each non-null.
func (v *Validator) ProductPartial(in domain.ProductInput) error {
	verr := &domain.ValidationError{}
	rejectID(verr, in.ID)
	rejectNull(verr, "name", in.Name.Null)
	rejectNull(verr, "description", in.Description.Null)
	rejectNull(verr, "price", in.Price.Null)
	return v.finish(verr, in)
}

func (v *Validator) UserCreate(in domain.UserInput) error {
	verr := &domain.ValidationError{}
	requireField(verr, "username", in.Username.Set, in.Username.Null)
	return v.finish(verr, in)
}

// ProfileCreate accepts any combination of the nullable profile fields.
func (v *Validator) ProfileCreate(in domain.ProfileInput) error {
	return v.finish(&domain.ValidationError{}, in)
}

func (v *Validator) ProfilePartial(in domain.ProfileInput) error {
	return v.finish(&domain.ValidationError{}, in)
}

// PostsCreate requires at least one post and a title for each; body is optional.
func (v *Validator) PostsCreate(in domain.PostsInput) error {
	verr := &domain.ValidationError{}
	for i, p := range in.Posts {
		requireField(verr, fmt.Sprintf("posts[%d].title", i), p.Title.Set, p.Title.Null)
		rejectNull(verr, fmt.Sprintf("posts[%d].body", i), p.Body.Null)
	}
	return v.finish(verr, in)
}

// PathID parses a resource id from the URL. Valid ids lie in [MinID, MaxID].
func PathID(name, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fieldError(name, "value is not a valid integer")
	}
	if id < domain.MinID || id > domain.MaxID {
		return 0, fieldError(name, fmt.Sprintf("value must be between %d and %d", domain.MinID, domain.MaxID))
	}
	return id, nil
}

func fieldError(field, message string) *domain.ValidationError {
	verr := &domain.ValidationError{}
	verr.Add(field, message)
	return verr
}

func rejectID(verr *domain.ValidationError, id domain.Optional[int64]) {
	if id.Set {
		verr.Add("id", msgReadOnly)
	}
}

func requireField(verr *domain.ValidationError, field string, set, null bool) {
	switch {
	case !set:
		verr.Add(field, msgRequired)
	case null:
		verr.Add(field, msgNotNull)
	}
}

func rejectNull(verr *domain.ValidationError, field string, null bool) {
	if null {
		verr.Add(field, msgNotNull)
	}
}

// finish runs the struct tags and merges their failures into verr.
func (v *Validator) finish(verr *domain.ValidationError, in interface{}) error {
	if err := v.validate.Struct(in); err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) {
			return err
		}
		for _, fe := range errs {
			verr.Add(fieldPath(fe), message(fe))
		}
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// fieldPath drops the root struct name from the namespace: "PostsInput.posts[0].title" -> "posts[0].title".
func fieldPath(fe validator.FieldError) string {
	_, path, found := strings.Cut(fe.Namespace(), ".")
	if !found {
		return fe.Field()
	}
	return path
}

func message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	isList := fe.Kind() == reflect.Slice

	switch fe.Tag() {
	case "required":
		return msgRequired
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		if isList {
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		}
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
