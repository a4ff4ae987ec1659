package channel

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxNameLength is the longest name the strict policy accepts, in characters.
const MaxNameLength = 15

// NamePolicy selects how channel names are validated.
type NamePolicy string

const (
	// PolicyStrict enforces length, charset and uniqueness.
	PolicyStrict NamePolicy = "strict"
	// PolicyLenient only rejects empty names.
	PolicyLenient NamePolicy = "lenient"
)

// ParseNamePolicy maps a configuration value to a policy. Unknown values
// yield an error so that a typo never silently relaxes validation.
func ParseNamePolicy(s string) (NamePolicy, error) {
	switch NamePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyStrict, "":
		return PolicyStrict, nil
	case PolicyLenient:
		return PolicyLenient, nil
	default:
		return "", fmt.Errorf("unknown channel name policy %q", s)
	}
}

// Valid reports whether p is a known policy.
func (p NamePolicy) Valid() bool {
	return p == PolicyStrict || p == PolicyLenient
}

var nameCharset = regexp.MustCompile(`^[A-Za-z0-9_-]*$`)

type strictName struct {
	Name string `validate:"required,max=15,channelname"`
}

type lenientName struct {
	Name string `validate:"required"`
}

// nameValidator applies the per-name rules of a policy. Uniqueness is
// checked by the registry, which holds the set of live names.
type nameValidator struct {
	policy   NamePolicy
	validate *validator.Validate
}

func newNameValidator(policy NamePolicy) *nameValidator {
	v := validator.New()
	// The pattern is a literal, so registration cannot fail.
	_ = v.RegisterValidation("channelname", func(fl validator.FieldLevel) bool {
		return nameCharset.MatchString(fl.Field().String())
	})
	return &nameValidator{policy: policy, validate: v}
}

func (n *nameValidator) check(name string) error {
	var target any = lenientName{Name: name}
	if n.policy == PolicyStrict {
		target = strictName{Name: name}
	}

	err := n.validate.Struct(target)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Field: "name", Reason: err.Error()}
	}

	switch fieldErrs[0].Tag() {
	case "required":
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	case "max":
		return &ValidationError{Field: "name", Reason: fmt.Sprintf("must be at most %d characters", MaxNameLength)}
	case "channelname":
		return &ValidationError{Field: "name", Reason: "may only contain letters, digits, underscores and hyphens"}
	default:
		return &ValidationError{Field: "name", Reason: fieldErrs[0].Error()}
	}
}

func duplicateName(name string) error {
	return &ValidationError{Field: "name", Reason: fmt.Sprintf("channel %q already exists", name)}
}
