package posts

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
)

const (
	MsgInvalidEmail    = "Please include a valid email"
	MsgPasswordLength  = "Please enter a password with 6 or more characters"
	MsgTextRequired    = "Text is required"
	minPasswordLength  = 6
	validationLocation = "body"
)

// LoginRequest is the payload of POST /auth
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Validate checks the login payload shape
func (r LoginRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Email,
			validation.Required.Error(MsgInvalidEmail),
			is.Email.Error(MsgInvalidEmail),
		),
		validation.Field(&r.Password,
			validation.Required.Error(MsgPasswordLength),
			validation.RuneLength(minPasswordLength, 0).Error(MsgPasswordLength),
		),
	)
	return toValidationError(err, "email", "password")
}

// PostTextRequest is the payload for posts and comments
type PostTextRequest struct {
	Text string `json:"text" form:"text"`
}

// Validate checks that text is not blank
func (r PostTextRequest) Validate() error {
	text := strings.TrimSpace(r.Text)
	err := validation.Errors{
		"text": validation.Validate(text, validation.Required.Error(MsgTextRequired)),
	}.Filter()
	return toValidationError(err, "text")
}

// toValidationError flattens ozzo errors into FieldErrors. order fixes the
// field sequence since validation.Errors is a map.
func toValidationError(err error, order ...string) error {
	if err == nil {
		return nil
	}

	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{}
	seen := map[string]bool{}
	add := func(field string) {
		ferr, ok := verrs[field]
		if !ok || ferr == nil || seen[field] {
			return
		}
		seen[field] = true
		out.Fields = append(out.Fields, FieldError{
			Msg:      ferr.Error(),
			Param:    field,
			Location: validationLocation,
		})
	}

	for _, field := range order {
		add(field)
	}
	for field := range verrs {
		add(field)
	}

	if len(out.Fields) == 0 {
		return nil
	}
	return out
}
