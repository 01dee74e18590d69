package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// AccountForm is the input for creating a user account.
type AccountForm struct {
	Username        string `form:"username" validate:"required,max=150"`
	Email           string `form:"email" validate:"required,email,max=254"`
	FirstName       string `form:"first_name" validate:"required,max=150"`
	LastName        string `form:"last_name" validate:"required,max=150"`
	Password        string `form:"password" validate:"required"`
	ConfirmPassword string `form:"confirm_password" validate:"required"`
}

// EventForm is the input for creating an event. Dates are parsed separately.
type EventForm struct {
	Name        string `form:"name" validate:"required,max=200"`
	StartDate   string `form:"start_date" validate:"required"`
	EndDate     string `form:"end_date" validate:"required"`
	Description string `form:"description"`
	Category    string `form:"category" validate:"required,max=50"`
}

// ContactForm holds the contact details captured when registering for an event.
type ContactForm struct {
	Name  string `form:"name" json:"name" validate:"required,max=100"`
	Email string `form:"email" json:"email" validate:"required,email"`
	Phone string `form:"phone" json:"phone" validate:"required,max=20"`
}

// MessageForm is a message submitted through the public contact page.
type MessageForm struct {
	Name    string `form:"name" validate:"required,max=100"`
	Email   string `form:"email" validate:"required,email"`
	Message string `form:"message" validate:"required,max=5000"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their form names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateStruct runs tag validation on a form and converts failures into a ValidationError.
func ValidateStruct(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate form: %w", err)
	}

	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = messageFor(fe)
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	default:
		return "Invalid value."
	}
}
