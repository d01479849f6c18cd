// Package validation holds the client-side form rules. A form that fails
// validation never reaches the network; messages are keyed by field so the
// view layer can surface them inline.
package validation

import (
	"strconv"
	"strings"

	"driveshare/models"
	"driveshare/utils"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// CarForm is the add/edit listing form as the user typed it. RentPrice stays
// a string here; it goes over the wire as a number only after validation.
type CarForm struct {
	CarName     string `validate:"required,min=3"`
	Description string `validate:"required,min=20"`
	Category    string `validate:"required"`
	RentPrice   string `validate:"required"`
	Location    string `validate:"required"`
	ImageURL    string `validate:"required"`
}

var carFormMessages = map[string]string{
	"CarName":     "Car name must be at least 3 characters",
	"Description": "Description must be at least 20 characters",
	"Category":    "Please select a valid category",
	"RentPrice":   "Rent price must be a positive number",
	"Location":    "Location is required",
	"ImageURL":    "Image URL is required",
}

// carFormFields maps struct fields to the wire names the view layer keys
// inline errors off.
var carFormFields = map[string]string{
	"CarName":     "carName",
	"Description": "description",
	"Category":    "category",
	"RentPrice":   "rentPrice",
	"Location":    "location",
	"ImageURL":    "imageUrl",
}

// Validate checks the form and converts it into the create/update payload.
// On failure it returns field-keyed messages and no payload.
func (f CarForm) Validate() (models.CarInput, utils.ValidationErrors) {
	form := CarForm{
		CarName:     strings.TrimSpace(f.CarName),
		Description: strings.TrimSpace(f.Description),
		Category:    strings.TrimSpace(f.Category),
		RentPrice:   strings.TrimSpace(f.RentPrice),
		Location:    strings.TrimSpace(f.Location),
		ImageURL:    strings.TrimSpace(f.ImageURL),
	}

	errs := utils.ValidationErrors{}
	if err := validate.Struct(form); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrs {
				errs[carFormFields[fe.Field()]] = carFormMessages[fe.Field()]
			}
		}
	}

	price, perr := strconv.ParseFloat(form.RentPrice, 64)
	if form.RentPrice != "" && (perr != nil || price <= 0) {
		errs["rentPrice"] = carFormMessages["RentPrice"]
	}

	if form.Category != "" && !models.ValidCategory(models.Category(form.Category)) {
		errs["category"] = carFormMessages["Category"]
	}

	if len(errs) > 0 {
		return models.CarInput{}, errs
	}

	return models.CarInput{
		CarName:     form.CarName,
		Description: form.Description,
		Category:    models.Category(form.Category),
		RentPrice:   price,
		Location:    form.Location,
		ImageURL:    form.ImageURL,
	}, nil
}

// RegisterForm is the account registration form.
type RegisterForm struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
	PhotoURL string `validate:"required"`
}

// Validate checks the registration form. Password rules mirror the product:
// length plus upper- and lowercase letters, with the violations joined into
// one message.
func (f RegisterForm) Validate() utils.ValidationErrors {
	form := RegisterForm{
		Name:     strings.TrimSpace(f.Name),
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
		PhotoURL: strings.TrimSpace(f.PhotoURL),
	}

	errs := utils.ValidationErrors{}
	if form.Name == "" {
		errs["name"] = "Name is required"
	}
	if form.Email == "" {
		errs["email"] = "Email is required"
	} else if err := validate.Var(form.Email, "email"); err != nil {
		errs["email"] = "Email is invalid"
	}
	if form.PhotoURL == "" {
		errs["photoURL"] = "Photo URL is required"
	}

	var pwProblems []string
	if len(form.Password) < 6 {
		pwProblems = append(pwProblems, "Password must be at least 6 characters long")
	}
	if !strings.ContainsFunc(form.Password, func(r rune) bool { return r >= 'A' && r <= 'Z' }) {
		pwProblems = append(pwProblems, "Password must contain at least one uppercase letter")
	}
	if !strings.ContainsFunc(form.Password, func(r rune) bool { return r >= 'a' && r <= 'z' }) {
		pwProblems = append(pwProblems, "Password must contain at least one lowercase letter")
	}
	if len(pwProblems) > 0 {
		errs["password"] = strings.Join(pwProblems, ". ")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
