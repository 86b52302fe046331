package utils

import (
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/truemail-rb/truemail-go"
)

type Validator struct {
	Validate    *validator.Validate
	VerifyEmail func(email string) bool
	policy      *bluemonday.Policy
}

var instance *Validator
var once sync.Once
var configuration *truemail.Configuration

// GetValidator returns the process-wide validator. The instance is created on
// first use and registers the custom password and phone validations.
func GetValidator() *Validator {
	once.Do(func() {
		configuration, _ = truemail.NewConfiguration(truemail.ConfigurationAttr{
			VerifierEmail:         "team@mail.unistay.tech",
			ValidationTypeDefault: "mx",
			SmtpFailFast:          true,
		})

		instance = &Validator{
			Validate:    validator.New(validator.WithRequiredStructEnabled()),
			VerifyEmail: validateEmail,
			policy:      bluemonday.StrictPolicy(),
		}

		registerCustomValidators(instance.Validate)
	})

	return instance
}

// SanitizeData strips markup from every string field of the given struct
// pointer, including strings inside slices. Non-string fields are untouched.
// Email fields are also lower-cased so that uniqueness checks, logins and
// code lookups all compare the same canonical address.
func (v *Validator) SanitizeData(obj interface{}) error {
	val := reflect.ValueOf(obj)
	if val.Kind() != reflect.Ptr || val.Elem().Kind() != reflect.Struct {
		return validator.ValidationErrors{}
	}

	val = val.Elem()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		if !field.CanSet() {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			sanitized := v.policy.Sanitize(field.String())
			if isEmailField(val.Type().Field(i)) {
				sanitized = strings.ToLower(sanitized)
			}
			field.SetString(sanitized)
		case reflect.Slice:
			if field.Type().Elem().Kind() != reflect.String {
				continue
			}
			for j := 0; j < field.Len(); j++ {
				elem := field.Index(j)
				elem.SetString(v.policy.Sanitize(elem.String()))
			}
		}
	}

	return nil
}

func validateEmail(email string) bool {
	return truemail.IsValid(email, configuration)
}

func isEmailField(field reflect.StructField) bool {
	for _, rule := range strings.Split(field.Tag.Get("validate"), ",") {
		if rule == "email" {
			return true
		}
	}
	return false
}

func registerCustomValidators(v *validator.Validate) {
	err := v.RegisterValidation("password_validation", passwordValidation)
	if err != nil {
		return
	}

	err = v.RegisterValidation("phone_validation", phoneValidation)
	if err != nil {
		return
	}
}

func phoneValidation(fl validator.FieldLevel) bool {
	phone := fl.Field().String()
	// Optional leading +, then 7 to 15 digits
	pattern := `^\+?[0-9]{7,15}$`
	match, err := regexp.MatchString(pattern, phone)
	if err != nil {
		return false
	}

	return match
}

func passwordValidation(fl validator.FieldLevel) bool {
	var upperLetter, lowerLetter, number, specialChar bool

	value := fl.Field().String()
	for _, r := range value {
		if r > unicode.MaxASCII {
			return false
		}

		switch {
		case unicode.IsUpper(r):
			upperLetter = true
		case unicode.IsLower(r):
			lowerLetter = true
		case unicode.IsNumber(r):
			number = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			specialChar = true
		}
	}

	return upperLetter && lowerLetter && number && specialChar
}
