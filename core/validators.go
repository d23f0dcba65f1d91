package core

import (
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// Validate is the app-wide validator instance. InitValidators must be
	// called once before use.
	Validate = validator.New()

	// Translator translates validation errors for API responses.
	Translator ut.Translator

	// custom validation tags & texts
	webURLTag  = "weburl"
	webURLText = "a valid absolute or server-relative URL is required"

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

// InitValidators instantiates the validator for use.
func InitValidators() {
	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")

	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// Use JSON tag names for errors instead of Go struct names.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = Validate.RegisterValidation(webURLTag, webURLValidation)
	RegisterCustomTranslation(Validate, Translator, webURLTag, webURLText)

	RegisterCustomTranslation(Validate, Translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(Validate, Translator, requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

// webURLValidation allows normalized external URLs: either server-relative
// ("/path") or absolute with a scheme and host.
func webURLValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return false
	}
	if strings.HasPrefix(val, "/") {
		return !strings.ContainsAny(val, " \t")
	}
	u, err := url.Parse(val)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}
