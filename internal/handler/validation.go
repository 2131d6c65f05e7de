package handler

import (
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	personNameRegexp  = regexp.MustCompile(`^[a-zA-Z\s'-]+$`)
	countryCodeRegexp = regexp.MustCompile(`^\+?[1-9]\d{0,3}$`)
)

type customValidation struct {
	tag     string
	fn      validator.Func
	message string
}

var customValidations = []customValidation{
	{
		tag: "personname",
		fn: func(fl validator.FieldLevel) bool {
			return personNameRegexp.MatchString(fl.Field().String())
		},
		message: "{0} can only contain letters, spaces, hyphens, and apostrophes",
	},
	{
		tag: "countrycode",
		fn: func(fl validator.FieldLevel) bool {
			return countryCodeRegexp.MatchString(fl.Field().String())
		},
		message: "{0} must be a valid format (e.g., +1, +91)",
	},
	{
		tag: "hasletter",
		fn: func(fl validator.FieldLevel) bool {
			return strings.IndexFunc(fl.Field().String(), unicode.IsLetter) >= 0
		},
		message: "{0} must contain at least one letter",
	},
}

// newValidator 创建带英文翻译的校验器，错误中的字段名使用 json 标签
func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, err
	}

	for _, cv := range customValidations {
		if err := validate.RegisterValidation(cv.tag, cv.fn); err != nil {
			return nil, nil, err
		}

		message := cv.message
		tag := cv.tag
		if err := validate.RegisterTranslation(tag, trans,
			func(ut ut.Translator) error {
				return ut.Add(tag, message, true)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				t, _ := ut.T(tag, fe.Field())
				return t
			},
		); err != nil {
			return nil, nil, err
		}
	}

	return validate, trans, nil
}
