// file: internals/helpers/validation.go
package helper

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/pkg/errors"

	subjectModel "hajri_backend/internals/features/academics/subjects/model"
	manualModel "hajri_backend/internals/features/attendance/manual_entries/model"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator
)

const (
	notBlankTag   = "notblank"
	dateTag       = "date_ymd"
	classTypeTag  = "class_type"
	attStatusTag  = "attendance_status"
	dateLayoutYMD = "2006-01-02"
)

func init() {
	Validate = NewValidator()
}

// NewValidator: validator + terjemahan en, nama field pakai json tag.
func NewValidator() *validator.Validate {
	v := validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, Translator)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		return ok && strings.TrimSpace(s) != ""
	})
	_ = v.RegisterValidation(dateTag, func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		_, err := time.Parse(dateLayoutYMD, strings.TrimSpace(s))
		return err == nil
	})
	_ = v.RegisterValidation(classTypeTag, func(fl validator.FieldLevel) bool {
		_, ok := subjectModel.ParseClassType(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation(attStatusTag, func(fl validator.FieldLevel) bool {
		_, ok := manualModel.ParseAttendanceStatus(fl.Field().String())
		return ok
	})

	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range []string{notBlankTag, dateTag, classTypeTag, attStatusTag} {
		_ = v.RegisterTranslation(tag, Translator, registerFn, translateCustom)
	}
	return v
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return fmt.Sprintf("%s cannot be blank", fe.Field())
	case dateTag:
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", fe.Field())
	case classTypeTag:
		return fmt.Sprintf("%s must be one of LECTURE, LAB, TUTORIAL", fe.Field())
	case attStatusTag:
		return fmt.Sprintf("%s must be one of PRESENT, ABSENT, CANCELLED", fe.Field())
	}
	return fe.Error()
}

/* ===============================
   Validation errors
=================================*/

// ValidationErrors: error validasi field → 422 dengan body map[string][]string.
// Dipakai oleh validator (DTO) maupun service (validasi domain).
type ValidationErrors struct {
	Fields map[string][]string
}

func (e *ValidationErrors) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for k, v := range e.Fields {
		parts = append(parts, k+": "+strings.Join(v, ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationErrors) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// OrNil: nil kalau tidak ada field yang gagal.
func (e *ValidationErrors) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func asValidation(err error, target **ValidationErrors) bool {
	return errors.As(err, target)
}

// ValidateStruct menjalankan validator lalu menerjemahkan hasilnya.
func ValidateStruct(v *validator.Validate, s any) error {
	if v == nil {
		v = Validate
	}
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	out := &ValidationErrors{}
	for _, fe := range ves {
		out.Add(fieldPath(fe), fe.Translate(Translator))
	}
	return out
}

// fieldPath: "Req.entries[0].present" → "entries[0].present"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}
