package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/orderhub/backend/internal/domain/integration"
	"github.com/orderhub/backend/internal/interfaces/http/dto"
)

// Custom validation tags
const (
	TagPlatform       = "platform"
	TagInternalStatus = "internal_status"
)

var (
	setupOnce sync.Once
	// messages renders gin's validation errors; nil until SetupValidator runs
	messages ut.Translator
)

// SetupValidator installs the custom tags and English messages on gin's
// validator. Safe to call more than once.
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		trans, err := RegisterValidations(v)
		if err == nil {
			messages = trans
		}
	})
}

// RegisterValidations names fields after their json, form or uri tag,
// installs the platform and internal_status tags, and returns a translator
// for v's errors.
func RegisterValidations(v *validator.Validate) (ut.Translator, error) {
	v.RegisterTagNameFunc(fieldName)

	if err := v.RegisterValidation(TagPlatform, func(fl validator.FieldLevel) bool {
		return integration.PlatformCode(strings.ToLower(fl.Field().String())).IsValid()
	}); err != nil {
		return nil, err
	}
	if err := v.RegisterValidation(TagInternalStatus, func(fl validator.FieldLevel) bool {
		return integration.InternalStatus(fl.Field().String()).IsValid()
	}); err != nil {
		return nil, err
	}

	english := en.New()
	trans, _ := ut.New(english, english).GetTranslator("en")
	if err := entranslations.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, err
	}
	for tag, text := range map[string]string{
		TagPlatform:       "{0} must be a supported platform",
		TagInternalStatus: "{0} must be a known order status",
	} {
		if err := v.RegisterTranslation(tag, trans, addText(tag, text), translateField); err != nil {
			return nil, err
		}
	}
	return trans, nil
}

func fieldName(fld reflect.StructField) string {
	for _, key := range []string{"json", "form", "uri"} {
		name, _, _ := strings.Cut(fld.Tag.Get(key), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return ""
}

func addText(tag, text string) validator.RegisterTranslationsFunc {
	return func(trans ut.Translator) error {
		return trans.Add(tag, text, true)
	}
}

func translateField(trans ut.Translator, fe validator.FieldError) string {
	msg, err := trans.T(fe.Tag(), fe.Field())
	if err != nil {
		return fe.Error()
	}
	return msg
}

// FormatValidationErrors builds the ERR_VALIDATION envelope with one detail
// per failed field. Errors that are not field errors, such as malformed
// JSON, produce no details.
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		details = make([]dto.ValidationDetail, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			details = append(details, dto.ValidationDetail{Field: fe.Field(), Message: message(fe)})
		}
	}
	return dto.Invalid("Request validation failed", requestID, details)
}

func message(fe validator.FieldError) string {
	if messages == nil {
		return "Invalid value"
	}
	return fe.Translate(messages)
}

// HandleValidationError writes a 400 validation response
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, getRequestID(c)))
}
