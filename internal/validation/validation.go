// Package validation checks the structure of dispatch requests and converts
// them into submissions.
package validation

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/openbuilders/campaign-api/internal/billing"
	apperrors "github.com/openbuilders/campaign-api/internal/errors"
	"github.com/openbuilders/campaign-api/internal/types"

	"github.com/go-playground/validator/v10"
)

// DateLayouts are the accepted formats of the date field.
var DateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// SMSRequest is the body of an SMS dispatch request. Every field is kept as
// text so JSON and form bodies go through the same rules.
type SMSRequest struct {
	Name            string `json:"name" validate:"required,min=4,max=60"`
	Recipients      string `json:"recipients" validate:"required,recipients"`
	Sender          string `json:"sender" validate:"required"`
	Message         string `json:"message" validate:"required,max=2000"`
	Transliteration string `json:"transliteration" validate:"omitempty,boolean"`
	Date            string `json:"date" validate:"omitempty,date"`
	Validity        string `json:"validity" validate:"omitempty,numeric"`
}

type ViberRequest struct {
	Name            string `json:"name" validate:"required,min=4,max=60"`
	Recipients      string `json:"recipients" validate:"required,recipients"`
	Sender          string `json:"sender" validate:"required"`
	Message         string `json:"message" validate:"required_without_all=ImageURL ButtonName,max=1000"`
	ImageURL        string `json:"url_image" validate:"required_without_all=Message ButtonName"`
	ButtonName      string `json:"button_name" validate:"required_without_all=Message ImageURL,required_with=ButtonURL,max=19"`
	ButtonURL       string `json:"button_url" validate:"required_with=ButtonName"`
	SMSSender       string `json:"sms_sender" validate:"required_with=SMSMessage"`
	SMSMessage      string `json:"sms_message" validate:"required_with=SMSSender,max=1000"`
	Transliteration string `json:"transliteration" validate:"omitempty,boolean"`
	Date            string `json:"date" validate:"omitempty,date"`
	Validity        string `json:"validity" validate:"omitempty,numeric"`
}

// ValidityOptions lists the allowed validity minutes.
type ValidityOptions interface {
	Minutes(ctx context.Context) ([]int, error)
}

type Validator struct {
	validate *validator.Validate
	validity ValidityOptions
}

func New(maxRecipients int64, validity ValidityOptions) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterValidation("recipients", func(fl validator.FieldLevel) bool {
		return billing.CountRecipients(fl.Field().String()) <= maxRecipients
	})

	v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := parseDate(fl.Field().String())
		return err == nil
	})

	return &Validator{
		validate: v,
		validity: validity,
	}
}

func (v *Validator) SMS(ctx context.Context, req SMSRequest) (types.Submission, error) {
	details := v.check(req)
	v.checkValidity(ctx, req.Validity, details)
	if len(details) > 0 {
		return types.Submission{}, invalid(details)
	}

	return types.Submission{
		Channel:         types.ChannelSMS,
		Name:            req.Name,
		Recipients:      req.Recipients,
		Sender:          req.Sender,
		Message:         req.Message,
		Transliteration: parseBool(req.Transliteration),
		StartDate:       optionalDate(req.Date),
		ValidityMinutes: optionalInt(req.Validity),
	}, nil
}

func (v *Validator) Viber(ctx context.Context, req ViberRequest) (types.Submission, error) {
	details := v.check(req)
	v.checkValidity(ctx, req.Validity, details)
	if len(details) > 0 {
		return types.Submission{}, invalid(details)
	}

	return types.Submission{
		Channel:         types.ChannelViber,
		Name:            req.Name,
		Recipients:      req.Recipients,
		Sender:          req.Sender,
		Message:         req.Message,
		Transliteration: parseBool(req.Transliteration),
		StartDate:       optionalDate(req.Date),
		ValidityMinutes: optionalInt(req.Validity),
		ImageURL:        req.ImageURL,
		ButtonName:      req.ButtonName,
		ButtonURL:       req.ButtonURL,
		SMSSender:       req.SMSSender,
		SMSMessage:      req.SMSMessage,
	}, nil
}

func (v *Validator) check(req interface{}) map[string][]string {
	details := map[string][]string{}

	err := v.validate.Struct(req)
	if err == nil {
		return details
	}

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		details["request"] = []string{err.Error()}
		return details
	}

	for _, fe := range fieldErrors {
		details[fe.Field()] = append(details[fe.Field()], message(fe))
	}

	return details
}

// checkValidity runs only for numeric values; other values already failed.
func (v *Validator) checkValidity(ctx context.Context, raw string, details map[string][]string) {
	if raw == "" || len(details["validity"]) > 0 {
		return
	}

	minutes, err := v.validity.Minutes(ctx)
	if err != nil {
		details["validity"] = append(details["validity"], "Validity options are unavailable.")
		return
	}

	value, err := strconv.ParseFloat(raw, 64)
	for _, m := range minutes {
		if err == nil && value == float64(m) {
			return
		}
	}

	allowed := make([]string, len(minutes))
	for i, m := range minutes {
		allowed[i] = strconv.Itoa(m)
	}

	details["validity"] = append(details["validity"],
		"Validity value must be one of the following: "+strings.Join(allowed, ","))
}

func message(fe validator.FieldError) string {
	field := strings.ReplaceAll(fe.Field(), "_", " ")

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "required_with":
		return fmt.Sprintf("The %s field is required when %s is present.", field, related(fe))
	case "required_without_all":
		return fmt.Sprintf("The %s field is required when none of %s are present.", field, related(fe))
	case "min":
		return fmt.Sprintf("The %s must be at least %s characters.", field, fe.Param())
	case "max":
		return fmt.Sprintf("The %s may not be greater than %s characters.", field, fe.Param())
	case "boolean":
		return fmt.Sprintf("The %s field must be true or false.", field)
	case "date":
		return fmt.Sprintf("The %s is not a valid date.", field)
	case "numeric":
		return fmt.Sprintf("The %s must be a number.", field)
	case "recipients":
		return fmt.Sprintf("The %s list is too long.", field)
	}

	return fmt.Sprintf("The %s is invalid.", field)
}

var relatedNames = map[string]string{
	"Message":    "message",
	"ImageURL":   "url image",
	"ButtonName": "button name",
	"ButtonURL":  "button url",
	"SMSSender":  "sms sender",
	"SMSMessage": "sms message",
}

func related(fe validator.FieldError) string {
	names := strings.Fields(fe.Param())
	for i, n := range names {
		if name, ok := relatedNames[n]; ok {
			names[i] = name
		}
	}
	return strings.Join(names, " / ")
}

func invalid(details map[string][]string) error {
	return apperrors.ServiceError{
		Kind:    apperrors.KindInvalidRequest,
		Message: "incorrect data structure",
		Details: details,
	}
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range DateLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date %q", raw)
}

func optionalDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := parseDate(raw)
	if err != nil {
		return nil
	}
	return &t
}

func optionalInt(raw string) *int {
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	i := int(f)
	return &i
}

func parseBool(raw string) bool {
	b, _ := strconv.ParseBool(raw)
	return b
}
