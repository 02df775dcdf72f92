package handlers

import (
	"errors"
	"heavy-route-service/internal/domain"
	"heavy-route-service/internal/platform/obs"
	"log"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

// ErrResponse is the JSON body of every error reply.
type ErrResponse struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	StatusText    string   `json:"status"`
	ErrorText     string   `json:"error,omitempty"`
	ErrValidation []string `json:"validation,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

func ErrValidation(err error, msgs []string) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		ErrorText:      "request validation failed",
		ErrValidation:  msgs,
	}
}

func ErrMethodNotAllowed() render.Renderer {
	return &ErrResponse{
		HTTPStatusCode: http.StatusMethodNotAllowed,
		StatusText:     "Method not allowed.",
	}
}

// planFailure maps a planning error class to its HTTP status and public
// message. Internal detail stays in the logs.
func planFailure(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrGeocodeFailed):
		return http.StatusBadRequest, domain.ErrGeocodeFailed.Error()
	case errors.Is(err, domain.ErrGeocodeUnavailable):
		return http.StatusBadGateway, domain.ErrGeocodeUnavailable.Error()
	case errors.Is(err, domain.ErrGraphFetchFailed):
		return http.StatusBadGateway, domain.ErrGraphFetchFailed.Error()
	case errors.Is(err, domain.ErrNodeNotFound):
		return http.StatusInternalServerError, domain.ErrNodeNotFound.Error()
	case errors.Is(err, domain.ErrNoRouteFound):
		return http.StatusUnprocessableEntity, domain.ErrNoRouteFound.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}

func ErrPlan(r *http.Request, err error) render.Renderer {
	code, msg := planFailure(err)
	log.Printf("req_id=%s method=%s path=%s status=%d err=%v",
		obs.RequestID(r.Context()), r.Method, r.URL.Path, code, err)

	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: code,
		StatusText:     http.StatusText(code),
		ErrorText:      msg,
	}
}

// Validator checks request structs and translates failures to English.
// Safe for concurrent use once built.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func NewValidator() *Validator {
	validate := validator.New()
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)
	return &Validator{validate: validate, trans: trans}
}

// Check returns the translated field messages and the validation error, or
// a nil error for a valid struct.
func (v *Validator) Check(s any) ([]string, error) {
	err := v.validate.Struct(s)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}, err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, e.Translate(v.trans))
	}
	return msgs, err
}
