package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"devconnector-server/pkg/response"

	"github.com/go-playground/validator/v10"
)

const msgInvalidBody = "Invalid request body"

// sanitizer is implemented by request types that normalise their fields
// before validation.
type sanitizer interface {
	Sanitize()
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate reads a JSON body into dst, a pointer to a request
// struct, and writes a 400 when it is unreadable or fails validation.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Errors(w, http.StatusBadRequest, response.ErrorItem{Msg: msgInvalidBody, Location: "body"})
		return false
	}

	if s, ok := dst.(sanitizer); ok {
		s.Sanitize()
	}

	err := v.Struct(dst)
	if err == nil {
		return true
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		response.Errors(w, http.StatusBadRequest, response.ErrorItem{Msg: msgInvalidBody, Location: "body"})
		return false
	}

	response.Errors(w, http.StatusBadRequest, validationItems(dst, fieldErrs)...)
	return false
}

func validationItems(dst interface{}, fieldErrs validator.ValidationErrors) []response.ErrorItem {
	t := reflect.TypeOf(dst)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	items := make([]response.ErrorItem, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg := "Invalid value"
		if sf, ok := t.FieldByName(fe.StructField()); ok {
			if m := sf.Tag.Get("msg"); m != "" {
				msg = m
			}
		}

		item := response.ErrorItem{
			Msg:      msg,
			Param:    fe.Field(),
			Location: "body",
		}
		if fe.Field() != "password" {
			item.Value = fe.Value()
		}
		items = append(items, item)
	}
	return items
}
