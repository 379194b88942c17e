package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"cafebook/internal/apierror"
	"cafebook/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON không hợp lệ: "+err.Error()))
		return false
	}
	if fields := validationFields(req); fields != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.NewFields(fields))
		return false
	}
	return true
}

// bindQuery binds and validates query parameters. Bad query input is a 400.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Tham số không hợp lệ: "+err.Error()))
		return false
	}
	if fields := validationFields(req); fields != nil {
		c.JSON(http.StatusBadRequest, apierror.NewFields(fields))
		return false
	}
	return true
}

func validationFields(req interface{}) map[string]string {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}

// paramID parses a positive numeric path parameter.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, apierror.New("ID không hợp lệ"))
		return 0, false
	}
	return uint(id), true
}

// respondError renders a service error. Unclassified errors are logged and
// hidden behind a generic 500.
func respondError(c *gin.Context, err error) {
	status, body := apierror.Status(err)
	if status >= http.StatusInternalServerError {
		log.Error().
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).
			Err(err).
			Msg("request failed")
	}
	c.JSON(status, body)
}
