package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/Neo52000/ma-papeterie-sub003/internal/apierror"
	"github.com/Neo52000/ma-papeterie-sub003/internal/service"
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
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalide : "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// writeServiceError maps the service sentinel errors to HTTP statuses. Unknown
// errors become an opaque 500 through the ErrorHandler middleware.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRulesetNotFound),
		errors.Is(err, service.ErrSimulationNotFound),
		errors.Is(err, service.ErrRuleNotFound),
		errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrInvalidState),
		errors.Is(err, service.ErrNothingApplied):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, service.ErrNoActiveRules),
		errors.Is(err, service.ErrEmptyPopulation),
		errors.Is(err, service.ErrInvalidRuleParams):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
	default:
		_ = c.Error(err)
	}
}
