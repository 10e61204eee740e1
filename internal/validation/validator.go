package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/preloved-backend/internal/models"
	"github.com/ignatzorin/preloved-backend/internal/pkg/apperror"
)

var (
	phoneRegex    = regexp.MustCompile(`^(\+?66|0)[0-9]{8,9}$`)
	postcodeRegex = regexp.MustCompile(`^[0-9]{5}$`)
)

// Normalizer приводит поля запроса к каноническому виду до проверки.
type Normalizer interface {
	Normalize()
}

var (
	once     sync.Once
	instance *validator.Validate
)

// engine возвращает общий экземпляр валидатора с зарегистрированными правилами.
func engine() *validator.Validate {
	once.Do(func() {
		v := validator.New()

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return fld.Name
		})

		// Денежные значения проверяются как числа.
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})

		mustRegister(v, "phone", func(fl validator.FieldLevel) bool {
			return phoneRegex.MatchString(fl.Field().String())
		})
		mustRegister(v, "postcode", func(fl validator.FieldLevel) bool {
			return postcodeRegex.MatchString(fl.Field().String())
		})
		mustRegister(v, "password", func(fl validator.FieldLevel) bool {
			return ValidatePassword(fl.Field().String()) == nil
		})
		mustRegister(v, "condition", func(fl validator.FieldLevel) bool {
			_, ok := models.ValidConditions[fl.Field().String()]
			return ok
		})
		mustRegister(v, "report_reason", func(fl validator.FieldLevel) bool {
			_, ok := models.ValidReportReasons[fl.Field().String()]
			return ok
		})
		mustRegister(v, "product_sort", func(fl validator.FieldLevel) bool {
			_, ok := models.ValidProductSorts[fl.Field().String()]
			return ok
		})

		v.RegisterStructValidation(reportTargetRule, CreateReportRequest{})
		v.RegisterStructValidation(priceRangeRule, ProductQuery{})

		instance = v
	})
	return instance
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %s: %v", tag, err))
	}
}

// Struct проверяет структуру и возвращает все нарушения сразу.
func Struct(req interface{}) []apperror.FieldError {
	err := engine().Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []apperror.FieldError{{Field: "body", Message: "некорректный запрос"}}
	}

	fields := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperror.FieldError{
			Field:   fieldPath(fe),
			Message: message(fe),
		})
	}
	return fields
}

// Validate нормализует запрос и проверяет его.
func Validate(req interface{}) error {
	if n, ok := req.(Normalizer); ok {
		n.Normalize()
	}
	if fields := Struct(req); len(fields) > 0 {
		return apperror.Validation(fields)
	}
	return nil
}

// Bind читает JSON тело запроса и проверяет его.
func Bind(c *gin.Context, req interface{}) error {
	if err := Decode(c, req); err != nil {
		return err
	}
	return Validate(req)
}

// Decode только читает JSON тело. Проверку выполняет сервис.
func Decode(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return decodeError(err)
	}
	return nil
}

// BindQuery читает параметры строки запроса и проверяет их.
func BindQuery(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindQuery(req); err != nil {
		return apperror.Validation([]apperror.FieldError{{Field: "query", Message: "некорректные параметры запроса"}})
	}
	return Validate(req)
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return apperror.Validation([]apperror.FieldError{{Field: field, Message: "неверный тип значения"}})
	}
	if errors.Is(err, io.EOF) {
		return apperror.Validation([]apperror.FieldError{{Field: "body", Message: "тело запроса пустое"}})
	}
	return apperror.Validation([]apperror.FieldError{{Field: "body", Message: "некорректный JSON"}})
}

// fieldPath убирает имя корневой структуры из пространства имён поля.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "обязательное поле"
	case "email":
		return "некорректный email"
	case "min":
		if isString(fe) {
			return fmt.Sprintf("минимальная длина %s символов", fe.Param())
		}
		return fmt.Sprintf("значение должно быть не меньше %s", fe.Param())
	case "max":
		if isString(fe) {
			return fmt.Sprintf("максимальная длина %s символов", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("не более %s элементов", fe.Param())
		}
		return fmt.Sprintf("значение должно быть не больше %s", fe.Param())
	case "gte":
		return fmt.Sprintf("значение должно быть не меньше %s", fe.Param())
	case "lte":
		return fmt.Sprintf("значение должно быть не больше %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("допустимые значения: %s", fe.Param())
	case "uuid":
		return "некорректный идентификатор"
	case "numeric":
		return "должно быть числом"
	case "url":
		return "некорректный URL"
	case "phone":
		return "некорректный номер телефона"
	case "postcode":
		return "почтовый индекс должен состоять из 5 цифр"
	case "password":
		if err := ValidatePassword(fmt.Sprint(fe.Value())); err != nil {
			return err.Error()
		}
		return "пароль не соответствует требованиям"
	case "condition":
		return "допустимые значения: new, like_new, good, fair, poor"
	case "report_reason":
		return "недопустимая причина жалобы"
	case "product_sort":
		return "допустимые значения: newest, oldest, price_asc, price_desc, popular"
	case "exactly_one_target":
		return "укажите ровно один объект жалобы"
	case "price_range":
		return "min_price не может быть больше max_price"
	default:
		return "некорректное значение"
	}
}

func isString(fe validator.FieldError) bool {
	return fe.Kind() == reflect.String
}
