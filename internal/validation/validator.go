// Package validation はリクエストボディの検証を提供する。
// 違反はmodel.APIError(VALIDATION_FAILED)として返し、フィールド名はJSON名で報告する。
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/hitoshi/shopfront/internal/model"
)

// Validator は構造体タグに基づく検証器。複数goroutineから安全に使える。
type Validator struct {
	validate *validator.Validate
}

// New はValidatorを生成する。
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	// decimalは数値として比較する
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	return &Validator{validate: v}
}

// Struct は構造体を検証する。違反がある場合は*model.APIErrorを返す。
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate: %w", err)
	}

	fields := make([]model.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, model.FieldError{
			Field: fieldPath(fe.Namespace()),
			Rule:  fe.Tag(),
		})
	}
	return model.NewValidationError(fields)
}

// DecodeJSON はJSONをdstにデコードし、検証する。
// 解析できないボディはINVALID_REQUESTとして返す。
func (v *Validator) DecodeJSON(r io.Reader, dst any) error {
	if err := json.NewDecoder(r).Decode(dst); err != nil {
		return model.NewInvalidRequestError()
	}
	return v.Struct(dst)
}

// fieldPath は"ProductInput.orderData.customerEmail"のような名前空間から
// 先頭の型名を取り除く。
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
