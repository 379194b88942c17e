package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// AuthReason distinguishes why a request could not be authenticated.
type AuthReason string

const (
	AuthMissing          AuthReason = "missing"
	AuthMalformed        AuthReason = "malformed"
	AuthExpired          AuthReason = "expired"
	AuthInvalidSignature AuthReason = "invalid_signature"
	AuthWrongType        AuthReason = "wrong_type"
	AuthBadCredentials   AuthReason = "bad_credentials"
)

// AuthError is returned by the token service, the request authenticator and login.
type AuthError struct {
	Reason AuthReason
	Err    error
}

func (e *AuthError) Error() string {
	switch e.Reason {
	case AuthMissing:
		return "Thiếu Authorization header"
	case AuthMalformed:
		return "Token không hợp lệ hoặc sai định dạng Bearer"
	case AuthExpired:
		return "Token đã hết hạn"
	case AuthInvalidSignature:
		return "Chữ ký token không hợp lệ"
	case AuthWrongType:
		return "Loại token không hợp lệ"
	case AuthBadCredentials:
		return "Mật khẩu không đúng"
	}
	return "Xác thực thất bại"
}

func (e *AuthError) Unwrap() error { return e.Err }

// Entity names the record kind a NotFoundError refers to.
type Entity string

const (
	EntityEmployee   Entity = "employee"
	EntityProduct    Entity = "product"
	EntityVoucher    Entity = "voucher"
	EntityInvoice    Entity = "invoice"
	EntityAccount    Entity = "account"
	EntityIngredient Entity = "ingredient"
	EntityBook       Entity = "book"
	EntityGenre      Entity = "genre"
	EntityRole       Entity = "role"
)

var entityLabels = map[Entity]string{
	EntityEmployee:   "Nhân viên",
	EntityProduct:    "Sản phẩm",
	EntityVoucher:    "Voucher",
	EntityInvoice:    "Hóa đơn",
	EntityAccount:    "Tài khoản",
	EntityIngredient: "Nguyên liệu",
	EntityBook:       "Sách",
	EntityGenre:      "Thể loại",
	EntityRole:       "Chức vụ",
}

// NotFoundError reports a reference that did not resolve.
type NotFoundError struct {
	Entity Entity
	ID     any
}

func (e *NotFoundError) Error() string {
	label := entityLabels[e.Entity]
	if label == "" {
		label = string(e.Entity)
	}
	if e.ID == nil {
		return label + " không tồn tại"
	}
	return fmt.Sprintf("%s %v không tồn tại", label, e.ID)
}

// NotFound builds a NotFoundError.
func NotFound(entity Entity, id any) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// IsNotFound reports whether err is a NotFoundError for entity.
func IsNotFound(err error, entity Entity) bool {
	var nf *NotFoundError
	return errors.As(err, &nf) && nf.Entity == entity
}

// ValidationReason classifies business-rule validation failures.
type ValidationReason string

const (
	DuplicateName     ValidationReason = "duplicate_name"
	NegativeQuantity  ValidationReason = "negative_quantity"
	InvalidCharacters ValidationReason = "invalid_characters"
	BadDateRange      ValidationReason = "bad_date_range"
	BadPercentage     ValidationReason = "bad_percentage"
	BadInput          ValidationReason = "bad_input"
)

// ValidationError is a business-rule violation detected by a service.
type ValidationError struct {
	Reason ValidationReason
	Field  string
	Msg    string
}

func (e *ValidationError) Error() string { return e.Msg }

// Invalid builds a ValidationError.
func Invalid(reason ValidationReason, field, msg string) error {
	return &ValidationError{Reason: reason, Field: field, Msg: msg}
}

// ConflictReason classifies state conflicts.
type ConflictReason string

const DuplicateSequenceNumber ConflictReason = "duplicate_sequence_number"

// ConflictError signals a write that collided with existing state.
type ConflictError struct {
	Reason ConflictReason
	Err    error
}

func (e *ConflictError) Error() string {
	if e.Reason == DuplicateSequenceNumber {
		return "Số thứ tự dòng hóa đơn bị trùng"
	}
	return "Xung đột dữ liệu"
}

func (e *ConflictError) Unwrap() error { return e.Err }

// Status maps an error to its HTTP status and client-safe envelope.
// Unknown errors become a generic 500 so internal detail never leaks.
func Status(err error) (int, *APIError) {
	var (
		authErr     *AuthError
		notFound    *NotFoundError
		validation  *ValidationError
		conflictErr *ConflictError
	)
	switch {
	case errors.As(err, &authErr):
		return http.StatusUnauthorized, New(authErr.Error())
	case errors.As(err, &notFound):
		return http.StatusNotFound, New(notFound.Error())
	case errors.As(err, &validation):
		return http.StatusBadRequest, New(validation.Error())
	case errors.As(err, &conflictErr):
		return http.StatusConflict, New(conflictErr.Error())
	}
	return http.StatusInternalServerError, New("Lỗi hệ thống")
}
