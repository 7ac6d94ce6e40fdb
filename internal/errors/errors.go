package errors

import (
	"fmt"
	"net/http"
)

const (
	ErrCodeInvalidImageType ErrCode = "INVALID_IMAGE_TYPE"
	ErrCodeInvalidParameter ErrCode = "INVALID_PARAMETER"
	ErrCodeSizeInvalid      ErrCode = "SIZE_INVALID"
	ErrCodeInternal         ErrCode = "INTERNAL"
)

type ErrCode string

type ErrorInfo struct {
	HttpStatus int     `json:"-"`
	Code       ErrCode `json:"code"`
	Message    string  `json:"message"`
}

func (e ErrorInfo) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

const InvalidImageTypeMessage = "Invalid file type/extension. Please provide an image in JPEG or PNG format."

func NewInvalidImageTypeError() ErrorInfo {
	return ErrorInfo{HttpStatus: http.StatusBadRequest, Code: ErrCodeInvalidImageType, Message: InvalidImageTypeMessage}
}

func NewParameterInvalidError(msg string) ErrorInfo {
	return ErrorInfo{HttpStatus: http.StatusBadRequest, Code: ErrCodeInvalidParameter, Message: msg}
}

func NewSizeInvalidError(limit int64) ErrorInfo {
	return ErrorInfo{HttpStatus: http.StatusBadRequest, Code: ErrCodeSizeInvalid, Message: fmt.Sprintf("upload exceeds %d bytes", limit)}
}

func NewInternalError(err error) ErrorInfo {
	return ErrorInfo{HttpStatus: http.StatusInternalServerError, Code: ErrCodeInternal, Message: err.Error()}
}
