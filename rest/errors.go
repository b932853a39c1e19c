package rest

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// ClientError is returned for 4xx responses
type ClientError struct {
	StatusCode int64
	Code       string
	Msg        string
	Headers    http.Header
	Data       any
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("client error (status %d): %s", e.StatusCode, e.Msg)
}

// ServerError is returned for 5xx responses
type ServerError struct {
	StatusCode int64
	Text       string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (status %d): %s", e.StatusCode, e.Text)
}

// errorResponse covers both the price API ({"message": ...}) and provider
// style ({"code": ..., "msg": ...}) error bodies
type errorResponse struct {
	Code    string `json:"code"`
	Msg     string `json:"msg"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func handleException(resp *resty.Response) error {
	statusCode := int64(resp.StatusCode())

	if statusCode < 400 {
		return nil
	}

	if statusCode >= 500 {
		return &ServerError{
			StatusCode: statusCode,
			Text:       string(resp.Body()),
		}
	}

	clientErr := &ClientError{
		StatusCode: statusCode,
		Msg:        string(resp.Body()),
		Headers:    resp.Header(),
	}

	var errResp errorResponse
	if err := json.Unmarshal(resp.Body(), &errResp); err != nil {
		return clientErr
	}

	msg := errResp.Msg
	if msg == "" {
		msg = errResp.Message
	}
	if errResp.Code == "" && msg == "" {
		return clientErr
	}

	clientErr.Code = errResp.Code
	clientErr.Msg = msg
	clientErr.Data = errResp.Data
	return clientErr
}
