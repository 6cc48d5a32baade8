package respond

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Envelope is the single-object API response shape.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   *Error `json:"error,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

// Meta carries request correlation data on successful responses.
type Meta struct {
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id,omitempty"`
}

// Paginated is the list response shape.
type Paginated struct {
	Success    bool       `json:"success"`
	Data       any        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Pagination describes the window of a list response.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPagination derives total_pages from the window and total count.
func NewPagination(page, limit int, total int64) Pagination {
	p := Pagination{Page: page, Limit: limit, Total: total}
	if limit > 0 {
		p.TotalPages = int(total / int64(limit))
		if total%int64(limit) != 0 {
			p.TotalPages++
		}
	}
	return p
}

// requestIDKey is the gin context key set by the request-ID middleware.
const requestIDKey = "request_id"

// OK writes a success envelope with the given payload.
func OK(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Success: true, Data: data, Meta: metaFrom(c)})
}

// List writes a paginated success envelope.
func List(c *gin.Context, data any, pagination Pagination) {
	c.JSON(http.StatusOK, Paginated{Success: true, Data: data, Pagination: pagination})
}

// Fail writes an error envelope using the error's HTTP status.
func Fail(c *gin.Context, apiErr Error) {
	status := apiErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.JSON(status, Envelope{Success: false, Error: &apiErr})
}

// FromError converts an arbitrary error into an error envelope. Errors that
// are (or wrap) a respond.Error keep their code and status; everything else
// is reported as INTERNAL_ERROR.
func FromError(c *gin.Context, err error) {
	var apiErr Error
	if errors.As(err, &apiErr) {
		Fail(c, apiErr)
		return
	}
	Fail(c, ErrInternal.WithMessage("%s", err.Error()))
}

// Mapper translates domain or application errors into envelope errors.
type Mapper func(err error) (Error, bool)

// FailWith tries each mapper in order before falling back to FromError.
func FailWith(c *gin.Context, err error, mappers ...Mapper) {
	for _, mapper := range mappers {
		if apiErr, ok := mapper(err); ok {
			Fail(c, apiErr)
			return
		}
	}
	FromError(c, err)
}

func metaFrom(c *gin.Context) *Meta {
	meta := &Meta{Timestamp: time.Now().UTC().Format(time.RFC3339)}
	if v, ok := c.Get(requestIDKey); ok {
		if id, ok := v.(string); ok {
			meta.RequestID = id
		}
	}
	return meta
}
