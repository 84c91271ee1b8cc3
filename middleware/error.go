package middleware

import (
	"errors"
	"log"
	"net/http"
)

type AppHandler func(http.ResponseWriter, *http.Request) error

type AppError struct {
	Status  int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(status int, message string, err error) *AppError {
	return &AppError{Status: status, Message: message, Err: err}
}

// ErrorRenderer writes a complete error page.
type ErrorRenderer interface {
	RenderError(w http.ResponseWriter, r *http.Request, status int, message string)
}

type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.wroteHeader {
		rw.status = statusCode
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// ErrorHandler adapts an AppHandler to net/http. Returned errors and panics
// become error pages; anything that is not an *AppError is a generic 500.
func ErrorHandler(pages ErrorRenderer, handler AppHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			if recovered := recover(); recovered != nil {
				log.Printf("panic recovered: method=%s path=%s panic=%v", r.Method, r.URL.Path, recovered)
				if !rw.wroteHeader {
					writeErrorPage(rw, r, pages, http.StatusInternalServerError, "Internal server error")
				}
			}
		}()

		if err := handler(rw, r); err != nil {
			handleError(rw, r, pages, err)
		}
	}
}

func handleError(w *responseWriter, r *http.Request, pages ErrorRenderer, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	var appErr *AppError
	if errors.As(err, &appErr) {
		status = appErr.Status
		message = appErr.Message
	}

	if status >= http.StatusInternalServerError {
		log.Printf("request failed: method=%s path=%s status=%d err=%v", r.Method, r.URL.Path, status, err)
	}

	if w.wroteHeader {
		return
	}

	writeErrorPage(w, r, pages, status, message)
}

func writeErrorPage(w http.ResponseWriter, r *http.Request, pages ErrorRenderer, status int, message string) {
	if pages == nil {
		http.Error(w, message, status)
		return
	}
	pages.RenderError(w, r, status, message)
}
