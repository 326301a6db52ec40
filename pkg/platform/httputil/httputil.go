package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "github.com/Amsterdam/mijn-decos-join-api/pkg/domain-errors"
)

const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Envelope is the response body shape shared by every JSON endpoint.
type Envelope struct {
	Status  string `json:"status"`
	Content any    `json:"content,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteContent writes a 200 success envelope around content.
func WriteContent(w http.ResponseWriter, content any) {
	WriteJSON(w, http.StatusOK, Envelope{Status: StatusOK, Content: content})
}

// WriteError translates err into an error envelope. Domain errors keep their
// code and message; internal errors never expose their message.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeInternal
	message := ""
	if de, ok := dErrors.As(err); ok {
		code = de.Code
		message = de.Message
	}
	status := dErrors.ToHTTPStatus(code)
	if status == http.StatusInternalServerError {
		message = ""
	}
	WriteJSON(w, status, Envelope{Status: StatusError, Error: string(code), Message: message})
}

// WriteBlob writes raw bytes with the given content type.
func WriteBlob(w http.ResponseWriter, contentType string, data []byte) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
