// Package socket implements the console's request/response channel over a
// persistent WebSocket connection.
package socket

import (
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "github.com/spec-kit/hr-console/pkg/util/errorutil"
)

// ResponseSuffix is appended to a request event to name its reply.
const ResponseSuffix = "-response"

// Envelope is the frame exchanged in both directions.
type Envelope struct {
	Event     string          `json:"event"`
	RequestID string          `json:"requestId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Result is the payload of every `-response` frame.
type Result struct {
	Done   bool              `json:"done"`
	Data   any               `json:"data,omitempty"`
	Error  string            `json:"error,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

type response struct {
	Event     string `json:"event"`
	RequestID string `json:"requestId,omitempty"`
	Payload   Result `json:"payload"`
}

type notice struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// ResponseEvent names the reply to event.
func ResponseEvent(event string) string {
	return event + ResponseSuffix
}

func encodeSuccess(event, requestID string, data any) ([]byte, error) {
	return json.Marshal(response{
		Event:     ResponseEvent(event),
		RequestID: requestID,
		Payload:   Result{Done: true, Data: data},
	})
}

func encodeFailure(event, requestID string, err error) []byte {
	res := failureResult(err)
	raw, merr := json.Marshal(response{Event: ResponseEvent(event), RequestID: requestID, Payload: res})
	if merr != nil {
		raw, _ = json.Marshal(response{
			Event:     ResponseEvent(event),
			RequestID: requestID,
			Payload:   Result{Error: "internal server error"},
		})
	}
	return raw
}

func failureResult(err error) Result {
	de := apperrors.ToDomainError(err)
	res := Result{Error: de.Message}
	if de.Code != apperrors.CodeValidation && de.Code != apperrors.CodeConflict {
		return res
	}
	for key, val := range de.Details {
		msg, ok := val.(string)
		if !ok {
			continue
		}
		if res.Fields == nil {
			res.Fields = make(map[string]string, len(de.Details))
		}
		res.Fields[key] = msg
	}
	return res
}

// EncodeNotice renders a server-initiated broadcast frame.
func EncodeNotice(event string, payload any) ([]byte, error) {
	raw, err := json.Marshal(notice{Event: event, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("encode notice %s: %w", event, err)
	}
	return raw, nil
}

func isServerError(err error) bool {
	return apperrors.ToDomainError(err).HTTPStatus >= http.StatusInternalServerError
}
