package alchemy

import "encoding/json"

// StatusError is the status value of the uniform error document.
const StatusError = "ERROR"

// Result is the outcome of a single call. Exactly one of Data and Err is
// meaningful: Err is nil on success, and Data holds the decoded response
// document exactly as the service returned it.
type Result struct {
	Data any
	Err  *Error
}

// OK reports whether the call produced a response document.
func (r Result) OK() bool {
	return r.Err == nil
}

// ServiceStatus returns the "status" and "statusInfo" fields of the response
// document, or of the uniform error document for failed calls. Empty strings
// are returned when the document is not an object or lacks the fields.
func (r Result) ServiceStatus() (status, statusInfo string) {
	if r.Err != nil {
		return StatusError, r.Err.Message
	}
	doc, ok := r.Data.(map[string]any)
	if !ok {
		return "", ""
	}
	status, _ = doc["status"].(string)
	statusInfo, _ = doc["statusInfo"].(string)
	return status, statusInfo
}

// errorDocument is the wire shape of a failed call.
type errorDocument struct {
	Status     string `json:"status"`
	StatusInfo string `json:"statusInfo"`
}

// MarshalJSON renders the response document on success and
// {"status":"ERROR","statusInfo":...} on failure.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return json.Marshal(errorDocument{
			Status:     StatusError,
			StatusInfo: r.Err.Message,
		})
	}
	return json.Marshal(r.Data)
}

func failed(err *Error) Result {
	return Result{Err: err}
}
