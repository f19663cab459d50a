package api

import "fmt"

// Error is a failure reported by the Branflu API with a response. Bodies
// arrive either as JSON {code, message, field} or as plain text; plain
// text lands in Message verbatim. Transport failures (no response at all)
// are returned as ordinary wrapped errors, not *Error.
type Error struct {
	Status  int    // HTTP status code
	Code    string // server error code, e.g. "BRANFLU__ERROR-2004"
	Message string
	Field   string // field the server blames, when it names one
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return fmt.Sprintf("request failed: %s", e.Code)
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}
