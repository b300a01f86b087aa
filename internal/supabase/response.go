package supabase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// Response is the outcome of a backend request.
type Response struct {
	StatusCode int
	Body       []byte
	// Err is set when no backend response was received.
	Err error
}

func errorResponse(err error) *Response {
	return &Response{
		StatusCode: StatusTransportError,
		Body:       []byte(err.Error()),
		Err:        err,
	}
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// OK reports a 200 response.
func (r *Response) OK() bool {
	return r.StatusCode == http.StatusOK
}

// Created reports a 201 response.
func (r *Response) Created() bool {
	return r.StatusCode == http.StatusCreated
}

// Rows decodes the body as a JSON array of rows.
func (r *Response) Rows() ([]map[string]json.RawMessage, error) {
	var rows []map[string]json.RawMessage
	if err := json.Unmarshal(r.Body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode rows: %w", err)
	}
	return rows, nil
}

// FirstID returns the id of the first row in the body.
// It reports false for an empty array, a non-array body or a row without an id.
func (r *Response) FirstID() (ID, bool) {
	var rows []struct {
		ID ID `json:"id"`
	}
	if err := json.Unmarshal(r.Body, &rows); err != nil || len(rows) == 0 {
		return "", false
	}
	if rows[0].ID == "" {
		return "", false
	}
	return rows[0].ID, true
}

// ID is a backend-assigned identifier. Numeric ids round-trip as JSON numbers,
// anything else as JSON strings.
type ID string

// UnmarshalJSON accepts numbers and strings.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON emits integers unquoted.
func (id ID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) String() string {
	return string(id)
}
