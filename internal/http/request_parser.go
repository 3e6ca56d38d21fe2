// Package http provides the JSON API server and its handlers.
//
// This file holds the helpers that turn request headers, query strings and
// bodies into domain values, reporting bad input as core.ValidationError.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"finances/internal/core"
)

const (
	// HeaderUserID carries the caller's identity.
	HeaderUserID = "user-id"
	// QueryUserID is the query-string fallback for HeaderUserID.
	QueryUserID = "user_id"

	maxBodyBytes = 1 << 20
)

// UserID returns the caller identity, or "" when none was sent.
func UserID(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(HeaderUserID)); v != "" {
		return v
	}
	return strings.TrimSpace(r.URL.Query().Get(QueryUserID))
}

// ParseAsOf reads the optional as_of date. A zero Date means "today".
func ParseAsOf(query url.Values) (core.Date, error) {
	v := strings.TrimSpace(query.Get("as_of"))
	if v == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, core.NewValidationError("as_of", err.Error())
	}
	return d, nil
}

// ParseTransactionQuery extracts the listing filters name, start_date and end_date.
func ParseTransactionQuery(query url.Values) (core.TransactionQuery, error) {
	var verr core.ValidationError
	q := core.TransactionQuery{Name: sanitizeInput(query.Get("name"))}

	for _, p := range []struct {
		key  string
		dest *core.Date
	}{
		{"start_date", &q.Start},
		{"end_date", &q.End},
	} {
		v := strings.TrimSpace(query.Get(p.key))
		if v == "" {
			continue
		}
		d, err := core.ParseDate(v)
		if err != nil {
			verr.Add(p.key, err.Error())
			continue
		}
		*p.dest = d
	}

	if verr.HasErrors() {
		return core.TransactionQuery{}, &verr
	}
	return q, nil
}

// ParsePathID reads a positive numeric path parameter.
func ParsePathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, core.NewValidationError(name, fmt.Sprintf("%q is not a valid id", raw))
	}
	return id, nil
}

// DecodeJSON reads a single JSON object from the request body into dst.
// Unknown fields are ignored.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return core.NewValidationError("body", fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
		}
		return fmt.Errorf("read request body: %w", err)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return core.NewValidationError("body", "request body is required")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return core.NewValidationError("body", "invalid JSON: "+err.Error())
	}
	return nil
}

// flexString accepts a JSON string or number and keeps its literal text,
// so amounts sent as 12.5 or "12.50" parse the same way downstream.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected a string or a number, got %s", b)
	}
	*f = flexString(n.String())
	return nil
}

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
