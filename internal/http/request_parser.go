// Package http provides HTTP server and handler implementations.
//
// This file implements request body parsing for the dialogs. HTMX posts
// form-encoded bodies; JSON bodies are accepted too and flattened into the
// same url.Values so one binder serves both.

package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// maxBodyBytes caps dialog request bodies.
const maxBodyBytes = 1 << 20

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	// Try JSON first if content looks like JSON
	if p.body[0] == '{' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	// Fall back to form parsing
	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return strings.TrimSpace(sanitizeInput(stringValue(val)))
		}
	}
	if p.formData != nil {
		return strings.TrimSpace(sanitizeInput(p.formData.Get(key)))
	}
	return ""
}

// Values returns every parsed field, sanitized. JSON arrays become repeated
// values, the way parallel form inputs arrive.
func (p *RequestBodyParser) Values() url.Values {
	out := url.Values{}
	if p.jsonData != nil {
		for key, val := range p.jsonData {
			if list, ok := val.([]interface{}); ok {
				for _, v := range list {
					out.Add(key, sanitizeInput(stringValue(v)))
				}
				continue
			}
			out.Set(key, sanitizeInput(stringValue(val)))
		}
		return out
	}
	for key, vals := range p.formData {
		for _, v := range vals {
			out.Add(key, sanitizeInput(v))
		}
	}
	return out
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts an interface{} to string.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// parseRequestValues reads the dialog inputs of r, merged with its query
// string. Body values win.
func parseRequestValues(r *http.Request) (url.Values, error) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return nil, err
	}
	values := p.Values()
	for key, vals := range r.URL.Query() {
		if _, ok := values[key]; !ok {
			for _, v := range vals {
				values.Add(key, sanitizeInput(v))
			}
		}
	}
	return values, nil
}
