package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Envelope is the wrapper every API response uses. Data stays raw until a
// call site decodes it into its own payload shape.
type Envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Details string          `json:"details"`
	Data    json.RawMessage `json:"data"`
}

// SuccessRule decides whether an envelope code means success for one
// endpoint. The server's coding convention is not uniform: it differs per
// endpoint and per historical revision, and interoperating means matching
// each endpoint's observed rule exactly rather than inventing a single one.
type SuccessRule func(code int) bool

// ExactlyOne is the rule for login and register: only code 1 is success.
func ExactlyOne(code int) bool { return code == 1 }

// WithinRange is the rule the later revision uses for list, create-or-update,
// change-password and enabled-types: success codes live strictly between 0
// and 100.
func WithinRange(code int) bool { return code > 0 && code < 100 }

// DeleteTolerant is the rule for delete, which has no explicit success
// signal: anything up to 100 is treated as silent success and only codes
// above 100 surface an error.
func DeleteTolerant(code int) bool { return code <= 100 }

// BusinessError is a 2xx response whose code indicates failure under the
// endpoint's rule.
type BusinessError struct {
	Code    int
	Message string
	Details string
}

func (e *BusinessError) Error() string {
	return e.Message + ": " + e.Details
}

// Accept applies an endpoint's success rule, returning the business error a
// failing code carries.
func (e *Envelope) Accept(rule SuccessRule) error {
	if rule(e.Code) {
		return nil
	}
	return &BusinessError{Code: e.Code, Message: e.Message, Details: e.Details}
}

// DecodeData unmarshals the envelope payload into out.
func (e *Envelope) DecodeData(out any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("envelope has no data payload")
	}
	if err := json.Unmarshal(e.Data, out); err != nil {
		return fmt.Errorf("decoding envelope data: %w", err)
	}
	return nil
}

// DataString renders a scalar data payload as a plain string. The create
// endpoint returns the new id this way, sometimes as a JSON string and
// sometimes as a bare number depending on server version.
func (e *Envelope) DataString() string {
	raw := bytes.TrimSpace(e.Data)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return string(raw)
}
