package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccessRules(t *testing.T) {
	tests := []struct {
		name string
		rule SuccessRule
		code int
		ok   bool
	}{
		{"login code 1 is success", ExactlyOne, 1, true},
		{"login code 2 is error", ExactlyOne, 2, false},
		{"login code 0 is error", ExactlyOne, 0, false},
		{"list code 50 is success", WithinRange, 50, true},
		{"list code 1 is success", WithinRange, 1, true},
		{"list code 99 is success", WithinRange, 99, true},
		{"list code 100 is error", WithinRange, 100, false},
		{"list code 150 is error", WithinRange, 150, false},
		{"list code 0 is error", WithinRange, 0, false},
		{"list negative code is error", WithinRange, -5, false},
		{"delete code 50 is silent success", DeleteTolerant, 50, true},
		{"delete code 100 is silent success", DeleteTolerant, 100, true},
		{"delete code 0 is silent success", DeleteTolerant, 0, true},
		{"delete code 150 is error", DeleteTolerant, 150, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ok, tt.rule(tt.code))
		})
	}
}

func TestEnvelopeAccept(t *testing.T) {
	env := &Envelope{Code: 150, Message: "update failed", Details: "bucket not found"}

	err := env.Accept(WithinRange)
	require.Error(t, err)

	var be *BusinessError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 150, be.Code)
	assert.Equal(t, "update failed: bucket not found", be.Error())

	assert.NoError(t, (&Envelope{Code: 50}).Accept(WithinRange))
}

func TestEnvelopeDecodeData(t *testing.T) {
	env := &Envelope{Data: json.RawMessage(`{"list":[{"a":1}]}`)}

	var payload struct {
		List []map[string]int `json:"list"`
	}
	require.NoError(t, env.DecodeData(&payload))
	assert.Len(t, payload.List, 1)

	empty := &Envelope{}
	assert.Error(t, empty.DecodeData(&payload))
}

func TestEnvelopeDataString(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"quoted string id", `"new-id"`, "new-id"},
		{"numeric id", `42`, "42"},
		{"null", `null`, ""},
		{"empty", ``, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := &Envelope{Data: json.RawMessage(tt.data)}
			assert.Equal(t, tt.want, env.DataString())
		})
	}
}
