package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldKeys(flags authFlags) []string {
	fields := registerFields(flags)
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, f.Key)
	}
	return keys
}

func TestRegisterFieldsPromptsOnlyMissing(t *testing.T) {
	assert.Equal(t,
		[]string{"username", "email", "password", "confirmPassword"},
		fieldKeys(authFlags{}))

	assert.Equal(t,
		[]string{"password", "confirmPassword"},
		fieldKeys(authFlags{username: "alice", email: "a@b.c"}))

	assert.Equal(t,
		[]string{"email"},
		fieldKeys(authFlags{username: "alice", password: "pw"}))
}

func TestRegisterFieldsEmptyWhenAllFlagsGiven(t *testing.T) {
	assert.Empty(t, registerFields(authFlags{username: "alice", email: "a@b.c", password: "pw"}))
}

func TestRegisterFieldsPasswordIsSecret(t *testing.T) {
	fields := registerFields(authFlags{username: "alice", email: "a@b.c"})
	require.Len(t, fields, 2)
	for _, f := range fields {
		assert.True(t, f.Secret, "field %s", f.Key)
	}
}
