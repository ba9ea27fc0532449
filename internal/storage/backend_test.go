package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendProjection(t *testing.T) {
	cfg := Config{
		Type:            TypeR2,
		AccountID:       "acct",
		BucketName:      "b",
		AccessKeyID:     "ak",
		AccessKeySecret: "sk",
		// irrelevant for r2, must not leak into the variant
		Region:   "us-east-1",
		Endpoint: "https://oss.example.com",
	}

	backend, err := cfg.Backend()
	require.NoError(t, err)

	r2, ok := backend.(R2Backend)
	require.True(t, ok)
	assert.Equal(t, TypeR2, backend.BackendType())
	assert.Equal(t, "acct", r2.AccountID)
	assert.Equal(t, "b", r2.Bucket.BucketName)
}

func TestBackendLocalFSCarriesNothing(t *testing.T) {
	cfg := Config{Type: TypeLocalFS, BucketName: "ignored", AccessKeyID: "ignored"}

	backend, err := cfg.Backend()
	require.NoError(t, err)
	assert.Equal(t, LocalFSBackend{}, backend)
}

func TestBackendUnknownType(t *testing.T) {
	_, err := Config{Type: "ftp"}.Backend()
	assert.Error(t, err)
}

func TestKindRegistry(t *testing.T) {
	kind, ok := KindOf(TypeWebDAV)
	require.True(t, ok)
	assert.Equal(t, "WebDAV", kind.Label)
	assert.Contains(t, kind.Fields, FieldUser)

	_, ok = KindOf("ftp")
	assert.False(t, ok)

	kinds := KnownKinds()
	assert.Len(t, kinds, 6)
}
