package storage

import (
	"sort"
	"strings"
	"sync"
)

// Kind describes one backend variant for the UI: its display label and which
// flat fields the form should treat as relevant. The registry mirrors the
// compiled-in type set; the server-reported enabled set decides which of these
// are actually offered.
type Kind struct {
	Type   Type
	Label  string
	Fields []string
}

var (
	kindRegistry = make(map[Type]Kind)
	kindsMu      sync.RWMutex
)

// RegisterKind makes a variant known to the UI layer. Registering the same
// type twice panics, matching how a duplicate would only ever be a programming
// error.
func RegisterKind(k Kind) {
	kindsMu.Lock()
	defer kindsMu.Unlock()

	k.Type = Type(strings.ToLower(string(k.Type)))
	if _, exists := kindRegistry[k.Type]; exists {
		panic("storage kind already registered: " + string(k.Type))
	}
	kindRegistry[k.Type] = k
}

// KindOf returns the descriptor for a type tag, if known.
func KindOf(t Type) (Kind, bool) {
	kindsMu.RLock()
	defer kindsMu.RUnlock()

	k, ok := kindRegistry[Type(strings.ToLower(string(t)))]
	return k, ok
}

// KnownKinds returns all registered descriptors sorted by type tag.
func KnownKinds() []Kind {
	kindsMu.RLock()
	defer kindsMu.RUnlock()

	kinds := make([]Kind, 0, len(kindRegistry))
	for _, k := range kindRegistry {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i].Type < kinds[j].Type })
	return kinds
}

// Shared field names, matching the wire spelling so form errors and flag names
// line up with the server's own keys.
const (
	FieldType            = "type"
	FieldEndpoint        = "endpoint"
	FieldRegion          = "region"
	FieldAccountID       = "accountId"
	FieldBucketName      = "bucketName"
	FieldAccessKeyID     = "accessKeyId"
	FieldAccessKeySecret = "accessKeySecret"
	FieldUser            = "user"
	FieldPassword        = "password"
	FieldCustomPath      = "customPath"
	FieldAccessURLPrefix = "accessUrlPrefix"
	FieldIsEnabled       = "isEnabled"
)

func bucketFields(extra ...string) []string {
	return append(extra, FieldBucketName, FieldAccessKeyID, FieldAccessKeySecret)
}

func init() {
	RegisterKind(Kind{Type: TypeOSS, Label: "Aliyun OSS", Fields: bucketFields(FieldEndpoint)})
	RegisterKind(Kind{Type: TypeS3, Label: "Amazon S3", Fields: bucketFields(FieldRegion)})
	RegisterKind(Kind{Type: TypeR2, Label: "Cloudflare R2", Fields: bucketFields(FieldAccountID)})
	RegisterKind(Kind{Type: TypeMinIO, Label: "MinIO", Fields: bucketFields(FieldEndpoint)})
	RegisterKind(Kind{Type: TypeLocalFS, Label: "Local Filesystem", Fields: nil})
	RegisterKind(Kind{Type: TypeWebDAV, Label: "WebDAV", Fields: []string{FieldEndpoint, FieldUser, FieldPassword}})
}
