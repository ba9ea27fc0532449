package storage

import "fmt"

// Backend is the typed per-variant view of a Config. Each implementation
// carries only the fields that are meaningful for its kind, so code that
// needs variant-specific completeness can get it from the type system instead
// of remembering which flat fields apply.
type Backend interface {
	BackendType() Type
}

// BucketCredentials is the credential block shared by every bucket-based
// variant. LocalFS never carries one.
type BucketCredentials struct {
	BucketName      string `validate:"required"`
	AccessKeyID     string `validate:"required"`
	AccessKeySecret string `validate:"required"`
}

type OSSBackend struct {
	Endpoint string `validate:"required"`
	Bucket   BucketCredentials
}

type S3Backend struct {
	Region string `validate:"required"`
	Bucket BucketCredentials
}

type R2Backend struct {
	AccountID string `validate:"required"`
	Bucket    BucketCredentials
}

type MinIOBackend struct {
	Endpoint string `validate:"required"`
	Bucket   BucketCredentials
}

type LocalFSBackend struct{}

type WebDAVBackend struct {
	Endpoint string `validate:"required"`
	User     string `validate:"required"`
	Password string `validate:"required"`
}

func (OSSBackend) BackendType() Type     { return TypeOSS }
func (S3Backend) BackendType() Type      { return TypeS3 }
func (R2Backend) BackendType() Type      { return TypeR2 }
func (MinIOBackend) BackendType() Type   { return TypeMinIO }
func (LocalFSBackend) BackendType() Type { return TypeLocalFS }
func (WebDAVBackend) BackendType() Type  { return TypeWebDAV }

// Backend projects the flat wire form into its typed variant. Fields that do
// not apply to the active type are dropped, which is also how the server
// treats them.
func (c Config) Backend() (Backend, error) {
	creds := BucketCredentials{
		BucketName:      c.BucketName,
		AccessKeyID:     c.AccessKeyID,
		AccessKeySecret: c.AccessKeySecret,
	}
	switch c.Type {
	case TypeOSS:
		return OSSBackend{Endpoint: c.Endpoint, Bucket: creds}, nil
	case TypeS3:
		return S3Backend{Region: c.Region, Bucket: creds}, nil
	case TypeR2:
		return R2Backend{AccountID: c.AccountID, Bucket: creds}, nil
	case TypeMinIO:
		return MinIOBackend{Endpoint: c.Endpoint, Bucket: creds}, nil
	case TypeLocalFS:
		return LocalFSBackend{}, nil
	case TypeWebDAV:
		return WebDAVBackend{Endpoint: c.Endpoint, User: c.User, Password: c.Password}, nil
	default:
		return nil, fmt.Errorf("unknown storage type: %q", c.Type)
	}
}
