package flags

// Centralized definitions for CLI flags used across the application

const (
	// Limit caps how many configs a list fetch asks the server for
	Limit      = "limit"
	LimitShort = "n"

	// ID targets an existing storage config for update
	ID = "id"

	// Per-field storage config flags, spelled the way the server spells them
	Type            = "type"
	TypeShort       = "t"
	Endpoint        = "endpoint"
	Region          = "region"
	AccountID       = "account-id"
	Bucket          = "bucket"
	BucketShort     = "b"
	AccessKeyID     = "access-key-id"
	AccessKeySecret = "access-key-secret"
	User            = "user"
	Password        = "password"
	CustomPath      = "custom-path"
	AccessURLPrefix = "access-url-prefix"
	Enabled         = "enabled"

	// Strict opts into per-variant required-field validation before submit
	Strict = "strict"

	// File points export/import at a local YAML file instead of stdin/stdout
	File      = "file"
	FileShort = "f"

	// Credential flags for the non-interactive auth path
	Username  = "username"
	UserShort = "u"
	Email     = "email"

	// Force flags are used to bypass interactive confirmation prompts for destructive operations
	Force = "force"

	// Debug flags are used to enable verbose logging
	Debug      = "debug"
	DebugShort = "d"
)
