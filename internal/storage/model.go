package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Type tags one kind of storage backend. The set is server-controlled and has
// grown across releases; the constants below are only the compiled-in default
// and the enabled-types endpoint is authoritative at runtime.
type Type string

const (
	TypeOSS     Type = "oss"
	TypeS3      Type = "s3"
	TypeR2      Type = "r2"
	TypeMinIO   Type = "minio"
	TypeLocalFS Type = "localfs"
	TypeWebDAV  Type = "webdav"
)

// DefaultTypes returns the compiled-in backend type set, in the order the
// server has historically reported it.
func DefaultTypes() []Type {
	return []Type{TypeOSS, TypeS3, TypeR2, TypeMinIO, TypeLocalFS, TypeWebDAV}
}

// Flag is a boolean that travels as an integer 0/1 on the wire. The server
// stores enablement as a tinyint and older payloads carry it as a bare bool or
// a quoted digit, so decoding accepts all three forms.
type Flag bool

func (f Flag) Bool() bool { return bool(f) }

func (f Flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "true", "1", `"1"`, `"true"`:
		*f = true
		return nil
	case "false", "0", `"0"`, `"false"`, "null", `""`:
		*f = false
		return nil
	}
	if n, err := strconv.Atoi(string(bytes.Trim(data, `"`))); err == nil {
		*f = n != 0
		return nil
	}
	return fmt.Errorf("invalid enabled flag value: %s", data)
}

// Config is one storage configuration entry attached to the account, in the
// flat shape the server speaks. Which of the optional fields are meaningful
// depends on Type; see the Backend view for the typed per-variant form.
//
// ID is empty for a draft that has not been created yet; the server assigns
// it on create and it stays stable across edits.
type Config struct {
	ID              string `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`
	Type            Type   `json:"type" yaml:"type" mapstructure:"type" validate:"required"`
	Endpoint        string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" mapstructure:"endpoint"`
	Region          string `json:"region,omitempty" yaml:"region,omitempty" mapstructure:"region"`
	AccountID       string `json:"accountId,omitempty" yaml:"accountId,omitempty" mapstructure:"accountId"`
	BucketName      string `json:"bucketName,omitempty" yaml:"bucketName,omitempty" mapstructure:"bucketName"`
	AccessKeyID     string `json:"accessKeyId,omitempty" yaml:"accessKeyId,omitempty" mapstructure:"accessKeyId"`
	AccessKeySecret string `json:"accessKeySecret,omitempty" yaml:"accessKeySecret,omitempty" mapstructure:"accessKeySecret"`
	User            string `json:"user,omitempty" yaml:"user,omitempty" mapstructure:"user"`
	Password        string `json:"password,omitempty" yaml:"password,omitempty" mapstructure:"password"`
	CustomPath      string `json:"customPath,omitempty" yaml:"customPath,omitempty" mapstructure:"customPath"`
	AccessURLPrefix string `json:"accessUrlPrefix" yaml:"accessUrlPrefix" mapstructure:"accessUrlPrefix" validate:"required"`
	IsEnabled       Flag   `json:"isEnabled" yaml:"isEnabled" mapstructure:"isEnabled"`
}

// Draft reports whether the entry has not been persisted yet.
func (c Config) Draft() bool { return c.ID == "" }

// UnmarshalJSON tolerates a numeric id, which older servers emit instead of a
// string.
func (c *Config) UnmarshalJSON(data []byte) error {
	type alias Config
	aux := struct {
		ID json.RawMessage `json:"id"`
		*alias
	}{alias: (*alias)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.ID = rawToString(aux.ID)
	return nil
}

// rawToString renders a raw JSON scalar as its plain string form: quoted
// strings lose their quotes, numbers keep their digits, null becomes empty.
func rawToString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var v any
	if err := json.Unmarshal(raw, &v); err == nil {
		if f, ok := v.(float64); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return fmt.Sprint(v)
	}
	return string(raw)
}
