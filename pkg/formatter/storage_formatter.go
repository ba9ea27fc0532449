package formatter

import (
	"strings"

	"stratus/internal/storage"
)

type StorageFormatter struct{}

func NewStorageFormatter() *StorageFormatter {
	return &StorageFormatter{}
}

func (f *StorageFormatter) FormatConfigList(configs []storage.Config) string {
	table := NewTable([]string{"ID", "TYPE", "ENABLED", "BUCKET", "CUSTOM PATH", "ACCESS URL PREFIX"})

	for _, cfg := range configs {
		enabled := "no"
		if cfg.IsEnabled.Bool() {
			enabled = "yes"
		}

		table.AddRow([]string{
			cfg.ID,
			string(cfg.Type),
			enabled,
			cfg.BucketName,
			cfg.CustomPath,
			cfg.AccessURLPrefix,
		})
	}

	return table.String()
}

func (f *StorageFormatter) FormatConfigDetails(cfg storage.Config) string {
	var result string

	title := "Storage Config: " + cfg.ID
	if cfg.Draft() {
		title = "Storage Config (draft)"
	}
	result += FormatHeaderSection(title)
	result += "\n\n"

	result += FormatSectionTitle("Overview")
	result += "\n"

	enabled := "no"
	if cfg.IsEnabled.Bool() {
		enabled = "yes"
	}

	label := string(cfg.Type)
	if kind, ok := storage.KindOf(cfg.Type); ok {
		label = kind.Label
	}

	overviewTable := NewTable([]string{"Parameter", "Value"})
	details := []struct {
		Key   string
		Value string
	}{
		{"Type", label},
		{"Enabled", enabled},
		{"Custom Path", cfg.CustomPath},
		{"Access URL Prefix", cfg.AccessURLPrefix},
	}
	for _, detail := range details {
		overviewTable.AddRow([]string{detail.Key, detail.Value})
	}
	result += overviewTable.String()
	result += "\n\n"

	if section := f.formatBackend(cfg); section != "" {
		result += FormatSectionTitle("Backend")
		result += "\n"
		result += section
		result += "\n"
	}

	return result
}

// formatBackend renders the variant-specific block; secrets are masked.
func (f *StorageFormatter) formatBackend(cfg storage.Config) string {
	backend, err := cfg.Backend()
	if err != nil {
		return ""
	}

	table := NewTable([]string{"Parameter", "Value"})
	addCreds := func(b storage.BucketCredentials) {
		table.AddRow([]string{"Bucket", b.BucketName})
		table.AddRow([]string{"Access Key ID", b.AccessKeyID})
		table.AddRow([]string{"Access Key Secret", maskValue(b.AccessKeySecret)})
	}

	switch b := backend.(type) {
	case storage.OSSBackend:
		table.AddRow([]string{"Endpoint", b.Endpoint})
		addCreds(b.Bucket)
	case storage.S3Backend:
		table.AddRow([]string{"Region", b.Region})
		addCreds(b.Bucket)
	case storage.R2Backend:
		table.AddRow([]string{"Account ID", b.AccountID})
		addCreds(b.Bucket)
	case storage.MinIOBackend:
		table.AddRow([]string{"Endpoint", b.Endpoint})
		addCreds(b.Bucket)
	case storage.WebDAVBackend:
		table.AddRow([]string{"Endpoint", b.Endpoint})
		table.AddRow([]string{"User", b.User})
		table.AddRow([]string{"Password", maskValue(b.Password)})
	case storage.LocalFSBackend:
		return ""
	}

	return table.String()
}

func (f *StorageFormatter) FormatTypes(types []storage.Type) string {
	table := NewTable([]string{"TYPE", "NAME", "FIELDS"})

	for _, t := range types {
		label := string(t)
		fields := ""
		if kind, ok := storage.KindOf(t); ok {
			label = kind.Label
			fields = strings.Join(kind.Fields, ", ")
		}
		table.AddRow([]string{string(t), label, fields})
	}

	return table.String()
}

func maskValue(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
