package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"stratus/internal/api"
	"stratus/internal/storage"
	"stratus/internal/ui/confirm"
)

// DefaultListLimit matches the page size the original console always asked
// for.
const DefaultListLimit = 100

const (
	configPath       = "/api/user/cloud_config"
	enabledTypesPath = "/api/user/cloud_config_enabled_types"
)

// StorageService is the config store client. It owns the in-memory config
// list (kept in server order and refreshed wholesale after every mutation)
// and reports mutation outcomes through the shared dialog.
type StorageService struct {
	client *api.Client
	dialog *confirm.Dialog
	logger *slog.Logger

	mu      sync.Mutex
	configs []storage.Config
	types   []storage.Type
}

func NewStorageService(client *api.Client, dialog *confirm.Dialog, logger *slog.Logger) *StorageService {
	return &StorageService{
		client: client,
		dialog: dialog,
		logger: logger.With("service", "StorageService"),
	}
}

// List fetches up to limit configs (server order) and replaces the in-memory
// list.
func (s *StorageService) List(ctx context.Context, limit int) ([]storage.Config, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	s.logger.Debug("Starting List operation", "limit", limit)

	env, err := s.client.Do(ctx, http.MethodGet, configPath+"?limit="+strconv.Itoa(limit), nil)
	if err != nil {
		return nil, err
	}
	if err := env.Accept(api.WithinRange); err != nil {
		return nil, err
	}

	var payload struct {
		List []storage.Config `json:"list"`
	}
	if err := env.DecodeData(&payload); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.configs = payload.List
	s.mu.Unlock()

	return s.Configs(), nil
}

// EnabledTypes fetches the server-controlled backend type set. This set, not
// the compiled-in one, decides what the type selector and the validator
// accept.
func (s *StorageService) EnabledTypes(ctx context.Context) ([]storage.Type, error) {
	s.logger.Debug("Starting EnabledTypes operation")

	env, err := s.client.Do(ctx, http.MethodGet, enabledTypesPath, nil)
	if err != nil {
		return nil, err
	}
	if err := env.Accept(api.WithinRange); err != nil {
		return nil, err
	}

	var types []storage.Type
	if err := env.DecodeData(&types); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.types = types
	s.mu.Unlock()

	return types, nil
}

// Refresh fetches the config list and the enabled type set concurrently.
func (s *StorageService) Refresh(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.List(ctx, DefaultListLimit)
		return err
	})
	g.Go(func() error {
		_, err := s.EnabledTypes(ctx)
		return err
	})
	return g.Wait()
}

// Configs returns a snapshot of the in-memory list.
func (s *StorageService) Configs() []storage.Config {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]storage.Config, len(s.configs))
	copy(snapshot, s.configs)
	return snapshot
}

// ConfigByID returns the in-memory entry with the given id.
func (s *StorageService) ConfigByID(id string) (storage.Config, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, cfg := range s.configs {
		if cfg.ID == id {
			return cfg, true
		}
	}
	return storage.Config{}, false
}

// Types returns the last fetched enabled type set.
func (s *StorageService) Types() []storage.Type {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]storage.Type, len(s.types))
	copy(snapshot, s.types)
	return snapshot
}

// CreateOrUpdate submits a config through the single create/update endpoint;
// presence of an id decides which happens server-side. On create the server
// hands back the new id, merged into the draft before it is returned. The
// outcome is reported through the dialog and a full list reload keeps local
// state consistent with server-side defaulting and ordering.
func (s *StorageService) CreateOrUpdate(ctx context.Context, cfg storage.Config) (storage.Config, error) {
	s.logger.Debug("Starting CreateOrUpdate operation", "id", cfg.ID, "type", cfg.Type)

	env, err := s.client.Do(ctx, http.MethodPost, configPath, cfg)
	if err != nil {
		return cfg, err
	}
	if err := env.Accept(api.WithinRange); err != nil {
		s.dialog.Open(confirm.Request{Message: err.Error(), Kind: confirm.KindError})
		return cfg, err
	}

	if cfg.Draft() {
		if id := env.DataString(); id != "" {
			cfg.ID = id
		}
	}

	s.dialog.Open(confirm.Request{Message: env.Message, Kind: confirm.KindSuccess})

	if _, err := s.List(ctx, DefaultListLimit); err != nil {
		s.logger.Error("Failed to reload config list after update", "error", err)
	}
	return cfg, nil
}

// Delete removes a config by id. The local entry goes away optimistically
// before the call resolves and is never restored on failure; the only error
// signal the endpoint defines is a code above 100, which opens an error
// notification. Transport failures are still returned.
func (s *StorageService) Delete(ctx context.Context, id string) error {
	s.logger.Debug("Starting Delete operation", "id", id)

	s.removeLocal(id)

	env, err := s.client.Do(ctx, http.MethodDelete, configPath, map[string]string{"id": id})
	if err != nil {
		return err
	}
	if err := env.Accept(api.DeleteTolerant); err != nil {
		s.dialog.Open(confirm.Request{Message: err.Error(), Kind: confirm.KindError})
		return nil
	}

	if _, err := s.List(ctx, DefaultListLimit); err != nil {
		s.logger.Error("Failed to reload config list after delete", "error", err)
	}
	return nil
}

func (s *StorageService) removeLocal(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.configs[:0]
	for _, cfg := range s.configs {
		if cfg.ID != id {
			kept = append(kept, cfg)
		}
	}
	s.configs = kept
}

// ExportYAML writes the account's current configs as a YAML document, a
// portable backup of the credentials and settings.
func (s *StorageService) ExportYAML(ctx context.Context, w io.Writer) (int, error) {
	configs, err := s.List(ctx, DefaultListLimit)
	if err != nil {
		return 0, err
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(configs); err != nil {
		return 0, fmt.Errorf("encoding configs: %w", err)
	}
	return len(configs), nil
}

// ImportYAML replays a YAML backup through the create/update endpoint.
// Entries with ids update in place, entries without become new configs. The
// decode is deliberately weakly typed so hand-edited files may spell
// isEnabled as true/false or 0/1.
func (s *StorageService) ImportYAML(ctx context.Context, r io.Reader) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("reading import file: %w", err)
	}

	var rawEntries []map[string]any
	if err := yaml.Unmarshal(data, &rawEntries); err != nil {
		return 0, fmt.Errorf("parsing import file: %w", err)
	}

	types, err := s.EnabledTypes(ctx)
	if err != nil {
		return 0, err
	}
	validator := storage.NewValidator(types)

	imported := 0
	for i, raw := range rawEntries {
		var cfg storage.Config
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
		})
		if err != nil {
			return imported, fmt.Errorf("building decoder: %w", err)
		}
		if err := dec.Decode(raw); err != nil {
			return imported, fmt.Errorf("entry %d: %w", i+1, err)
		}

		if err := validator.Validate(cfg); err != nil {
			return imported, fmt.Errorf("entry %d: %w", i+1, err)
		}

		if _, err := s.CreateOrUpdate(ctx, cfg); err != nil {
			return imported, fmt.Errorf("entry %d: %w", i+1, err)
		}
		imported++
	}
	return imported, nil
}
