package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stratus/internal/api"
	"stratus/internal/storage"
	"stratus/internal/ui/confirm"
)

type tokenStub string

func (s tokenStub) Token() string { return string(s) }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newStorageService(t *testing.T, handler http.Handler) (*StorageService, *confirm.Dialog) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL, tokenStub("tok"), func() string { return "en" }, discardLogger())
	dialog := confirm.NewDialog()
	return NewStorageService(client, dialog, discardLogger()), dialog
}

func listBody(configs ...string) string {
	return `{"code":1,"message":"ok","details":"","data":{"list":[` + strings.Join(configs, ",") + `]}}`
}

const (
	cfgX = `{"id":"x","type":"s3","region":"us-east-1","bucketName":"bx","accessUrlPrefix":"https://cdn/x","isEnabled":1}`
	cfgY = `{"id":"y","type":"localfs","accessUrlPrefix":"https://cdn/y","isEnabled":0}`
)

func TestListFetchesConfigsInServerOrder(t *testing.T) {
	var gotLimit string
	svc, dialog := newStorageService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		gotLimit = r.URL.Query().Get("limit")
		io.WriteString(w, listBody(cfgX, cfgY))
	}))

	configs, err := svc.List(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, "100", gotLimit, "default limit")
	require.Len(t, configs, 2)
	assert.Equal(t, "x", configs[0].ID)
	assert.Equal(t, "y", configs[1].ID)
	assert.True(t, configs[0].IsEnabled.Bool())
	assert.False(t, configs[1].IsEnabled.Bool())
	assert.False(t, dialog.IsOpen())
}

func TestListBusinessError(t *testing.T) {
	svc, _ := newStorageService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"code":150,"message":"list failed","details":"no permission"}`)
	}))

	_, err := svc.List(context.Background(), 10)

	var be *api.BusinessError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "list failed: no permission", be.Error())
}

func TestEnabledTypes(t *testing.T) {
	svc, _ := newStorageService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/user/cloud_config_enabled_types", r.URL.Path)
		io.WriteString(w, `{"code":7,"message":"ok","data":["s3","r2","localfs"]}`)
	}))

	types, err := svc.EnabledTypes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []storage.Type{storage.TypeS3, storage.TypeR2, storage.TypeLocalFS}, types)
	assert.Equal(t, types, svc.Types())
}

func TestConfigByID(t *testing.T) {
	svc, _ := newStorageService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, listBody(cfgX, cfgY))
	}))

	_, err := svc.List(context.Background(), 0)
	require.NoError(t, err)

	cfg, ok := svc.ConfigByID("y")
	require.True(t, ok)
	assert.Equal(t, storage.TypeLocalFS, cfg.Type)

	_, ok = svc.ConfigByID("missing")
	assert.False(t, ok)
}

func TestRefreshFetchesListAndTypes(t *testing.T) {
	var listCalls, typeCalls atomic.Int32
	svc, _ := newStorageService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/user/cloud_config":
			listCalls.Add(1)
			io.WriteString(w, listBody(cfgX))
		case "/api/user/cloud_config_enabled_types":
			typeCalls.Add(1)
			io.WriteString(w, `{"code":1,"data":["s3"]}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	require.NoError(t, svc.Refresh(context.Background()))
	assert.Equal(t, int32(1), listCalls.Load())
	assert.Equal(t, int32(1), typeCalls.Load())
	assert.Len(t, svc.Configs(), 1)
}

func TestCreateMergesServerAssignedID(t *testing.T) {
	var posted map[string]any
	var listCalls atomic.Int32
	svc, dialog := newStorageService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&posted))
			io.WriteString(w, `{"code":2,"message":"created","details":"","data":"new-id"}`)
		case http.MethodGet:
			listCalls.Add(1)
			io.WriteString(w, listBody(`{"id":"new-id","type":"s3","accessUrlPrefix":"https://cdn","isEnabled":1}`))
		}
	}))

	draft := storage.Config{Type: storage.TypeS3, AccessURLPrefix: "https://cdn", IsEnabled: true}
	saved, err := svc.CreateOrUpdate(context.Background(), draft)
	require.NoError(t, err)

	assert.Equal(t, "new-id", saved.ID)
	assert.Equal(t, float64(1), posted["isEnabled"], "isEnabled travels as integer 1")

	req, open := dialog.Current()
	require.True(t, open)
	assert.Equal(t, confirm.KindSuccess, req.Kind)
	assert.Equal(t, "created", req.Message)

	assert.Equal(t, int32(1), listCalls.Load(), "mutation triggers a full reload")
}

func TestUpdateKeepsExistingID(t *testing.T) {
	svc, _ := newStorageService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			io.WriteString(w, `{"code":3,"message":"updated","data":"ignored"}`)
		case http.MethodGet:
			io.WriteString(w, listBody(cfgX))
		}
	}))

	saved, err := svc.CreateOrUpdate(context.Background(), storage.Config{ID: "x", Type: storage.TypeS3, AccessURLPrefix: "https://cdn"})
	require.NoError(t, err)
	assert.Equal(t, "x", saved.ID, "server data must not overwrite an existing id")
}

func TestCreateBusinessErrorOpensDialog(t *testing.T) {
	var listCalls atomic.Int32
	svc, dialog := newStorageService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			listCalls.Add(1)
			return
		}
		io.WriteString(w, `{"code":150,"message":"save failed","details":"bad bucket"}`)
	}))

	_, err := svc.CreateOrUpdate(context.Background(), storage.Config{Type: storage.TypeS3, AccessURLPrefix: "https://cdn"})

	var be *api.BusinessError
	require.ErrorAs(t, err, &be)

	req, open := dialog.Current()
	require.True(t, open)
	assert.Equal(t, confirm.KindError, req.Kind)
	assert.Equal(t, "save failed: bad bucket", req.Message)

	assert.Zero(t, listCalls.Load(), "failed mutation must not reload")
}

// primeList loads x and y into the service's in-memory list, then switches
// the handler's list response to only y for any reload.
func primedDeleteService(t *testing.T, deleteBody string) (*StorageService, *confirm.Dialog, *atomic.Int32) {
	var primed atomic.Bool
	var deleteCalls atomic.Int32
	svc, dialog := newStorageService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if primed.CompareAndSwap(false, true) {
				io.WriteString(w, listBody(cfgX, cfgY))
				return
			}
			io.WriteString(w, listBody(cfgY))
		case http.MethodDelete:
			deleteCalls.Add(1)
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "x", body["id"])
			io.WriteString(w, deleteBody)
		}
	}))

	_, err := svc.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, svc.Configs(), 2)
	return svc, dialog, &deleteCalls
}

func hasID(configs []storage.Config, id string) bool {
	for _, c := range configs {
		if c.ID == id {
			return true
		}
	}
	return false
}

func TestDeleteRemovesLocallyAndSilentlySucceeds(t *testing.T) {
	svc, dialog, deleteCalls := primedDeleteService(t, `{"code":50,"message":"ok"}`)

	require.NoError(t, svc.Delete(context.Background(), "x"))

	assert.Equal(t, int32(1), deleteCalls.Load())
	assert.False(t, hasID(svc.Configs(), "x"))
	assert.True(t, hasID(svc.Configs(), "y"))
	assert.False(t, dialog.IsOpen(), "codes at or below 100 are silent success")
}

func TestDeleteErrorCodeOpensNotificationWithoutRollback(t *testing.T) {
	svc, dialog, _ := primedDeleteService(t, `{"code":150,"message":"delete failed","details":"still referenced"}`)

	require.NoError(t, svc.Delete(context.Background(), "x"))

	req, open := dialog.Current()
	require.True(t, open)
	assert.Equal(t, confirm.KindError, req.Kind)
	assert.Equal(t, "delete failed: still referenced", req.Message)

	// The optimistic removal is never reconciled, even on failure.
	assert.False(t, hasID(svc.Configs(), "x"))
}

func TestDeleteTransportErrorStillRemovesLocally(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, listBody(cfgX, cfgY))
	}))
	client := api.NewClient(srv.URL, tokenStub("tok"), func() string { return "en" }, discardLogger())
	svc := NewStorageService(client, confirm.NewDialog(), discardLogger())

	_, err := svc.List(context.Background(), 0)
	require.NoError(t, err)

	srv.Close()
	err = svc.Delete(context.Background(), "x")

	var te *api.TransportError
	require.ErrorAs(t, err, &te)
	assert.False(t, hasID(svc.Configs(), "x"))
}

func TestExportYAML(t *testing.T) {
	svc, _ := newStorageService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, listBody(cfgX))
	}))

	var out bytes.Buffer
	count, err := svc.ExportYAML(context.Background(), &out)
	require.NoError(t, err)

	assert.Equal(t, 1, count)
	assert.Contains(t, out.String(), "id: x")
	assert.Contains(t, out.String(), "type: s3")
	assert.Contains(t, out.String(), "accessUrlPrefix: https://cdn/x")
}

func TestImportYAML(t *testing.T) {
	var posts atomic.Int32
	svc, _ := newStorageService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			posts.Add(1)
			io.WriteString(w, `{"code":1,"message":"ok","data":"id-new"}`)
		case r.URL.Path == "/api/user/cloud_config_enabled_types":
			io.WriteString(w, `{"code":1,"data":["s3","webdav"]}`)
		default:
			io.WriteString(w, listBody())
		}
	}))

	doc := `
- type: s3
  region: us-east-1
  accessUrlPrefix: https://cdn/a
  isEnabled: 1
- type: webdav
  user: dav
  password: secret
  accessUrlPrefix: https://cdn/b
  isEnabled: true
`
	count, err := svc.ImportYAML(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, int32(2), posts.Load())
}

func TestImportYAMLRejectsDisabledType(t *testing.T) {
	svc, _ := newStorageService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/user/cloud_config_enabled_types" {
			io.WriteString(w, `{"code":1,"data":["localfs"]}`)
			return
		}
		t.Errorf("unexpected call to %s", r.URL.Path)
	}))

	doc := "- type: s3\n  accessUrlPrefix: https://cdn\n"
	count, err := svc.ImportYAML(context.Background(), strings.NewReader(doc))

	assert.Zero(t, count)
	var fieldErrs storage.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, storage.FieldType)
}
