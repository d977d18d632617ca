package backup

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/adrena/backend/internal/auth"
	"github.com/adrena/backend/internal/logger"
	"github.com/adrena/backend/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	failing map[string]bool
	logged  int
	details map[string]any
}

func (f *fakeStore) DumpTable(ctx context.Context, table string) (json.RawMessage, error) {
	if f.failing[table] {
		return nil, errors.New("relation does not exist")
	}
	return json.RawMessage(`[{"table":"` + table + `"}]`), nil
}

func (f *fakeStore) InsertSystemLog(ctx context.Context, level, message string, details map[string]any, userID *uuid.UUID) error {
	f.logged++
	f.details = details
	return nil
}

type fakeTokens struct {
	userID uuid.UUID
}

func (f fakeTokens) ValidateToken(token string) (*auth.Claims, error) {
	if token != "good" {
		return nil, errors.New("invalid token")
	}
	return &auth.Claims{UserID: f.userID}, nil
}

type fakeRoles map[uuid.UUID]string

func (f fakeRoles) GetRole(ctx context.Context, id uuid.UUID) (string, error) {
	role, ok := f[id]
	if !ok {
		return "", errors.New("not found")
	}
	return role, nil
}

type fakeUploader struct {
	key  string
	body []byte
	err  error
}

func (f *fakeUploader) Upload(ctx context.Context, key string, r io.Reader) error {
	if f.err != nil {
		return f.err
	}
	f.key = key
	b, err := io.ReadAll(r)
	f.body = b
	return err
}

func (f *fakeUploader) URL(key string) string { return "ftp://backups/" + key }

var fixedNow = time.Date(2024, 3, 1, 10, 15, 30, 123000000, time.UTC)

func newTestHandler(store *fakeStore, role string, up *fakeUploader) (*Handler, uuid.UUID) {
	userID := uuid.New()
	roles := fakeRoles{userID: role}
	var uploader storage.Uploader
	if up != nil {
		uploader = up
	}
	h := NewHandler(store, fakeTokens{userID: userID}, roles, uploader, nil, logger.Discard())
	h.now = func() time.Time { return fixedNow }
	return h, userID
}

func serve(h *Handler, method, authz string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/functions/v1/backup-database", h.Backup)
	r.OPTIONS("/functions/v1/backup-database", h.Options)

	req := httptest.NewRequest(method, "/functions/v1/backup-database", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBackup_DumpsAllTables(t *testing.T) {
	store := &fakeStore{}
	up := &fakeUploader{}
	h, _ := newTestHandler(store, "admin", up)

	w := serve(h, http.MethodPost, "Bearer good")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	var res Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Equal(t, 12, res.TablesBackedUp)
	assert.Equal(t, "backups/backup_2024-03-01T10-15-30-123Z.json", res.FileName)
	assert.Equal(t, res.FileName, up.key)

	var doc struct {
		Timestamp string                     `json:"timestamp"`
		Version   string                     `json:"version"`
		Tables    map[string]json.RawMessage `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(up.body, &doc))
	assert.Equal(t, "1.0", doc.Version)
	assert.Equal(t, "2024-03-01T10:15:30.123Z", doc.Timestamp)
	require.Len(t, doc.Tables, len(Tables))
	for _, table := range Tables {
		var rows []map[string]any
		require.NoError(t, json.Unmarshal(doc.Tables[table], &rows), table)
		assert.Len(t, rows, 1)
	}
	assert.Equal(t, 1, store.logged)
	assert.Equal(t, "ftp://backups/"+res.FileName, store.details["url"])
	assert.Equal(t, res.FileName, store.details["fileName"])
}

func TestBackup_SkipsFailingTable(t *testing.T) {
	store := &fakeStore{failing: map[string]bool{"system_settings": true}}
	up := &fakeUploader{}
	h, _ := newTestHandler(store, "admin", up)

	w := serve(h, http.MethodPost, "Bearer good")
	require.Equal(t, http.StatusOK, w.Code)

	var res Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 11, res.TablesBackedUp)
	assert.NotContains(t, string(up.body), `"system_settings"`)
}

func TestBackup_Rejected(t *testing.T) {
	tests := []struct {
		name  string
		role  string
		authz string
		up    *fakeUploader
	}{
		{"non-admin", "super_admin", "Bearer good", &fakeUploader{}},
		{"provider", "provider", "Bearer good", &fakeUploader{}},
		{"missing token", "admin", "", &fakeUploader{}},
		{"invalid token", "admin", "Bearer bad", &fakeUploader{}},
		{"storage not configured", "admin", "Bearer good", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			h, _ := newTestHandler(store, tt.role, tt.up)

			w := serve(h, http.MethodPost, tt.authz)
			assert.Equal(t, http.StatusInternalServerError, w.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
			assert.NotEmpty(t, body["details"])

			if tt.up != nil {
				assert.Empty(t, tt.up.key)
			}
			assert.Zero(t, store.logged)
		})
	}
}

func TestBackup_UploadFailure(t *testing.T) {
	store := &fakeStore{}
	h, _ := newTestHandler(store, "admin", &fakeUploader{err: errors.New("550 permission denied")})

	w := serve(h, http.MethodPost, "Bearer good")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "550 permission denied")
	assert.Zero(t, store.logged)
}

func TestBackup_Options(t *testing.T) {
	h, _ := newTestHandler(&fakeStore{}, "admin", &fakeUploader{})

	w := serve(h, http.MethodOptions, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "authorization, x-client-info, apikey, content-type", w.Header().Get("Access-Control-Allow-Headers"))
}

func TestFileName(t *testing.T) {
	ts := time.Date(2025, 12, 31, 23, 59, 59, 5000000, time.FixedZone("UTC+2", 7200))
	assert.Equal(t, "backups/backup_2025-12-31T21-59-59-005Z.json", FileName(ts))
}
