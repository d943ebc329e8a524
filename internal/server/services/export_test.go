package services

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/dmitrijs2005/rosebudthorn/internal/api"
	"github.com/dmitrijs2005/rosebudthorn/internal/common"
	"github.com/dmitrijs2005/rosebudthorn/internal/datex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectStore struct {
	puts       map[string][]byte
	presignTTL time.Duration
	putErr     error
}

func (f *fakeObjectStore) Put(_ context.Context, key string, body []byte, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	if f.puts == nil {
		f.puts = map[string][]byte{}
	}
	f.puts[key] = body
	return nil
}

func (f *fakeObjectStore) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	f.presignTTL = ttl
	return "https://s3.example/" + key + "?sig=1", nil
}

type fakeLister struct {
	entries []api.Entry
	err     error
}

func (f fakeLister) ListByUser(context.Context, string) ([]api.Entry, error) {
	return f.entries, f.err
}

func TestExportKey_Layout(t *testing.T) {
	t.Parallel()

	key := ExportKey("u1", time.Date(2024, 5, 1, 23, 0, 0, 0, time.UTC))
	assert.Regexp(t, regexp.MustCompile(`^exports/u1/2024/05/01/[0-9a-f-]{36}\.json$`), key)
}

func TestExport_WritesJSONAndPresigns(t *testing.T) {
	store := &fakeObjectStore{}
	lister := fakeLister{entries: []api.Entry{{ID: "e1", UserID: "u1", Date: datex.MustParse("2024-05-01"), RoseText: "r"}}}
	s := NewExportService(lister, store, discardLogger())
	s.now = func() time.Time { return fixedNow }

	res, err := s.Export(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, fixedNow.Add(15*time.Minute), res.ExpiresAt)
	assert.Equal(t, ExportLinkTTL, store.presignTTL)
	assert.Contains(t, res.URL, res.Key)

	body, ok := store.puts[res.Key]
	require.True(t, ok)
	var doc journalExport
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Equal(t, "u1", doc.UserID)
	require.Len(t, doc.Entries, 1)
	assert.Equal(t, "2024-05-01", doc.Entries[0].Date.String())
}

func TestExport_Disabled(t *testing.T) {
	s := NewExportService(fakeLister{}, nil, discardLogger())

	_, err := s.Export(context.Background(), "u1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestExport_PutError(t *testing.T) {
	store := &fakeObjectStore{putErr: errors.New("bucket gone")}
	s := NewExportService(fakeLister{}, store, discardLogger())

	_, err := s.Export(context.Background(), "u1")
	assert.ErrorContains(t, err, "bucket gone")
}
