package store_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/pmfs-ingress/pkg/config"
	"github.com/David-Botos/pmfs-ingress/pkg/connector"
	"github.com/David-Botos/pmfs-ingress/pkg/model"
	"github.com/David-Botos/pmfs-ingress/pkg/store"
)

func project(key, municipio string) *model.Project {
	return &model.Project{
		NroRegistro:     key,
		Municipio:       municipio,
		ModalidadesPMFS: []string{"Pleno"},
		Key:             key,
	}
}

func decodeMunicipio(t *testing.T, body []byte) interface{} {
	t.Helper()
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &doc))
	return doc["municipio"]
}

func TestMemoryStore_UpsertOverwrites(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "projetos", "123", project("123", "Altamira")))
	require.NoError(t, s.Upsert(ctx, "projetos", "123", project("123", "Belém")))

	body, ok := s.Get("projetos", "123")
	require.True(t, ok)
	assert.Equal(t, "Belém", decodeMunicipio(t, body))
	assert.Equal(t, 1, s.Len("projetos"))
	assert.Equal(t, 2, s.Writes())
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	s := store.NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Upsert(ctx, "projetos", "123", project("123", "Altamira"))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrStoreWrite)
	assert.Equal(t, 0, s.Len("projetos"))
}

func TestSQLStore_SQLiteUpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	conn, err := connector.NewSQLiteConnector(ctx, &config.SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "pmfs.db"),
	})
	require.NoError(t, err)

	s := store.NewSQLStore(conn.X(), conn)
	defer s.Close()

	require.NoError(t, s.Upsert(ctx, "projetos", "123", project("123", "Altamira")))
	require.NoError(t, s.Upsert(ctx, "projetos", "456", project("456", "Marabá")))
	require.NoError(t, s.Upsert(ctx, "projetos", "123", project("123", "Belém")))

	n, err := s.Count(ctx, "projetos")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	body, ok, err := s.Get(ctx, "projetos", "123")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Belém", decodeMunicipio(t, body))

	_, ok, err = s.Get(ctx, "projetos", "999")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLStore_PostgresStatements(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := store.NewSQLStore(sqlx.NewDb(db, "pgx"), nil)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "projetos"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`VALUES ($1, CAST($2 AS JSONB), $3)`)).
		WithArgs("123", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (id) DO UPDATE`)).
		WithArgs("123", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Upsert(ctx, "projetos", "123", project("123", "Altamira")))
	require.NoError(t, s.Upsert(ctx, "projetos", "123", project("123", "Belém")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_PostgresFailureIsStoreWrite(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := store.NewSQLStore(sqlx.NewDb(db, "pgx"), nil)

	mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO").WillReturnError(errors.New("connection reset"))

	err = s.Upsert(context.Background(), "projetos", "123", project("123", "Altamira"))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrStoreWrite)
	assert.Equal(t, model.KindStoreWrite, model.KindOf(err))
	assert.Contains(t, err.Error(), "key=123")
}

func TestRedisStore_UpsertOverwrites(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	s, err := store.NewRedisStore(ctx, &config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Upsert(ctx, "projetos", "123", project("123", "Altamira")))
	require.NoError(t, s.Upsert(ctx, "projetos", "123", project("123", "Belém")))

	val, err := mr.Get(store.RedisKey("projetos", "123"))
	require.NoError(t, err)
	assert.Equal(t, "Belém", decodeMunicipio(t, []byte(val)))
	assert.Len(t, mr.Keys(), 1)
}

func TestRedisStore_UnreachableServer(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := store.NewRedisStore(context.Background(), &config.RedisConfig{Address: addr})
	assert.Error(t, err)
}

// recordingTransport answers every request like an Elasticsearch node and keeps the requests
type recordingTransport struct {
	mu       sync.Mutex
	status   int
	requests []*http.Request
	bodies   [][]byte
}

func (t *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
	}
	t.requests = append(t.requests, req)
	t.bodies = append(t.bodies, body)

	return &http.Response{
		StatusCode: t.status,
		Body:       io.NopCloser(bytes.NewBufferString(`{"result":"created"}`)),
		Header:     http.Header{"X-Elastic-Product": []string{"Elasticsearch"}},
	}, nil
}

func TestElasticsearchStore_IndexesWithDocumentID(t *testing.T) {
	transport := &recordingTransport{status: http.StatusCreated}
	client, err := es.NewClient(es.Config{Transport: transport})
	require.NoError(t, err)

	s := store.NewElasticsearchStoreFromClient(client, nil)
	require.NoError(t, s.Upsert(context.Background(), "Projetos", "123", project("123", "Altamira")))

	require.NotEmpty(t, transport.requests)
	last := transport.requests[len(transport.requests)-1]
	assert.Equal(t, http.MethodPut, last.Method)
	assert.Equal(t, "/projetos/_doc/123", last.URL.Path)
	assert.Equal(t, "Altamira", decodeMunicipio(t, transport.bodies[len(transport.bodies)-1]))
}

func TestElasticsearchStore_ErrorResponse(t *testing.T) {
	transport := &recordingTransport{status: http.StatusBadRequest}
	client, err := es.NewClient(es.Config{Transport: transport})
	require.NoError(t, err)

	s := store.NewElasticsearchStoreFromClient(client, nil)
	err = s.Upsert(context.Background(), "projetos", "123", project("123", "Altamira"))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrStoreWrite)
}

func TestNewStore_Memory(t *testing.T) {
	s, err := store.NewStore(context.Background(), &config.Config{StoreDriver: config.StoreMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &store.MemoryStore{}, s)
}

func TestNewStore_UnknownDriver(t *testing.T) {
	_, err := store.NewStore(context.Background(), &config.Config{StoreDriver: "firestore"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrConfig)
}

func TestElasticsearchStore_CloseRefreshesWrittenIndexes(t *testing.T) {
	transport := &recordingTransport{status: http.StatusOK}
	client, err := es.NewClient(es.Config{Transport: transport})
	require.NoError(t, err)

	s := store.NewElasticsearchStoreFromClient(client, nil)
	require.NoError(t, s.Upsert(context.Background(), "projetos", "123", project("123", "Altamira")))
	require.NoError(t, s.Upsert(context.Background(), "projetos", "456", project("456", "Marabá")))
	require.NoError(t, s.Close())

	last := transport.requests[len(transport.requests)-1]
	assert.Equal(t, "/projetos/_refresh", last.URL.Path)

	// Nothing left to refresh
	n := len(transport.requests)
	require.NoError(t, s.Close())
	assert.Len(t, transport.requests, n)
}

func TestUpsert_RejectsEmptyKey(t *testing.T) {
	ctx := context.Background()

	mem := store.NewMemoryStore()
	for _, key := range []string{"", "   "} {
		err := mem.Upsert(ctx, "projetos", key, project(key, "Belém"))
		require.Error(t, err)
		assert.ErrorIs(t, err, store.ErrEmptyKey)
		assert.ErrorIs(t, err, model.ErrStoreWrite)
	}
	assert.Equal(t, 0, mem.Len("projetos"))

	transport := &recordingTransport{status: http.StatusCreated}
	client, err := es.NewClient(es.Config{Transport: transport})
	require.NoError(t, err)

	s := store.NewElasticsearchStoreFromClient(client, nil)
	err = s.Upsert(ctx, "projetos", "", project("", "Belém"))
	assert.ErrorIs(t, err, store.ErrEmptyKey)
	assert.Empty(t, transport.requests, "no document may be indexed without an id")
}
