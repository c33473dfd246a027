package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/mock/gomock"

	"github.com/Aleph-Alpha/vectordb-api/v1/observability"
	"github.com/Aleph-Alpha/vectordb-api/v1/vectordb"
)

type recordingLogger struct {
	mu      sync.Mutex
	entries []map[string]interface{}
}

func (l *recordingLogger) DebugWithContext(_ context.Context, _ string, err error, fields ...map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry := map[string]interface{}{"error": err}
	for _, f := range fields {
		for k, v := range f {
			entry[k] = v
		}
	}
	l.entries = append(l.entries, entry)
}

func newTestRepository(t *testing.T) (*Repository, *vectordb.MockService, *[]observability.OperationContext) {
	t.Helper()
	ctrl := gomock.NewController(t)
	engine := vectordb.NewMockService(ctrl)

	var ops []observability.OperationContext
	repo := NewRepository(engine).WithObserver(observability.ObserverFunc(func(op observability.OperationContext) {
		ops = append(ops, op)
	}))
	return repo, engine, &ops
}

func TestGetTable(t *testing.T) {
	repo, engine, ops := newTestRepository(t)
	ctx := context.Background()

	engine.EXPECT().OpenTable(gomock.Any(), "docs").Return(&vectordb.TableInfo{Name: "docs", NumRows: 3}, nil)
	info, err := repo.GetTable(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, int64(3), info.NumRows)

	missing := fmt.Errorf("%w: 'gone'", vectordb.ErrTableNotFound)
	engine.EXPECT().OpenTable(gomock.Any(), "gone").Return(nil, missing)
	_, err = repo.GetTable(ctx, "gone")
	assert.True(t, vectordb.IsTableNotFound(err))

	require.Len(t, *ops, 2)
	assert.Equal(t, "repository", (*ops)[0].Component)
	assert.Equal(t, "get_table", (*ops)[0].Operation)
	assert.Equal(t, "docs", (*ops)[0].Resource)
	assert.Equal(t, int64(3), (*ops)[0].Size)
	assert.ErrorIs(t, (*ops)[1].Error, vectordb.ErrTableNotFound)
}

func TestCreateTable(t *testing.T) {
	repo, engine, _ := newTestRepository(t)
	ctx := context.Background()
	data := []vectordb.Row{vectordb.NewRow(vectordb.Pair{Key: "vector", Value: []float32{1, 0}})}

	engine.EXPECT().CreateTable(gomock.Any(), vectordb.CreateTableRequest{
		Name: "docs",
		Data: data,
		Mode: vectordb.CreateModeCreate,
	}).Return(&vectordb.TableInfo{Name: "docs", NumRows: 1}, nil)
	require.NoError(t, repo.CreateTable(ctx, "docs", nil, data, ""))

	engine.EXPECT().CreateTable(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req vectordb.CreateTableRequest) (*vectordb.TableInfo, error) {
			assert.Equal(t, vectordb.CreateModeOverwrite, req.Mode)
			return &vectordb.TableInfo{Name: req.Name}, nil
		})
	require.NoError(t, repo.CreateTable(ctx, "docs", nil, data, vectordb.CreateModeOverwrite))

	err := repo.CreateTable(ctx, "docs", nil, data, "append")
	assert.ErrorIs(t, err, vectordb.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "append")
}

func TestInsertAndBulkInsert(t *testing.T) {
	repo, engine, ops := newTestRepository(t)
	ctx := context.Background()
	rows := []vectordb.Row{
		vectordb.NewRow(vectordb.Pair{Key: "vector", Value: []float32{1, 0}}),
		vectordb.NewRow(vectordb.Pair{Key: "vector", Value: []float32{0, 1}}),
	}

	engine.EXPECT().Add(gomock.Any(), "docs", rows[:1]).Return(nil)
	engine.EXPECT().Add(gomock.Any(), "docs", rows).Return(nil)

	require.NoError(t, repo.Insert(ctx, "docs", rows[:1]))
	require.NoError(t, repo.BulkInsert(ctx, "docs", rows))

	require.Len(t, *ops, 2)
	assert.Equal(t, "insert", (*ops)[0].Operation)
	assert.Equal(t, "bulk_insert", (*ops)[1].Operation)
	assert.Equal(t, int64(2), (*ops)[1].Size)
}

func TestSearch_Limit(t *testing.T) {
	repo, engine, _ := newTestRepository(t)
	ctx := context.Background()

	engine.EXPECT().Search(gomock.Any(), vectordb.SearchRequest{
		Table:   "docs",
		Vector:  []float32{0.1, 0.2},
		Limit:   DefaultLimit,
		Where:   "kind = 'a'",
		Columns: []string{"text"},
	}).Return([]vectordb.Row{vectordb.NewRow(vectordb.Pair{Key: "text", Value: "x"})}, nil)

	rows, err := repo.Search(ctx, SearchQuery{
		Table:   "docs",
		Vector:  []float32{0.1, 0.2},
		Where:   "kind = 'a'",
		Columns: []string{"text"},
		Limit:   DefaultLimit,
	})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	engine.EXPECT().Search(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req vectordb.SearchRequest) ([]vectordb.Row, error) {
			assert.Equal(t, 3, req.Limit)
			return nil, nil
		})
	_, err = repo.Search(ctx, SearchQuery{Table: "docs", Vector: []float32{1}, Limit: 3})
	require.NoError(t, err)

	for _, limit := range []int{0, -1} {
		_, err = repo.Search(ctx, SearchQuery{Table: "docs", Vector: []float32{1}, Limit: limit})
		assert.ErrorIs(t, err, vectordb.ErrInvalidArgument, limit)
		_, err = repo.SearchText(ctx, TextSearchQuery{Table: "docs", Query: "x", Limit: limit})
		assert.ErrorIs(t, err, vectordb.ErrInvalidArgument, limit)
	}
}

func TestSearchText(t *testing.T) {
	repo, engine, _ := newTestRepository(t)
	ctx := context.Background()

	engine.EXPECT().SearchText(gomock.Any(), vectordb.TextSearchRequest{
		Table: "docs",
		Query: "hello",
		Limit: DefaultLimit,
	}).Return(nil, fmt.Errorf("%w: no full-text index exists on table 'docs'", vectordb.ErrIndexMissing))

	_, err := repo.SearchText(ctx, TextSearchQuery{Table: "docs", Query: "hello", Limit: DefaultLimit})
	assert.True(t, vectordb.IsIndexMissing(err))
}

func TestCreateIndexes(t *testing.T) {
	repo, engine, ops := newTestRepository(t)
	ctx := context.Background()

	fts := DefaultFullTextIndexOptions("text")
	engine.EXPECT().CreateFullTextIndex(gomock.Any(), "docs", fts).Return(nil)
	require.NoError(t, repo.CreateFullTextIndex(ctx, "docs", fts))

	vec := DefaultVectorIndexOptions()
	engine.EXPECT().CreateVectorIndex(gomock.Any(), "docs", vec).Return(nil)
	require.NoError(t, repo.CreateVectorIndex(ctx, "docs", vec))

	require.Len(t, *ops, 2)
	assert.Equal(t, "create_fts_index", (*ops)[0].Operation)
	assert.Equal(t, "create_vector_index", (*ops)[1].Operation)
	assert.Equal(t, "IVF_PQ", (*ops)[1].Metadata["index_type"])
}

func TestGetAll(t *testing.T) {
	repo, engine, _ := newTestRepository(t)
	logger := &recordingLogger{}
	repo.WithLogger(logger)

	rows := []vectordb.Row{
		vectordb.NewRow(vectordb.Pair{Key: "id", Value: int64(1)}),
		vectordb.NewRow(vectordb.Pair{Key: "id", Value: int64(2)}),
	}
	engine.EXPECT().Scan(gomock.Any(), "docs").Return(rows, nil)

	got, err := repo.GetAll(context.Background(), "docs")
	require.NoError(t, err)
	assert.Equal(t, rows, got)

	require.Len(t, logger.entries, 1)
	assert.Equal(t, "get_all", logger.entries[0]["operation"])
	assert.Equal(t, int64(2), logger.entries[0]["rows"])
}

func TestDefaults(t *testing.T) {
	fts := DefaultFullTextIndexOptions("a", "b")
	assert.Equal(t, []string{"a", "b"}, fts.FieldNames)
	assert.False(t, fts.Replace)
	assert.Equal(t, int64(1073741824), fts.WriterHeapSize)
	assert.True(t, fts.UseTantivy)
	assert.True(t, fts.WithPosition)

	vec := DefaultVectorIndexOptions()
	assert.True(t, vec.Replace)
	assert.Equal(t, vectordb.MetricL2, vec.Metric)
	assert.Equal(t, 256, vec.NumPartitions)
	assert.Equal(t, 96, vec.NumSubVectors)
	assert.Equal(t, vectordb.IndexTypeIVFPQ, vec.IndexType)
	assert.Equal(t, 8, vec.NumBits)
}

func TestFXModule(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := vectordb.NewMockService(ctrl)
	engine.EXPECT().Ping(gomock.Any()).Return(nil)

	var repo *Repository
	app := fxtest.New(t,
		fx.Provide(func() vectordb.Service { return engine }),
		FXModule,
		fx.Populate(&repo),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NotNil(t, repo)
	assert.NoError(t, repo.Ping(context.Background()))
}
