package qdrant

import (
	"context"
	"sync"

	qdrant "github.com/qdrant/go-client/qdrant"

	"github.com/Aleph-Alpha/vectordb-api/v1/observability"
	"github.com/Aleph-Alpha/vectordb-api/v1/vectordb"
)

// Adapter implements vectordb.Service on top of a Qdrant client.
//
// Every table maps to one collection. Vector fields are stored as named vectors
// and every other field in the point payload. Table schemas and index settings
// live in a reserved metadata collection so that tables round-trip with their
// declared types.
type Adapter struct {
	client   *qdrant.Client
	cfg      Config
	logger   Logger
	observer observability.Observer

	metaMu sync.Mutex
	metaOK bool
}

var _ vectordb.Service = (*Adapter)(nil)

// NewAdapter creates a new Qdrant adapter for the vectordb.Service interface.
//
// Example:
//
//	qc, err := qdrant.NewQdrantClient(cfg, log)
//	db := qdrant.NewAdapter(qc.Client())
func NewAdapter(client *qdrant.Client) *Adapter {
	cfg := DefaultConfig()
	return &Adapter{client: client, cfg: *cfg}
}

// WithConfig sets the batch and concurrency settings used by inserts.
func (a *Adapter) WithConfig(cfg Config) *Adapter {
	cfg.applyDefaults()
	a.cfg = cfg
	return a
}

// WithLogger attaches a logger. Passing nil disables logging.
func (a *Adapter) WithLogger(logger Logger) *Adapter {
	a.logger = logger
	return a
}

// WithObserver attaches an observer for operation notifications.
func (a *Adapter) WithObserver(observer observability.Observer) *Adapter {
	a.observer = observer
	return a
}

// Ping checks that the Qdrant server is reachable.
func (a *Adapter) Ping(ctx context.Context) error {
	_, err := a.client.HealthCheck(ctx)
	return err
}

// Close is a no-op: the connection is owned by QdrantClient.
func (a *Adapter) Close() error {
	return nil
}

func (a *Adapter) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if a.logger != nil {
		a.logger.InfoWithContext(ctx, msg, nil, fields)
	}
}

func (a *Adapter) logWarn(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if a.logger != nil {
		a.logger.WarnWithContext(ctx, msg, err, fields)
	}
}
