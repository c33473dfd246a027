package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Aleph-Alpha/vectordb-api/v1/minio"
	"github.com/Aleph-Alpha/vectordb-api/v1/qdrant"
	"github.com/Aleph-Alpha/vectordb-api/v1/sqlite"
)

// EngineKind names the engine selected by the storage URI.
type EngineKind string

const (
	EngineSQLite EngineKind = "sqlite"
	EngineQdrant EngineKind = "qdrant"
)

// Target is the engine configuration derived from a StorageConfig.
type Target struct {
	Kind EngineKind

	// SQLite is set when Kind is EngineSQLite.
	SQLite sqlite.Config

	// Snapshot is set for s3:// URIs: the SQLite file is restored from and
	// persisted to this bucket object.
	Snapshot *minio.Config

	// Qdrant is set when Kind is EngineQdrant.
	Qdrant *qdrant.Config
}

// Target parses the storage URI into an engine configuration.
func (s StorageConfig) Target() (Target, error) {
	raw := strings.TrimSpace(s.URI)
	if raw == "" {
		return Target{}, fmt.Errorf("%w: VECTORDB_URI must be set", ErrMissingValue)
	}

	scheme, rest, hasScheme := strings.Cut(raw, "://")
	if !hasScheme {
		return Target{Kind: EngineSQLite, SQLite: sqlite.Config{Path: raw}}, nil
	}

	switch strings.ToLower(scheme) {
	case "memory":
		return Target{Kind: EngineSQLite, SQLite: sqlite.Config{InMemory: true}}, nil

	case "file":
		if rest == "" {
			return Target{}, fmt.Errorf("invalid storage URI %q: missing file path", raw)
		}
		return Target{Kind: EngineSQLite, SQLite: sqlite.Config{Path: rest}}, nil

	case "s3":
		return s.s3Target(raw)

	case "qdrant", "qdrants":
		return s.qdrantTarget(raw)

	default:
		return Target{}, fmt.Errorf("unsupported storage URI scheme %q: expected memory, file, s3, qdrant or qdrants", scheme)
	}
}

func (s StorageConfig) s3Target(raw string) (Target, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, fmt.Errorf("invalid storage URI %q: %w", raw, err)
	}
	if u.Host == "" {
		return Target{}, fmt.Errorf("invalid storage URI %q: missing bucket", raw)
	}
	if s.Endpoint == "" {
		return Target{}, fmt.Errorf("%w: STORAGE_ENDPOINT is required for s3:// URIs", ErrMissingValue)
	}

	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		key = minio.DefaultObjectKey
	}
	local := s.LocalPath
	if local == "" {
		local = filepath.Join(os.TempDir(), "vectordb", u.Host, path.Base(key))
	}

	snapshot := &minio.Config{
		Connection: minio.ConnectionConfig{
			Endpoint:             s.Endpoint,
			AccessKeyID:          s.AccountName,
			SecretAccessKey:      s.AccountKey,
			UseSSL:               s.UseSSL,
			BucketName:           u.Host,
			Region:               s.Region,
			AccessBucketCreation: s.CreateBucket,
		},
		Snapshot: minio.SnapshotConfig{ObjectKey: key},
	}
	return Target{Kind: EngineSQLite, SQLite: sqlite.Config{Path: local}, Snapshot: snapshot}, nil
}

func (s StorageConfig) qdrantTarget(raw string) (Target, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, fmt.Errorf("invalid storage URI %q: %w", raw, err)
	}
	host := u.Hostname()
	if host == "" {
		return Target{}, fmt.Errorf("invalid storage URI %q: missing host", raw)
	}

	cfg := qdrant.FromEndpoint(host).
		WithApiKey(s.AccountKey).
		WithTLS(strings.EqualFold(u.Scheme, "qdrants"))

	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil || port <= 0 || port > 65535 {
			return Target{}, fmt.Errorf("invalid storage URI %q: bad port %q", raw, p)
		}
		cfg.WithPort(port)
	}
	return Target{Kind: EngineQdrant, Qdrant: cfg}, nil
}

// String renders the target without credentials, for logs.
func (t Target) String() string {
	switch {
	case t.Kind == EngineQdrant:
		return "qdrant " + net.JoinHostPort(t.Qdrant.Endpoint, strconv.Itoa(t.Qdrant.Port))
	case t.Snapshot != nil:
		return fmt.Sprintf("sqlite %s (snapshot s3://%s/%s)", t.SQLite.Path,
			t.Snapshot.Connection.BucketName, t.Snapshot.Snapshot.ObjectKey)
	case t.SQLite.InMemory:
		return "sqlite :memory:"
	default:
		return "sqlite " + t.SQLite.Path
	}
}
