package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/matzehuels/netdraw/internal/server"
	"github.com/matzehuels/netdraw/pkg/session"
	"github.com/matzehuels/netdraw/pkg/storage"
)

func resolveServe(t *testing.T, args ...string) (server.Config, error) {
	t.Helper()
	var f serveFlags
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	f.register(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatal(err)
	}
	return f.resolve(fs)
}

func TestServeResolve(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "netdraw.toml")
	const cfgFile = `addr = "0.0.0.0:9000"
session_ttl = "2h"

[mongo]
uri = "mongodb://db:27017"
database = "fabric"
`
	if err := os.WriteFile(cfgPath, []byte(cfgFile), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		args    []string
		wantErr bool
		check   func(t *testing.T, cfg server.Config)
	}{
		{
			name: "defaults",
			check: func(t *testing.T, cfg server.Config) {
				if cfg.Addr != server.DefaultAddr || cfg.SessionTTL != session.DefaultTTL {
					t.Errorf("config = %+v, want defaults", cfg)
				}
			},
		},
		{
			name: "flags",
			args: []string{"--addr", ":7000", "--redis", "cache:6379", "--mongo", "mongodb://m", "--log-file", "/tmp/nd.log"},
			check: func(t *testing.T, cfg server.Config) {
				if cfg.Addr != ":7000" || cfg.Redis.Addr != "cache:6379" || cfg.Log.File != "/tmp/nd.log" {
					t.Errorf("config = %+v, want flag values", cfg)
				}
				if cfg.Mongo.Database != appName {
					t.Errorf("mongo database = %q, want %q", cfg.Mongo.Database, appName)
				}
			},
		},
		{
			name: "config file",
			args: []string{"--config", cfgPath},
			check: func(t *testing.T, cfg server.Config) {
				if cfg.Addr != "0.0.0.0:9000" || cfg.SessionTTL != 2*time.Hour || cfg.Mongo.Database != "fabric" {
					t.Errorf("config = %+v, want file values", cfg)
				}
			},
		},
		{
			name: "flag overrides file",
			args: []string{"--config", cfgPath, "--addr", ":7001", "--mongo", "mongodb://other"},
			check: func(t *testing.T, cfg server.Config) {
				if cfg.Addr != ":7001" || cfg.Mongo.URI != "mongodb://other" || cfg.Mongo.Database != "fabric" {
					t.Errorf("config = %+v, want addr and uri overridden", cfg)
				}
			},
		},
		{
			name:    "missing config file",
			args:    []string{"--config", filepath.Join(t.TempDir(), "none.toml")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := resolveServe(t, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolve() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestOpenBackendsMemory(t *testing.T) {
	b, err := openBackends(context.Background(), server.DefaultConfig(), log.New(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := b.documents.(*storage.MemoryStore); !ok {
		t.Errorf("documents = %T, want *storage.MemoryStore", b.documents)
	}
	if _, ok := b.sessions.(*session.MemoryStore); !ok {
		t.Errorf("sessions = %T, want *session.MemoryStore", b.sessions)
	}
}

func TestOpenBackendsRedis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	cfg := server.DefaultConfig()
	cfg.Redis.Addr = mr.Addr()

	b, err := openBackends(ctx, cfg, log.New(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := b.sessions.(*session.RedisStore); !ok {
		t.Errorf("sessions = %T, want *session.RedisStore", b.sessions)
	}

	if err := b.cache.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := b.cache.Close(); err != nil {
		t.Errorf("cache Close() = %v, want nil", err)
	}
	if err := b.sessions.Close(); err != nil {
		t.Errorf("sessions Close() = %v, want nil", err)
	}
}

func TestOpenBackendsRedisUnreachable(t *testing.T) {
	cfg := server.DefaultConfig()
	cfg.Redis.Addr = "127.0.0.1:1"

	if _, err := openBackends(context.Background(), cfg, log.New(io.Discard)); err == nil {
		t.Error("openBackends() with an unreachable redis should fail")
	}
}
