package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/netdraw/internal/server"
	"github.com/matzehuels/netdraw/pkg/cache"
	"github.com/matzehuels/netdraw/pkg/observability/prom"
	"github.com/matzehuels/netdraw/pkg/pipeline"
	"github.com/matzehuels/netdraw/pkg/session"
	"github.com/matzehuels/netdraw/pkg/storage"
	"github.com/matzehuels/netdraw/pkg/storage/mongo"
)

// redisPrefix scopes the session and cache keys kept in a shared Redis.
const redisPrefix = appName + ":"

// serveFlags are command-line overrides of the config file.
type serveFlags struct {
	config  string
	addr    string
	watch   string
	logFile string
	redis   string
	mongo   string
	mongoDB string
}

// serveCommand creates the serve command, which runs the HTTP viewer
// backend.
func (c *CLI) serveCommand() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the topology viewer API",
		Long: `Serve the topology viewer API.

The server stores uploaded topology documents, keeps one view session per
client and streams change notifications over server-sent events. Settings come
from a TOML file (--config) and are overridden by flags.

Without Redis, sessions live in memory; without MongoDB, documents do too.
With --watch the document at that path is stored on start and again whenever
it changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd.Flags())
			if err != nil {
				return err
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	flags.register(cmd.Flags())

	return cmd
}

func (f *serveFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.config, "config", "", "TOML config file")
	fs.StringVar(&f.addr, "addr", server.DefaultAddr, "listen address")
	fs.StringVar(&f.watch, "watch", "", "topology document to load and watch for changes")
	fs.StringVar(&f.logFile, "log-file", "", "also write logs to this file, rotated by size")
	fs.StringVar(&f.redis, "redis", "", "Redis address for sessions and the render cache")
	fs.StringVar(&f.mongo, "mongo", "", "MongoDB URI for document storage")
	fs.StringVar(&f.mongoDB, "mongo-db", appName, "MongoDB database (with --mongo)")
}

// resolve loads the config file, then applies the flags set on fs.
func (f serveFlags) resolve(fs *pflag.FlagSet) (server.Config, error) {
	cfg := server.DefaultConfig()
	if f.config != "" {
		var err error
		if cfg, err = server.LoadConfig(f.config); err != nil {
			return server.Config{}, err
		}
	}

	changed := fs.Changed
	if changed("addr") {
		cfg.Addr = f.addr
	}
	if changed("watch") {
		cfg.Watch = f.watch
	}
	if changed("log-file") {
		cfg.Log.File = f.logFile
	}
	if changed("redis") {
		cfg.Redis.Addr = f.redis
	}
	if changed("mongo") {
		cfg.Mongo.URI = f.mongo
		if cfg.Mongo.Database == "" || changed("mongo-db") {
			cfg.Mongo.Database = f.mongoDB
		}
	}
	return cfg, cfg.Validate()
}

func (c *CLI) runServe(ctx context.Context, cfg server.Config) error {
	logger, logCloser := cfg.Log.NewLogger(os.Stderr)
	defer logCloser.Close()
	if c.Logger.GetLevel() == log.DebugLevel {
		logger.SetLevel(log.DebugLevel)
	}

	b, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}

	metrics := prom.New(prometheus.DefaultRegisterer)
	metrics.Register()

	srv := server.New(server.Options{
		Runner:     pipeline.NewRunner(b.cache, b.keyer, logger),
		Documents:  b.documents,
		Sessions:   b.sessions,
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
		Metrics:    promhttp.Handler(),
	})
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Warn("close stores", "err", err)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx, cfg.Addr) })
	if cfg.Watch != "" {
		g.Go(func() error {
			if err := srv.Watch(gctx, cfg.Watch); err != nil {
				return fmt.Errorf("watch %s: %w", cfg.Watch, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// backends are the stores selected by the config. Each defaults to memory.
type backends struct {
	documents storage.DocumentStore
	sessions  session.Store
	cache     cache.Cache
	keyer     cache.Keyer
}

func openBackends(ctx context.Context, cfg server.Config, logger *log.Logger) (*backends, error) {
	b := &backends{
		documents: storage.NewMemoryStore(),
		sessions:  session.NewMemoryStore(),
		cache:     cache.NewNullCache(),
	}

	var closers []io.Closer
	fail := func(err error) (*backends, error) {
		for _, c := range closers {
			_ = c.Close()
		}
		return nil, err
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			Password: cfg.Redis.Password,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return fail(fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err))
		}
		closers = append(closers, client)
		// The session store owns the client.
		b.sessions = session.NewRedisStore(client, redisPrefix)
		b.cache = borrowedCache{cache.NewRedisCache(client)}
		b.keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), redisPrefix)
		logger.Info("using redis", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
	}

	if cfg.Mongo.URI != "" {
		store, err := mongo.Connect(ctx, cfg.Mongo)
		if err != nil {
			return fail(err)
		}
		b.documents = store
		logger.Info("using mongodb", "database", cfg.Mongo.Database)
	}

	return b, nil
}

// borrowedCache is a cache whose connection is closed by someone else.
type borrowedCache struct{ cache.Cache }

func (borrowedCache) Close() error { return nil }
