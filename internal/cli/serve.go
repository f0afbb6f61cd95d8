package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/curlyarrow/curlyarrow/internal/server"
	"github.com/curlyarrow/curlyarrow/pkg/store"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		backend   string
		storeDir  string
		redisAddr string
		mongoURI  string
		tick      time.Duration
		step      float64
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the mechanism API server",
		Long: `Run the mechanism API server.

The server keeps live sessions in memory and advances their bond
transitions on a background clock. Saved snapshots go to the configured
store backend:

  file    JSON files under --store-dir (the default)
  memory  kept only while the server runs
  redis   shared across instances via --redis-addr
  mongo   durable documents via --mongo-uri`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.newSnapshotStore(cmd.Context(), backend, storeDir, redisAddr, mongoURI)
			if err != nil {
				return err
			}
			defer st.Close()

			rc, err := openRenderCache(noCache)
			if err != nil {
				return err
			}
			defer rc.Close()

			srv := server.New(server.Config{
				Addr:         addr,
				TickInterval: tick,
				Step:         step,
				Store:        st,
				RenderCache:  rc,
				Logger:       c.Logger,
			})
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&backend, "store", "file", "snapshot store backend (file, memory, redis, mongo)")
	cmd.Flags().StringVar(&storeDir, "store-dir", "", "snapshot directory for the file backend (default ~/.config/curlyarrow/snapshots)")
	cmd.Flags().StringVar(&redisAddr, "redis-addr", "localhost:6379", "redis address for the redis backend")
	cmd.Flags().StringVar(&mongoURI, "mongo-uri", "mongodb://localhost:27017", "connection string for the mongo backend")
	cmd.Flags().DurationVar(&tick, "tick", 50*time.Millisecond, "advance loop interval")
	cmd.Flags().Float64Var(&step, "step", 0.02, "transition progress per tick")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the render cache")

	return cmd
}

// newSnapshotStore builds the snapshot store for the chosen backend.
func (c *CLI) newSnapshotStore(ctx context.Context, backend, dir, redisAddr, mongoURI string) (store.Store, error) {
	switch backend {
	case "memory":
		return store.NewMemory(), nil
	case "file":
		fs, err := store.NewFileStore(dir)
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("snapshot store ready", "backend", "file", "dir", fs.Path())
		return fs, nil
	case "redis":
		c.Logger.Debug("connecting snapshot store", "backend", "redis", "addr", redisAddr)
		return store.NewRedisStore(ctx, store.RedisConfig{Addr: redisAddr})
	case "mongo":
		c.Logger.Debug("connecting snapshot store", "backend", "mongo", "uri", mongoURI)
		return store.NewMongoStore(ctx, store.MongoConfig{URI: mongoURI})
	default:
		return nil, fmt.Errorf("unknown store backend %q (want file, memory, redis, or mongo)", backend)
	}
}
