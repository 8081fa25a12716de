// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

// Command entitystore runs the versioned entity store: an HTTP API over an
// S3-compatible blob store and a PostgreSQL metadata index.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/wikigraph/entitystore/api"
	"github.com/wikigraph/entitystore/blobstore/s3store"
	"github.com/wikigraph/entitystore/metaindex/pgindex"
	"github.com/wikigraph/entitystore/rdf"
	"github.com/wikigraph/entitystore/rdf/entitycache"
	"github.com/wikigraph/entitystore/revision"
)

// Config collects the configuration of every subsystem.
type Config struct {
	API        api.Config
	Blobs      s3store.Config
	Index      pgindex.Config
	CacheAddr  string
	Serializer rdf.Config

	RegistryDir string
	Dev         bool
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "entitystore",
		Short: "Versioned entity store",
	}
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the entity store server",
		RunE:  cmdRun,
	}
	rootCmd.AddCommand(runCmd)

	flags := runCmd.Flags()
	flags.String("address", ":8080", "http listening address")
	flags.String("s3.endpoint", "localhost:9000", "s3-compatible endpoint host:port")
	flags.String("s3.access-key", "", "s3 access key")
	flags.String("s3.secret-key", "", "s3 secret key")
	flags.String("s3.bucket", "entitystore", "bucket for revision blobs")
	flags.String("s3.region", "us-east-1", "bucket region")
	flags.Bool("s3.use-ssl", false, "connect to s3 over tls")
	flags.String("database-url", "postgres://localhost/entitystore?sslmode=disable", "metadata index connection string")
	flags.String("redis.address", "", "redis host:port for the referenced-entity cache, empty disables it")
	flags.String("registry-dir", "", "property registry directory, empty uses an empty registry")
	flags.String("repository-name", "wikigraph", "repository name used in serialised output")
	flags.Bool("dev", false, "use development logging")
	flags.String("config", "", "optional config file")

	viper.SetEnvPrefix("ENTITYSTORE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindPFlags(flags)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() Config {
	return Config{
		API: api.Config{
			Address:      viper.GetString("address"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Blobs: s3store.Config{
			Endpoint:  viper.GetString("s3.endpoint"),
			AccessKey: viper.GetString("s3.access-key"),
			SecretKey: viper.GetString("s3.secret-key"),
			Bucket:    viper.GetString("s3.bucket"),
			Region:    viper.GetString("s3.region"),
			UseSSL:    viper.GetBool("s3.use-ssl"),
		},
		Index: pgindex.Config{
			URL: viper.GetString("database-url"),
		},
		CacheAddr: viper.GetString("redis.address"),
		Serializer: rdf.Config{
			RepositoryName: viper.GetString("repository-name"),
		},
		RegistryDir: viper.GetString("registry-dir"),
		Dev:         viper.GetBool("dev"),
	}
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func cmdRun(cmd *cobra.Command, args []string) error {
	if file := viper.GetString("config"); file != "" {
		viper.SetConfigFile(file)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
	}
	config := loadConfig()

	log, err := newLogger(config.Dev)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	blobs, err := s3store.Open(ctx, log.Named("s3store"), config.Blobs)
	if err != nil {
		return fmt.Errorf("opening blob store: %w", err)
	}
	defer func() { _ = blobs.Close() }()

	index, err := pgindex.Open(ctx, log.Named("pgindex"), config.Index)
	if err != nil {
		return fmt.Errorf("opening metadata index: %w", err)
	}
	defer func() { _ = index.Close() }()

	var meta rdf.MetaSource
	if config.CacheAddr != "" {
		cache, err := entitycache.Open(ctx, entitycache.Config{Address: config.CacheAddr})
		if err != nil {
			return fmt.Errorf("opening entity cache: %w", err)
		}
		defer func() { _ = cache.Close() }()
		meta = cache
	}

	registry := rdf.NewRegistry()
	if config.RegistryDir != "" {
		registry, err = rdf.LoadRegistry(config.RegistryDir)
		if err != nil {
			return fmt.Errorf("loading property registry: %w", err)
		}
		log.Info("property registry loaded",
			zap.String("dir", config.RegistryDir),
			zap.Int("properties", registry.Len()))
	}

	service := revision.NewService(log.Named("revision"), blobs, index)
	serializer := rdf.NewSerializer(log.Named("rdf"), registry, meta, config.Serializer)

	listener, err := net.Listen("tcp", config.API.Address)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", config.API.Address, err)
	}
	server := api.NewServer(log.Named("api"), listener, service, serializer, config.API)

	log.Info("entitystore started", zap.String("address", listener.Addr().String()))

	return server.Run(ctx)
}
