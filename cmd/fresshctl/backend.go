package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/EthanShoeDev/fressh-sub000/kvstore"
	"github.com/EthanShoeDev/fressh-sub000/kvstore/bolt"
	"github.com/EthanShoeDev/fressh-sub000/kvstore/leveldb"
	"github.com/EthanShoeDev/fressh-sub000/kvstore/minio"
	"github.com/EthanShoeDev/fressh-sub000/kvstore/pebble"
	"github.com/EthanShoeDev/fressh-sub000/kvstore/s3"
)

// backends lists the accepted FRESSH_BACKEND values.
var backends = []string{"memory", "local", "bolt", "pebble", "leveldb", "s3", "dynamodb", "minio"}

// openStore builds the backing store selected by cfg. Stores holding files
// or handles implement io.Closer and are released by Vault.Close.
func openStore(ctx context.Context, cfg *Config) (kvstore.Store, error) {
	switch cfg.Backend {
	case "bolt", "pebble", "leveldb":
		if err := os.MkdirAll(cfg.Path, 0o700); err != nil {
			return nil, err
		}
	}

	switch cfg.Backend {
	case "memory":
		return kvstore.NewMemoryStore(), nil
	case "local":
		return kvstore.NewLocalStore(cfg.Path), nil
	case "bolt":
		return bolt.Open(filepath.Join(cfg.Path, "fressh.db"))
	case "pebble":
		return pebble.Open(filepath.Join(cfg.Path, "pebble"))
	case "leveldb":
		return leveldb.Open(filepath.Join(cfg.Path, "leveldb"))
	case "s3":
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("backend s3 requires FRESSH_BUCKET")
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}
		return s3.NewStore(awss3.NewFromConfig(awsCfg), cfg.Bucket, cfg.Prefix), nil
	case "dynamodb":
		if cfg.Table == "" {
			return nil, fmt.Errorf("backend dynamodb requires FRESSH_TABLE")
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}
		return s3.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), cfg.Table, cfg.Partition), nil
	case "minio":
		if cfg.Minio.Endpoint == "" || cfg.Bucket == "" {
			return nil, fmt.Errorf("backend minio requires FRESSH_MINIO_ENDPOINT and FRESSH_BUCKET")
		}
		client, err := miniogo.New(cfg.Minio.Endpoint, &miniogo.Options{
			Creds:  credentials.NewStaticV4(cfg.Minio.AccessKey, cfg.Minio.SecretKey, ""),
			Secure: cfg.Minio.Secure,
		})
		if err != nil {
			return nil, fmt.Errorf("creating minio client: %w", err)
		}
		return minio.NewStore(client, cfg.Bucket, cfg.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (one of %v)", cfg.Backend, backends)
	}
}
