// Package s3 provides AWS-backed implementations of the kvstore.Store interface.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "fressh/")
//
//	// or, for low latency single-item access:
//	store := s3.NewDynamoStore(dynamodb.NewFromConfig(cfg), "fressh-kv", "device-1")
//
// # Features
//
//   - One object (or item) per key
//   - Automatic pagination for listing
//   - Configurable prefix / partition for multi-tenant isolation
package s3
