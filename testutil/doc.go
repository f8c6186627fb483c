// Package testutil provides testing utilities for the directory engine.
//
// This package is intended for use in tests and benchmarks only.
//
// # Deterministic Payloads
//
//	rng := testutil.NewRNG(seed)
//	value := rng.Bytes(5000)
//
// # Call Counting
//
//	st := testutil.NewCountingStore(kvstore.NewMemoryStore())
//	_ = dir.UpsertEntry(ctx, in)
//	st.Count(testutil.OpSet) // number of Set calls observed
//
// # Fault Injection
//
//	st := testutil.NewFaultyStore(kvstore.NewMemoryStore())
//	st.AddRule("-manifestChunk-", testutil.Fault{Op: testutil.OpSet, Err: boom})
package testutil
