package fressh

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/EthanShoeDev/fressh-sub000/engine"
	"golang.org/x/crypto/ssh"
)

// KeysNamespace is the namespace of the key directory.
const KeysNamespace = "keys"

// KeyMetadata is stored in the manifest next to each key.
type KeyMetadata struct {
	Priority    int    `json:"priority"`
	CreatedAtMs int64  `json:"createdAtMs"`
	Label       string `json:"label,omitempty"`
	IsDefault   bool   `json:"isDefault,omitempty"`
}

// Key is a stored private key.
type Key struct {
	ID string
	KeyMetadata

	// PrivateKey is the opaque key material. It is nil for listings without
	// values and when Err is set.
	PrivateKey []byte

	// Err is set by ListWithValues when the key material cannot be read.
	Err error
}

// KeyInput is the argument of KeyDirectory.Put.
type KeyInput struct {
	ID         string
	PrivateKey []byte
	Priority   int
	Label      string
	IsDefault  bool

	// CreatedAtMs defaults to the current time.
	CreatedAtMs int64
}

// KeyDirectory stores private keys in the "keys" namespace.
type KeyDirectory struct {
	dir      *directory[KeyMetadata]
	validate bool
	now      func() time.Time
}

// Put creates or replaces a key. With IsDefault set, every other key loses
// its default flag.
func (k *KeyDirectory) Put(ctx context.Context, in KeyInput) error {
	if k.validate {
		if err := validatePrivateKey(in.ID, in.PrivateKey); err != nil {
			k.dir.logger.LogUpsert(ctx, in.ID, len(in.PrivateKey), err)
			return err
		}
	}

	meta := KeyMetadata{
		Priority:    in.Priority,
		CreatedAtMs: in.CreatedAtMs,
		Label:       in.Label,
		IsDefault:   in.IsDefault,
	}
	if meta.CreatedAtMs == 0 {
		meta.CreatedAtMs = k.now().UnixMilli()
	}

	err := k.dir.upsert(ctx, engine.UpsertInput[KeyMetadata]{
		ID:       in.ID,
		Metadata: meta,
		Value:    in.PrivateKey,
	})
	if err != nil {
		return err
	}
	if in.IsDefault {
		return k.clearDefaults(ctx, in.ID)
	}
	return nil
}

// Get returns the key id with its key material.
func (k *KeyDirectory) Get(ctx context.Context, id string) (*Key, error) {
	rec, err := k.dir.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Key{ID: rec.ID, KeyMetadata: rec.Metadata, PrivateKey: rec.Value}, nil
}

// List returns every key without key material, ordered by priority, then
// creation time, then id.
func (k *KeyDirectory) List(ctx context.Context) ([]Key, error) {
	entries, err := k.dir.list(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]Key, len(entries))
	for i, e := range entries {
		keys[i] = Key{ID: e.ID, KeyMetadata: e.Metadata}
	}
	sortKeys(keys)
	return keys, nil
}

// ListWithValues returns every key with its key material, in List order.
// A key whose material cannot be read has Err set and does not fail the call.
func (k *KeyDirectory) ListWithValues(ctx context.Context) ([]Key, error) {
	results, err := k.dir.listWithValues(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]Key, len(results))
	for i, r := range results {
		keys[i] = Key{ID: r.ID, KeyMetadata: r.Metadata, PrivateKey: bytes.Clone(r.Value), Err: r.Err}
	}
	sortKeys(keys)
	return keys, nil
}

// Delete removes the key id.
func (k *KeyDirectory) Delete(ctx context.Context, id string) error {
	return k.dir.delete(ctx, id)
}

// SetDefault marks id as the default key and clears the flag on all others.
func (k *KeyDirectory) SetDefault(ctx context.Context, id string) error {
	key, err := k.Get(ctx, id)
	if err != nil {
		return err
	}
	if !key.IsDefault {
		key.IsDefault = true
		if err := k.rewrite(ctx, key); err != nil {
			return err
		}
	}
	return k.clearDefaults(ctx, id)
}

// Default returns the default key. If several keys carry the flag, the first
// in List order wins.
func (k *KeyDirectory) Default(ctx context.Context) (*Key, error) {
	keys, err := k.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, key := range keys {
		if key.IsDefault {
			return k.Get(ctx, key.ID)
		}
	}
	return nil, ErrNoDefaultKey
}

// PublicKey derives the public key of id. Passphrase-protected keys fail
// with *ssh.PassphraseMissingError.
func (k *KeyDirectory) PublicKey(ctx context.Context, id string) (ssh.PublicKey, error) {
	key, err := k.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	signer, err := ssh.ParsePrivateKey(key.PrivateKey)
	if err != nil {
		var missing *ssh.PassphraseMissingError
		if errors.As(err, &missing) {
			return nil, err
		}
		return nil, corrupt(id, err)
	}
	return signer.PublicKey(), nil
}

func (k *KeyDirectory) clearDefaults(ctx context.Context, except string) error {
	keys, err := k.List(ctx)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if key.ID == except || !key.IsDefault {
			continue
		}
		full, err := k.Get(ctx, key.ID)
		if err != nil {
			return fmt.Errorf("clear default of %q: %w", key.ID, err)
		}
		full.IsDefault = false
		if err := k.rewrite(ctx, full); err != nil {
			return fmt.Errorf("clear default of %q: %w", key.ID, err)
		}
	}
	return nil
}

func (k *KeyDirectory) rewrite(ctx context.Context, key *Key) error {
	return k.dir.upsert(ctx, engine.UpsertInput[KeyMetadata]{
		ID:       key.ID,
		Metadata: key.KeyMetadata,
		Value:    key.PrivateKey,
	})
}

func validatePrivateKey(id string, pem []byte) error {
	_, err := ssh.ParseRawPrivateKey(pem)
	if err == nil {
		return nil
	}
	var missing *ssh.PassphraseMissingError
	if errors.As(err, &missing) {
		return nil
	}
	return &InvalidKeyError{ID: id, cause: err}
}

func sortKeys(keys []Key) {
	slices.SortStableFunc(keys, func(a, b Key) int {
		return cmp.Or(
			cmp.Compare(a.Priority, b.Priority),
			cmp.Compare(a.CreatedAtMs, b.CreatedAtMs),
			cmp.Compare(a.ID, b.ID),
		)
	})
}
