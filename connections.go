package fressh

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/EthanShoeDev/fressh-sub000/codec"
	"github.com/EthanShoeDev/fressh-sub000/engine"
	"github.com/go-playground/validator/v10"
)

// ConnectionsNamespace is the namespace of the connection directory.
const ConnectionsNamespace = "connections"

// SecurityType selects how a connection authenticates.
type SecurityType string

const (
	SecurityPassword SecurityType = "password"
	SecurityKey      SecurityType = "key"
)

// Security holds the credentials of a connection. Password is set only for
// SecurityPassword, KeyID only for SecurityKey.
type Security struct {
	Type     SecurityType `json:"type" validate:"required,oneof=password key"`
	Password string       `json:"password,omitempty" validate:"required_if=Type password"`
	KeyID    string       `json:"keyId,omitempty" validate:"required_if=Type key"`
}

// Connection is a saved SSH connection profile.
type Connection struct {
	Host     string   `json:"host" validate:"required,hostname_rfc1123|ip"`
	Port     int      `json:"port" validate:"required,min=1,max=65535"`
	Username string   `json:"username" validate:"required,max=255,excludesall=@"`
	Security Security `json:"security"`
}

// ID returns the directory id of the connection, {username}@{host}:{port}.
func (c Connection) ID() string {
	return fmt.Sprintf("%s@%s:%d", c.Username, c.Host, c.Port)
}

// Validate checks the connection profile.
func (c Connection) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &InvalidConnectionError{cause: err}
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		// Drop the leading struct name.
		ns := fe.Namespace()
		if i := strings.IndexByte(ns, '.'); i >= 0 {
			ns = ns[i+1:]
		}
		fields = append(fields, ns)
	}
	return &InvalidConnectionError{Fields: fields, cause: err}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(validateSecurity, Security{})
	return v
}

// validateSecurity rejects credentials that do not belong to the type.
func validateSecurity(sl validator.StructLevel) {
	s := sl.Current().Interface().(Security)
	switch s.Type {
	case SecurityPassword:
		if s.KeyID != "" {
			sl.ReportError(s.KeyID, "keyId", "KeyID", "excluded_with_password", "")
		}
	case SecurityKey:
		if s.Password != "" {
			sl.ReportError(s.Password, "password", "Password", "excluded_with_key", "")
		}
	}
}

// ConnectionMetadata is stored in the manifest next to each connection.
type ConnectionMetadata struct {
	Priority     int   `json:"priority"`
	CreatedAtMs  int64 `json:"createdAtMs"`
	ModifiedAtMs int64 `json:"modifiedAtMs"`
}

// ConnectionRecord is a stored connection.
type ConnectionRecord struct {
	ID string
	ConnectionMetadata

	// Connection is the zero value for listings without values and when
	// Err is set.
	Connection Connection

	// Err is set by ListWithValues when the profile cannot be read or no
	// longer validates. It matches ErrCorruptEntry.
	Err error
}

// ConnectionDirectory stores connection profiles in the "connections" namespace.
type ConnectionDirectory struct {
	dir   *directory[ConnectionMetadata]
	codec codec.Codec
	now   func() time.Time
}

// Save validates and stores conn under conn.ID() and returns the id. An
// existing profile keeps its createdAtMs; modifiedAtMs is always updated.
func (c *ConnectionDirectory) Save(ctx context.Context, conn Connection, priority int) (string, error) {
	id := conn.ID()
	if err := conn.Validate(); err != nil {
		c.dir.logger.LogUpsert(ctx, id, 0, err)
		return "", err
	}
	value, err := c.codec.Marshal(conn)
	if err != nil {
		return "", err
	}

	now := c.now().UnixMilli()
	meta := ConnectionMetadata{Priority: priority, CreatedAtMs: now, ModifiedAtMs: now}

	entries, err := c.dir.list(ctx)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if e.ID == id {
			meta.CreatedAtMs = e.Metadata.CreatedAtMs
			break
		}
	}

	err = c.dir.upsert(ctx, engine.UpsertInput[ConnectionMetadata]{
		ID:       id,
		Metadata: meta,
		Value:    value,
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Get returns the connection id. A stored profile that fails to decode or
// validate is reported as ErrCorruptEntry.
func (c *ConnectionDirectory) Get(ctx context.Context, id string) (*ConnectionRecord, error) {
	rec, err := c.dir.get(ctx, id)
	if err != nil {
		return nil, err
	}
	conn, err := c.decode(id, rec.Value)
	if err != nil {
		c.dir.logger.WarnContext(ctx, "stored connection rejected", "id", id, "error", err)
		return nil, err
	}
	return &ConnectionRecord{ID: rec.ID, ConnectionMetadata: rec.Metadata, Connection: conn}, nil
}

// List returns every connection without its profile, ordered by priority,
// then most recently modified first, then id.
func (c *ConnectionDirectory) List(ctx context.Context) ([]ConnectionRecord, error) {
	entries, err := c.dir.list(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ConnectionRecord, len(entries))
	for i, e := range entries {
		out[i] = ConnectionRecord{ID: e.ID, ConnectionMetadata: e.Metadata}
	}
	sortConnections(out)
	return out, nil
}

// ListWithValues returns every connection with its profile, in List order.
func (c *ConnectionDirectory) ListWithValues(ctx context.Context) ([]ConnectionRecord, error) {
	results, err := c.dir.listWithValues(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ConnectionRecord, len(results))
	for i, r := range results {
		out[i] = ConnectionRecord{ID: r.ID, ConnectionMetadata: r.Metadata, Err: r.Err}
		if r.Err != nil {
			continue
		}
		conn, err := c.decode(r.ID, r.Value)
		if err != nil {
			out[i].Err = err
			continue
		}
		out[i].Connection = conn
	}
	sortConnections(out)
	return out, nil
}

// Delete removes the connection id.
func (c *ConnectionDirectory) Delete(ctx context.Context, id string) error {
	return c.dir.delete(ctx, id)
}

func (c *ConnectionDirectory) decode(id string, value []byte) (Connection, error) {
	var conn Connection
	if err := c.codec.Unmarshal(value, &conn); err != nil {
		return Connection{}, corrupt(id, err)
	}
	if err := conn.Validate(); err != nil {
		return Connection{}, corrupt(id, err)
	}
	return conn, nil
}

func sortConnections(conns []ConnectionRecord) {
	slices.SortStableFunc(conns, func(a, b ConnectionRecord) int {
		return cmp.Or(
			cmp.Compare(a.Priority, b.Priority),
			cmp.Compare(b.ModifiedAtMs, a.ModifiedAtMs),
			cmp.Compare(a.ID, b.ID),
		)
	})
}
