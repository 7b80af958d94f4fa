package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	authclient "github.com/goliatone/go-auth-client"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// SessionModel is the Bun model for a persisted session
type SessionModel struct {
	bun.BaseModel `bun:"table:auth_sessions"`

	SessionKey string    `bun:"session_key,pk"`
	Payload    string    `bun:"payload,notnull"`
	UpdatedAt  time.Time `bun:"updated_at,notnull"`
}

var _ authclient.Persister = &BunPersister{}

// BunPersister stores the session in a SQL table
type BunPersister struct {
	db  *bun.DB
	key string
}

func NewBunPersister(db *bun.DB, key string) *BunPersister {
	if key == "" {
		key = DefaultSessionKey
	}
	return &BunPersister{db: db, key: key}
}

// OpenSQLite opens dsn with the sqlite shim driver
func OpenSQLite(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}
	sqldb.SetMaxOpenConns(1)
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// CreateTable creates the sessions table if missing
func (b *BunPersister) CreateTable(ctx context.Context) error {
	_, err := b.db.NewCreateTable().
		Model((*SessionModel)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

func (b *BunPersister) Load(ctx context.Context) (*authclient.Session, error) {
	var model SessionModel
	err := b.db.NewSelect().
		Model(&model).
		Where("session_key = ?", b.key).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	var session authclient.Session
	if err := json.Unmarshal([]byte(model.Payload), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (b *BunPersister) Save(ctx context.Context, session authclient.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}

	model := &SessionModel{
		SessionKey: b.key,
		Payload:    string(payload),
		UpdatedAt:  time.Now(),
	}

	_, err = b.db.NewInsert().
		Model(model).
		On("CONFLICT (session_key) DO UPDATE").
		Set("payload = EXCLUDED.payload").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (b *BunPersister) Clear(ctx context.Context) error {
	_, err := b.db.NewDelete().
		Model((*SessionModel)(nil)).
		Where("session_key = ?", b.key).
		Exec(ctx)
	return err
}
