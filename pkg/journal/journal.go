// Package journal keeps an operator-facing log of booking submission
// outcomes so degraded acceptances can be reconciled against the remote
// store. It is a triage aid, not the booking record of authority.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type Config struct {
	DSN string `split_words:"true"`
}

// Entry is one booking submission outcome.
type Entry struct {
	bun.BaseModel `bun:"table:booking_outcomes,alias:bo"`

	ID        int64     `bun:"id,pk,autoincrement"`
	CallID    string    `bun:"call_id"`
	GuestName string    `bun:"guest_name"`
	Phone     string    `bun:"phone"`
	CheckIn   string    `bun:"check_in"`
	CheckOut  string    `bun:"check_out"`
	Beds      string    `bun:"beds"`
	Nights    int       `bun:"nights"`
	Total     int64     `bun:"total"`
	Outcome   string    `bun:"outcome"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Journal records outcomes. Appends are best-effort; callers log and
// continue on error.
type Journal interface {
	Append(ctx context.Context, e Entry) error
}

// Postgres persists entries through bun.
type Postgres struct {
	db *bun.DB
}

var _ Journal = (*Postgres)(nil)

func NewPostgres(cfg Config) (*Postgres, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("journal dsn is required")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	return &Postgres{db: db}, nil
}

// EnsureSchema creates the outcomes table if it does not exist yet.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.db.NewCreateTable().
		Model((*Entry)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

func (p *Postgres) Append(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := p.db.NewInsert().Model(&e).Exec(ctx)
	return err
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

// Nop discards every entry. Used when no DSN is configured.
type Nop struct{}

func (Nop) Append(context.Context, Entry) error { return nil }
