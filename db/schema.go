package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Схема применяется идемпотентно на старте. На именованные констрейнты
// завязан маппинг ошибок в репозиториях, менять имена без миграции нельзя.
const schema = `
CREATE TABLE IF NOT EXISTS clubs (
    id         SERIAL PRIMARY KEY,
    name       TEXT NOT NULL,
    logo_key   TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS staff_users (
    id            SERIAL PRIMARY KEY,
    club_id       INT NOT NULL REFERENCES clubs (id),
    full_name     TEXT NOT NULL,
    email         TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT staff_users_email_key UNIQUE (email)
);

CREATE TABLE IF NOT EXISTS players (
    id                  SERIAL PRIMARY KEY,
    club_id             INT NOT NULL REFERENCES clubs (id),
    full_name           TEXT NOT NULL,
    phone               TEXT NOT NULL,
    tier                TEXT NOT NULL,
    membership_end_date DATE,
    photo_key           TEXT,
    created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT players_club_id_phone_key UNIQUE (club_id, phone)
);

CREATE TABLE IF NOT EXISTS services (
    id         SERIAL PRIMARY KEY,
    club_id    INT NOT NULL REFERENCES clubs (id),
    name       TEXT NOT NULL,
    unit_price BIGINT NOT NULL,
    unit_label TEXT NOT NULL DEFAULT '',
    status     TEXT NOT NULL,
    time_based BOOLEAN NOT NULL DEFAULT FALSE,
    CONSTRAINT services_club_id_name_key UNIQUE (club_id, name)
);

CREATE TABLE IF NOT EXISTS sessions (
    id             SERIAL PRIMARY KEY,
    club_id        INT NOT NULL REFERENCES clubs (id),
    player_id      INT NOT NULL REFERENCES players (id),
    check_in_time  TIMESTAMPTZ NOT NULL,
    check_out_time TIMESTAMPTZ,
    status         TEXT NOT NULL,
    total          BIGINT NOT NULL DEFAULT 0
);

CREATE UNIQUE INDEX IF NOT EXISTS sessions_one_playing_per_player
    ON sessions (club_id, player_id)
    WHERE status = 'playing';

CREATE TABLE IF NOT EXISTS session_line_items (
    id           SERIAL PRIMARY KEY,
    club_id      INT NOT NULL REFERENCES clubs (id),
    session_id   INT NOT NULL REFERENCES sessions (id),
    service_id   INT NOT NULL REFERENCES services (id),
    service_name TEXT NOT NULL,
    quantity     INT NOT NULL,
    unit_price   BIGINT NOT NULL,
    total        BIGINT NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS session_line_items_session_id_idx
    ON session_line_items (session_id);

CREATE TABLE IF NOT EXISTS membership_payments (
    id             SERIAL PRIMARY KEY,
    club_id        INT NOT NULL REFERENCES clubs (id),
    player_id      INT NOT NULL REFERENCES players (id),
    amount         BIGINT NOT NULL,
    payment_date   TIMESTAMPTZ NOT NULL,
    coverage_start DATE NOT NULL,
    coverage_end   DATE NOT NULL,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS expenses (
    id         SERIAL PRIMARY KEY,
    club_id    INT NOT NULL REFERENCES clubs (id),
    name       TEXT NOT NULL,
    amount     BIGINT NOT NULL,
    date       TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// EnsureSchema создаёт недостающие таблицы и индексы.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
