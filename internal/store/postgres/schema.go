package postgres

// Schema is the DDL applied by cmd/migrate. The two indexes cover the
// engine's query axes: partition range scans and category filtering.
const Schema = `
CREATE TABLE IF NOT EXISTS transactions (
    id            UUID PRIMARY KEY,
    user_id       TEXT        NOT NULL,
    date          TIMESTAMPTZ NOT NULL,
    amount_paise  BIGINT      NOT NULL,
    category      TEXT        NOT NULL,
    description   TEXT        NOT NULL,
    is_confirmed  BOOLEAN     NOT NULL DEFAULT FALSE,
    created_at    TIMESTAMPTZ NOT NULL,
    updated_at    TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_user_confirmed_date
    ON transactions (user_id, is_confirmed, date);

CREATE INDEX IF NOT EXISTS idx_transactions_user_category
    ON transactions (user_id, category);
`
