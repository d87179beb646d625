package postgres

// Schema creates the tables this service owns plus the read-only users view
// it expects. Applied by cmd/seed for local development; production uses the
// platform's migration pipeline.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
    id              UUID PRIMARY KEY,
    username        TEXT NOT NULL,
    email           TEXT NOT NULL,
    email_verified  BOOLEAN NOT NULL DEFAULT FALSE,
    registered_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS payments (
    id                  UUID PRIMARY KEY,
    user_id             UUID NOT NULL REFERENCES users(id),
    plan                TEXT NOT NULL,
    amount              BIGINT NOT NULL,
    currency            TEXT NOT NULL,
    gateway_payment_id  TEXT,
    status              TEXT NOT NULL DEFAULT 'pending',
    failure_reason      TEXT,
    created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    paid_at             TIMESTAMPTZ
);

CREATE UNIQUE INDEX IF NOT EXISTS payments_gateway_payment_id_key
    ON payments (gateway_payment_id)
    WHERE gateway_payment_id IS NOT NULL;

CREATE INDEX IF NOT EXISTS payments_user_id_idx ON payments (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS subscriptions (
    id          UUID PRIMARY KEY,
    user_id     UUID NOT NULL UNIQUE REFERENCES users(id),
    plan        TEXT NOT NULL,
    is_active   BOOLEAN NOT NULL DEFAULT FALSE,
    auto_renew  BOOLEAN NOT NULL DEFAULT TRUE,
    starts_at   TIMESTAMPTZ,
    expires_at  TIMESTAMPTZ,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
