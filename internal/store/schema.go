package store

const schema = `
CREATE TABLE IF NOT EXISTS releases (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    token TEXT NOT NULL,
    version TEXT NOT NULL,
    url TEXT NOT NULL,
    sha256 TEXT NOT NULL,
    archive_path TEXT NOT NULL,
    recorded_at TIMESTAMP NOT NULL,
    UNIQUE (token, version)
);

CREATE TABLE IF NOT EXISTS events (
    id TEXT PRIMARY KEY,
    token TEXT NOT NULL,
    version TEXT,
    action TEXT NOT NULL,
    detail TEXT,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_releases_token ON releases(token);
CREATE INDEX IF NOT EXISTS idx_events_token ON events(token);
CREATE INDEX IF NOT EXISTS idx_events_created ON events(created_at);
`
