package sqlite

// schema is applied in order on every Open; statements are idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS posts (
		id                  INTEGER PRIMARY KEY AUTOINCREMENT,
		post_id             TEXT    NOT NULL UNIQUE,
		author_username     TEXT    NOT NULL,
		author_display_name TEXT    NOT NULL DEFAULT '',
		content             TEXT    NOT NULL,
		likes               INTEGER NOT NULL DEFAULT 0,
		reshares            INTEGER NOT NULL DEFAULT 0,
		replies             INTEGER NOT NULL DEFAULT 0,
		views               INTEGER NOT NULL DEFAULT 0,
		posted_at           INTEGER,
		ingested_at         INTEGER NOT NULL,
		ai_description      TEXT    NOT NULL DEFAULT '',
		ai_topics           TEXT    NOT NULL DEFAULT '[]',
		ai_sentiment        TEXT,
		ai_entities         TEXT    NOT NULL DEFAULT '[]',
		search_tokens       TEXT    NOT NULL DEFAULT '',
		has_media           INTEGER NOT NULL DEFAULT 0,
		media_urls          TEXT    NOT NULL DEFAULT '[]',
		embedding           BLOB
	)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_posted_at ON posts(posted_at)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_author_posted_at ON posts(author_username, posted_at)`,

	`CREATE VIRTUAL TABLE IF NOT EXISTS posts_fts USING fts5(
		content,
		author_username,
		ai_description,
		ai_topics,
		search_tokens,
		content='posts',
		content_rowid='id'
	)`,
	`CREATE TRIGGER IF NOT EXISTS posts_ai AFTER INSERT ON posts BEGIN
		INSERT INTO posts_fts(rowid, content, author_username, ai_description, ai_topics, search_tokens)
		VALUES (new.id, new.content, new.author_username, new.ai_description, new.ai_topics, new.search_tokens);
	END`,
	`CREATE TRIGGER IF NOT EXISTS posts_ad AFTER DELETE ON posts BEGIN
		INSERT INTO posts_fts(posts_fts, rowid, content, author_username, ai_description, ai_topics, search_tokens)
		VALUES ('delete', old.id, old.content, old.author_username, old.ai_description, old.ai_topics, old.search_tokens);
	END`,
	`CREATE TRIGGER IF NOT EXISTS posts_au AFTER UPDATE ON posts BEGIN
		INSERT INTO posts_fts(posts_fts, rowid, content, author_username, ai_description, ai_topics, search_tokens)
		VALUES ('delete', old.id, old.content, old.author_username, old.ai_description, old.ai_topics, old.search_tokens);
		INSERT INTO posts_fts(rowid, content, author_username, ai_description, ai_topics, search_tokens)
		VALUES (new.id, new.content, new.author_username, new.ai_description, new.ai_topics, new.search_tokens);
	END`,

	`CREATE TABLE IF NOT EXISTS search_queries (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		original_query TEXT    NOT NULL,
		enhanced_query TEXT    NOT NULL DEFAULT '',
		intent         TEXT    NOT NULL DEFAULT '',
		result_count   INTEGER NOT NULL DEFAULT 0,
		created_at     INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_search_queries_created_at ON search_queries(created_at)`,
}
