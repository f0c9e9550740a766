package store

import (
	"time"

	sq "github.com/Masterminds/squirrel"
)

// Shared by the SQL backends: one row per document key.
const documentsTable = "documents"

const upsertSuffix = "ON CONFLICT (doc_key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at"

func selectDocument(ph sq.PlaceholderFormat, key string) sq.SelectBuilder {
	return sq.Select("body").
		From(documentsTable).
		Where(sq.Eq{"doc_key": key}).
		PlaceholderFormat(ph)
}

func upsertDocument(ph sq.PlaceholderFormat, key string, body []byte, now time.Time) sq.InsertBuilder {
	return sq.Insert(documentsTable).
		Columns("doc_key", "body", "updated_at").
		Values(key, string(body), now).
		Suffix(upsertSuffix).
		PlaceholderFormat(ph)
}

func listDocuments(ph sq.PlaceholderFormat, prefix string) sq.SelectBuilder {
	return sq.Select("doc_key").
		From(documentsTable).
		Where(sq.Like{"doc_key": prefix + "%"}).
		OrderBy("doc_key ASC").
		PlaceholderFormat(ph)
}
