package knowledge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS rag_documents (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	doc_type TEXT NOT NULL,
	exam TEXT,
	skill TEXT,
	topic TEXT,
	difficulty_band TEXT,
	content TEXT NOT NULL,
	metadata JSONB DEFAULT '{}'::jsonb,
	source_file TEXT,
	content_hash TEXT,
	embedding DOUBLE PRECISION[]
);
CREATE INDEX IF NOT EXISTS idx_rag_documents_doc_type ON rag_documents (doc_type);
CREATE INDEX IF NOT EXISTS idx_rag_documents_skill ON rag_documents (skill);
`

// PostgresStore is a PostgreSQL-backed Store implementation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed knowledge store and ensures
// the schema exists.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

const selectColumns = `id::text, doc_type, COALESCE(exam, ''), COALESCE(skill, ''), COALESCE(topic, ''),
	COALESCE(difficulty_band, ''), content, metadata, COALESCE(source_file, ''), COALESCE(content_hash, ''), embedding`

func (s *PostgresStore) InsertBatch(ctx context.Context, docs []Document) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, doc := range docs {
		if doc.Content == "" {
			return fmt.Errorf("insert %s: %w", doc.DocType, ErrEmptyContent)
		}
		if !doc.DocType.Valid() {
			return fmt.Errorf("insert: unknown doc type %q", doc.DocType)
		}

		metadata, err := json.Marshal(doc.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO rag_documents (doc_type, exam, skill, topic, difficulty_band, content, metadata, source_file, content_hash, embedding)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			string(doc.DocType),
			nullIfEmpty(doc.Exam),
			nullIfEmpty(doc.Skill),
			nullIfEmpty(doc.Topic),
			nullIfEmpty(doc.DifficultyBand),
			doc.Content,
			metadata,
			nullIfEmpty(doc.SourceFile),
			nullIfEmpty(doc.ContentHash),
			doc.Embedding,
		)
		if err != nil {
			return fmt.Errorf("insert %s document: %w", doc.DocType, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, docType DocType, limit int) ([]Document, error) {
	query := `SELECT ` + selectColumns + ` FROM rag_documents`
	var args []any
	if docType != "" {
		query += ` WHERE doc_type = $1`
		args = append(args, string(docType))
	}
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+selectColumns+` FROM rag_documents WHERE id = $1::uuid LIMIT 1`, id)
	if err != nil {
		return nil, fmt.Errorf("query document: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query document: %w", err)
		}
		return nil, ErrNotFound
	}
	return scanDocument(rows)
}

func (s *PostgresStore) FindSkillCard(ctx context.Context, skill string) (*Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+selectColumns+` FROM rag_documents
		 WHERE doc_type = $1 AND skill ILIKE '%' || $2 || '%'
		 LIMIT 1`,
		string(DocSkillCard), skill)
	if err != nil {
		return nil, fmt.Errorf("query skill card: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query skill card: %w", err)
		}
		return nil, ErrNotFound
	}
	return scanDocument(rows)
}

func (s *PostgresStore) Delete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	cmd, err := s.pool.Exec(ctx,
		`DELETE FROM rag_documents WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return 0, fmt.Errorf("delete documents: %w", err)
	}
	return cmd.RowsAffected(), nil
}

func (s *PostgresStore) DuplicateGroups(ctx context.Context) ([]DuplicateGroup, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT d.id::text, d.doc_type, d.content
		 FROM rag_documents d
		 JOIN (
		   SELECT content FROM rag_documents
		   GROUP BY content HAVING COUNT(id) > 1
		 ) dup ON dup.content = d.content
		 ORDER BY d.content`)
	if err != nil {
		return nil, fmt.Errorf("query duplicates: %w", err)
	}
	defer rows.Close()

	var groups []DuplicateGroup
	index := make(map[string]int)
	for rows.Next() {
		var id, docType, content string
		if err := rows.Scan(&id, &docType, &content); err != nil {
			return nil, fmt.Errorf("scan duplicate: %w", err)
		}
		i, ok := index[content]
		if !ok {
			index[content] = len(groups)
			groups = append(groups, DuplicateGroup{
				Preview: contentPreview(content),
				DocType: DocType(docType),
			})
			i = len(groups) - 1
		}
		groups[i].Count++
		groups[i].IDs = append(groups[i].IDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate duplicates: %w", err)
	}
	return groups, nil
}

func (s *PostgresStore) CleanDuplicates(ctx context.Context) (int64, error) {
	rows, err := s.pool.Query(ctx, `SELECT id::text, content FROM rag_documents`)
	if err != nil {
		return 0, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	var toDelete []string
	for rows.Next() {
		var id, content string
		if err := rows.Scan(&id, &content); err != nil {
			return 0, fmt.Errorf("scan document: %w", err)
		}
		if seen[content] {
			toDelete = append(toDelete, id)
			continue
		}
		seen[content] = true
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate documents: %w", err)
	}

	if len(toDelete) == 0 {
		return 0, nil
	}
	return s.Delete(ctx, toDelete)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*Document, error) {
	var doc Document
	var docType string
	var metadata []byte

	if err := row.Scan(
		&doc.ID,
		&docType,
		&doc.Exam,
		&doc.Skill,
		&doc.Topic,
		&doc.DifficultyBand,
		&doc.Content,
		&metadata,
		&doc.SourceFile,
		&doc.ContentHash,
		&doc.Embedding,
	); err != nil {
		return nil, fmt.Errorf("scan document: %w", err)
	}

	doc.DocType = DocType(docType)
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &doc.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return &doc, nil
}

func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}
