// Package storage provides database models and repositories for the context engine.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brightline-ai/context-engine/internal/analysis"
)

// Common errors
var (
	ErrNotFound    = errors.New("record not found")
	ErrConflict    = errors.New("record conflict")
	ErrInvalidSite = errors.New("invalid site")
)

// DB represents a database connection interface.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SiteRepository handles site CRUD operations.
type SiteRepository struct {
	db DB
}

// NewSiteRepository creates a new site repository.
func NewSiteRepository(db DB) *SiteRepository {
	return &SiteRepository{db: db}
}

// Create creates a new site.
func (r *SiteRepository) Create(ctx context.Context, site *Site) error {
	if site.ID == uuid.Nil {
		site.ID = uuid.New()
	}
	site.CreatedAt = time.Now()
	site.UpdatedAt = time.Now()

	query := `
		INSERT INTO sites (id, name, domain, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		site.ID, site.Name, site.Domain, site.CreatedAt, site.UpdatedAt,
	)
	return err
}

// GetByID retrieves a site by ID.
func (r *SiteRepository) GetByID(ctx context.Context, id uuid.UUID) (*Site, error) {
	query := `
		SELECT id, name, domain, created_at, updated_at
		FROM sites WHERE id = $1
	`
	site := &Site{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&site.ID, &site.Name, &site.Domain, &site.CreatedAt, &site.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return site, err
}

// GetByDomain retrieves a site by its domain.
func (r *SiteRepository) GetByDomain(ctx context.Context, domain string) (*Site, error) {
	query := `
		SELECT id, name, domain, created_at, updated_at
		FROM sites WHERE domain = $1
	`
	site := &Site{}
	err := r.db.QueryRowContext(ctx, query, domain).Scan(
		&site.ID, &site.Name, &site.Domain, &site.CreatedAt, &site.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return site, err
}

// List lists all sites.
func (r *SiteRepository) List(ctx context.Context) ([]*Site, error) {
	query := `
		SELECT id, name, domain, created_at, updated_at
		FROM sites ORDER BY name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sites []*Site
	for rows.Next() {
		site := &Site{}
		if err := rows.Scan(
			&site.ID, &site.Name, &site.Domain, &site.CreatedAt, &site.UpdatedAt,
		); err != nil {
			return nil, err
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

// DocumentRepository handles document CRUD plus the persisted analysis columns.
type DocumentRepository struct {
	db DB
}

// NewDocumentRepository creates a new document repository.
func NewDocumentRepository(db DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, site_id, title, raw_content, summary, key_points, metadata,
		content_type, structured_data, intent_keywords, primary_products,
		confidence_score, analyzed_at, created_at, updated_at`

// Create creates a new document.
func (r *DocumentRepository) Create(ctx context.Context, doc *Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = time.Now()

	keyPoints, structured, keywords, products, err := marshalDocumentJSON(doc)
	if err != nil {
		return fmt.Errorf("marshal document fields: %w", err)
	}

	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err = r.db.ExecContext(ctx, query,
		doc.ID, doc.SiteID, doc.Title, doc.RawContent, doc.Summary, keyPoints,
		nullableJSON(doc.Metadata), nullString(string(doc.ContentType)), structured,
		keywords, products, doc.ConfidenceScore, doc.AnalyzedAt,
		doc.CreatedAt, doc.UpdatedAt,
	)
	return err
}

// GetByID retrieves a document by ID with site scoping.
func (r *DocumentRepository) GetByID(ctx context.Context, siteID, docID uuid.UUID) (*Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE id = $1 AND site_id = $2
	`
	doc, err := scanDocument(r.db.QueryRowContext(ctx, query, docID, siteID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return doc, err
}

// ListBySite lists all documents for a site, the relevance scorer's input.
func (r *DocumentRepository) ListBySite(ctx context.Context, siteID uuid.UUID) ([]*Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE site_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, siteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Update rewrites a document's content fields. Analysis columns are updated
// separately through UpdateAnalysis after reanalysis.
func (r *DocumentRepository) Update(ctx context.Context, doc *Document) error {
	doc.UpdatedAt = time.Now()

	keyPoints, err := json.Marshal(doc.KeyPoints)
	if err != nil {
		return fmt.Errorf("marshal key points: %w", err)
	}

	query := `
		UPDATE documents SET
			title = $1, raw_content = $2, summary = $3, key_points = $4,
			metadata = $5, updated_at = $6
		WHERE id = $7 AND site_id = $8
	`
	result, err := r.db.ExecContext(ctx, query,
		doc.Title, doc.RawContent, doc.Summary, string(keyPoints),
		nullableJSON(doc.Metadata), doc.UpdatedAt, doc.ID, doc.SiteID,
	)
	if err != nil {
		return err
	}
	return requireRowsAffected(result)
}

// UpdateAnalysis persists a freshly computed analysis onto the document row.
func (r *DocumentRepository) UpdateAnalysis(ctx context.Context, siteID, docID uuid.UUID, result analysis.ContentAnalysisResult, at time.Time) error {
	structured, err := json.Marshal(result.StructuredData)
	if err != nil {
		return fmt.Errorf("marshal structured data: %w", err)
	}
	keywords, err := json.Marshal(result.IntentKeywords)
	if err != nil {
		return fmt.Errorf("marshal intent keywords: %w", err)
	}
	products, err := json.Marshal(result.PrimaryProducts)
	if err != nil {
		return fmt.Errorf("marshal primary products: %w", err)
	}

	query := `
		UPDATE documents SET
			content_type = $1, structured_data = $2, intent_keywords = $3,
			primary_products = $4, confidence_score = $5, analyzed_at = $6, updated_at = $7
		WHERE id = $8 AND site_id = $9
	`
	res, err := r.db.ExecContext(ctx, query,
		string(result.ContentType), string(structured), string(keywords),
		string(products), result.ConfidenceScore, at, at, docID, siteID,
	)
	if err != nil {
		return err
	}
	return requireRowsAffected(res)
}

// Delete removes a document.
func (r *DocumentRepository) Delete(ctx context.Context, siteID, docID uuid.UUID) error {
	query := `DELETE FROM documents WHERE id = $1 AND site_id = $2`
	result, err := r.db.ExecContext(ctx, query, docID, siteID)
	if err != nil {
		return err
	}
	return requireRowsAffected(result)
}

// Repositories bundles all repositories together.
type Repositories struct {
	Sites     *SiteRepository
	Documents *DocumentRepository
}

// NewRepositories creates all repositories with the given database connection.
func NewRepositories(db DB) *Repositories {
	return &Repositories{
		Sites:     NewSiteRepository(db),
		Documents: NewDocumentRepository(db),
	}
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(s scanner) (*Document, error) {
	doc := &Document{}
	var (
		rawContent  sql.NullString
		summary     sql.NullString
		keyPoints   sql.NullString
		metadata    sql.NullString
		contentType sql.NullString
		structured  sql.NullString
		keywords    sql.NullString
		products    sql.NullString
		confidence  sql.NullFloat64
		analyzedAt  sql.NullTime
	)

	err := s.Scan(
		&doc.ID, &doc.SiteID, &doc.Title, &rawContent, &summary, &keyPoints,
		&metadata, &contentType, &structured, &keywords, &products,
		&confidence, &analyzedAt, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	doc.RawContent = rawContent.String
	doc.Summary = summary.String
	doc.ContentType = analysis.ContentType(contentType.String)
	doc.ConfidenceScore = confidence.Float64
	if analyzedAt.Valid {
		doc.AnalyzedAt = &analyzedAt.Time
	}
	if metadata.Valid && metadata.String != "" {
		doc.Metadata = json.RawMessage(metadata.String)
	}

	if err := unmarshalInto(keyPoints, &doc.KeyPoints); err != nil {
		return nil, fmt.Errorf("unmarshal key points: %w", err)
	}
	if err := unmarshalInto(structured, &doc.StructuredData); err != nil {
		return nil, fmt.Errorf("unmarshal structured data: %w", err)
	}
	if err := unmarshalInto(keywords, &doc.IntentKeywords); err != nil {
		return nil, fmt.Errorf("unmarshal intent keywords: %w", err)
	}
	if err := unmarshalInto(products, &doc.PrimaryProducts); err != nil {
		return nil, fmt.Errorf("unmarshal primary products: %w", err)
	}
	return doc, nil
}

func marshalDocumentJSON(doc *Document) (keyPoints, structured, keywords, products string, err error) {
	kp, err := json.Marshal(doc.KeyPoints)
	if err != nil {
		return "", "", "", "", err
	}
	sd, err := json.Marshal(doc.StructuredData)
	if err != nil {
		return "", "", "", "", err
	}
	kw, err := json.Marshal(doc.IntentKeywords)
	if err != nil {
		return "", "", "", "", err
	}
	pp, err := json.Marshal(doc.PrimaryProducts)
	if err != nil {
		return "", "", "", "", err
	}
	return string(kp), string(sd), string(kw), string(pp), nil
}

func unmarshalInto(col sql.NullString, dst interface{}) error {
	if !col.Valid || col.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(col.String), dst)
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullableJSON(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func requireRowsAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
