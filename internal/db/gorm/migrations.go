package gorm

import (
	"fmt"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// runMigrations runs all database migrations using gormigrate. embeddingDims
// fixes the vector column dimension; changing it requires a full re-embed,
// never a runtime adapter.
func runMigrations(db *gorm.DB, embeddingDims int) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		// Migration 001: pgvector extension
		{
			ID: "001_vector_extension",
			Migrate: func(tx *gorm.DB) error {
				return tx.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error
			},
			Rollback: func(tx *gorm.DB) error {
				return nil
			},
		},

		// Migration 002: documents and chunks
		{
			ID: "002_documents",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&Document{}); err != nil {
					return err
				}
				if err := tx.AutoMigrate(&DocumentChunk{}); err != nil {
					return err
				}
				sqls := []string{
					fmt.Sprintf(`ALTER TABLE document_chunks ADD COLUMN IF NOT EXISTS embedding vector(%d)`, embeddingDims),
					`ALTER TABLE document_chunks
					 DROP CONSTRAINT IF EXISTS fk_chunks_document,
					 ADD CONSTRAINT fk_chunks_document
					 FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE`,
				}
				for _, s := range sqls {
					if err := tx.Exec(s).Error; err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("document_chunks", "documents")
			},
		},

		// Migration 003: cosine-distance index for scoped chunk search
		{
			ID: "003_chunk_embedding_index",
			Migrate: func(tx *gorm.DB) error {
				return tx.Exec(
					`CREATE INDEX IF NOT EXISTS idx_chunks_embedding
					 ON document_chunks USING ivfflat (embedding vector_cosine_ops)
					 WITH (lists = 100)`,
				).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Exec("DROP INDEX IF EXISTS idx_chunks_embedding").Error
			},
		},

		// Migration 004: party members (read dependency for role resolution)
		{
			ID: "004_party_members",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&PartyMember{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("party_members")
			},
		},

		// Migration 005: tasks and comments
		{
			ID: "005_tasks",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&Task{}); err != nil {
					return err
				}
				if err := tx.AutoMigrate(&TaskComment{}); err != nil {
					return err
				}
				return tx.Exec(
					`ALTER TABLE task_comments
					 DROP CONSTRAINT IF EXISTS fk_comments_task,
					 ADD CONSTRAINT fk_comments_task
					 FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE CASCADE`,
				).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("task_comments", "tasks")
			},
		},

		// Migration 006: outbox events
		{
			ID: "006_outbox_events",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&OutboxEvent{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("outbox_events")
			},
		},
	})

	if err := m.Migrate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
