// Command backfill uploads the Markdown output of stored extraction results
// that have no object-storage key yet, for example results saved while
// storage was unavailable.
// Usage: go run ./cmd/backfill
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"

	"bolx/internal/assembler"
	"bolx/internal/config"
	"bolx/internal/domain"
	"bolx/internal/port"
	"bolx/internal/repository/postgres"
	s3storage "bolx/internal/storage/s3"
)

const batchSize = 100

type pendingResult struct {
	ID       uuid.UUID       `db:"id"`
	Result   json.RawMessage `db:"result"`
	Markdown string          `db:"markdown"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	storage, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("initializing S3 client: %w", err)
	}
	resultRepo := postgres.NewExtractionRepo(db)

	ctx := context.Background()
	var lastID uuid.UUID
	total, failed := 0, 0

	for {
		var rows []pendingResult
		err := db.SelectContext(ctx, &rows,
			`SELECT id, result, markdown
			 FROM extraction_results
			 WHERE output_key = '' AND id > $1
			 ORDER BY id
			 LIMIT $2`, lastID, batchSize)
		if err != nil {
			return fmt.Errorf("querying results after %s: %w", lastID, err)
		}
		if len(rows) == 0 {
			break
		}

		for i := range rows {
			row := &rows[i]
			lastID = row.ID

			markdown := row.Markdown
			if markdown == "" {
				var res domain.DocumentResult
				if err := json.Unmarshal(row.Result, &res); err != nil {
					log.Printf("WARN: skipping result %s: unmarshal result: %v", row.ID, err)
					failed++
					continue
				}
				markdown = assembler.RenderMarkdown(res)
			}

			key := cfg.S3.OutputPrefix + row.ID.String() + ".md"
			_, err := storage.Upload(ctx, port.UploadInput{
				Bucket:      cfg.S3.Bucket,
				Key:         key,
				Body:        bytes.NewReader([]byte(markdown)),
				ContentType: "text/markdown; charset=utf-8",
				Size:        int64(len(markdown)),
			})
			if err != nil {
				log.Printf("WARN: upload failed for result %s: %v", row.ID, err)
				failed++
				continue
			}
			if err := resultRepo.SetOutputKey(ctx, row.ID, key); err != nil {
				log.Printf("WARN: failed to record output key for result %s: %v", row.ID, err)
				failed++
				continue
			}
			total++
		}

		log.Printf("Progress: %d outputs uploaded, %d failed", total, failed)
	}

	log.Printf("Backfill complete: %d outputs uploaded, %d failed", total, failed)
	return nil
}
