package store

import (
	"context"

	"github.com/akolanti/GradeRAG/internal/domain/gradingModel"
)

// IngestionStore keeps the latest ingestion record of each document and the
// ordered list of state transitions that produced it. Documents are keyed by
// kind and id, the same pair that scopes their vectors.
type IngestionStore interface {
	SaveRecord(ctx context.Context, record gradingModel.IngestionRecord) error
	GetRecord(ctx context.Context, kind gradingModel.Kind, documentId string) (gradingModel.IngestionRecord, bool)
	History(ctx context.Context, kind gradingModel.Kind, documentId string) ([]string, error)
	DeleteRecord(ctx context.Context, kind gradingModel.Kind, documentId string)
}

func docKey(kind gradingModel.Kind, documentId string) string {
	return string(kind) + ":" + documentId
}

func recordKey(kind gradingModel.Kind, documentId string) string {
	return "ingestion:" + docKey(kind, documentId)
}

func historyKey(kind gradingModel.Kind, documentId string) string {
	return recordKey(kind, documentId) + ":history"
}

func historyEntry(record gradingModel.IngestionRecord) string {
	entry := record.UpdatedAt.UTC().Format("2006-01-02T15:04:05.000Z") + " " + string(record.State)
	if record.Message != "" {
		entry += " " + record.Message
	}
	return entry
}
