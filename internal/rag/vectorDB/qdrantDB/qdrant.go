package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/GradeRAG/internal/config"
	"github.com/akolanti/GradeRAG/internal/domain/gradingModel"
	"github.com/akolanti/GradeRAG/internal/metrics"
	"github.com/akolanti/GradeRAG/internal/rag/vectorDB"
	"github.com/akolanti/GradeRAG/pkg/logger_i"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// pointNamespace turns "{document_id}_{chunk_index}" into a stable point id,
// qdrant only accepts integers and uuids.
var pointNamespace = uuid.MustParse("6f1c0a52-8d0e-4a63-9a51-2b7d3f3e9c10")

type ClientHolder struct {
	QObj      *qdrant.Client
	dimension int
	batchSize int
	logger    *logger_i.Logger
}

func New(cfg config.VectorDBConfig, dimension int) (*ClientHolder, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		APIKey:   cfg.APIKey,
		UseTLS:   cfg.UseTLS,
		PoolSize: uint(cfg.PoolSize),
	})
	if err != nil {
		return nil, fmt.Errorf("could not instantiate qdrant client: %w", err)
	}

	holder := newHolder(client, dimension, cfg.UpsertBatchSize)
	holder.logger = holder.logger.With("host", cfg.Host, "port", cfg.Port)
	logger := holder.logger

	pingCtx, cancel := context.WithTimeout(context.Background(), config.QdrantConnectionTimeout)
	defer cancel()
	if _, err := client.HealthCheck(pingCtx); err != nil {
		_ = client.Close()
		return nil, gradingModel.NewStorageError("connect", "", err)
	}
	logger.Info("Qdrant client connected")
	return holder, nil
}

func newHolder(client *qdrant.Client, dimension int, batchSize int) *ClientHolder {
	return &ClientHolder{
		QObj:      client,
		dimension: dimension,
		batchSize: batchSize,
		logger:    logger_i.NewLogger("qdrant"),
	}
}

func PointId(recordId string) string {
	return uuid.NewSHA1(pointNamespace, []byte(recordId)).String()
}

func (db *ClientHolder) Close() error {
	db.logger.Info("Shutting down Qdrant")
	return db.QObj.Close()
}

func (db *ClientHolder) EnsureCollection(ctx context.Context, name string, dim int) error {
	if err := createCollection(ctx, db.QObj, name, dim); err != nil {
		return gradingModel.NewStorageError("ensure_collection", name, err)
	}
	return nil
}

func (db *ClientHolder) ListCollections(ctx context.Context) ([]string, error) {
	names, err := db.QObj.ListCollections(ctx)
	if err != nil {
		return nil, gradingModel.NewStorageError("list_collections", "", err)
	}
	return names, nil
}

func (db *ClientHolder) Upsert(ctx context.Context, collection string, records []gradingModel.VectorRecord) (gradingModel.UpsertResult, error) {
	log := db.logger.WithTrace(ctx).With("collection", collection)
	result := gradingModel.UpsertResult{Attempted: len(records)}

	valid := make([]gradingModel.VectorRecord, 0, len(records))
	for _, r := range records {
		if !vectorDB.ValidVector(r.Vector, db.dimension) {
			log.Warn("skipping invalid vector", "recordId", r.Id, "length", len(r.Vector))
			continue
		}
		valid = append(valid, r)
	}

	var lastErr error
	for _, batch := range vectorDB.SplitBatches(valid, db.batchSize) {
		points := toPoints(batch)
		start := time.Now()
		err := db.withCollection(ctx, collection, func() error {
			_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
				CollectionName: collection,
				Points:         points,
				Wait:           qdrant.PtrOf(true),
			})
			return err
		})
		metrics.CaptureExecutionMetrics("qdrant_upsert", time.Since(start))
		if err != nil {
			log.Error("qdrant upsert batch failed", "size", len(batch), "error", err)
			lastErr = err
			continue
		}
		result.Succeeded += len(batch)
	}

	if result.Failed() > 0 {
		metrics.AddVectorUpsertFailures(collection, result.Failed())
	}
	if result.Succeeded == 0 && lastErr != nil {
		return result, gradingModel.NewStorageError("upsert", collection, lastErr)
	}
	return result, nil
}

func (db *ClientHolder) DeleteByOwner(ctx context.Context, collection string, documentId string) error {
	if documentId == "" {
		return gradingModel.InvalidInput("document id is required for delete")
	}
	err := db.withCollection(ctx, collection, func() error {
		_, err := db.QObj.Delete(ctx, &qdrant.DeletePoints{
			CollectionName: collection,
			Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
				Must: []*qdrant.Condition{qdrant.NewMatch(vectorDB.FieldDocumentId, documentId)},
			}),
			Wait: qdrant.PtrOf(true),
		})
		return err
	})
	if err != nil {
		return gradingModel.NewStorageError("delete", collection, err)
	}
	return nil
}

func (db *ClientHolder) Search(ctx context.Context, collection string, query []float32, filter gradingModel.Filter, topK int) ([]gradingModel.SearchHit, error) {
	log := db.logger.WithTrace(ctx).With("collection", collection)
	qFilter := toFilter(filter)

	var hits []gradingModel.SearchHit
	start := time.Now()
	err := db.withCollection(ctx, collection, func() error {
		hits = hits[:0]
		if query == nil {
			limit := topK
			if limit <= 0 {
				limit = config.ScrollLimit
			}
			points, err := db.QObj.Scroll(ctx, &qdrant.ScrollPoints{
				CollectionName: collection,
				Filter:         qFilter,
				Limit:          qdrant.PtrOf(uint32(limit)),
				WithPayload:    qdrant.NewWithPayload(true),
			})
			if err != nil {
				return err
			}
			for _, p := range points {
				hits = append(hits, toHit(p.GetPayload(), 0))
			}
			return nil
		}

		if topK <= 0 {
			topK = config.DefaultSearchLimit
		}
		result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
			CollectionName: collection,
			Query:          qdrant.NewQuery(query...),
			Filter:         qFilter,
			Limit:          qdrant.PtrOf(uint64(topK)),
			WithPayload:    qdrant.NewWithPayload(true),
		})
		if err != nil {
			return err
		}
		for _, p := range result {
			hits = append(hits, toHit(p.GetPayload(), p.GetScore()))
		}
		return nil
	})
	metrics.CaptureExecutionMetrics("qdrant_search", time.Since(start))
	if err != nil {
		log.Error("Error querying Qdrant", "error", err)
		return nil, gradingModel.NewStorageError("search", collection, err)
	}

	log.Debug("Found matches", "count", len(hits), "scroll", query == nil)
	return hits, nil
}

// withCollection runs fn and, when the collection is missing, creates it and
// runs fn once more.
func (db *ClientHolder) withCollection(ctx context.Context, collection string, fn func() error) error {
	err := fn()
	if err == nil || !isNotFound(err) {
		return err
	}
	db.logger.WithTrace(ctx).Warn("collection missing, creating it", "collection", collection)
	if cerr := createCollection(ctx, db.QObj, collection, db.dimension); cerr != nil {
		return errors.Join(err, cerr)
	}
	return fn()
}

func isNotFound(err error) bool {
	if status.Code(err) == codes.NotFound {
		return true
	}
	if s, ok := status.FromError(errors.Unwrap(err)); ok && s.Code() == codes.NotFound {
		return true
	}
	return strings.Contains(err.Error(), "doesn't exist") || strings.Contains(err.Error(), "Not found")
}

func createCollection(ctx context.Context, client *qdrant.Client, collectionName string, dim int) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if !exists {
		err = client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: collectionName,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(dim),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		// another replica may have won the race
		if err != nil && status.Code(err) != codes.AlreadyExists {
			return err
		}
	}
	return ensureIndexes(ctx, client, collectionName)
}

// ensureIndexes creates the keyword indexes the per-assignment and
// per-document filters rely on. Qdrant treats a repeated create as a no-op,
// so an earlier half-finished setup is repaired here.
func ensureIndexes(ctx context.Context, client *qdrant.Client, collectionName string) error {
	for _, field := range []string{vectorDB.FieldAssignmentId, vectorDB.FieldDocumentId} {
		_, err := client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: collectionName,
			FieldName:      field,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
			Wait:           qdrant.PtrOf(true),
		})
		if err != nil {
			return fmt.Errorf("creating %s index: %w", field, err)
		}
	}
	return nil
}
