package qdrantDB

import (
	"github.com/akolanti/GradeRAG/internal/domain/gradingModel"
	"github.com/akolanti/GradeRAG/internal/rag/vectorDB"
	"github.com/qdrant/go-client/qdrant"
)

func toPoints(records []gradingModel.VectorRecord) []*qdrant.PointStruct {
	points := make([]*qdrant.PointStruct, len(records))
	for i, r := range records {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(PointId(r.Id)),
			Vectors: qdrant.NewVectors(r.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				vectorDB.FieldRecordId:     r.Id,
				vectorDB.FieldDocumentId:   r.Chunk.DocumentId,
				vectorDB.FieldAssignmentId: r.Chunk.AssignmentId,
				vectorDB.FieldOwnerId:      r.Chunk.OwnerId,
				vectorDB.FieldKind:         string(r.Chunk.Kind),
				vectorDB.FieldChunkIndex:   int64(r.Chunk.Index),
				vectorDB.FieldChunkText:    r.Chunk.Text,
				vectorDB.FieldIngestedAt:   r.IngestedAt.Unix(),
			}),
		}
	}
	return points
}

func toFilter(f gradingModel.Filter) *qdrant.Filter {
	if f.IsEmpty() {
		return nil
	}
	var must []*qdrant.Condition
	if f.AssignmentId != "" {
		must = append(must, qdrant.NewMatch(vectorDB.FieldAssignmentId, f.AssignmentId))
	}
	if f.DocumentId != "" {
		must = append(must, qdrant.NewMatch(vectorDB.FieldDocumentId, f.DocumentId))
	}
	if f.OwnerId != "" {
		must = append(must, qdrant.NewMatch(vectorDB.FieldOwnerId, f.OwnerId))
	}
	if f.Kind != "" {
		must = append(must, qdrant.NewMatch(vectorDB.FieldKind, string(f.Kind)))
	}
	return &qdrant.Filter{Must: must}
}

func toHit(payload map[string]*qdrant.Value, score float32) gradingModel.SearchHit {
	return gradingModel.SearchHit{
		RecordId:     payload[vectorDB.FieldRecordId].GetStringValue(),
		Content:      payload[vectorDB.FieldChunkText].GetStringValue(),
		Score:        score,
		DocumentId:   payload[vectorDB.FieldDocumentId].GetStringValue(),
		AssignmentId: payload[vectorDB.FieldAssignmentId].GetStringValue(),
		OwnerId:      payload[vectorDB.FieldOwnerId].GetStringValue(),
		Kind:         gradingModel.Kind(payload[vectorDB.FieldKind].GetStringValue()),
		ChunkIndex:   int(payload[vectorDB.FieldChunkIndex].GetIntegerValue()),
	}
}
