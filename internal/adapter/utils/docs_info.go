package utils

//run redis (ingestion status on db 0, embedding cache on db 1)
//docker run -p 6379:6379 -d redis

//run qdrant, the service talks grpc on 6334
//docker run -p 6333:6333 -p 6334:6334 -v vectorDBData:/qdrant/storage qdrant/qdrant

//swagger init
//swag init -g cmd/api/main.go --parseDependency --parseInternal --dir ./ --output ./cmd/api/docs

//local run without any provider key
//GRADER_EMBEDDING_MODE=mock GRADER_VECTOR_STORE=memory go run ./cmd/api serve
