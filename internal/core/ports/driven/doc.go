// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Connector: Fetches raw documents from an ingestion directory
//   - Normaliser: Extracts text from raw documents (PDF, plaintext, ...)
//   - NormaliserRegistry: Selects the appropriate normaliser
//   - PostProcessorPipeline: Splits documents into chunks
//   - DocumentStore: Document, chunk and study-data persistence
//   - SourceStore: Ingestion directory configuration persistence
//   - SyncStateStore: Ingestion progress persistence
//   - ConfigStore: Application configuration
//   - EmbeddingService: Generates vector embeddings
//   - VectorIndex: Stores and searches vectors
//   - LLMService: Generates answers, flashcards and mind maps
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
