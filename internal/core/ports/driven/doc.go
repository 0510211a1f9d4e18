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
//   - Connector: Fetches repository files from a source
//   - PostProcessorPipeline: Turns file content into chunks
//   - EmbeddingService: Generates vector embeddings
//   - VectorStore: Per-repository vector collections (chromem)
//   - DocumentStore: Repository/document ledger (SQLite)
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Query expansion. Without it, retrieval falls back to the
//     single summary query.
//   - PromptStore: Customisable prompt templates. Without it, services use
//     embedded defaults.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
