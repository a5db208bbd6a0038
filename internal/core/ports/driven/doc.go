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
//   - ChunkStore: File and chunk persistence with change detection
//   - Extractor: Per-format text extraction
//   - ExtractorRegistry: Selects the extractor for a file extension
//   - LLMService: The generation oracle (streams answer fragments)
//   - SettingsStore: Loads and saves the settings value object
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it, vector search falls back to lexical.
//   - ScanHistory: Records scans. Without it, scheduled scans are not recorded.
//   - PromptStore: User-editable system instructions. Without it, built-in defaults are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
