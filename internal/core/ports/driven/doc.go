// Package driven declares the outbound ports: the interfaces core
// services call into infrastructure through. Adapters under
// internal/adapters/driven implement them.
//
//   - NoteStore reads vault notes (filesystem or Dropbox)
//   - Chunker and Normaliser shape note content for indexing
//   - EmbeddingService turns text into vectors (Ollama, OpenAI)
//   - VectorIndex stores and searches the vectors (Qdrant, SQLite)
//   - LockManager serialises work per note path
//   - ConfigStore persists settings; SchedulerStore persists task
//     state, and leaving it nil simply disables the periodic sweep
//
// Everything here may import domain and nothing else, so an interface
// change never drags an adapter dependency into the core.
package driven
