// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// In Clean Architecture / Hexagonal Architecture, ports are the boundaries
// between the application core and the outside world. They define what the
// application needs from external systems without specifying how those needs
// are fulfilled.
//
// # Port Interfaces
//
//   - [Conn]: One persistent bidirectional client connection
//   - [TransformEngine]: The non-reentrant image-to-image operation
//   - [InferenceGate]: Mutual exclusion around TransformEngine calls
//   - [StatusRepository]: Persists statistics snapshots
//   - [Logger]: Structured logging abstraction
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement these interfaces
// with concrete implementations (WebSocket, HTTP, file system, zerolog, etc.).
package ports
