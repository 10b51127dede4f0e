// Package domain contains the core domain entities and value objects for drawstream.
//
// This package represents the innermost layer of the Clean Architecture. It has
// no dependencies on infrastructure concerns (WebSocket, HTTP, logging) and
// contains only the rules of the streaming protocol.
//
// # Entities
//
//   - [Frame]: A fixed-size 512x512 RGBA raster buffer
//   - [ParamSet]: Validated configuration for one transform invocation
//   - [ControlMessage]: A typed control message carrying a ParamSet
//   - [Payload]: The closed variant received from a connection (Frame, Control or Stop)
//
// # Design Principles
//
// Domain entities are:
//   - Immutable after construction (where practical)
//   - Free of infrastructure dependencies
//   - Focused on protocol rules and invariants
//   - Testable without mocks or external systems
package domain
