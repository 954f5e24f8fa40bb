// Package smarthome provides the configuration status core: aggregation of
// diagnostic and validation messages about the configuration of addressable
// entities, collected from a dynamically registered set of providers.
//
// # Architecture
//
// The core is built from small, composable packages:
//
//   - configstatus: the data model (status messages, the per-lookup info
//     aggregate, change signals) and the capability contracts implemented by
//     collaborators (Provider, Callback)
//   - configstatus/registry: the thread-safe provider registry with
//     copy-on-write iteration semantics
//   - configstatus/translation: the localization port and a YAML-bundle
//     resolver with per-provider namespacing
//   - configstatus/service: the orchestrator exposing synchronous lookup and
//     asynchronous change notification
//   - configstatus/eventsink: the event publication port and its NATS
//     implementation
//
// Supporting infrastructure lives in pkg/worker (bounded worker pool for the
// notification path), metric (Prometheus registration), errors (classified
// error handling) and config (YAML application configuration).
//
// # Data flow
//
// Synchronous lookup: caller -> service -> registry (first matching
// provider) -> provider status -> translation resolver (per message) ->
// aggregated, translated info -> caller.
//
// Change path: provider -> service.NotifyChanged -> background worker ->
// same lookup with the default locale -> event sink publish.
//
// The core does not validate configuration itself; each provider owns its
// validation logic. The core only routes to whichever provider claims
// ownership of an entity and shapes and translates what that provider
// reports.
package smarthome
