// Package services provides the centralized service registry for
// deployd.
//
// Registry pattern for accessing the core services (pattern store,
// recommendation engine, workflow orchestrator, vector store). Use
// NewRegistry() to create a registry with service instances, then
// accessor methods to retrieve individual services.
package services
