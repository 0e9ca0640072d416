// Package provider defines the interface to the external model service.
// Adapters translate ProviderRequest into their backend protocol and the
// backend's answer into a ProviderResponse, so the engine never sees wire
// formats.
package provider
