// Package config provides configuration loading, merging, and validation
// facilities for the application.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON config file
//
// The main entry point is [GetStructuredConfig]. Validation fails closed:
// a configuration without the capability signing secret or (when identity
// integration is enabled) the identity-service URL is rejected at startup.
package config
