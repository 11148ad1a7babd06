// Package config loads, merges, defaults and validates the gateway
// configuration.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. .env file (only fills variables not already set)
//  2. Environment variables
//  3. Command-line flags
//  4. JSON config file
//
// Tier-dependent defaults are applied after merging. The deployment tier
// (APP_ENV) decides which switches default on, and production-like tiers
// (prod, production, staging) refuse settings that would weaken the trust
// boundary.
//
// The main entry point is [GetStructuredConfig].
package config
