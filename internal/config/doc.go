// Package config loads, normalizes, and validates hookclip configuration.
//
// The document is TOML (a legacy JSON document with the same groups is
// accepted by extension). It must carry the api_keys and asset_paths groups;
// every other group is optional and falls back to repository defaults.
// Credentials left empty are filled from GEMINI_API_KEY and FPT_AI_API_KEY.
//
// A loaded Config is treated as immutable and passed explicitly to the
// components that need it.
package config
