// Package wrangler defines the source schema of a worker configuration
// (wrangler.toml / wrangler.json / wrangler.jsonc) as plain Go values.
//
// This package is part of the Functional Core: it only describes data and how
// it decodes from JSON. Locating and reading files lives in
// internal/shell/loader, which normalises every on-disk format to JSON before
// decoding into Config.
//
// # Variables
//
// Plain variables are a two-case sum type decided once at decode time:
//
//   - TextValue: the value was a JSON string
//   - JSONValue: any other JSON value, kept as compact JSON text
//
// # Routes
//
// A route entry is either a bare pattern string or an object with pattern,
// zone_id, zone_name and custom_domain. Both shapes decode into Route.
package wrangler
