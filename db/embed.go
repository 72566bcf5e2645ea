// Package db provides the embedded schema and demonstration rule pack.
package db

import _ "embed"

// Schema contains the DDL statements for all application tables.
//
//go:embed migrations/001_schema.sql
var Schema string

// SeedRules is the default YAML rule pack loaded by seed-rules.
//
//go:embed seed/rules.yaml
var SeedRules []byte
