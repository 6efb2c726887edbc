package main

// Default limits for CLI commands.
const (
	DefaultListLimit   = 50
	DefaultSearchLimit = 5
	MaxRelationsDepth  = 5
)

// Valid relations output formats.
var validRelationsFormats = []string{"tree", "list", "json"}
