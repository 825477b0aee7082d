// Package request defines the generation request (target directory, model
// name, description and variable definitions), decodes it from YAML request
// files, and validates those files against an embedded JSON Schema.
package request
