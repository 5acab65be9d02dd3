// Package api holds the OpenAPI document of the amc HTTP server.
package api

import _ "embed"

// OpenAPI is the OpenAPI 3 document served on /openapi.yaml.
//
//go:embed openapi.yaml
var OpenAPI []byte
