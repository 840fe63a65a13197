package swagger

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
)

// Document is the OpenAPI description of the HTTP API.
//
//go:embed openapi.yaml
var Document []byte

// documentETag lets clients revalidate the document instead of refetching it.
var documentETag = func() string {
	sum := sha256.Sum256(Document)
	return `"` + hex.EncodeToString(sum[:8]) + `"`
}()
