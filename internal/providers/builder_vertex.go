package providers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ncecere/gemini_relay/internal/adapters/vertex"
	"github.com/ncecere/gemini_relay/internal/config"
)

const defaultVertexLocation = "us-central1"

func init() {
	RegisterDefinition(Definition{
		Name:         "vertex",
		Description:  "Google Vertex AI (Gemini generateContent, service account auth)",
		Capabilities: []Capability{CapGenerate},
		Builder:      buildVertexProvider,
	})
}

func buildVertexProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	cfg = EnsureConfig(cfg)
	override := cfg.Provider.Vertex

	projectID := pickFirst(override.ProjectID)
	if projectID == "" {
		return Provider{}, fmt.Errorf("vertex provider requires gcp_project_id")
	}
	location := pickFirst(override.Location, defaultVertexLocation)

	credSource := pickFirst(override.CredentialsJSON)
	if credSource == "" {
		return Provider{}, fmt.Errorf("vertex provider requires gcp credentials json")
	}
	credBytes, err := decodeVertexCredentials(credSource, override.CredentialsFormat)
	if err != nil {
		return Provider{}, err
	}

	adapter, err := vertex.New(ctx, vertex.Options{
		ProjectID:       projectID,
		Location:        location,
		Publisher:       pickFirst(override.Publisher),
		Model:           cfg.Provider.Model,
		Endpoint:        pickFirst(override.Endpoint),
		CredentialsJSON: credBytes,
	})
	if err != nil {
		return Provider{}, err
	}

	md := cloneMetadata(nil)
	md["gcp_project_id"] = projectID
	md["vertex_location"] = location

	return Provider{
		Name:      "vertex",
		Model:     cfg.Provider.Model,
		Metadata:  md,
		Generator: adapter,
		Health:    adapter.HealthCheck,
	}, nil
}

// decodeVertexCredentials accepts raw JSON or base64-encoded JSON. An empty
// format auto-detects.
func decodeVertexCredentials(source, format string) ([]byte, error) {
	source = strings.TrimSpace(source)
	credBytes := []byte(source)
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "base64":
		decoded, err := base64.StdEncoding.DecodeString(source)
		if err != nil {
			return nil, fmt.Errorf("vertex credentials base64 decode: %w", err)
		}
		if !json.Valid(decoded) {
			return nil, fmt.Errorf("vertex credentials base64 decode produced invalid JSON")
		}
		return decoded, nil
	case "json", "":
		if json.Valid(credBytes) {
			return credBytes, nil
		}
		if decoded, err := base64.StdEncoding.DecodeString(source); err == nil && json.Valid(decoded) {
			return decoded, nil
		}
		return nil, fmt.Errorf("vertex credentials json invalid or truncated")
	default:
		return nil, fmt.Errorf("vertex credentials format %q not supported", format)
	}
}
