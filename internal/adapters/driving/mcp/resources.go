package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const uriScheme = "docask://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "files",
		Name:        "files",
		Description: "All ingested files",
		MIMEType:    "application/json",
	}, s.handleFilesResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "stats",
		Name:        "stats",
		Description: "File and chunk counts",
		MIMEType:    "application/json",
	}, s.handleStatsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "files/{name}",
		Name:        "file",
		Description: "Metadata of one ingested file",
		MIMEType:    "application/json",
	}, s.handleFileResource)
}

type fileInfo struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
	IngestedAt time.Time `json:"ingested_at"`
}

func (s *Server) handleFilesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Library == nil {
		return jsonResult(req.Params.URI, "[]"), nil
	}

	files, err := s.ports.Library.ListFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}

	infos := make([]fileInfo, len(files))
	for i := range files {
		infos[i] = fileInfo{
			Name:       files[i].DisplayName(),
			Path:       files[i].Path,
			Size:       files[i].Size,
			ModifiedAt: files[i].ModifiedAt,
			IngestedAt: files[i].CreatedAt,
		}
	}
	return marshalResult(req.Params.URI, infos)
}

func (s *Server) handleFileResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := extractFileName(req.Params.URI)
	if s.ports.Library == nil || name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	files, err := s.ports.Library.ListFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}
	for i := range files {
		if files[i].DisplayName() == name {
			return marshalResult(req.Params.URI, fileInfo{
				Name:       files[i].DisplayName(),
				Path:       files[i].Path,
				Size:       files[i].Size,
				ModifiedAt: files[i].ModifiedAt,
				IngestedAt: files[i].CreatedAt,
			})
		}
	}
	return nil, mcp.ResourceNotFoundError(req.Params.URI)
}

func (s *Server) handleStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Library == nil {
		return jsonResult(req.Params.URI, `{"files":0,"chunks":0}`), nil
	}

	stats, err := s.ports.Library.Statistics(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading statistics: %w", err)
	}
	return marshalResult(req.Params.URI, map[string]int{
		"files":  stats.Files,
		"chunks": stats.Chunks,
	})
}

func marshalResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return jsonResult(uri, string(data)), nil
}

func jsonResult(uri, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		}},
	}
}

// extractFileName extracts the file name from a URI like docask://files/{name}.
// The name may be percent-encoded.
func extractFileName(uri string) string {
	const prefix = uriScheme + "files/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	name, err := url.PathUnescape(strings.TrimPrefix(uri, prefix))
	if err != nil || strings.Contains(name, "/") {
		return ""
	}
	return name
}
