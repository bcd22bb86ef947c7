package mcpserver

import (
	"fmt"

	"github.com/mcncl/jsonshaper/internal/app"
)

// datasetInput is a JSON document given as a file path or inline content.
// Exactly one of File or Content must be set.
type datasetInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to a JSON file on disk"`
	Content string `json:"content,omitempty" jsonschema:"Inline JSON document content"`
}

func (d datasetInput) resolve(maxBytes int) (*app.Dataset, error) {
	switch {
	case d.File != "" && d.Content != "":
		return nil, fmt.Errorf("exactly one of file or content must be provided, got both")
	case d.File != "":
		return app.LoadDataset(d.File)
	case d.Content != "":
		if maxBytes > 0 && len(d.Content) > maxBytes {
			return nil, fmt.Errorf("content is %d bytes, maximum is %d; set JSONSHAPER_MAX_CONTENT_BYTES to increase", len(d.Content), maxBytes)
		}
		return app.LoadDatasetBytes("content", []byte(d.Content))
	default:
		return nil, fmt.Errorf("exactly one of file or content must be provided")
	}
}
