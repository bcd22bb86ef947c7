// Package app holds the request handlers shared by the command line and
// the MCP server. Handlers turn core results into files and status text.
package app

import (
	"fmt"

	"github.com/mcncl/jsonshaper/internal/merge"
	"github.com/mcncl/jsonshaper/internal/models"
	"github.com/mcncl/jsonshaper/internal/parser"
	"github.com/mcncl/jsonshaper/internal/pathutil"
	"github.com/mcncl/jsonshaper/internal/records"
	"github.com/mcncl/jsonshaper/internal/schema"
)

// Dataset is a parsed document with its discovered schema.
type Dataset struct {
	Name        string
	Doc         models.JSONValue
	Keys        []string
	RootChoices []string
	DefaultRoot string
}

// NewDataset discovers the field paths and candidate roots of doc.
func NewDataset(name string, doc models.JSONValue) *Dataset {
	choices, def := schema.RootChoices(doc)
	return &Dataset{
		Name:        name,
		Doc:         doc,
		Keys:        schema.ExtractAllKeys(doc).Sorted(),
		RootChoices: choices,
		DefaultRoot: def,
	}
}

// LoadDataset parses the JSON file at path.
func LoadDataset(path string) (*Dataset, error) {
	doc, err := parser.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return NewDataset(path, doc.Root), nil
}

// LoadDatasetBytes parses inline JSON content.
func LoadDatasetBytes(name string, data []byte) (*Dataset, error) {
	doc, err := parser.ParseBytes(data)
	if err != nil {
		return nil, err
	}
	return NewDataset(name, doc.Root), nil
}

// Status is the load message shown after a successful parse.
func (d *Dataset) Status() string {
	return fmt.Sprintf("Successfully loaded. Found %d unique fields.", len(d.Keys))
}

// Tree arranges the dataset's field paths for hierarchical display.
func (d *Dataset) Tree() schema.PathTree {
	return schema.BuildTree(d.Keys)
}

// Root returns root, or the default root when root is empty.
func (d *Dataset) Root(root string) string {
	if root == "" {
		return d.DefaultRoot
	}
	return root
}

// DocumentCountText summarizes how many records root yields, for example
// "Documents: 3 (groups: 2)". A nil document gives an empty string.
func DocumentCountText(doc models.JSONValue, root string) string {
	if doc == nil {
		return ""
	}
	if root == "" {
		root = pathutil.RootSentinel
	}
	c := records.CountRecords(doc, root)
	if c.Grouped {
		return fmt.Sprintf("Documents: %d (groups: %d)", c.Records, c.Groups)
	}
	return fmt.Sprintf("Documents: %d", c.Records)
}

// MergeDataset is one side of a merge with its record-relative field paths
// and the join keys it shares with the other side.
type MergeDataset struct {
	*Dataset
	Label        string
	RecordKeys   []string
	JoinChoices  []string
	JoinSelected []string
}

// Status is the load message for one side of a merge.
func (m *MergeDataset) Status() string {
	return fmt.Sprintf("%s: Successfully loaded. Found %d record fields.", m.Label, len(m.RecordKeys))
}

// NewMergeDataset samples record keys under root (the default root when
// empty) and intersects them with otherKeys, keeping still-valid entries of
// current.
func NewMergeDataset(ds *Dataset, label, root string, sampleSize int, otherKeys, current []string) *MergeDataset {
	keys := records.ExtractRecordKeys(ds.Doc, ds.Root(root), sampleSize)
	choices, selected := merge.CommonJoinKeys(keys, otherKeys, current)
	return &MergeDataset{
		Dataset:      ds,
		Label:        label,
		RecordKeys:   keys,
		JoinChoices:  choices,
		JoinSelected: selected,
	}
}
