package wizard

import (
	"context"

	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/report"
	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/schema"
)

// NodeKind is the kind of a layout element.
type NodeKind string

const (
	NodeSeparator NodeKind = "separator"
	NodeLabel     NodeKind = "label"
	NodeField     NodeKind = "field"
	NodeNewline   NodeKind = "newline"
)

// SelectionsTitle heads the parameter block.
const SelectionsTitle = "Selections"

// Node is one element of the form layout.
type Node struct {
	Kind         NodeKind `json:"kind"`
	Name         string   `json:"name,omitempty"`
	String       string   `json:"string,omitempty"`
	Colspan      int      `json:"colspan,omitempty"`
	NoLabel      bool     `json:"nolabel,omitempty"`
	DefaultFocus bool     `json:"default_focus,omitempty"`
	// RequiredBy names the field whose value makes this field required.
	RequiredBy string `json:"required_by,omitempty"`
}

// View is the rendered form: the active slots, their layout and the JSON
// Schema a submission must satisfy.
type View struct {
	ReportName       string                    `json:"report_name"`
	Schema           *schema.FieldSchema       `json:"schema"`
	Layout           []Node                    `json:"layout"`
	SubmissionSchema map[string]any            `json:"submission_schema"`
	OutputFormats    []report.OutputFormatInfo `json:"output_formats"`
}

// FieldsView resolves the report and lays out one labelled input per slot.
func (w *Wizard) FieldsView(ctx context.Context, req Request) (_ *View, err error) {
	ctx, done := w.track(ctx, "fields_view", req)
	defer func() { done(err) }()

	r, err := w.resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	fs, err := schema.Build(r.set.Parameters, r.capacity)
	if err != nil {
		return nil, err
	}

	return &View{
		ReportName:       r.def.Name,
		Schema:           fs,
		Layout:           Layout(fs),
		SubmissionSchema: fs.SubmissionSchema(),
		OutputFormats:    report.OutputFormats,
	}, nil
}

// Layout arranges fs as a separator followed by label, field and newline per
// slot. An empty schema has no layout.
func Layout(fs *schema.FieldSchema) []Node {
	if len(fs.Slots) == 0 {
		return nil
	}
	nodes := make([]Node, 0, 1+3*len(fs.Slots))
	nodes = append(nodes, Node{Kind: NodeSeparator, String: SelectionsTitle, Colspan: 4})
	for _, d := range fs.Slots {
		nodes = append(nodes,
			Node{Kind: NodeLabel, String: d.Label + " :"},
			Node{
				Kind:         NodeField,
				Name:         d.Fields.Value.Name,
				NoLabel:      true,
				DefaultFocus: d.FocusInitial,
				RequiredBy:   d.Fields.Required.Name,
			},
			Node{Kind: NodeNewline},
		)
	}
	return nodes
}
