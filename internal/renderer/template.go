package renderer

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
)

const receiptTemplate = `PAYMENT RECEIPT {{.Correlative}}
================================

Date:            {{.IssueDate.Format "2006-01-02"}}
Received from:   {{.MemberName}}
Document:        {{.MemberDocument}}

Concept:         {{.Concept}}
Amount:          {{.Amount.StringFixed 2}}
Payment method:  {{.PaymentMethod}}
{{- if .OperationReference}}
Operation:       {{.OperationReference}}
{{- end}}
`

// TemplateRenderer renders receipts through a text template. Output depends
// only on the document fields, so renders are repeatable.
type TemplateRenderer struct {
	tmpl *template.Template
}

// NewTemplateRenderer parses the built-in receipt layout.
func NewTemplateRenderer() (*TemplateRenderer, error) {
	tmpl, err := template.New("receipt").Parse(receiptTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse receipt template: %w", err)
	}
	return &TemplateRenderer{tmpl: tmpl}, nil
}

func (r *TemplateRenderer) Render(_ context.Context, doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, doc); err != nil {
		return nil, fmt.Errorf("render receipt %s: %w", doc.Correlative, err)
	}
	return buf.Bytes(), nil
}

var _ Renderer = (*TemplateRenderer)(nil)
