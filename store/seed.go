package store

import (
	"fmt"

	"github.com/docufab/docufab/pkg/engine/schema"
)

// baseTemplates are installed into an empty database so a fresh
// install has something to render.
var baseTemplates = []*Template{
	{
		Name:      "base-letter",
		Extension: "md",
		Params: schema.Schema{
			{Name: "recipient", Type: schema.TypeString, Default: "Sir or Madam"},
			{Name: "sender", Type: schema.TypeString, Default: ""},
			{Name: "subject", Type: schema.TypeString, Default: "Regarding your account"},
			{Name: "body", Type: schema.TypeString, Default: ""},
		},
		Content: `# {{subject}}

{{DATE.long()}}

Dear {{recipient}},

{{body}}

Sincerely,
{{#if sender}}{{sender}}{{#else}}{{USER.name()}}{{/if}}
`,
	},
	{
		Name:      "base-invoice",
		Extension: "txt",
		Params: schema.Schema{
			{Name: "client", Type: schema.TypeString, Default: ""},
			{Name: "amount", Type: schema.TypeNumber, Default: 0},
			{Name: "tax_rate", Type: schema.TypeNumber, Default: 0.21},
		},
		Content: `INVOICE {{RANDOM.uuid()}}
Date: {{DATE.now()}}

Billed to: {{client}}

Subtotal: {{FORMAT.currency(amount)}}
Tax ({{FORMAT.percent(tax_rate)}}): {{FORMAT.currency(MATH.round(amount * tax_rate, 2))}}
Total: {{FORMAT.currency(amount + MATH.round(amount * tax_rate, 2))}}
`,
	},
	{
		Name:      "base-report",
		Extension: "md",
		Params: schema.Schema{
			{Name: "title", Type: schema.TypeString, Default: "Status Report"},
			{Name: "status", Type: schema.TypeString, Default: "draft",
				Options: []string{"draft", "review", "final"}},
			{Name: "body", Type: schema.TypeString, Default: ""},
		},
		Content: `# {{title}}

Prepared by {{USER.name()}} on {{DATE.long()}}.

{{#switch status}}
{{#case "draft"}}> This document is a draft and subject to change.
{{#case "review"}}> This document is under review.
{{#default}}> This document is final.
{{/switch}}

{{body}}
`,
	},
	{
		Name:      "base-email",
		Extension: "txt",
		Params: schema.Schema{
			{Name: "recipient", Type: schema.TypeString, Default: ""},
			{Name: "subject", Type: schema.TypeString, Default: ""},
			{Name: "body", Type: schema.TypeString, Default: ""},
		},
		Content: `From: {{USER.name()}} <{{USER.email()}}>
To: {{recipient}}
Subject: {{subject}}

{{body}}
`,
	},
	{
		Name:      "base-page",
		Extension: "html",
		Params: schema.Schema{
			{Name: "title", Type: schema.TypeString, Default: "Untitled"},
			{Name: "body", Type: schema.TypeString, Default: ""},
		},
		Content: `<!DOCTYPE html>
<html>
<head><title>{{title}}</title></head>
<body>
<h1>{{title}}</h1>
{{body}}
</body>
</html>
`,
	},
}

// SeedBaseTemplates installs the base templates when the templates
// table is empty. Returns how many were inserted.
func (s *Store) SeedBaseTemplates() (int, error) {
	count, err := s.TemplateCount()
	if err != nil {
		return 0, fmt.Errorf("counting templates: %w", err)
	}
	if count > 0 {
		return 0, nil
	}
	inserted := 0
	for _, t := range baseTemplates {
		if _, err := s.SaveTemplate(t); err != nil {
			return inserted, fmt.Errorf("seeding %q: %w", t.Name, err)
		}
		inserted++
	}
	return inserted, nil
}
