package notion

import (
	"strconv"
	"strings"
)

// PageID returns the id of a page, or "" for a nil page.
func PageID(page *Page) string {
	if page == nil {
		return ""
	}
	return page.ID
}

// PageProperty renders a property of page as display text. The boolean is
// false when the property is missing or holds no value.
func PageProperty(page Page, name string) (string, bool) {
	prop, ok := page.Properties[name]
	if !ok {
		return "", false
	}

	switch {
	case len(prop.Title) > 0:
		return plainText(prop.Title), true
	case len(prop.RichText) > 0:
		return plainText(prop.RichText), true
	case prop.Date != nil:
		return renderDate(prop.Date)
	case prop.Number != nil:
		return renderNumber(*prop.Number), true
	case prop.Select != nil:
		return prop.Select.Name, true
	case prop.Status != nil:
		return prop.Status.Name, true
	case len(prop.People) > 0:
		names := make([]string, 0, len(prop.People))
		for _, u := range prop.People {
			if u.Name != "" {
				names = append(names, u.Name)
			} else {
				names = append(names, u.ID)
			}
		}
		return strings.Join(names, ", "), true
	case len(prop.Relation) > 0:
		ids := make([]string, 0, len(prop.Relation))
		for _, r := range prop.Relation {
			ids = append(ids, r.ID)
		}
		return strings.Join(ids, ", "), true
	case prop.Checkbox != nil:
		return strconv.FormatBool(*prop.Checkbox), true
	case prop.URL != nil:
		return *prop.URL, *prop.URL != ""
	case prop.Formula != nil:
		return renderComputed(prop.Formula)
	case prop.Rollup != nil:
		return renderComputed(prop.Rollup)
	}
	// Unsupported types (files, rollup arrays, ...) render as missing.
	return "", false
}

func renderDate(d *DateValue) (string, bool) {
	if d.End != nil && *d.End != "" {
		return d.Start + " → " + *d.End, true
	}
	return d.Start, d.Start != ""
}

func renderNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func renderComputed(c *Computed) (string, bool) {
	switch {
	case c.String != nil:
		return *c.String, *c.String != ""
	case c.Number != nil:
		return renderNumber(*c.Number), true
	case c.Boolean != nil:
		return strconv.FormatBool(*c.Boolean), true
	case c.Date != nil:
		return renderDate(c.Date)
	}
	return "", false
}

func plainText(runs []RichText) string {
	var b strings.Builder
	for _, r := range runs {
		if r.PlainText != "" {
			b.WriteString(r.PlainText)
		} else if r.Text != nil {
			b.WriteString(r.Text.Content)
		}
	}
	return b.String()
}
