package notion

// Page is a Notion page as returned by the query and create endpoints.
type Page struct {
	Object     string     `json:"object,omitempty"`
	ID         string     `json:"id,omitempty"`
	URL        string     `json:"url,omitempty"`
	Properties Properties `json:"properties,omitempty"`
}

// Properties maps property names to their values.
type Properties map[string]PropertyValue

// PropertyValue holds one typed property value. Only the field matching Type
// is populated in responses; requests set just the field they write.
type PropertyValue struct {
	ID       string        `json:"id,omitempty"`
	Type     string        `json:"type,omitempty"`
	Title    []RichText    `json:"title,omitempty"`
	RichText []RichText    `json:"rich_text,omitempty"`
	Date     *DateValue    `json:"date,omitempty"`
	Number   *float64      `json:"number,omitempty"`
	Select   *SelectOption `json:"select,omitempty"`
	Status   *SelectOption `json:"status,omitempty"`
	People   []User        `json:"people,omitempty"`
	Relation []Relation    `json:"relation,omitempty"`
	Checkbox *bool         `json:"checkbox,omitempty"`
	URL      *string       `json:"url,omitempty"`
	Formula  *Computed     `json:"formula,omitempty"`
	Rollup   *Computed     `json:"rollup,omitempty"`
}

// Computed is the read-only result of a formula or rollup property.
type Computed struct {
	Type    string     `json:"type"`
	String  *string    `json:"string,omitempty"`
	Number  *float64   `json:"number,omitempty"`
	Boolean *bool      `json:"boolean,omitempty"`
	Date    *DateValue `json:"date,omitempty"`
}

type RichText struct {
	Type      string `json:"type,omitempty"`
	Text      *Text  `json:"text,omitempty"`
	PlainText string `json:"plain_text,omitempty"`
}

type Text struct {
	Content string `json:"content"`
}

type DateValue struct {
	Start string  `json:"start"`
	End   *string `json:"end,omitempty"`
}

type SelectOption struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

type User struct {
	Object string `json:"object,omitempty"`
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
}

type Relation struct {
	ID string `json:"id"`
}

// TitleValue builds a title property holding a single text run.
func TitleValue(content string) PropertyValue {
	return PropertyValue{
		Title: []RichText{{Type: "text", Text: &Text{Content: content}}},
	}
}

// RelationValue builds a relation property pointing at the given pages.
func RelationValue(pageIDs ...string) PropertyValue {
	rel := make([]Relation, 0, len(pageIDs))
	for _, id := range pageIDs {
		rel = append(rel, Relation{ID: id})
	}
	return PropertyValue{Relation: rel}
}
