package notion

// Filter is a database query filter. Compound filters set And; property
// filters set Property and exactly one condition.
type Filter struct {
	And      []Filter      `json:"and,omitempty"`
	Property string        `json:"property,omitempty"`
	Date     *DateFilter   `json:"date,omitempty"`
	People   *PeopleFilter `json:"people,omitempty"`
}

type DateFilter struct {
	OnOrAfter  string `json:"on_or_after,omitempty"`
	OnOrBefore string `json:"on_or_before,omitempty"`
}

type PeopleFilter struct {
	Contains string `json:"contains"`
}

// DateBetween matches pages whose date property falls within [start, end].
func DateBetween(property, start, end string) []Filter {
	return []Filter{
		{Property: property, Date: &DateFilter{OnOrAfter: start}},
		{Property: property, Date: &DateFilter{OnOrBefore: end}},
	}
}
