package types

// EntityGroup is a named-entity category.
type EntityGroup string

// Entity groups recognized by the reconciler.
const (
	GroupPerson       EntityGroup = "PERSON"
	GroupOrganization EntityGroup = "ORGANIZATION"
	GroupLocation     EntityGroup = "LOCATION"
	GroupDate         EntityGroup = "DATE"
)

// EntityGroups lists every group in a stable order.
var EntityGroups = []EntityGroup{GroupPerson, GroupOrganization, GroupLocation, GroupDate}

// EntitySpan is a piece of text labeled with a group.
type EntitySpan struct {
	Text  string      `json:"text"`
	Group EntityGroup `json:"group"`
}

// EntityMap holds the entity texts found per group, in discovery order.
type EntityMap map[EntityGroup][]string

// First returns the first entity of group, or "" when there is none.
func (m EntityMap) First(group EntityGroup) string {
	if values := m[group]; len(values) > 0 {
		return values[0]
	}
	return ""
}
