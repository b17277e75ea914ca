package identity

import "github.com/jonathan/resume-extractor/internal/patterns"

// Contacts holds every contact string found in a document, in order of appearance.
type Contacts struct {
	Emails []string `json:"emails"`
	Phones []string `json:"phones"`
	Links  []string `json:"links"`
}

// ResolveContacts scans the raw text for emails, phone numbers and links.
func ResolveContacts(lib *patterns.Library, text string) Contacts {
	return Contacts{
		Emails: lib.Email.FindAllString(text, -1),
		Phones: lib.Phone.FindAllString(text, -1),
		Links:  lib.Link.FindAllString(text, -1),
	}
}

// Flatten lists emails, then phones, then links.
func (c Contacts) Flatten() []string {
	out := make([]string, 0, len(c.Emails)+len(c.Phones)+len(c.Links))
	out = append(out, c.Emails...)
	out = append(out, c.Phones...)
	return append(out, c.Links...)
}

// At returns the i-th flattened contact, or "" when there are fewer.
func (c Contacts) At(i int) string {
	flat := c.Flatten()
	if i < 0 || i >= len(flat) {
		return ""
	}
	return flat[i]
}
