package diag

// Note adds context about another subject, e.g. the impl an overlap is with.
type Note struct {
	Subject string `json:"subject,omitempty" msgpack:"subject"`
	Msg     string `json:"message" msgpack:"msg"`
}

// Diagnostic is a single finding. Subject names what it is about: an impl,
// an item declaration, or the manifest itself.
type Diagnostic struct {
	Severity Severity `json:"severity" msgpack:"severity"`
	Code     Code     `json:"code" msgpack:"code"`
	Message  string   `json:"message" msgpack:"message"`
	Subject  string   `json:"subject,omitempty" msgpack:"subject"`
	Notes    []Note   `json:"notes,omitempty" msgpack:"notes"`
}
