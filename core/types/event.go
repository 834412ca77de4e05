package types

// Event is the structured payload broadcast by the sale engine.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}
