package entity

import "time"

// Document is a free-form JSON object stored in a named collection
// (products, offers). The store assigns ID and timestamps.
type Document struct {
	ID         string
	Collection string
	Body       map[string]any
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Reserved keys are owned by the store and stripped from incoming bodies.
var reservedDocumentKeys = []string{"_id", "id", "created_at", "updated_at"}

// SanitizeBody returns a copy of body without store-owned keys.
func SanitizeBody(body map[string]any) map[string]any {
	out := make(map[string]any, len(body))
	for k, v := range body {
		out[k] = v
	}
	for _, k := range reservedDocumentKeys {
		delete(out, k)
	}
	return out
}

// View flattens the document into the JSON shape returned to clients.
func (d *Document) View() map[string]any {
	out := make(map[string]any, len(d.Body)+3)
	for k, v := range d.Body {
		out[k] = v
	}
	out["_id"] = d.ID
	out["created_at"] = d.CreatedAt
	out["updated_at"] = d.UpdatedAt
	return out
}
