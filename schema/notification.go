package schema

// ListChangedParams carries the payload of the tools/prompts/resources
// list-changed notifications. The protocol defines no required fields;
// Meta preserves whatever the peer attached.
type ListChangedParams struct {
	Meta map[string]any `json:"_meta,omitempty"`
}

// ResourceUpdatedParams carries the payload of notifications/resources/updated.
type ResourceUpdatedParams struct {
	Uri string `json:"uri"`
}
