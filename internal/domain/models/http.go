package models

// Requests for the weights HTTP endpoints.

// ValuesRequest leaves Pair zero when the query omits it; the handler then
// picks the default instrument. An explicit pair=0 is an unknown pair.
type ValuesRequest struct {
	Pair int    `query:"pair" json:"pair"`
	Day  int    `query:"day" json:"day"`
	Date string `query:"date" json:"date" validate:"required"`
}

type NewWeightsRequest struct {
	Code string `query:"code" json:"code" validate:"required"`
}

// ServiceInfo is the body of the metadata endpoint.
type ServiceInfo struct {
	Status   string            `json:"status"`
	Error    string            `json:"error,omitempty"`
	Name     string            `json:"name"`
	Version  string            `json:"version"`
	Text     string            `json:"text"`
	Snapshot *SnapshotInfo     `json:"snapshot,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// SnapshotInfo describes the snapshot currently served.
type SnapshotInfo struct {
	Version     string `json:"version"`
	LoadedAt    string `json:"loaded_at"`
	Events      int    `json:"events"`
	Occurrences int    `json:"occurrences"`
	Series      int    `json:"series"`
	Rates       int    `json:"rates"`
	Codes       int    `json:"codes"`
}
