package dtos

type CreateTripReq struct {
	Name string `json:"name"`
}

type CreateMarkerReq struct {
	Name           string   `json:"name"`
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	Category       string   `json:"category"`
	EstimatedHours *float64 `json:"estimated_hours,omitempty"`
	Notes          *string  `json:"notes,omitempty"`
	URL            *string  `json:"url,omitempty"`
	IsUnesco       bool     `json:"is_unesco"`
}

type UpdateMarkerReq struct {
	Name           *string  `json:"name,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	Category       *string  `json:"category,omitempty"`
	EstimatedHours *float64 `json:"estimated_hours,omitempty"`
	Notes          *string  `json:"notes,omitempty"`
	URL            *string  `json:"url,omitempty"`
	IsUnesco       *bool    `json:"is_unesco,omitempty"`
}

type CreateTourReq struct {
	Name         string  `json:"name"`
	ParentTourID *string `json:"parent_tour_id,omitempty"`
}

type UpdateTourReq struct {
	Name string `json:"name"`
}

type AttachMarkerReq struct {
	MarkerID string `json:"marker_id"`
}

type ReorderMarkersReq struct {
	MarkerIDs []string `json:"marker_ids"`
}

// OrderedItem is one entry of the mixed reorder payload. Type is either
// "marker" or "subtour".
type OrderedItem struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type ReorderItemsReq struct {
	Items []OrderedItem `json:"items"`
}
