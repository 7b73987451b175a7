package history

import "time"

// Entry is one console action as it was handled.
type Entry struct {
	ID                      string    `json:"id"`
	Action                  string    `json:"action"`
	ProductID               string    `json:"product_id"`
	RecommendationProductID string    `json:"recommendation_product_id"`
	Relationship            string    `json:"relationship"`
	Success                 bool      `json:"success"`
	Flash                   string    `json:"flash"`
	Error                   string    `json:"error,omitempty"`
	CreatedAt               time.Time `json:"created_at"`
}

// Filter narrows a listing. Empty Actions means every action.
type Filter struct {
	Actions []string
	Limit   int
}

func (f Filter) matches(e Entry) bool {
	if len(f.Actions) == 0 {
		return true
	}
	for _, a := range f.Actions {
		if a == e.Action {
			return true
		}
	}
	return false
}
