package console

import (
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/wichananm65/recommendation-console/internal/recommendation"
)

// FormState mirrors the editable fields of the console form.
type FormState struct {
	ProductID               string `json:"product_id" form:"product_id"`
	RecommendationProductID string `json:"recommendation_product_id" form:"recommendation_product_id"`
	Relationship            string `json:"relationship" form:"relationship"`
	// Likes and Dislikes are display only; they are never sent.
	Likes    string `json:"likes" form:"likes"`
	Dislikes string `json:"dislikes" form:"dislikes"`
}

// UnmarshalJSON accepts the id and counter fields as JSON numbers or strings.
func (f *FormState) UnmarshalJSON(b []byte) error {
	var raw struct {
		ProductID               recommendation.ID `json:"product_id"`
		RecommendationProductID recommendation.ID `json:"recommendation_product_id"`
		Relationship            string            `json:"relationship"`
		Likes                   recommendation.ID `json:"likes"`
		Dislikes                recommendation.ID `json:"dislikes"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*f = FormState{
		ProductID:               raw.ProductID.String(),
		RecommendationProductID: raw.RecommendationProductID.String(),
		Relationship:            raw.Relationship,
		Likes:                   raw.Likes.String(),
		Dislikes:                raw.Dislikes.String(),
	}
	return nil
}

// Clear empties every field.
func (f *FormState) Clear() {
	*f = FormState{}
}

// Fill overwrites the fields from a record returned by the service.
func (f *FormState) Fill(r recommendation.Record) {
	f.ProductID = r.ProductID.String()
	f.RecommendationProductID = r.RecommendationProductID.String()
	f.Relationship = string(r.Relationship)
	f.Likes = count(r.Likes)
	f.Dislikes = count(r.Dislikes)
}

func (f FormState) Key() recommendation.Key {
	return recommendation.Key{
		ProductID:               recommendation.ID(strings.TrimSpace(f.ProductID)),
		RecommendationProductID: recommendation.ID(strings.TrimSpace(f.RecommendationProductID)),
	}
}

func (f FormState) Payload() recommendation.Payload {
	k := f.Key()
	return recommendation.Payload{
		ProductID:               k.ProductID,
		RecommendationProductID: k.RecommendationProductID,
		Relationship:            recommendation.Relationship(strings.TrimSpace(f.Relationship)),
	}
}

func (f FormState) Query() recommendation.Query {
	return recommendation.Query{
		ProductID:    recommendation.ID(strings.TrimSpace(f.ProductID)),
		Relationship: recommendation.Relationship(strings.TrimSpace(f.Relationship)),
	}
}

// ViewModel is everything the console shows. Handlers receive it explicitly
// and are the only code that mutates it.
type ViewModel struct {
	Form    FormState     `json:"form"`
	Flash   string        `json:"flash"`
	Results *ResultsTable `json:"results,omitempty"`
}

func count(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
