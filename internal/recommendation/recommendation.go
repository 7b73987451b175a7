package recommendation

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/wichananm65/recommendation-console/internal/validation"
)

// ID is a product identifier. The model keeps it as a string; the wire accepts
// numbers or strings and writes numbers whenever the value is an integer.
type ID string

func (id ID) String() string {
	return string(id)
}

func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(strconv.FormatInt(n, 10)), nil
	}
	return json.Marshal(string(id))
}

func (id *ID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*id = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*id = ID(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid product id %s: %w", s, err)
	}
	*id = ID(n.String())
	return nil
}

// Relationship is the kind of link between two products.
type Relationship string

const (
	GoTogether Relationship = "GO_TOGETHER"
	CrossSell  Relationship = "CROSS_SELL"
	UpSell     Relationship = "UP_SELL"
	Accessory  Relationship = "ACCESSORY"
)

var relationships = []Relationship{GoTogether, CrossSell, UpSell, Accessory}

// Relationships returns the kinds the recommendations service supports.
func Relationships() []Relationship {
	out := make([]Relationship, len(relationships))
	copy(out, relationships)
	return out
}

// Known reports whether r is one of the supported kinds.
func (r Relationship) Known() bool {
	for _, k := range relationships {
		if r == k {
			return true
		}
	}
	return false
}

// Record is a recommendation as returned by the service.
type Record struct {
	ProductID               ID           `json:"product_id"`
	RecommendationProductID ID           `json:"recommendation_product_id"`
	Relationship            Relationship `json:"relationship"`
	Likes                   *int         `json:"likes,omitempty"`
	Dislikes                *int         `json:"dislikes,omitempty"`
}

func (r Record) Key() Key {
	return Key{ProductID: r.ProductID, RecommendationProductID: r.RecommendationProductID}
}

// Key identifies a single recommendation.
type Key struct {
	ProductID               ID `json:"product_id" validate:"required,number"`
	RecommendationProductID ID `json:"recommendation_product_id" validate:"required,number"`
}

func (k Key) Validate() error {
	if err := validation.Struct(k); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	return nil
}

// Path is the resource path of the recommendation, relative to the API base URL.
func (k Key) Path() string {
	return "/recommendations/" + url.PathEscape(k.ProductID.String()) +
		"/recommended-products/" + url.PathEscape(k.RecommendationProductID.String())
}

// Payload is the request body of create and update.
type Payload struct {
	ProductID               ID           `json:"product_id" validate:"required,number"`
	RecommendationProductID ID           `json:"recommendation_product_id" validate:"required,number"`
	Relationship            Relationship `json:"relationship" validate:"required"`
}

func (p Payload) Key() Key {
	return Key{ProductID: p.ProductID, RecommendationProductID: p.RecommendationProductID}
}

func (p Payload) Validate() error {
	if err := validation.Struct(p); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return nil
}

// Query filters a listing. Both fields are optional.
type Query struct {
	ProductID    ID           `json:"product_id" validate:"omitempty,number"`
	Relationship Relationship `json:"relationship"`
}

func (q Query) Validate() error {
	if err := validation.Struct(q); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	return nil
}

// Path renders /recommendations[/{product_id}][?relationship=...].
func (q Query) Path() string {
	path := "/recommendations"
	if q.ProductID != "" {
		path += "/" + url.PathEscape(q.ProductID.String())
	}
	if q.Relationship != "" {
		path += "?" + url.Values{"relationship": {string(q.Relationship)}}.Encode()
	}
	return path
}

// Matches reports whether r satisfies the query.
func (q Query) Matches(r Record) bool {
	if q.ProductID != "" && q.ProductID != r.ProductID {
		return false
	}
	if q.Relationship != "" && q.Relationship != r.Relationship {
		return false
	}
	return true
}
