package domain

import "fmt"

// Query represents a DNS question: the name, type, and class to look
// up. This resolver always queries class IN.
type Query struct {
	Name  string
	Type  RRType
	Class RRClass
}

// NewQuery constructs a Query and validates its fields.
func NewQuery(name string, rrtype RRType) (Query, error) {
	q := Query{Name: name, Type: rrtype, Class: RRClassIN}
	if err := q.Validate(); err != nil {
		return Query{}, err
	}
	return q, nil
}

// Validate checks whether the Query's fields are structurally and
// semantically valid for encoding onto the wire.
func (q Query) Validate() error {
	if err := ValidateName(q.Name); err != nil {
		return NewInvalidQuery(err)
	}
	if !q.Type.IsValid() {
		return NewInvalidQuery(fmt.Errorf("unsupported RRType: %s", q.Type))
	}
	if !q.Class.IsValid() {
		return NewInvalidQuery(fmt.Errorf("unsupported RRClass: %s", q.Class))
	}
	return nil
}
