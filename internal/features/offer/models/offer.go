package models

import (
	"time"

	"marketplace-backend/internal/platform/storage"
)

// AttributeKind is a recognized offer attribute label.
type AttributeKind string

const (
	AttributeBrand     AttributeKind = "BRAND"
	AttributeSize      AttributeKind = "SIZE"
	AttributeCondition AttributeKind = "CONDITION"
	AttributeColor     AttributeKind = "COLOR"
	AttributeLocation  AttributeKind = "LOCATION"
)

// Valid reports whether the kind is one of the recognized labels.
func (k AttributeKind) Valid() bool {
	switch k {
	case AttributeBrand, AttributeSize, AttributeCondition, AttributeColor, AttributeLocation:
		return true
	}
	return false
}

// Attribute is one (label, value) pair of an offer's attribute list.
// Duplicates and missing labels are both permitted.
type Attribute struct {
	Kind  AttributeKind `json:"kind" bson:"kind"`
	Value string        `json:"value" bson:"value"`
}

// Offer is a marketplace listing. Image and Gallery descriptors are owned
// by the offer; the owner account is referenced by id only.
type Offer struct {
	ID          string          `json:"id" bson:"_id"`
	Name        string          `json:"name" bson:"name"`
	Description string          `json:"description" bson:"description"`
	Price       float64         `json:"price" bson:"price"`
	Attributes  []Attribute     `json:"attributes" bson:"attributes"`
	Image       *storage.Asset  `json:"image,omitempty" bson:"image,omitempty"`
	Gallery     []storage.Asset `json:"gallery" bson:"gallery"`
	OwnerID     string          `json:"owner_id" bson:"owner_id"`
	CreatedAt   time.Time       `json:"created_at" bson:"created_at"`
}

// OfferFields carries offer form fields. Nil pointers mean the field was
// absent from the request, which matters for partial updates.
type OfferFields struct {
	Name        *string
	Description *string
	Price       *float64

	Brand     *string
	Size      *string
	Condition *string
	Color     *string
	City      *string
}

// Attributes builds the ordered attribute list from whichever attribute
// fields are present. Absent fields simply omit their pair.
func (f *OfferFields) Attributes() []Attribute {
	var attrs []Attribute
	if f.Brand != nil {
		attrs = append(attrs, Attribute{Kind: AttributeBrand, Value: *f.Brand})
	}
	if f.Size != nil {
		attrs = append(attrs, Attribute{Kind: AttributeSize, Value: *f.Size})
	}
	if f.Condition != nil {
		attrs = append(attrs, Attribute{Kind: AttributeCondition, Value: *f.Condition})
	}
	if f.Color != nil {
		attrs = append(attrs, Attribute{Kind: AttributeColor, Value: *f.Color})
	}
	if f.City != nil {
		attrs = append(attrs, Attribute{Kind: AttributeLocation, Value: *f.City})
	}
	return attrs
}

// HasAttributes reports whether any attribute field is present. When true,
// an update replaces the entire attribute list with the supplied subset.
func (f *OfferFields) HasAttributes() bool {
	return f.Brand != nil || f.Size != nil || f.Condition != nil ||
		f.Color != nil || f.City != nil
}
