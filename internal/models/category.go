package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Slug        string             `json:"slug" bson:"slug"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Image       string             `json:"image,omitempty" bson:"image,omitempty"`
	IsDeleted   bool               `json:"-" bson:"is_deleted"`
	DeletedAt   *time.Time         `json:"deleted_at,omitempty" bson:"deleted_at"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// CategoryUpdate holds the editable category fields; nil means unchanged.
type CategoryUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Image       *string `json:"image,omitempty"`
}

// CategoryRef points a product at exactly one category. It is stored as the
// category's ObjectID; reads may expand it to the category record, in which
// case it serializes as {"id", "name"} instead of the bare id.
type CategoryRef struct {
	ID       primitive.ObjectID
	Expanded *Category
}

func RefTo(id primitive.ObjectID) CategoryRef {
	return CategoryRef{ID: id}
}

func ExpandedRef(c *Category) CategoryRef {
	return CategoryRef{ID: c.ID, Expanded: c}
}

func (r CategoryRef) IsZero() bool {
	return r.ID.IsZero()
}

type categorySummary struct {
	ID   primitive.ObjectID `json:"id"`
	Name string             `json:"name"`
}

func (r CategoryRef) MarshalJSON() ([]byte, error) {
	switch {
	case r.Expanded != nil:
		return json.Marshal(categorySummary{ID: r.Expanded.ID, Name: r.Expanded.Name})
	case r.ID.IsZero():
		return []byte("null"), nil
	default:
		return json.Marshal(r.ID.Hex())
	}
}

func (r *CategoryRef) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = CategoryRef{}
		return nil
	}
	var hex string
	if err := json.Unmarshal(data, &hex); err == nil {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			return err
		}
		*r = RefTo(id)
		return nil
	}
	var summary categorySummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return err
	}
	*r = ExpandedRef(&Category{ID: summary.ID, Name: summary.Name})
	return nil
}

func (r CategoryRef) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if r.ID.IsZero() {
		return bson.MarshalValue(nil)
	}
	return bson.MarshalValue(r.ID)
}

func (r *CategoryRef) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	*r = CategoryRef{}
	if t == bsontype.Null || t == bsontype.Undefined {
		return nil
	}
	var id primitive.ObjectID
	if err := (bson.RawValue{Type: t, Value: data}).Unmarshal(&id); err != nil {
		return err
	}
	r.ID = id
	return nil
}
