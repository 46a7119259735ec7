package user

import "go.mongodb.org/mongo-driver/bson/primitive"

// User represents a user document in the system.
// Name and Email are optional; nil means the field is absent from the document.
type User struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`              // ID is assigned by the store on insert
	Name  *string            `bson:"name,omitempty" json:"name,omitempty"`  // Name is free-form, unvalidated
	Email *string            `bson:"email,omitempty" json:"email,omitempty"` // Email is free-form, not unique
}

// Fields carries the mutable fields of a user as supplied by a caller.
type Fields struct {
	Name  *string
	Email *string
}

// New builds an unsaved user from the supplied fields.
func New(f Fields) *User {
	return &User{Name: f.Name, Email: f.Email}
}
