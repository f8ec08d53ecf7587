package notes

import "time"

// Note is the resource protected by the request gate. Every operation
// is scoped to the owning user; there is no sharing model.
type Note struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	OwnerID   string    `json:"-" bson:"owner_id"`
	Title     string    `json:"title" bson:"title"`
	Content   string    `json:"content" bson:"content"`
	Tags      []string  `json:"tags,omitempty" bson:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitempty" bson:"updated_at"`
}

// Update carries the mutable fields of a note.
type Update struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
}
