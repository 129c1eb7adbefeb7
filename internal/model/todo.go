package model

import "time"

// Todo is a single item of a workspace's list
type Todo struct {
	ID          int64     `json:"id" db:"id"`
	Text        string    `json:"text" db:"text"`
	Completed   bool      `json:"completed" db:"completed"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	OwnerID     *string   `json:"owner_id" db:"owner_id"` // null when added through the public route
	WorkspaceID int64     `json:"workspace_id" db:"workspace_id"`
}

// TodoInsert is the payload for creating a todo
type TodoInsert struct {
	Text        string  `json:"text"`
	OwnerID     *string `json:"owner_id"`
	WorkspaceID int64   `json:"workspace_id"`
}

// TodoUpdate holds the columns to change
type TodoUpdate struct {
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// Empty reports whether the update would not change anything
func (u TodoUpdate) Empty() bool {
	return u.Text == nil && u.Completed == nil
}

// CountCompleted returns how many todos are completed
func CountCompleted(todos []Todo) int {
	n := 0
	for _, t := range todos {
		if t.Completed {
			n++
		}
	}
	return n
}
