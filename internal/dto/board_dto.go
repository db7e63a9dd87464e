package dto

import "time"

// BoardView is the nested board representation assembled on read
type BoardView struct {
	Columns []ColumnView `json:"columns"`
}

// ColumnView is one board column with its tasks in deterministic order
type ColumnView struct {
	Identifier string     `json:"identifier"`
	Name       string     `json:"name"`
	Color      string     `json:"color"`
	Tasks      []TaskView `json:"tasks"`
}

// TaskView is one card as it appears inside a board column
type TaskView struct {
	Code        string        `json:"code"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Assignee    *string       `json:"assignee"`
	StartDate   *time.Time    `json:"start_date"`
	EndDate     *time.Time    `json:"end_date"`
	Tags        []TagResponse `json:"tags"`
}
