package api

import "time"

type Article struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Summary          string    `json:"summary"`
	Body             string    `json:"body"`
	Thumbnail        string    `json:"thumbnail"`
	Tags             []string  `json:"tags"`
	ShowOnHomeScreen bool      `json:"show_on_home_screen"`
	LastUpdated      time.Time `json:"last_updated"`
}

type Algorithm struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Summary          string    `json:"summary"`
	Body             string    `json:"body"`
	Thumbnail        string    `json:"thumbnail"`
	Kind             string    `json:"kind"`
	Switches         []Switch  `json:"switches,omitempty"`
	Outcomes         []Outcome `json:"outcomes"`
	ShowOnHomeScreen bool      `json:"show_on_home_screen"`
	LastUpdated      time.Time `json:"last_updated"`
}

type Switch struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Weight      int    `json:"weight"`
}

type Outcome struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Threshold int    `json:"threshold"`
}

type Tag struct {
	ID          string    `json:"id"`
	Designation string    `json:"designation"`
	Description string    `json:"description"`
	LastUpdated time.Time `json:"last_updated"`
}

type IntroSequence struct {
	ID          string      `json:"id"`
	Items       []IntroItem `json:"items"`
	LastUpdated time.Time   `json:"last_updated"`
}

type IntroItem struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Error is the body of every non-2xx response.
type Error struct {
	Error string `json:"error"`
}
