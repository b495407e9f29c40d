package main

import "time"

// Sections lists the labels offered by the publish form. The store does not
// enforce them.
var Sections = []string{"Power Rankings", "The Dumps"}

type Account struct {
	ID       int64
	Username string
}

type Post struct {
	ID      int64
	Title   string
	Content string
	Image   string
	Section string
	Created time.Time
}

type Session struct {
	Token     string
	AccountID int64
	Username  string
	ExpiresAt time.Time
}
