package common

import "time"

// Commit is a single commit read from the repository history.
type Commit struct {
	Hash        string
	AuthorDate  time.Time
	Subject     string
	Body        string
	Author      string
	AuthorEmail string
}

// ShortHash returns the abbreviated commit hash.
func (c Commit) ShortHash() string {
	if len(c.Hash) < 8 {
		return c.Hash
	}
	return c.Hash[:8]
}
