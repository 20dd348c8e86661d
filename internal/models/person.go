// Package models defines the domain types for rodovid.
package models

import (
	"strings"
	"time"

	"github.com/olesko/rodovid/internal/apperr"
)

// Gender values accepted for a Person.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// MaxParents is the hard cap on the parents collection.
const MaxParents = 2

// MaxCommentLength caps the free-text comment field.
const MaxCommentLength = 1000

// SpouseLink is one marriage record inside a Person document. Every
// link must be mirrored by a symmetric link in the referenced person's
// own spouses collection.
type SpouseLink struct {
	PersonID     string     `json:"personId"`
	MarriageDate time.Time  `json:"marriageDate"`
	DivorceDate  *time.Time `json:"divorceDate"`
}

// Person is one node in the relationship graph.
//
// Parents holds at most two unique identifiers and never the person's
// own id. Children is derived: it is maintained by the family service
// when a child names this person as a parent, never set by clients.
type Person struct {
	ID         string       `json:"id"`
	FirstName  string       `json:"firstName"`
	LastName   string       `json:"lastName"`
	MiddleName string       `json:"middleName"`
	Gender     string       `json:"gender"`
	BirthDate  *time.Time   `json:"birthDate"`
	DeathDate  *time.Time   `json:"deathDate"`
	Photo      string       `json:"photo,omitempty"`
	Comments   string       `json:"comments"`
	Parents    []string     `json:"parents"`
	Spouses    []SpouseLink `json:"spouses"`
	Children   []string     `json:"children"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// Validate enforces the write-time invariants. It is called by the
// family service immediately before every persist.
func (p *Person) Validate() error {
	if p.Gender != GenderMale && p.Gender != GenderFemale {
		return apperr.Validationf("gender must be %q or %q", GenderMale, GenderFemale)
	}
	if p.BirthDate != nil && p.BirthDate.After(time.Now()) {
		return apperr.Validationf("birth date cannot be in the future")
	}
	if p.DeathDate != nil && p.BirthDate != nil && !p.DeathDate.After(*p.BirthDate) {
		return apperr.Validationf("death date must be after birth date")
	}
	if len(p.Comments) > MaxCommentLength {
		return apperr.Validationf("comment cannot exceed %d characters", MaxCommentLength)
	}
	if len(p.Parents) > MaxParents {
		return apperr.Validationf("a person can have at most %d parents", MaxParents)
	}
	seen := make(map[string]struct{}, len(p.Parents))
	for _, id := range p.Parents {
		if id == p.ID {
			return apperr.Validationf("a person cannot be their own parent")
		}
		if _, dup := seen[id]; dup {
			return apperr.Validationf("duplicate parent %s", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// FullName joins last, first and middle name, skipping empty parts.
func (p *Person) FullName() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.LastName, p.FirstName, p.MiddleName} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return "unnamed"
	}
	return strings.Join(parts, " ")
}

// IsAlive reports whether no death date is recorded.
func (p *Person) IsAlive() bool {
	return p.DeathDate == nil
}

// Age returns the age in whole years, at death date if one is
// recorded, or -1 when the birth date is unknown.
func (p *Person) Age() int {
	if p.BirthDate == nil {
		return -1
	}
	end := time.Now()
	if p.DeathDate != nil {
		end = *p.DeathDate
	}
	return end.Year() - p.BirthDate.Year()
}

// CurrentSpouseID returns the id of the first non-divorced marriage
// link, or empty when there is none.
func (p *Person) CurrentSpouseID() string {
	for _, s := range p.Spouses {
		if s.DivorceDate == nil {
			return s.PersonID
		}
	}
	return ""
}

// HasParent reports whether id is present in the parents collection.
func (p *Person) HasParent(id string) bool {
	for _, pid := range p.Parents {
		if pid == id {
			return true
		}
	}
	return false
}

// HasChild reports whether id is present in the children collection.
func (p *Person) HasChild(id string) bool {
	for _, cid := range p.Children {
		if cid == id {
			return true
		}
	}
	return false
}
