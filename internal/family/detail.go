package family

import (
	"context"
	"errors"
	"time"

	"github.com/olesko/rodovid/internal/apperr"
	"github.com/olesko/rodovid/internal/models"
)

// PersonRef is the summary form a related person is expanded to in
// list and detail responses.
type PersonRef struct {
	ID        string     `json:"id"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Gender    string     `json:"gender"`
	BirthDate *time.Time `json:"birthDate"`
}

// SpouseDetail is a marriage link with the referenced person expanded.
// Person is nil when the reference does not resolve.
type SpouseDetail struct {
	Person       *PersonRef `json:"personId"`
	MarriageDate time.Time  `json:"marriageDate"`
	DivorceDate  *time.Time `json:"divorceDate"`
}

// PersonDetail is a person document with all relationship references
// expanded one level.
type PersonDetail struct {
	ID         string         `json:"id"`
	FirstName  string         `json:"firstName"`
	LastName   string         `json:"lastName"`
	MiddleName string         `json:"middleName"`
	Gender     string         `json:"gender"`
	BirthDate  *time.Time     `json:"birthDate"`
	DeathDate  *time.Time     `json:"deathDate"`
	Photo      string         `json:"photo,omitempty"`
	Comments   string         `json:"comments"`
	Parents    []PersonRef    `json:"parents"`
	Spouses    []SpouseDetail `json:"spouses"`
	Children   []PersonRef    `json:"children"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// GetPerson loads one person with relationship references expanded.
func (s *Service) GetPerson(_ context.Context, id string) (*PersonDetail, error) {
	p, err := s.db.GetPerson(id)
	if err != nil {
		return nil, err
	}
	return s.expand(p)
}

// ListPersons returns every person sorted by family name then given
// name, each expanded one level.
func (s *Service) ListPersons(_ context.Context) ([]PersonDetail, error) {
	people, err := s.db.ListPersons()
	if err != nil {
		return nil, err
	}
	out := make([]PersonDetail, 0, len(people))
	for i := range people {
		d, err := s.expand(&people[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, nil
}

func (s *Service) expand(p *models.Person) (*PersonDetail, error) {
	d := &PersonDetail{
		ID:         p.ID,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		MiddleName: p.MiddleName,
		Gender:     p.Gender,
		BirthDate:  p.BirthDate,
		DeathDate:  p.DeathDate,
		Photo:      p.Photo,
		Comments:   p.Comments,
		Parents:    []PersonRef{},
		Spouses:    []SpouseDetail{},
		Children:   []PersonRef{},
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}

	for _, pid := range p.Parents {
		if ref, err := s.ref(pid); err != nil {
			return nil, err
		} else if ref != nil {
			d.Parents = append(d.Parents, *ref)
		}
	}
	for _, cid := range p.Children {
		if ref, err := s.ref(cid); err != nil {
			return nil, err
		} else if ref != nil {
			d.Children = append(d.Children, *ref)
		}
	}
	for _, link := range p.Spouses {
		ref, err := s.ref(link.PersonID)
		if err != nil {
			return nil, err
		}
		d.Spouses = append(d.Spouses, SpouseDetail{
			Person:       ref,
			MarriageDate: link.MarriageDate,
			DivorceDate:  link.DivorceDate,
		})
	}
	return d, nil
}

// ref resolves id to a summary, or nil for a dangling reference.
func (s *Service) ref(id string) (*PersonRef, error) {
	p, err := s.db.GetPerson(id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &PersonRef{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Gender:    p.Gender,
		BirthDate: p.BirthDate,
	}, nil
}
