package family

import (
	"context"
	"errors"

	"github.com/olesko/rodovid/internal/apperr"
	"github.com/olesko/rodovid/internal/models"
)

// Tree is the family-tree payload for one person.
type Tree struct {
	Person      *PersonDetail   `json:"person"`
	Ancestors   []models.Person `json:"ancestors"`
	Descendants []models.Person `json:"descendants"`
}

// Ancestors walks the parents chain breadth-first and returns every
// reachable ancestor in generation order, deduplicated. The visited
// set makes the walk terminate even if bad data forms a cycle;
// dangling parent references are skipped.
func (s *Service) Ancestors(_ context.Context, id string) ([]models.Person, error) {
	return s.walk(id, func(p *models.Person) []string { return p.Parents })
}

// Descendants is the mirror of Ancestors over the children chain.
func (s *Service) Descendants(_ context.Context, id string) ([]models.Person, error) {
	return s.walk(id, func(p *models.Person) []string { return p.Children })
}

// FamilyTree returns the person (expanded one level) together with all
// ancestors and descendants.
func (s *Service) FamilyTree(ctx context.Context, id string) (*Tree, error) {
	person, err := s.GetPerson(ctx, id)
	if err != nil {
		return nil, err
	}
	ancestors, err := s.Ancestors(ctx, id)
	if err != nil {
		return nil, err
	}
	descendants, err := s.Descendants(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Tree{Person: person, Ancestors: ancestors, Descendants: descendants}, nil
}

// walk performs a breadth-first traversal from id following next().
func (s *Service) walk(id string, next func(*models.Person) []string) ([]models.Person, error) {
	start, err := s.db.GetPerson(id)
	if err != nil {
		return nil, err
	}

	visited := map[string]struct{}{id: {}}
	queue := append([]string(nil), next(start)...)
	out := []models.Person{}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if _, ok := visited[cur]; ok {
			continue
		}
		visited[cur] = struct{}{}

		p, err := s.db.GetPerson(cur)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				// Dangling reference (e.g. a deleted parent).
				continue
			}
			return nil, err
		}
		out = append(out, *p)
		queue = append(queue, next(p)...)
	}
	return out, nil
}
