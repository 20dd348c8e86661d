// Package family implements the relationship graph over person
// documents: creation, update and deletion with bidirectional
// parent/child and spouse link maintenance, and ancestor/descendant
// traversal.
package family

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/olesko/rodovid/internal/apperr"
	"github.com/olesko/rodovid/internal/models"
	"github.com/olesko/rodovid/internal/store"
)

// PersonInput carries the writable fields for create and update.
// Parents is the already-assembled parent id list (at most two);
// Spouse, when non-empty, names the person to hold a marriage link with.
type PersonInput struct {
	FirstName  string
	LastName   string
	MiddleName string
	Gender     string
	BirthDate  *time.Time
	DeathDate  *time.Time
	Comments   string
	Photo      string
	Parents    []string
	Spouse     string
}

// Service owns the relationship graph. All multi-document mutations
// run inside a single store transaction, so the symmetry invariants
// (parent/child, marriage) hold after every successful call.
type Service struct {
	db *store.DB
}

// NewService creates a family service over the given store.
func NewService(db *store.DB) *Service {
	return &Service{db: db}
}

// CreatePerson persists a new person and backfills each named parent's
// children set. Unknown parent or spouse ids are recorded on the new
// document but the reverse link is skipped with a warning.
func (s *Service) CreatePerson(ctx context.Context, in PersonInput) (*PersonDetail, error) {
	p := &models.Person{
		ID:         uuid.NewString(),
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		MiddleName: in.MiddleName,
		Gender:     in.Gender,
		BirthDate:  in.BirthDate,
		DeathDate:  in.DeathDate,
		Photo:      in.Photo,
		Comments:   in.Comments,
		Parents:    dedupe(in.Parents),
		Spouses:    []models.SpouseLink{},
		Children:   []string{},
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	err := s.db.Update(func(tx *store.Tx) error {
		if err := tx.InsertPerson(p); err != nil {
			return err
		}
		if err := s.linkParents(tx, p.ID, p.Parents); err != nil {
			return err
		}
		if in.Spouse != "" {
			return s.createMarriageLink(tx, p.ID, in.Spouse, time.Now().UTC())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetPerson(ctx, p.ID)
}

// UpdatePerson replaces the scalar fields of an existing person and
// reconciles its relationship links: the parent diff is applied as
// disjoint remove-then-add set operations, and a changed spouse
// replaces all existing marriage links wholesale.
func (s *Service) UpdatePerson(ctx context.Context, id string, in PersonInput) (*PersonDetail, error) {
	newParents := dedupe(in.Parents)

	err := s.db.Update(func(tx *store.Tx) error {
		p, err := tx.GetPerson(id)
		if err != nil {
			return err
		}

		oldParents := p.Parents
		var currentSpouse string
		if len(p.Spouses) > 0 {
			currentSpouse = p.Spouses[0].PersonID
		}

		p.FirstName = in.FirstName
		p.LastName = in.LastName
		p.MiddleName = in.MiddleName
		p.Gender = in.Gender
		p.BirthDate = in.BirthDate
		p.DeathDate = in.DeathDate
		p.Comments = in.Comments
		if in.Photo != "" {
			p.Photo = in.Photo
		}
		p.Parents = newParents
		if err := p.Validate(); err != nil {
			return err
		}
		if err := tx.SavePerson(p); err != nil {
			return err
		}

		// Parents present in both sets are left untouched.
		for _, pid := range diff(oldParents, newParents) {
			if err := s.unlinkChild(tx, pid, id); err != nil {
				return err
			}
		}
		if err := s.linkParents(tx, id, diff(newParents, oldParents)); err != nil {
			return err
		}

		// A different spouse replaces the whole marriage history.
		if in.Spouse != "" && in.Spouse != currentSpouse {
			if err := s.removeAllMarriageLinks(tx, id); err != nil {
				return err
			}
			return s.createMarriageLink(tx, id, in.Spouse, time.Now().UTC())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetPerson(ctx, id)
}

// DeletePerson removes a person and cleans its id out of every former
// parent's children set and every spouse's marriage links. The
// person's own children are not touched: they keep the now-dangling
// parent reference.
func (s *Service) DeletePerson(_ context.Context, id string) error {
	return s.db.Update(func(tx *store.Tx) error {
		p, err := tx.GetPerson(id)
		if err != nil {
			return err
		}
		for _, pid := range p.Parents {
			if err := s.unlinkChild(tx, pid, id); err != nil {
				return err
			}
		}
		if err := s.removeAllMarriageLinks(tx, id); err != nil {
			return err
		}
		return tx.DeletePerson(id)
	})
}

// linkParents adds childID to each named parent's children set.
// Set semantics: a parent already listing the child is left unchanged,
// so retries cannot produce duplicates.
func (s *Service) linkParents(tx *store.Tx, childID string, parentIDs []string) error {
	for _, pid := range parentIDs {
		parent, err := tx.GetPerson(pid)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				slog.Warn("parent does not exist, reference kept one-sided",
					slog.String("parent", pid), slog.String("child", childID))
				continue
			}
			return err
		}
		if parent.HasChild(childID) {
			continue
		}
		parent.Children = append(parent.Children, childID)
		if err := tx.SavePerson(parent); err != nil {
			return err
		}
	}
	return nil
}

// unlinkChild pulls childID out of the parent's children set. A parent
// that no longer exists is skipped.
func (s *Service) unlinkChild(tx *store.Tx, parentID, childID string) error {
	parent, err := tx.GetPerson(parentID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil
		}
		return err
	}
	if !parent.HasChild(childID) {
		return nil
	}
	kept := parent.Children[:0]
	for _, cid := range parent.Children {
		if cid != childID {
			kept = append(kept, cid)
		}
	}
	parent.Children = kept
	return tx.SavePerson(parent)
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// diff returns the ids present in a but not in b.
func diff(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, id := range b {
		inB[id] = struct{}{}
	}
	var out []string
	for _, id := range a {
		if _, ok := inB[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
