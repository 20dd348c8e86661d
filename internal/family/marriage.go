package family

import (
	"errors"
	"log/slog"
	"time"

	"github.com/olesko/rodovid/internal/apperr"
	"github.com/olesko/rodovid/internal/models"
	"github.com/olesko/rodovid/internal/store"
)

// createMarriageLink appends the marriage record to both sides. The
// initiating side is always written; if the other person does not
// exist the link stays one-sided, with a warning.
func (s *Service) createMarriageLink(tx *store.Tx, aID, bID string, marriageDate time.Time) error {
	if aID == bID {
		return apperr.Validationf("a person cannot marry themselves")
	}

	a, err := tx.GetPerson(aID)
	if err != nil {
		return err
	}
	a.Spouses = append(a.Spouses, models.SpouseLink{PersonID: bID, MarriageDate: marriageDate})
	if err := tx.SavePerson(a); err != nil {
		return err
	}

	b, err := tx.GetPerson(bID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			slog.Warn("spouse does not exist, marriage link kept one-sided",
				slog.String("person", aID), slog.String("spouse", bID))
			return nil
		}
		return err
	}
	b.Spouses = append(b.Spouses, models.SpouseLink{PersonID: aID, MarriageDate: marriageDate})
	return tx.SavePerson(b)
}

// removeAllMarriageLinks pulls every marriage record referencing the
// person out of each spouse's document, then clears the person's own
// spouses collection.
func (s *Service) removeAllMarriageLinks(tx *store.Tx, id string) error {
	p, err := tx.GetPerson(id)
	if err != nil {
		return err
	}
	if len(p.Spouses) == 0 {
		return nil
	}

	for _, link := range p.Spouses {
		spouse, err := tx.GetPerson(link.PersonID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				continue
			}
			return err
		}
		kept := spouse.Spouses[:0]
		for _, l := range spouse.Spouses {
			if l.PersonID != id {
				kept = append(kept, l)
			}
		}
		spouse.Spouses = kept
		if err := tx.SavePerson(spouse); err != nil {
			return err
		}
	}

	p.Spouses = []models.SpouseLink{}
	return tx.SavePerson(p)
}
