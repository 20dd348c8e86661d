package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/olesko/rodovid/internal/apperr"
	"github.com/olesko/rodovid/internal/models"
)

const personColumns = `id, first_name, last_name, middle_name, gender,
	birth_date, death_date, photo, comments, parents, spouses, children,
	created_at, updated_at`

// GetPerson loads one person document by id.
func (db *DB) GetPerson(id string) (*models.Person, error) {
	return getPerson(db.conn, id)
}

// GetPerson loads one person document by id inside the transaction.
func (t *Tx) GetPerson(id string) (*models.Person, error) {
	return getPerson(t.tx, id)
}

// ListPersons returns every person sorted by family name then given name.
func (db *DB) ListPersons() ([]models.Person, error) {
	rows, err := db.conn.Query(
		`SELECT `+personColumns+` FROM persons ORDER BY last_name, first_name`)
	if err != nil {
		return nil, fmt.Errorf("store: list persons: %w", err)
	}
	defer rows.Close()

	var out []models.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// InsertPerson persists a new person document.
func (t *Tx) InsertPerson(p *models.Person) error {
	parents, spouses, children, err := encodeRelations(p)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err = t.tx.Exec(`
		INSERT INTO persons (id, first_name, last_name, middle_name, gender,
			birth_date, death_date, photo, comments, parents, spouses, children,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.FirstName, p.LastName, p.MiddleName, p.Gender,
		nullTime(p.BirthDate), nullTime(p.DeathDate), p.Photo, p.Comments,
		parents, spouses, children, now, now)
	if err != nil {
		return fmt.Errorf("store: insert person: %w", err)
	}
	return nil
}

// SavePerson replaces the full document for an existing person.
func (t *Tx) SavePerson(p *models.Person) error {
	parents, spouses, children, err := encodeRelations(p)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	p.UpdatedAt = now
	res, err := t.tx.Exec(`
		UPDATE persons SET first_name = ?, last_name = ?, middle_name = ?,
			gender = ?, birth_date = ?, death_date = ?, photo = ?, comments = ?,
			parents = ?, spouses = ?, children = ?, updated_at = ?
		WHERE id = ?`,
		p.FirstName, p.LastName, p.MiddleName, p.Gender,
		nullTime(p.BirthDate), nullTime(p.DeathDate), p.Photo, p.Comments,
		parents, spouses, children, now, p.ID)
	if err != nil {
		return fmt.Errorf("store: save person: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// DeletePerson removes a person document.
func (t *Tx) DeletePerson(id string) error {
	res, err := t.tx.Exec(`DELETE FROM persons WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete person: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// PhotoPaths returns every non-empty photo reference keyed by person id.
func (db *DB) PhotoPaths() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT id, photo FROM persons WHERE photo != ''`)
	if err != nil {
		return nil, fmt.Errorf("store: photo paths: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var id, photo string
		if err := rows.Scan(&id, &photo); err != nil {
			return nil, err
		}
		out[id] = photo
	}
	return out, rows.Err()
}

func getPerson(q querier, id string) (*models.Person, error) {
	row := q.QueryRow(`SELECT `+personColumns+` FROM persons WHERE id = ?`, id)
	p, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get person %s: %w", id, err)
	}
	return p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPerson(row rowScanner) (*models.Person, error) {
	var (
		p                         models.Person
		birth, death              sql.NullTime
		parents, spouses, children string
	)
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.MiddleName, &p.Gender,
		&birth, &death, &p.Photo, &p.Comments, &parents, &spouses, &children,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if birth.Valid {
		t := birth.Time
		p.BirthDate = &t
	}
	if death.Valid {
		t := death.Time
		p.DeathDate = &t
	}
	if err := json.Unmarshal([]byte(parents), &p.Parents); err != nil {
		return nil, fmt.Errorf("store: decode parents: %w", err)
	}
	if err := json.Unmarshal([]byte(spouses), &p.Spouses); err != nil {
		return nil, fmt.Errorf("store: decode spouses: %w", err)
	}
	if err := json.Unmarshal([]byte(children), &p.Children); err != nil {
		return nil, fmt.Errorf("store: decode children: %w", err)
	}
	return &p, nil
}

func encodeRelations(p *models.Person) (parents, spouses, children string, err error) {
	pb, err := json.Marshal(nonNil(p.Parents))
	if err != nil {
		return "", "", "", fmt.Errorf("store: encode parents: %w", err)
	}
	sb, err := json.Marshal(nonNilLinks(p.Spouses))
	if err != nil {
		return "", "", "", fmt.Errorf("store: encode spouses: %w", err)
	}
	cb, err := json.Marshal(nonNil(p.Children))
	if err != nil {
		return "", "", "", fmt.Errorf("store: encode children: %w", err)
	}
	return string(pb), string(sb), string(cb), nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilLinks(s []models.SpouseLink) []models.SpouseLink {
	if s == nil {
		return []models.SpouseLink{}
	}
	return s
}
