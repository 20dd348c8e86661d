package api

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/olesko/rodovid/internal/family"
	"github.com/olesko/rodovid/internal/models"
)

// PersonRequest is the request body for creating or updating a person.
// Dates accept "2006-01-02" or RFC 3339. Parent1/Parent2/Spouse are
// person ids; the photo itself arrives as a multipart file field.
type PersonRequest struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	MiddleName string `json:"middleName"`
	Gender     string `json:"gender"`
	BirthDate  string `json:"birthDate"`
	DeathDate  string `json:"deathDate"`
	Parent1    string `json:"parent1"`
	Parent2    string `json:"parent2"`
	Spouse     string `json:"spouse"`
	Comments   string `json:"comments"`
}

// Validate checks the request shape.
func (r PersonRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Gender,
			validation.Required.Error("gender is required"),
			validation.In(models.GenderMale, models.GenderFemale).
				Error(`gender must be "male" or "female"`)),
		validation.Field(&r.BirthDate, validation.By(validDate)),
		validation.Field(&r.DeathDate, validation.By(validDate)),
		validation.Field(&r.Parent1, validation.By(validPersonID)),
		validation.Field(&r.Parent2, validation.By(validPersonID),
			validation.By(func(any) error {
				if r.Parent2 != "" && r.Parent2 == r.Parent1 {
					return validation.NewError("parent2_same", "parent2 cannot be the same person as parent1")
				}
				return nil
			})),
		validation.Field(&r.Spouse, validation.By(validPersonID)),
		validation.Field(&r.Comments,
			validation.Length(0, models.MaxCommentLength).
				Error("comment cannot exceed 1000 characters")),
	)
}

// ToInput converts the validated request to a service input. photo is
// the stored photo path for a freshly uploaded file, empty otherwise.
func (r PersonRequest) ToInput(photo string) (family.PersonInput, error) {
	birth, err := parseDate(r.BirthDate)
	if err != nil {
		return family.PersonInput{}, err
	}
	death, err := parseDate(r.DeathDate)
	if err != nil {
		return family.PersonInput{}, err
	}

	var parents []string
	if r.Parent1 != "" {
		parents = append(parents, r.Parent1)
	}
	if r.Parent2 != "" {
		parents = append(parents, r.Parent2)
	}

	return family.PersonInput{
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		MiddleName: r.MiddleName,
		Gender:     r.Gender,
		BirthDate:  birth,
		DeathDate:  death,
		Comments:   r.Comments,
		Photo:      photo,
		Parents:    parents,
		Spouse:     r.Spouse,
	}, nil
}

// ScheduleRequest is the request body for creating a schedule entry.
type ScheduleRequest struct {
	Title string `json:"title"`
	Date  string `json:"date"`
	Time  string `json:"time"`
}

// Validate checks the request shape.
func (r ScheduleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.Date, validation.Required),
		validation.Field(&r.Time, validation.Required),
	)
}

var dateLayouts = []string{"2006-01-02", time.RFC3339}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, validation.NewError("date_format", "date must be YYYY-MM-DD or RFC 3339")
}

func validDate(v any) error {
	s, _ := v.(string)
	_, err := parseDate(s)
	return err
}

func validPersonID(v any) error {
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	if _, err := uuid.Parse(s); err != nil {
		return validation.NewError("person_id", "must be a valid person id")
	}
	return nil
}
