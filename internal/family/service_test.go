package family

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/olesko/rodovid/internal/apperr"
	"github.com/olesko/rodovid/internal/models"
	"github.com/olesko/rodovid/internal/store"
	"github.com/olesko/rodovid/internal/testutil"
)

func testService(t *testing.T) (*Service, *store.DB) {
	t.Helper()
	db := testutil.TestDB(t)
	return NewService(db), db
}

func mustCreate(t *testing.T, svc *Service, in PersonInput) *PersonDetail {
	t.Helper()
	p, err := svc.CreatePerson(context.Background(), in)
	if err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}
	return p
}

func rawPerson(t *testing.T, db *store.DB, id string) *models.Person {
	t.Helper()
	p, err := db.GetPerson(id)
	if err != nil {
		t.Fatalf("GetPerson %s: %v", id, err)
	}
	return p
}

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestCreatePerson_ParentChildSymmetry(t *testing.T) {
	svc, db := testService(t)
	ctx := context.Background()

	a := mustCreate(t, svc, PersonInput{FirstName: "Andriy", Gender: models.GenderMale})
	b, err := svc.CreatePerson(ctx, PersonInput{
		FirstName: "Bohdana",
		Gender:    models.GenderFemale,
		Parents:   []string{a.ID},
	})
	if err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}

	rawA := rawPerson(t, db, a.ID)
	rawB := rawPerson(t, db, b.ID)
	if !rawA.HasChild(b.ID) {
		t.Errorf("A.children = %v, want to contain %s", rawA.Children, b.ID)
	}
	if !rawB.HasParent(a.ID) {
		t.Errorf("B.parents = %v, want to contain %s", rawB.Parents, a.ID)
	}
}

func TestCreatePerson_ChildBackfillIsSetSemantics(t *testing.T) {
	svc, db := testService(t)

	a := mustCreate(t, svc, PersonInput{Gender: models.GenderMale})
	b := mustCreate(t, svc, PersonInput{Gender: models.GenderFemale, Parents: []string{a.ID}})

	// Re-linking the same parent on update must not duplicate the child entry.
	if _, err := svc.UpdatePerson(context.Background(), b.ID, PersonInput{
		Gender:  models.GenderFemale,
		Parents: []string{a.ID},
	}); err != nil {
		t.Fatalf("UpdatePerson: %v", err)
	}

	rawA := rawPerson(t, db, a.ID)
	if len(rawA.Children) != 1 {
		t.Errorf("A.children = %v, want exactly one entry", rawA.Children)
	}
}

func TestCreatePerson_GenderRequired(t *testing.T) {
	svc, _ := testService(t)
	_, err := svc.CreatePerson(context.Background(), PersonInput{FirstName: "X"})
	if !apperr.IsValidation(err) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestCreatePerson_DeathBeforeBirth(t *testing.T) {
	svc, _ := testService(t)
	_, err := svc.CreatePerson(context.Background(), PersonInput{
		Gender:    models.GenderMale,
		BirthDate: date("1950-06-01"),
		DeathDate: date("1950-06-01"),
	})
	if !apperr.IsValidation(err) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestCreatePerson_BirthInFuture(t *testing.T) {
	svc, _ := testService(t)
	future := time.Now().Add(48 * time.Hour)
	_, err := svc.CreatePerson(context.Background(), PersonInput{
		Gender:    models.GenderFemale,
		BirthDate: &future,
	})
	if !apperr.IsValidation(err) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestCreatePerson_UnknownParentKeptOneSided(t *testing.T) {
	svc, db := testService(t)

	ghost := "11111111-1111-1111-1111-111111111111"
	p := mustCreate(t, svc, PersonInput{Gender: models.GenderMale, Parents: []string{ghost}})

	raw := rawPerson(t, db, p.ID)
	if !raw.HasParent(ghost) {
		t.Errorf("parents = %v, want the unresolved reference recorded", raw.Parents)
	}
	// The expanded view skips the dangling reference.
	if len(p.Parents) != 0 {
		t.Errorf("expanded parents = %v, want empty", p.Parents)
	}
}

func TestMarriageLink_Symmetry(t *testing.T) {
	svc, db := testService(t)

	a := mustCreate(t, svc, PersonInput{Gender: models.GenderMale})
	b := mustCreate(t, svc, PersonInput{Gender: models.GenderFemale, Spouse: a.ID})

	rawA := rawPerson(t, db, a.ID)
	rawB := rawPerson(t, db, b.ID)
	if len(rawB.Spouses) != 1 || rawB.Spouses[0].PersonID != a.ID {
		t.Fatalf("B.spouses = %+v, want one link to A", rawB.Spouses)
	}
	if len(rawA.Spouses) != 1 || rawA.Spouses[0].PersonID != b.ID {
		t.Fatalf("A.spouses = %+v, want one link to B", rawA.Spouses)
	}
	if !rawA.Spouses[0].MarriageDate.Equal(rawB.Spouses[0].MarriageDate) {
		t.Errorf("marriage dates differ: %v vs %v",
			rawA.Spouses[0].MarriageDate, rawB.Spouses[0].MarriageDate)
	}
	if rawA.Spouses[0].DivorceDate != nil || rawB.Spouses[0].DivorceDate != nil {
		t.Error("fresh marriage links must have no divorce date")
	}
}

func TestUpdatePerson_ReplacesSpouseWholesale(t *testing.T) {
	svc, db := testService(t)
	ctx := context.Background()

	a := mustCreate(t, svc, PersonInput{Gender: models.GenderMale})
	b := mustCreate(t, svc, PersonInput{Gender: models.GenderFemale, Spouse: a.ID})
	c := mustCreate(t, svc, PersonInput{Gender: models.GenderMale})

	if _, err := svc.UpdatePerson(ctx, b.ID, PersonInput{
		Gender: models.GenderFemale,
		Spouse: c.ID,
	}); err != nil {
		t.Fatalf("UpdatePerson: %v", err)
	}

	rawA := rawPerson(t, db, a.ID)
	rawB := rawPerson(t, db, b.ID)
	rawC := rawPerson(t, db, c.ID)
	if len(rawA.Spouses) != 0 {
		t.Errorf("A.spouses = %+v, want empty after replacement", rawA.Spouses)
	}
	if len(rawB.Spouses) != 1 || rawB.Spouses[0].PersonID != c.ID {
		t.Errorf("B.spouses = %+v, want single link to C", rawB.Spouses)
	}
	if len(rawC.Spouses) != 1 || rawC.Spouses[0].PersonID != b.ID {
		t.Errorf("C.spouses = %+v, want single link to B", rawC.Spouses)
	}
}

func TestUpdatePerson_ParentDiff(t *testing.T) {
	svc, db := testService(t)
	ctx := context.Background()

	p1 := mustCreate(t, svc, PersonInput{Gender: models.GenderMale})
	p2 := mustCreate(t, svc, PersonInput{Gender: models.GenderFemale})
	p3 := mustCreate(t, svc, PersonInput{Gender: models.GenderFemale})
	child := mustCreate(t, svc, PersonInput{
		Gender:  models.GenderMale,
		Parents: []string{p1.ID, p2.ID},
	})

	// Keep p1, swap p2 for p3.
	if _, err := svc.UpdatePerson(ctx, child.ID, PersonInput{
		Gender:  models.GenderMale,
		Parents: []string{p1.ID, p3.ID},
	}); err != nil {
		t.Fatalf("UpdatePerson: %v", err)
	}

	if !rawPerson(t, db, p1.ID).HasChild(child.ID) {
		t.Error("p1 should still list the child")
	}
	if rawPerson(t, db, p2.ID).HasChild(child.ID) {
		t.Error("p2 should no longer list the child")
	}
	if !rawPerson(t, db, p3.ID).HasChild(child.ID) {
		t.Error("p3 should now list the child")
	}
}

func TestUpdatePerson_NotFound(t *testing.T) {
	svc, _ := testService(t)
	_, err := svc.UpdatePerson(context.Background(),
		"22222222-2222-2222-2222-222222222222", PersonInput{Gender: models.GenderMale})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeletePerson_CascadesLinks(t *testing.T) {
	svc, db := testService(t)
	ctx := context.Background()

	parent := mustCreate(t, svc, PersonInput{Gender: models.GenderMale})
	spouse := mustCreate(t, svc, PersonInput{Gender: models.GenderFemale})
	target := mustCreate(t, svc, PersonInput{
		Gender:  models.GenderFemale,
		Parents: []string{parent.ID},
		Spouse:  spouse.ID,
	})

	if err := svc.DeletePerson(ctx, target.ID); err != nil {
		t.Fatalf("DeletePerson: %v", err)
	}

	if rawPerson(t, db, parent.ID).HasChild(target.ID) {
		t.Error("former parent still lists the deleted person as a child")
	}
	if len(rawPerson(t, db, spouse.ID).Spouses) != 0 {
		t.Error("former spouse still holds a marriage link to the deleted person")
	}
	if _, err := db.GetPerson(target.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("deleted person still present: %v", err)
	}
}

func TestDeletePerson_ChildKeepsDanglingParentRef(t *testing.T) {
	svc, db := testService(t)
	ctx := context.Background()

	a := mustCreate(t, svc, PersonInput{Gender: models.GenderMale})
	b := mustCreate(t, svc, PersonInput{Gender: models.GenderFemale, Parents: []string{a.ID}})

	if err := svc.DeletePerson(ctx, a.ID); err != nil {
		t.Fatalf("DeletePerson: %v", err)
	}

	// Current behavior: the child's parents list keeps the deleted id.
	rawB := rawPerson(t, db, b.ID)
	if !rawB.HasParent(a.ID) {
		t.Errorf("B.parents = %v, expected the dangling reference to remain", rawB.Parents)
	}
	// The expanded view and traversal tolerate the dangling id.
	detail, err := svc.GetPerson(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetPerson: %v", err)
	}
	if len(detail.Parents) != 0 {
		t.Errorf("expanded parents = %v, want empty", detail.Parents)
	}
	anc, err := svc.Ancestors(ctx, b.ID)
	if err != nil {
		t.Fatalf("Ancestors: %v", err)
	}
	if len(anc) != 0 {
		t.Errorf("ancestors = %v, want empty", anc)
	}
}

func TestFamilyTree_GenerationOrder(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	g := mustCreate(t, svc, PersonInput{FirstName: "Hryhorii", Gender: models.GenderMale})
	a := mustCreate(t, svc, PersonInput{FirstName: "Anton", Gender: models.GenderMale, Parents: []string{g.ID}})
	b := mustCreate(t, svc, PersonInput{FirstName: "Bohdan", Gender: models.GenderMale, Parents: []string{a.ID}})

	tree, err := svc.FamilyTree(ctx, b.ID)
	if err != nil {
		t.Fatalf("FamilyTree: %v", err)
	}
	if tree.Person.ID != b.ID {
		t.Errorf("tree person = %s, want %s", tree.Person.ID, b.ID)
	}
	if len(tree.Ancestors) != 2 || tree.Ancestors[0].ID != a.ID || tree.Ancestors[1].ID != g.ID {
		t.Errorf("ancestors = %v, want [A, G]", ids(tree.Ancestors))
	}
	if len(tree.Descendants) != 0 {
		t.Errorf("descendants = %v, want empty", ids(tree.Descendants))
	}

	// And downward from the grandparent.
	desc, err := svc.Descendants(ctx, g.ID)
	if err != nil {
		t.Fatalf("Descendants: %v", err)
	}
	if len(desc) != 2 || desc[0].ID != a.ID || desc[1].ID != b.ID {
		t.Errorf("descendants = %v, want [A, B]", ids(desc))
	}
}

func TestAncestors_SharedAncestorDeduplicated(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	// Both parents share the same father.
	grandpa := mustCreate(t, svc, PersonInput{Gender: models.GenderMale})
	mother := mustCreate(t, svc, PersonInput{Gender: models.GenderFemale, Parents: []string{grandpa.ID}})
	father := mustCreate(t, svc, PersonInput{Gender: models.GenderMale, Parents: []string{grandpa.ID}})
	child := mustCreate(t, svc, PersonInput{
		Gender:  models.GenderFemale,
		Parents: []string{mother.ID, father.ID},
	})

	anc, err := svc.Ancestors(ctx, child.ID)
	if err != nil {
		t.Fatalf("Ancestors: %v", err)
	}
	if len(anc) != 3 {
		t.Fatalf("ancestors = %v, want 3 unique persons", ids(anc))
	}
	seen := map[string]int{}
	for _, p := range anc {
		seen[p.ID]++
	}
	if seen[grandpa.ID] != 1 {
		t.Errorf("shared grandparent appears %d times, want 1", seen[grandpa.ID])
	}
}

func TestCreatePerson_ParentsDeduplicated(t *testing.T) {
	svc, db := testService(t)

	a := mustCreate(t, svc, PersonInput{Gender: models.GenderMale})
	b := mustCreate(t, svc, PersonInput{
		Gender:  models.GenderFemale,
		Parents: []string{a.ID, a.ID},
	})

	if got := rawPerson(t, db, b.ID).Parents; len(got) != 1 {
		t.Errorf("parents = %v, want the duplicate collapsed", got)
	}
}

func TestUpdatePerson_SelfParentRejected(t *testing.T) {
	svc, db := testService(t)

	p := mustCreate(t, svc, PersonInput{Gender: models.GenderMale})
	_, err := svc.UpdatePerson(context.Background(), p.ID, PersonInput{
		Gender:  models.GenderMale,
		Parents: []string{p.ID},
	})
	if !apperr.IsValidation(err) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	// Rejected before persistence: the document is unchanged.
	if got := rawPerson(t, db, p.ID).Parents; len(got) != 0 {
		t.Errorf("parents = %v, want empty", got)
	}
}

func ids(people []models.Person) []string {
	out := make([]string, len(people))
	for i, p := range people {
		out[i] = p.ID
	}
	return out
}
