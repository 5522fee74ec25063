package resume

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEducationCRUD(t *testing.T) {
	d := New("r", time.Now())

	require.NoError(t, d.AddEducation(Education{ID: "e1", School: "A"}))
	require.NoError(t, d.AddEducation(Education{ID: "e2", School: "B"}))
	require.ErrorIs(t, d.AddEducation(Education{ID: "e1"}), ErrDuplicateID)
	require.ErrorIs(t, d.AddEducation(Education{ID: "  "}), ErrMissingID)
	assert.Len(t, d.Education, 2)

	assert.True(t, d.UpdateEducation("e2", EducationPatch{Degree: ptr("MSc")}))
	assert.Equal(t, Education{ID: "e2", School: "B", Degree: "MSc"}, d.Education[1])

	assert.True(t, d.RemoveEducation("e1"))
	assert.Equal(t, []string{"e2"}, []string{d.Education[0].ID})
}

func TestRemovedIDsAreNeverReused(t *testing.T) {
	d := New("r", time.Now())
	require.NoError(t, d.AddSkill(Skill{ID: "s1", Name: "Go", Level: 5}))
	require.NoError(t, d.AddCustomSection(CustomSection{ID: "c1", Title: "Awards"}))

	assert.True(t, d.RemoveSkill("s1"))
	assert.True(t, d.RemoveCustomSection("c1"))
	assert.False(t, d.RemoveSkill("s1"))
	assert.Equal(t, []string{"s1", "c1"}, d.RetiredIDs)

	require.ErrorIs(t, d.AddSkill(Skill{ID: "s1", Name: "Go", Level: 5}), ErrDuplicateID)
	require.ErrorIs(t, d.AddProject(Project{ID: "c1"}), ErrDuplicateID)
	assert.Empty(t, d.Skills)

	d.Skills = append(d.Skills, Skill{ID: "s1", Name: "Go", Level: 5})
	require.ErrorIs(t, d.Validate(), ErrDuplicateID)
}

func TestReplace_RetiresDroppedEntries(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d := New("r", created)
	require.NoError(t, d.AddSkill(Skill{ID: "s1", Name: "Go", Level: 5}))
	require.NoError(t, d.AddSkill(Skill{ID: "s2", Name: "Rust", Level: 3}))
	require.NoError(t, d.AddProject(Project{ID: "p0", Name: "old"}))
	assert.True(t, d.RemoveProject("p0"))

	next := *New("other", time.Now())
	next.Skills = []Skill{{ID: "s2", Name: "Rust", Level: 4}}
	d.Replace(next)

	assert.NotEqual(t, next.ID, d.ID)
	assert.Equal(t, created, d.CreatedAt)
	assert.Equal(t, "other", d.Name)
	assert.ElementsMatch(t, []string{"p0", "s1"}, d.RetiredIDs)
	require.ErrorIs(t, d.AddSkill(Skill{ID: "s1", Name: "Go", Level: 5}), ErrDuplicateID)
}

func TestEntryIDsAreDocumentWide(t *testing.T) {
	d := New("r", time.Now())
	require.NoError(t, d.AddSkill(Skill{ID: "shared", Name: "Go", Level: 5}))
	require.ErrorIs(t, d.AddProject(Project{ID: "shared"}), ErrDuplicateID)
	assert.Empty(t, d.Projects)
}

func TestAbsentIDIsNoOp(t *testing.T) {
	d := New("r", time.Now())
	require.NoError(t, d.AddExperience(Experience{ID: "x1", Company: "Acme", Highlights: []string{"a"}}))
	require.NoError(t, d.AddSkill(Skill{ID: "s1", Name: "Go", Level: 4}))
	require.NoError(t, d.AddProject(Project{ID: "p1", Name: "P"}))
	require.NoError(t, d.AddCustomSection(CustomSection{ID: "c1", Title: "T"}))
	before := d.Clone()

	assert.False(t, d.UpdateExperience("nope", ExperiencePatch{Company: ptr("Other")}))
	assert.False(t, d.RemoveExperience("nope"))
	assert.False(t, d.UpdateSkill("nope", SkillPatch{Level: ptr(1)}))
	assert.False(t, d.RemoveSkill("nope"))
	assert.False(t, d.UpdateProject("nope", ProjectPatch{Name: ptr("Q")}))
	assert.False(t, d.RemoveProject("nope"))
	assert.False(t, d.UpdateCustomSection("nope", CustomSectionPatch{Title: ptr("U")}))
	assert.False(t, d.RemoveCustomSection("nope"))
	assert.False(t, d.UpdateEducation("nope", EducationPatch{}))
	assert.False(t, d.RemoveEducation("nope"))

	assert.Equal(t, before, d)
}

func TestExperiencePatchMergesOnlySetFields(t *testing.T) {
	d := New("r", time.Now())
	require.NoError(t, d.AddExperience(Experience{ID: "x1", Company: "Acme", Position: "Dev", StartDate: "2020-01"}))

	d.UpdateExperience("x1", ExperiencePatch{Current: ptr(true), Highlights: &[]string{"shipped"}})

	got := d.Experience[0]
	assert.Equal(t, "Acme", got.Company)
	assert.Equal(t, "Dev", got.Position)
	assert.True(t, got.Current)
	assert.Equal(t, []string{"shipped"}, got.Highlights)
}

func TestRemoveKeepsInsertionOrder(t *testing.T) {
	d := New("r", time.Now())
	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, d.AddSkill(Skill{ID: id, Name: id, Level: 3}))
	}
	d.RemoveSkill("b")
	ids := []string{}
	for _, s := range d.Skills {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"a", "c", "d"}, ids)
}

func TestUpdatePersonal(t *testing.T) {
	d := New("r", time.Now())
	d.Personal.Email = "keep@example.com"

	d.UpdatePersonal(PersonalPatch{Name: ptr("Sam"), Avatar: ptr("data:image/jpeg;base64,AAAA")})

	assert.Equal(t, "Sam", d.Personal.Name)
	assert.Equal(t, "keep@example.com", d.Personal.Email)
	assert.Equal(t, "data:image/jpeg;base64,AAAA", d.Personal.Avatar)
}
