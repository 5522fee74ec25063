package resume

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sectionIDs(secs []Section) []string {
	out := make([]string, len(secs))
	for i, s := range secs {
		out[i] = s.ID
	}
	return out
}

func TestVisibleOrderedSections_FiltersAndSorts(t *testing.T) {
	d := &Document{Sections: []Section{
		{ID: "a", Type: SectionSkills, Visible: true, Order: 3},
		{ID: "b", Type: SectionPersonal, Visible: true, Order: 0},
		{ID: "c", Type: SectionEducation, Visible: false, Order: 1},
		{ID: "d", Type: SectionProjects, Visible: true, Order: 2},
	}}

	got := d.VisibleOrderedSections()
	assert.Equal(t, []string{"b", "d", "a"}, sectionIDs(got))
	for _, s := range got {
		assert.True(t, s.Visible)
	}
}

func TestVisibleOrderedSections_TiesKeepArrayPosition(t *testing.T) {
	d := &Document{Sections: []Section{
		{ID: "x", Visible: true, Order: 5},
		{ID: "y", Visible: true, Order: 1},
		{ID: "z", Visible: true, Order: 5},
		{ID: "w", Visible: true, Order: 1},
	}}
	assert.Equal(t, []string{"y", "w", "x", "z"}, sectionIDs(d.VisibleOrderedSections()))
}

func TestVisibleOrderedSections_ExtremeOrders(t *testing.T) {
	d := &Document{Sections: []Section{
		{ID: "max", Visible: true, Order: math.MaxInt},
		{ID: "min", Visible: true, Order: math.MinInt},
		{ID: "zero", Visible: true, Order: 0},
	}}
	assert.Equal(t, []string{"min", "zero", "max"}, sectionIDs(d.VisibleOrderedSections()))
}

func TestVisibleOrderedSections_DoesNotMutate(t *testing.T) {
	d := &Document{Sections: []Section{
		{ID: "a", Visible: true, Order: 2},
		{ID: "b", Visible: true, Order: 1},
	}}
	_ = d.VisibleOrderedSections()
	assert.Equal(t, []string{"a", "b"}, sectionIDs(d.Sections))
}

func TestReorder_RenumbersFromZero(t *testing.T) {
	d := New("r", time.Now())
	seq := []Section{d.Sections[4], d.Sections[2], d.Sections[0], d.Sections[1], d.Sections[3]}
	seq[1].Visible = false
	want := sectionIDs(seq)

	d.Reorder(seq)

	assert.Equal(t, want, sectionIDs(d.Sections))
	for i, s := range d.Sections {
		assert.Equal(t, i, s.Order)
	}
	assert.False(t, d.Sections[1].Visible)

	var visibleWant []string
	for _, s := range d.Sections {
		if s.Visible {
			visibleWant = append(visibleWant, s.ID)
		}
	}
	assert.Equal(t, visibleWant, sectionIDs(d.VisibleOrderedSections()))
}

func TestReorderByID(t *testing.T) {
	d := New("r", time.Now())
	ids := sectionIDs(d.Sections)

	require.ErrorIs(t, d.ReorderByID(ids[:3]), ErrIncompleteReorder)
	require.ErrorIs(t, d.ReorderByID([]string{ids[0], ids[1], ids[2], ids[3], "nope"}), ErrUnknownSection)
	require.ErrorIs(t, d.ReorderByID([]string{ids[0], ids[0], ids[2], ids[3], ids[4]}), ErrUnknownSection)
	assert.Equal(t, ids, sectionIDs(d.Sections))

	rev := []string{ids[4], ids[3], ids[2], ids[1], ids[0]}
	require.NoError(t, d.ReorderByID(rev))
	assert.Equal(t, rev, sectionIDs(d.Sections))
}

func TestReorderBody_PinsPersonal(t *testing.T) {
	d := New("r", time.Now())
	ids := sectionIDs(d.Sections)
	personal := ids[0]

	require.NoError(t, d.ReorderBody([]string{ids[3], personal, ids[1], ids[4], ids[2]}))
	assert.Equal(t, []string{personal, ids[3], ids[1], ids[4], ids[2]}, sectionIDs(d.Sections))
	assert.Equal(t, 0, d.Sections[0].Order)

	require.NoError(t, d.ReorderBody([]string{ids[1], ids[2], ids[3], ids[4]}))
	assert.Equal(t, personal, d.Sections[0].ID)
}

func TestTwoColumnLayout_FixedPartition(t *testing.T) {
	d := New("r", time.Now())
	require.NoError(t, d.AddCustomSection(CustomSection{ID: "c1", Title: "Awards"}))
	d.UpdateSection(d.Sections[3].ID, SectionPatch{Visible: ptr(false)}) // skills

	layout := d.TwoColumnLayout()

	types := func(secs []Section) []SectionType {
		out := make([]SectionType, len(secs))
		for i, s := range secs {
			out[i] = s.Type
		}
		return out
	}
	assert.Equal(t, []SectionType{SectionPersonal}, types(layout.Header))
	assert.Equal(t, []SectionType{SectionEducation}, types(layout.Left))
	assert.Equal(t, []SectionType{SectionExperience, SectionProjects}, types(layout.Right))
	assert.Equal(t, []SectionType{SectionCustom}, types(layout.Omitted))

	assert.Equal(t, layout.Right, d.SectionsForColumn(ColumnRight))
	assert.Empty(t, d.SectionsForColumn(Column("middle")))
}

func TestCustomSectionDescriptorLifecycle(t *testing.T) {
	d := New("r", time.Now())
	require.NoError(t, d.AddCustomSection(CustomSection{ID: "c1", Title: "Awards", Content: "Best paper"}))

	sec, ok := d.SectionOf(SectionCustom)
	require.True(t, ok)
	assert.Equal(t, "c1", sec.ID)
	assert.Equal(t, 5, sec.Order)
	assert.Equal(t, "c1", d.VisibleOrderedSections()[5].ID)

	assert.True(t, d.UpdateCustomSection("c1", CustomSectionPatch{Title: ptr("Honors")}))
	sec, _ = d.SectionOf(SectionCustom)
	assert.Equal(t, "Honors", sec.Title)

	assert.True(t, d.RemoveCustomSection("c1"))
	_, ok = d.SectionOf(SectionCustom)
	assert.False(t, ok)
	assert.Len(t, d.Sections, 5)
}

func TestUpdateSection(t *testing.T) {
	d := New("r", time.Now())
	id := d.Sections[1].ID

	assert.True(t, d.UpdateSection(id, SectionPatch{Title: ptr("Work")}))
	assert.Equal(t, "Work", d.Sections[1].Title)
	assert.True(t, d.Sections[1].Visible)

	before := d.Clone()
	assert.False(t, d.UpdateSection("missing", SectionPatch{Title: ptr("x")}))
	assert.Equal(t, before.Sections, d.Sections)
}

func ptr[T any](v T) *T { return &v }
