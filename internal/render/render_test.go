package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeBuilder/internal/resume"
)

func sampleDoc(t *testing.T) *resume.Document {
	t.Helper()
	d, err := resume.NewSample("Sample", time.Now())
	require.NoError(t, err)
	require.NoError(t, d.AddCustomSection(resume.CustomSection{ID: "c1", Title: "Awards", Content: "Hackathon winner"}))
	return d
}

func TestHTML_SingleLayoutFollowsDisplayOrder(t *testing.T) {
	d := sampleDoc(t)
	ids := make([]string, 0, len(d.Sections))
	for _, s := range d.Sections {
		if s.Type != resume.SectionPersonal {
			ids = append(ids, s.ID)
		}
	}
	// projects before experience
	reordered := []string{ids[3], ids[0], ids[1], ids[2], ids[4]}
	require.NoError(t, d.ReorderBody(reordered))

	out, err := HTML(d)
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, `id="resume-root"`)
	assert.Contains(t, html, "layout-single")
	assert.Less(t, strings.Index(html, `class="projects"`), strings.Index(html, `class="experience"`))
	assert.Contains(t, html, "Hackathon winner")
	assert.Contains(t, html, PresentLabel)
}

func TestHTML_HiddenSectionsAreSkipped(t *testing.T) {
	d := sampleDoc(t)
	sec, ok := d.SectionOf(resume.SectionSkills)
	require.True(t, ok)
	hidden := false
	d.UpdateSection(sec.ID, resume.SectionPatch{Visible: &hidden})

	out, err := HTML(d)
	require.NoError(t, err)
	assert.NotContains(t, string(out), `class="skills"`)
	assert.Contains(t, string(out), `class="projects"`)
}

func TestHTML_DoubleLayoutPartitions(t *testing.T) {
	d := sampleDoc(t)
	layout := resume.LayoutDouble
	d.UpdateTheme(resume.ThemePatch{Layout: &layout})

	out, err := HTML(d)
	require.NoError(t, err)
	html := string(out)

	left := strings.Index(html, `class="col-left"`)
	right := strings.Index(html, `class="col-right"`)
	require.Positive(t, left)
	require.Greater(t, right, left)
	assert.Less(t, strings.Index(html, `class="personal"`), left)
	assert.Greater(t, strings.Index(html, `class="skills"`), left)
	assert.Less(t, strings.Index(html, `class="skills"`), right)
	assert.Greater(t, strings.Index(html, `class="experience"`), right)
	assert.NotContains(t, html, "Hackathon winner")
}

func TestHTML_EscapesContentAndRejectsUnsafeAvatar(t *testing.T) {
	d := resume.New("r", time.Now())
	d.UpdatePersonal(resume.PersonalPatch{
		Name:   ptr(`<script>alert(1)</script>`),
		Avatar: ptr(`javascript:alert(1)`),
	})
	d.UpdateTheme(resume.ThemePatch{PrimaryColor: ptr(`red;}</style><script>`)})

	out, err := HTML(d)
	require.NoError(t, err)
	html := string(out)
	assert.NotContains(t, html, "<script>")
	assert.NotContains(t, html, `class="avatar"`)
	assert.Contains(t, html, "--primary: #1f2937;")
}

func TestHTML_AvatarDataURI(t *testing.T) {
	d := resume.New("r", time.Now())
	d.UpdatePersonal(resume.PersonalPatch{Name: ptr("Sam"), Avatar: ptr("data:image/jpeg;base64,AAAA")})

	out, err := HTML(d)
	require.NoError(t, err)
	assert.Contains(t, string(out), `src="data:image/jpeg;base64,AAAA"`)
	assert.Contains(t, string(out), "with-avatar")
}

func TestSizesFor(t *testing.T) {
	assert.Equal(t, "11px", SizesFor(resume.FontSmall).Base)
	assert.Equal(t, "24px", SizesFor(resume.FontLarge).Title)
	assert.Equal(t, SizesFor(resume.FontMedium), SizesFor("bogus"))
}

func ptr[T any](v T) *T { return &v }
