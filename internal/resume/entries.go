package resume

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrMissingID   = errors.New("entry id is required")
	ErrDuplicateID = errors.New("entry id already in use")
)

type entry interface {
	entryID() string
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func hasID[T entry](list []T, id string) bool {
	return slices.ContainsFunc(list, func(x T) bool { return x.entryID() == id })
}

// hasEntry 报告 id 是否已被任一集合中的条目使用。
func (d *Document) hasEntry(id string) bool {
	return hasID(d.Education, id) || hasID(d.Experience, id) || hasID(d.Skills, id) ||
		hasID(d.Projects, id) || hasID(d.CustomSections, id)
}

func addEntry[T entry](d *Document, list []T, e T) ([]T, error) {
	id := strings.TrimSpace(e.entryID())
	if id == "" {
		return list, ErrMissingID
	}
	if d.hasEntry(id) {
		return list, fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	if d.retired(id) {
		return list, fmt.Errorf("%w: %s was removed earlier", ErrDuplicateID, id)
	}
	return append(list, e), nil
}

func (d *Document) retired(id string) bool {
	return slices.Contains(d.RetiredIDs, id)
}

func (d *Document) retire(id string) {
	if !d.retired(id) {
		d.RetiredIDs = append(d.RetiredIDs, id)
	}
}

// entryIDs 返回所有集合中的条目 id。
func (d *Document) entryIDs() []string {
	ids := make([]string, 0, len(d.Education)+len(d.Experience)+len(d.Skills)+len(d.Projects)+len(d.CustomSections))
	for _, e := range d.Education {
		ids = append(ids, e.ID)
	}
	for _, e := range d.Experience {
		ids = append(ids, e.ID)
	}
	for _, s := range d.Skills {
		ids = append(ids, s.ID)
	}
	for _, p := range d.Projects {
		ids = append(ids, p.ID)
	}
	for _, c := range d.CustomSections {
		ids = append(ids, c.ID)
	}
	return ids
}

func updateEntry[T entry](list []T, id string, apply func(*T)) bool {
	for i := range list {
		if list[i].entryID() == id {
			apply(&list[i])
			return true
		}
	}
	return false
}

// removeEntry 删除匹配的条目并把 id 标记为已退役。
func removeEntry[T entry](d *Document, list []T, id string) ([]T, bool) {
	n := len(list)
	list = slices.DeleteFunc(list, func(x T) bool { return x.entryID() == id })
	if len(list) == n {
		return list, false
	}
	d.retire(id)
	return list, true
}

// EducationPatch 等 *Patch 类型只合并非 nil 字段。
type EducationPatch struct {
	School      *string `json:"school"`
	Degree      *string `json:"degree"`
	Field       *string `json:"field"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
	Description *string `json:"description"`
}

func (p EducationPatch) apply(e *Education) {
	set(&e.School, p.School)
	set(&e.Degree, p.Degree)
	set(&e.Field, p.Field)
	set(&e.StartDate, p.StartDate)
	set(&e.EndDate, p.EndDate)
	set(&e.Description, p.Description)
}

type ExperiencePatch struct {
	Company     *string   `json:"company"`
	Position    *string   `json:"position"`
	StartDate   *string   `json:"startDate"`
	EndDate     *string   `json:"endDate"`
	Current     *bool     `json:"current"`
	Description *string   `json:"description"`
	Highlights  *[]string `json:"highlights"`
}

func (p ExperiencePatch) apply(e *Experience) {
	set(&e.Company, p.Company)
	set(&e.Position, p.Position)
	set(&e.StartDate, p.StartDate)
	set(&e.EndDate, p.EndDate)
	set(&e.Current, p.Current)
	set(&e.Description, p.Description)
	set(&e.Highlights, p.Highlights)
}

type SkillPatch struct {
	Name  *string `json:"name"`
	Level *int    `json:"level"`
}

func (p SkillPatch) apply(s *Skill) {
	set(&s.Name, p.Name)
	set(&s.Level, p.Level)
}

type ProjectPatch struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	URL         *string   `json:"url"`
	Highlights  *[]string `json:"highlights"`
}

func (p ProjectPatch) apply(pr *Project) {
	set(&pr.Name, p.Name)
	set(&pr.Description, p.Description)
	set(&pr.URL, p.URL)
	set(&pr.Highlights, p.Highlights)
}

type CustomSectionPatch struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (p CustomSectionPatch) apply(c *CustomSection) {
	set(&c.Title, p.Title)
	set(&c.Content, p.Content)
}

// AddEducation 追加一条教育经历，id 由调用方提供。
func (d *Document) AddEducation(e Education) error {
	list, err := addEntry(d, d.Education, e)
	if err != nil {
		return err
	}
	d.Education = list
	return nil
}

// UpdateEducation 合并字段；id 不存在时不做任何修改并返回 false。
func (d *Document) UpdateEducation(id string, patch EducationPatch) bool {
	return updateEntry(d.Education, id, patch.apply)
}

// RemoveEducation 删除匹配的记录；id 不存在时返回 false。
func (d *Document) RemoveEducation(id string) bool {
	list, ok := removeEntry(d, d.Education, id)
	d.Education = list
	return ok
}

func (d *Document) AddExperience(e Experience) error {
	list, err := addEntry(d, d.Experience, e)
	if err != nil {
		return err
	}
	d.Experience = list
	return nil
}

func (d *Document) UpdateExperience(id string, patch ExperiencePatch) bool {
	return updateEntry(d.Experience, id, patch.apply)
}

func (d *Document) RemoveExperience(id string) bool {
	list, ok := removeEntry(d, d.Experience, id)
	d.Experience = list
	return ok
}

func (d *Document) AddSkill(s Skill) error {
	list, err := addEntry(d, d.Skills, s)
	if err != nil {
		return err
	}
	d.Skills = list
	return nil
}

func (d *Document) UpdateSkill(id string, patch SkillPatch) bool {
	return updateEntry(d.Skills, id, patch.apply)
}

func (d *Document) RemoveSkill(id string) bool {
	list, ok := removeEntry(d, d.Skills, id)
	d.Skills = list
	return ok
}

func (d *Document) AddProject(p Project) error {
	list, err := addEntry(d, d.Projects, p)
	if err != nil {
		return err
	}
	d.Projects = list
	return nil
}

func (d *Document) UpdateProject(id string, patch ProjectPatch) bool {
	return updateEntry(d.Projects, id, patch.apply)
}

func (d *Document) RemoveProject(id string) bool {
	list, ok := removeEntry(d, d.Projects, id)
	d.Projects = list
	return ok
}

// AddCustomSection 追加自定义区块，并追加一个同 id 的描述符排在末尾。
func (d *Document) AddCustomSection(c CustomSection) error {
	if slices.ContainsFunc(d.Sections, func(s Section) bool { return s.ID == c.ID }) {
		return fmt.Errorf("%w: %s", ErrDuplicateID, c.ID)
	}
	list, err := addEntry(d, d.CustomSections, c)
	if err != nil {
		return err
	}
	d.CustomSections = list
	next := 0
	for _, s := range d.Sections {
		next = max(next, s.Order+1)
	}
	d.Sections = append(d.Sections, Section{ID: c.ID, Type: SectionCustom, Title: c.Title, Visible: true, Order: next})
	return nil
}

// UpdateCustomSection 合并字段，标题变化同步到描述符。
func (d *Document) UpdateCustomSection(id string, patch CustomSectionPatch) bool {
	if !updateEntry(d.CustomSections, id, patch.apply) {
		return false
	}
	if patch.Title != nil {
		for i := range d.Sections {
			if d.Sections[i].Type == SectionCustom && d.Sections[i].ID == id {
				d.Sections[i].Title = *patch.Title
			}
		}
	}
	return true
}

// RemoveCustomSection 删除自定义区块及其描述符。
func (d *Document) RemoveCustomSection(id string) bool {
	list, ok := removeEntry(d, d.CustomSections, id)
	d.CustomSections = list
	if ok {
		d.Sections = slices.DeleteFunc(d.Sections, func(s Section) bool {
			return s.Type == SectionCustom && s.ID == id
		})
	}
	return ok
}

// CustomSectionByID 返回描述符对应的自定义区块内容。
func (d *Document) CustomSectionByID(id string) (CustomSection, bool) {
	for _, c := range d.CustomSections {
		if c.ID == id {
			return c, true
		}
	}
	return CustomSection{}, false
}

// PersonalPatch 是个人信息的部分更新。
type PersonalPatch struct {
	Name     *string `json:"name"`
	Title    *string `json:"title"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Location *string `json:"location"`
	Website  *string `json:"website"`
	Summary  *string `json:"summary"`
	Avatar   *string `json:"avatar"`
}

func (d *Document) UpdatePersonal(patch PersonalPatch) {
	p := &d.Personal
	set(&p.Name, patch.Name)
	set(&p.Title, patch.Title)
	set(&p.Email, patch.Email)
	set(&p.Phone, patch.Phone)
	set(&p.Location, patch.Location)
	set(&p.Website, patch.Website)
	set(&p.Summary, patch.Summary)
	set(&p.Avatar, patch.Avatar)
}
