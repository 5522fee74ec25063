package resume

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const (
	DefaultName = "My Resume"
	CopySuffix  = " (copy)"
)

// NewID 生成文档、区块和条目使用的 id。
func NewID() string {
	return uuid.NewString()
}

// DefaultSections 返回新文档的区块描述符，每次调用生成新的 id。
func DefaultSections() []Section {
	return []Section{
		{ID: NewID(), Type: SectionPersonal, Title: "Personal", Visible: true, Order: 0},
		{ID: NewID(), Type: SectionExperience, Title: "Experience", Visible: true, Order: 1},
		{ID: NewID(), Type: SectionEducation, Title: "Education", Visible: true, Order: 2},
		{ID: NewID(), Type: SectionSkills, Title: "Skills", Visible: true, Order: 3},
		{ID: NewID(), Type: SectionProjects, Title: "Projects", Visible: true, Order: 4},
	}
}

// New 创建一份空白文档。
func New(name string, now time.Time) *Document {
	if strings.TrimSpace(name) == "" {
		name = DefaultName
	}
	now = now.UTC()
	return &Document{
		ID:             NewID(),
		Name:           name,
		CreatedAt:      now,
		UpdatedAt:      now,
		Theme:          DefaultTheme(),
		Sections:       DefaultSections(),
		Education:      []Education{},
		Experience:     []Experience{},
		Skills:         []Skill{},
		Projects:       []Project{},
		CustomSections: []CustomSection{},
	}
}

//go:embed data/sample.yaml
var sampleYAML []byte

type sampleContent struct {
	Personal   Personal     `yaml:"personal"`
	Education  []Education  `yaml:"education"`
	Experience []Experience `yaml:"experience"`
	Skills     []Skill      `yaml:"skills"`
	Projects   []Project    `yaml:"projects"`
}

// NewSample 创建一份带示例内容的文档，条目 id 在创建时分配。
func NewSample(name string, now time.Time) (*Document, error) {
	var sample sampleContent
	if err := yaml.Unmarshal(sampleYAML, &sample); err != nil {
		return nil, fmt.Errorf("parse sample content: %w", err)
	}
	d := New(name, now)
	d.Personal = sample.Personal
	for _, e := range sample.Education {
		e.ID = NewID()
		d.Education = append(d.Education, e)
	}
	for _, e := range sample.Experience {
		e.ID = NewID()
		d.Experience = append(d.Experience, e)
	}
	for _, s := range sample.Skills {
		s.ID = NewID()
		d.Skills = append(d.Skills, s)
	}
	for _, p := range sample.Projects {
		p.ID = NewID()
		d.Projects = append(d.Projects, p)
	}
	return d, nil
}

// Clone 深拷贝文档，副本与原文档不共享任何切片。
func (d *Document) Clone() *Document {
	c := *d
	c.Sections = slices.Clone(d.Sections)
	c.Education = slices.Clone(d.Education)
	c.Experience = slices.Clone(d.Experience)
	for i := range c.Experience {
		c.Experience[i].Highlights = slices.Clone(c.Experience[i].Highlights)
	}
	c.Skills = slices.Clone(d.Skills)
	c.Projects = slices.Clone(d.Projects)
	for i := range c.Projects {
		c.Projects[i].Highlights = slices.Clone(c.Projects[i].Highlights)
	}
	c.CustomSections = slices.Clone(d.CustomSections)
	c.RetiredIDs = slices.Clone(d.RetiredIDs)
	return &c
}

// Replace 用 next 的内容整体替换文档，保留 id、createdAt 与已退役 id；
// 替换中消失的条目 id 同样退役。
func (d *Document) Replace(next Document) {
	retired := slices.Clone(d.RetiredIDs)
	kept := next.entryIDs()
	for _, id := range d.entryIDs() {
		if !slices.Contains(kept, id) && !slices.Contains(retired, id) {
			retired = append(retired, id)
		}
	}
	for _, id := range next.RetiredIDs {
		if !slices.Contains(retired, id) {
			retired = append(retired, id)
		}
	}
	id, created := d.ID, d.CreatedAt
	*d = next
	d.ID, d.CreatedAt = id, created
	d.RetiredIDs = retired
}

// Duplicate 复制全部内容到新 id 下，名称追加副本标记，时间戳重置为 now。
func (d *Document) Duplicate(now time.Time) *Document {
	c := d.Clone()
	now = now.UTC()
	c.ID = NewID()
	c.Name = d.Name + CopySuffix
	c.CreatedAt = now
	c.UpdatedAt = now
	return c
}

// Touch 刷新 updatedAt。
func (d *Document) Touch(now time.Time) {
	d.UpdatedAt = now.UTC()
}

// Normalize 把缺省的集合替换为空切片，序列化时始终输出 []。
func (d *Document) Normalize() {
	if d.Sections == nil {
		d.Sections = []Section{}
	}
	if d.Education == nil {
		d.Education = []Education{}
	}
	if d.Experience == nil {
		d.Experience = []Experience{}
	}
	if d.Skills == nil {
		d.Skills = []Skill{}
	}
	if d.Projects == nil {
		d.Projects = []Project{}
	}
	if d.CustomSections == nil {
		d.CustomSections = []CustomSection{}
	}
}
