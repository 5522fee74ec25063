package resume

import "time"

// SectionType 标识简历中的内容区块类型。
type SectionType string

const (
	SectionPersonal   SectionType = "personal"
	SectionEducation  SectionType = "education"
	SectionExperience SectionType = "experience"
	SectionSkills     SectionType = "skills"
	SectionProjects   SectionType = "projects"
	SectionCustom     SectionType = "custom"
)

// BuiltIn 报告该类型是否为内置区块（每份文档至多一个描述符）。
func (t SectionType) BuiltIn() bool {
	switch t {
	case SectionPersonal, SectionEducation, SectionExperience, SectionSkills, SectionProjects:
		return true
	default:
		return false
	}
}

type FontFamily string

const (
	FontSans  FontFamily = "sans"
	FontSerif FontFamily = "serif"
)

type FontSize string

const (
	FontSmall  FontSize = "small"
	FontMedium FontSize = "medium"
	FontLarge  FontSize = "large"
)

type Layout string

const (
	LayoutSingle Layout = "single"
	LayoutDouble Layout = "double"
)

// Theme 描述简历的视觉配置。
type Theme struct {
	ID              string     `json:"id" yaml:"id" validate:"required"`
	Name            string     `json:"name" yaml:"name"`
	PrimaryColor    string     `json:"primaryColor" yaml:"primaryColor" validate:"required,iscolor"`
	SecondaryColor  string     `json:"secondaryColor" yaml:"secondaryColor" validate:"required,iscolor"`
	BackgroundColor string     `json:"backgroundColor" yaml:"backgroundColor" validate:"required,iscolor"`
	TextColor       string     `json:"textColor" yaml:"textColor" validate:"required,iscolor"`
	FontFamily      FontFamily `json:"fontFamily" yaml:"fontFamily" validate:"oneof=sans serif"`
	FontSize        FontSize   `json:"fontSize" yaml:"fontSize" validate:"oneof=small medium large"`
	Layout          Layout     `json:"layout" yaml:"layout" validate:"oneof=single double"`
}

// Section 是区块描述符，只控制可见性与顺序，不承载内容。
type Section struct {
	ID      string      `json:"id" validate:"required"`
	Type    SectionType `json:"type" validate:"oneof=personal education experience skills projects custom"`
	Title   string      `json:"title"`
	Visible bool        `json:"visible"`
	Order   int         `json:"order"`
}

// Personal 是文档中唯一的个人信息记录。
type Personal struct {
	Name     string `json:"name" yaml:"name"`
	Title    string `json:"title" yaml:"title"`
	Email    string `json:"email" yaml:"email"`
	Phone    string `json:"phone" yaml:"phone"`
	Location string `json:"location" yaml:"location"`
	Website  string `json:"website" yaml:"website"`
	Summary  string `json:"summary" yaml:"summary"`
	Avatar   string `json:"avatar,omitempty" yaml:"avatar,omitempty"`
}

type Education struct {
	ID          string `json:"id" yaml:"-" validate:"required"`
	School      string `json:"school" yaml:"school"`
	Degree      string `json:"degree" yaml:"degree"`
	Field       string `json:"field" yaml:"field"`
	StartDate   string `json:"startDate" yaml:"startDate"`
	EndDate     string `json:"endDate" yaml:"endDate"`
	Description string `json:"description" yaml:"description"`
}

type Experience struct {
	ID          string   `json:"id" yaml:"-" validate:"required"`
	Company     string   `json:"company" yaml:"company"`
	Position    string   `json:"position" yaml:"position"`
	StartDate   string   `json:"startDate" yaml:"startDate"`
	EndDate     string   `json:"endDate" yaml:"endDate"`
	Current     bool     `json:"current" yaml:"current"`
	Description string   `json:"description" yaml:"description"`
	Highlights  []string `json:"highlights" yaml:"highlights"`
}

type Skill struct {
	ID    string `json:"id" yaml:"-" validate:"required"`
	Name  string `json:"name" yaml:"name"`
	Level int    `json:"level" yaml:"level" validate:"min=1,max=5"`
}

type Project struct {
	ID          string   `json:"id" yaml:"-" validate:"required"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	URL         string   `json:"url" yaml:"url"`
	Highlights  []string `json:"highlights" yaml:"highlights"`
}

// CustomSection 是自由格式的附加区块。
type CustomSection struct {
	ID      string `json:"id" yaml:"-" validate:"required"`
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
}

// Document 表示一份完整的简历。
type Document struct {
	ID             string          `json:"id" validate:"required"`
	Name           string          `json:"name"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	Theme          Theme           `json:"theme"`
	Sections       []Section       `json:"sections" validate:"dive"`
	Personal       Personal        `json:"personal"`
	Education      []Education     `json:"education" validate:"dive"`
	Experience     []Experience    `json:"experience" validate:"dive"`
	Skills         []Skill         `json:"skills" validate:"dive"`
	Projects       []Project       `json:"projects" validate:"dive"`
	CustomSections []CustomSection `json:"customSections" validate:"dive"`
	// RetiredIDs 记录已删除条目的 id，文档生命周期内不再分配给新条目。
	RetiredIDs []string `json:"retiredIds,omitempty"`
}

func (e Education) entryID() string     { return e.ID }
func (e Experience) entryID() string    { return e.ID }
func (s Skill) entryID() string         { return s.ID }
func (p Project) entryID() string       { return p.ID }
func (c CustomSection) entryID() string { return c.ID }
