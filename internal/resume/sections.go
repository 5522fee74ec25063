package resume

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

var (
	ErrUnknownSection    = errors.New("unknown section")
	ErrIncompleteReorder = errors.New("reorder must list every section exactly once")
)

// Column 表示双栏布局中的位置。
type Column string

const (
	ColumnHeader Column = "header"
	ColumnLeft   Column = "left"
	ColumnRight  Column = "right"
)

// TwoColumnAssignment 是双栏布局的固定分区，不随文档变化。
// 未出现在表中的类型（例如 custom）不会在双栏模式下渲染。
var TwoColumnAssignment = map[SectionType]Column{
	SectionPersonal:   ColumnHeader,
	SectionSkills:     ColumnLeft,
	SectionEducation:  ColumnLeft,
	SectionExperience: ColumnRight,
	SectionProjects:   ColumnRight,
}

// ColumnLayout 是双栏模式下的区块分组。
type ColumnLayout struct {
	Header  []Section `json:"header"`
	Left    []Section `json:"left"`
	Right   []Section `json:"right"`
	Omitted []Section `json:"omitted"`
}

// VisibleOrderedSections 返回可见区块，按 order 升序；order 相同时保持数组中的原始次序。
func (d *Document) VisibleOrderedSections() []Section {
	visible := make([]Section, 0, len(d.Sections))
	for _, s := range d.Sections {
		if s.Visible {
			visible = append(visible, s)
		}
	}
	slices.SortStableFunc(visible, func(a, b Section) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return visible
}

// SectionsForColumn 返回分配到指定栏位的可见区块（保持显示顺序）。
func (d *Document) SectionsForColumn(column Column) []Section {
	out := make([]Section, 0)
	for _, s := range d.VisibleOrderedSections() {
		if assigned, ok := TwoColumnAssignment[s.Type]; ok && assigned == column {
			out = append(out, s)
		}
	}
	return out
}

// TwoColumnLayout 按固定分区拆分可见区块，并列出被双栏模式丢弃的区块。
func (d *Document) TwoColumnLayout() ColumnLayout {
	layout := ColumnLayout{
		Header:  []Section{},
		Left:    []Section{},
		Right:   []Section{},
		Omitted: []Section{},
	}
	for _, s := range d.VisibleOrderedSections() {
		switch TwoColumnAssignment[s.Type] {
		case ColumnHeader:
			layout.Header = append(layout.Header, s)
		case ColumnLeft:
			layout.Left = append(layout.Left, s)
		case ColumnRight:
			layout.Right = append(layout.Right, s)
		default:
			layout.Omitted = append(layout.Omitted, s)
		}
	}
	return layout
}

// Reorder 用给定序列替换区块描述符，并按位置重写 order（从 0 开始）。
func (d *Document) Reorder(seq []Section) {
	out := make([]Section, len(seq))
	for i, s := range seq {
		s.Order = i
		out[i] = s
	}
	d.Sections = out
}

// ReorderByID 按 id 序列重排现有描述符，要求覆盖全部描述符。
func (d *Document) ReorderByID(ids []string) error {
	if len(ids) != len(d.Sections) {
		return ErrIncompleteReorder
	}
	byID := make(map[string]Section, len(d.Sections))
	for _, s := range d.Sections {
		byID[s.ID] = s
	}
	seq := make([]Section, 0, len(ids))
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownSection, id)
		}
		delete(byID, id)
		seq = append(seq, s)
	}
	d.Reorder(seq)
	return nil
}

// ReorderBody 重排除 personal 以外的区块，personal 固定在首位。
func (d *Document) ReorderBody(ids []string) error {
	var pinned []string
	for _, s := range d.Sections {
		if s.Type == SectionPersonal {
			pinned = append(pinned, s.ID)
		}
	}
	body := make([]string, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(pinned, id) {
			body = append(body, id)
		}
	}
	return d.ReorderByID(append(pinned, body...))
}

// SectionPatch 是区块描述符的部分更新。
type SectionPatch struct {
	Title   *string `json:"title"`
	Visible *bool   `json:"visible"`
}

// UpdateSection 合并描述符字段；id 不存在时静默忽略。
func (d *Document) UpdateSection(id string, patch SectionPatch) bool {
	for i := range d.Sections {
		if d.Sections[i].ID != id {
			continue
		}
		set(&d.Sections[i].Title, patch.Title)
		set(&d.Sections[i].Visible, patch.Visible)
		return true
	}
	return false
}

// SectionOf 返回指定类型的第一个描述符。
func (d *Document) SectionOf(t SectionType) (Section, bool) {
	for _, s := range d.Sections {
		if s.Type == t {
			return s, true
		}
	}
	return Section{}, false
}
