package resume

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var (
	ErrDuplicateSection = errors.New("built-in section type listed more than once")
	ErrInvalidDocument  = errors.New("invalid document")
)

// Validate 检查字段约束（枚举、颜色、技能等级）以及文档级不变量：
// 每种内置区块至多一个描述符，区块 id 与条目 id 在文档内唯一，且条目不使用已退役的 id。
func (d *Document) Validate() error {
	var errs []error
	if err := validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = append(errs, fmt.Errorf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
		} else {
			errs = append(errs, err)
		}
	}

	seenType := map[SectionType]bool{}
	seenSection := map[string]bool{}
	for _, s := range d.Sections {
		if s.Type.BuiltIn() {
			if seenType[s.Type] {
				errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateSection, s.Type))
			}
			seenType[s.Type] = true
		}
		if seenSection[s.ID] {
			errs = append(errs, fmt.Errorf("%w: section %s", ErrDuplicateID, s.ID))
		}
		seenSection[s.ID] = true
	}

	seen := map[string]bool{}
	check := func(id string) {
		if id == "" {
			return
		}
		if seen[id] {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateID, id))
		}
		if d.retired(id) {
			errs = append(errs, fmt.Errorf("%w: %s was removed earlier", ErrDuplicateID, id))
		}
		seen[id] = true
	}
	for _, e := range d.Education {
		check(e.ID)
	}
	for _, e := range d.Experience {
		check(e.ID)
	}
	for _, s := range d.Skills {
		check(s.ID)
	}
	for _, p := range d.Projects {
		check(p.ID)
	}
	for _, c := range d.CustomSections {
		check(c.ID)
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidDocument, errors.Join(errs...))
}

// ValidColor 报告 s 是否为可用的 CSS 颜色（hex、rgb(a)、hsl(a)）。
func ValidColor(s string) bool {
	return validate.Var(s, "required,iscolor") == nil
}
