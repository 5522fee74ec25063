package resume

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// CustomThemeID 标记被用户手动改过颜色的主题。
const (
	CustomThemeID   = "custom"
	CustomThemeName = "Custom"
	DefaultThemeID  = "classic"
)

var ErrUnknownPreset = errors.New("unknown theme preset")

//go:embed data/themes.yaml
var themesYAML []byte

var presets = mustLoadPresets(themesYAML)

func mustLoadPresets(raw []byte) []Theme {
	var out []Theme
	if err := yaml.Unmarshal(raw, &out); err != nil {
		panic(fmt.Sprintf("resume: parse theme presets: %v", err))
	}
	if len(out) == 0 {
		panic("resume: no theme presets")
	}
	return out
}

// Presets 返回内置主题列表的副本。
func Presets() []Theme {
	return slices.Clone(presets)
}

// Preset 按 id 查找内置主题。
func Preset(id string) (Theme, bool) {
	for _, t := range presets {
		if t.ID == id {
			return t, true
		}
	}
	return Theme{}, false
}

// DefaultTheme 返回新文档使用的主题。
func DefaultTheme() Theme {
	t, ok := Preset(DefaultThemeID)
	if !ok {
		return presets[0]
	}
	return t
}

// ThemePatch 是主题的部分更新。
type ThemePatch struct {
	PrimaryColor    *string     `json:"primaryColor"`
	SecondaryColor  *string     `json:"secondaryColor"`
	BackgroundColor *string     `json:"backgroundColor"`
	TextColor       *string     `json:"textColor"`
	FontFamily      *FontFamily `json:"fontFamily"`
	FontSize        *FontSize   `json:"fontSize"`
	Layout          *Layout     `json:"layout"`
}

func (p ThemePatch) touchesColors() bool {
	return p.PrimaryColor != nil || p.SecondaryColor != nil || p.BackgroundColor != nil || p.TextColor != nil
}

// UpdateTheme 合并主题字段。修改任一颜色后主题不再对应某个预设，id 改为 custom。
func (d *Document) UpdateTheme(patch ThemePatch) {
	t := &d.Theme
	set(&t.PrimaryColor, patch.PrimaryColor)
	set(&t.SecondaryColor, patch.SecondaryColor)
	set(&t.BackgroundColor, patch.BackgroundColor)
	set(&t.TextColor, patch.TextColor)
	set(&t.FontFamily, patch.FontFamily)
	set(&t.FontSize, patch.FontSize)
	set(&t.Layout, patch.Layout)
	if patch.touchesColors() {
		t.ID = CustomThemeID
		t.Name = CustomThemeName
	}
}

// ApplyPreset 替换主题的 id、名称和配色；字体与布局保持用户当前的选择。
func (d *Document) ApplyPreset(id string) error {
	p, ok := Preset(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPreset, id)
	}
	d.Theme.ID = p.ID
	d.Theme.Name = p.Name
	d.Theme.PrimaryColor = p.PrimaryColor
	d.Theme.SecondaryColor = p.SecondaryColor
	d.Theme.BackgroundColor = p.BackgroundColor
	d.Theme.TextColor = p.TextColor
	return nil
}
