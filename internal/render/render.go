// Package render 把文档渲染成导出管线使用的 HTML 视觉表面。
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"resumeBuilder/internal/resume"
)

// RootSelector 是渲染结果中承载整份简历的元素，导出时按它测量内容尺寸。
const RootSelector = "#resume-root"

// PresentLabel 替代在职经历的结束日期。
const PresentLabel = "Present"

//go:embed templates/*.tmpl
var templateFS embed.FS

var tmpl = template.Must(template.New("resume").ParseFS(templateFS, "templates/*.tmpl"))

// FontSizes 是一个字号档位对应的像素值。
type FontSizes struct {
	Base    string
	Title   string
	Section string
	Small   string
}

var fontSizes = map[resume.FontSize]FontSizes{
	resume.FontSmall:  {Base: "11px", Title: "20px", Section: "13px", Small: "10px"},
	resume.FontMedium: {Base: "12px", Title: "22px", Section: "14px", Small: "11px"},
	resume.FontLarge:  {Base: "13px", Title: "24px", Section: "15px", Small: "12px"},
}

var fontStacks = map[resume.FontFamily]string{
	resume.FontSans:  `-apple-system, "Segoe UI", "Helvetica Neue", Arial, "Noto Sans", "PingFang SC", "Noto Sans CJK SC", sans-serif`,
	resume.FontSerif: `Georgia, "Times New Roman", "Noto Serif", "Songti SC", "Noto Serif CJK SC", serif`,
}

// SizesFor 返回字号档位的像素值，未知档位按 medium 处理。
func SizesFor(size resume.FontSize) FontSizes {
	if s, ok := fontSizes[size]; ok {
		return s
	}
	return fontSizes[resume.FontMedium]
}

type sectionView struct {
	Kind         string
	Title        string
	Doc          *resume.Document
	Custom       *resume.CustomSection
	Avatar       template.URL
	Contacts     []string
	PresentLabel string
}

type pageView struct {
	Title  string
	CSS    template.CSS
	Double bool
	Header []sectionView
	Left   []sectionView
	Right  []sectionView
	Body   []sectionView
}

// HTML 渲染整份文档。单栏模式按显示顺序渲染全部可见区块（含自定义区块）；
// 双栏模式按固定分区渲染，分区之外的区块不出现。
func HTML(doc *resume.Document) ([]byte, error) {
	base := sectionView{
		Doc:          doc,
		Avatar:       avatarURL(doc.Personal.Avatar),
		Contacts:     contacts(doc.Personal),
		PresentLabel: PresentLabel,
	}
	views := func(secs []resume.Section) []sectionView {
		out := make([]sectionView, 0, len(secs))
		for _, s := range secs {
			v := base
			v.Kind = string(s.Type)
			v.Title = s.Title
			if s.Type == resume.SectionCustom {
				c, ok := doc.CustomSectionByID(s.ID)
				if !ok {
					continue
				}
				v.Custom = &c
			}
			out = append(out, v)
		}
		return out
	}

	page := pageView{
		Title:  docTitle(doc),
		CSS:    template.CSS(stylesheet(doc.Theme)),
		Double: doc.Theme.Layout == resume.LayoutDouble,
	}
	if page.Double {
		layout := doc.TwoColumnLayout()
		page.Header = views(layout.Header)
		page.Left = views(layout.Left)
		page.Right = views(layout.Right)
	} else {
		page.Body = views(doc.VisibleOrderedSections())
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "document", page); err != nil {
		return nil, fmt.Errorf("render document %s: %w", doc.ID, err)
	}
	return buf.Bytes(), nil
}

func docTitle(doc *resume.Document) string {
	if n := strings.TrimSpace(doc.Personal.Name); n != "" {
		return n
	}
	return doc.Name
}

func contacts(p resume.Personal) []string {
	var out []string
	for _, v := range []string{p.Email, p.Phone, p.Location, p.Website} {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// avatarURL 只接受嵌入式图片 data URI。
func avatarURL(s string) template.URL {
	if strings.HasPrefix(s, "data:image/") && !strings.ContainsAny(s, "\"'<> ") {
		return template.URL(s)
	}
	return ""
}

func colorOr(c, fallback string) string {
	if resume.ValidColor(c) {
		return c
	}
	return fallback
}

func stylesheet(t resume.Theme) string {
	sizes := SizesFor(t.FontSize)
	fonts, ok := fontStacks[t.FontFamily]
	if !ok {
		fonts = fontStacks[resume.FontSans]
	}
	vars := fmt.Sprintf(`:root {
  --primary: %s;
  --secondary: %s;
  --background: %s;
  --text: %s;
  --fs-base: %s;
  --fs-title: %s;
  --fs-section: %s;
  --fs-small: %s;
}
`,
		colorOr(t.PrimaryColor, "#1f2937"),
		colorOr(t.SecondaryColor, "#4b5563"),
		colorOr(t.BackgroundColor, "#ffffff"),
		colorOr(t.TextColor, "#111827"),
		sizes.Base, sizes.Title, sizes.Section, sizes.Small,
	)
	return vars + "body { margin: 0; padding: 0; background: #ffffff; }\n" +
		".resume { font-family: " + fonts + "; }\n" + baseCSS
}

const baseCSS = `
.resume {
  width: 210mm;
  box-sizing: border-box;
  padding: 24px;
  background: var(--background);
  color: var(--text);
  font-size: var(--fs-base);
  line-height: 1.4;
  -webkit-font-smoothing: antialiased;
  text-rendering: optimizeLegibility;
}
.layout-single .block + .block { margin-top: 12px; }
.header { margin-bottom: 16px; }
.columns { display: flex; gap: 20px; }
.col-left { width: 35%; padding-right: 16px; border-right: 1px solid color-mix(in srgb, var(--primary) 12%, transparent); }
.col-right { width: 65%; padding-left: 4px; }
.col-left .block + .block, .col-right .block + .block { margin-top: 16px; }
h1, h2, p, ul { margin: 0; }
.personal { padding-bottom: 12px; border-bottom: 1px solid color-mix(in srgb, var(--primary) 19%, transparent); }
.personal-main { display: flex; align-items: flex-start; gap: 16px; justify-content: center; text-align: center; }
.personal-main.with-avatar { justify-content: flex-start; text-align: left; }
.personal-info { flex: 1; }
.avatar { width: 80px; height: 80px; border-radius: 50%; object-fit: cover; border: 2px solid var(--primary); flex-shrink: 0; }
.name { color: var(--primary); font-size: var(--fs-title); font-weight: 700; margin-bottom: 2px; }
.role { color: var(--secondary); font-size: var(--fs-section); margin-bottom: 8px; }
.contacts { font-size: var(--fs-small); }
.contacts .sep { color: var(--secondary); margin: 0 8px; }
.summary { margin-top: 8px; font-size: var(--fs-small); line-height: 1.375; }
.section-title { color: var(--primary); font-size: var(--fs-section); font-weight: 600; margin-bottom: 6px; padding-bottom: 4px; border-bottom: 1px solid color-mix(in srgb, var(--primary) 19%, transparent); }
.entry + .entry { margin-top: 8px; }
.entry-head { display: flex; justify-content: space-between; align-items: baseline; }
.strong { color: var(--primary); font-weight: 600; }
.muted { color: var(--secondary); }
.gap { margin-left: 8px; }
.small { font-size: var(--fs-small); line-height: 1.375; }
.nowrap { flex-shrink: 0; white-space: nowrap; }
.pre { white-space: pre-line; margin-top: 4px; }
.link { text-decoration: underline; }
ul.small { padding-left: 16px; margin-top: 2px; }
`
