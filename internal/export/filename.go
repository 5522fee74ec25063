package export

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"resumeBuilder/internal/resume"
)

const (
	Extension     = ".pdf"
	FallbackLabel = "resume"
)

var unsafeFileChars = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
	"\"", "_", "<", "_", ">", "_", "|", "_",
)

// FileName 依次取个人姓名、文档名、fallback 作为下载文件名。
func FileName(doc *resume.Document, fallback string) string {
	if strings.TrimSpace(fallback) == "" {
		fallback = FallbackLabel
	}
	base := fallback
	for _, candidate := range []string{doc.Personal.Name, doc.Name} {
		if c := cleanName(candidate); c != "" {
			base = c
			break
		}
	}
	return base + Extension
}

func cleanName(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(unsafeFileChars.Replace(s))
}

// ASCIIFileName 去掉重音符号并把其余非 ASCII 字符替换为下划线，
// 用于 Content-Disposition 的 filename 参数；结果无可用字符时返回 fallback。
func ASCIIFileName(name, fallback string) string {
	if strings.TrimSpace(fallback) == "" {
		fallback = FallbackLabel + Extension
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}
	var b strings.Builder
	meaningful := false
	for _, r := range stripped {
		switch {
		case r < 0x20 || r == 0x7f || r == '"' || r == '\\':
			b.WriteRune('_')
		case r > unicode.MaxASCII:
			b.WriteRune('_')
		default:
			b.WriteRune(r)
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				meaningful = true
			}
		}
	}
	out := b.String()
	if !meaningful || strings.TrimSuffix(strings.Trim(out, "_ "), Extension) == "" {
		return fallback
	}
	return out
}
