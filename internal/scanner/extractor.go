package scanner

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/alttext-service/internal/domain"
	"github.com/user/alttext-service/pkg/utils"
)

type ImageKind string

const (
	KindImg        ImageKind = "img"
	KindBackground ImageKind = "background"

	maxLocatorClasses = 2
)

// backgroundURLPattern pulls the target out of url(...), quotes optional.
var backgroundURLPattern = regexp.MustCompile(`url\(\s*["']?([^"')]+?)["']?\s*\)`)

// ExtractedImage is a descriptor plus how it was found.
type ExtractedImage struct {
	domain.ImageDescriptor
	Kind ImageKind
}

// ExtractImages parses HTML content and returns every image reference in
// document order: <img> elements first, then role="img" containers with an
// inline background image.
func ExtractImages(baseURL, htmlContent string) ([]ExtractedImage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	var images []ExtractedImage

	doc.Find("img").Each(func(i int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if src == "" {
			return
		}
		alt, _ := s.Attr("alt")
		id, _ := s.Attr("id")
		images = append(images, ExtractedImage{
			ImageDescriptor: domain.ImageDescriptor{
				URL:                utils.ResolveImageURL(baseURL, src),
				CurrentDescription: normalizeDescription(alt),
				Locator:            BuildLocator(s),
				ElementID:          id,
			},
			Kind: KindImg,
		})
	})

	doc.Find(`[role="img"]:not(img)`).Each(func(i int, s *goquery.Selection) {
		style, _ := s.Attr("style")
		src := backgroundImageURL(style)
		if src == "" {
			return
		}
		label, _ := s.Attr("aria-label")
		id, _ := s.Attr("id")
		images = append(images, ExtractedImage{
			ImageDescriptor: domain.ImageDescriptor{
				URL:                utils.ResolveImageURL(baseURL, src),
				CurrentDescription: normalizeDescription(label),
				Locator:            BuildLocator(s),
				ElementID:          id,
			},
			Kind: KindBackground,
		})
	})

	return images, nil
}

// BuildLocator returns tag#id.class1.class2 for the first node of s.
func BuildLocator(s *goquery.Selection) string {
	var b strings.Builder
	b.WriteString(goquery.NodeName(s))
	if id, _ := s.Attr("id"); id != "" {
		b.WriteString("#")
		b.WriteString(id)
	}
	class, _ := s.Attr("class")
	for i, c := range strings.Fields(class) {
		if i == maxLocatorClasses {
			break
		}
		b.WriteString(".")
		b.WriteString(c)
	}
	return b.String()
}

func backgroundImageURL(style string) string {
	idx := strings.Index(style, "background-image")
	if idx < 0 {
		return ""
	}
	m := backgroundURLPattern.FindStringSubmatch(style[idx:])
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func normalizeDescription(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}
