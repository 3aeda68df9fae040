package commoncrawl

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	reComments = regexp.MustCompile(`<!--[\s\S]*?-->`)
	reSpaces   = regexp.MustCompile(`\s+`)
)

// CleanHTML은 불필요한 태그, 클래스, 속성을 제거한 HTML 본문을 반환합니다.
func CleanHTML(rawHTML []byte, sel RemoveSelectors) ([]byte, error) {
	// HTML 주석 제거
	htmlWithoutComments := reComments.ReplaceAll(rawHTML, []byte(""))

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlWithoutComments))
	if err != nil {
		return nil, err
	}

	removeClassSet := make(map[string]struct{})
	for _, class := range sel.Classes {
		removeClassSet[strings.ToLower(class)] = struct{}{}
	}

	removeTagSet := make(map[string]struct{})
	for _, tag := range sel.Tags {
		removeTagSet[strings.ToLower(tag)] = struct{}{}
	}

	// DOM 요소를 한 번만 탐색하며 제거
	doc.Find("*").Each(func(i int, s *goquery.Selection) {
		nodeName := goquery.NodeName(s)

		if _, removeTag := removeTagSet[strings.ToLower(nodeName)]; removeTag {
			s.Remove()
			return
		}

		if classAttr, exists := s.Attr("class"); exists && nodeName != "body" {
			for _, className := range strings.Fields(classAttr) {
				lowerClass := strings.ToLower(className)
				if _, exact := removeClassSet[lowerClass]; exact ||
					containsAnyKeyword(lowerClass, sel.ClassKeywords) {
					s.Remove()
					return
				}
			}
		}

		// data-, area-, on*, item* 및 설정된 속성 제거
		var drop []string
		for _, attr := range s.Nodes[0].Attr {
			keyLower := strings.ToLower(attr.Key)
			remove := strings.HasPrefix(keyLower, "data-") ||
				strings.HasPrefix(keyLower, "area-") ||
				strings.HasPrefix(keyLower, "on") ||
				strings.HasPrefix(keyLower, "item")
			if !remove {
				for _, removeAttr := range sel.Attributes {
					if keyLower == strings.ToLower(removeAttr) {
						remove = true
						break
					}
				}
			}
			if remove {
				drop = append(drop, attr.Key)
			}
		}
		// 순회 중에 Attr 슬라이스가 바뀌지 않도록 모아서 제거
		for _, key := range drop {
			s.RemoveAttr(key)
		}
	})

	html, err := doc.Html()
	if err != nil {
		return nil, err
	}
	return []byte(cleanSpaces(html)), nil
}

// HTMLText는 문서 제목과 script/style을 뺀 본문 텍스트를 반환합니다.
// maxText가 0보다 크면 본문을 그 길이로 자릅니다.
func HTMLText(rawHTML []byte, maxText int) (title string, text string, err error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(rawHTML))
	if err != nil {
		return "", "", err
	}
	title = strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("script, style, noscript").Remove()
	text = strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	if text == "" {
		text = strings.Join(strings.Fields(doc.Text()), " ")
	}
	if maxText > 0 && len(text) > maxText {
		text = truncateUTF8(text, maxText)
	}
	return title, text, nil
}

// cleanSpaces는 연속된 공백과 개행을 하나의 스페이스로 압축합니다.
func cleanSpaces(html string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(html, " "))
}

// containsAnyKeyword는 "^접두", "접미$", 부분 문자열 규칙으로 클래스명을 검사합니다.
func containsAnyKeyword(className string, keywords []string) bool {
	for _, keyword := range keywords {
		switch {
		case strings.HasPrefix(keyword, "^"):
			if strings.HasPrefix(className, strings.TrimPrefix(keyword, "^")) {
				return true
			}
		case strings.HasSuffix(keyword, "$"):
			if strings.HasSuffix(className, strings.TrimSuffix(keyword, "$")) {
				return true
			}
		default:
			if strings.Contains(className, keyword) {
				return true
			}
		}
	}
	return false
}

func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
