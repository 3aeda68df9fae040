package commoncrawl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanHTML(t *testing.T) {
	raw := []byte(`<html><body class="main">
	<nav>menu</nav>
	<div class="sidebar">side</div>
	<div class="comment-box">c</div>
	<p itemprop="x" style="color:red">text</p>
	</body></html>`)

	out, err := CleanHTML(raw, RemoveSelectors{
		Tags:          []string{"nav"},
		Classes:       []string{"sidebar"},
		ClassKeywords: []string{"comment"},
		Attributes:    []string{"style"},
	})
	require.NoError(t, err)
	html := string(out)

	assert.NotContains(t, html, "menu")
	assert.NotContains(t, html, "side")
	assert.NotContains(t, html, "comment-box")
	assert.NotContains(t, html, "itemprop")
	assert.NotContains(t, html, "style")
	assert.Contains(t, html, `<body class="main">`)
	assert.Contains(t, html, "<p>text</p>")
}

func TestContainsAnyKeyword(t *testing.T) {
	tests := []struct {
		class    string
		keywords []string
		want     bool
	}{
		{"ad-top", []string{"^ad-"}, true},
		{"head-ad", []string{"^ad-"}, false},
		{"footer-share", []string{"share$"}, true},
		{"share-footer", []string{"share$"}, false},
		{"my-popup-box", []string{"popup"}, true},
		{"plain", nil, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, containsAnyKeyword(tt.class, tt.keywords), tt.class)
	}
}

func TestHTMLText_TruncatesOnRuneBoundary(t *testing.T) {
	title, text, err := HTMLText([]byte("<html><head><title>제목</title></head><body>가나다라</body></html>"), 7)
	require.NoError(t, err)
	assert.Equal(t, "제목", title)
	// 한글은 3바이트, 7바이트 제한이면 두 글자
	assert.Equal(t, "가나", text)
}
