// Package security はユーザー入力のHTMLサニタイズを提供する。
package security

import (
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizer は保存前のテキストを無害化する。
// ポリシーは生成時に構築され、以後は読み取り専用のため並行利用できる。
type ContentSanitizer struct {
	richText  *bluemonday.Policy
	plainText *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerを生成する。
//
// リッチテキスト（商品説明）のポリシー:
//   - 許可タグ: p, br, a, ul, ol, li, strong, em, h3, h4, img
//   - imgのsrcはhttpsのみ
//   - aタグにはtarget="_blank"とrel="noopener noreferrer"を付与
//
// プレーンテキスト（お問い合わせ本文）はすべてのタグを除去する。
func NewContentSanitizer() *ContentSanitizer {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "ul", "ol", "li", "strong", "em", "h3", "h4")

	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	p.AllowAttrs("src", "alt").OnElements("img")
	p.AllowURLSchemeWithCustomPolicy("https", func(u *url.URL) bool {
		return u.Host != ""
	})

	return &ContentSanitizer{
		richText:  p,
		plainText: bluemonday.StrictPolicy(),
	}
}

// SanitizeRichText は商品説明のHTMLを許可リストに沿って無害化する。
func (s *ContentSanitizer) SanitizeRichText(raw string) string {
	return strings.TrimSpace(s.richText.Sanitize(raw))
}

// SanitizePlainText はタグをすべて除去する。特殊文字はエスケープされる。
func (s *ContentSanitizer) SanitizePlainText(raw string) string {
	return strings.TrimSpace(s.plainText.Sanitize(raw))
}
