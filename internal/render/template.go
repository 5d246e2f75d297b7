package render

import (
	"fmt"
	"html"
	"strings"
)

const cardCSS = `
* { margin: 0; padding: 0; box-sizing: border-box; }
body { background: #0f172a; font-family: 'Helvetica Neue', Arial, sans-serif; }
#card {
	width: %dpx;
	min-height: %dpx;
	background: linear-gradient(160deg, #1e293b 0%%, #0f172a 100%%);
	color: #e2e8f0;
	padding: 80px 72px;
	display: flex;
	flex-direction: column;
}
#content { flex: 1; font-size: 34px; line-height: 1.5; overflow-wrap: break-word; }
#content.centered { display: flex; flex-direction: column; justify-content: center; text-align: center; }
.line { margin-bottom: 10px; }
.heading { font-weight: 700; color: #f8fafc; margin-top: 12px; }
.bullet, .numbered { padding-left: 8px; }
.spacer { height: 24px; }
.footer { margin-top: 40px; display: flex; justify-content: space-between; font-size: 24px; color: #64748b; }
`

// CardHTML assembles the full page for one chunk. contentHTML is the
// classified line markup produced by pagination.ChunkHTML.
func CardHTML(p Profile, contentHTML, topic string, page, pageCount int, kind Kind) string {
	contentClass := ""
	if kind == KindQuestion {
		contentClass = "centered"
	}

	var footer strings.Builder
	footer.WriteString(`<div class="footer"><span>`)
	footer.WriteString(html.EscapeString(topic))
	footer.WriteString(`</span>`)
	if pageCount > 1 {
		fmt.Fprintf(&footer, `<span>%d / %d</span>`, page, pageCount)
	}
	footer.WriteString(`</div>`)

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><style>%s</style></head>
<body>
<div id="card">
<div id="content" class="%s" style="max-height:%dpx">%s</div>
%s
</div>
</body>
</html>`,
		fmt.Sprintf(cardCSS, p.Width, p.Height),
		contentClass,
		contentHeightFor(p, kind),
		contentHTML,
		footer.String(),
	)
}

// measureHTML is the page used for overflow measurement. The content box
// is clamped to the canvas budget so scrollHeight exposes overflow.
func measureHTML(p Profile, contentHTML string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><style>%s
#content { max-height: %dpx; overflow: hidden; }</style></head>
<body><div id="card"><div id="content">%s</div></div></body>
</html>`,
		fmt.Sprintf(cardCSS, p.Width, p.Height),
		p.AvailableHeight(),
		contentHTML,
	)
}

// contentHeightFor caps question and generic cards at the canvas budget;
// solution cards may legitimately run taller than the visible crop.
func contentHeightFor(p Profile, kind Kind) int {
	if kind == KindSolution {
		return 10 * p.ContentHeight
	}
	return p.ContentHeight
}
