package handlers

import (
	"fmt"
	"html"

	"github.com/gofiber/fiber/v2"
)

// renderOutcome writes the small human-readable page approval-link clicks
// land on.
func renderOutcome(c *fiber.Ctx, status int, title, detail string) error {
	page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>%s</title>
<style>
body { font-family: sans-serif; background: #f1f5f9; display: flex; justify-content: center; padding-top: 10vh; }
main { background: #fff; border-radius: 8px; padding: 32px 40px; max-width: 480px; box-shadow: 0 1px 4px rgba(0,0,0,.1); }
h1 { font-size: 22px; margin-bottom: 12px; }
p { color: #475569; line-height: 1.5; }
</style>
</head>
<body><main><h1>%s</h1><p>%s</p></main></body>
</html>`,
		html.EscapeString(title), html.EscapeString(title), html.EscapeString(detail))

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).SendString(page)
}
