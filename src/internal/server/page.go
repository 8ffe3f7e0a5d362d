// FILE: src/internal/server/page.go
package server

import (
	"fmt"
	"strings"

	"devconsole/src/internal/panel"

	"github.com/segmentio/encoding/json"
	"github.com/valyala/fasthttp"
)

const pageHead = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>devconsole</title>
</head>
<body style="margin: 0; padding: 16px; background: #111;">
`

// pageScript mirrors the panel's line rendering in the browser for lines
// arriving over /stream.
const pageScript = `<script>
(function () {
  const cfg = %s;
  const panel = document.getElementById(cfg.panelId);
  function append(ts, category, text) {
    const line = document.createElement("div");
    line.style.margin = "2px 0";
    line.style.padding = "2px 4px";
    line.style.borderRadius = "3px";
    line.style.color = cfg.palette[category + "Text"] ?? cfg.palette.consoleText;
    line.style.backgroundColor = cfg.palette[category + "Bg"] ?? cfg.palette.consoleBg;
    line.textContent = ts + " " + (category ? category.toUpperCase() + " " : "") + text;
    panel.appendChild(line);
    while (cfg.capacity > 0 && panel.children.length > cfg.capacity) {
      panel.removeChild(panel.firstChild);
    }
    panel.scrollTop = panel.scrollHeight;
  }
  const params = new URLSearchParams({ since: String(cfg.since) });
  if (cfg.token) params.set("token", cfg.token);
  const source = new EventSource(cfg.streamPath + "?" + params.toString());
  source.onmessage = function (e) {
    try {
      const rec = JSON.parse(e.data);
      append(rec.timestamp, rec.category || "", rec.text);
    } catch (err) {
      append("", "", e.data);
    }
  };
  panel.scrollTop = panel.scrollHeight;
})();
</script>
</body>
</html>
`

func (s *Server) handlePage(ctx *fasthttp.RequestCtx, token string) {
	html, since := s.console.HTMLSnapshot()

	cfg, err := json.Marshal(map[string]any{
		"panelId":    panel.PanelID,
		"palette":    s.console.Palette(),
		"capacity":   s.console.Stats().Capacity,
		"since":      since,
		"streamPath": pathStream,
		"token":      token,
	})
	if err != nil {
		writeJSON(ctx, fasthttp.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}

	var b strings.Builder
	b.WriteString(pageHead)
	b.WriteString(html)
	b.WriteString("\n")
	fmt.Fprintf(&b, pageScript, cfg)

	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType("text/html; charset=utf-8")
	ctx.SetBodyString(b.String())
}
