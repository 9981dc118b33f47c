// Package page renders the shared HTML shell used by directory listings and
// markdown views: theme variables with a dark-mode override, the header with
// breadcrumbs, search box and theme toggle, and the base script for theme
// persistence and "/" search focus.
package page

import "strings"

const pageTemplate = `<!DOCTYPE html>
<html lang="en" data-theme="">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1" />
<title>{{TITLE}}</title>
<style>
:root {
  --bg: #fafafa;
  --fg: #212121;
  --muted: #616161;
  --card: #ffffff;
  --border: #e0e0e0;
  --accent: #3f51b5;
  --accent-2: #1e88e5;
  --code-bg: #ffffff;
}
@media (prefers-color-scheme: dark) {
  :root {
    --bg: #0e0f12;
    --fg: #e8e8e8;
    --muted: #9aa0a6;
    --card: #16181d;
    --border: #2b2f36;
    --accent: #8ab4f8;
    --accent-2: #8ab4f8;
    --code-bg: #0f1115;
  }
}
:root[data-theme="dark"] {
  --bg: #0e0f12;
  --fg: #e8e8e8;
  --muted: #9aa0a6;
  --card: #16181d;
  --border: #2b2f36;
  --accent: #8ab4f8;
  --accent-2: #8ab4f8;
  --code-bg: #0f1115;
}

* { box-sizing: border-box; }
html, body { height: 100%; }
body {
  margin: 0; padding: 0;
  font-family: ui-sans-serif, system-ui, -apple-system, "Segoe UI", Roboto, "Helvetica Neue", Arial;
  background: var(--bg); color: var(--fg);
}
a { color: var(--accent-2); text-decoration: none; }
a:hover { text-decoration: underline; }

.container { max-width: 1100px; margin: 0 auto; padding: 24px 16px; }

.header { display: flex; align-items: center; justify-content: space-between; gap: 12px; margin-bottom: 16px; }
.breadcrumbs a { color: var(--fg); }
.breadcrumbs .sep { margin: 0 6px; color: var(--muted); }
.controls { display: flex; gap: 8px; align-items: center; }
input[type="search"] {
  background: var(--card); color: var(--fg); border: 1px solid var(--border);
  padding: 8px 10px; border-radius: 8px; min-width: 220px;
}
.toggle {
  background: var(--card); color: var(--fg); border: 1px solid var(--border);
  padding: 8px 10px; border-radius: 8px; cursor: pointer;
}

.main { display: grid; grid-template-columns: 1.2fr 1fr; gap: 16px; }
@media (max-width: 900px) { .main { grid-template-columns: 1fr; } }

.card {
  background: var(--card); border: 1px solid var(--border); border-radius: 12px;
  overflow: hidden;
}
.card h2 { margin: 0; font-size: 16px; padding: 12px 14px; border-bottom: 1px solid var(--border); }

.table-wrap { overflow: auto; }
table { width: 100%; border-collapse: collapse; }
thead th {
  text-align: left; font-weight: 600; font-size: 14px; color: var(--muted);
  padding: 10px 12px; border-bottom: 1px solid var(--border); cursor: pointer; white-space: nowrap;
}
tbody td { padding: 12px; border-bottom: 1px solid var(--border); vertical-align: middle; }
tbody tr:hover { background: color-mix(in oklab, var(--card) 80%, var(--accent) 10%); }

.name-col { display: flex; align-items: center; gap: 10px; }
.icon { width: 18px; height: 18px; display: inline-block; vertical-align: middle; opacity: 0.9; }
.icon svg { width: 18px; height: 18px; }
.meta { color: var(--muted); font-size: 12px; }

.preview { min-height: 360px; }
.preview iframe { display:block; width:100%; height: min(70vh, 720px); border: 0; background: var(--card); }
.preview .empty { color: var(--muted); display: grid; place-items: center; border-top: 1px solid var(--border); min-height: 120px; }
.preview .media-wrap { padding: 12px; }
.preview .media-wrap img { max-width: 100%; height: auto; display: block; }
.preview .media-wrap video { width: 100%; height: auto; display: block; background: transparent; }
.preview .media-wrap audio { width: 100%; display: block; }

pre code {
  background: var(--code-bg);
  padding: 1em; display: block; overflow-x: auto;
  font-family: ui-monospace, SFMono-Regular, Menlo, Consolas, "Roboto Mono", monospace;
  border-radius: 8px; border: 1px solid var(--border); margin: 1em 0;
}

span.keyword { color: #d81b60; font-weight: 600; }
span.string  { color: #388e3c; }
span.number  { color: #f57c00; }
span.comment { color: #9aa0a6; font-style: italic; }

hr { border: 0; border-top: 1px solid var(--border); margin: 16px 0; }
</style>
</head>
<body>
  <div class="container">
    <div class="header">
      <div class="breadcrumbs" id="breadcrumbs"></div>
      <div class="controls">
        <input type="search" id="q" placeholder="Search (/)">
        <button class="toggle" id="themeToggle" title="Toggle theme">🌓</button>
      </div>
    </div>
    {{BODY}}
  </div>
<script>
(function() {
  const html = document.documentElement;
  const key = "sfws-theme";
  const saved = localStorage.getItem(key);
  if (saved) html.setAttribute("data-theme", saved);
  document.getElementById("themeToggle").addEventListener("click", () => {
    const cur = html.getAttribute("data-theme");
    const next = cur === "dark" ? "" : "dark";
    if (next) html.setAttribute("data-theme", next); else html.removeAttribute("data-theme");
    localStorage.setItem(key, next);
  });

  const q = document.getElementById("q");
  window.addEventListener("keydown", (e) => {
    if (e.key === "/" && !e.metaKey && !e.ctrlKey && document.activeElement !== q) {
      e.preventDefault(); q.focus();
    }
  });
})();
{{EXTRA_JS}}
</script>
</body>
</html>`

// Render wraps a body fragment in the page shell. extraJS is appended to the
// base script block verbatim.
func Render(title, bodyHTML, extraJS string) string {
	r := strings.NewReplacer(
		"{{TITLE}}", title,
		"{{BODY}}", bodyHTML,
		"{{EXTRA_JS}}", extraJS,
	)
	return r.Replace(pageTemplate)
}
