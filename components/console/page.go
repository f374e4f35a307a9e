// components/console/page.go
//
// HTML shell for the console.  The page is a thin client: it renders
// whatever GET /api/{kind} returns and posts every interaction back, so
// all state lives server-side in the operator's session.
package console

import (
	"html/template"
	"net/http"
)

var shellTpl = template.Must(template.New("console").Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <title>Backoffice Console</title>
  <style>
    body { font-family: system-ui, sans-serif; margin: 2rem; }
    nav button { margin-right: .5rem; }
    table { border-collapse: collapse; margin-top: 1rem; }
    th, td { border: 1px solid #ccc; padding: .35rem .6rem; }
    th { cursor: pointer; }
    .banner { color: #b00020; margin-top: .5rem; }
    .badge { padding: .1rem .4rem; border-radius: .5rem; font-size: .8rem; }
  </style>
</head>
<body>
  <h1>Backoffice Console</h1>
  <nav>
    <button data-kind="users">Users</button>
    <button data-kind="posts">Posts</button>
  </nav>
  <div id="stats"></div>
  <div id="banner" class="banner"></div>
  <div id="table"></div>
  <script src="/static/console.js" defer></script>
</body>
</html>`))

func (c *Comp) getConsole(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := shellTpl.Execute(w, nil); err != nil {
		c.log.Errorw("console shell render failed", "error", err)
	}
}

// consoleJS is served from /static/console.js rather than inlined, so the
// shell stays within the self-only Content-Security-Policy.
const consoleJS = `"use strict";
let kind = "users";

async function refresh(params) {
  const qs = new URLSearchParams(params || {});
  const res = await fetch("/api/" + kind + "?" + qs, {credentials: "same-origin"});
  render(await res.json());
}

function render(data) {
  document.getElementById("banner").textContent = data.error || "";
  document.getElementById("stats").textContent = JSON.stringify(data.stats);

  const tbl = document.createElement("table");
  const head = tbl.insertRow();
  for (const col of data.columns) {
    const th = document.createElement("th");
    th.textContent = col;
    th.onclick = () => refresh({sort: col, dir: data.view.sort === col && data.view.dir === "asc" ? "desc" : "asc"});
    head.appendChild(th);
  }
  for (const row of data.rows) {
    const tr = tbl.insertRow();
    for (const col of data.columns) {
      const td = tr.insertCell();
      const badge = row.badges && row.badges[col];
      td.textContent = badge ? badge.label : String(row.record[col] ?? "");
      if (badge) td.className = "badge badge-" + badge.variant;
    }
  }
  const host = document.getElementById("table");
  host.replaceChildren(tbl);

  const pager = document.createElement("div");
  pager.textContent = "page " + data.page + " / " + data.pageCount +
    " (" + data.filtered + " of " + data.total + ")";
  host.appendChild(pager);
}

for (const btn of document.querySelectorAll("nav button")) {
  btn.onclick = () => { kind = btn.dataset.kind; refresh(); };
}
refresh();
`

func (c *Comp) getConsoleJS(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	_, _ = w.Write([]byte(consoleJS))
}
