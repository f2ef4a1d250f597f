package editor

// screensTemplate holds one named html/template per screen plus shared
// fragments. Each screen subscribes to the session stream and reloads when
// the session layout changes; a new sandbox error is shown in place.
const screensTemplate = `
{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>InstaSite AI</title>
  <script src="https://cdn.tailwindcss.com"></script>
  <link href="https://fonts.googleapis.com/css2?family=Inter:wght@400;500;600;700&display=swap" rel="stylesheet">
  <style>body { font-family: 'Inter', sans-serif; }</style>
</head>
<body class="bg-slate-50 text-slate-900 min-h-screen">
{{end}}

{{define "client"}}
<script>
  const sessionID = {{.Snap.ID}};
  const layout = {{.Layout}};
  let revision = {{.Snap.Revision}};

  async function api(method, path, body) {
    const res = await fetch("/api/sessions/" + sessionID + path, {
      method: method,
      headers: { "Content-Type": "application/json" },
      body: body === undefined ? undefined : JSON.stringify(body)
    });
    let data = null;
    try { data = await res.json(); } catch (e) {}
    if (!res.ok) {
      throw new Error((data && data.error) || res.statusText);
    }
    return data;
  }

  function showSandboxError(re) {
    const el = document.getElementById("sandbox-error");
    if (!el) return;
    if (!re) { el.textContent = ""; el.classList.add("hidden"); return; }
    el.textContent = "Preview " + re.kind + " error: " + re.message;
    el.classList.remove("hidden");
  }

  function showError(err) {
    const el = document.getElementById("error");
    if (el) { el.textContent = err.message || String(err); el.classList.remove("hidden"); }
  }

  (function connect() {
    const proto = location.protocol === "https:" ? "wss:" : "ws:";
    const ws = new WebSocket(proto + "//" + location.host + "/ws/sessions/" + sessionID);
    ws.onmessage = function (ev) {
      const msg = JSON.parse(ev.data);
      if (msg.type !== "state" || msg.revision <= revision) return;
      if (msg.layout !== layout) {
        location.reload();
        return;
      }
      revision = msg.revision;
      showSandboxError(msg.sandbox_error);
    };
    ws.onclose = function () { setTimeout(connect, 2000); };
  })();
</script>
{{end}}

{{define "notice"}}
{{if .Snap.Notice}}
<div class="mb-6 rounded-lg border border-red-200 bg-red-50 px-4 py-3 text-sm text-red-700">{{.Snap.Notice.Message}}</div>
{{end}}
<div id="error" class="hidden mb-6 rounded-lg border border-red-200 bg-red-50 px-4 py-3 text-sm text-red-700"></div>
{{end}}

{{define "landing"}}{{template "head" .}}
<main class="max-w-4xl mx-auto px-6 py-24 text-center">
  <span class="inline-block rounded-full bg-indigo-100 px-4 py-1 text-sm font-medium text-indigo-700">AI Website Architect</span>
  <h1 class="mt-6 text-5xl font-bold tracking-tight">Describe your business.<br>Get a multi-page website.</h1>
  <p class="mt-6 text-lg text-slate-600">InstaSite plans your pages, writes the code and previews it live. Deploy in one click.</p>
  <form method="post" action="/sessions" class="mt-10">
    <button type="submit" class="rounded-xl bg-indigo-600 px-8 py-4 text-lg font-semibold text-white shadow hover:bg-indigo-500">Start building</button>
  </form>
</main>
</body>
</html>
{{end}}

{{define "setup"}}{{template "head" .}}
<main class="max-w-2xl mx-auto px-6 py-12">
  <h2 class="text-3xl font-bold mb-2">Tell us about your project</h2>
  <p class="text-slate-600 mb-8">We'll plan the pages and write the code for you.</p>
  {{template "notice" .}}
  <form id="setup" class="space-y-6 rounded-2xl bg-white p-8 shadow">
    <label class="block">
      <span class="text-sm font-medium">What is the goal of your website?</span>
      <textarea name="goal" required rows="3" class="mt-1 w-full rounded-lg border border-slate-300 p-3">{{.Snap.Params.Goal}}</textarea>
    </label>
    <label class="block">
      <span class="text-sm font-medium">Who is your target audience?</span>
      <input name="audience" required value="{{.Snap.Params.Audience}}" class="mt-1 w-full rounded-lg border border-slate-300 p-3">
    </label>
    <div class="grid grid-cols-2 gap-4">
      <label class="block">
        <span class="text-sm font-medium">Website type</span>
        <select name="type" class="mt-1 w-full rounded-lg border border-slate-300 p-3">
          {{range .WebsiteTypes}}<option{{if eq . $.Snap.Params.Type}} selected{{end}}>{{.}}</option>{{end}}
        </select>
      </label>
      <label class="block">
        <span class="text-sm font-medium">Brand tone</span>
        <select name="tone" class="mt-1 w-full rounded-lg border border-slate-300 p-3">
          {{range .Tones}}<option{{if eq . $.Snap.Params.Tone}} selected{{end}}>{{.}}</option>{{end}}
        </select>
      </label>
    </div>
    <fieldset>
      <legend class="text-sm font-medium">Pages</legend>
      <div class="mt-2 flex flex-wrap gap-2">
        {{range .PageOptions}}
        <label class="flex items-center gap-2 rounded-lg border border-slate-300 px-3 py-2 text-sm capitalize">
          <input type="checkbox" name="pages" value="{{.}}"{{if contains $.Snap.Params.Pages .}} checked{{end}}> {{.}}
        </label>
        {{end}}
      </div>
    </fieldset>
    <fieldset>
      <legend class="text-sm font-medium">Brand colors</legend>
      <div class="mt-2 flex gap-4">
        <input type="color" name="colors" value="{{colorAt .Snap.Params.Colors 0}}">
        <input type="color" name="colors" value="{{colorAt .Snap.Params.Colors 1}}">
        <input type="color" name="colors" value="{{colorAt .Snap.Params.Colors 2}}">
      </div>
    </fieldset>
    <button type="submit" class="w-full rounded-xl bg-indigo-600 py-4 font-semibold text-white hover:bg-indigo-500">Generate website</button>
  </form>
</main>
{{template "client" .}}
<script>
  document.getElementById("setup").addEventListener("submit", async function (ev) {
    ev.preventDefault();
    const form = new FormData(ev.target);
    try {
      await api("POST", "/generate", {
        goal: form.get("goal"),
        audience: form.get("audience"),
        type: form.get("type"),
        pages: form.getAll("pages"),
        colors: form.getAll("colors"),
        tone: form.get("tone")
      });
    } catch (err) {
      showError(err);
    }
  });
</script>
</body>
</html>
{{end}}

{{define "generating"}}{{template "head" .}}
<main class="max-w-xl mx-auto px-6 py-24">
  <h2 class="text-3xl font-bold text-center mb-10">Building your website</h2>
  <ol class="space-y-4">
    {{range .Steps}}
    <li class="flex items-center gap-4 rounded-xl bg-white p-4 shadow {{if .Done}}text-green-600{{else if .Active}}text-indigo-600 font-semibold{{else}}text-slate-400{{end}}">
      <span class="flex h-8 w-8 items-center justify-center rounded-full border">{{.N}}</span>
      {{.Label}}{{if .Active}}...{{end}}
    </li>
    {{end}}
  </ol>
</main>
{{template "client" .}}
</body>
</html>
{{end}}

{{define "editor"}}{{template "head" .}}
{{$base := printf "/s/%s" .Snap.ID}}
<div class="flex h-screen">
  <aside class="w-72 shrink-0 overflow-y-auto border-r border-slate-200 bg-white p-4">
    <div class="mb-4 flex gap-2 text-sm">
      <a href="{{$base}}?tab=pages&view={{.View}}" class="rounded-lg px-3 py-1 {{if eq .Tab "pages"}}bg-indigo-100 text-indigo-700{{end}}">Pages</a>
      <a href="{{$base}}?tab=styles&view={{.View}}" class="rounded-lg px-3 py-1 {{if eq .Tab "styles"}}bg-indigo-100 text-indigo-700{{end}}">Styles</a>
    </div>
    {{if eq .Tab "styles"}}
    {{with .Snap.Blueprint.GlobalStyle}}
    <dl class="space-y-3 text-sm">
      <div class="flex items-center gap-2"><span class="h-5 w-5 rounded" style="background: {{.PrimaryColor}}"></span><dt>Primary</dt><dd class="ml-auto font-mono">{{.PrimaryColor}}</dd></div>
      <div class="flex items-center gap-2"><span class="h-5 w-5 rounded" style="background: {{.SecondaryColor}}"></span><dt>Secondary</dt><dd class="ml-auto font-mono">{{.SecondaryColor}}</dd></div>
      <div class="flex items-center gap-2"><span class="h-5 w-5 rounded" style="background: {{.AccentColor}}"></span><dt>Accent</dt><dd class="ml-auto font-mono">{{.AccentColor}}</dd></div>
      <div class="flex"><dt>Font</dt><dd class="ml-auto">{{.FontFamily}}</dd></div>
      <div class="flex"><dt>Tone</dt><dd class="ml-auto">{{.Tone}}</dd></div>
    </dl>
    {{end}}
    {{else}}
    <ul class="space-y-1">
      {{range .Snap.Blueprint.Pages}}
      <li>
        <button data-select="{{.Slug}}" class="flex w-full items-center justify-between rounded-lg px-3 py-2 text-left text-sm {{if eq .Slug $.Snap.CurrentPage}}bg-indigo-600 text-white{{else}}hover:bg-slate-100{{end}}">
          <span>{{.Title}}</span>
          {{if $.Snap.Generating .Slug}}<span class="text-xs">generating</span>{{else if not .Generated}}<span class="text-xs opacity-70">needs generation</span>{{end}}
        </button>
      </li>
      {{end}}
    </ul>
    {{end}}
    <div class="mt-6 border-t border-slate-200 pt-4">
      <button id="new-site" class="w-full rounded-lg border border-slate-300 py-2 text-sm hover:bg-slate-100">New website</button>
    </div>
  </aside>

  <main class="flex min-w-0 flex-1 flex-col">
    <header class="flex items-center gap-3 border-b border-slate-200 bg-white px-6 py-3">
      <h1 class="font-semibold">{{if .HasPage}}{{.Page.Title}} <span class="font-mono text-xs text-slate-400">/{{.Page.Slug}}</span>{{end}}</h1>
      <nav class="ml-6 flex gap-2 text-sm">
        <a href="{{$base}}?tab={{.Tab}}&view=preview" class="rounded-lg px-3 py-1 {{if eq .View "preview"}}bg-slate-900 text-white{{end}}">Preview</a>
        <a href="{{$base}}?tab={{.Tab}}&view=code" class="rounded-lg px-3 py-1 {{if eq .View "code"}}bg-slate-900 text-white{{end}}">Code</a>
        <a href="{{$base}}?tab={{.Tab}}&view=plan" class="rounded-lg px-3 py-1 {{if eq .View "plan"}}bg-slate-900 text-white{{end}}">Plan</a>
      </nav>
      <div class="ml-auto flex gap-2">
        {{if .HasPage}}<button id="regenerate" {{if .Generating}}disabled{{end}} class="rounded-lg border border-slate-300 px-4 py-2 text-sm hover:bg-slate-100 disabled:opacity-50">Regenerate page</button>{{end}}
        <button id="deploy" class="rounded-lg bg-indigo-600 px-4 py-2 text-sm font-semibold text-white hover:bg-indigo-500">Deploy</button>
      </div>
    </header>

    <div class="min-h-0 flex-1 overflow-auto p-6">
      {{template "notice" .}}
      <div id="sandbox-error" class="{{if not .Snap.SandboxError}}hidden {{end}}mb-4 rounded-lg border border-amber-200 bg-amber-50 px-4 py-3 text-sm text-amber-800">
        {{- with .Snap.SandboxError}}Preview {{.Kind}} error: {{.Message}}{{end -}}
      </div>

      {{if eq .View "plan"}}
      <article class="prose max-w-none rounded-xl bg-white p-6 shadow">{{.Outline}}</article>
      {{else if not .HasPage}}
      <p class="text-slate-500">Select a page.</p>
      {{else if .Generating}}
      <div class="flex h-full items-center justify-center text-slate-500">Generating {{.Page.Title}}...</div>
      {{else if not .Page.Generated}}
      <div class="flex h-full flex-col items-center justify-center gap-4 text-slate-500">
        <p>This page has not been generated yet.</p>
        <button data-select="{{.Page.Slug}}" class="rounded-lg bg-indigo-600 px-4 py-2 text-sm font-semibold text-white">Generate {{.Page.Title}}</button>
      </div>
      {{else if eq .View "code"}}
      <div class="overflow-auto rounded-xl bg-white p-4 text-sm shadow">{{.CodeHTML}}</div>
      {{else}}
      <iframe id="preview" src="{{.PreviewURL}}" sandbox="{{.SandboxAttr}}" title="Preview of {{.Page.Title}}" class="h-full w-full rounded-xl border border-slate-200 bg-white shadow"></iframe>
      {{end}}

      {{if and .HasPage (ne .View "plan")}}
      <section class="mt-6 rounded-xl bg-white p-4 shadow">
        <h3 class="mb-3 font-semibold">Sections</h3>
        <ul class="space-y-3">
          {{range .Sections}}
          <li class="rounded-lg border border-slate-200 p-3">
            <div class="flex items-center gap-3">
              <span class="rounded bg-slate-100 px-2 py-0.5 font-mono text-xs">{{.Type}}</span>
              <span class="text-sm text-slate-600">{{.Purpose}}</span>
              <button data-section="{{.ID}}" {{if .Generating}}disabled{{end}} class="ml-auto rounded-lg border border-slate-300 px-3 py-1 text-xs hover:bg-slate-100 disabled:opacity-50">{{if .Generating}}Regenerating...{{else}}Regenerate section{{end}}</button>
            </div>
            {{if .ContentHTML}}<div class="mt-3 overflow-auto text-xs">{{.ContentHTML}}</div>{{end}}
          </li>
          {{end}}
        </ul>
      </section>
      {{end}}
    </div>
  </main>
</div>

{{with .Snap.Deploy}}{{if ne .State "idle"}}
<div class="fixed inset-0 flex items-center justify-center bg-slate-900/50">
  <div class="w-full max-w-md rounded-2xl bg-white p-8 text-center shadow-xl">
    {{if eq .State "deploying"}}
    <h3 class="text-xl font-bold">Deploying your website...</h3>
    <p class="mt-2 text-slate-500">Optimizing assets and provisioning your domain.</p>
    {{else}}
    <h3 class="text-xl font-bold">Your website is live!</h3>
    <a href="{{.URL}}" target="_blank" rel="noopener" class="mt-4 block font-mono text-indigo-600">{{.URL}}</a>
    <button id="deploy-close" class="mt-6 rounded-lg bg-slate-900 px-4 py-2 text-sm text-white">Close</button>
    {{end}}
  </div>
</div>
{{end}}{{end}}

{{template "client" .}}
<script>
  const currentPage = {{.Snap.CurrentPage}};
  const messageSource = {{.MessageSource}};

  function onClick(selector, fn) {
    document.querySelectorAll(selector).forEach(function (el) {
      el.addEventListener("click", function () { fn(el).catch(showError); });
    });
  }

  onClick("[data-select]", function (el) {
    return api("POST", "/pages/" + encodeURIComponent(el.dataset.select) + "/select");
  });
  onClick("[data-section]", function (el) {
    el.disabled = true;
    return api("POST", "/pages/" + encodeURIComponent(currentPage) + "/sections/" + encodeURIComponent(el.dataset.section) + "/regenerate");
  });
  onClick("#regenerate", function () {
    return api("POST", "/pages/" + encodeURIComponent(currentPage) + "/regenerate");
  });
  onClick("#deploy", function () { return api("POST", "/deploy"); });
  onClick("#deploy-close", function () { return api("DELETE", "/deploy"); });
  onClick("#new-site", function () { return api("POST", "/setup"); });

  window.addEventListener("message", function (ev) {
    const frame = document.getElementById("preview");
    if (!frame || ev.source !== frame.contentWindow) return;
    const d = ev.data || {};
    if (d.source !== messageSource) return;
    api("POST", "/sandbox-errors", {
      slug: currentPage,
      version: String(d.version || ""),
      kind: String(d.kind || ""),
      message: String(d.message || "")
    }).catch(function () {});
  });
</script>
</body>
</html>
{{end}}
`
