package sandbox

// documentTemplate is a text/template: the page source is inserted verbatim
// (after escapeScript), so html/template's contextual escaping must not run.
const documentTemplate = `<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <script>
      (function () {
        var version = "{{.Version}}";
        var reported = false;
        function report(kind, message) {
          reported = true;
          try {
            window.parent.postMessage({
              source: "{{.MessageSource}}",
              version: version,
              kind: kind,
              message: String(message || "unknown error")
            }, "*");
          } catch (e) {}
        }
        window.__instasiteReport = report;
        window.addEventListener("error", function (e) {
          var msg = e.message || (e.error && e.error.message) || "script error";
          report(/SyntaxError|Unexpected token|Babel/.test(msg) ? "transform" : "runtime", msg);
        });
        window.addEventListener("unhandledrejection", function (e) {
          report("runtime", (e.reason && e.reason.message) || e.reason);
        });
        setTimeout(function () {
          if (!window.__instasiteMounted && !reported) {
            report("load", "preview did not start; a runtime resource may have failed to load");
          }
        }, 15000);
      })();
    </script>
{{- range .Scripts}}
    <script src="{{.}}"></script>
{{- end}}
    <link href="{{.FontURL}}" rel="stylesheet">
    <style>
      body { font-family: 'Inter', sans-serif; }
    </style>
    <script>
      (function () {
        var modules = {
          "react": window.React,
          "react-dom": window.ReactDOM,
          "react-dom/client": window.ReactDOM,
          "lucide-react": window.{{.IconNamespace}}
        };
        window.require = function (name) {
          if (Object.prototype.hasOwnProperty.call(modules, name)) {
            return modules[name];
          }
          throw new Error("module \"" + name + "\" is not available in the preview");
        };
        window.module = { exports: {} };
        window.exports = window.module.exports;
        window.__instasitePage = null;
        window.{{.RegisterFunc}} = function (component) {
          window.__instasitePage = component;
        };
        var icons = window.{{.IconNamespace}} || {};
        [{{.Icons}}].forEach(function (name) {
          if (!(name in window)) {
            window[name] = icons[name];
          }
        });
      })();
    </script>
  </head>
  <body class="bg-white">
    <div id="{{.RootID}}"></div>
    <script type="text/babel" data-presets="env,react">
{{.Code}}

;(function () {
  var report = window.__instasiteReport;
  var Entry = window.__instasitePage;
{{- range .EntryPoints}}
  if (!Entry && typeof {{.}} !== "undefined") { Entry = {{.}}; }
{{- if eq . "DefaultExport"}}
  if (!Entry && window.module.exports && window.module.exports.default) { Entry = window.module.exports.default; }
{{- end}}
{{- end}}
  if (!Entry) {
    report("entry", "no entry point found: call {{.RegisterFunc}}(Component), export default a component, or define {{range $i, $e := .EntryPoints}}{{if $i}} / {{end}}{{$e}}{{end}}");
    return;
  }

  class Boundary extends React.Component {
    constructor(props) { super(props); this.state = { failed: false }; }
    static getDerivedStateFromError() { return { failed: true }; }
    componentDidCatch(error) { report("render", error && error.message ? error.message : error); }
    render() { return this.state.failed ? null : this.props.children; }
  }

  var root = ReactDOM.createRoot(document.getElementById("{{.RootID}}"));
  root.render(React.createElement(Boundary, null, React.createElement(Entry)));
  window.__instasiteMounted = true;
})();
    </script>
  </body>
</html>
`
