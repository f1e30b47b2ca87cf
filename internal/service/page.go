package service

import (
	"encoding/json"
	"html/template"
	"io"
	"net/http"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<title>微信文章转换服务</title>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<style>
body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; max-width: 800px; margin: 0 auto; padding: 20px; background: #f5f5f7; }
.container { background: white; border-radius: 12px; padding: 30px; box-shadow: 0 4px 20px rgba(0,0,0,0.1); }
h1 { text-align: center; color: #1d1d1f; }
.stats { display: grid; grid-template-columns: repeat(auto-fit, minmax(150px, 1fr)); gap: 20px; margin: 30px 0; }
.stat-card { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 20px; border-radius: 8px; text-align: center; }
.stat-number { font-size: 28px; font-weight: bold; }
.current-status { background: #e3f2fd; border: 1px solid #2196f3; border-radius: 6px; padding: 15px; margin: 15px 0; font-weight: 500; }
.file-info { background: #e8f5e8; border: 1px solid #4caf50; border-radius: 6px; padding: 15px; margin: 15px 0; font-family: monospace; }
</style>
<script>
function updateStatus() {
  fetch('/api/status').then(r => r.json()).then(data => {
    document.getElementById('total-processed').textContent = data.total_processed;
    document.getElementById('success-count').textContent = data.success_count;
    document.getElementById('current-status').textContent = data.current_status;
    document.getElementById('last-processed').textContent = data.last_processed || '无';
    document.getElementById('uptime').textContent = data.uptime;
  });
}
setInterval(updateStatus, 2000);
updateStatus();
</script>
</head>
<body>
<div class="container">
  <h1>📱 微信文章转换服务</h1>
  <div class="stats">
    <div class="stat-card"><div class="stat-number" id="total-processed">0</div><div>总处理数</div></div>
    <div class="stat-card"><div class="stat-number" id="success-count">0</div><div>成功处理</div></div>
    <div class="stat-card"><div class="stat-number" id="uptime">0</div><div>运行时间</div></div>
  </div>
  <div class="current-status" id="current-status">等待文件更新...</div>
  <p><strong>最后处理时间:</strong> <span id="last-processed">无</span></p>
  <h3>📝 使用方法</h3>
  <ol>
    <li>将微信文章链接粘贴到文件中（每行一个）：<div class="file-info">{{.PendingPath}}</div></li>
    <li>保存文件，服务会自动检测并开始处理</li>
    <li>转换后的 Markdown 保存在：<div class="file-info">{{.OutputDir}}</div></li>
  </ol>
</div>
</body>
</html>
`))

type indexData struct {
	PendingPath string
	OutputDir   string
}

func renderIndex(w io.Writer, pendingPath, outputDir string) {
	_ = indexTemplate.Execute(w, indexData{PendingPath: pendingPath, OutputDir: outputDir})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
