package fileserver

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/benzlokzik/singlefile-webserver/internal/page"
)

const (
	folderIcon = `<span class="icon"><svg viewBox="0 0 24 24" fill="currentColor"><path d="M10 4l2 2h8a2 2 0 012 2v9a2 2 0 01-2 2H4a2 2 0 01-2-2V6a2 2 0 012-2h6z"/></svg></span>`
	fileIcon   = `<span class="icon"><svg viewBox="0 0 24 24" fill="currentColor"><path d="M14 2H6a2 2 0 00-2 2v16a2 2 0 002 2h12a2 2 0 002-2V8l-6-6zM14 3.5L18.5 8H14V3.5z"/></svg></span>`
)

// listingJS drives the client side of the listing page: column sorting with
// directories pinned first, name filtering, the inline preview pane, and
// breadcrumb construction from the current URL.
const listingJS = `
(function(){
  const table = document.getElementById('files');
  const tbody = table.querySelector('tbody');
  const parentRow = tbody.querySelector('tr.parent-row');
  const rows = Array.from(tbody.querySelectorAll('tr:not(.parent-row)'));
  const count = document.getElementById('count');
  const q = document.getElementById('q');

  function updateCount(){
    const visible = rows.filter(r => r.style.display !== 'none').length;
    count.textContent = 'Items: ' + visible;
  }
  updateCount();

  let sortKey = 'name'; let sortDir = 'asc';
  function sortBy(key){
    if (sortKey === key) sortDir = (sortDir === 'asc' ? 'desc' : 'asc');
    else { sortKey = key; sortDir = 'asc'; }
    const m = sortDir === 'asc' ? 1 : -1;
    rows.sort((a,b)=>{
      const ad = +a.dataset.isdir, bd = +b.dataset.isdir;
      if (ad !== bd) return bd - ad; // directories first
      if (key === 'name') return a.dataset.name.localeCompare(b.dataset.name) * m;
      if (key === 'size') return (Number(a.dataset.size) - Number(b.dataset.size)) * m;
      return (Number(a.dataset.ts) - Number(b.dataset.ts)) * m;
    });
    if (parentRow) tbody.appendChild(parentRow);
    rows.forEach(r => tbody.appendChild(r));
  }
  table.querySelectorAll('thead th').forEach(th=>{
    th.addEventListener('click', ()=> sortBy(th.dataset.key));
  });
  sortBy('name');

  q.addEventListener('input', ()=>{
    const val = q.value.toLowerCase().trim();
    rows.forEach(r=>{
      const name = r.dataset.name.toLowerCase();
      r.style.display = name.includes(val) ? '' : 'none';
    });
    updateCount();
  });

  const iframe = document.getElementById('pv');
  const media = document.getElementById('mediaHost');
  const empty = document.getElementById('emptyHint');
  const imgExt = ['png','jpg','jpeg','gif','webp','svg','bmp','avif'];
  const audExt = ['mp3','wav','ogg','m4a','flac','aac','opus'];
  const vidExt = ['mp4','webm','ogv','mov','mkv'];
  function preview(href){
    if (href.endsWith('/')) { window.location.href = href; return; }
    empty.style.display = 'none';
    media.style.display = 'none';
    iframe.style.display = 'none';
    media.innerHTML = '';
    const ext = href.split('.').pop().toLowerCase();

    if (imgExt.includes(ext)) {
      media.innerHTML = '<img src="' + href + '" alt="">';
      media.style.display = 'block';
    } else if (audExt.includes(ext)) {
      media.innerHTML = '<audio controls preload="metadata" src="' + href + '" style="width:100%"></audio>';
      media.style.display = 'block';
    } else if (vidExt.includes(ext)) {
      media.innerHTML = '<video controls preload="metadata" src="' + href + '" style="width:100%;background:transparent"></video>';
      media.style.display = 'block';
    } else {
      iframe.src = href; // HTML/MD/PDF/text etc.
      iframe.style.display = 'block';
    }
  }

  tbody.addEventListener('click', (e)=>{
    const a = e.target.closest('a.file-link');
    if (!a) return;
    if (e.button === 0 && !e.metaKey && !e.ctrlKey) {
      e.preventDefault();
      preview(a.getAttribute('href'));
    }
  });

  const bc = document.getElementById('breadcrumbs');
  const parts = window.location.pathname.split('/').filter(Boolean);
  let accum = '';
  const els = ['<a href="/">/</a>'];
  parts.forEach((p)=>{
    accum += '/' + p;
    els.push('<span class="sep">›</span><a href="' + accum + '/">' + p + '</a>');
  });
  bc.innerHTML = els.join('');
})();
`

func formatSize(size int64) string {
	const kb = 1024
	switch {
	case size < kb:
		return fmt.Sprintf("%d B", size)
	case size < kb*kb:
		return fmt.Sprintf("%.2f KB", float64(size)/kb)
	default:
		return fmt.Sprintf("%.2f MB", float64(size)/(kb*kb))
	}
}

// Listing builds the directory listing page for a resolved directory. Rows
// carry data-name/data-size/data-ts/data-isdir attributes as the contract for
// the client-side sort and filter; the parent row is pinned on top and
// excluded from both.
func (f *FileServer) Listing(dir string) ([]byte, error) {
	rel := ""
	if dir != f.root {
		r, err := filepath.Rel(f.root, dir)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
		}
		rel = filepath.ToSlash(r)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	sort.Slice(entries, func(i, j int) bool {
		di, dj := entries[i].IsDir(), entries[j].IsDir()
		if di != dj {
			return di
		}
		return strings.ToLower(entries[i].Name()) < strings.ToLower(entries[j].Name())
	})

	var rows strings.Builder
	if dir != f.root {
		parentRel := filepath.ToSlash(filepath.Dir(rel))
		dirInfo, err := os.Stat(dir)
		mtime := int64(0)
		if err == nil {
			mtime = dirInfo.ModTime().Unix()
		}
		fmt.Fprintf(&rows, `
          <tr class="parent-row" data-name=".." data-size="0" data-ts="%d" data-isdir="1" data-parent="1">
            <td class="name-col">
              %s
              <a href="/%s/">..</a>
              <span class="meta">Parent</span>
            </td>
            <td class="meta">&#8212;</td>
            <td class="meta">&#8212;</td>
          </tr>
        `, mtime, folderIcon, parentRel)
	}

	for _, entry := range entries {
		name := entry.Name()
		isDir := entry.IsDir()

		relItem := name
		if rel != "" {
			relItem = rel + "/" + name
		}
		href := "/" + relItem
		if isDir {
			href += "/"
		}

		var size int64
		var modTime time.Time
		if info, err := entry.Info(); err == nil {
			if !isDir {
				size = info.Size()
			}
			modTime = info.ModTime()
		}
		sizeStr := "&#8212;"
		if !isDir {
			sizeStr = formatSize(size)
		}
		icon := fileIcon
		suffix := ""
		if isDir {
			icon = folderIcon
			suffix = "/"
		}
		isDirAttr := 0
		if isDir {
			isDirAttr = 1
		}

		escaped := html.EscapeString(name)
		fmt.Fprintf(&rows, `
          <tr data-name="%s" data-size="%d" data-ts="%d" data-isdir="%d">
            <td class="name-col">%s<a class="file-link" href="%s">%s%s</a></td>
            <td class="meta">%s</td>
            <td class="meta" title="%s">%s</td>
          </tr>
        `, escaped, size, modTime.Unix(), isDirAttr,
			icon, html.EscapeString(href), escaped, suffix,
			sizeStr,
			humanize.Time(modTime), modTime.Format("2006-01-02 15:04"))
	}

	body := fmt.Sprintf(`
    <div class="main">
      <div class="card">
        <h2>Contents</h2>
        <div class="table-wrap">
          <table id="files">
            <thead>
              <tr>
                <th data-key="name">Name</th>
                <th data-key="size">Size</th>
                <th data-key="ts">Modified</th>
              </tr>
            </thead>
            <tbody>
              %s
            </tbody>
          </table>
        </div>
        <div style="padding:10px 12px" class="meta"><span id="count"></span></div>
      </div>

      <div class="card preview">
        <h2>Preview</h2>
        <div class="empty" id="emptyHint">Select a file to preview</div>
        <div id="mediaHost" class="media-wrap" style="display:none"></div>
        <iframe id="pv" style="display:none"></iframe>
      </div>
    </div>
    `, rows.String())

	rendered := page.Render("Directory listing for /"+rel, body, listingJS)
	return []byte(rendered), nil
}
