package fileserver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

// listingRows parses the listing page and returns, per tbody row, the
// data-name attribute and whether the row is the pinned parent row.
type listingRow struct {
	name   string
	isDir  string
	parent bool
}

func parseRows(t *testing.T, page []byte) []listingRow {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(string(page)))
	require.NoError(t, err)

	var rows []listingRow
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			row := listingRow{}
			inTable := false
			for _, a := range n.Attr {
				switch a.Key {
				case "data-name":
					row.name = a.Val
					inTable = true
				case "data-isdir":
					row.isDir = a.Val
				case "data-parent":
					row.parent = true
				}
			}
			if inTable {
				rows = append(rows, row)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return rows
}

func TestListing_DirsFirstThenCaseInsensitiveNames(t *testing.T) {
	fs, root := newTestServer(t, func(root string) {
		mustWrite(t, filepath.Join(root, "zeta.txt"), "z")
		mustWrite(t, filepath.Join(root, "Alpha.txt"), "a")
		require.NoError(t, os.Mkdir(filepath.Join(root, "bdir"), 0o755))
		require.NoError(t, os.Mkdir(filepath.Join(root, "ADir"), 0o755))
	})

	page, err := fs.Listing(root)
	require.NoError(t, err)

	rows := parseRows(t, page)
	var names []string
	for _, r := range rows {
		names = append(names, r.name)
	}
	assert.Equal(t, []string{"ADir", "bdir", "Alpha.txt", "zeta.txt"}, names)
}

func TestListing_RootHasNoParentRow(t *testing.T) {
	fs, root := newTestServer(t, func(root string) {
		mustWrite(t, filepath.Join(root, "a.txt"), "a")
	})
	page, err := fs.Listing(root)
	require.NoError(t, err)
	for _, r := range parseRows(t, page) {
		assert.False(t, r.parent, "root listing must not have a parent row")
	}
}

func TestListing_SubdirParentRowPinnedFirst(t *testing.T) {
	fs, root := newTestServer(t, func(root string) {
		mustWrite(t, filepath.Join(root, "sub", "a.txt"), "a")
	})
	page, err := fs.Listing(filepath.Join(root, "sub"))
	require.NoError(t, err)

	rows := parseRows(t, page)
	require.NotEmpty(t, rows)
	assert.True(t, rows[0].parent)
	assert.Equal(t, "..", rows[0].name)
	assert.Equal(t, "1", rows[0].isDir)
}

func TestListing_HrefsAndDataAttributes(t *testing.T) {
	fs, root := newTestServer(t, func(root string) {
		mustWrite(t, filepath.Join(root, "docs", "readme.md"), "# hi")
		require.NoError(t, os.Mkdir(filepath.Join(root, "docs", "img"), 0o755))
	})
	page, err := fs.Listing(filepath.Join(root, "docs"))
	require.NoError(t, err)
	body := string(page)

	assert.Contains(t, body, `href="/docs/readme.md"`)
	assert.Contains(t, body, `href="/docs/img/"`, "directory hrefs end with a slash")
	assert.Contains(t, body, `data-isdir="1"`)
	assert.Contains(t, body, `data-isdir="0"`)
	assert.Contains(t, body, `data-size="4"`)
	assert.Contains(t, body, "<title>Directory listing for /docs</title>")
}

func TestListing_NamesEscaped(t *testing.T) {
	fs, root := newTestServer(t, func(root string) {
		mustWrite(t, filepath.Join(root, "a<b>.txt"), "x")
	})
	page, err := fs.Listing(root)
	require.NoError(t, err)
	body := string(page)
	assert.NotContains(t, body, `>a<b>.txt<`)
	assert.Contains(t, body, "a&lt;b&gt;.txt")
}

func TestFormatSize(t *testing.T) {
	cases := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1048576, "1.00 MB"},
		{5 * 1048576, "5.00 MB"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, formatSize(tc.size))
	}
}
