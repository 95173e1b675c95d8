package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/degacms/dega/internal/shell/store"
)

// Pagination response headers.
const (
	headerTotalCount = "X-Total-Count"
	headerTotalPages = "X-Total-Pages"
)

// parsePageOptions reads page, size and sort query parameters. Bad values
// fall back to the defaults rather than erroring.
func parsePageOptions(r *http.Request) store.PageOptions {
	opts := store.DefaultPageOptions()

	if v := r.URL.Query().Get("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil && page >= 0 {
			opts.Page = page
		}
	}
	if v := r.URL.Query().Get("size"); v != "" {
		if size, err := strconv.Atoi(v); err == nil && size > 0 {
			opts.Size = size
		}
	}
	if v := r.URL.Query().Get("sort"); v != "" {
		opts.Sort = v
	}

	return opts.Normalize()
}

// totalPages computes the page count for a total at the given page size.
func totalPages(total, size int) int {
	if total == 0 {
		return 0
	}
	return (total + size - 1) / size
}

// writePageHeaders sets X-Total-Count, X-Total-Pages and an RFC 5988 Link
// header with first/prev/next/last relations. Link URLs keep the request's
// other query parameters, so search queries are echoed back.
func writePageHeaders(w http.ResponseWriter, r *http.Request, opts store.PageOptions, total int) {
	pages := totalPages(total, opts.Size)

	w.Header().Set(headerTotalCount, strconv.Itoa(total))
	w.Header().Set(headerTotalPages, strconv.Itoa(pages))

	if pages == 0 {
		return
	}

	var links []string
	addLink := func(page int, rel string) {
		links = append(links, fmt.Sprintf("<%s>; rel=\"%s\"", pageURL(r, page, opts.Size), rel))
	}

	addLink(0, "first")
	if opts.Page > 0 {
		addLink(opts.Page-1, "prev")
	}
	if opts.Page < pages-1 {
		addLink(opts.Page+1, "next")
	}
	addLink(pages-1, "last")

	w.Header().Set("Link", strings.Join(links, ", "))
}

// pageURL rebuilds the request URL with the given page and size.
func pageURL(r *http.Request, page, size int) string {
	u := *r.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	u.RawQuery = q.Encode()
	return u.String()
}
