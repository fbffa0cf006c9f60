package api

import (
	"encoding/xml"
	"net/http"
	"net/url"
	"time"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// handleSitemap lists the static pages and one entry per post.
func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC().Format(time.RFC3339)
	site := s.cfg.SiteURL

	set := urlSet{
		Xmlns: sitemapNamespace,
		URLs: []sitemapURL{
			{Loc: site, LastMod: now, ChangeFreq: "daily", Priority: "1.0"},
			{Loc: site + "/blog", LastMod: now, ChangeFreq: "daily", Priority: "0.9"},
			{Loc: site + "/fotos", LastMod: now, ChangeFreq: "weekly", Priority: "0.8"},
		},
	}

	for _, post := range s.services.Content.GetPosts(r.Context()) {
		lastMod := post.UpdatedAt
		if lastMod == "" {
			lastMod = post.Date
		}
		if lastMod == "" {
			lastMod = now
		}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        site + "/blog/" + url.PathEscape(post.Slug),
			LastMod:    lastMod,
			ChangeFreq: "monthly",
			Priority:   "0.7",
		})
	}

	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, s-maxage=86400, stale-while-revalidate")
	w.WriteHeader(http.StatusOK)

	_, _ = w.Write([]byte(xml.Header))
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		s.logger.Error("Failed to encode sitemap", "error", err)
	}
}
