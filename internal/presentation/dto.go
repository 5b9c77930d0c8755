// Package presentation shapes registry data for the non-interactive
// commands and writes it as text, JSON or YAML.
package presentation

import (
	"time"

	"github.com/zjrosen/regview/internal/explorer"
	"github.com/zjrosen/regview/internal/registry"
)

// ResultDTO is one search hit.
type ResultDTO struct {
	Category string `json:"category" yaml:"category"`
	Name     string `json:"name" yaml:"name"`
}

// SearchDTO is the outcome of `regview search`.
type SearchDTO struct {
	Query   string      `json:"query" yaml:"query"`
	Results []ResultDTO `json:"results" yaml:"results"`
	// More is set when the listing stopped at a batch boundary with
	// further matches left.
	More bool `json:"more" yaml:"more"`
}

// FromPager converts the rows emitted so far by p.
func FromPager(query string, p *explorer.Pager) SearchDTO {
	dto := SearchDTO{Query: query, Results: make([]ResultDTO, 0, p.Len()), More: p.Offered()}
	for _, t := range p.Rows() {
		dto.Results = append(dto.Results, ResultDTO{Category: t.Category, Name: t.Name})
	}
	return dto
}

// RowDTO is one attribute row of an object.
type RowDTO struct {
	Line  int    `json:"line" yaml:"line"`
	Kind  string `json:"kind" yaml:"kind"`
	Value string `json:"value" yaml:"value"`
	Link  string `json:"link,omitempty" yaml:"link,omitempty"`
}

// ObjectDTO is the outcome of `regview show`.
type ObjectDTO struct {
	Category  string   `json:"category" yaml:"category"`
	Name      string   `json:"name" yaml:"name"`
	Rows      []RowDTO `json:"rows" yaml:"rows"`
	BackLinks []string `json:"back_links" yaml:"back_links"`
}

// FromDetail binds detail and flattens it. Self links are omitted.
func FromDetail(detail *registry.ObjectDetail) ObjectDTO {
	dto := ObjectDTO{
		Category:  detail.Category,
		Name:      detail.Filename,
		Rows:      []RowDTO{},
		BackLinks: []string{},
	}
	for _, row := range explorer.Bind(detail) {
		r := RowDTO{Line: row.Line, Kind: row.Kind, Value: row.Value}
		if row.Link != nil && !row.Link.Self {
			r.Link = row.Link.Target.Path()
		}
		dto.Rows = append(dto.Rows, r)
	}
	dto.BackLinks = append(dto.BackLinks, detail.BackLinks...)
	return dto
}

// CategoryDTO is a category and its object count.
type CategoryDTO struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// InfoDTO is the outcome of `regview info`.
type InfoDTO struct {
	Server     string        `json:"server" yaml:"server"`
	Commit     string        `json:"commit" yaml:"commit"`
	Generated  string        `json:"generated" yaml:"generated"`
	ROA        bool          `json:"roa" yaml:"roa"`
	Objects    int           `json:"objects" yaml:"objects"`
	Categories []CategoryDTO `json:"categories" yaml:"categories"`
}

// FromIndex summarizes idx as served by server. An unparseable generation
// time is passed through as reported.
func FromIndex(server string, idx *registry.Index) InfoDTO {
	dto := InfoDTO{
		Server:     server,
		Commit:     idx.Info.Commit,
		Generated:  idx.Info.Time,
		ROA:        idx.Info.ROA,
		Objects:    idx.Count(),
		Categories: make([]CategoryDTO, 0, len(idx.Categories)),
	}
	if ts, ok := idx.Info.Generated(); ok {
		dto.Generated = ts.Format(time.RFC3339)
	}
	for _, c := range idx.Categories {
		dto.Categories = append(dto.Categories, CategoryDTO{Name: c.Name, Count: len(c.Objects)})
	}
	return dto
}
