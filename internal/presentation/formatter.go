package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"
)

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a -o value. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
	}
}

// maxKindWidth caps the attribute column in text output.
const maxKindWidth = 24

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
	format Format
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer, format Format) *Formatter {
	return &Formatter{
		writer: writer,
		format: format,
	}
}

// FormatSearch writes search results.
func (f *Formatter) FormatSearch(dto SearchDTO) error {
	if f.format != FormatText {
		return f.encode(dto)
	}
	if len(dto.Results) == 0 {
		_, err := fmt.Fprintln(f.writer, "No results found")
		return err
	}
	var b strings.Builder
	for _, r := range dto.Results {
		fmt.Fprintf(&b, "%s/%s\n", r.Category, r.Name)
	}
	if dto.More {
		fmt.Fprintf(&b, "(more than %d results, use --all to list every match)\n", len(dto.Results))
	}
	_, err := io.WriteString(f.writer, b.String())
	return err
}

// FormatObject writes one object with its rows in source-line order.
func (f *Formatter) FormatObject(dto ObjectDTO) error {
	if f.format != FormatText {
		return f.encode(dto)
	}

	width := 0
	for _, r := range dto.Rows {
		width = max(width, runewidth.StringWidth(r.Kind))
	}
	width = min(width, maxKindWidth)

	var b strings.Builder
	fmt.Fprintf(&b, "%s/%s\n\n", dto.Category, dto.Name)
	for _, r := range dto.Rows {
		kind := runewidth.FillRight(runewidth.Truncate(r.Kind, width, "..."), width)
		if r.Link != "" {
			fmt.Fprintf(&b, "%s  %s  -> %s\n", kind, r.Value, r.Link)
			continue
		}
		fmt.Fprintf(&b, "%s  %s\n", kind, r.Value)
	}

	b.WriteString("\nReferenced by\n")
	if len(dto.BackLinks) == 0 {
		b.WriteString("  No references found\n")
	}
	for _, path := range dto.BackLinks {
		fmt.Fprintf(&b, "  %s\n", path)
	}
	_, err := io.WriteString(f.writer, b.String())
	return err
}

// FormatInfo writes the session summary.
func (f *Formatter) FormatInfo(dto InfoDTO) error {
	if f.format != FormatText {
		return f.encode(dto)
	}

	roa := "unavailable"
	if dto.ROA {
		roa = "available"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "server     %s\n", dto.Server)
	fmt.Fprintf(&b, "commit     %s\n", dto.Commit)
	fmt.Fprintf(&b, "generated  %s\n", dto.Generated)
	fmt.Fprintf(&b, "roa        %s\n", roa)
	fmt.Fprintf(&b, "objects    %d\n\n", dto.Objects)

	width := 0
	for _, c := range dto.Categories {
		width = max(width, runewidth.StringWidth(c.Name))
	}
	for _, c := range dto.Categories {
		fmt.Fprintf(&b, "%s  %d\n", runewidth.FillRight(c.Name, width), c.Count)
	}
	_, err := io.WriteString(f.writer, b.String())
	return err
}

func (f *Formatter) encode(v any) error {
	switch f.format {
	case FormatYAML:
		enc := yaml.NewEncoder(f.writer)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		encoder := json.NewEncoder(f.writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	}
}
