// Copyright 2024-2026 The Rubyflow Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/rivo/uniseg"
)

// TabstopWidth is the size we render all tabstops as.
const TabstopWidth = 4

// Renderer renders a [Report] as human-readable text.
type Renderer struct {
	// ShowRemarks includes Remark-level diagnostics in the output.
	ShowRemarks bool
}

// Render writes every diagnostic in r to w.
func (re Renderer) Render(r *Report, w io.Writer) error {
	for _, d := range r.Diagnostics() {
		if d.level == Remark && !re.ShowRemarks {
			continue
		}
		if err := re.diagnostic(d, w); err != nil {
			return err
		}
	}
	return nil
}

func (re Renderer) diagnostic(d *Diagnostic, w io.Writer) error {
	if d.tag != "" {
		fmt.Fprintf(w, "%v[%s]: %s\n", d.level, d.tag, d.message)
	} else {
		fmt.Fprintf(w, "%v: %s\n", d.level, d.message)
	}

	span := d.primary
	if !span.IsZero() {
		fmt.Fprintf(w, "  --> %v\n", span)

		start, end := span.Offsets()
		line := span.File().Line(start)
		lineStart := strings.LastIndexByte(span.File().Text()[:start], '\n') + 1
		// Clamp the underline to the rendered line.
		start -= lineStart
		end = min(end-lineStart, len(line))

		fmt.Fprintf(w, "   | %s\n", expandTabs(line))
		fmt.Fprintf(w, "   | %s%s\n",
			strings.Repeat(" ", width(line[:start])),
			strings.Repeat("^", max(width(line[start:end]), 1)))
	}

	for _, note := range d.notes {
		fmt.Fprintf(w, "   = note: %s\n", note)
	}
	_, err := fmt.Fprintln(w)
	return err
}

// width measures the rendered width of text, counting grapheme clusters
// rather than bytes so that combining characters and emoji underline
// correctly.
func width(text string) int {
	var w int
	state := -1
	for len(text) > 0 {
		var cluster string
		cluster, text, _, state = uniseg.FirstGraphemeClusterInString(text, state)
		if cluster == "\t" {
			w += TabstopWidth - w%TabstopWidth
			continue
		}
		w += uniseg.StringWidth(cluster)
	}
	return w
}

func expandTabs(line string) string {
	if !strings.ContainsRune(line, '\t') {
		return line
	}
	var b strings.Builder
	for _, r := range line {
		if r == '\t' {
			n := TabstopWidth - width(b.String())%TabstopWidth
			b.WriteString(strings.Repeat(" ", n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
