// Package graph loads a GFA file into segment and path tables and resolves
// each path into a linear sequence.
//
// Loading runs in two phases. Scan reads the whole input and fills the
// tables without resolving anything, so segments may appear after the paths
// that reference them. Resolve then walks every path against the complete
// segment table. Any error aborts the load; no partial results are returned.
package graph

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/phobologic/gfapath2fa/internal/model"
	"github.com/phobologic/gfapath2fa/internal/parse"
	"github.com/phobologic/gfapath2fa/internal/seq"
)

// Minimum tab-separated field counts per line type, tag included.
const (
	segmentFields = 3
	pathFields    = 3
	walkFields    = 7
)

// Options controls both load phases.
type Options struct {
	// Strict rejects segment sequences containing anything other than
	// A, C, G, T or N (either case), both when S-lines are scanned and when
	// a reverse-oriented segment is complemented.
	Strict bool

	// Workers is the number of goroutines used to resolve paths.
	// Values <= 1 resolve sequentially.
	Workers int
}

// Load scans r and resolves every path. Records are returned in the order
// their P- or W-lines appear in the input.
func Load(r io.Reader, opts Options) (*model.Graph, []model.Record, error) {
	g, err := Scan(r, opts)
	if err != nil {
		return nil, nil, err
	}
	records, err := Resolve(g, opts)
	if err != nil {
		return nil, nil, err
	}
	return g, records, nil
}

// Scan reads GFA lines from r and builds the segment and path tables.
// Paths are stored unresolved. Line types other than S, P and W are skipped.
func Scan(r io.Reader, opts Options) (*model.Graph, error) {
	g := model.NewGraph()
	br := bufio.NewReader(r)

	for lineNo := 1; ; lineNo++ {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("reading line %d: %w", lineNo, err)
		}
		if len(line) > 0 {
			if lerr := scanLine(g, strings.TrimRight(line, "\r\n"), lineNo, opts); lerr != nil {
				return nil, lerr
			}
		}
		if err == io.EOF {
			return g, nil
		}
	}
}

func scanLine(g *model.Graph, line string, lineNo int, opts Options) error {
	if line == "" {
		return nil
	}
	fields := strings.Split(line, "\t")
	tag := fields[0]

	switch tag {
	case "S":
		if len(fields) < segmentFields {
			return truncated(tag, lineNo, len(fields), segmentFields)
		}
		s := model.Segment{Name: fields[1], Sequence: fields[2], Line: lineNo}
		if opts.Strict {
			if err := seq.Validate(s.Sequence); err != nil {
				return &model.Error{
					Kind:   model.ErrInvalidSequenceSymbol,
					Line:   lineNo,
					Tag:    tag,
					Name:   s.Name,
					Detail: err.Error(),
				}
			}
		}
		if !g.AddSegment(s) {
			prev, _ := g.Segment(s.Name)
			return &model.Error{
				Kind:   model.ErrDuplicateSegmentName,
				Line:   lineNo,
				Tag:    tag,
				Name:   s.Name,
				Detail: fmt.Sprintf("first defined on line %d", prev.Line),
			}
		}

	case "P":
		if len(fields) < pathFields {
			return truncated(tag, lineNo, len(fields), pathFields)
		}
		return addPath(g, tag, fields[1], fields[2], lineNo)

	case "W":
		if len(fields) < walkFields {
			return truncated(tag, lineNo, len(fields), walkFields)
		}
		name, err := WalkName(fields[1], fields[2], fields[3], fields[4], fields[5])
		if err != nil {
			return withLocation(err, tag, "", lineNo)
		}
		return addPath(g, tag, name, fields[6], lineNo)
	}
	return nil
}

func addPath(g *model.Graph, tag, name, descriptor string, lineNo int) error {
	enc, _ := parse.EncodingFor(tag)
	refs, err := enc.Parse(descriptor)
	if err != nil {
		return withLocation(err, tag, name, lineNo)
	}
	p := model.Path{Name: name, Kind: model.PathKind(tag), Refs: refs, Line: lineNo}
	if !g.AddPath(p) {
		prev, _ := g.Path(name)
		return &model.Error{
			Kind:   model.ErrDuplicatePathName,
			Line:   lineNo,
			Tag:    tag,
			Name:   name,
			Detail: fmt.Sprintf("first defined on line %d", prev.Line),
		}
	}
	return nil
}

// WalkName builds the path name of a W-line: sample#hap#seq, followed by
// ":<start+1>-<end>" when the walk does not start at the beginning of the
// sequence (start is neither "*" nor "0").
func WalkName(sample, hap, seqID, start, end string) (string, error) {
	name := sample + "#" + hap + "#" + seqID
	if start == "*" || start == "0" {
		return name, nil
	}
	from, err := strconv.Atoi(start)
	if err != nil || from < 0 {
		return "", &model.Error{Kind: model.ErrInvalidCoordinate, Detail: fmt.Sprintf("start %q", start)}
	}
	if _, err := strconv.Atoi(end); err != nil {
		return "", &model.Error{Kind: model.ErrInvalidCoordinate, Detail: fmt.Sprintf("end %q", end)}
	}
	return fmt.Sprintf("%s:%d-%s", name, from+1, end), nil
}

func truncated(tag string, lineNo, got, want int) error {
	return &model.Error{
		Kind:   model.ErrTruncatedLine,
		Line:   lineNo,
		Tag:    tag,
		Detail: fmt.Sprintf("%d fields, need %d", got, want),
	}
}

// withLocation stamps a parser error with the line it came from.
func withLocation(err error, tag, name string, lineNo int) error {
	var me *model.Error
	if errors.As(err, &me) {
		located := *me
		located.Line = lineNo
		located.Tag = tag
		if located.Name == "" {
			located.Name = name
		}
		return &located
	}
	return fmt.Errorf("line %d: %w", lineNo, err)
}
