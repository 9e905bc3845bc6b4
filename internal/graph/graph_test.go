package graph

import (
	"errors"
	"strings"
	"testing"

	"github.com/phobologic/gfapath2fa/internal/model"
)

func gfa(lines ...string) *strings.Reader {
	return strings.NewReader(strings.Join(lines, "\n") + "\n")
}

func recordMap(records []model.Record) map[string]string {
	m := make(map[string]string, len(records))
	for _, r := range records {
		m[r.Name] = r.Sequence
	}
	return m
}

func TestLoadForwardConcatenation(t *testing.T) {
	t.Parallel()

	_, records, err := Load(gfa(
		"S\tS1\tACGT",
		"S\tS2\tGGCC",
		"P\tp1\tS1+,S2+\t*",
	), Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Name != "p1" || records[0].Sequence != "ACGTGGCC" {
		t.Errorf("record = %+v", records[0])
	}
}

func TestLoadReverseComplement(t *testing.T) {
	t.Parallel()

	_, records, err := Load(gfa(
		"S\tS\tAACCGG",
		"P\tp\tS-\t*",
	), Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := records[0].Sequence; got != "CCGGTT" {
		t.Errorf("sequence = %q, want CCGGTT", got)
	}
}

func TestLoadFullExample(t *testing.T) {
	t.Parallel()

	g, records, err := Load(gfa(
		"H\tVN:Z:1.2",
		"S\ts1\tATCGATCG",
		"S\ts2\tTTTTTCCCCC",
		"L\ts1\t+\ts2\t-\t0M",
		"P\tp1\ts1+,s2-\t*",
		"W\ta\t1\tchr1\t0\t10\t>s1>s2<s1",
	), Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if g.NumSegments() != 2 || g.NumPaths() != 2 {
		t.Errorf("tables: %d segments, %d paths", g.NumSegments(), g.NumPaths())
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Name != "p1" || records[1].Name != "a#1#chr1" {
		t.Errorf("record order: %q, %q", records[0].Name, records[1].Name)
	}
	if records[0].Sequence != "ATCGATCG"+"GGGGGAAAAA" {
		t.Errorf("p1 = %q", records[0].Sequence)
	}
	if records[1].Sequence != "ATCGATCG"+"TTTTTCCCCC"+"CGATCGAT" {
		t.Errorf("walk = %q", records[1].Sequence)
	}
}

func TestLoadSegmentsAfterPaths(t *testing.T) {
	t.Parallel()

	_, records, err := Load(gfa(
		"P\tp1\tb+,a+\t*",
		"S\ta\tAAA",
		"S\tb\tCCC",
	), Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if records[0].Sequence != "CCCAAA" {
		t.Errorf("sequence = %q", records[0].Sequence)
	}
}

func TestLoadPreservesFileOrder(t *testing.T) {
	t.Parallel()

	_, records, err := Load(gfa(
		"S\ta\tA",
		"P\tzeta\ta+\t*",
		"P\talpha\ta+\t*",
		"W\tsmp\t0\tc\t*\t*\t>a",
		"P\tmid\ta-\t*",
	), Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"zeta", "alpha", "smp#0#c", "mid"}
	if len(records) != len(want) {
		t.Fatalf("got %d records", len(records))
	}
	for i, name := range want {
		if records[i].Name != name {
			t.Errorf("records[%d] = %q, want %q", i, records[i].Name, name)
		}
	}
}

func TestLoadWalkName(t *testing.T) {
	t.Parallel()

	g, err := Scan(gfa(
		"S\tx\tACGT",
		"W\th1\t0\tchr1\t0\t4\t>x",
	), Options{})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	p, ok := g.Path("h1#0#chr1")
	if !ok {
		t.Fatalf("missing h1#0#chr1, paths = %v", g.Paths())
	}
	if p.Kind != model.WalkLine || p.Line != 2 {
		t.Errorf("path = %+v", p)
	}
}

func TestWalkName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		start, end string
		want       string
	}{
		{"zero start", "0", "100", "h1#0#chr1"},
		{"star start", "*", "*", "h1#0#chr1"},
		{"offset", "9", "20", "h1#0#chr1:10-20"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := WalkName("h1", "0", "chr1", tt.start, tt.end)
			if err != nil {
				t.Fatalf("WalkName: %v", err)
			}
			if got != tt.want {
				t.Errorf("WalkName = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := WalkName("h1", "0", "chr1", "x", "10"); !errors.Is(err, model.ErrInvalidCoordinate) {
		t.Errorf("bad start: %v", err)
	}
	if _, err := WalkName("h1", "0", "chr1", "5", "*"); !errors.Is(err, model.ErrInvalidCoordinate) {
		t.Errorf("bad end: %v", err)
	}
}

func TestLoadSkipsOtherLines(t *testing.T) {
	t.Parallel()

	_, records, err := Load(gfa(
		"H\tVN:Z:1.0",
		"# comment",
		"",
		"L\ta\t+\ta\t+\t5M",
		"C\ta\t+\ta\t+\t0\t*",
		"S\ta\tAC",
		"P\tp\ta+,a+\t*",
	), Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 1 || records[0].Sequence != "ACAC" {
		t.Errorf("records = %+v", records)
	}
}

func TestLoadCRLF(t *testing.T) {
	t.Parallel()

	_, records, err := Load(strings.NewReader("S\ta\tAC\r\nP\tp\ta+\r\n"), Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if records[0].Sequence != "AC" {
		t.Errorf("sequence = %q", records[0].Sequence)
	}
}

func TestLoadNoTrailingNewline(t *testing.T) {
	t.Parallel()

	_, records, err := Load(strings.NewReader("S\ta\tGG\nP\tp\ta-"), Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if records[0].Sequence != "CC" {
		t.Errorf("sequence = %q", records[0].Sequence)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []string
		kind  error
		line  int
	}{
		{
			name:  "duplicate segment",
			input: []string{"S\ta\tAC", "S\ta\tGT"},
			kind:  model.ErrDuplicateSegmentName,
			line:  2,
		},
		{
			name:  "duplicate segment same sequence",
			input: []string{"S\ta\tAC", "S\tb\tAC", "S\ta\tAC"},
			kind:  model.ErrDuplicateSegmentName,
			line:  3,
		},
		{
			name:  "duplicate path",
			input: []string{"S\ta\tAC", "P\tp\ta+", "P\tp\ta-"},
			kind:  model.ErrDuplicatePathName,
			line:  3,
		},
		{
			name:  "walk collides with path",
			input: []string{"S\ta\tAC", "P\th1#0#chr1\ta+", "W\th1\t0\tchr1\t0\t2\t>a"},
			kind:  model.ErrDuplicatePathName,
			line:  3,
		},
		{
			name:  "truncated segment",
			input: []string{"S\ta"},
			kind:  model.ErrTruncatedLine,
			line:  1,
		},
		{
			name:  "truncated path",
			input: []string{"S\ta\tAC", "P\tp"},
			kind:  model.ErrTruncatedLine,
			line:  2,
		},
		{
			name:  "truncated walk",
			input: []string{"W\th1\t0\tchr1\t0\t2"},
			kind:  model.ErrTruncatedLine,
			line:  1,
		},
		{
			name:  "empty descriptor",
			input: []string{"P\tp\t\t*"},
			kind:  model.ErrMalformedPathDescriptor,
			line:  1,
		},
		{
			name:  "bad orientation",
			input: []string{"S\ta\tAC", "P\tp\ta"},
			kind:  model.ErrInvalidOrientationMarker,
			line:  2,
		},
		{
			name:  "bad walk",
			input: []string{"W\th1\t0\tchr1\t0\t2\ta>b"},
			kind:  model.ErrInvalidOrientationMarker,
			line:  1,
		},
		{
			name:  "bad walk start",
			input: []string{"W\th1\t0\tchr1\tx\t2\t>a"},
			kind:  model.ErrInvalidCoordinate,
			line:  1,
		},
		{
			name:  "missing segment",
			input: []string{"S\ta\tAC", "P\tok\ta+", "P\tbad\ta+,zz-"},
			kind:  model.ErrReferencedSegmentNotFound,
			line:  3,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g, records, err := Load(gfa(tt.input...), Options{})
			if !errors.Is(err, tt.kind) {
				t.Fatalf("error = %v, want %v", err, tt.kind)
			}
			if g != nil || records != nil {
				t.Error("partial results returned with error")
			}
			var me *model.Error
			if !errors.As(err, &me) {
				t.Fatalf("expected *model.Error, got %T", err)
			}
			if me.Line != tt.line {
				t.Errorf("line = %d, want %d (%v)", me.Line, tt.line, err)
			}
		})
	}
}

func TestLoadErrorNames(t *testing.T) {
	t.Parallel()

	_, _, err := Load(gfa("P\tmy-path\ts1+,s2-"), Options{})
	var me *model.Error
	if !errors.As(err, &me) {
		t.Fatalf("expected *model.Error, got %v", err)
	}
	if me.Name != "my-path" || me.Tag != "P" {
		t.Errorf("error = %+v", me)
	}
	if !strings.Contains(err.Error(), `"s1"`) {
		t.Errorf("message should name the first missing segment: %v", err)
	}

	_, err = Scan(gfa("P\tp2\tx"), Options{})
	if !errors.As(err, &me) || me.Name != "p2" || me.Line != 1 {
		t.Errorf("parser error not located: %v", err)
	}
}

func TestStrictMode(t *testing.T) {
	t.Parallel()

	input := []string{
		"S\ta\tACRT",
		"P\tfwd\ta+",
		"P\trev\ta-",
	}

	_, records, err := Load(gfa(input...), Options{})
	if err != nil {
		t.Fatalf("lenient Load: %v", err)
	}
	got := recordMap(records)
	if got["fwd"] != "ACRT" || got["rev"] != "ARGT" {
		t.Errorf("records = %v", got)
	}

	_, _, err = Load(gfa(input...), Options{Strict: true})
	if !errors.Is(err, model.ErrInvalidSequenceSymbol) {
		t.Fatalf("strict Load error = %v", err)
	}
	var me *model.Error
	if errors.As(err, &me) && (me.Line != 1 || me.Name != "a") {
		t.Errorf("strict error = %+v", me)
	}
}

func TestResolveStrictReverseOnly(t *testing.T) {
	t.Parallel()

	g := model.NewGraph()
	g.AddSegment(model.Segment{Name: "a", Sequence: "AC*"})
	g.AddPath(model.Path{Name: "fwd", Kind: model.PathLine, Refs: []model.SegmentRef{{Name: "a"}}, Line: 2})
	if _, err := Resolve(g, Options{Strict: true}); err != nil {
		t.Fatalf("forward path should not be checked: %v", err)
	}

	g.AddPath(model.Path{
		Name: "rev",
		Kind: model.PathLine,
		Refs: []model.SegmentRef{{Name: "a", Orientation: model.Reverse}},
		Line: 3,
	})
	_, err := Resolve(g, Options{Strict: true})
	if !errors.Is(err, model.ErrInvalidSequenceSymbol) {
		t.Fatalf("error = %v", err)
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("error should carry the path line: %v", err)
	}
}

func TestResolveConcurrentMatchesSequential(t *testing.T) {
	t.Parallel()

	var lines []string
	lines = append(lines, "S\ta\tAACC", "S\tb\tGGTT", "S\tc\tNNAC")
	descriptors := []string{"a+,b+", "a-,c+", "c-,b-,a+", "b+", "a+,a-,a+"}
	for i := 0; i < 40; i++ {
		lines = append(lines, "P\tp"+string(rune('A'+i%26))+string(rune('a'+i/26))+"\t"+descriptors[i%len(descriptors)])
	}

	_, want, err := Load(gfa(lines...), Options{Workers: 1})
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}
	_, got, err := Load(gfa(lines...), Options{Workers: 8})
	if err != nil {
		t.Fatalf("concurrent: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("records[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestResolveConcurrentFirstError(t *testing.T) {
	t.Parallel()

	lines := []string{"S\ta\tA"}
	for i := 0; i < 20; i++ {
		lines = append(lines, "P\tok"+string(rune('a'+i))+"\ta+")
	}
	lines = append(lines, "P\tbad1\tx+", "P\tbad2\ty+")

	for i := 0; i < 5; i++ {
		_, _, err := Load(gfa(lines...), Options{Workers: 4})
		var me *model.Error
		if !errors.As(err, &me) {
			t.Fatalf("expected *model.Error, got %v", err)
		}
		if me.Name != "bad1" {
			t.Fatalf("error path = %q, want bad1", me.Name)
		}
	}
}
