package kbp

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"kbpkit/internal/logging"
)

// Divider separates the structural sections of a file.
const Divider = "-----------------------------"

const (
	markerHeader     = "HEADERV2"
	markerPage       = "PAGEV2"
	markerImage      = "IMAGE"
	markerLyrics     = "LYRICSV2"
	markerPalette    = "'Palette Colours"
	markerStyles     = "'Styles"
	markerStyleEnd   = "StyleEnd"
	markerMargins    = "'Margins"
	markerOther      = "'Other"
	markerTrackInfo  = "'--- Track Information ---"
	transitionPrefix = "FX/"

	// slashEscape stands in for "/" inside syllable text.
	slashEscape = "{~}"

	syllableFields = 4
)

var lineHeaderPattern = regexp.MustCompile(`^[LCR]/[A-Za-z](/-?\d+){5}$`)

type parseState int

const (
	stateTop parseState = iota
	stateHeader
	stateBody
)

type parser struct {
	lines  []string
	opts   Options
	doc    *Document
	logger *slog.Logger

	state        parseState
	afterDivider bool

	hasPalette, hasStyles, hasMargins, hasOther bool
	hasTrackInfo, hasPages, hasLyrics           bool
}

func isBlankOrComment(line string) bool {
	return line == "" || strings.HasPrefix(line, "'")
}

func (p *parser) run() error {
	for i := 0; i < len(p.lines); {
		n, err := p.step(i)
		if err != nil {
			var le *lineError
			if !errors.As(err, &le) {
				le = &lineError{offset: i, span: 1, err: err}
			}
			return newParseError(p.lines, le.offset, le.span, le.err)
		}
		n = max(n, 1)
		for _, line := range p.lines[i : i+n] {
			p.track(line)
		}
		i += n
	}
	return p.finish()
}

// track keeps the "previous significant line was a divider" flag. Blank and
// comment lines leave it untouched.
func (p *parser) track(line string) {
	if line == Divider {
		p.afterDivider = true
	} else if !isBlankOrComment(line) {
		p.afterDivider = false
	}
}

// step handles the construct starting at line i and reports how many lines it
// consumed. Returned errors carry absolute line offsets.
func (p *parser) step(i int) (int, error) {
	switch p.state {
	case stateTop:
		if p.afterDivider && p.lines[i] == markerHeader {
			p.state = stateHeader
		}
		return 1, nil
	case stateHeader:
		return p.stepHeader(i)
	default:
		return p.stepBody(i)
	}
}

func (p *parser) stepHeader(i int) (int, error) {
	line := p.lines[i]
	switch {
	case line == Divider:
		p.state = stateBody
		return 1, nil
	case strings.HasPrefix(line, markerPalette):
		data, err := p.dataLine(i, "palette")
		if err != nil {
			return 0, err
		}
		pal, err := ParsePalette(data)
		if err != nil {
			return 0, shift(i+1, err)
		}
		p.doc.Palette = pal
		p.hasPalette = true
		p.section("palette", i)
		return 2, nil
	case strings.HasPrefix(line, markerStyles):
		end := p.indexFrom(i+1, func(l string) bool { return strings.TrimSpace(l) == markerStyleEnd })
		if end < 0 {
			return 0, errAt(i, "style block is not terminated by %s", markerStyleEnd)
		}
		if err := p.parseStyles(p.lines[i+1 : end]); err != nil {
			return 0, shift(i+1, err)
		}
		p.hasStyles = true
		p.section("styles", i, logging.Int("count", p.doc.Styles.Len()))
		return end - i + 1, nil
	case strings.HasPrefix(line, markerMargins):
		data, err := p.dataLine(i, "margins")
		if err != nil {
			return 0, err
		}
		v, err := parseInts(data, 4)
		if err != nil {
			return 0, shift(i+1, fmt.Errorf("margins: %w", err))
		}
		p.doc.Margins = Margins{Left: v[0], Right: v[1], Top: v[2], Spacing: v[3]}
		p.hasMargins = true
		p.section("margins", i)
		return 2, nil
	case strings.HasPrefix(line, markerOther):
		data, err := p.dataLine(i, "other")
		if err != nil {
			return 0, err
		}
		v, err := parseInts(data, 2)
		if err != nil {
			return 0, shift(i+1, fmt.Errorf("other: %w", err))
		}
		p.doc.Other = Other{BorderColor: v[0], WipeDetail: v[1]}
		p.hasOther = true
		p.section("other", i)
		return 2, nil
	case line == markerTrackInfo:
		return p.trackInfoBlock(i)
	}
	return 1, nil
}

func (p *parser) stepBody(i int) (int, error) {
	line := p.lines[i]
	if p.afterDivider && line == markerTrackInfo {
		return p.trackInfoBlock(i)
	}
	if !p.afterDivider || isBlankOrComment(line) || line == Divider {
		return 1, nil
	}
	switch line {
	case markerPage:
		if !p.synced() {
			return 0, errAt(i, "page section in an unsynced (lyrics only) file")
		}
		end := p.indexFrom(i+1, func(l string) bool { return l == Divider })
		if end < 0 {
			if !p.opts.Tolerant {
				return 0, errAt(i, "page section is not terminated by a divider")
			}
			end = len(p.lines)
			p.modified("line %d: page section ran to end of file without a closing divider", i+1)
		}
		page, err := p.parsePage(i+1, p.lines[i+1:end])
		if err != nil {
			return 0, shift(i+1, err)
		}
		p.doc.Pages = append(p.doc.Pages, page)
		p.hasPages = true
		p.section("page", i, logging.Int("lines", len(page.Lines)))
		return end - i, nil
	case markerImage:
		if !p.synced() {
			return 0, errAt(i, "image section in an unsynced (lyrics only) file")
		}
		data, err := p.dataLine(i, "image")
		if err != nil {
			return 0, err
		}
		img, err := parseImage(data)
		if err != nil {
			return 0, shift(i+1, err)
		}
		p.doc.Images = append(p.doc.Images, img)
		p.section("image", i)
		return 2, nil
	case markerLyrics:
		if p.synced() {
			return 0, errAt(i, "lyrics section in a synced file")
		}
		p.doc.Lyrics = append([]string{}, p.lines[i+1:]...)
		p.hasLyrics = true
		p.section("lyrics", i, logging.Int("lines", len(p.doc.Lyrics)))
		return len(p.lines) - i, nil
	}
	if !p.opts.Tolerant {
		return 0, errAt(i, "unexpected section marker %q", line)
	}
	end := p.indexFrom(i+1, func(l string) bool { return l == Divider })
	if end < 0 {
		end = len(p.lines)
	}
	p.modified("lines %d-%d: skipped unknown section %q", i+1, end, line)
	return end - i, nil
}

func (p *parser) trackInfoBlock(i int) (int, error) {
	if p.hasTrackInfo {
		return 0, errAt(i, "duplicate track information block")
	}
	end := p.indexFrom(i+1, func(l string) bool { return l == Divider })
	if end < 0 {
		return 0, errAt(i, "track information block is not terminated by a divider")
	}
	info, err := parseTrackInfo(p.lines[i+1 : end])
	if err != nil {
		return 0, shift(i+1, err)
	}
	p.doc.TrackInfo = info
	p.hasTrackInfo = true
	p.section("track_info", i, logging.Int("entries", info.Len()), logging.Bool("synced", info.Synced()))
	// The closing divider is left for the next step.
	return end - i, nil
}

func (p *parser) finish() error {
	var missing []string
	for _, req := range []struct {
		name string
		ok   bool
	}{
		{"palette", p.hasPalette},
		{"styles", p.hasStyles},
		{"margins", p.hasMargins},
		{"other", p.hasOther},
	} {
		if !req.ok {
			missing = append(missing, req.name)
		}
	}
	if p.synced() && !p.hasPages {
		missing = append(missing, "pages")
	}
	if !p.synced() && !p.hasLyrics {
		missing = append(missing, "lyrics")
	}
	if len(missing) > 0 {
		return &ParseError{Err: fmt.Errorf("missing required sections: %s", strings.Join(missing, ", "))}
	}
	if !p.hasTrackInfo && !p.opts.Template {
		return &ParseError{Err: errors.New("no track information block (open as a template to allow this)")}
	}
	if p.opts.ResolveColors {
		if err := p.doc.Styles.resolveColors(p.doc.Palette); err != nil {
			return &ParseError{Err: err}
		}
	}
	return nil
}

// synced follows the recorded status; before any track information is seen
// the file is assumed to be synced.
func (p *parser) synced() bool { return p.doc.TrackInfo.Synced() }

func (p *parser) dataLine(i int, what string) (string, error) {
	if i+1 >= len(p.lines) {
		return "", errAt(i, "%s marker has no data line", what)
	}
	return p.lines[i+1], nil
}

func (p *parser) indexFrom(start int, match func(string) bool) int {
	for j := start; j < len(p.lines); j++ {
		if match(p.lines[j]) {
			return j
		}
	}
	return -1
}

func (p *parser) section(name string, i int, attrs ...logging.Attr) {
	attrs = append([]logging.Attr{logging.String("section", name), logging.Int("line", i+1)}, attrs...)
	p.logger.Debug("parsed section", logging.Args(attrs...)...)
}

func (p *parser) modified(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	p.doc.modifications = append(p.doc.modifications, msg)
	logging.WarnWithContext(p.logger, "repaired malformed input", "tolerant_recovery",
		logging.String("detail", msg),
		logging.String(logging.FieldImpact, "document differs from the file on disk"),
		logging.String(logging.FieldErrorHint, "rewrite the file to persist the repair"),
	)
}

// parseStyles reads the lines between the styles marker and StyleEnd.
func (p *parser) parseStyles(block []string) error {
	var data []int
	for n, line := range block {
		if !strings.HasPrefix(line, "'") {
			data = append(data, n)
		}
	}
	for k := 0; k < len(data); k++ {
		n := data[k]
		line := strings.TrimSpace(block[n])
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "Style") {
			return errAt(n, "unexpected line in style block")
		}
		if k+2 >= len(data) {
			return errSpan(n, len(block)-n, errors.New("style definition is truncated"))
		}
		record := [3]string{block[n], block[data[k+1]], block[data[k+2]]}
		span := data[k+2] - n + 1
		s, err := parseStyleRecord(record)
		if err != nil {
			var le *lineError
			if errors.As(err, &le) {
				return errAt(data[k+le.offset], "%v", le.err)
			}
			return errSpan(n, span, err)
		}
		if _, dup := p.doc.Styles.Get(s.Number); dup {
			return errSpan(n, span, fmt.Errorf("duplicate style %02d", s.Number-1))
		}
		if err := p.doc.Styles.Set(s.Number, s); err != nil {
			return errSpan(n, span, err)
		}
		k += 2
	}
	return nil
}

// parsePage reads the lines between PAGEV2 and the closing divider. base is
// the absolute index of the first region line, used in repair messages.
func (p *parser) parsePage(base int, region []string) (Page, error) {
	var page Page
	var header *TimingHeader
	var syllables []Syllable
	pending, pendingAt := "", -1

	addSyllable := func(record string, at int) error {
		s, err := parseSyllable(record)
		if err != nil {
			return errAt(at, "%v", err)
		}
		if s.Wipe == 0 && p.opts.ResolveDefaultWipe && p.hasOther {
			s.Wipe = p.doc.Other.WipeDetail
		}
		syllables = append(syllables, s)
		return nil
	}
	flush := func() {
		page.Lines = append(page.Lines, Line{Header: *header, Syllables: syllables})
		header, syllables = nil, nil
	}

	for idx, x := range region {
		if pending != "" {
			if x == "" {
				return page, errSpan(pendingAt, idx-pendingAt, fmt.Errorf("syllable record %q is incomplete", pending))
			}
			pending += x
			switch n := fieldCount(pending); {
			case n < syllableFields:
				continue
			case n > syllableFields:
				return page, errSpan(pendingAt, idx-pendingAt+1, fmt.Errorf("rejoined syllable record %q has %d fields, expected %d", pending, n, syllableFields))
			}
			if err := addSyllable(pending, pendingAt); err != nil {
				return page, err
			}
			p.modified("lines %d-%d: rejoined syllable record split across lines", base+pendingAt+1, base+idx+1)
			pending, pendingAt = "", -1
			continue
		}
		switch {
		case header == nil && lineHeaderPattern.MatchString(x):
			h, err := parseTimingHeader(x)
			if err != nil {
				return page, errAt(idx, "%v", err)
			}
			header = &h
		case x == "":
			if header != nil {
				flush()
			}
		case header == nil && strings.HasPrefix(x, transitionPrefix):
			fx := strings.Split(x, "/")
			if len(fx) != 3 {
				return page, errAt(idx, "transition line needs remove and display names")
			}
			page.Remove, page.Display = fx[1], fx[2]
		case header == nil:
			return page, errAt(idx, "syllable data before a line header")
		default:
			n := fieldCount(x)
			if n < syllableFields && p.opts.Tolerant {
				pending, pendingAt = x, idx
				continue
			}
			if n != syllableFields {
				return page, errAt(idx, "syllable record has %d fields, expected %d", n, syllableFields)
			}
			if err := addSyllable(x, idx); err != nil {
				return page, err
			}
		}
	}
	if pending != "" {
		return page, errSpan(pendingAt, len(region)-pendingAt, fmt.Errorf("syllable record %q is incomplete", pending))
	}
	if header != nil {
		flush()
	}
	return page, nil
}

func fieldCount(record string) int { return strings.Count(record, "/") + 1 }

func parseTimingHeader(line string) (TimingHeader, error) {
	f := strings.Split(line, "/")
	key, err := KeyForLetter(f[1][0])
	if err != nil {
		return TimingHeader{}, err
	}
	v, err := atois(f[2:])
	if err != nil {
		return TimingHeader{}, err
	}
	return TimingHeader{
		Align: Alignment(f[0][0]), Style: key,
		Start: v[0], End: v[1], Right: v[2], Down: v[3], Rotation: v[4],
	}, nil
}

func parseSyllable(record string) (Syllable, error) {
	f := strings.Split(record, "/")
	if len(f) != syllableFields {
		return Syllable{}, fmt.Errorf("syllable record has %d fields, expected %d", len(f), syllableFields)
	}
	startField := strings.TrimLeft(f[1], " ")
	v, err := atois([]string{startField, f[2], f[3]})
	if err != nil {
		return Syllable{}, err
	}
	return Syllable{
		Text:     strings.ReplaceAll(f[0], slashEscape, "/"),
		Start:    v[0],
		End:      v[1],
		Wipe:     v[2],
		startPad: f[1][:len(f[1])-len(startField)],
	}, nil
}

func parseImage(line string) (ImageCue, error) {
	f := strings.Split(line, "/")
	if len(f) < 4 {
		return ImageCue{}, errAt(0, "image record needs start, end, filename and leave-on-screen flag")
	}
	last := len(f) - 1
	v, err := atois([]string{f[0], f[1]})
	if err != nil {
		return ImageCue{}, errAt(0, "image: %v", err)
	}
	var leave bool
	switch f[last] {
	case "0":
	case "1":
		leave = true
	default:
		return ImageCue{}, errAt(0, "image leave-on-screen flag %q must be 0 or 1", f[last])
	}
	return ImageCue{Start: v[0], End: v[1], Filename: strings.Join(f[2:last], "/"), LeaveOnScreen: leave}, nil
}

func parseInts(line string, want int) ([]int, error) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) != want {
		return nil, fmt.Errorf("expected %d comma separated values, found %d", want, len(fields))
	}
	return atois(fields)
}

func atois(fields []string) ([]int, error) {
	out := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", f)
		}
		out[i] = n
	}
	return out, nil
}
