// Package mapfile parses the line-oriented street-map text format of
// spec §6: unitsToMetres/defaultWidth directives, street/onto chains,
// and ignored view hints, producing the mapmodel.StreetInput slice a
// mapmodel.Map is built from.
package mapfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vogtryan/dbs3/geom"
	"github.com/vogtryan/dbs3/mapmodel"
)

// ParseError reports a line-oriented map file defect, carrying the
// filename and (where applicable) the 1-based line number, per spec §6.
type ParseError struct {
	File string
	Line int // 0 when the error is not tied to a single line
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("mapfile: %s:%d: %s", e.File, e.Line, e.Msg)
	}

	return fmt.Sprintf("mapfile: %s: %s", e.File, e.Msg)
}

// chain tracks an in-progress street/onto sequence: the running list of
// sections and the base name/width shared by every section.
type chain struct {
	sections []mapmodel.StreetInput
	baseName string
	width    float64
	lastTo   geom.Point
}

// Parse reads the map-file grammar from r and returns the flattened
// street list in declaration order. filename is used only for error
// messages.
func Parse(r io.Reader, filename string) ([]mapmodel.StreetInput, error) {
	p := &parser{
		file:          filename,
		unitsToMetres: 1,
		defaultWidth:  1,
		scanner:       bufio.NewScanner(r),
	}

	return p.run()
}

type parser struct {
	file          string
	unitsToMetres float64
	defaultWidth  float64
	scanner       *bufio.Scanner
	lineNo        int
	cur           *chain
	streets       []mapmodel.StreetInput
}

func (p *parser) errf(format string, args ...interface{}) error {
	return &ParseError{File: p.file, Line: p.lineNo, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) run() ([]mapmodel.StreetInput, error) {
	for p.scanner.Scan() {
		p.lineNo++
		line := p.scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		directive := fields[0]
		args := fields[1:]
		if directive != "onto" {
			p.flushChain()
		}

		var err error
		switch directive {
		case "unitsToMetres":
			err = p.handleUnitsToMetres(args)
		case "defaultWidth":
			err = p.handleDefaultWidth(args)
		case "street":
			err = p.handleStreet(args)
		case "onto":
			err = p.handleOnto(args)
		case "view":
			// Visualisation hint; ignored by the core.
		default:
			err = p.errf("unrecognised directive %q", directive)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := p.scanner.Err(); err != nil {
		return nil, &ParseError{File: p.file, Msg: err.Error()}
	}
	p.flushChain()

	if len(p.streets) == 0 {
		return nil, &ParseError{File: p.file, Msg: "at least one street is required"}
	}

	return p.streets, nil
}

// flushChain finalises the in-progress chain (if any), post-fixing
// " Part i/N" to every section's name when the chain has more than one
// section, and appends the result to p.streets.
func (p *parser) flushChain() {
	if p.cur == nil {
		return
	}
	c := p.cur
	p.cur = nil

	n := len(c.sections)
	if n == 1 {
		p.streets = append(p.streets, c.sections[0])

		return
	}
	for i, s := range c.sections {
		s.Name = fmt.Sprintf("%s Part %d/%d", c.baseName, i+1, n)
		p.streets = append(p.streets, s)
	}
}

func (p *parser) handleUnitsToMetres(args []string) error {
	if len(args) != 1 {
		return p.errf("unitsToMetres requires exactly one argument")
	}
	v, err := p.nonNegative(args[0])
	if err != nil {
		return err
	}
	p.unitsToMetres = v

	return nil
}

func (p *parser) handleDefaultWidth(args []string) error {
	if len(args) != 1 {
		return p.errf("defaultWidth requires exactly one argument")
	}
	v, err := p.nonNegative(args[0])
	if err != nil {
		return err
	}
	p.defaultWidth = v

	return nil
}

// handleStreet parses "street from X Y to X Y [width W] name ...".
func (p *parser) handleStreet(args []string) error {
	if len(args) < 6 || args[0] != "from" || args[3] != "to" {
		return p.errf("malformed street directive")
	}
	ax, err := p.nonNegative(args[1])
	if err != nil {
		return err
	}
	ay, err := p.nonNegative(args[2])
	if err != nil {
		return err
	}
	bx, err := p.nonNegative(args[4])
	if err != nil {
		return err
	}
	by, err := p.nonNegative(args[5])
	if err != nil {
		return err
	}

	rest := args[6:]
	width := p.defaultWidth
	if len(rest) >= 2 && rest[0] == "width" {
		w, err := p.nonNegative(rest[1])
		if err != nil {
			return err
		}
		width = w
		rest = rest[2:]
	}
	if len(rest) == 0 || rest[0] != "name" {
		return p.errf("street directive missing name")
	}
	name := strings.Join(rest[1:], " ")

	a := geom.Point{X: ax * p.unitsToMetres, Y: ay * p.unitsToMetres}
	b := geom.Point{X: bx * p.unitsToMetres, Y: by * p.unitsToMetres}

	p.cur = &chain{
		sections: []mapmodel.StreetInput{{
			Name:    name,
			Midline: geom.LineSegment{A: a, B: b},
			Width:   width * p.unitsToMetres,
		}},
		baseName: name,
		width:    width * p.unitsToMetres,
		lastTo:   b,
	}

	return nil
}

// handleOnto parses "onto X Y", continuing the current chain.
func (p *parser) handleOnto(args []string) error {
	if p.cur == nil {
		return p.errf("onto must follow a street or another onto")
	}
	if len(args) != 2 {
		return p.errf("onto requires exactly two arguments")
	}
	x, err := p.nonNegative(args[0])
	if err != nil {
		return err
	}
	y, err := p.nonNegative(args[1])
	if err != nil {
		return err
	}

	to := geom.Point{X: x * p.unitsToMetres, Y: y * p.unitsToMetres}
	p.cur.sections = append(p.cur.sections, mapmodel.StreetInput{
		Name:    p.cur.baseName,
		Midline: geom.LineSegment{A: p.cur.lastTo, B: to},
		Width:   p.cur.width,
	})
	p.cur.lastTo = to

	return nil
}

func (p *parser) nonNegative(tok string) (float64, error) {
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, p.errf("%q is not a valid number", tok)
	}
	if v < 0 {
		return 0, p.errf("%q must not be negative", tok)
	}

	return v, nil
}
