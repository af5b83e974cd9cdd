package ioannot

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/remnrem/luna-core/annot"
	"github.com/remnrem/luna-core/internal/errs"
	"github.com/remnrem/luna-core/tick"
)

// classDecl is a parsed "# class | description | var1[type1] ..." header
// line.
type classDecl struct {
	name        string
	description string
	vars        []string
	types       []annot.ValueType
}

// maybeGunzip transparently wraps r in a gzip reader if it begins with the
// gzip magic header, matching interval.NewBEDOpts's use of
// klauspost/compress/gzip for BED files (SPEC_FULL.md "DOMAIN STACK").
func maybeGunzip(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil {
		if err == io.EOF {
			return br, nil
		}
		return nil, err
	}
	if magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		return gz, nil
	}
	return br, nil
}

// ReadTabular parses Luna's line-oriented tabular annotation format
// (SPEC_FULL.md §4.2) into s. Returns the number of instances added.
func ReadTabular(r io.Reader, s *annot.Store, opts ReadOptions) (int, error) {
	src, err := maybeGunzip(r)
	if err != nil {
		return 0, err
	}
	tp := newTimeParser(opts)

	decls := map[string]*classDecl{}
	var headerCols []string // optional header row naming columns 7+

	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	type pending struct {
		class, inst, channel string
		startTok             string
		lineNo               int
	}
	var waitingEllipsis *pending
	var lastRowStart tick.Tick

	added := 0
	lineNo := 0

	finalizeEllipsis := func(stopTok string) error {
		if waitingEllipsis == nil {
			return nil
		}
		var stop tick.Tick
		if stopTok == "" {
			if opts.RecordingEnd.IsZero() {
				stop = lastRowStart
			} else {
				stop = tick.Tick(opts.RecordingEnd.Sub(opts.RecordingStart))
			}
		} else {
			v, err := tp.ParseStart(stopTok)
			if err != nil {
				return err
			}
			stop = v
		}
		start, err := tp.ParseStart(waitingEllipsis.startTok)
		if err != nil {
			return err
		}
		class := resolveClass(waitingEllipsis.class, opts.Aliases)
		if _, err := s.Add(class, waitingEllipsis.inst, tick.NewInterval(start, stop), waitingEllipsis.channel); err != nil {
			return err
		}
		added++
		waitingEllipsis = nil
		return nil
	}

	for sc.Scan() {
		lineNo++
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue // blank lines separate records
		}
		if strings.HasPrefix(trimmed, "#") {
			d, err := parseClassDecl(trimmed)
			if err != nil {
				return added, wrapMalformed(opts, lineNo, err)
			}
			decls[d.name] = d
			continue
		}

		cols := splitColumns(line, opts.TabOnly)

		class, instID, channel, startTok, stopTok, metaTok, extra, err := parseDataRow(cols)
		if err != nil {
			return added, wrapMalformed(opts, lineNo, err)
		}

		// handle a previous row's trailing "..."
		if waitingEllipsis != nil {
			if err := finalizeEllipsis(startTok); err != nil {
				return added, wrapMalformed(opts, lineNo, err)
			}
		}

		if strings.Contains(class, ":") && class != ":" {
			parts := strings.SplitN(class, ":", 2)
			class = parts[0]
			if instID == "" || instID == "." {
				instID = parts[1]
			} else {
				// preserve the original instance id as meta field _inst
				if metaTok == "" {
					metaTok = "_inst=" + instID
				} else {
					metaTok = metaTok + "|_inst=" + instID
				}
				instID = parts[1]
			}
		}

		start, err := tp.ParseStart(startTok)
		if err != nil {
			return added, wrapMalformed(opts, lineNo, err)
		}
		stop, ok, err := tp.ParseStop(stopTok, start)
		if err != nil {
			return added, wrapMalformed(opts, lineNo, err)
		}
		if !ok {
			// "..." deferred until we see the next row (or EOF)
			waitingEllipsis = &pending{class: class, inst: instID, channel: channel, startTok: startTok, lineNo: lineNo}
			lastRowStart = start
			continue
		}

		canonClass := resolveClass(class, opts.Aliases)
		inst, err := s.Add(canonClass, instID, tick.NewInterval(start, stop), channel)
		if err != nil {
			return added, wrapMalformed(opts, lineNo, err)
		}
		added++

		if err := attachMeta(inst, decls[class], metaTok, extra, headerCols); err != nil {
			return added, wrapMalformed(opts, lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return added, err
	}
	if waitingEllipsis != nil {
		if err := finalizeEllipsis(""); err != nil {
			return added, wrapMalformed(opts, waitingEllipsis.lineNo, err)
		}
	}
	return added, nil
}

func wrapMalformed(opts ReadOptions, lineNo int, err error) error {
	if opts.Validation {
		return nil // validation mode: the read stops here and the caller only sees the added count
	}
	return errs.New(errs.MalformedInput, fmt.Sprintf("line %d", lineNo), err)
}

func resolveClass(name string, aliases *AliasTable) string {
	if aliases == nil {
		return name
	}
	return aliases.Resolve(name)
}

// splitColumns splits a data line on tabs; if TabOnly is unset and the line
// contains no tabs, it falls back to splitting on runs of whitespace.
func splitColumns(line string, tabOnly bool) []string {
	if tabOnly || strings.Contains(line, "\t") {
		return strings.Split(line, "\t")
	}
	return strings.Fields(line)
}

// parseDataRow interprets the 3/4/6+-column forms of SPEC_FULL.md §4.2.
func parseDataRow(cols []string) (class, inst, channel, start, stop, meta string, extra []string, err error) {
	switch {
	case len(cols) == 3:
		return cols[0], ".", ".", cols[1], cols[2], "", nil, nil
	case len(cols) == 4:
		return cols[0], cols[1], ".", cols[2], cols[3], "", nil, nil
	case len(cols) >= 6:
		meta = ""
		if len(cols) >= 6 {
			meta = cols[5]
		}
		var ex []string
		if len(cols) > 6 {
			ex = cols[6:]
		}
		return cols[0], cols[1], cols[2], cols[3], cols[4], meta, ex, nil
	default:
		return "", "", "", "", "", "", nil, fmt.Errorf("invalid data line: wrong column count (%d)", len(cols))
	}
}

// parseClassDecl parses "# class [| description] [| var1[type1] var2[type2] ...]".
func parseClassDecl(line string) (*classDecl, error) {
	body := strings.TrimSpace(strings.TrimPrefix(line, "#"))
	parts := strings.Split(body, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) == 0 || parts[0] == "" {
		return nil, fmt.Errorf("invalid header line: %q", line)
	}
	d := &classDecl{name: parts[0]}
	if len(parts) >= 2 {
		d.description = parts[1]
	}
	if len(parts) >= 3 {
		fields := strings.Fields(parts[2])
		for _, f := range fields {
			name, typ := splitVarType(f)
			d.vars = append(d.vars, name)
			d.types = append(d.types, typ)
		}
	}
	return d, nil
}

func splitVarType(tok string) (string, annot.ValueType) {
	open := strings.IndexByte(tok, '[')
	if open < 0 || !strings.HasSuffix(tok, "]") {
		return tok, annot.Text
	}
	name := tok[:open]
	typ := tok[open+1 : len(tok)-1]
	return name, annot.ParseValueType(typ)
}

// attachMeta parses the 6th-column (or 7+-column) meta representation and
// attaches it to inst.
func attachMeta(inst *annot.Instance, decl *classDecl, metaTok string, extra []string, headerCols []string) error {
	if decl != nil {
		for i, name := range decl.vars {
			if i >= len(extra) {
				break
			}
			v, err := annot.ParseValue(decl.types[i], extra[i])
			if err != nil {
				return err
			}
			inst.Meta[name] = v
		}
	} else if headerCols != nil {
		for i, name := range headerCols {
			if i >= len(extra) {
				break
			}
			inst.Meta[name] = annot.NewText(extra[i])
		}
	}

	if metaTok == "" || metaTok == "." {
		return nil
	}
	var sep byte = '|'
	if strings.Contains(metaTok, ";") && !strings.Contains(metaTok, "|") {
		sep = ';'
	}
	elems := strings.Split(metaTok, string(sep))
	allPositional := true
	for _, e := range elems {
		if strings.Contains(e, "=") {
			allPositional = false
			break
		}
	}
	if allPositional && decl != nil {
		for i, e := range elems {
			if i >= len(decl.vars) {
				break
			}
			v, err := annot.ParseValue(decl.types[i], e)
			if err != nil {
				return err
			}
			inst.Meta[decl.vars[i]] = v
		}
		return nil
	}
	for _, e := range elems {
		kv := strings.SplitN(e, "=", 2)
		if len(kv) != 2 {
			continue
		}
		key, val := strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1])
		vt := annot.Text
		if decl != nil {
			for i, v := range decl.vars {
				if v == key {
					vt = decl.types[i]
					break
				}
			}
		}
		pv, err := annot.ParseValue(vt, val)
		if err != nil {
			return err
		}
		inst.Meta[key] = pv
	}
	return nil
}

// WriteTabular writes s in Luna's canonical 6-column tabular form.
func WriteTabular(w io.Writer, s *annot.Store, opts WriteOptions) error {
	bw := bufio.NewWriter(w)
	names := s.Names()
	if len(opts.Annot) > 0 {
		allow := map[string]bool{}
		for _, n := range opts.Annot {
			allow[n] = true
		}
		filtered := names[:0]
		for _, n := range names {
			if allow[n] {
				filtered = append(filtered, n)
			}
		}
		names = filtered
	}
	if opts.Prefix != "" {
		filtered := names[:0]
		for _, n := range names {
			if strings.HasPrefix(n, opts.Prefix) {
				filtered = append(filtered, n)
			}
		}
		names = filtered
	}

	for _, name := range names {
		c := s.Class(name)
		allVars := collectVars(c)
		header := "# " + remapName(name, opts.Remap)
		if c.Description != "" {
			header += " | " + c.Description
		}
		if len(allVars) > 0 {
			var parts []string
			for _, v := range allVars {
				parts = append(parts, fmt.Sprintf("%s[%s]", v, c.Types[v].String()))
			}
			if c.Description == "" {
				header += " |"
			}
			header += " | " + strings.Join(parts, " ")
		}
		if _, err := fmt.Fprintln(bw, header); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(bw); err != nil {
		return err
	}

	for _, name := range names {
		c := s.Class(name)
		insts := c.Instances()
		for _, inst := range insts {
			if opts.MinDurSeconds > 0 && inst.Interval.Duration().ToSeconds() < opts.MinDurSeconds {
				continue
			}
			if err := writeRow(bw, remapName(name, opts.Remap), inst, opts); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

func remapName(name string, remap map[string]string) string {
	if r, ok := remap[name]; ok {
		return r
	}
	return name
}

func collectVars(c *annot.Class) []string {
	seen := map[string]bool{}
	for _, inst := range c.Instances() {
		for k := range inst.Meta {
			seen[k] = true
		}
	}
	for k := range c.Types {
		seen[k] = true
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func writeRow(bw *bufio.Writer, className string, inst *annot.Instance, opts WriteOptions) error {
	start := formatTime(inst.Interval.Start, opts)
	var stop string
	if opts.Set0DurAsEllipsis && inst.Interval.Empty() {
		stop = "..."
	} else {
		stop = formatTime(inst.Interval.Stop, opts)
	}
	meta := formatMeta(inst)
	channel := inst.Channel
	if channel == "" {
		channel = "."
	}
	id := inst.ID
	if id == "" {
		id = "."
	}
	if !opts.Meta {
		meta = "."
	}
	_, err := fmt.Fprintf(bw, "%s\t%s\t%s\t%s\t%s\t%s\n", className, id, channel, start, stop, meta)
	return err
}

func formatMeta(inst *annot.Instance) string {
	if len(inst.Meta) == 0 {
		return "."
	}
	keys := make([]string, 0, len(inst.Meta))
	for k := range inst.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var parts []string
	for _, k := range keys {
		parts = append(parts, k+"="+inst.Meta[k].String())
	}
	return strings.Join(parts, "|")
}

func formatTime(t tick.Tick, opts WriteOptions) string {
	adjusted := t
	if opts.OffsetSeconds != 0 {
		adjusted += tick.Seconds(opts.OffsetSeconds)
	}
	if !opts.HMS {
		dp := opts.TimeFormatDP
		if dp == 0 {
			dp = 3
		}
		return strconv.FormatFloat(adjusted.ToSeconds(), 'f', dp, 64)
	}
	when := opts.RecordingStart.Add(time.Duration(adjusted))
	layout := "15:04:05.000"
	if opts.DHMS {
		layout = "2006-01-02 15:04:05.000"
	}
	return when.Format(layout)
}
