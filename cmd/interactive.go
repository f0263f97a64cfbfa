package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fatih/color"
	"golang.org/x/term"

	"ptai/internal/names"
)

const pickerHeight = 15

// picker holds the state of the suburb list: the typed filter, the entries
// that match it and the highlighted entry.
type picker struct {
	all      []string
	folder   names.Folder
	query    []rune
	matches  []string
	selected int
	offset   int
	height   int
}

func newPicker(all []string, folder names.Folder, height int) *picker {
	p := &picker{all: all, folder: folder, height: height}
	p.refilter()
	return p
}

func (p *picker) refilter() {
	p.matches = filterSuburbs(p.all, string(p.query), p.folder)
	p.selected = 0
	p.offset = 0
}

func (p *picker) typeRune(r rune) {
	p.query = append(p.query, r)
	p.refilter()
}

func (p *picker) backspace() {
	if len(p.query) == 0 {
		return
	}
	p.query = p.query[:len(p.query)-1]
	p.refilter()
}

func (p *picker) up() {
	if p.selected > 0 {
		p.selected--
	}
	if p.selected < p.offset {
		p.offset = p.selected
	}
}

func (p *picker) down() {
	if p.selected < len(p.matches)-1 {
		p.selected++
	}
	if p.selected >= p.offset+p.height {
		p.offset = p.selected - p.height + 1
	}
}

// current returns the highlighted suburb, if any entry matches the filter.
func (p *picker) current() (string, bool) {
	if len(p.matches) == 0 {
		return "", false
	}
	return p.matches[p.selected], true
}

// visible returns the window of matches shown on screen.
func (p *picker) visible() []string {
	end := p.offset + p.height
	if end > len(p.matches) {
		end = len(p.matches)
	}
	return p.matches[p.offset:end]
}

// draw writes the list for a terminal in raw mode, so lines end in CRLF.
func (p *picker) draw(w io.Writer) {
	fmt.Fprint(w, "\033[H\033[2J")
	fmt.Fprintf(w, "Suburb: %s\r\n\r\n", string(p.query))
	if len(p.matches) == 0 {
		fmt.Fprint(w, "  (no suburb matches)\r\n")
	}
	for i, s := range p.visible() {
		prefix := "  "
		if p.offset+i == p.selected {
			prefix = "> "
		}
		fmt.Fprint(w, prefix+s+"\r\n")
	}
	fmt.Fprintf(w, "\r\n%d of %d  (type to filter, ↑/↓ to navigate, Enter to view, Esc to quit)\r\n", len(p.matches), len(p.all))
}

// key is one decoded keypress in the picker.
type key int

const (
	keyNone key = iota
	keyUp
	keyDown
	keyEnter
	keyQuit
	keyBackspace
	keyRune
)

// readKey decodes the next keypress. ANSI arrow sequences, bare Esc and the
// legacy Windows console prefixes (0 or 224 followed by a scan code) are
// recognised; printable runes come back as keyRune.
func readKey(reader *bufio.Reader) (key, rune, error) {
	r, size, err := reader.ReadRune()
	if err != nil {
		return keyNone, 0, err
	}

	if r == 0 || (r == utf8.RuneError && size == 1) {
		b, _ := reader.ReadByte()
		switch b {
		case 72:
			return keyUp, 0, nil
		case 80:
			return keyDown, 0, nil
		case 13:
			return keyEnter, 0, nil
		}
		return keyNone, 0, nil
	}

	switch r {
	case 27:
		if reader.Buffered() == 0 {
			return keyQuit, 0, nil
		}
		b2, _ := reader.ReadByte()
		if b2 != '[' || reader.Buffered() == 0 {
			return keyNone, 0, nil
		}
		b3, _ := reader.ReadByte()
		switch b3 {
		case 'A':
			return keyUp, 0, nil
		case 'B':
			return keyDown, 0, nil
		}
		return keyNone, 0, nil
	case '\r', '\n':
		return keyEnter, 0, nil
	case 3:
		return keyQuit, 0, nil
	case 127, 8:
		return keyBackspace, 0, nil
	}
	if unicode.IsPrint(r) {
		return keyRune, r, nil
	}
	return keyNone, 0, nil
}

// rawTerminal tracks the saved cooked-mode state of a terminal in raw mode.
// The state is only replaced after a successful switch, so restore never
// sees a nil state.
type rawTerminal struct {
	fd      int
	state   *term.State
	makeRaw func(fd int) (*term.State, error)
	restore func(fd int, state *term.State) error
}

func newRawTerminal(fd int) *rawTerminal {
	return &rawTerminal{fd: fd, makeRaw: term.MakeRaw, restore: term.Restore}
}

func (t *rawTerminal) enter() error {
	state, err := t.makeRaw(t.fd)
	if err != nil {
		return err
	}
	t.state = state
	return nil
}

func (t *rawTerminal) leave() {
	if t.state == nil {
		return
	}
	_ = t.restore(t.fd, t.state)
	t.state = nil
}

// interactive loads the dataset and lets the user pick suburbs until they
// quit. Errors from one selection are shown and the loop continues.
func (a *app) interactive(ctx context.Context) error {
	ds, err := a.loader.Load(ctx)
	if err != nil {
		return err
	}
	suburbs := ds.Suburbs()
	if len(suburbs) == 0 {
		fmt.Println("The attribute table has no suburbs.")
		return nil
	}

	if runtime.GOOS == "windows" {
		enableVT()
	}

	tty := newRawTerminal(int(os.Stdin.Fd()))
	if err := tty.enter(); err != nil {
		return a.prompt(ctx, os.Stdin, os.Stdout, ds.Names, suburbs)
	}
	defer tty.leave()

	reader := bufio.NewReader(os.Stdin)
	p := newPicker(suburbs, ds.Names, pickerHeight)
	p.draw(os.Stdout)

	for {
		k, r, err := readKey(reader)
		if err != nil {
			return nil
		}

		switch k {
		case keyUp:
			p.up()
		case keyDown:
			p.down()
		case keyBackspace:
			p.backspace()
		case keyRune:
			p.typeRune(r)
		case keyQuit:
			fmt.Print("\r\n")
			return nil
		case keyEnter:
			name, ok := p.current()
			if !ok {
				continue
			}
			tty.leave()
			fmt.Println()
			a.show(ctx, os.Stdout, name)

			fmt.Print("\n(press Enter to return)")
			_, _ = bufio.NewReader(os.Stdin).ReadBytes('\n')

			if err := tty.enter(); err != nil {
				return nil
			}
			reader = bufio.NewReader(os.Stdin)
		default:
			continue
		}
		p.draw(os.Stdout)
	}
}

// prompt is the line-based fallback for terminals that cannot enter raw
// mode. A name is rendered directly; "?text" lists matching suburbs.
func (a *app) prompt(ctx context.Context, in io.Reader, out io.Writer, folder names.Folder, suburbs []string) error {
	reader := bufio.NewReader(in)
	for {
		fmt.Fprint(out, "Enter suburb, ?filter to search (blank to quit): ")
		line, err := reader.ReadString('\n')
		input := strings.TrimSpace(line)
		if input == "" {
			return nil
		}

		if strings.HasPrefix(input, "?") {
			for _, s := range filterSuburbs(suburbs, strings.TrimPrefix(input, "?"), folder) {
				fmt.Fprintln(out, "  "+s)
			}
		} else {
			a.show(ctx, out, input)
		}

		if err != nil {
			return nil
		}
	}
}

// show renders one suburb and reports a failure without ending the session.
func (a *app) show(ctx context.Context, w io.Writer, name string) {
	if err := a.render(ctx, w, name, outputs{}); err != nil {
		red := color.New(color.FgRed)
		if !a.color {
			red.DisableColor()
		}
		red.Fprintln(w, describe(err))
	}
}
