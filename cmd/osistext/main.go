// Command osistext extracts scripture passages from OSIS documents, compiles
// them into flat text streams and serves both over HTTP.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/osistext/core/bible"
	"github.com/FocuswithJustin/osistext/core/cas"
	"github.com/FocuswithJustin/osistext/core/errors"
	"github.com/FocuswithJustin/osistext/internal/api"
	"github.com/FocuswithJustin/osistext/internal/archive"
	"github.com/FocuswithJustin/osistext/internal/format"
	"github.com/FocuswithJustin/osistext/internal/logging"
	"github.com/FocuswithJustin/osistext/internal/osis"
	"github.com/FocuswithJustin/osistext/internal/store"
)

const version = "0.1.0"

// Globals are flags shared by every command.
type Globals struct {
	VersionsDir string          `name:"versions-dir" short:"d" help:"Directory of OSIS documents named {version}.xml, optionally .xz or .gz compressed" default:"versions" type:"path"`
	Store       string          `name:"store" help:"SQLite database of compiled streams" default:"osistext.db" type:"path"`
	LogLevel    string          `name:"log-level" help:"Log level" enum:"debug,info,warn,error" default:"warn"`
	LogFormat   string          `name:"log-format" help:"Log format" enum:"text,json" default:"text"`
	Config      kong.ConfigFlag `name:"config" help:"Load flag values from a JSON file"`
}

// CLI defines the command-line interface.
type CLI struct {
	Globals

	Passage   PassageCmd   `cmd:"" help:"Extract a passage for a list of verse references"`
	Verse     VerseCmd     `cmd:"" help:"Print the text of one verse"`
	Title     TitleCmd     `cmd:"" help:"Print a book title"`
	Books     BooksCmd     `cmd:"" help:"List the books and division codes that can be extracted"`
	Compile   CompileCmd   `cmd:"" help:"Compile versions into text streams in the store"`
	Scripture ScriptureCmd `cmd:"" help:"Print a verse range from a compiled stream"`
	Serve     ServeCmd     `cmd:"" help:"Start the REST API server"`
	Version   VersionCmd   `cmd:"" help:"Print version information"`
}

func (g *Globals) registry(maxLoaded int) *osis.Registry {
	return osis.NewRegistry(g.VersionsDir, maxLoaded)
}

// PassageCmd extracts and formats a passage.
type PassageCmd struct {
	Version   string   `arg:"" help:"Version name, e.g. kjv"`
	Refs      []string `arg:"" help:"Verse references: Gen.1.1, Gen.1.1-3 or 1001001"`
	Numbers   bool     `help:"Prefix verses with their number" default:"true" negatable:""`
	Format    string   `help:"Output format" enum:"text,html,json" default:"text"`
	FullTitle bool     `name:"full-title" help:"Use full book titles"`
}

func (c *PassageCmd) Run(g *Globals, out io.Writer) error {
	p, err := osis.Open(c.Version, g.VersionsDir)
	if err != nil {
		return err
	}
	ids, err := osis.ParseVerseList(strings.Join(c.Refs, ","))
	if err != nil {
		return err
	}
	passage, err := p.Passage(ids, c.Numbers)
	if err != nil {
		return err
	}

	if c.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(passage)
	}
	typ, err := format.ParseType(c.Format)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, format.Passage(passage, p, format.Options{Type: typ, FullTitle: c.FullTitle}))
	return err
}

// VerseCmd prints one verse.
type VerseCmd struct {
	Version string `arg:"" help:"Version name"`
	Ref     string `arg:"" help:"Verse reference"`
	Numbers bool   `help:"Prefix the verse number" default:"true" negatable:""`
}

func (c *VerseCmd) Run(g *Globals, out io.Writer) error {
	p, err := osis.Open(c.Version, g.VersionsDir)
	if err != nil {
		return err
	}
	id, err := singleVerse(c.Ref)
	if err != nil {
		return err
	}
	text, err := p.VerseText(id, c.Numbers)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, text)
	return err
}

// TitleCmd prints a book title.
type TitleCmd struct {
	Version string `arg:"" help:"Version name"`
	Book    string `arg:"" help:"Book name or division code"`
	Short   bool   `help:"Print the short title"`
}

func (c *TitleCmd) Run(g *Globals, out io.Writer) error {
	p, err := osis.Open(c.Version, g.VersionsDir)
	if err != nil {
		return err
	}
	book, err := osis.ResolveBook(c.Book)
	if err != nil {
		return err
	}
	if _, ok := osis.CodeFor(book); !ok {
		return errors.NewUnknownBookCode(book.String())
	}
	title := p.FullTitle(book)
	if c.Short {
		title = p.ShortTitle(book)
	}
	if title == "" {
		return errors.NewNotFound("title", book.String())
	}
	_, err = fmt.Fprintln(out, title)
	return err
}

// BooksCmd lists the supported books.
type BooksCmd struct{}

func (c *BooksCmd) Run(out io.Writer) error {
	for _, b := range osis.SupportedBooks() {
		code, _ := osis.CodeFor(b)
		if _, err := fmt.Fprintf(out, "%-6s %s\n", code, b.Title()); err != nil {
			return err
		}
	}
	return nil
}

// CompileCmd compiles versions into the store.
type CompileCmd struct {
	Versions []string `arg:"" optional:"" help:"Versions to compile (default: every document in the versions directory)"`
	Force    bool     `help:"Recompile even when the stored fingerprint matches"`
}

func (c *CompileCmd) Run(g *Globals, out io.Writer) error {
	versions := c.Versions
	if len(versions) == 0 {
		var err error
		if versions, err = g.registry(1).Versions(); err != nil {
			return err
		}
	}
	if len(versions) == 0 {
		return errors.NewNotFound("versions", g.VersionsDir)
	}

	st, err := store.Open(g.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	for _, name := range versions {
		v, err := osis.ValidateVersion(name)
		if err != nil {
			return err
		}
		path, err := archive.Find(g.VersionsDir, v)
		if errors.Is(err, fs.ErrNotExist) {
			return errors.NewDocumentLoad(v, errors.NewNotFound("version", v))
		}
		if err != nil {
			return errors.NewDocumentLoad(v, errors.NewIO("stat", g.VersionsDir, err))
		}
		data, err := archive.ReadAll(path)
		if err != nil {
			return errors.NewDocumentLoad(v, errors.NewIO("read", path, err))
		}
		fp := cas.Blake3Hash(data)

		if !c.Force {
			if stored, err := st.Fingerprint(ctx, v); err == nil && stored == fp {
				fmt.Fprintf(out, "%s: up to date\n", v)
				continue
			}
		}

		p, err := osis.Load(bytes.NewReader(data), osis.WithSource(v))
		if err != nil {
			return err
		}
		compiled, err := p.Compile()
		if err != nil {
			return err
		}
		if err := st.Save(ctx, v, fp, compiled); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: compiled %d books\n", v, len(compiled.Books))
		if len(compiled.UnknownTags) > 0 {
			fmt.Fprintf(out, "%s: unknown tags: %s\n", v, strings.Join(compiled.UnknownTags, ", "))
		}
	}
	return nil
}

// ScriptureCmd reads a range from a compiled stream.
type ScriptureCmd struct {
	Version string `arg:"" help:"Version name"`
	Start   string `arg:"" help:"First verse"`
	End     string `arg:"" optional:"" help:"Last verse (default: the first verse)"`
	Kind    string `help:"Stream kind" enum:"html,html_readers,html_notes,plain_text,plain_text_readers,plain_text_notes" default:"plain_text"`
}

func (c *ScriptureCmd) Run(g *Globals, out io.Writer) error {
	kind, err := osis.ParseStreamKind(c.Kind)
	if err != nil {
		return err
	}
	start, err := singleVerse(c.Start)
	if err != nil {
		return err
	}
	end := start
	if c.End != "" {
		if end, err = singleVerse(c.End); err != nil {
			return err
		}
	}
	if _, err := os.Stat(g.Store); err != nil {
		return errors.NewNotFound("store", g.Store)
	}

	st, err := store.OpenReadOnly(g.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	b, err := st.Bible(context.Background(), c.Version, kind)
	if err != nil {
		return err
	}
	text, err := b.Scripture(start, end)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, text)
	return err
}

// ServeCmd starts the REST API.
type ServeCmd struct {
	Port           int           `help:"HTTP server port" default:"8080"`
	MaxLoaded      int           `name:"max-loaded" help:"Parsed documents kept in memory" default:"4"`
	CacheTTL       time.Duration `name:"cache-ttl" help:"Lifetime of cached listings and streams" default:"5m"`
	APIKey         string        `name:"api-key" help:"Require this X-API-Key on non-health endpoints"`
	RateLimit      int           `name:"rate-limit" help:"Requests per minute per client (0 disables)"`
	RateBurst      int           `name:"rate-burst" help:"Burst size for rate limiting" default:"10"`
	AllowedOrigins []string      `name:"allowed-origins" help:"CORS origins (default: any)"`
	TLSCert        string        `name:"tls-cert" help:"TLS certificate file" type:"path"`
	TLSKey         string        `name:"tls-key" help:"TLS key file" type:"path"`
}

func (c *ServeCmd) config() api.Config {
	return api.Config{
		Port:              c.Port,
		CacheTTL:          c.CacheTTL,
		RateLimitRequests: c.RateLimit,
		RateLimitBurst:    c.RateBurst,
		Auth:              api.AuthConfig{Enabled: c.APIKey != "", APIKey: c.APIKey},
		TLS:               api.TLSConfig{Enabled: c.TLSCert != "" || c.TLSKey != "", CertFile: c.TLSCert, KeyFile: c.TLSKey},
		AllowedOrigins:    c.AllowedOrigins,
	}
}

func (c *ServeCmd) Run(g *Globals) error {
	var st *store.Store
	if _, err := os.Stat(g.Store); err == nil {
		if st, err = store.OpenReadOnly(g.Store); err != nil {
			return err
		}
		defer st.Close()
	} else {
		logging.Info("no compiled stream store, /scripture disabled", "store", g.Store)
	}

	srv, err := api.NewServer(c.config(), g.registry(c.MaxLoaded), st)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (c *VersionCmd) Run(out io.Writer) error {
	_, err := fmt.Fprintf(out, "osistext version %s\n", version)
	return err
}

func singleVerse(ref string) (bible.VerseID, error) {
	ids, err := osis.ParseVerseList(ref)
	if err != nil {
		return 0, err
	}
	if len(ids) != 1 {
		return 0, &errors.ValidationError{Field: "verse", Value: ref, Message: "must name a single verse"}
	}
	return ids[0], nil
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("osistext"),
		kong.Description("Scripture passage extraction for OSIS documents"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.DefaultEnvars("OSISTEXT"),
		kong.Configuration(kong.JSON, "~/.config/osistext/config.json", "osistext.json"),
	}, options...)
	return kong.New(cli, options...)
}

// run parses args, configures logging and executes the selected command
// with its output going to out.
func run(args []string, out io.Writer, options ...kong.Option) error {
	var cli CLI
	parser, err := newParser(&cli, options...)
	if err != nil {
		return err
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(cli.LogLevel)
	if err != nil {
		return err
	}
	logFormat, err := logging.ParseFormat(cli.LogFormat)
	if err != nil {
		return err
	}
	logging.InitLogger(level, logFormat)

	ctx.BindTo(out, (*io.Writer)(nil))
	return ctx.Run(&cli.Globals)
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "osistext: %v\n", err)
		os.Exit(1)
	}
}
