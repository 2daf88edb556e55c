package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/noah-isme/backend-videoquote/internal/config"
	"github.com/noah-isme/backend-videoquote/internal/idea"
	"github.com/noah-isme/backend-videoquote/internal/pricing"
	"github.com/noah-isme/backend-videoquote/internal/quote"
	"github.com/noah-isme/backend-videoquote/internal/share"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp() *cli.App {
	app := &cli.App{
		Name:    "quotectl",
		Usage:   "Inspect pricing, render quotes and look up shared selections",
		Version: Version,
		Before: func(*cli.Context) error {
			_ = godotenv.Load()
			return nil
		},
		Commands: []*cli.Command{
			priceCmd(),
			renderCmd(),
			shareCmd(),
		},
	}
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func engineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "policy", Value: pricing.PolicyBundle.Name, EnvVars: []string{"PRICING_DISCOUNT_POLICY"}, Usage: "Discount policy: bundle|legacy"},
		&cli.Int64Flag{Name: "unit", Value: pricing.DefaultUnitPrice, EnvVars: []string{"PRICING_UNIT_PRICE_CENTS"}, Usage: "Unit price in cents"},
	}
}

func engineFromFlags(c *cli.Context) (pricing.Engine, error) {
	policy, err := pricing.PolicyByName(c.String("policy"))
	if err != nil {
		return pricing.Engine{}, err
	}
	return pricing.NewEngine(c.Int64("unit"), policy)
}

// priceCmd prints the quote for every selection size up to --max.
func priceCmd() *cli.Command {
	return &cli.Command{
		Name:  "price",
		Usage: "Print the price table for 1..max videos",
		Flags: append(engineFlags(),
			&cli.IntFlag{Name: "max", Value: 10, Usage: "Largest selection size"},
			&cli.StringFlag{Name: "locale", Value: quote.DefaultLocale, Usage: "Money formatting locale"},
		),
		Action: func(c *cli.Context) error {
			engine, err := engineFromFlags(c)
			if err != nil {
				return err
			}
			limit := c.Int("max")
			if limit < 1 {
				return errors.New("--max must be at least 1")
			}
			return writePriceTable(c.App.Writer, engine, limit, c.String("locale"))
		},
	}
}

func writePriceTable(w io.Writer, engine pricing.Engine, limit int, locale string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "videos\tsubtotal\tdiscount\tamount\ttotal\t")
	for n := 1; n <= limit; n++ {
		q := engine.QuoteCount(n)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t\n",
			n,
			quote.FormatMoney(locale, q.Subtotal),
			quote.FormatPercent(locale, q.DiscountPercent),
			quote.FormatMoney(locale, q.DiscountAmount),
			quote.FormatMoney(locale, q.Total),
		)
	}
	return tw.Flush()
}

// renderFile is the input accepted by the render command.
type renderFile struct {
	CompanyName string           `json:"companyName"`
	Ideas       []idea.VideoIdea `json:"ideas"`
}

// renderCmd renders a quote document from a JSON file.
func renderCmd() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "Render a quote from a JSON file ({companyName, ideas}); - reads stdin",
		ArgsUsage: "<file>",
		Flags: append(engineFlags(),
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "text", Usage: "Output format: text|markdown|html"},
			&cli.StringFlag{Name: "locale", Aliases: []string{"l"}, Value: quote.DefaultLocale, Usage: "Document locale"},
			&cli.StringFlag{Name: "company", Usage: "Override the company name"},
		),
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("render expects exactly one file argument")
			}
			in, err := readRenderFile(c.Args().First(), os.Stdin)
			if err != nil {
				return err
			}
			if company := c.String("company"); company != "" {
				in.CompanyName = company
			}
			engine, err := engineFromFlags(c)
			if err != nil {
				return err
			}
			doc, err := quote.Builder{Engine: engine, Vendor: quote.DefaultVendor}.Build(quote.Input{
				Ideas:       in.Ideas,
				CompanyName: in.CompanyName,
				Locale:      c.String("locale"),
			})
			if err != nil {
				return err
			}
			switch c.String("format") {
			case "text":
				return quote.RenderText(c.App.Writer, doc)
			case "markdown", "md":
				return quote.RenderMarkdown(c.App.Writer, doc)
			case "html":
				return quote.RenderHTML(c.App.Writer, doc)
			default:
				return fmt.Errorf("unknown format %q", c.String("format"))
			}
		},
	}
}

func readRenderFile(path string, stdin io.Reader) (renderFile, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return renderFile{}, err
		}
		defer f.Close()
		r = f
	}
	var in renderFile
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return renderFile{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return in, nil
}

// shareCmd groups share lookups against the configured store.
func shareCmd() *cli.Command {
	return &cli.Command{
		Name:  "share",
		Usage: "Shared selections",
		Subcommands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Print a shared selection as JSON",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "driver", Value: config.ShareStorePostgres, EnvVars: []string{"SHARE_STORE_DRIVER"}, Usage: "Share store: postgres|sqlite"},
					&cli.StringFlag{Name: "database-url", EnvVars: []string{"DATABASE_URL"}, Usage: "Postgres connection string"},
					&cli.StringFlag{Name: "sqlite-path", Value: "videoquote.db", EnvVars: []string{"SQLITE_PATH"}, Usage: "SQLite database file"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return errors.New("share get expects exactly one id")
					}
					ctx, cancel := context.WithTimeout(c.Context, 10*time.Second)
					defer cancel()

					store, closeStore, err := openShareStore(ctx, c.String("driver"), c.String("database-url"), c.String("sqlite-path"))
					if err != nil {
						return err
					}
					defer closeStore()

					snap, found, err := share.NewService(store).Get(ctx, c.Args().First())
					if err != nil {
						return err
					}
					if !found {
						return fmt.Errorf("share %s not found", c.Args().First())
					}
					enc := json.NewEncoder(c.App.Writer)
					enc.SetIndent("", "  ")
					return enc.Encode(snap)
				},
			},
		},
	}
}

func openShareStore(ctx context.Context, driver, databaseURL, sqlitePath string) (share.Store, func(), error) {
	switch driver {
	case config.ShareStoreSQLite:
		store, err := share.OpenSQLite(sqlitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case config.ShareStorePostgres:
		if databaseURL == "" {
			return nil, nil, errors.New("DATABASE_URL is required for the postgres share store")
		}
		pool, err := pgxpool.New(ctx, databaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}
		return share.NewPGStore(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported share store %q", driver)
	}
}
