package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/erazemk/recyclehub/internal/client"
	"github.com/erazemk/recyclehub/internal/listing"
	"github.com/erazemk/recyclehub/internal/model"
)

type browseOptions struct {
	server  string
	token   string
	query   listing.Query
	recycle string
	delete  string
}

func cmdBrowse(args []string) error {
	fs := flag.NewFlagSet("browse", flag.ContinueOnError)

	var opts browseOptions
	var sortKey string
	fs.StringVar(&opts.server, "server", "http://localhost:5000", "")
	fs.StringVar(&opts.server, "s", "http://localhost:5000", "")
	fs.StringVar(&opts.token, "token", os.Getenv("RECYCLEHUB_TOKEN"), "")
	fs.StringVar(&opts.query.Text, "q", "", "")
	fs.StringVar(&opts.query.City, "city", "", "")
	fs.StringVar(&opts.query.Category, "category", "", "")
	fs.StringVar(&opts.query.Status, "status", "", "")
	fs.StringVar(&sortKey, "sort", listing.SortNewest, "")
	fs.StringVar(&opts.recycle, "recycle", "", "")
	fs.StringVar(&opts.delete, "delete", "", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: recyclehub browse [flags]

Flags:
  -s, -server <url>   server base URL (default: http://localhost:5000)
  -q <text>           match name or description
  -city <city>        only items in city
  -category <name>    only items in category
  -status <status>    available or recycled
  -sort <key>         newest, oldest, nameAsc or nameDesc (default: newest)
  -recycle <id>       mark an item recycled, then list
  -delete <id>        delete an item, then list
  -token <jwt>        bearer token for -recycle and -delete (default: RECYCLEHUB_TOKEN)
  -h, -help           show this help and exit
`)
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return errUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		return errUsage
	}

	var err error
	if opts.query.Sort, err = listing.ParseSort(sortKey); err != nil {
		return err
	}
	if opts.query.Status != "" && !model.ValidItemStatus(opts.query.Status) {
		return fmt.Errorf("unknown status %q", opts.query.Status)
	}
	if (opts.recycle != "" || opts.delete != "") && opts.token == "" {
		return fmt.Errorf("-recycle and -delete need -token")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	c := client.New(opts.server, client.WithToken(opts.token))
	return browse(ctx, listing.NewView(c), opts, os.Stdout)
}

// browse loads the view, applies any requested mutation and prints the
// filtered listing.
func browse(ctx context.Context, view *listing.View, opts browseOptions, out io.Writer) error {
	if err := view.Load(ctx); err != nil {
		return err
	}

	if opts.recycle != "" {
		if err := view.MarkRecycled(ctx, opts.recycle); err != nil {
			return fmt.Errorf("recycling %s: %w", opts.recycle, err)
		}
		fmt.Fprintf(out, "Marked %s as recycled.\n\n", opts.recycle)
	}
	if opts.delete != "" {
		if err := view.Delete(ctx, opts.delete); err != nil {
			return fmt.Errorf("deleting %s: %w", opts.delete, err)
		}
		fmt.Fprintf(out, "Deleted %s.\n\n", opts.delete)
	}

	return printItems(out, view.Items(opts.query))
}

func printItems(out io.Writer, items []model.Item) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(out, "No items found.")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tCITY\tSTATUS\tCONTACT\tLISTED")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			it.ID, it.Name, it.Category, it.City, it.Status, it.ContactNumber,
			it.CreatedAt.Local().Format("2006-01-02"))
	}
	return tw.Flush()
}
