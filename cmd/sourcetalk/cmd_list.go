package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"sourcetalk/cmd/sourcetalk/ui"
	"sourcetalk/internal/content"
	"sourcetalk/internal/entity"
	"sourcetalk/internal/pagination"
	"sourcetalk/internal/query"
)

// filterFlag maps a CLI flag to the query parameter it sets. Flags are only
// registered on resources that support the filter.
type filterFlag struct {
	filter string // name known to query.Supports
	flag   string
	param  string
	usage  string
}

var filterFlags = []filterFlag{
	{"search", "search", "search", "Search text"},
	{"codename", "codename", "codename", "Codename contains"},
	{"kelompok", "kelompok", "kelompok", "Group (kelompok) contains"},
	{"dates", "date-start", "dateStart", "Earliest date (YYYY-MM-DD)"},
	{"dates", "date-end", "dateEnd", "Latest date (YYYY-MM-DD)"},
	{"quantity", "qty-min", "qtyMin", "Minimum quantity"},
	{"quantity", "qty-max", "qtyMax", "Maximum quantity"},
	{"weight", "weight-min", "weightMin", "Minimum weight (kg)"},
	{"weight", "weight-max", "weightMax", "Maximum weight (kg)"},
	{"price", "price-min", "priceMin", "Minimum unit price"},
	{"price", "price-max", "priceMax", "Maximum unit price"},
}

// listCommand describes one listing subcommand.
type listCommand struct {
	resource query.Resource
	use      string
	aliases  []string
	short    string
	run      func(ctx context.Context, w io.Writer, client *content.Client, req query.Request, asJSON bool) error
}

var (
	listCatalogs = listCommand{
		resource: query.Catalogs,
		use:      "catalog",
		aliases:  []string{"catalogs", "products"},
		short:    "List catalog products",
		run: func(ctx context.Context, w io.Writer, c *content.Client, req query.Request, asJSON bool) error {
			return runList(ctx, w, content.NewProductFetcher(c, entity.Mapper{}), productColumns, req, asJSON)
		},
	}
	listMaterials = listCommand{
		resource: query.Materials,
		use:      "materials",
		aliases:  []string{"material"},
		short:    "List construction materials",
		run: func(ctx context.Context, w io.Writer, c *content.Client, req query.Request, asJSON bool) error {
			return runList(ctx, w, content.NewMaterialFetcher(c, entity.Mapper{}), materialColumns, req, asJSON)
		},
	}
	listSuppliers = listCommand{
		resource: query.Suppliers,
		use:      "suppliers",
		aliases:  []string{"supplier"},
		short:    "List suppliers",
		run: func(ctx context.Context, w io.Writer, c *content.Client, req query.Request, asJSON bool) error {
			return runList(ctx, w, content.NewSupplierFetcher(c, entity.Mapper{}), supplierColumns, req, asJSON)
		},
	}
)

func newListCmd(lc listCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:     lc.use,
		Aliases: lc.aliases,
		Short:   lc.short,
		Args:    cobra.NoArgs,
		Long: fmt.Sprintf(`Fetches one page of %s and prints it as a table or JSON.

Sort options: %v`, lc.resource, query.SortOptions(lc.resource)),
	}

	cmd.Flags().Int("page", 1, "Page number")
	cmd.Flags().Int("page-size", 0, "Items per page (default: from config)")
	cmd.Flags().String("sort", "", "Sort option")
	cmd.Flags().Bool("json", false, "Print JSON instead of a table")
	addFilterFlags(cmd, lc.resource)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		req, err := requestFromFlags(cmd, lc.resource)
		if err != nil {
			return err
		}
		client, err := newContentClient()
		if err != nil {
			return err
		}
		ctx, cancel := withTimeout(cmd.Context(), cfg.GetContentTimeout())
		defer cancel()

		asJSON, _ := cmd.Flags().GetBool("json")
		return lc.run(ctx, cmd.OutOrStdout(), client, req, asJSON)
	}
	return cmd
}

func addFilterFlags(cmd *cobra.Command, resource query.Resource) {
	for _, f := range filterFlags {
		if query.Supports(resource, f.filter) {
			cmd.Flags().String(f.flag, "", f.usage)
		}
	}
	if query.Supports(resource, "codenames") {
		cmd.Flags().StringSlice("codenames", nil, "Exact codenames, any of (repeatable)")
	}
}

// requestFromFlags turns the set flags into query parameters and parses
// them the same way the JSON backend parses a query string.
func requestFromFlags(cmd *cobra.Command, resource query.Resource) (query.Request, error) {
	flags := cmd.Flags()
	v := url.Values{}

	if flags.Changed("page") {
		page, _ := flags.GetInt("page")
		v.Set("page", fmt.Sprint(page))
	}
	pageSize, _ := flags.GetInt("page-size")
	if pageSize <= 0 {
		pageSize = cfg.GetPageSize()
	}
	if sort, _ := flags.GetString("sort"); sort != "" {
		v.Set("sort", sort)
	}

	for _, f := range filterFlags {
		if flags.Lookup(f.flag) == nil || !flags.Changed(f.flag) {
			continue
		}
		value, _ := flags.GetString(f.flag)
		v.Set(f.param, value)
	}
	if flags.Lookup("codenames") != nil {
		names, _ := flags.GetStringSlice("codenames")
		v["codenames"] = names
	}

	req, err := query.ParseValues(v, pageSize)
	if err != nil {
		return query.Request{}, err
	}
	if req.Sort == "" {
		req.Sort = query.DefaultSort(resource)
	}
	return req, nil
}

type listOutput[T any] struct {
	Data []T                   `json:"data"`
	Meta pagination.Pagination `json:"meta"`
}

func runList[T any](ctx context.Context, w io.Writer, f *content.Fetcher[T], cols ui.Columns[T], req query.Request, asJSON bool) error {
	page, err := f.Fetch(ctx, req)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(listOutput[T]{Data: page.Items, Meta: page.Pagination})
	}

	table := ui.NewTable("", cols.Headers...)
	table.MaxCell = 40
	table.Empty = "No items found"
	for _, item := range page.Items {
		table.AddRow(cols.Row(item)...)
	}
	fmt.Fprint(w, table.View(ui.DefaultStyles()))

	p := page.Pagination
	from, to := p.Range()
	if p.Total > 0 {
		fmt.Fprintf(w, "\nShowing %d-%d of %s · page %d of %d\n", from, to, humanize.Comma(int64(p.Total)), p.Page, p.PageCount)
	}
	return nil
}
