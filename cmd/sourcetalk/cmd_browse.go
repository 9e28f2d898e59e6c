package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"sourcetalk/cmd/sourcetalk/ui"
	"sourcetalk/internal/content"
	"sourcetalk/internal/entity"
	"sourcetalk/internal/listing"
	"sourcetalk/internal/query"
)

var browseCmd = &cobra.Command{
	Use:   "browse [catalogs|materials|suppliers]",
	Short: "Browse a listing interactively",
	Long: `Opens an interactive listing. Typing a search applies it once you stop
typing for the debounce window; sort changes, paging and clearing apply
immediately.`,
	Args:        cobra.MaximumNArgs(1),
	ValidArgs:   []string{"catalogs", "materials", "suppliers"},
	Annotations: map[string]string{interactiveAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		resource := query.Catalogs
		if len(args) == 1 {
			r, err := query.ParseResource(args[0])
			if err != nil {
				return err
			}
			resource = r
		}

		client, err := newContentClient()
		if err != nil {
			return err
		}

		mapper := entity.Mapper{}
		switch resource {
		case query.Materials:
			return browse(resource, content.NewMaterialFetcher(client, mapper), materialColumns)
		case query.Suppliers:
			return browse(resource, content.NewSupplierFetcher(client, mapper), supplierColumns)
		default:
			return browse(resource, content.NewProductFetcher(client, mapper), productColumns)
		}
	},
}

func browse[T any](resource query.Resource, fetcher listing.Fetcher[T], cols ui.Columns[T]) error {
	changes, notify := ui.Notifier()
	l := listing.New(fetcher, listing.Options{
		Resource:       resource,
		PageSize:       cfg.GetPageSize(),
		Radius:         cfg.GetPaginationRadius(),
		DebounceWindow: cfg.GetDebounceWindow(),
		OnChange:       notify,
	})

	page := ui.NewBrowsePage(l, cols, changes, ui.DefaultStyles())
	_, err := tea.NewProgram(page, tea.WithAltScreen()).Run()

	l.Close()
	close(changes)
	if err != nil {
		return fmt.Errorf("browse: %w", err)
	}
	return nil
}
