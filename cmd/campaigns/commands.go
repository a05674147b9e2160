package main

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/aluiziolira/go-campaign-studio/campaign"
	"github.com/aluiziolira/go-campaign-studio/catalog"
	"github.com/aluiziolira/go-campaign-studio/export"
	"github.com/aluiziolira/go-campaign-studio/history"
	"github.com/aluiziolira/go-campaign-studio/models"
	"github.com/aluiziolira/go-campaign-studio/parser"
	"github.com/aluiziolira/go-campaign-studio/preview"
	"github.com/aluiziolira/go-campaign-studio/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newBrowseCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Open the interactive catalog, campaign form and history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := start(cmd, opts, true)
			if err != nil {
				return err
			}
			defer s.close()

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			browser, err := history.NewBrowser(s.client, s.cfg)
			if err != nil {
				return err
			}
			store := catalog.NewStore(s.client, s.cfg, catalog.WithMetrics(s.client.Metrics))
			defer store.Close()

			model := tui.New(ctx, tui.Deps{
				Config:    s.cfg,
				Store:     store,
				Campaigns: campaign.NewService(s.client, campaign.WithHistory(browser), campaign.WithMetrics(s.client.Metrics)),
				History:   browser,
				Metrics:   s.client.Metrics,
			})
			defer model.Close()

			program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := program.Run(); err != nil && ctx.Err() == nil {
				return fmt.Errorf("run interface: %w", err)
			}
			return nil
		},
	}
}

func newProductsCmd(opts *options) *cobra.Command {
	var (
		page   int
		search string
	)
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Print one page of the product catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := start(cmd, opts, false)
			if err != nil {
				return err
			}
			defer s.close()

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			resp, err := s.client.GetProducts(ctx, models.ProductsQuery{
				Page:   page,
				Limit:  s.cfg.PageLimit,
				Search: strings.TrimSpace(search),
			})
			if err != nil {
				return fmt.Errorf("fetch products: %w", err)
			}
			if resp.Data == nil {
				return fmt.Errorf("fetch products: empty response")
			}
			products := parser.TransformProducts(resp.Data.Products)
			pagination := parser.NormalizePagination(resp.Data.Pagination, s.cfg.PageLimit)
			return printProducts(cmd.OutOrStdout(), products, pagination)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "catalog page to print")
	cmd.Flags().StringVarP(&search, "search", "s", "", "filter by name")
	return cmd
}

func newGenerateCmd(opts *options) *cobra.Command {
	req := models.NewBrandingRequest("")
	var tone, platform, style string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a campaign and print its platform preview",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := start(cmd, opts, false)
			if err != nil {
				return err
			}
			defer s.close()

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			req.Tone = models.Tone(strings.ToLower(tone))
			req.Platform = models.Platform(strings.ToLower(platform))
			req.Style = models.Style(strings.ToLower(style))

			svc := campaign.NewService(s.client, campaign.WithMetrics(s.client.Metrics))
			c, err := svc.Generate(ctx, req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, campaign.SuccessMessage)
			fmt.Fprintln(out, preview.Render(c, preview.Options{Brand: s.cfg.BrandName}))
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&req.ProductName, "product", "p", "", "product name")
	flags.StringVar(&req.Flavor, "flavor", "", "flavor or context for the copy")
	flags.StringVar(&tone, "tone", string(req.Tone), "youth, family, professional, health or traditional")
	flags.StringVar(&platform, "platform", string(req.Platform), "instagram, linkedin or email")
	flags.StringVar(&style, "style", string(req.Style), "minimalist, vibrant, premium or playful")
	_ = cmd.MarkFlagRequired("product")
	return cmd
}

func newHistoryCmd(opts *options) *cobra.Command {
	var pages int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previously generated campaigns",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := start(cmd, opts, false)
			if err != nil {
				return err
			}
			defer s.close()

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			browser, err := history.NewBrowser(s.client, s.cfg)
			if err != nil {
				return err
			}
			if err := browser.Load(ctx); err != nil {
				return err
			}
			for i := 1; i < pages; i++ {
				more, err := browser.LoadMore(ctx)
				if err != nil {
					return err
				}
				if !more {
					break
				}
			}
			return printHistory(cmd.OutOrStdout(), browser.Snapshot())
		},
	}
	cmd.Flags().IntVar(&pages, "pages", 1, "number of history pages to load")
	return cmd
}

func newExportCmd(opts *options) *cobra.Command {
	var (
		output  string
		format  string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Page through the whole catalog and write it to CSV or JSONL",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := start(cmd, opts, false)
			if err != nil {
				return err
			}
			defer s.close()

			if cmd.Flags().Changed("output") {
				s.cfg.ExportFile = output
			}
			if cmd.Flags().Changed("format") {
				s.cfg.ExportFormat = strings.ToLower(format)
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			sink, err := export.Open(s.cfg)
			if err != nil {
				return fmt.Errorf("open export file: %w", err)
			}
			defer func() {
				if err := sink.Close(); err != nil {
					slog.Error("close export file", slog.Any("error", err))
				}
			}()

			store := catalog.NewStore(s.client, s.cfg, catalog.WithMetrics(s.client.Metrics))
			defer store.Close()

			slog.Info("starting export",
				slog.String("base_url", s.cfg.BaseURL),
				slog.String("output", s.cfg.ExportFile),
				slog.String("format", s.cfg.ExportFormat),
				slog.Int("workers", workers),
			)
			summary, err := export.Run(ctx, s.cfg, store, sink, workers, export.WithMetrics(s.client.Metrics))
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), summary, s.cfg.ExportFile)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path")
	cmd.Flags().StringVar(&format, "format", "", "output format: csv, json, or dual")
	cmd.Flags().IntVar(&workers, "workers", 2, "export workers")
	return cmd
}

func printProducts(w io.Writer, products []models.Product, p models.Pagination) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY")
	for _, product := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", product.ID, parser.Truncate(product.Name, 48), product.Category)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "page %d of %d, %d products\n", p.CurrentPage, p.TotalPages, p.Total)
	return err
}

func printHistory(w io.Writer, st history.State) error {
	if len(st.Items) == 0 {
		_, err := fmt.Fprintln(w, "No campaigns generated yet")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tPRODUCT\tPLATFORM\tTAGLINE")
	for _, item := range st.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", item.CreatedAt, item.ProductName, item.Platform, parser.Truncate(item.GeneratedTagline, 40))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d of %d campaigns\n", len(st.Items), st.TotalCount)
	return err
}

func printSummary(w io.Writer, summary export.Summary, outputFile string) {
	separator := "--------------------------------------------------"
	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "Export complete")

	fmt.Fprintf(w, "  Pages:         %d\n", summary.Pages)
	fmt.Fprintf(w, "  Products:      %d\n", summary.Written)
	for _, reason := range slices.Sorted(maps.Keys(summary.Skipped)) {
		fmt.Fprintf(w, "  Skipped:       %d %s\n", summary.Skipped[reason], reason)
	}
	perSec := 0.0
	if summary.Duration.Seconds() > 0 {
		perSec = float64(summary.Written) / summary.Duration.Seconds()
	}
	fmt.Fprintf(w, "  Duration:      %v\n", summary.Duration)
	fmt.Fprintf(w, "  Items/sec:     %.2f\n", perSec)
	fmt.Fprintf(w, "  Output file:   %s\n", outputFile)
	fmt.Fprintln(w, separator)
}
