package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "animerank",
		Short: "Anime rating spreadsheet ranking tool",
		Long: `Animerank reads an anime rating workbook, computes a weighted composite
score across Bangumi, Anilist, MyAnimeList, and Filmarks, assigns per-platform
and composite ranks, and writes a styled copy of the workbook with the rank
columns inserted. Cell styles, column grouping colors, and hyperlinks from the
input are preserved.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose logging")

	// Add subcommands
	cmd.AddCommand(newRankCmd())

	return cmd
}
