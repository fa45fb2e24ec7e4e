package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/ytnotes/internal/api"
	"github.com/kalambet/ytnotes/internal/config"
	"github.com/kalambet/ytnotes/internal/synthesis"
)

// --- notes ---

var notesCmd = &cobra.Command{
	Use:   "notes <url>",
	Short: "Generate study notes for a YouTube video",
	Long: `Generate study notes for a YouTube video.

Examples:
  ytnotes notes https://www.youtube.com/watch?v=dQw4w9WgXcQ
  ytnotes notes --type Lecture --json https://youtu.be/dQw4w9WgXcQ
  ytnotes notes --transcript ./transcript.txt https://youtu.be/dQw4w9WgXcQ`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		videoType, _ := cmd.Flags().GetString("type")
		transcriptFile, _ := cmd.Flags().GetString("transcript")
		asJSON, _ := cmd.Flags().GetBool("json")

		var override string
		if transcriptFile != "" {
			data, err := os.ReadFile(transcriptFile)
			if err != nil {
				return fmt.Errorf("reading transcript file: %w", err)
			}
			override = string(data)
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		setupLogging(cfg)

		ctx := cmd.Context()
		svc, cleanup, err := buildService(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		printStep("Generating notes for %s", args[0])
		env := svc.GenerateNotes(ctx, api.NotesRequest{
			VideoURL:           args[0],
			VideoType:          videoType,
			TranscriptOverride: override,
		})

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(env)
		}

		if !env.Success {
			if env.ErrorCode != "" {
				return fmt.Errorf("%s: %s", env.ErrorCode, env.Error)
			}
			return fmt.Errorf("%s", env.Error)
		}

		printNotes(env.Notes)
		return nil
	},
}

func printNotes(n *api.Notes) {
	fmt.Printf("%s\n", colorize(colorBold, n.Title))
	if n.VideoTitle != "" {
		fmt.Printf("%s (%s)\n", n.VideoTitle, n.Duration)
	} else {
		fmt.Printf("Duration: %s\n", n.Duration)
	}
	fmt.Printf("\n%s\n", n.Summary)

	fmt.Printf("\n%s\n", colorize(colorBold, "Key points"))
	for _, kp := range n.KeyPoints {
		fmt.Printf("  - %s\n", kp)
	}

	for _, s := range n.Sections {
		header := s.Title
		if s.Timestamp != "" {
			header = fmt.Sprintf("[%s] %s", s.Timestamp, s.Title)
		}
		fmt.Printf("\n%s\n%s\n", colorize(colorBold, header), s.Content)
	}
}

// --- transcript ---

var transcriptCmd = &cobra.Command{
	Use:   "transcript <url>",
	Short: "Fetch a video's transcript without generating notes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		setupLogging(cfg)

		ctx := cmd.Context()
		svc, cleanup, err := buildService(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		env := svc.GetTranscript(ctx, args[0])

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(env)
		}

		if !env.Success {
			if env.ErrorCode != "" {
				return fmt.Errorf("%s: %s", env.ErrorCode, env.Error)
			}
			return fmt.Errorf("%s", env.Error)
		}

		tv := env.Transcript
		printSuccess("Transcript for %s (%s, source: %s)", tv.VideoID, tv.Duration, tv.Source)
		if tv.Timestamped != "" {
			fmt.Println(tv.Timestamped)
		} else {
			fmt.Println(tv.Transcript)
		}
		return nil
	},
}

func init() {
	notesCmd.Flags().String("type", "", "video type biasing the notes: "+strings.Join(synthesis.VideoTypes, ", "))
	notesCmd.Flags().String("transcript", "", "file with a transcript override")
	notesCmd.Flags().Bool("json", false, "print the full response envelope as JSON")
	transcriptCmd.Flags().Bool("json", false, "print the full response envelope as JSON")
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List current configuration values",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		v, err := config.GetKey(cfg, args[0])
		if err != nil {
			return err
		}
		fmt.Println(v)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}
