package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/ashkam58/pythongrade3/internal/assistant"
	"github.com/ashkam58/pythongrade3/internal/curriculum"
	"github.com/ashkam58/pythongrade3/internal/game"
	"github.com/ashkam58/pythongrade3/internal/session"
	"github.com/ashkam58/pythongrade3/internal/tutor"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the coding tutor a question from the terminal",
	Long: `Opens the given game, optionally replaces its code, and asks the tutor one question.
The reply is rendered as markdown unless --raw is set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("mode")
		code, _ := cmd.Flags().GetString("code")
		raw, _ := cmd.Flags().GetBool("raw")

		content, err := curriculum.Load(loaded.CurriculumFile)
		if err != nil {
			return err
		}
		sess := session.New(time.Now())
		if err := sess.Navigate(game.Mode(mode), content, game.DefaultRand); err != nil {
			return fmt.Errorf("mode %q: %w", mode, err)
		}
		if code != "" {
			sess.Code = code
		}
		req, widgetID, ok, err := sess.AskTutor(strings.Join(args, " "))
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("question is empty")
		}

		ai, err := assistant.New(cmd.Context(), loaded.APIKey, loaded.GeminiModel)
		if err != nil {
			return err
		}
		sess.ResolveTutor(widgetID, tutor.Ask(cmd.Context(), ai, req))
		reply := sess.Tutor.Last().Text

		if raw {
			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return nil
		}
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
		if err != nil {
			return err
		}
		out, err := r.Render(reply)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringP("mode", "m", string(game.ModeTalkingBox), "Game the question is about")
	askCmd.Flags().StringP("code", "c", "", "Code to show the tutor (defaults to the game's starting code)")
	askCmd.Flags().Bool("raw", false, "Print the reply without markdown rendering")
}
