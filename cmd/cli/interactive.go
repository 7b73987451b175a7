package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"
	"github.com/wichananm65/recommendation-console/internal/console"
	"github.com/wichananm65/recommendation-console/internal/recommendation"
)

const (
	quitChoice = "quit"
	noneChoice = "(none)"
)

type prompter interface {
	Select(message string, options []string, def string) (string, error)
	Input(message, def string) (string, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Select(message string, options []string, def string) (string, error) {
	prompt := &survey.Select{Message: message, Options: options}
	if slices.Contains(options, def) {
		prompt.Default = def
	}
	var out string
	if err := survey.AskOne(prompt, &out); err != nil {
		return "", err
	}
	return out, nil
}

func (surveyPrompter) Input(message, def string) (string, error) {
	var out string
	if err := survey.AskOne(&survey.Input{Message: message, Default: def}, &out); err != nil {
		return "", err
	}
	return out, nil
}

func newInteractiveCmd(opts *options, factory repoFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Drive the console form from prompts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			controller := console.NewController(factory(*opts))
			return runInteractive(cmd.Context(), cmd.OutOrStdout(), controller, surveyPrompter{})
		},
	}
}

// runInteractive keeps one view model across actions, the way the page does
// between button presses. It returns nil on quit or interrupt.
func runInteractive(ctx context.Context, out io.Writer, controller *console.Controller, p prompter) error {
	choices := make([]string, 0, len(console.Actions())+1)
	for _, a := range console.Actions() {
		choices = append(choices, string(a))
	}
	choices = append(choices, quitChoice)

	vm := console.ViewModel{}
	last := ""
	for {
		choice, err := p.Select("Action", choices, last)
		if errors.Is(err, terminal.InterruptErr) || choice == quitChoice {
			return nil
		}
		if err != nil {
			return err
		}
		last = choice

		action, err := console.ParseAction(choice)
		if err != nil {
			return err
		}
		if err := askFields(p, action, &vm.Form); err != nil {
			if errors.Is(err, terminal.InterruptErr) {
				return nil
			}
			return err
		}

		_ = controller.Dispatch(ctx, action, &vm)
		if err := render(out, vm); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
}

func askFields(p prompter, action console.Action, form *console.FormState) error {
	var err error
	switch action {
	case console.ActionClear:
		return nil
	case console.ActionSearch:
		if form.ProductID, err = p.Input("Product ID (blank for all)", form.ProductID); err != nil {
			return err
		}
	default:
		if form.ProductID, err = p.Input("Product ID", form.ProductID); err != nil {
			return err
		}
		if form.RecommendationProductID, err = p.Input("Recommended Product ID", form.RecommendationProductID); err != nil {
			return err
		}
	}

	switch action {
	case console.ActionCreate, console.ActionUpdate, console.ActionSearch:
		options := []string{noneChoice}
		for _, r := range recommendation.Relationships() {
			options = append(options, string(r))
		}
		def := form.Relationship
		if def == "" {
			def = noneChoice
		}
		rel, err := p.Select("Relationship", options, def)
		if err != nil {
			return err
		}
		if rel == noneChoice {
			rel = ""
		}
		form.Relationship = rel
	}
	return nil
}
