package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/wichananm65/recommendation-console/internal/config"
	"github.com/wichananm65/recommendation-console/internal/console"
	"github.com/wichananm65/recommendation-console/internal/logging"
	"github.com/wichananm65/recommendation-console/internal/recommendation"
)

var errActionFailed = errors.New("action failed")

type options struct {
	apiURL   string
	apiKey   string
	timeout  time.Duration
	offline  bool
	logLevel string
}

type repoFactory func(opts options) recommendation.Repository

func newRepository(opts options) recommendation.Repository {
	if opts.offline {
		return recommendation.NewInMemoryRepository(nil)
	}
	return recommendation.NewHTTPRepository(recommendation.HTTPConfig{
		BaseURL: opts.apiURL,
		APIKey:  opts.apiKey,
		Timeout: opts.timeout,
	})
}

func newRootCmd(out io.Writer, factory repoFactory) *cobra.Command {
	opts := options{}
	defaults, envErr := config.Load()
	if envErr != nil {
		defaults = config.Config{APIURL: "http://localhost:8080/api", APITimeout: 10 * time.Second}
	}

	root := &cobra.Command{
		Use:           "recommendation-cli",
		Short:         "Manage product recommendations from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Init(logging.Config{Level: opts.logLevel, Format: "console"})
			if envErr != nil {
				logging.Warn().Err(envErr).Msg("environment ignored, using flag defaults")
			}
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.apiURL, "api-url", defaults.APIURL, "base URL of the recommendations API")
	flags.StringVar(&opts.apiKey, "api-key", defaults.APIKey, "API key sent on mutating calls")
	flags.DurationVar(&opts.timeout, "timeout", defaults.APITimeout, "per-request timeout")
	flags.BoolVar(&opts.offline, "offline", defaults.Offline, "use an in-memory store instead of the API")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	for _, action := range console.Actions() {
		if action == console.ActionClear {
			continue
		}
		root.AddCommand(newActionCmd(action, &opts, factory))
	}
	root.AddCommand(newInteractiveCmd(&opts, factory))
	return root
}

var actionHelp = map[console.Action]string{
	console.ActionCreate:   "Create a recommendation",
	console.ActionUpdate:   "Change the relationship of a recommendation",
	console.ActionRetrieve: "Show one recommendation",
	console.ActionDelete:   "Delete a recommendation",
	console.ActionLike:     "Like a recommendation",
	console.ActionSearch:   "List recommendations by product and relationship",
}

func newActionCmd(action console.Action, opts *options, factory repoFactory) *cobra.Command {
	form := console.FormState{}
	cmd := &cobra.Command{
		Use:   string(action),
		Short: actionHelp[action],
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			controller := console.NewController(factory(*opts))
			vm := console.ViewModel{Form: form}
			derr := controller.Dispatch(cmd.Context(), action, &vm)
			if err := render(cmd.OutOrStdout(), vm); err != nil {
				return err
			}
			if derr != nil {
				return fmt.Errorf("%w: %s", errActionFailed, action)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&form.ProductID, "product-id", "", "product id")
	if action != console.ActionSearch {
		f.StringVar(&form.RecommendationProductID, "recommendation-product-id", "", "recommended product id")
	}
	switch action {
	case console.ActionCreate, console.ActionUpdate, console.ActionSearch:
		f.StringVar(&form.Relationship, "relationship", "", fmt.Sprintf("one of %v", recommendation.Relationships()))
	}
	return cmd
}
