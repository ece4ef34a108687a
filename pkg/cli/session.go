package cli

import (
	"context"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdSession(a *app) *cli.Command {
	return &cli.Command{
		Name:  "session",
		Usage: "Inspect or reset the stored pipeline cursor",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the stored cursor as JSON",
				Action: func(ctx context.Context, _ *cli.Command) error {
					_, session, release, err := a.pipeline(ctx, false)
					if err != nil {
						return err
					}
					defer release()

					current, err := session.Load(ctx)
					if err != nil {
						return err
					}
					enc := json.NewEncoder(a.out)
					enc.SetIndent("", "  ")
					if err := enc.Encode(current); err != nil {
						return goerr.Wrap(err, "failed to print session")
					}
					return nil
				},
			},
			{
				Name:  "reset",
				Usage: "Forget the stored cursor",
				Action: func(ctx context.Context, _ *cli.Command) error {
					_, session, release, err := a.pipeline(ctx, false)
					if err != nil {
						return err
					}
					defer release()

					if err := session.Reset(ctx); err != nil {
						return err
					}
					newPrinter(a.out).printf("Session reset\n")
					return nil
				},
			},
		},
	}
}
