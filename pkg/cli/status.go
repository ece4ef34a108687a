package cli

import (
	"context"

	"github.com/urfave/cli/v3"
)

func cmdStatus(a *app) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show archive status, the session cursor and eligible stages",
		Action: func(ctx context.Context, _ *cli.Command) error {
			_, session, release, err := a.pipeline(ctx, false)
			if err != nil {
				return err
			}
			defer release()

			overview, err := session.Overview(ctx)
			if err != nil {
				return err
			}
			newPrinter(a.out).overview(overview)
			return nil
		},
	}
}
