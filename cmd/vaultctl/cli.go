package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/modelvault/modelvault/core/client"
	"github.com/modelvault/modelvault/core/model"
)

func newClient(ctx *cli.Context) (*client.Client, error) {
	return client.NewClient(ctx.String("rpc-url"), ctx.String("actor"))
}

var submitCmd = &cli.Command{
	Name:  "submit",
	Usage: "Submit a model artifact: manifest first, then every shard",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "model-id",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "file-path",
			Required: true,
			Usage:    "Path to the artifact to shard and upload",
		},
		&cli.StringFlag{
			Name:     "name",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "arch",
			Required: true,
		},
		&cli.Int64Flag{
			Name:     "params",
			Required: true,
			Usage:    "Parameter count",
		},
		&cli.BoolFlag{
			Name:  "restricted",
			Usage: "Serve shards only to identities holding a live access grant",
		},
	},
	Action: func(ctx *cli.Context) error {
		c, err := newClient(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		artifact, err := os.ReadFile(ctx.String("file-path"))
		if err != nil {
			return err
		}

		modelID := ctx.String("model-id")
		manifest, uploads := client.BuildManifest(modelID, artifact)

		meta := model.ModelMeta{
			Name:         ctx.String("name"),
			Architecture: ctx.String("arch"),
			ParamCount:   ctx.Int64("params"),
			Restricted:   ctx.Bool("restricted"),
		}

		err = c.SubmitModel(modelID, meta, manifest)
		if err != nil {
			return err
		}

		stored, err := c.SubmitShards(modelID, uploads)
		if err != nil {
			return err
		}

		log.Infow("submitted", "modelID", modelID, "shards", stored, "bytes", len(artifact))
		return nil
	},
}

var completeCmd = &cli.Command{
	Name:  "complete",
	Usage: "Complete a submission: validate integrity and enter governance review",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "model-id", Required: true},
	},
	Action: func(ctx *cli.Context) error {
		c, err := newClient(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		status, err := c.CompleteSubmission(ctx.String("model-id"))
		if err != nil {
			return err
		}

		log.Infow("submission complete", "modelID", ctx.String("model-id"), "status", status)
		return nil
	},
}

var validateCmd = &cli.Command{
	Name:  "validate",
	Usage: "Re-run integrity reconciliation without side effects",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "model-id", Required: true},
	},
	Action: func(ctx *cli.Context) error {
		c, err := newClient(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		err = c.ValidateModelIntegrity(ctx.String("model-id"))
		if err != nil {
			return err
		}

		fmt.Println("integrity ok")
		return nil
	},
}

var resolveCmd = &cli.Command{
	Name:  "resolve",
	Usage: "Apply the governance verdict for a model under review",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "model-id", Required: true},
		&cli.StringFlag{Name: "proposal-id", Required: true},
	},
	Action: func(ctx *cli.Context) error {
		c, err := newClient(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		verdict, err := c.ResolveGovernance(ctx.String("model-id"), ctx.String("proposal-id"))
		if err != nil {
			return err
		}

		fmt.Println("verdict:", verdict)
		return nil
	},
}

var activateCmd = &cli.Command{
	Name:  "activate",
	Usage: "Activate an approved model under its approving proposal",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "model-id", Required: true},
		&cli.StringFlag{Name: "proposal-id", Required: true},
	},
	Action: func(ctx *cli.Context) error {
		c, err := newClient(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		return c.ActivateModel(ctx.String("model-id"), ctx.String("proposal-id"))
	},
}

var deprecateCmd = &cli.Command{
	Name: "deprecate",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "model-id", Required: true},
		&cli.StringFlag{Name: "reason", Required: true},
		&cli.StringFlag{Name: "replacement-id"},
	},
	Action: func(ctx *cli.Context) error {
		c, err := newClient(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		return c.DeprecateModel(ctx.String("model-id"), ctx.String("reason"), ctx.String("replacement-id"))
	},
}

var withdrawCmd = &cli.Command{
	Name: "withdraw",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "model-id", Required: true},
	},
	Action: func(ctx *cli.Context) error {
		c, err := newClient(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		return c.WithdrawModel(ctx.String("model-id"))
	},
}

var suspendCmd = &cli.Command{
	Name:  "suspend",
	Usage: "Emergency-suspend an active model into security review",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "model-id", Required: true},
		&cli.StringFlag{Name: "reason", Required: true},
		&cli.Int64Flag{Name: "hours", Value: 24},
	},
	Action: func(ctx *cli.Context) error {
		c, err := newClient(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		return c.EmergencySuspend(ctx.String("model-id"), ctx.String("reason"), ctx.Int64("hours"))
	},
}

var clearHoldCmd = &cli.Command{
	Name: "clear-hold",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "model-id", Required: true},
	},
	Action: func(ctx *cli.Context) error {
		c, err := newClient(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		return c.ClearSecurityHold(ctx.String("model-id"))
	},
}

var clearMarkerCmd = &cli.Command{
	Name:  "clear-marker",
	Usage: "Clear a stuck activation in-flight marker",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "model-id", Required: true},
	},
	Action: func(ctx *cli.Context) error {
		c, err := newClient(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		return c.ClearActivationMarker(ctx.String("model-id"))
	},
}

var downloadCmd = &cli.Command{
	Name:  "download",
	Usage: "Download and reassemble a model artifact shard by shard",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "model-id", Required: true},
		&cli.StringFlag{Name: "out", Required: true},
	},
	Action: func(ctx *cli.Context) error {
		c, err := newClient(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		artifact, err := c.DownloadModel(ctx.String("model-id"))
		if err != nil {
			return err
		}

		err = os.WriteFile(ctx.String("out"), artifact, 0644)
		if err != nil {
			return err
		}

		log.Infow("downloaded", "modelID", ctx.String("model-id"), "bytes", len(artifact))
		return nil
	},
}

var manifestCmd = &cli.Command{
	Name: "manifest",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "model-id", Required: true},
	},
	Action: func(ctx *cli.Context) error {
		c, err := newClient(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		manifest, err := c.GetManifest(ctx.String("model-id"))
		if err != nil {
			return err
		}

		fmt.Printf("model %s: %d shards, %d bytes, aggregate %s\n",
			manifest.ModelID, len(manifest.Shards), manifest.TotalSize, manifest.AggregateChecksum)
		for _, d := range manifest.Shards {
			fmt.Printf("  %s %d %s\n", d.ID, d.Size, d.Checksum)
		}

		return nil
	},
}

var metaCmd = &cli.Command{
	Name: "meta",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "model-id", Required: true},
	},
	Action: func(ctx *cli.Context) error {
		c, err := newClient(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		record, err := c.GetModelMeta(ctx.String("model-id"))
		if err != nil {
			return err
		}

		fmt.Printf("%s status=%s submitter=%s name=%q arch=%s params=%d\n",
			record.ID, record.Status, record.Submitter, record.Meta.Name,
			record.Meta.Architecture, record.Meta.ParamCount)

		return nil
	},
}

var listCmd = &cli.Command{
	Name: "list",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "status"},
		&cli.IntFlag{Name: "limit"},
	},
	Action: func(ctx *cli.Context) error {
		c, err := newClient(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		ids, err := c.ListModels(ctx.String("status"), ctx.Int("limit"))
		if err != nil {
			return err
		}

		for _, id := range ids {
			fmt.Println(id)
		}

		return nil
	},
}

var uploaderCmd = &cli.Command{
	Name:  "uploader",
	Usage: "Manage the authorized uploader set",
	Subcommands: []*cli.Command{
		{
			Name: "add",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "identity", Required: true},
			},
			Action: func(ctx *cli.Context) error {
				c, err := newClient(ctx)
				if err != nil {
					return err
				}
				defer c.Close()

				return c.AddAuthorizedUploader(ctx.String("identity"))
			},
		},
		{
			Name: "remove",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "identity", Required: true},
			},
			Action: func(ctx *cli.Context) error {
				c, err := newClient(ctx)
				if err != nil {
					return err
				}
				defer c.Close()

				return c.RemoveAuthorizedUploader(ctx.String("identity"))
			},
		},
	},
}

var accessCmd = &cli.Command{
	Name:  "access",
	Usage: "Request a time-bounded access grant for an active model",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "model-id", Required: true},
		&cli.Int64Flag{Name: "duration-secs", Value: 24 * 3600},
	},
	Action: func(ctx *cli.Context) error {
		c, err := newClient(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		grant, err := c.RequestModelAccess(ctx.String("model-id"), ctx.Int64("duration-secs"))
		if err != nil {
			return err
		}

		fmt.Printf("grant %s expires at %d\n", grant.GrantID, grant.ExpiresAt)
		return nil
	},
}

var badgeCmd = &cli.Command{
	Name: "badge",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "model-id", Required: true},
		&cli.StringFlag{Name: "type", Required: true},
	},
	Action: func(ctx *cli.Context) error {
		c, err := newClient(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		return c.GrantBadge(ctx.String("model-id"), ctx.String("type"))
	},
}

var auditCmd = &cli.Command{
	Name: "audit",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "model-id"},
		&cli.StringSliceFlag{Name: "kind"},
		&cli.Int64Flag{Name: "from"},
		&cli.Int64Flag{Name: "to"},
	},
	Action: func(ctx *cli.Context) error {
		c, err := newClient(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		entries, err := c.GetAuditLog(ctx.String("model-id"), ctx.StringSlice("kind"), ctx.Int64("from"), ctx.Int64("to"))
		if err != nil {
			return err
		}

		for _, e := range entries {
			fmt.Printf("%d %d %s %s %s %s\n", e.Seq, e.Timestamp, e.Kind, e.Actor, e.ModelID, e.Details)
		}

		return nil
	},
}
