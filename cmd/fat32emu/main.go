package main

import (
	"fmt"
	"os"

	"github.com/dverbeek/fat32emu/disks"
	"github.com/dverbeek/fat32emu/fat32"
	"github.com/dverbeek/fat32emu/shell"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:      "fat32emu",
		Usage:     "Interactive shell over a FAT32 disk image",
		ArgsUsage: "DISK_FILE",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "log free-cluster and name-comparison diagnostics",
			},
			&cli.StringFlag{
				Name:  "profile",
				Usage: "image profile `SLUG`",
				Value: disks.DefaultProfileSlug,
			},
		},
		Action: runShell,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runShell(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.Exit(fmt.Sprintf("Usage: %s <disk_file>", ctx.App.Name), 1)
	}

	if ctx.Bool("debug") {
		log.SetLevel(log.DebugLevel)
	}

	profile, err := disks.GetProfile(ctx.String("profile"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	fs, err := fat32.Open(afero.NewOsFs(), ctx.Args().First(), profile.FilesystemParams())
	if err != nil {
		return cli.Exit("Failed to initialize FAT32 emulator", 1)
	}
	defer fs.Close()

	return shell.New(fs, os.Stdin, os.Stdout).Run()
}
