package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func newApp() *cli.App {
	s := &shell{}

	return &cli.App{
		Name:  appName,
		Usage: "Manage myfs volume images",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "load settings from `FILE` (default: $MYFS_CONFIG_FILE or ~/.config/myfs.yaml)",
			},
			&cli.StringFlag{
				Name:    "image",
				Aliases: []string{"i"},
				Usage:   "path to the volume image `FILE`",
			},
			&cli.StringFlag{
				Name:  "preset",
				Usage: "use the predefined geometry named `SLUG` (see the geometries command)",
			},
			&cli.UintFlag{
				Name:  "inodes",
				Usage: "number of inode slots in the volume",
			},
			&cli.UintFlag{
				Name:  "blocks",
				Usage: "number of data blocks in the volume",
			},
			&cli.UintFlag{
				Name:  "block-size",
				Usage: "size of a data block in bytes, including its cursor",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "minimum `LEVEL` of log messages to show",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log `FORMAT`, either text or json",
			},
		},
		Before: s.configure,
		Commands: []*cli.Command{
			{
				Name:   "format",
				Usage:  "Create or wipe a volume",
				Action: s.format,
			},
			{
				Name:      "touch",
				Usage:     "Create empty files",
				ArgsUsage: "NAME...",
				Action:    s.touch,
			},
			{
				Name:      "mkdir",
				Usage:     "Create directories",
				ArgsUsage: "NAME...",
				Action:    s.mkdir,
			},
			{
				Name:      "cat",
				Usage:     "Print the content of files",
				ArgsUsage: "NAME...",
				Action:    s.cat,
			},
			{
				Name:      "write",
				Usage:     "Replace the content of a file, reading from stdin if CONTENT is omitted",
				ArgsUsage: "NAME [CONTENT]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "create",
						Aliases: []string{"c"},
						Usage:   "create the file if it doesn't exist",
					},
				},
				Action: s.write,
			},
			{
				Name:      "ls",
				Usage:     "List the root directory",
				ArgsUsage: "[PATH]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "long",
						Aliases: []string{"l"},
						Usage:   "show the mode, inode, and size of each entry",
					},
					&cli.BoolFlag{
						Name:  "csv",
						Usage: "print entries as CSV",
					},
				},
				Action: s.ls,
			},
			{
				Name:   "stat",
				Usage:  "Show volume usage",
				Action: s.stat,
			},
			{
				Name:   "geometries",
				Usage:  "List the predefined volume geometries",
				Action: s.listGeometries,
			},
			{
				Name:   "check",
				Usage:  "Check the volume for corruption without modifying it",
				Action: s.check,
			},
			{
				Name:      "export",
				Usage:     "Save a compressed snapshot of the volume, or write it to stdout if FILE is -",
				ArgsUsage: "FILE",
				Action:    s.export,
			},
			{
				Name:      "import",
				Usage:     "Replace the volume with a snapshot, or read it from stdin if FILE is -",
				ArgsUsage: "FILE",
				Action:    s.importSnapshot,
			},
		},
	}
}

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}
