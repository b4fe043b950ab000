package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dargueta/myfs"
	"github.com/dargueta/myfs/disks"
	c "github.com/dargueta/myfs/file_systems/common"
	"github.com/dargueta/myfs/file_systems/myfsv3"
	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// shell carries the state shared by all commands of a single invocation.
type shell struct {
	config Config
	logger *log.Logger
}

// configure loads the configuration and applies the global flags on top of it.
// It runs before any command.
func (s *shell) configure(ctx *cli.Context) error {
	config, err := LoadConfig(ctx.String("config"))
	if err != nil {
		return err
	}

	if ctx.IsSet("image") {
		config.Image = ctx.String("image")
	}
	if ctx.IsSet("preset") {
		err = config.ApplyPreset(ctx.String("preset"))
		if err != nil {
			return err
		}
	}
	if ctx.IsSet("inodes") {
		config.InodeCount = ctx.Uint("inodes")
	}
	if ctx.IsSet("blocks") {
		config.BlockCount = ctx.Uint("blocks")
	}
	if ctx.IsSet("block-size") {
		config.BytesPerBlock = ctx.Uint("block-size")
	}
	if ctx.IsSet("log-level") {
		config.LogLevel = ctx.String("log-level")
	}
	if ctx.IsSet("log-format") {
		config.LogFormat = ctx.String("log-format")
	}

	err = config.Validate()
	if err != nil {
		return err
	}

	s.config = config
	s.logger = config.NewLogger(ctx.App.ErrWriter)
	return nil
}

// withDriver opens the image file and runs `operation` on a driver for it. If
// `create` is set, the image is created or grown as needed; otherwise it must
// already exist and be large enough for the configured geometry.
func (s *shell) withDriver(create bool, operation func(driver *myfsv3.Driver) error) error {
	geometry := s.config.Geometry()
	size := geometry.TotalSize()

	flags := os.O_RDWR
	if create {
		flags |= os.O_CREATE
	}
	file, err := os.OpenFile(s.config.Image, flags, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	if create {
		err = c.EnsureStreamSize(file, size)
		if err != nil {
			return err
		}
	} else {
		info, err := file.Stat()
		if err != nil {
			return err
		}
		if info.Size() < size {
			return fmt.Errorf(
				"%s is %d bytes but the volume needs %d; is the geometry right?",
				s.config.Image,
				info.Size(),
				size,
			)
		}
	}

	s.logger.WithFields(log.Fields{
		"image":           s.config.Image,
		"inodes":          geometry.InodeCount,
		"blocks":          geometry.BlockCount,
		"bytes_per_block": geometry.BytesPerBlock,
	}).Debug("opened image")

	driver, err := myfsv3.NewDriver(
		c.NewStreamDevice(file, size), geometry, myfsv3.WithLogger(s.logger))
	if err != nil {
		return err
	}

	err = operation(driver)
	if err != nil {
		return err
	}
	return file.Close()
}

// withMountedDriver is like withDriver but mounts the volume first, creating it
// if the image doesn't hold one yet.
func (s *shell) withMountedDriver(operation func(driver *myfsv3.Driver) error) error {
	return s.withDriver(true, func(driver *myfsv3.Driver) error {
		err := driver.Mount()
		if err != nil {
			return err
		}
		return operation(driver)
	})
}

func requireArgs(ctx *cli.Context, minArgs, maxArgs int) error {
	n := ctx.NArg()
	if n < minArgs || (maxArgs >= 0 && n > maxArgs) {
		return fmt.Errorf(
			"wrong number of arguments to %s: usage: %s %s",
			ctx.Command.Name,
			ctx.Command.Name,
			ctx.Command.ArgsUsage,
		)
	}
	return nil
}

func (s *shell) format(ctx *cli.Context) error {
	err := requireArgs(ctx, 0, 0)
	if err != nil {
		return err
	}
	return s.withDriver(true, func(driver *myfsv3.Driver) error {
		return driver.Format()
	})
}

func (s *shell) createFiles(ctx *cli.Context, isDir bool) error {
	err := requireArgs(ctx, 1, -1)
	if err != nil {
		return err
	}

	return s.withMountedDriver(func(driver *myfsv3.Driver) error {
		for _, name := range ctx.Args().Slice() {
			created, err := driver.CreateFile(name, isDir)
			if err != nil {
				return err
			}
			// touch on an existing file is fine, mkdir isn't.
			if !created && isDir {
				return fmt.Errorf("can't create directory %q: file exists", name)
			}
		}
		return nil
	})
}

func (s *shell) touch(ctx *cli.Context) error {
	return s.createFiles(ctx, false)
}

func (s *shell) mkdir(ctx *cli.Context) error {
	return s.createFiles(ctx, true)
}

func (s *shell) cat(ctx *cli.Context) error {
	err := requireArgs(ctx, 1, -1)
	if err != nil {
		return err
	}

	return s.withMountedDriver(func(driver *myfsv3.Driver) error {
		for _, name := range ctx.Args().Slice() {
			content, err := driver.GetContent(name)
			if err != nil {
				return err
			}
			_, err = io.WriteString(ctx.App.Writer, content)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *shell) write(ctx *cli.Context) error {
	err := requireArgs(ctx, 1, 2)
	if err != nil {
		return err
	}

	name := ctx.Args().Get(0)
	var content string
	if ctx.NArg() == 2 {
		content = ctx.Args().Get(1)
	} else {
		data, err := io.ReadAll(ctx.App.Reader)
		if err != nil {
			return err
		}
		content = string(data)
	}

	return s.withMountedDriver(func(driver *myfsv3.Driver) error {
		if ctx.Bool("create") {
			_, err := driver.CreateFile(name, false)
			if err != nil {
				return err
			}
		}
		return driver.SetContent(name, content)
	})
}

// listingRow is one line of `ls --csv` output.
type listingRow struct {
	Name  string `csv:"name"`
	Type  string `csv:"type"`
	Size  int64  `csv:"size"`
	Inode uint   `csv:"inode"`
}

func newListingRow(entry *myfs.DirectoryEntry) listingRow {
	entryType := "file"
	if entry.IsDir() {
		entryType = "directory"
	}
	return listingRow{
		Name:  entry.Name(),
		Type:  entryType,
		Size:  entry.Size(),
		Inode: entry.Inumber,
	}
}

func (s *shell) ls(ctx *cli.Context) error {
	err := requireArgs(ctx, 0, 1)
	if err != nil {
		return err
	}
	path := ctx.Args().First()
	if path == "" {
		path = "/"
	}

	return s.withMountedDriver(func(driver *myfsv3.Driver) error {
		entries, err := driver.ListDir(path)
		if err != nil {
			return err
		}

		if ctx.Bool("csv") {
			rows := make([]listingRow, len(entries))
			for i := range entries {
				rows[i] = newListingRow(&entries[i])
			}
			return gocsv.Marshal(&rows, ctx.App.Writer)
		}

		for i := range entries {
			entry := &entries[i]
			if ctx.Bool("long") {
				_, err = fmt.Fprintf(
					ctx.App.Writer,
					"%s %4d %6d %s\n",
					entry.Mode(),
					entry.Inumber,
					entry.Size(),
					entry.Name(),
				)
			} else {
				_, err = fmt.Fprintln(ctx.App.Writer, entry.Name())
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *shell) stat(ctx *cli.Context) error {
	err := requireArgs(ctx, 0, 0)
	if err != nil {
		return err
	}

	return s.withMountedDriver(func(driver *myfsv3.Driver) error {
		stat, err := driver.FSStat()
		if err != nil {
			return err
		}

		fields := []struct {
			label string
			value uint64
		}{
			{"block size", stat.BlockSize},
			{"total blocks", stat.TotalBlocks},
			{"free blocks", stat.BlocksFree},
			{"free bytes", stat.BytesFree},
			{"files", stat.Files},
			{"free files", stat.FilesFree},
			{"max name length", stat.MaxNameLength},
		}
		for _, field := range fields {
			_, err = fmt.Fprintf(ctx.App.Writer, "%-16s %d\n", field.label+":", field.value)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *shell) check(ctx *cli.Context) error {
	err := requireArgs(ctx, 0, 0)
	if err != nil {
		return err
	}

	return s.withDriver(false, func(driver *myfsv3.Driver) error {
		err := driver.Check()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(ctx.App.Writer, "no problems found")
		return err
	})
}

func (s *shell) export(ctx *cli.Context) error {
	err := requireArgs(ctx, 1, 1)
	if err != nil {
		return err
	}

	return s.withDriver(false, func(driver *myfsv3.Driver) error {
		target := ctx.Args().First()
		if target == "-" {
			return driver.ExportSnapshot(ctx.App.Writer)
		}

		output, err := os.Create(target)
		if err != nil {
			return err
		}
		defer output.Close()

		err = driver.ExportSnapshot(output)
		if err != nil {
			return err
		}
		return output.Close()
	})
}

func (s *shell) importSnapshot(ctx *cli.Context) error {
	err := requireArgs(ctx, 1, 1)
	if err != nil {
		return err
	}

	var input io.Reader
	source := ctx.Args().First()
	if source == "-" {
		input = ctx.App.Reader
	} else {
		file, err := os.Open(source)
		if err != nil {
			return err
		}
		defer file.Close()
		input = file
	}

	return s.withDriver(true, func(driver *myfsv3.Driver) error {
		return driver.ImportSnapshot(input)
	})
}

func (s *shell) listGeometries(ctx *cli.Context) error {
	err := requireArgs(ctx, 0, 0)
	if err != nil {
		return err
	}

	for _, disk := range disks.ListPredefinedDiskGeometries() {
		_, err = fmt.Fprintf(
			ctx.App.Writer,
			"%-8s %4d inodes %5d blocks of %5d bytes %9d bytes total  %s\n",
			disk.Slug,
			disk.InodeCount,
			disk.BlockCount,
			disk.BytesPerBlock,
			disk.TotalSizeBytes(),
			disk.Name,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
