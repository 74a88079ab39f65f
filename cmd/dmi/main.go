package main

import (
	"fmt"
	"image/gif"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/bodgit/dmi"
	"github.com/bodgit/dmi/scan"
	"github.com/urfave/cli/v2"
)

const defaultDB = "dmi.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func main() {
	app := cli.NewApp()

	app.Name = "dmi"
	app.Usage = "DMI icon file utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"DMI_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to state catalog",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "info",
			Usage:     "Print the icon states of a DMI file",
			ArgsUsage: "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				f, err := os.Open(c.Args().First())
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer f.Close()

				meta, err := dmi.DecodeMetadata(f)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				fmt.Printf("version %s, %dx%d cells, %d states\n", meta.Version, meta.Width, meta.Height, len(meta.States))

				w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
				fmt.Fprintln(w, "NAME\tDIRS\tFRAMES\tLOOP\tREWIND\tMOVEMENT")
				for _, s := range meta.States {
					fmt.Fprintf(w, "%q\t%d\t%d\t%d\t%t\t%t\n", s.Name, s.Dirs, s.Frames, s.Loop, s.Rewind, s.Movement)
				}

				return w.Flush()
			},
		},
		{
			Name:      "export",
			Usage:     "Export an icon state as an animated GIF",
			ArgsUsage: "FILE STATE",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "dir",
					Usage: "direction index to export",
				},
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Usage:   "output filename",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				f, err := os.Open(c.Args().First())
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer f.Close()

				icon, err := dmi.Decode(f)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				name := c.Args().Get(1)
				states := icon.State(name)
				if len(states) == 0 {
					return cli.NewExitError(fmt.Errorf("no state named %q", name), 1)
				}

				g, err := states[0].GIF(c.Int("dir"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				output := c.String("output")
				if output == "" {
					output = name + ".gif"
				}

				out, err := os.Create(output)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer out.Close()

				if err := gif.EncodeAll(out, g); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "scan",
			Usage:     "Scan a directory tree and catalog every DMI file",
			ArgsUsage: "DIRECTORY",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				db, err := scan.NewStateDB(c.String("db"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer db.Close()

				s := scan.New(db, newLogger(c))

				if err := s.Scan(c.Args().First()); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:  "dupes",
			Usage: "Report duplicate state names in the catalog",
			Action: func(c *cli.Context) error {
				db, err := scan.NewStateDB(c.String("db"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer db.Close()

				duplicates, err := db.Duplicates()
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
				fmt.Fprintln(w, "FILE\tSTATE\tCOUNT")
				for _, d := range duplicates {
					fmt.Fprintf(w, "%s\t%q\t%s\n", d.Path, d.Name, strconv.Itoa(d.Count))
				}

				return w.Flush()
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
