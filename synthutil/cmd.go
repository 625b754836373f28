/*
Copyright © 2026 the fv3net authors.
This file is part of fv3net.

fv3net is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

fv3net is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with fv3net.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package synthutil wires the schema subsystem into the synth command
// line tool.
package synthutil

import (
	"context"
	"fmt"
	"time"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oelbert/fv3net/synth"
	"github.com/oelbert/fv3net/synth/fixtures"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

// Log is the logger for the command layer. The library packages stay
// silent and report through errors; progress messages happen here.
var Log = logrus.StandardLogger()

func init() {
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:     true,
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
	})
}

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to synth.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "coords",
			usage: `
              coords names the arrays of the dataset that are coordinates.
              An array is a coordinate when it is one-dimensional and its
              dimension carries its own name.`,
			shorthand:  "c",
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{saveCmd.Flags()},
		},
		{
			name: "seed",
			usage: `
              seed sets the random seed for dataset generation, so that
              repeated runs produce the same values. The default of -1
              seeds from the current time.`,
			defaultVal: -1,
			flagsets:   []*pflag.FlagSet{generateCmd.Flags()},
		},
		{
			name: "ranges",
			usage: `
              ranges specifies the location of a YAML file giving, per
              variable name, the range generated values should fall in:

                  specific_humidity:
                    min: 0
                    max: 0.02`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{generateCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("SYNTH")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(saveCmd)
	Root.AddCommand(generateCmd)
	Root.AddCommand(verifyCmd)
	Root.AddCommand(fixtureCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("synth: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "synth",
	Short: "Describe and regenerate dataset structure.",
	Long: `synth records the structure of labeled, chunked datasets as compact
schema documents, and regenerates randomly-filled datasets with the
same structure. Use the subcommands specified below to access the
functionality.

Refer to the subcommand documentation for configuration options and
default settings. Configuration can be changed by using a configuration
file (and providing the path to the file using the --config flag), by
using command-line arguments, or by setting environment variables in
the format 'SYNTH_var' where 'var' is the name of the variable to be
set. Refer to https://github.com/spf13/viper for additional
configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of synth.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("synth v%s\n", synth.Version)
	},
	DisableAutoGenTag: true,
}

// saveCmd is a command that extracts a dataset's schema and saves it.
var saveCmd = &cobra.Command{
	Use:   "save [store] [schema]",
	Short: "Save the schema of a dataset.",
	Long: `save reads the structure of the zarr dataset at the store location,
which may be a local directory or a gs://, s3://, or file:// URL, and
writes its schema as a JSON document to the given destination. Only
the dataset's metadata is read, never its data chunks, so saving the
schema of a large remote dataset is cheap.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 2 {
			return fmt.Errorf("synth: save needs a store location and a schema destination; got %d arguments", len(args))
		}
		coords, err := cast.ToStringSliceE(Cfg.Get("coords"))
		if err != nil {
			return fmt.Errorf("synth: reading 'coords': %v", err)
		}
		return Save(context.Background(), args[0], args[1], coords)
	},
	DisableAutoGenTag: true,
}

// generateCmd is a command that generates a random dataset from a
// saved schema.
var generateCmd = &cobra.Command{
	Use:   "generate [schema] [out]",
	Short: "Generate a random dataset from a schema.",
	Long: `generate reads the schema document at the given location, which may
be a local path or a URL, and writes a randomly-filled dataset with
the structure it describes to out. An out path ending in .nc is
written as a NetCDF file; any other path becomes a zarr store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 2 {
			return fmt.Errorf("synth: generate needs a schema location and an output location; got %d arguments", len(args))
		}
		return Generate(context.Background(), args[0], args[1],
			int64(Cfg.GetInt("seed")), Cfg.GetString("ranges"))
	},
	DisableAutoGenTag: true,
}

// verifyCmd is a command that checks a dataset against a saved schema.
var verifyCmd = &cobra.Command{
	Use:   "verify [schema] [store]",
	Short: "Check a dataset against a schema.",
	Long: `verify reads the schema document at the given location and the
structure of the zarr dataset at the store location and compares the
two, ignoring data values, attributes, and coordinate lengths. On
mismatch it exits non-zero and lists the differences.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 2 {
			return fmt.Errorf("synth: verify needs a schema location and a store location; got %d arguments", len(args))
		}
		return Verify(context.Background(), args[0], args[1])
	},
	DisableAutoGenTag: true,
}

// fixtureCmd is a command that writes one of the reference datasets.
var fixtureCmd = &cobra.Command{
	Use:   "fixture [name] [dir]",
	Short: "Write a reference dataset.",
	Long: `fixture generates the named reference dataset and writes it as a
zarr store under the given directory, using a temporary directory when
none is given. Run without arguments, it lists the available names.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			names, err := fixtures.Names()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		}
		dir := ""
		if len(args) > 1 {
			dir = args[1]
		}
		return Fixture(context.Background(), args[0], dir)
	},
	DisableAutoGenTag: true,
}
