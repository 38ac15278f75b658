// Package cli implements the geoctl command tree.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/geolookup/internal/adapter/exifimage"
	"github.com/couchcryptid/geolookup/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var errNoMatch = errors.New("no match found")

// Lookup runs geocoding operations.
type Lookup interface {
	Run(ctx context.Context, op domain.OperationKind, service string, q domain.Query) (*domain.Location, error)
	Services() []string
}

// LookupFactory builds the Lookup on first use, so commands that never
// reach a provider do not need configuration.
type LookupFactory func() (Lookup, error)

// NewRootCommand returns the geoctl command with all subcommands attached.
func NewRootCommand(newLookup LookupFactory) *cobra.Command {
	root := &cobra.Command{
		Use:           "geoctl",
		Short:         "Geocode addresses, reverse geocode points, and measure distances",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		servicesCmd(newLookup),
		coordsCmd(newLookup),
		addressCmd(newLookup),
		distanceCmd(),
		placeCmd(),
		exifCmd(newLookup),
	)
	return root
}

func servicesCmd(newLookup LookupFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "services",
		Short: "List registered geocoding services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lookup, err := newLookup()
			if err != nil {
				return err
			}
			for _, name := range lookup.Services() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func coordsCmd(newLookup LookupFactory) *cobra.Command {
	var service string
	cmd := &cobra.Command{
		Use:   "coords ADDRESS...",
		Short: "Resolve an address to coordinates",
		Example: `  geoctl coords --service osm "1600 Pennsylvania Ave, Washington DC"
  geoctl coords 1 Infinite Loop Cupertino`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lookup, err := newLookup()
			if err != nil {
				return err
			}
			q := domain.Query{Address: strings.Join(args, " ")}
			loc, err := lookup.Run(cmd.Context(), domain.OpCoords, service, q)
			if err != nil {
				return err
			}
			return printLocation(cmd.OutOrStdout(), loc)
		},
	}
	cmd.Flags().StringVarP(&service, "service", "s", "osm", "geocoding service name")
	return cmd
}

func addressCmd(newLookup LookupFactory) *cobra.Command {
	var service string
	cmd := &cobra.Command{
		Use:   "address LATITUDE LONGITUDE",
		Short: "Reverse geocode a point",
		// Negative coordinates would otherwise parse as shorthand flags.
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			args, err := coordinateArgs(cmd, args, 2)
			if err != nil || args == nil {
				return err
			}
			point, err := parsePoint(args[0], args[1])
			if err != nil {
				return err
			}
			lookup, err := newLookup()
			if err != nil {
				return err
			}
			loc, err := lookup.Run(cmd.Context(), domain.OpAddress, service, domain.Query{Point: &point})
			if err != nil {
				return err
			}
			return printLocation(cmd.OutOrStdout(), loc)
		},
	}
	cmd.Flags().StringVarP(&service, "service", "s", "osm", "geocoding service name")
	return cmd
}

func distanceCmd() *cobra.Command {
	var unit string
	cmd := &cobra.Command{
		Use:   "distance LAT1 LON1 LAT2 LON2",
		Short: "Great-circle distance between two points",
		Long: `Prints the great-circle distance between two points. Units are
M (miles, default), K (kilometers), N (nautical miles), F (feet),
I (inches), or a decimal multiplier applied to miles.`,
		Example:            `  geoctl distance -u K -33.86 151.21 40.75 -73.98`,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			args, err := coordinateArgs(cmd, args, 4)
			if err != nil || args == nil {
				return err
			}
			from, err := parsePoint(args[0], args[1])
			if err != nil {
				return err
			}
			to, err := parsePoint(args[2], args[3])
			if err != nil {
				return err
			}
			d := domain.Distance(from, to, unit)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", strconv.FormatFloat(d, 'f', -1, 64), unit)
			return nil
		},
	}
	cmd.Flags().StringVarP(&unit, "unit", "u", "M", "distance unit")
	return cmd
}

func placeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "place NAME...",
		Short: "Normalize a place name and print its continent",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := domain.NormalizePlace(strings.Join(args, " "))
			out := map[string]any{"name": name}
			if continent, _, ok := domain.ContinentOf(name); ok {
				out["continent"] = continent
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func exifCmd(newLookup LookupFactory) *cobra.Command {
	var service string
	cmd := &cobra.Command{
		Use:   "exif FILE",
		Short: "Read GPS coordinates from an image and optionally reverse geocode them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			coords, err := exifimage.Coordinates(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if service == "" {
				return printJSON(cmd.OutOrStdout(), coords)
			}

			lookup, err := newLookup()
			if err != nil {
				return err
			}
			loc, err := lookup.Run(cmd.Context(), domain.OpAddress, service, domain.Query{Point: &coords})
			if err != nil {
				return err
			}
			return printLocation(cmd.OutOrStdout(), loc)
		},
	}
	cmd.Flags().StringVarP(&service, "service", "s", "", "reverse geocode with this service")
	return cmd
}

// coordinateArgs parses the flags of a command that disables cobra's flag
// parsing and returns its n positional arguments. Numeric tokens are always
// positional, so "-73.98" is a longitude rather than a flag. A nil slice with
// a nil error means help was printed.
func coordinateArgs(cmd *cobra.Command, args []string, n int) ([]string, error) {
	var positional, flags []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if _, err := strconv.ParseFloat(a, 64); err == nil || !strings.HasPrefix(a, "-") || a == "-" {
			positional = append(positional, a)
			continue
		}
		flags = append(flags, a)
		if !strings.Contains(a, "=") && takesValue(cmd.Flags(), a) && i+1 < len(args) {
			i++
			flags = append(flags, args[i])
		}
	}

	if err := cmd.Flags().Parse(flags); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, cmd.Help()
		}
		return nil, err
	}
	if help, _ := cmd.Flags().GetBool("help"); help {
		return nil, cmd.Help()
	}
	positional = append(positional, cmd.Flags().Args()...)
	if len(positional) != n {
		return nil, fmt.Errorf("accepts %d arg(s), received %d", n, len(positional))
	}
	return positional, nil
}

// takesValue reports whether the bare flag token expects the next argument
// as its value.
func takesValue(fs *pflag.FlagSet, token string) bool {
	var f *pflag.Flag
	if name, ok := strings.CutPrefix(token, "--"); ok {
		f = fs.Lookup(name)
	} else if name := token[1:]; len(name) == 1 {
		f = fs.ShorthandLookup(name)
	}
	return f != nil && f.NoOptDefVal == ""
}

func parsePoint(lat, lon string) (domain.Coordinates, error) {
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil || la < -90 || la > 90 {
		return domain.Coordinates{}, fmt.Errorf("invalid latitude %q", lat)
	}
	lo, err := strconv.ParseFloat(lon, 64)
	if err != nil || lo < -180 || lo > 180 {
		return domain.Coordinates{}, fmt.Errorf("invalid longitude %q", lon)
	}
	return domain.Coordinates{Latitude: la, Longitude: lo}, nil
}

func printLocation(w io.Writer, loc *domain.Location) error {
	if loc == nil {
		return errNoMatch
	}
	return printJSON(w, loc)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
